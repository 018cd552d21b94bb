package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tecelaria/internal/model"
)

// CategoryRepository manages predefined and custom memory categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListVisible returns the predefined categories plus the user's custom ones,
// predefined first in seed order.
func (r *CategoryRepository) ListVisible(ctx context.Context, userID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).
		Where("is_predefined = ? OR owner_user_id = ?", true, userID).
		Order("is_predefined DESC, sort_order ASC, name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindPredefinedByName looks up a seeded category, used for the default fallback.
func (r *CategoryRepository) FindPredefinedByName(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).
		Where("name = ? AND is_predefined = ?", name, true).
		First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) CountCustom(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("owner_user_id = ? AND is_predefined = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count custom categories: %w", err)
	}
	return count, nil
}

func (r *CategoryRepository) ExistsForUser(ctx context.Context, userID uint, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("name = ? AND (is_predefined = ? OR owner_user_id = ?)", name, true, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return count > 0, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}
