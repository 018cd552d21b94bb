package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"tecelaria/internal/apperr"
	"tecelaria/internal/model"
	"tecelaria/internal/repository"
)

// CategoryService provides helpers around memory categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List returns the predefined categories plus the user's custom ones.
func (s *CategoryService) List(ctx context.Context, userID uint) ([]model.Category, error) {
	return s.repo.ListVisible(ctx, userID)
}

// CreateCustom adds a user-defined category, capped at MaxCustomCategories.
func (s *CategoryService) CreateCustom(ctx context.Context, userID uint, name, description string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "category name is required")
	}

	count, err := s.repo.CountCustom(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxCustomCategories {
		return nil, apperr.Newf(apperr.Conflict, "custom category limit of %d reached", model.MaxCustomCategories)
	}

	exists, err := s.repo.ExistsForUser(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Newf(apperr.Conflict, "category %q already exists", name)
	}

	category := &model.Category{
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerUserID: &userID,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Resolve loads a category the user may attach memories to: any predefined one
// or a custom one they own.
func (s *CategoryService) Resolve(ctx context.Context, userID, categoryID uint) (*model.Category, error) {
	category, err := s.repo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "category not found")
		}
		return nil, err
	}
	if !category.IsPredefined && (category.OwnerUserID == nil || *category.OwnerUserID != userID) {
		return nil, apperr.New(apperr.NotFound, "category not found")
	}
	return category, nil
}

// Default returns the fallback category for questions without a mapping.
func (s *CategoryService) Default(ctx context.Context) (*model.Category, error) {
	category, err := s.repo.FindPredefinedByName(ctx, model.DefaultCategoryName)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "default category missing", err)
	}
	return category, nil
}
