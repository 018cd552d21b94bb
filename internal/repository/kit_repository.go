package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tecelaria/internal/model"
)

// KitRepository handles kits and their membership rows.
type KitRepository struct {
	db *gorm.DB
}

func NewKitRepository(db *gorm.DB) *KitRepository {
	return &KitRepository{db: db}
}

// CreateWithOwner persists a kit and its owner membership in one transaction.
func (r *KitRepository) CreateWithOwner(ctx context.Context, kit *model.Kit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(kit).Error; err != nil {
			return fmt.Errorf("create kit: %w", err)
		}
		member := model.KitMember{
			KitID:     kit.ID,
			UserID:    kit.OwnerUserID,
			Role:      model.RoleOwner,
			InvitedBy: kit.OwnerUserID,
			InvitedAt: time.Now(),
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}
		return nil
	})
}

func (r *KitRepository) FindByID(ctx context.Context, kitID uint) (*model.Kit, error) {
	var kit model.Kit
	if err := r.db.WithContext(ctx).Preload("Members").First(&kit, kitID).Error; err != nil {
		return nil, err
	}
	return &kit, nil
}

// ListForUser returns kits where the user is a member of any role.
func (r *KitRepository) ListForUser(ctx context.Context, userID uint) ([]model.Kit, error) {
	memberKits := r.db.WithContext(ctx).Model(&model.KitMember{}).
		Select("kit_id").Where("user_id = ?", userID)

	var kits []model.Kit
	if err := r.db.WithContext(ctx).Preload("Members").
		Where("id IN (?)", memberKits).
		Order("created_at DESC").
		Find(&kits).Error; err != nil {
		return nil, err
	}
	return kits, nil
}

// ListActivated returns kits with a running program clock, for the digest job.
func (r *KitRepository) ListActivated(ctx context.Context) ([]model.Kit, error) {
	var kits []model.Kit
	if err := r.db.WithContext(ctx).
		Where("activated_at IS NOT NULL").
		Find(&kits).Error; err != nil {
		return nil, err
	}
	return kits, nil
}

// FindOwnedByUser returns the user's own kit, if any.
func (r *KitRepository) FindOwnedByUser(ctx context.Context, userID uint) (*model.Kit, error) {
	var kit model.Kit
	if err := r.db.WithContext(ctx).Preload("Members").
		Where("owner_user_id = ?", userID).
		Order("created_at ASC").
		First(&kit).Error; err != nil {
		return nil, err
	}
	return &kit, nil
}

// Activate sets the clock fields only when the kit is still inactive. Returns
// the number of rows changed so the caller can detect a repeat activation.
func (r *KitRepository) Activate(ctx context.Context, kitID uint, activatedAt, memoryEnd, finalizationEnd time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Kit{}).
		Where("id = ? AND activated_at IS NULL", kitID).
		Updates(map[string]interface{}{
			"activated_at":               activatedAt,
			"memory_period_end_date":     memoryEnd,
			"book_finalization_end_date": finalizationEnd,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("activate kit: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *KitRepository) FindMember(ctx context.Context, kitID, userID uint) (*model.KitMember, error) {
	var member model.KitMember
	if err := r.db.WithContext(ctx).
		Where("kit_id = ? AND user_id = ?", kitID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *KitRepository) AddMember(ctx context.Context, member *model.KitMember) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("create kit member: %w", err)
	}
	return nil
}

func (r *KitRepository) RemoveMember(ctx context.Context, kitID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("kit_id = ? AND user_id = ?", kitID, userID).
		Delete(&model.KitMember{})
	if result.Error != nil {
		return fmt.Errorf("remove kit member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
