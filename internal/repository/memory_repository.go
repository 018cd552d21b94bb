package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tecelaria/internal/model"
)

// MemoryRepository handles CRUD for memories and their content records.
type MemoryRepository struct {
	db *gorm.DB
}

func NewMemoryRepository(db *gorm.DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

// CreateWithRecord persists a memory and its first content record in one
// transaction so a memory never exists without content.
func (r *MemoryRepository) CreateWithRecord(ctx context.Context, memory *model.Memory, record *model.MemoryRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(memory).Error; err != nil {
			return fmt.Errorf("create memory: %w", err)
		}
		record.MemoryID = memory.ID
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("create memory record: %w", err)
		}
		return nil
	})
}

func (r *MemoryRepository) AddRecord(ctx context.Context, record *model.MemoryRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("create memory record: %w", err)
	}
	return nil
}

// UpdateRecordContent stores a transcription on an existing record.
func (r *MemoryRepository) UpdateRecordContent(ctx context.Context, record *model.MemoryRecord) error {
	if err := r.db.WithContext(ctx).Model(record).Update("content", record.Content).Error; err != nil {
		return fmt.Errorf("update record content: %w", err)
	}
	return nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, userID, memoryID uint) (*model.Memory, error) {
	var memory model.Memory
	if err := r.db.WithContext(ctx).Preload("Records").
		Where("user_id = ? AND id = ?", userID, memoryID).
		First(&memory).Error; err != nil {
		return nil, err
	}
	return &memory, nil
}

// ListByUser returns the user's memories, newest first, optionally filtered by
// category.
func (r *MemoryRepository) ListByUser(ctx context.Context, userID uint, categoryID *uint) ([]model.Memory, error) {
	query := r.db.WithContext(ctx).Preload("Records").Where("user_id = ?", userID)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	var memories []model.Memory
	if err := query.Order("created_at DESC").Find(&memories).Error; err != nil {
		return nil, err
	}
	return memories, nil
}

func (r *MemoryRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Memory{}).
		Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count memories: %w", err)
	}
	return count, nil
}

// UpdateEnrichment stores the fields derived by the AI adapter.
func (r *MemoryRepository) UpdateEnrichment(ctx context.Context, memory *model.Memory) error {
	if err := r.db.WithContext(ctx).Model(memory).
		Select("title", "summary", "themes", "people_mentioned", "period_mentioned").
		Updates(memory).Error; err != nil {
		return fmt.Errorf("update enrichment: %w", err)
	}
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, memory *model.Memory) error {
	if err := r.db.WithContext(ctx).Save(memory).Error; err != nil {
		return fmt.Errorf("update memory: %w", err)
	}
	return nil
}

// Delete removes a memory and its records. Deleting a memory tied to a question
// reactivates that question (answered status is derived, nothing else to undo).
func (r *MemoryRepository) Delete(ctx context.Context, userID, memoryID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND id = ?", userID, memoryID).Delete(&model.Memory{})
		if result.Error != nil {
			return fmt.Errorf("delete memory: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("memory_id = ?", memoryID).Delete(&model.MemoryRecord{}).Error; err != nil {
			return fmt.Errorf("delete memory records: %w", err)
		}
		return nil
	})
}
