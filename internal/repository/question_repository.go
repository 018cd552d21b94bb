package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tecelaria/internal/model"
)

// QuestionRepository reads the seeded question catalog and the derived
// answered-question set. The Memory table is the single source of truth for
// answered status; no flag is persisted on questions.
type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) ListAll(ctx context.Context) ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.WithContext(ctx).Order("box ASC, number ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *QuestionRepository) GetByID(ctx context.Context, id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// AnsweredIDs returns the distinct question ids the user has answered, derived
// from memories with a non-null question reference.
func (r *QuestionRepository) AnsweredIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.Memory{}).
		Distinct("question_id").
		Where("user_id = ? AND question_id IS NOT NULL", userID).
		Pluck("question_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list answered question ids: %w", err)
	}
	return ids, nil
}

// ListUnanswered returns the questions the user has not answered, optionally
// restricted to one box.
func (r *QuestionRepository) ListUnanswered(ctx context.Context, userID uint, box *int) ([]model.Question, error) {
	answered := r.db.WithContext(ctx).Model(&model.Memory{}).
		Select("question_id").
		Where("user_id = ? AND question_id IS NOT NULL", userID)

	query := r.db.WithContext(ctx).Where("id NOT IN (?)", answered)
	if box != nil {
		query = query.Where("box = ?", *box)
	}

	var questions []model.Question
	if err := query.Order("box ASC, number ASC").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list unanswered questions: %w", err)
	}
	return questions, nil
}
