package service

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"gorm.io/gorm"

	"tecelaria/internal/apperr"
	"tecelaria/internal/model"
	"tecelaria/internal/repository"
)

// QuestionService derives answered status and per-box progress from the Memory
// table. Every question is an independent two-state machine: creating a memory
// with the question id answers it, deleting that memory reactivates it.
type QuestionService struct {
	questions *repository.QuestionRepository
}

func NewQuestionService(questions *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questions: questions}
}

// QuestionStatus is a catalog entry with the user's answered flag.
type QuestionStatus struct {
	model.Question
	Answered bool `json:"answered"`
}

// BoxProgress summarizes one box for the progress view.
type BoxProgress struct {
	Box               int `json:"box"`
	TotalQuestions    int `json:"total_questions"`
	AnsweredQuestions int `json:"answered_questions"`
	Percentage        int `json:"percentage"`
}

// WithStatus lists the full catalog annotated with the user's answered flags.
func (s *QuestionService) WithStatus(ctx context.Context, userID uint) ([]QuestionStatus, error) {
	questions, err := s.questions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	answeredIDs, err := s.questions.AnsweredIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	answered := make(map[uint]bool, len(answeredIDs))
	for _, id := range answeredIDs {
		answered[id] = true
	}

	statuses := make([]QuestionStatus, len(questions))
	for i, q := range questions {
		statuses[i] = QuestionStatus{Question: q, Answered: answered[q.ID]}
	}
	return statuses, nil
}

// Random picks uniformly among the user's unanswered questions, optionally
// inside one box. Returns nil when the pool is empty.
func (s *QuestionService) Random(ctx context.Context, userID uint, box *int) (*model.Question, error) {
	if box != nil && (*box < 1 || *box > model.BoxCount) {
		return nil, apperr.Newf(apperr.Validation, "box must be between 1 and %d", model.BoxCount)
	}
	pool, err := s.questions.ListUnanswered(ctx, userID, box)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}
	pick := pool[rand.Intn(len(pool))]
	return &pick, nil
}

// Progress returns one entry per box with the answered percentage rounded to
// the nearest integer.
func (s *QuestionService) Progress(ctx context.Context, userID uint) ([]BoxProgress, error) {
	statuses, err := s.WithStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress := make([]BoxProgress, model.BoxCount)
	for i := range progress {
		progress[i] = BoxProgress{Box: i + 1, TotalQuestions: model.BoxSizes[i]}
	}
	for _, status := range statuses {
		if status.Answered {
			progress[status.Box-1].AnsweredQuestions++
		}
	}
	for i := range progress {
		if progress[i].TotalQuestions > 0 {
			ratio := float64(progress[i].AnsweredQuestions) / float64(progress[i].TotalQuestions)
			progress[i].Percentage = int(math.Round(ratio * 100))
		}
	}
	return progress, nil
}

// AnsweredIDs lists the question ids the user has already answered.
func (s *QuestionService) AnsweredIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.questions.AnsweredIDs(ctx, userID)
}

// Get loads a catalog question.
func (s *QuestionService) Get(ctx context.Context, questionID uint) (*model.Question, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "question not found")
		}
		return nil, err
	}
	return question, nil
}
