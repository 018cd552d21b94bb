package service

import (
	"context"
	"time"

	"tecelaria/internal/model"
	"tecelaria/internal/repository"
)

// DashboardService assembles the aggregate the home screen renders: program
// clock, per-box progress and memory totals in one call.
type DashboardService struct {
	kits      *KitService
	questions *QuestionService
	memories  *repository.MemoryRepository
	now       func() time.Time
}

func NewDashboardService(kits *KitService, questions *QuestionService, memories *repository.MemoryRepository) *DashboardService {
	return &DashboardService{kits: kits, questions: questions, memories: memories, now: time.Now}
}

// Dashboard is the aggregate payload.
type Dashboard struct {
	Kit           *model.Kit    `json:"kit,omitempty"`
	Clock         ClockStatus   `json:"clock"`
	Progress      []BoxProgress `json:"progress"`
	TotalMemories int64         `json:"total_memories"`
}

// ForUser builds the dashboard. A user without a kit still gets progress and
// totals; the clock reads as not activated.
func (s *DashboardService) ForUser(ctx context.Context, userID uint) (*Dashboard, error) {
	dashboard := &Dashboard{}

	kit, err := s.kits.OwnedKit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if kit != nil {
		dashboard.Kit = kit
		dashboard.Clock = KitClock(kit, s.now())
	}

	progress, err := s.questions.Progress(ctx, userID)
	if err != nil {
		return nil, err
	}
	dashboard.Progress = progress

	total, err := s.memories.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	dashboard.TotalMemories = total

	return dashboard, nil
}
