package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tecelaria/internal/model"
	"tecelaria/internal/repository"
)

// DigestService is the daily program-clock sweep. It reports kits hitting the
// milestone days (preview unlock at 80, capture window close at 90) so the
// notification pipeline downstream can act on them.
type DigestService struct {
	kits   *repository.KitRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewDigestService(kits *repository.KitRepository, logger *zap.Logger) *DigestService {
	return &DigestService{kits: kits, logger: logger, now: time.Now}
}

// Milestone is one kit crossing a program-day threshold.
type Milestone struct {
	KitID       uint
	OwnerUserID uint
	ProgramDay  int
}

// Run scans activated kits and returns today's milestone crossings.
func (s *DigestService) Run(ctx context.Context) ([]Milestone, error) {
	kits, err := s.kits.ListActivated(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var milestones []Milestone
	for _, kit := range kits {
		day := ProgramDay(*kit.ActivatedAt, now)
		if day != model.PreviewUnlockDay && day != model.MemoryPeriodDays {
			continue
		}
		milestones = append(milestones, Milestone{
			KitID:       kit.ID,
			OwnerUserID: kit.OwnerUserID,
			ProgramDay:  day,
		})
		s.logger.Info("program clock milestone",
			zap.Uint("kit_id", kit.ID),
			zap.Uint("owner_user_id", kit.OwnerUserID),
			zap.Int("program_day", day))
	}
	return milestones, nil
}
