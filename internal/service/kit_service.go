package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"tecelaria/internal/apperr"
	"tecelaria/internal/model"
	"tecelaria/internal/repository"
)

// KitService owns kit lifecycle, the program clock and membership rules.
type KitService struct {
	kits  *repository.KitRepository
	users *repository.UserRepository
	now   func() time.Time
}

func NewKitService(kits *repository.KitRepository, users *repository.UserRepository) *KitService {
	return &KitService{kits: kits, users: users, now: time.Now}
}

// Create persists the kit and its owner membership atomically.
func (s *KitService) Create(ctx context.Context, ownerID uint, name, description string) (*model.Kit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "kit name is required")
	}
	kit := &model.Kit{
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerUserID: ownerID,
	}
	if err := s.kits.CreateWithOwner(ctx, kit); err != nil {
		return nil, err
	}
	return s.Get(ctx, kit.ID, ownerID)
}

// Get loads a kit visible to the caller (any membership role).
func (s *KitService) Get(ctx context.Context, kitID, callerID uint) (*model.Kit, error) {
	kit, err := s.kits.FindByID(ctx, kitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "kit not found")
		}
		return nil, err
	}
	if !isMember(kit, callerID) {
		return nil, apperr.New(apperr.NotFound, "kit not found")
	}
	return kit, nil
}

// ListForUser returns every kit the user belongs to.
func (s *KitService) ListForUser(ctx context.Context, userID uint) ([]model.Kit, error) {
	return s.kits.ListForUser(ctx, userID)
}

// OwnedKit returns the caller's own kit, or nil when none exists yet.
func (s *KitService) OwnedKit(ctx context.Context, userID uint) (*model.Kit, error) {
	kit, err := s.kits.FindOwnedByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return kit, nil
}

// Activate starts the program clock exactly once. A second activation fails
// with Conflict and leaves every timestamp untouched.
func (s *KitService) Activate(ctx context.Context, kitID, callerID uint) (*model.Kit, error) {
	kit, err := s.Get(ctx, kitID, callerID)
	if err != nil {
		return nil, err
	}
	if kit.OwnerUserID != callerID {
		return nil, apperr.New(apperr.Forbidden, "only the owner can activate a kit")
	}
	if kit.ActivatedAt != nil {
		return nil, apperr.New(apperr.Conflict, "kit already activated")
	}

	activatedAt := s.now()
	memoryEnd := activatedAt.AddDate(0, 0, model.MemoryPeriodDays)
	finalizationEnd := activatedAt.AddDate(0, 0, model.BookFinalizationDays)

	affected, err := s.kits.Activate(ctx, kitID, activatedAt, memoryEnd, finalizationEnd)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Lost the race against a concurrent activation; clock stays as-is.
		return nil, apperr.New(apperr.Conflict, "kit already activated")
	}

	return s.Get(ctx, kitID, callerID)
}

// Clock derives the caller-facing program clock for a kit.
func (s *KitService) Clock(ctx context.Context, kitID, callerID uint) (ClockStatus, error) {
	kit, err := s.Get(ctx, kitID, callerID)
	if err != nil {
		return ClockStatus{}, err
	}
	return KitClock(kit, s.now()), nil
}

// AddMember invites a user by email as collaborator or viewer. Owner-only.
func (s *KitService) AddMember(ctx context.Context, kitID, actorID uint, email, role string) (*model.KitMember, error) {
	if role != model.RoleCollaborator && role != model.RoleViewer {
		return nil, apperr.Newf(apperr.Validation, "role must be %q or %q", model.RoleCollaborator, model.RoleViewer)
	}

	kit, err := s.Get(ctx, kitID, actorID)
	if err != nil {
		return nil, err
	}
	if kit.OwnerUserID != actorID {
		return nil, apperr.New(apperr.Forbidden, "only the owner can invite members")
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "no account with that email")
		}
		return nil, fmt.Errorf("find invitee: %w", err)
	}

	if _, err := s.kits.FindMember(ctx, kitID, user.ID); err == nil {
		return nil, apperr.New(apperr.Conflict, "user is already a member of this kit")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check membership: %w", err)
	}

	member := &model.KitMember{
		KitID:     kitID,
		UserID:    user.ID,
		Role:      role,
		InvitedBy: actorID,
		InvitedAt: s.now(),
	}
	if err := s.kits.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember drops a membership. The owner can never be removed; non-owners
// may only remove themselves.
func (s *KitService) RemoveMember(ctx context.Context, kitID, actorID, userID uint) error {
	kit, err := s.Get(ctx, kitID, actorID)
	if err != nil {
		return err
	}

	member, err := s.kits.FindMember(ctx, kitID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "member not found")
		}
		return fmt.Errorf("find member: %w", err)
	}
	if member.Role == model.RoleOwner {
		return apperr.New(apperr.Forbidden, "the kit owner cannot be removed")
	}
	if kit.OwnerUserID != actorID && actorID != userID {
		return apperr.New(apperr.Forbidden, "only the owner can remove other members")
	}

	return s.kits.RemoveMember(ctx, kitID, userID)
}

func isMember(kit *model.Kit, userID uint) bool {
	for _, member := range kit.Members {
		if member.UserID == userID {
			return true
		}
	}
	return false
}
