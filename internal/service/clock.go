package service

import (
	"time"

	"tecelaria/internal/model"
)

const day = 24 * time.Hour

// ProgramDay returns the 1-based day count since activation, minimum 1.
func ProgramDay(activatedAt, now time.Time) int {
	if now.Before(activatedAt) {
		return 1
	}
	return int(now.Sub(activatedAt)/day) + 1
}

// DaysRemaining counts whole days until end, never negative. A partial day
// still counts as one remaining day.
func DaysRemaining(end, now time.Time) int {
	if !now.Before(end) {
		return 0
	}
	remaining := end.Sub(now)
	days := int(remaining / day)
	if remaining%day > 0 {
		days++
	}
	return days
}

// ClockStatus is the program-clock view derived from a kit's activation.
type ClockStatus struct {
	Activated            bool       `json:"activated"`
	ActivatedAt          *time.Time `json:"activated_at,omitempty"`
	ProgramDay           int        `json:"program_day"`
	MemoryDaysRemaining  int        `json:"memory_days_remaining"`
	FinalizationStarted  bool       `json:"finalization_started"`
	FinalizationDaysLeft int        `json:"finalization_days_left"`
	PreviewEnabled       bool       `json:"preview_enabled"`
}

// KitClock derives the full clock view. Before activation everything reads
// zero; before program day 80 the finalization countdown reads "not started"
// even though its end date is already computed.
func KitClock(kit *model.Kit, now time.Time) ClockStatus {
	if kit == nil || kit.ActivatedAt == nil {
		return ClockStatus{}
	}

	status := ClockStatus{
		Activated:   true,
		ActivatedAt: kit.ActivatedAt,
		ProgramDay:  ProgramDay(*kit.ActivatedAt, now),
	}
	if kit.MemoryPeriodEndDate != nil {
		status.MemoryDaysRemaining = DaysRemaining(*kit.MemoryPeriodEndDate, now)
	}
	status.PreviewEnabled = status.ProgramDay >= model.PreviewUnlockDay
	status.FinalizationStarted = status.ProgramDay >= model.PreviewUnlockDay
	if status.FinalizationStarted && kit.BookFinalizationEndDate != nil {
		status.FinalizationDaysLeft = DaysRemaining(*kit.BookFinalizationEndDate, now)
	}
	return status
}
