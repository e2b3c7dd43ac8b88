package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SchedulingRequest captures a user's loose preferences for a series of
// sessions. It is a request value object with no persistent identity.
type SchedulingRequest struct {
	RequesterID            uuid.UUID
	TargetID               uuid.UUID
	PreferredDays          []string
	PreferredTimeRanges    []string
	TotalSessions          int
	SessionDurationMinutes int
	EarliestStart          time.Time
	LatestEnd              *time.Time
	SkillExchange          bool
	MinDaysBetweenSessions int
	MaxDaysBetweenSessions int
	DistributeEvenly       bool
}

// SessionDuration returns the per-session duration.
func (r SchedulingRequest) SessionDuration() time.Duration {
	return time.Duration(r.SessionDurationMinutes) * time.Minute
}

// Validate checks request invariants plus the raw preferences, returning
// every problem found rather than stopping at the first.
func (r SchedulingRequest) Validate() ValidationResult {
	result := ValidatePreferences(r.PreferredDays, r.PreferredTimeRanges)
	errs := result.Errors

	if r.TotalSessions < 1 {
		errs = append(errs, fmt.Sprintf("total sessions must be at least 1, got %d", r.TotalSessions))
	}
	if r.SessionDurationMinutes <= 0 {
		errs = append(errs, fmt.Sprintf("session duration must be positive, got %d minutes", r.SessionDurationMinutes))
	}
	if r.MinDaysBetweenSessions < 0 {
		errs = append(errs, "minimum days between sessions cannot be negative")
	}
	if r.MaxDaysBetweenSessions > 0 && r.MinDaysBetweenSessions > r.MaxDaysBetweenSessions {
		errs = append(errs, fmt.Sprintf(
			"minimum days between sessions (%d) exceeds maximum (%d)",
			r.MinDaysBetweenSessions, r.MaxDaysBetweenSessions))
	}
	if r.LatestEnd != nil && !r.LatestEnd.After(r.EarliestStart) {
		errs = append(errs, "latest end date must be after earliest start date")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
