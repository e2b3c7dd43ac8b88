package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/felixgeelhaar/tandem/internal/scheduling/domain"
	sharedDomain "github.com/felixgeelhaar/tandem/internal/shared/domain"
	"github.com/google/uuid"
)

// ConflictDetector checks candidate slots against both participants'
// existing bookings. Exactly one busy-time fetch is made per
// participant, never per candidate, so a wide horizon stays at two
// round-trips.
type ConflictDetector struct {
	provider domain.BusyWindowProvider
	clock    sharedDomain.Clock
	logger   *slog.Logger
}

// NewConflictDetector creates a conflict detector.
func NewConflictDetector(provider domain.BusyWindowProvider, clock sharedDomain.Clock, logger *slog.Logger) *ConflictDetector {
	if clock == nil {
		clock = sharedDomain.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConflictDetector{
		provider: provider,
		clock:    clock,
		logger:   logger,
	}
}

// CollectBusyWindows fetches both parties' busy windows concurrently
// and returns the combined set sorted by start time.
func (d *ConflictDetector) CollectBusyWindows(
	ctx context.Context,
	userA, userB uuid.UUID,
	from, to time.Time,
) ([]domain.BusyWindow, error) {
	type fetch struct {
		windows []domain.BusyWindow
		err     error
	}

	results := make(chan fetch, 2)
	for _, userID := range []uuid.UUID{userA, userB} {
		go func(id uuid.UUID) {
			windows, err := d.provider.BusyWindows(ctx, id, from, to)
			results <- fetch{windows: windows, err: err}
		}(userID)
	}

	var combined []domain.BusyWindow
	var firstErr error
	for i := 0; i < 2; i++ {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		combined = append(combined, r.windows...)
	}
	if firstErr != nil {
		return nil, fmt.Errorf("busy-time fetch failed: %w", firstErr)
	}

	sort.Slice(combined, func(i, j int) bool { return combined[i].Start.Before(combined[j].Start) })
	return combined, nil
}

// Classify returns the severity of the worst collision between the
// candidate window [start, start+duration) and the busy set, derived
// from the colliding booking's own priority.
func (d *ConflictDetector) Classify(
	start time.Time,
	duration time.Duration,
	busy []domain.BusyWindow,
) (domain.ConflictLevel, *domain.ConflictInfo) {
	end := start.Add(duration)

	level := domain.ConflictNone
	var worst *domain.ConflictInfo
	for _, w := range busy {
		if !w.Overlaps(start, end) {
			continue
		}
		candidate := w.Priority.ConflictLevel()
		if worst != nil && candidate <= level {
			continue
		}
		level = candidate
		worst = &domain.ConflictInfo{
			BookingID:    w.BookingID,
			OwnerID:      w.OwnerID,
			OverlapStart: maxTime(start, w.Start),
			OverlapEnd:   minTime(end, w.End),
			Priority:     w.Priority,
			Reason:       fmt.Sprintf("overlaps a %s booking", w.Priority),
		}
	}
	return level, worst
}

// IsSlotAvailable reports whether neither party has an overlapping
// booking in the [start, start+duration) window.
func (d *ConflictDetector) IsSlotAvailable(
	ctx context.Context,
	userA, userB uuid.UUID,
	start time.Time,
	duration time.Duration,
) (bool, error) {
	busy, err := d.CollectBusyWindows(ctx, userA, userB, start, start.Add(duration))
	if err != nil {
		return false, err
	}
	level, _ := d.Classify(start, duration, busy)
	return level == domain.ConflictNone, nil
}

// FindAvailableSlots generates candidates from the preferences and
// returns the first count that are free for both parties, in
// chronological order.
func (d *ConflictDetector) FindAvailableSlots(
	ctx context.Context,
	userA, userB uuid.UUID,
	days []time.Weekday,
	ranges []domain.TimeRange,
	duration time.Duration,
	count int,
) ([]time.Time, error) {
	startFrom := d.clock.Now()
	candidates := GeneratePotentialSlots(days, ranges, duration, startFrom, DefaultWeeksToGenerate)
	if len(candidates) == 0 {
		return nil, nil
	}

	horizonEnd := candidates[len(candidates)-1].Add(duration)
	busy, err := d.CollectBusyWindows(ctx, userA, userB, startFrom, horizonEnd)
	if err != nil {
		return nil, err
	}

	available := make([]time.Time, 0, count)
	for _, slot := range candidates {
		level, _ := d.Classify(slot, duration, busy)
		if level != domain.ConflictNone {
			continue
		}
		available = append(available, slot)
		if len(available) == count {
			break
		}
	}

	d.logger.Debug("slot availability scan complete",
		"candidates", len(candidates),
		"available", len(available),
	)
	return available, nil
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
