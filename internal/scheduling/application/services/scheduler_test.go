package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/tandem/internal/scheduling/domain"
	sharedDomain "github.com/felixgeelhaar/tandem/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 2026-09-07, 08:00 UTC.
var testNow = time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)

func newTestScheduler(provider domain.BusyWindowProvider) *Scheduler {
	clock := sharedDomain.FixedClock{Instant: testNow}
	detector := NewConflictDetector(provider, clock, nil)
	return NewScheduler(detector, clock, DefaultSchedulerConfig(), nil)
}

func testRequest(requester, target uuid.UUID) domain.SchedulingRequest {
	return domain.SchedulingRequest{
		RequesterID:            requester,
		TargetID:               target,
		PreferredDays:          []string{"tuesday", "thursday"},
		PreferredTimeRanges:    []string{"17:00-19:00"},
		TotalSessions:          3,
		SessionDurationMinutes: 60,
		EarliestStart:          testNow,
	}
}

func TestGenerateAppointmentSlots(t *testing.T) {
	requester, target := uuid.New(), uuid.New()

	t.Run("free calendars yield a chronological conflict-free series", func(t *testing.T) {
		scheduler := newTestScheduler(&stubProvider{})

		proposals, err := scheduler.GenerateAppointmentSlots(context.Background(), testRequest(requester, target))
		require.NoError(t, err)
		require.Len(t, proposals, 3)

		// Tue Sep 8, Thu Sep 10, Tue Sep 15, all at 17:00.
		assert.Equal(t, time.Date(2026, 9, 8, 17, 0, 0, 0, time.UTC), proposals[0].ScheduledAt)
		assert.Equal(t, time.Date(2026, 9, 10, 17, 0, 0, 0, time.UTC), proposals[1].ScheduledAt)
		assert.Equal(t, time.Date(2026, 9, 15, 17, 0, 0, 0, time.UTC), proposals[2].ScheduledAt)

		for i, p := range proposals {
			assert.Equal(t, i+1, p.SessionNumber)
			assert.Equal(t, domain.ConflictNone, p.ConflictLevel)
			assert.Nil(t, p.Conflict)
			assert.Equal(t, 1.0, p.Confidence)
			assert.Equal(t, time.Hour, p.Duration)
			assert.Equal(t, requester, p.OrganizerID)
			assert.Equal(t, target, p.ParticipantID)
			assert.Empty(t, p.Note)
		}
	})

	t.Run("skill exchange alternates roles between sessions", func(t *testing.T) {
		scheduler := newTestScheduler(&stubProvider{})
		req := testRequest(requester, target)
		req.SkillExchange = true

		proposals, err := scheduler.GenerateAppointmentSlots(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, proposals, 3)

		assert.Equal(t, requester, proposals[0].OrganizerID)
		assert.Equal(t, target, proposals[1].OrganizerID)
		assert.Equal(t, requester, proposals[2].OrganizerID)
	})

	t.Run("booked slots are passed over while free ones remain", func(t *testing.T) {
		firstTuesday := time.Date(2026, 9, 8, 17, 0, 0, 0, time.UTC)
		provider := &stubProvider{windows: map[uuid.UUID][]domain.BusyWindow{
			target: {busyAt(target, firstTuesday, time.Hour, domain.PriorityConfirmed)},
		}}
		scheduler := newTestScheduler(provider)

		proposals, err := scheduler.GenerateAppointmentSlots(context.Background(), testRequest(requester, target))
		require.NoError(t, err)
		require.Len(t, proposals, 3)
		for _, p := range proposals {
			assert.Equal(t, domain.ConflictNone, p.ConflictLevel)
			assert.NotEqual(t, firstTuesday, p.ScheduledAt)
		}
	})

	t.Run("minimum spacing is honored", func(t *testing.T) {
		scheduler := newTestScheduler(&stubProvider{})
		req := testRequest(requester, target)
		req.MinDaysBetweenSessions = 6

		proposals, err := scheduler.GenerateAppointmentSlots(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, proposals, 3)
		for i := 1; i < len(proposals); i++ {
			gap := daysBetween(proposals[i-1].ScheduledAt, proposals[i].ScheduledAt)
			assert.GreaterOrEqual(t, gap, 6)
		}
	})

	t.Run("invalid preferences yield an empty series, not an error", func(t *testing.T) {
		scheduler := newTestScheduler(&stubProvider{})
		req := testRequest(requester, target)
		req.PreferredDays = []string{"someday"}

		proposals, err := scheduler.GenerateAppointmentSlots(context.Background(), req)
		require.NoError(t, err)
		assert.Empty(t, proposals)
	})

	t.Run("cancellation surfaces as partial result with the context error", func(t *testing.T) {
		scheduler := newTestScheduler(&stubProvider{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		proposals, err := scheduler.GenerateAppointmentSlots(ctx, testRequest(requester, target))
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotNil(t, proposals)
	})
}

func TestValidateFeasibility(t *testing.T) {
	requester, target := uuid.New(), uuid.New()

	t.Run("feasible when everything fits", func(t *testing.T) {
		scheduler := newTestScheduler(&stubProvider{})

		result, err := scheduler.ValidateFeasibility(context.Background(), testRequest(requester, target))
		require.NoError(t, err)
		assert.True(t, result.Feasible)
		assert.Equal(t, 3, result.AvailableSlots)
		assert.Equal(t, 3, result.RequestedSlots)
		assert.Equal(t, 1.0, result.FulfillmentPercentage())
		assert.Empty(t, result.Warnings)
	})

	t.Run("bounded horizon caps the available count", func(t *testing.T) {
		scheduler := newTestScheduler(&stubProvider{})
		req := testRequest(requester, target)
		req.TotalSessions = 10
		// Only one week: Tue Sep 8 and Thu Sep 10 fit.
		end := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
		req.LatestEnd = &end

		result, err := scheduler.ValidateFeasibility(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, result.Feasible)
		assert.Equal(t, 2, result.AvailableSlots)
		assert.Equal(t, 0.2, result.FulfillmentPercentage())
		require.NotEmpty(t, result.Warnings)
		assert.Contains(t, result.Warnings[0], "only 2 of 10 requested sessions")
		assert.NotEmpty(t, result.Recommendations)
	})

	t.Run("conflicting bookings are reported", func(t *testing.T) {
		firstTuesday := time.Date(2026, 9, 8, 17, 0, 0, 0, time.UTC)
		provider := &stubProvider{windows: map[uuid.UUID][]domain.BusyWindow{
			requester: {busyAt(requester, firstTuesday, time.Hour, domain.PriorityLocked)},
		}}
		scheduler := newTestScheduler(provider)

		result, err := scheduler.ValidateFeasibility(context.Background(), testRequest(requester, target))
		require.NoError(t, err)
		require.NotEmpty(t, result.Conflicts)
		assert.Equal(t, domain.PriorityLocked, result.Conflicts[0].Priority)
	})

	t.Run("invalid preferences come back as warnings", func(t *testing.T) {
		scheduler := newTestScheduler(&stubProvider{})
		req := testRequest(requester, target)
		req.PreferredTimeRanges = []string{"9am-11am"}

		result, err := scheduler.ValidateFeasibility(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, result.Feasible)
		assert.NotEmpty(t, result.Warnings)
	})
}

func TestGenerateAlternatives(t *testing.T) {
	requester, target := uuid.New(), uuid.New()
	scheduler := newTestScheduler(&stubProvider{})

	options, err := scheduler.GenerateAlternatives(context.Background(), testRequest(requester, target))
	require.NoError(t, err)
	// Five add-day options, one widen, one extend.
	require.Len(t, options, 7)

	for i := 1; i < len(options); i++ {
		assert.LessOrEqual(t, options[i-1].Deviation, options[i].Deviation, "sorted by deviation ascending")
	}
	assert.Contains(t, options[0].Description, "preferred days")
	assert.InDelta(t, 0.85, options[0].Confidence, 0.001)

	last := options[len(options)-1]
	assert.Contains(t, last.Description, "extend the scheduling horizon")
	require.NotNil(t, last.Request.LatestEnd)
}

func TestGenerateAlternativesLateEveningWindow(t *testing.T) {
	requester, target := uuid.New(), uuid.New()
	scheduler := newTestScheduler(&stubProvider{})
	req := testRequest(requester, target)
	req.PreferredTimeRanges = []string{"20:00-23:45"}

	options, err := scheduler.GenerateAlternatives(context.Background(), req)
	require.NoError(t, err)

	var widen *domain.AlternativeOption
	for i := range options {
		if strings.Contains(options[i].Description, "widen each preferred time window") {
			widen = &options[i]
		}
	}
	require.NotNil(t, widen)

	// Widening clamps the end to midnight; the variant must stay a
	// valid request rather than degrading to zero available slots.
	assert.Equal(t, []string{"19:30-24:00"}, widen.Request.PreferredTimeRanges)
	assert.Equal(t, 3, widen.AvailableSlots)
}

func TestSelectSeriesDistributeEvenly(t *testing.T) {
	requester, target := uuid.New(), uuid.New()
	scheduler := newTestScheduler(&stubProvider{})
	req := testRequest(requester, target)
	req.PreferredDays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}
	req.TotalSessions = 4
	req.DistributeEvenly = true

	proposals, err := scheduler.GenerateAppointmentSlots(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, proposals, 4)

	// Spread selections should not all land in the same week.
	firstWeek := startOfWeek(proposals[0].ScheduledAt)
	lastWeek := startOfWeek(proposals[len(proposals)-1].ScheduledAt)
	assert.True(t, lastWeek.After(firstWeek))
}

func TestSelectSeriesDistributeEvenlyGrownPool(t *testing.T) {
	requester, target := uuid.New(), uuid.New()
	scheduler := newTestScheduler(&stubProvider{})
	req := testRequest(requester, target)
	req.PreferredDays = []string{"tuesday"}
	req.TotalSessions = 2
	req.DistributeEvenly = true

	proposals, err := scheduler.GenerateAppointmentSlots(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, proposals, 2)

	// One candidate per week forces the pool horizon out to eight
	// weeks to reach the 3x pool. The two sessions still spread over
	// the four-week window they occupy, not the grown pool: Tue Sep 8
	// and Tue Sep 22, not a session a month out.
	assert.Equal(t, time.Date(2026, 9, 8, 17, 0, 0, 0, time.UTC), proposals[0].ScheduledAt)
	assert.Equal(t, time.Date(2026, 9, 22, 17, 0, 0, 0, time.UTC), proposals[1].ScheduledAt)
}
