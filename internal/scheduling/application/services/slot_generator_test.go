package services

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/tandem/internal/scheduling/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRange(t *testing.T, s string) domain.TimeRange {
	t.Helper()
	r, err := domain.ParseTimeRange(s)
	require.NoError(t, err)
	return r
}

func TestGeneratePotentialSlots(t *testing.T) {
	// 2026-09-07 is a Monday.
	monday := time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)

	t.Run("one slot per week per day per range", func(t *testing.T) {
		slots := GeneratePotentialSlots(
			[]time.Weekday{time.Monday},
			[]domain.TimeRange{mustRange(t, "09:00-10:00")},
			time.Hour,
			monday,
			4,
		)

		require.Len(t, slots, 4)
		for i, slot := range slots {
			assert.Equal(t, time.Monday, slot.Weekday())
			assert.Equal(t, 9, slot.Hour())
			assert.Equal(t, monday.AddDate(0, 0, 7*i).Truncate(24*time.Hour).Add(9*time.Hour), slot)
		}
	})

	t.Run("slots before startFrom are excluded", func(t *testing.T) {
		// Wednesday afternoon: Monday and Wednesday-morning slots of
		// the current week are already gone.
		wednesday := time.Date(2026, 9, 9, 15, 0, 0, 0, time.UTC)
		slots := GeneratePotentialSlots(
			[]time.Weekday{time.Monday, time.Wednesday},
			[]domain.TimeRange{mustRange(t, "09:00-11:00")},
			time.Hour,
			wednesday,
			2,
		)

		require.Len(t, slots, 2)
		for _, slot := range slots {
			assert.False(t, slot.Before(wednesday))
		}
	})

	t.Run("ranges shorter than the session yield nothing", func(t *testing.T) {
		slots := GeneratePotentialSlots(
			[]time.Weekday{time.Monday},
			[]domain.TimeRange{mustRange(t, "09:00-09:30")},
			time.Hour,
			monday,
			4,
		)
		assert.Empty(t, slots)
	})

	t.Run("results are ascending and deduplicated", func(t *testing.T) {
		slots := GeneratePotentialSlots(
			[]time.Weekday{time.Friday, time.Tuesday},
			[]domain.TimeRange{mustRange(t, "18:00-20:00"), mustRange(t, "18:00-19:00")},
			time.Hour,
			monday,
			3,
		)

		// Both ranges start at 18:00, so each day contributes one slot.
		require.Len(t, slots, 6)
		for i := 1; i < len(slots); i++ {
			assert.True(t, slots[i-1].Before(slots[i]))
		}
	})

	t.Run("empty days or ranges yield nothing", func(t *testing.T) {
		assert.Empty(t, GeneratePotentialSlots(nil, []domain.TimeRange{mustRange(t, "09:00-10:00")}, time.Hour, monday, 4))
		assert.Empty(t, GeneratePotentialSlots([]time.Weekday{time.Monday}, nil, time.Hour, monday, 4))
	})
}

func TestStartOfWeek(t *testing.T) {
	// Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2026, 9, 13, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), startOfWeek(sunday))

	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, startOfWeek(monday))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 9, 7, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 9, 9, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, daysBetween(a, b), "calendar days, not 24h blocks")
	assert.Equal(t, 0, daysBetween(a, a))
}
