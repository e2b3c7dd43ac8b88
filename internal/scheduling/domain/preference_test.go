package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRange(t *testing.T) {
	t.Run("parses a valid range", func(t *testing.T) {
		r, err := ParseTimeRange("18:00-20:00")
		require.NoError(t, err)
		assert.Equal(t, 18*time.Hour, r.Start)
		assert.Equal(t, 20*time.Hour, r.End)
		assert.Equal(t, 120, r.DurationMinutes())
	})

	t.Run("round-trips through String", func(t *testing.T) {
		r, err := ParseTimeRange("09:30-17:45")
		require.NoError(t, err)
		assert.Equal(t, "09:30-17:45", r.String())
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		_, err := ParseTimeRange("20:00-18:00")
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("rejects zero-length range", func(t *testing.T) {
		_, err := ParseTimeRange("18:00-18:00")
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("accepts 24:00 as the end of the day", func(t *testing.T) {
		r, err := ParseTimeRange("18:00-24:00")
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, r.End)
		assert.Equal(t, "18:00-24:00", r.String())
	})

	t.Run("24:00 is only valid as an end", func(t *testing.T) {
		_, err := ParseTimeRange("24:00-24:00")
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, input := range []string{"", "18:00", "6pm-8pm", "25:00-26:00", "24:30-25:00", "18:60-19:00", "18-20", "18:00 - 20:00"} {
			_, err := ParseTimeRange(input)
			assert.ErrorIs(t, err, ErrMalformedTimeRange, "input %q", input)
		}
	})
}

func TestTimeRangeContains(t *testing.T) {
	r, err := ParseTimeRange("18:00-20:00")
	require.NoError(t, err)

	assert.True(t, r.Contains(19*time.Hour))
	assert.True(t, r.Contains(18*time.Hour), "start is inclusive")
	assert.False(t, r.Contains(20*time.Hour), "end is exclusive")
	assert.False(t, r.Contains(20*time.Hour+30*time.Minute))
}

func TestTimeRangeOverlapsWith(t *testing.T) {
	a, err := ParseTimeRange("09:00-10:00")
	require.NoError(t, err)

	b, err := ParseTimeRange("09:30-10:30")
	require.NoError(t, err)
	assert.True(t, a.OverlapsWith(b))
	assert.True(t, b.OverlapsWith(a))

	touching, err := ParseTimeRange("10:00-11:00")
	require.NoError(t, err)
	assert.False(t, a.OverlapsWith(touching), "touching ranges do not overlap")
	assert.False(t, touching.OverlapsWith(a))
}

func TestTimeRangeWiden(t *testing.T) {
	r, err := ParseTimeRange("09:00-10:00")
	require.NoError(t, err)

	widened := r.Widen(30 * time.Minute)
	assert.Equal(t, "08:30-10:30", widened.String())

	early, err := ParseTimeRange("00:15-23:50")
	require.NoError(t, err)
	clamped := early.Widen(30 * time.Minute)
	assert.Equal(t, time.Duration(0), clamped.Start)
	assert.Equal(t, 24*time.Hour, clamped.End)

	// A widened range clamped to midnight must survive the string
	// round-trip, or every relaxed variant of a late-evening
	// preference would be rejected.
	late, err := ParseTimeRange("20:00-23:45")
	require.NoError(t, err)
	reparsed, err := ParseTimeRange(late.Widen(30 * time.Minute).String())
	require.NoError(t, err)
	assert.Equal(t, 19*time.Hour+30*time.Minute, reparsed.Start)
	assert.Equal(t, 24*time.Hour, reparsed.End)
}

func TestParseWeekdays(t *testing.T) {
	t.Run("case-insensitive with whitespace", func(t *testing.T) {
		days := ParseWeekdays([]string{"Monday", " WEDNESDAY ", "friday"})
		assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, days)
	})

	t.Run("drops unknown names", func(t *testing.T) {
		days := ParseWeekdays([]string{"monday", "funday"})
		assert.Equal(t, []time.Weekday{time.Monday}, days)
	})

	t.Run("deduplicates and orders Sunday first", func(t *testing.T) {
		days := ParseWeekdays([]string{"saturday", "sunday", "saturday"})
		assert.Equal(t, []time.Weekday{time.Sunday, time.Saturday}, days)
	})
}

func TestValidatePreferences(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		result := ValidatePreferences([]string{"tuesday"}, []string{"18:00-20:00"})
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("aggregates every problem", func(t *testing.T) {
		result := ValidatePreferences([]string{"funday"}, []string{"25:00-26:00"})
		assert.False(t, result.Valid)
		// Unknown day, no valid day, bad range, no valid range.
		assert.Len(t, result.Errors, 4)
	})

	t.Run("empty input is invalid, not a panic", func(t *testing.T) {
		result := ValidatePreferences(nil, nil)
		assert.False(t, result.Valid)
		assert.Len(t, result.Errors, 2)
	})
}

func TestSchedulingRequestValidate(t *testing.T) {
	base := SchedulingRequest{
		PreferredDays:          []string{"monday"},
		PreferredTimeRanges:    []string{"18:00-20:00"},
		TotalSessions:          3,
		SessionDurationMinutes: 60,
		EarliestStart:          time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
	}

	t.Run("valid request", func(t *testing.T) {
		assert.True(t, base.Validate().Valid)
	})

	t.Run("collects request-level problems", func(t *testing.T) {
		req := base
		req.TotalSessions = 0
		req.SessionDurationMinutes = -5
		req.MinDaysBetweenSessions = 5
		req.MaxDaysBetweenSessions = 2

		result := req.Validate()
		assert.False(t, result.Valid)
		assert.Len(t, result.Errors, 3)
	})

	t.Run("latest end must follow earliest start", func(t *testing.T) {
		req := base
		end := req.EarliestStart.Add(-time.Hour)
		req.LatestEnd = &end
		assert.False(t, req.Validate().Valid)
	})
}
