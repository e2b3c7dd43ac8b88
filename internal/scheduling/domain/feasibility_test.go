package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFulfillmentPercentage(t *testing.T) {
	assert.Equal(t, 1.0, FeasibilityResult{AvailableSlots: 4, RequestedSlots: 4}.FulfillmentPercentage())
	assert.Equal(t, 0.5, FeasibilityResult{AvailableSlots: 2, RequestedSlots: 4}.FulfillmentPercentage())
	assert.Equal(t, 0.0, FeasibilityResult{AvailableSlots: 0, RequestedSlots: 4}.FulfillmentPercentage())
	assert.Equal(t, 0.0, FeasibilityResult{AvailableSlots: 0, RequestedSlots: 0}.FulfillmentPercentage(),
		"zero requested never divides by zero")
}

func TestBookingPriorityConflictLevel(t *testing.T) {
	assert.Equal(t, ConflictMinor, PriorityHold.ConflictLevel())
	assert.Equal(t, ConflictModerate, PriorityConfirmed.ConflictLevel())
	assert.Equal(t, ConflictMajor, PriorityLocked.ConflictLevel())
}

func TestBusyWindowOverlaps(t *testing.T) {
	start := time.Date(2026, 9, 8, 18, 0, 0, 0, time.UTC)
	w := BusyWindow{Start: start, End: start.Add(time.Hour)}

	assert.True(t, w.Overlaps(start.Add(30*time.Minute), start.Add(90*time.Minute)))
	assert.True(t, w.Overlaps(start.Add(-30*time.Minute), start.Add(30*time.Minute)))
	assert.False(t, w.Overlaps(start.Add(time.Hour), start.Add(2*time.Hour)), "touching at the end is not overlap")
	assert.False(t, w.Overlaps(start.Add(-time.Hour), start), "touching at the start is not overlap")
}

func TestConflictLevelString(t *testing.T) {
	assert.Equal(t, "none", ConflictNone.String())
	assert.Equal(t, "minor", ConflictMinor.String())
	assert.Equal(t, "moderate", ConflictModerate.String())
	assert.Equal(t, "major", ConflictMajor.String())
}
