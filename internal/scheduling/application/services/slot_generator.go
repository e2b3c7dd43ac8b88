package services

import (
	"sort"
	"time"

	"github.com/felixgeelhaar/tandem/internal/scheduling/domain"
)

// DefaultWeeksToGenerate is the base candidate horizon.
const DefaultWeeksToGenerate = 4

// GeneratePotentialSlots expands parsed preferences into concrete
// candidate start times over a rolling horizon: for each of the given
// weeks starting at the week containing startFrom, for each selected
// weekday, for each time range, the date-time at the range's start.
// Slots strictly before startFrom are excluded; ranges too short for
// one session yield nothing. Results are deduplicated and ascending.
// Conflict checking is not done here.
func GeneratePotentialSlots(
	days []time.Weekday,
	ranges []domain.TimeRange,
	duration time.Duration,
	startFrom time.Time,
	weeks int,
) []time.Time {
	if weeks <= 0 {
		weeks = DefaultWeeksToGenerate
	}

	base := startOfWeek(startFrom)
	seen := make(map[time.Time]bool)
	slots := make([]time.Time, 0, weeks*len(days)*len(ranges))

	for week := 0; week < weeks; week++ {
		weekStart := base.AddDate(0, 0, 7*week)
		for _, day := range days {
			dayStart := weekStart.AddDate(0, 0, daysFromMonday(day))
			for _, r := range ranges {
				if time.Duration(r.DurationMinutes())*time.Minute < duration {
					continue
				}
				slot := dayStart.Add(r.Start)
				if slot.Before(startFrom) || seen[slot] {
					continue
				}
				seen[slot] = true
				slots = append(slots, slot)
			}
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
	return slots
}

// startOfWeek returns midnight of the Monday of the week containing t.
func startOfWeek(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -daysFromMonday(t.Weekday()))
}

// daysFromMonday returns the day's offset within a Monday-first week.
func daysFromMonday(day time.Weekday) int {
	return (int(day) - int(time.Monday) + 7) % 7
}

// daysBetween counts whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	aMidnight := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, a.Location())
	bMidnight := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, b.Location())
	return int(bMidnight.Sub(aMidnight).Hours() / 24)
}
