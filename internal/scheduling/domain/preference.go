package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTimeRange   = errors.New("time range start must be before end")
	ErrMalformedTimeRange = errors.New("time range must match HH:mm-HH:mm")
)

// weekdayNames maps lowercase English day names to weekdays.
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// TimeRange is a time-of-day window expressed as offsets from midnight.
type TimeRange struct {
	Start time.Duration
	End   time.Duration
}

// NewTimeRange creates a time range, enforcing start < end.
func NewTimeRange(start, end time.Duration) (TimeRange, error) {
	if start >= end {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// ParseTimeRange parses a single "HH:mm-HH:mm" 24-hour range.
func ParseTimeRange(s string) (TimeRange, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrMalformedTimeRange, s)
	}
	start, err := parseTimeOfDay(parts[0])
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrMalformedTimeRange, s)
	}
	end, err := parseTimeOfDay(parts[1])
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrMalformedTimeRange, s)
	}
	if start >= end {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
	return TimeRange{Start: start, End: end}, nil
}

// parseTimeOfDay parses a strict "HH:mm" token into an offset from
// midnight. "24:00" is the end-of-day token, so ranges like
// "18:00-24:00" (and widened ranges clamped to the day) stay valid;
// as a start it always fails the start < end invariant.
func parseTimeOfDay(s string) (time.Duration, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrMalformedTimeRange
	}
	var hh, mm int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &hh, &mm); err != nil {
		return 0, ErrMalformedTimeRange
	}
	if hh < 0 || hh > 24 || mm < 0 || mm > 59 || (hh == 24 && mm != 0) {
		return 0, ErrMalformedTimeRange
	}
	return time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute, nil
}

// DurationMinutes returns the range length in minutes.
func (t TimeRange) DurationMinutes() int {
	return int((t.End - t.Start).Minutes())
}

// Contains checks if a time-of-day offset falls within the range.
func (t TimeRange) Contains(offset time.Duration) bool {
	return offset >= t.Start && offset < t.End
}

// OverlapsWith checks if two ranges overlap. Touching ranges do not.
func (t TimeRange) OverlapsWith(other TimeRange) bool {
	return t.Start < other.End && other.Start < t.End
}

// Widen expands the range by margin on both sides, clamped to the day.
func (t TimeRange) Widen(margin time.Duration) TimeRange {
	start := t.Start - margin
	if start < 0 {
		start = 0
	}
	end := t.End + margin
	if end > 24*time.Hour {
		end = 24 * time.Hour
	}
	return TimeRange{Start: start, End: end}
}

// String formats the range back to "HH:mm-HH:mm".
func (t TimeRange) String() string {
	return fmt.Sprintf("%s-%s", formatTimeOfDay(t.Start), formatTimeOfDay(t.End))
}

func formatTimeOfDay(offset time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(offset.Hours()), int(offset.Minutes())%60)
}

// ParseWeekdays matches day names case-insensitively against the seven
// weekday names. Unrecognized names are dropped; ValidatePreferences
// reports them. The result is deduplicated and ordered Sunday first.
func ParseWeekdays(names []string) []time.Weekday {
	seen := make(map[time.Weekday]bool, len(names))
	for _, name := range names {
		day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		seen[day] = true
	}
	days := make([]time.Weekday, 0, len(seen))
	for day := time.Sunday; day <= time.Saturday; day++ {
		if seen[day] {
			days = append(days, day)
		}
	}
	return days
}

// ParseTimeRanges parses each "HH:mm-HH:mm" entry. Malformed entries are
// collected as error messages, not raised, so a batch can be partially valid.
func ParseTimeRanges(entries []string) ([]TimeRange, []string) {
	ranges := make([]TimeRange, 0, len(entries))
	var problems []string
	for _, entry := range entries {
		r, err := ParseTimeRange(entry)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges, problems
}

// ValidationResult aggregates every parse failure so callers can show
// the complete list at once.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// ValidatePreferences validates raw day names and time-range strings.
func ValidatePreferences(dayNames, rangeEntries []string) ValidationResult {
	var errs []string

	for _, name := range dayNames {
		if _, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]; !ok {
			errs = append(errs, fmt.Sprintf("unknown day name: %q", name))
		}
	}
	if len(ParseWeekdays(dayNames)) == 0 {
		errs = append(errs, "at least one valid preferred day is required")
	}

	ranges, problems := ParseTimeRanges(rangeEntries)
	errs = append(errs, problems...)
	if len(ranges) == 0 {
		errs = append(errs, "at least one valid preferred time range is required")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
