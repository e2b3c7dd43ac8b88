package domain

// FeasibilityResult reports how much of a scheduling request can
// actually be placed. Infeasibility is a soft outcome, never an error.
type FeasibilityResult struct {
	Feasible        bool
	AvailableSlots  int
	RequestedSlots  int
	Warnings        []string
	Recommendations []string
	Conflicts       []ConflictInfo

	// Incomplete marks a result cut short by cancellation after the
	// busy-window fetch; counts cover only what was examined.
	Incomplete bool
}

// FulfillmentPercentage is available/requested in [0,1]; 0 when nothing
// was requested.
func (r FeasibilityResult) FulfillmentPercentage() float64 {
	if r.RequestedSlots == 0 {
		return 0
	}
	return float64(r.AvailableSlots) / float64(r.RequestedSlots)
}

// AlternativeOption describes one relaxed variant of the original
// preferences and how well it would work out.
type AlternativeOption struct {
	Description    string
	Request        SchedulingRequest
	AvailableSlots int
	Confidence     float64

	// Deviation quantifies divergence from the original preferences
	// in [0,1]; 0 means identical.
	Deviation float64
}
