package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/felixgeelhaar/tandem/internal/scheduling/domain"
	sharedDomain "github.com/felixgeelhaar/tandem/internal/shared/domain"
)

// SchedulerConfig contains tuning knobs for the scheduling algorithm.
type SchedulerConfig struct {
	// InitialWeeks is the first-pass candidate horizon.
	InitialWeeks int
	// MaxWeeks bounds horizon growth when the first pass is thin.
	MaxWeeks int
	// PoolFactor sizes the candidate pool relative to the requested
	// session count before filtering.
	PoolFactor int
	// WidenMargin is how far each time window is stretched when
	// generating the widen-window alternative.
	WidenMargin time.Duration
	// HorizonExtensionWeeks is the stretch used by the extend-horizon
	// alternative.
	HorizonExtensionWeeks int
}

// DefaultSchedulerConfig returns the default tuning.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		InitialWeeks:          DefaultWeeksToGenerate,
		MaxWeeks:              12,
		PoolFactor:            3,
		WidenMargin:           30 * time.Minute,
		HorizonExtensionWeeks: 2,
	}
}

// Scheduler turns a scheduling request into ranked, conflict-checked
// session proposals. It is stateless orchestration over the slot
// generator and conflict detector.
type Scheduler struct {
	detector *ConflictDetector
	clock    sharedDomain.Clock
	config   SchedulerConfig
	logger   *slog.Logger
}

// NewScheduler creates a scheduler.
func NewScheduler(detector *ConflictDetector, clock sharedDomain.Clock, config SchedulerConfig, logger *slog.Logger) *Scheduler {
	if clock == nil {
		clock = sharedDomain.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		detector: detector,
		clock:    clock,
		config:   config,
		logger:   logger,
	}
}

// candidate is one classified slot under consideration.
type candidate struct {
	start      time.Time
	level      domain.ConflictLevel
	conflict   *domain.ConflictInfo
	confidence float64
}

// GenerateAppointmentSlots produces a ranked session series for the
// request. Invalid preferences yield an empty series, not an error;
// use ValidateFeasibility for the detailed report. If ctx is cancelled
// after the busy-time fetch, the proposals selected so far are
// returned together with the context error so the caller sees an
// explicitly incomplete result.
func (s *Scheduler) GenerateAppointmentSlots(
	ctx context.Context,
	req domain.SchedulingRequest,
) ([]domain.ProposedAppointment, error) {
	if v := req.Validate(); !v.Valid {
		s.logger.Warn("scheduling request rejected by validation", "errors", v.Errors)
		return []domain.ProposedAppointment{}, nil
	}

	candidates, incomplete, err := s.collectCandidates(ctx, req)
	if err != nil {
		return nil, err
	}

	rankCandidates(candidates)
	selected := s.selectSeries(candidates, req)

	proposals := make([]domain.ProposedAppointment, 0, len(selected))
	for i, c := range selected {
		organizer, participant := req.RequesterID, req.TargetID
		if req.SkillExchange && i%2 == 1 {
			organizer, participant = participant, organizer
		}

		note := ""
		if c.level != domain.ConflictNone && c.conflict != nil {
			note = fmt.Sprintf("accepted despite a %s conflict: %s", c.level, c.conflict.Reason)
		}

		proposals = append(proposals, domain.ProposedAppointment{
			ScheduledAt:   c.start.UTC(),
			Duration:      req.SessionDuration(),
			SessionNumber: i + 1,
			OrganizerID:   organizer,
			ParticipantID: participant,
			ConflictLevel: c.level,
			Conflict:      c.conflict,
			Confidence:    c.confidence,
			Note:          note,
		})
	}

	s.logger.Info("session series generated",
		"requested", req.TotalSessions,
		"proposed", len(proposals),
		"incomplete", incomplete,
	)

	if incomplete {
		return proposals, ctx.Err()
	}
	return proposals, nil
}

// ValidateFeasibility runs the generation pipeline to determine how
// many of the requested sessions can be placed conflict-free.
func (s *Scheduler) ValidateFeasibility(
	ctx context.Context,
	req domain.SchedulingRequest,
) (*domain.FeasibilityResult, error) {
	result := &domain.FeasibilityResult{RequestedSlots: req.TotalSessions}

	if v := req.Validate(); !v.Valid {
		result.Warnings = v.Errors
		return result, nil
	}

	candidates, incomplete, err := s.collectCandidates(ctx, req)
	if err != nil {
		return nil, err
	}
	result.Incomplete = incomplete

	free := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.level == domain.ConflictNone {
			free = append(free, c)
			continue
		}
		if c.conflict != nil {
			result.Conflicts = append(result.Conflicts, *c.conflict)
		}
	}

	rankCandidates(free)
	selected := s.selectSeries(free, req)

	result.AvailableSlots = len(selected)
	if result.AvailableSlots > result.RequestedSlots {
		result.AvailableSlots = result.RequestedSlots
	}
	result.Feasible = !incomplete && result.AvailableSlots >= req.TotalSessions

	if incomplete {
		result.Warnings = append(result.Warnings, "feasibility check cancelled before all candidates were examined")
	}
	if result.AvailableSlots < result.RequestedSlots {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"only %d of %d requested sessions can be placed within the stated preferences",
			result.AvailableSlots, result.RequestedSlots))
		result.Recommendations = s.recommendations(req)
	}

	return result, nil
}

// GenerateAlternatives relaxes one preference dimension at a time and
// reports how each relaxation would work out, sorted by how little it
// diverges from the original request.
func (s *Scheduler) GenerateAlternatives(
	ctx context.Context,
	req domain.SchedulingRequest,
) ([]domain.AlternativeOption, error) {
	options := make([]domain.AlternativeOption, 0, 8)

	for _, relax := range s.relaxations(req) {
		feasibility, err := s.ValidateFeasibility(ctx, relax.request)
		if err != nil {
			return nil, err
		}
		options = append(options, domain.AlternativeOption{
			Description:    relax.description,
			Request:        relax.request,
			AvailableSlots: feasibility.AvailableSlots,
			Confidence:     1 - relax.deviation,
			Deviation:      relax.deviation,
		})
	}

	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Deviation != options[j].Deviation {
			return options[i].Deviation < options[j].Deviation
		}
		return options[i].AvailableSlots > options[j].AvailableSlots
	})
	return options, nil
}

// collectCandidates builds the classified candidate pool. The pool is
// grown past the initial horizon until it comfortably exceeds the
// requested count or the horizon cap is reached. The busy-time fetch
// happens exactly once; classification afterwards is in-memory and
// checks ctx so cancellation surfaces as an incomplete pool rather
// than a silent truncation.
func (s *Scheduler) collectCandidates(
	ctx context.Context,
	req domain.SchedulingRequest,
) ([]candidate, bool, error) {
	days := domain.ParseWeekdays(req.PreferredDays)
	ranges, _ := domain.ParseTimeRanges(req.PreferredTimeRanges)
	duration := req.SessionDuration()

	startFrom := req.EarliestStart
	if startFrom.IsZero() {
		startFrom = s.clock.Now()
	}

	maxWeeks := s.config.MaxWeeks
	if req.LatestEnd != nil {
		maxWeeks = daysBetween(startOfWeek(startFrom), *req.LatestEnd)/7 + 1
	}

	target := s.config.PoolFactor * req.TotalSessions
	weeks := s.config.InitialWeeks
	if weeks > maxWeeks {
		weeks = maxWeeks
	}

	var pool []time.Time
	for {
		pool = GeneratePotentialSlots(days, ranges, duration, startFrom, weeks)
		if req.LatestEnd != nil {
			pool = trimAfter(pool, duration, *req.LatestEnd)
		}
		if len(pool) >= target || weeks >= maxWeeks {
			break
		}
		weeks += s.config.InitialWeeks
		if weeks > maxWeeks {
			weeks = maxWeeks
		}
	}
	if len(pool) == 0 {
		return nil, false, nil
	}

	horizonEnd := pool[len(pool)-1].Add(duration)
	busy, err := s.detector.CollectBusyWindows(ctx, req.RequesterID, req.TargetID, startFrom, horizonEnd)
	if err != nil {
		return nil, false, err
	}

	initialHorizonEnd := startOfWeek(startFrom).AddDate(0, 0, 7*s.config.InitialWeeks)

	candidates := make([]candidate, 0, len(pool))
	incomplete := false
	for _, slot := range pool {
		if ctx.Err() != nil {
			incomplete = true
			break
		}
		level, conflict := s.detector.Classify(slot, duration, busy)
		candidates = append(candidates, candidate{
			start:      slot,
			level:      level,
			conflict:   conflict,
			confidence: s.confidence(slot, initialHorizonEnd),
		})
	}
	return candidates, incomplete, nil
}

// confidence is 1.0 for slots matching the preferences within the
// initial horizon, degrading for each week the algorithm had to
// stretch past it to fill the requested count.
func (s *Scheduler) confidence(slot time.Time, initialHorizonEnd time.Time) float64 {
	if slot.Before(initialHorizonEnd) {
		return 1.0
	}
	weeksBeyond := daysBetween(initialHorizonEnd, slot)/7 + 1
	return math.Max(0.5, 1.0-0.1*float64(weeksBeyond))
}

// rankCandidates orders by conflict level ascending, confidence
// descending, then chronologically.
func rankCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].level != candidates[j].level {
			return candidates[i].level < candidates[j].level
		}
		if candidates[i].confidence != candidates[j].confidence {
			return candidates[i].confidence > candidates[j].confidence
		}
		return candidates[i].start.Before(candidates[j].start)
	})
}

// selectSeries greedily picks up to TotalSessions candidates honoring
// the spacing constraints. With DistributeEvenly set, picks prefer the
// gap closest to the mean target spacing over raw rank order.
func (s *Scheduler) selectSeries(ranked []candidate, req domain.SchedulingRequest) []candidate {
	if len(ranked) == 0 {
		return nil
	}

	targetGap := 0.0
	if req.DistributeEvenly && req.TotalSessions > 0 {
		first, last := ranked[0].start, ranked[0].start
		for _, c := range ranked {
			if c.start.Before(first) {
				first = c.start
			}
			if c.start.After(last) {
				last = c.start
			}
		}
		if req.LatestEnd == nil {
			if capped := s.distributionEnd(ranked, req); capped.Before(last) {
				last = capped
			}
		}
		targetGap = float64(daysBetween(first, last)) / float64(req.TotalSessions)
	}

	selected := make([]candidate, 0, req.TotalSessions)
	used := make(map[int]bool, len(ranked))

	for len(selected) < req.TotalSessions {
		bestIdx := -1
		bestGapDelta := math.MaxFloat64
		for i, c := range ranked {
			if used[i] || !fitsSpacing(c.start, selected, req.MinDaysBetweenSessions, req.MaxDaysBetweenSessions) {
				continue
			}
			if !req.DistributeEvenly || len(selected) == 0 {
				bestIdx = i
				break
			}
			gap := gapFromNeighbors(c.start, selected)
			delta := math.Abs(gap - targetGap)
			if bestIdx == -1 || ranked[i].level < ranked[bestIdx].level ||
				(ranked[i].level == ranked[bestIdx].level && delta < bestGapDelta) {
				bestIdx = i
				bestGapDelta = delta
			}
		}
		if bestIdx == -1 {
			break
		}
		used[bestIdx] = true
		selected = append(selected, ranked[bestIdx])
		sort.Slice(selected, func(i, j int) bool { return selected[i].start.Before(selected[j].start) })
	}

	return selected
}

// distributionEnd bounds the even-distribution span. The candidate
// pool may have grown several horizons past what the requested count
// occupies, and spreading over that whole span skews the target gap
// large. The sessions get the initial horizon, extended only as far
// as needed to seat TotalSessions candidates. A caller-stated
// LatestEnd overrides this: that window is the one the user asked to
// spread over.
func (s *Scheduler) distributionEnd(ranked []candidate, req domain.SchedulingRequest) time.Time {
	starts := make([]time.Time, len(ranked))
	for i, c := range ranked {
		starts[i] = c.start
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	startFrom := req.EarliestStart
	if startFrom.IsZero() {
		startFrom = s.clock.Now()
	}
	end := startOfWeek(startFrom).AddDate(0, 0, 7*s.config.InitialWeeks)

	nth := starts[min(len(starts), req.TotalSessions)-1]
	if nth.After(end) {
		end = nth
	}
	return end
}

// fitsSpacing checks a candidate against its chronological neighbors in
// the current selection. A zero maxDays means unbounded.
func fitsSpacing(t time.Time, selected []candidate, minDays, maxDays int) bool {
	pos := sort.Search(len(selected), func(i int) bool { return selected[i].start.After(t) })
	if pos > 0 {
		gap := daysBetween(selected[pos-1].start, t)
		if gap < minDays {
			return false
		}
		if maxDays > 0 && gap > maxDays {
			return false
		}
	}
	if pos < len(selected) {
		gap := daysBetween(t, selected[pos].start)
		if gap < minDays {
			return false
		}
		if maxDays > 0 && gap > maxDays {
			return false
		}
	}
	return true
}

// gapFromNeighbors returns the day gap to the closest already-selected
// session.
func gapFromNeighbors(t time.Time, selected []candidate) float64 {
	pos := sort.Search(len(selected), func(i int) bool { return selected[i].start.After(t) })
	gap := math.MaxFloat64
	if pos > 0 {
		gap = math.Min(gap, float64(daysBetween(selected[pos-1].start, t)))
	}
	if pos < len(selected) {
		gap = math.Min(gap, float64(daysBetween(t, selected[pos].start)))
	}
	return gap
}

// relaxation is one enumerated alternative strategy. The list is kept
// explicit rather than a generic search so behavior stays predictable.
type relaxation struct {
	description string
	request     domain.SchedulingRequest
	deviation   float64
}

const (
	deviationAddDay        = 0.15
	deviationWidenWindows  = 0.25
	deviationExtendHorizon = 0.35
)

func (s *Scheduler) relaxations(req domain.SchedulingRequest) []relaxation {
	var out []relaxation

	chosen := make(map[time.Weekday]bool)
	for _, day := range domain.ParseWeekdays(req.PreferredDays) {
		chosen[day] = true
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		if chosen[day] {
			continue
		}
		variant := req
		variant.PreferredDays = append(append([]string{}, req.PreferredDays...), day.String())
		out = append(out, relaxation{
			description: fmt.Sprintf("add %s to the preferred days", day),
			request:     variant,
			deviation:   deviationAddDay,
		})
	}

	if ranges, _ := domain.ParseTimeRanges(req.PreferredTimeRanges); len(ranges) > 0 {
		widened := make([]string, 0, len(ranges))
		for _, r := range ranges {
			widened = append(widened, r.Widen(s.config.WidenMargin).String())
		}
		variant := req
		variant.PreferredTimeRanges = widened
		out = append(out, relaxation{
			description: fmt.Sprintf("widen each preferred time window by %d minutes", int(s.config.WidenMargin.Minutes())),
			request:     variant,
			deviation:   deviationWidenWindows,
		})
	}

	startFrom := req.EarliestStart
	if startFrom.IsZero() {
		startFrom = s.clock.Now()
	}
	horizonEnd := startOfWeek(startFrom).AddDate(0, 0, 7*s.config.MaxWeeks)
	if req.LatestEnd != nil {
		horizonEnd = *req.LatestEnd
	}
	extended := horizonEnd.AddDate(0, 0, 7*s.config.HorizonExtensionWeeks)
	variant := req
	variant.LatestEnd = &extended
	out = append(out, relaxation{
		description: fmt.Sprintf("extend the scheduling horizon by %d weeks", s.config.HorizonExtensionWeeks),
		request:     variant,
		deviation:   deviationExtendHorizon,
	})

	return out
}

func (s *Scheduler) recommendations(req domain.SchedulingRequest) []string {
	var recs []string
	if len(domain.ParseWeekdays(req.PreferredDays)) < 7 {
		recs = append(recs, "add another preferred day to open more candidate slots")
	}
	recs = append(recs, "widen the preferred time windows")
	if req.LatestEnd != nil {
		recs = append(recs, "allow a later end date to extend the scheduling horizon")
	}
	return recs
}

// trimAfter drops slots whose session would end after the limit.
func trimAfter(slots []time.Time, duration time.Duration, limit time.Time) []time.Time {
	kept := slots[:0]
	for _, slot := range slots {
		if slot.Add(duration).After(limit) {
			continue
		}
		kept = append(kept, slot)
	}
	return kept
}
