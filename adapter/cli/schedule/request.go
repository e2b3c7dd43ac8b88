package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/tandem/adapter/cli"
	"github.com/felixgeelhaar/tandem/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Shared flags for all schedule subcommands.
var (
	flagWith          string
	flagDays          []string
	flagTimes         []string
	flagSessions      int
	flagDuration      int
	flagFrom          string
	flagUntil         string
	flagSkillExchange bool
	flagMinGap        int
	flagMaxGap        int
	flagDistribute    bool
)

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagWith, "with", "", "user ID of the other participant (required)")
	cmd.Flags().StringSliceVar(&flagDays, "days", nil, "preferred weekdays, e.g. monday,wednesday")
	cmd.Flags().StringSliceVar(&flagTimes, "times", nil, "preferred time windows, e.g. 18:00-20:00")
	cmd.Flags().IntVar(&flagSessions, "sessions", 1, "number of sessions to plan")
	cmd.Flags().IntVar(&flagDuration, "duration", 60, "session duration in minutes")
	cmd.Flags().StringVar(&flagFrom, "from", "", "earliest start date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&flagUntil, "until", "", "latest end date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&flagSkillExchange, "skill-exchange", false, "alternate teacher and learner roles between sessions")
	cmd.Flags().IntVar(&flagMinGap, "min-gap", 0, "minimum days between sessions")
	cmd.Flags().IntVar(&flagMaxGap, "max-gap", 0, "maximum days between sessions (0 for no limit)")
	cmd.Flags().BoolVar(&flagDistribute, "distribute", false, "spread sessions evenly across the planning horizon")
	_ = cmd.MarkFlagRequired("with")
}

// buildRequest assembles a SchedulingRequest from the shared flags.
func buildRequest(app *cli.App) (domain.SchedulingRequest, error) {
	var req domain.SchedulingRequest

	targetID, err := uuid.Parse(flagWith)
	if err != nil {
		return req, fmt.Errorf("invalid --with user ID: %w", err)
	}

	earliestStart := time.Now()
	if flagFrom != "" {
		earliestStart, err = time.Parse("2006-01-02", flagFrom)
		if err != nil {
			return req, fmt.Errorf("invalid --from date, use YYYY-MM-DD: %w", err)
		}
	}

	var latestEnd *time.Time
	if flagUntil != "" {
		end, err := time.Parse("2006-01-02", flagUntil)
		if err != nil {
			return req, fmt.Errorf("invalid --until date, use YYYY-MM-DD: %w", err)
		}
		// Inclusive end date: the horizon runs to the end of that day.
		end = end.Add(24 * time.Hour)
		latestEnd = &end
	}

	req = domain.SchedulingRequest{
		RequesterID:            app.CurrentUserID,
		TargetID:               targetID,
		PreferredDays:          flagDays,
		PreferredTimeRanges:    flagTimes,
		TotalSessions:          flagSessions,
		SessionDurationMinutes: flagDuration,
		EarliestStart:          earliestStart,
		LatestEnd:              latestEnd,
		SkillExchange:          flagSkillExchange,
		MinDaysBetweenSessions: flagMinGap,
		MaxDaysBetweenSessions: flagMaxGap,
		DistributeEvenly:       flagDistribute,
	}

	if result := req.Validate(); !result.Valid {
		return req, fmt.Errorf("invalid preferences:\n  %s", strings.Join(result.Errors, "\n  "))
	}
	return req, nil
}
