package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/tandem/adapter/cli"
	sessionCommands "github.com/felixgeelhaar/tandem/internal/sessions/application/commands"
	"github.com/felixgeelhaar/tandem/internal/sessions/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	transitionTo       string
	transitionReason   string
	transitionProposed string
	transitionNoShows  []string
)

var transitionCmd = &cobra.Command{
	Use:   "transition <appointment-id>",
	Short: "Move a session to another lifecycle state",
	Long: `Move a session appointment through its lifecycle.

Examples:
  tandem session transition <id> --to confirmed
  tandem session transition <id> --to reschedule_requested --reason "travel" --proposed-time 2026-09-15T18:00:00Z
  tandem session transition <id> --to cancelled
  tandem session transition <id> --to no_show --no-show-user <user-id>`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.TransitionSessionHandler == nil {
			fmt.Println("Session commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid appointment ID: %w", err)
		}

		to, err := domain.ParseStatus(transitionTo)
		if err != nil {
			names := make([]string, 0, len(domain.AllStatuses()))
			for _, s := range domain.AllStatuses() {
				names = append(names, s.String())
			}
			return fmt.Errorf("unknown status %q, valid: %s", transitionTo, strings.Join(names, ", "))
		}

		command := sessionCommands.TransitionSessionCommand{
			AppointmentID: id,
			To:            to,
			ActorID:       app.CurrentUserID,
		}
		if transitionReason != "" {
			command.RescheduleReason = transitionReason
		}
		if transitionProposed != "" {
			proposed, err := time.Parse(time.RFC3339, transitionProposed)
			if err != nil {
				return fmt.Errorf("invalid --proposed-time, use RFC 3339: %w", err)
			}
			command.ProposedTime = &proposed
		}
		for _, raw := range transitionNoShows {
			userID, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("invalid --no-show-user ID %q: %w", raw, err)
			}
			command.NoShowUsers = append(command.NoShowUsers, userID)
		}

		result, err := app.TransitionSessionHandler.Handle(cmd.Context(), command)
		if err != nil {
			var rejection *domain.TransitionRejection
			if errors.As(err, &rejection) {
				fmt.Printf("Transition rejected: %s\n", rejection.Reason)
				if allowed := domain.AllowedTransitions(rejection.From); len(allowed) > 0 {
					names := make([]string, len(allowed))
					for i, s := range allowed {
						names[i] = s.String()
					}
					fmt.Printf("From %s you can move to: %s\n", rejection.From, strings.Join(names, ", "))
				}
				return nil
			}
			return err
		}

		fmt.Printf("Session %s: %s -> %s\n", result.AppointmentID, result.From, result.To)
		return nil
	},
}

func init() {
	transitionCmd.Flags().StringVar(&transitionTo, "to", "", "target status (required)")
	transitionCmd.Flags().StringVar(&transitionReason, "reason", "", "reason, required when requesting a reschedule")
	transitionCmd.Flags().StringVar(&transitionProposed, "proposed-time", "", "proposed new time (RFC 3339), required when requesting a reschedule")
	transitionCmd.Flags().StringSliceVar(&transitionNoShows, "no-show-user", nil, "user who failed to appear, required for no_show")
	_ = transitionCmd.MarkFlagRequired("to")
}
