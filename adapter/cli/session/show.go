package session

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/tandem/adapter/cli"
	"github.com/felixgeelhaar/tandem/internal/sessions/application/queries"
	"github.com/felixgeelhaar/tandem/internal/sessions/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <appointment-id>",
	Short: "Show a session appointment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetSessionHandler == nil {
			fmt.Println("Session commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid appointment ID: %w", err)
		}

		appointment, err := app.GetSessionHandler.Handle(cmd.Context(), queries.GetSessionQuery{AppointmentID: id})
		if err != nil {
			return err
		}

		printAppointment(appointment)
		return nil
	},
}

func printAppointment(a *domain.SessionAppointment) {
	fmt.Printf("Session #%d  %s - %s\n",
		a.SessionNumber(),
		a.ScheduledAt().Format("Mon 2006-01-02 15:04"),
		a.EndsAt().Format("15:04"),
	)
	fmt.Printf("  id:          %s\n", a.ID())
	fmt.Printf("  status:      %s\n", a.Status())
	fmt.Printf("  organizer:   %s\n", a.OrganizerID())
	fmt.Printf("  participant: %s\n", a.ParticipantID())
	if a.IsMonetary() {
		paid := "pending"
		if a.PaymentCompleted() {
			paid = "completed"
		}
		fmt.Printf("  payment:     %s\n", paid)
	} else {
		fmt.Printf("  payment:     none (skill exchange)\n")
	}
	if a.RescheduleReason() != "" {
		fmt.Printf("  reschedule:  %s", a.RescheduleReason())
		if t := a.ProposedTime(); t != nil {
			fmt.Printf(" (proposed %s)", t.Format("Mon 2006-01-02 15:04"))
		}
		fmt.Println()
	}
	if a.CancelledBy() != uuid.Nil {
		fmt.Printf("  cancelled by: %s\n", a.CancelledBy())
	}
	if users := a.NoShowUsers(); len(users) > 0 {
		ids := make([]string, len(users))
		for i, u := range users {
			ids[i] = u.String()
		}
		fmt.Printf("  no-shows:    %s\n", strings.Join(ids, ", "))
	}
	if next := domain.AllowedTransitions(a.Status()); len(next) > 0 {
		names := make([]string, len(next))
		for i, s := range next {
			names[i] = s.String()
		}
		fmt.Printf("  next states: %s\n", strings.Join(names, ", "))
	}
}
