package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/tandem/adapter/cli"
	"github.com/felixgeelhaar/tandem/internal/scheduling/domain"
	sessionCommands "github.com/felixgeelhaar/tandem/internal/sessions/application/commands"
	"github.com/spf13/cobra"
)

var proposePersist bool

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Propose a session series with another user",
	Long: `Generate conflict-aware session proposals from both users' preferences.

Examples:
  tandem schedule propose --with <user-id> --days tuesday,thursday --times 18:00-20:00 --sessions 5
  tandem schedule propose --with <user-id> --days saturday --times 10:00-12:00 --sessions 3 --skill-exchange --persist`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ProposeSessionsHandler == nil {
			fmt.Println("Schedule commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		req, err := buildRequest(app)
		if err != nil {
			return err
		}

		result, err := app.ProposeSessionsHandler.Handle(cmd.Context(), sessionCommands.ProposeSessionsCommand{
			Request: req,
			Persist: proposePersist,
		})
		if err != nil {
			if result == nil || len(result.Proposals) == 0 {
				return err
			}
			fmt.Printf("Warning: planning stopped early (%v), showing partial results.\n\n", err)
		}

		if len(result.Proposals) == 0 {
			fmt.Println("No sessions could be proposed with these preferences.")
			fmt.Println("Try: tandem schedule alternatives")
			return nil
		}

		fmt.Printf("Proposed %d session(s):\n\n", len(result.Proposals))
		for _, p := range result.Proposals {
			printProposal(p)
		}
		if proposePersist {
			fmt.Printf("Created %d appointment(s).\n", len(result.CreatedIDs))
		}
		return nil
	},
}

func printProposal(p domain.ProposedAppointment) {
	fmt.Printf("  #%d  %s - %s  (confidence %.0f%%)\n",
		p.SessionNumber,
		p.ScheduledAt.Format("Mon 2006-01-02 15:04"),
		p.End().Format("15:04"),
		p.Confidence*100,
	)
	if p.ConflictLevel != domain.ConflictNone && p.Conflict != nil {
		fmt.Printf("      conflict (%s): %s\n", p.ConflictLevel, p.Conflict.Reason)
	}
	if p.Note != "" {
		fmt.Printf("      note: %s\n", p.Note)
	}
}

func init() {
	addRequestFlags(proposeCmd)
	proposeCmd.Flags().BoolVar(&proposePersist, "persist", false, "save proposals as appointments")
}
