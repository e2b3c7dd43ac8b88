package session

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/tandem/adapter/cli"
	"github.com/felixgeelhaar/tandem/internal/sessions/application/queries"
	"github.com/spf13/cobra"
)

var listWeeks int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your upcoming sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListSessionsHandler == nil {
			fmt.Println("Session commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		from := time.Now()
		to := from.AddDate(0, 0, 7*listWeeks)
		appointments, err := app.ListSessionsHandler.Handle(cmd.Context(), queries.ListSessionsQuery{
			UserID: app.CurrentUserID,
			From:   from,
			To:     to,
		})
		if err != nil {
			return err
		}

		if len(appointments) == 0 {
			fmt.Printf("No sessions in the next %d week(s).\n", listWeeks)
			return nil
		}

		fmt.Printf("%d session(s) in the next %d week(s):\n\n", len(appointments), listWeeks)
		for _, a := range appointments {
			fmt.Printf("  %s  #%d  %-22s  %s\n",
				a.ScheduledAt().Format("Mon 2006-01-02 15:04"),
				a.SessionNumber(),
				a.Status(),
				a.ID(),
			)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&listWeeks, "weeks", 4, "how many weeks ahead to list")
}
