package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/tandem/adapter/cli"
	"github.com/spf13/cobra"
)

var feasibilityCmd = &cobra.Command{
	Use:   "feasibility",
	Short: "Check whether a session series fits the stated preferences",
	Long: `Analyze how many of the requested sessions can be placed without conflicts.

Examples:
  tandem schedule feasibility --with <user-id> --days monday,friday --times 19:00-21:00 --sessions 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Scheduler == nil {
			fmt.Println("Schedule commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		req, err := buildRequest(app)
		if err != nil {
			return err
		}

		result, err := app.Scheduler.ValidateFeasibility(cmd.Context(), req)
		if err != nil {
			return err
		}

		if result.Feasible {
			fmt.Printf("Feasible: all %d requested session(s) fit.\n", result.RequestedSlots)
		} else {
			fmt.Printf("Not feasible: %d of %d requested session(s) fit (%.0f%%).\n",
				result.AvailableSlots,
				result.RequestedSlots,
				result.FulfillmentPercentage(),
			)
		}
		if result.Incomplete {
			fmt.Println("Note: the analysis was cut short and may undercount available slots.")
		}
		for _, w := range result.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		for _, r := range result.Recommendations {
			fmt.Printf("  hint: %s\n", r)
		}
		if len(result.Conflicts) > 0 {
			fmt.Printf("\n%d conflicting booking(s) in the way:\n", len(result.Conflicts))
			for _, c := range result.Conflicts {
				fmt.Printf("  %s - %s: %s\n",
					c.OverlapStart.Format("Mon 2006-01-02 15:04"),
					c.OverlapEnd.Format("15:04"),
					c.Reason,
				)
			}
		}
		return nil
	},
}

func init() {
	addRequestFlags(feasibilityCmd)
}
