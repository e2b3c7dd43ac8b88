package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/tandem/adapter/cli"
	"github.com/spf13/cobra"
)

var alternativesCmd = &cobra.Command{
	Use:   "alternatives",
	Short: "Suggest relaxed preferences when the requested series does not fit",
	Long: `Explore small relaxations of the stated preferences, ordered by how far
each one deviates from what was asked for.

Examples:
  tandem schedule alternatives --with <user-id> --days sunday --times 09:00-10:00 --sessions 6`,
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

		options, err := app.Scheduler.GenerateAlternatives(cmd.Context(), req)
		if err != nil {
			return err
		}
		if len(options) == 0 {
			fmt.Println("No alternative found that improves on the stated preferences.")
			return nil
		}

		fmt.Printf("%d alternative(s), closest to your preferences first:\n\n", len(options))
		for i, opt := range options {
			fmt.Printf("  %d. %s\n", i+1, opt.Description)
			fmt.Printf("     fits %d session(s), deviation %.0f%%\n", opt.AvailableSlots, opt.Deviation*100)
		}
		return nil
	},
}

func init() {
	addRequestFlags(alternativesCmd)
}
