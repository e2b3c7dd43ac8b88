package schedule

import (
	"github.com/spf13/cobra"
)

// Cmd is the schedule command group
var Cmd = &cobra.Command{
	Use:   "schedule",
	Short: "Plan session series with another user",
	Long:  `Propose session slots, check feasibility, and explore alternatives when preferences are too tight.`,
}

func init() {
	Cmd.AddCommand(proposeCmd)
	Cmd.AddCommand(feasibilityCmd)
	Cmd.AddCommand(alternativesCmd)
}
