package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := e.app.RequireUser()
			if err != nil {
				return notSignedIn(err)
			}

			stats := e.app.Tasks.Stats()
			out := cmd.OutOrStdout()

			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			fmt.Fprintf(out, "Tasks for %s\n\n", user.Name)
			fmt.Fprintf(out, "  Total:     %d\n", stats.Total)
			fmt.Fprintf(out, "  Completed: %d\n", stats.Completed)
			fmt.Fprintf(out, "  Pending:   %d\n", stats.Pending)
			fmt.Fprintf(out, "  Overdue:   %d\n", stats.Overdue)
			if stats.Total > 0 {
				fmt.Fprintf(out, "\n  %d%% done\n", stats.Completed*100/stats.Total)
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "JSON output")
	return cmd
}
