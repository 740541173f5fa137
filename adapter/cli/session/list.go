package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List sessions",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}

		sessions, err := app.ListSessionsHandler.Handle(cmd.Context(), queries.ListSessionsQuery{})
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}

		fmt.Fprintf(out, "Sessions (%d):\n", len(sessions))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, s := range sessions {
			fmt.Fprintf(out, "%s  %s\n", s.ID, s.JobNumber)
			fmt.Fprintf(out, "   Stage: %s (v%d)\n", s.Stage, s.Version)
			if s.ActiveSlotID != "" {
				fmt.Fprintf(out, "   Selected: %s\n", s.ActiveSlotID)
			}
			fmt.Fprintf(out, "   Updated: %s\n", s.UpdatedAt.Local().Format(time.DateTime))
		}
		return nil
	},
}
