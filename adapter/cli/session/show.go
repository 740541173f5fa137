package session

import (
	"fmt"

	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the slot pool of a session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		id, err := resolveSession(ctx, app)
		if err != nil {
			return err
		}

		snapshot, err := app.GetSessionHandler.Handle(ctx, queries.GetSessionQuery{SessionID: id})
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}

		printSnapshot(cmd.OutOrStdout(), *snapshot)
		return nil
	},
}
