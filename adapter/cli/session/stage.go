package session

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/opportunity/adapter/cli"
	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
	"github.com/spf13/cobra"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Show the current stage and what to do next",
	Long: `Show the current stage of a session as seen by the --as party,
including the mutual slots and the active opportunity.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		role, err := cli.ActingRole()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		id, err := resolveSession(ctx, app)
		if err != nil {
			return err
		}

		stage, err := app.GetStageHandler.Handle(ctx, queries.GetStageQuery{SessionID: id, Role: role})
		if err != nil {
			return fmt.Errorf("failed to get stage: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Stage: %s\n", stage.Stage)
		fmt.Fprintf(out, "  Receiver submitted:    %t\n", stage.ReceiverComplete)
		fmt.Fprintf(out, "  Facilitator submitted: %t\n", stage.FacilitatorComplete)
		if len(stage.MutualSlotIDs) > 0 {
			fmt.Fprintf(out, "  Mutual slots: %s\n", strings.Join(stage.MutualSlotIDs, ", "))
		}
		if stage.ActiveOpportunity != nil {
			fmt.Fprintf(out, "  Opportunity:  %s (%s %s)\n",
				stage.ActiveOpportunity.ID, stage.ActiveOpportunity.DisplayDate, stage.ActiveOpportunity.TimeRange)
		}
		if stage.FullyConfirmed {
			fmt.Fprintln(out, "  Fully confirmed.")
		}
		if stage.NextAction != "" {
			fmt.Fprintf(out, "Next for %s: %s\n", role.Title(), stage.NextAction)
		} else {
			fmt.Fprintf(out, "Nothing to do for %s.\n", role.Title())
		}
		return nil
	},
}
