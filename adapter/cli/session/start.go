package session

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/application/commands"
	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/spf13/cobra"
)

var (
	jobNumber string
	fromDate  string
	days      int
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new booking session",
	Long: `Start a booking session with a pool of AM/PM slots over the next
business days.

Examples:
  opportunity session start
  opportunity session start --job JOB-2024-117 --days 5
  opportunity session start --from 2024-05-06`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}

		command := commands.StartSessionCommand{
			JobNumber:    jobNumber,
			BusinessDays: days,
		}
		if command.JobNumber == "" {
			command.JobNumber = app.DefaultJobNumber
		}
		if command.BusinessDays <= 0 {
			command.BusinessDays = app.BusinessDays
		}
		if fromDate != "" {
			t, err := time.Parse(domain.DateLayout, fromDate)
			if err != nil {
				return fmt.Errorf("invalid --from format, use YYYY-MM-DD: %w", err)
			}
			command.ReferenceDate = t
		}

		ctx := cmd.Context()
		result, err := app.StartSessionHandler.Handle(ctx, command)
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Session started!")
		fmt.Fprintf(out, "  Session ID: %s\n", result.SessionID)
		fmt.Fprintf(out, "  Job:        %s\n", command.JobNumber)
		fmt.Fprintln(out, "Next: opportunity --as receiver session submit <slot-id>...")
		return nil
	},
}

func init() {
	startCmd.Flags().StringVarP(&jobNumber, "job", "j", "", "job number (default from DEFAULT_JOB_NUMBER)")
	startCmd.Flags().StringVar(&fromDate, "from", "", "first day of the pool (YYYY-MM-DD, default today)")
	startCmd.Flags().IntVarP(&days, "days", "d", 0, "number of business days (default from BUSINESS_DAYS)")
}
