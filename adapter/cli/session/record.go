package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
	"github.com/felixgeelhaar/opportunity/internal/booking/infrastructure/calendar"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/security"
	"github.com/spf13/cobra"
)

var icsPath string

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Show the commitment record of the selected opportunity",
	Long: `Show who committed to the selected opportunity and when.
With --ics the record is also written as an iCalendar file.

Examples:
  opportunity session record
  opportunity session record --ics appointment.ics`,
	Args: cobra.NoArgs,
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

		out := cmd.OutOrStdout()
		record, err := app.GetCommitmentRecordHandler.Handle(ctx, queries.GetCommitmentRecordQuery{SessionID: id})
		if errors.Is(err, queries.ErrNoOpportunity) {
			fmt.Fprintln(out, "No opportunity selected yet.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get record: %w", err)
		}

		fmt.Fprintf(out, "Commitment record  %s\n", record.JobNumber)
		fmt.Fprintf(out, "  Appointment: %s %s (%s)\n", record.DisplayDate, record.Period, record.TimeRange)
		for _, line := range []queries.PartyResponseDTO{record.Provider, record.Receiver, record.Facilitator} {
			at := ""
			if line.RespondedAt != nil {
				at = line.RespondedAt.Local().Format(time.DateTime)
			}
			fmt.Fprintf(out, "  %-3s %-20s %-10s %s\n", line.Abbreviation, line.Title, line.Response, at)
		}
		fmt.Fprintf(out, "  Status: %s\n", record.Status)

		if icsPath == "" {
			return nil
		}
		f, err := security.CreateExportFile(icsPath, ".ics")
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", icsPath, err)
		}
		if err := calendar.WriteICS(f, record, time.Now()); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write %s: %w", icsPath, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", icsPath)
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVar(&icsPath, "ics", "", "also write the record as an .ics file")
}
