package session

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/opportunity/internal/booking/application/commands"
	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
)

func printSnapshot(out io.Writer, s queries.SessionDTO) {
	fmt.Fprintf(out, "Session %s  (%s)\n", s.ID, s.JobNumber)
	fmt.Fprintf(out, "  Stage:   %s\n", s.Stage)
	fmt.Fprintf(out, "  Version: %d\n", s.Version)
	fmt.Fprintln(out, strings.Repeat("-", 72))
	fmt.Fprintf(out, "  %-15s %-18s %-3s %-3s %-9s %-9s\n", "SLOT", "WHEN", "SR", "SF", "SR-CONF", "SF-CONF")
	for _, slot := range s.Slots {
		marker := " "
		switch {
		case slot.Selected:
			marker = ">"
		case slot.Mutual:
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-15s %-18s %-3s %-3s %-9s %-9s\n",
			marker,
			slot.ID,
			slot.DisplayDate+" "+slot.Period,
			yesNo(slot.ReceiverAvailable),
			yesNo(slot.FacilitatorAvailable),
			slot.ReceiverConfirmation,
			slot.FacilitatorConfirmation,
		)
	}
	fmt.Fprintln(out, "  (* mutual, > selected)")
}

func printOutcome(out io.Writer, outcome commands.Outcome) {
	if outcome.Accepted {
		fmt.Fprintf(out, "Accepted. Stage is now %s.\n", outcome.Session.Stage)
		return
	}
	fmt.Fprintf(out, "Rejected (%s): %s\n", outcome.Reason, outcome.Message)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "-"
}
