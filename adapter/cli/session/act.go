package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/opportunity/adapter/cli"
	"github.com/felixgeelhaar/opportunity/internal/booking/application/commands"
	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/spf13/cobra"
)

// ErrRejected is returned when the session refuses an action.
var ErrRejected = errors.New("action rejected")

var (
	party       string
	unavailable bool
	decline     bool
)

var availabilityCmd = &cobra.Command{
	Use:   "availability <slot-id>",
	Short: "Mark a slot as available (or not) for one party",
	Long: `Set one party's availability for a single slot. The party defaults
to the --as role; the provider must name it with --for.

Examples:
  opportunity --as receiver session availability 2024-05-06-AM
  opportunity --as receiver session availability 2024-05-06-AM --clear
  opportunity --as provider session availability 2024-05-07-PM --for facilitator`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := cli.ActingRole()
		if err != nil {
			return err
		}
		p, err := partyFor(role)
		if err != nil {
			return err
		}

		action := domain.ActionSetReceiverAvailability
		if p == domain.RoleFacilitator {
			action = domain.ActionSetFacilitatorAvailability
		}
		return dispatch(cmd, commands.Request{Action: action, SlotID: args[0], Available: !unavailable})
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit [slot-id...]",
	Short: "Submit one party's availability",
	Long: `Replace one party's availability with exactly the given slots and
complete that party's availability stage. With no slots the party is
marked unavailable everywhere.

Examples:
  opportunity --as receiver session submit 2024-05-06-AM 2024-05-08-PM
  opportunity --as facilitator session submit 2024-05-08-PM`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := cli.ActingRole()
		if err != nil {
			return err
		}
		p, err := partyFor(role)
		if err != nil {
			return err
		}

		action := domain.ActionSubmitReceiverAvailability
		if p == domain.RoleFacilitator {
			action = domain.ActionSubmitFacilitatorAvailability
		}
		return dispatch(cmd, commands.Request{Action: action, SlotIDs: args})
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <slot-id>",
	Short: "Select a mutual slot as the opportunity (provider)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd, commands.Request{Action: domain.ActionSelectOpportunity, SlotID: args[0]})
	},
}

var respondCmd = &cobra.Command{
	Use:   "respond",
	Short: "Confirm or decline the selected opportunity",
	Long: `Record the --as party's answer to the selected opportunity.
Each party answers once per selection.

Examples:
  opportunity --as receiver session respond
  opportunity --as facilitator session respond --decline`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd, commands.Request{Action: domain.ActionRespondConfirmation, Confirmed: !decline})
	},
}

func init() {
	for _, c := range []*cobra.Command{availabilityCmd, submitCmd} {
		c.Flags().StringVar(&party, "for", "", "party whose availability is set (receiver, facilitator; default: --as)")
	}
	availabilityCmd.Flags().BoolVar(&unavailable, "clear", false, "mark the slot unavailable")
	respondCmd.Flags().BoolVar(&decline, "decline", false, "decline instead of confirm")
}

// partyFor resolves --for, falling back to the acting role.
func partyFor(role domain.Role) (domain.Role, error) {
	value := party
	if value == "" {
		if role == domain.RoleProvider {
			return "", errors.New("--for is required when acting as provider")
		}
		return role, nil
	}

	p, err := domain.ParseRole(value)
	if err != nil {
		return "", err
	}
	if p == domain.RoleProvider {
		return "", fmt.Errorf("--for must be receiver or facilitator")
	}
	return p, nil
}

func dispatch(cmd *cobra.Command, req commands.Request) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	if req.Role, err = cli.ActingRole(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if req.SessionID, err = resolveSession(ctx, app); err != nil {
		return err
	}

	outcome, err := app.Dispatcher.Dispatch(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", strings.ReplaceAll(string(req.Action), "_", " "), err)
	}

	printOutcome(cmd.OutOrStdout(), outcome)
	if !outcome.Accepted {
		return fmt.Errorf("%w: %s", ErrRejected, outcome.Reason)
	}
	return nil
}
