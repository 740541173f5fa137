package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/opportunity/adapter/cli"
	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// ErrNoSessions is returned when no --session is given and none exist.
var ErrNoSessions = errors.New("no sessions found; run 'opportunity session start' first")

var sessionFlag string

// Cmd is the session command group
var Cmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"s"},
	Short:   "Run a booking session",
	Long: `Start and drive a booking session through its stages:

  1. receiver availability     (--as receiver)
  2. facilitator availability  (--as facilitator)
  3. selection                 (--as provider)
  4. confirmation              (--as receiver, --as facilitator)
  5. record

Commands act on --session, or on the most recently updated session.`,
}

func init() {
	Cmd.PersistentFlags().StringVarP(&sessionFlag, "session", "s", "", "session ID (default: most recently updated)")

	Cmd.AddCommand(startCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(stageCmd)
	Cmd.AddCommand(availabilityCmd)
	Cmd.AddCommand(submitCmd)
	Cmd.AddCommand(selectCmd)
	Cmd.AddCommand(respondCmd)
	Cmd.AddCommand(recordCmd)
}

func requireApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.Dispatcher == nil {
		return nil, cli.ErrNotInitialized
	}
	return app, nil
}

// resolveSession returns the --session ID or the latest session.
func resolveSession(ctx context.Context, app *cli.App) (uuid.UUID, error) {
	if sessionFlag != "" {
		id, err := uuid.Parse(sessionFlag)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid session ID: %w", err)
		}
		return id, nil
	}

	sessions, err := app.ListSessionsHandler.Handle(ctx, queries.ListSessionsQuery{})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		return uuid.Nil, ErrNoSessions
	}
	return sessions[0].ID, nil
}
