package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/opportunity/adapter/cli"
	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/google/uuid"
)

var (
	errNoSessions   = errors.New("no sessions found; call session.start first")
	errMissingField = errors.New("missing required field")
)

func parseDate(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}
	return parsed, nil
}

func parseUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.UUID{}, errors.New("id is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid id: %w", err)
	}
	return id, nil
}

// resolveSession parses value, or picks the most recently updated session
// when it is empty.
func resolveSession(ctx context.Context, app *cli.App, value string) (uuid.UUID, error) {
	if value != "" {
		return parseUUID(value)
	}
	sessions, err := app.ListSessionsHandler.Handle(ctx, queries.ListSessionsQuery{})
	if err != nil {
		return uuid.Nil, err
	}
	if len(sessions) == 0 {
		return uuid.Nil, errNoSessions
	}
	return sessions[0].ID, nil
}

func requireBooking(app *cli.App) error {
	if app == nil || app.Dispatcher == nil {
		return errors.New("booking requires a store connection")
	}
	return nil
}
