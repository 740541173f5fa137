package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/opportunity/adapter/cli"
	"github.com/felixgeelhaar/opportunity/internal/booking/application/commands"
	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/felixgeelhaar/opportunity/internal/booking/infrastructure/calendar"
)

type sessionStartInput struct {
	JobNumber    string `json:"job_number,omitempty"`
	From         string `json:"from,omitempty"`
	BusinessDays int    `json:"business_days,omitempty"`
}

type sessionIDInput struct {
	SessionID string `json:"session_id,omitempty"`
}

type sessionStageInput struct {
	SessionID string `json:"session_id,omitempty"`
	Role      string `json:"role" jsonschema:"required"`
}

type sessionActInput struct {
	SessionID string   `json:"session_id,omitempty"`
	Role      string   `json:"role" jsonschema:"required"`
	Action    string   `json:"action" jsonschema:"required"`
	SlotID    string   `json:"slot_id,omitempty"`
	SlotIDs   []string `json:"slot_ids,omitempty"`
	Available *bool    `json:"available,omitempty"`
	Confirmed *bool    `json:"confirmed,omitempty"`
}

type sessionRecordInput struct {
	SessionID string `json:"session_id,omitempty"`
	ICS       bool   `json:"ics,omitempty"`
}

type sessionRecordOutput struct {
	Record *queries.CommitmentRecordDTO `json:"record"`
	ICS    string                       `json:"ics,omitempty"`
}

func registerSessionTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("session.start").
		Description("Start a booking session with AM/PM slots over the next business days").
		Handler(func(ctx context.Context, input sessionStartInput) (*queries.SessionDTO, error) {
			return startSession(ctx, app, input)
		})

	srv.Tool("session.list").
		Description("List booking sessions, most recently updated first").
		Handler(func(ctx context.Context, input struct{}) ([]queries.SessionSummaryDTO, error) {
			if err := requireBooking(app); err != nil {
				return nil, err
			}
			return app.ListSessionsHandler.Handle(ctx, queries.ListSessionsQuery{})
		})

	srv.Tool("session.show").
		Description("Show the full slot pool of a session (default: latest session)").
		Handler(func(ctx context.Context, input sessionIDInput) (*queries.SessionDTO, error) {
			if err := requireBooking(app); err != nil {
				return nil, err
			}
			id, err := resolveSession(ctx, app, input.SessionID)
			if err != nil {
				return nil, err
			}
			return app.GetSessionHandler.Handle(ctx, queries.GetSessionQuery{SessionID: id})
		})

	srv.Tool("session.act").
		Description("Perform an action as provider, receiver or facilitator. Actions: " +
			"set_receiver_availability, set_facilitator_availability (slot_id, available: required), " +
			"submit_receiver_availability, submit_facilitator_availability (slot_ids), " +
			"select_opportunity (slot_id), respond_confirmation (confirmed: required, false declines for good)").
		Handler(func(ctx context.Context, input sessionActInput) (*commands.Outcome, error) {
			return act(ctx, app, input)
		})

	srv.Tool("session.stage").
		Description("Show the current stage and the next action for a role").
		Handler(func(ctx context.Context, input sessionStageInput) (*queries.StageDTO, error) {
			if err := requireBooking(app); err != nil {
				return nil, err
			}
			role, err := domain.ParseRole(input.Role)
			if err != nil {
				return nil, err
			}
			id, err := resolveSession(ctx, app, input.SessionID)
			if err != nil {
				return nil, err
			}
			return app.GetStageHandler.Handle(ctx, queries.GetStageQuery{SessionID: id, Role: role})
		})

	srv.Tool("session.record").
		Description("Get the commitment record of the selected opportunity, optionally as iCalendar text").
		Handler(func(ctx context.Context, input sessionRecordInput) (*sessionRecordOutput, error) {
			return record(ctx, app, input)
		})

	return nil
}

func startSession(ctx context.Context, app *cli.App, input sessionStartInput) (*queries.SessionDTO, error) {
	if err := requireBooking(app); err != nil {
		return nil, err
	}

	reference, err := parseDate(input.From, time.Time{})
	if err != nil {
		return nil, err
	}
	cmd := commands.StartSessionCommand{
		JobNumber:     input.JobNumber,
		ReferenceDate: reference,
		BusinessDays:  input.BusinessDays,
	}
	if cmd.JobNumber == "" {
		cmd.JobNumber = app.DefaultJobNumber
	}
	if cmd.BusinessDays <= 0 {
		cmd.BusinessDays = app.BusinessDays
	}

	result, err := app.StartSessionHandler.Handle(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return app.GetSessionHandler.Handle(ctx, queries.GetSessionQuery{SessionID: result.SessionID})
}

func act(ctx context.Context, app *cli.App, input sessionActInput) (*commands.Outcome, error) {
	if err := requireBooking(app); err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}
	action := domain.Action(input.Action)
	if !action.IsValid() {
		return nil, fmt.Errorf("%w: %q", commands.ErrUnknownAction, input.Action)
	}
	if err := requireActionFields(action, input); err != nil {
		return nil, err
	}
	id, err := resolveSession(ctx, app, input.SessionID)
	if err != nil {
		return nil, err
	}

	outcome, err := app.Dispatcher.Dispatch(ctx, commands.Request{
		SessionID: id,
		Role:      role,
		Action:    action,
		SlotID:    input.SlotID,
		SlotIDs:   input.SlotIDs,
		Available: input.Available != nil && *input.Available,
		Confirmed: input.Confirmed != nil && *input.Confirmed,
	})
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

// requireActionFields rejects a request whose answer field is missing.
// An absent "confirmed" must not be read as a decline, since a response
// cannot be changed once recorded.
func requireActionFields(action domain.Action, input sessionActInput) error {
	switch action {
	case domain.ActionRespondConfirmation:
		if input.Confirmed == nil {
			return fmt.Errorf("%w: confirmed is required for %s", errMissingField, action)
		}
	case domain.ActionSetReceiverAvailability, domain.ActionSetFacilitatorAvailability:
		if input.Available == nil {
			return fmt.Errorf("%w: available is required for %s", errMissingField, action)
		}
	}
	return nil
}

func record(ctx context.Context, app *cli.App, input sessionRecordInput) (*sessionRecordOutput, error) {
	if err := requireBooking(app); err != nil {
		return nil, err
	}
	id, err := resolveSession(ctx, app, input.SessionID)
	if err != nil {
		return nil, err
	}

	rec, err := app.GetCommitmentRecordHandler.Handle(ctx, queries.GetCommitmentRecordQuery{SessionID: id})
	if errors.Is(err, queries.ErrNoOpportunity) {
		return nil, errors.New("no opportunity selected yet")
	}
	if err != nil {
		return nil, err
	}

	out := &sessionRecordOutput{Record: rec}
	if input.ICS {
		data, err := calendar.ICSBytes(rec, time.Now())
		if err != nil {
			return nil, err
		}
		out.ICS = string(data)
	}
	return out, nil
}
