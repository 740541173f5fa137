package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
)

// RegisterResources registers MCP resources that expose booking data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	srv.Resource("opportunity://sessions").
		Name("Sessions").
		Description("All booking sessions, most recently updated first").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if err := requireBooking(app); err != nil {
				return nil, err
			}
			sessions, err := app.ListSessionsHandler.Handle(ctx, queries.ListSessionsQuery{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, sessions)
		})

	srv.Resource("opportunity://sessions/latest").
		Name("Latest session").
		Description("Full snapshot of the most recently updated session").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if err := requireBooking(app); err != nil {
				return nil, err
			}
			id, err := resolveSession(ctx, app, "")
			if err != nil {
				return nil, err
			}
			snapshot, err := app.GetSessionHandler.Handle(ctx, queries.GetSessionQuery{SessionID: id})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, snapshot)
		})

	srv.Resource("opportunity://protocol").
		Name("Protocol").
		Description("Actions in protocol order and the roles allowed to perform them").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			type step struct {
				Action string   `json:"action"`
				Roles  []string `json:"roles"`
			}
			steps := make([]step, 0, len(domain.Actions()))
			for _, action := range domain.Actions() {
				s := step{Action: string(action)}
				for _, role := range domain.AllowedRoles(action) {
					s.Roles = append(s.Roles, string(role))
				}
				steps = append(steps, s)
			}
			return jsonResource(uri, steps)
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
