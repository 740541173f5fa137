package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/opportunity/adapter/cli"
	"github.com/felixgeelhaar/opportunity/pkg/observability"
)

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("cli.health").
		Description("Check store and outbox health").
		Handler(func(ctx context.Context, input struct{}) (any, error) {
			if app == nil {
				return nil, errors.New("app not initialized")
			}
			if app.HealthRegistry == nil {
				return map[string]string{"status": string(observability.HealthStatusHealthy)}, nil
			}
			return app.HealthRegistry.Check(ctx), nil
		})

	srv.Tool("cli.version").
		Description("Get CLI version information").
		Handler(func(ctx context.Context, input struct{}) (map[string]string, error) {
			return map[string]string{
				"version":   cli.Version,
				"commit":    cli.Commit,
				"buildDate": cli.BuildDate,
			}, nil
		})

	return nil
}
