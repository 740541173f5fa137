package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/opportunity/adapter/cli"
	"github.com/felixgeelhaar/opportunity/internal/app"
	mcpinternal "github.com/felixgeelhaar/opportunity/internal/mcp"
	"github.com/felixgeelhaar/opportunity/pkg/config"
	"github.com/felixgeelhaar/opportunity/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := observability.NewLogger(observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, cli.Version))

		container, err := app.NewContainer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer container.Close()
		container.StartOutbox(ctx)

		cliApp := mcpinternal.NewCLIApp(container)
		err = mcpinternal.Serve(ctx, cfg, cliApp, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
