package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/opportunity/adapter/cli"
	"github.com/felixgeelhaar/opportunity/adapter/cli/mcp"
	"github.com/felixgeelhaar/opportunity/adapter/cli/session"
	"github.com/felixgeelhaar/opportunity/internal/app"
	mcpinternal "github.com/felixgeelhaar/opportunity/internal/mcp"
	"github.com/felixgeelhaar/opportunity/pkg/config"
	"github.com/felixgeelhaar/opportunity/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config, using in-memory development store", "error", err)
		cfg = &config.Config{AppEnv: "development", StoreDriver: "memory"}
	}

	logger := observability.NewLogger(observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, cli.Version))
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	cli.SetApp(mcpinternal.NewCLIApp(container))

	// Register commands
	cli.AddCommand(session.Cmd)
	cli.AddCommand(mcp.Cmd)

	// Close drains the outbox, so commands do not start the background loop
	err = cli.Execute(ctx)
	container.Close()
	cli.Exit(err)
}
