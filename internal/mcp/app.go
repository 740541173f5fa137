package mcp

import (
	"github.com/felixgeelhaar/opportunity/adapter/cli"
	"github.com/felixgeelhaar/opportunity/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container) *cli.App {
	cliApp := cli.NewApp(
		container.StartSessionHandler,
		container.Dispatcher,
		container.GetSessionHandler,
		container.ListSessionsHandler,
		container.GetStageHandler,
		container.GetCommitmentRecordHandler,
	)
	cliApp.SetDefaults(container.Config.DefaultJobNumber, container.Config.BusinessDays)
	cliApp.SetHealthRegistry(container.HealthRegistry())
	return cliApp
}
