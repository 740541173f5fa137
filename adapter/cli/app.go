package cli

import (
	"errors"

	"github.com/felixgeelhaar/opportunity/internal/booking/application/commands"
	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/felixgeelhaar/opportunity/pkg/observability"
)

// ErrNotInitialized is returned by commands run without a store.
var ErrNotInitialized = errors.New("application not initialized - store connection required")

// App holds the CLI application dependencies.
type App struct {
	// Command handlers
	StartSessionHandler *commands.StartSessionHandler
	Dispatcher          *commands.Dispatcher

	// Query handlers
	GetSessionHandler          *queries.GetSessionHandler
	ListSessionsHandler        *queries.ListSessionsHandler
	GetStageHandler            *queries.GetStageHandler
	GetCommitmentRecordHandler *queries.GetCommitmentRecordHandler

	HealthRegistry *observability.HealthRegistry

	// Defaults for new sessions
	DefaultJobNumber string
	BusinessDays     int
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	startSessionHandler *commands.StartSessionHandler,
	dispatcher *commands.Dispatcher,
	getSessionHandler *queries.GetSessionHandler,
	listSessionsHandler *queries.ListSessionsHandler,
	getStageHandler *queries.GetStageHandler,
	getCommitmentRecordHandler *queries.GetCommitmentRecordHandler,
) *App {
	return &App{
		StartSessionHandler:        startSessionHandler,
		Dispatcher:                 dispatcher,
		GetSessionHandler:          getSessionHandler,
		ListSessionsHandler:        listSessionsHandler,
		GetStageHandler:            getStageHandler,
		GetCommitmentRecordHandler: getCommitmentRecordHandler,
		DefaultJobNumber:           domain.DefaultJobNumber,
		BusinessDays:               domain.DefaultBusinessDays,
	}
}

// SetDefaults sets the job number and horizon used by "session start".
func (a *App) SetDefaults(jobNumber string, businessDays int) {
	if jobNumber != "" {
		a.DefaultJobNumber = jobNumber
	}
	if businessDays > 0 {
		a.BusinessDays = businessDays
	}
}

// SetHealthRegistry updates the health registry.
func (a *App) SetHealthRegistry(registry *observability.HealthRegistry) {
	a.HealthRegistry = registry
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
