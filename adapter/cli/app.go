package cli

import (
	"github.com/felixgeelhaar/tandem/internal/scheduling/application/services"
	sessionCommands "github.com/felixgeelhaar/tandem/internal/sessions/application/commands"
	sessionQueries "github.com/felixgeelhaar/tandem/internal/sessions/application/queries"
	"github.com/google/uuid"
)

// App holds the CLI application dependencies.
type App struct {
	// Scheduling services
	Scheduler *services.Scheduler

	// Session Command Handlers
	ProposeSessionsHandler   *sessionCommands.ProposeSessionsHandler
	TransitionSessionHandler *sessionCommands.TransitionSessionHandler

	// Session Query Handlers
	GetSessionHandler   *sessionQueries.GetSessionHandler
	ListSessionsHandler *sessionQueries.ListSessionsHandler

	// Current user (configured per environment)
	CurrentUserID uuid.UUID
}

var appInstance *App

// SetApp sets the global CLI application instance.
func SetApp(app *App) {
	appInstance = app
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return appInstance
}
