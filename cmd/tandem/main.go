package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/tandem/adapter/cli"
	"github.com/felixgeelhaar/tandem/adapter/cli/schedule"
	"github.com/felixgeelhaar/tandem/adapter/cli/session"
	"github.com/felixgeelhaar/tandem/internal/app"
	"github.com/felixgeelhaar/tandem/pkg/config"
	"github.com/felixgeelhaar/tandem/pkg/observability"
	"github.com/google/uuid"
)

func main() {
	logger := observability.LoggerFromEnv()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}
	cli.SetLogger(logger)

	// Try to initialize the full container
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			// In development, allow the CLI to run without a database
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()

		userID, err := uuid.Parse(cfg.UserID)
		if err != nil {
			logger.Error("invalid TANDEM_USER_ID", "error", err)
			os.Exit(1)
		}

		cli.SetApp(&cli.App{
			Scheduler:                container.Scheduler,
			ProposeSessionsHandler:   container.ProposeSessions,
			TransitionSessionHandler: container.TransitionSession,
			GetSessionHandler:        container.GetSession,
			ListSessionsHandler:      container.ListSessions,
			CurrentUserID:            userID,
		})
	}

	// Register command groups
	cli.AddCommand(schedule.Cmd)
	cli.AddCommand(session.Cmd)

	cli.Execute()
}
