package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/rs/zerolog"
	tc "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/stanstork/meeting-trigger/internal/config"
	"github.com/stanstork/meeting-trigger/internal/dispatch"
	"github.com/stanstork/meeting-trigger/internal/handlers"
	"github.com/stanstork/meeting-trigger/internal/listener"
	"github.com/stanstork/meeting-trigger/internal/middleware"
	"github.com/stanstork/meeting-trigger/internal/migration"
	"github.com/stanstork/meeting-trigger/internal/repository"
	"github.com/stanstork/meeting-trigger/internal/routes"
	"github.com/stanstork/meeting-trigger/internal/temporal"
	"github.com/stanstork/meeting-trigger/internal/temporal/activities"
	"github.com/stanstork/meeting-trigger/internal/temporal/workflows"
	"github.com/stanstork/meeting-trigger/internal/trigger"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type application struct {
	config         *config.Config
	db             *sql.DB
	temporalClient tc.Client
	handler        *trigger.Handler
	logger         zerolog.Logger
}

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Set up structured, level-based logging.
	logger := newLogger(cfg.Log)
	log.SetFlags(0)
	log.SetOutput(logger)

	// Initialize database connection.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping database")
	}

	// Run database migrations.
	if err := migration.RunMigrations(db, logger); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	meetingRepo := repository.NewMeetingRepository(db)
	handler := trigger.NewHandler(meetingRepo, logger,
		trigger.WithScheduleOffset(cfg.Trigger.ScheduleOffset),
		trigger.WithDeduplication(cfg.Trigger.Deduplicate),
	)

	app := &application{
		config:  cfg,
		db:      db,
		handler: handler,
		logger:  logger,
	}

	// Pick how change notifications reach the handler.
	var dispatcher dispatch.Dispatcher = dispatch.NewDirect(handler)
	var temporalWorker worker.Worker
	if cfg.Trigger.Mode == config.ModeTemporal {
		app.temporalClient, err = tc.Dial(tc.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    temporal.NewZerologAdapter(logger),
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Unable to create Temporal client")
		}
		defer app.temporalClient.Close()

		temporalWorker = app.startTemporalWorker()
		dispatcher = dispatch.NewTemporal(app.temporalClient, cfg.Temporal.TaskQueue, cfg.Temporal.MaxAttempts, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Listener.Enabled {
		app.startListener(ctx, dispatcher)
	}

	// Initialize the HTTP router and middleware.
	router := routes.NewRouter(
		handlers.NewEventHandler(handler, logger),
		handlers.NewMeetingHandler(meetingRepo, logger),
		middleware.PushAuth(cfg.Auth.PushSecret),
	)
	loggedRouter := middleware.LoggingMiddleware(logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins(cfg.CORS.AllowedOrigins),
		h.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(loggedRouter)
	recovered := h.RecoveryHandler(h.RecoveryLogger(log.Default()))(corsHandler)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(recovered, cancel, temporalWorker)

	logger.Info().Msg("Application terminated.")
}

func (app *application) startTemporalWorker() worker.Worker {
	w := worker.New(app.temporalClient, app.config.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.InvitationUpdateWorkflow)
	w.RegisterActivity(&activities.Activities{Handler: app.handler})

	if err := w.Start(); err != nil {
		app.logger.Fatal().Err(err).Msg("Unable to start Temporal worker")
	}
	app.logger.Info().Str("task_queue", app.config.Temporal.TaskQueue).Msg("Temporal worker started")
	return w
}

func (app *application) startListener(ctx context.Context, dispatcher dispatch.Dispatcher) {
	pqListener := listener.NewPQListener(app.config.DatabaseURL, app.config.Listener, app.logger)
	l := listener.New(pqListener, dispatcher, app.config.Listener, app.logger)

	go func() {
		defer pqListener.Close()
		if err := l.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			app.logger.Fatal().Err(err).Msg("Invitation listener stopped")
		}
	}()
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, stopListener context.CancelFunc, temporalWorker worker.Worker) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		app.logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		app.logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		app.logger.Error().Err(err).Msg("Server error occurred")
	}

	stopListener()

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		app.logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		app.logger.Info().Msg("HTTP server shutdown complete.")
	}

	if temporalWorker != nil {
		app.logger.Info().Msg("Stopping Temporal worker...")
		temporalWorker.Stop()
		app.logger.Info().Msg("Temporal worker stopped.")
	}
}
