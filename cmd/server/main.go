/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the walk ledger server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, then flags)
  2. Initialize logger
  3. Initialize SQLite store (migrations run on open)
  4. Create walking service and API handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS (override environment):
  --port       HTTP server port (PORT, default: 8080)
  --db         SQLite database path (DB_PATH, default: walks.db)
               Use ":memory:" for an in-memory database
  --timezone   IANA zone used for "today" (TIMEZONE, default: Local)
  --log-level  debug, info, warn (or warning), error (LOG_LEVEL, default: info)
  --log-format text or json (LOG_FORMAT, default: text)
  --env-file   .env file to load (default: .env)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (SHUTDOWN_TIMEOUT, default 30s)
  3. Close database connection
  4. Exit

EXAMPLES:
  ./server --db="./data/walks.db"
  ./server --db=":memory:" --log-format=json
  PORT=3000 TIMEZONE=Europe/Paris ./server

SEE ALSO:
  - config/config.go: Environment configuration
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/warp/walk-ledger/api"
	"github.com/warp/walk-ledger/config"
	"github.com/warp/walk-ledger/logging"
	"github.com/warp/walk-ledger/store/sqlite"
	"github.com/warp/walk-ledger/walking"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("server", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "path to a .env file")
	port := flags.Int("port", 0, "HTTP server port (overrides PORT)")
	dbPath := flags.String("db", "", "SQLite database path (overrides DB_PATH)")
	timezone := flags.String("timezone", "", "IANA time zone for today's date (overrides TIMEZONE)")
	logLevel := flags.String("log-level", "", "log level (overrides LOG_LEVEL)")
	logFormat := flags.String("log-format", "", "log format, text or json (overrides LOG_FORMAT)")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}
	if flags.Changed("port") {
		cfg.Port = *port
	}
	if flags.Changed("db") {
		cfg.DBPath = *dbPath
	}
	if flags.Changed("timezone") {
		cfg.Timezone = *timezone
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = *logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(logging.Config{Level: level, Format: cfg.LogFormat, Output: os.Stdout})
	slog.SetDefault(logger)

	loc, _ := cfg.Location()

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()
	logging.WithComponent(logger, logging.ComponentStorage).Info("database ready", "path", cfg.DBPath)

	svc := walking.NewService(store, store, loc, logging.WithComponent(logger, logging.ComponentWalking))
	handler := api.NewHandler(svc, store, logger)
	router := api.NewRouter(handler, api.Options{AllowedOrigins: cfg.CORSOrigins})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting",
			logging.FieldComponent, logging.ComponentApp,
			"addr", server.Addr, "db", cfg.DBPath, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server", logging.FieldComponent, logging.ComponentApp)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped", logging.FieldComponent, logging.ComponentApp)
	return nil
}
