/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the shift roster server: configuration, dependency
  wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse flags/environment
  2. Configure zerolog
  3. Open the SQLite store and run migrations
  4. Seed the admin and "_open" accounts on first run
  5. Wire the Slack sink (or a no-op when no token is set)
  6. Start the HTTP server with graceful shutdown

CONFIGURATION:
  PORT              HTTP port (default 8080; also -port)
  DB_PATH           SQLite file (default roster.db; also -db; ":memory:" ok)
  JWT_SECRET        token signing secret (required outside dev)
  SLACK_BOT_TOKEN   enables Slack notifications when set
  ADMIN_USERNAME    seeded admin login (default "admin")
  ADMIN_PASSWORD    seeded admin password (first run only)
  LOG_LEVEL         zerolog level (default info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait for active requests
  (30s timeout), drain in-flight notifications, close the database.

SEE ALSO:
  - api/server.go: router configuration
  - store/sqlite: database implementation and seed
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/warp/shift-engine/api"
	"github.com/warp/shift-engine/auth"
	"github.com/warp/shift-engine/exchange"
	"github.com/warp/shift-engine/notify"
	"github.com/warp/shift-engine/notify/slacknotify"
	"github.com/warp/shift-engine/schedule"
	"github.com/warp/shift-engine/store/sqlite"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "roster.db"), "SQLite database path")
	flag.Parse()

	logger := newLogger(envStr("LOG_LEVEL", "info"))

	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	if err := seedAdmin(store); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed database")
	}

	secret := envStr("JWT_SECRET", "")
	if secret == "" {
		secret = "dev-only-insecure-secret"
		logger.Warn().Msg("JWT_SECRET not set; using an insecure development secret")
	}

	var sink notify.Sink
	via := "none"
	if token := envStr("SLACK_BOT_TOKEN", ""); token != "" {
		sink = slacknotify.New(token)
		via = "slack"
		logger.Info().Msg("slack notifications enabled")
	}

	var notifier notify.Notifier
	var dispatcher *notify.Dispatcher
	if sink != nil {
		dispatcher = notify.NewDispatcher(sink, store, logger, via)
		notifier = dispatcher
	} else {
		notifier = notify.Discard{}
		logger.Info().Msg("no notification sink configured; notifications disabled")
	}

	exchangeSvc := exchange.New(store, notifier, logger)
	authSvc := auth.NewService(store, auth.NewTokenIssuer([]byte(secret)))
	handler := api.NewHandler(store, exchangeSvc, authSvc, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", *port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	if dispatcher != nil {
		dispatcher.Wait()
	}

	logger.Info().Msg("server stopped")
}

// seedAdmin bootstraps the first admin and the "_open" placeholder when the
// database is empty.
func seedAdmin(store *sqlite.Store) error {
	password := envStr("ADMIN_PASSWORD", "")
	if password == "" {
		var err error
		password, err = auth.TempPassword()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "generated admin password: %s\n", password)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &schedule.Staff{
		Username:           envStr("ADMIN_USERNAME", "admin"),
		FullName:           "Administrator",
		Role:               schedule.RoleAdmin,
		IsActive:           true,
		MustChangePassword: true,
		PasswordHash:       hash,
	}
	return store.Bootstrap(context.Background(), admin)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
