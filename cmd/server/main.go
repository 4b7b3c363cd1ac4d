// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playrelay/internal/api/webhook"
	"github.com/osa030/playrelay/internal/app/notify"
	"github.com/osa030/playrelay/internal/app/relay"
	"github.com/osa030/playrelay/internal/infra/config"
	"github.com/osa030/playrelay/internal/infra/logger"
)

var (
	app        = kingpin.New("playrelay-server", "Jellyfin playback event relay")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	// Load config first so the log level from file/env applies
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Level: cfg.Log.Level,
		File:  *logfile,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	printStartupSummary(cfg)

	// Create notification sinks and dispatcher
	sinks, err := notify.NewSinksFromConfig(cfg.Sinks)
	if err != nil {
		return fmt.Errorf("failed to create sinks: %w", err)
	}
	manager := notify.NewManager(sinks)
	manager.Start()

	// Create session store and tracker
	store := relay.NewStore()
	tracker := relay.NewTracker(store, relay.Config{
		PauseDebounce:       cfg.PauseDebounce(),
		CreditsThresholdPct: cfg.Relay.CreditsThresholdPct,
		AllowedDevices:      cfg.Relay.AllowedDevices,
	}, manager)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           webhook.NewRouter(tracker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		manager.Close()
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}
	manager.Close()

	zlog.Info().Msg("Server stopped")

	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

// printStartupSummary logs the effective configuration.
func printStartupSummary(cfg *config.Config) {
	zlog.Info().Msg("playrelay: Jellyfin playback event relay")
	zlog.Info().Msgf("  Listen:          %s", cfg.Server.Addr)
	zlog.Info().Msgf("  Pause debounce:  %v", cfg.PauseDebounce())
	zlog.Info().Msgf("  Credits at:      %g%%", cfg.Relay.CreditsThresholdPct)
	if len(cfg.Relay.AllowedDevices) > 0 {
		zlog.Info().Msgf("  Allowed devices: %s", strings.Join(cfg.Relay.AllowedDevices, ", "))
	} else {
		zlog.Info().Msg("  Allowed devices: (all)")
	}
	if len(cfg.Sinks) == 0 {
		zlog.Warn().Msg("  Sinks:           (none) - events will be logged but not forwarded")
	}
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
