// Package cli holds the startup and shutdown steps shared by the ledgerly commands.
package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"ledgerly/internal/config"
	"ledgerly/internal/log"
)

// SetupLogger builds the component logger for a command and installs it as
// the slog default. An unparseable level falls back to info.
func SetupLogger(component, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	cfg := log.DefaultConfig()
	cfg.Component = component
	if err == nil {
		cfg.Level = lvl
	}

	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", level)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		if parent.Err() == nil {
			logger.Info("Shutdown signal received")
		}
	}()
	return ctx, stop
}

// ShutdownWithTimeout runs cleanup with a deadline and reports whether it
// finished in time.
func ShutdownWithTimeout(logger *slog.Logger, timeout time.Duration, cleanup func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- cleanup(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("Shutdown cleanup failed", log.FieldError, err)
			return err
		}
		logger.Info("Shutdown complete")
		return nil
	case <-ctx.Done():
		logger.Warn("Shutdown timeout reached")
		return errors.New("shutdown timed out")
	}
}
