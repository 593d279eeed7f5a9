// Package cli provides common CLI initialization utilities shared by
// cmd/expense-mcp and cmd/expense-worker.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expensemcp/internal/config"
	"expensemcp/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from cfg and makes it the default.
// stdio transports log to stderr because stdout carries the protocol.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	var out io.Writer = os.Stdout
	if cfg.Transport == config.TransportStdio {
		out = os.Stderr
	}
	return newLogger(cfg.LogLevel, component, out)
}

func newLogger(level, component string, out io.Writer) *log.Logger {
	logCfg := log.DefaultConfig()
	logCfg.Component = component
	logCfg.Output = out

	parsed, err := log.ParseLevel(level)
	logCfg.Level = parsed

	logger := log.New(logCfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info log level", "error", err)
	}
	return logger
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
