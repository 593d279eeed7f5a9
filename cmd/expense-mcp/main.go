package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"expensemcp/internal/backend"
	"expensemcp/internal/cli"
	"expensemcp/internal/config"
	apphttp "expensemcp/internal/http"
	"expensemcp/internal/log"
	"expensemcp/internal/tools"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	if err := run(cfg, logger); err != nil {
		logger.Error("Expense tracker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	mcpServer := tools.NewServer(result.Service, version, logger)

	switch cfg.Transport {
	case config.TransportStdio:
		return serveStdio(ctx, mcpServer, os.Stdin, os.Stdout, logger)
	default:
		return serveSSE(ctx, cfg, mcpServer, logger)
	}
}

func serveStdio(ctx context.Context, mcpServer *server.MCPServer, in io.Reader, out io.Writer, logger *log.Logger) error {
	logger.Info("Starting expense tracker", "transport", config.TransportStdio, "version", version)

	err := server.NewStdioServer(mcpServer).Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

func serveSSE(ctx context.Context, cfg *config.Config, mcpServer *server.MCPServer, logger *log.Logger) error {
	srv := apphttp.NewServer(cfg.Addr(), mcpServer, apphttp.Options{
		BaseURL:            cfg.BaseURL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting expense tracker",
			"transport", config.TransportSSE,
			"addr", cfg.Addr(),
			"sse_path", apphttp.SSEPath,
			"backend", cfg.DataBackend,
			"version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
