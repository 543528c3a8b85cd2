package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattheweller/vibesana/internal/breakdown"
	"github.com/mattheweller/vibesana/internal/config"
	"github.com/mattheweller/vibesana/internal/health"
	"github.com/mattheweller/vibesana/internal/log"
	"github.com/mattheweller/vibesana/internal/provider"
	"github.com/mattheweller/vibesana/internal/server"
	"github.com/mattheweller/vibesana/internal/store"
	"github.com/mattheweller/vibesana/internal/telemetry"
	"github.com/mattheweller/vibesana/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP breakdown service",
	Long: `Start the HTTP service exposing the AI task breakdown endpoint,
task CRUD endpoints, and Kubernetes-style health probes.

Endpoints:
  /api/v1/ai-task-breakdown - POST a project description, get tasks
  /api/v1/tasks             - task CRUD backed by SQLite
  /health/live              - liveness probe
  /health/ready             - readiness probe
  /health/startup           - startup probe
  /healthz                  - backward-compatible readiness endpoint

The server drains connections gracefully on SIGTERM or SIGINT.

Example:
  # Start on the default port 8080
  OPENAI_API_KEY=sk-... vibesana serve

  # Start on a custom address
  vibesana serve --address 127.0.0.1 --port 9090`,
	RunE: runServe,
}

var (
	servePort            string
	serveAddress         string
	serveShutdownTimeout time.Duration
)

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Address to bind to (overrides config)")
	serveCmd.Flags().DurationVar(&serveShutdownTimeout, "shutdown-timeout", 0, "Maximum time to wait for connections to drain during shutdown")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serveAddress != "" || servePort != "" {
		cfg.ListenAddr = overrideAddr(cfg.ListenAddr, serveAddress, servePort)
	}
	if serveShutdownTimeout > 0 {
		cfg.ShutdownTimeout = serveShutdownTimeout
	}

	logger := log.New(log.Config{
		Level:  log.ParseLevel(cfg.LogLevel),
		Format: log.ParseFormat(cfg.LogFormat),
		Output: os.Stderr,
	})
	log.SetDefaultLogger(logger)

	info := version.GetInfo()

	// Tracing is best-effort. A failed init logs and moves on.
	traceCfg := telemetry.ConfigFromCredential(cfg.OpikAPIKey, cfg.TraceEndpoint, info.Version)
	shutdownTracing, err := telemetry.InitProvider(ctx, traceCfg)
	if err != nil {
		logger.WithError(err).Warn("tracing disabled, could not initialize provider")
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.WithError(err).Warn("tracing shutdown failed")
		}
	}()

	client, err := provider.NewOpenAIClient(cfg.OpenAIAPIKey,
		provider.WithBaseURL(cfg.OpenAIBaseURL),
		provider.WithModel(cfg.Model),
		provider.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return err
	}

	taskStore, err := store.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer taskStore.Close()

	svc := breakdown.NewService(client, telemetry.NewRecorder(logger), logger,
		breakdown.WithModel(cfg.Model),
		breakdown.WithTimeout(cfg.RequestTimeout),
	)

	pm := health.NewProbeManager(info.Version)
	pm.AddChecker(health.NewProviderChecker(client))
	pm.AddChecker(health.NewStoreChecker(taskStore))

	srv := server.NewServer(svc, taskStore, pm, logger, server.Config{
		Address:         cfg.ListenAddr,
		ShutdownTimeout: cfg.ShutdownTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
	})

	logger.Info("starting server",
		"version", info.Version,
		"addr", cfg.ListenAddr,
		"model", cfg.Model,
		"tracing", cfg.TracingEnabled(),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout+5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}

		logger.Info("server stopped")
		return nil
	}
}

// overrideAddr applies flag-level host and port overrides to a
// host:port listen address.
func overrideAddr(addr, host, port string) string {
	curHost := "0.0.0.0"
	curPort := "8080"
	if i := lastColon(addr); i >= 0 {
		curHost, curPort = addr[:i], addr[i+1:]
	}
	if host != "" {
		curHost = host
	}
	if port != "" {
		curPort = port
	}
	return curHost + ":" + curPort
}

func lastColon(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}
