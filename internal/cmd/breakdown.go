package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattheweller/vibesana/internal/breakdown"
	"github.com/mattheweller/vibesana/internal/config"
	"github.com/mattheweller/vibesana/internal/log"
	"github.com/mattheweller/vibesana/internal/provider"
	"github.com/mattheweller/vibesana/internal/store"
	"github.com/mattheweller/vibesana/internal/telemetry"
	"github.com/mattheweller/vibesana/internal/version"
)

var breakdownCmd = &cobra.Command{
	Use:   "breakdown <description>",
	Short: "Break a project description into tasks",
	Long: `Break a free-form project description into a prioritized task list
using the configured model and print the result as JSON.

Requires OPENAI_API_KEY. When OPIK_API_KEY is set, the call is traced.

Example:
  vibesana breakdown "Build a login page with email and password"

  # Persist the generated tasks to the local database
  vibesana breakdown --save "Set up a CI pipeline"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBreakdown,
}

var breakdownSave bool

func init() {
	breakdownCmd.Flags().BoolVar(&breakdownSave, "save", false, "persist the generated tasks to the task database")

	rootCmd.AddCommand(breakdownCmd)
}

func runBreakdown(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	description := strings.Join(args, " ")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := log.New(log.Config{
		Level:  log.ParseLevel(cfg.LogLevel),
		Format: log.ParseFormat(cfg.LogFormat),
		Output: os.Stderr,
	})

	traceCfg := telemetry.ConfigFromCredential(cfg.OpikAPIKey, cfg.TraceEndpoint, version.GetInfo().Version)
	shutdownTracing, err := telemetry.InitProvider(ctx, traceCfg)
	if err != nil {
		logger.WithError(err).Warn("tracing disabled, could not initialize provider")
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	client, err := provider.NewOpenAIClient(cfg.OpenAIAPIKey,
		provider.WithBaseURL(cfg.OpenAIBaseURL),
		provider.WithModel(cfg.Model),
		provider.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return err
	}

	svc := breakdown.NewService(client, telemetry.NewRecorder(logger), logger,
		breakdown.WithModel(cfg.Model),
		breakdown.WithTimeout(cfg.RequestTimeout),
	)

	result, err := svc.Breakdown(ctx, description)
	if err != nil {
		return err
	}

	if breakdownSave {
		taskStore, err := store.New(cfg.DBPath)
		if err != nil {
			return err
		}
		defer taskStore.Close()

		for _, task := range result.Tasks {
			saved, err := taskStore.Create(ctx, task)
			if err != nil {
				return err
			}
			logger.Debug("saved task", "id", saved.ID, "title", saved.Title)
		}
		fmt.Fprintf(os.Stderr, "Saved %d tasks to %s\n", len(result.Tasks), cfg.DBPath)
	}

	out, err := json.MarshalIndent(result.Tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
