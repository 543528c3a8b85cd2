package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vibesana",
	Short: "AI-powered task breakdown service",
	Long: `vibesana turns free-form project descriptions into structured,
prioritized task lists using an OpenAI-compatible model.

It runs either as an HTTP service (vibesana serve) or as a one-shot
CLI (vibesana breakdown "..."). Tasks can be persisted to a local
SQLite database and managed with the tasks subcommands.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (YAML, optional)")
}
