// Package cmd provides the CLI commands for furnsearch.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/furnsearch/internal/config"
	"github.com/kailas-cloud/furnsearch/internal/version"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	env    string
	format string
}

// NewRootCmd creates the root command for the furnsearch CLI.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "furnsearch",
		Short: "Semantic search over the furniture catalog",
		Long: `furnsearch runs hybrid (vector + BM25) retrieval over the furniture
catalog, fuses the rankings with Reciprocal Rank Fusion, reformulates
low-confidence queries with an LLM and suggests related tags.

Configuration is read from config/<env>.yaml.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return validateFormat(opts.format)
		},
	}

	cmd.SetVersionTemplate("furnsearch " + version.String() + "\n")

	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "Config environment (reads config/<env>.yaml)")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", formatJSON, "Output format: json, text")

	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newImageCmd(opts))
	cmd.AddCommand(newRefineCmd(opts))
	cmd.AddCommand(newTagsCmd(opts))
	cmd.AddCommand(newShellCmd(opts))

	return cmd
}

// Execute runs the root command with signal-aware context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		return fmt.Errorf("furnsearch: %w", err)
	}
	return nil
}
