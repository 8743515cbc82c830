package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/furnsearch/internal/usecase/tags"
)

func newTagsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Inspect the pre-computed related tag index",
	}
	cmd.AddCommand(newTagsExportCmd(opts))
	cmd.AddCommand(newTagsLookupCmd(opts))
	return cmd
}

func newTagsExportCmd(opts *globalOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the tag index as JSON",
		Long: `Write the pre-computed tag index (category bundles, query pattern
bundles and the term index) as JSON. The file can be pointed to by
related_tags.index_file to skip building the index at startup.

Examples:
  furnsearch tags export
  furnsearch tags export --out tag_index.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			idx, err := buildTagIndex(opts.env)
			if err != nil {
				return err
			}
			if out == "" {
				return exportIndex(cmd.OutOrStdout(), idx)
			}

			f, err := os.Create(filepath.Clean(out))
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := exportIndex(f, idx); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}
			categories, patterns := idx.Stats()
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d categories, %d patterns)\n", out, categories, patterns)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newTagsLookupCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "lookup <query>",
		Short: "Show the pre-computed tags for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := buildTagIndex(opts.env)
			if err != nil {
				return err
			}
			q := strings.Join(args, " ")

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			err = enc.Encode(map[string]any{
				"query":          q,
				"matched":        idx.HasTagsForQuery(q),
				"should_use_llm": idx.ShouldUseLLM(q),
				"related_tags":   idx.Lookup(q, limit),
			})
			if err != nil {
				return fmt.Errorf("write lookup: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", tags.DefaultMaxTags, "Maximum number of tags")
	return cmd
}

// buildTagIndex needs only the config: no database or provider is touched.
func buildTagIndex(env string) (*tags.Index, error) {
	cfg, logger, err := loadConfig(env)
	if err != nil {
		return nil, err
	}
	defer func() { _ = logger.Sync() }()
	return loadTagIndex(cfg, logger)
}

func exportIndex(w io.Writer, idx *tags.Index) error {
	if err := idx.Export(w); err != nil {
		return fmt.Errorf("export tag index: %w", err)
	}
	return nil
}
