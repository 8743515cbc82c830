package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/furnsearch/internal/domain/search/response"
	"github.com/kailas-cloud/furnsearch/internal/domain/tag"
)

// searcher is the orchestrator surface the commands drive.
type searcher interface {
	Text(ctx context.Context, raw string) response.Response
	Refine(ctx context.Context, original, label string, category tag.Category) response.Response
	Image(ctx context.Context, data []byte) response.Response
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog with a free-text query",
		Long: `Search the catalog with a free-text query.

Price phrases and catalog attributes are extracted from the query,
vector and keyword results are fused, and low-confidence queries are
reformulated by the LLM when llm_fallback is enabled.

Examples:
  furnsearch search "grey sofa under $1000"
  furnsearch search "oak dining table around 800" --format text`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.env)
			if err != nil {
				return err
			}
			defer a.Close()

			resp := a.search.Text(cmd.Context(), strings.Join(args, " "))
			return writeResponse(cmd.OutOrStdout(), opts.format, resp)
		},
	}
}
