package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/furnsearch/internal/domain/tag"
)

type refineOptions struct {
	query   string
	tag     string
	tagType string
}

func newRefineCmd(opts *globalOptions) *cobra.Command {
	var ro refineOptions

	cmd := &cobra.Command{
		Use:   "refine",
		Short: "Refine a previous query with a related tag",
		Long: `Refine a previous query with one of its related tags.

Category tags are prepended to the query, other tag types appended,
and the combined query runs through the full text search.

Examples:
  furnsearch refine --query "sofa" --tag "Sectionals" --type category
  furnsearch refine --query "sofa" --tag "Leather" --type material`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			category, err := tag.ParseCategory(ro.tagType)
			if err != nil {
				return fmt.Errorf("--type: %w", err)
			}

			a, err := newApp(cmd.Context(), opts.env)
			if err != nil {
				return err
			}
			defer a.Close()

			resp := a.search.Refine(cmd.Context(), ro.query, ro.tag, category)
			return writeResponse(cmd.OutOrStdout(), opts.format, resp)
		},
	}

	cmd.Flags().StringVarP(&ro.query, "query", "q", "", "Original query")
	cmd.Flags().StringVarP(&ro.tag, "tag", "t", "", "Tag label to apply")
	cmd.Flags().StringVar(&ro.tagType, "type", string(tag.CategoryCategory), "Tag type: category, material, style, color, price_range")
	_ = cmd.MarkFlagRequired("query")
	_ = cmd.MarkFlagRequired("tag")

	return cmd
}
