package tags

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/furnsearch/internal/domain"
	"github.com/kailas-cloud/furnsearch/internal/domain/catalog"
	"github.com/kailas-cloud/furnsearch/internal/domain/tag"
)

const (
	maxPromptResults = 5
	defaultRelevance = 0.5
)

type rawTag struct {
	Tag       string   `json:"tag"`
	Type      string   `json:"type"`
	Relevance *float64 `json:"relevance"`
}

type rawTags struct {
	Tags []rawTag `json:"tags"`
}

func generationPrompt(query string, resultNames []string, c catalog.Catalog, minTags, maxTags int) string {
	names := resultNames
	if len(names) > maxPromptResults {
		names = names[:maxPromptResults]
	}

	var results strings.Builder
	for _, n := range names {
		fmt.Fprintf(&results, "- %s\n", n)
	}
	if results.Len() == 0 {
		results.WriteString("- (none)\n")
	}

	return fmt.Sprintf(`Suggest refinement tags for a furniture search.

Shopper query: %q
Top results:
%s
Only use values from these lists. A tag outside them will be discarded.
Categories: %s
Materials: %s
Styles: %s
Colors: %s
Price ranges: %s

Return between %d and %d tags. Reply with JSON only:
{"tags": [{"tag": "<value>", "type": "category|material|style|color|price_range", "relevance": 0.0-1.0}]}
`,
		query, results.String(),
		strings.Join(c.Categories, ", "),
		strings.Join(c.Materials, ", "),
		strings.Join(c.Styles, ", "),
		strings.Join(c.Colors, ", "),
		strings.Join(c.PriceRanges, ", "),
		minTags, maxTags,
	)
}

// parseGenerated decodes the LLM reply and keeps only tags whose label is in
// the catalog list of their type. Labels come back in catalog spelling.
func parseGenerated(text string, c catalog.Catalog, maxTags int) ([]tag.Tag, error) {
	raw, err := domain.ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var payload rawTags
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode tags: %w: %w", domain.ErrMalformedLLMOutput, err)
	}

	out := make([]tag.Tag, 0, len(payload.Tags))
	for _, r := range payload.Tags {
		label := strings.TrimSpace(r.Tag)
		if label == "" {
			continue
		}

		// A missing type means category. An unrecognized type drops the tag
		// rather than re-filing it under categories.
		category := tag.CategoryCategory
		if strings.TrimSpace(r.Type) != "" {
			category, err = tag.ParseCategory(r.Type)
			if err != nil {
				continue
			}
		}

		canonical, ok := c.Canonical(category.CatalogDimension(), label)
		if !ok {
			continue
		}

		relevance := defaultRelevance
		if r.Relevance != nil {
			relevance = *r.Relevance
		}
		out = append(out, tag.New(canonical, category, relevance))
	}

	return tag.SortAndDedup(out, maxTags), nil
}
