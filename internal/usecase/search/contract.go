package search

import (
	"context"

	"github.com/kailas-cloud/furnsearch/internal/domain/search/candidate"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/furnsearch/internal/domain/tag"
	"github.com/kailas-cloud/furnsearch/internal/usecase/fallback"
)

// Retriever defines the index contract for search operations.
// Price in filters is a hard constraint; every other dimension only boosts.
type Retriever interface {
	VectorSearch(ctx context.Context, vector []float32, filters filter.Set, k int) ([]candidate.Candidate, error)
	LexicalSearch(ctx context.Context, text string, filters filter.Set, k int) ([]candidate.Candidate, error)
	ImageSearch(ctx context.Context, vector []float32, k int) ([]candidate.Candidate, error)
}

// FilterExtractor derives structured filters from query text.
type FilterExtractor interface {
	Extract(query string) filter.Set
}

// Fallback decides whether a weak result set should be retried with an expanded query.
type Fallback interface {
	ScoreSource() fallback.ScoreSource
	Decide(ctx context.Context, query string, topScore float64) fallback.Decision
}

// TagSuggester produces related tags. Implementations never fail.
type TagSuggester interface {
	Suggest(ctx context.Context, query string, resultNames []string) []tag.Tag
	FromResults(results []candidate.Candidate) []tag.Tag
}
