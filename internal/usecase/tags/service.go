// Package tags suggests related refinement tags for a query.
//
// Lookups go through two tiers: a pre-computed index keyed by query tokens,
// then LLM generation validated against the catalog.
package tags

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/furnsearch/internal/cache"
	"github.com/kailas-cloud/furnsearch/internal/domain"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/candidate"
	"github.com/kailas-cloud/furnsearch/internal/domain/tag"
)

// Tier labels recorded on the tag counter.
const (
	tierDisabled    = "disabled"
	tierPrecomputed = "precomputed"
	tierCache       = "cache"
	tierLLM         = "llm"
	tierError       = "error"
	tierDerived     = "derived"
)

// Service produces related tags. It never returns an error.
type Service struct {
	cfg    Config
	index  *Index
	llm    domain.Completer
	cache  cache.Store[[]tag.Tag]
	tiers  *prometheus.CounterVec
	logger *zap.Logger
}

// NewService wires the tag engine. generated may be nil when caching is off.
// tiers is a counter vec with label "tier".
func NewService(
	cfg Config,
	index *Index,
	llm domain.Completer,
	generated cache.Store[[]tag.Tag],
	tiers *prometheus.CounterVec,
	logger *zap.Logger,
) *Service {
	if generated == nil {
		generated = cache.Nop[[]tag.Tag]{}
	}
	if index == nil {
		index = BuildIndex(IndexConfig{Catalog: cfg.Catalog})
	}
	return &Service{
		cfg:    cfg.withDefaults(),
		index:  index,
		llm:    llm,
		cache:  generated,
		tiers:  tiers,
		logger: logger,
	}
}

// Index exposes the tier-1 index.
func (s *Service) Index() *Index { return s.index }

// Suggest returns at most MaxTags tags for query. resultNames are the product
// names of the top results and only feed the LLM tier.
func (s *Service) Suggest(ctx context.Context, query string, resultNames []string) []tag.Tag {
	if !s.cfg.Enabled {
		s.record(tierDisabled)
		return []tag.Tag{}
	}

	if s.index.HasTagsForQuery(query) {
		s.record(tierPrecomputed)
		return s.index.Lookup(query, s.cfg.MaxTags)
	}

	if s.cfg.CacheEnabled {
		if cached, ok := s.cache.Get(ctx, query); ok {
			s.record(tierCache)
			return cached
		}
	}

	generated, err := s.generate(ctx, query, resultNames)
	if err != nil {
		s.record(tierError)
		s.logger.Warn("Tag generation failed",
			zap.String("query", query), zap.Error(err))
		return []tag.Tag{}
	}

	s.record(tierLLM)
	if s.cfg.CacheEnabled && len(generated) > 0 {
		s.cache.Set(ctx, query, generated, s.cfg.CacheTTL)
	}
	return generated
}

// FromResults derives tags for an image query from its results.
func (s *Service) FromResults(results []candidate.Candidate) []tag.Tag {
	if !s.cfg.Enabled {
		s.record(tierDisabled)
		return []tag.Tag{}
	}
	s.record(tierDerived)
	return FromResults(results)
}

func (s *Service) generate(ctx context.Context, query string, resultNames []string) ([]tag.Tag, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("no llm configured: %w", domain.ErrLLMProviderError)
	}

	prompt := generationPrompt(query, resultNames, s.cfg.Catalog, s.cfg.MinTags, s.cfg.MaxTags)
	text, err := s.llm.Complete(ctx, prompt, domain.CompletionOptions{
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}
	return parseGenerated(text, s.cfg.Catalog, s.cfg.MaxTags)
}

func (s *Service) record(tier string) {
	if s.tiers != nil {
		s.tiers.WithLabelValues(tier).Inc()
	}
}
