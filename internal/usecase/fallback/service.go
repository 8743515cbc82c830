// Package fallback reformulates queries whose results look weak.
package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/furnsearch/internal/cache"
	"github.com/kailas-cloud/furnsearch/internal/domain"
)

// State is the orchestrator's outcome for one query.
type State string

// Fallback states.
const (
	Direct   State = "DIRECT"
	Enhanced State = "ENHANCED"
)

// Outcome labels recorded on the fallback counter.
const (
	outcomeSkipped   = "skipped"
	outcomeCacheHit  = "cache_hit"
	outcomeExtracted = "extracted"
	outcomeDegraded  = "degraded"
)

// Intent is the LLM's reading of an abstract query.
type Intent struct {
	AbstractTerms      []string            `json:"abstract_terms"`
	ConcreteAttributes map[string][]string `json:"concrete_attributes"`
	EnhancedQuery      string              `json:"enhanced_query"`
}

// Decision reports whether retrieval should be re-run and with which query.
type Decision struct {
	State     State
	Triggered bool
	Query     string
	Intent    Intent
}

// Service decides when to expand a query and performs the expansion.
type Service struct {
	cfg      Config
	llm      domain.Completer
	cache    cache.Store[Intent]
	outcomes *prometheus.CounterVec
	logger   *zap.Logger
}

// New creates the fallback orchestrator. intents may be nil when caching is off.
// outcomes is a counter vec with label "outcome", passed explicitly.
func New(
	cfg Config,
	llm domain.Completer,
	intents cache.Store[Intent],
	outcomes *prometheus.CounterVec,
	logger *zap.Logger,
) *Service {
	if intents == nil {
		intents = cache.Nop[Intent]{}
	}
	return &Service{
		cfg:      cfg.withDefaults(),
		llm:      llm,
		cache:    intents,
		outcomes: outcomes,
		logger:   logger,
	}
}

// ScoreSource returns the configured score source.
func (s *Service) ScoreSource() ScoreSource { return s.cfg.ScoreSource }

// ShouldTrigger reports whether a top score is low enough to warrant expansion.
// The boundary is exclusive: a score equal to the threshold does not trigger.
func (s *Service) ShouldTrigger(score float64) bool {
	return s.cfg.Enabled && score < s.cfg.SimilarityThreshold
}

// Decide runs the DIRECT → ENHANCED transition for one query.
// The state is Enhanced only when the expansion changed the query text.
func (s *Service) Decide(ctx context.Context, query string, topScore float64) Decision {
	d := Decision{State: Direct, Query: query}
	if !s.ShouldTrigger(topScore) {
		s.record(outcomeSkipped)
		return d
	}

	s.logger.Info("Low-quality results, extracting intent",
		zap.String("query", query), zap.Float64("top_score", topScore))

	d.Triggered = true
	d.Intent = s.ExtractIntent(ctx, query)

	enhanced := strings.TrimSpace(d.Intent.EnhancedQuery)
	if enhanced != "" && enhanced != strings.TrimSpace(query) {
		d.State = Enhanced
		d.Query = enhanced
	}
	return d
}

// ExtractIntent asks the LLM to map abstract terms onto concrete attributes.
// Provider and parse failures degrade to an intent whose enhanced query is
// the original query; they are logged, never returned.
func (s *Service) ExtractIntent(ctx context.Context, query string) Intent {
	if s.cfg.CacheEnabled {
		if cached, ok := s.cache.Get(ctx, query); ok {
			s.record(outcomeCacheHit)
			return cached
		}
	}

	intent, err := s.extract(ctx, query)
	if err != nil {
		s.record(outcomeDegraded)
		s.logger.Warn("Intent extraction failed, keeping original query",
			zap.String("query", query), zap.Error(err))
		return Intent{AbstractTerms: []string{}, ConcreteAttributes: map[string][]string{}, EnhancedQuery: query}
	}

	s.record(outcomeExtracted)
	if s.cfg.CacheEnabled {
		s.cache.Set(ctx, query, intent, s.cfg.CacheTTL)
	}
	return intent
}

func (s *Service) extract(ctx context.Context, query string) (Intent, error) {
	text, err := s.llm.Complete(ctx, intentPrompt(query, s.cfg.Catalog), domain.CompletionOptions{
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
	})
	if err != nil {
		return Intent{}, fmt.Errorf("complete: %w", err)
	}

	raw, err := domain.ExtractJSON(text)
	if err != nil {
		return Intent{}, err
	}

	var intent Intent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		return Intent{}, fmt.Errorf("decode intent: %w: %w", domain.ErrMalformedLLMOutput, err)
	}

	if intent.AbstractTerms == nil {
		intent.AbstractTerms = []string{}
	}
	if intent.ConcreteAttributes == nil {
		intent.ConcreteAttributes = map[string][]string{}
	}
	if strings.TrimSpace(intent.EnhancedQuery) == "" {
		intent.EnhancedQuery = query
	}
	return intent, nil
}

func (s *Service) record(outcome string) {
	if s.outcomes != nil {
		s.outcomes.WithLabelValues(outcome).Inc()
	}
}
