// Package search orchestrates text, image and refinement queries end to end.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/furnsearch/internal/domain"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/candidate"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/query"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/response"
	"github.com/kailas-cloud/furnsearch/internal/domain/tag"
	"github.com/kailas-cloud/furnsearch/internal/logger"
	"github.com/kailas-cloud/furnsearch/internal/metrics"
	"github.com/kailas-cloud/furnsearch/internal/usecase/fallback"
	"github.com/kailas-cloud/furnsearch/internal/usecase/fusion"
)

// Request kinds, used as the metrics "kind" label.
const (
	kindText   = "text"
	kindImage  = "image"
	kindRefine = "refine"
)

// Deps are the collaborators of the orchestrator.
type Deps struct {
	Retriever     Retriever
	Embedder      domain.Embedder
	ImageEmbedder domain.ImageEmbedder
	Extractor     FilterExtractor
	Fallback      Fallback
	Tags          TagSuggester
}

// Service runs the retrieval pipeline. It never returns an error: every
// outcome, including failures, is a response.Response.
type Service struct {
	cfg    Config
	deps   Deps
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a search service.
func New(cfg Config, deps Deps, logger *zap.Logger) *Service {
	return &Service{
		cfg:    cfg.withDefaults(),
		deps:   deps,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// retrieval is the ranked list for one query plus the per-signal top scores.
type retrieval struct {
	ranked     []candidate.Candidate
	vectorTop  float64
	lexicalTop float64
}

// Text runs the full text flow for a raw query.
func (s *Service) Text(ctx context.Context, raw string) response.Response {
	return s.run(ctx, kindText, func(ctx context.Context, reqID string, start time.Time) response.Response {
		return s.text(ctx, reqID, start, raw)
	})
}

// Refine rewrites the query with a selected tag and runs the text flow.
// Category tags lead the query; every other tag type trails it.
func (s *Service) Refine(ctx context.Context, original, label string, category tag.Category) response.Response {
	return s.run(ctx, kindRefine, func(ctx context.Context, reqID string, start time.Time) response.Response {
		return s.text(ctx, reqID, start, RefineQuery(original, label, category))
	})
}

// RefineQuery builds the query text for a tag refinement.
func RefineQuery(original, label string, category tag.Category) string {
	original = strings.TrimSpace(original)
	label = strings.TrimSpace(label)
	if category == tag.CategoryCategory {
		return strings.TrimSpace(label + " " + original)
	}
	return strings.TrimSpace(original + " " + label)
}

// Image runs the image similarity flow for raw image bytes.
func (s *Service) Image(ctx context.Context, data []byte) response.Response {
	return s.run(ctx, kindImage, func(ctx context.Context, reqID string, start time.Time) response.Response {
		return s.image(ctx, reqID, start, data)
	})
}

// run wraps one request with an id, panic recovery, metrics and the
// canonical log line.
func (s *Service) run(
	ctx context.Context, kind string,
	fn func(ctx context.Context, reqID string, start time.Time) response.Response,
) (resp response.Response) {
	start := s.now()
	reqID := s.newID()
	ctx, log := logger.Scoped(ctx, s.logger, zap.String("request_id", reqID), zap.String("kind", kind))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Search panicked", zap.Any("panic", r), zap.Stack("stack"))
			resp = response.Failure(response.CodeInternalError, "internal error")
		}

		status := string(response.StatusSuccess)
		if !resp.IsSuccess() {
			status = string(resp.ErrorCode)
		}
		elapsed := s.now().Sub(start)
		metrics.SearchRequestsTotal.WithLabelValues(kind, status).Inc()
		metrics.SearchRequestDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
		log.Info("Search completed",
			zap.String("status", status),
			zap.Int("results", resp.TotalResults),
			zap.Duration("duration", elapsed),
		)
	}()

	return fn(ctx, reqID, start)
}

// errPanic marks a panic recovered inside a retrieval goroutine.
var errPanic = errors.New("panic in retrieval")

// goSafe runs fn in the group, turning a panic into an errPanic error so it
// surfaces through Wait instead of killing the process.
func goSafe(g *errgroup.Group, fn func() error) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", errPanic, r)
			}
		}()
		return fn()
	})
}

func (s *Service) text(ctx context.Context, reqID string, start time.Time, raw string) response.Response {
	q, err := query.ValidateText(raw)
	if err != nil {
		return response.Failure(response.CodeEmptyQuery, err.Error())
	}

	filters := s.deps.Extractor.Extract(q)
	res, err := s.retrieve(ctx, q, filters)
	if err != nil {
		return s.searchFailed(ctx, err)
	}

	meta := &response.Metadata{
		RequestID:  reqID,
		Query:      q,
		SearchMode: string(s.cfg.Mode),
	}

	finalQuery := q
	if s.deps.Fallback != nil {
		d := s.deps.Fallback.Decide(ctx, q, s.fallbackScore(res))
		if d.Triggered {
			enhanced := d.Query
			meta.EnhancedQuery = &enhanced
		}
		if d.State == fallback.Enhanced {
			filters = s.deps.Extractor.Extract(d.Query)
			res, err = s.retrieve(ctx, d.Query, filters)
			if err != nil {
				return s.searchFailed(ctx, err)
			}
			finalQuery = d.Query
			meta.LLMFallbackUsed = true
		}
	}

	if !filters.IsEmpty() {
		meta.FiltersApplied = &filters
	}

	if len(res.ranked) == 0 {
		return s.noResults(meta, start)
	}

	ranked := res.ranked[:min(len(res.ranked), s.cfg.MaxResults)]
	results := formatResults(ranked, s.cfg.DefaultCurrency, false)

	tags := []tag.Tag{}
	if s.deps.Tags != nil {
		tags = s.deps.Tags.Suggest(ctx, finalQuery, resultNames(ranked))
	}

	meta.ResponseTimeMS = s.now().Sub(start).Milliseconds()
	return response.Response{
		Status:       response.StatusSuccess,
		TotalResults: len(results),
		Results:      results,
		RelatedTags:  tags,
		Metadata:     meta,
	}
}

func (s *Service) image(ctx context.Context, reqID string, start time.Time, data []byte) response.Response {
	if _, err := query.ValidateImage(data, s.cfg.MaxImageBytes); err != nil {
		return response.Failure(response.CodeInvalidImage, err.Error())
	}

	meta := &response.Metadata{
		RequestID:  reqID,
		SearchMode: string(mode.Image),
		SearchType: string(mode.Image),
	}

	emb, err := s.deps.ImageEmbedder.EmbedImage(ctx, data)
	if err != nil {
		return s.searchFailed(ctx, fmt.Errorf("embed image: %w", err))
	}
	if emb.IsEmpty() {
		logger.FromContext(ctx).Warn("Image embedding unavailable")
		return s.noResults(meta, start)
	}

	hits, err := s.deps.Retriever.ImageSearch(ctx, emb.Embedding, s.cfg.MaxResults)
	if err != nil {
		return s.searchFailed(ctx, fmt.Errorf("image search: %w", err))
	}
	if len(hits) == 0 {
		return s.noResults(meta, start)
	}

	hits = hits[:min(len(hits), s.cfg.MaxResults)]
	results := formatResults(hits, s.cfg.DefaultCurrency, true)

	tags := []tag.Tag{}
	if s.deps.Tags != nil {
		tags = s.deps.Tags.FromResults(hits)
	}

	meta.ResponseTimeMS = s.now().Sub(start).Milliseconds()
	return response.Response{
		Status:       response.StatusSuccess,
		TotalResults: len(results),
		Results:      results,
		RelatedTags:  tags,
		Metadata:     meta,
	}
}

// retrieve runs the configured signals against the same filter set and fuses
// them. Vector and lexical retrieval run concurrently; fusion order is fixed.
func (s *Service) retrieve(ctx context.Context, text string, filters filter.Set) (retrieval, error) {
	var vec, lex []candidate.Candidate
	k := s.cfg.CandidateK

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.Mode.UsesVector() {
		goSafe(g, func() error {
			emb, err := s.deps.Embedder.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("vectorize query: %w", err)
			}
			if emb.IsEmpty() {
				logger.FromContext(gctx).Warn("Query embedding unavailable, skipping vector signal")
				return nil
			}
			vec, err = s.deps.Retriever.VectorSearch(gctx, emb.Embedding, filters, k)
			if err != nil {
				return fmt.Errorf("vector search: %w", err)
			}
			return nil
		})
	}
	if s.cfg.Mode.UsesLexical() {
		goSafe(g, func() error {
			var err error
			lex, err = s.deps.Retriever.LexicalSearch(gctx, text, filters, k)
			if err != nil {
				return fmt.Errorf("lexical search: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return retrieval{}, err //nolint:wrapcheck // wrapped inside the group
	}

	res := retrieval{vectorTop: candidate.TopScore(vec), lexicalTop: candidate.TopScore(lex)}
	switch s.cfg.Mode {
	case mode.Semantic:
		res.ranked = vec
	case mode.Keyword:
		res.ranked = lex
	default:
		res.ranked = fusion.Fuse(vec, lex, s.cfg.RRF.KOrDefault())
	}
	return res, nil
}

// fallbackScore picks the score compared against the similarity threshold.
func (s *Service) fallbackScore(res retrieval) float64 {
	if s.deps.Fallback.ScoreSource() == fallback.ScoreFused {
		return candidate.TopScore(res.ranked)
	}
	if s.cfg.Mode == mode.Keyword {
		return res.lexicalTop
	}
	return res.vectorTop
}

func (s *Service) noResults(meta *response.Metadata, start time.Time) response.Response {
	meta.ResponseTimeMS = s.now().Sub(start).Milliseconds()
	resp := response.Failure(response.CodeNoResults, domain.ErrNoResults.Error())
	resp.Results = []response.Result{}
	resp.RelatedTags = []tag.Tag{}
	resp.Metadata = meta
	return resp
}

func (s *Service) searchFailed(ctx context.Context, err error) response.Response {
	if errors.Is(err, errPanic) {
		logger.FromContext(ctx).Error("Search panicked", zap.Error(err))
		return response.Failure(response.CodeInternalError, "internal error")
	}
	logger.FromContext(ctx).Error("Search failed", zap.Error(err))
	msg := err.Error()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		msg = "search cancelled: " + msg
	}
	return response.Failure(response.CodeSearchFailed, msg)
}
