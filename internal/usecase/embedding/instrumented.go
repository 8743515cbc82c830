// Package embedding decorates embedding providers with request logging.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/furnsearch/internal/domain"
)

// InstrumentedEmbedder wraps the text and image embedders with logging.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	image    domain.ImageEmbedder
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder. image may be nil when the
// provider has no image model.
func NewInstrumentedEmbedder(
	inner domain.Embedder, image domain.ImageEmbedder,
	provider, model string, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		image:    image,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Embed delegates to the inner embedder and logs the outcome.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	if err != nil {
		p.logFailure("text", time.Since(start), err)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	p.logResult("text", time.Since(start), result)
	return result, nil
}

// EmbedImage delegates to the image embedder and logs the outcome.
func (p *InstrumentedEmbedder) EmbedImage(
	ctx context.Context, image []byte,
) (domain.EmbeddingResult, error) {
	if p.image == nil {
		return domain.EmbeddingResult{}, fmt.Errorf("image embedding not configured: %w", domain.ErrEmbeddingProviderError)
	}

	start := time.Now()
	result, err := p.image.EmbedImage(ctx, image)
	if err != nil {
		p.logFailure("image", time.Since(start), err)
		return domain.EmbeddingResult{}, fmt.Errorf("embed image: %w", err)
	}
	p.logResult("image", time.Since(start), result)
	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // passthrough
	}
	return nil
}

func (p *InstrumentedEmbedder) logFailure(input string, duration time.Duration, err error) {
	p.logger.Error("Embedding request failed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.String("input", input),
		zap.Duration("duration", duration),
		zap.Error(err),
	)
}

func (p *InstrumentedEmbedder) logResult(input string, duration time.Duration, result domain.EmbeddingResult) {
	if result.IsEmpty() {
		p.logger.Warn("Embedding provider returned an empty vector",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.String("input", input),
		)
		return
	}
	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.String("input", input),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)
}
