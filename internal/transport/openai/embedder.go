// Package openai adapts OpenAI-compatible APIs to the embedding and LLM contracts.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/furnsearch/internal/domain"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/query"
	"github.com/kailas-cloud/furnsearch/internal/metrics"
)

const (
	inputText  = "text"
	inputImage = "image"
)

// Embedder is an embedding provider using the OpenAI-compatible API (e.g. Nebius).
// Text goes to Model; images are sent as data URIs to ImageModel.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	imageModel openai.EmbeddingModel
	dimensions int
	user       string
	provider   string
	retry      RetryPolicy
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	ImageModel string
	Dimensions int
	User       string
	Provider   string
	Retry      RetryPolicy
	Logger     *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = cfg.Model
	}

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		imageModel: openai.EmbeddingModel(imageModel),
		dimensions: cfg.Dimensions,
		user:       cfg.User,
		provider:   cfg.Provider,
		retry:      cfg.Retry,
		logger:     cfg.Logger,
	}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return e.embed(ctx, e.model, inputText, text)
}

// EmbedImage implements domain.ImageEmbedder. The payload must already be a
// valid JPEG or PNG.
func (e *Embedder) EmbedImage(ctx context.Context, image []byte) (domain.EmbeddingResult, error) {
	format, err := query.ValidateImage(image, len(image))
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed image: %w", err)
	}
	uri := "data:" + format.MIMEType() + ";base64," + base64.StdEncoding.EncodeToString(image)
	return e.embed(ctx, e.imageModel, inputImage, uri)
}

// embed returns the vector and usage with transport-level metrics.
// An empty vector in a well-formed response is passed through as "no embedding".
func (e *Embedder) embed(
	ctx context.Context, model openai.EmbeddingModel, input, payload string,
) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{payload},
		Model:          model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()

	var resp openai.EmbeddingResponse
	err := e.retry.do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = e.client.CreateEmbeddings(ctx, req)
		if err != nil {
			e.logger.Debug("Embedding attempt failed",
				zap.String("provider", e.provider), zap.String("model", string(model)), zap.Error(err))
		}
		return err //nolint:wrapcheck // classified by the retry policy, wrapped below
	})

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, string(model), input, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, string(model), "api_error").Inc()
		return domain.EmbeddingResult{}, parseAPIError(err)
	}

	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, string(model), input, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, string(model), "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, string(model), input, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, string(model), input).Observe(duration.Seconds())

	totalTokens := resp.Usage.TotalTokens
	promptTokens := resp.Usage.PromptTokens
	if totalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, string(model), "prompt").Add(float64(promptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, string(model), "total").Add(float64(totalTokens))
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: promptTokens,
		TotalTokens:  totalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrEmbeddingProviderError.
func parseAPIError(err error) error {
	return wrapProviderError("embedding", err, domain.ErrEmbeddingProviderError)
}

func wrapProviderError(kind string, err, wrap error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("%s API error %d: %s: %w",
				kind, reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("%s API error %d: %s: %w",
			kind, reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w",
			kind, apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("%s request failed: %w: %w", kind, wrap, err)
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
