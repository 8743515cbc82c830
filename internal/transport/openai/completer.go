package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/furnsearch/internal/domain"
	"github.com/kailas-cloud/furnsearch/internal/metrics"
)

// Completer is an LLM provider using the OpenAI-compatible chat completions API.
type Completer struct {
	client       *openai.Client
	defaultModel string
	maxTokens    int
	retry        RetryPolicy
	logger       *zap.Logger
}

// CompleterConfig holds the LLM provider settings.
type CompleterConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Retry     RetryPolicy
	Logger    *zap.Logger
}

// NewCompleter creates an OpenAI-compatible LLM provider.
func NewCompleter(cfg *CompleterConfig) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Completer{
		client:       openai.NewClientWithConfig(clientCfg),
		defaultModel: cfg.Model,
		maxTokens:    cfg.MaxTokens,
		retry:        cfg.Retry,
		logger:       cfg.Logger,
	}
}

// Complete implements domain.Completer. Per-call options override the
// configured model and token limit.
func (c *Completer) Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.defaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	req := openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	start := time.Now()

	var resp openai.ChatCompletionResponse
	err := c.retry.do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = c.client.CreateChatCompletion(ctx, req)
		return err //nolint:wrapcheck // classified by the retry policy, wrapped below
	})

	metrics.LLMRequestDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(model, "error").Inc()
		return "", wrapProviderError("llm", err, domain.ErrLLMProviderError)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.LLMRequestsTotal.WithLabelValues(model, "empty").Inc()
		return "", fmt.Errorf("empty completion: %w", domain.ErrLLMProviderError)
	}

	metrics.LLMRequestsTotal.WithLabelValues(model, "success").Inc()
	c.logger.Debug("LLM completion finished",
		zap.String("model", model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels.
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
