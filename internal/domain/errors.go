package domain

import "errors"

var (
	// ErrEmptyQuery signals a blank text query.
	ErrEmptyQuery = errors.New("empty search query")
	// ErrInvalidImage signals a missing, oversized, or undecodable image.
	ErrInvalidImage = errors.New("invalid uploaded image")
	// ErrNoResults signals that retrieval produced no candidates.
	ErrNoResults = errors.New("no results found for query")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLLMProviderError signals an LLM provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrMalformedLLMOutput signals an LLM response without a parseable JSON payload.
	ErrMalformedLLMOutput = errors.New("malformed llm output")
	// ErrUnsupportedMode signals an unknown search mode.
	ErrUnsupportedMode = errors.New("unsupported search mode")
)
