package domain

import (
	"context"
	"fmt"
	"strings"
)

// Completer sends a single-turn prompt to an LLM and returns raw text.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// CompletionOptions selects the model for one completion call.
type CompletionOptions struct {
	Model     string
	MaxTokens int
}

// ExtractJSON returns the substring between the first '{' and the last '}'.
// LLMs often wrap their JSON payload in prose or code fences.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", fmt.Errorf("no json object in response: %w", ErrMalformedLLMOutput)
	}
	return text[start : end+1], nil
}
