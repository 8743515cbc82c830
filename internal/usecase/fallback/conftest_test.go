package fallback

import (
	"context"
	"sync"

	"github.com/kailas-cloud/furnsearch/internal/domain"
)

type mockCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	prompts []string
	opts    []domain.CompletionOptions
}

func (m *mockCompleter) Complete(_ context.Context, prompt string, opts domain.CompletionOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	return m.reply, m.err
}
