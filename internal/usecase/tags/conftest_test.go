package tags

import (
	"context"
	"sync"

	"github.com/kailas-cloud/furnsearch/internal/domain"
	"github.com/kailas-cloud/furnsearch/internal/domain/catalog"
)

type mockCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	prompts []string
}

func (m *mockCompleter) Complete(_ context.Context, prompt string, _ domain.CompletionOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	return m.reply, m.err
}

func testCatalog() catalog.Catalog {
	return catalog.Catalog{
		Categories:  []string{"Sofas", "Tables", "Chairs", "Sectionals", "Armchairs", "Coffee Tables"},
		Materials:   []string{"Wood", "Fabric", "Leather", "Velvet", "Oak"},
		Styles:      []string{"Modern", "Traditional", "Scandinavian"},
		Colors:      []string{"Grey", "Black", "White", "Beige"},
		PriceRanges: []string{"Under $1,000", "Under $2,000", "Premium"},
	}
}
