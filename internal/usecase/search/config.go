package search

import (
	"github.com/kailas-cloud/furnsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/query"
	"github.com/kailas-cloud/furnsearch/internal/usecase/fusion"
)

// Defaults applied by New when the config leaves a value unset.
const (
	DefaultMaxResults = 50
	DefaultCurrency   = "SGD"
)

// Config configures the search orchestrator.
type Config struct {
	Mode mode.Mode
	// MaxResults bounds the formatted result list.
	MaxResults int
	// CandidateK is the per-signal retrieval depth. Defaults to MaxResults.
	CandidateK      int
	RRF             fusion.Config
	MaxImageBytes   int
	DefaultCurrency string
}

func (c Config) withDefaults() Config {
	if !c.Mode.IsValid() {
		c.Mode = mode.Hybrid
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.CandidateK <= 0 {
		c.CandidateK = c.MaxResults
	}
	if c.MaxImageBytes <= 0 {
		c.MaxImageBytes = query.DefaultMaxImageBytes
	}
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = DefaultCurrency
	}
	return c
}
