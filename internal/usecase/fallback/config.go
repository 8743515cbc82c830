package fallback

import (
	"time"

	"github.com/kailas-cloud/furnsearch/internal/domain/catalog"
)

// Defaults applied by New when the config leaves a value unset.
const (
	DefaultSimilarityThreshold = 0.3
	DefaultCacheTTL            = time.Hour
	DefaultMaxTokens           = 1024
)

// ScoreSource selects which score is compared against the threshold.
type ScoreSource string

// Score sources.
const (
	// ScoreVector uses the top vector similarity (the top lexical score when
	// the mode has no vector signal).
	ScoreVector ScoreSource = "vector"
	// ScoreFused uses the top score of the final ranked list.
	ScoreFused ScoreSource = "fused"
)

// IsValid reports whether the source is known.
func (s ScoreSource) IsValid() bool { return s == ScoreVector || s == ScoreFused }

// Config configures the fallback orchestrator.
type Config struct {
	// Enabled is the only off switch. A zero SimilarityThreshold means unset
	// and becomes DefaultSimilarityThreshold.
	Enabled             bool
	SimilarityThreshold float64
	ScoreSource         ScoreSource
	CacheEnabled        bool
	CacheTTL            time.Duration
	Model               string
	MaxTokens           int
	Catalog             catalog.Catalog
}

func (c Config) withDefaults() Config {
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if !c.ScoreSource.IsValid() {
		c.ScoreSource = ScoreVector
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}
