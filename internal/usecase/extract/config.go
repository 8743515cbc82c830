package extract

import "github.com/kailas-cloud/furnsearch/internal/domain/catalog"

// PatternType says how a price pattern's capture groups map onto bounds.
type PatternType string

// Price pattern types.
const (
	PriceMax         PatternType = "max"
	PriceMin         PatternType = "min"
	PriceRange       PatternType = "range"
	PriceApproximate PatternType = "approximate"
)

// DefaultVariancePercent widens an approximate price into a range.
const DefaultVariancePercent = 20.0

const amount = `\$?\s?([\d,]+(?:\.\d+)?)`

// DefaultPricePatterns is the priority-ordered pattern list used when none is configured.
// Ranges come first so "between $500 and $1500" never degrades to a single bound.
var DefaultPricePatterns = []PricePattern{
	{Pattern: `\bbetween\s+` + amount + `\s+and\s+` + amount, Type: PriceRange},
	{Pattern: `\$([\d,]+(?:\.\d+)?)\s*(?:-|to)\s*` + amount, Type: PriceRange},
	{Pattern: `\b(?:under|below|less than|cheaper than|up to|at most|max(?:imum)?)\s+` + amount, Type: PriceMax},
	{Pattern: `\b(?:over|above|more than|at least|min(?:imum)?|starting at)\s+` + amount, Type: PriceMin},
	{Pattern: `(?:\b(?:around|about|approximately|roughly)|~)\s*` + amount, Type: PriceApproximate},
}

// PricePattern is one price phrase. Capture group 1 holds the amount
// (the lower bound for ranges), group 2 the upper bound of a range.
type PricePattern struct {
	Pattern         string      `yaml:"pattern"`
	Type            PatternType `yaml:"type"`
	VariancePercent float64     `yaml:"variance_percent"`
}

// Config configures the filter extractor.
type Config struct {
	Catalog       catalog.Catalog
	PricePatterns []PricePattern
	// VariancePercent applies to approximate patterns without their own variance.
	VariancePercent float64
}
