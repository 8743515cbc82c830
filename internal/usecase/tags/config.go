package tags

import (
	"time"

	"github.com/kailas-cloud/furnsearch/internal/domain/catalog"
)

// Defaults applied by NewService when the config leaves a value unset.
const (
	DefaultMinTags   = 3
	DefaultMaxTags   = 10
	DefaultCacheTTL  = 30 * time.Minute
	DefaultMaxTokens = 1024
)

// Config configures the tag suggestion service.
type Config struct {
	Enabled      bool
	CacheEnabled bool
	CacheTTL     time.Duration
	// MinTags is the count the LLM is asked for; it is not enforced.
	MinTags   int
	MaxTags   int
	Model     string
	MaxTokens int
	Catalog   catalog.Catalog
}

func (c Config) withDefaults() Config {
	if c.MinTags <= 0 {
		c.MinTags = DefaultMinTags
	}
	if c.MaxTags <= 0 {
		c.MaxTags = DefaultMaxTags
	}
	if c.MinTags > c.MaxTags {
		c.MinTags = c.MaxTags
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}

// IndexConfig feeds the pre-computed tier. Nil maps select the built-in tables.
type IndexConfig struct {
	Catalog           catalog.Catalog
	RelatedCategories map[string][]string
	CategoryMaterials map[string][]string
	QueryPatterns     map[string][]string
}

// DefaultRelatedCategories maps a category to the categories shoppers browse next.
var DefaultRelatedCategories = map[string][]string{
	"sofas":         {"Sectionals", "2-Seater", "3-Seater", "Loveseats"},
	"tables":        {"Coffee Tables", "Dining Tables", "Side Tables", "Console Tables"},
	"chairs":        {"Dining Chairs", "Armchairs", "Office Chairs", "Bar Stools"},
	"beds":          {"King Beds", "Queen Beds", "Nightstands", "Dressers"},
	"coffee tables": {"Side Tables", "Console Tables", "TV Units"},
	"dining chairs": {"Armchairs", "Bar Stools", "Benches"},
	"armchairs":     {"Dining Chairs", "Recliners", "Ottomans"},
}

// DefaultCategoryMaterials lists the usual materials per category.
var DefaultCategoryMaterials = map[string][]string{
	"sofas":  {"Fabric", "Leather", "Velvet"},
	"tables": {"Wood", "Marble", "Glass"},
	"chairs": {"Fabric", "Leather", "Wood"},
	"beds":   {"Wood", "Fabric", "Leather"},
}

// DefaultQueryPatterns maps common query terms to a relevance-ordered tag bundle.
var DefaultQueryPatterns = map[string][]string{
	"sofa":    {"Sectionals", "Fabric", "Leather", "Modern", "Under $1,000"},
	"chair":   {"Dining Chairs", "Armchairs", "Leather", "Wood", "Modern"},
	"table":   {"Coffee Tables", "Dining Tables", "Wood", "Marble", "Modern"},
	"bed":     {"King Beds", "Queen Beds", "Wood", "Fabric", "Under $2,000"},
	"modern":  {"Minimalist", "Contemporary", "Clean Lines", "Neutral Colors"},
	"leather": {"Fabric", "Velvet", "Brown", "Black", "Modern"},
	"wood":    {"Walnut", "Oak", "Teak", "Natural", "Traditional"},
	"grey":    {"White", "Black", "Beige", "Neutral", "Modern"},
	"brown":   {"Walnut", "Oak", "Leather", "Wood", "Traditional"},
}
