package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/furnsearch/internal/domain/catalog"
)

// Config holds the furnsearch configuration.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Database    DatabaseConfig    `yaml:"database"`
	Providers   ProvidersConfig   `yaml:"providers"`
	Search      SearchConfig      `yaml:"search"`
	Filters     FiltersConfig     `yaml:"filters"`
	Catalog     catalog.Catalog   `yaml:"catalog"`
	LLMFallback LLMFallbackConfig `yaml:"llm_fallback"`
	RelatedTags RelatedTagsConfig `yaml:"related_tags"`
	Image       ImageConfig       `yaml:"image"`
	Cache       CacheConfig       `yaml:"cache"`
	Ops         OpsConfig         `yaml:"ops"`

	// Deprecated lists merged into Catalog by Load; see Deprecations.
	deprecated []string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis (default)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ProvidersConfig holds the external model providers.
type ProvidersConfig struct {
	Embedding EmbeddingProviderConfig `yaml:"embedding"`
	LLM       LLMProviderConfig       `yaml:"llm"`
}

// EmbeddingProviderConfig holds the OpenAI-compatible embedding provider settings.
type EmbeddingProviderConfig struct {
	Name             string `yaml:"name"`
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	ImageModel       string `yaml:"image_model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	Retries          int    `yaml:"retries"`
	CacheTTLSeconds  int    `yaml:"cache_ttl_seconds"` // 0 = no expiry
}

// LLMProviderConfig holds the OpenAI-compatible chat completion settings.
type LLMProviderConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	IntentModel string `yaml:"intent_model"`
	TagModel    string `yaml:"tag_model"`
	MaxTokens   int    `yaml:"max_tokens"`
	Retries     int    `yaml:"retries"`
}

// SearchConfig holds retrieval and ranking settings.
type SearchConfig struct {
	Mode             string            `yaml:"mode"` // hybrid, semantic, keyword
	MaxResults       int               `yaml:"max_results"`
	CandidateK       int               `yaml:"candidate_k"`
	TextIndex        string            `yaml:"text_index"`
	ImageIndex       string            `yaml:"image_index"`
	KeyPrefix        string            `yaml:"key_prefix"`
	ImageKeyPrefix   string            `yaml:"image_key_prefix"`
	VectorField      string            `yaml:"vector_field"`
	ImageVectorField string            `yaml:"image_vector_field"`
	Currency         string            `yaml:"currency"`
	RRF              RRFConfig         `yaml:"rrf"`
	FieldBoosts      FieldBoostsConfig `yaml:"field_boosts"`
}

// RRFConfig holds rank fusion settings.
type RRFConfig struct {
	K int `yaml:"k"`
}

// FieldBoostsConfig weights the optional BM25 clauses.
type FieldBoostsConfig struct {
	VariantName float64 `yaml:"variant_name"`
	ProductName float64 `yaml:"product_name"`
	Category    float64 `yaml:"category"`
	Color       float64 `yaml:"color"`
	Material    float64 `yaml:"material"`
}

// FiltersConfig holds filter extraction settings.
type FiltersConfig struct {
	PricePatterns              []PricePatternConfig `yaml:"price_patterns"`
	ApproximateVariancePercent float64              `yaml:"approximate_variance_percent"`

	// Deprecated: use the catalog block.
	ColorsValues     []string `yaml:"colors_values"`
	MaterialsValues  []string `yaml:"materials_values"`
	CategoriesValues []string `yaml:"categories_values"`
	SizesValues      []string `yaml:"sizes_values"`
	StylesValues     []string `yaml:"styles_values"`
	RoomsValues      []string `yaml:"rooms_values"`
	FeaturesValues   []string `yaml:"features_values"`
	ConditionsValues []string `yaml:"conditions_values"`
}

// PricePatternConfig is one prioritized price phrase.
type PricePatternConfig struct {
	Pattern         string  `yaml:"pattern"`
	Type            string  `yaml:"type"` // max, min, range, approximate
	VariancePercent float64 `yaml:"variance_percent"`
}

// LLMFallbackConfig holds query reformulation settings.
type LLMFallbackConfig struct {
	Enabled             bool    `yaml:"enabled"`
	// SimilarityThreshold 0 means the 0.3 default; enabled: false switches fallback off.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	ScoreSource         string  `yaml:"score_source"` // vector, fused
	CacheEnabled        bool    `yaml:"cache_enabled"`
	CacheTTLSeconds     int     `yaml:"cache_ttl_seconds"`
}

// RelatedTagsConfig holds tag suggestion settings.
type RelatedTagsConfig struct {
	Enabled         bool                `yaml:"enabled"`
	CacheEnabled    bool                `yaml:"cache_enabled"`
	CacheTTLSeconds int                 `yaml:"cache_ttl_seconds"`
	MinTags         int                 `yaml:"min_tags"`
	MaxTags         int                 `yaml:"max_tags"`
	QueryPatterns   map[string][]string `yaml:"query_patterns"`
	IndexFile       string              `yaml:"index_file"`
}

// ImageConfig holds image query settings.
type ImageConfig struct {
	MaxBytes int `yaml:"max_bytes"`
}

// CacheConfig selects the backend for the intent and tag caches.
type CacheConfig struct {
	Backend    string `yaml:"backend"` // memory (default), redis
	MaxEntries int    `yaml:"max_entries"`
	KeyPrefix  string `yaml:"key_prefix"`
}

// OpsConfig holds the health/metrics listener settings.
type OpsConfig struct {
	Addr            string   `yaml:"addr"`
	APIKeys         []string `yaml:"api_keys"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, expands, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.mergeLegacyCatalog()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// Deprecations lists the legacy keys that filled an empty catalog dimension.
func (c *Config) Deprecations() []string {
	return c.deprecated
}

// mergeLegacyCatalog fills empty catalog dimensions from filters.*_values.
// The catalog block wins whenever it lists a dimension.
func (c *Config) mergeLegacyCatalog() {
	legacy := map[catalog.Dimension][]string{
		catalog.Colors:     c.Filters.ColorsValues,
		catalog.Materials:  c.Filters.MaterialsValues,
		catalog.Categories: c.Filters.CategoriesValues,
		catalog.Sizes:      c.Filters.SizesValues,
		catalog.Styles:     c.Filters.StylesValues,
		catalog.Rooms:      c.Filters.RoomsValues,
		catalog.Features:   c.Filters.FeaturesValues,
		catalog.Conditions: c.Filters.ConditionsValues,
	}
	merged, filled := c.Catalog.WithDefaults(legacy)
	c.Catalog = merged
	c.deprecated = c.deprecated[:0]
	for _, d := range filled {
		c.deprecated = append(c.deprecated, "filters."+string(d)+"_values")
	}
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Providers.Embedding.Name == "" {
		c.Providers.Embedding.Name = "openai"
	}
	if c.Providers.LLM.MaxTokens <= 0 {
		c.Providers.LLM.MaxTokens = 1024
	}
	if c.Providers.LLM.TagModel == "" {
		c.Providers.LLM.TagModel = c.Providers.LLM.IntentModel
	}
	if c.Search.Mode == "" {
		c.Search.Mode = "hybrid"
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 50
	}
	if c.Search.RRF.K <= 0 {
		c.Search.RRF.K = 60
	}
	if c.Search.Currency == "" {
		c.Search.Currency = "SGD"
	}
	if c.Filters.ApproximateVariancePercent <= 0 {
		c.Filters.ApproximateVariancePercent = 20
	}
	if c.LLMFallback.SimilarityThreshold <= 0 {
		c.LLMFallback.SimilarityThreshold = 0.3
	}
	if c.LLMFallback.ScoreSource == "" {
		c.LLMFallback.ScoreSource = "vector"
	}
	if c.LLMFallback.CacheTTLSeconds <= 0 {
		c.LLMFallback.CacheTTLSeconds = 3600
	}
	if c.RelatedTags.CacheTTLSeconds <= 0 {
		c.RelatedTags.CacheTTLSeconds = 1800
	}
	if c.RelatedTags.MinTags <= 0 {
		c.RelatedTags.MinTags = 3
	}
	if c.RelatedTags.MaxTags <= 0 {
		c.RelatedTags.MaxTags = 10
	}
	if c.Image.MaxBytes <= 0 {
		c.Image.MaxBytes = 5 << 20
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = 10000
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "furnsearch:cache:"
	}
	if c.Ops.Addr == "" {
		c.Ops.Addr = ":9090"
	}
	if c.Ops.ReadTimeoutSec <= 0 {
		c.Ops.ReadTimeoutSec = 10
	}
	if c.Ops.WriteTimeoutSec <= 0 {
		c.Ops.WriteTimeoutSec = 10
	}
	if c.Ops.ShutdownSec <= 0 {
		c.Ops.ShutdownSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Database.Driver != "redis" {
		return fmt.Errorf("database.driver must be \"redis\", got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Providers.Embedding.Model == "" {
		return fmt.Errorf("providers.embedding.model is required")
	}
	if c.Providers.Embedding.Retries < 0 {
		return fmt.Errorf("providers.embedding.retries must be >= 0, got %d", c.Providers.Embedding.Retries)
	}
	if c.Providers.LLM.Retries < 0 {
		return fmt.Errorf("providers.llm.retries must be >= 0, got %d", c.Providers.LLM.Retries)
	}
	if (c.LLMFallback.Enabled || c.RelatedTags.Enabled) && c.Providers.LLM.IntentModel == "" {
		return fmt.Errorf("providers.llm.intent_model is required when llm_fallback or related_tags is enabled")
	}
	switch c.Search.Mode {
	case "hybrid", "semantic", "keyword":
	default:
		return fmt.Errorf("search.mode must be one of hybrid, semantic, keyword, got %q", c.Search.Mode)
	}
	if c.Search.CandidateK < 0 {
		return fmt.Errorf("search.candidate_k must be >= 0, got %d", c.Search.CandidateK)
	}
	for i, p := range c.Filters.PricePatterns {
		switch p.Type {
		case "max", "min", "range", "approximate":
		default:
			return fmt.Errorf("filters.price_patterns[%d].type must be one of max, min, range, approximate, got %q", i, p.Type)
		}
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return fmt.Errorf("filters.price_patterns[%d].pattern: %w", i, err)
		}
	}
	if c.LLMFallback.SimilarityThreshold > 1 {
		return fmt.Errorf("llm_fallback.similarity_threshold must be in (0, 1], got %g", c.LLMFallback.SimilarityThreshold)
	}
	switch c.LLMFallback.ScoreSource {
	case "vector", "fused":
	default:
		return fmt.Errorf("llm_fallback.score_source must be \"vector\" or \"fused\", got %q", c.LLMFallback.ScoreSource)
	}
	if c.RelatedTags.MinTags > c.RelatedTags.MaxTags {
		return fmt.Errorf("related_tags.min_tags (%d) must not exceed related_tags.max_tags (%d)",
			c.RelatedTags.MinTags, c.RelatedTags.MaxTags)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be \"memory\" or \"redis\", got %q", c.Cache.Backend)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
