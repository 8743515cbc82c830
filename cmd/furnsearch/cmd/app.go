package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/furnsearch/internal/cache"
	"github.com/kailas-cloud/furnsearch/internal/config"
	dbRedis "github.com/kailas-cloud/furnsearch/internal/db/redis"
	"github.com/kailas-cloud/furnsearch/internal/domain"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/furnsearch/internal/domain/tag"
	logpkg "github.com/kailas-cloud/furnsearch/internal/logger"
	"github.com/kailas-cloud/furnsearch/internal/metrics"
	"github.com/kailas-cloud/furnsearch/internal/repository/embcache"
	"github.com/kailas-cloud/furnsearch/internal/repository/product"
	chiTransport "github.com/kailas-cloud/furnsearch/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/furnsearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/furnsearch/internal/usecase/embedding"
	"github.com/kailas-cloud/furnsearch/internal/usecase/extract"
	"github.com/kailas-cloud/furnsearch/internal/usecase/fallback"
	"github.com/kailas-cloud/furnsearch/internal/usecase/fusion"
	healthuc "github.com/kailas-cloud/furnsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/furnsearch/internal/usecase/search"
	"github.com/kailas-cloud/furnsearch/internal/usecase/tags"
	"github.com/kailas-cloud/furnsearch/internal/version"
)

// app is the composition root shared by the search commands.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *dbRedis.Store
	search   *searchuc.Service
	health   *healthuc.Service
	tagIndex *tags.Index
}

// loadConfig reads the environment config and builds the logger.
func loadConfig(env string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	for _, key := range cfg.Deprecations() {
		logger.Warn("Deprecated config key merged into catalog", zap.String("key", key))
	}
	return cfg, logger, nil
}

// newApp wires every collaborator: redis store, providers, caches and services.
func newApp(ctx context.Context, env string) (*app, error) {
	cfg, logger, err := loadConfig(env)
	if err != nil {
		return nil, err
	}

	logger.Debug("Starting furnsearch",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("search_mode", cfg.Search.Mode),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, store: store}
	if err := a.wire(); err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire() error {
	cfg, logger := a.cfg, a.logger
	emb := cfg.Providers.Embedding

	// Embedder chain: OpenAI -> Cached -> Instrumented -> Instruction
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     emb.APIKey,
		BaseURL:    emb.BaseURL,
		Model:      emb.Model,
		ImageModel: emb.ImageModel,
		Dimensions: emb.Dimensions,
		Provider:   emb.Name,
		Retry:      openaiTransport.RetryPolicy{Retries: emb.Retries},
		Logger:     logger,
	})
	cached := embcache.New(base, a.store, embcache.Options{
		Model: emb.Model,
		TTL:   time.Duration(emb.CacheTTLSeconds) * time.Second,
	}, metrics.EmbeddingCacheTotal, logger)
	instrumented := embeddinguc.NewInstrumentedEmbedder(cached, base, emb.Name, emb.Model, logger)

	// Instruction prefix (outermost, so the cache key includes it)
	var queryEmbedder domain.Embedder = instrumented
	if emb.QueryInstruction != "" {
		queryEmbedder = domain.NewInstructionEmbedder(instrumented, emb.QueryInstruction)
	}

	// Pass a nil interface (not a typed nil pointer) when no LLM is configured.
	var llm domain.Completer
	var llmHealth healthuc.ProviderChecker
	if cfg.Providers.LLM.IntentModel != "" {
		completer := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
			APIKey:    cfg.Providers.LLM.APIKey,
			BaseURL:   cfg.Providers.LLM.BaseURL,
			Model:     cfg.Providers.LLM.IntentModel,
			MaxTokens: cfg.Providers.LLM.MaxTokens,
			Retry:     openaiTransport.RetryPolicy{Retries: cfg.Providers.LLM.Retries},
			Logger:    logger,
		})
		llm, llmHealth = completer, completer
	}

	extractor, err := extract.New(extractConfig(cfg), logger)
	if err != nil {
		return fmt.Errorf("build filter extractor: %w", err)
	}

	var intents cache.Store[fallback.Intent]
	if cfg.LLMFallback.CacheEnabled {
		if intents, err = newCache[fallback.Intent](cfg.Cache, a.store, "intent", logger); err != nil {
			return err
		}
	}
	fb := fallback.New(fallback.Config{
		Enabled:             cfg.LLMFallback.Enabled,
		SimilarityThreshold: cfg.LLMFallback.SimilarityThreshold,
		ScoreSource:         fallback.ScoreSource(cfg.LLMFallback.ScoreSource),
		CacheEnabled:        cfg.LLMFallback.CacheEnabled,
		CacheTTL:            time.Duration(cfg.LLMFallback.CacheTTLSeconds) * time.Second,
		Model:               cfg.Providers.LLM.IntentModel,
		MaxTokens:           cfg.Providers.LLM.MaxTokens,
		Catalog:             cfg.Catalog,
	}, llm, intents, metrics.FallbackOutcomesTotal, logger)

	index, err := loadTagIndex(cfg, logger)
	if err != nil {
		return err
	}
	a.tagIndex = index

	var generated cache.Store[[]tag.Tag]
	if cfg.RelatedTags.CacheEnabled {
		if generated, err = newCache[[]tag.Tag](cfg.Cache, a.store, "tags", logger); err != nil {
			return err
		}
	}
	tagSvc := tags.NewService(tags.Config{
		Enabled:      cfg.RelatedTags.Enabled,
		CacheEnabled: cfg.RelatedTags.CacheEnabled,
		CacheTTL:     time.Duration(cfg.RelatedTags.CacheTTLSeconds) * time.Second,
		MinTags:      cfg.RelatedTags.MinTags,
		MaxTags:      cfg.RelatedTags.MaxTags,
		Model:        cfg.Providers.LLM.TagModel,
		MaxTokens:    cfg.Providers.LLM.MaxTokens,
		Catalog:      cfg.Catalog,
	}, index, llm, generated, metrics.TagSuggestionsTotal, logger)

	repo := product.New(a.store, product.Config{
		TextIndex:        cfg.Search.TextIndex,
		ImageIndex:       cfg.Search.ImageIndex,
		KeyPrefix:        cfg.Search.KeyPrefix,
		ImageKeyPrefix:   cfg.Search.ImageKeyPrefix,
		VectorField:      cfg.Search.VectorField,
		ImageVectorField: cfg.Search.ImageVectorField,
		Boosts:           product.FieldBoosts(cfg.Search.FieldBoosts),
	})

	a.search = searchuc.New(searchuc.Config{
		Mode:            mode.Mode(cfg.Search.Mode),
		MaxResults:      cfg.Search.MaxResults,
		CandidateK:      cfg.Search.CandidateK,
		RRF:             fusion.Config{K: cfg.Search.RRF.K},
		MaxImageBytes:   cfg.Image.MaxBytes,
		DefaultCurrency: cfg.Search.Currency,
	}, searchuc.Deps{
		Retriever:     repo,
		Embedder:      queryEmbedder,
		ImageEmbedder: instrumented,
		Extractor:     extractor,
		Fallback:      fb,
		Tags:          tagSvc,
	}, logger)

	a.health = healthuc.New(a.store, instrumented, llmHealth, 0, logger)
	return nil
}

// opsServer builds the health/metrics listener.
func (a *app) opsServer() *chiTransport.Server {
	var exporter chiTransport.TagIndexExporter
	if a.cfg.RelatedTags.Enabled {
		exporter = a.tagIndex
	}
	return chiTransport.NewServer(chiTransport.Config{
		Addr:            a.cfg.Ops.Addr,
		APIKeys:         a.cfg.Ops.APIKeys,
		ReadTimeout:     time.Duration(a.cfg.Ops.ReadTimeoutSec) * time.Second,
		WriteTimeout:    time.Duration(a.cfg.Ops.WriteTimeoutSec) * time.Second,
		ShutdownTimeout: time.Duration(a.cfg.Ops.ShutdownSec) * time.Second,
	}, a.health, exporter, a.logger)
}

func (a *app) Close() {
	a.store.Close()
	_ = a.logger.Sync()
}

func extractConfig(cfg config.Config) extract.Config {
	patterns := make([]extract.PricePattern, len(cfg.Filters.PricePatterns))
	for i, p := range cfg.Filters.PricePatterns {
		patterns[i] = extract.PricePattern{
			Pattern:         p.Pattern,
			Type:            extract.PatternType(p.Type),
			VariancePercent: p.VariancePercent,
		}
	}
	return extract.Config{
		Catalog:         cfg.Catalog,
		PricePatterns:   patterns,
		VariancePercent: cfg.Filters.ApproximateVariancePercent,
	}
}

// loadTagIndex reads related_tags.index_file when set, otherwise builds the
// index from the catalog and the configured query patterns.
func loadTagIndex(cfg config.Config, logger *zap.Logger) (*tags.Index, error) {
	if path := cfg.RelatedTags.IndexFile; path != "" {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("open tag index %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()

		idx, err := tags.LoadIndex(f)
		if err != nil {
			return nil, fmt.Errorf("load tag index %s: %w", path, err)
		}
		categories, patterns := idx.Stats()
		logger.Debug("Tag index loaded", zap.String("path", path),
			zap.Int("categories", categories), zap.Int("patterns", patterns))
		return idx, nil
	}
	return tags.BuildIndex(tags.IndexConfig{
		Catalog:       cfg.Catalog,
		QueryPatterns: cfg.RelatedTags.QueryPatterns,
	}), nil
}

// newCache builds one named cache on the configured backend, instrumented
// with hit/miss counters.
func newCache[V any](cfg config.CacheConfig, store *dbRedis.Store, name string, logger *zap.Logger) (cache.Store[V], error) {
	var inner cache.Store[V]
	switch cfg.Backend {
	case "redis":
		inner = cache.NewRedis[V](store, cfg.KeyPrefix+name+":", logger)
	default:
		m, err := cache.NewMemory[V](cfg.MaxEntries)
		if err != nil {
			return nil, fmt.Errorf("create %s cache: %w", name, err)
		}
		inner = m
	}
	return cache.NewInstrumented(inner, name, metrics.CacheLookupsTotal), nil
}
