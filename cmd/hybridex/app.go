package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridex/internal/config"
	"github.com/kailas-cloud/hybridex/internal/db"
	dbRedis "github.com/kailas-cloud/hybridex/internal/db/redis"
	dbValkey "github.com/kailas-cloud/hybridex/internal/db/valkey"
	"github.com/kailas-cloud/hybridex/internal/domain"
	"github.com/kailas-cloud/hybridex/internal/domain/search/weights"
	"github.com/kailas-cloud/hybridex/internal/metrics"
	documentrepo "github.com/kailas-cloud/hybridex/internal/repository/document"
	"github.com/kailas-cloud/hybridex/internal/repository/embcache"
	namespacerepo "github.com/kailas-cloud/hybridex/internal/repository/namespace"
	searchrepo "github.com/kailas-cloud/hybridex/internal/repository/search"
	openaiEmb "github.com/kailas-cloud/hybridex/internal/transport/openai"
	"github.com/kailas-cloud/hybridex/internal/transport/voyage"
	batchuc "github.com/kailas-cloud/hybridex/internal/usecase/batch"
	documentuc "github.com/kailas-cloud/hybridex/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/hybridex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/hybridex/internal/usecase/health"
	namespaceuc "github.com/kailas-cloud/hybridex/internal/usecase/namespace"
	searchuc "github.com/kailas-cloud/hybridex/internal/usecase/search"
)

// app is the composition root shared by serve, init and reset.
type app struct {
	store      db.Store
	namespaces *namespaceuc.Service
	documents  *documentuc.Service
	search     *searchuc.Service
	batch      *batchuc.Service
	health     *healthuc.Service
}

// openStore connects to the configured backend and waits until it answers.
func openStore(ctx context.Context, cfg config.Config) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Database.Driver {
	case config.DriverValkey:
		store, err = dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
		})
	case config.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q: %w", cfg.Database.Driver, domain.ErrConfiguration)
	}
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}

// newApp wires repositories, providers and services on top of an open store.
func newApp(cfg config.Config, store db.Store, logger *zap.Logger) (*app, error) {
	keys := domain.NewKeys(cfg.Storage.KeyPrefix)

	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	embedder, err := buildEmbedder(cfg.Embedding, keys, base, store, logger)
	if err != nil {
		return nil, err
	}

	reranker := voyage.NewReranker(voyage.Config{
		APIKey:            cfg.Rerank.APIKey,
		BaseURL:           cfg.Rerank.BaseURL,
		Model:             cfg.Rerank.Model,
		Timeout:           time.Duration(cfg.Rerank.TimeoutSec) * time.Second,
		RequestsPerSecond: cfg.Rerank.RequestsPerSecond,
		Burst:             cfg.Rerank.Burst,
		Logger:            logger,
	})

	nsRepo := namespacerepo.New(store, cfg.Embedding.Dimensions).WithHNSW(namespacerepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	}).WithKeys(keys)
	docRepo := documentrepo.New(store).WithKeys(keys)
	searchRepo := searchrepo.New(store).WithKeys(keys)

	docSvc := documentuc.New(docRepo, nsRepo, embedder, cfg.Embedding.Dimensions)
	batchSvc, err := batchuc.New(docSvc, cfg.Batch.Workers)
	if err != nil {
		return nil, fmt.Errorf("create batch service: %w", err)
	}
	batchSvc.WithMaxBatchSize(cfg.Batch.MaxSize)

	searchSvc := searchuc.New(searchRepo, embedder, reranker, searchuc.Config{
		Weights:       weights.Weights{Vector: cfg.Search.VectorWeight, Text: cfg.Search.TextWeight},
		RerankBreadth: cfg.Search.RerankBreadth,
		CandidatePool: cfg.Search.CandidatePool,
		Timeout:       cfg.Search.CollaboratorTimeout(),
	}, logger)

	healthSvc := healthuc.New(store, base)
	// An unconfigured reranker only matters to hybrid_rerank requests; keep it out of /health.
	if reranker.IsConfigured() {
		healthSvc.WithReranker(reranker)
	}

	return &app{
		store:      store,
		namespaces: namespaceuc.New(nsRepo, docRepo),
		documents:  docSvc,
		search:     searchSvc,
		batch:      batchSvc,
		health:     healthSvc,
	}, nil
}

// buildEmbedder assembles the decorator chain: provider -> cache -> instrumented.
func buildEmbedder(
	cfg config.EmbeddingConfig,
	keys domain.Keys,
	base domain.Embedder,
	store db.Store,
	logger *zap.Logger,
) (domain.Embedder, error) {
	embedder := base
	if cfg.CacheSize >= 0 {
		cached, err := embcache.New(base, store, embcache.Options{
			Model:  cfg.Model,
			L1Size: cfg.CacheSize,
			TTL:    time.Duration(cfg.CacheTTLSec) * time.Second,
			Keys:   keys,
		}, metrics.EmbeddingCacheTotal, logger)
		if err != nil {
			return nil, fmt.Errorf("create embedding cache: %w", err)
		}
		embedder = cached
	}
	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, logger), nil
}

func (a *app) Close() {
	a.batch.Release()
	a.store.Close()
}
