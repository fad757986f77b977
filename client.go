package hybridex

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridex/internal/db"
	dbRedis "github.com/kailas-cloud/hybridex/internal/db/redis"
	dbValkey "github.com/kailas-cloud/hybridex/internal/db/valkey"
	"github.com/kailas-cloud/hybridex/internal/domain"
	dombatch "github.com/kailas-cloud/hybridex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/hybridex/internal/domain/document"
	domns "github.com/kailas-cloud/hybridex/internal/domain/namespace"
	"github.com/kailas-cloud/hybridex/internal/domain/search/candidate"
	"github.com/kailas-cloud/hybridex/internal/domain/search/request"
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

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can substitute the use cases.
type namespaceUseCase interface {
	Ensure(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]domns.Info, error)
	Count(ctx context.Context, name string) (int, error)
	Destroy(ctx context.Context, name string) (int, error)
}

type documentUseCase interface {
	Add(ctx context.Context, ns domns.Namespace, content string) (domdoc.Document, error)
	Get(ctx context.Context, ns, id string) (domdoc.Document, error)
	Remove(ctx context.Context, ns *string, id string) (int, error)
}

type batchUseCase interface {
	Add(ctx context.Context, ns domns.Namespace, contents []string) []dombatch.Result
}

type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) ([]candidate.Candidate, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the hybridex SDK entry point.
type Client struct {
	store     db.Store
	nsSvc     namespaceUseCase
	docSvc    documentUseCase
	batchSvc  batchUseCase
	searchSvc searchUseCase
	healthSvc healthUseCase
	release   func()
	obs       *observer
}

// New creates a Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		vectorDimensions: domain.DefaultVectorConfig().Dimensions,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, fmt.Errorf("hybridex: database address required (use WithValkey or WithRedis): %w",
			domain.ErrConfiguration)
	}
	w := weights.Weights{Vector: cfg.vectorWeight, Text: cfg.textWeight}
	if !w.IsZero() {
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("hybridex: %w", err)
		}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("hybridex: database not ready: %w", err)
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey":
		s, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.addrs,
			Username: cfg.username,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("hybridex: create valkey store: %w", err)
		}
		return s, nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Username: cfg.username,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("hybridex: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("hybridex: unknown driver %q: %w", cfg.driver, domain.ErrConfiguration)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	vectorDim := cfg.vectorDimensions
	keys := domain.NewKeys(cfg.keyPrefix)

	nsRepo := namespacerepo.New(store, vectorDim).WithKeys(keys)
	if cfg.hnswM > 0 || cfg.hnswEFConstruct > 0 {
		nsRepo = nsRepo.WithHNSW(namespacerepo.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		})
	}
	docRepo := documentrepo.New(store).WithKeys(keys)
	searchRepo := searchrepo.New(store).WithKeys(keys)

	embedder, embedHealth, err := buildEmbedder(cfg, keys, store, obs.logger)
	if err != nil {
		return nil, err
	}
	// Pass a nil interface, not a typed nil, when no reranker is configured.
	var reranker searchuc.Reranker
	var rerankHealth healthuc.Checker
	switch {
	case cfg.reranker != nil:
		reranker = &rerankerAdapter{inner: cfg.reranker}
	case cfg.voyage != nil:
		v := voyage.NewReranker(voyage.Config{
			APIKey:            cfg.voyage.APIKey,
			BaseURL:           cfg.voyage.BaseURL,
			Model:             cfg.voyage.Model,
			Timeout:           cfg.voyage.Timeout,
			RequestsPerSecond: cfg.voyage.RequestsPerSecond,
			Logger:            obs.logger,
		})
		reranker = v
		rerankHealth = v
	}

	docSvc := documentuc.New(docRepo, nsRepo, embedder, vectorDim)
	batchSvc, err := batchuc.New(docSvc, cfg.batchWorkers)
	if err != nil {
		return nil, fmt.Errorf("hybridex: create batch service: %w", err)
	}
	searchSvc := searchuc.New(searchRepo, embedder, reranker, searchuc.Config{
		Weights:       weights.Weights{Vector: cfg.vectorWeight, Text: cfg.textWeight},
		RerankBreadth: cfg.rerankBreadth,
		CandidatePool: cfg.candidatePool,
		Timeout:       cfg.timeout,
	}, obs.logger)

	healthSvc := healthuc.New(store, embedHealth)
	if rerankHealth != nil {
		healthSvc.WithReranker(rerankHealth)
	}

	return &Client{
		store:     store,
		nsSvc:     namespaceuc.New(nsRepo, docRepo),
		docSvc:    docSvc,
		batchSvc:  batchSvc,
		searchSvc: searchSvc,
		healthSvc: healthSvc,
		release:   batchSvc.Release,
		obs:       obs,
	}, nil
}

// buildEmbedder picks the custom embedder, the built-in OpenAI provider or a
// stub that fails with ErrConfiguration, in that order.
func buildEmbedder(
	cfg *clientConfig, keys domain.Keys, store db.Store, logger *zap.Logger,
) (domain.Embedder, healthuc.Checker, error) {
	switch {
	case cfg.embedder != nil:
		return embeddinguc.NewInstrumentedEmbedder(&embedderAdapter{inner: cfg.embedder}, "custom", "", logger), nil, nil
	case cfg.openai != nil:
		model := cfg.openai.Model
		if model == "" {
			model = domain.DefaultVectorConfig().Model
		}
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.openai.APIKey,
			BaseURL:    cfg.openai.BaseURL,
			Model:      model,
			Dimensions: cfg.vectorDimensions,
			Logger:     logger,
		})
		var embedder domain.Embedder = base
		if cfg.openai.CacheSize >= 0 {
			cached, err := embcache.New(base, store, embcache.Options{
				Model:  model,
				L1Size: cfg.openai.CacheSize,
				Keys:   keys,
			}, metrics.EmbeddingCacheTotal, logger)
			if err != nil {
				return nil, nil, fmt.Errorf("hybridex: create embedding cache: %w", err)
			}
			embedder = cached
		}
		return embeddinguc.NewInstrumentedEmbedder(embedder, "openai", model, logger), base, nil
	default:
		return noopEmbedder{}, nil, nil
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.release != nil {
		c.release()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Health checks the database and the configured providers.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// Index returns a handle for one namespace. An empty name selects "default".
// The namespace index is created on the first Add.
func (c *Client) Index(name string) *Index {
	if name == "" {
		name = domns.Default
	}
	return &Index{name: name, client: c}
}

// Namespaces lists every registered namespace.
func (c *Client) Namespaces(ctx context.Context) (out []NamespaceInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("namespaces", start, err) }()

	infos, err := c.nsSvc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	out = make([]NamespaceInfo, len(infos))
	for i, info := range infos {
		out[i] = NamespaceInfo{Name: info.Name(), CreatedAt: info.CreatedAt()}
	}
	return out, nil
}

// Remove deletes a document id from every namespace it appears in and
// returns how many copies were deleted. It fails with ErrDocumentNotFound
// when the id is stored nowhere.
func (c *Client) Remove(ctx context.Context, id string) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("remove", start, err) }()

	n, err = c.docSvc.Remove(ctx, nil, id)
	if err != nil {
		return n, fmt.Errorf("remove: %w", err)
	}
	return n, nil
}

func fromInternalDocument(d *domdoc.Document) Document {
	return Document{
		ID:        d.ID(),
		Namespace: d.Namespace(),
		Content:   d.Content(),
		Language:  string(d.Language()),
		CreatedAt: d.CreatedAt(),
		UpdatedAt: d.UpdatedAt(),
	}
}

func fromCandidate(c *candidate.Candidate) Hit {
	h := Hit{
		ID:        c.ID(),
		Content:   c.Content(),
		Score:     c.Score(),
		Cosine:    c.Cosine(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
	if v, ok := c.Lexical(); ok {
		h.Lexical = &v
	}
	if v, ok := c.HybridScore(); ok {
		h.Hybrid = &v
	}
	if v, ok := c.RerankScore(); ok {
		h.Rerank = &v
	}
	return h
}

func fromBatchResults(results []dombatch.Result) []BatchResult {
	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{
			ID:  r.ID(),
			OK:  r.OK(),
			Err: r.Err(),
		}
	}
	return out
}
