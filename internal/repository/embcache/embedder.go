package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/hybridex/internal/db"
	"github.com/kailas-cloud/hybridex/internal/domain"
)

// DefaultL1Size is the in-process cache capacity used when none is configured.
const DefaultL1Size = 4096

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetEx(ctx context.Context, key string, ttl time.Duration) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Options configures the cache tiers.
type Options struct {
	// Model namespaces the cache keys so vectors of different models never mix.
	Model string
	// Keys supplies the storage prefix; the zero value uses the default.
	Keys domain.Keys
	// L1Size is the in-process LRU capacity.
	L1Size int
	// TTL expires L2 entries; every L2 hit slides the window. Zero keeps them forever.
	TTL time.Duration
}

// CachedEmbedder caches embeddings in an in-process LRU (L1) in front of
// a key-value store (L2). Concurrent misses for the same text share one
// collaborator call.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	l1         *lru.Cache[string, []float32]
	flight     singleflight.Group
	opts       Options
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("l1_hit"/"l2_hit"/"miss"), passed explicitly.
func New(
	inner domain.Embedder,
	s store,
	opts Options,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) (*CachedEmbedder, error) {
	if opts.L1Size <= 0 {
		opts.L1Size = DefaultL1Size
	}
	l1, err := lru.New[string, []float32](opts.L1Size)
	if err != nil {
		return nil, fmt.Errorf("create l1 cache: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		l1:         l1,
		opts:       opts,
		cacheTotal: cacheTotal,
		logger:     logger,
	}, nil
}

// Embed returns a cached embedding or calls the inner embedder.
// Hits report zero tokens since nothing was billed.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if vec, ok := c.l1.Get(key); ok {
		c.incCache("l1_hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	if vec, ok := c.getFromStore(ctx, key); ok {
		c.incCache("l2_hit")
		c.l1.Add(key, vec)
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.incCache("miss")

	// Followers inherit the leader's outcome, including its cancellation.
	v, err, _ := c.flight.Do(key, func() (any, error) {
		result, err := c.inner.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		c.l1.Add(key, result.Embedding)
		c.putToStore(ctx, key, result.Embedding)
		return result, nil
	})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	return v.(domain.EmbeddingResult), nil
}

func (c *CachedEmbedder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(c.opts.Model + "\x00" + text))
	return c.opts.Keys.EmbeddingCachePrefix() + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) getFromStore(ctx context.Context, key string) ([]float32, bool) {
	var (
		data []byte
		err  error
	)
	if c.opts.TTL > 0 {
		data, err = c.store.GetEx(ctx, key, c.opts.TTL)
	} else {
		data, err = c.store.Get(ctx, key)
	}
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := db.DecodeVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return vec, true
}

func (c *CachedEmbedder) putToStore(ctx context.Context, key string, vec []float32) {
	data := db.EncodeVector(vec)
	var err error
	if c.opts.TTL > 0 {
		err = c.store.SetWithTTL(ctx, key, data, c.opts.TTL)
	} else {
		err = c.store.Set(ctx, key, data)
	}
	if err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}
