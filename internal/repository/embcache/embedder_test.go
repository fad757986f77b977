package embcache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/hybridex/internal/db"
	"github.com/kailas-cloud/hybridex/internal/domain"
)

func TestEmbed_CacheMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})
	ctx := context.Background()

	var setCalled bool
	ms.setFn = func(_ context.Context, key string, _ []byte) error {
		if !strings.HasPrefix(key, "hybridex:emb_cache:") {
			t.Errorf("unexpected key %q", key)
		}
		setCalled = true
		return nil
	}

	result, err := ce.Embed(ctx, "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", result.Embedding)
	}
	if result.TotalTokens != 10 {
		t.Fatalf("expected TotalTokens=10, got %d", result.TotalTokens)
	}
	if !setCalled {
		t.Fatal("expected SET to be called for cache put")
	}
}

func TestEmbed_L2Hit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})

	cached := db.EncodeVector([]float32{0.4, 0.5, 0.6})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	result, err := ce.Embed(context.Background(), "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.4 {
		t.Fatalf("expected cached vector, got: %v", result.Embedding)
	}
	if result.TotalTokens != 0 {
		t.Fatalf("expected TotalTokens=0 on cache hit, got %d", result.TotalTokens)
	}
	if inner.calls != 0 {
		t.Errorf("inner called %d times", inner.calls)
	}
}

func TestEmbed_L1ServesRepeatWithoutStore(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2}}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})
	ctx := context.Background()

	if _, err := ce.Embed(ctx, "same"); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ms.getFn = func(context.Context, string) ([]byte, error) {
		t.Error("L2 must not be consulted on an L1 hit")
		return nil, db.ErrKeyNotFound
	}
	result, err := ce.Embed(ctx, "same")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	if result.Embedding[1] != 2 {
		t.Errorf("unexpected vector %v", result.Embedding)
	}
}

func TestEmbed_ModelScopesKeys(t *testing.T) {
	a, _ := newTestCachedEmbedder(t, &mockEmbedder{}, Options{Model: "small"})
	b, _ := newTestCachedEmbedder(t, &mockEmbedder{}, Options{Model: "large"})
	if a.cacheKey("q") == b.cacheKey("q") {
		t.Error("different models must not share cache keys")
	}
}

func TestEmbed_KeyPrefix(t *testing.T) {
	ce, _ := newTestCachedEmbedder(t, &mockEmbedder{}, Options{Keys: domain.NewKeys("tenant:")})
	if key := ce.cacheKey("q"); !strings.HasPrefix(key, "tenant:emb_cache:") {
		t.Errorf("unexpected key %q", key)
	}
	def, _ := newTestCachedEmbedder(t, &mockEmbedder{}, Options{})
	if key := def.cacheKey("q"); !strings.HasPrefix(key, "hybridex:emb_cache:") {
		t.Errorf("unexpected default key %q", key)
	}
}

func TestEmbed_TTL(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{TTL: time.Hour})

	var gotTTL time.Duration
	ms.setWithTTLFn = func(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
		gotTTL = ttl
		return nil
	}
	ms.setFn = func(context.Context, string, []byte) error {
		t.Error("Set must not be used when a TTL is configured")
		return nil
	}

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != time.Hour {
		t.Errorf("ttl = %v", gotTTL)
	}
}

func TestEmbed_TTLSlidesOnL2Hit(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner, Options{TTL: 24 * time.Hour})

	ms.getFn = func(context.Context, string) ([]byte, error) {
		t.Error("GET must not be used when a TTL is configured")
		return nil, db.ErrKeyNotFound
	}
	var refreshed time.Duration
	ms.getExFn = func(_ context.Context, _ string, ttl time.Duration) ([]byte, error) {
		refreshed = ttl
		return db.EncodeVector([]float32{0.25}), nil
	}

	result, err := ce.Embed(context.Background(), "hot query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refreshed != 24*time.Hour {
		t.Errorf("refreshed ttl = %v", refreshed)
	}
	if result.Embedding[0] != 0.25 || inner.calls != 0 {
		t.Errorf("expected L2 hit, got %v after %d inner calls", result.Embedding, inner.calls)
	}
}

func TestEmbed_StoreErrorsAreNotFatal(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})
	ms.getFn = func(context.Context, string) ([]byte, error) { return nil, errors.New("conn reset") }
	ms.setFn = func(context.Context, string, []byte) error { return errors.New("conn reset") }

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEmbed_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{7}}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})
	ms.getFn = func(context.Context, string) ([]byte, error) { return []byte{1, 2, 3}, nil }

	result, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Embedding[0] != 7 || inner.calls != 1 {
		t.Errorf("expected inner result, got %v", result.Embedding)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("provider down")}
	ce, _ := newTestCachedEmbedder(t, inner, Options{})

	if _, err := ce.Embed(context.Background(), "test text"); err == nil {
		t.Fatal("expected error from inner embedder")
	}
}

func TestEmbed_CacheMetrics(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, err := New(inner, &mockKVStore{}, Options{}, counter, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	_, _ = ce.Embed(ctx, "a") //nolint:errcheck // exercised for metrics
	_, _ = ce.Embed(ctx, "a") //nolint:errcheck // exercised for metrics

	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %v, want 1", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("l1_hit")); got != 1 {
		t.Errorf("l1_hit = %v, want 1", got)
	}
}

// gatedEmbedder blocks every call until release is closed.
type gatedEmbedder struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (g *gatedEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if g.calls.Add(1) == 1 {
		close(g.entered)
	}
	<-g.release
	return domain.EmbeddingResult{Embedding: []float32{1, 2}, TotalTokens: 3}, nil
}

func TestEmbed_ConcurrentMissesShareOneCall(t *testing.T) {
	inner := &gatedEmbedder{entered: make(chan struct{}), release: make(chan struct{})}
	ce, err := New(inner, &mockKVStore{}, Options{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	const callers = 4
	var wg sync.WaitGroup
	results := make([]domain.EmbeddingResult, callers)
	errs := make([]error, callers)
	start := func(i int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = ce.Embed(context.Background(), "same text")
		}()
	}

	start(0)
	<-inner.entered
	for i := 1; i < callers; i++ {
		start(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	if got := inner.calls.Load(); got != 1 {
		t.Fatalf("inner calls = %d, want 1", got)
	}
	for i := range callers {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if len(results[i].Embedding) != 2 {
			t.Errorf("caller %d: vector = %v", i, results[i].Embedding)
		}
	}
}
