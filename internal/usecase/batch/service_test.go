package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/hybridex/internal/domain"
	dombatch "github.com/kailas-cloud/hybridex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/hybridex/internal/domain/document"
	"github.com/kailas-cloud/hybridex/internal/domain/namespace"
)

// --- Mocks ---

type mockAdder struct {
	mu       sync.Mutex
	seen     []string
	calls    atomic.Int32
	failOn   string
	failWith error
}

func (m *mockAdder) Add(_ context.Context, ns namespace.Namespace, content string) (domdoc.Document, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.seen = append(m.seen, content)
	m.mu.Unlock()

	if m.failOn != "" && content == m.failOn {
		return domdoc.Document{}, m.failWith
	}
	return domdoc.Reconstruct("id-"+content, ns.Name(), content, ns.Language(), nil, 1, 1), nil
}

func newService(t *testing.T, docs DocumentAdder, workers int) *Service {
	t.Helper()
	svc, err := New(docs, workers)
	require.NoError(t, err)
	t.Cleanup(svc.Release)
	return svc
}

// --- Tests ---

func TestAdd_AllOK(t *testing.T) {
	adder := &mockAdder{}
	svc := newService(t, adder, 4)

	contents := make([]string, 20)
	for i := range contents {
		contents[i] = fmt.Sprintf("doc%d", i)
	}

	results := svc.Add(context.Background(), namespace.MustResolve("a", ""), contents)
	require.Len(t, results, 20)
	for i, r := range results {
		assert.Equal(t, dombatch.StatusOK, r.Status(), "item %d", i)
		assert.Equal(t, "id-"+contents[i], r.ID(), "results keep input order")
	}
	assert.EqualValues(t, 20, adder.calls.Load())
}

func TestAdd_PerItemError(t *testing.T) {
	adder := &mockAdder{failOn: "bad", failWith: domain.ErrInvalidRequest}
	svc := newService(t, adder, 2)

	results := svc.Add(context.Background(), namespace.MustResolve("", ""), []string{"ok1", "bad", "ok2"})
	require.Len(t, results, 3)
	assert.Equal(t, dombatch.StatusOK, results[0].Status())
	assert.Equal(t, dombatch.StatusError, results[1].Status())
	assert.ErrorIs(t, results[1].Err(), domain.ErrInvalidRequest)
	assert.Equal(t, dombatch.StatusOK, results[2].Status())
}

func TestAdd_TooLarge(t *testing.T) {
	adder := &mockAdder{}
	svc := newService(t, adder, 2).WithMaxBatchSize(2)

	results := svc.Add(context.Background(), namespace.MustResolve("", ""), []string{"a", "b", "c"})
	require.Len(t, results, 3)
	for _, r := range results {
		assert.ErrorIs(t, r.Err(), domain.ErrInvalidRequest)
	}
	assert.Zero(t, adder.calls.Load(), "oversized batches are rejected before any work")
}

func TestAdd_ConfigurationErrorStopsBatch(t *testing.T) {
	cfgErr := fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, domain.ErrConfiguration)
	adder := &mockAdder{failOn: "first", failWith: cfgErr}
	svc := newService(t, adder, 1)

	results := svc.Add(context.Background(), namespace.MustResolve("", ""), []string{"first", "second", "third"})
	require.Len(t, results, 3)
	assert.Equal(t, dombatch.StatusError, results[0].Status())
	for _, r := range results[1:] {
		assert.Equal(t, dombatch.StatusSkipped, r.Status())
	}
	for _, r := range results {
		assert.True(t, errors.Is(r.Err(), domain.ErrConfiguration), "got %v", r.Err())
	}
	assert.EqualValues(t, 1, adder.calls.Load(), "collaborator is not called again after a configuration failure")
}

func TestAdd_Empty(t *testing.T) {
	svc := newService(t, &mockAdder{}, 1)
	assert.Empty(t, svc.Add(context.Background(), namespace.MustResolve("", ""), nil))
}

func TestNew_DefaultWorkers(t *testing.T) {
	svc := newService(t, &mockAdder{}, 0)
	assert.Positive(t, svc.pool.Cap())
}
