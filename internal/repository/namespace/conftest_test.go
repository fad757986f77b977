package namespace

import (
	"context"
	"testing"

	"github.com/kailas-cloud/hybridex/internal/db"
)

const testVectorDim = 1536

// mockStore implements the consumer interface for tests. Unset hooks behave
// like an empty server whose indexes all exist.
type mockStore struct {
	supportsTextSearch bool

	// registry and documents
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	existsFn       func(ctx context.Context, key string) (bool, error)
	delFn          func(ctx context.Context, key string) error
	delMultiFn     func(ctx context.Context, keys []string) (int, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)

	// indexes
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn   func(ctx context.Context, name string) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	listIndexesFn func(ctx context.Context) ([]string, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn == nil {
		return nil
	}
	return m.hsetFn(ctx, key, fields)
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn == nil {
		return map[string]string{}, nil
	}
	return m.hgetAllFn(ctx, key)
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn == nil {
		return make([]map[string]string, len(keys)), nil
	}
	return m.hgetAllMultiFn(ctx, keys)
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn == nil {
		return false, nil
	}
	return m.existsFn(ctx, key)
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn == nil {
		return nil
	}
	return m.delFn(ctx, key)
}

func (m *mockStore) DelMulti(ctx context.Context, keys []string) (int, error) {
	if m.delMultiFn == nil {
		return len(keys), nil
	}
	return m.delMultiFn(ctx, keys)
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn == nil {
		return nil, nil
	}
	return m.scanFn(ctx, pattern)
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn == nil {
		return nil
	}
	return m.createIndexFn(ctx, def)
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn == nil {
		return nil
	}
	return m.dropIndexFn(ctx, name)
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn == nil {
		return true, nil
	}
	return m.indexExistsFn(ctx, name)
}

func (m *mockStore) ListIndexes(ctx context.Context) ([]string, error) {
	if m.listIndexesFn == nil {
		return nil, nil
	}
	return m.listIndexesFn(ctx)
}

func (m *mockStore) SupportsTextSearch(context.Context) bool { return m.supportsTextSearch }

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{supportsTextSearch: true}
	return New(ms, testVectorDim), ms
}
