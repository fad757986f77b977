package namespace

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/hybridex/internal/db"
	"github.com/kailas-cloud/hybridex/internal/domain"
	domns "github.com/kailas-cloud/hybridex/internal/domain/namespace"
)

// store is the consumer interface for namespaces (ISP).
//
//nolint:interfacebloat // registry hashes, document sweep and index lifecycle
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) (int, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	ListIndexes(ctx context.Context) ([]string, error)
	SupportsTextSearch(ctx context.Context) bool
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements usecase/namespace.Repository.
type Repo struct {
	store     store
	vectorDim int
	hnsw      HNSWConfig
	keys      domain.Keys
}

// New creates a namespace repository whose indexes hold vectors of vectorDim dimensions.
func New(s store, vectorDim int) *Repo {
	return &Repo{store: s, vectorDim: vectorDim, hnsw: HNSWConfig{M: 32, EFConstruct: 400}}
}

// WithKeys sets the key layout of the registry, documents and indexes.
func (r *Repo) WithKeys(k domain.Keys) *Repo {
	r.keys = k
	return r
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Ensure registers a namespace and creates its index. It is idempotent and
// reports whether this call registered the namespace. A registered namespace
// whose index has gone missing gets the index back. When FT.CREATE fails for a
// new namespace the registry entry is removed again.
func (r *Repo) Ensure(ctx context.Context, name string, now int64) (bool, error) {
	def, err := buildIndex(r.keys, name, r.vectorDim, r.store.SupportsTextSearch(ctx), r.hnsw)
	if err != nil {
		return false, fmt.Errorf("build index: %w", err)
	}

	key := r.keys.NamespaceKey(name)
	registered, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists: %w", err)
	}
	if registered {
		return false, r.restoreIndex(ctx, def)
	}

	if err := r.store.HSet(ctx, key, infoToHash(domns.NewInfo(name, now))); err != nil {
		return false, fmt.Errorf("hset namespace %s: %w", name, err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return false, errors.Join(fmt.Errorf("create index %s: %w", def.Name, err), r.store.Del(ctx, key))
	}
	return true, nil
}

func (r *Repo) restoreIndex(ctx context.Context, def *db.IndexDefinition) error {
	exists, err := r.store.IndexExists(ctx, def.Name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", def.Name, err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("restore index %s: %w", def.Name, err)
	}
	return nil
}

// Get retrieves a namespace by name.
func (r *Repo) Get(ctx context.Context, name string) (domns.Info, error) {
	m, err := r.store.HGetAll(ctx, r.keys.NamespaceKey(name))
	if err != nil {
		return domns.Info{}, fmt.Errorf("hgetall namespace %s: %w", name, err)
	}
	if len(m) == 0 {
		return domns.Info{}, domain.ErrNotFound
	}
	return infoFromHash(m)
}

// List returns all registered namespaces sorted by CreatedAt.
func (r *Repo) List(ctx context.Context) ([]domns.Info, error) {
	keys, err := r.store.Scan(ctx, r.keys.NamespacePattern())
	if err != nil {
		return nil, fmt.Errorf("scan namespaces: %w", err)
	}
	if len(keys) == 0 {
		return []domns.Info{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi namespaces: %w", err)
	}

	infos := make([]domns.Info, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		info, err := infoFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse namespace %s: %w", keys[i], err)
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt() != infos[j].CreatedAt() {
			return infos[i].CreatedAt() < infos[j].CreatedAt()
		}
		return infos[i].Name() < infos[j].Name()
	})

	return infos, nil
}

// Destroy drops a namespace's index, deletes every document under its prefix and
// removes the registry entry. It returns the number of deleted documents; an
// unknown namespace deletes nothing and is not an error.
func (r *Repo) Destroy(ctx context.Context, name string) (int, error) {
	if err := r.store.DropIndex(ctx, r.keys.IndexName(name)); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return 0, fmt.Errorf("drop index %s: %w", name, err)
	}

	keys, err := r.store.Scan(ctx, r.keys.DocumentPrefix(name)+"*")
	if err != nil {
		return 0, fmt.Errorf("scan documents %s: %w", name, err)
	}

	deleted, err := r.store.DelMulti(ctx, keys)
	if err != nil {
		return deleted, fmt.Errorf("delete documents %s: %w", name, err)
	}

	if err := r.store.Del(ctx, r.keys.NamespaceKey(name)); err != nil {
		return deleted, fmt.Errorf("del namespace %s: %w", name, err)
	}

	return deleted, nil
}

// Indexed returns the namespaces that own a search index, registered or not.
// Indexes outside the key prefix are ignored.
func (r *Repo) Indexed(ctx context.Context) ([]string, error) {
	indexes, err := r.store.ListIndexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	names := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		if ns, ok := r.keys.NamespaceFromIndexName(idx); ok {
			names = append(names, ns)
		}
	}
	sort.Strings(names)
	return names, nil
}
