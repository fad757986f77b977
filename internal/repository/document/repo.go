package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/hybridex/internal/db"
	"github.com/kailas-cloud/hybridex/internal/domain"
	domdoc "github.com/kailas-cloud/hybridex/internal/domain/document"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) (int, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/document.Repository.
type Repo struct {
	store store
	keys  domain.Keys
}

// New creates a document repository using the default key layout.
func New(s store) *Repo {
	return &Repo{store: s}
}

// WithKeys sets the key layout documents are stored under.
func (r *Repo) WithKeys(k domain.Keys) *Repo {
	r.keys = k
	return r
}

// Insert stores a document under its namespace prefix.
func (r *Repo) Insert(ctx context.Context, doc *domdoc.Document) error {
	key := r.keys.DocumentKey(doc.Namespace(), doc.ID())
	if err := r.store.HSet(ctx, key, buildHashFields(doc)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// InsertMulti stores documents in a single pipelined round-trip.
func (r *Repo) InsertMulti(ctx context.Context, docs []domdoc.Document) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(docs))
	for i := range docs {
		items[i] = db.HashSetItem{
			Key:    r.keys.DocumentKey(docs[i].Namespace(), docs[i].ID()),
			Fields: buildHashFields(&docs[i]),
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset multi: %w", err)
	}
	return nil
}

// Get returns a document by namespace and ID.
func (r *Repo) Get(ctx context.Context, ns, id string) (domdoc.Document, error) {
	key := r.keys.DocumentKey(ns, id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return parseHashFields(ns, id, m), nil
}

// Delete removes a document from one namespace.
func (r *Repo) Delete(ctx context.Context, ns, id string) error {
	key := r.keys.DocumentKey(ns, id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// DeleteAnywhere removes a document id from every namespace it appears in
// and returns how many copies were deleted.
func (r *Repo) DeleteAnywhere(ctx context.Context, id string) (int, error) {
	keys, err := r.store.Scan(ctx, r.keys.DocumentPattern(id))
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", id, err)
	}
	if len(keys) == 0 {
		return 0, domain.ErrDocumentNotFound
	}

	n, err := r.store.DelMulti(ctx, keys)
	if err != nil {
		return n, fmt.Errorf("del %s: %w", id, err)
	}
	if n == 0 {
		return 0, domain.ErrDocumentNotFound
	}
	return n, nil
}

// Count returns the number of documents in a namespace.
func (r *Repo) Count(ctx context.Context, ns string) (int, error) {
	keys, err := r.store.Scan(ctx, r.keys.DocumentPrefix(ns)+"*")
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", ns, err)
	}
	return len(keys), nil
}

