package valkey

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/hybridex/internal/db"
	"github.com/kailas-cloud/hybridex/internal/db/redis"
)

var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Valkey store.
type Config struct {
	Addrs    []string
	Username string
	Password string
}

// Store implements db.Store for Valkey with the valkey-search module.
// Hash, KV and index management are shared with the Redis store; valkey-search
// has no TEXT fields, so lexical retrieval is reported as unsupported.
type Store struct {
	*redis.Store
}

// NewStore creates a Valkey store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DisableCache: true,
		AlwaysRESP2:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return newStore(client), nil
}

// newStore adapts the Redis store to valkey-search: KNN queries go out
// without LIMIT and lexical retrieval is reported as unsupported.
func newStore(c rueidis.Client) *Store {
	return &Store{Store: redis.NewStoreFromClient(c, redis.WithoutKNNLimit())}
}

// CreateIndex creates an FT index without TEXT fields or LANGUAGE_FIELD,
// which valkey-search rejects.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if def != nil {
		def = def.WithoutText()
	}
	return s.Store.CreateIndex(ctx, def)
}

// SupportsTextSearch returns false: valkey-search indexes vectors, tags and numerics only.
func (s *Store) SupportsTextSearch(_ context.Context) bool {
	return false
}

// SearchBM25 is not available on valkey-search.
func (s *Store) SearchBM25(context.Context, *db.TextQuery) (*db.SearchResult, error) {
	return nil, db.ErrTextSearchUnsupported
}
