// Package db defines the storage contract hybridex needs from a Redis-protocol
// server with a search module, and the FT schema and query types shared by its
// drivers (internal/db/redis, internal/db/valkey).
package db

import (
	"context"
	"time"
)

// Store is everything a driver provides. Repositories depend on narrow
// consumer-side interfaces instead of this one.
//
//nolint:interfacebloat // aggregate of the sub-interfaces below
type Store interface {
	Pinger
	HashStore
	KVStore
	IndexManager
	Searcher
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem is one hash written by HSetMulti.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore holds documents and namespace records as hashes.
// The *Multi variants pipeline their commands; HGetAllMulti returns an empty
// map for a missing key and DelMulti reports how many keys existed.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) (int, error)
	// Scan returns every key matching pattern, each once.
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// KVStore holds opaque values such as cached embeddings.
// Reads of a missing key return ErrKeyNotFound.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// GetEx reads a key and pushes its expiry ttl into the future.
	GetEx(ctx context.Context, key string, ttl time.Duration) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager manages the FT index behind each namespace.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	ListIndexes(ctx context.Context) ([]string, error)
	// SupportsTextSearch reports whether TEXT fields and BM25 scoring are available.
	SupportsTextSearch(ctx context.Context) bool
}

// Searcher runs the two retrieval queries of a hybrid search.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchBM25(ctx context.Context, q *TextQuery) (*SearchResult, error)
}
