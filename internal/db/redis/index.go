package redis

import (
	"context"
	"errors"

	"github.com/kailas-cloud/hybridex/internal/db"
)

const errUnknownIndex = "unknown index name"

// CreateIndex issues FT.CREATE for def. An index that already exists yields db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if def == nil {
		return &db.Error{Op: db.OpCreateIndex, Err: errors.New("nil index definition")}
	}
	args, err := def.Args()
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	err = s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isRedisErr(err, "index already exists"):
		return db.ErrIndexExists
	default:
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
}

// DropIndex removes the index but leaves the indexed hashes in place.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	err := s.do(ctx, s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isRedisErr(err, errUnknownIndex):
		return db.ErrIndexNotFound
	default:
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
}

// IndexExists looks the index up with FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).Error()
	switch {
	case err == nil:
		return true, nil
	case isRedisErr(err, errUnknownIndex):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
}

// ListIndexes returns the names of every FT index on the server.
func (s *Store) ListIndexes(ctx context.Context) ([]string, error) {
	names, err := s.do(ctx, s.b().Arbitrary("FT._LIST").Build()).AsStrSlice()
	if err != nil {
		if isRedisErr(err, "unknown command") {
			return nil, db.ErrSearchModuleMissing
		}
		return nil, &db.Error{Op: db.OpIndexList, Err: err}
	}
	return names, nil
}

// SupportsTextSearch returns true: Redis 8 ships TEXT fields and BM25 scoring.
func (s *Store) SupportsTextSearch(_ context.Context) bool {
	return true
}
