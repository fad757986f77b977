package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/hybridex/internal/db"
)

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	return s.readBytes(ctx, db.OpGet, s.b().Get().Key(key).Build())
}

// GetEx retrieves a value and refreshes its expiry, so entries that keep
// being read stay alive. A non-positive ttl degrades to a plain GET.
func (s *Store) GetEx(ctx context.Context, key string, ttl time.Duration) ([]byte, error) {
	secs := ttlSeconds(ttl)
	if secs == 0 {
		return s.Get(ctx, key)
	}
	cmd := s.b().Arbitrary("GETEX").Keys(key).
		Args("EX", strconv.FormatInt(secs, 10)).
		Build()
	return s.readBytes(ctx, db.OpGetEx, cmd)
}

// Set stores a value at the given key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// SetWithTTL stores a value with an expiration. Durations under a second
// are stored without one.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	secs := ttlSeconds(ttl)
	if secs == 0 {
		return s.Set(ctx, key, value)
	}
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(time.Duration(secs) * time.Second).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

func (s *Store) readBytes(ctx context.Context, op string, cmd rueidis.Completed) ([]byte, error) {
	data, err := s.do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: op, Err: err}
	}
	return data, nil
}

func ttlSeconds(ttl time.Duration) int64 {
	if ttl < time.Second {
		return 0
	}
	return int64(ttl / time.Second)
}
