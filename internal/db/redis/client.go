package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/hybridex/internal/db"
)

var _ db.Store = (*Store)(nil)

const readinessPollInterval = 100 * time.Millisecond

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store implements db.Store on Redis 8 (or Redis Stack) through rueidis.
type Store struct {
	client   rueidis.Client
	knnLimit bool
}

// Option adjusts a Store for a server dialect.
type Option func(*Store)

// WithoutKNNLimit omits LIMIT from KNN queries, for servers that bound KNN
// results by K alone and reject the clause.
func WithoutKNNLimit() Option {
	return func(s *Store) { s.knnLimit = false }
}

// NewStore dials Redis. RESP2 is forced because FT.SEARCH replies are parsed as flat arrays.
func NewStore(cfg Config, opts ...Option) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return NewStoreFromClient(client, opts...), nil
}

// NewStoreFromClient wraps an existing rueidis client.
func NewStoreFromClient(client rueidis.Client, opts ...Option) *Store {
	s := &Store{client: client, knnLimit: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls until the server answers PING and exposes the search
// module, or timeout expires. A server that answers but has no FT.* commands
// fails immediately with db.ErrSearchModuleMissing.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readinessPollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("timeout waiting for database: %w (last error: %w)", ctx.Err(), lastErr)
			}
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if lastErr = s.Ping(ctx); lastErr != nil {
				continue
			}
			lastErr = s.checkSearchModule(ctx)
			if lastErr == nil || errors.Is(lastErr, db.ErrSearchModuleMissing) {
				return lastErr
			}
		}
	}
}

// checkSearchModule lists the search indexes, which only succeeds with the module loaded.
func (s *Store) checkSearchModule(ctx context.Context) error {
	_, err := s.ListIndexes(ctx)
	return err
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr reports whether err is a server error whose text contains substr, ignoring case.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
