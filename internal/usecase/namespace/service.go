package namespace

import (
	"context"
	"fmt"
	"slices"
	"time"

	domns "github.com/kailas-cloud/hybridex/internal/domain/namespace"
)

// Service manages the namespace lifecycle.
type Service struct {
	repo Repository
	docs DocumentCounter
	now  func() int64
}

// New creates a namespace service.
func New(repo Repository, docs DocumentCounter) *Service {
	return &Service{
		repo: repo,
		docs: docs,
		now:  func() int64 { return time.Now().UnixMilli() },
	}
}

// Ensure registers a namespace and creates its index if it does not exist yet.
func (s *Service) Ensure(ctx context.Context, name string) (bool, error) {
	n, err := domns.ValidateName(name)
	if err != nil {
		return false, err
	}
	created, err := s.repo.Ensure(ctx, n, s.now())
	if err != nil {
		return false, fmt.Errorf("ensure namespace: %w", err)
	}
	return created, nil
}

// Get retrieves a namespace by name.
func (s *Service) Get(ctx context.Context, name string) (domns.Info, error) {
	n, err := domns.ValidateName(name)
	if err != nil {
		return domns.Info{}, err
	}
	info, err := s.repo.Get(ctx, n)
	if err != nil {
		return domns.Info{}, fmt.Errorf("get namespace: %w", err)
	}
	return info, nil
}

// List returns all registered namespaces.
func (s *Service) List(ctx context.Context) ([]domns.Info, error) {
	infos, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	return infos, nil
}

// Count returns the number of documents in a namespace.
func (s *Service) Count(ctx context.Context, name string) (int, error) {
	n, err := domns.ValidateName(name)
	if err != nil {
		return 0, err
	}
	count, err := s.docs.Count(ctx, n)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// Destroy deletes every document of a namespace together with its index and
// registry entry. It returns the number of deleted documents.
func (s *Service) Destroy(ctx context.Context, name string) (int, error) {
	n, err := domns.ValidateName(name)
	if err != nil {
		return 0, err
	}
	deleted, err := s.repo.Destroy(ctx, n)
	if err != nil {
		return deleted, fmt.Errorf("destroy namespace: %w", err)
	}
	return deleted, nil
}

// DestroyAll destroys every registered namespace, plus any namespace that
// still owns an index without a registry entry, and returns the total number
// of deleted documents.
func (s *Service) DestroyAll(ctx context.Context) (int, error) {
	infos, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	indexed, err := s.repo.Indexed(ctx)
	if err != nil {
		return 0, fmt.Errorf("list indexed namespaces: %w", err)
	}

	names := make([]string, 0, len(infos)+len(indexed))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	for _, name := range indexed {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	total := 0
	for _, name := range names {
		n, err := s.repo.Destroy(ctx, name)
		total += n
		if err != nil {
			return total, fmt.Errorf("destroy namespace %s: %w", name, err)
		}
	}
	return total, nil
}
