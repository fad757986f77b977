package document

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/hybridex/internal/domain"
	domdoc "github.com/kailas-cloud/hybridex/internal/domain/document"
	"github.com/kailas-cloud/hybridex/internal/domain/namespace"
)

// Service handles document add, lookup and removal with automatic vectorization.
type Service struct {
	repo       Repository
	namespaces NamespaceEnsurer
	embedder   Embedder
	vectorDim  int
	now        func() int64
}

// New creates a document service. vectorDim of 0 disables the dimension check.
func New(repo Repository, namespaces NamespaceEnsurer, embedder Embedder, vectorDim int) *Service {
	return &Service{
		repo:       repo,
		namespaces: namespaces,
		embedder:   embedder,
		vectorDim:  vectorDim,
		now:        func() int64 { return time.Now().UnixMilli() },
	}
}

// Add embeds content and stores it as a new document in ns, creating the
// namespace index on first use. The namespace's language tags the document.
func (s *Service) Add(ctx context.Context, ns namespace.Namespace, content string) (domdoc.Document, error) {
	now := s.now()
	doc, err := domdoc.New(ns, content, now)
	if err != nil {
		return domdoc.Document{}, err
	}

	result, err := s.embedder.Embed(ctx, doc.Content())
	if err != nil {
		return domdoc.Document{}, domain.NewStageError(domain.StageEmbed, fmt.Errorf("vectorize document: %w", err))
	}
	if s.vectorDim > 0 && len(result.Embedding) != s.vectorDim {
		return domdoc.Document{}, domain.NewStageError(domain.StageEmbed, fmt.Errorf(
			"vector dimension mismatch: got %d, want %d: %w",
			len(result.Embedding), s.vectorDim, domain.ErrVectorDimMismatch,
		))
	}
	doc = doc.WithVector(result.Embedding)

	if _, err := s.namespaces.Ensure(ctx, ns.Name(), now); err != nil {
		return domdoc.Document{}, domain.NewStageError(domain.StageStorage, fmt.Errorf("ensure namespace: %w", err))
	}

	if err := s.repo.Insert(ctx, &doc); err != nil {
		return domdoc.Document{}, domain.NewStageError(domain.StageStorage, fmt.Errorf("insert document: %w", err))
	}

	return doc, nil
}

// Get retrieves a document by namespace and ID.
func (s *Service) Get(ctx context.Context, ns, id string) (domdoc.Document, error) {
	name, err := namespace.ValidateName(ns)
	if err != nil {
		return domdoc.Document{}, err
	}
	if err := domdoc.ValidateID(id); err != nil {
		return domdoc.Document{}, err
	}

	doc, err := s.repo.Get(ctx, name, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Remove deletes a document. With a nil namespace the id is removed from every
// namespace it appears in. It returns how many documents were deleted and
// ErrDocumentNotFound when nothing matched.
func (s *Service) Remove(ctx context.Context, ns *string, id string) (int, error) {
	if err := domdoc.ValidateID(id); err != nil {
		return 0, err
	}

	if ns == nil {
		n, err := s.repo.DeleteAnywhere(ctx, id)
		if err != nil {
			return n, fmt.Errorf("delete document: %w", err)
		}
		return n, nil
	}

	name, err := namespace.ValidateName(*ns)
	if err != nil {
		return 0, err
	}
	if err := s.repo.Delete(ctx, name, id); err != nil {
		return 0, fmt.Errorf("delete document: %w", err)
	}
	return 1, nil
}

// Count returns the number of documents in a namespace.
func (s *Service) Count(ctx context.Context, ns string) (int, error) {
	name, err := namespace.ValidateName(ns)
	if err != nil {
		return 0, err
	}
	count, err := s.repo.Count(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}
