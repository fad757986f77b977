package search

import (
	"context"

	"github.com/kailas-cloud/hybridex/internal/domain"
	"github.com/kailas-cloud/hybridex/internal/domain/namespace"
	"github.com/kailas-cloud/hybridex/internal/domain/search/candidate"
)

// Repository defines the storage contract for search operations.
// Every call is scoped to exactly one namespace.
type Repository interface {
	// SearchKNN returns up to k nearest documents with raw cosine similarity set.
	SearchKNN(ctx context.Context, ns namespace.Namespace, vector []float32, k int) ([]candidate.Candidate, error)

	// SearchBM25 returns up to k lexical matches with the raw lexical score and stored vector set.
	SearchBM25(ctx context.Context, ns namespace.Namespace, query string, k int) ([]candidate.Candidate, error)

	SupportsTextSearch(ctx context.Context) bool
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Reranker scores documents against a query.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]domain.RerankHit, error)
}
