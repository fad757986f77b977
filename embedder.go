package hybridex

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/hybridex/internal/domain"
)

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Reranker scores documents against a query.
// Every returned RerankResult.Index must point into documents.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]RerankResult, error)
}

// RerankResult is one relevance score for the document at Index.
type RerankResult struct {
	Index int
	Score float64
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// rerankerAdapter wraps public Reranker to satisfy the search orchestrator.
type rerankerAdapter struct {
	inner Reranker
}

func (a *rerankerAdapter) Rerank(ctx context.Context, query string, documents []string) ([]domain.RerankHit, error) {
	results, err := a.inner.Rerank(ctx, query, documents)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}
	hits := make([]domain.RerankHit, len(results))
	for i, r := range results {
		hits[i] = domain.RerankHit{Index: r.Index, Score: r.Score}
	}
	return hits, nil
}

// noopEmbedder fails every call; used when no embedder is configured.
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf(
		"hybridex: embedder not configured (use WithOpenAI or WithEmbedder): %w: %w",
		domain.ErrEmbeddingUnavailable, domain.ErrConfiguration,
	)
}
