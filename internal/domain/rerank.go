package domain

import "context"

// Reranker scores documents against a query with a cross-encoder.
// Hits reference documents by their position in the submitted slice.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]RerankHit, error)
}

// RerankHit is one (original index, relevance) pair returned by a Reranker.
type RerankHit struct {
	Index int
	Score float64
}
