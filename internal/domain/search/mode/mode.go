package mode

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/hybridex/internal/domain"
)

// Mode is the retrieval strategy of one search call.
type Mode string

// Search mode constants.
const (
	// VectorOnly ranks by raw cosine similarity alone.
	VectorOnly Mode = "vector"
	// Hybrid fuses normalized cosine and lexical scores.
	Hybrid Mode = "hybrid"
	// HybridRerank runs Hybrid at rerank breadth, then reorders with the reranker.
	HybridRerank Mode = "hybrid_rerank"
)

// Default is used when the caller does not pick a mode.
const Default = Hybrid

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == VectorOnly || m == Hybrid || m == HybridRerank
}

// UsesLexical reports whether the mode needs a lexical (BM25) pass.
func (m Mode) UsesLexical() bool { return m == Hybrid || m == HybridRerank }

// Parse resolves a user-supplied mode name. Empty input yields Default.
func Parse(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Default, nil
	case "vector", "vector_only", "semantic":
		return VectorOnly, nil
	case "hybrid":
		return Hybrid, nil
	case "hybrid_rerank", "rerank":
		return HybridRerank, nil
	}
	return "", fmt.Errorf("invalid search mode %q: %w", s, domain.ErrInvalidRequest)
}
