package hybridex

// Mode selects the retrieval pipeline of a search.
type Mode string

// Search modes.
const (
	// ModeVector ranks by cosine similarity only.
	ModeVector Mode = "vector"
	// ModeHybrid fuses normalized cosine and lexical scores. The default.
	ModeHybrid Mode = "hybrid"
	// ModeHybridRerank reorders the top of the hybrid list with the reranker.
	ModeHybridRerank Mode = "hybrid_rerank"
)

// Document is a stored text with its metadata.
type Document struct {
	ID        string
	Namespace string
	Content   string
	// Language is the lexical profile the document was indexed with. Empty means neutral.
	Language  string
	CreatedAt int64
	UpdatedAt int64
}

// Weights are the fusion coefficients of the vector and lexical signals.
type Weights struct {
	Vector float64
	Text   float64
}

// SearchOptions describes one query against an Index.
type SearchOptions struct {
	Query string
	// Mode defaults to ModeHybrid.
	Mode Mode
	// Limit defaults to 10.
	Limit int
	// Language selects the lexical profile used to parse the query.
	Language string
	// Weights overrides the client defaults when non-nil.
	Weights *Weights
	// RerankBreadth overrides how many fused candidates are reranked. It must not be less than Limit.
	RerankBreadth int
}

// Hit is one ranked search result.
type Hit struct {
	ID        string
	Content   string
	Score     float64
	Cosine    float64
	Lexical   *float64
	Hybrid    *float64
	Rerank    *float64
	CreatedAt int64
	UpdatedAt int64
}

// BatchResult is the outcome of one item of AddBatch.
type BatchResult struct {
	ID  string
	OK  bool
	Err error
}

// NamespaceInfo describes a registered namespace.
type NamespaceInfo struct {
	Name      string
	CreatedAt int64
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component to "ok"/"error"
}
