// Package candidate holds the per-query scored document.
package candidate

// Candidate is one document scored within a single search call.
// Every With* method returns a modified copy.
type Candidate struct {
	id        string
	namespace string
	content   string
	language  string
	vector    []float32

	cosine     float64
	lexical    float64
	hasLexical bool

	normCosine  float64
	normLexical float64

	hybrid    float64
	hasHybrid bool

	rerank    float64
	hasRerank bool

	createdAt int64
	updatedAt int64
}

// New creates a candidate projected from a stored document.
func New(id, namespace, content, language string, createdAt, updatedAt int64) Candidate {
	return Candidate{
		id: id, namespace: namespace, content: content, language: language,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// ID returns the document identifier.
func (c Candidate) ID() string { return c.id }

// Namespace returns the namespace the document was retrieved from.
func (c Candidate) Namespace() string { return c.namespace }

// Content returns the raw document text.
func (c Candidate) Content() string { return c.content }

// Language returns the document's language tag.
func (c Candidate) Language() string { return c.language }

// Vector returns the stored embedding, when the storage query returned it.
func (c Candidate) Vector() []float32 { return c.vector }

// Cosine returns the raw cosine similarity.
func (c Candidate) Cosine() float64 { return c.cosine }

// Lexical returns the raw lexical score and whether one was computed.
func (c Candidate) Lexical() (float64, bool) { return c.lexical, c.hasLexical }

// NormalizedCosine returns the per-query normalized cosine similarity.
func (c Candidate) NormalizedCosine() float64 { return c.normCosine }

// NormalizedLexical returns the per-query normalized lexical score.
func (c Candidate) NormalizedLexical() float64 { return c.normLexical }

// HybridScore returns the fused score and whether fusion ran.
func (c Candidate) HybridScore() (float64, bool) { return c.hybrid, c.hasHybrid }

// RerankScore returns the reranker relevance and whether reranking ran.
func (c Candidate) RerankScore() (float64, bool) { return c.rerank, c.hasRerank }

// CreatedAt returns the document creation time (unix millis).
func (c Candidate) CreatedAt() int64 { return c.createdAt }

// UpdatedAt returns the document update time (unix millis).
func (c Candidate) UpdatedAt() int64 { return c.updatedAt }

// Score returns the ranking score: rerank, then hybrid, then cosine.
func (c Candidate) Score() float64 {
	if c.hasRerank {
		return c.rerank
	}
	if c.hasHybrid {
		return c.hybrid
	}
	return c.cosine
}

// WithVector returns a copy carrying the stored embedding.
func (c Candidate) WithVector(v []float32) Candidate {
	c.vector = v
	return c
}

// WithCosine returns a copy with the raw cosine similarity set.
func (c Candidate) WithCosine(s float64) Candidate {
	c.cosine = s
	return c
}

// WithLexical returns a copy with the raw lexical score set.
func (c Candidate) WithLexical(s float64) Candidate {
	c.lexical = s
	c.hasLexical = true
	return c
}

// WithNormalized returns a copy with both normalized scores set.
func (c Candidate) WithNormalized(cosine, lexical float64) Candidate {
	c.normCosine = cosine
	c.normLexical = lexical
	return c
}

// WithHybrid returns a copy with the fused score set.
func (c Candidate) WithHybrid(s float64) Candidate {
	c.hybrid = s
	c.hasHybrid = true
	return c
}

// WithRerank returns a copy with the reranker relevance set.
func (c Candidate) WithRerank(s float64) Candidate {
	c.rerank = s
	c.hasRerank = true
	return c
}
