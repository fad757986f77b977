package db

import (
	"errors"
	"strings"
)

// VectorScoreField is the pseudo-field FT.SEARCH fills with the KNN distance.
const VectorScoreField = "__vector_score"

// KNNQuery asks for the K nearest neighbours of Vector in an index whose
// vector field is aliased "vector".
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// Validate rejects queries the server would refuse.
func (q *KNNQuery) Validate() error {
	switch {
	case q.IndexName == "":
		return errors.New("index name is required")
	case len(q.Vector) == 0:
		return errors.New("vector is required")
	case q.K <= 0:
		return errors.New("k must be positive")
	}
	return nil
}

// TextQuery is a BM25 search over the content field.
type TextQuery struct {
	IndexName    string
	Query        string
	TopK         int
	ReturnFields []string
	// Language selects the stemmer; ignored when Verbatim is set.
	Language string
	// Verbatim disables stemming and query expansion.
	Verbatim bool
}

// Validate rejects queries the server would refuse.
func (q *TextQuery) Validate() error {
	switch {
	case q.IndexName == "":
		return errors.New("index name is required")
	case strings.TrimSpace(q.Query) == "":
		return errors.New("query is required")
	case q.TopK <= 0:
		return errors.New("topK must be positive")
	}
	return nil
}

// SearchResult holds the hits of one FT.SEARCH, best first.
// Total is the server's match count, which may exceed len(Entries).
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is one hit. Score is cosine similarity for KNN queries and the
// raw BM25 score for text queries.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
