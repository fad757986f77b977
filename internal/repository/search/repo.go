package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/hybridex/internal/db"
	"github.com/kailas-cloud/hybridex/internal/domain"
	"github.com/kailas-cloud/hybridex/internal/domain/namespace"
	"github.com/kailas-cloud/hybridex/internal/domain/search/candidate"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SupportsTextSearch(ctx context.Context) bool
}

var (
	knnFields  = []string{"__content", "__lang", "created_at", "updated_at", db.VectorScoreField}
	bm25Fields = []string{"__content", "__lang", "__vector", "created_at", "updated_at"}
)

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
	keys  domain.Keys
}

// New creates a search repository using the default key layout.
func New(s store) *Repo {
	return &Repo{store: s}
}

// WithKeys sets the key layout the repository reads under.
func (r *Repo) WithKeys(k domain.Keys) *Repo {
	r.keys = k
	return r
}

// SupportsTextSearch proxies the capability check from the store.
func (r *Repo) SupportsTextSearch(ctx context.Context) bool {
	return r.store.SupportsTextSearch(ctx)
}

// SearchKNN returns the k nearest documents of a namespace with their cosine similarity.
// A namespace without an index yields no candidates.
func (r *Repo) SearchKNN(
	ctx context.Context, ns namespace.Namespace, vector []float32, k int,
) ([]candidate.Candidate, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.keys.IndexName(ns.Name()),
		Vector:       vector,
		K:            k,
		ReturnFields: knnFields,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: search knn %s: %w", domain.ErrCollaboratorUnavailable, ns.Name(), err)
	}

	return r.toCandidates(sr, ns, func(c candidate.Candidate, e db.SearchEntry) candidate.Candidate {
		return c.WithCosine(e.Score)
	}), nil
}

// SearchBM25 returns up to k documents of a namespace matching every query term,
// scored by BM25 and analyzed with the namespace's language profile.
// Stored vectors are returned so the caller can score lexical-only hits.
func (r *Repo) SearchBM25(
	ctx context.Context, ns namespace.Namespace, query string, k int,
) ([]candidate.Candidate, error) {
	q := &db.TextQuery{
		IndexName:    r.keys.IndexName(ns.Name()),
		Query:        query,
		TopK:         k,
		ReturnFields: bm25Fields,
	}
	if lang := ns.Language(); lang.IsNeutral() {
		q.Verbatim = true
	} else {
		q.Language = string(lang)
	}

	sr, err := r.store.SearchBM25(ctx, q)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrIndexNotFound):
			return nil, nil
		case errors.Is(err, db.ErrTextSearchUnsupported):
			return nil, domain.ErrKeywordSearchNotSupported
		}
		return nil, fmt.Errorf("%w: search bm25 %s: %w", domain.ErrCollaboratorUnavailable, ns.Name(), err)
	}

	return r.toCandidates(sr, ns, func(c candidate.Candidate, e db.SearchEntry) candidate.Candidate {
		c = c.WithLexical(e.Score)
		if raw, ok := e.Fields["__vector"]; ok {
			if vec, err := db.DecodeVector([]byte(raw)); err == nil {
				c = c.WithVector(vec)
			}
		}
		return c
	}), nil
}

func (r *Repo) toCandidates(
	sr *db.SearchResult, ns namespace.Namespace,
	score func(candidate.Candidate, db.SearchEntry) candidate.Candidate,
) []candidate.Candidate {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	prefix := r.keys.DocumentPrefix(ns.Name())
	out := make([]candidate.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		c := candidate.New(
			strings.TrimPrefix(entry.Key, prefix),
			ns.Name(),
			entry.Fields["__content"],
			entry.Fields["__lang"],
			parseInt(entry.Fields["created_at"]),
			parseInt(entry.Fields["updated_at"]),
		)
		out = append(out, score(c, entry))
	}
	return out
}

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64) //nolint:errcheck // missing timestamps read as zero
	return n
}
