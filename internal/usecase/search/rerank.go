package search

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/hybridex/internal/domain"
	"github.com/kailas-cloud/hybridex/internal/domain/search/candidate"
)

// rerankEpsilon is the rerank score distance under which two candidates are treated as tied.
const rerankEpsilon = 1e-6

// Merge attaches reranker relevance scores to their candidates by index position,
// orders them, and truncates to k. Candidates the reranker did not return are dropped.
//
// Ordering: rerank score descending. Scores chained by gaps below rerankEpsilon
// form one tie group (a 1.0000016, b 1.0000008 and c 1.0 are all tied even though
// a and c are further apart), and a group is ordered by hybrid score descending
// (raw cosine when no hybrid score exists). Groups depend only on the scores, so
// the output does not depend on the order of hits.
func Merge(cands []candidate.Candidate, hits []domain.RerankHit, k int) ([]candidate.Candidate, error) {
	if len(cands) == 0 {
		return nil, nil
	}

	seen := make(map[int]struct{}, len(hits))
	merged := make([]candidate.Candidate, 0, len(hits))
	for _, h := range hits {
		if h.Index < 0 || h.Index >= len(cands) {
			return nil, fmt.Errorf(
				"rerank index %d outside [0, %d): %w", h.Index, len(cands), domain.ErrMalformedResponse,
			)
		}
		if _, dup := seen[h.Index]; dup {
			return nil, fmt.Errorf("rerank index %d returned twice: %w", h.Index, domain.ErrMalformedResponse)
		}
		if math.IsNaN(h.Score) {
			return nil, fmt.Errorf("rerank score for index %d is NaN: %w", h.Index, domain.ErrMalformedResponse)
		}
		seen[h.Index] = struct{}{}
		merged = append(merged, cands[h.Index].WithRerank(h.Score))
	}

	orderByRerank(merged)

	if k >= 0 && len(merged) > k {
		merged = merged[:k]
	}
	return merged, nil
}

// orderByRerank sorts by rerank score, then reorders each run of near-equal
// scores by retrieval score.
func orderByRerank(cands []candidate.Candidate) {
	rerank := func(c candidate.Candidate) float64 {
		r, _ := c.RerankScore()
		return r
	}
	sort.SliceStable(cands, func(i, j int) bool { return rerank(cands[i]) > rerank(cands[j]) })

	for lo := 0; lo < len(cands); {
		hi := lo + 1
		for hi < len(cands) && rerank(cands[hi-1])-rerank(cands[hi]) < rerankEpsilon {
			hi++
		}
		group := cands[lo:hi]
		sort.SliceStable(group, func(i, j int) bool {
			ri, rj := retrievalScore(group[i]), retrievalScore(group[j])
			if ri != rj {
				return ri > rj
			}
			return rerank(group[i]) > rerank(group[j])
		})
		lo = hi
	}
}

// retrievalScore is the pre-rerank signal used to break rerank ties.
func retrievalScore(c candidate.Candidate) float64 {
	if h, ok := c.HybridScore(); ok {
		return h
	}
	return c.Cosine()
}
