package search

import (
	"sort"

	"github.com/kailas-cloud/hybridex/internal/domain/search/candidate"
	"github.com/kailas-cloud/hybridex/internal/domain/search/weights"
)

// Fuse normalizes cosine and lexical scores across the batch and sets
// hybrid = w.Vector*normCosine + w.Text*normLexical on every candidate.
// The result is sorted by hybrid score descending; equal scores keep input order.
func Fuse(cands []candidate.Candidate, w weights.Weights) []candidate.Candidate {
	if len(cands) == 0 {
		return nil
	}

	cos := make([]float64, len(cands))
	lex := make([]float64, len(cands))
	for i, c := range cands {
		cos[i] = c.Cosine()
		lex[i], _ = c.Lexical()
	}
	normCos := Normalize(cos)
	normLex := Normalize(lex)

	fused := make([]candidate.Candidate, len(cands))
	for i, c := range cands {
		hybrid := w.Vector*normCos[i] + w.Text*normLex[i]
		fused[i] = c.WithNormalized(normCos[i], normLex[i]).WithHybrid(hybrid)
	}

	sort.SliceStable(fused, func(i, j int) bool {
		hi, _ := fused[i].HybridScore()
		hj, _ := fused[j].HybridScore()
		return hi > hj
	})

	return fused
}
