package namespace

import (
	"github.com/kailas-cloud/hybridex/internal/db"
	"github.com/kailas-cloud/hybridex/internal/domain"
)

// buildIndex creates the FT index definition for a namespace.
// textSearchEnabled adds the __content TEXT field and the per-document language
// field (BM25 keyword search). Requires Redis 8+; valkey-search 1.0.x does not support TEXT.
// Stopwords are off: untagged documents are indexed under the server default
// language, and only language-tagged queries may drop terms.
func buildIndex(
	keys domain.Keys, name string, vectorDim int, textSearchEnabled bool, hnsw HNSWConfig,
) (*db.IndexDefinition, error) {
	b := db.NewIndex(keys.IndexName(name)).Prefix(keys.DocumentPrefix(name))
	if textSearchEnabled {
		b = b.LanguageField("__lang").NoStopwords().Text("__content")
	}
	return b.
		Vector("__vector", "vector", db.VectorParams{
			Algorithm:      db.VectorHNSW,
			Dim:            vectorDim,
			Distance:       db.DistanceCosine,
			M:              hnsw.M,
			EFConstruction: hnsw.EFConstruct,
		}).
		Numeric("created_at").
		Build()
}
