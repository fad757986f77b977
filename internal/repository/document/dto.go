package document

import (
	"strconv"

	"github.com/kailas-cloud/hybridex/internal/db"
	domdoc "github.com/kailas-cloud/hybridex/internal/domain/document"
	"github.com/kailas-cloud/hybridex/internal/domain/namespace"
)

// buildHashFields converts a domain Document into a flat map[string]string for HSET.
// A neutral language is stored as no __lang field so the index falls back to its default.
func buildHashFields(doc *domdoc.Document) map[string]string {
	m := map[string]string{
		"__content":  doc.Content(),
		"__vector":   string(db.EncodeVector(doc.Vector())),
		"created_at": strconv.FormatInt(doc.CreatedAt(), 10),
		"updated_at": strconv.FormatInt(doc.UpdatedAt(), 10),
	}
	if lang := doc.Language(); !lang.IsNeutral() {
		m["__lang"] = string(lang)
	}
	return m
}

// parseHashFields converts a flat hash map back into a domain Document.
func parseHashFields(ns, id string, m map[string]string) domdoc.Document {
	created, _ := strconv.ParseInt(m["created_at"], 10, 64) //nolint:errcheck // missing reads as zero
	updated, _ := strconv.ParseInt(m["updated_at"], 10, 64) //nolint:errcheck // missing reads as zero
	vec, _ := db.DecodeVector([]byte(m["__vector"]))        //nolint:errcheck // a corrupt blob reads as no vector

	return domdoc.Reconstruct(
		id, ns, m["__content"], namespace.Language(m["__lang"]),
		vec, created, updated,
	)
}
