package document

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/kailas-cloud/hybridex/internal/domain"
	"github.com/kailas-cloud/hybridex/internal/domain/namespace"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 163840 // 160KB

// MaxIDLength is the maximum document ID length.
const MaxIDLength = 256

// Document is the stored document (immutable value object).
type Document struct {
	id        string
	namespace string
	content   string
	language  namespace.Language
	vector    []float32
	createdAt int64
	updatedAt int64
}

// New validates content and creates a Document with a fresh UUID.
// Timestamps are unix milliseconds; createdAt and updatedAt start equal.
func New(ns namespace.Namespace, content string, now int64) (Document, error) {
	if strings.TrimSpace(content) == "" {
		return Document{}, fmt.Errorf("content is required: %w", domain.ErrInvalidRequest)
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes): %w", MaxContentSize, domain.ErrInvalidRequest)
	}

	return Document{
		id:        uuid.NewString(),
		namespace: ns.Name(),
		content:   content,
		language:  ns.Language(),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id, ns, content string, lang namespace.Language, vector []float32, createdAt, updatedAt int64,
) Document {
	return Document{
		id: id, namespace: ns, content: content, language: lang,
		vector: vector, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// ValidateID checks a caller-supplied document ID.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("document ID is required: %w", domain.ErrInvalidRequest)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("document ID too long (max %d): %w", MaxIDLength, domain.ErrInvalidRequest)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("document ID must be alphanumeric with underscores and hyphens: %w", domain.ErrInvalidRequest)
	}
	return nil
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Namespace returns the owning namespace name.
func (d *Document) Namespace() string { return d.namespace }

// Content returns the document text content.
func (d *Document) Content() string { return d.content }

// Language returns the lexical profile the document was indexed under.
func (d *Document) Language() namespace.Language { return d.language }

// Vector returns the embedding vector.
func (d *Document) Vector() []float32 { return d.vector }

// CreatedAt returns the creation time (unix millis).
func (d *Document) CreatedAt() int64 { return d.createdAt }

// UpdatedAt returns the last update time (unix millis).
func (d *Document) UpdatedAt() int64 { return d.updatedAt }

// WithVector returns a copy with the given vector set.
func (d *Document) WithVector(v []float32) Document {
	c := *d
	c.vector = v
	return c
}
