package document

import (
	"context"

	"github.com/kailas-cloud/hybridex/internal/domain"
	domdoc "github.com/kailas-cloud/hybridex/internal/domain/document"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Insert(ctx context.Context, doc *domdoc.Document) error
	Get(ctx context.Context, ns, id string) (domdoc.Document, error)
	Delete(ctx context.Context, ns, id string) error
	DeleteAnywhere(ctx context.Context, id string) (deleted int, err error)
	Count(ctx context.Context, ns string) (int, error)
}

// NamespaceEnsurer creates a namespace index on first use.
type NamespaceEnsurer interface {
	Ensure(ctx context.Context, name string, now int64) (created bool, err error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
