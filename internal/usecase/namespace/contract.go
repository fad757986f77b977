package namespace

import (
	"context"

	domns "github.com/kailas-cloud/hybridex/internal/domain/namespace"
)

// Repository defines the storage contract for namespaces.
type Repository interface {
	Ensure(ctx context.Context, name string, now int64) (created bool, err error)
	Get(ctx context.Context, name string) (domns.Info, error)
	List(ctx context.Context) ([]domns.Info, error)
	Destroy(ctx context.Context, name string) (deleted int, err error)
	// Indexed lists namespaces that own a search index, including ones whose
	// registry entry is gone.
	Indexed(ctx context.Context) ([]string, error)
}

// DocumentCounter counts the documents stored in a namespace.
type DocumentCounter interface {
	Count(ctx context.Context, ns string) (int, error)
}
