package batch

import (
	"context"

	domdoc "github.com/kailas-cloud/hybridex/internal/domain/document"
	"github.com/kailas-cloud/hybridex/internal/domain/namespace"
)

// DocumentAdder embeds and stores a single document.
type DocumentAdder interface {
	Add(ctx context.Context, ns namespace.Namespace, content string) (domdoc.Document, error)
}
