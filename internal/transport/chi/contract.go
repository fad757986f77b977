package chi

import (
	"context"

	dombatch "github.com/kailas-cloud/hybridex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/hybridex/internal/domain/document"
	domns "github.com/kailas-cloud/hybridex/internal/domain/namespace"
	"github.com/kailas-cloud/hybridex/internal/domain/search/candidate"
	"github.com/kailas-cloud/hybridex/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/hybridex/internal/usecase/health"
)

// NamespaceService manages namespaces.
type NamespaceService interface {
	Get(ctx context.Context, name string) (domns.Info, error)
	List(ctx context.Context) ([]domns.Info, error)
	Count(ctx context.Context, name string) (int, error)
	Destroy(ctx context.Context, name string) (int, error)
}

// DocumentService adds, reads and removes single documents.
type DocumentService interface {
	Add(ctx context.Context, ns domns.Namespace, content string) (domdoc.Document, error)
	Get(ctx context.Context, ns, id string) (domdoc.Document, error)
	Remove(ctx context.Context, ns *string, id string) (int, error)
}

// SearchService runs ranked retrieval.
type SearchService interface {
	Search(ctx context.Context, req *request.Request) ([]candidate.Candidate, error)
}

// BatchService adds many documents at once.
type BatchService interface {
	Add(ctx context.Context, ns domns.Namespace, contents []string) []dombatch.Result
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
