package hybridex

import (
	"context"

	dombatch "github.com/kailas-cloud/hybridex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/hybridex/internal/domain/document"
	domns "github.com/kailas-cloud/hybridex/internal/domain/namespace"
	"github.com/kailas-cloud/hybridex/internal/domain/search/candidate"
	"github.com/kailas-cloud/hybridex/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/hybridex/internal/usecase/health"
)

// --- namespaceUseCase mock ---

type mockNamespaceUC struct {
	ensureFn  func(ctx context.Context, name string) (bool, error)
	listFn    func(ctx context.Context) ([]domns.Info, error)
	countFn   func(ctx context.Context, name string) (int, error)
	destroyFn func(ctx context.Context, name string) (int, error)
}

func (m *mockNamespaceUC) Ensure(ctx context.Context, name string) (bool, error) {
	return m.ensureFn(ctx, name)
}

func (m *mockNamespaceUC) List(ctx context.Context) ([]domns.Info, error) {
	return m.listFn(ctx)
}

func (m *mockNamespaceUC) Count(ctx context.Context, name string) (int, error) {
	return m.countFn(ctx, name)
}

func (m *mockNamespaceUC) Destroy(ctx context.Context, name string) (int, error) {
	return m.destroyFn(ctx, name)
}

// --- documentUseCase mock ---

type mockDocumentUC struct {
	addFn    func(ctx context.Context, ns domns.Namespace, content string) (domdoc.Document, error)
	getFn    func(ctx context.Context, ns, id string) (domdoc.Document, error)
	removeFn func(ctx context.Context, ns *string, id string) (int, error)
}

func (m *mockDocumentUC) Add(ctx context.Context, ns domns.Namespace, content string) (domdoc.Document, error) {
	return m.addFn(ctx, ns, content)
}

func (m *mockDocumentUC) Get(ctx context.Context, ns, id string) (domdoc.Document, error) {
	return m.getFn(ctx, ns, id)
}

func (m *mockDocumentUC) Remove(ctx context.Context, ns *string, id string) (int, error) {
	return m.removeFn(ctx, ns, id)
}

// --- batchUseCase mock ---

type mockBatchUC struct {
	addFn func(ctx context.Context, ns domns.Namespace, contents []string) []dombatch.Result
}

func (m *mockBatchUC) Add(ctx context.Context, ns domns.Namespace, contents []string) []dombatch.Result {
	return m.addFn(ctx, ns, contents)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req *request.Request) ([]candidate.Candidate, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) ([]candidate.Candidate, error) {
	return m.searchFn(ctx, req)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}

// --- public collaborator mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockReranker struct {
	fn func(ctx context.Context, query string, documents []string) ([]RerankResult, error)
}

func (m *mockReranker) Rerank(ctx context.Context, query string, documents []string) ([]RerankResult, error) {
	return m.fn(ctx, query, documents)
}

// --- helpers ---

func testClient(
	nsSvc namespaceUseCase,
	docSvc documentUseCase,
	batchSvc batchUseCase,
	searchSvc searchUseCase,
) *Client {
	return &Client{
		nsSvc:     nsSvc,
		docSvc:    docSvc,
		batchSvc:  batchSvc,
		searchSvc: searchSvc,
	}
}
