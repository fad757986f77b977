package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridex/internal/domain"
	dombatch "github.com/kailas-cloud/hybridex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/hybridex/internal/domain/document"
	domns "github.com/kailas-cloud/hybridex/internal/domain/namespace"
	"github.com/kailas-cloud/hybridex/internal/domain/search/candidate"
	"github.com/kailas-cloud/hybridex/internal/domain/search/mode"
	"github.com/kailas-cloud/hybridex/internal/domain/search/request"
	"github.com/kailas-cloud/hybridex/internal/domain/search/weights"
	logpkg "github.com/kailas-cloud/hybridex/internal/logger"
	healthuc "github.com/kailas-cloud/hybridex/internal/usecase/health"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 8 << 20

// Server implements the HTTP API handlers.
type Server struct {
	namespaces    NamespaceService
	documents     DocumentService
	search        SearchService
	batch         BatchService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	namespaces NamespaceService,
	documents DocumentService,
	search SearchService,
	batch BatchService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		namespaces:    namespaces,
		documents:     documents,
		search:        search,
		batch:         batch,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// ListNamespaces handles GET /namespaces.
func (s *Server) ListNamespaces(w http.ResponseWriter, r *http.Request) {
	infos, err := s.namespaces.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]NamespaceResponse, len(infos))
	for i, info := range infos {
		items[i] = NamespaceResponse{Name: info.Name(), CreatedAt: info.CreatedAt()}
	}
	writeJSON(w, http.StatusOK, NamespaceListResponse{Items: items, Total: len(items)})
}

// GetNamespace handles GET /namespaces/{namespace}.
func (s *Server) GetNamespace(w http.ResponseWriter, r *http.Request, namespace string) {
	info, err := s.namespaces.Get(r.Context(), namespace)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := NamespaceResponse{Name: info.Name(), CreatedAt: info.CreatedAt()}
	count, err := s.namespaces.Count(r.Context(), info.Name())
	if err != nil {
		s.logger.Warn("count documents", zap.String("namespace", info.Name()), zap.Error(err))
	} else {
		resp.DocumentCount = &count
	}
	writeJSON(w, http.StatusOK, resp)
}

// DestroyNamespace handles DELETE /namespaces/{namespace}.
func (s *Server) DestroyNamespace(w http.ResponseWriter, r *http.Request, namespace string) {
	deleted, err := s.namespaces.Destroy(r.Context(), namespace)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	name, _ := domns.ValidateName(namespace)
	writeJSON(w, http.StatusOK, DestroyNamespaceResponse{Namespace: name, Deleted: deleted})
}

// AddDocument handles POST /namespaces/{namespace}/documents.
func (s *Server) AddDocument(w http.ResponseWriter, r *http.Request, namespace string) {
	var req AddDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ns, err := domns.Resolve(namespace, deref(req.Language))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	doc, err := s.documents.Add(r.Context(), ns, req.Content)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AddDocumentResponse{ID: doc.ID()})
}

// GetDocument handles GET /namespaces/{namespace}/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request, namespace, id string) {
	doc, err := s.documents.Get(r.Context(), namespace, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(&doc))
}

// DeleteDocument handles DELETE /namespaces/{namespace}/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request, namespace, id string) {
	deleted, err := s.documents.Remove(r.Context(), &namespace, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteDocumentResponse{ID: id, Deleted: deleted})
}

// DeleteDocumentAnywhere handles DELETE /documents/{id}.
// The optional namespace query parameter scopes the removal.
func (s *Server) DeleteDocumentAnywhere(w http.ResponseWriter, r *http.Request, id string, namespace *string) {
	deleted, err := s.documents.Remove(r.Context(), namespace, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteDocumentResponse{ID: id, Deleted: deleted})
}

// BatchAdd handles POST /namespaces/{namespace}/documents/batch.
func (s *Server) BatchAdd(w http.ResponseWriter, r *http.Request, namespace string) {
	var req BatchAddRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "documents must not be empty")
		return
	}

	ns, err := domns.Resolve(namespace, deref(req.Language))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	contents := make([]string, len(req.Documents))
	for i, d := range req.Documents {
		contents[i] = d.Content
	}

	results := s.batch.Add(r.Context(), ns, contents)

	items := make([]BatchResultItem, len(results))
	for i, res := range results {
		items[i] = batchResultToResponse(i, res)
	}
	sum := dombatch.Summarize(results)

	writeJSON(w, http.StatusOK, BatchAddResponse{
		Items:     items,
		Succeeded: sum.Succeeded,
		Failed:    sum.Failed + sum.Skipped,
		Skipped:   sum.Skipped,
	})
}

// Search handles POST /namespaces/{namespace}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request, namespace string) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	searchReq, err := searchRequestFromAPI(namespace, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	r = r.WithContext(logpkg.WithFields(r.Context(),
		zap.String("namespace", namespace), zap.String("mode", string(searchReq.Mode()))))

	results, err := s.search.Search(r.Context(), &searchReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]SearchResultItem, len(results))
	for i := range results {
		items[i] = candidateToResponse(&results[i])
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Items: items,
		Total: len(items),
		Mode:  string(searchReq.Mode()),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeErrorResponse(w, status, ErrorResponse{Code: code, Message: message})
}

func writeErrorResponse(w http.ResponseWriter, status int, resp ErrorResponse) {
	writeJSON(w, status, resp)
}

func searchRequestFromAPI(namespace string, req SearchRequest) (request.Request, error) {
	m, err := mode.Parse(deref(req.Mode))
	if err != nil {
		return request.Request{}, err
	}

	params := request.Params{
		Query:     req.Query,
		Namespace: namespace,
		Language:  deref(req.Language),
		Mode:      m,
	}
	if req.Limit != nil {
		if *req.Limit <= 0 {
			return request.Request{}, fmt.Errorf("limit must be positive, got %d: %w", *req.Limit, domain.ErrInvalidRequest)
		}
		params.Limit = *req.Limit
	}
	if req.RerankBreadth != nil {
		if *req.RerankBreadth <= 0 {
			return request.Request{}, fmt.Errorf(
				"rerank_breadth must be positive, got %d: %w", *req.RerankBreadth, domain.ErrInvalidRequest,
			)
		}
		params.RerankBreadth = *req.RerankBreadth
	}
	if req.Weights != nil {
		params.Weights = weights.Weights{Vector: req.Weights.Vector, Text: req.Weights.Text}
		if err := params.Weights.Validate(); err != nil {
			return request.Request{}, err
		}
	}
	return request.New(params)
}

func documentToResponse(doc *domdoc.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:        doc.ID(),
		Namespace: doc.Namespace(),
		Content:   doc.Content(),
		CreatedAt: doc.CreatedAt(),
		UpdatedAt: doc.UpdatedAt(),
	}
	if lang := doc.Language(); !lang.IsNeutral() {
		l := lang.String()
		resp.Language = &l
	}
	return resp
}

func candidateToResponse(c *candidate.Candidate) SearchResultItem {
	item := SearchResultItem{
		ID:        c.ID(),
		Content:   c.Content(),
		Score:     c.Score(),
		CosineSim: c.Cosine(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
	if v, ok := c.Lexical(); ok {
		item.LexicalScore = &v
	}
	if v, ok := c.HybridScore(); ok {
		item.HybridScore = &v
	}
	if v, ok := c.RerankScore(); ok {
		item.RerankScore = &v
	}
	return item
}

func batchResultToResponse(index int, r dombatch.Result) BatchResultItem {
	item := BatchResultItem{
		Index:  index,
		ID:     r.ID(),
		Status: string(r.Status()),
	}
	if r.Err() != nil {
		resp := errorResponse(errorCode(r.Err()), safeDomainMessage(r.Err()), r.Err())
		item.Error = &resp
	}
	return item
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
