package chi

// ErrorResponseCode is the machine-readable error code of an ErrorResponse.
type ErrorResponseCode string

// Error codes returned by the API.
const (
	ErrorResponseCodeBadRequest                ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized              ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed          ErrorResponseCode = "validation_failed"
	ErrorResponseCodeNamespaceInvalid          ErrorResponseCode = "namespace_invalid"
	ErrorResponseCodeNamespaceNotFound         ErrorResponseCode = "namespace_not_found"
	ErrorResponseCodeDocumentNotFound          ErrorResponseCode = "document_not_found"
	ErrorResponseCodeKeywordSearchNotSupported ErrorResponseCode = "keyword_search_not_supported"
	ErrorResponseCodeConfiguration             ErrorResponseCode = "configuration_error"
	ErrorResponseCodeCollaboratorUnavailable   ErrorResponseCode = "collaborator_unavailable"
	ErrorResponseCodeTimeout                   ErrorResponseCode = "timeout"
	ErrorResponseCodeMalformedResponse         ErrorResponseCode = "malformed_response"
	ErrorResponseCodeVectorDimMismatch         ErrorResponseCode = "vector_dim_mismatch"
	ErrorResponseCodeEmbeddingProviderError    ErrorResponseCode = "embedding_provider_error"
	ErrorResponseCodeRerankProviderError       ErrorResponseCode = "rerank_provider_error"
	ErrorResponseCodeInternalError             ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
	// Stage is the pipeline stage that failed, when known.
	Stage *string `json:"stage,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// NamespaceResponse describes one namespace.
type NamespaceResponse struct {
	Name          string `json:"name"`
	CreatedAt     int64  `json:"created_at"`
	DocumentCount *int   `json:"document_count,omitempty"`
}

// NamespaceListResponse is the body of GET /namespaces.
type NamespaceListResponse struct {
	Items []NamespaceResponse `json:"items"`
	Total int                 `json:"total"`
}

// DestroyNamespaceResponse is the body of DELETE /namespaces/{namespace}.
type DestroyNamespaceResponse struct {
	Namespace string `json:"namespace"`
	Deleted   int    `json:"deleted"`
}

// AddDocumentRequest is the body of POST /namespaces/{namespace}/documents.
type AddDocumentRequest struct {
	Content  string  `json:"content"`
	Language *string `json:"language,omitempty"`
}

// AddDocumentResponse is returned for a created document.
type AddDocumentResponse struct {
	ID string `json:"id"`
}

// DocumentResponse is the body of GET /namespaces/{namespace}/documents/{id}.
type DocumentResponse struct {
	ID        string  `json:"id"`
	Namespace string  `json:"namespace"`
	Content   string  `json:"content"`
	Language  *string `json:"language,omitempty"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}

// DeleteDocumentResponse reports how many copies of an id were removed.
type DeleteDocumentResponse struct {
	ID      string `json:"id"`
	Deleted int    `json:"deleted"`
}

// BatchAddItem is one document of a batch add.
type BatchAddItem struct {
	Content string `json:"content"`
}

// BatchAddRequest is the body of POST /namespaces/{namespace}/documents/batch.
// Language applies to every item.
type BatchAddRequest struct {
	Documents []BatchAddItem `json:"documents"`
	Language  *string        `json:"language,omitempty"`
}

// BatchResultItem is the outcome of one batch item, in input order.
type BatchResultItem struct {
	Index  int            `json:"index"`
	ID     string         `json:"id,omitempty"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// BatchAddResponse is the body of a batch add.
type BatchAddResponse struct {
	Items     []BatchResultItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	// Failed counts every item not stored, skipped ones included.
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// SearchWeights overrides the fusion weights of one search.
type SearchWeights struct {
	Vector float64 `json:"vector"`
	Text   float64 `json:"text"`
}

// SearchRequest is the body of POST /namespaces/{namespace}/search.
type SearchRequest struct {
	Query         string         `json:"query"`
	Mode          *string        `json:"mode,omitempty"`
	Limit         *int           `json:"limit,omitempty"`
	Language      *string        `json:"language,omitempty"`
	Weights       *SearchWeights `json:"weights,omitempty"`
	RerankBreadth *int           `json:"rerank_breadth,omitempty"`
}

// SearchResultItem is one ranked document.
type SearchResultItem struct {
	ID           string   `json:"id"`
	Content      string   `json:"content"`
	Score        float64  `json:"score"`
	CosineSim    float64  `json:"cosine_sim"`
	LexicalScore *float64 `json:"lexical_score,omitempty"`
	HybridScore  *float64 `json:"hybrid_score,omitempty"`
	RerankScore  *float64 `json:"rerank_score,omitempty"`
	CreatedAt    int64    `json:"created_at"`
	UpdatedAt    int64    `json:"updated_at"`
}

// SearchResponse is the body of a search.
type SearchResponse struct {
	Items []SearchResultItem `json:"items"`
	Total int                `json:"total"`
	Mode  string             `json:"mode"`
}
