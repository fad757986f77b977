package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridex/internal/domain"
	logpkg "github.com/kailas-cloud/hybridex/internal/logger"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// errorMapping binds a sentinel to its HTTP status and code. Order matters:
// an error wrapping several sentinels takes the first match.
type errorMapping struct {
	sentinel error
	status   int
	code     ErrorResponseCode
}

var errorMappings = []errorMapping{
	{domain.ErrInvalidNamespace, http.StatusBadRequest, ErrorResponseCodeNamespaceInvalid},
	{domain.ErrInvalidRequest, http.StatusBadRequest, ErrorResponseCodeValidationFailed},
	{domain.ErrDocumentNotFound, http.StatusNotFound, ErrorResponseCodeDocumentNotFound},
	{domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNamespaceNotFound},
	{domain.ErrKeywordSearchNotSupported, http.StatusNotImplemented, ErrorResponseCodeKeywordSearchNotSupported},
	{domain.ErrTimeout, http.StatusGatewayTimeout, ErrorResponseCodeTimeout},
	{domain.ErrConfiguration, http.StatusServiceUnavailable, ErrorResponseCodeConfiguration},
	{domain.ErrCollaboratorUnavailable, http.StatusServiceUnavailable, ErrorResponseCodeCollaboratorUnavailable},
	{domain.ErrEmbeddingUnavailable, http.StatusServiceUnavailable, ErrorResponseCodeCollaboratorUnavailable},
	{domain.ErrRerankUnavailable, http.StatusServiceUnavailable, ErrorResponseCodeCollaboratorUnavailable},
	{domain.ErrMalformedResponse, http.StatusBadGateway, ErrorResponseCodeMalformedResponse},
	{domain.ErrVectorDimMismatch, http.StatusBadGateway, ErrorResponseCodeVectorDimMismatch},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorResponseCodeEmbeddingProviderError},
	{domain.ErrRerankProviderError, http.StatusBadGateway, ErrorResponseCodeRerankProviderError},
}

func defaultErrorHandlers() []errorHandler {
	handlers := make([]errorHandler, 0, len(errorMappings))
	for _, m := range errorMappings {
		handlers = append(handlers, sentinelHandler(m.sentinel, m.status, m.code))
	}
	return handlers
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeErrorResponse(w, status, errorResponse(code, msg, err))
		return true
	}
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Validation errors carry caller input only, so their full text is returned.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrInvalidNamespace) {
		return err.Error()
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			return m.sentinel.Error()
		}
	}
	return "internal error"
}

// errorCode maps err to its API code without writing a response.
func errorCode(err error) ErrorResponseCode {
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			return m.code
		}
	}
	return ErrorResponseCodeInternalError
}

func errorResponse(code ErrorResponseCode, msg string, err error) ErrorResponse {
	resp := ErrorResponse{Code: code, Message: msg}
	if stage, ok := domain.FailedStage(err); ok {
		st := string(stage)
		resp.Stage = &st
	}
	return resp
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))

	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
