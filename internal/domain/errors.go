package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidRequest signals a request that failed validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidNamespace signals a malformed namespace name or language profile.
	ErrInvalidNamespace = errors.New("invalid namespace")
	// ErrVectorDimMismatch signals an embedding of unexpected dimensionality.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrKeywordSearchNotSupported signals that the backend lacks keyword search.
	ErrKeywordSearchNotSupported = errors.New("keyword search not supported by backend")

	// ErrConfiguration signals a missing credential or setting for a collaborator.
	ErrConfiguration = errors.New("configuration error")
	// ErrCollaboratorUnavailable signals a network failure, 5xx or throttling from an external service.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	// ErrMalformedResponse signals a collaborator response that violates its contract.
	ErrMalformedResponse = errors.New("malformed collaborator response")
	// ErrTimeout signals that a collaborator call exceeded its deadline.
	ErrTimeout = errors.New("collaborator timeout")

	// ErrEmbeddingUnavailable signals that the embedding provider cannot be used at all.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRerankUnavailable signals that the reranking provider cannot be used at all.
	ErrRerankUnavailable = errors.New("rerank unavailable")
	// ErrRerankProviderError signals a reranking provider failure.
	ErrRerankProviderError = errors.New("rerank provider error")
)

// Stage names a step of the retrieval pipeline.
type Stage string

// Pipeline stages attached to failures.
const (
	StageEmbed   Stage = "embed"
	StageLexical Stage = "lexical"
	StageVector  Stage = "vector"
	StageFusion  Stage = "fusion"
	StageRerank  Stage = "rerank"
	StageStorage Stage = "storage"
)

// StageError tags a failure with the pipeline stage it came from.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %s", e.Stage, e.Err.Error())
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err with its stage. Returns nil for a nil err.
func NewStageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// FailedStage reports the innermost-wrapping stage of err, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
