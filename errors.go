package hybridex

import "github.com/kailas-cloud/hybridex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound                  = domain.ErrNotFound
	ErrDocumentNotFound          = domain.ErrDocumentNotFound
	ErrInvalidRequest            = domain.ErrInvalidRequest
	ErrInvalidNamespace          = domain.ErrInvalidNamespace
	ErrVectorDimMismatch         = domain.ErrVectorDimMismatch
	ErrKeywordSearchNotSupported = domain.ErrKeywordSearchNotSupported
	ErrConfiguration             = domain.ErrConfiguration
	ErrCollaboratorUnavailable   = domain.ErrCollaboratorUnavailable
	ErrMalformedResponse         = domain.ErrMalformedResponse
	ErrTimeout                   = domain.ErrTimeout
	ErrEmbeddingUnavailable      = domain.ErrEmbeddingUnavailable
	ErrEmbeddingProviderError    = domain.ErrEmbeddingProviderError
	ErrRerankUnavailable         = domain.ErrRerankUnavailable
	ErrRerankProviderError       = domain.ErrRerankProviderError
)

// Stage names the pipeline step a failure came from.
type Stage = domain.Stage

// Pipeline stages reported by StageOf.
const (
	StageEmbed   = domain.StageEmbed
	StageLexical = domain.StageLexical
	StageVector  = domain.StageVector
	StageFusion  = domain.StageFusion
	StageRerank  = domain.StageRerank
	StageStorage = domain.StageStorage
)

// StageOf reports which pipeline stage produced err.
func StageOf(err error) (Stage, bool) {
	return domain.FailedStage(err)
}
