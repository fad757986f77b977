package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/hybridex/internal/domain"
	"github.com/kailas-cloud/hybridex/internal/domain/namespace"
	"github.com/kailas-cloud/hybridex/internal/domain/search/mode"
	"github.com/kailas-cloud/hybridex/internal/domain/search/weights"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength       = 4096
	DefaultLimit         = 10
	MaxLimit             = 100
	DefaultRerankBreadth = 50
	MaxRerankBreadth     = 1000
)

// Params are the unvalidated search inputs.
type Params struct {
	Query     string
	Namespace string
	Language  string
	Mode      mode.Mode
	Limit     int
	// Weights zero value means "use the service defaults".
	Weights weights.Weights
	// RerankBreadth zero value means "use the service default".
	RerankBreadth int
}

// Request is a validated search query.
type Request struct {
	query         string
	ns            namespace.Namespace
	searchMode    mode.Mode
	limit         int
	weights       weights.Weights
	rerankBreadth int
}

// New validates and normalizes search parameters.
// Defaults: namespace=default, language=neutral, mode=hybrid, limit=10.
func New(p Params) (Request, error) {
	if strings.TrimSpace(p.Query) == "" {
		return Request{}, fmt.Errorf("query is required: %w", domain.ErrInvalidRequest)
	}
	if len(p.Query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars): %w", MaxQueryLength, domain.ErrInvalidRequest)
	}

	ns, err := namespace.Resolve(p.Namespace, p.Language)
	if err != nil {
		return Request{}, err
	}

	m := p.Mode
	if m == "" {
		m = mode.Default
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid search mode %q: %w", m, domain.ErrInvalidRequest)
	}

	limit := p.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 || limit > MaxLimit {
		return Request{}, fmt.Errorf("limit must be between 1 and %d, got %d: %w", MaxLimit, p.Limit, domain.ErrInvalidRequest)
	}

	if !p.Weights.IsZero() {
		if err := p.Weights.Validate(); err != nil {
			return Request{}, err
		}
	}

	if p.RerankBreadth < 0 || p.RerankBreadth > MaxRerankBreadth {
		return Request{}, fmt.Errorf(
			"rerank_breadth must be between 1 and %d, got %d: %w", MaxRerankBreadth, p.RerankBreadth, domain.ErrInvalidRequest,
		)
	}
	if m == mode.HybridRerank && p.RerankBreadth > 0 && limit > p.RerankBreadth {
		return Request{}, fmt.Errorf(
			"limit %d exceeds rerank_breadth %d: %w", limit, p.RerankBreadth, domain.ErrInvalidRequest,
		)
	}

	return Request{
		query:         p.Query,
		ns:            ns,
		searchMode:    m,
		limit:         limit,
		weights:       p.Weights,
		rerankBreadth: p.RerankBreadth,
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Namespace returns the resolved namespace scope.
func (r *Request) Namespace() namespace.Namespace { return r.ns }

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// Weights returns the caller's fusion weights; zero when unset.
func (r *Request) Weights() weights.Weights { return r.weights }

// RerankBreadth returns the caller's breadth; zero when unset.
func (r *Request) RerankBreadth() int { return r.rerankBreadth }
