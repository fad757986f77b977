package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/kailas-cloud/hybridex/internal/domain"
	dombatch "github.com/kailas-cloud/hybridex/internal/domain/batch"
	"github.com/kailas-cloud/hybridex/internal/domain/namespace"
)

// MaxBatchSize is the maximum number of items per batch request.
const MaxBatchSize = 100

// Service adds documents in batch on a bounded worker pool with per-item error reporting.
type Service struct {
	docs         DocumentAdder
	pool         *ants.Pool
	maxBatchSize int
}

// New creates a batch service with the given number of workers.
// workers <= 0 defaults to runtime.NumCPU().
func New(docs DocumentAdder, workers int) (*Service, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Service{docs: docs, pool: pool, maxBatchSize: MaxBatchSize}, nil
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Release stops the worker pool.
func (s *Service) Release() {
	s.pool.Release()
}

// Add embeds and stores every content item in ns concurrently. Results are in
// input order; a successful result carries the new document id.
// A configuration failure (no embedding credentials) fails the remaining items
// without calling the collaborator again.
func (s *Service) Add(ctx context.Context, ns namespace.Namespace, contents []string) []dombatch.Result {
	results := make([]dombatch.Result, len(contents))

	if len(contents) > s.maxBatchSize {
		err := fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidRequest)
		for i := range contents {
			results[i] = dombatch.NewError("", err)
		}
		return results
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var wg sync.WaitGroup
	for i, content := range contents {
		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				results[i] = dombatch.NewSkipped(context.Cause(ctx))
				return
			}
			doc, err := s.docs.Add(ctx, ns, content)
			if err != nil {
				if errors.Is(err, domain.ErrConfiguration) {
					cancel(err)
				}
				results[i] = dombatch.NewError("", err)
				return
			}
			results[i] = dombatch.NewOK(doc.ID())
		})
		if submitErr != nil {
			wg.Done()
			results[i] = dombatch.NewError("", fmt.Errorf("submit: %w", submitErr))
		}
	}
	wg.Wait()

	return results
}
