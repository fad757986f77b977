package hybridex

import (
	"context"
	"fmt"
	"time"

	domns "github.com/kailas-cloud/hybridex/internal/domain/namespace"
	"github.com/kailas-cloud/hybridex/internal/domain/search/mode"
	"github.com/kailas-cloud/hybridex/internal/domain/search/request"
	"github.com/kailas-cloud/hybridex/internal/domain/search/weights"
)

// Index is a handle for one namespace. It is cheap to create and safe for
// concurrent use.
type Index struct {
	name   string
	client *Client
}

// AddOption configures Add and AddBatch.
type AddOption func(*addConfig)

type addConfig struct {
	language string
}

// WithLanguage indexes the content with a lexical language profile such as
// "english" or "indonesian". The default is the neutral profile.
func WithLanguage(lang string) AddOption {
	return func(c *addConfig) {
		c.language = lang
	}
}

// Name returns the namespace name.
func (idx *Index) Name() string { return idx.name }

func (idx *Index) resolve(opts []AddOption) (domns.Namespace, error) {
	var cfg addConfig
	for _, o := range opts {
		o(&cfg)
	}
	ns, err := domns.Resolve(idx.name, cfg.language)
	if err != nil {
		return domns.Namespace{}, fmt.Errorf("resolve namespace: %w", err)
	}
	return ns, nil
}

// Add embeds content and stores it as a new document with a generated id.
func (idx *Index) Add(ctx context.Context, content string, opts ...AddOption) (doc Document, err error) {
	start := time.Now()
	defer func() { idx.client.obs.observe("add", start, err) }()

	ns, err := idx.resolve(opts)
	if err != nil {
		return Document{}, err
	}
	d, err := idx.client.docSvc.Add(ctx, ns, content)
	if err != nil {
		return Document{}, fmt.Errorf("add: %w", err)
	}
	return fromInternalDocument(&d), nil
}

// AddBatch adds several contents concurrently. Results keep input order;
// a failed item does not abort the others.
func (idx *Index) AddBatch(ctx context.Context, contents []string, opts ...AddOption) (out []BatchResult, err error) {
	start := time.Now()
	defer func() { idx.client.obs.observe("add_batch", start, err) }()

	ns, err := idx.resolve(opts)
	if err != nil {
		return nil, err
	}
	return fromBatchResults(idx.client.batchSvc.Add(ctx, ns, contents)), nil
}

// Get retrieves a document by id.
func (idx *Index) Get(ctx context.Context, id string) (doc Document, err error) {
	start := time.Now()
	defer func() { idx.client.obs.observe("get", start, err) }()

	d, err := idx.client.docSvc.Get(ctx, idx.name, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(&d), nil
}

// Remove deletes a document from this namespace only.
func (idx *Index) Remove(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { idx.client.obs.observe("remove", start, err) }()

	name := idx.name
	if _, err = idx.client.docSvc.Remove(ctx, &name, id); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// Count returns the number of documents in the namespace.
func (idx *Index) Count(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { idx.client.obs.observe("count", start, err) }()

	n, err = idx.client.nsSvc.Count(ctx, idx.name)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Ensure creates the namespace index ahead of the first Add. Returns true if created.
func (idx *Index) Ensure(ctx context.Context) (created bool, err error) {
	start := time.Now()
	defer func() { idx.client.obs.observe("ensure", start, err) }()

	created, err = idx.client.nsSvc.Ensure(ctx, idx.name)
	if err != nil {
		return false, fmt.Errorf("ensure %q: %w", idx.name, err)
	}
	return created, nil
}

// Destroy drops the namespace index and every document in it, returning the
// number of deleted documents. Destroying an unknown namespace returns 0.
func (idx *Index) Destroy(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { idx.client.obs.observe("destroy", start, err) }()

	n, err = idx.client.nsSvc.Destroy(ctx, idx.name)
	if err != nil {
		return n, fmt.Errorf("destroy %q: %w", idx.name, err)
	}
	return n, nil
}

// Search runs a query against the namespace and returns at most opts.Limit hits,
// best first.
func (idx *Index) Search(ctx context.Context, opts SearchOptions) (hits []Hit, err error) {
	start := time.Now()
	defer func() { idx.client.obs.observe("search", start, err) }()

	req, err := idx.searchRequest(opts)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	results, err := idx.client.searchSvc.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	hits = make([]Hit, len(results))
	for i := range results {
		hits[i] = fromCandidate(&results[i])
	}
	return hits, nil
}

func (idx *Index) searchRequest(opts SearchOptions) (request.Request, error) {
	m, err := mode.Parse(string(opts.Mode))
	if err != nil {
		return request.Request{}, err
	}
	params := request.Params{
		Query:         opts.Query,
		Namespace:     idx.name,
		Language:      opts.Language,
		Mode:          m,
		Limit:         opts.Limit,
		RerankBreadth: opts.RerankBreadth,
	}
	if opts.Weights != nil {
		params.Weights = weights.Weights{Vector: opts.Weights.Vector, Text: opts.Weights.Text}
		if err := params.Weights.Validate(); err != nil {
			return request.Request{}, err
		}
	}
	return request.New(params)
}
