// Package batch models per-item outcomes of bulk document ingestion.
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
	// StatusSkipped marks items never sent to the embedding collaborator
	// because an earlier item hit a failure that would repeat for every item.
	StatusSkipped ItemStatus = "skipped"
)

// Result is the outcome of ingesting one content item. A successful result
// carries the id assigned to the stored document.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful batch result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewError creates a failed batch result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// NewSkipped creates a result for an item abandoned because of cause.
func NewSkipped(cause error) Result { return Result{status: StatusSkipped, err: cause} }

// ID returns the stored document id; empty unless the item succeeded.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// OK reports whether the item was stored.
func (r Result) OK() bool { return r.status == StatusOK }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary counts outcomes across a batch.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// Summarize tallies results by status.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.status {
		case StatusOK:
			s.Succeeded++
		case StatusSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
	}
	return s
}
