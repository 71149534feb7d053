package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
)

// State is the runner's lifecycle position. A run only leaves StateRunning
// through one of the three terminal states.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateFinished  State = "finished"
	StateCancelled State = "cancelled"
	StateError     State = "error"
)

// ErrSetup marks a fatal failure acquiring the per-batch resources (the
// automation handle). It aborts the batch before any item runs.
var ErrSetup = errors.New("batch setup failed")

// WorkItem is one unit of batch work. The runner only reads it. Ref is a
// file path or URL; Fields carries the data row for templated generation.
type WorkItem struct {
	Ref    string
	Label  string
	Fields map[string]string
}

// DisplayLabel is what progress observers see for this item.
func (w WorkItem) DisplayLabel() string {
	if w.Label != "" {
		return w.Label
	}
	return filepath.Base(w.Ref)
}

// JobResult is the per-item outcome, created exactly once per item.
type JobResult struct {
	Success      bool
	SourceRef    string
	OutputRef    string
	ErrorMessage string
}

// Summary aggregates all JobResults of one batch run. When Cancelled is
// true Results reflects only items processed before the stop; otherwise
// SuccessCount+FailCount always equals len(Results).
type Summary struct {
	SuccessCount int
	FailCount    int
	Cancelled    bool
	Results      []JobResult
}

// OK reports batch-level success: every item processed and none failed.
func (s Summary) OK() bool {
	return !s.Cancelled && s.FailCount == 0
}

// Operation performs the work for one item. It must not panic; if it does,
// the runner converts the panic into a failed JobResult and continues.
type Operation func(ctx context.Context, item WorkItem) JobResult

// PrepareFunc acquires per-batch resources and returns the item operation
// plus a release func invoked when the run ends, error paths included.
type PrepareFunc func(ctx context.Context) (Operation, func(), error)

// Observer receives progress after each item completes, failures included.
// current is 1-based. Observers run on the batch goroutine and must not
// block significantly.
type Observer func(current, total int, label string)

// Runner executes a caller-supplied operation over an ordered item list,
// recording partial failures without aborting and honouring cooperative
// cancellation between items.
type Runner struct {
	prepare  PrepareFunc
	observer Observer

	mu        sync.Mutex
	state     State
	cancelled bool
}

// New creates a runner whose resources are acquired by prepare at the start
// of Run.
func New(prepare PrepareFunc) *Runner {
	return &Runner{prepare: prepare, state: StateIdle}
}

// ForOperation creates a runner with no per-batch resources to acquire.
func ForOperation(op Operation) *Runner {
	return New(func(context.Context) (Operation, func(), error) {
		return op, func() {}, nil
	})
}

// OnProgress registers the progress observer. Must be set before Run.
func (r *Runner) OnProgress(fn Observer) { r.observer = fn }

// Cancel requests a cooperative stop. The item in flight finishes; no
// further items are submitted.
func (r *Runner) Cancel() {
	r.mu.Lock()
	r.cancelled = true
	r.mu.Unlock()
}

// State returns the runner's current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Runner) stopRequested(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

// Run processes the items in order. The returned error is non-nil only when
// setup fails (wrapping ErrSetup); per-item failures and cancellation are
// reported through the Summary.
func (r *Runner) Run(ctx context.Context, items []WorkItem) (Summary, error) {
	r.setState(StateRunning)

	// A cancel that lands before the run starts (e.g. while queued behind
	// another batch) skips resource acquisition entirely.
	if r.stopRequested(ctx) {
		r.setState(StateCancelled)
		return Summary{Cancelled: true}, nil
	}

	op, release, err := r.prepare(ctx)
	if err != nil {
		r.setState(StateError)
		return Summary{}, fmt.Errorf("%w: %v", ErrSetup, err)
	}
	defer release()

	var summary Summary
	total := len(items)
	for i, item := range items {
		// Cancellation is checked between items, never mid-item.
		if r.stopRequested(ctx) {
			summary.Cancelled = true
			r.setState(StateCancelled)
			return summary, nil
		}

		res := runItem(ctx, op, item)
		summary.Results = append(summary.Results, res)
		if res.Success {
			summary.SuccessCount++
		} else {
			summary.FailCount++
		}
		if r.observer != nil {
			r.observer(i+1, total, item.DisplayLabel())
		}
	}

	r.setState(StateFinished)
	return summary, nil
}

// runItem shields the batch from a panicking operation: the panic becomes
// that item's failure and the batch continues.
func runItem(ctx context.Context, op Operation, item WorkItem) (res JobResult) {
	defer func() {
		if v := recover(); v != nil {
			res = JobResult{
				SourceRef:    item.Ref,
				ErrorMessage: fmt.Sprintf("operation panic: %v", v),
			}
		}
	}()
	return op(ctx, item)
}
