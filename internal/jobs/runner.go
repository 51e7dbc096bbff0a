// Package jobs runs one background batch operation at a time and
// exposes its progress to pollers.
//
// The progress indicator lifecycle is: idle (nothing running) → running
// with (current, total) updates → finished with a result or an error,
// then idle again once the next job starts. Starting a job while one is
// active fails with ErrBusy, so overlapping batch operations cannot
// occur.
package jobs

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrBusy is returned by Start while another job is still running.
var ErrBusy = errors.New("another operation is already in progress")

// Snapshot is a point-in-time view of the current (or last finished) job.
type Snapshot struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Running bool   `json:"running"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Done    bool   `json:"done"`
	Error   string `json:"error,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// Runner admits at most one job at a time. Workers never touch caller
// state; they report progress through the callback and deliver a result
// or error into the snapshot, which callers poll.
type Runner struct {
	mu     sync.Mutex
	active bool
	snap   Snapshot
}

// NewRunner returns an idle Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Start launches fn on a background goroutine and returns the job ID.
// fn receives a report callback safe to call from the worker. Returns
// ErrBusy if a job is already running.
func (r *Runner) Start(kind string, fn func(report func(current, total int)) (any, error)) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return "", ErrBusy
	}

	id := uuid.NewString()
	r.active = true
	r.snap = Snapshot{ID: id, Kind: kind, Running: true}

	go func() {
		result, err := fn(r.report)

		r.mu.Lock()
		defer r.mu.Unlock()
		r.active = false
		r.snap.Running = false
		r.snap.Done = true
		if err != nil {
			r.snap.Error = err.Error()
		} else {
			r.snap.Result = result
		}
	}()

	return id, nil
}

func (r *Runner) report(current, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Current = current
	r.snap.Total = total
}

// Snapshot returns the state of the current job, or of the last one to
// finish when nothing is running.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Busy reports whether a job is currently running.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}
