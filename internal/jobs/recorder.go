package jobs

import (
	"context"
	"sync"
)

// Recorder is an Enqueuer that keeps jobs in memory for inspection.
type Recorder struct {
	mu   sync.Mutex
	jobs []Job
	Err  error
}

func (r *Recorder) Enqueue(_ context.Context, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.jobs = append(r.jobs, job)
	return nil
}

func (r *Recorder) Jobs() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Job(nil), r.jobs...)
}

// OfType returns the recorded jobs of type t.
func (r *Recorder) OfType(t Type) []Job {
	var out []Job
	for _, job := range r.Jobs() {
		if job.Type == t {
			out = append(out, job)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = nil
}
