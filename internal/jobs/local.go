package jobs

import (
	"context"
	"sync"
	"time"
)

// DefaultRetryBackoff is the base delay between attempts of a failing job.
// Attempt n waits n times the base.
const DefaultRetryBackoff = time.Second

// LocalQueue runs jobs in-process on their own goroutine. It serves
// deployments without a NATS server.
type LocalQueue struct {
	ctx     context.Context
	backoff time.Duration

	mu       sync.RWMutex
	handlers map[Type]HandlerFunc
	wg       sync.WaitGroup
}

func NewLocalQueue(ctx context.Context) *LocalQueue {
	return &LocalQueue{ctx: ctx, backoff: DefaultRetryBackoff, handlers: make(map[Type]HandlerFunc)}
}

func (q *LocalQueue) Handle(t Type, h HandlerFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[t] = h
}

func (q *LocalQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.RLock()
	h, ok := q.handlers[job.Type]
	q.mu.RUnlock()
	if !ok {
		logger(job).Warn("No handler for job, dropping")
		return nil
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			err := h(q.ctx, job)
			if err == nil {
				logger(job).Info("Job completed")
				return
			}
			if job.Attempt >= MaxAttempts || q.ctx.Err() != nil {
				logger(job).WithError(err).Error("Job failed permanently")
				return
			}
			delay := time.Duration(job.Attempt) * q.backoff
			logger(job).WithError(err).WithField("retry_in", delay).Warn("Job failed, retrying")
			select {
			case <-time.After(delay):
			case <-q.ctx.Done():
				logger(job).Warn("Job abandoned on shutdown")
				return
			}
			job.Attempt++
		}
	}()
	return nil
}

// Wait blocks until every started job has finished.
func (q *LocalQueue) Wait() {
	q.wg.Wait()
}
