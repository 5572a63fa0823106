package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

// NATSQueue publishes jobs as JSON on "<prefix>.<type>" and consumes them
// through a queue group, so each job is handled by exactly one worker.
type NATSQueue struct {
	nc     *nats.Conn
	prefix string
	group  string

	mu       sync.Mutex
	handlers map[Type]HandlerFunc
	subs     []*nats.Subscription
}

func NewNATSQueue(nc *nats.Conn, prefix, group string) *NATSQueue {
	return &NATSQueue{
		nc:       nc,
		prefix:   prefix,
		group:    group,
		handlers: make(map[Type]HandlerFunc),
	}
}

// Connect dials NATS with reconnect logging.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("footycollect"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger(Job{}).WithError(err).Warn("NATS disconnected")
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

func (q *NATSQueue) Subject(t Type) string {
	return q.prefix + "." + string(t)
}

func (q *NATSQueue) Enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := q.nc.Publish(q.Subject(job.Type), data); err != nil {
		return fmt.Errorf("publish %s: %w", job.Type, err)
	}
	logger(job).Debug("Job enqueued")
	return nil
}

func (q *NATSQueue) Handle(t Type, h HandlerFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[t] = h
}

// Start subscribes every registered handler. Messages are processed with ctx.
func (q *NATSQueue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for t, h := range q.handlers {
		handler := h
		sub, err := q.nc.QueueSubscribe(q.Subject(t), q.group, func(msg *nats.Msg) {
			var job Job
			if err := json.Unmarshal(msg.Data, &job); err != nil {
				logger(job).WithError(err).Error("Dropping undecodable job")
				return
			}
			q.process(ctx, job, handler)
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", t, err)
		}
		q.subs = append(q.subs, sub)
	}
	return q.nc.Flush()
}

func (q *NATSQueue) process(ctx context.Context, job Job, h HandlerFunc) {
	log := logger(job)
	if err := h(ctx, job); err != nil {
		if job.Attempt >= MaxAttempts {
			log.WithError(err).Error("Job failed permanently")
			return
		}
		log.WithError(err).Warn("Job failed, requeueing")
		job.Attempt++
		if err := q.Enqueue(ctx, job); err != nil {
			log.WithError(err).Error("Failed to requeue job")
		}
		return
	}
	log.Info("Job completed")
}

// Stop drains subscriptions so in-flight messages finish.
func (q *NATSQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, sub := range q.subs {
		if err := sub.Drain(); err != nil {
			logger(Job{}).WithError(err).Warn("Failed to drain subscription")
		}
	}
	q.subs = nil
}
