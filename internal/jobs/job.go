// Package jobs carries deferred work (photo conversion, orphan cleanup,
// object deletion) out of the request path.
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeConvertPhoto  Type = "convert_photo"
	TypePurgeOrphans  Type = "purge_orphans"
	TypeDeleteObjects Type = "delete_objects"
)

// MaxAttempts bounds redelivery of a failing job.
const MaxAttempts = 3

type Job struct {
	ID         uuid.UUID     `json:"id"`
	Type       Type          `json:"type"`
	PhotoID    *uuid.UUID    `json:"photo_id,omitempty"`
	Keys       []string      `json:"keys,omitempty"`
	OlderThan  time.Duration `json:"older_than,omitempty"`
	Attempt    int           `json:"attempt"`
	EnqueuedAt time.Time     `json:"enqueued_at"`
}

// Enqueuer accepts jobs without waiting for their outcome.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

// HandlerFunc processes one job. A returned error makes the job eligible for
// redelivery until MaxAttempts is reached.
type HandlerFunc func(ctx context.Context, job Job) error

func ConvertPhoto(photoID uuid.UUID) Job {
	return newJob(TypeConvertPhoto, func(j *Job) { j.PhotoID = &photoID })
}

func PurgeOrphans(olderThan time.Duration) Job {
	return newJob(TypePurgeOrphans, func(j *Job) { j.OlderThan = olderThan })
}

func DeleteObjects(keys ...string) Job {
	return newJob(TypeDeleteObjects, func(j *Job) { j.Keys = keys })
}

func newJob(t Type, set func(*Job)) Job {
	job := Job{ID: uuid.New(), Type: t, Attempt: 1, EnqueuedAt: time.Now().UTC()}
	set(&job)
	return job
}

// Schedule enqueues build() every interval until ctx is cancelled.
func Schedule(ctx context.Context, enq Enqueuer, interval time.Duration, build func() Job) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job := build()
			if err := enq.Enqueue(ctx, job); err != nil {
				logger(job).WithError(err).Error("Failed to enqueue scheduled job")
			}
		}
	}
}
