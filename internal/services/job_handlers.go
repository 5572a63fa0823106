// internal/services/job_handlers.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/footycollect/footycollect-api/internal/jobs"
	"github.com/footycollect/footycollect-api/internal/metrics"
	"github.com/footycollect/footycollect-api/internal/storage"
)

// JobRouter is implemented by both job queues.
type JobRouter interface {
	Handle(t jobs.Type, h jobs.HandlerFunc)
}

// RegisterJobHandlers binds the photo jobs to their handlers.
func RegisterJobHandlers(router JobRouter, photos PhotoService, store storage.ObjectStore) {
	router.Handle(jobs.TypeConvertPhoto, instrument(jobs.TypeConvertPhoto, func(ctx context.Context, job jobs.Job) error {
		if job.PhotoID == nil {
			return nil
		}
		return photos.ConvertPhoto(ctx, *job.PhotoID)
	}))

	router.Handle(jobs.TypePurgeOrphans, instrument(jobs.TypePurgeOrphans, func(ctx context.Context, job jobs.Job) error {
		_, err := photos.PurgeOrphanedPhotos(ctx, job.OlderThan)
		return err
	}))

	router.Handle(jobs.TypeDeleteObjects, instrument(jobs.TypeDeleteObjects, func(ctx context.Context, job jobs.Job) error {
		return deleteObjects(ctx, store, job.Keys)
	}))
}

// deleteObjects removes every key, treating missing objects as deleted.
func deleteObjects(ctx context.Context, store storage.ObjectStore, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func instrument(t jobs.Type, h jobs.HandlerFunc) jobs.HandlerFunc {
	return func(ctx context.Context, job jobs.Job) error {
		err := h(ctx, job)
		metrics.JobsProcessed.WithLabelValues(string(t), metrics.Outcome(err)).Inc()
		return err
	}
}
