// internal/services/dependencies.go
package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/footycollect/footycollect-api/internal/config"
	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/fkapi"
	"github.com/footycollect/footycollect-api/internal/jobs"
	"github.com/footycollect/footycollect-api/internal/metrics"
	"github.com/footycollect/footycollect-api/internal/repositories"
	"github.com/footycollect/footycollect-api/internal/storage"
)

// Dependencies bundles what the default service implementations are built from.
type Dependencies struct {
	DB         *gorm.DB
	Items      repositories.ItemRepository
	Photos     repositories.PhotoRepository
	Colors     repositories.ColorRepository
	Sizes      repositories.SizeRepository
	References repositories.ReferenceRepository
	Users      repositories.UserRepository
	Store      storage.ObjectStore
	Jobs       jobs.Enqueuer
	KitSource  fkapi.KitSource
	PhotoCfg   config.PhotoConfig
}

// NewDependencies wires the gorm repositories over db.
func NewDependencies(db *gorm.DB, store storage.ObjectStore, enqueuer jobs.Enqueuer, kits fkapi.KitSource, photoCfg config.PhotoConfig) *Dependencies {
	return &Dependencies{
		DB:         db,
		Items:      repositories.NewItemRepository(db),
		Photos:     repositories.NewPhotoRepository(db),
		Colors:     repositories.NewColorRepository(db),
		Sizes:      repositories.NewSizeRepository(db),
		References: repositories.NewReferenceRepository(db),
		Users:      repositories.NewUserRepository(db),
		Store:      store,
		Jobs:       enqueuer,
		KitSource:  kits,
		PhotoCfg:   photoCfg,
	}
}

// enqueueAfterCommit hands job to the queue once the surrounding transaction
// commits. Enqueue failures are logged; the write has already succeeded.
func enqueueAfterCommit(ctx context.Context, enq jobs.Enqueuer, job jobs.Job) {
	if enq == nil {
		return
	}
	database.AfterCommit(ctx, func() {
		enqueueNow(context.WithoutCancel(ctx), enq, job)
	})
}

// enqueueNow enqueues job immediately, logging instead of returning errors.
func enqueueNow(ctx context.Context, enq jobs.Enqueuer, job jobs.Job) {
	if enq == nil {
		return
	}
	err := enq.Enqueue(ctx, job)
	metrics.JobsEnqueued.WithLabelValues(string(job.Type), metrics.Outcome(err)).Inc()
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"job_id":   job.ID,
			"job_type": job.Type,
		}).Error("Failed to enqueue job")
	}
}
