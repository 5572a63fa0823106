// cmd/server/app.go
package main

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/footycollect/footycollect-api/internal/config"
	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/fkapi"
	"github.com/footycollect/footycollect-api/internal/i18n"
	"github.com/footycollect/footycollect-api/internal/jobs"
	"github.com/footycollect/footycollect-api/internal/logging"
	"github.com/footycollect/footycollect-api/internal/services"
	"github.com/footycollect/footycollect-api/internal/storage"
)

// app holds the process-wide collaborators shared by every command.
type app struct {
	cfg      *config.Config
	db       *gorm.DB
	store    storage.ObjectStore
	registry *services.Registry

	nc    *nats.Conn
	nats  *jobs.NATSQueue
	local *jobs.LocalQueue
}

// bootstrap loads configuration and opens the database. Storage, the job
// queue and the services are only built when withServices is set.
func bootstrap(ctx context.Context, withServices bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Setup(cfg.Log)

	if err := i18n.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize i18n: %w", err)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a := &app{cfg: cfg, db: db}

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if !withServices {
		return a, nil
	}
	if err := a.buildServices(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) buildServices(ctx context.Context) error {
	store, err := storage.New(a.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.store = store

	var enqueuer jobs.Enqueuer
	if a.cfg.Jobs.NATSURL != "" {
		a.nc, err = jobs.Connect(a.cfg.Jobs.NATSURL)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		a.nats = jobs.NewNATSQueue(a.nc, a.cfg.Jobs.SubjectPrefix, a.cfg.Jobs.QueueGroup)
		enqueuer = a.nats
	} else {
		a.local = jobs.NewLocalQueue(ctx)
		enqueuer = a.local
	}

	kits := fkapi.NewClient(a.cfg.FKAPI)
	deps := services.NewDependencies(a.db, store, enqueuer, kits, a.cfg.Photos)
	a.registry = services.NewDefaultRegistry(deps)

	// Without NATS the jobs run in this process.
	if a.local != nil {
		photos, err := a.registry.PhotoService()
		if err != nil {
			return err
		}
		services.RegisterJobHandlers(a.local, photos, store)
		logrus.Info("No NATS_URL configured, running jobs in-process")
	}
	return nil
}

func (a *app) enqueuer() jobs.Enqueuer {
	if a.nats != nil {
		return a.nats
	}
	return a.local
}

// Close waits for in-process jobs and releases connections.
func (a *app) Close() {
	if a.local != nil {
		a.local.Wait()
	}
	if a.nats != nil {
		a.nats.Stop()
	}
	if a.nc != nil {
		a.nc.Close()
	}
	if a.db != nil {
		database.Close(a.db)
	}
}
