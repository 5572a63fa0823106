// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/jobs"
	"github.com/footycollect/footycollect-api/internal/router"
	"github.com/footycollect/footycollect-api/internal/services"
	"github.com/footycollect/footycollect-api/internal/utils"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "footycollect",
		Short: "Football memorabilia collection API",
		// Running without a subcommand serves the API.
		RunE:          func(cmd *cobra.Command, args []string) error { return serve() },
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE:  func(cmd *cobra.Command, args []string) error { return serve() },
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations",
			RunE:  func(cmd *cobra.Command, args []string) error { return migrate() },
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Load the default colors and sizes",
			RunE:  func(cmd *cobra.Command, args []string) error { return seed() },
		},
		&cobra.Command{
			Use:   "worker",
			Short: "Consume background jobs from NATS",
			RunE:  func(cmd *cobra.Command, args []string) error { return worker() },
		},
		purgeCmd(),
		tokenCmd(),
	)
	return cmd
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func serve() error {
	ctx, stop := signalContext()
	defer stop()

	a, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := router.Initialize(a.cfg, a.registry, a.db)
	if err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", a.cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.cfg.Server.IdleTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("port", a.cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	// The in-process queue has no separate worker to schedule the purge.
	if a.local != nil {
		g.Go(func() error {
			schedulePurge(gctx, a)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logrus.Info("Server exited")
	return nil
}

func schedulePurge(ctx context.Context, a *app) {
	maxAge := a.cfg.Jobs.OrphanMaxAge
	jobs.Schedule(ctx, a.enqueuer(), a.cfg.Jobs.PurgeInterval, func() jobs.Job {
		return jobs.PurgeOrphans(maxAge)
	})
}

func migrate() error {
	a, err := bootstrap(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	// bootstrap has already migrated.
	if a.cfg.Database.AutoMigrate {
		return nil
	}
	return database.RunMigrations(a.db)
}

func seed() error {
	ctx := context.Background()
	a, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	collection, err := a.registry.CollectionService()
	if err != nil {
		return err
	}
	result, err := collection.InitializeCollectionData(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed collection data: %w", err)
	}
	logrus.WithField("result", fmt.Sprintf("%+v", *result)).Info("Collection data initialized")
	return nil
}

func worker() error {
	ctx, stop := signalContext()
	defer stop()

	a, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.nats == nil {
		return errors.New("worker requires NATS_URL")
	}
	photos, err := a.registry.PhotoService()
	if err != nil {
		return err
	}
	services.RegisterJobHandlers(a.nats, photos, a.store)
	if err := a.nats.Start(ctx); err != nil {
		return fmt.Errorf("failed to start job consumers: %w", err)
	}
	logrus.WithField("group", a.cfg.Jobs.QueueGroup).Info("Worker started")

	schedulePurge(ctx, a)
	logrus.Info("Worker stopping")
	return nil
}

func purgeCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "purge-orphans",
		Short: "Delete photos never attached to an item",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := bootstrap(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if olderThan <= 0 {
				olderThan = a.cfg.Jobs.OrphanMaxAge
			}
			photos, err := a.registry.PhotoService()
			if err != nil {
				return err
			}
			n, err := photos.PurgeOrphanedPhotos(ctx, olderThan)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{"purged": n, "older_than": olderThan}).Info("Orphaned photos purged")
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Minimum age of purged photos (defaults to JOBS_ORPHAN_MAX_AGE)")
	return cmd
}

func tokenCmd() *cobra.Command {
	var req services.EnsureUserRequest
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token, creating the user if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := bootstrap(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			users, err := a.registry.UserService()
			if err != nil {
				return err
			}
			user, err := users.EnsureUser(ctx, &req)
			if err != nil {
				return err
			}
			utils.SetJWTSecret(a.cfg.JWT.SecretKey)
			token, err := utils.GenerateJWT(user.ID, user.Username, a.cfg.JWT.AccessTokenTTL)
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "Username to issue the token for")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email stored when the user is created")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
