// Package server wires the folder share service together: configuration,
// metadata and blob backends, the HTTP listeners and the expired-share
// sweeper, with graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/integrity"
	"github.com/dmitrijs2005/foldershare/internal/logging"
	"github.com/dmitrijs2005/foldershare/internal/server/blobstore"
	"github.com/dmitrijs2005/foldershare/internal/server/config"
	"github.com/dmitrijs2005/foldershare/internal/server/httpapi"
	"github.com/dmitrijs2005/foldershare/internal/server/janitor"
	"github.com/dmitrijs2005/foldershare/internal/server/ratelimit"
	"github.com/dmitrijs2005/foldershare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/foldershare/internal/server/repositories/shares"
	"github.com/dmitrijs2005/foldershare/internal/server/services"
	"github.com/redis/go-redis/v9"
)

var (
	openDB = sql.Open

	newRepoManager = repomanager.NewPostgresRepositoryManager

	newS3Store = func(ctx context.Context, opts blobstore.S3Options) (blobstore.Store, error) {
		return blobstore.NewS3Store(ctx, opts)
	}
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	repo    shares.Repository
	blobs   blobstore.Store
	shares  *services.ShareService
	limiter ratelimit.Limiter
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger}

	signer, err := integrity.NewSigner([]byte(c.HMACSecret))
	if err != nil {
		return nil, err
	}

	if err := app.initMetadata(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("metadata init error: %w", err)
	}
	if err := app.initBlobs(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}
	app.initLimiter(ctx)

	app.shares = services.NewShareService(app.repo, app.blobs, signer, logger)
	return app, nil
}

func (app *App) initMetadata(ctx context.Context) error {
	if app.config.MetadataBackend == config.BackendMemory {
		app.logger.Warn(ctx, "using in-memory metadata; shares are lost on restart")
		app.repo = shares.NewMemoryRepository()
		return nil
	}

	db, err := openDB("pgx", app.config.DatabaseDSN)
	if err != nil {
		return err
	}
	app.db = db

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	app.repo = rm.Shares(db)
	return nil
}

func (app *App) initBlobs(ctx context.Context) error {
	if app.config.BlobBackend == config.BackendMemory {
		app.logger.Warn(ctx, "using in-memory blob store; payloads are lost on restart")
		app.blobs = blobstore.NewMemoryStore()
		return nil
	}

	store, err := newS3Store(ctx, blobstore.S3Options{
		Region:       app.config.S3Region,
		AccessKey:    app.config.S3RootUser,
		SecretKey:    app.config.S3RootPassword,
		BaseEndpoint: app.config.S3BaseEndpoint,
		Bucket:       app.config.S3Bucket,
		UsePathStyle: app.config.S3UsePathStyle,
	})
	if err != nil {
		return err
	}
	app.blobs = store
	return nil
}

func (app *App) initLimiter(ctx context.Context) {
	if app.config.RedisAddr == "" {
		app.limiter = ratelimit.Noop{}
		return
	}

	app.redis = redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := app.redis.Ping(pingCtx).Err(); err != nil {
		app.logger.Warn(ctx, "redis unreachable, rate limiting fails open until it recovers", "error", err)
	}
	app.limiter = ratelimit.NewRedisLimiter(app.redis, app.config.RateLimitPerHour, ratelimit.DefaultWindow, app.logger)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) httpServer() *httpapi.Server {
	handler := httpapi.NewHandler(app.shares, app.limiter, app.config.MaxBodyBytes, app.logger)
	return httpapi.NewServer(httpapi.Options{
		Addr:            app.config.HTTPAddr,
		AdminAddr:       app.config.AdminAddr,
		ReadTimeout:     app.config.ReadTimeout,
		WriteTimeout:    app.config.WriteTimeout,
		IdleTimeout:     app.config.IdleTimeout,
		ShutdownTimeout: app.config.ShutdownTimeout,
	}, httpapi.NewRouter(handler, app.logger, httpapi.WithTrustedProxy(app.config.TrustProxyHeaders)), httpapi.NewAdminRouter(app.shares.Ready), app.logger)
}

// Run blocks until ctx is cancelled, a termination signal arrives or the
// HTTP server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"metadata", app.config.MetadataBackend,
		"blobs", app.config.BlobBackend,
		"rate_limit", app.config.RedisAddr != "")

	app.initSignalHandler(cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer().Run(ctx); err != nil {
			app.logger.Error(ctx, "http server stopped", "error", err)
			runErr = err
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		janitor.NewSweeper(app.repo, app.blobs, app.config.SweepInterval, app.logger).Run(ctx)
	}()

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return runErr
}

// Close releases database and Redis connections.
func (app *App) Close() error {
	var errs []error
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	return errors.Join(errs...)
}

// Shares exposes the service for in-process callers such as tests.
func (app *App) Shares() *services.ShareService {
	return app.shares
}

