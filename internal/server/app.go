// Package server wires the configured storage, services and transports
// together and runs the HTTP and gRPC listeners until a signal arrives.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/sundaram/internal/logging"
	"github.com/dmitrijs2005/sundaram/internal/server/auth"
	"github.com/dmitrijs2005/sundaram/internal/server/blobstore"
	"github.com/dmitrijs2005/sundaram/internal/server/config"
	"github.com/dmitrijs2005/sundaram/internal/server/metrics"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/history"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sundaram/internal/server/services"

	gs "github.com/dmitrijs2005/sundaram/internal/server/grpc"
	hs "github.com/dmitrijs2005/sundaram/internal/server/http"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	repos      repomanager.RepositoryManager
	httpServer *hs.Server
	grpcServer *gs.Server
}

// NewApp opens the storage backends and builds both transports. The caller
// owns the returned App and must call Run, which closes the storage.
func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	logger := logging.NewJSON(out, c.LogLevel)

	repos, err := openRepositories(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	locks := services.NewUserLocks()
	hist := services.NewHistoryService(repos.History(), repos.Users(), locks, logger)
	us := services.NewUserService(repos.Users(), hist, locks, logger)
	ss := services.NewSieveService(repos.Users(), hist, locks, c.MaxLimit, m, logger)
	authenticator := auth.NewAuthenticator(repos.Users(), logger, m)

	router := hs.NewRouter(hs.NewHandlers(us, ss, hist, logger), authenticator, logger, hs.RouterOptions{
		BodyLimit:   c.BodyLimit,
		CORSOrigins: c.CORSOrigins,
		MetricsPath: c.MetricsPath,
		Gatherer:    registry,
		Metrics:     m,
	})

	app := &App{
		config:     c,
		logger:     logger,
		repos:      repos,
		httpServer: hs.NewServer(c.EndpointAddrHTTP, router, c.ShutdownTimeout, logger.With("module", "http_server")),
	}
	if c.EndpointAddrGRPC != "" {
		app.grpcServer = gs.NewServer(c.EndpointAddrGRPC, logger, us, ss, hist, authenticator, m)
	}
	return app, nil
}

func openBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	if c.BlobBackend == config.BlobS3 {
		return blobstore.NewS3Store(ctx, blobstore.S3Config{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
	}
	return blobstore.NewLocalStore(c.DataDir)
}

func openRepositories(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	var repos repomanager.RepositoryManager

	switch c.Storage {
	case config.StoragePostgres:
		db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		pm := repomanager.NewPostgresRepositoryManager(db)
		if err := pm.RunMigrations(ctx); err != nil {
			pm.Close()
			return nil, fmt.Errorf("db migrations error: %w", err)
		}
		repos = pm
	default:
		store, err := openBlobStore(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("blob store init error: %w", err)
		}
		fm, err := repomanager.NewFileRepositoryManager(ctx, store)
		if err != nil {
			return nil, fmt.Errorf("user store init error: %w", err)
		}
		repos = fm
	}

	if c.HistoryBackend == config.HistoryRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			repos.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		repos = repomanager.WithHistory(repos, history.NewRedisRepository(client), client)
	}

	logger.Info(ctx, "storage ready", "storage", c.Storage, "blob", c.BlobBackend, "history", c.HistoryBackend)
	return repos, nil
}

// Run serves until SIGINT or SIGTERM, or until one of the listeners fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.httpServer.Run(gctx) })
	if app.grpcServer != nil {
		g.Go(func() error { return app.grpcServer.Run(gctx) })
	}

	err := g.Wait()
	if cerr := app.repos.Close(); cerr != nil {
		app.logger.Error(context.Background(), "closing storage", "error", cerr)
	}
	app.logger.Info(context.Background(), "App stopped")
	return err
}
