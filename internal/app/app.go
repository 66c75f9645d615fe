// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/marketsnap/catalog-crawler/internal/config"
	"github.com/marketsnap/catalog-crawler/internal/crawler"
	"github.com/marketsnap/catalog-crawler/internal/images"
	"github.com/marketsnap/catalog-crawler/internal/logging"
	"github.com/marketsnap/catalog-crawler/internal/metrics"
	"github.com/marketsnap/catalog-crawler/internal/queue"
	"github.com/marketsnap/catalog-crawler/internal/queue/memory"
	memstore "github.com/marketsnap/catalog-crawler/internal/storage/memory"
	"github.com/marketsnap/catalog-crawler/internal/storage/postgres"
)

// App holds all the shared, long-lived services for the application.
// It is initialized once at startup and passed to the components that need it.
type App struct {
	logger *zap.Logger
	store  crawler.Store
	images crawler.ImageSink
	queue  queue.Provider
}

// GetLogger returns the shared zap logger instance.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetStore exposes the configured catalog store.
func (a *App) GetStore() crawler.Store {
	return a.store
}

// GetImages exposes the configured product image sink.
func (a *App) GetImages() crawler.ImageSink {
	return a.images
}

// GetQueue returns the queue provider used to publish pass summaries.
func (a *App) GetQueue() queue.Provider {
	return a.queue
}

// NewApp creates and initializes a new App from the loaded configuration.
// It is the central point for service initialization and fails fast if any
// critical service cannot be constructed.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	l := logging.L
	l.Info("Initializing application services...")
	metrics.Init()

	var store crawler.Store
	switch cfg.DB.Provider {
	case "postgres":
		l.Info("Connecting to PostgreSQL...")
		pg, err := postgres.NewStore(ctx, postgres.Config{
			DSN:      cfg.DB.DSN,
			MaxConns: cfg.DB.MaxConns,
			MinConns: cfg.DB.MinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		store = pg
	case "memory":
		l.Info("Using in-memory store. Rows will not survive the process.")
		store = memstore.NewStore()
	default:
		return nil, fmt.Errorf("unknown db provider: %s", cfg.DB.Provider)
	}

	var sink crawler.ImageSink
	switch cfg.Images.Provider {
	case "gcs":
		l.Info("Using GCS image sink", zap.String("bucket", cfg.Images.GCSBucket))
		gcs, err := images.NewGCSSink(ctx, cfg.Images.GCSBucket)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to initialize image sink: %w", err)
		}
		sink = gcs
	case "local":
		l.Info("Using local image sink", zap.String("base_dir", cfg.Images.BaseDir))
		local, err := images.NewLocalSink(images.LocalConfig{BaseDir: cfg.Images.BaseDir})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to initialize image sink: %w", err)
		}
		sink = local
	case "noop":
		l.Info("Using No-Op image sink. Images will not be persisted.")
		sink = crawler.NoOpImageSink{}
	default:
		store.Close()
		return nil, fmt.Errorf("unknown images provider: %s", cfg.Images.Provider)
	}

	var q queue.Provider
	switch cfg.PubSub.Provider {
	case "pubsub":
		l.Info("Connecting to GCP Pub/Sub", zap.String("topic", cfg.PubSub.TopicName))
		ps, err := queue.NewPubSubProvider(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to initialize queue: %w", err)
		}
		q = ps
	case "memory":
		l.Info("Using in-memory queue provider.")
		q = memory.NewProvider()
	case "noop":
		l.Info("Using No-Op queue provider. No messages will be sent.")
		q = queue.NoOpProvider{}
	default:
		store.Close()
		return nil, fmt.Errorf("unknown pubsub provider: %s", cfg.PubSub.Provider)
	}

	l.Info("Application services initialized successfully.")
	return &App{
		logger: l,
		store:  store,
		images: sink,
		queue:  q,
	}, nil
}

// Router builds the operational HTTP endpoint with metrics and health checks.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	return r
}

// Close shuts down all held services. Image sinks expose Close only when
// they hold a remote client, so the sink is closed through an optional
// io.Closer.
func (a *App) Close() {
	if a.queue != nil {
		if err := a.queue.Close(); err != nil {
			a.logger.Warn("Failed to close queue provider", zap.Error(err))
		}
	}
	if closer, ok := a.images.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("Failed to close image sink", zap.Error(err))
		}
	}
	if a.store != nil {
		a.store.Close()
	}
}
