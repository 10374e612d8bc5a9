package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // pprof is intentionally exposed when pprofAddr is configured
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/salesdash/salesdash/pkg/api"
	"github.com/salesdash/salesdash/pkg/api/handlers"
	"github.com/salesdash/salesdash/pkg/cache"
	"github.com/salesdash/salesdash/pkg/dataset"
	"github.com/salesdash/salesdash/pkg/frontend"
	"github.com/salesdash/salesdash/pkg/observability"
	redisconfig "github.com/salesdash/salesdash/pkg/redis"
	"github.com/salesdash/salesdash/pkg/report"
	"github.com/salesdash/salesdash/pkg/scheduler"
	"github.com/salesdash/salesdash/pkg/tasks"
	"github.com/salesdash/salesdash/pkg/worker"
)

// Service owns the loaded dataset and every long-running component
type Service struct {
	config *Config
	log    *logrus.Logger

	loader    *dataset.Loader
	reports   *report.Service
	queue     *tasks.QueueManager
	scheduler scheduler.Service
	worker    worker.Service
	api       api.Service

	// Servers
	healthServer *http.Server
	pprofServer  *http.Server

	redisOptions *redis.Options
	redisClient  *redis.Client

	ready atomic.Bool
}

// NewService creates the engine. The dataset is not read until Start.
func NewService(log *logrus.Logger, cfg *Config) (*Service, error) {
	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	source, err := dataset.NewSource(&cfg.Dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset source: %w", err)
	}

	s := &Service{
		log:    log,
		config: cfg,
		loader: dataset.NewLoader(log, &cfg.Dataset, source),
	}

	if cfg.Redis.Enabled() {
		s.redisClient, s.redisOptions, err = redisconfig.NewClient(&cfg.Redis)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// NewReportService loads the dataset and builds a report service over it.
// A nil cache disables caching.
func NewReportService(ctx context.Context, log logrus.FieldLogger, cfg *Config, loader *dataset.Loader, c cache.Cache) (*report.Service, error) {
	table, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	labels, err := report.NewLabels()
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}

	return report.NewService(log, &cfg.Report, table, report.NewBuilder(labels), c), nil
}

// Start loads the dataset and starts every configured component. A dataset
// load failure is returned as dataset.ErrDataLoad.
func (a *Service) Start(ctx context.Context) error {
	a.log.Info("Starting salesdash engine...")

	// Start metrics server
	if a.config.MetricsAddr != "" {
		observability.StartMetricsServer(a.config.MetricsAddr)
		a.log.WithField("addr", a.config.MetricsAddr).Info("Started metrics server")
	}

	// Start health check server if configured
	if a.config.HealthCheckAddr != "" {
		a.startHealthCheck()
	}

	// Start pprof server if configured
	if a.config.PProfAddr != "" {
		a.startPProf()
	}

	var sectionCache cache.Cache
	if a.redisClient != nil && a.config.Cache.Enabled {
		sectionCache = cache.NewRedisCache(a.redisClient, a.config.Redis.PrefixKey(a.config.Cache.KeyPrefix))
	}

	reports, err := NewReportService(ctx, a.log, a.config, a.loader, sectionCache)
	if err != nil {
		return err
	}

	a.reports = reports

	if a.redisClient != nil {
		if err := a.startBackground(ctx); err != nil {
			return err
		}
	} else {
		a.log.Info("Redis is not configured; cache, worker and scheduler are disabled")
	}

	var warmer handlers.CacheWarmer
	if a.scheduler != nil {
		warmer = a.scheduler
	}

	// Create frontend handler if enabled
	var frontendHandler http.Handler
	if a.config.Frontend.Enabled {
		frontendHandler, err = frontend.NewHandler(&a.config.Frontend)
		if err != nil {
			return fmt.Errorf("failed to create frontend handler: %w", err)
		}
	}

	a.api = api.NewService(&a.config.API, a.reports, warmer, frontendHandler, a.log)

	// Start API and frontend service
	if err := a.api.Start(ctx); err != nil {
		return fmt.Errorf("failed to start API and frontend service: %w", err)
	}

	a.ready.Store(true)

	a.log.WithField("rows", a.reports.Table().Len()).Info("salesdash engine started successfully")

	return nil
}

// startBackground starts the Redis-backed worker and scheduler
func (a *Service) startBackground(ctx context.Context) error {
	asynqOpt := redisconfig.NewAsynqRedisOptions(a.redisOptions)
	queueName := a.config.Redis.PrefixQueue(tasks.DefaultQueue)

	if a.config.Worker.Enabled || a.config.Scheduler.Mode == scheduler.ModeQueue {
		a.queue = tasks.NewQueueManager(asynqOpt, queueName)
	}

	if a.config.Worker.Enabled {
		workerService, err := worker.NewService(a.log, &a.config.Worker, asynqOpt, queueName, a.reports)
		if err != nil {
			return fmt.Errorf("failed to create worker service: %w", err)
		}

		// Start worker service
		if err := workerService.Start(ctx); err != nil {
			return fmt.Errorf("failed to start worker: %w", err)
		}

		a.worker = workerService
	}

	if a.config.Scheduler.Enabled {
		var enqueuer scheduler.Enqueuer
		if a.queue != nil && a.config.Scheduler.Mode == scheduler.ModeQueue {
			enqueuer = a.queue
		}

		schedulerService, err := scheduler.NewService(
			a.log,
			&a.config.Scheduler,
			a.redisClient,
			scheduler.Keys{
				Leader:  a.config.Redis.PrefixKey("scheduler:leader"),
				LastRun: a.config.Redis.PrefixKey("scheduler:last-run"),
			},
			enqueuer,
			a.reports,
			a.config.Report.ConfiguredLocales(),
		)
		if err != nil {
			return fmt.Errorf("failed to create scheduler service: %w", err)
		}

		// Start scheduler service
		if err := schedulerService.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		a.scheduler = schedulerService
	}

	return nil
}

// Stop gracefully shuts down the engine
func (a *Service) Stop() error {
	a.log.Info("Shutting down salesdash engine...")

	a.ready.Store(false)

	// Create a timeout context for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Helper function to stop a service
	stopService := func(name string, stopFunc func() error) {
		if stopFunc == nil {
			return
		}
		if err := stopFunc(); err != nil {
			a.log.WithError(err).Errorf("Failed to stop %s", name)
		}
	}

	// 1. Stop scheduler first (stop creating new tasks)
	if a.scheduler != nil {
		stopService("scheduler service", a.scheduler.Stop)
	}

	// 2. Stop worker (finish in-flight tasks)
	if a.worker != nil {
		stopService("worker service", a.worker.Stop)
	}

	if a.queue != nil {
		stopService("task queue", a.queue.Close)
	}

	// 3. Stop API/frontend
	if a.api != nil {
		stopService("API and frontend service", a.api.Stop)
	}

	// 4. Close Redis (now safe, nothing is using it)
	if a.redisClient != nil {
		stopService("Redis client", a.redisClient.Close)
	}

	// Stop HTTP servers
	if a.healthServer != nil {
		stopService("health check server", func() error { return a.healthServer.Shutdown(ctx) })
	}
	if a.pprofServer != nil {
		stopService("pprof server", func() error { return a.pprofServer.Shutdown(ctx) })
	}

	return nil
}

// Ready reports whether the dataset is loaded and the API is serving
func (a *Service) Ready() bool {
	return a.ready.Load()
}

func (a *Service) healthHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		if !a.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT READY"))

			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return mux
}

func (a *Service) startHealthCheck() {
	a.log.WithField("addr", a.config.HealthCheckAddr).Info("Starting health check server")

	a.healthServer = &http.Server{
		Addr:              a.config.HealthCheckAddr,
		Handler:           a.healthHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := a.healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.WithError(err).Error("Health check server failed")
		}
	}()
}

func (a *Service) startPProf() {
	a.log.WithField("addr", a.config.PProfAddr).Info("Starting pprof server")

	a.pprofServer = &http.Server{
		Addr:              a.config.PProfAddr,
		ReadHeaderTimeout: 120 * time.Second,
	}

	go func() {
		if err := a.pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.WithError(err).Error("Pprof server failed")
		}
	}()
}
