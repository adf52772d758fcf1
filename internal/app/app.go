package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"Zenframe/internal/api"
	"Zenframe/internal/auth"
	"Zenframe/internal/config"
	"Zenframe/internal/enrich"
	"Zenframe/internal/feed"
	"Zenframe/internal/infrastructure/cache"
	"Zenframe/internal/infrastructure/llm"
	"Zenframe/internal/infrastructure/newsfeed"
	"Zenframe/internal/infrastructure/scheduler"
	"Zenframe/internal/infrastructure/storage"
	"Zenframe/internal/logging"
	"Zenframe/internal/metrics"
	"Zenframe/internal/ports"
	"Zenframe/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	server    *http.Server
	closers   []func() error
}

// New connects every collaborator. Resources opened before a failure are released.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics := metrics.NewPipeline(registry)

	store, err := a.openStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	enrichmentCache, err := a.openCache(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	chat, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("llm client: %w", err)
	}
	var chatClient ports.ChatClient
	if chat != nil {
		chatClient = chat
		a.closers = append(a.closers, chat.Close)
	} else {
		baseLogger.Warn("llm api key is not set, every article will use the fallback enrichment")
	}

	feeds := feed.NewRegistry()
	feeds.Register(newsfeed.NewTheNewsAPIClient(nil, newsfeed.TheNewsAPIOptions{
		BaseURL:       cfg.Feed.BaseURL,
		Token:         cfg.Feed.APIToken,
		PageSizeParam: cfg.Feed.PageSizeParam,
		Timeout:       cfg.Feed.Timeout,
	}))
	feeds.Register(newsfeed.NewRSSClient(cfg.Feed.RSSURL))

	feedClient, err := feeds.Resolve(cfg.Feed.Provider)
	if err != nil {
		a.close()
		return nil, err
	}

	invoker := enrich.NewInvoker(chatClient, enrich.Options{
		MaxAttempts: cfg.Enrichment.MaxAttempts,
		BaseDelay:   cfg.Enrichment.BaseDelay,
		BodyLimit:   cfg.Enrichment.BodyLimit,
		Cache:       enrichmentCache,
		Metrics:     pipelineMetrics,
		Logger:      baseLogger.With("component", "enrich"),
	})

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Feed:       feedClient,
		Enricher:   invoker,
		Repository: store,
		Metrics:    pipelineMetrics,
		Logger:     baseLogger.With("component", "pipeline"),
		Options: usecase.PipelineOptions{
			Language:  cfg.Feed.Language,
			MaxPages:  cfg.Feed.MaxPages,
			PageSize:  cfg.Feed.PageSize,
			PagePause: cfg.Feed.PagePause,
		},
	})

	driver := scheduler.NewCronScheduler(cfg.Scheduler, baseLogger.With("component", "cron"))
	a.scheduler = usecase.NewScheduler(driver, a.pipeline, baseLogger.With("component", "scheduler"))

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Deps{
		Store:          store,
		Reports:        a.pipeline,
		Tokens:         auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Metrics:        metrics.NewHTTP(registry),
		Gatherer:       registry,
		Logger:         baseLogger.With("component", "http"),
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	a.server = &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	baseLogger.Info("application configured",
		"feed_provider", feedClient.Name(),
		"feed_providers", feeds.Names(),
		"llm_provider", cfg.LLM.Provider,
		"interval", cfg.Scheduler.Interval,
	)
	return a, nil
}

func (a *Application) openStore(ctx context.Context) (ports.Store, error) {
	if a.cfg.Database.DSN == "" {
		a.logger.Warn("database dsn is not set, using the in-memory store")
		return storage.NewMemoryRepository(), nil
	}

	db, err := storage.Open(ctx, a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (a *Application) openCache(ctx context.Context) (ports.EnrichmentCache, error) {
	if a.cfg.Redis.URL == "" {
		return nil, nil
	}
	c, err := cache.Dial(ctx, a.cfg.Redis.URL, a.cfg.Enrichment.CacheTTL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, c.Close)
	return c, nil
}

// Run serves the API and the ingestion schedule until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		a.close()
		return fmt.Errorf("start scheduler: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown requested")
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown failed", "error", err)
	}
	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Error("scheduler stop failed", "error", err)
	}
	a.close()

	a.logger.Info("application stopped")
	return runErr
}

func (a *Application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("close resource", "error", err)
		}
	}
	a.closers = nil
}
