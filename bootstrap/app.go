// Package bootstrap assembles the service: drivers, gateways, usecases,
// schedulers and the HTTP server.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"news-crawler/adapter"
	"news-crawler/config"
	"news-crawler/db"
	"news-crawler/domain"
	"news-crawler/driver"
	"news-crawler/driver/model_api"
	"news-crawler/gateway"
	"news-crawler/logger"
	"news-crawler/port"
	"news-crawler/rest"
	"news-crawler/scheduler"
	"news-crawler/usecase"
	appOtel "news-crawler/utils/otel"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App holds the long-lived components of the service.
type App struct {
	httpServer   *http.Server
	pool         *pgxpool.Pool
	redisDriver  *driver.RedisDriver
	qdrantDriver *driver.QdrantDriver
	enrichment   *scheduler.EnrichmentScheduler
	topics       *scheduler.TopicScheduler
	otelShutdown appOtel.ShutdownFunc
}

// Run initializes every component and blocks until ctx is cancelled, then
// shuts down gracefully.
func Run(ctx context.Context) error {
	otelCfg := appOtel.ConfigFromEnv()
	otelShutdown, err := appOtel.InitProvider(ctx, otelCfg)
	if err != nil {
		fmt.Printf("Failed to initialize OpenTelemetry: %v\n", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	logger.InitWithOTel(otelCfg.Enabled)
	logger.Logger.Info("Starting news-crawler",
		"service", otelCfg.ServiceName,
		"otel_enabled", otelCfg.Enabled,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Error("Failed to load config", "err", err)
		return err
	}

	pool, err := db.Init(ctx, &cfg.Database)
	if err != nil {
		logger.Logger.Error("Failed to initialize database", "err", err)
		return err
	}
	if err := db.Migrate(ctx, pool); err != nil {
		logger.Logger.Error("Failed to migrate database", "err", err)
		pool.Close()
		return err
	}

	// ── Drivers ──
	articleDriver := driver.NewDatabaseDriver(pool)
	sessionDriver := driver.NewSessionDriver(pool)
	topicDriver := driver.NewTopicDriver(pool)

	msClient, err := initMeilisearchClient(&cfg.Meilisearch)
	if err != nil {
		logger.Logger.Error("Failed to initialize Meilisearch", "err", err)
		pool.Close()
		return err
	}
	searchDriver := driver.NewMeilisearchDriver(msClient, cfg.Meilisearch.Index)

	qdrantDriver, err := driver.NewQdrantDriver(&cfg.Qdrant, domain.EmbeddingDim)
	if err != nil {
		logger.Logger.Error("Failed to initialize Qdrant", "err", err)
		pool.Close()
		return err
	}

	embedClient := model_api.NewEmbeddingClient(cfg.Providers.EmbeddingURL, cfg.Providers.Timeout)

	// ── Gateways ──
	articleRepo := gateway.NewArticleRepositoryGateway(articleDriver)
	sessionRepo := gateway.NewSessionRepositoryGateway(sessionDriver)
	topicRepo := gateway.NewTopicRepositoryGateway(topicDriver)
	searchEngine := gateway.NewSearchEngineGateway(searchDriver)
	vectorIndex := gateway.NewVectorIndexGateway(qdrantDriver)
	embedder := gateway.NewEmbedderGateway(embedClient)

	var sentiment port.SentimentClassifier
	if cfg.Providers.SentimentURL != "" {
		sentimentClient := model_api.NewSentimentClient(cfg.Providers.SentimentURL, cfg.Providers.Timeout)
		sentiment = gateway.NewSentimentGateway(sentimentClient)
	} else {
		logger.Logger.Info("sentiment provider not configured, labels default to neutral")
	}

	var redisDriver *driver.RedisDriver
	var progress port.ProgressStore
	if cfg.Redis.Enabled {
		redisDriver, err = driver.NewRedisDriver(cfg.Redis.URL)
		if err != nil {
			logger.Logger.Warn("Redis unavailable, progress kept in memory", "err", err)
			progress = gateway.NewMemoryProgressStore()
		} else {
			progress = gateway.NewProgressGateway(redisDriver)
		}
	} else {
		progress = gateway.NewMemoryProgressStore()
	}

	if err := searchEngine.EnsureIndex(ctx); err != nil {
		logger.Logger.Error("Failed to ensure search index", "err", err)
		pool.Close()
		return err
	}
	if err := vectorIndex.EnsureCollection(ctx); err != nil {
		logger.Logger.Error("Failed to ensure vector collection", "err", err)
		pool.Close()
		return err
	}

	// ── Crawl adapters ──
	fetcher := adapter.NewFetcher()
	registry := adapter.NewRegistry(fetcher)

	// ── Use cases ──
	fanout := usecase.NewStoreFanout(articleRepo, searchEngine, vectorIndex, embedder)
	executor := usecase.NewCrawlExecutor(registry, fanout, articleRepo, sessionRepo, progress)
	hybrid := usecase.NewHybridSearchUsecase(searchEngine, vectorIndex, embedder, fanout, sessionRepo, progress, executor)
	enrich := usecase.NewEnrichArticlesUsecase(articleRepo, embedder, sentiment, fanout)
	sweep := usecase.NewSweepHistoryUsecase(sessionRepo, articleRepo, fanout)
	retrieve := usecase.NewRetrieveContextUsecase(vectorIndex, embedder, articleRepo)
	topicCrawl := usecase.NewTopicCrawlUsecase(registry, topicRepo, articleRepo, fanout)
	initTopics := usecase.NewInitTopicsUsecase(registry, topicRepo)
	status := usecase.NewCrawlStatusUsecase(progress, sessionRepo, articleRepo)
	history := usecase.NewHistoryUsecase(sessionRepo, articleRepo)

	// ── Schedulers ──
	enrichment := scheduler.NewEnrichmentScheduler(enrich)
	enrichment.Start(ctx)

	topicScheduler := scheduler.NewTopicScheduler(topicCrawl)
	if err := topicScheduler.Start(ctx); err != nil {
		logger.Logger.Error("Failed to start topic scheduler", "err", err)
		pool.Close()
		return err
	}

	go warmUpProviders(ctx, embedder)

	// ── HTTP server ──
	handler := rest.NewHandler(hybrid, status, history, retrieve, initTopics, sweep, topicScheduler)
	app := &App{
		httpServer:   newHTTPServer(handler, &cfg.HTTP, otelCfg),
		pool:         pool,
		redisDriver:  redisDriver,
		qdrantDriver: qdrantDriver,
		enrichment:   enrichment,
		topics:       topicScheduler,
		otelShutdown: otelShutdown,
	}

	go func() {
		logger.Logger.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Error("http", "err", err)
		}
	}()

	<-ctx.Done()
	app.shutdown()
	return nil
}

// warmUpProviders sends one embedding request so the first user search
// does not pay the model's cold start.
func warmUpProviders(ctx context.Context, embedder port.Embedder) {
	warmCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	if _, err := embedder.EmbedTexts(warmCtx, []string{"xin chào"}); err != nil {
		logger.Logger.Warn("embedding warm-up failed", "err", err)
		return
	}
	logger.Logger.Info("embedding provider warm")
}

func (a *App) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("http shutdown error", "err", err)
	}
	a.enrichment.Stop()
	a.topics.Stop()

	if a.redisDriver != nil {
		if err := a.redisDriver.Close(); err != nil {
			logger.Logger.Error("redis close error", "err", err)
		}
	}
	if err := a.qdrantDriver.Close(); err != nil {
		logger.Logger.Error("qdrant close error", "err", err)
	}
	a.pool.Close()

	otelCtx, otelCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer otelCancel()
	if err := a.otelShutdown(otelCtx); err != nil {
		fmt.Printf("Failed to shutdown OpenTelemetry: %v\n", err)
	}
}
