package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/colombiang/sales-mcp/internal/app"
	"github.com/colombiang/sales-mcp/internal/platform/cache"
	"github.com/colombiang/sales-mcp/internal/platform/db"
	"github.com/colombiang/sales-mcp/internal/products"
	"github.com/colombiang/sales-mcp/internal/search"
	"github.com/colombiang/sales-mcp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if !cfg.SearchConfigured() {
		logger.Error("azure search not configured, nothing for the worker to do")
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	azureClient := search.NewAzureClient(cfg.AzureSearchEndpoint, cfg.AzureSearchIndexName, cfg.AzureSearchAPIKey, cfg.AzureSearchTimeout)
	var embedder search.EmbedderPort
	if cfg.OpenAIAPIKey != "" {
		embedder = search.NewOpenAIEmbedder(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIEmbeddingModel, cfg.OpenAITimeout)
	}
	searchCache := search.NewCache(redisClient, cfg.SearchCacheTTL)
	searchService := search.NewService(azureClient, embedder, searchCache, logger)

	catalog := products.NewRepository(pool)
	reindexer := jobs.NewReindexer(catalog, searchService, logger)

	reindexTask, err := jobs.NewReindexTask(jobs.ReindexPayload{})
	if err != nil {
		logger.Error("build reindex task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReindexProducts, Handler: reindexer.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: reindexTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
