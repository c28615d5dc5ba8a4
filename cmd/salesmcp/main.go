package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/colombiang/sales-mcp/internal/app"
	"github.com/colombiang/sales-mcp/internal/mcptools"
	"github.com/colombiang/sales-mcp/internal/platform/cache"
	"github.com/colombiang/sales-mcp/internal/platform/db"
	"github.com/colombiang/sales-mcp/internal/products"
	"github.com/colombiang/sales-mcp/internal/purchases"
	"github.com/colombiang/sales-mcp/internal/sales"
	"github.com/colombiang/sales-mcp/internal/search"
	"github.com/colombiang/sales-mcp/internal/users"
	"github.com/colombiang/sales-mcp/internal/whatsapp"
	"github.com/colombiang/sales-mcp/jobs"
)

func main() {
	stdio := flag.Bool("stdio", false, "serve MCP over stdio instead of HTTP")
	flag.Parse()

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, continuing without it", slog.Any("error", err))
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	registry := purchases.DefaultRegistry()
	purchaseService := purchases.NewService(registry, purchases.NewRepository(pool), logger)
	userService := users.NewService(users.NewRepository(pool), logger)
	catalog := products.NewRepository(pool)
	saleService := sales.NewService(catalog, sales.NewRepository(pool), logger)

	var searchService *search.Service
	if cfg.SearchConfigured() {
		azureClient := search.NewAzureClient(cfg.AzureSearchEndpoint, cfg.AzureSearchIndexName, cfg.AzureSearchAPIKey, cfg.AzureSearchTimeout)
		var embedder search.EmbedderPort
		if cfg.OpenAIAPIKey != "" {
			embedder = search.NewOpenAIEmbedder(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIEmbeddingModel, cfg.OpenAITimeout)
		}
		searchCache := search.NewCache(redisClient, cfg.SearchCacheTTL)
		searchService = search.NewService(azureClient, embedder, searchCache, logger)
	} else {
		logger.Warn("azure search not configured, search tools disabled")
	}

	whatsappClient := whatsapp.NewClient(cfg.WhatsAppBaseURL, cfg.WhatsAppTimeout, cfg.WhatsAppMediaTimeout)

	mcpServer := mcptools.NewServer(mcptools.Deps{
		Purchases: purchaseService,
		Users:     userService,
		Sales:     saleService,
		Search:    searchService,
		WhatsApp:  whatsappClient,
		Logger:    logger,
	})

	if *stdio {
		logger.Info("serving mcp over stdio")
		if err := mcpServer.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("mcp stdio server", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:      logger,
		Config:      cfg,
		MCPHandler:  mcpServer.HTTPHandler(),
		JobsHandler: jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
