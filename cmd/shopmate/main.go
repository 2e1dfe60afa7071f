package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shopmate-ai/shopmate/internal/catalog"
	"github.com/shopmate-ai/shopmate/internal/config"
	"github.com/shopmate-ai/shopmate/internal/db"
	dbRedis "github.com/shopmate-ai/shopmate/internal/db/redis"
	"github.com/shopmate-ai/shopmate/internal/domain"
	logpkg "github.com/shopmate-ai/shopmate/internal/logger"
	"github.com/shopmate-ai/shopmate/internal/metrics"
	"github.com/shopmate-ai/shopmate/internal/repository/embcache"
	historyrepo "github.com/shopmate-ai/shopmate/internal/repository/history"
	chiTransport "github.com/shopmate-ai/shopmate/internal/transport/chi"
	openaiProvider "github.com/shopmate-ai/shopmate/internal/transport/openai"
	healthuc "github.com/shopmate-ai/shopmate/internal/usecase/health"
	"github.com/shopmate-ai/shopmate/internal/usecase/intent"
	"github.com/shopmate-ai/shopmate/internal/usecase/ranking"
	recommenduc "github.com/shopmate-ai/shopmate/internal/usecase/recommend"
	"github.com/shopmate-ai/shopmate/internal/version"
)

func main() {
	// Load .env if present (local development convenience)
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting shopmate API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_path", cfg.Catalog.Path),
		zap.String("history_driver", cfg.History.Driver),
	)

	// Load and validate the product catalog — fatal if broken: the
	// service cannot recommend from an empty or malformed dataset.
	products, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to load product catalog", zap.Error(err))
	}
	catalogStore := catalog.NewStore(products)
	logger.Info("Catalog loaded", zap.Int("products", catalogStore.Len()))

	// Redis backs both the history store and the embedding cache when the
	// redis driver is configured. The file driver runs without it.
	ctx := context.Background()
	var store db.Store
	if cfg.History.Driver == "redis" {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.History.Addrs,
			Password: cfg.History.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.History.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis")
	}

	// Register provider metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	// Build providers — composition root
	providerCfg := &openaiProvider.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		ChatModel:      cfg.LLM.ChatModel,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Dimensions:     cfg.LLM.Dimensions,
		Logger:         logger,
	}
	baseEmbedder := openaiProvider.NewEmbedder(providerCfg)
	completer := openaiProvider.NewCompleter(providerCfg)

	var embedder domain.Embedder = baseEmbedder
	if store != nil {
		embedder = embcache.New(baseEmbedder, store, metrics.EmbeddingCacheTotal, logger)
	}
	logger.Info("Providers created",
		zap.String("chat_model", cfg.LLM.ChatModel),
		zap.String("embedding_model", cfg.LLM.EmbeddingModel),
		zap.Bool("embedding_cache", store != nil),
	)

	// Warm product embeddings before serving, so ranking has a similarity
	// signal from the first request.
	if cfg.Catalog.WarmEmbeddings {
		catalogStore.WarmEmbeddings(ctx, embedder, logger)
	}

	// History repository
	var history recommenduc.HistoryRepository
	var storePinger healthuc.StorePinger
	switch cfg.History.Driver {
	case "redis":
		history = historyrepo.NewRedisStore(store, logger)
		storePinger = store
	default:
		fileStore, err := historyrepo.NewFileStore(cfg.History.Path, logger)
		if err != nil {
			logger.Fatal("Failed to create history file store", zap.Error(err))
		}
		history = fileStore
		storePinger = fileStore
	}

	// Use case services
	extractor := intent.New(completer, time.Duration(cfg.LLM.TimeoutSec)*time.Second)
	engine := ranking.NewEngine(ranking.Config{
		SimilarityWeight: cfg.Ranking.SimilarityWeight,
		RatingWeight:     cfg.Ranking.RatingWeight,
		ReviewWeight:     cfg.Ranking.ReviewWeight,
		TopK:             cfg.Ranking.TopK,
		MinResults:       cfg.Ranking.MinResults,
	}, catalogStore)
	recommendSvc := recommenduc.New(extractor, embedder, engine, catalogStore, history)
	healthSvc := healthuc.New(storePinger, baseEmbedder, completer)

	// HTTP server
	server := chiTransport.NewServer(recommendSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWith(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
