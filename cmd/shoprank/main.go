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
	"go.uber.org/zap"

	"github.com/kailas-cloud/shoprank/internal/catalog"
	"github.com/kailas-cloud/shoprank/internal/config"
	dbRedis "github.com/kailas-cloud/shoprank/internal/db/redis"
	"github.com/kailas-cloud/shoprank/internal/domain"
	logpkg "github.com/kailas-cloud/shoprank/internal/logger"
	"github.com/kailas-cloud/shoprank/internal/metrics"
	"github.com/kailas-cloud/shoprank/internal/repository/embcache"
	chiTransport "github.com/kailas-cloud/shoprank/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/shoprank/internal/transport/openai"
	"github.com/kailas-cloud/shoprank/internal/usecase/explain"
	healthuc "github.com/kailas-cloud/shoprank/internal/usecase/health"
	rankinguc "github.com/kailas-cloud/shoprank/internal/usecase/ranking"
	"github.com/kailas-cloud/shoprank/internal/usecase/recommend"
	"github.com/kailas-cloud/shoprank/internal/version"
)

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting shoprank API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("products_path", cfg.Catalog.ProductsPath),
		zap.String("embeddings_path", cfg.Catalog.EmbeddingsPath),
	)

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Load the catalog and the aligned vector index. Any inconsistency
	// between the two files is fatal here, before the server binds.
	store, ix, err := catalog.Load(cfg.Catalog.ProductsPath, cfg.Catalog.EmbeddingsPath)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	logger.Info("Catalog loaded",
		zap.Int("products", store.Count()),
		zap.Int("dimensions", ix.Dimension()),
		zap.Int("categories", len(store.Categories())),
	)
	if cfg.Embedding.Dimensions != 0 && cfg.Embedding.Dimensions != ix.Dimension() {
		logger.Fatal("Embedding dimension mismatch between config and index",
			zap.Int("config", cfg.Embedding.Dimensions),
			zap.Int("index", ix.Dimension()),
		)
	}

	// Optional embedding cache. No addresses means no cache: the
	// pipeline works the same, just pays the provider on every query.
	ctx := context.Background()
	var cacheStore *dbRedis.Store
	if len(cfg.Cache.Addrs) > 0 {
		cacheStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cacheStore.Close()

		if err := cacheStore.WaitForReady(ctx, 30*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Embedder chain: OpenAI -> Cached
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	var embedder domain.Embedder = baseEmbedder
	if cacheStore != nil {
		embedder = embcache.New(
			baseEmbedder, cacheStore,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.EmbeddingCacheTotal, logger,
		)
	}
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cached", cacheStore != nil),
	)

	// Explanation text generation is opt-in; without it the explainer
	// still produces highlights and template sentences.
	var generator explain.TextGenerator
	if cfg.Explanation.Enabled {
		generator = openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			APIKey:  cfg.Explanation.APIKey,
			BaseURL: cfg.Explanation.BaseURL,
			Model:   cfg.Explanation.Model,
			Logger:  logger,
		})
		logger.Info("Explanation generation enabled", zap.String("model", cfg.Explanation.Model))
	}
	explainSvc := explain.New(generator, explain.Config{
		Thresholds: explain.Thresholds{
			Semantic:   cfg.Explanation.Thresholds.Semantic,
			Rating:     cfg.Explanation.Thresholds.Rating,
			Price:      cfg.Explanation.Thresholds.Price,
			Popularity: cfg.Explanation.Thresholds.Popularity,
		},
		Timeout:       time.Duration(cfg.Explanation.TimeoutSec) * time.Second,
		MaxConcurrent: cfg.Explanation.MaxConcurrent,
		RatePerSec:    cfg.Explanation.RatePerSec,
	}, logger)

	// Create use case services
	searchSvc := rankinguc.New(embedder, ix, store, explainSvc, rankinguc.Config{
		PoolSize:    cfg.Retrieval.PoolSize,
		WidenFactor: cfg.Retrieval.WidenFactor,
		Weights:     cfg.RankingWeights(),
	}, logger)
	recommendSvc := recommend.New(ix, store, cfg.Complementary.Adjacency, logger)

	// Pass nil interface (not typed nil pointer!) if the cache is off.
	var cachePinger healthuc.CachePinger
	if cacheStore != nil {
		cachePinger = cacheStore
	}
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(baseEmbedder), cachePinger)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, recommendSvc, store, healthSvc,
		chiTransport.Limits{
			Default: cfg.Retrieval.DefaultLimit,
			Max:     cfg.Retrieval.MaxLimit,
		}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

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

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
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

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
