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

	cachememory "github.com/hsnnrn/hasandocai-sub002/internal/cache/memory"
	cacheredis "github.com/hsnnrn/hasandocai-sub002/internal/cache/redis"
	"github.com/hsnnrn/hasandocai-sub002/internal/config"
	"github.com/hsnnrn/hasandocai-sub002/internal/engine"
	logpkg "github.com/hsnnrn/hasandocai-sub002/internal/logger"
	"github.com/hsnnrn/hasandocai-sub002/internal/metrics"
	chiTransport "github.com/hsnnrn/hasandocai-sub002/internal/transport/chi"
	openaiEmb "github.com/hsnnrn/hasandocai-sub002/internal/transport/openai"
	healthuc "github.com/hsnnrn/hasandocai-sub002/internal/usecase/health"
	"github.com/hsnnrn/hasandocai-sub002/internal/usecase/retrieve"
	semanticuc "github.com/hsnnrn/hasandocai-sub002/internal/usecase/semantic"
	"github.com/hsnnrn/hasandocai-sub002/internal/version"
)

// maxRequestBytes bounds request bodies; document uploads are sectioned text,
// not raw files.
const maxRequestBytes = 10 << 20

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docai retrieval server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEngineMetrics()
	metrics.RegisterEmbeddingMetrics()

	// Result cache backend
	var (
		resultCache engine.ResultCache
		cachePinger healthuc.CachePinger
	)
	switch cfg.Cache.Backend {
	case "redis":
		redisCache, err := cacheredis.New(cacheredis.Config{
			Addrs:     cfg.Cache.Addrs,
			Password:  cfg.Cache.Password,
			KeyPrefix: cfg.Cache.KeyPrefix,
			TTL:       time.Duration(cfg.Cache.TTLSec) * time.Second,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create redis result cache", zap.Error(err))
		}
		defer redisCache.Close()
		resultCache = redisCache
		cachePinger = redisCache
	case "memory":
		resultCache = cachememory.New(cfg.Cache.Capacity, time.Duration(cfg.Cache.TTLSec)*time.Second)
	default:
		logger.Fatal("Unknown cache backend", zap.String("backend", cfg.Cache.Backend))
	}
	logger.Info("Result cache ready", zap.String("backend", cfg.Cache.Backend))

	// Optional embedding side path. Empty api_key leaves the retriever
	// purely lexical.
	// Pass nil interface (not typed nil pointer!) when disabled.
	var (
		sem        retrieve.SemanticScorer
		embChecker healthuc.EmbeddingChecker
	)
	if cfg.Embedding.APIKey != "" {
		embedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})
		sem = semanticuc.New(embedder, logger)
		embChecker = embedder
		logger.Info("Semantic side path enabled",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
		)
	}

	// Engine
	engCfg := engine.DefaultConfig()
	applyRetrievalConfig(&engCfg.Retrieval, cfg.Retrieval)
	eng := engine.New(engCfg, resultCache, sem, logger)

	// Health service
	healthSvc := healthuc.New(cachePinger, embChecker)

	// Create chi server
	server := chiTransport.NewServer(eng, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RequestSize(maxRequestBytes))
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

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

// applyRetrievalConfig overrides tuned defaults with the values set in the
// config file. Zero values keep the defaults.
func applyRetrievalConfig(dst *retrieve.Config, src config.RetrievalConfig) {
	if src.MaxRefs > 0 {
		dst.MaxRefs = src.MaxRefs
	}
	if src.MinScore > 0 {
		dst.MinScore = src.MinScore
	}
	if src.KeywordWeight > 0 {
		dst.KeywordWeight = src.KeywordWeight
	}
	if src.BM25Weight > 0 {
		dst.BM25Weight = src.BM25Weight
	}
	if src.FilenameFloor > 0 {
		dst.FilenameFloor = src.FilenameFloor
	}
	if src.PartialMatchCap > 0 {
		dst.PartialMatchCap = src.PartialMatchCap
	}
	if src.DiversityCap > 0 {
		dst.DiversityCap = src.DiversityCap
	}
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

			// Canonical log line, one line per request
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
