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

	"github.com/kailas-cloud/barcodex/internal/config"
	dbRedis "github.com/kailas-cloud/barcodex/internal/db/redis"
	"github.com/kailas-cloud/barcodex/internal/domain/render"
	logpkg "github.com/kailas-cloud/barcodex/internal/logger"
	"github.com/kailas-cloud/barcodex/internal/metrics"
	"github.com/kailas-cloud/barcodex/internal/repository/previewcache"
	chiTransport "github.com/kailas-cloud/barcodex/internal/transport/chi"
	"github.com/kailas-cloud/barcodex/internal/transport/linear"
	"github.com/kailas-cloud/barcodex/internal/transport/symbol"
	"github.com/kailas-cloud/barcodex/internal/usecase/archive"
	batchuc "github.com/kailas-cloud/barcodex/internal/usecase/batch"
	"github.com/kailas-cloud/barcodex/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/barcodex/internal/usecase/health"
	renderuc "github.com/kailas-cloud/barcodex/internal/usecase/render"
	"github.com/kailas-cloud/barcodex/internal/version"
)

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

	logger.Info("Starting barcodex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("work_dir", cfg.Batch.WorkDir),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	if err := os.MkdirAll(cfg.Batch.WorkDir, 0o750); err != nil {
		logger.Fatal("Failed to create work directory", zap.Error(err))
	}

	// Register render metrics explicitly (no init())
	metrics.RegisterRenderMetrics()

	// Rendering chain: primary symbol renderer, optional Code 128 fallback for PNG
	var fallback renderuc.FallbackRenderer
	if cfg.Render.FallbackEnabled() {
		fallback = linear.New()
	}
	primary := symbol.New()
	engine := renderuc.New(primary, primary, fallback)

	coordinator := batchuc.New(engine, cfg.Batch.WorkDir).WithConcurrency(cfg.Batch.Concurrency)
	generateSvc := generate.New(coordinator, archive.New(), engine, cfg.Batch.WorkDir).
		WithMaxCodes(cfg.Batch.MaxCodes)

	// Preview cache is optional. Pass a nil interface, not a typed nil pointer.
	var previewer render.Previewer = generateSvc
	var cachePinger healthuc.Pinger
	if cfg.Cache.Enabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		ctx := context.Background()
		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to preview cache", zap.Strings("addrs", cfg.Cache.Addrs))

		previewer = previewcache.New(
			generateSvc, store, cfg.Cache.KeyPrefix,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.PreviewCacheTotal, logger,
		)
		cachePinger = store
	}

	healthSvc := healthuc.New(cfg.Batch.WorkDir, cachePinger)

	defaults := render.Options{
		HeightMM: cfg.Render.DefaultHeightMM,
		WidthMM:  cfg.Render.DefaultWidthMM,
		Format:   render.Format(cfg.Render.DefaultFormat),
	}
	server := chiTransport.NewServer(generateSvc, previewer, healthSvc, logger).
		WithDefaults(defaults).
		WithLimits(cfg.Batch.MaxCodes, cfg.HTTP.MaxBodyBytes)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
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
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{Error: "internal error"})
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

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
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
