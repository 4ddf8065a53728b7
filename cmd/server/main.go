package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agency-backend/internal/config"
	"agency-backend/internal/database"
	"agency-backend/internal/handlers"
	"agency-backend/internal/logger"
	"agency-backend/internal/middleware"
	"agency-backend/internal/monitoring"
	"agency-backend/internal/router"
	"agency-backend/internal/services"
)

func main() {
	// ──── Step 1: Load Configuration ────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("✗ Configuration failed: %v", err)
	}

	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		log.Fatalf("✗ Logger initialization failed: %v", err)
	}
	defer logger.Sync()

	cfg.ResolveAPIKey()

	logger.Log.Infow("starting agency backend", "env", cfg.Env, "port", cfg.Port)

	// ──── Step 2: Gemini Client ────
	gemini := services.NewGeminiService(cfg.GeminiAPIKey, services.GeminiOptions{
		BaseURL: cfg.GeminiBaseURL,
	})
	if !gemini.HasAPIKey() {
		logger.Log.Warn("GEMINI_API_KEY is not configured; /relay will answer missing_api_key")
	} else {
		logger.Log.Infow("gemini client ready", "model", services.DefaultGeminiModel)
	}

	// ──── Step 3: Rate Limiter ────
	var limiter middleware.Limiter
	var closers []func()
	if cfg.RateLimitEnabled {
		if cfg.RedisURL != "" {
			redisClient, err := database.NewRedisClient(cfg.RedisURL)
			if err != nil {
				logger.Log.Fatalw("redis connection failed", "error", err)
			}
			closers = append(closers, func() { redisClient.Close() })
			limiter = middleware.NewRedisLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute)
			logger.Log.Infow("rate limiting via redis", "per_minute", cfg.RateLimitPerMinute)
		} else {
			local := middleware.NewLocalLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, 10*time.Minute)
			closers = append(closers, local.Close)
			limiter = local
			logger.Log.Infow("rate limiting in process",
				"per_minute", cfg.RateLimitPerMinute, "burst", cfg.RateLimitBurst)
		}
	}

	// ──── Step 4: HTTP Server ────
	metrics := monitoring.NewMetrics()
	relayHandler := handlers.NewRelayHandler(gemini, metrics)

	r := router.New(relayHandler, metrics, router.Options{
		Limiter:   limiter,
		StaticDir: cfg.StaticDir,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: services.DefaultGeminiTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Log.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Log.Errorw("shutdown incomplete", "error", err)
		}
	}()

	logger.Log.Infof("✓ Agency backend ready on http://localhost:%s", cfg.Port)
	logger.Log.Infof("  Relay: http://localhost:%s/relay", cfg.Port)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatalw("server error", "error", err)
	}
	<-shutdownDone

	for _, c := range closers {
		c()
	}
}
