package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"riskatlas-api/internal/config"
	"riskatlas-api/internal/database"
	"riskatlas-api/internal/handlers"
	"riskatlas-api/internal/knowledge"
	"riskatlas-api/internal/logger"
	"riskatlas-api/internal/metrics"
	"riskatlas-api/internal/middleware"
	"riskatlas-api/internal/router"
	"riskatlas-api/internal/services"
)

func main() {
	slog.SetDefault(logger.L)
	log.Println("🚀 Starting RiskAtlas chat relay...")

	// ──── Step 1: Load Configuration ────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("✗ Configuration invalid: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)
	log.Println("✓ Configuration loaded")

	// ──── Step 2: Build System Prompt ────
	kb, err := knowledge.Load(cfg.KnowledgeBasePath)
	if err != nil {
		log.Fatalf("✗ Knowledge base unavailable: %v", err)
	}
	systemPrompt := services.BuildSystemPrompt(kb)
	log.Printf("✓ System prompt ready (%d bytes of knowledge base)", len(kb))

	// ──── Step 3: Initialize LLM Client ────
	llmClient, closeLLM, err := services.NewLLMClient(context.Background(), cfg)
	if err != nil {
		log.Fatalf("✗ LLM client initialization failed: %v", err)
	}
	defer closeLLM()
	if llmClient == nil {
		logger.L.Warn("API key not set; chat requests will fail until it is configured", "provider", cfg.LLMProvider)
	} else {
		log.Printf("✓ %s client initialized (model %s)", cfg.LLMProvider, cfg.LLMModel)
	}

	// ──── Step 4: Metrics ────
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		log.Println("✓ Metrics enabled at /metrics")
	}

	// ──── Step 5: Rate Limiter ────
	var limiter middleware.Limiter
	if cfg.RateLimitPerMinute > 0 {
		if cfg.RedisURL != "" {
			rdb, err := database.NewRedisClient(cfg.RedisURL)
			if err != nil {
				log.Fatalf("✗ Redis connection failed: %v", err)
			}
			defer rdb.Close()
			limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimitPerMinute)
			log.Printf("✓ Redis rate limiter enabled (%d req/min per client)", cfg.RateLimitPerMinute)
		} else {
			ml := middleware.NewMemoryLimiter(cfg.RateLimitPerMinute, time.Minute)
			defer ml.Close()
			limiter = ml
			log.Printf("✓ In-memory rate limiter enabled (%d req/min per client)", cfg.RateLimitPerMinute)
		}
	}

	// ──── Step 6: Start HTTP Server ────
	chatHandler := handlers.NewChatHandler(llmClient, cfg, systemPrompt, m)
	healthHandler := handlers.NewHealthHandler(cfg)
	r := router.New(cfg, chatHandler, healthHandler, limiter, m)

	// No WriteTimeout: the reply waits on the upstream model.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ RiskAtlas chat relay ready on http://localhost:%s", cfg.Port)
	log.Printf("  Chat: POST http://localhost:%s/api/chat", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
