package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pagechat/internal/api"
	"pagechat/internal/config"
	"pagechat/internal/fetch"
	"pagechat/internal/provider"
	"pagechat/internal/service"
	"pagechat/internal/session"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Environment variables first, so PAGECHAT_* overrides from .env are
	// visible to viper
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// LLM provider serves both capabilities: embeddings and generation
	llm := provider.New(cfg.LLM)

	fetcher := fetch.New(cfg.Fetcher.Timeout, cfg.Fetcher.MaxBodyBytes, cfg.Fetcher.UserAgent)
	store := session.NewStore(cfg.Sessions.MaxSessions)

	chatService := service.NewChatService(cfg, store, fetcher, llm, llm, logger)

	// Setup router
	router := api.SetupRouter(chatService, api.RouterConfig{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RequestsPerHour:  cfg.RateLimit.RequestsPerHour,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting PageChat server",
			zap.String("address", cfg.Address()),
			zap.String("llm_base_url", cfg.LLM.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
