package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tutor-llm/internal/config"
	apihttp "tutor-llm/internal/http"
	"tutor-llm/internal/llm"
	"tutor-llm/internal/repository"
	"tutor-llm/internal/service"
	"tutor-llm/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, err := telemetry.NewLogger(cfg.LogFile)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.TraceFile)
	if err != nil {
		logger.Fatal("telemetry init", zap.Error(err))
	}
	defer func() {
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctxShutdown); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	if cfg.LLMAPIKey == "" {
		logger.Warn("upstream api key not configured")
	}

	var conversations repository.ConversationRepository = repository.NewMemoryConversationRepository()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory conversations", zap.Error(err))
			_ = redisClient.Close()
		} else {
			conversations = repository.NewRedisConversationRepository(redisClient)
			defer redisClient.Close()
		}
		cancel()
	}

	llmClient := llm.NewHTTPClient(llm.Options{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Referer: cfg.AppReferer,
		Title:   cfg.AppTitle,
	}, logger)
	chatSvc := service.NewChatService(llmClient, conversations, service.ChatSettings{
		Model:       cfg.ChatModel,
		Temperature: cfg.ChatTemperature,
	}, logger)
	imageSvc := service.NewImageService(llmClient, service.ImageSettings{
		Model: cfg.ImageModel,
		Size:  cfg.ImageSize,
	}, logger)

	chatHandler := apihttp.NewChatHandler(logger, chatSvc)
	imageHandler := apihttp.NewImageHandler(logger, imageSvc)
	router, err := apihttp.NewRouter(logger, chatHandler, imageHandler)
	if err != nil {
		logger.Fatal("router setup", zap.Error(err))
	}

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
