package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"greeting-cards/internal/cards"
	"greeting-cards/internal/config"
	"greeting-cards/internal/handlers"
	"greeting-cards/internal/middleware"
	"greeting-cards/internal/sharestore"
	"greeting-cards/internal/stats"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Configure logger
	logger, err := setupLogger(&cfg.Logger)
	if err != nil {
		fmt.Printf("Failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Greeting Card Server",
		zap.String("version", "1.0.0"),
		zap.String("address", cfg.Server.GetAddress()),
		zap.String("store_backend", cfg.Store.Backend),
	)

	if !cfg.Generation.Text.Configured() {
		logger.Warn("OPENAI_API_KEY not set, text generation will fail")
	}
	if !cfg.Generation.Image.Configured() {
		logger.Warn("HUGGINGFACE_TOKEN not set, image generation will fail")
	}

	// Initialize the durable backend and the share store
	backend, err := setupBackend(&cfg.Store, logger)
	if err != nil {
		logger.Fatal("Failed to initialize durable storage", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := sharestore.NewShareStore(ctx, backend, logger, sharestore.WithTTL(cfg.Store.TTL))
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize share store", zap.Error(err))
	}
	defer store.Close()

	// Usage statistics
	recorder, err := stats.NewFileRecorder(cfg.Store.StatsPath, logger)
	if err != nil {
		logger.Fatal("Failed to initialize usage stats", zap.Error(err))
	}

	// Generation collaborators and the facade
	textGen := cards.NewChatTextGenerator(cfg.Generation.Text, logger)
	imageGen := cards.NewInferenceImageGenerator(cfg.Generation.Image, logger)
	service := cards.NewService(store, textGen, imageGen, recorder, cfg.Server.ShareBaseURL, logger)

	// Configure Gin
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()

	// Middlewares
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	// Routes
	cardHandler := handlers.NewCardHandler(service,
		cfg.Generation.Text.Configured(),
		cfg.Generation.Image.Configured(),
		logger)
	handlers.RegisterRoutes(router, cardHandler)

	// Configure HTTP server
	server := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// setupBackend picks the durable storage implementation from config.
func setupBackend(cfg *config.StoreConfig, logger *zap.Logger) (sharestore.Backend, error) {
	switch cfg.Backend {
	case "redis":
		return sharestore.NewRedisBackend(&cfg.Redis, logger)
	default:
		return sharestore.NewFileBackend(cfg.FilePath, logger)
	}
}

// setupLogger configures the logger according to the configuration
func setupLogger(cfg *config.LoggerConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: cfg.Format,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{cfg.OutputPath},
		ErrorOutputPaths: []string{cfg.OutputPath},
	}

	return zapConfig.Build()
}
