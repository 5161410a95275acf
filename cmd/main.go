package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/adapters/llm"
	"github.com/vibeflow/vibeflow/adapters/stt"
	"github.com/vibeflow/vibeflow/domain/repositories"
	"github.com/vibeflow/vibeflow/internal/api"
	"github.com/vibeflow/vibeflow/internal/auth"
	"github.com/vibeflow/vibeflow/internal/config"
	"github.com/vibeflow/vibeflow/internal/websocket"
	"github.com/vibeflow/vibeflow/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("Invalid configuration", zap.Error(err))
	}

	// Initialize logger
	logger, err := cfg.Logger()
	if err != nil {
		zap.NewExample().Fatal("Failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize adapters
	model, modelName := newModel(cfg, logger)
	speechToText, closeSpeech := newSpeechToText(ctx, cfg, logger)
	defer closeSpeech()

	// Initialize usecase services
	generateService := usecase.NewGenerateService(model, speechToText, cfg.GeminiAPIKey, logger)
	translateService := usecase.NewTranslateService(model, generateService, logger)

	// Initialize WebSocket hub with the generate service
	hub := websocket.NewHub(generateService, logger)
	go hub.Run(ctx)

	issuer := auth.NewIssuer(cfg.SessionSecret, auth.DefaultSessionTTL)
	handler := api.NewHandler(generateService, translateService, hub, issuer, modelName, logger)
	e := api.NewServer(api.ServerConfig{BodyLimit: cfg.BodyLimit}, handler)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Relay started",
		zap.String("port", cfg.Port),
		zap.String("model", modelName),
		zap.String("transcription_echo", cfg.TranscriptionEcho),
		zap.Bool("server_key", cfg.GeminiAPIKey != ""),
		zap.Bool("sessions", issuer.Enabled()))

	<-ctx.Done()
	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newModel(cfg *config.Config, logger *zap.Logger) (repositories.GenerativeModel, string) {
	if cfg.GeminiMock {
		logger.Warn("GEMINI_MOCK is set; answers are canned")
		return llm.NewMockModel(logger, ""), "mock"
	}

	gemini, err := llm.NewGemini(llm.GeminiConfig{
		APIKey:         cfg.GeminiAPIKey,
		Model:          cfg.GeminiModel,
		BaseURL:        cfg.GeminiBaseURL,
		TimeoutSeconds: cfg.GeminiTimeoutSeconds,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to configure Gemini", zap.Error(err))
	}
	return gemini, gemini.Model()
}

// newSpeechToText returns nil when the transcription echo is off
func newSpeechToText(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.SpeechToText, func()) {
	switch cfg.TranscriptionEcho {
	case config.EchoGoogle:
		client, err := stt.NewGoogleSpeechToText(ctx, logger)
		if err != nil {
			logger.Fatal("Failed to create speech client", zap.Error(err))
		}
		return client, func() {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close speech client", zap.Error(err))
			}
		}
	case config.EchoMock:
		return stt.NewMockSpeechToText(logger, ""), func() {}
	default:
		return nil, func() {}
	}
}
