package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/adapters"
	"github.com/vibeflow/vibeflow/adapters/audio"
	"github.com/vibeflow/vibeflow/adapters/desktop"
	"github.com/vibeflow/vibeflow/adapters/llm"
	"github.com/vibeflow/vibeflow/adapters/mongo"
	"github.com/vibeflow/vibeflow/adapters/sqlite"
	"github.com/vibeflow/vibeflow/domain/repositories"
	"github.com/vibeflow/vibeflow/internal/config"
	"github.com/vibeflow/vibeflow/internal/relayclient"
	"github.com/vibeflow/vibeflow/internal/sound"
	"github.com/vibeflow/vibeflow/internal/ui"
	"github.com/vibeflow/vibeflow/usecase"
)

const relayTimeout = 90 * time.Second

func main() {
	if err := run(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "dictate:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient(os.Args[1:])
	if err != nil {
		return err
	}

	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	settingsService := usecase.NewSettingsService(store, logger)
	historyService := usecase.NewHistoryService(store, logger)

	settings, err := settingsService.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	cues := sound.NewPlayer(audio.NewSpeakerPlayer(), logger)
	defer cues.Close()
	cues.SetEnabled(settings.SoundEnabled)

	var capture repositories.AudioCapture
	if cfg.AudioFile != "" {
		capture = audio.NewFileCapture(cfg.AudioFile)
	} else {
		capture = audio.NewMicrophoneCapture(logger)
	}

	client, err := newBackend(cfg, logger)
	if err != nil {
		return err
	}

	dictation := usecase.NewDictationService(capture, client, historyService, cues, settings, logger)

	deps := ui.Deps{
		Dictation:  dictation,
		Translator: client,
		History:    historyService,
		Settings:   settingsService,
		Capture:    capture,
		Cues:       cues,
		Clipboard:  desktop.Clipboard{},
		Logger:     logger,
	}
	if cfg.Notify {
		deps.Notifier = desktop.NewNotifier("VibeFlow", logger)
	}

	logger.Info("Client started",
		zap.String("mode", string(cfg.Mode)),
		zap.String("store", cfg.Store),
		zap.Bool("direct", cfg.Direct),
		zap.String("relay", cfg.RelayURL))

	model := ui.NewModel(ctx, deps, ui.Options{
		Mode:       cfg.Mode,
		ReplyStyle: cfg.ReplyStyle,
		Screenshot: cfg.Screenshot,
	})
	if _, err := ui.NewProgram(model).Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("UI stopped", zap.Error(err))
		return err
	}

	logger.Info("Client exited")
	return nil
}

// backend is the relay or the in-process relay; both speak the same calls
type backend interface {
	usecase.Generator
	ui.Translator
}

func newBackend(cfg *config.ClientConfig, logger *zap.Logger) (backend, error) {
	if !cfg.Direct {
		return relayclient.New(cfg.RelayURL, relayTimeout, logger), nil
	}

	gemini, err := llm.NewGemini(llm.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("configure Gemini: %w", err)
	}
	generate := usecase.NewGenerateService(gemini, nil, cfg.GeminiAPIKey, logger)
	return relayclient.NewDirect(generate, usecase.NewTranslateService(gemini, generate, logger)), nil
}

func openStore(ctx context.Context, cfg *config.ClientConfig, logger *zap.Logger) (repositories.KeyValueStore, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		return adapters.NewMemoryStore(), func() {}, nil

	case config.StoreMongo:
		client, err := mongo.NewClient(ctx, mongo.Config{URI: cfg.MongoURI, Database: cfg.MongoDB}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to mongo: %w", err)
		}
		closeFn := func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Close(shutdownCtx); err != nil {
				logger.Warn("Failed to close mongo client", zap.Error(err))
			}
		}
		return mongo.NewKeyValueStore(client.Database, mongo.DefaultCollection), closeFn, nil

	default:
		path := cfg.DBPath
		if path == "" {
			var err error
			if path, err = sqlite.DefaultPath(); err != nil {
				return nil, nil, fmt.Errorf("database path: %w", err)
			}
		}
		db, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				logger.Warn("Failed to close database", zap.Error(err))
			}
		}
		return sqlite.NewStore(db), closeFn, nil
	}
}
