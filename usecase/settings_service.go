package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/domain/entities"
	"github.com/vibeflow/vibeflow/domain/repositories"
)

// Storage keys shared by every client
const (
	KeyAPIKey   = "vibeflow-apikey"
	KeyLanguage = "vibeflow-language"
	KeySound    = "vibeflow-sound"
	KeyClarify  = "vibeflow-clarify"
	KeyHistory  = "vibeflow-history"
)

// SettingsService reads the settings once at startup and writes them only on an explicit save
type SettingsService struct {
	store  repositories.KeyValueStore
	logger *zap.Logger
}

// NewSettingsService creates a settings service
func NewSettingsService(store repositories.KeyValueStore, logger *zap.Logger) *SettingsService {
	return &SettingsService{store: store, logger: logger}
}

// Load returns the persisted settings, with defaults for anything missing
func (s *SettingsService) Load(ctx context.Context) (entities.Settings, error) {
	settings := entities.DefaultSettings()

	apiKey, err := s.get(ctx, KeyAPIKey)
	if err != nil {
		return settings, err
	}
	settings.APIKey = apiKey

	lang, err := s.get(ctx, KeyLanguage)
	if err != nil {
		return settings, err
	}
	if lang != "" {
		settings.OutputLanguage = entities.ParseOutputLanguage(lang)
	}

	sound, err := s.get(ctx, KeySound)
	if err != nil {
		return settings, err
	}
	if sound != "" {
		settings.SoundEnabled = parseBool(sound, true)
	}

	clarify, err := s.get(ctx, KeyClarify)
	if err != nil {
		return settings, err
	}
	settings.ClarifyText = parseBool(clarify, false)

	return settings, nil
}

// Save persists every field. An empty key removes the stored one.
func (s *SettingsService) Save(ctx context.Context, settings entities.Settings) error {
	apiKey := strings.TrimSpace(settings.APIKey)
	if apiKey == "" {
		if err := s.store.Delete(ctx, KeyAPIKey); err != nil {
			return fmt.Errorf("failed to delete api key: %w", err)
		}
	} else if err := s.store.Set(ctx, KeyAPIKey, apiKey); err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}

	values := map[string]string{
		KeyLanguage: string(entities.ParseOutputLanguage(string(settings.OutputLanguage))),
		KeySound:    strconv.FormatBool(settings.SoundEnabled),
		KeyClarify:  strconv.FormatBool(settings.ClarifyText),
	}
	for key, value := range values {
		if err := s.store.Set(ctx, key, value); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}

	s.logger.Info("Settings saved",
		zap.String("language", values[KeyLanguage]),
		zap.Bool("sound", settings.SoundEnabled),
		zap.Bool("clarify", settings.ClarifyText),
		zap.Bool("api_key", apiKey != ""))
	return nil
}

func (s *SettingsService) get(ctx context.Context, key string) (string, error) {
	value, err := s.store.Get(ctx, key)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return b
}
