package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/bytes"
	"go.uber.org/zap"
)

// Transcription echo backends
const (
	EchoOff    = "off"
	EchoGoogle = "google"
	EchoMock   = "mock"
)

// Config holds the relay settings
type Config struct {
	Port                 string
	GeminiAPIKey         string
	GeminiModel          string
	GeminiBaseURL        string
	GeminiTimeoutSeconds int
	GeminiMock           bool
	SessionSecret        string
	TranscriptionEcho    string
	BodyLimit            string
	LogLevel             string
}

// Load reads .env when present, then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads the environment only
func FromEnv() (*Config, error) {
	timeout, err := strconv.Atoi(getEnv("GEMINI_TIMEOUT_SECONDS", "60"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("GEMINI_TIMEOUT_SECONDS must be a positive integer")
	}

	mock, err := strconv.ParseBool(getEnv("GEMINI_MOCK", "false"))
	if err != nil {
		return nil, fmt.Errorf("GEMINI_MOCK: %w", err)
	}

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:        getEnv("GEMINI_BASE_URL", ""),
		GeminiTimeoutSeconds: timeout,
		GeminiMock:           mock,
		SessionSecret:        getEnv("SESSION_SECRET", ""),
		TranscriptionEcho:    strings.ToLower(getEnv("TRANSCRIPTION_ECHO", EchoOff)),
		BodyLimit:            getEnv("BODY_LIMIT", "25M"),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	switch cfg.TranscriptionEcho {
	case EchoOff, EchoGoogle, EchoMock:
	default:
		return nil, fmt.Errorf("TRANSCRIPTION_ECHO must be off, google or mock, got %q", cfg.TranscriptionEcho)
	}
	if _, err := bytes.Parse(cfg.BodyLimit); err != nil {
		return nil, fmt.Errorf("BODY_LIMIT: %w", err)
	}

	return cfg, nil
}

// Logger builds the process logger. LOG_LEVEL=debug switches to the
// development config.
func (c *Config) Logger() (*zap.Logger, error) {
	if c.LogLevel == "debug" {
		return zap.NewDevelopment()
	}

	zc := zap.NewProductionConfig()
	if c.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(c.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		zc.Level = level
	}
	return zc.Build()
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}
