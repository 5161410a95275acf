package config

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vibeflow/vibeflow/domain/entities"
)

func clearClientEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"VIBEFLOW_RELAY", "VIBEFLOW_DIRECT", "VIBEFLOW_STORE", "VIBEFLOW_DB",
		"VIBEFLOW_MODE", "VIBEFLOW_STYLE", "VIBEFLOW_FILE", "VIBEFLOW_SCREENSHOT", "VIBEFLOW_NOTIFY",
		"VIBEFLOW_LOG", "VIBEFLOW_LOG_LEVEL", "MONGODB_URI", "MONGODB_DATABASE", "GEMINI_API_KEY", "GEMINI_MODEL"} {
		t.Setenv(key, "")
	}
}

func TestParseClient_Defaults(t *testing.T) {
	clearClientEnv(t)

	cfg, err := ParseClient(nil, io.Discard)
	if err != nil {
		t.Fatalf("ParseClient() error = %v", err)
	}
	if cfg.RelayURL != "http://localhost:8080" || cfg.Direct {
		t.Errorf("relay = %q direct = %v", cfg.RelayURL, cfg.Direct)
	}
	if cfg.Store != StoreSQLite {
		t.Errorf("Store = %q", cfg.Store)
	}
	if cfg.Mode != entities.ModeText || cfg.ReplyStyle != entities.StyleFriendly {
		t.Errorf("mode = %q style = %q", cfg.Mode, cfg.ReplyStyle)
	}
	if !cfg.Notify {
		t.Error("Notify should default to true")
	}
	if cfg.MongoDB != "vibeflow" || cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestParseClient_FlagsOverrideEnv(t *testing.T) {
	clearClientEnv(t)
	t.Setenv("VIBEFLOW_MODE", "email")
	t.Setenv("VIBEFLOW_STORE", "memory")

	cfg, err := ParseClient([]string{"-mode", "Social", "-style", "witty", "-direct", "-notify=false", "-file", "clip.wav"}, io.Discard)
	if err != nil {
		t.Fatalf("ParseClient() error = %v", err)
	}
	if cfg.Mode != entities.ModeSocial {
		t.Errorf("Mode = %q", cfg.Mode)
	}
	if cfg.ReplyStyle != entities.StyleWitty {
		t.Errorf("ReplyStyle = %q", cfg.ReplyStyle)
	}
	if !cfg.Direct || cfg.Notify || cfg.AudioFile != "clip.wav" {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Store != StoreMemory {
		t.Errorf("Store = %q, want the env value", cfg.Store)
	}
}

func TestParseClient_UnknownValuesFallBack(t *testing.T) {
	clearClientEnv(t)

	cfg, err := ParseClient([]string{"-mode", "poetry", "-style", "grumpy"}, io.Discard)
	if err != nil {
		t.Fatalf("ParseClient() error = %v", err)
	}
	if cfg.Mode != entities.ModeText || cfg.ReplyStyle != entities.StyleFriendly {
		t.Errorf("mode = %q style = %q", cfg.Mode, cfg.ReplyStyle)
	}
}

func TestParseClient_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{name: "unknown store", args: []string{"-store", "redis"}},
		{name: "mongo without uri", args: []string{"-store", "mongo"}},
		{name: "empty relay", args: []string{"-relay", ""}},
		{name: "bad direct env", env: map[string]string{"VIBEFLOW_DIRECT": "maybe"}},
		{name: "unknown flag", args: []string{"-verbose"}},
		{name: "stray argument", args: []string{"extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearClientEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseClient(tt.args, io.Discard); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseClient_HelpPrintsUsage(t *testing.T) {
	clearClientEnv(t)

	var out bytes.Buffer
	_, err := ParseClient([]string{"-h"}, &out)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("Expected flag.ErrHelp, got %v", err)
	}
	for _, name := range []string{"-relay", "-store", "-mode", "-notify"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("usage does not mention %s:\n%s", name, out.String())
		}
	}
}

func TestParseClient_MongoStore(t *testing.T) {
	clearClientEnv(t)
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	cfg, err := ParseClient([]string{"-store", "MONGO"}, io.Discard)
	if err != nil {
		t.Fatalf("ParseClient() error = %v", err)
	}
	if cfg.Store != StoreMongo || cfg.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestClientConfig_Logger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dictate.log")
	cfg := &ClientConfig{LogFile: path, LogLevel: "debug"}

	logger, err := cfg.Logger()
	if err != nil {
		t.Fatalf("Logger() error = %v", err)
	}
	logger.Debug("hello")
	_ = logger.Sync()

	cfg.LogLevel = "loud"
	if _, err := cfg.Logger(); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
