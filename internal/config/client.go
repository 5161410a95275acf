package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/domain/entities"
)

// Client store backends
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// ClientConfig holds the dictation client settings
type ClientConfig struct {
	RelayURL   string
	Direct     bool
	Store      string
	DBPath     string
	MongoURI   string
	MongoDB    string
	Mode       entities.Mode
	ReplyStyle entities.ReplyStyle
	AudioFile  string
	Screenshot string
	Notify     bool
	LogFile    string
	LogLevel   string

	// direct mode only
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
}

// LoadClient reads .env when present, then parses args over VIBEFLOW_*
// environment defaults
func LoadClient(args []string) (*ClientConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return ParseClient(args, os.Stderr)
}

// ParseClient parses args over the environment. Usage goes to output; -h
// returns flag.ErrHelp after printing it.
func ParseClient(args []string, output io.Writer) (*ClientConfig, error) {
	cfg := &ClientConfig{
		MongoURI:      getEnv("MONGODB_URI", ""),
		MongoDB:       getEnv("MONGODB_DATABASE", "vibeflow"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", ""),
	}

	direct, err := strconv.ParseBool(getEnv("VIBEFLOW_DIRECT", "false"))
	if err != nil {
		return nil, fmt.Errorf("VIBEFLOW_DIRECT: %w", err)
	}
	notify, err := strconv.ParseBool(getEnv("VIBEFLOW_NOTIFY", "true"))
	if err != nil {
		return nil, fmt.Errorf("VIBEFLOW_NOTIFY: %w", err)
	}

	var mode, style string
	fset := flag.NewFlagSet("dictate", flag.ContinueOnError)
	fset.SetOutput(output)
	fset.StringVar(&cfg.RelayURL, "relay", getEnv("VIBEFLOW_RELAY", "http://localhost:8080"), "relay base URL")
	fset.BoolVar(&cfg.Direct, "direct", direct, "call Gemini in-process instead of the relay")
	fset.StringVar(&cfg.Store, "store", getEnv("VIBEFLOW_STORE", StoreSQLite), "settings and history store: memory, sqlite or mongo")
	fset.StringVar(&cfg.DBPath, "db", getEnv("VIBEFLOW_DB", ""), "sqlite database path (default in the user config dir)")
	fset.StringVar(&mode, "mode", getEnv("VIBEFLOW_MODE", string(entities.ModeText)), "initial mode: text, email, command, social or translate")
	fset.StringVar(&style, "style", getEnv("VIBEFLOW_STYLE", string(entities.StyleFriendly)), "initial reply style for social mode")
	fset.StringVar(&cfg.AudioFile, "file", getEnv("VIBEFLOW_FILE", ""), "send this audio file instead of recording the microphone")
	fset.StringVar(&cfg.Screenshot, "screenshot", getEnv("VIBEFLOW_SCREENSHOT", ""), "image to attach in social mode")
	fset.BoolVar(&cfg.Notify, "notify", notify, "show a desktop notification for each result")
	fset.StringVar(&cfg.LogFile, "log", getEnv("VIBEFLOW_LOG", ""), "log file (default in the user config dir)")
	fset.StringVar(&cfg.LogLevel, "log-level", getEnv("VIBEFLOW_LOG_LEVEL", "info"), "log level")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	if fset.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fset.Args(), " "))
	}

	cfg.Mode = entities.ParseMode(mode)
	cfg.ReplyStyle = parseStyle(style)
	cfg.Store = strings.ToLower(cfg.Store)

	switch cfg.Store {
	case StoreMemory, StoreSQLite:
	case StoreMongo:
		if cfg.MongoURI == "" {
			return nil, errors.New("MONGODB_URI is required for the mongo store")
		}
	default:
		return nil, fmt.Errorf("store must be memory, sqlite or mongo, got %q", cfg.Store)
	}
	if !cfg.Direct && cfg.RelayURL == "" {
		return nil, errors.New("a relay URL is required unless -direct is set")
	}

	return cfg, nil
}

// Dir returns <user config dir>/vibeflow, creating it
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(configDir, "vibeflow")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// Logger builds a file logger; the terminal belongs to the UI
func (c *ClientConfig) Logger() (*zap.Logger, error) {
	path := c.LogFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
		path = filepath.Join(dir, "dictate.log")
	}

	zc := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc.Level = level
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	return zc.Build()
}

func parseStyle(s string) entities.ReplyStyle {
	style := entities.ReplyStyle(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range entities.ReplyStyles {
		if style == known {
			return style
		}
	}
	return entities.StyleFriendly
}
