package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/vibeflow/vibeflow/domain/repositories"
)

const (
	defaultModel          = "gemini-2.0-flash"
	defaultTimeoutSeconds = 60
	defaultMaxAttempts    = 3

	// callers bring their own keys, so the client cache is bounded
	maxCachedClients = 64
)

// ErrNoAPIKey is returned when neither the request nor the server carries a key
var ErrNoAPIKey = errors.New("gemini api key is required")

// GeminiConfig holds configuration for the Gemini adapter
type GeminiConfig struct {
	// APIKey is the server default key, used when a request carries none
	APIKey         string
	Model          string
	BaseURL        string
	TimeoutSeconds int
	MaxAttempts    int
}

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be positive, got %d", config.TimeoutSeconds)
	}
	if config.MaxAttempts < 0 {
		return fmt.Errorf("max attempts must be positive, got %d", config.MaxAttempts)
	}
	return nil
}

// Gemini implements repositories.GenerativeModel on the Gemini API. One genai
// client is kept per API key.
type Gemini struct {
	logger  *zap.Logger
	config  GeminiConfig
	backoff func(attempt int) time.Duration

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewGemini creates the adapter, applying defaults where needed
func NewGemini(config GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.TimeoutSeconds == 0 {
		config.TimeoutSeconds = defaultTimeoutSeconds
	}
	if config.MaxAttempts == 0 {
		config.MaxAttempts = defaultMaxAttempts
	}

	logger.Info("Gemini adapter configured",
		zap.String("model", config.Model),
		zap.Int("timeout_seconds", config.TimeoutSeconds),
		zap.Bool("server_key", config.APIKey != ""))

	return &Gemini{
		logger: logger,
		config: config,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt+1) * time.Second
		},
		clients: make(map[string]*genai.Client),
	}, nil
}

// Model returns the configured model name
func (g *Gemini) Model() string {
	return g.config.Model
}

func (g *Gemini) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[apiKey]; ok {
		return c, nil
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: g.config.BaseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if len(g.clients) >= maxCachedClients {
		g.clients = make(map[string]*genai.Client)
	}
	g.clients[apiKey] = c
	return c, nil
}

// Generate sends one non-streaming generateContent call and returns the first
// non-thought text part of the first candidate.
func (g *Gemini) Generate(ctx context.Context, req repositories.GenerationRequest) (string, error) {
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = g.config.APIKey
	}
	if apiKey == "" {
		return "", ErrNoAPIKey
	}

	client, err := g.client(ctx, apiKey)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(req.Temperature),
		MaxOutputTokens:  req.MaxOutputTokens,
		ResponseMIMEType: req.ResponseMIMEType,
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	contents := []*genai.Content{genai.NewContentFromParts(toGeminiParts(req.Parts), genai.RoleUser)}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(g.config.TimeoutSeconds)*time.Second)
	defer cancel()

	var response *genai.GenerateContentResponse
	for attempt := 0; attempt < g.config.MaxAttempts; attempt++ {
		response, err = client.Models.GenerateContent(ctx, g.config.Model, contents, config)
		if err == nil {
			break
		}

		err = convertError(err)
		if !retryable(err) || attempt == g.config.MaxAttempts-1 {
			break
		}

		g.logger.Warn("Failed to generate content, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.backoff(attempt)):
		}
	}
	if err != nil {
		g.logger.Error("Failed to generate content", zap.Error(err))
		return "", err
	}

	text := firstText(response)
	if text == "" {
		g.logger.Warn("Empty response from model", zap.String("model", g.config.Model))
	}
	return text, nil
}

func toGeminiParts(parts []repositories.Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsInline() {
			out = append(out, genai.NewPartFromBytes(p.Data, p.MIMEType))
			continue
		}
		out = append(out, genai.NewPartFromText(p.Text))
	}
	return out
}

func firstText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 {
		return ""
	}
	content := response.Candidates[0].Content
	if content == nil {
		return ""
	}
	for _, part := range content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		return part.Text
	}
	return ""
}

// convertError turns genai API errors into repositories.ModelError
func convertError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &repositories.ModelError{StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &repositories.ModelError{StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message}
	}
	return fmt.Errorf("generate content: %w", err)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var modelErr *repositories.ModelError
	if errors.As(err, &modelErr) {
		return modelErr.Temporary()
	}
	return true
}
