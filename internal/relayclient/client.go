// Package relayclient calls a VibeFlow relay over HTTP.
package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/domain"
	"github.com/vibeflow/vibeflow/domain/entities"
)

// DefaultTimeout leaves room for the relay's own upstream timeout
const DefaultTimeout = 90 * time.Second

// maxErrorBody bounds how much of a failed response is read
const maxErrorBody = 64 << 10

// RelayError is a non-OK answer from the relay. Message is the relay's own
// error text when it sent one.
type RelayError struct {
	StatusCode int
	Message    string
}

func (e *RelayError) Error() string {
	return e.Message
}

// Client talks to one relay
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client for the relay at baseURL
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Generate posts one generate request
func (c *Client) Generate(ctx context.Context, req domain.GenerateRequest, apiKey string) (*domain.GenerateResponse, error) {
	var resp domain.GenerateResponse
	if err := c.post(ctx, "/api/generate", req, apiKey, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TranslateText posts typed text to the translate endpoint
func (c *Client) TranslateText(ctx context.Context, req domain.TranslateRequest, apiKey string) (*entities.TranslationResult, error) {
	var resp domain.TranslateResponse
	if err := c.post(ctx, "/api/translate", req, apiKey, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &RelayError{StatusCode: http.StatusOK, Message: orDefault(resp.Error, "Translation failed")}
	}
	return &entities.TranslationResult{
		Translation:      resp.Translation,
		FromLanguageName: resp.FromLanguageName,
		FromLanguageCode: resp.FromLanguageCode,
	}, nil
}

// TranslateReply posts a spoken reply for translation
func (c *Client) TranslateReply(ctx context.Context, req domain.TranslateReplyRequest, apiKey string) (string, error) {
	var resp domain.TranslateReplyResponse
	if err := c.post(ctx, "/api/translate/reply", req, apiKey, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", &RelayError{StatusCode: http.StatusOK, Message: orDefault(resp.Error, "Translation failed")}
	}
	return resp.Result, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, apiKey string, out interface{}) error {
	requestBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("X-API-Key", apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to reach relay: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Relay call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return relayError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode relay response: %w", err)
	}
	return nil
}

// relayError prefers the error field of the body over the bare status
func relayError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return &RelayError{StatusCode: resp.StatusCode, Message: body.Error}
		}
		if body.Message != "" {
			return &RelayError{StatusCode: resp.StatusCode, Message: body.Message}
		}
	}
	return &RelayError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("HTTP error %d", resp.StatusCode)}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
