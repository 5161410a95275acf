package llm

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/domain/repositories"
)

// MockModel is an offline GenerativeModel. It echoes a canned reply and keeps
// every request so tests can inspect what would have been sent.
type MockModel struct {
	logger *zap.Logger

	mu       sync.Mutex
	Reply    string
	Err      error
	requests []repositories.GenerationRequest
}

// NewMockModel creates a mock model answering reply
func NewMockModel(logger *zap.Logger, reply string) *MockModel {
	return &MockModel{logger: logger, Reply: reply}
}

// Generate implements repositories.GenerativeModel
func (m *MockModel) Generate(ctx context.Context, req repositories.GenerationRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	m.logger.Info("Mock generation",
		zap.Int("parts", len(req.Parts)),
		zap.Float32("temperature", req.Temperature))

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply != "" {
		return m.Reply, nil
	}

	// no canned reply: answer with the trailing instruction
	for i := len(req.Parts) - 1; i >= 0; i-- {
		if !req.Parts[i].IsInline() {
			return strings.TrimSpace(req.Parts[i].Text), nil
		}
	}
	return "", nil
}

// SetReply changes the canned reply
func (m *MockModel) SetReply(reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reply = reply
}

// SetErr makes every following call fail with err
func (m *MockModel) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// Requests returns a copy of the received requests
func (m *MockModel) Requests() []repositories.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repositories.GenerationRequest(nil), m.requests...)
}
