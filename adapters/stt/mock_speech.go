package stt

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/domain/repositories"
)

// MockSpeechToText is an offline transcriber for local runs and tests
type MockSpeechToText struct {
	logger     *zap.Logger
	transcript string
}

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(logger *zap.Logger, transcript string) *MockSpeechToText {
	return &MockSpeechToText{
		logger:     logger,
		transcript: transcript,
	}
}

// TranscribeAudio implements repositories.SpeechToText
func (s *MockSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	s.logger.Info("Processing speech-to-text",
		zap.Int("audioSize", len(audioData)),
		zap.String("encoding", config.Encoding),
		zap.String("language", config.Language))

	if len(audioData) == 0 {
		return "", fmt.Errorf("no audio data received")
	}
	if s.transcript != "" {
		return s.transcript, nil
	}
	return fmt.Sprintf("[%d bytes of %s audio]", len(audioData), config.Encoding), nil
}
