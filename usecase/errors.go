package usecase

import (
	"errors"
	"fmt"

	"github.com/vibeflow/vibeflow/domain/repositories"
)

var (
	ErrMissingAudio  = errors.New("Audio is required")
	ErrMissingAPIKey = errors.New("API key required. Please set your Gemini API key in Settings.")
	ErrInvalidAudio  = errors.New("Audio must be base64 encoded")
	ErrInvalidImage  = errors.New("Screenshot must be a base64 encoded image")
	ErrMissingText   = errors.New("Text is required")
	ErrMissingTarget = errors.New("Target language is required")
)

const genericUpstreamMessage = "Failed to generate response"

// UpstreamError is a failed model call. Message is safe to show to the caller.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// upstreamError keeps the model's own message when it sent one
func upstreamError(err error) *UpstreamError {
	var modelErr *repositories.ModelError
	if errors.As(err, &modelErr) && modelErr.Message != "" {
		return &UpstreamError{Message: modelErr.Message, Err: err}
	}
	return &UpstreamError{Message: genericUpstreamMessage, Err: err}
}

// IsBadRequest reports whether err is caused by the caller's input
func IsBadRequest(err error) bool {
	for _, target := range []error{ErrMissingAudio, ErrMissingAPIKey, ErrInvalidAudio, ErrInvalidImage, ErrMissingText, ErrMissingTarget} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
