package repositories

import (
	"context"
	"fmt"
)

// GenerativeModel abstracts the hosted multimodal generation API
type GenerativeModel interface {
	// Generate sends the system instruction and ordered parts and returns the reply text
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// GenerationRequest is one model call
type GenerationRequest struct {
	APIKey            string
	SystemInstruction string
	Parts             []Part
	Temperature       float32
	MaxOutputTokens   int32
	// ResponseMIMEType asks the model for structured output, e.g. application/json
	ResponseMIMEType string
}

// Part is one ordered content part: either text or inline binary data
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// TextPart creates a text part
func TextPart(text string) Part {
	return Part{Text: text}
}

// InlinePart creates an inline data part
func InlinePart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// IsInline reports whether the part carries binary data
func (p Part) IsInline() bool {
	return p.Data != nil
}

// ModelError is a non-success answer of the generation API
type ModelError struct {
	StatusCode int
	Message    string
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model returned %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether the call may succeed when repeated
func (e *ModelError) Temporary() bool {
	return e.StatusCode >= 500
}
