package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vibeflow/vibeflow/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeGenerate       MessageType = "generate"
	MessageTypeGenerateResult MessageType = "generate_result"
	MessageTypePing           MessageType = "ping"
	MessageTypePong           MessageType = "pong"
	MessageTypeError          MessageType = "error"
)

// Error codes carried by error frames
const (
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeUnsupported    = "unsupported_type"
	ErrorCodeBusy           = "busy"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// GenerateMessage asks the relay for one generation
type GenerateMessage struct {
	BaseMessage
	APIKey  string                  `json:"api_key,omitempty"`
	Payload *domain.GenerateRequest `json:"payload"`
}

// GenerateResultMessage answers a GenerateMessage with the same request id
type GenerateResultMessage struct {
	BaseMessage
	Payload *domain.GenerateResponse `json:"payload"`
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// ErrorMessage reports a frame the relay could not act on
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage parses an incoming frame into its typed message
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeGenerate:
		var msg GenerateMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid generate message: %w", err)
		}
		if err := v.validateGenerate(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	case "":
		return nil, fmt.Errorf("message type is required")

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

// validateGenerate only checks the envelope; the payload is validated by the generate service
func (v *MessageValidator) validateGenerate(msg *GenerateMessage) error {
	if msg.RequestID == "" {
		return fmt.Errorf("request_id is required")
	}
	if msg.Payload == nil {
		return fmt.Errorf("payload is required")
	}
	return nil
}

// CreateGenerateResult wraps a response in a result frame. The payload echoes
// the frame's request id when the request carried none of its own.
func CreateGenerateResult(requestID string, resp *domain.GenerateResponse) *GenerateResultMessage {
	if resp.RequestID == "" {
		resp.RequestID = requestID
	}
	return &GenerateResultMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeGenerateResult,
			Timestamp: time.Now().Format(time.RFC3339),
			RequestID: requestID,
		},
		Payload: resp,
	}
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(requestID, code, message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeError,
			Timestamp: time.Now().Format(time.RFC3339),
			RequestID: requestID,
		},
		Code:    code,
		Message: message,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePong,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Data: data,
	}
}
