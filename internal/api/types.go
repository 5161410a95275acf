package api

import "time"

// SessionRequest asks for a relay session token
type SessionRequest struct {
	ClientID string `json:"client_id,omitempty"`
}

// SessionResponse represents the response payload for session issuance
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	ClientID  string    `json:"client_id"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Model   string `json:"model,omitempty"`
	Clients int    `json:"clients"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
