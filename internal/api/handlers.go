package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/domain"
	"github.com/vibeflow/vibeflow/domain/entities"
	"github.com/vibeflow/vibeflow/internal/auth"
	"github.com/vibeflow/vibeflow/internal/websocket"
	"github.com/vibeflow/vibeflow/usecase"
)

// HeaderAPIKey carries the caller's Gemini key
const HeaderAPIKey = "X-API-Key"

// Generator answers one generate request
type Generator interface {
	Generate(ctx context.Context, req domain.GenerateRequest, apiKey string) (*domain.GenerateResponse, error)
}

// Translator backs the translate panel
type Translator interface {
	TranslateText(ctx context.Context, req domain.TranslateRequest, apiKey string) (*entities.TranslationResult, error)
	TranslateReply(ctx context.Context, req domain.TranslateReplyRequest, apiKey string) (string, error)
}

// Handler serves the relay endpoints
type Handler struct {
	generator  Generator
	translator Translator
	hub        *websocket.Hub
	issuer     *auth.Issuer
	model      string
	logger     *zap.Logger
}

// NewHandler creates the relay handlers. issuer may be nil when sessions are disabled.
func NewHandler(
	generator Generator,
	translator Translator,
	hub *websocket.Hub,
	issuer *auth.Issuer,
	model string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		generator:  generator,
		translator: translator,
		hub:        hub,
		issuer:     issuer,
		model:      model,
		logger:     logger,
	}
}

func (h *Handler) health(c echo.Context) error {
	resp := HealthResponse{
		Status:  "ok",
		Service: "vibeflow-relay",
		Model:   h.model,
	}
	if h.hub != nil {
		resp.Clients = h.hub.ClientCount()
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) generate(c echo.Context) error {
	var req domain.GenerateRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Warn("Failed to bind generate request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, domain.GenerateResponse{Error: "Invalid request body"})
	}

	resp, err := h.generator.Generate(c.Request().Context(), req, apiKey(c))
	if err != nil {
		status, message := errorStatus(err, "Failed to generate response")
		if status >= http.StatusInternalServerError {
			h.logger.Error("Generate failed", zap.String("mode", req.Mode), zap.Error(err))
		}
		return c.JSON(status, domain.GenerateResponse{Error: message, RequestID: req.RequestID})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) translate(c echo.Context) error {
	var req domain.TranslateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.TranslateResponse{Error: "Invalid request body"})
	}

	result, err := h.translator.TranslateText(c.Request().Context(), req, apiKey(c))
	if err != nil {
		status, message := errorStatus(err, "Translation failed")
		return c.JSON(status, domain.TranslateResponse{Error: message})
	}
	return c.JSON(http.StatusOK, domain.TranslateResponse{
		Success:          true,
		Translation:      result.Translation,
		FromLanguageName: result.FromLanguageName,
		FromLanguageCode: result.FromLanguageCode,
	})
}

func (h *Handler) translateReply(c echo.Context) error {
	var req domain.TranslateReplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.TranslateReplyResponse{Error: "Invalid request body"})
	}

	reply, err := h.translator.TranslateReply(c.Request().Context(), req, apiKey(c))
	if err != nil {
		status, message := errorStatus(err, "Translation failed")
		return c.JSON(status, domain.TranslateReplyResponse{Error: message})
	}
	return c.JSON(http.StatusOK, domain.TranslateReplyResponse{Success: true, Result: reply})
}

func (h *Handler) session(c echo.Context) error {
	if h.issuer == nil || !h.issuer.Enabled() {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "sessions_disabled",
			Message: "The relay does not issue session tokens",
		})
	}

	var req SessionRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "Invalid request format",
			})
		}
	}

	token, claims, err := h.issuer.GenerateSessionToken(strings.TrimSpace(req.ClientID))
	if err != nil {
		h.logger.Error("Failed to generate session token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate session token",
		})
	}

	h.logger.Info("Session issued", zap.String("client_id", claims.ClientID))
	return c.JSON(http.StatusOK, SessionResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		ClientID:  claims.ClientID,
	})
}

func apiKey(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(HeaderAPIKey))
}

// errorStatus maps a use case error to its status code and the message shown to the caller
func errorStatus(err error, fallback string) (int, string) {
	var upstream *usecase.UpstreamError
	switch {
	case usecase.IsBadRequest(err):
		return http.StatusBadRequest, usecase.ErrorMessage(err)
	case errors.As(err, &upstream):
		return http.StatusInternalServerError, upstream.Message
	default:
		return http.StatusInternalServerError, fallback
	}
}
