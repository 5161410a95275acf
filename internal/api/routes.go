package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/internal/auth"
	"github.com/vibeflow/vibeflow/internal/websocket"
)

// ServerConfig holds the HTTP-level settings of the relay
type ServerConfig struct {
	BodyLimit string
}

// NewServer creates the echo instance with the relay middleware and routes
func NewServer(cfg ServerConfig, h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(h.logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, HeaderAPIKey},
	}))
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	InitRoutes(e, h)
	return e
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, h *Handler) {
	// Health check
	e.GET("/health", h.health)

	// Any method reaches the handlers so the 405 body matches the other errors
	e.Any("/api/generate", postOnly(h.generate))
	e.Any("/api/translate", postOnly(h.translate))
	e.Any("/api/translate/reply", postOnly(h.translateReply))
	e.Any("/api/session", postOnly(h.session))

	// WebSocket endpoint, authenticated when a session secret is configured
	e.GET("/ws", h.websocketWithAuth)
}

// postOnly rejects everything but POST. OPTIONS never gets here; the CORS
// middleware answers preflights.
func postOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Method != http.MethodPost {
			return c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		}
		return next(c)
	}
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURIPath:   true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("path", v.URIPath),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("Request", fields...)
			return nil
		},
	})
}

// websocketWithAuth handles WebSocket connections. With a session secret the
// token comes from the Authorization header or, for browsers, the token query
// parameter.
func (h *Handler) websocketWithAuth(c echo.Context) error {
	if h.issuer == nil || !h.issuer.Enabled() {
		return websocket.HandleWebSocket(h.hub, c, "", h.logger)
	}

	token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if token == "" {
		token = c.QueryParam("token")
	}
	if token == "" {
		h.logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "Session token is required",
		})
	}

	claims, err := h.issuer.ValidateToken(token)
	if err != nil {
		h.logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired session token",
		})
	}

	if claims.Role != auth.RoleClient {
		h.logger.Warn("WebSocket connection rejected: invalid role", zap.String("role", claims.Role))
		return c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "invalid_role",
			Message: "Only client tokens may open a channel",
		})
	}

	h.logger.Info("WebSocket connection authenticated", zap.String("client_id", claims.ClientID))
	return websocket.HandleWebSocket(h.hub, c, claims.ClientID, h.logger)
}

func bearerToken(header string) string {
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
