package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/domain"
	"github.com/vibeflow/vibeflow/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. A generate frame carries the
	// whole clip and possibly a screenshot.
	maxMessageSize = 32 << 20

	// Generate frames one client may have in flight at once.
	maxInFlight = 4
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Generator answers one generate request
type Generator interface {
	Generate(ctx context.Context, req domain.GenerateRequest, apiKey string) (*domain.GenerateResponse, error)
}

// Hub maintains the set of connected clients
type Hub struct {
	// Registered clients.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	generator Generator
	validator *MessageValidator

	// closed when Run returns
	done chan struct{}

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(generator Generator, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		generator:  generator,
		validator:  NewMessageValidator(),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's main loop. It returns when ctx is done, after
// disconnecting every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.clientID]; ok {
				// same token reconnected; the old socket is dropped
				old.cancel()
			}
			h.clients[client.clientID] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("clientID", client.clientID))

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.clientID]; ok && current == client {
				delete(h.clients, client.clientID)
			}
			h.mu.Unlock()
			client.cancel()
			h.logger.Info("Client unregistered", zap.String("clientID", client.clientID))

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				client.cancel()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	clientID string
	logger   *zap.Logger

	// ctx ends when the connection does; in-flight generations are cancelled with it
	ctx    context.Context
	cancel context.CancelFunc

	inFlight chan struct{}
}

// HandleWebSocket upgrades the request and serves generate frames for
// clientID. Anonymous connections get a fresh id.
func HandleWebSocket(hub *Hub, c echo.Context, clientID string, logger *zap.Logger) error {
	if clientID == "" {
		clientID = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan WriteData, 256),
		clientID: clientID,
		logger:   logger.With(zap.String("clientID", clientID)),
		ctx:      ctx,
		cancel:   cancel,
		inFlight: make(chan struct{}, maxInFlight),
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		cancel()
		conn.Close()
		return nil
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps frames from the websocket connection to the generator.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
			c.cancel()
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		default:
			c.logger.Warn("Received unsupported message type", zap.Int("type", messageType))
			c.reply(CreateErrorMessage("", ErrorCodeUnsupported, "Only text frames are supported"))
		}
	}
}

// writePump pumps messages from the send channel to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				c.cancel()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) processMessage(message []byte) {
	parsed, err := c.hub.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Rejected message", zap.Error(err))
		c.reply(CreateErrorMessage(requestIDOf(message), ErrorCodeInvalidMessage, err.Error()))
		return
	}

	switch msg := parsed.(type) {
	case *PingMessage:
		c.reply(CreatePongMessage(msg.Data))
	case *GenerateMessage:
		select {
		case c.inFlight <- struct{}{}:
		default:
			c.reply(CreateErrorMessage(msg.RequestID, ErrorCodeBusy, "Too many requests in flight"))
			return
		}
		go func() {
			defer func() { <-c.inFlight }()
			c.handleGenerate(msg)
		}()
	}
}

func (c *Client) handleGenerate(msg *GenerateMessage) {
	start := time.Now()
	req := *msg.Payload
	if req.RequestID == "" {
		req.RequestID = msg.RequestID
	}

	resp, err := c.hub.generator.Generate(c.ctx, req, msg.APIKey)
	if err != nil {
		if c.ctx.Err() != nil {
			// connection closed; nobody to answer
			return
		}
		resp = &domain.GenerateResponse{
			Success:   false,
			Error:     usecase.ErrorMessage(err),
			RequestID: req.RequestID,
		}
	}

	c.logger.Info("Generate frame answered",
		zap.String("request_id", msg.RequestID),
		zap.Bool("success", resp.Success),
		zap.Duration("elapsed", time.Since(start)))
	c.reply(CreateGenerateResult(msg.RequestID, resp))
}

// reply queues a frame for writing. Frames for a closed connection are dropped.
func (c *Client) reply(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal frame", zap.Error(err))
		return
	}

	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	case <-c.ctx.Done():
	}
}

// requestIDOf recovers the request id of a frame that failed validation
func requestIDOf(message []byte) string {
	var base BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		return ""
	}
	return base.RequestID
}
