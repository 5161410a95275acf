package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/vibeflow/vibeflow/domain"
	"github.com/vibeflow/vibeflow/usecase"
)

// mockGenerator answers with the mode it was asked for
type mockGenerator struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.GenerateRequest, apiKey string) (*domain.GenerateResponse, error) {
	m.mu.Lock()
	m.keys = append(m.keys, apiKey)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	return &domain.GenerateResponse{
		Success:   true,
		Result:    "formatted " + req.Mode,
		RequestID: req.RequestID,
	}, nil
}

func (m *mockGenerator) apiKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keys...)
}

func setupTestServer(t *testing.T, gen Generator) (*Hub, string, context.CancelFunc) {
	t.Helper()
	logger := zaptest.NewLogger(t)

	hub := NewHub(gen, logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocket(hub, c, c.QueryParam("client"), logger)
	})

	server := httptest.NewServer(e)
	t.Cleanup(func() {
		cancel()
		server.Close()
	})

	return hub, "ws" + strings.TrimPrefix(server.URL, "http") + "/ws", cancel
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("WebSocket connection failed: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) map[string]interface{} {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var frame map[string]interface{}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("frame is not JSON: %v", err)
	}
	return frame
}

func TestHub_NewHub(t *testing.T) {
	hub := NewHub(&mockGenerator{}, zap.NewNop())

	if hub.clients == nil {
		t.Error("Hub clients map not initialized")
	}
	if hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels not initialized")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
}

func TestGenerateFrame(t *testing.T) {
	gen := &mockGenerator{}
	_, url, _ := setupTestServer(t, gen)
	ws := dial(t, url+"?client=c1")

	err := ws.WriteJSON(map[string]interface{}{
		"type":       "generate",
		"request_id": "req-1",
		"api_key":    "user-key",
		"payload":    map[string]interface{}{"audio": "SGVsbG8=", "mode": "email"},
	})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	frame := readFrame(t, ws)
	if frame["type"] != "generate_result" || frame["request_id"] != "req-1" {
		t.Fatalf("frame = %v", frame)
	}
	payload := frame["payload"].(map[string]interface{})
	if payload["success"] != true || payload["result"] != "formatted email" {
		t.Errorf("payload = %v", payload)
	}
	if payload["requestId"] != "req-1" {
		t.Errorf("payload requestId = %v, want the frame's request id", payload["requestId"])
	}
	if keys := gen.apiKeys(); len(keys) != 1 || keys[0] != "user-key" {
		t.Errorf("api keys = %v", keys)
	}
}

func TestGenerateFrame_Failure(t *testing.T) {
	_, url, _ := setupTestServer(t, &mockGenerator{err: usecase.ErrMissingAudio})
	ws := dial(t, url)

	ws.WriteJSON(map[string]interface{}{
		"type":       "generate",
		"request_id": "req-2",
		"payload":    map[string]interface{}{},
	})

	frame := readFrame(t, ws)
	payload := frame["payload"].(map[string]interface{})
	if payload["success"] != false || payload["error"] != "Audio is required" {
		t.Errorf("payload = %v", payload)
	}
	if payload["requestId"] != "req-2" {
		t.Errorf("payload requestId = %v", payload["requestId"])
	}
}

func TestPingPong(t *testing.T) {
	_, url, _ := setupTestServer(t, &mockGenerator{})
	ws := dial(t, url)

	ws.WriteJSON(map[string]interface{}{"type": "ping", "data": "hi"})

	frame := readFrame(t, ws)
	if frame["type"] != "pong" || frame["data"] != "hi" {
		t.Errorf("frame = %v", frame)
	}
}

func TestClientMessageProcessing_Rejections(t *testing.T) {
	_, url, _ := setupTestServer(t, &mockGenerator{})
	ws := dial(t, url)

	tests := []struct {
		name      string
		messageTy int
		message   string
		wantCode  string
		wantReqID interface{}
	}{
		{"invalid JSON", websocket.TextMessage, `{invalid`, ErrorCodeInvalidMessage, nil},
		{"missing payload", websocket.TextMessage, `{"type":"generate","request_id":"req-3"}`, ErrorCodeInvalidMessage, "req-3"},
		{"unknown type", websocket.TextMessage, `{"type":"listening_start"}`, ErrorCodeInvalidMessage, nil},
		{"binary frame", websocket.BinaryMessage, "\x00\x01", ErrorCodeUnsupported, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ws.WriteMessage(tt.messageTy, []byte(tt.message)); err != nil {
				t.Fatalf("write failed: %v", err)
			}
			frame := readFrame(t, ws)
			if frame["type"] != "error" || frame["error_code"] != tt.wantCode {
				t.Errorf("frame = %v", frame)
			}
			if frame["request_id"] != tt.wantReqID {
				t.Errorf("request_id = %v, want %v", frame["request_id"], tt.wantReqID)
			}
		})
	}
}

func TestConcurrentClientHandling(t *testing.T) {
	hub, url, _ := setupTestServer(t, &mockGenerator{})

	const numClients = 5
	conns := make([]*websocket.Conn, numClients)
	for i := range conns {
		conns[i] = dial(t, url)
	}

	var wg sync.WaitGroup
	for i, ws := range conns {
		wg.Add(1)
		go func(i int, ws *websocket.Conn) {
			defer wg.Done()
			reqID := "req-" + string(rune('a'+i))
			ws.WriteJSON(map[string]interface{}{
				"type":       "generate",
				"request_id": reqID,
				"payload":    map[string]interface{}{"audio": "SGVsbG8=", "mode": "text"},
			})
			ws.SetReadDeadline(time.Now().Add(5 * time.Second))
			var frame GenerateResultMessage
			if err := ws.ReadJSON(&frame); err != nil {
				t.Errorf("client %d: read failed: %v", i, err)
				return
			}
			if frame.RequestID != reqID || frame.Payload == nil || !frame.Payload.Success {
				t.Errorf("client %d: frame = %+v", i, frame)
			}
		}(i, ws)
	}
	wg.Wait()

	if got := hub.ClientCount(); got != numClients {
		t.Errorf("ClientCount() = %d, want %d", got, numClients)
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	_, url, cancel := setupTestServer(t, &mockGenerator{})
	ws := dial(t, url)

	// round trip so the client is registered
	ws.WriteJSON(map[string]interface{}{"type": "ping"})
	readFrame(t, ws)

	cancel()

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := ws.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("read after shutdown = %v, want normal closure", err)
	}
}

func BenchmarkMessageValidation(b *testing.B) {
	validator := NewMessageValidator()

	generateJSON := []byte(`{
		"type": "generate",
		"request_id": "req-1",
		"payload": {"audio": "SGVsbG8gV29ybGQ=", "mode": "email", "outputLanguage": "en"}
	}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := validator.ValidateMessage(generateJSON); err != nil {
			b.Errorf("Validation failed: %v", err)
		}
	}
}
