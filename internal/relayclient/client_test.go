package relayclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/vibeflow/vibeflow/adapters/llm"
	"github.com/vibeflow/vibeflow/domain"
	"github.com/vibeflow/vibeflow/internal/api"
	"github.com/vibeflow/vibeflow/usecase"
)

var _ usecase.Generator = (*Client)(nil)
var _ api.Translator = (*Client)(nil)

func newRelay(t *testing.T, reply, serverKey string) (*Client, *llm.MockModel) {
	t.Helper()
	logger := zaptest.NewLogger(t)

	model := llm.NewMockModel(logger, reply)
	generate := usecase.NewGenerateService(model, nil, serverKey, logger)
	translate := usecase.NewTranslateService(model, generate, logger)
	e := api.NewServer(api.ServerConfig{}, api.NewHandler(generate, translate, nil, nil, "mock", logger))

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return New(server.URL+"/", time.Second*5, logger), model
}

func TestGenerate(t *testing.T) {
	client, model := newRelay(t, "Dear team,\n\nThe launch moves to Friday.", "")

	resp, err := client.Generate(context.Background(), domain.GenerateRequest{
		Audio:     "SGVsbG8=",
		Mode:      "email",
		RequestID: "session-1",
	}, "user-key")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !resp.Success || resp.Result != "Dear team,\n\nThe launch moves to Friday." || resp.RequestID != "session-1" {
		t.Errorf("resp = %+v", resp)
	}

	reqs := model.Requests()
	if len(reqs) != 1 || reqs[0].APIKey != "user-key" {
		t.Errorf("requests = %+v", reqs)
	}
}

func TestGenerate_RelayErrorMessage(t *testing.T) {
	client, _ := newRelay(t, "unused", "")

	_, err := client.Generate(context.Background(), domain.GenerateRequest{Audio: "SGVsbG8="}, "")
	var relayErr *RelayError
	if !errors.As(err, &relayErr) {
		t.Fatalf("err = %v, want *RelayError", err)
	}
	if relayErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d", relayErr.StatusCode)
	}
	if relayErr.Message != "API key required. Please set your Gemini API key in Settings." {
		t.Errorf("Message = %q", relayErr.Message)
	}
	if got := usecase.ErrorMessage(err); got != relayErr.Message {
		t.Errorf("ErrorMessage() = %q", got)
	}
}

func TestGenerate_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	client := New(server.URL, 0, zaptest.NewLogger(t))
	_, err := client.Generate(context.Background(), domain.GenerateRequest{Audio: "SGVsbG8="}, "")
	if err == nil || err.Error() != "HTTP error 502" {
		t.Errorf("err = %v, want HTTP error 502", err)
	}
}

func TestGenerate_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := New(server.URL, 0, zaptest.NewLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, domain.GenerateRequest{Audio: "SGVsbG8="}, "")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestTranslate(t *testing.T) {
	client, model := newRelay(t, `{"translation":"Hola","fromLanguageName":"English","fromLanguageCode":"en"}`, "server-key")

	result, err := client.TranslateText(context.Background(), domain.TranslateRequest{
		Text:           "Hello",
		TargetLanguage: "Spanish",
	}, "")
	if err != nil {
		t.Fatalf("TranslateText() error = %v", err)
	}
	if result.Translation != "Hola" || result.FromLanguageName != "English" || result.FromLanguageCode != "en" {
		t.Errorf("result = %+v", result)
	}

	model.SetReply("Gracias")
	reply, err := client.TranslateReply(context.Background(), domain.TranslateReplyRequest{
		Audio:          "SGVsbG8=",
		TargetLanguage: "English",
	}, "")
	if err != nil {
		t.Fatalf("TranslateReply() error = %v", err)
	}
	if reply != "Gracias" {
		t.Errorf("reply = %q", reply)
	}
}

func TestTranslate_UnsuccessfulBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.TranslateResponse{Success: false})
	}))
	defer server.Close()

	client := New(server.URL, 0, zaptest.NewLogger(t))
	_, err := client.TranslateText(context.Background(), domain.TranslateRequest{Text: "a", TargetLanguage: "b"}, "")
	if err == nil || err.Error() != "Translation failed" {
		t.Errorf("err = %v", err)
	}
}
