package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/vibeflow/vibeflow/adapters"
	"github.com/vibeflow/vibeflow/domain"
	"github.com/vibeflow/vibeflow/domain/entities"
	"github.com/vibeflow/vibeflow/domain/repositories"
	"github.com/vibeflow/vibeflow/internal/sound"
)

type fakeCapture struct {
	startErr error
	stopErr  error
	clip     repositories.Clip
	started  int
	stopped  int
	onStop   func()
}

func (f *fakeCapture) Start(ctx context.Context) error {
	f.started++
	return f.startErr
}

func (f *fakeCapture) Stop() (repositories.Clip, error) {
	f.stopped++
	if f.onStop != nil {
		f.onStop()
	}
	return f.clip, f.stopErr
}

type fakeGenerator struct {
	resp    *domain.GenerateResponse
	err     error
	lastReq domain.GenerateRequest
	lastKey string
}

func (f *fakeGenerator) Generate(ctx context.Context, req domain.GenerateRequest, apiKey string) (*domain.GenerateResponse, error) {
	f.lastReq = req
	f.lastKey = apiKey
	if f.err != nil {
		return nil, f.err
	}
	resp := *f.resp
	if resp.RequestID == "" {
		resp.RequestID = req.RequestID
	}
	return &resp, nil
}

type cueLog struct {
	mu   sync.Mutex
	cues []sound.Cue
}

func (c *cueLog) Play(cue sound.Cue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cues = append(c.cues, cue)
}

func (c *cueLog) list() []sound.Cue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sound.Cue(nil), c.cues...)
}

func newDictation(t *testing.T, capture *fakeCapture, gen *fakeGenerator) (*DictationService, *cueLog, *HistoryService) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cues := &cueLog{}
	history := NewHistoryService(adapters.NewMemoryStore(), logger)
	settings := entities.Settings{APIKey: "user-key", OutputLanguage: entities.LanguagePortuguese, ClarifyText: true, SoundEnabled: true}
	return NewDictationService(capture, gen, history, cues, settings, logger), cues, history
}

func equalCues(a, b []sound.Cue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDictationHappyPath(t *testing.T) {
	ctx := context.Background()
	capture := &fakeCapture{clip: repositories.Clip{Data: []byte("pcm"), MIMEType: "audio/wav"}}
	gen := &fakeGenerator{resp: &domain.GenerateResponse{Success: true, Result: "Dear team,"}}
	svc, cues, history := newDictation(t, capture, gen)

	id, err := svc.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if svc.State() != entities.RecordingActive {
		t.Errorf("Expected recording, got %s", svc.State())
	}
	if _, err := svc.Start(ctx); !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Second start must be rejected, got %v", err)
	}

	clip, err := svc.Stop(id)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if svc.State() != entities.RecordingProcessing {
		t.Errorf("Expected processing, got %s", svc.State())
	}

	outcome, err := svc.Submit(ctx, id, clip, Selection{Mode: entities.ModeEmail})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !outcome.Response.Success || outcome.Response.Result != "Dear team," {
		t.Errorf("Unexpected outcome %+v", outcome)
	}
	if outcome.History == nil {
		t.Error("Expected a history item")
	}
	if svc.State() != entities.RecordingIdle {
		t.Errorf("Expected idle, got %s", svc.State())
	}

	if gen.lastKey != "user-key" || gen.lastReq.RequestID != id || gen.lastReq.Mode != "email" ||
		gen.lastReq.OutputLanguage != "pt" || !gen.lastReq.ClarifyText || gen.lastReq.AudioMIMEType != "audio/wav" {
		t.Errorf("Unexpected request %+v", gen.lastReq)
	}

	want := []sound.Cue{sound.CueStart, sound.CueStop, sound.CueSuccess}
	if got := cues.list(); !equalCues(got, want) {
		t.Errorf("Expected cues %v, got %v", want, got)
	}

	items, _ := history.List(ctx)
	if len(items) != 1 || items[0].Mode != entities.ModeEmail {
		t.Errorf("Unexpected history %+v", items)
	}
}

func TestDictationStopCueFollowsCapture(t *testing.T) {
	capture := &fakeCapture{clip: repositories.Clip{Data: []byte("pcm"), MIMEType: "audio/wav"}}
	svc, cues, _ := newDictation(t, capture, &fakeGenerator{})

	var atStop []sound.Cue
	capture.onStop = func() { atStop = cues.list() }

	id, _ := svc.Start(context.Background())
	if _, err := svc.Stop(id); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !equalCues(atStop, []sound.Cue{sound.CueStart}) {
		t.Errorf("Cues played while the microphone was open: %v", atStop)
	}
	if got := cues.list(); !equalCues(got, []sound.Cue{sound.CueStart, sound.CueStop}) {
		t.Errorf("Expected start then stop, got %v", got)
	}
}

func TestDictationFailureResponse(t *testing.T) {
	ctx := context.Background()
	capture := &fakeCapture{clip: repositories.Clip{Data: []byte("pcm")}}
	gen := &fakeGenerator{err: &UpstreamError{Message: "API key not valid"}}
	svc, cues, history := newDictation(t, capture, gen)

	id, _ := svc.Start(ctx)
	clip, _ := svc.Stop(id)
	outcome, err := svc.Submit(ctx, id, clip, Selection{Mode: entities.ModeText})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Response.Success || outcome.Response.Error != "API key not valid" {
		t.Errorf("Unexpected outcome %+v", outcome.Response)
	}
	if got := cues.list(); got[len(got)-1] != sound.CueError {
		t.Errorf("Expected error cue last, got %v", got)
	}
	if svc.State() != entities.RecordingIdle {
		t.Errorf("Expected idle after failure, got %s", svc.State())
	}
	items, _ := history.List(ctx)
	if len(items) != 0 {
		t.Error("Failures are not recorded in history")
	}
}

func TestDictationCaptureStartFailure(t *testing.T) {
	capture := &fakeCapture{startErr: errors.New("permission denied")}
	svc, cues, _ := newDictation(t, capture, &fakeGenerator{})

	if _, err := svc.Start(context.Background()); err == nil {
		t.Fatal("Expected start failure")
	}
	if svc.State() != entities.RecordingIdle {
		t.Errorf("Expected idle after failed start, got %s", svc.State())
	}
	if got := cues.list(); !equalCues(got, []sound.Cue{sound.CueError}) {
		t.Errorf("Expected only the error cue, got %v", got)
	}
}

func TestDictationCaptureStopFailureReleasesRecorder(t *testing.T) {
	capture := &fakeCapture{stopErr: errors.New("device lost")}
	svc, _, _ := newDictation(t, capture, &fakeGenerator{})

	id, _ := svc.Start(context.Background())
	if _, err := svc.Stop(id); err == nil {
		t.Fatal("Expected stop failure")
	}
	if capture.stopped != 1 {
		t.Errorf("Capture must be stopped once, got %d", capture.stopped)
	}
	if svc.State() != entities.RecordingIdle {
		t.Errorf("Expected idle, got %s", svc.State())
	}
}

func TestDictationStaleResponseIsDiscarded(t *testing.T) {
	ctx := context.Background()
	capture := &fakeCapture{clip: repositories.Clip{Data: []byte("pcm")}}
	gen := &fakeGenerator{resp: &domain.GenerateResponse{Success: true, Result: "late"}}
	svc, _, history := newDictation(t, capture, gen)

	first, _ := svc.Start(ctx)
	clip, _ := svc.Stop(first)
	if err := svc.Cancel(first); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	second, _ := svc.Start(ctx)
	if _, err := svc.Submit(ctx, first, clip, Selection{Mode: entities.ModeText}); !errors.Is(err, entities.ErrStaleSession) {
		t.Errorf("Expected stale session, got %v", err)
	}
	if svc.State() != entities.RecordingActive {
		t.Errorf("The new session must be untouched, got %s", svc.State())
	}
	if _, err := svc.Stop(second); err != nil {
		t.Errorf("Stop of the current session: %v", err)
	}

	items, _ := history.List(ctx)
	if len(items) != 0 {
		t.Error("Stale results must not reach history")
	}
}

func TestDictationMismatchedRequestID(t *testing.T) {
	ctx := context.Background()
	capture := &fakeCapture{clip: repositories.Clip{Data: []byte("pcm")}}
	gen := &fakeGenerator{resp: &domain.GenerateResponse{Success: true, Result: "x", RequestID: "someone-else"}}
	svc, _, _ := newDictation(t, capture, gen)

	id, _ := svc.Start(ctx)
	clip, _ := svc.Stop(id)
	outcome, err := svc.Submit(ctx, id, clip, Selection{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Response.Success || outcome.Response.Result != "" {
		t.Errorf("A result for another request must not be shown, got %+v", outcome.Response)
	}
	if svc.State() != entities.RecordingIdle {
		t.Errorf("Expected idle, got %s", svc.State())
	}
}

func TestBuildRequest(t *testing.T) {
	clip := repositories.Clip{Data: []byte("abc"), MIMEType: "audio/wav"}
	settings := entities.DefaultSettings()

	social := BuildRequest(clip, Selection{Mode: entities.ModeSocial, ReplyStyle: entities.StyleFlirty, Screenshot: []byte{1, 2}, SelectedText: "ignored"}, settings)
	if social.ReplyStyle != "flirty" || social.Screenshot != base64.StdEncoding.EncodeToString([]byte{1, 2}) || social.SelectedText != "" {
		t.Errorf("Unexpected social request %+v", social)
	}

	text := BuildRequest(clip, Selection{Mode: entities.ModeText, ReplyStyle: entities.StyleFlirty, Screenshot: []byte{1}}, settings)
	if text.ReplyStyle != "" || text.Screenshot != "" {
		t.Errorf("Style and screenshot belong to social mode only, got %+v", text)
	}

	command := BuildRequest(clip, Selection{Mode: entities.ModeCommand, SelectedText: "fix me"}, settings)
	if command.SelectedText != "fix me" {
		t.Errorf("Expected selected text, got %+v", command)
	}

	if BuildRequest(clip, Selection{}, settings).Mode != "text" {
		t.Error("Expected text mode by default")
	}
}

func TestErrorMessage(t *testing.T) {
	if got := ErrorMessage(ErrMissingAPIKey); got != ErrMissingAPIKey.Error() {
		t.Errorf("Unexpected message %q", got)
	}
	if got := ErrorMessage(&UpstreamError{Message: "quota exceeded"}); got != "quota exceeded" {
		t.Errorf("Unexpected message %q", got)
	}
	if got := ErrorMessage(nil); got != "Failed to transcribe" {
		t.Errorf("Unexpected message %q", got)
	}
}
