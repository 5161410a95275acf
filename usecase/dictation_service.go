package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/domain"
	"github.com/vibeflow/vibeflow/domain/entities"
	"github.com/vibeflow/vibeflow/domain/repositories"
	"github.com/vibeflow/vibeflow/internal/sound"
)

// Generator sends a generate request to the relay or, in direct mode, runs it in-process
type Generator interface {
	Generate(ctx context.Context, req domain.GenerateRequest, apiKey string) (*domain.GenerateResponse, error)
}

// CuePlayer plays feedback sounds
type CuePlayer interface {
	Play(cue sound.Cue)
}

// Selection is what the selector contributes to a request
type Selection struct {
	Mode         entities.Mode
	ReplyStyle   entities.ReplyStyle
	SelectedText string
	Screenshot   []byte
}

// Outcome is the answer to one recording
type Outcome struct {
	SessionID string
	Mode      entities.Mode
	Response  domain.GenerateResponse
	History   *entities.HistoryItem
}

// DictationService drives one recording at a time from the start gesture to
// the rendered result.
type DictationService struct {
	machine   *entities.RecordingMachine
	capture   repositories.AudioCapture
	generator Generator
	history   *HistoryService
	cues      CuePlayer
	logger    *zap.Logger

	mu       sync.Mutex
	settings entities.Settings
}

// NewDictationService wires the recorder, relay client and stores together
func NewDictationService(
	capture repositories.AudioCapture,
	generator Generator,
	history *HistoryService,
	cues CuePlayer,
	settings entities.Settings,
	logger *zap.Logger,
) *DictationService {
	return &DictationService{
		machine:   entities.NewRecordingMachine(),
		capture:   capture,
		generator: generator,
		history:   history,
		cues:      cues,
		settings:  settings,
		logger:    logger,
	}
}

// State returns the recorder state
func (s *DictationService) State() entities.RecordingState {
	return s.machine.State()
}

// Settings returns the settings the next request will use
func (s *DictationService) Settings() entities.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings applies freshly saved settings
func (s *DictationService) UpdateSettings(settings entities.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// Start opens the microphone. It is rejected unless the recorder is idle.
func (s *DictationService) Start(ctx context.Context) (string, error) {
	sessionID, err := s.machine.Start()
	if err != nil {
		return "", err
	}

	if err := s.capture.Start(ctx); err != nil {
		_ = s.machine.Abort(sessionID)
		s.cues.Play(sound.CueError)
		return "", fmt.Errorf("failed to start recording: %w", err)
	}

	s.cues.Play(sound.CueStart)
	s.logger.Info("Recording started", zap.String("session_id", sessionID))
	return sessionID, nil
}

// Stop finalizes the clip. The capture device is released even when it fails,
// and the recorder then goes straight back to idle.
func (s *DictationService) Stop(sessionID string) (repositories.Clip, error) {
	if err := s.machine.Stop(sessionID); err != nil {
		return repositories.Clip{}, err
	}
	// the stop cue must not end up in the clip
	clip, err := s.capture.Stop()
	s.cues.Play(sound.CueStop)
	if err == nil && len(clip.Data) == 0 {
		err = errors.New("no audio captured")
	}
	if err != nil {
		_ = s.machine.Complete(sessionID)
		s.cues.Play(sound.CueError)
		return repositories.Clip{}, fmt.Errorf("failed to stop recording: %w", err)
	}

	s.logger.Info("Recording stopped",
		zap.String("session_id", sessionID),
		zap.Int("bytes", len(clip.Data)))
	return clip, nil
}

// Submit sends the clip and completes the session. A response for a session
// that is no longer current is discarded with entities.ErrStaleSession.
func (s *DictationService) Submit(ctx context.Context, sessionID string, clip repositories.Clip, sel Selection) (*Outcome, error) {
	settings := s.Settings()
	req := BuildRequest(clip, sel, settings)
	req.RequestID = sessionID

	resp, err := s.generator.Generate(ctx, req, settings.APIKey)
	if err != nil {
		resp = &domain.GenerateResponse{Success: false, Error: ErrorMessage(err)}
	}
	if resp.RequestID != "" && resp.RequestID != sessionID {
		s.logger.Warn("Response for another request",
			zap.String("session_id", sessionID),
			zap.String("request_id", resp.RequestID))
		resp = &domain.GenerateResponse{Success: false, Error: "Response did not match the request"}
	}

	if err := s.machine.Complete(sessionID); err != nil {
		s.logger.Info("Discarding late response", zap.String("session_id", sessionID), zap.Error(err))
		if errors.Is(err, entities.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: %v", entities.ErrStaleSession, err)
		}
		return nil, err
	}

	outcome := &Outcome{SessionID: sessionID, Mode: sel.Mode, Response: *resp}
	if !resp.Success || resp.Result == "" {
		if resp.Error == "" {
			outcome.Response.Error = "Failed to transcribe"
		}
		outcome.Response.Success = false
		s.cues.Play(sound.CueError)
		return outcome, nil
	}

	s.cues.Play(sound.CueSuccess)
	if s.history != nil {
		item, err := s.history.Add(ctx, resp.Result, sel.Mode)
		if err != nil {
			s.logger.Warn("Failed to record history", zap.Error(err))
		} else {
			outcome.History = &item
		}
	}
	return outcome, nil
}

// Cancel abandons a session in processing so a new recording can start.
// Its response, if it ever arrives, is then stale.
func (s *DictationService) Cancel(sessionID string) error {
	if err := s.machine.Complete(sessionID); err != nil {
		return err
	}
	s.logger.Info("Recording cancelled", zap.String("session_id", sessionID))
	return nil
}

// BuildRequest assembles the wire request for a clip
func BuildRequest(clip repositories.Clip, sel Selection, settings entities.Settings) domain.GenerateRequest {
	req := domain.GenerateRequest{
		Audio:          base64.StdEncoding.EncodeToString(clip.Data),
		AudioMIMEType:  clip.MIMEType,
		Mode:           string(sel.Mode),
		OutputLanguage: string(settings.OutputLanguage),
		ClarifyText:    settings.ClarifyText,
	}
	if req.Mode == "" {
		req.Mode = string(entities.ModeText)
	}
	if sel.Mode == entities.ModeCommand && sel.SelectedText != "" {
		req.SelectedText = sel.SelectedText
	}
	if sel.Mode == entities.ModeSocial {
		req.ReplyStyle = string(sel.ReplyStyle)
		if len(sel.Screenshot) > 0 {
			req.Screenshot = base64.StdEncoding.EncodeToString(sel.Screenshot)
		}
	}
	return req
}

// ErrorMessage is the text shown to the user for a failed call
func ErrorMessage(err error) string {
	var upstream *UpstreamError
	switch {
	case errors.As(err, &upstream):
		return upstream.Message
	case IsBadRequest(err):
		for _, target := range []error{ErrMissingAudio, ErrMissingAPIKey, ErrInvalidAudio, ErrInvalidImage, ErrMissingText, ErrMissingTarget} {
			if errors.Is(err, target) {
				return target.Error()
			}
		}
	case err != nil && err.Error() != "":
		return err.Error()
	}
	return "Failed to transcribe"
}
