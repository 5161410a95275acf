package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vibeflow/vibeflow/domain"
	"github.com/vibeflow/vibeflow/domain/entities"
	"github.com/vibeflow/vibeflow/domain/repositories"
	"github.com/vibeflow/vibeflow/internal/prompt"
)

// GenerateService turns a GenerateRequest into one model call. It holds no
// per-request state.
type GenerateService struct {
	model        repositories.GenerativeModel
	speechToText repositories.SpeechToText
	apiKey       string
	logger       *zap.Logger
}

// NewGenerateService creates a generate service. serverKey is used when the
// caller sends no key; speechToText may be nil to disable the transcription echo.
func NewGenerateService(
	model repositories.GenerativeModel,
	speechToText repositories.SpeechToText,
	serverKey string,
	logger *zap.Logger,
) *GenerateService {
	return &GenerateService{
		model:        model,
		speechToText: speechToText,
		apiKey:       serverKey,
		logger:       logger,
	}
}

// ResolveAPIKey prefers the caller's key over the server default
func (s *GenerateService) ResolveAPIKey(callerKey string) (string, error) {
	if key := strings.TrimSpace(callerKey); key != "" {
		return key, nil
	}
	if s.apiKey != "" {
		return s.apiKey, nil
	}
	return "", ErrMissingAPIKey
}

// Generate validates the request, builds the prompt and calls the model.
// Validation errors are returned before any upstream call is made.
func (s *GenerateService) Generate(ctx context.Context, req domain.GenerateRequest, callerKey string) (*domain.GenerateResponse, error) {
	if strings.TrimSpace(req.Audio) == "" {
		return nil, ErrMissingAudio
	}
	apiKey, err := s.ResolveAPIKey(callerKey)
	if err != nil {
		return nil, err
	}

	audio, err := decodeBase64(req.Audio)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}

	mode := entities.ParseMode(req.Mode)

	var screenshot []byte
	screenshotB64 := stripDataURL(req.Screenshot)
	if mode == entities.ModeSocial && screenshotB64 != "" {
		screenshot, err = base64.StdEncoding.DecodeString(screenshotB64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}

	cfg := prompt.ConfigFor(mode)
	generation := repositories.GenerationRequest{
		APIKey: apiKey,
		SystemInstruction: prompt.SystemInstruction(prompt.Options{
			Mode:           mode,
			ReplyStyle:     entities.ReplyStyle(strings.ToLower(req.ReplyStyle)),
			ClarifyText:    req.ClarifyText,
			OutputLanguage: entities.ParseOutputLanguage(req.OutputLanguage),
		}),
		Parts: prompt.Parts(prompt.Input{
			Mode:          mode,
			Audio:         audio,
			AudioMIMEType: req.AudioMIMEType,
			Screenshot:    screenshot,
			ScreenshotB64: screenshotB64,
			SelectedText:  req.SelectedText,
		}),
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxTokens,
	}

	s.logger.Info("Generating",
		zap.String("mode", string(mode)),
		zap.String("request_id", req.RequestID),
		zap.Int("audio_bytes", len(audio)),
		zap.Bool("screenshot", len(screenshot) > 0),
		zap.String("templates", prompt.TemplateVersion))

	var (
		result        string
		transcription string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := s.model.Generate(gctx, generation)
		if err != nil {
			return upstreamError(err)
		}
		result = prompt.Clean(text)
		return nil
	})
	if s.speechToText != nil {
		g.Go(func() error {
			transcription = s.transcribe(gctx, audio, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Generation failed",
			zap.String("request_id", req.RequestID),
			zap.Error(err))
		return nil, err
	}

	return &domain.GenerateResponse{
		Success:       true,
		Result:        result,
		Transcription: transcription,
		RequestID:     req.RequestID,
	}, nil
}

// transcribe never fails the request; the echo is simply omitted
func (s *GenerateService) transcribe(ctx context.Context, audio []byte, req domain.GenerateRequest) string {
	mimeType := req.AudioMIMEType
	if mimeType == "" {
		mimeType = prompt.DefaultAudioMIMEType
	}

	text, err := s.speechToText.TranscribeAudio(ctx, audio, repositories.AudioConfig{
		Encoding: repositories.EncodingForMIME(mimeType),
		Language: recognizerLanguage(entities.ParseOutputLanguage(req.OutputLanguage)),
	})
	if err != nil {
		s.logger.Warn("Transcription echo failed",
			zap.String("request_id", req.RequestID),
			zap.Error(err))
		return ""
	}
	return text
}

func recognizerLanguage(lang entities.OutputLanguage) string {
	switch lang {
	case entities.LanguagePortuguese:
		return "pt-BR"
	case entities.LanguageSpanish:
		return "es-ES"
	default:
		return "en-US"
	}
}

func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(stripDataURL(s))
}

// stripDataURL accepts both raw base64 and data:...;base64, URLs
func stripDataURL(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if _, payload, ok := strings.Cut(s, ","); ok {
			return payload
		}
	}
	return s
}
