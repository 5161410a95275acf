package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/domain"
	"github.com/vibeflow/vibeflow/domain/entities"
	"github.com/vibeflow/vibeflow/domain/repositories"
	"github.com/vibeflow/vibeflow/internal/prompt"
)

// ErrMalformedTranslation is returned when the model ignores the JSON answer format
var ErrMalformedTranslation = errors.New("model returned a malformed translation")

// TranslateService backs the two calls of the translate panel
type TranslateService struct {
	model    repositories.GenerativeModel
	generate *GenerateService
	logger   *zap.Logger
}

// NewTranslateService shares key resolution with the generate service
func NewTranslateService(model repositories.GenerativeModel, generate *GenerateService, logger *zap.Logger) *TranslateService {
	return &TranslateService{
		model:    model,
		generate: generate,
		logger:   logger,
	}
}

// TranslateText translates typed text and reports the detected source language
func (s *TranslateService) TranslateText(ctx context.Context, req domain.TranslateRequest, callerKey string) (*entities.TranslationResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrMissingText
	}
	target := strings.TrimSpace(req.TargetLanguage)
	if target == "" {
		return nil, ErrMissingTarget
	}
	apiKey, err := s.generate.ResolveAPIKey(callerKey)
	if err != nil {
		return nil, err
	}

	cfg := prompt.TranslateTextConfig
	reply, err := s.model.Generate(ctx, repositories.GenerationRequest{
		APIKey:            apiKey,
		SystemInstruction: cfg.Prompt,
		Parts:             prompt.TranslateTextParts(text, target),
		Temperature:       cfg.Temperature,
		MaxOutputTokens:   cfg.MaxTokens,
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		s.logger.Error("Translation failed", zap.Error(err))
		return nil, upstreamError(err)
	}

	result, err := ParseTranslation(reply)
	if err != nil {
		s.logger.Warn("Malformed translation", zap.Error(err))
		return nil, &UpstreamError{Message: "Translation failed", Err: err}
	}

	s.logger.Info("Translated text",
		zap.String("from", result.FromLanguageCode),
		zap.String("to", target))
	return result, nil
}

// TranslateReply transcribes a spoken reply and translates it into the target language
func (s *TranslateService) TranslateReply(ctx context.Context, req domain.TranslateReplyRequest, callerKey string) (string, error) {
	if strings.TrimSpace(req.Audio) == "" {
		return "", ErrMissingAudio
	}
	target := strings.TrimSpace(req.TargetLanguage)
	if target == "" {
		return "", ErrMissingTarget
	}
	apiKey, err := s.generate.ResolveAPIKey(callerKey)
	if err != nil {
		return "", err
	}
	audio, err := decodeBase64(req.Audio)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}

	cfg := prompt.TranslateReplyConfig
	reply, err := s.model.Generate(ctx, repositories.GenerationRequest{
		APIKey:            apiKey,
		SystemInstruction: cfg.Prompt,
		Parts:             prompt.TranslateReplyParts(audio, req.AudioMIMEType, target),
		Temperature:       cfg.Temperature,
		MaxOutputTokens:   cfg.MaxTokens,
	})
	if err != nil {
		s.logger.Error("Reply translation failed", zap.Error(err))
		return "", upstreamError(err)
	}
	return prompt.Clean(reply), nil
}

// ParseTranslation reads the JSON answer of a text translation call
func ParseTranslation(reply string) (*entities.TranslationResult, error) {
	body := strings.TrimSpace(prompt.StripCodeFences(reply))

	// tolerate prose around the object
	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		body = body[start : end+1]
	}

	var result entities.TranslationResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTranslation, err)
	}
	result.Translation = strings.TrimSpace(result.Translation)
	if result.Translation == "" {
		return nil, fmt.Errorf("%w: empty translation", ErrMalformedTranslation)
	}
	if result.FromLanguageName == "" {
		result.FromLanguageName = "Unknown"
	}
	return &result, nil
}
