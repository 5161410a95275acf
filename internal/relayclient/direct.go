package relayclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/vibeflow/vibeflow/domain"
	"github.com/vibeflow/vibeflow/domain/entities"
	"github.com/vibeflow/vibeflow/usecase"
)

// Direct runs the relay pipeline in-process. It is the local development
// path: no relay is needed, the user's own key goes straight to the model.
type Direct struct {
	generate  *usecase.GenerateService
	translate *usecase.TranslateService
}

// NewDirect wraps the relay services
func NewDirect(generate *usecase.GenerateService, translate *usecase.TranslateService) *Direct {
	return &Direct{generate: generate, translate: translate}
}

// Generate answers like the relay would, failures included
func (d *Direct) Generate(ctx context.Context, req domain.GenerateRequest, apiKey string) (*domain.GenerateResponse, error) {
	resp, err := d.generate.Generate(ctx, req, apiKey)
	if err != nil {
		return &domain.GenerateResponse{
			Success:   false,
			Error:     usecase.ErrorMessage(err),
			RequestID: req.RequestID,
		}, nil
	}
	return resp, nil
}

// TranslateText translates typed text
func (d *Direct) TranslateText(ctx context.Context, req domain.TranslateRequest, apiKey string) (*entities.TranslationResult, error) {
	result, err := d.translate.TranslateText(ctx, req, apiKey)
	if err != nil {
		return nil, directError(err, "Translation failed")
	}
	return result, nil
}

// TranslateReply translates a spoken reply
func (d *Direct) TranslateReply(ctx context.Context, req domain.TranslateReplyRequest, apiKey string) (string, error) {
	reply, err := d.translate.TranslateReply(ctx, req, apiKey)
	if err != nil {
		return "", directError(err, "Translation failed")
	}
	return reply, nil
}

// directError gives in-process failures the same messages the relay sends
func directError(err error, fallback string) error {
	var upstream *usecase.UpstreamError
	switch {
	case usecase.IsBadRequest(err):
		return &RelayError{StatusCode: http.StatusBadRequest, Message: usecase.ErrorMessage(err)}
	case errors.As(err, &upstream):
		return &RelayError{StatusCode: http.StatusInternalServerError, Message: upstream.Message}
	default:
		return &RelayError{StatusCode: http.StatusInternalServerError, Message: fallback}
	}
}
