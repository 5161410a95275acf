package usecase

import (
	"context"
	"sync"

	"github.com/vibeflow/vibeflow/domain/repositories"
)

type fakeModel struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []repositories.GenerationRequest
}

func (f *fakeModel) Generate(ctx context.Context, req repositories.GenerationRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeModel) last() repositories.GenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeSpeech struct {
	text string
	err  error
	cfg  repositories.AudioConfig
}

func (f *fakeSpeech) TranscribeAudio(ctx context.Context, audio []byte, cfg repositories.AudioConfig) (string, error) {
	f.cfg = cfg
	return f.text, f.err
}
