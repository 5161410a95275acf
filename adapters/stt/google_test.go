package stt

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/vibeflow/vibeflow/domain/repositories"
)

var (
	_ repositories.SpeechToText = &GoogleSpeechToText{}
	_ repositories.SpeechToText = &MockSpeechToText{}
)

func TestEncodingForMIME(t *testing.T) {
	tests := map[string]string{
		"audio/webm":             "WEBM_OPUS",
		"audio/webm;codecs=opus": "WEBM_OPUS",
		"audio/wav":              "LINEAR16",
		"audio/x-wav":            "LINEAR16",
		"audio/ogg":              "OGG_OPUS",
		"audio/flac":             "FLAC",
		"":                       "WEBM_OPUS",
	}
	for in, want := range tests {
		if got := repositories.EncodingForMIME(in); got != want {
			t.Errorf("EncodingForMIME(%q) = %s, want %s", in, got, want)
		}
		if _, err := getAudioEncoding(repositories.EncodingForMIME(in)); err != nil {
			t.Errorf("Encoding for %q is not supported: %v", in, err)
		}
	}
}

func TestAlternativeLanguagesExcludesPrimary(t *testing.T) {
	alts := alternativeLanguages("pt-BR")
	if len(alts) != 2 {
		t.Fatalf("Expected 2 alternatives, got %v", alts)
	}
	for _, a := range alts {
		if a == "pt-BR" {
			t.Error("Primary language must not be an alternative")
		}
	}
}

func TestMockSpeechToText(t *testing.T) {
	m := NewMockSpeechToText(zaptest.NewLogger(t), "hello there")

	got, err := m.TranscribeAudio(context.Background(), []byte{1, 2}, repositories.AudioConfig{Encoding: "WEBM_OPUS"})
	if err != nil || got != "hello there" {
		t.Errorf("Unexpected result %q, %v", got, err)
	}
	if _, err := m.TranscribeAudio(context.Background(), nil, repositories.AudioConfig{}); err == nil {
		t.Error("Expected error for empty audio")
	}
}
