package repositories

import (
	"context"
	"strings"
)

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// TranscribeAudio converts audio data to text
	TranscribeAudio(ctx context.Context, audioData []byte, config AudioConfig) (string, error)
}

// AudioConfig represents audio configuration for speech recognition
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}

// EncodingForMIME maps a clip MIME type to the recognizer encoding name
func EncodingForMIME(mimeType string) string {
	base, _, _ := strings.Cut(strings.ToLower(mimeType), ";")
	switch strings.TrimSpace(base) {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "LINEAR16"
	case "audio/ogg":
		return "OGG_OPUS"
	case "audio/flac", "audio/x-flac":
		return "FLAC"
	default:
		return "WEBM_OPUS"
	}
}
