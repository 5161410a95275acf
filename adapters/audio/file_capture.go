package audio

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vibeflow/vibeflow/domain/repositories"
)

// FileCapture replays a recorded file as if it had been captured. It backs
// the -file flag and headless runs.
type FileCapture struct {
	path string

	mu      sync.Mutex
	started bool
}

// NewFileCapture creates a capture that yields the file at path
func NewFileCapture(path string) *FileCapture {
	return &FileCapture{path: path}
}

// Start checks the file is readable
func (f *FileCapture) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return ErrAlreadyRecording
	}
	if _, err := os.Stat(f.path); err != nil {
		return fmt.Errorf("audio file: %w", err)
	}
	f.started = true
	return nil
}

// Stop returns the file content
func (f *FileCapture) Stop() (repositories.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.started {
		return repositories.Clip{}, ErrNotRecording
	}
	f.started = false

	data, err := os.ReadFile(f.path)
	if err != nil {
		return repositories.Clip{}, fmt.Errorf("read audio file: %w", err)
	}
	return repositories.Clip{Data: data, MIMEType: DetectAudioMIME(f.path, data)}, nil
}

// DetectAudioMIME names the audio type from the extension, falling back to
// content sniffing.
func DetectAudioMIME(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return WAVMIMEType
	case ".webm":
		return "audio/webm"
	case ".ogg", ".opus":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	}
	if t := mime.TypeByExtension(filepath.Ext(path)); strings.HasPrefix(t, "audio/") {
		return t
	}

	sniffed := http.DetectContentType(data)
	switch {
	case strings.HasPrefix(sniffed, "audio/wave"):
		return WAVMIMEType
	case strings.HasPrefix(sniffed, "audio/"), strings.HasPrefix(sniffed, "video/webm"):
		if sniffed == "video/webm" {
			return "audio/webm"
		}
		return strings.TrimSpace(strings.SplitN(sniffed, ";", 2)[0])
	}
	return "audio/webm"
}
