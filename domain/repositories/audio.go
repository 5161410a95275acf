package repositories

import "context"

// Clip is a finished recording
type Clip struct {
	Data     []byte
	MIMEType string
}

// AudioCapture wraps the platform recorder. The capture device is owned by one
// recording at a time and released by Stop, including on error.
type AudioCapture interface {
	Start(ctx context.Context) error
	Stop() (Clip, error)
}

// TonePlayer plays mono float32 samples
type TonePlayer interface {
	Play(samples []float32, sampleRate int) error
}
