package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// SpeakerPlayer plays cue samples on the default output device
type SpeakerPlayer struct {
	mu sync.Mutex
}

// NewSpeakerPlayer creates a player for the default output device
func NewSpeakerPlayer() *SpeakerPlayer {
	return &SpeakerPlayer{}
}

// Play blocks until the samples have been written. Cues never overlap.
func (p *SpeakerPlayer) Play(samples []float32, sampleRate int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init failed: %w", err)
	}
	defer portaudio.Terminate()

	out := make([]float32, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), len(out), out)
	if err != nil {
		return fmt.Errorf("open stream failed: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start stream failed: %w", err)
	}
	defer stream.Stop()

	for off := 0; off < len(samples); off += len(out) {
		n := copy(out, samples[off:])
		clear(out[n:])
		if err := stream.Write(); err != nil {
			return fmt.Errorf("stream write failed: %w", err)
		}
	}
	return nil
}
