package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVMIMEType is the MIME type of captured clips
const WAVMIMEType = "audio/wav"

// EncodeWAV wraps 16-bit PCM samples in a WAV container. The encoder needs a
// seekable writer, so the clip goes through a temp file.
func EncodeWAV(samples []int16, sampleRate, channels int) ([]byte, error) {
	if channels <= 0 {
		channels = 1
	}

	file, err := os.CreateTemp("", "vibeflow-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create wav failed: %w", err)
	}
	defer os.Remove(file.Name())
	defer file.Close()

	enc := wav.NewEncoder(file, sampleRate, 16, channels, 1)
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(v)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("wav write failed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("wav close failed: %w", err)
	}

	out, err := os.ReadFile(file.Name())
	if err != nil {
		return nil, fmt.Errorf("read wav failed: %w", err)
	}
	return out, nil
}
