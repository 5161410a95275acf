package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/domain/repositories"
)

// Speech is captured mono at 16 kHz
const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1
	framesPerBuffer   = 1024
)

var (
	ErrAlreadyRecording = errors.New("recorder not idle")
	ErrNotRecording     = errors.New("recorder not running")
)

// MicrophoneCapture records the default input device through PortAudio
type MicrophoneCapture struct {
	sampleRate int
	channels   int
	logger     *zap.Logger

	mu     sync.Mutex
	stream *portaudio.Stream
	cancel context.CancelFunc
	done   chan captureResult
}

type captureResult struct {
	samples []int16
	err     error
}

// NewMicrophoneCapture creates a recorder for the default input device
func NewMicrophoneCapture(logger *zap.Logger) *MicrophoneCapture {
	return &MicrophoneCapture{
		sampleRate: DefaultSampleRate,
		channels:   DefaultChannels,
		logger:     logger,
	}
}

// Start opens the input stream and begins buffering samples
func (m *MicrophoneCapture) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream != nil {
		return ErrAlreadyRecording
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init failed: %w", err)
	}

	in := make([]int16, framesPerBuffer*m.channels)
	stream, err := portaudio.OpenDefaultStream(m.channels, 0, float64(m.sampleRate), framesPerBuffer, in)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("open stream failed: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("start stream failed: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.stream = stream
	m.cancel = cancel
	m.done = make(chan captureResult, 1)
	go m.recordLoop(loopCtx, stream, in, m.done)

	m.logger.Debug("Microphone open", zap.Int("sample_rate", m.sampleRate))
	return nil
}

func (m *MicrophoneCapture) recordLoop(ctx context.Context, stream *portaudio.Stream, in []int16, done chan<- captureResult) {
	var samples []int16
	for {
		select {
		case <-ctx.Done():
			done <- captureResult{samples: samples}
			return
		default:
		}

		if err := stream.Read(); err != nil {
			if errors.Is(err, portaudio.InputOverflowed) {
				m.logger.Debug("Input overflowed", zap.Error(err))
				continue
			}
			done <- captureResult{samples: samples, err: fmt.Errorf("stream read failed: %w", err)}
			return
		}
		samples = append(samples, in...)
	}
}

// Stop ends the recording and returns the clip as WAV. The stream and the
// PortAudio session are released on every path.
func (m *MicrophoneCapture) Stop() (repositories.Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream == nil {
		return repositories.Clip{}, ErrNotRecording
	}

	m.cancel()
	res := <-m.done

	stream := m.stream
	m.stream, m.cancel, m.done = nil, nil, nil
	_ = stream.Stop()
	_ = stream.Close()
	portaudio.Terminate()

	if res.err != nil {
		return repositories.Clip{}, res.err
	}
	if len(res.samples) == 0 {
		return repositories.Clip{}, errors.New("no audio captured")
	}

	data, err := EncodeWAV(res.samples, m.sampleRate, m.channels)
	if err != nil {
		return repositories.Clip{}, err
	}
	return repositories.Clip{Data: data, MIMEType: WAVMIMEType}, nil
}
