package sound

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/domain/repositories"
)

// queueSize bounds the cues waiting for the device; extra cues are dropped
const queueSize = 4

type queued struct {
	cue     Cue
	samples []float32
}

// Player renders cues and hands them to an output device on its own
// goroutine, so Play never waits for the device. Cues are skipped while sound
// is disabled in the settings.
type Player struct {
	out        repositories.TonePlayer
	sampleRate int
	enabled    atomic.Bool
	logger     *zap.Logger

	mu    sync.Mutex
	cache map[Cue][]float32

	qmu    sync.RWMutex
	queue  chan queued
	closed bool
	done   chan struct{}
}

// NewPlayer creates an enabled player and starts its playback goroutine.
// Close stops it.
func NewPlayer(out repositories.TonePlayer, logger *zap.Logger) *Player {
	p := &Player{
		out:        out,
		sampleRate: DefaultSampleRate,
		logger:     logger,
		cache:      make(map[Cue][]float32),
		queue:      make(chan queued, queueSize),
		done:       make(chan struct{}),
	}
	p.enabled.Store(true)
	go p.run()
	return p
}

// Close plays what is already queued, then stops the playback goroutine
func (p *Player) Close() {
	if p == nil {
		return
	}
	p.qmu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.qmu.Unlock()
	<-p.done
}

func (p *Player) run() {
	defer close(p.done)
	for q := range p.queue {
		if p.out == nil {
			continue
		}
		if err := p.out.Play(q.samples, p.sampleRate); err != nil {
			p.logger.Debug("Cue playback failed", zap.String("cue", string(q.cue)), zap.Error(err))
		}
	}
}

// SetEnabled applies the sound preference
func (p *Player) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// Enabled reports the current preference
func (p *Player) Enabled() bool {
	return p.enabled.Load()
}

// Play queues cue and returns at once. Failures are logged, never returned:
// a missing audio device must not break dictation.
func (p *Player) Play(cue Cue) {
	if p == nil || p.out == nil || !p.enabled.Load() {
		return
	}

	buf, err := p.render(cue)
	if err != nil {
		p.logger.Warn("Unknown cue", zap.String("cue", string(cue)), zap.Error(err))
		return
	}

	p.qmu.RLock()
	defer p.qmu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- queued{cue: cue, samples: buf}:
	default:
		p.logger.Debug("Cue dropped, device busy", zap.String("cue", string(cue)))
	}
}

func (p *Player) render(cue Cue) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if buf, ok := p.cache[cue]; ok {
		return buf, nil
	}
	buf, err := Synthesize(cue, p.sampleRate)
	if err != nil {
		return nil, err
	}
	p.cache[cue] = buf
	return buf, nil
}
