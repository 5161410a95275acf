package sound

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func peak(buf []float32) float64 {
	var p float64
	for _, v := range buf {
		p = math.Max(p, math.Abs(float64(v)))
	}
	return p
}

func TestRecipeLengths(t *testing.T) {
	tests := map[Cue]time.Duration{
		CueClick:   15 * time.Millisecond,
		CueStart:   90 * time.Millisecond,
		CueStop:    100 * time.Millisecond,
		CueSuccess: 210 * time.Millisecond,
		CueError:   250 * time.Millisecond,
	}
	for cue, want := range tests {
		r, err := RecipeFor(cue)
		if err != nil {
			t.Fatalf("RecipeFor(%s): %v", cue, err)
		}
		if r.Length() != want {
			t.Errorf("%s: expected length %v, got %v", cue, want, r.Length())
		}

		buf, err := Synthesize(cue, 8000)
		if err != nil {
			t.Fatalf("Synthesize(%s): %v", cue, err)
		}
		if len(buf) != int(want.Seconds()*8000) {
			t.Errorf("%s: expected %d samples, got %d", cue, int(want.Seconds()*8000), len(buf))
		}
	}
}

func TestUnknownCue(t *testing.T) {
	if _, err := Synthesize("fanfare", DefaultSampleRate); err == nil {
		t.Error("Expected error for unknown cue")
	}
}

func TestTonesStayWithinVolume(t *testing.T) {
	buf, _ := Synthesize(CueSuccess, DefaultSampleRate)
	if p := peak(buf); p > 0.2+1e-6 || p < 0.15 {
		t.Errorf("Success cue peak should approach 0.2, got %f", p)
	}
	if buf[0] != 0 {
		t.Errorf("Tones start from silence, got %f", buf[0])
	}
}

func TestEnvelope(t *testing.T) {
	tone := Tone{Frequency: 440, Duration: 100 * time.Millisecond, Volume: 0.5}
	if got := tone.envelope(0.005); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Expected full volume after attack, got %f", got)
	}
	if got := tone.envelope(0.0025); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("Expected half volume mid attack, got %f", got)
	}
	if got := tone.envelope(0.1); got != 0 {
		t.Errorf("Expected silence at the end, got %f", got)
	}
}

func TestErrorCueIsSquare(t *testing.T) {
	r, _ := RecipeFor(CueError)
	for _, tone := range r.Tones {
		if tone.Wave != Square {
			t.Errorf("Error tones are square waves, got %v", tone.Wave)
		}
	}
}

func TestClickIsDeterministic(t *testing.T) {
	a, _ := Synthesize(CueClick, DefaultSampleRate)
	b, _ := Synthesize(CueClick, DefaultSampleRate)
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("Click rendering must be deterministic")
		}
	}
	if peak(a) == 0 {
		t.Error("Click should not be silent")
	}
}

type recordingOutput struct {
	mu     sync.Mutex
	played [][]float32
	err    error
}

func (r *recordingOutput) Play(samples []float32, sampleRate int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, samples)
	return r.err
}

func TestPlayerHonoursPreference(t *testing.T) {
	out := &recordingOutput{}
	p := NewPlayer(out, zaptest.NewLogger(t))

	p.Play(CueStart)
	p.SetEnabled(false)
	p.Play(CueStop)
	p.SetEnabled(true)
	p.Play(CueSuccess)
	p.Close()

	if len(out.played) != 2 {
		t.Errorf("Expected 2 cues played, got %d", len(out.played))
	}
}

func TestPlayerSwallowsOutputErrors(t *testing.T) {
	out := &recordingOutput{err: errors.New("no device")}
	p := NewPlayer(out, zaptest.NewLogger(t))
	p.Play(CueError)
	p.Play("unknown")
	p.Close()

	if len(out.played) != 1 {
		t.Errorf("Expected only the known cue to reach the output, got %d", len(out.played))
	}

	var nilPlayer *Player
	nilPlayer.Play(CueStart)
	nilPlayer.Close()
}

type blockingOutput struct {
	release chan struct{}
	mu      sync.Mutex
	played  int
}

func (b *blockingOutput) Play(samples []float32, sampleRate int) error {
	<-b.release
	b.mu.Lock()
	defer b.mu.Unlock()
	b.played++
	return nil
}

func TestPlayerDoesNotWaitForDevice(t *testing.T) {
	out := &blockingOutput{release: make(chan struct{})}
	p := NewPlayer(out, zaptest.NewLogger(t))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			p.Play(CueClick)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Play waited for the output device")
	}

	close(out.release)
	p.Close()
	if out.played < 1 || out.played > queueSize+1 {
		t.Errorf("Expected between 1 and %d cues played, got %d", queueSize+1, out.played)
	}

	p.Play(CueClick)
	if out.played > queueSize+1 {
		t.Error("Play after Close should be ignored")
	}
}
