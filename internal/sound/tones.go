// Package sound synthesizes the short feedback cues played around a recording.
package sound

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// DefaultSampleRate is used by the cue player
const DefaultSampleRate = 44100

// Cue names one feedback sound
type Cue string

const (
	CueClick   Cue = "click"
	CueStart   Cue = "start"
	CueStop    Cue = "stop"
	CueSuccess Cue = "success"
	CueError   Cue = "error"
)

// Wave is an oscillator shape
type Wave int

const (
	Sine Wave = iota
	Square
)

// Tone is one enveloped oscillator note
type Tone struct {
	Frequency float64
	Duration  time.Duration
	Wave      Wave
	Volume    float64
	Delay     time.Duration
}

// Recipe is what a cue is made of
type Recipe struct {
	Click bool
	Tones []Tone
}

const (
	attack        = 5 * time.Millisecond
	clickNoise    = 8 * time.Millisecond
	clickDecay    = 12 * time.Millisecond
	clickLength   = 15 * time.Millisecond
	clickCenterHz = 3200
	clickQ        = 0.8
	clickGain     = 1.2
	clickFloor    = 0.001
)

var recipes = map[Cue]Recipe{
	CueClick: {Click: true},
	CueStart: {
		Click: true,
		Tones: []Tone{{Frequency: 880, Duration: 60 * time.Millisecond, Wave: Sine, Volume: 0.15, Delay: 30 * time.Millisecond}},
	},
	CueStop: {
		Click: true,
		Tones: []Tone{{Frequency: 440, Duration: 80 * time.Millisecond, Wave: Sine, Volume: 0.12, Delay: 20 * time.Millisecond}},
	},
	CueSuccess: {
		Tones: []Tone{
			{Frequency: 784, Duration: 80 * time.Millisecond, Wave: Sine, Volume: 0.2},
			{Frequency: 1047, Duration: 120 * time.Millisecond, Wave: Sine, Volume: 0.2, Delay: 90 * time.Millisecond},
		},
	},
	CueError: {
		Tones: []Tone{
			{Frequency: 220, Duration: 100 * time.Millisecond, Wave: Square, Volume: 0.15},
			{Frequency: 200, Duration: 120 * time.Millisecond, Wave: Square, Volume: 0.12, Delay: 130 * time.Millisecond},
		},
	},
}

// RecipeFor returns the recipe of cue
func RecipeFor(cue Cue) (Recipe, error) {
	r, ok := recipes[cue]
	if !ok {
		return Recipe{}, fmt.Errorf("unknown cue %q", cue)
	}
	return r, nil
}

// Synthesize renders cue into mono samples in [-1, 1]
func Synthesize(cue Cue, sampleRate int) ([]float32, error) {
	recipe, err := RecipeFor(cue)
	if err != nil {
		return nil, err
	}
	return recipe.Render(sampleRate), nil
}

// Length is the time until the last component ends
func (r Recipe) Length() time.Duration {
	var length time.Duration
	if r.Click {
		length = clickLength
	}
	for _, t := range r.Tones {
		if end := t.Delay + t.Duration; end > length {
			length = end
		}
	}
	return length
}

// Render mixes the components of r
func (r Recipe) Render(sampleRate int) []float32 {
	buf := make([]float64, samples(r.Length(), sampleRate))
	if r.Click {
		renderClick(buf, sampleRate)
	}
	for _, t := range r.Tones {
		t.render(buf, sampleRate)
	}

	out := make([]float32, len(buf))
	for i, v := range buf {
		out[i] = float32(math.Max(-1, math.Min(1, v)))
	}
	return out
}

func samples(d time.Duration, sampleRate int) int {
	return int(d.Seconds() * float64(sampleRate))
}

// envelope ramps linearly to volume over the attack, then linearly back to zero at the end
func (t Tone) envelope(at float64) float64 {
	a := attack.Seconds()
	d := t.Duration.Seconds()
	switch {
	case at < 0 || at >= d:
		return 0
	case at < a:
		return t.Volume * at / a
	default:
		return t.Volume * (d - at) / (d - a)
	}
}

func (t Tone) render(buf []float64, sampleRate int) {
	start := samples(t.Delay, sampleRate)
	n := samples(t.Duration, sampleRate)
	for i := 0; i < n && start+i < len(buf); i++ {
		at := float64(i) / float64(sampleRate)
		phase := 2 * math.Pi * t.Frequency * at
		var v float64
		switch t.Wave {
		case Square:
			if math.Sin(phase) >= 0 {
				v = 1
			} else {
				v = -1
			}
		default:
			v = math.Sin(phase)
		}
		buf[start+i] += v * t.envelope(at)
	}
}

// renderClick writes a band-passed white noise burst with an exponential decay
func renderClick(buf []float64, sampleRate int) {
	rng := rand.New(rand.NewPCG(0x5eed, 0xc11c))

	// RBJ band-pass, constant 0 dB peak gain
	w0 := 2 * math.Pi * clickCenterHz / float64(sampleRate)
	alpha := math.Sin(w0) / (2 * clickQ)
	a0 := 1 + alpha
	b0, b2 := alpha/a0, -alpha/a0
	a1, a2 := -2*math.Cos(w0)/a0, (1-alpha)/a0

	var x1, x2, y1, y2 float64
	n := samples(clickNoise, sampleRate)
	decay := clickDecay.Seconds()
	for i := 0; i < n && i < len(buf); i++ {
		x := rng.Float64()*2 - 1
		y := b0*x + b2*x2 - a1*y1 - a2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y

		at := float64(i) / float64(sampleRate)
		gain := clickGain * math.Pow(clickFloor/clickGain, math.Min(at/decay, 1))
		buf[i] += y * gain
	}
}
