package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveNoise
)

// Cue timings
const (
	clickDuration = 40 * time.Millisecond
	clickAttack   = 2 * time.Millisecond
	clickRelease  = 30 * time.Millisecond

	thudDuration = 90 * time.Millisecond
	thudAttack   = 3 * time.Millisecond
	thudRelease  = 70 * time.Millisecond
)

// oscillator generates a raw wave for a fixed number of samples
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a wave generator that ends after duration
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release to a stream
type envelope struct {
	streamer     beep.Streamer
	position     int
	attack       int
	releaseStart int
	release      int
	total        int
}

// NewEnvelope shapes s over duration, sustaining at full volume between attack and release
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	start := total - rel
	if start < att {
		start = att
	}
	return &envelope{
		streamer:     s,
		attack:       att,
		releaseStart: start,
		release:      rel,
		total:        total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}

		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if e.release > 0 && e.position >= e.releaseStart {
			vol = math.Max(0, float64(e.total-e.position)/float64(e.release))
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales s linearly; zero or less is silent since log2(0) is -Inf
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// ClickSound is the short tick played when a contact starts
func ClickSound(rate beep.SampleRate, volume float64) beep.Streamer {
	tone := NewOscillator(1320, clickDuration, WaveSine, rate)
	shaped := NewEnvelope(tone, clickDuration, clickAttack, clickRelease, rate)
	return newVolume(shaped, volume)
}

// ThudSound is played for hard impacts, strength in [0,1] scales its loudness and pitch
func ThudSound(rate beep.SampleRate, volume, strength float64) beep.Streamer {
	strength = math.Max(0, math.Min(1, strength))

	body := NewOscillator(90+strength*60, thudDuration, WaveSquare, rate)
	bodyShaped := NewEnvelope(body, thudDuration, thudAttack, thudRelease, rate)

	noise := NewOscillator(0, thudDuration, WaveNoise, rate)
	noiseShaped := NewEnvelope(noise, thudDuration, thudAttack, thudRelease/2, rate)

	mixed := beep.Mix(
		newVolume(bodyShaped, 0.6),
		newVolume(noiseShaped, 0.25),
	)
	return newVolume(mixed, volume*(0.3+0.7*strength))
}
