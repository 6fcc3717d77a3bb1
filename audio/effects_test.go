package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/tickfork/core"
	"github.com/lixenwraith/tickfork/engine"
	"github.com/lixenwraith/tickfork/physics"
)

// TestOscillatorSine verifies sine wave generation
func TestOscillatorSine(t *testing.T) {
	rate := beep.SampleRate(44100)
	osc := NewOscillator(440.0, 100*time.Millisecond, WaveSine, rate)

	samples := make([][2]float64, 100)
	n, ok := osc.Stream(samples)
	if !ok || n != 100 {
		t.Fatalf("Stream = %d, %v; want 100, true", n, ok)
	}

	for i := 0; i < n; i++ {
		if samples[i][0] < -1.0 || samples[i][0] > 1.0 {
			t.Errorf("Sample %d out of range: %f", i, samples[i][0])
		}
		if samples[i][0] != samples[i][1] {
			t.Errorf("Sample %d channels differ", i)
		}
	}
	if osc.Err() != nil {
		t.Errorf("Expected no error, got: %v", osc.Err())
	}
}

// TestOscillatorSquare verifies square wave generation
func TestOscillatorSquare(t *testing.T) {
	rate := beep.SampleRate(44100)
	osc := NewOscillator(220.0, 50*time.Millisecond, WaveSquare, rate)

	samples := make([][2]float64, 50)
	n, _ := osc.Stream(samples)
	for i := 0; i < n; i++ {
		if v := samples[i][0]; v != -1.0 && v != 1.0 {
			t.Errorf("Square wave sample %d should be -1.0 or 1.0, got %f", i, v)
		}
	}
}

// TestOscillatorDuration verifies the stream ends after its duration
func TestOscillatorDuration(t *testing.T) {
	rate := beep.SampleRate(44100)
	duration := 10 * time.Millisecond
	expected := rate.N(duration)

	osc := NewOscillator(440.0, duration, WaveSine, rate)

	samples := make([][2]float64, expected*2)
	if n, _ := osc.Stream(samples); n != expected {
		t.Errorf("Expected %d samples, got %d", expected, n)
	}

	n2, ok2 := osc.Stream(make([][2]float64, 10))
	if ok2 || n2 != 0 {
		t.Errorf("Expected drained stream, got n=%d ok=%v", n2, ok2)
	}
}

// TestEnvelopeShape verifies attack ramps from silence and release ends near silence
func TestEnvelopeShape(t *testing.T) {
	rate := beep.SampleRate(44100)
	duration := 100 * time.Millisecond

	osc := NewOscillator(0, duration, WaveSquare, rate) // constant +1
	env := NewEnvelope(osc, duration, 20*time.Millisecond, 20*time.Millisecond, rate)

	samples := make([][2]float64, rate.N(duration))
	n, _ := env.Stream(samples)
	if n != len(samples) {
		t.Fatalf("Expected %d samples, got %d", len(samples), n)
	}

	if samples[0][0] != 0 {
		t.Errorf("first sample = %f, want 0", samples[0][0])
	}
	if mid := samples[n/2][0]; mid != 1 {
		t.Errorf("sustain sample = %f, want 1", mid)
	}
	if last := samples[n-1][0]; last <= 0 || last > 0.01 {
		t.Errorf("last sample = %f, want just above 0", last)
	}
}

// TestCueSounds verifies generated cues are finite and bounded
func TestCueSounds(t *testing.T) {
	rate := beep.SampleRate(48000)
	for name, s := range map[string]beep.Streamer{
		"click": ClickSound(rate, 0.5),
		"thud":  ThudSound(rate, 0.5, 2),
		"muted": ClickSound(rate, 0),
	} {
		buf := make([][2]float64, 512)
		total := 0
		for i := 0; i < 100; i++ {
			n, ok := s.Stream(buf)
			for j := 0; j < n; j++ {
				if buf[j][0] < -1.5 || buf[j][0] > 1.5 {
					t.Fatalf("%s: sample out of range: %f", name, buf[j][0])
				}
			}
			total += n
			if !ok {
				break
			}
		}
		if total == 0 || total > rate.N(thudDuration) {
			t.Errorf("%s: streamed %d samples", name, total)
		}
	}
}

// TestCueSystemDrains verifies the system empties the queues without a speaker
func TestCueSystemDrains(t *testing.T) {
	w := engine.NewWorld()
	physics.InsertResources(w.Resources, nil)
	collisions := engine.MustGetResource[*physics.Events[physics.CollisionEvent]](w.Resources)
	forces := engine.MustGetResource[*physics.Events[physics.ContactForceEvent]](w.Resources)

	for i := 0; i < 6; i++ {
		collisions.Send(physics.CollisionEvent{Kind: physics.CollisionStarted, A: core.Entity(i + 1), B: 100})
	}
	collisions.Send(physics.CollisionEvent{Kind: physics.CollisionStopped, A: 1, B: 100})
	forces.Send(physics.ContactForceEvent{A: 1, B: 100, Magnitude: 50})
	forces.Send(physics.ContactForceEvent{A: 2, B: 100, Magnitude: 500})

	cue := NewCue(DefaultConfig())
	if err := cue.Initialize(); err != nil {
		t.Fatalf("disabled cue must not open the speaker: %v", err)
	}
	cue.System().Update(w)

	if collisions.Len() != 0 || forces.Len() != 0 {
		t.Error("queues not drained")
	}
	if cue.Clicks() != maxCuesPerFrame {
		t.Errorf("Clicks = %d, want %d", cue.Clicks(), maxCuesPerFrame)
	}
	if cue.Thuds() != 1 {
		t.Errorf("Thuds = %d, want 1", cue.Thuds())
	}

	// No queues present, e.g. a world without physics
	cue.System().Update(engine.NewWorld())
}
