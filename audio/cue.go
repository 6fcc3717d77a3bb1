package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/tickfork/engine"
	"github.com/lixenwraith/tickfork/physics"
)

// maxCuesPerFrame bounds how many sounds one drained batch may start
const maxCuesPerFrame = 4

// Config controls the collision cue
type Config struct {
	Enabled    bool
	Volume     float64
	SampleRate int
	// HardImpact is the contact force mapped to a full-strength thud
	HardImpact float64
}

// DefaultConfig returns a muted cue at 48 kHz
func DefaultConfig() Config {
	return Config{Enabled: false, Volume: 0.4, SampleRate: 48000, HardImpact: 200}
}

// Cue turns physics events into short sounds
// Without an initialized speaker it still drains and counts, so the host runs the same with audio off
type Cue struct {
	mu          sync.Mutex
	cfg         Config
	rate        beep.SampleRate
	mixer       *beep.Mixer
	initialized bool

	clicks atomic.Int64
	thuds  atomic.Int64
}

// NewCue creates a cue, Initialize opens the speaker
func NewCue(cfg Config) *Cue {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultConfig().SampleRate
	}
	if cfg.HardImpact <= 0 {
		cfg.HardImpact = DefaultConfig().HardImpact
	}
	return &Cue{
		cfg:   cfg,
		rate:  beep.SampleRate(cfg.SampleRate),
		mixer: &beep.Mixer{},
	}
}

// Initialize opens the speaker when the cue is enabled
func (c *Cue) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized || !c.cfg.Enabled {
		return nil
	}
	if err := speaker.Init(c.rate, c.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("audio init: %w", err)
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Close stops every playing cue
func (c *Cue) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	c.initialized = false
}

// Clicks returns the number of contact-start cues triggered
func (c *Cue) Clicks() int64 {
	return c.clicks.Load()
}

// Thuds returns the number of hard-impact cues triggered
func (c *Cue) Thuds() int64 {
	return c.thuds.Load()
}

func (c *Cue) play(s beep.Streamer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

// Consume triggers cues for one batch of drained events
func (c *Cue) Consume(collisions []physics.CollisionEvent, forces []physics.ContactForceEvent) {
	started := 0
	for _, ev := range collisions {
		if ev.Kind != physics.CollisionStarted {
			continue
		}
		started++
		if started > maxCuesPerFrame {
			break
		}
		c.clicks.Add(1)
		c.play(ClickSound(c.rate, c.cfg.Volume))
	}

	var strongest float64
	for _, ev := range forces {
		if ev.Magnitude > strongest {
			strongest = ev.Magnitude
		}
	}
	if strongest > 0 {
		c.thuds.Add(1)
		c.play(ThudSound(c.rate, c.cfg.Volume, strongest/c.cfg.HardImpact))
	}
}

// System drains the presentation event queues each frame
// While an episode is in flight the queues are placeholders and usually empty
func (c *Cue) System() engine.System {
	return engine.Func(func(w *engine.World) {
		var collisions []physics.CollisionEvent
		var forces []physics.ContactForceEvent
		if q, ok := engine.GetResource[*physics.Events[physics.CollisionEvent]](w.Resources); ok {
			collisions = q.Drain()
		}
		if q, ok := engine.GetResource[*physics.Events[physics.ContactForceEvent]](w.Resources); ok {
			forces = q.Drain()
		}
		if len(collisions) == 0 && len(forces) == 0 {
			return
		}
		slog.Debug("collision cue", "collisions", len(collisions), "forces", len(forces))
		c.Consume(collisions, forces)
	})
}
