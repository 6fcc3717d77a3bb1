package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/tickfork/physics"
	"github.com/lixenwraith/tickfork/simulation"
	"github.com/lixenwraith/tickfork/vmath"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Config is the host configuration, loaded from YAML over Default
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Frame      FrameConfig      `yaml:"frame"`
	Spawn      SpawnConfig      `yaml:"spawn"`
	Audio      AudioConfig      `yaml:"audio"`
	Network    NetworkConfig    `yaml:"network"`
	Debug      bool             `yaml:"debug"`
}

// SimulationConfig sizes the fixed simulation tick
type SimulationConfig struct {
	// TickRate is ticks per virtual second
	TickRate float64 `yaml:"tick_rate"`
}

// PhysicsConfig maps onto physics.Configuration
type PhysicsConfig struct {
	Gravity              Vec3    `yaml:"gravity"`
	Active               bool    `yaml:"active"`
	SleepLinearThreshold float64 `yaml:"sleep_linear_threshold"`
	SleepTicks           int     `yaml:"sleep_ticks"`
	RestingSpeed         float64 `yaml:"resting_speed"`
}

// Vec3 is the YAML form of a vector
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// FrameConfig drives the host frame loop
type FrameConfig struct {
	FPS       int     `yaml:"fps"`
	Timescale float64 `yaml:"timescale"`
	// TimescaleStep is applied by the +/- keys
	TimescaleStep float64 `yaml:"timescale_step"`
}

// SpawnConfig paces the periodic ball spawner
type SpawnConfig struct {
	// Interval in virtual seconds between spawns
	Interval    float64 `yaml:"interval"`
	MaxBalls    int     `yaml:"max_balls"`
	Radius      float64 `yaml:"radius"`
	Restitution float64 `yaml:"restitution"`
	Height      float64 `yaml:"height"`
}

// AudioConfig controls the collision cue
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Volume     float64 `yaml:"volume"`
	SampleRate int     `yaml:"sample_rate"`
}

// NetworkConfig controls the snapshot stream and metrics endpoint
type NetworkConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	// SnapshotEvery broadcasts one snapshot per this many frames
	SnapshotEvery int `yaml:"snapshot_every"`
}

// Default returns the built-in configuration
func Default() *Config {
	pc := physics.DefaultConfiguration()
	return &Config{
		Simulation: SimulationConfig{TickRate: 64},
		Physics: PhysicsConfig{
			Gravity:              Vec3{X: pc.Gravity.X, Y: pc.Gravity.Y, Z: pc.Gravity.Z},
			Active:               pc.Active,
			SleepLinearThreshold: pc.SleepLinearThreshold,
			SleepTicks:           pc.SleepTicks,
			RestingSpeed:         pc.RestingSpeed,
		},
		Frame: FrameConfig{FPS: 60, Timescale: 1, TimescaleStep: 0.25},
		Spawn: SpawnConfig{
			Interval:    1.5,
			MaxBalls:    24,
			Radius:      0.5,
			Restitution: 0.7,
			Height:      8,
		},
		Audio:   AudioConfig{Enabled: false, Volume: 0.4, SampleRate: 48000},
		Network: NetworkConfig{Enabled: false, Addr: "127.0.0.1:8089", SnapshotEvery: 2},
	}
}

// Load reads path and parses it over the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result
// Unknown keys are rejected
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if len(data) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem at once
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Simulation.TickRate > 0, "simulation.tick_rate must be > 0, got %v", c.Simulation.TickRate)
	check(c.Physics.SleepLinearThreshold >= 0, "physics.sleep_linear_threshold must be >= 0")
	check(c.Physics.SleepTicks >= 0, "physics.sleep_ticks must be >= 0")
	check(c.Physics.RestingSpeed >= 0, "physics.resting_speed must be >= 0")
	check(c.Frame.FPS > 0 && c.Frame.FPS <= 1000, "frame.fps must be in 1..1000, got %d", c.Frame.FPS)
	check(c.Frame.TimescaleStep > 0, "frame.timescale_step must be > 0")
	check(c.Spawn.Interval > 0, "spawn.interval must be > 0, got %v", c.Spawn.Interval)
	check(c.Spawn.MaxBalls >= 0, "spawn.max_balls must be >= 0")
	check(c.Spawn.Radius > 0, "spawn.radius must be > 0")
	check(c.Spawn.Restitution >= 0 && c.Spawn.Restitution <= 1, "spawn.restitution must be in [0,1]")
	check(c.Audio.Volume >= 0 && c.Audio.Volume <= 1, "audio.volume must be in [0,1]")
	check(c.Audio.SampleRate > 0, "audio.sample_rate must be > 0")
	check(!c.Network.Enabled || c.Network.Addr != "", "network.addr required when network is enabled")
	check(c.Network.SnapshotEvery > 0, "network.snapshot_every must be > 0")

	return errors.Join(errs...)
}

// SimulationConfig returns the simulation domain settings
func (c *Config) SimulationConfig() simulation.Config {
	return simulation.Config{TickDuration: 1 / c.Simulation.TickRate}
}

// PhysicsConfiguration returns a fresh physics resource
func (c *Config) PhysicsConfiguration() *physics.Configuration {
	return &physics.Configuration{
		Gravity:              vmath.Vec3F{X: c.Physics.Gravity.X, Y: c.Physics.Gravity.Y, Z: c.Physics.Gravity.Z},
		Active:               c.Physics.Active,
		SleepLinearThreshold: c.Physics.SleepLinearThreshold,
		SleepTicks:           c.Physics.SleepTicks,
		RestingSpeed:         c.Physics.RestingSpeed,
	}
}
