package simulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/lixenwraith/tickfork/engine"
	"github.com/lixenwraith/tickfork/physics"
)

// Simulation stages, run in this order for every tick
const (
	StagePrePhysics       engine.Stage = "pre_physics"
	StageSyncBackend      engine.Stage = "sync_backend"
	StageStepSimulation   engine.Stage = "step_simulation"
	StagePhysicsWriteback engine.Stage = "physics_writeback"
	StageDetectDespawn    engine.Stage = "detect_despawn"
	StagePostPhysics      engine.Stage = "post_physics"
)

// ErrInvalidTickDuration is returned for a tick duration that is not strictly positive
var ErrInvalidTickDuration = errors.New("tick duration must be strictly positive")

// Config configures the simulation domain
type Config struct {
	// TickDuration is the fixed step in virtual seconds
	TickDuration float64
}

// DefaultConfig runs the simulation at 64 ticks per virtual second
func DefaultConfig() Config {
	return Config{TickDuration: 1.0 / 64.0}
}

// SimApp is the simulation domain state
// It is owned either by the presentation resources (ready) or by a SimTask (in flight), never both
type SimApp struct {
	App *engine.App

	// TargetTick is the tick the last fork aimed for
	TargetTick   int64
	TickDuration float64

	registry *Registry
	current  int64

	startup   []engine.System
	startedUp bool
}

// NewSimApp builds the simulation domain with the physics pipeline and sample history preinstalled
// A nil reg uses DefaultRegistry
func NewSimApp(cfg Config, reg *Registry) (*SimApp, error) {
	if !(cfg.TickDuration > 0) || math.IsInf(cfg.TickDuration, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTickDuration, cfg.TickDuration)
	}
	if reg == nil {
		reg = DefaultRegistry()
	}

	app := engine.NewApp(
		StagePrePhysics,
		StageSyncBackend,
		StageStepSimulation,
		StagePhysicsWriteback,
		StageDetectDespawn,
		StagePostPhysics,
	)
	app.AddSystem(StageSyncBackend, engine.Func(physics.SyncBackend))
	app.AddSystem(StageStepSimulation, engine.Func(physics.StepSimulation))
	app.AddSystem(StagePhysicsWriteback, engine.Func(physics.PhysicsWriteback))
	app.AddSystem(StageDetectDespawn, engine.Func(physics.DetectDespawn))
	app.AddSystem(StagePostPhysics, engine.Func(UpdateLerpTransform))

	return &SimApp{
		App:          app,
		TickDuration: cfg.TickDuration,
		registry:     reg,
		current:      -1,
	}, nil
}

// CurrentTick returns the last completed tick, -1 before the first
func (a *SimApp) CurrentTick() int64 {
	return a.current
}

// Registry returns the transfer registry used at fork and join
func (a *SimApp) Registry() *Registry {
	return a.registry
}

// AddSystem adds pre or post physics logic to the simulation schedule
func (a *SimApp) AddSystem(stage engine.Stage, system engine.System) *SimApp {
	a.App.AddSystem(stage, system)
	return a
}

// AddStartupSystem registers a system run once by Startup
func (a *SimApp) AddStartupSystem(system engine.System) *SimApp {
	a.startup = append(a.startup, system)
	return a
}

// Startup runs the startup systems against the simulation world, only the first call has effect
func (a *SimApp) Startup() {
	if a.startedUp {
		return
	}
	a.startedUp = true
	for _, s := range a.startup {
		s.Update(a.App.World)
	}
}

// RunTick produces one tick in direction sign (+1 or -1)
// The domain clock and so every sample timestamp is the produced tick (current+sign), not the one being left.
// The step then sees Delta == sign*TickDuration
func (a *SimApp) RunTick(sign int64) {
	next := a.current + sign
	ts := float64(next) * a.TickDuration

	tl := engine.SingleTimeline(a.App.World)
	tl.Set(ts, ts-float64(sign)*a.TickDuration)
	engine.SetTimeline(a.App.World, tl)

	a.App.Update()
	a.current = next
}

// targetFor is the tick a presentation timestamp falls in
func (a *SimApp) targetFor(timestamp float64) int64 {
	return int64(math.Floor(timestamp / a.TickDuration))
}
