package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/lixenwraith/tickfork/component"
	"github.com/lixenwraith/tickfork/config"
	"github.com/lixenwraith/tickfork/core"
	"github.com/lixenwraith/tickfork/engine"
	"github.com/lixenwraith/tickfork/physics"
	"github.com/lixenwraith/tickfork/simulation"
	"github.com/lixenwraith/tickfork/status"
	"github.com/lixenwraith/tickfork/vmath"
)

const initialBalls = 3

// scene owns the presentation app and the ball population
type scene struct {
	cfg     *config.Config
	app     *engine.App
	sim     *simulation.SimApp
	metrics *status.Registry

	rng   *rand.Rand
	balls []core.Entity
}

// newScene builds the presentation world, installs the simulation domain and the spawner
func newScene(cfg *config.Config, metrics *status.Registry, seed uint64) (*scene, error) {
	s := &scene{
		cfg:     cfg,
		app:     engine.NewPresentationApp(),
		metrics: metrics,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	w := s.app.World

	tl := component.NewTimeline()
	tl.Timescale = cfg.Frame.Timescale
	engine.SpawnTimeline(w, tl)

	physics.InsertResources(w.Resources, cfg.PhysicsConfiguration())
	engine.AddResource(w.Resources, metrics)

	ground := component.HalfSpace(vmath.Vec3F{Y: 1}, cfg.Spawn.Restitution)
	ground.ActiveEvents = true
	w.Spawn(
		engine.With(component.RigidBody{Kind: component.BodyFixed}),
		engine.With(vmath.TransformIdentity),
		engine.With(ground),
	)
	for i := 0; i < initialBalls && i < cfg.Spawn.MaxBalls; i++ {
		s.spawnBall(w)
	}

	gate, err := engine.NewFixedTick(cfg.Spawn.Interval)
	if err != nil {
		return nil, fmt.Errorf("spawner: %w", err)
	}
	s.app.AddSystem(engine.StagePreUpdate, engine.TimelineSystem())
	s.app.AddSystem(engine.StageUpdate, engine.Gate(gate, s.spawnBall))

	sim, err := simulation.Install(s.app, cfg.SimulationConfig(), simulation.DefaultRegistry())
	if err != nil {
		return nil, fmt.Errorf("install simulation: %w", err)
	}
	s.sim = sim
	return s, nil
}

// spawnBall drops a ball from the configured height, retiring the oldest one at capacity
func (s *scene) spawnBall(w *engine.World) {
	if s.cfg.Spawn.MaxBalls == 0 {
		return
	}
	if len(s.balls) >= s.cfg.Spawn.MaxBalls {
		oldest := s.balls[0]
		s.balls = s.balls[1:]
		w.DestroyEntity(oldest)
	}

	pos := vmath.Vec3F{X: s.rng.Float64()*8 - 4, Y: s.cfg.Spawn.Height}
	vel := vmath.Vec3F{X: s.rng.Float64()*4 - 2}
	ball := component.Ball(s.cfg.Spawn.Radius, s.cfg.Spawn.Restitution)
	ball.ActiveEvents = true

	e := w.Spawn(
		engine.With(component.RigidBody{Kind: component.BodyDynamic, Mass: 1}),
		engine.With(vmath.TransformFromTranslation(pos)),
		engine.With(component.Velocity{Linear: vel}),
		engine.With(component.Damping{Linear: 0.05}),
		engine.With(component.Sleeping{}),
		engine.With(ball),
		engine.With(component.LerpTransform{}),
	)
	s.balls = append(s.balls, e)
	s.metrics.Ints.Get("scene.balls").Store(int64(len(s.balls)))
	slog.Debug("ball spawned", "entity", e, "x", pos.X, "vx", vel.X)
}

// adjustTimescale adds delta to the presentation clock speed
func (s *scene) adjustTimescale(delta float64) float64 {
	tl := engine.SingleTimeline(s.app.World)
	tl.Timescale += delta
	engine.SetTimeline(s.app.World, tl)
	s.metrics.Floats.Get("scene.timescale").Set(tl.Timescale)
	return tl.Timescale
}

// reverseTimescale flips the clock direction, the simulation then catches up backwards
func (s *scene) reverseTimescale() float64 {
	tl := engine.SingleTimeline(s.app.World)
	return s.adjustTimescale(-2 * tl.Timescale)
}

// shutdown joins an in-flight episode so its state lands in the presentation world
func (s *scene) shutdown() {
	simulation.Shutdown(s.app.World)
}
