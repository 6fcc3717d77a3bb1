package simulation

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/tickfork/component"
	"github.com/lixenwraith/tickfork/core"
	"github.com/lixenwraith/tickfork/engine"
	"github.com/lixenwraith/tickfork/physics"
	"github.com/lixenwraith/tickfork/status"
	"github.com/lixenwraith/tickfork/vmath"
)

// Exact in binary so tick boundaries do not depend on rounding
const testTick = 0.125

func newMain(t *testing.T, setup ...func(*SimApp)) *engine.App {
	t.Helper()
	main := engine.NewPresentationApp()
	engine.SpawnTimeline(main.World, component.NewTimeline())
	physics.InsertResources(main.World.Resources, nil)
	engine.AddResource(main.World.Resources, status.NewRegistry())

	if _, err := Install(main, Config{TickDuration: testTick}, nil, setup...); err != nil {
		t.Fatalf("Install: %v", err)
	}
	return main
}

type scene struct {
	ball, other, ground core.Entity
}

func spawnScene(w *engine.World) scene {
	ground := component.HalfSpace(vmath.Vec3F{Y: 1}, 0.3)
	ground.ActiveEvents = true
	return scene{
		ball: w.Spawn(
			engine.With(component.RigidBody{Kind: component.BodyDynamic, Mass: 1}),
			engine.With(vmath.TransformFromTranslation(vmath.Vec3F{Y: 3})),
			engine.With(component.Velocity{Linear: vmath.Vec3F{X: 0.5}}),
			engine.With(component.Ball(0.5, 0.6)),
			engine.With(component.LerpTransform{}),
		),
		other: w.Spawn(
			engine.With(component.RigidBody{Kind: component.BodyDynamic, Mass: 2}),
			engine.With(vmath.TransformFromTranslation(vmath.Vec3F{X: 0.8, Y: 1})),
			engine.With(component.Ball(0.5, 0.6)),
			engine.With(component.LerpTransform{}),
		),
		ground: w.Spawn(
			engine.With(component.RigidBody{Kind: component.BodyFixed}),
			engine.With(vmath.TransformFromTranslation(vmath.Vec3F{})),
			engine.With(ground),
		),
	}
}

func setClock(w *engine.World, ts float64) {
	tl := engine.SingleTimeline(w)
	tl.Set(ts, tl.Timestamp)
	engine.SetTimeline(w, tl)
}

// settle forks and waits for the episode
func settle(w *engine.World) {
	Fork(w)
	Shutdown(w)
}

func simApp(t *testing.T, w *engine.World) *SimApp {
	t.Helper()
	app, ok := engine.GetResource[*SimApp](w.Resources)
	if !ok {
		t.Fatal("SimApp not ready in presentation resources")
	}
	return app
}

func TestForkJoinReachesTarget(t *testing.T) {
	main := newMain(t)
	spawnScene(main.World)

	steps := []struct {
		ts   float64
		want int64
	}{
		{0, 0},
		{0.1, 0},
		{0.5, 4},
		{2.0, 16},
		{2.2, 17},
	}
	for _, s := range steps {
		setClock(main.World, s.ts)
		settle(main.World)

		app := simApp(t, main.World)
		if app.CurrentTick() != s.want {
			t.Errorf("ts=%v: CurrentTick = %d, want %d", s.ts, app.CurrentTick(), s.want)
		}
		if app.TargetTick != s.want {
			t.Errorf("ts=%v: TargetTick = %d, want %d", s.ts, app.TargetTick, s.want)
		}
		if app.App.World.Len() != 0 {
			t.Errorf("simulation world not cleared after join: %d entities", app.App.World.Len())
		}
	}
}

func TestFrameJoinsOnLaterFrame(t *testing.T) {
	main := newMain(t)
	spawnScene(main.World)
	setClock(main.World, 1.0)

	Frame(main.World)
	deadline := time.Now().Add(5 * time.Second)
	for !engine.HasResource[*SimApp](main.World.Resources) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
		Join(main.World)
	}
	if app := simApp(t, main.World); app.CurrentTick() != 8 {
		t.Errorf("CurrentTick = %d, want 8", app.CurrentTick())
	}
}

func TestMultiTickEquivalence(t *testing.T) {
	batched := newMain(t)
	sb := spawnScene(batched.World)
	setClock(batched.World, 0)
	settle(batched.World)
	setClock(batched.World, 3.0)
	settle(batched.World)

	single := newMain(t)
	ss := spawnScene(single.World)
	for k := 0; k <= 24; k++ {
		setClock(single.World, float64(k)*testTick)
		settle(single.World)
	}

	if simApp(t, batched.World).CurrentTick() != simApp(t, single.World).CurrentTick() {
		t.Fatalf("ticks differ: %d vs %d",
			simApp(t, batched.World).CurrentTick(), simApp(t, single.World).CurrentTick())
	}

	for _, pair := range [][2]core.Entity{{sb.ball, ss.ball}, {sb.other, ss.other}} {
		a, b := pair[0], pair[1]
		if a != b {
			t.Fatalf("entity ids differ: %d vs %d", a, b)
		}
		ta, _ := engine.GetComponent[component.Transform](batched.World, a)
		tb, _ := engine.GetComponent[component.Transform](single.World, b)
		if ta != tb {
			t.Errorf("entity %d transform differs:\n%+v\n%+v", a, ta, tb)
		}
		va, _ := engine.GetComponent[component.Velocity](batched.World, a)
		vb, _ := engine.GetComponent[component.Velocity](single.World, b)
		if va != vb {
			t.Errorf("entity %d velocity differs: %+v vs %+v", a, va, vb)
		}
		la, _ := engine.GetComponent[component.LerpTransform](batched.World, a)
		lb, _ := engine.GetComponent[component.LerpTransform](single.World, b)
		if la != lb {
			t.Errorf("entity %d sample history differs", a)
		}
		sa, _ := engine.GetComponent[component.Sleeping](batched.World, a)
		sl, _ := engine.GetComponent[component.Sleeping](single.World, b)
		if sa != sl {
			t.Errorf("entity %d sleep state differs: %+v vs %+v", a, sa, sl)
		}
	}
}

func TestExtractWritebackRoundTrip(t *testing.T) {
	main := engine.NewWorld()
	engine.SpawnTimeline(main, component.NewTimeline())
	physics.InsertResources(main.Resources, nil)
	s := spawnScene(main)
	engine.SetComponent(main, s.ball, component.Sleeping{LowTicks: 3})
	engine.SetComponent(main, s.ball, component.RigidBodyHandle{ID: 7})
	engine.SetComponent(main, s.ground, component.ColliderHandle{ID: 9})
	lt := component.LerpTransform{}
	lt.Push(0.5, vmath.TransformFromTranslation(vmath.Vec3F{Y: 2}))
	engine.SetComponent(main, s.ball, lt)

	ctx := engine.MustGetResource[*physics.Context](main.Resources)
	cfg := engine.MustGetResource[*physics.Configuration](main.Resources)
	collisions := engine.MustGetResource[*physics.Events[physics.CollisionEvent]](main.Resources)

	before := map[core.Entity][4]any{}
	for _, e := range []core.Entity{s.ball, s.other, s.ground} {
		tr, _ := engine.GetComponent[component.Transform](main, e)
		v, _ := engine.GetComponent[component.Velocity](main, e)
		sl, _ := engine.GetComponent[component.Sleeping](main, e)
		l, _ := engine.GetComponent[component.LerpTransform](main, e)
		before[e] = [4]any{tr, v, sl, l}
	}

	sim := engine.NewWorld()
	sim.ReserveUpTo(main.Watermark())
	reg := DefaultRegistry()
	reg.Extract(main, sim)

	if got, ok := engine.GetResource[*physics.Context](main.Resources); !ok || got == ctx {
		t.Error("presentation must hold a fresh Context placeholder during an episode")
	} else if got.BodyCount() != 0 {
		t.Errorf("Context placeholder has %d bodies, want empty", got.BodyCount())
	}
	if got, ok := engine.GetResource[*physics.Configuration](main.Resources); !ok || got == cfg {
		t.Error("presentation must hold a Configuration placeholder during an episode")
	}
	if got := engine.MustGetResource[*physics.Context](sim.Resources); got != ctx {
		t.Error("simulation did not receive the presentation Context")
	}
	if !engine.HasResource[*physics.Events[physics.CollisionEvent]](main.Resources) {
		t.Error("event queue placeholder missing in presentation")
	}
	if sim.Len() != 4 {
		t.Errorf("simulation entities = %d, want 4", sim.Len())
	}

	reg.Writeback(sim, main)

	if got := engine.MustGetResource[*physics.Context](main.Resources); got != ctx {
		t.Error("Context did not come back")
	}
	if got := engine.MustGetResource[*physics.Configuration](main.Resources); got != cfg {
		t.Error("Configuration did not come back")
	}
	if got := engine.MustGetResource[*physics.Events[physics.CollisionEvent]](main.Resources); got != collisions {
		t.Error("collision queue placeholder was not replaced")
	}

	for e, want := range before {
		tr, _ := engine.GetComponent[component.Transform](main, e)
		v, _ := engine.GetComponent[component.Velocity](main, e)
		sl, _ := engine.GetComponent[component.Sleeping](main, e)
		l, _ := engine.GetComponent[component.LerpTransform](main, e)
		if got := [4]any{tr, v, sl, l}; got != want {
			t.Errorf("entity %d changed by round trip:\n got %+v\nwant %+v", e, got, want)
		}
	}
	if h, _ := engine.GetComponent[component.RigidBodyHandle](main, s.ball); h.ID != 7 {
		t.Errorf("RigidBodyHandle = %d, want 7", h.ID)
	}
}

func TestEntityCorrespondence(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once
	main := newMain(t, func(app *SimApp) {
		app.AddSystem(StagePrePhysics, engine.Func(func(*engine.World) {
			once.Do(func() { <-release })
		}))
	})
	s := spawnScene(main.World)

	setClock(main.World, 0.5)
	Fork(main.World)
	if !engine.HasResource[*SimTask](main.World.Resources) {
		t.Fatal("expected an episode in flight")
	}

	// Presentation keeps mutating while the episode runs
	late := main.World.Spawn(
		engine.With(component.RigidBody{Kind: component.BodyDynamic, Mass: 1}),
		engine.With(vmath.TransformFromTranslation(vmath.Vec3F{Y: 9})),
		engine.With(component.Ball(0.5, 0.5)),
	)
	main.World.DestroyEntity(s.other)

	close(release)
	Shutdown(main.World)

	tr, _ := engine.GetComponent[component.Transform](main.World, s.ball)
	if tr.Translation.Y >= 3 {
		t.Errorf("ball did not receive simulated transform: %+v", tr.Translation)
	}
	lt, _ := engine.GetComponent[component.LerpTransform](main.World, s.ball)
	if lt.Count != component.LerpHistoryLen {
		t.Errorf("sample history count = %d", lt.Count)
	}
	if newest, _ := lt.Newest(); newest.Timestamp != 4*testTick {
		t.Errorf("newest sample at %v, want %v", newest.Timestamp, 4*testTick)
	}

	if main.World.IsAlive(s.other) || engine.HasComponent[component.Transform](main.World, s.other) {
		t.Error("despawned entity resurrected by writeback")
	}
	lateTr, _ := engine.GetComponent[component.Transform](main.World, late)
	if lateTr.Translation.Y != 9 {
		t.Errorf("entity spawned mid-episode was touched: %+v", lateTr.Translation)
	}
	if engine.HasComponent[component.RigidBodyHandle](main.World, late) {
		t.Error("entity spawned mid-episode got a body before its first fork")
	}

	// Next episode picks it up under the same id
	setClock(main.World, 1.0)
	settle(main.World)
	if !engine.HasComponent[component.RigidBodyHandle](main.World, late) {
		t.Error("late entity not simulated by the next episode")
	}
	ctx := engine.MustGetResource[*physics.Context](main.World.Resources)
	if ctx.BodyCount() != 3 {
		t.Errorf("BodyCount = %d, want 3 (ball, ground, late)", ctx.BodyCount())
	}
}

func TestSingleFlight(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once
	main := newMain(t, func(app *SimApp) {
		app.AddSystem(StagePrePhysics, engine.Func(func(*engine.World) {
			once.Do(func() { <-release })
		}))
	})
	spawnScene(main.World)
	reg := engine.MustGetResource[*status.Registry](main.World.Resources)

	setClock(main.World, 0.25)
	Fork(main.World)
	first := engine.MustGetResource[*SimTask](main.World.Resources)

	for i := 1; i <= 5; i++ {
		setClock(main.World, 0.25+float64(i))
		Frame(main.World)

		task, ok := engine.GetResource[*SimTask](main.World.Resources)
		if !ok || task != first {
			t.Fatalf("frame %d: a second episode is in flight", i)
		}
		if engine.HasResource[*SimApp](main.World.Resources) {
			t.Fatalf("frame %d: SimApp ready while episode in flight", i)
		}
	}
	if got := reg.Ints.Get("sim.forks").Load(); got != 1 {
		t.Errorf("sim.forks = %d, want 1", got)
	}
	if got := reg.Ints.Get("sim.polls_pending").Load(); got < 5 {
		t.Errorf("sim.polls_pending = %d, want >= 5", got)
	}

	close(release)
	Shutdown(main.World)
	if got := simApp(t, main.World).CurrentTick(); got != 2 {
		t.Errorf("CurrentTick = %d, want 2", got)
	}
}

func TestIdleSteadyState(t *testing.T) {
	main := newMain(t)
	spawnScene(main.World)
	reg := engine.MustGetResource[*status.Registry](main.World.Resources)

	setClock(main.World, 0.5)
	settle(main.World)
	forks := reg.Ints.Get("sim.forks").Load()

	for _, ts := range []float64{0.5, 0.52, 0.6, 0.62} {
		setClock(main.World, ts)
		Frame(main.World)
		if engine.HasResource[*SimTask](main.World.Resources) {
			t.Fatalf("ts=%v: episode spawned with no ticks owed", ts)
		}
	}
	if got := reg.Ints.Get("sim.forks").Load(); got != forks {
		t.Errorf("sim.forks moved from %d to %d", forks, got)
	}
	if got := reg.Ints.Get("sim.current_tick").Load(); got != 4 {
		t.Errorf("sim.current_tick = %d, want 4", got)
	}
}

func TestSimClockPerTick(t *testing.T) {
	var mu sync.Mutex
	var seen []component.Timeline
	main := newMain(t, func(app *SimApp) {
		app.AddSystem(StagePrePhysics, engine.Func(func(w *engine.World) {
			mu.Lock()
			seen = append(seen, engine.SingleTimeline(w))
			mu.Unlock()
		}))
	})

	setClock(main.World, 0.25)
	settle(main.World)
	setClock(main.World, 0.125)
	settle(main.World)

	want := []struct{ ts, delta float64 }{
		{0, testTick},
		{0.125, testTick},
		{0.25, testTick},
		{0.125, -testTick},
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != len(want) {
		t.Fatalf("ran %d ticks, want %d", len(seen), len(want))
	}
	for i, w := range want {
		if seen[i].Timestamp != w.ts || seen[i].Delta() != w.delta {
			t.Errorf("tick %d: ts=%v delta=%v, want ts=%v delta=%v",
				i, seen[i].Timestamp, seen[i].Delta(), w.ts, w.delta)
		}
	}
}

func TestBackwardCatchUpFreeFlight(t *testing.T) {
	spawnFlyer := func(w *engine.World) core.Entity {
		return w.Spawn(
			engine.With(component.RigidBody{Kind: component.BodyDynamic, Mass: 1}),
			engine.With(vmath.TransformFromTranslation(vmath.Vec3F{Y: 50})),
			engine.With(component.Velocity{Linear: vmath.Vec3F{X: 3, Y: 8}}),
			engine.With(component.Ball(0.5, 0.5)),
		)
	}

	rewound := newMain(t)
	a := spawnFlyer(rewound.World)
	setClock(rewound.World, 1.0)
	settle(rewound.World)
	setClock(rewound.World, 0)
	settle(rewound.World)

	reference := newMain(t)
	b := spawnFlyer(reference.World)
	setClock(reference.World, 0)
	settle(reference.World)

	if simApp(t, rewound.World).CurrentTick() != 0 {
		t.Fatalf("CurrentTick = %d after rewind", simApp(t, rewound.World).CurrentTick())
	}
	ta, _ := engine.GetComponent[component.Transform](rewound.World, a)
	tb, _ := engine.GetComponent[component.Transform](reference.World, b)
	if !vmath.V3FApproxEqual(ta.Translation, tb.Translation, 1e-9) {
		t.Errorf("rewound position %+v, reference %+v", ta.Translation, tb.Translation)
	}
}

func TestForkPanicsOnPopulatedSimWorld(t *testing.T) {
	main := newMain(t)
	spawnScene(main.World)
	simApp(t, main.World).App.World.CreateEntity()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if !strings.Contains(r.(string), "entity correspondence") {
			t.Errorf("unexpected panic: %v", r)
		}
	}()
	setClock(main.World, 0.5)
	Fork(main.World)
}

func TestForkPanicsOnMissingResource(t *testing.T) {
	main := newMain(t)
	spawnScene(main.World)
	engine.TakeResource[*physics.Context](main.World.Resources)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for missing exclusive resource")
		}
	}()
	setClock(main.World, 0.5)
	Fork(main.World)
}

func TestEpisodeFailureSurfacesOnJoin(t *testing.T) {
	var crashed sync.WaitGroup
	crashed.Add(1)
	core.SetCrashHandler(func(any) { crashed.Done() })
	defer core.SetCrashHandler(nil)

	main := newMain(t, func(app *SimApp) {
		app.AddSystem(StagePostPhysics, engine.Func(func(*engine.World) {
			panic("boom")
		}))
	})
	spawnScene(main.World)

	setClock(main.World, 0.5)
	Fork(main.World)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected episode failure to panic on join")
		}
		if !strings.Contains(r.(string), "boom") {
			t.Errorf("unexpected panic: %v", r)
		}
		crashed.Wait()
	}()
	Shutdown(main.World)
}

func TestNewSimAppRejectsBadTick(t *testing.T) {
	for _, d := range []float64{0, -1} {
		if _, err := NewSimApp(Config{TickDuration: d}, nil); err == nil {
			t.Errorf("TickDuration %v accepted", d)
		}
	}
}

func TestRegistryKinds(t *testing.T) {
	kinds := DefaultRegistry().Kinds()
	if len(kinds) != 4+14+6 {
		t.Errorf("len(Kinds) = %d, want 24", len(kinds))
	}
	if !strings.HasPrefix(kinds[0], "move *physics.Context") {
		t.Errorf("resources must transfer first, got %q", kinds[0])
	}
}

func TestBodyWithoutColliderKeepsPose(t *testing.T) {
	main := newMain(t)
	start := vmath.Vec3F{X: 5, Y: 10}
	body := main.World.Spawn(
		engine.With(component.RigidBody{Kind: component.BodyDynamic, Mass: 1}),
		engine.With(vmath.TransformFromTranslation(start)),
		engine.With(component.GlobalTransform{Transform: vmath.TransformFromTranslation(start)}),
		engine.With(component.LerpTransform{}),
	)
	// Only a global pose, the step must fall back to it
	globalOnly := main.World.Spawn(
		engine.With(component.RigidBody{Kind: component.BodyDynamic, Mass: 1}),
		engine.With(component.GlobalTransform{Transform: vmath.TransformFromTranslation(start)}),
	)

	setClock(main.World, 0)
	Fork(main.World)
	Shutdown(main.World)

	for _, e := range []core.Entity{body, globalOnly} {
		tr, ok := engine.GetComponent[component.Transform](main.World, e)
		if !ok {
			t.Fatalf("entity %d has no Transform after the tick", e)
		}
		if tr.Translation.X != start.X {
			t.Errorf("entity %d x = %v, want %v", e, tr.Translation.X, start.X)
		}
		// One tick of gravity from rest moves well under a unit
		if dy := start.Y - tr.Translation.Y; dy <= 0 || dy > 0.5 {
			t.Errorf("entity %d fell %v in one tick from y=%v", e, dy, start.Y)
		}
	}
}
