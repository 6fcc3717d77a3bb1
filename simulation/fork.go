package simulation

import (
	"fmt"
	"log/slog"

	"github.com/lixenwraith/tickfork/engine"
	"github.com/lixenwraith/tickfork/status"
)

// Fork dispatches an episode when the presentation clock has left the simulation's current tick
// No-op while an episode is in flight, since the SimApp resource is then absent
func Fork(main *engine.World) {
	app, ok := engine.TakeResource[*SimApp](main.Resources)
	if !ok {
		return
	}

	app.TargetTick = app.targetFor(engine.SingleTimeline(main).Timestamp)
	from := app.CurrentTick()
	delta := app.TargetTick - from
	if delta == 0 {
		engine.AddResource(main.Resources, app)
		return
	}

	sim := app.App.World
	if n := sim.Len(); n != 0 {
		panic(fmt.Sprintf("simulation world holds %d entities at fork, entity correspondence broken", n))
	}
	sim.ReserveUpTo(main.Watermark())
	app.registry.Extract(main, sim)
	extracted := sim.Len()

	task := startTask(app, delta)
	engine.AddResource(main.Resources, task)

	if reg, ok := engine.GetResource[*status.Registry](main.Resources); ok {
		reg.Ints.Get("sim.forks").Add(1)
		reg.Ints.Get("sim.target_tick").Store(app.TargetTick)
		reg.Ints.Get("sim.ticks_owed").Store(delta)
		reg.Bools.Get("sim.busy").Store(true)
		reg.Strings.Get("sim.episode").Store(task.ID.String())
	}
	slog.Debug("simulation episode dispatched",
		"episode", task.ID,
		"from", from,
		"target", app.TargetTick,
		"ticks", delta,
		"entities", extracted,
	)
}

// ForkSystem runs Fork in the presentation schedule, ahead of JoinSystem
func ForkSystem() engine.System {
	return engine.FuncPriority(0, Fork)
}
