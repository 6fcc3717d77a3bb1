package simulation

import (
	"log/slog"
	"time"

	"github.com/lixenwraith/tickfork/engine"
	"github.com/lixenwraith/tickfork/status"
)

// Join collects a finished episode without blocking
// A pending episode is put back for the next frame
func Join(main *engine.World) {
	task, ok := engine.TakeResource[*SimTask](main.Resources)
	if !ok {
		return
	}

	app, done := task.Poll()
	if !done {
		engine.AddResource(main.Resources, task)
		if reg, ok := engine.GetResource[*status.Registry](main.Resources); ok {
			reg.Ints.Get("sim.polls_pending").Add(1)
		}
		return
	}
	complete(main, task, app)
}

// Shutdown waits for an in-flight episode and joins it so no simulated state is lost
func Shutdown(main *engine.World) {
	task, ok := engine.TakeResource[*SimTask](main.Resources)
	if !ok {
		return
	}
	slog.Debug("waiting for in-flight simulation episode", "episode", task.ID)
	complete(main, task, task.Wait())
}

// Frame runs the per-frame dispatch and collect pair in the required order
func Frame(main *engine.World) {
	Fork(main)
	Join(main)
}

// JoinSystem runs Join in the presentation schedule, after ForkSystem
func JoinSystem() engine.System {
	return engine.FuncPriority(1, Join)
}

func complete(main *engine.World, task *SimTask, app *SimApp) {
	app.registry.Writeback(app.App.World, main)
	app.App.World.Clear()
	engine.AddResource(main.Resources, app)

	elapsed := time.Since(task.Started)
	if reg, ok := engine.GetResource[*status.Registry](main.Resources); ok {
		reg.Ints.Get("sim.joins").Add(1)
		reg.Ints.Get("sim.current_tick").Store(app.CurrentTick())
		reg.Ints.Get("sim.ticks_total").Add(abs(task.Ticks))
		reg.Floats.Get("sim.episode_ms").Set(float64(elapsed.Microseconds()) / 1000)
		reg.Bools.Get("sim.busy").Store(false)
	}
	slog.Debug("simulation episode joined",
		"episode", task.ID,
		"current", app.CurrentTick(),
		"ticks", task.Ticks,
		"elapsed", elapsed,
	)
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
