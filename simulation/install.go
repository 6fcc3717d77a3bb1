package simulation

import (
	"log/slog"

	"github.com/lixenwraith/tickfork/engine"
)

// Install creates the simulation domain and wires fork, join and interpolation into the last presentation stage
// The presentation world must already hold the resources reg moves.
// setup runs before the startup systems, the place to add pre and post physics logic.
func Install(main *engine.App, cfg Config, reg *Registry, setup ...func(*SimApp)) (*SimApp, error) {
	app, err := NewSimApp(cfg, reg)
	if err != nil {
		return nil, err
	}
	for _, fn := range setup {
		fn(app)
	}
	app.Startup()

	engine.AddResource(main.World.Resources, app)
	main.AddSystem(engine.StageLast, ForkSystem())
	main.AddSystem(engine.StageLast, JoinSystem())
	main.AddSystem(engine.StageLast, InterpolateSystem())

	slog.Info("simulation installed",
		"tick_duration", cfg.TickDuration,
		"transfers", app.registry.Kinds(),
	)
	return app, nil
}
