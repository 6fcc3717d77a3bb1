package engine

// App pairs a World with the Schedule that drives it
type App struct {
	World    *World
	Schedule *Schedule
}

// NewApp creates an app with an empty world and the given stage order
func NewApp(stages ...Stage) *App {
	return &App{
		World:    NewWorld(),
		Schedule: NewSchedule(stages...),
	}
}

// NewPresentationApp creates the primary app with the default presentation stages
func NewPresentationApp() *App {
	return NewApp(StageFirst, StagePreUpdate, StageUpdate, StagePostUpdate, StageLast, StageRender)
}

// AddSystem adds a system to one stage of the app schedule
func (a *App) AddSystem(stage Stage, system System) *App {
	a.Schedule.AddSystem(stage, system)
	return a
}

// Update runs one full pass of the schedule
func (a *App) Update() {
	a.Schedule.Run(a.World)
}

// Frame records the elapsed real time and runs one pass, the host's per-frame entry point
func (a *App) Frame(dt float64) {
	ft, ok := GetResource[*FrameTime](a.World.Resources)
	if !ok {
		ft = &FrameTime{}
		AddResource(a.World.Resources, ft)
	}
	ft.Delta = dt
	ft.Frame++
	a.Update()
}
