package physics

import "github.com/lixenwraith/tickfork/vmath"

// Configuration is the per-domain physics setup, moved into the simulation domain with each episode
type Configuration struct {
	Gravity vmath.Vec3F
	// Active false freezes the step but keeps writeback running
	Active bool

	// Sleep after SleepTicks consecutive ticks below SleepLinearThreshold
	SleepLinearThreshold float64
	SleepTicks           int

	// RestingSpeed is the bounce speed under which a plane contact comes to rest
	RestingSpeed float64
}

// DefaultConfiguration is earth gravity along -Y
func DefaultConfiguration() *Configuration {
	return &Configuration{
		Gravity:              vmath.Vec3F{Y: -9.81},
		Active:               true,
		SleepLinearThreshold: 0.05,
		SleepTicks:           20,
		RestingSpeed:         1.0,
	}
}
