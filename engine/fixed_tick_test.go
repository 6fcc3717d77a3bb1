package engine

import (
	"errors"
	"testing"

	"github.com/lixenwraith/tickfork/component"
)

func TestFixedTickRejectsNonPositiveStep(t *testing.T) {
	for _, step := range []float64{0, -0.25} {
		if _, err := NewFixedTick(step); !errors.Is(err, ErrInvalidStep) {
			t.Errorf("Expected ErrInvalidStep for step %v, got %v", step, err)
		}
	}
}

func TestFixedTickFiresOnceAfterStep(t *testing.T) {
	gate, err := NewFixedTick(0.25)
	if err != nil {
		t.Fatal(err)
	}

	if gate.Fire(0.0) {
		t.Error("Gate must not fire at 0.0")
	}
	if gate.Fire(0.24) {
		t.Error("Gate must not fire at 0.24")
	}
	if !gate.Fire(0.26) {
		t.Error("Gate must fire at 0.26")
	}
	if gate.Last() != 0.25 {
		t.Errorf("Expected reference 0.25, got %v", gate.Last())
	}
	if gate.Fire(0.26) {
		t.Error("Gate must not fire twice for the same step")
	}
}

func TestFixedTickOneFirePerCallDuringCatchUp(t *testing.T) {
	gate, _ := NewFixedTick(0.25)

	fires := 0
	for i := 0; i < 3; i++ {
		if gate.Fire(1.0) {
			fires++
		}
	}
	if fires != 3 {
		t.Errorf("Expected one fire per call, got %d", fires)
	}
	if gate.Last() != 0.75 {
		t.Errorf("Expected reference 0.75 after three fires, got %v", gate.Last())
	}
}

func TestFixedTickRewinds(t *testing.T) {
	gate, _ := NewFixedTick(0.5)
	gate.Fire(0.6)
	if !gate.Fire(-0.1) {
		t.Error("Gate must fire when the clock runs backward a full step")
	}
	if gate.Last() != 0 {
		t.Errorf("Expected reference back at 0, got %v", gate.Last())
	}
}

func TestGateSystemUsesWorldClock(t *testing.T) {
	app := NewPresentationApp()
	SpawnTimeline(app.World, component.NewTimeline())
	app.AddSystem(StagePreUpdate, TimelineSystem())

	gate, _ := NewFixedTick(0.1)
	runs := 0
	app.AddSystem(StageUpdate, Gate(gate, func(*World) { runs++ }))

	app.Frame(0.05)
	app.Frame(0.06)
	if runs != 1 {
		t.Errorf("Expected gated system to run once, got %d", runs)
	}
}
