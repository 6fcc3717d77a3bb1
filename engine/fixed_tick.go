package engine

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidStep is returned for a gate step that is not strictly positive
var ErrInvalidStep = errors.New("fixed tick step must be strictly positive")

// FixedTick fires when the virtual clock has moved at least one step since the last firing
// It keeps a private reference point and fires at most once per call
type FixedTick struct {
	step     float64
	lastFire float64
}

// NewFixedTick creates a gate with the given step in virtual seconds
func NewFixedTick(step float64) (*FixedTick, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidStep, step)
	}
	return &FixedTick{step: step}, nil
}

// Fire reports whether a step has elapsed at timestamp and moves the reference one step toward it
// Works in both directions so a rewinding clock fires too
func (f *FixedTick) Fire(timestamp float64) bool {
	delta := timestamp - f.lastFire
	if math.Abs(delta) >= f.step {
		f.lastFire += f.step * sign(delta)
		return true
	}
	return false
}

// Last returns the current reference point
func (f *FixedTick) Last() float64 {
	return f.lastFire
}

// Step returns the configured step
func (f *FixedTick) Step() float64 {
	return f.step
}

// Gate wraps fn in a System that runs only on frames where the gate fires against w's clock
func Gate(tick *FixedTick, fn func(*World)) System {
	return Func(func(w *World) {
		if tick.Fire(SingleTimeline(w).Timestamp) {
			fn(w)
		}
	})
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
