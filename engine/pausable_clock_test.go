package engine

import (
	"testing"
	"time"
)

func TestPausableClockDelta(t *testing.T) {
	src := newManualTime(time.Unix(0, 0))
	pc := NewPausableClock(src)

	src.Advance(100 * time.Millisecond)
	if d := pc.Delta(); d != 0.1 {
		t.Errorf("Expected 0.1s, got %v", d)
	}
}

func TestPausableClockPauseExcludesTime(t *testing.T) {
	src := newManualTime(time.Unix(0, 0))
	pc := NewPausableClock(src)

	pc.Pause()
	src.Advance(time.Second)
	if d := pc.Delta(); d != 0 {
		t.Errorf("Expected zero delta while paused, got %v", d)
	}
	src.Advance(time.Second)
	pc.Resume()
	src.Advance(250 * time.Millisecond)

	if d := pc.Delta(); d != 0.25 {
		t.Errorf("Expected only post-resume time, got %v", d)
	}
	if total := pc.TotalPauseDuration(); total != 2*time.Second {
		t.Errorf("Expected 2s paused, got %v", total)
	}
}

func TestPausableClockToggle(t *testing.T) {
	pc := NewPausableClock(newManualTime(time.Unix(0, 0)))
	if !pc.Toggle() || !pc.IsPaused() {
		t.Error("Expected first toggle to pause")
	}
	if pc.Toggle() || pc.IsPaused() {
		t.Error("Expected second toggle to resume")
	}
}
