package engine

import (
	"sync"
	"testing"
	"time"
)

// manualTime is a frame clock source the tests step by hand
type manualTime struct {
	mu  sync.Mutex
	now time.Time
}

func newManualTime(start time.Time) *manualTime {
	return &manualTime{now: start}
}

func (m *manualTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the source forward as if d of real time passed between frames
func (m *manualTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func TestMonotonicTimeProvider(t *testing.T) {
	provider := NewMonotonicTimeProvider()

	t1 := provider.Now()
	time.Sleep(10 * time.Millisecond)
	t2 := provider.Now()

	if diff := t2.Sub(t1); diff < 10*time.Millisecond {
		t.Errorf("Expected at least 10ms difference, got %v", diff)
	}
}

func TestManualTimeAdvance(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	src := newManualTime(start)

	if !src.Now().Equal(start) {
		t.Fatalf("initial time = %v, want %v", src.Now(), start)
	}
	src.Advance(1500 * time.Millisecond)
	if got := src.Now().Sub(start); got != 1500*time.Millisecond {
		t.Errorf("advanced by %v, want 1.5s", got)
	}
}
