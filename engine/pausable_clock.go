package engine

import (
	"sync"
	"time"
)

// PausableClock measures real frame deltas for the presentation clock, excluding paused time
type PausableClock struct {
	mu sync.Mutex

	provider TimeProvider
	last     time.Time
	paused   bool

	// totalPausedTime accumulates every completed pause
	totalPausedTime time.Duration
	pauseStartTime  time.Time
}

// NewPausableClock creates a clock reading from provider, nil uses the monotonic system clock
func NewPausableClock(provider TimeProvider) *PausableClock {
	if provider == nil {
		provider = NewMonotonicTimeProvider()
	}
	return &PausableClock{
		provider: provider,
		last:     provider.Now(),
	}
}

// Delta returns real seconds since the previous call, zero while paused
func (pc *PausableClock) Delta() float64 {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	now := pc.provider.Now()
	if pc.paused {
		pc.last = now
		return 0
	}
	d := now.Sub(pc.last)
	pc.last = now
	if d < 0 {
		return 0
	}
	return d.Seconds()
}

// Pause stops delta accumulation
func (pc *PausableClock) Pause() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.paused {
		return
	}
	pc.paused = true
	pc.pauseStartTime = pc.provider.Now()
}

// Resume continues delta accumulation from the resume instant
func (pc *PausableClock) Resume() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if !pc.paused {
		return
	}
	now := pc.provider.Now()
	pc.totalPausedTime += now.Sub(pc.pauseStartTime)
	pc.pauseStartTime = time.Time{}
	pc.last = now
	pc.paused = false
}

// Toggle flips the pause state and returns the new state
func (pc *PausableClock) Toggle() bool {
	pc.mu.Lock()
	paused := pc.paused
	pc.mu.Unlock()
	if paused {
		pc.Resume()
	} else {
		pc.Pause()
	}
	return !paused
}

// IsPaused returns current pause state
func (pc *PausableClock) IsPaused() bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.paused
}

// TotalPauseDuration returns cumulative pause time including a pause in progress
func (pc *PausableClock) TotalPauseDuration() time.Duration {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	total := pc.totalPausedTime
	if pc.paused {
		total += pc.provider.Now().Sub(pc.pauseStartTime)
	}
	return total
}
