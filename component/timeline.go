package component

// Timeline is the virtual clock, one per domain, carried by a single clock entity
// PrevTimestamp always holds Timestamp as it was before the last Tick
type Timeline struct {
	Timestamp     float64
	PrevTimestamp float64
	Timescale     float64
}

// NewTimeline returns a clock at zero running at real-time speed
func NewTimeline() Timeline {
	return Timeline{Timescale: 1.0}
}

// Tick advances the clock by real elapsed seconds scaled by Timescale
func (t *Timeline) Tick(dt float64) {
	t.PrevTimestamp = t.Timestamp
	t.Timestamp += dt * t.Timescale
}

// Set places the clock at ts with an explicit previous reading
func (t *Timeline) Set(ts, prev float64) {
	t.PrevTimestamp = prev
	t.Timestamp = ts
}

// Delta is the signed virtual time covered by the last Tick
func (t Timeline) Delta() float64 {
	return t.Timestamp - t.PrevTimestamp
}
