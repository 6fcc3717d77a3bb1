package component

import "github.com/lixenwraith/tickfork/vmath"

// LerpHistoryLen is the number of simulation samples kept per entity
const LerpHistoryLen = 2

// Sample is the transform of an entity at a simulation timestamp
type Sample struct {
	Timestamp float64
	Transform vmath.Transform
}

// LerpTransform is the sample history of an interpolated entity, newest first
// Fixed backing array so copies across domains never alias
type LerpTransform struct {
	Samples [LerpHistoryLen]Sample
	Count   int
}

// Push prepends a sample and drops anything older than the two most recent
func (l *LerpTransform) Push(ts float64, tr vmath.Transform) {
	for i := LerpHistoryLen - 1; i > 0; i-- {
		l.Samples[i] = l.Samples[i-1]
	}
	l.Samples[0] = Sample{Timestamp: ts, Transform: tr}
	if l.Count < LerpHistoryLen {
		l.Count++
	}
}

// Newest returns the most recent sample
func (l LerpTransform) Newest() (Sample, bool) {
	if l.Count < 1 {
		return Sample{}, false
	}
	return l.Samples[0], true
}

// Older returns the sample before the newest
func (l LerpTransform) Older() (Sample, bool) {
	if l.Count < 2 {
		return Sample{}, false
	}
	return l.Samples[1], true
}

// RenderTransform is the presentation-frame transform consumed by the renderer
type RenderTransform struct {
	vmath.Transform
	// Valid is false until the first successful interpolation
	Valid bool
}
