package status

import "sync/atomic"

// Registry is the central metrics facade
// Systems cache pointers once; the frame loop and simulation episodes write directly to atomics
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Snapshot copies every metric into a flat map, bools as 0/1
// Strings are left out, see StringValues
func (r *Registry) Snapshot() map[string]float64 {
	out := make(map[string]float64, r.TotalCount())
	r.Bools.Range(func(key string, b *atomic.Bool) {
		if b.Load() {
			out[key] = 1
		} else {
			out[key] = 0
		}
	})
	r.Ints.Range(func(key string, i *atomic.Int64) {
		out[key] = float64(i.Load())
	})
	r.Floats.Range(func(key string, f *AtomicFloat) {
		out[key] = f.Get()
	})
	return out
}

// StringValues copies the string metrics
func (r *Registry) StringValues() map[string]string {
	out := make(map[string]string, r.Strings.Count())
	r.Strings.Range(func(key string, s *AtomicString) {
		out[key] = s.Load()
	})
	return out
}
