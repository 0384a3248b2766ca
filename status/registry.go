package status

import (
	"fmt"
	"sync/atomic"
)

// Registry is the central metrics facade
// Systems cache pointers during init; update loops write directly to atomics
type Registry struct {
	Bools  *MetricMap[atomic.Bool]
	Ints   *MetricMap[atomic.Int64]
	Floats *MetricMap[AtomicFloat]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:  NewMetricMap[atomic.Bool](),
		Ints:   NewMetricMap[atomic.Int64](),
		Floats: NewMetricMap[AtomicFloat](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count()
}

// Dump renders every metric as "key=value" lines in sorted key order
// Diagnostics overlay / test assertions only, not a hot path
func (r *Registry) Dump() []string {
	out := make([]string, 0, r.TotalCount())
	r.Bools.Range(func(key string, ptr *atomic.Bool) {
		out = append(out, fmt.Sprintf("%s=%t", key, ptr.Load()))
	})
	r.Ints.Range(func(key string, ptr *atomic.Int64) {
		out = append(out, fmt.Sprintf("%s=%d", key, ptr.Load()))
	})
	r.Floats.Range(func(key string, ptr *AtomicFloat) {
		out = append(out, fmt.Sprintf("%s=%.3f", key, ptr.Get()))
	})
	return out
}
