package gesture

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/emotive/emotion"
	"github.com/lixenwraith/emotive/event"
	"github.com/lixenwraith/emotive/parameter"
	"github.com/lixenwraith/emotive/status"
	"github.com/lixenwraith/emotive/vmath"
)

// Transform is the combined per-frame output the renderer applies to the
// mascot core; identity when no gesture is active
type Transform struct {
	OffsetX  float64
	OffsetY  float64
	Scale    float64
	Rotation float64
	Glow     float64
}

// Identity is the no-gesture transform
var Identity = Transform{Scale: 1.0}

// BurstFunc is the particle-burst hook, wired to the particle system
type BurstFunc func(count int, ctx emotion.Properties)

// ChainReport is the result of chain validation
type ChainReport struct {
	IsValid              bool
	Warnings             []string
	AverageCompatibility float64
}

// activeGesture is the transient execution record
// progress is monotone non-decreasing and clamped to [0,1]; completion fires
// only after progress has held 1.0 for one full tick
type activeGesture struct {
	def        *Definition
	start      time.Time
	progress   float64
	burstFired bool
	heldFull   bool
	ctx        emotion.Properties
}

// System executes at most one procedural gesture at a time with a FIFO queue
// behind it, producing a combined transform each tick
type System struct {
	mu    sync.Mutex
	reg   *Registry
	bus   *event.Bus
	clock emotion.Clock

	active    *activeGesture
	queue     []*activeGesture
	transform Transform
	burst     BurstFunc

	statStarted   *atomic.Int64
	statCompleted *atomic.Int64
	statRejected  *atomic.Int64
}

// NewSystem creates an idle gesture system
func NewSystem(reg *Registry, bus *event.Bus, clock emotion.Clock, st *status.Registry) *System {
	return &System{
		reg:           reg,
		bus:           bus,
		clock:         clock,
		transform:     Identity,
		statStarted:   st.Ints.Get("gesture.started"),
		statCompleted: st.Ints.Get("gesture.completed"),
		statRejected:  st.Ints.Get("gesture.rejected"),
	}
}

// SetBurstFunc wires the particle-burst hook; must be set before Start
func (s *System) SetBurstFunc(fn BurstFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.burst = fn
}

// Execute starts the named gesture, or queues it FIFO when one is active
// Returns false for unknown names and when the queue is full
func (s *System) Execute(name string, ctx emotion.Properties) bool {
	def, ok := s.reg.Lookup(name)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ag := &activeGesture{def: def, ctx: ctx}
	if s.active == nil {
		s.startLocked(ag)
		return true
	}
	if len(s.queue) >= parameter.MaxGestureQueue {
		s.statRejected.Add(1)
		return false
	}
	s.queue = append(s.queue, ag)
	return true
}

// Chain validates then queues an ordered gesture sequence
// An invalid chain (unknown gesture) queues nothing
func (s *System) Chain(names []string, ctx emotion.Properties) ChainReport {
	report := s.ValidateChain(names)
	if !report.IsValid {
		return report
	}

	for _, name := range names {
		if !s.Execute(name, ctx) {
			break
		}
	}

	s.bus.Emit(event.TypeGestureChainStarted, &event.GestureChainPayload{
		Gestures:             append([]string(nil), names...),
		AverageCompatibility: report.AverageCompatibility,
	})
	return report
}

// startLocked begins a gesture immediately; caller holds the lock
func (s *System) startLocked(ag *activeGesture) {
	ag.start = s.clock.Now()
	ag.progress = 0
	s.active = ag
	s.statStarted.Add(1)

	queueLen := len(s.queue)
	s.mu.Unlock()
	s.bus.Emit(event.TypeGestureStarted, &event.GesturePayload{
		Name:        ag.def.Name,
		QueueLength: queueLen,
	})
	s.mu.Lock()
}

// Update advances the active gesture and processes completion chaining
// A completed gesture's successor starts in the same tick (zero-gap)
func (s *System) Update(deltaTime time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		s.transform = Identity
		return
	}

	now := s.clock.Now()
	ag := s.active

	raw := vmath.Clamp01(float64(now.Sub(ag.start)) / float64(ag.def.Duration))
	if raw > ag.progress {
		ag.progress = raw
	}

	if ag.progress >= 1.0 {
		if ag.heldFull {
			s.completeLocked()
			return
		}
		ag.heldFull = true
	}

	s.applyLocked(ag)
}

// applyLocked computes transform and fires the burst at the fire point
func (s *System) applyLocked(ag *activeGesture) {
	eased := ag.def.easingFn(ag.progress)

	s.transform = Transform{
		OffsetX:  ag.def.MoveX * eased,
		OffsetY:  ag.def.MoveY * eased,
		Scale:    1 + (ag.def.Scale-1)*eased,
		Rotation: ag.def.Rotation * eased,
		Glow:     ag.def.GlowIntensity * eased,
	}

	if !ag.burstFired && ag.progress >= ag.def.FirePoint && ag.def.ParticleBurst > 0 {
		ag.burstFired = true
		if s.burst != nil {
			s.burst(ag.def.ParticleBurst, ag.ctx)
		}
	}
}

// completeLocked retires the active gesture and starts the next queued one
// in the same tick
func (s *System) completeLocked() {
	done := s.active
	s.active = nil
	s.transform = Identity
	s.statCompleted.Add(1)

	queueLen := len(s.queue)
	s.mu.Unlock()
	s.bus.Emit(event.TypeGestureCompleted, &event.GesturePayload{
		Name:        done.def.Name,
		QueueLength: queueLen,
	})
	s.mu.Lock()

	// A completion listener may have re-entered Execute and started a
	// gesture already; the queue then stays pending behind it
	if s.active == nil && len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.startLocked(next)
		s.applyLocked(next)
	}
}

// ValidateChain scores consecutive pairs by declared compatibility
// Undefined pairs warn and contribute 0; unknown gesture names invalidate
// the chain; neither condition errors
func (s *System) ValidateChain(names []string) ChainReport {
	report := ChainReport{IsValid: true}

	for _, name := range names {
		if _, ok := s.reg.Lookup(name); !ok {
			report.IsValid = false
			report.Warnings = append(report.Warnings, fmt.Sprintf("unknown gesture %q", name))
		}
	}

	if len(names) < 2 {
		report.AverageCompatibility = 1.0
		return report
	}

	total := 0.0
	pairs := 0
	for i := 0; i < len(names)-1; i++ {
		pairs++
		def, ok := s.reg.Lookup(names[i])
		if !ok {
			continue // already warned, scores 0
		}
		score, defined := def.Compatibility[names[i+1]]
		if !defined {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("no compatibility defined for %q -> %q", names[i], names[i+1]))
			continue
		}
		total += score
	}
	report.AverageCompatibility = total / float64(pairs)

	if report.AverageCompatibility < parameter.ChainWarnCompatibility {
		report.Warnings = append(report.Warnings, "chain compatibility below comfortable threshold")
	}
	return report
}

// Transform returns the current combined transform snapshot
func (s *System) Transform() Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transform
}

// IsActive reports whether a gesture is executing
func (s *System) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// ActiveName returns the executing gesture's name, "" when idle
func (s *System) ActiveName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ""
	}
	return s.active.def.Name
}

// QueueLength returns the number of pending gestures behind the active one
func (s *System) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Progress returns the active gesture's progress, 0 when idle
func (s *System) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return 0
	}
	return s.active.progress
}

// Clear drops the active gesture and queue (explicit interruption)
func (s *System) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
	s.queue = nil
	s.transform = Identity
}

// AvailableGestures lists gesture names for capability queries
func (s *System) AvailableGestures() []string {
	return s.reg.Names()
}
