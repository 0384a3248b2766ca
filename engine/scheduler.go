package engine

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/emotive/event"
	"github.com/lixenwraith/emotive/parameter"
	"github.com/lixenwraith/emotive/status"
)

// Metrics is the scheduler's externally visible frame accounting
type Metrics struct {
	FPS                    float64
	FrameTime              time.Duration
	IsRunning              bool
	PerformanceDegradation int
	FrameCount             uint64
	DroppedFrames          uint64
	TargetFPS              int
}

// Scheduler runs registered callbacks once per tick in strict priority-tier
// order; ties within a tier execute in registration order
// All callbacks execute on the scheduler goroutine (or the caller of
// TickOnce); the engine's only cooperative suspension point is the wait for
// the next tick
type Scheduler struct {
	mu    sync.Mutex
	clock *PausableClock
	bus   *event.Bus

	monitor *Monitor // optional frame-cost observer

	tiers  [parameter.PriorityTierCount][]*registration
	byID   map[uint64]*registration
	nextID uint64

	// Unregister during a tick is deferred here and applied at the next
	// tick boundary so the active iteration set is never mutated
	pendingRemove []uint64
	inTick        bool

	targetFPS int
	lastTick  time.Time
	lastDelta time.Duration
	haveLast  bool

	frameCount    uint64
	droppedFrames uint64

	// Loop control
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool

	statTicks    *atomic.Int64
	statDropped  *atomic.Int64
	statDisabled *atomic.Int64
}

// NewScheduler creates a stopped scheduler on the given clock
func NewScheduler(clock *PausableClock, bus *event.Bus, st *status.Registry) *Scheduler {
	return &Scheduler{
		clock:        clock,
		bus:          bus,
		byID:         make(map[uint64]*registration),
		targetFPS:    parameter.DefaultTargetFPS,
		stopChan:     make(chan struct{}),
		statTicks:    st.Ints.Get("engine.ticks"),
		statDropped:  st.Ints.Get("engine.dropped"),
		statDisabled: st.Ints.Get("engine.disabled"),
	}
}

// SetMonitor attaches the performance monitor observing frame cost
func (s *Scheduler) SetMonitor(m *Monitor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitor = m
}

// Register adds a callback at the given priority tier and returns its id
// Ids are monotonic and never reused while this scheduler lives
// A registration made during a tick first runs on the following tick
func (s *Scheduler) Register(cb Callback, priority int, ctx any) uint64 {
	if cb == nil {
		return 0
	}
	if priority < parameter.PriorityCritical {
		priority = parameter.PriorityCritical
	}
	if priority > parameter.PriorityIdle {
		priority = parameter.PriorityIdle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	reg := &registration{
		id:       s.nextID,
		cb:       cb,
		priority: priority,
		enabled:  true,
		ctx:      ctx,
	}
	s.tiers[priority] = append(s.tiers[priority], reg)
	s.byID[reg.id] = reg
	return reg.id
}

// Unregister removes a registration; returns false for unknown ids
// Mid-tick removal is deferred to the next tick boundary; the callback may
// run once more this tick
func (s *Scheduler) Unregister(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return false
	}
	if s.inTick {
		s.pendingRemove = append(s.pendingRemove, id)
		return true
	}
	s.removeLocked(id)
	return true
}

// SetEnabled toggles a registration without removing it
func (s *Scheduler) SetEnabled(id uint64, enabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.byID[id]
	if !ok {
		return false
	}
	reg.enabled = enabled
	return true
}

func (s *Scheduler) removeLocked(id uint64) {
	reg, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)

	tier := s.tiers[reg.priority]
	for i, r := range tier {
		if r.id == id {
			s.tiers[reg.priority] = append(tier[:i:i], tier[i+1:]...)
			return
		}
	}
}

func (s *Scheduler) applyPendingLocked() {
	for _, id := range s.pendingRemove {
		s.removeLocked(id)
	}
	s.pendingRemove = s.pendingRemove[:0]
}

// TickOnce executes one full tick at the given engine time
// Exposed for hosts that own their frame signal, and for tests; the
// internal loop calls it with the pausable clock's now
func (s *Scheduler) TickOnce(now time.Time) {
	s.mu.Lock()

	s.applyPendingLocked()

	var dt time.Duration
	if s.haveLast {
		dt = now.Sub(s.lastTick)
		if dt < 0 {
			dt = 0
		}
		// Budget check is truthful accounting only; every callback still
		// runs this tick
		budget := time.Second / time.Duration(s.targetFPS)
		if dt > budget {
			s.droppedFrames++
			s.statDropped.Add(1)
		}
		if dt > parameter.MaxDeltaTime {
			dt = parameter.MaxDeltaTime
		}
	}
	s.lastTick = now
	s.lastDelta = dt
	s.haveLast = true
	s.frameCount++
	s.statTicks.Add(1)
	s.inTick = true

	snapshot := make([]*registration, 0, len(s.byID))
	for tier := range s.tiers {
		for _, reg := range s.tiers[tier] {
			if reg.enabled {
				snapshot = append(snapshot, reg)
			}
		}
	}

	monitor := s.monitor
	s.mu.Unlock()

	if monitor != nil {
		monitor.StartFrame()
	}

	for _, reg := range snapshot {
		if err := safeInvoke(reg, dt, now); err != nil {
			s.disable(reg, err)
		}
	}

	if monitor != nil {
		monitor.EndFrame()
	}

	s.mu.Lock()
	s.inTick = false
	s.applyPendingLocked()
	s.mu.Unlock()
}

// safeInvoke wraps one callback invocation; a panic maps to an error result
// so the loop can disable the registration instead of dying
func safeInvoke(reg *registration, dt time.Duration, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panic: %v", r)
		}
	}()
	return reg.cb(dt, now)
}

// disable isolates a failing registration: disabled, logged once, surfaced
// as a diagnostics event; the frame continues
func (s *Scheduler) disable(reg *registration, cause error) {
	s.mu.Lock()
	reg.enabled = false
	logIt := !reg.errLogged
	reg.errLogged = true
	s.mu.Unlock()

	s.statDisabled.Add(1)
	if logIt {
		log.Printf("engine: callback %d disabled: %v", reg.id, cause)
	}
	s.bus.Emit(event.TypeCallbackError, &event.CallbackErrorPayload{
		ID:        reg.id,
		Recovered: cause,
	})
}

// Start begins the internal tick loop; no-op if already running
func (s *Scheduler) Start() {
	if s.running.CompareAndSwap(false, true) {
		s.wg.Add(1)
		go s.loop()
	}
}

// Stop halts the tick loop and waits for the current tick to finish
// A scheduler that was never started is left untouched, so Start still
// works after a stray early Stop
func (s *Scheduler) Stop() {
	if !s.running.Load() {
		return
	}
	s.stopOnce.Do(func() {
		if s.running.CompareAndSwap(true, false) {
			close(s.stopChan)
			s.wg.Wait()
		}
	})
}

// Pause freezes engine time; callbacks stop firing and all duration-based
// progress holds in place
func (s *Scheduler) Pause() {
	s.clock.Pause()
}

// Resume continues from the pause point
func (s *Scheduler) Resume() {
	s.clock.Resume()
}

// loop is the drift-corrected tick driver
func (s *Scheduler) loop() {
	defer s.wg.Done()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	interval := s.interval()
	nextDeadline := s.clock.Now().Add(interval)

	for {
		select {
		case <-s.stopChan:
			return
		default:
		}

		var sleep time.Duration

		if s.clock.IsPaused() {
			// Longer sleep while paused to save CPU
			sleep = interval * parameter.PausedSleepMultiplier
		} else {
			now := s.clock.Now()
			if !now.Before(nextDeadline) {
				s.TickOnce(now)

				interval = s.interval()
				nextDeadline = nextDeadline.Add(interval)

				// Snap forward rather than burst-ticking after a stall
				if now.Sub(nextDeadline) > interval*parameter.SchedulerMaxBehind {
					nextDeadline = now.Add(interval)
				}

				sleep = nextDeadline.Sub(s.clock.Now())
				if sleep < 0 {
					sleep = 0
				}
			} else {
				sleep = nextDeadline.Sub(now)
			}
		}

		if sleep > 0 {
			timer.Reset(sleep)
			select {
			case <-timer.C:
			case <-s.stopChan:
				return
			}
		}
	}
}

func (s *Scheduler) interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Second / time.Duration(s.targetFPS)
}

// SetTargetFPS adjusts the tick rate, clamped to sane bounds
func (s *Scheduler) SetTargetFPS(fps int) {
	if fps < parameter.MinTargetFPS {
		fps = parameter.MinTargetFPS
	}
	if fps > parameter.MaxTargetFPS {
		fps = parameter.MaxTargetFPS
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targetFPS = fps
}

// TargetFPS returns the current tick-rate target
func (s *Scheduler) TargetFPS() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetFPS
}

// RegistrationCount returns the number of live registrations
func (s *Scheduler) RegistrationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// GetStats snapshots frame accounting; smoothed figures come from the
// attached monitor when present, otherwise from the last tick delta
func (s *Scheduler) GetStats() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := Metrics{
		IsRunning:     s.running.Load(),
		FrameCount:    s.frameCount,
		DroppedFrames: s.droppedFrames,
		TargetFPS:     s.targetFPS,
		FrameTime:     s.lastDelta,
	}
	if s.monitor != nil {
		m.FPS = s.monitor.FPS()
		m.FrameTime = s.monitor.FrameTime()
		m.PerformanceDegradation = s.monitor.Step()
	} else if s.lastDelta > 0 {
		m.FPS = float64(time.Second) / float64(s.lastDelta)
	}
	return m
}

// Reset clears all registrations and frame timers
// Ids are not reused; the monotonic counter keeps advancing
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tiers {
		s.tiers[i] = nil
	}
	s.byID = make(map[uint64]*registration)
	s.pendingRemove = s.pendingRemove[:0]
	s.haveLast = false
	s.lastDelta = 0
	s.frameCount = 0
	s.droppedFrames = 0
}
