package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// PausableClock provides pausable engine time with pause duration tracking
// Emotion transitions and gesture progress are computed against this clock,
// so pausing the engine freezes them in place
type PausableClock struct {
	mu sync.RWMutex

	realStartTime   time.Time // When clock was created (real time)
	engineStartTime time.Time // Engine time epoch (adjusted for pauses)

	isPaused        atomic.Bool
	pauseStartTime  time.Time     // When current pause started (real time)
	totalPausedTime time.Duration // Cumulative pause duration

	tp TimeProvider
}

// NewPausableClock creates a running clock on the given time source
func NewPausableClock(tp TimeProvider) *PausableClock {
	if tp == nil {
		tp = NewMonotonicTimeProvider()
	}
	now := tp.Now()
	return &PausableClock{
		realStartTime:   now,
		engineStartTime: now,
		tp:              tp,
	}
}

// Now returns current engine time (affected by pause)
func (pc *PausableClock) Now() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.isPaused.Load() {
		// During pause: frozen at the pause point
		return pc.engineStartTime.Add(pc.pauseStartTime.Sub(pc.realStartTime) - pc.totalPausedTime)
	}

	realElapsed := pc.tp.Now().Sub(pc.realStartTime)
	return pc.engineStartTime.Add(realElapsed - pc.totalPausedTime)
}

// RealTime returns the underlying time source's now (unaffected by pause)
func (pc *PausableClock) RealTime() time.Time {
	return pc.tp.Now()
}

// Pause stops engine time advancement
func (pc *PausableClock) Pause() {
	if pc.isPaused.CompareAndSwap(false, true) {
		pc.mu.Lock()
		defer pc.mu.Unlock()
		pc.pauseStartTime = pc.tp.Now()
	}
}

// Resume continues engine time advancement
func (pc *PausableClock) Resume() {
	if pc.isPaused.CompareAndSwap(true, false) {
		pc.mu.Lock()
		defer pc.mu.Unlock()

		if !pc.pauseStartTime.IsZero() {
			pc.totalPausedTime += pc.tp.Now().Sub(pc.pauseStartTime)
			pc.pauseStartTime = time.Time{}
		}
	}
}

// IsPaused returns current pause state
func (pc *PausableClock) IsPaused() bool {
	return pc.isPaused.Load()
}

// TotalPauseDuration returns cumulative pause time including any current pause
func (pc *PausableClock) TotalPauseDuration() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	total := pc.totalPausedTime
	if pc.isPaused.Load() && !pc.pauseStartTime.IsZero() {
		total += pc.tp.Now().Sub(pc.pauseStartTime)
	}
	return total
}
