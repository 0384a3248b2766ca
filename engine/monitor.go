package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/emotive/event"
	"github.com/lixenwraith/emotive/parameter"
	"github.com/lixenwraith/emotive/status"
)

// MonitorConfig holds the degradation policy thresholds
type MonitorConfig struct {
	CriticalFPS        float64
	WarningFPS         float64
	RequiredBadFrames  int
	RequiredGoodFrames int
	MaxSteps           int
}

// DefaultMonitorConfig returns the calibrated policy
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		CriticalFPS:        parameter.DefaultCriticalFPS,
		WarningFPS:         parameter.DefaultWarningFPS,
		RequiredBadFrames:  parameter.DefaultRequiredBadFrames,
		RequiredGoodFrames: parameter.DefaultRequiredGoodFrames,
		MaxSteps:           parameter.MaxDegradationSteps,
	}
}

func (c MonitorConfig) sanitize() MonitorConfig {
	def := DefaultMonitorConfig()
	if c.CriticalFPS <= 0 {
		c.CriticalFPS = def.CriticalFPS
	}
	if c.WarningFPS < c.CriticalFPS {
		c.WarningFPS = def.WarningFPS
	}
	if c.RequiredBadFrames <= 0 {
		c.RequiredBadFrames = def.RequiredBadFrames
	}
	if c.RequiredGoodFrames <= 0 {
		c.RequiredGoodFrames = def.RequiredGoodFrames
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = def.MaxSteps
	}
	return c
}

// Monitor measures per-frame cost and decides when visual quality must
// shrink or may grow back
// Run classification is per-frame (instantaneous FPS); the smoothed window
// figure is what gets reported. Hysteresis: recovery needs a full run of
// good frames, so quality never flaps between levels
type Monitor struct {
	mu  sync.Mutex
	tp  TimeProvider
	bus *event.Bus

	cfg MonitorConfig

	frameStart time.Time
	inFrame    bool

	window [parameter.PerfSampleWindow]time.Duration
	pos    int
	length int

	badRun  int
	goodRun int
	step    int

	fps       float64
	frameTime time.Duration

	statFPS  *status.AtomicFloat
	statStep *atomic.Int64
}

// NewMonitor creates a monitor at full quality (step 0)
func NewMonitor(cfg MonitorConfig, tp TimeProvider, bus *event.Bus, st *status.Registry) *Monitor {
	if tp == nil {
		tp = NewMonotonicTimeProvider()
	}
	return &Monitor{
		cfg:      cfg.sanitize(),
		tp:       tp,
		bus:      bus,
		statFPS:  st.Floats.Get("perf.fps"),
		statStep: st.Ints.Get("perf.step"),
	}
}

// StartFrame marks the beginning of frame work
func (m *Monitor) StartFrame() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frameStart = m.tp.Now()
	m.inFrame = true
}

// EndFrame records the elapsed frame cost and refreshes metrics
func (m *Monitor) EndFrame() {
	m.mu.Lock()
	if !m.inFrame {
		m.mu.Unlock()
		return
	}
	m.inFrame = false
	d := m.tp.Now().Sub(m.frameStart)
	m.mu.Unlock()

	m.RecordFrameTime(d)
}

// RecordFrameTime feeds one frame duration directly
// Exposed so hosts that measure their own frames (vsync-driven renderers)
// can drive the policy without StartFrame/EndFrame
func (m *Monitor) RecordFrameTime(d time.Duration) {
	if d <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.window[m.pos] = d
	m.pos = (m.pos + 1) % len(m.window)
	if m.length < len(m.window) {
		m.length++
	}

	frameFPS := float64(time.Second) / float64(d)
	switch {
	case frameFPS < m.cfg.CriticalFPS:
		m.badRun++
		m.goodRun = 0
	case frameFPS >= m.cfg.WarningFPS:
		m.goodRun++
		m.badRun = 0
	default:
		// Neither bad nor qualifying: both runs break
		m.badRun = 0
		m.goodRun = 0
	}

	m.updateMetricsLocked()
}

// UpdateMetrics recomputes smoothed FPS and mean frame time from the window
func (m *Monitor) UpdateMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateMetricsLocked()
}

func (m *Monitor) updateMetricsLocked() {
	if m.length == 0 {
		return
	}
	var total time.Duration
	for i := 0; i < m.length; i++ {
		total += m.window[i]
	}
	m.frameTime = total / time.Duration(m.length)
	if m.frameTime > 0 {
		m.fps = float64(time.Second) / float64(m.frameTime)
	}
	m.statFPS.Set(m.fps)
}

// CheckThresholds evaluates the accumulated runs and applies at most one
// quality step per call; returns true when a step was taken
// Steps move by exactly one so visual changes stay perceptible but not
// jarring
func (m *Monitor) CheckThresholds() bool {
	m.mu.Lock()

	if m.badRun >= m.cfg.RequiredBadFrames && m.step < m.cfg.MaxSteps {
		m.mu.Unlock()
		m.ApplyOptimizations()
		return true
	}
	if m.goodRun >= m.cfg.RequiredGoodFrames && m.step > 0 {
		m.mu.Unlock()
		m.RevertOptimizations()
		return true
	}

	m.mu.Unlock()
	return false
}

// ApplyOptimizations forces one degradation step and announces it
func (m *Monitor) ApplyOptimizations() {
	m.mu.Lock()
	if m.step >= m.cfg.MaxSteps {
		m.mu.Unlock()
		return
	}
	m.step++
	m.badRun = 0
	m.goodRun = 0
	step := m.step
	fps := m.fps
	m.statStep.Store(int64(step))
	m.mu.Unlock()

	m.bus.Emit(event.TypePerformanceWarning, &event.PerformancePayload{
		FPS:  fps,
		Step: step,
	})
}

// RevertOptimizations restores one quality step and announces it
func (m *Monitor) RevertOptimizations() {
	m.mu.Lock()
	if m.step <= 0 {
		m.mu.Unlock()
		return
	}
	m.step--
	m.badRun = 0
	m.goodRun = 0
	step := m.step
	fps := m.fps
	m.statStep.Store(int64(step))
	m.mu.Unlock()

	m.bus.Emit(event.TypePerformanceRecovered, &event.PerformancePayload{
		FPS:  fps,
		Step: step,
	})
}

// Step returns the current degradation step (0 = full quality)
func (m *Monitor) Step() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// FPS returns the smoothed frames-per-second figure
func (m *Monitor) FPS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fps
}

// FrameTime returns the mean frame duration over the window
func (m *Monitor) FrameTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frameTime
}
