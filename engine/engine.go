package engine

import (
	"sync"
	"time"

	"github.com/lixenwraith/emotive/audio"
	"github.com/lixenwraith/emotive/emotion"
	"github.com/lixenwraith/emotive/event"
	"github.com/lixenwraith/emotive/gesture"
	"github.com/lixenwraith/emotive/parameter"
	"github.com/lixenwraith/emotive/particle"
	"github.com/lixenwraith/emotive/status"
)

// Config wires an engine instance; zero values select defaults
type Config struct {
	TargetFPS         int
	MaxParticles      int
	MaxEventListeners int

	// SpikeGesture is auto-triggered on volume spikes
	// Empty selects the default; "none" disables the auto-trigger
	SpikeGesture string

	Seed    uint64
	Audio   audio.Config
	Monitor MonitorConfig

	// Time overrides the wall-clock source, used by tests
	Time TimeProvider
}

// Engine is the assembled mascot core: one bus, one clock, one scheduler,
// and the four frame systems registered at fixed priorities
// Engines are self-contained; multiple instances coexist without shared
// state
type Engine struct {
	bus       *event.Bus
	clock     *PausableClock
	scheduler *Scheduler
	monitor   *Monitor
	machine   *emotion.Machine
	gestures  *gesture.System
	particles *particle.System
	audio     *audio.LevelProcessor
	st        *status.Registry

	// rebaseMu guards the quality-scaling base values; SetTargetFPS writes
	// from the host goroutine while onQualityStep reads on the tick path
	rebaseMu      sync.Mutex
	baseParticles int
	baseFPS       int

	spikeGesture string
}

// New assembles and wires an engine; it does not start ticking
func New(cfg Config) *Engine {
	st := status.NewRegistry()
	bus := event.NewBus()
	if cfg.MaxEventListeners > 0 {
		bus.SetMaxListeners(cfg.MaxEventListeners)
	}

	tp := cfg.Time
	if tp == nil {
		tp = NewMonotonicTimeProvider()
	}
	clock := NewPausableClock(tp)

	sched := NewScheduler(clock, bus, st)
	if cfg.TargetFPS > 0 {
		sched.SetTargetFPS(cfg.TargetFPS)
	}

	// Frame cost is measured in real time; a paused clock would hide it
	mon := NewMonitor(cfg.Monitor, tp, bus, st)
	sched.SetMonitor(mon)

	machine := emotion.NewMachine(emotion.NewRegistry(), bus, clock)
	gestures := gesture.NewSystem(gesture.NewRegistry(), bus, clock, st)
	particles := particle.NewSystem(cfg.MaxParticles, cfg.Seed, st)
	processor := audio.NewLevelProcessor(cfg.Audio, bus, clock, st)

	gestures.SetBurstFunc(func(count int, ctx emotion.Properties) {
		particles.Spawn(count, particle.Burst, ctx)
	})

	spikeGesture := cfg.SpikeGesture
	if spikeGesture == "" {
		spikeGesture = "pulse"
	}

	e := &Engine{
		bus:           bus,
		clock:         clock,
		scheduler:     sched,
		monitor:       mon,
		machine:       machine,
		gestures:      gestures,
		particles:     particles,
		audio:         processor,
		st:            st,
		baseParticles: particles.GetStats().ArenaSize,
		baseFPS:       sched.TargetFPS(),
		spikeGesture:  spikeGesture,
	}

	// Priority wiring; registration order breaks ties within a tier
	sched.Register(e.drainTick, parameter.PriorityCritical, "bus")
	sched.Register(e.machineTick, parameter.PriorityCritical, "emotion")
	sched.Register(e.audioTick, parameter.PriorityHigh, "audio")
	sched.Register(e.gestureTick, parameter.PriorityHigh, "gesture")
	sched.Register(e.particleTick, parameter.PriorityMedium, "particle")
	sched.Register(e.monitorTick, parameter.PriorityIdle, "perf")

	if spikeGesture != "none" {
		bus.On(event.TypeVolumeSpike, e.onVolumeSpike)
	}
	bus.On(event.TypePerformanceWarning, e.onQualityStep)
	bus.On(event.TypePerformanceRecovered, e.onQualityStep)

	return e
}

func (e *Engine) drainTick(dt time.Duration, now time.Time) error {
	e.bus.DrainInbox()
	return nil
}

func (e *Engine) machineTick(dt time.Duration, now time.Time) error {
	e.machine.Update(dt)
	return nil
}

func (e *Engine) audioTick(dt time.Duration, now time.Time) error {
	e.audio.UpdateAudioLevel(dt)
	return nil
}

func (e *Engine) gestureTick(dt time.Duration, now time.Time) error {
	e.gestures.Update(dt)
	return nil
}

func (e *Engine) particleTick(dt time.Duration, now time.Time) error {
	e.particles.Update(dt, e.machine.CurrentProperties())
	return nil
}

func (e *Engine) monitorTick(dt time.Duration, now time.Time) error {
	e.monitor.CheckThresholds()
	return nil
}

func (e *Engine) onVolumeSpike(ev event.Event) {
	e.gestures.Execute(e.spikeGesture, e.machine.CurrentProperties())
}

func (e *Engine) onQualityStep(ev event.Event) {
	p, ok := ev.Payload.(*event.PerformancePayload)
	if !ok {
		return
	}

	e.rebaseMu.Lock()
	baseParticles := e.baseParticles
	baseFPS := e.baseFPS
	e.rebaseMu.Unlock()

	scale := 1.0
	for i := 0; i < p.Step; i++ {
		scale *= parameter.DegradationParticleScale
	}
	e.particles.SetMaxParticles(int(float64(baseParticles) * scale))

	fps := baseFPS - p.Step*parameter.DegradationFPSDrop
	e.scheduler.SetTargetFPS(fps)
}

// Start begins ticking on the internal loop
func (e *Engine) Start() { e.scheduler.Start() }

// Stop halts ticking; the engine can be inspected but not restarted
func (e *Engine) Stop() { e.scheduler.Stop() }

// Pause freezes engine time, holding transitions and gestures in place
func (e *Engine) Pause() { e.scheduler.Pause() }

// Resume continues from the pause point
func (e *Engine) Resume() { e.scheduler.Resume() }

// TickOnce runs a single tick at the clock's current time
// For hosts that own their own frame signal; do not mix with Start
func (e *Engine) TickOnce() {
	e.scheduler.TickOnce(e.clock.Now())
}

// InitializeAudio attaches an analyser to the audio pipeline
func (e *Engine) InitializeAudio(a audio.Analyser) error {
	return e.audio.Initialize(a)
}

// SetEmotion delegates to the state machine
func (e *Engine) SetEmotion(emotionName, undertone string, duration time.Duration) bool {
	return e.machine.SetEmotion(emotionName, undertone, duration)
}

// ExecuteGesture starts or queues the named gesture
func (e *Engine) ExecuteGesture(name string) bool {
	return e.gestures.Execute(name, e.machine.CurrentProperties())
}

// Chain validates and queues a gesture sequence
func (e *Engine) Chain(names ...string) gesture.ChainReport {
	return e.gestures.Chain(names, e.machine.CurrentProperties())
}

// ValidateChain scores a gesture sequence without executing it
func (e *Engine) ValidateChain(names ...string) gesture.ChainReport {
	return e.gestures.ValidateChain(names)
}

// Bus exposes the event bus for host subscriptions
func (e *Engine) Bus() *event.Bus { return e.bus }

// Status exposes the metric registry for diagnostics overlays
func (e *Engine) Status() *status.Registry { return e.st }

// Audio exposes the level processor for config updates
func (e *Engine) Audio() *audio.LevelProcessor { return e.audio }

// CurrentState returns the state machine snapshot
func (e *Engine) CurrentState() emotion.State { return e.machine.CurrentState() }

// CurrentProperties returns the blended emotional properties
func (e *Engine) CurrentProperties() emotion.Properties { return e.machine.CurrentProperties() }

// AvailableEmotions lists emotion names for capability queries
func (e *Engine) AvailableEmotions() []string { return e.machine.AvailableEmotions() }

// AvailableGestures lists gesture names for capability queries
func (e *Engine) AvailableGestures() []string { return e.gestures.AvailableGestures() }

// SetTargetFPS adjusts the tick rate and rebases quality scaling
func (e *Engine) SetTargetFPS(fps int) {
	e.scheduler.SetTargetFPS(fps)
	e.rebaseMu.Lock()
	e.baseFPS = e.scheduler.TargetFPS()
	e.rebaseMu.Unlock()
}

// GetStats returns the scheduler/monitor frame accounting
func (e *Engine) GetStats() Metrics { return e.scheduler.GetStats() }

// Snapshot is the per-frame render view handed to the host
type Snapshot struct {
	Transform  gesture.Transform
	Properties emotion.Properties
	State      emotion.State
	Particles  []particle.Particle
	Metrics    Metrics
}

// Snapshot assembles the render view, appending particles to buf to let
// callers reuse allocation across frames
func (e *Engine) Snapshot(buf []particle.Particle) Snapshot {
	return Snapshot{
		Transform:  e.gestures.Transform(),
		Properties: e.machine.CurrentProperties(),
		State:      e.machine.CurrentState(),
		Particles:  e.particles.Snapshot(buf),
		Metrics:    e.scheduler.GetStats(),
	}
}

// Destroy stops the loop and releases engine state
// Calling any method after Destroy is a contract violation, not a handled
// case
func (e *Engine) Destroy() {
	e.scheduler.Stop()
	e.scheduler.Reset()
	e.bus.RemoveAllListeners()
	e.audio.Cleanup()
	e.particles.Clear()
	e.gestures.Clear()
}
