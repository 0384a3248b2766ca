package emotion

import (
	"sync"
	"time"

	"github.com/lixenwraith/emotive/event"
	"github.com/lixenwraith/emotive/parameter"
	"github.com/lixenwraith/emotive/vmath"
)

// Clock supplies the machine's notion of now
// Progress is computed from absolute clock time, so a stalled host resumes
// transitions from wherever they were when ticks resume
type Clock interface {
	Now() time.Time
}

// State is a snapshot of the machine's externally visible state
type State struct {
	Emotion      string
	Undertone    string
	Gesture      string // active gesture name, "" when idle
	GestureQueue int    // pending gestures behind the active one
	Speaking     bool
	AudioLevel   float64
}

// transition is a timed blend between two property records
type transition struct {
	active bool
	from   Properties
	to     Properties
	start  time.Time
	dur    time.Duration
}

// Machine owns the current emotion/undertone and derives blended visual
// properties; mutated only through its own methods
type Machine struct {
	mu    sync.RWMutex
	reg   *Registry
	bus   *event.Bus
	clock Clock

	emotion   string
	undertone string
	trans     transition

	// Mirrors updated from bus events; the gesture system and audio
	// processor own the sources
	gesture    string
	queueLen   int
	speaking   bool
	audioLevel float64
}

// NewMachine creates a machine at neutral and wires its state mirrors
func NewMachine(reg *Registry, bus *event.Bus, clock Clock) *Machine {
	m := &Machine{
		reg:     reg,
		bus:     bus,
		clock:   clock,
		emotion: "neutral",
	}

	bus.On(event.TypeGestureStarted, m.onGestureStarted)
	bus.On(event.TypeGestureCompleted, m.onGestureCompleted)
	bus.On(event.TypeAudioLevelUpdate, m.onAudioLevel)

	return m
}

func (m *Machine) onGestureStarted(ev event.Event) {
	p, ok := ev.Payload.(*event.GesturePayload)
	if !ok {
		return
	}
	m.mu.Lock()
	m.gesture = p.Name
	m.queueLen = p.QueueLength
	m.mu.Unlock()
}

func (m *Machine) onGestureCompleted(ev event.Event) {
	p, ok := ev.Payload.(*event.GesturePayload)
	if !ok {
		return
	}
	m.mu.Lock()
	if m.gesture == p.Name {
		m.gesture = ""
	}
	m.queueLen = p.QueueLength
	m.mu.Unlock()
}

func (m *Machine) onAudioLevel(ev event.Event) {
	p, ok := ev.Payload.(*event.AudioLevelPayload)
	if !ok {
		return
	}
	m.mu.Lock()
	m.audioLevel = p.Level
	m.speaking = p.Level >= parameter.SpeakingLevel
	m.mu.Unlock()
}

// SetEmotion starts a timed blend toward the named emotion
// Unknown emotion or undertone names return false and leave the current
// state untouched; duration <= 0 selects the default
// A transition started mid-transition blends from the current blended
// properties, not from the previous target, so there is no visual jump
func (m *Machine) SetEmotion(emotion, undertone string, duration time.Duration) bool {
	target, ok := m.reg.Lookup(emotion)
	if !ok {
		return false
	}
	if _, ok := m.reg.LookupUndertone(undertone); !ok {
		return false
	}
	if duration <= 0 {
		duration = parameter.DefaultTransitionDuration
	}

	m.mu.Lock()
	from := m.blendedLocked(m.clock.Now())
	prev := m.emotion
	m.emotion = m.reg.resolve(emotion)
	m.undertone = undertone
	m.trans = transition{
		active: true,
		from:   from,
		to:     target,
		start:  m.clock.Now(),
		dur:    duration,
	}
	m.mu.Unlock()

	m.bus.Emit(event.TypeEmotionChanged, &event.EmotionChangedPayload{
		From:      prev,
		To:        m.reg.resolve(emotion),
		Undertone: undertone,
		Duration:  duration,
	})
	return true
}

// SetSpeaking overrides the audio-derived speaking flag
func (m *Machine) SetSpeaking(speaking bool) {
	m.mu.Lock()
	m.speaking = speaking
	m.mu.Unlock()
}

// CurrentState returns a snapshot copy
func (m *Machine) CurrentState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return State{
		Emotion:      m.emotion,
		Undertone:    m.undertone,
		Gesture:      m.gesture,
		GestureQueue: m.queueLen,
		Speaking:     m.speaking,
		AudioLevel:   m.audioLevel,
	}
}

// blendedLocked computes base properties at the current transition progress
// Transitions blend linearly; easing curves belong to gestures
func (m *Machine) blendedLocked(now time.Time) Properties {
	if !m.trans.active {
		p, _ := m.reg.Lookup(m.emotion)
		return p
	}
	t := vmath.Clamp01(float64(now.Sub(m.trans.start)) / float64(m.trans.dur))
	return Blend(m.trans.from, m.trans.to, t)
}

// CurrentProperties returns the blended properties at the current transition
// progress with the undertone modifier applied on top
func (m *Machine) CurrentProperties() Properties {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p := m.blendedLocked(m.clock.Now())
	u, _ := m.reg.LookupUndertone(m.undertone)
	return u.Apply(p)
}

// Update advances transition bookkeeping; progress itself derives from
// absolute time, so Update only retires finished transitions
func (m *Machine) Update(deltaTime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.trans.active && m.clock.Now().Sub(m.trans.start) >= m.trans.dur {
		m.trans.active = false
	}
}

// InTransition reports whether a blend is still running
func (m *Machine) InTransition() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trans.active
}

// AvailableEmotions lists canonical emotion names for capability queries
func (m *Machine) AvailableEmotions() []string {
	return m.reg.Emotions()
}

// AvailableUndertones lists undertone names for capability queries
func (m *Machine) AvailableUndertones() []string {
	return m.reg.Undertones()
}
