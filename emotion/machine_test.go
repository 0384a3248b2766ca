package emotion

import (
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/emotive/event"
)

// fakeClock is a settable Clock for driving transitions deterministically
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestMachine(t *testing.T) (*Machine, *fakeClock, *event.Bus) {
	t.Helper()
	clock := newFakeClock()
	bus := event.NewBus()
	return NewMachine(NewRegistry(), bus, clock), clock, bus
}

// TestMachineInitialState verifies the machine starts at neutral, idle
func TestMachineInitialState(t *testing.T) {
	m, _, _ := newTestMachine(t)

	st := m.CurrentState()
	if st.Emotion != "neutral" {
		t.Errorf("initial emotion = %q, want neutral", st.Emotion)
	}
	if st.Undertone != "" || st.Gesture != "" || st.Speaking {
		t.Errorf("initial state not idle: %+v", st)
	}
	if m.InTransition() {
		t.Error("InTransition at start = true, want false")
	}

	neutral, _ := NewRegistry().Lookup("neutral")
	if got := m.CurrentProperties(); got != neutral {
		t.Errorf("initial properties = %+v, want neutral record", got)
	}
}

// TestMachineTransitionMidpoint verifies the halfway point of a transition
// is exactly the 50% blend of the two records
func TestMachineTransitionMidpoint(t *testing.T) {
	m, clock, _ := newTestMachine(t)
	reg := NewRegistry()

	if !m.SetEmotion("happy", "", time.Second) {
		t.Fatal("SetEmotion(happy) = false, want true")
	}

	clock.advance(500 * time.Millisecond)
	got := m.CurrentProperties()

	neutral, _ := reg.Lookup("neutral")
	joy, _ := reg.Lookup("joy")
	want := Blend(neutral, joy, 0.5)

	if got.PrimaryColor != want.PrimaryColor {
		t.Errorf("midpoint primary = %v, want %v", got.PrimaryColor, want.PrimaryColor)
	}
	if got.GlowIntensity != want.GlowIntensity {
		t.Errorf("midpoint glow = %v, want %v", got.GlowIntensity, want.GlowIntensity)
	}
	if got.CoreSize != want.CoreSize {
		t.Errorf("midpoint core size = %v, want %v", got.CoreSize, want.CoreSize)
	}
}

// TestMachineTransitionCompletes verifies properties land exactly on the
// target and the transition retires
func TestMachineTransitionCompletes(t *testing.T) {
	m, clock, _ := newTestMachine(t)

	m.SetEmotion("anger", "", 400*time.Millisecond)
	clock.advance(400 * time.Millisecond)
	m.Update(16 * time.Millisecond)

	if m.InTransition() {
		t.Error("InTransition after full duration = true, want false")
	}
	anger, _ := NewRegistry().Lookup("anger")
	if got := m.CurrentProperties(); got != anger {
		t.Errorf("final properties = %+v, want anger record", got)
	}

	// Well past the end, still pinned to the target
	clock.advance(time.Hour)
	if got := m.CurrentProperties(); got != anger {
		t.Errorf("post-transition properties drifted: %+v", got)
	}
}

// TestMachineAliasResolution verifies legacy names map to canonical ones in
// both state and the change event
func TestMachineAliasResolution(t *testing.T) {
	m, _, bus := newTestMachine(t)

	var changed *event.EmotionChangedPayload
	bus.On(event.TypeEmotionChanged, func(ev event.Event) {
		changed = ev.Payload.(*event.EmotionChangedPayload)
	})

	tests := []struct {
		alias string
		want  string
	}{
		{"happy", "joy"},
		{"sad", "sadness"},
		{"angry", "anger"},
	}
	for _, tt := range tests {
		if !m.SetEmotion(tt.alias, "", time.Second) {
			t.Fatalf("SetEmotion(%q) = false, want true", tt.alias)
		}
		if st := m.CurrentState(); st.Emotion != tt.want {
			t.Errorf("state emotion for %q = %q, want %q", tt.alias, st.Emotion, tt.want)
		}
		if changed == nil || changed.To != tt.want {
			t.Errorf("event To for %q = %+v, want %q", tt.alias, changed, tt.want)
		}
	}
}

// TestMachineRejectsUnknown verifies unknown names leave state untouched
func TestMachineRejectsUnknown(t *testing.T) {
	m, _, bus := newTestMachine(t)

	events := 0
	bus.On(event.TypeEmotionChanged, func(ev event.Event) { events++ })

	if m.SetEmotion("melancholic-hope", "", time.Second) {
		t.Error("SetEmotion(unknown emotion) = true, want false")
	}
	if m.SetEmotion("joy", "frantic", time.Second) {
		t.Error("SetEmotion(unknown undertone) = true, want false")
	}

	if st := m.CurrentState(); st.Emotion != "neutral" || st.Undertone != "" {
		t.Errorf("state after rejected calls = %+v, want neutral", st)
	}
	if m.InTransition() {
		t.Error("rejected call started a transition")
	}
	if events != 0 {
		t.Errorf("emotionChanged events after rejected calls = %d, want 0", events)
	}
}

// TestMachineRetargetMidTransition verifies a new transition starts from
// the current blended properties, not the previous target
func TestMachineRetargetMidTransition(t *testing.T) {
	m, clock, _ := newTestMachine(t)

	m.SetEmotion("joy", "", time.Second)
	clock.advance(300 * time.Millisecond)

	before := m.CurrentProperties()
	m.SetEmotion("sadness", "", time.Second)
	after := m.CurrentProperties()

	// Colors round-trip through HCL at t=0, so compare within an epsilon
	const eps = 1e-6
	if dr := after.PrimaryColor.R - before.PrimaryColor.R; dr > eps || dr < -eps {
		t.Errorf("retarget jumped primary color: before %v, after %v", before.PrimaryColor, after.PrimaryColor)
	}
	if before.GlowIntensity != after.GlowIntensity {
		t.Errorf("retarget jumped glow: before %v, after %v", before.GlowIntensity, after.GlowIntensity)
	}
	if before.CoreSize != after.CoreSize {
		t.Errorf("retarget jumped core size: before %v, after %v", before.CoreSize, after.CoreSize)
	}
	if st := m.CurrentState(); st.Emotion != "sadness" {
		t.Errorf("emotion after retarget = %q, want sadness", st.Emotion)
	}
}

// TestMachineUndertoneModifier verifies the undertone scales on top of the
// blended base without defining its own state
func TestMachineUndertoneModifier(t *testing.T) {
	m, clock, _ := newTestMachine(t)
	reg := NewRegistry()

	m.SetEmotion("joy", "intense", 100*time.Millisecond)
	clock.advance(100 * time.Millisecond)
	m.Update(16 * time.Millisecond)

	joy, _ := reg.Lookup("joy")
	intense, _ := reg.LookupUndertone("intense")
	want := intense.Apply(joy)

	if got := m.CurrentProperties(); got != want {
		t.Errorf("intense joy = %+v, want %+v", got, want)
	}
	if st := m.CurrentState(); st.Emotion != "joy" || st.Undertone != "intense" {
		t.Errorf("state = %+v, want joy/intense", st)
	}
}

// TestMachineGestureMirror verifies the machine tracks gesture lifecycle
// events without owning the gesture queue
func TestMachineGestureMirror(t *testing.T) {
	m, _, bus := newTestMachine(t)

	bus.Emit(event.TypeGestureStarted, &event.GesturePayload{Name: "bounce", QueueLength: 2})
	if st := m.CurrentState(); st.Gesture != "bounce" || st.GestureQueue != 2 {
		t.Errorf("state after start = %+v, want bounce/2", st)
	}

	// Completion of a different gesture leaves the active name alone
	bus.Emit(event.TypeGestureCompleted, &event.GesturePayload{Name: "spin", QueueLength: 1})
	if st := m.CurrentState(); st.Gesture != "bounce" {
		t.Errorf("gesture after foreign completion = %q, want bounce", st.Gesture)
	}

	bus.Emit(event.TypeGestureCompleted, &event.GesturePayload{Name: "bounce", QueueLength: 0})
	if st := m.CurrentState(); st.Gesture != "" || st.GestureQueue != 0 {
		t.Errorf("state after completion = %+v, want idle", st)
	}
}

// TestMachineSpeakingFromAudio verifies the speaking flag follows the audio
// level threshold
func TestMachineSpeakingFromAudio(t *testing.T) {
	m, _, bus := newTestMachine(t)

	bus.Emit(event.TypeAudioLevelUpdate, &event.AudioLevelPayload{Level: 0.3})
	if st := m.CurrentState(); !st.Speaking || st.AudioLevel != 0.3 {
		t.Errorf("state after loud level = %+v, want speaking", st)
	}

	bus.Emit(event.TypeAudioLevelUpdate, &event.AudioLevelPayload{Level: 0.0})
	if st := m.CurrentState(); st.Speaking {
		t.Error("speaking after silence = true, want false")
	}

	m.SetSpeaking(true)
	if !m.CurrentState().Speaking {
		t.Error("SetSpeaking(true) not reflected")
	}
}

// TestMachineCapabilities verifies canonical name listings
func TestMachineCapabilities(t *testing.T) {
	m, _, _ := newTestMachine(t)

	emotions := m.AvailableEmotions()
	if len(emotions) != 15 {
		t.Errorf("AvailableEmotions length = %d, want 15", len(emotions))
	}
	for _, name := range emotions {
		if name == "happy" || name == "sad" || name == "angry" {
			t.Errorf("alias %q listed as canonical emotion", name)
		}
	}

	undertones := m.AvailableUndertones()
	if len(undertones) != 5 {
		t.Errorf("AvailableUndertones length = %d, want 5", len(undertones))
	}
}
