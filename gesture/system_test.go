package gesture

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/emotive/emotion"
	"github.com/lixenwraith/emotive/event"
	"github.com/lixenwraith/emotive/parameter"
	"github.com/lixenwraith/emotive/status"
)

// fakeClock is a settable emotion.Clock for deterministic gesture timing
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

func newTestSystem(t *testing.T) (*System, *fakeClock, *event.Bus) {
	t.Helper()
	clock := newFakeClock()
	bus := event.NewBus()
	s := NewSystem(NewRegistry(), bus, clock, status.NewRegistry())
	return s, clock, bus
}

// TestExecuteStartsImmediately verifies an idle system starts the gesture
// and announces it
func TestExecuteStartsImmediately(t *testing.T) {
	s, _, bus := newTestSystem(t)

	var started *event.GesturePayload
	bus.On(event.TypeGestureStarted, func(ev event.Event) {
		started = ev.Payload.(*event.GesturePayload)
	})

	if !s.Execute("bounce", emotion.Properties{}) {
		t.Fatal("Execute(bounce) = false, want true")
	}
	if !s.IsActive() || s.ActiveName() != "bounce" {
		t.Errorf("active = %v %q, want true bounce", s.IsActive(), s.ActiveName())
	}
	if started == nil || started.Name != "bounce" || started.QueueLength != 0 {
		t.Errorf("gestureStarted = %+v, want bounce/0", started)
	}
}

// TestExecuteUnknownRejected verifies unknown names are refused quietly
func TestExecuteUnknownRejected(t *testing.T) {
	s, _, _ := newTestSystem(t)
	if s.Execute("moonwalk", emotion.Properties{}) {
		t.Error("Execute(unknown) = true, want false")
	}
	if s.IsActive() {
		t.Error("unknown gesture activated the system")
	}
}

// TestExecuteQueuesFIFO verifies overlapping requests queue in order and
// the queue rejects past its bound
func TestExecuteQueuesFIFO(t *testing.T) {
	s, _, _ := newTestSystem(t)

	s.Execute("bounce", emotion.Properties{})
	for i := 0; i < parameter.MaxGestureQueue; i++ {
		if !s.Execute("pulse", emotion.Properties{}) {
			t.Fatalf("Execute #%d rejected before queue bound", i)
		}
	}
	if s.Execute("pulse", emotion.Properties{}) {
		t.Error("Execute past queue bound = true, want false")
	}
	if got := s.QueueLength(); got != parameter.MaxGestureQueue {
		t.Errorf("QueueLength = %d, want %d", got, parameter.MaxGestureQueue)
	}
}

// TestProgressMonotoneToOne verifies progress never regresses and lands
// exactly on 1.0
func TestProgressMonotoneToOne(t *testing.T) {
	s, clock, _ := newTestSystem(t)
	s.Execute("bounce", emotion.Properties{}) // 600ms

	prev := -1.0
	for i := 0; i < 10; i++ {
		clock.advance(100 * time.Millisecond)
		s.Update(100 * time.Millisecond)
		p := s.Progress()
		if s.IsActive() && p < prev {
			t.Fatalf("progress regressed: %v after %v", p, prev)
		}
		prev = p
	}

	// The gesture ended during the loop; progress reached exactly 1.0
	// before completion retired it
	if s.IsActive() {
		t.Error("gesture still active well past its duration")
	}
}

// TestCompletionHoldsFullProgressOneTick verifies the final frame renders
// at progress 1.0 before the gesture retires
func TestCompletionHoldsFullProgressOneTick(t *testing.T) {
	s, clock, bus := newTestSystem(t)

	completions := 0
	bus.On(event.TypeGestureCompleted, func(ev event.Event) { completions++ })

	s.Execute("pulse", emotion.Properties{}) // 400ms

	clock.advance(400 * time.Millisecond)
	s.Update(400 * time.Millisecond)

	if !s.IsActive() {
		t.Fatal("gesture retired on the same tick it reached 1.0")
	}
	if got := s.Progress(); got != 1.0 {
		t.Errorf("held progress = %v, want 1.0", got)
	}
	if completions != 0 {
		t.Errorf("completions before hold tick = %d, want 0", completions)
	}

	clock.advance(16 * time.Millisecond)
	s.Update(16 * time.Millisecond)

	if s.IsActive() {
		t.Error("gesture still active after the hold tick")
	}
	if completions != 1 {
		t.Errorf("completions = %d, want 1", completions)
	}
	if got := s.Transform(); got != Identity {
		t.Errorf("transform after completion = %+v, want identity", got)
	}
}

// TestZeroGapChaining verifies the successor starts on the same tick its
// predecessor completes
func TestZeroGapChaining(t *testing.T) {
	s, clock, bus := newTestSystem(t)

	var sequence []string
	bus.On(event.TypeGestureStarted, func(ev event.Event) {
		sequence = append(sequence, "start:"+ev.Payload.(*event.GesturePayload).Name)
	})
	bus.On(event.TypeGestureCompleted, func(ev event.Event) {
		sequence = append(sequence, "done:"+ev.Payload.(*event.GesturePayload).Name)
	})

	s.Execute("pulse", emotion.Properties{})
	s.Execute("nod", emotion.Properties{})

	clock.advance(400 * time.Millisecond)
	s.Update(400 * time.Millisecond) // reaches 1.0, holds
	clock.advance(16 * time.Millisecond)
	s.Update(16 * time.Millisecond) // completes pulse, starts nod same tick

	if s.ActiveName() != "nod" {
		t.Errorf("active after chain tick = %q, want nod", s.ActiveName())
	}
	want := []string{"start:pulse", "done:pulse", "start:nod"}
	if len(sequence) != len(want) {
		t.Fatalf("event sequence = %v, want %v", sequence, want)
	}
	for i := range want {
		if sequence[i] != want[i] {
			t.Errorf("sequence[%d] = %q, want %q", i, sequence[i], want[i])
		}
	}
}

// TestValidateChainScores verifies pairwise compatibility averaging
func TestValidateChainScores(t *testing.T) {
	s, _, _ := newTestSystem(t)

	// bounce->spin 0.8, spin->pulse 0.6
	report := s.ValidateChain([]string{"bounce", "spin", "pulse"})
	if !report.IsValid {
		t.Fatalf("chain invalid: %v", report.Warnings)
	}
	if diff := report.AverageCompatibility - 0.7; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("AverageCompatibility = %v, want 0.7", report.AverageCompatibility)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", report.Warnings)
	}
}

// TestValidateChainUnknownName verifies unknown gestures invalidate without
// erroring
func TestValidateChainUnknownName(t *testing.T) {
	s, _, _ := newTestSystem(t)

	report := s.ValidateChain([]string{"bounce", "moonwalk"})
	if report.IsValid {
		t.Error("chain with unknown gesture reported valid")
	}
	if len(report.Warnings) == 0 {
		t.Error("unknown gesture produced no warning")
	}
}

// TestValidateChainUndefinedPair verifies pairs without declared scores
// warn and contribute zero
func TestValidateChainUndefinedPair(t *testing.T) {
	s, _, _ := newTestSystem(t)

	// bounce declares no score toward breathe
	report := s.ValidateChain([]string{"bounce", "breathe"})
	if !report.IsValid {
		t.Error("undefined pair invalidated the chain")
	}
	if report.AverageCompatibility != 0 {
		t.Errorf("AverageCompatibility = %v, want 0", report.AverageCompatibility)
	}

	foundPair := false
	foundLow := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "no compatibility") {
			foundPair = true
		}
		if strings.Contains(w, "below comfortable threshold") {
			foundLow = true
		}
	}
	if !foundPair || !foundLow {
		t.Errorf("warnings = %v, want undefined-pair and low-score entries", report.Warnings)
	}
}

// TestValidateChainShort verifies chains under two gestures score 1.0
func TestValidateChainShort(t *testing.T) {
	s, _, _ := newTestSystem(t)
	if got := s.ValidateChain([]string{"bounce"}).AverageCompatibility; got != 1.0 {
		t.Errorf("single-gesture average = %v, want 1.0", got)
	}
}

// TestChainQueuesAndAnnounces verifies a valid chain queues everything and
// emits one chain event
func TestChainQueuesAndAnnounces(t *testing.T) {
	s, _, bus := newTestSystem(t)

	var chain *event.GestureChainPayload
	bus.On(event.TypeGestureChainStarted, func(ev event.Event) {
		chain = ev.Payload.(*event.GestureChainPayload)
	})

	report := s.Chain([]string{"bounce", "spin", "pulse"}, emotion.Properties{})
	if !report.IsValid {
		t.Fatalf("chain invalid: %v", report.Warnings)
	}
	if s.ActiveName() != "bounce" || s.QueueLength() != 2 {
		t.Errorf("after chain: active %q queue %d, want bounce/2", s.ActiveName(), s.QueueLength())
	}
	if chain == nil || len(chain.Gestures) != 3 {
		t.Fatalf("gestureChainStarted = %+v, want 3 gestures", chain)
	}

	// An invalid chain queues nothing
	s.Clear()
	s.Chain([]string{"bounce", "moonwalk"}, emotion.Properties{})
	if s.IsActive() || s.QueueLength() != 0 {
		t.Error("invalid chain queued gestures")
	}
}

// TestBurstFiresOnceAtFirePoint verifies the particle hook triggers exactly
// once when progress crosses the fire point
func TestBurstFiresOnceAtFirePoint(t *testing.T) {
	s, clock, _ := newTestSystem(t)

	bursts := 0
	var burstCount int
	s.SetBurstFunc(func(count int, ctx emotion.Properties) {
		bursts++
		burstCount = count
	})

	s.Execute("spin", emotion.Properties{}) // FirePoint 0.5, burst 4, 800ms

	clock.advance(200 * time.Millisecond) // progress 0.25
	s.Update(200 * time.Millisecond)
	if bursts != 0 {
		t.Fatalf("burst fired at progress 0.25, fire point is 0.5")
	}

	clock.advance(200 * time.Millisecond) // progress 0.5
	s.Update(200 * time.Millisecond)
	if bursts != 1 {
		t.Fatalf("bursts at fire point = %d, want 1", bursts)
	}
	if burstCount != 4 {
		t.Errorf("burst count = %d, want 4", burstCount)
	}

	clock.advance(200 * time.Millisecond)
	s.Update(200 * time.Millisecond)
	if bursts != 1 {
		t.Errorf("bursts after fire point = %d, want 1 (no refire)", bursts)
	}
}

// TestTransformFollowsEasing verifies the output transform scales the
// definition peaks by the eased progress
func TestTransformFollowsEasing(t *testing.T) {
	s, clock, _ := newTestSystem(t)

	s.Execute("bounce", emotion.Properties{}) // MoveY -2.5, 600ms
	def, _ := NewRegistry().Lookup("bounce")

	clock.advance(300 * time.Millisecond)
	s.Update(300 * time.Millisecond)

	eased := def.easingFn(0.5)
	got := s.Transform()
	if got.OffsetY != def.MoveY*eased {
		t.Errorf("OffsetY = %v, want %v", got.OffsetY, def.MoveY*eased)
	}
	if got.Scale != 1+(def.Scale-1)*eased {
		t.Errorf("Scale = %v, want %v", got.Scale, 1+(def.Scale-1)*eased)
	}
}

// TestClearInterrupts verifies Clear drops both the active gesture and the
// queue
func TestClearInterrupts(t *testing.T) {
	s, _, _ := newTestSystem(t)

	s.Execute("bounce", emotion.Properties{})
	s.Execute("spin", emotion.Properties{})
	s.Clear()

	if s.IsActive() || s.QueueLength() != 0 {
		t.Errorf("after Clear: active %v queue %d, want idle", s.IsActive(), s.QueueLength())
	}
	if got := s.Transform(); got != Identity {
		t.Errorf("transform after Clear = %+v, want identity", got)
	}
}
