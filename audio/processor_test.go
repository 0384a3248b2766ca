package audio

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/emotive/event"
	"github.com/lixenwraith/emotive/parameter"
	"github.com/lixenwraith/emotive/status"
)

// fakeClock is a settable Clock for deterministic spike/beat timing
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

// scriptedAnalyser replays a level sequence; every bin carries the scripted
// value so the RMS reduction returns it unchanged
type scriptedAnalyser struct {
	levels []float64
	errs   []error // nil entries mean success, parallel to levels
	pos    int
}

func (a *scriptedAnalyser) FrequencyData(dst []float64) (int, error) {
	if a.pos >= len(a.levels) {
		return 0, nil
	}
	if a.errs != nil && a.errs[a.pos] != nil {
		err := a.errs[a.pos]
		a.pos++
		return 0, err
	}
	v := a.levels[a.pos]
	a.pos++
	for i := range dst {
		dst[i] = v
	}
	return len(dst), nil
}

// rawConfig disables smoothing so the published level equals the scripted
// one, keeping spike arithmetic exact
func rawConfig() Config {
	return Config{
		SpikeThreshold:    2.0,
		MinimumSpikeLevel: 0.2,
		SpikeMinInterval:  100 * time.Millisecond,
		Smoothing:         1.0,
		BinCount:          8,
	}
}

func newTestProcessor(t *testing.T, cfg Config, levels []float64) (*LevelProcessor, *fakeClock, *event.Bus) {
	t.Helper()
	clock := newFakeClock()
	bus := event.NewBus()
	p := NewLevelProcessor(cfg, bus, clock, status.NewRegistry())
	if err := p.Initialize(&scriptedAnalyser{levels: levels}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return p, clock, bus
}

// runUpdates performs n update passes spaced step apart
func runUpdates(p *LevelProcessor, clock *fakeClock, n int, step time.Duration) {
	for i := 0; i < n; i++ {
		clock.advance(step)
		p.UpdateAudioLevel(step)
	}
}

// TestSpikeOnJumpOverBaseline verifies a level jump well above the rolling
// average fires exactly one spike
func TestSpikeOnJumpOverBaseline(t *testing.T) {
	levels := make([]float64, 0, 40)
	for i := 0; i < 32; i++ {
		levels = append(levels, 0.1)
	}
	levels = append(levels, 0.5) // 5x the baseline
	for i := 0; i < 5; i++ {
		levels = append(levels, 0.1)
	}

	p, clock, bus := newTestProcessor(t, rawConfig(), levels)

	var spikes []*event.VolumeSpikePayload
	bus.On(event.TypeVolumeSpike, func(ev event.Event) {
		spikes = append(spikes, ev.Payload.(*event.VolumeSpikePayload))
	})
	levelEvents := 0
	bus.On(event.TypeAudioLevelUpdate, func(ev event.Event) { levelEvents++ })

	runUpdates(p, clock, len(levels), 60*time.Millisecond)

	if len(spikes) != 1 {
		t.Fatalf("spikes = %d, want exactly 1", len(spikes))
	}
	if spikes[0].Level != 0.5 {
		t.Errorf("spike level = %v, want 0.5", spikes[0].Level)
	}
	if spikes[0].SpikeRatio < 4.9 || spikes[0].SpikeRatio > 5.1 {
		t.Errorf("spike ratio = %v, want ~5", spikes[0].SpikeRatio)
	}
	if levelEvents != len(levels) {
		t.Errorf("audioLevelUpdate events = %d, want %d (every pass)", levelEvents, len(levels))
	}
}

// TestNoSpikeInNearSilence verifies the minimum-level gate: a large ratio
// over a tiny baseline is not a spike
func TestNoSpikeInNearSilence(t *testing.T) {
	levels := make([]float64, 0, 33)
	for i := 0; i < 32; i++ {
		levels = append(levels, 0.01)
	}
	levels = append(levels, 0.05) // 5x ratio, but under MinimumSpikeLevel

	p, clock, bus := newTestProcessor(t, rawConfig(), levels)

	spikes := 0
	bus.On(event.TypeVolumeSpike, func(ev event.Event) { spikes++ })

	runUpdates(p, clock, len(levels), 60*time.Millisecond)

	if spikes != 0 {
		t.Errorf("spikes in near-silence = %d, want 0", spikes)
	}
}

// TestNoSpikeWithoutBaseline verifies the very first loud sample cannot
// spike because there is no average to compare against
func TestNoSpikeWithoutBaseline(t *testing.T) {
	p, clock, bus := newTestProcessor(t, rawConfig(), []float64{0.9})

	spikes := 0
	bus.On(event.TypeVolumeSpike, func(ev event.Event) { spikes++ })

	runUpdates(p, clock, 1, 60*time.Millisecond)

	if spikes != 0 {
		t.Errorf("spikes on first-ever sample = %d, want 0", spikes)
	}
}

// TestSpikeDebounce verifies two qualifying jumps inside the minimum
// interval yield one spike
func TestSpikeDebounce(t *testing.T) {
	levels := make([]float64, 0, 34)
	for i := 0; i < 32; i++ {
		levels = append(levels, 0.1)
	}
	levels = append(levels, 0.5, 0.5) // back-to-back qualifying samples

	p, clock, bus := newTestProcessor(t, rawConfig(), levels)

	spikes := 0
	bus.On(event.TypeVolumeSpike, func(ev event.Event) { spikes++ })

	// 10ms spacing keeps the second jump inside the 100ms debounce window
	runUpdates(p, clock, len(levels), 10*time.Millisecond)

	if spikes != 1 {
		t.Errorf("spikes = %d, want 1 (debounced)", spikes)
	}
}

// TestBeatFromRegularSpikes verifies a periodic spike train produces a
// high-confidence tempo estimate
func TestBeatFromRegularSpikes(t *testing.T) {
	// 100ms update cadence; every 5th sample is loud: spikes 500ms apart
	levels := make([]float64, 0, 80)
	for i := 0; i < 32; i++ {
		levels = append(levels, 0.1)
	}
	for i := 0; i < 40; i++ {
		if i%5 == 4 {
			levels = append(levels, 0.6)
		} else {
			levels = append(levels, 0.1)
		}
	}

	p, clock, bus := newTestProcessor(t, rawConfig(), levels)

	var beats []*event.BeatPayload
	bus.On(event.TypeBeatDetected, func(ev event.Event) {
		beats = append(beats, ev.Payload.(*event.BeatPayload))
	})
	spikeTimes := []time.Time{}
	bus.On(event.TypeVolumeSpike, func(ev event.Event) {
		spikeTimes = append(spikeTimes, ev.Payload.(*event.VolumeSpikePayload).Timestamp)
	})

	runUpdates(p, clock, len(levels), 100*time.Millisecond)

	if len(spikeTimes) < parameter.BeatMinIntervals+1 {
		t.Fatalf("spike train too short: %d spikes", len(spikeTimes))
	}
	if len(beats) == 0 {
		t.Fatal("no beat detected from a regular spike train")
	}
	// 500ms period = 120 BPM at full confidence
	if bpm := beats[0].BPM; bpm < 119.9 || bpm > 120.1 {
		t.Errorf("BPM = %v, want 120", bpm)
	}
	if conf := beats[0].Confidence; conf < 0.99 {
		t.Errorf("confidence = %v, want ~1.0 for exact periodicity", conf)
	}

	st := p.GetStats()
	if st.BeatBPM < 119.9 || st.BeatBPM > 120.1 {
		t.Errorf("stats BPM = %v, want 120", st.BeatBPM)
	}
}

// TestBeatEstimatorIrregular verifies irregular spike timing stays below
// the confidence gate
func TestBeatEstimatorIrregular(t *testing.T) {
	var b beatEstimator
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Intervals 0.3s, 1.8s, 0.3s: wildly uneven rhythm
	for _, offset := range []time.Duration{0, 300 * time.Millisecond, 2100 * time.Millisecond, 2400 * time.Millisecond} {
		b.record(base.Add(offset))
	}

	_, confidence, ok := b.estimate()
	if !ok {
		t.Fatal("estimate not ready with 3 intervals")
	}
	if confidence >= parameter.BeatMinConfidence {
		t.Errorf("confidence = %v, want below gate %v", confidence, parameter.BeatMinConfidence)
	}
}

// TestBeatEstimatorStaleGap verifies a silence longer than the maximum
// interval restarts the rhythm
func TestBeatEstimatorStaleGap(t *testing.T) {
	var b beatEstimator
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		b.record(base.Add(time.Duration(i) * 500 * time.Millisecond))
	}
	if _, _, ok := b.estimate(); !ok {
		t.Fatal("estimate not ready before the gap")
	}

	// 3s of silence exceeds BeatMaxInterval
	b.record(base.Add(5 * time.Second))
	if _, _, ok := b.estimate(); ok {
		t.Error("estimate survived a stale gap, want restart")
	}
}

// TestAnalyserErrorLeavesStateIntact verifies a failing read surfaces an
// event and nothing else changes
func TestAnalyserErrorLeavesStateIntact(t *testing.T) {
	readErr := errors.New("device lost")
	clock := newFakeClock()
	bus := event.NewBus()
	p := NewLevelProcessor(rawConfig(), bus, clock, status.NewRegistry())

	analyser := &scriptedAnalyser{
		levels: []float64{0.4, 0, 0.4},
		errs:   []error{nil, readErr, nil},
	}
	if err := p.Initialize(analyser); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	var audioErrs []*event.AudioErrorPayload
	bus.On(event.TypeAudioError, func(ev event.Event) {
		audioErrs = append(audioErrs, ev.Payload.(*event.AudioErrorPayload))
	})
	levelEvents := 0
	bus.On(event.TypeAudioLevelUpdate, func(ev event.Event) { levelEvents++ })

	runUpdates(p, clock, 3, 60*time.Millisecond)

	if len(audioErrs) != 1 {
		t.Fatalf("audioProcessingError events = %d, want 1", len(audioErrs))
	}
	if !errors.Is(audioErrs[0].Err, readErr) {
		t.Errorf("error payload = %v, want %v", audioErrs[0].Err, readErr)
	}
	if got := p.CurrentLevel(); got != 0.4 {
		t.Errorf("level after failed read = %v, want 0.4 (unchanged)", got)
	}
	if levelEvents != 2 {
		t.Errorf("audioLevelUpdate events = %d, want 2 (error pass emits none)", levelEvents)
	}

	st := p.GetStats()
	if st.Errors != 1 || st.Updates != 2 {
		t.Errorf("stats = %+v, want Errors 1 Updates 2", st)
	}
}

// TestExponentialSmoothing verifies the smoothing factor is applied to the
// raw level
func TestExponentialSmoothing(t *testing.T) {
	cfg := rawConfig()
	cfg.Smoothing = 0.5
	p, clock, _ := newTestProcessor(t, cfg, []float64{1.0, 1.0})

	runUpdates(p, clock, 1, 60*time.Millisecond)
	if got := p.CurrentLevel(); got != 0.5 {
		t.Errorf("level after one pass = %v, want 0.5", got)
	}
	runUpdates(p, clock, 1, 60*time.Millisecond)
	if got := p.CurrentLevel(); got != 0.75 {
		t.Errorf("level after two passes = %v, want 0.75", got)
	}
}

// TestInitializeValidation verifies nil analysers are refused and update
// without one is a no-op
func TestInitializeValidation(t *testing.T) {
	clock := newFakeClock()
	bus := event.NewBus()
	p := NewLevelProcessor(Config{}, bus, clock, status.NewRegistry())

	if err := p.Initialize(nil); !errors.Is(err, ErrNoAnalyser) {
		t.Errorf("Initialize(nil) = %v, want ErrNoAnalyser", err)
	}
	if p.Initialized() {
		t.Error("Initialized = true, want false")
	}

	events := 0
	bus.On(event.TypeAudioLevelUpdate, func(ev event.Event) { events++ })
	p.UpdateAudioLevel(16 * time.Millisecond)
	if events != 0 {
		t.Errorf("events without analyser = %d, want 0", events)
	}
}

// TestCleanupDetaches verifies Cleanup drops the analyser and rolling state
func TestCleanupDetaches(t *testing.T) {
	p, clock, _ := newTestProcessor(t, rawConfig(), []float64{0.5, 0.5})
	runUpdates(p, clock, 2, 60*time.Millisecond)

	p.Cleanup()

	if p.Initialized() {
		t.Error("Initialized after Cleanup = true, want false")
	}
	if got := p.CurrentLevel(); got != 0 {
		t.Errorf("level after Cleanup = %v, want 0", got)
	}
	st := p.GetStats()
	if st.AverageLevel != 0 || st.BeatBPM != 0 {
		t.Errorf("stats after Cleanup = %+v, want zeroed rolling state", st)
	}
}

// TestConfigSanitize verifies invalid knobs fall back to defaults
func TestConfigSanitize(t *testing.T) {
	got := Config{
		SpikeThreshold:    0.5, // a ratio at or below 1 can never spike
		MinimumSpikeLevel: -1,
		SpikeMinInterval:  0,
		Smoothing:         1.7,
		BinCount:          0,
	}.sanitize()
	def := DefaultConfig()

	if got != def {
		t.Errorf("sanitized = %+v, want defaults %+v", got, def)
	}
}
