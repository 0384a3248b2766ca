package audio

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/emotive/event"
	"github.com/lixenwraith/emotive/parameter"
	"github.com/lixenwraith/emotive/status"
)

// Sample is one entry of the rolling level history
type Sample struct {
	Level     float64
	Timestamp time.Time
}

// AudioStats is the processor's diagnostic snapshot
type AudioStats struct {
	Initialized    bool
	CurrentLevel   float64
	AverageLevel   float64
	Updates        int64
	Spikes         int64
	Errors         int64
	BeatBPM        float64
	BeatConfidence float64
}

// LevelProcessor reduces frequency-domain analyser reads to a smoothed
// level, debounced volume spikes, and a beat estimate
// All failures degrade audio features only; the rest of the engine never
// sees an audio error as anything but an event
type LevelProcessor struct {
	mu    sync.Mutex
	cfg   Config
	bus   *event.Bus
	clock Clock

	analyser Analyser
	bins     []float64

	level   float64
	history [parameter.AudioHistorySize]Sample
	histPos int
	histLen int

	lastSpike time.Time
	beat      beatEstimator

	lastBPM        float64
	lastConfidence float64

	statUpdates *atomic.Int64
	statSpikes  *atomic.Int64
	statBeats   *atomic.Int64
	statErrors  *atomic.Int64
}

// NewLevelProcessor creates a disconnected processor; Initialize attaches
// the analyser
func NewLevelProcessor(cfg Config, bus *event.Bus, clock Clock, st *status.Registry) *LevelProcessor {
	cfg = cfg.sanitize()
	return &LevelProcessor{
		cfg:         cfg,
		bus:         bus,
		clock:       clock,
		bins:        make([]float64, cfg.BinCount),
		statUpdates: st.Ints.Get("audio.updates"),
		statSpikes:  st.Ints.Get("audio.spikes"),
		statBeats:   st.Ints.Get("audio.beats"),
		statErrors:  st.Ints.Get("audio.errors"),
	}
}

// Initialize attaches the analyser; returns ErrNoAnalyser for nil
func (p *LevelProcessor) Initialize(analyser Analyser) error {
	if analyser == nil {
		return ErrNoAnalyser
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.analyser = analyser
	return nil
}

// Initialized reports whether an analyser is attached
func (p *LevelProcessor) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.analyser != nil
}

// UpdateAudioLevel performs one analysis pass: read bins, reduce to RMS,
// smooth, roll history, detect spike, update beat estimate
// When both a spike and a beat qualify in the same pass, the spike event is
// emitted first, then the beat (spike is the rawer signal; beat derives
// from it)
func (p *LevelProcessor) UpdateAudioLevel(deltaTime time.Duration) {
	p.mu.Lock()

	if p.analyser == nil {
		p.mu.Unlock()
		return
	}

	n, err := p.analyser.FrequencyData(p.bins)
	if err != nil {
		p.statErrors.Add(1)
		p.mu.Unlock()
		// Prior level, history, and beat state stay intact
		p.bus.Emit(event.TypeAudioError, &event.AudioErrorPayload{Err: err})
		return
	}
	if n == 0 {
		p.mu.Unlock()
		return
	}

	// RMS reduction over the filled bins
	sum := 0.0
	for _, v := range p.bins[:n] {
		sum += v * v
	}
	raw := math.Sqrt(sum / float64(n))

	// Exponential smoothing; the smoothed value is the published level
	p.level += (raw - p.level) * p.cfg.Smoothing

	now := p.clock.Now()
	level := p.level

	// Spike baseline: recent average BEFORE this sample joins the history
	avg := p.recentAverageLocked()

	p.history[p.histPos] = Sample{Level: level, Timestamp: now}
	p.histPos = (p.histPos + 1) % len(p.history)
	if p.histLen < len(p.history) {
		p.histLen++
	}

	spike := false
	ratio := 0.0
	if avg > 0 {
		ratio = level / avg
	}
	if level >= p.cfg.MinimumSpikeLevel &&
		avg > 0 && ratio >= p.cfg.SpikeThreshold &&
		(p.lastSpike.IsZero() || now.Sub(p.lastSpike) >= p.cfg.SpikeMinInterval) {
		spike = true
		p.lastSpike = now
		p.beat.record(now)
		p.statSpikes.Add(1)
	}

	bpm, confidence, haveBeat := p.beat.estimate()
	if haveBeat && confidence >= parameter.BeatMinConfidence {
		p.lastBPM = bpm
		p.lastConfidence = confidence
	} else {
		haveBeat = false
	}

	p.statUpdates.Add(1)
	p.mu.Unlock()

	p.bus.Emit(event.TypeAudioLevelUpdate, &event.AudioLevelPayload{
		Level:     level,
		Timestamp: now,
	})
	if spike {
		p.bus.Emit(event.TypeVolumeSpike, &event.VolumeSpikePayload{
			Level:      level,
			SpikeRatio: ratio,
			Timestamp:  now,
		})
	}
	if spike && haveBeat {
		p.statBeats.Add(1)
		p.bus.Emit(event.TypeBeatDetected, &event.BeatPayload{
			BPM:        bpm,
			Confidence: confidence,
			Timestamp:  now,
		})
	}
}

// recentAverageLocked averages the newest SpikeAverageWindow history entries
func (p *LevelProcessor) recentAverageLocked() float64 {
	if p.histLen == 0 {
		return 0
	}
	window := parameter.SpikeAverageWindow
	if window > p.histLen {
		window = p.histLen
	}

	sum := 0.0
	for i := 0; i < window; i++ {
		idx := (p.histPos - 1 - i + len(p.history)*2) % len(p.history)
		sum += p.history[idx].Level
	}
	return sum / float64(window)
}

// CurrentLevel returns the smoothed normalized level
func (p *LevelProcessor) CurrentLevel() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// UpdateConfig replaces the tunables; invalid fields fall back to defaults
// Bin storage grows if the new config demands it
func (p *LevelProcessor) UpdateConfig(cfg Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg.sanitize()
	if len(p.bins) < p.cfg.BinCount {
		p.bins = make([]float64, p.cfg.BinCount)
	}
}

// GetStats snapshots processor state
func (p *LevelProcessor) GetStats() AudioStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	avg := p.recentAverageLocked()
	return AudioStats{
		Initialized:    p.analyser != nil,
		CurrentLevel:   p.level,
		AverageLevel:   avg,
		Updates:        p.statUpdates.Load(),
		Spikes:         p.statSpikes.Load(),
		Errors:         p.statErrors.Load(),
		BeatBPM:        p.lastBPM,
		BeatConfidence: p.lastConfidence,
	}
}

// Cleanup detaches the analyser and clears rolling state
func (p *LevelProcessor) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.analyser = nil
	p.level = 0
	p.histPos = 0
	p.histLen = 0
	p.lastSpike = time.Time{}
	p.lastBPM = 0
	p.lastConfidence = 0
	p.beat.reset()
}
