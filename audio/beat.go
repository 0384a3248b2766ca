package audio

import (
	"math"
	"time"

	"github.com/lixenwraith/emotive/parameter"
	"github.com/lixenwraith/emotive/vmath"
)

// beatEstimator derives a tempo estimate from spike timing regularity
// Tight inter-spike variance means high confidence; irregular spikes decay
// toward zero confidence rather than emitting garbage BPM
type beatEstimator struct {
	spikes []time.Time // bounded to parameter.BeatSpikeWindow
}

// record adds a spike timestamp, dropping stale entries
func (b *beatEstimator) record(t time.Time) {
	// A gap longer than BeatMaxInterval breaks the rhythm; restart
	if n := len(b.spikes); n > 0 && t.Sub(b.spikes[n-1]) > parameter.BeatMaxInterval {
		b.spikes = b.spikes[:0]
	}

	b.spikes = append(b.spikes, t)
	if len(b.spikes) > parameter.BeatSpikeWindow {
		b.spikes = b.spikes[1:]
	}
}

// estimate returns (bpm, confidence, ok); ok is false until enough
// intervals exist
func (b *beatEstimator) estimate() (float64, float64, bool) {
	if len(b.spikes) < parameter.BeatMinIntervals+1 {
		return 0, 0, false
	}

	intervals := make([]float64, 0, len(b.spikes)-1)
	for i := 1; i < len(b.spikes); i++ {
		intervals = append(intervals, b.spikes[i].Sub(b.spikes[i-1]).Seconds())
	}

	mean := 0.0
	for _, iv := range intervals {
		mean += iv
	}
	mean /= float64(len(intervals))
	if mean <= 0 {
		return 0, 0, false
	}

	variance := 0.0
	for _, iv := range intervals {
		d := iv - mean
		variance += d * d
	}
	variance /= float64(len(intervals))

	// Coefficient of variation maps to confidence: cv 0 => 1.0, cv >= 1 => 0
	cv := math.Sqrt(variance) / mean
	confidence := vmath.Clamp01(1 - cv)

	return 60.0 / mean, confidence, true
}

// reset drops all recorded spikes
func (b *beatEstimator) reset() {
	b.spikes = b.spikes[:0]
}
