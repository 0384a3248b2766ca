package audio

import (
	"math"
	"sync"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/emotive/vmath"
)

// DefaultBlockSize is the per-read sample block pulled from the source
const DefaultBlockSize = 512

// StreamAnalyser adapts any beep.Streamer into the engine's Analyser
// Each FrequencyData call pulls one block from the source and reduces it to
// per-bin magnitudes via Goertzel at evenly spaced normalized frequencies
// Intended for hosts without a platform analyser (demos, tests, file input)
type StreamAnalyser struct {
	mu    sync.Mutex
	src   beep.Streamer
	block [][2]float64
	mono  []float64
}

// NewStreamAnalyser wraps src; blockSize <= 0 selects the default
func NewStreamAnalyser(src beep.Streamer, blockSize int) *StreamAnalyser {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &StreamAnalyser{
		src:   src,
		block: make([][2]float64, blockSize),
		mono:  make([]float64, blockSize),
	}
}

// FrequencyData implements Analyser
// Returns ErrStreamDrained once the source reports completion, or the
// source's own error when it has one
func (a *StreamAnalyser) FrequencyData(dst []float64) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, ok := a.src.Stream(a.block)
	if n == 0 {
		if !ok {
			if err := a.src.Err(); err != nil {
				return 0, err
			}
			return 0, ErrStreamDrained
		}
		return 0, nil
	}

	for i := 0; i < n; i++ {
		a.mono[i] = (a.block[i][0] + a.block[i][1]) * 0.5
	}

	bins := len(dst)
	for b := 0; b < bins; b++ {
		// Evenly spaced normalized frequencies up to Nyquist
		freq := 0.5 * float64(b+1) / float64(bins+1)
		dst[b] = vmath.Clamp01(goertzel(a.mono[:n], freq) / (float64(n) * 0.5))
	}
	return bins, nil
}

// goertzel computes the magnitude of one frequency component
// freq is in cycles per sample
func goertzel(samples []float64, freq float64) float64 {
	coeff := 2 * math.Cos(2*math.Pi*freq)
	var s1, s2 float64
	for _, x := range samples {
		s0 := x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	return math.Sqrt(s1*s1 + s2*s2 - coeff*s1*s2)
}
