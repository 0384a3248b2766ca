package audio

import (
	"errors"
	"time"
)

// Analyser supplies frequency-domain magnitudes, the engine's only audio
// input surface; the host owns capture and windowing
// FrequencyData fills dst with normalized bin magnitudes in [0,1] and
// returns the number of bins written
type Analyser interface {
	FrequencyData(dst []float64) (int, error)
}

// Clock supplies the processor's notion of now; spike debouncing and beat
// intervals are measured on it
type Clock interface {
	Now() time.Time
}

var (
	// ErrNoAnalyser is returned by Initialize when no analyser is supplied
	ErrNoAnalyser = errors.New("audio: no analyser connected")

	// ErrStreamDrained is returned by StreamAnalyser once its source ends
	ErrStreamDrained = errors.New("audio: source stream drained")
)
