package event

import (
	"time"
)

// EmotionChangedPayload describes a transition between two emotions
type EmotionChangedPayload struct {
	From      string
	To        string
	Undertone string
	Duration  time.Duration
}

// GesturePayload identifies a gesture lifecycle edge
type GesturePayload struct {
	Name        string
	QueueLength int
}

// GestureChainPayload describes a queued gesture chain
type GestureChainPayload struct {
	Gestures             []string
	AverageCompatibility float64
}

// AudioLevelPayload carries the smoothed normalized level
type AudioLevelPayload struct {
	Level     float64
	Timestamp time.Time
}

// VolumeSpikePayload describes a debounced level excursion
type VolumeSpikePayload struct {
	Level      float64
	SpikeRatio float64 // level / recent average
	Timestamp  time.Time
}

// BeatPayload carries a tempo estimate derived from spike regularity
type BeatPayload struct {
	BPM        float64
	Confidence float64 // tight inter-spike variance => high confidence
	Timestamp  time.Time
}

// AudioErrorPayload wraps an analyser failure
type AudioErrorPayload struct {
	Err error
}

// PerformancePayload describes a quality step decision
type PerformancePayload struct {
	FPS  float64 // smoothed FPS at decision time
	Step int     // degradation step after the decision (0 = full quality)
}

// CallbackErrorPayload identifies a disabled frame-loop registration
type CallbackErrorPayload struct {
	ID        uint64
	Recovered any // panic value or returned error
}
