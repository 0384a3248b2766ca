package parameter

import (
	"time"
)

// Level Extraction
const (
	// AudioHistorySize is the rolling level-sample history length
	AudioHistorySize = 64

	// AudioSmoothing is the exponential smoothing factor applied to the raw
	// level (0 = frozen, 1 = no smoothing)
	AudioSmoothing = 0.3

	// AudioBinCount is the number of frequency bins the stream analyser
	// produces and the processor reads per update
	AudioBinCount = 32
)

// Spike Detection
const (
	// DefaultSpikeThreshold is the ratio of current level to recent average
	// that qualifies as a spike
	DefaultSpikeThreshold = 2.0

	// DefaultMinimumSpikeLevel gates spikes in near-silence; a doubling of
	// a tiny level is not a spike
	DefaultMinimumSpikeLevel = 0.15

	// DefaultSpikeMinInterval debounces spike storms on sustained loud audio
	DefaultSpikeMinInterval = 100 * time.Millisecond

	// SpikeAverageWindow is how many recent samples feed the spike baseline
	SpikeAverageWindow = 32
)

// Beat Estimation
const (
	// BeatSpikeWindow is how many recent spike timestamps feed the estimator
	BeatSpikeWindow = 8

	// BeatMinIntervals is the minimum inter-spike interval count before any
	// beat estimate is emitted
	BeatMinIntervals = 3

	// BeatMaxInterval discards stale spikes from the estimator window
	BeatMaxInterval = 2 * time.Second

	// BeatMinConfidence gates emission of low-quality estimates
	BeatMinConfidence = 0.25
)
