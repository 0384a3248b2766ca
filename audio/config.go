package audio

import (
	"time"

	"github.com/lixenwraith/emotive/parameter"
)

// Config holds the tunable knobs of the level processor
// Zero/negative fields are replaced by defaults at apply time, so partial
// configs are safe
type Config struct {
	// SpikeThreshold is the current-to-average ratio qualifying as a spike
	SpikeThreshold float64

	// MinimumSpikeLevel gates spikes in near-silence
	MinimumSpikeLevel float64

	// SpikeMinInterval debounces consecutive spikes
	SpikeMinInterval time.Duration

	// Smoothing is the exponential factor applied to raw levels (1 = none)
	Smoothing float64

	// BinCount is the analyser read size
	BinCount int
}

// DefaultConfig returns the calibrated defaults
func DefaultConfig() Config {
	return Config{
		SpikeThreshold:    parameter.DefaultSpikeThreshold,
		MinimumSpikeLevel: parameter.DefaultMinimumSpikeLevel,
		SpikeMinInterval:  parameter.DefaultSpikeMinInterval,
		Smoothing:         parameter.AudioSmoothing,
		BinCount:          parameter.AudioBinCount,
	}
}

// sanitize fills invalid fields from defaults
func (c Config) sanitize() Config {
	def := DefaultConfig()
	if c.SpikeThreshold <= 1 {
		c.SpikeThreshold = def.SpikeThreshold
	}
	if c.MinimumSpikeLevel <= 0 {
		c.MinimumSpikeLevel = def.MinimumSpikeLevel
	}
	if c.SpikeMinInterval <= 0 {
		c.SpikeMinInterval = def.SpikeMinInterval
	}
	if c.Smoothing <= 0 || c.Smoothing > 1 {
		c.Smoothing = def.Smoothing
	}
	if c.BinCount <= 0 {
		c.BinCount = def.BinCount
	}
	return c
}
