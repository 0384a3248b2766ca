package parameter

// Performance Monitor
const (
	// PerfSampleWindow is the rolling frame-time window size used for
	// smoothed FPS; between 30 and 60 keeps decisions responsive without
	// reacting to single-frame noise
	PerfSampleWindow = 45

	// DefaultCriticalFPS is the per-frame FPS below which a frame counts
	// toward degradation
	DefaultCriticalFPS = 30.0

	// DefaultWarningFPS is the per-frame FPS a frame must meet to count
	// toward recovery
	DefaultWarningFPS = 50.0

	// DefaultRequiredBadFrames is the run length of sub-critical frames
	// before one degradation step fires
	DefaultRequiredBadFrames = 30

	// DefaultRequiredGoodFrames is the run length of qualifying frames
	// before one recovery step fires (hysteresis against flapping)
	DefaultRequiredGoodFrames = 30

	// MaxDegradationSteps bounds how far quality can shrink
	MaxDegradationSteps = 3

	// DegradationParticleScale is the particle-cap multiplier applied per step
	DegradationParticleScale = 0.5

	// DegradationFPSDrop is subtracted from target FPS per step
	DegradationFPSDrop = 10
)
