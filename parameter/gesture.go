package parameter

// Gesture Execution
const (
	// GestureDefaultFirePoint is the progress at which a gesture's particle
	// burst triggers when the definition does not override it (onset)
	GestureDefaultFirePoint = 0.0

	// ChainWarnCompatibility flags chains whose average pairwise score falls
	// below this as awkward (warning, not rejection)
	ChainWarnCompatibility = 0.3
)
