package parameter

import (
	"time"
)

// State Machine
const (
	// DefaultTransitionDuration is used when SetEmotion is called without an
	// explicit duration
	DefaultTransitionDuration = 500 * time.Millisecond

	// MaxGestureQueue bounds the pending-gesture FIFO; requests beyond it
	// are rejected, not queued
	MaxGestureQueue = 8

	// SpeakingLevel is the smoothed audio level above which the mascot is
	// considered speaking
	SpeakingLevel = 0.05
)

// Undertone Clamps
const (
	// UndertoneGlowMax caps glow after undertone scaling so intense
	// undertones cannot push glow past the renderer's usable range
	UndertoneGlowMax = 2.0

	// UndertoneSizeMin / UndertoneSizeMax clamp core size after scaling
	UndertoneSizeMin = 0.4
	UndertoneSizeMax = 2.5
)
