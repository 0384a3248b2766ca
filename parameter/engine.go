package parameter

import (
	"time"
)

// Frame Scheduler
const (
	// DefaultTargetFPS is the tick rate the scheduler aims for when the host
	// does not override it
	DefaultTargetFPS = 60

	// MinTargetFPS / MaxTargetFPS bound SetTargetFPS inputs
	MinTargetFPS = 15
	MaxTargetFPS = 240

	// SchedulerMaxBehind is how far the tick deadline may drift behind
	// game time before it snaps forward instead of burst-ticking
	SchedulerMaxBehind = 2

	// PausedSleepMultiplier increases scheduler sleep while paused to save CPU
	PausedSleepMultiplier = 2
)

// Callback Registry
const (
	// CallbackErrorLogLimit is the number of times a failing registration is
	// logged before going silent (it is disabled on first failure anyway)
	CallbackErrorLogLimit = 1
)

// Clock
const (
	// MaxDeltaTime clamps per-tick delta after a host stall (backgrounded
	// tab, suspended process) so duration-based systems do not teleport
	MaxDeltaTime = 250 * time.Millisecond
)
