package parameter

// Event Bus
const (
	// DefaultMaxListeners is the per-event listener ceiling
	// Exceeding it warns once (leak surfacing) but does not fail
	DefaultMaxListeners = 16

	// EventInboxSize is the capacity of the cross-goroutine inbox ring
	// Must be a power of two (mask-indexed)
	EventInboxSize = 256

	// EventInboxMask converts a monotonic index into a ring slot
	EventInboxMask = EventInboxSize - 1
)
