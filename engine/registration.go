package engine

import (
	"time"
)

// Callback is one per-frame hook, invoked with the tick's delta and the
// current engine time
// Returning an error (or panicking) disables the registration; it does not
// abort the frame
type Callback func(deltaTime time.Duration, now time.Time) error

// registration is the scheduler's record of one callback
// Owned exclusively by the Scheduler; ids are monotonic and never reused
// while the scheduler instance lives
type registration struct {
	id        uint64
	cb        Callback
	priority  int
	enabled   bool
	ctx       any
	errLogged bool
}
