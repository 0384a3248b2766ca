package event

import (
	"sync/atomic"

	"github.com/lixenwraith/emotive/parameter"
)

// Inbox is a lock-free MPSC ring buffer for events produced off the frame
// goroutine (host input, audio capture threads)
// Thread-Safety:
//   - Push: lock-free CAS, multiple producers OK
//   - Consume: single consumer (the frame loop, at tick start)
//   - Published flags prevent reading partial writes
//
// Overflow: oldest events overwritten when full
type Inbox struct {
	events    [parameter.EventInboxSize]Event
	published [parameter.EventInboxSize]atomic.Bool
	head      atomic.Uint64 // Read index
	tail      atomic.Uint64 // Write index
}

func NewInbox() *Inbox {
	in := &Inbox{}
	in.head.Store(0)
	in.tail.Store(0)
	return in
}

// Push adds an event using CAS with published flags
// Safe for concurrent producers. O(1) amortized
func (in *Inbox) Push(ev Event) {
	for {
		currentTail := in.tail.Load()
		nextTail := currentTail + 1

		if in.tail.CompareAndSwap(currentTail, nextTail) {
			idx := currentTail & parameter.EventInboxMask

			in.events[idx] = ev
			in.published[idx].Store(true) // MUST be after write

			// Advance head if overwriting unread events
			currentHead := in.head.Load()
			if nextTail-currentHead > parameter.EventInboxSize {
				in.head.CompareAndSwap(currentHead, nextTail-parameter.EventInboxSize)
			}
			return
		}
	}
}

// Consume returns all pending events in FIFO order and advances head
// Single-consumer design; checks published flags for safety
func (in *Inbox) Consume() []Event {
	for {
		currentHead := in.head.Load()
		currentTail := in.tail.Load()

		if currentTail == currentHead {
			return nil
		}

		maxAvailable := currentTail - currentHead
		if maxAvailable > parameter.EventInboxSize {
			maxAvailable = parameter.EventInboxSize
			currentHead = currentTail - parameter.EventInboxSize
		}

		result := make([]Event, 0, maxAvailable)
		for i := uint64(0); i < maxAvailable; i++ {
			idx := (currentHead + i) & parameter.EventInboxMask

			if !in.published[idx].Load() {
				break // Writer incomplete
			}

			result = append(result, in.events[idx])
			in.published[idx].Store(false)
		}

		newHead := currentHead + uint64(len(result))
		if in.head.CompareAndSwap(currentHead, newHead) {
			if len(result) == 0 {
				return nil
			}
			return result
		}
	}
}
