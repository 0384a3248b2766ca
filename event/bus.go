package event

import (
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/lixenwraith/emotive/parameter"
)

// Listener receives a dispatched event
type Listener func(ev Event)

// subscription tracks one registered listener
// fired guards once-listeners against double execution under re-entrant Emit
type subscription struct {
	fn    Listener
	ptr   uintptr // identity for Off matching
	once  bool
	fired bool
}

// Bus is the engine's pub/sub hub
// Dispatch is synchronous on the caller's goroutine; cross-goroutine
// producers go through the Inbox and are drained at tick start
type Bus struct {
	mu           sync.Mutex
	listeners    map[Type][]*subscription
	maxListeners int
	warned       map[Type]bool

	inbox *Inbox
	now   func() time.Time

	emitted   uint64
	delivered uint64
}

// NewBus creates a bus with the default listener ceiling
func NewBus() *Bus {
	InitRegistry()
	return &Bus{
		listeners:    make(map[Type][]*subscription),
		maxListeners: parameter.DefaultMaxListeners,
		warned:       make(map[Type]bool),
		inbox:        NewInbox(),
		now:          time.Now,
	}
}

// SetMaxListeners adjusts the per-event ceiling; zero disables the warning
func (b *Bus) SetMaxListeners(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maxListeners = n
}

// SetTimeSource overrides the timestamp source, used by tests
func (b *Bus) SetTimeSource(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// On registers fn for t; returns false for nil fn or unknown type
// Exceeding the listener ceiling warns once per type but still registers;
// the ceiling surfaces leaks, it does not enforce correctness
func (b *Bus) On(t Type, fn Listener) bool {
	return b.subscribe(t, fn, false)
}

// Once registers fn for a single delivery
// Exactly-once holds even when the listener re-enters Emit synchronously
func (b *Bus) Once(t Type, fn Listener) bool {
	return b.subscribe(t, fn, true)
}

func (b *Bus) subscribe(t Type, fn Listener, once bool) bool {
	if fn == nil || t < 0 || t >= typeCount {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := append(b.listeners[t], &subscription{
		fn:   fn,
		ptr:  reflect.ValueOf(fn).Pointer(),
		once: once,
	})
	b.listeners[t] = subs

	if b.maxListeners > 0 && len(subs) > b.maxListeners && !b.warned[t] {
		b.warned[t] = true
		log.Printf("event: listener count for %q exceeds ceiling (%d > %d), possible leak",
			Name(t), len(subs), b.maxListeners)
	}
	return true
}

// Off removes the first registration of fn for t; returns false if absent
// Matching is by function identity, so the caller must pass the same value
// it registered (method values taken twice do not match)
func (b *Bus) Off(t Type, fn Listener) bool {
	if fn == nil {
		return false
	}
	ptr := reflect.ValueOf(fn).Pointer()

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.listeners[t]
	for i, s := range subs {
		if s.ptr == ptr {
			b.listeners[t] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAllListeners clears listeners for the given types, or all types when
// called with no arguments
func (b *Bus) RemoveAllListeners(types ...Type) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(types) == 0 {
		b.listeners = make(map[Type][]*subscription)
		b.warned = make(map[Type]bool)
		return
	}
	for _, t := range types {
		delete(b.listeners, t)
		delete(b.warned, t)
	}
}

// Emit dispatches synchronously to a snapshot of the current listeners
// Listener add/remove during dispatch affects later emits, never this one
// Returns the number of listeners invoked
func (b *Bus) Emit(t Type, payload any) int {
	b.mu.Lock()
	b.emitted++
	subs := b.listeners[t]
	snapshot := make([]*subscription, 0, len(subs))
	for _, s := range subs {
		if s.once {
			if s.fired {
				continue
			}
			s.fired = true
		}
		snapshot = append(snapshot, s)
	}
	ts := b.now()
	b.mu.Unlock()

	ev := Event{Type: t, Payload: payload, Timestamp: ts}
	for _, s := range snapshot {
		s.fn(ev)
		b.mu.Lock()
		b.delivered++
		b.mu.Unlock()
	}

	// Drop consumed once-listeners after the pass
	b.mu.Lock()
	kept := b.listeners[t][:0]
	for _, s := range b.listeners[t] {
		if s.once && s.fired {
			continue
		}
		kept = append(kept, s)
	}
	b.listeners[t] = kept
	b.mu.Unlock()

	return len(snapshot)
}

// EmitFromHost enqueues an event from any goroutine for dispatch at the next
// inbox drain; the only cross-goroutine entry point into the frame loop
func (b *Bus) EmitFromHost(t Type, payload any) {
	b.inbox.Push(Event{Type: t, Payload: payload, Timestamp: b.now()})
}

// DrainInbox dispatches all pending host events in FIFO order
// Called by the engine at tick start, on the frame goroutine
func (b *Bus) DrainInbox() int {
	pending := b.inbox.Consume()
	for _, ev := range pending {
		b.Emit(ev.Type, ev.Payload)
	}
	return len(pending)
}

// Stats describes bus usage for diagnostics
type Stats struct {
	ListenerCounts map[string]int
	TotalListeners int
	Emitted        uint64
	Delivered      uint64
}

// GetStats snapshots listener counts per event name
func (b *Bus) GetStats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := Stats{
		ListenerCounts: make(map[string]int),
		Emitted:        b.emitted,
		Delivered:      b.delivered,
	}
	for t, subs := range b.listeners {
		if len(subs) == 0 {
			continue
		}
		st.ListenerCounts[Name(t)] = len(subs)
		st.TotalListeners += len(subs)
	}
	return st
}
