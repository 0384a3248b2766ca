package particle

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/emotive/emotion"
	"github.com/lixenwraith/emotive/parameter"
	"github.com/lixenwraith/emotive/status"
	"github.com/lixenwraith/emotive/vmath"
)

// Particle is one pooled slot
// Deactivated particles are flagged and returned to the free stack, never
// deallocated
type Particle struct {
	X, Y     float64
	VX, VY   float64
	Life     float64 // seconds remaining
	MaxLife  float64
	Size     float64
	Behavior Behavior
	active   bool
}

// Active reports whether the slot is in use
func (p *Particle) Active() bool {
	return p.active
}

// Stats describes pool usage
type Stats struct {
	Active    int
	Capacity  int // current spawn cap (shrinks under degradation)
	ArenaSize int // fixed allocation
	Spawned   int64
	Truncated int64
	Reclaimed int64
}

// System is the bounded particle simulation: a fixed arena of slots plus an
// explicit free-index stack
// Invariant: active count never exceeds the spawn cap, enforced at spawn
type System struct {
	mu    sync.Mutex
	slots []Particle
	free  []int
	cap   int
	rng   *vmath.FastRand

	spawnAcc float64

	statActive    *atomic.Int64
	statSpawned   *atomic.Int64
	statTruncated *atomic.Int64
	statReclaimed *atomic.Int64
}

// NewSystem pre-allocates the arena; maxParticles <= 0 selects the default
func NewSystem(maxParticles int, seed uint64, st *status.Registry) *System {
	if maxParticles <= 0 {
		maxParticles = parameter.DefaultMaxParticles
	}

	s := &System{
		slots:         make([]Particle, maxParticles),
		free:          make([]int, maxParticles),
		cap:           maxParticles,
		rng:           vmath.NewFastRand(seed),
		statActive:    st.Ints.Get("particle.active"),
		statSpawned:   st.Ints.Get("particle.spawned"),
		statTruncated: st.Ints.Get("particle.truncated"),
		statReclaimed: st.Ints.Get("particle.reclaimed"),
	}
	for i := range s.free {
		s.free[i] = maxParticles - 1 - i // pop order matches slot order
	}
	return s
}

// Spawn activates up to count particles with the given behavior
// Truncates silently at the cap and returns the number actually spawned
func (s *System) Spawn(count int, behavior Behavior, ctx emotion.Properties) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawnLocked(count, behavior, ctx)
}

func (s *System) spawnLocked(count int, behavior Behavior, ctx emotion.Properties) int {
	spawned := 0
	for spawned < count {
		active := len(s.slots) - len(s.free)
		if active >= s.cap || len(s.free) == 0 {
			s.statTruncated.Add(int64(count - spawned))
			break
		}

		idx := s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]

		p := &s.slots[idx]
		life := s.rng.Range(parameter.ParticleMinLife, parameter.ParticleMaxLife)
		if behavior == Burst {
			life = parameter.ParticleBurstLife
		}
		*p = Particle{
			Life:     life,
			MaxLife:  life,
			Size:     s.rng.Range(0.5, 1.5) * ctx.CoreSize,
			Behavior: behavior,
			active:   true,
		}
		initVelocity(p, ctx.MovementSpeed, s.rng)
		spawned++
	}

	s.statSpawned.Add(int64(spawned))
	s.statActive.Store(int64(len(s.slots) - len(s.free)))
	return spawned
}

// Update advances all active particles and feeds the emotion-driven spawn
// rate; life-expired particles return to the free stack in the same pass
func (s *System) Update(deltaTime time.Duration, ctx emotion.Properties) {
	dt := deltaTime.Seconds()
	if dt <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Continuous emotion-driven spawning, fractional rates accumulate
	s.spawnAcc += ctx.ParticleRate * dt
	if n := int(s.spawnAcc); n > 0 {
		s.spawnAcc -= float64(n)
		s.spawnLocked(n, BehaviorByName(ctx.ParticleBehavior), ctx)
	}

	reclaimed := int64(0)
	for i := range s.slots {
		p := &s.slots[i]
		if !p.active {
			continue
		}

		p.Life -= dt
		if p.Life <= 0 {
			p.active = false
			s.free = append(s.free, i)
			reclaimed++
			continue
		}

		integrate(p, dt, ctx.MovementSpeed, s.rng)
	}

	if reclaimed > 0 {
		s.statReclaimed.Add(reclaimed)
	}
	s.statActive.Store(int64(len(s.slots) - len(s.free)))
}

// SetMaxParticles adjusts the spawn cap, clamped to the arena size
// Existing particles above a lowered cap live out their lifetime; only new
// spawns are refused
func (s *System) SetMaxParticles(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n > len(s.slots) {
		n = len(s.slots)
	}
	s.cap = n
}

// ActiveCount returns the number of live particles
func (s *System) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots) - len(s.free)
}

// GetStats snapshots pool usage
func (s *System) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Active:    len(s.slots) - len(s.free),
		Capacity:  s.cap,
		ArenaSize: len(s.slots),
		Spawned:   s.statSpawned.Load(),
		Truncated: s.statTruncated.Load(),
		Reclaimed: s.statReclaimed.Load(),
	}
}

// Snapshot appends copies of all active particles to dst for the renderer
func (s *System) Snapshot(dst []Particle) []Particle {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.slots {
		if s.slots[i].active {
			dst = append(dst, s.slots[i])
		}
	}
	return dst
}

// Clear deactivates everything and rebuilds the free stack
func (s *System) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.free = s.free[:0]
	for i := range s.slots {
		s.slots[i].active = false
		s.free = append(s.free, len(s.slots)-1-i)
	}
	s.spawnAcc = 0
	s.statActive.Store(0)
}
