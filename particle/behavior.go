package particle

import (
	"math"

	"github.com/lixenwraith/emotive/parameter"
	"github.com/lixenwraith/emotive/vmath"
)

// Behavior selects the per-particle motion kernel
type Behavior int

const (
	Ambient Behavior = iota
	Rising
	Falling
	Aggressive
	Scattering
	Burst
	Repelling
	Orbiting
)

var behaviorNames = map[string]Behavior{
	"ambient":    Ambient,
	"rising":     Rising,
	"falling":    Falling,
	"aggressive": Aggressive,
	"scattering": Scattering,
	"burst":      Burst,
	"repelling":  Repelling,
	"orbiting":   Orbiting,
}

var behaviorStrings = [...]string{
	Ambient:    "ambient",
	Rising:     "rising",
	Falling:    "falling",
	Aggressive: "aggressive",
	Scattering: "scattering",
	Burst:      "burst",
	Repelling:  "repelling",
	Orbiting:   "orbiting",
}

// BehaviorByName resolves an emotion's behavior name; unknown names fall
// back to ambient rather than failing the frame
func BehaviorByName(name string) Behavior {
	if b, ok := behaviorNames[name]; ok {
		return b
	}
	return Ambient
}

func (b Behavior) String() string {
	if int(b) < len(behaviorStrings) {
		return behaviorStrings[b]
	}
	return "unknown"
}

// integrate advances one particle by dt seconds
// All positions are relative to the mascot anchor at the origin
// speed is the emotion's MovementSpeed multiplier
func integrate(p *Particle, dt, speed float64, rng *vmath.FastRand) {
	switch p.Behavior {
	case Ambient:
		// Slow drift with constant jitter
		p.VX += rng.Range(-1, 1) * parameter.ParticleJitter * dt * speed
		p.VY += rng.Range(-1, 1) * parameter.ParticleJitter * dt * speed

	case Rising:
		p.VY = -parameter.ParticleRiseSpeed * speed
		p.VX += rng.Range(-1, 1) * parameter.ParticleJitter * dt

	case Falling:
		p.VY = parameter.ParticleFallSpeed * speed
		p.VX *= 1 - vmath.Clamp01(dt) // horizontal drift dies out

	case Aggressive:
		// Accelerate along current heading
		p.VX += p.VX * parameter.ParticleAggressiveAccel * dt / max(speedOf(p), 0.001)
		p.VY += p.VY * parameter.ParticleAggressiveAccel * dt / max(speedOf(p), 0.001)

	case Scattering, Burst:
		// Ballistic after the initial impulse; nothing steers them

	case Repelling:
		// Push directly away from the anchor
		d := max(speedOfPos(p), 0.001)
		p.VX += p.X / d * parameter.ParticleRepelAccel * dt * speed
		p.VY += p.Y / d * parameter.ParticleRepelAccel * dt * speed

	case Orbiting:
		// Attraction toward anchor plus damping circularizes the orbit
		d := max(speedOfPos(p), 0.001)
		ax := -p.X / d * parameter.ParticleOrbitAttraction * speed
		ay := -p.Y / d * parameter.ParticleOrbitAttraction * speed
		p.VX += ax * dt
		p.VY += ay * dt
		p.VX -= p.VX * parameter.ParticleOrbitDamping * dt
		p.VY -= p.VY * parameter.ParticleOrbitDamping * dt
	}

	// Quadratic drag prevents runaway speeds regardless of kernel
	v := speedOf(p)
	drag := parameter.ParticleDrag * v * v * dt
	if v > 0.001 {
		p.VX -= p.VX / v * drag
		p.VY -= p.VY / v * drag
	}

	p.X += p.VX * dt
	p.Y += p.VY * dt
}

func speedOf(p *Particle) float64 {
	return hypot(p.VX, p.VY)
}

func speedOfPos(p *Particle) float64 {
	return hypot(p.X, p.Y)
}

func hypot(x, y float64) float64 {
	// Plain magnitude; particle coordinates never approach overflow range
	return math.Sqrt(x*x + y*y)
}

// initVelocity assigns the spawn impulse for a behavior
func initVelocity(p *Particle, speed float64, rng *vmath.FastRand) {
	angle := rng.Float64()
	dirX := vmath.CosTurns(angle)
	dirY := vmath.SinTurns(angle)

	switch p.Behavior {
	case Scattering:
		p.VX = dirX * parameter.ParticleScatterImpulse * speed
		p.VY = dirY * parameter.ParticleScatterImpulse * speed
	case Burst:
		p.VX = dirX * parameter.ParticleBurstSpeed * speed
		p.VY = dirY * parameter.ParticleBurstSpeed * speed
	case Orbiting:
		// Tangential start so orbits form immediately
		p.VX = -dirY * parameter.ParticleBaseSpeed * speed
		p.VY = dirX * parameter.ParticleBaseSpeed * speed
	default:
		p.VX = dirX * parameter.ParticleBaseSpeed * speed * rng.Float64()
		p.VY = dirY * parameter.ParticleBaseSpeed * speed * rng.Float64()
	}
}
