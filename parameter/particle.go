package parameter

// Pool
const (
	// DefaultMaxParticles is the arena capacity; the pool never allocates
	// past it and spawn silently truncates at the cap
	DefaultMaxParticles = 128
)

// Motion
const (
	// ParticleBaseSpeed is initial cell-per-second speed before the
	// emotion's MovementSpeed multiplier
	ParticleBaseSpeed = 6.0

	// ParticleRiseSpeed / ParticleFallSpeed are vertical drift rates for the
	// rising and falling behaviors
	ParticleRiseSpeed = 9.0
	ParticleFallSpeed = 7.0

	// ParticleAggressiveAccel is acceleration applied each second by the
	// aggressive behavior
	ParticleAggressiveAccel = 14.0

	// ParticleScatterImpulse is the one-shot outward speed of scattering
	ParticleScatterImpulse = 18.0

	// ParticleBurstSpeed is the radial speed of burst particles
	ParticleBurstSpeed = 22.0

	// ParticleRepelAccel pushes particles away from origin (1/sec^2)
	ParticleRepelAccel = 20.0

	// ParticleOrbitAttraction is orbital attraction strength toward the
	// anchor (cells/sec^2)
	ParticleOrbitAttraction = 40.0

	// ParticleOrbitDamping circularizes orbits (1/sec)
	ParticleOrbitDamping = 1.5

	// ParticleJitter is random velocity added per second to ambient motion
	ParticleJitter = 1.5

	// ParticleDrag is the quadratic drag coefficient preventing overshoot
	ParticleDrag = 0.015
)

// Lifetime
const (
	// ParticleMinLife / ParticleMaxLife bound randomized lifetimes (seconds)
	ParticleMinLife = 1.0
	ParticleMaxLife = 3.5

	// ParticleBurstLife is the fixed lifetime of burst particles (seconds)
	ParticleBurstLife = 0.8
)
