package vmath

// Float helpers for animation math
// The engine runs entirely on float64: transforms, levels, and progress are
// all unit-scaled values, so fixed-point is not needed here

// Clamp limits x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Clamp01 limits x to the unit interval
func Clamp01(x float64) float64 {
	return Clamp(x, 0, 1)
}

// Lerp interpolates linearly from a to b by t in [0,1]
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Abs returns the absolute value
func Abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// --- Randomness ---

// FastRand is a xorshift64 generator for per-frame jitter
// Not cryptographic; deterministic for a given seed, which tests rely on
type FastRand struct {
	state uint64
}

func NewFastRand(seed uint64) *FastRand {
	if seed == 0 {
		seed = 1
	}
	return &FastRand{state: seed}
}

func (r *FastRand) Next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

func (r *FastRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint64(n))
}

// Float64 returns a value in [0, 1)
func (r *FastRand) Float64() float64 {
	return float64(r.Next()>>11) / float64(1<<53)
}

// Range returns a value in [lo, hi)
func (r *FastRand) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// Sign returns -1.0 or 1.0 with equal probability
func (r *FastRand) Sign() float64 {
	if r.Next()&1 == 0 {
		return -1.0
	}
	return 1.0
}
