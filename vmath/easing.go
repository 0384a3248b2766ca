package vmath

import (
	"math"
)

// EasingFunc maps linear progress [0,1] to shaped progress [0,1]
// Output may overshoot the unit interval for back/elastic curves; callers
// that need hard bounds clamp the shaped value themselves
type EasingFunc func(t float64) float64

// Named easings, resolved through EasingByName at registry load
var easings = map[string]EasingFunc{
	"linear":     EaseLinear,
	"quad-in":    EaseInQuad,
	"quad-out":   EaseOutQuad,
	"quad-leap":  EaseInOutQuad,
	"cubic-out":  EaseOutCubic,
	"sine-leap":  EaseInOutSine,
	"back-out":   EaseOutBack,
	"elastic":    EaseOutElastic,
	"bounce-out": EaseOutBounce,
}

// EasingByName resolves a registry easing name
// Unknown names fall back to linear rather than failing the definition
func EasingByName(name string) EasingFunc {
	if fn, ok := easings[name]; ok {
		return fn
	}
	return EaseLinear
}

func EaseLinear(t float64) float64 { return t }

func EaseInQuad(t float64) float64 { return t * t }

func EaseOutQuad(t float64) float64 { return t * (2 - t) }

func EaseInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func EaseOutCubic(t float64) float64 {
	u := t - 1
	return u*u*u + 1
}

func EaseInOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

func EaseOutBack(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	u := t - 1
	return 1 + c3*u*u*u + c1*u*u
}

func EaseOutElastic(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	const c4 = 2 * math.Pi / 3
	return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1
}

func EaseOutBounce(t float64) float64 {
	const n1 = 7.5625
	const d1 = 2.75
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}
