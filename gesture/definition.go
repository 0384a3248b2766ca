package gesture

import (
	"sort"
	"time"

	"github.com/lixenwraith/emotive/parameter"
	"github.com/lixenwraith/emotive/vmath"
)

// Definition is an immutable procedural gesture description
// Compatibility scores are directional; symmetric pairs are convention, not
// an enforced rule
type Definition struct {
	Name          string
	Duration      time.Duration
	MoveX, MoveY  float64 // peak offset in cells
	Scale         float64 // peak scale multiplier (1.0 = none)
	Rotation      float64 // peak rotation in radians
	Easing        string  // resolved through vmath.EasingByName
	ParticleBurst int     // particles spawned at the fire point
	GlowIntensity float64
	FirePoint     float64            // progress at which the burst fires
	Compatibility map[string]float64 // next-gesture name -> score 0..1

	easingFn vmath.EasingFunc
}

// Registry is the immutable gesture lookup, loaded once at startup
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry builds the default gesture set
func NewRegistry() *Registry {
	defs := []*Definition{
		{
			Name: "bounce", Duration: 600 * time.Millisecond,
			MoveY: -2.5, Scale: 1.1, Easing: "bounce-out",
			ParticleBurst: 6, GlowIntensity: 0.3,
			Compatibility: map[string]float64{"spin": 0.8, "pulse": 0.7, "shake": 0.4, "nod": 0.6},
		},
		{
			Name: "spin", Duration: 800 * time.Millisecond,
			Rotation: 6.2831853, Scale: 1.05, Easing: "sine-leap",
			ParticleBurst: 4, GlowIntensity: 0.4, FirePoint: 0.5,
			Compatibility: map[string]float64{"pulse": 0.6, "bounce": 0.8, "wave": 0.5},
		},
		{
			Name: "pulse", Duration: 400 * time.Millisecond,
			Scale: 1.3, Easing: "quad-out",
			ParticleBurst: 8, GlowIntensity: 0.6,
			Compatibility: map[string]float64{"pulse": 0.9, "bounce": 0.7, "spin": 0.6, "breathe": 0.8},
		},
		{
			Name: "shake", Duration: 500 * time.Millisecond,
			MoveX: 1.5, Easing: "elastic",
			GlowIntensity: 0.2,
			Compatibility: map[string]float64{"bounce": 0.4, "tilt": 0.5, "nod": 0.3},
		},
		{
			Name: "nod", Duration: 450 * time.Millisecond,
			MoveY: 1.2, Easing: "quad-leap",
			Compatibility: map[string]float64{"bounce": 0.6, "tilt": 0.7, "nod": 0.9},
		},
		{
			Name: "tilt", Duration: 450 * time.Millisecond,
			Rotation: 0.35, Easing: "sine-leap",
			Compatibility: map[string]float64{"nod": 0.7, "shake": 0.5, "wave": 0.6},
		},
		{
			Name: "wave", Duration: 900 * time.Millisecond,
			MoveX: 2.0, Rotation: 0.2, Easing: "sine-leap",
			ParticleBurst: 3, GlowIntensity: 0.25, FirePoint: 0.25,
			Compatibility: map[string]float64{"tilt": 0.6, "spin": 0.5, "bounce": 0.5},
		},
		{
			Name: "breathe", Duration: 1200 * time.Millisecond,
			Scale: 1.15, Easing: "sine-leap",
			GlowIntensity: 0.15,
			Compatibility: map[string]float64{"pulse": 0.8, "breathe": 1.0, "nod": 0.5},
		},
	}

	r := &Registry{defs: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if d.Scale == 0 {
			d.Scale = 1.0
		}
		if d.FirePoint == 0 {
			d.FirePoint = parameter.GestureDefaultFirePoint
		}
		d.easingFn = vmath.EasingByName(d.Easing)
		r.defs[d.Name] = d
	}
	return r
}

// Lookup returns the definition for a gesture name
func (r *Registry) Lookup(name string) (*Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names returns all gesture names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithGesture returns a copy of the registry with name set to def
// The receiver is unchanged
func (r *Registry) WithGesture(def *Definition) *Registry {
	out := &Registry{defs: make(map[string]*Definition, len(r.defs)+1)}
	for k, v := range r.defs {
		out.defs[k] = v
	}
	d := *def
	if d.Scale == 0 {
		d.Scale = 1.0
	}
	d.easingFn = vmath.EasingByName(d.Easing)
	out.defs[d.Name] = &d
	return out
}
