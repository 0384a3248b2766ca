package emotion

import (
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/emotive/parameter"
	"github.com/lixenwraith/emotive/vmath"
)

// Properties are the visual parameters derived from an emotion
// Read-only snapshots; consumers never mutate a shared record
type Properties struct {
	PrimaryColor       colorful.Color
	SecondaryColor     colorful.Color
	GlowIntensity      float64
	ParticleRate       float64 // particles per second
	ParticleBehavior   string  // behavior name resolved by the particle system
	CoreSize           float64 // 1.0 = base mascot size
	MovementSpeed      float64 // particle velocity multiplier
	PulsationIntensity float64
}

// Blend interpolates two property records at t in [0,1]
// Numeric fields lerp linearly; colors blend in HCL for perceptual
// uniformity; the discrete behavior switches at the midpoint
func Blend(from, to Properties, t float64) Properties {
	t = vmath.Clamp01(t)
	out := Properties{
		PrimaryColor:       from.PrimaryColor.BlendHcl(to.PrimaryColor, t).Clamped(),
		SecondaryColor:     from.SecondaryColor.BlendHcl(to.SecondaryColor, t).Clamped(),
		GlowIntensity:      vmath.Lerp(from.GlowIntensity, to.GlowIntensity, t),
		ParticleRate:       vmath.Lerp(from.ParticleRate, to.ParticleRate, t),
		CoreSize:           vmath.Lerp(from.CoreSize, to.CoreSize, t),
		MovementSpeed:      vmath.Lerp(from.MovementSpeed, to.MovementSpeed, t),
		PulsationIntensity: vmath.Lerp(from.PulsationIntensity, to.PulsationIntensity, t),
	}
	if t < 0.5 {
		out.ParticleBehavior = from.ParticleBehavior
	} else {
		out.ParticleBehavior = to.ParticleBehavior
	}
	return out
}

// Undertone is an orthogonal modifier scaled on top of a base emotion's
// properties; it never defines a state of its own
type Undertone struct {
	GlowScale  float64
	RateScale  float64
	SizeScale  float64
	SpeedScale float64
	PulseScale float64
}

// Apply returns the modified properties, clamped to renderable ranges
func (u Undertone) Apply(p Properties) Properties {
	p.GlowIntensity = vmath.Clamp(p.GlowIntensity*u.GlowScale, 0, parameter.UndertoneGlowMax)
	p.ParticleRate *= u.RateScale
	p.CoreSize = vmath.Clamp(p.CoreSize*u.SizeScale, parameter.UndertoneSizeMin, parameter.UndertoneSizeMax)
	p.MovementSpeed *= u.SpeedScale
	p.PulsationIntensity *= u.PulseScale
	return p
}

// Registry is the immutable emotion/undertone lookup
// Built once; WithEmotion returns a modified copy instead of patching shared
// state, so concurrent readers can never observe a partial record
type Registry struct {
	props      map[string]Properties
	aliases    map[string]string
	undertones map[string]Undertone
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("emotion: bad builtin color " + s)
	}
	return c
}

// NewRegistry builds the default emotion set
// Every declared emotion has a complete record; there are no partial
// definitions to fall back from
func NewRegistry() *Registry {
	r := &Registry{
		props: map[string]Properties{
			"neutral": {
				PrimaryColor: mustHex("#8a9ba8"), SecondaryColor: mustHex("#b8c5ce"),
				GlowIntensity: 0.4, ParticleRate: 2, ParticleBehavior: "ambient",
				CoreSize: 1.0, MovementSpeed: 1.0, PulsationIntensity: 0.2,
			},
			"joy": {
				PrimaryColor: mustHex("#ffd93d"), SecondaryColor: mustHex("#ffb347"),
				GlowIntensity: 0.9, ParticleRate: 8, ParticleBehavior: "rising",
				CoreSize: 1.15, MovementSpeed: 1.4, PulsationIntensity: 0.6,
			},
			"sadness": {
				PrimaryColor: mustHex("#4a6fa5"), SecondaryColor: mustHex("#334d6e"),
				GlowIntensity: 0.25, ParticleRate: 3, ParticleBehavior: "falling",
				CoreSize: 0.85, MovementSpeed: 0.6, PulsationIntensity: 0.1,
			},
			"anger": {
				PrimaryColor: mustHex("#e63946"), SecondaryColor: mustHex("#9d0208"),
				GlowIntensity: 1.0, ParticleRate: 10, ParticleBehavior: "aggressive",
				CoreSize: 1.2, MovementSpeed: 1.8, PulsationIntensity: 0.9,
			},
			"fear": {
				PrimaryColor: mustHex("#7b6d8d"), SecondaryColor: mustHex("#4e4258"),
				GlowIntensity: 0.5, ParticleRate: 6, ParticleBehavior: "scattering",
				CoreSize: 0.8, MovementSpeed: 1.6, PulsationIntensity: 0.7,
			},
			"surprise": {
				PrimaryColor: mustHex("#f4a261"), SecondaryColor: mustHex("#e9c46a"),
				GlowIntensity: 0.85, ParticleRate: 7, ParticleBehavior: "scattering",
				CoreSize: 1.25, MovementSpeed: 1.5, PulsationIntensity: 0.8,
			},
			"disgust": {
				PrimaryColor: mustHex("#6a994e"), SecondaryColor: mustHex("#386641"),
				GlowIntensity: 0.45, ParticleRate: 4, ParticleBehavior: "repelling",
				CoreSize: 0.9, MovementSpeed: 0.9, PulsationIntensity: 0.3,
			},
			"love": {
				PrimaryColor: mustHex("#ff6b9d"), SecondaryColor: mustHex("#ffc2d1"),
				GlowIntensity: 0.8, ParticleRate: 6, ParticleBehavior: "orbiting",
				CoreSize: 1.1, MovementSpeed: 0.9, PulsationIntensity: 0.5,
			},
			"suspicion": {
				PrimaryColor: mustHex("#8d6a9f"), SecondaryColor: mustHex("#5d4a6b"),
				GlowIntensity: 0.35, ParticleRate: 3, ParticleBehavior: "repelling",
				CoreSize: 0.95, MovementSpeed: 0.8, PulsationIntensity: 0.25,
			},
			"excited": {
				PrimaryColor: mustHex("#ff7f11"), SecondaryColor: mustHex("#ffba08"),
				GlowIntensity: 0.95, ParticleRate: 12, ParticleBehavior: "burst",
				CoreSize: 1.2, MovementSpeed: 1.7, PulsationIntensity: 0.85,
			},
			"resting": {
				PrimaryColor: mustHex("#5c677d"), SecondaryColor: mustHex("#7d8597"),
				GlowIntensity: 0.2, ParticleRate: 1, ParticleBehavior: "ambient",
				CoreSize: 0.9, MovementSpeed: 0.4, PulsationIntensity: 0.15,
			},
			"euphoria": {
				PrimaryColor: mustHex("#c77dff"), SecondaryColor: mustHex("#e0aaff"),
				GlowIntensity: 1.0, ParticleRate: 14, ParticleBehavior: "rising",
				CoreSize: 1.3, MovementSpeed: 1.6, PulsationIntensity: 1.0,
			},
			"focused": {
				PrimaryColor: mustHex("#00b4d8"), SecondaryColor: mustHex("#0077b6"),
				GlowIntensity: 0.6, ParticleRate: 4, ParticleBehavior: "orbiting",
				CoreSize: 1.0, MovementSpeed: 1.1, PulsationIntensity: 0.3,
			},
			"glitch": {
				PrimaryColor: mustHex("#39ff14"), SecondaryColor: mustHex("#0aff99"),
				GlowIntensity: 0.75, ParticleRate: 9, ParticleBehavior: "scattering",
				CoreSize: 1.05, MovementSpeed: 2.0, PulsationIntensity: 0.95,
			},
			"calm": {
				PrimaryColor: mustHex("#83c5be"), SecondaryColor: mustHex("#edf6f9"),
				GlowIntensity: 0.5, ParticleRate: 2, ParticleBehavior: "ambient",
				CoreSize: 1.0, MovementSpeed: 0.5, PulsationIntensity: 0.2,
			},
		},
		aliases: map[string]string{
			"happy": "joy",
			"sad":   "sadness",
			"angry": "anger",
		},
		undertones: map[string]Undertone{
			"intense":   {GlowScale: 1.5, RateScale: 1.4, SizeScale: 1.1, SpeedScale: 1.3, PulseScale: 1.5},
			"subdued":   {GlowScale: 0.6, RateScale: 0.6, SizeScale: 0.95, SpeedScale: 0.7, PulseScale: 0.5},
			"nervous":   {GlowScale: 1.1, RateScale: 1.2, SizeScale: 0.9, SpeedScale: 1.5, PulseScale: 1.8},
			"confident": {GlowScale: 1.2, RateScale: 1.0, SizeScale: 1.15, SpeedScale: 1.0, PulseScale: 0.8},
			"tired":     {GlowScale: 0.5, RateScale: 0.5, SizeScale: 0.9, SpeedScale: 0.5, PulseScale: 0.6},
		},
	}
	return r
}

// resolve maps aliases to canonical names
func (r *Registry) resolve(name string) string {
	if canonical, ok := r.aliases[name]; ok {
		return canonical
	}
	return name
}

// Lookup returns the properties for an emotion name or alias
func (r *Registry) Lookup(name string) (Properties, bool) {
	p, ok := r.props[r.resolve(name)]
	return p, ok
}

// LookupUndertone returns the modifier for an undertone name
// The empty name is the identity modifier
func (r *Registry) LookupUndertone(name string) (Undertone, bool) {
	if name == "" {
		return Undertone{GlowScale: 1, RateScale: 1, SizeScale: 1, SpeedScale: 1, PulseScale: 1}, true
	}
	u, ok := r.undertones[name]
	return u, ok
}

// Emotions returns all canonical emotion names, sorted
func (r *Registry) Emotions() []string {
	names := make([]string, 0, len(r.props))
	for name := range r.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Undertones returns all undertone names, sorted
func (r *Registry) Undertones() []string {
	names := make([]string, 0, len(r.undertones))
	for name := range r.undertones {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithEmotion returns a copy of the registry with name set to p
// The receiver is unchanged; holders of the old registry keep a consistent
// view (aliasing protection even though the engine is frame-serial)
func (r *Registry) WithEmotion(name string, p Properties) *Registry {
	out := &Registry{
		props:      make(map[string]Properties, len(r.props)+1),
		aliases:    r.aliases,
		undertones: r.undertones,
	}
	for k, v := range r.props {
		out.props[k] = v
	}
	out.props[name] = p
	return out
}
