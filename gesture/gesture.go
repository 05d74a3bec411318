// Package gesture defines the six motion-envelope archetypes and the
// interpreter that spawns, ages, and blends bounded-duration instances of
// them from per-frame audio features.
package gesture

import (
	"math"

	"github.com/soundweave/choreo/audio"
	"github.com/soundweave/choreo/geom"
)

// Type enumerates the gesture archetypes
type Type int

const (
	Swell Type = iota
	Attack
	Release
	Sustain
	Accent
	Breath

	NumTypes = 6
)

func (t Type) String() string {
	switch t {
	case Swell:
		return "swell"
	case Attack:
		return "attack"
	case Release:
		return "release"
	case Sustain:
		return "sustain"
	case Accent:
		return "accent"
	case Breath:
		return "breath"
	default:
		return "unknown"
	}
}

// TypeFromString resolves a serialized gesture name; returns false for
// unrecognized names
func TypeFromString(s string) (Type, bool) {
	for t := Swell; t < NumTypes; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return Swell, false
}

// Params positions a gesture instance in space and time
type Params struct {
	Epicenter geom.Vec3 `json:"epicenter"`
	Radius    float64   `json:"radius"`
	Direction geom.Vec3 `json:"direction"`
	Tempo     float64   `json:"tempo"`
}

// DefaultParams returns a centered, unit-radius parameter set
func DefaultParams() Params {
	return Params{
		Radius:    1.0,
		Direction: geom.Vec3{Y: 1.0},
		Tempo:     120.0,
	}
}

// MaterialModifiers adjust the simulated medium around affected entities
type MaterialModifiers struct {
	Viscosity float64 `json:"viscosity"`
	Stiffness float64 `json:"stiffness"`
	Pressure  float64 `json:"pressure"`
}

// VisualModifiers are numeric adjustments applied by the render side
type VisualModifiers struct {
	HueShift   float64 `json:"hue_shift"`
	Saturation float64 `json:"saturation"`
	Brightness float64 `json:"brightness"`
	Scale      float64 `json:"scale"`
	Glow       float64 `json:"glow"`
	Opacity    float64 `json:"opacity"`
}

// Output is the full evaluated effect of a gesture envelope at one point
type Output struct {
	Force         geom.Vec3
	VelocityScale float64
	Material      MaterialModifiers
	Visual        VisualModifiers
}

// Definition holds the static per-type tuning: default duration bounds,
// base priority, and intensity shaping
type Definition struct {
	Type         Type
	Name         string
	BaseDuration float64
	BasePriority float64
}

var definitions = [NumTypes]Definition{
	Swell:   {Type: Swell, Name: "swell", BaseDuration: 2.5, BasePriority: 0.6},
	Attack:  {Type: Attack, Name: "attack", BaseDuration: 0.4, BasePriority: 0.9},
	Release: {Type: Release, Name: "release", BaseDuration: 2.0, BasePriority: 0.5},
	Sustain: {Type: Sustain, Name: "sustain", BaseDuration: 3.0, BasePriority: 0.4},
	Accent:  {Type: Accent, Name: "accent", BaseDuration: 0.3, BasePriority: 0.8},
	Breath:  {Type: Breath, Name: "breath", BaseDuration: 3.5, BasePriority: 0.3},
}

// DefinitionFor returns the static definition for a gesture type
func DefinitionFor(t Type) Definition {
	if t < 0 || t >= NumTypes {
		return definitions[Swell]
	}
	return definitions[t]
}

// Evaluate computes a gesture envelope at the given entity position and
// velocity. phase is the normalized instance age in [0,1]; intensity the
// trigger strength in [0,1]. Pure function of its inputs.
func Evaluate(t Type, pos, vel geom.Vec3, p Params, phase, intensity float64, frame *audio.Frame) Output {
	switch t {
	case Swell:
		return swellEnvelope(pos, p, phase, intensity)
	case Attack:
		return attackEnvelope(pos, p, phase, intensity, frame)
	case Release:
		return releaseEnvelope(pos, vel, p, phase, intensity)
	case Sustain:
		return sustainEnvelope(p, phase, intensity, frame)
	case Accent:
		return accentEnvelope(pos, p, phase, intensity)
	case Breath:
		return breathEnvelope(pos, p, phase, intensity)
	default:
		return Output{VelocityScale: 1.0, Visual: VisualModifiers{Opacity: 1.0, Scale: 1.0}}
	}
}

// falloff attenuates effect with distance from the epicenter
func falloff(pos geom.Vec3, p Params) float64 {
	if p.Radius <= 0 {
		return 1.0
	}
	d := pos.Distance(p.Epicenter) / p.Radius
	if d >= 1.0 {
		return 0.0
	}
	return 1.0 - d*d
}

// swellEnvelope pushes outward from the epicenter with a slow sinusoidal
// rise and fall, thickening the medium as it grows
func swellEnvelope(pos geom.Vec3, p Params, phase, intensity float64) Output {
	env := math.Sin(math.Pi * phase)
	strength := env * intensity * falloff(pos, p)

	outward := pos.Sub(p.Epicenter).Normalize()
	return Output{
		Force:         outward.Scale(strength * 2.0),
		VelocityScale: 1.0 + 0.3*env*intensity,
		Material: MaterialModifiers{
			Viscosity: 0.4 * env * intensity,
			Pressure:  0.5 * env * intensity,
		},
		Visual: VisualModifiers{
			Brightness: 0.3 * env * intensity,
			Scale:      1.0 + 0.4*env*intensity,
			Glow:       0.2 * env * intensity,
			Opacity:    1.0,
			Saturation: 0.1 * env,
		},
	}
}

// attackEnvelope is a sharp directional impulse that decays exponentially
func attackEnvelope(pos geom.Vec3, p Params, phase, intensity float64, frame *audio.Frame) Output {
	env := math.Exp(-5.0 * phase)
	strength := env * intensity * falloff(pos, p)

	punch := frame.OnsetEnergy
	return Output{
		Force:         p.Direction.Normalize().Scale(strength * (4.0 + 2.0*punch)),
		VelocityScale: 1.0 + 0.8*env*intensity,
		Material: MaterialModifiers{
			Stiffness: 0.7 * env * intensity,
			Pressure:  0.3 * env * intensity,
		},
		Visual: VisualModifiers{
			Brightness: 0.5 * env * intensity,
			Glow:       0.6 * env * intensity,
			Scale:      1.0 + 0.2*env*intensity,
			Opacity:    1.0,
		},
	}
}

// releaseEnvelope settles entities back toward the epicenter, damping
// velocity and letting pressure drain
func releaseEnvelope(pos, vel geom.Vec3, p Params, phase, intensity float64) Output {
	env := 1.0 - phase*phase
	strength := env * intensity * falloff(pos, p)

	inward := p.Epicenter.Sub(pos).Normalize()
	damping := vel.Scale(-0.5 * strength)
	return Output{
		Force:         inward.Scale(strength * 1.2).Add(damping),
		VelocityScale: 1.0 - 0.4*env*intensity,
		Material: MaterialModifiers{
			Viscosity: 0.6 * env * intensity,
			Pressure:  -0.4 * env * intensity,
		},
		Visual: VisualModifiers{
			Brightness: -0.2 * env * intensity,
			Opacity:    1.0 - 0.15*env*intensity,
			Scale:      1.0 - 0.1*env*intensity,
		},
	}
}

// sustainEnvelope applies a steady drift along the gesture direction for
// held, low-flux passages
func sustainEnvelope(p Params, phase, intensity float64, frame *audio.Frame) Output {
	// Plateau with soft edges
	env := math.Min(phase*4.0, 1.0) * math.Min((1.0-phase)*4.0, 1.0)
	strength := env * intensity

	return Output{
		Force:         p.Direction.Normalize().Scale(strength * 0.8 * (0.5 + frame.SmoothOverall)),
		VelocityScale: 1.0,
		Material: MaterialModifiers{
			Viscosity: 0.3 * strength,
			Stiffness: 0.2 * strength,
		},
		Visual: VisualModifiers{
			Saturation: 0.2 * strength,
			Opacity:    1.0,
			Scale:      1.0,
		},
	}
}

// accentEnvelope is a short radial pop timed to the predicted downbeat
func accentEnvelope(pos geom.Vec3, p Params, phase, intensity float64) Output {
	env := math.Sin(math.Pi * phase)
	env = env * env
	strength := env * intensity * falloff(pos, p)

	outward := pos.Sub(p.Epicenter).Normalize()
	return Output{
		Force:         outward.Scale(strength * 3.0),
		VelocityScale: 1.0 + 0.5*env*intensity,
		Material: MaterialModifiers{
			Stiffness: 0.4 * env * intensity,
		},
		Visual: VisualModifiers{
			HueShift:   20.0 * env * intensity,
			Scale:      1.0 + 0.3*env*intensity,
			Glow:       0.4 * env * intensity,
			Opacity:    1.0,
		},
	}
}

// breathEnvelope cycles entities in and out at a tempo-derived rate
func breathEnvelope(pos geom.Vec3, p Params, phase, intensity float64) Output {
	tempo := p.Tempo
	if tempo <= 0 {
		tempo = 120.0
	}
	// Two full in/out cycles per instance, rate shaped by tempo
	cycle := math.Sin(2.0 * math.Pi * phase * 2.0 * (tempo / 120.0))
	strength := cycle * intensity * falloff(pos, p)

	outward := pos.Sub(p.Epicenter).Normalize()
	return Output{
		Force:         outward.Scale(strength * 0.6),
		VelocityScale: 1.0 + 0.1*cycle*intensity,
		Material: MaterialModifiers{
			Pressure: 0.2 * cycle * intensity,
		},
		Visual: VisualModifiers{
			Scale:   1.0 + 0.15*cycle*intensity,
			Opacity: 1.0,
		},
	}
}
