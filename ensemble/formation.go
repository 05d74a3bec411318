package ensemble

import (
	"math"

	"github.com/soundweave/choreo/dsp"
	"github.com/soundweave/choreo/geom"
)

// FormationType enumerates the global spatial arrangements
type FormationType int

const (
	FormationScatter FormationType = iota
	FormationCluster
	FormationOrbit
	FormationFlow
	FormationLayers
	FormationRadial
	FormationGrid
	FormationSpiral

	NumFormations = 8
)

func (f FormationType) String() string {
	switch f {
	case FormationScatter:
		return "scatter"
	case FormationCluster:
		return "cluster"
	case FormationOrbit:
		return "orbit"
	case FormationFlow:
		return "flow"
	case FormationLayers:
		return "layers"
	case FormationRadial:
		return "radial"
	case FormationGrid:
		return "grid"
	case FormationSpiral:
		return "spiral"
	default:
		return "unknown"
	}
}

// FormationTypeFromString resolves a serialized formation name
func FormationTypeFromString(s string) (FormationType, bool) {
	for f := FormationScatter; f < NumFormations; f++ {
		if f.String() == s {
			return f, true
		}
	}
	return FormationScatter, false
}

// FormationState is the live global arrangement. During a transition a
// second target state exists and all fields blend toward it.
type FormationState struct {
	Type      FormationType `json:"type"`
	Center    geom.Vec3     `json:"center"`
	Radius    float64       `json:"radius"`
	Direction geom.Vec3     `json:"direction"`
	Rotation  float64       `json:"rotation"` // accumulator, radians
	Cohesion  float64       `json:"cohesion"` // 0-1
	Energy    float64       `json:"energy"`   // 0-1
}

// BlendFormations interpolates every field with an eased cubic blend.
// The type flips from source to target at the transition midpoint.
func BlendFormations(from, to FormationState, t float64) FormationState {
	e := dsp.EaseInOutCubic(t)

	blended := FormationState{
		Center:    from.Center.Lerp(to.Center, e),
		Radius:    dsp.Lerp(from.Radius, to.Radius, e),
		Direction: from.Direction.Lerp(to.Direction, e).Normalize(),
		Rotation:  dsp.Lerp(from.Rotation, to.Rotation, e),
		Cohesion:  dsp.Lerp(from.Cohesion, to.Cohesion, e),
		Energy:    dsp.Lerp(from.Energy, to.Energy, e),
	}
	if t < 0.5 {
		blended.Type = from.Type
	} else {
		blended.Type = to.Type
	}
	return blended
}

// Target is the per-entity position/velocity bias a formation exerts
type Target struct {
	Position geom.Vec3 `json:"position"`
	Velocity geom.Vec3 `json:"velocity"`
	Weight   float64   `json:"weight"` // bias strength, 0-1
}

// golden angle spreads spiral/scatter entities without clumping
const goldenAngle = 2.39996322972865332

// FormationTarget maps an entity to its target bias under the given
// formation state. Geometry per type:
//
//	scatter - jittered shell away from center
//	cluster - pull straight toward center
//	orbit   - tangential travel at the formation radius
//	flow    - uniform drift along the formation direction
//	layers  - three height bands by entity index
//	radial  - push outward to the shell
//	grid    - snap to a cubic lattice
//	spiral  - golden-angle spiral winding with the rotation accumulator
func FormationTarget(f FormationState, idx int, pos geom.Vec3) Target {
	switch f.Type {
	case FormationCluster:
		return Target{
			Position: f.Center,
			Velocity: f.Center.Sub(pos).Normalize().Scale(f.Cohesion),
			Weight:   f.Cohesion,
		}

	case FormationOrbit:
		offset := pos.Sub(f.Center)
		flat := geom.Vec3{X: offset.X, Z: offset.Z}
		radial := flat.Normalize()
		tangent := geom.Vec3{X: -radial.Z, Z: radial.X}
		ringPos := f.Center.Add(radial.Scale(f.Radius))
		ringPos.Y = f.Center.Y + offset.Y*0.5
		return Target{
			Position: ringPos,
			Velocity: tangent.Scale(0.5 + f.Energy),
			Weight:   f.Cohesion,
		}

	case FormationFlow:
		return Target{
			Position: pos.Add(f.Direction.Scale(f.Radius * 0.5)),
			Velocity: f.Direction.Scale(0.5 + f.Energy),
			Weight:   0.5 + 0.5*f.Cohesion,
		}

	case FormationLayers:
		layer := idx % 3
		layerY := f.Center.Y + (float64(layer)-1.0)*f.Radius*0.5
		return Target{
			Position: geom.Vec3{X: pos.X, Y: layerY, Z: pos.Z},
			Velocity: geom.Vec3{Y: (layerY - pos.Y) * 0.5},
			Weight:   f.Cohesion,
		}

	case FormationRadial:
		outward := pos.Sub(f.Center).Normalize()
		if outward.Length() < 1e-9 {
			angle := float64(idx) * goldenAngle
			outward = geom.Vec3{X: math.Cos(angle), Z: math.Sin(angle)}
		}
		return Target{
			Position: f.Center.Add(outward.Scale(f.Radius)),
			Velocity: outward.Scale(0.5 + f.Energy),
			Weight:   f.Cohesion,
		}

	case FormationGrid:
		spacing := math.Max(f.Radius/4.0, 1e-3)
		snap := func(v float64) float64 { return math.Round(v/spacing) * spacing }
		gridPos := geom.Vec3{X: snap(pos.X), Y: snap(pos.Y), Z: snap(pos.Z)}
		return Target{
			Position: gridPos,
			Velocity: gridPos.Sub(pos).Scale(0.8),
			Weight:   0.5 + 0.5*f.Cohesion,
		}

	case FormationSpiral:
		angle := float64(idx)*goldenAngle + f.Rotation
		r := f.Radius * math.Sqrt(float64(idx%64)/64.0)
		spiralPos := f.Center.Add(geom.Vec3{
			X: math.Cos(angle) * r,
			Y: (float64(idx%8)/8.0 - 0.5) * f.Radius * 0.5,
			Z: math.Sin(angle) * r,
		})
		return Target{
			Position: spiralPos,
			Velocity: spiralPos.Sub(pos).Normalize().Scale(f.Cohesion),
			Weight:   f.Cohesion,
		}

	default: // FormationScatter
		angle := float64(idx) * goldenAngle
		elevation := (math.Mod(float64(idx)*0.618, 1.0) - 0.5) * math.Pi * 0.5
		dir := geom.Vec3{
			X: math.Cos(angle) * math.Cos(elevation),
			Y: math.Sin(elevation),
			Z: math.Sin(angle) * math.Cos(elevation),
		}
		return Target{
			Position: f.Center.Add(dir.Scale(f.Radius * 1.5)),
			Velocity: dir.Scale(0.3),
			Weight:   0.3,
		}
	}
}
