package ensemble

import (
	"math"
	"testing"
	"time"

	"github.com/soundweave/choreo/audio"
	"github.com/soundweave/choreo/geom"
)

func countRoles(assignments []RoleAssignment) (lead, support, ambient int) {
	for _, a := range assignments {
		switch a.Role {
		case RoleLead:
			lead++
		case RoleSupport:
			support++
		default:
			ambient++
		}
	}
	return
}

// line positions give every entity a distinct camera distance
func linePositions(n int) []geom.Vec3 {
	positions := make([]geom.Vec3, n)
	for i := range positions {
		positions[i] = geom.Vec3{X: float64(i)}
	}
	return positions
}

func TestRolePartitionCounts(t *testing.T) {
	for _, n := range []int{7, 10, 100, 333} {
		c := NewChoreographer(DefaultConfig())
		c.now = func() time.Time { return time.Unix(0, 0) }

		positions := linePositions(n)
		velocities := make([]geom.Vec3, n)
		c.UpdateRoles(positions, velocities, geom.Pose{}, audio.NeutralFrame())

		lead, support, ambient := countRoles(c.Assignments())
		wantLead := int(0.10 * float64(n))
		wantSupport := int(0.30 * float64(n))
		if lead != wantLead {
			t.Errorf("n=%d: lead = %d, want %d", n, lead, wantLead)
		}
		if support != wantSupport {
			t.Errorf("n=%d: support = %d, want %d", n, support, wantSupport)
		}
		if ambient != n-wantLead-wantSupport {
			t.Errorf("n=%d: ambient = %d, want %d", n, ambient, n-wantLead-wantSupport)
		}
	}
}

func TestRoleHysteresisSuppressesChanges(t *testing.T) {
	c := NewChoreographer(DefaultConfig())
	clock := time.Unix(0, 0)
	c.now = func() time.Time { return clock }

	n := 100
	positions := linePositions(n)
	velocities := make([]geom.Vec3, n)
	c.UpdateRoles(positions, velocities, geom.Pose{}, audio.NeutralFrame())

	before := make([]Role, n)
	for i, a := range c.Assignments() {
		before[i] = a.Role
	}

	// Reverse the priority order well inside the hysteresis window
	for i := range positions {
		positions[i] = geom.Vec3{X: float64(n - i)}
	}
	clock = clock.Add(500 * time.Millisecond)
	c.UpdateRoles(positions, velocities, geom.Pose{}, audio.NeutralFrame())

	for i, a := range c.Assignments() {
		if a.Role != before[i] {
			t.Fatalf("entity %d role changed inside hysteresis window: %v -> %v", i, before[i], a.Role)
		}
	}

	// Past the window the new ordering must take effect for at least the
	// extremes that swapped rank
	clock = clock.Add(3 * time.Second)
	c.UpdateRoles(positions, velocities, geom.Pose{}, audio.NeutralFrame())
	lead, support, ambient := countRoles(c.Assignments())
	if lead != 10 || support != 30 || ambient != 60 {
		t.Errorf("partition after hysteresis = %d/%d/%d, want 10/30/60", lead, support, ambient)
	}
}

func TestAssignmentsTruncateWhenEntityCountShrinks(t *testing.T) {
	c := NewChoreographer(DefaultConfig())
	clock := time.Unix(0, 0)
	c.now = func() time.Time { return clock }

	positions := linePositions(100)
	velocities := make([]geom.Vec3, 100)
	c.UpdateRoles(positions, velocities, geom.Pose{}, audio.NeutralFrame())
	if len(c.Assignments()) != 100 {
		t.Fatalf("len(assignments) = %d, want 100", len(c.Assignments()))
	}

	// Past the hysteresis window the smaller population repartitions
	clock = clock.Add(3 * time.Second)
	c.UpdateRoles(positions[:40], velocities[:40], geom.Pose{}, audio.NeutralFrame())
	if len(c.Assignments()) != 40 {
		t.Fatalf("len(assignments) after shrink = %d, want 40", len(c.Assignments()))
	}
	lead, support, ambient := countRoles(c.Assignments())
	if lead != 4 || support != 12 || ambient != 24 {
		t.Errorf("partition after shrink = %d/%d/%d, want 4/12/24", lead, support, ambient)
	}
}

func TestBlendFormationsEndpoints(t *testing.T) {
	from := FormationState{
		Type: FormationCluster, Center: geom.Vec3{X: 1}, Radius: 5.0,
		Direction: geom.Vec3{Y: 1}, Rotation: 1.0, Cohesion: 0.2, Energy: 0.1,
	}
	to := FormationState{
		Type: FormationOrbit, Center: geom.Vec3{X: 9}, Radius: 15.0,
		Direction: geom.Vec3{Y: 1}, Rotation: 3.0, Cohesion: 0.8, Energy: 0.9,
	}

	start := BlendFormations(from, to, 0.0)
	if start.Type != from.Type || start.Radius != from.Radius || start.Center != from.Center {
		t.Errorf("blend at 0 = %+v, want source fields", start)
	}

	end := BlendFormations(from, to, 1.0)
	if end.Type != to.Type || end.Radius != to.Radius || end.Center != to.Center {
		t.Errorf("blend at 1 = %+v, want target fields", end)
	}

	// Radius must interpolate monotonically
	prev := from.Radius
	for _, tt := range []float64{0.1, 0.25, 0.5, 0.75, 0.9, 1.0} {
		r := BlendFormations(from, to, tt).Radius
		if r < prev-1e-9 {
			t.Errorf("radius not monotone at t=%v: %v < %v", tt, r, prev)
		}
		prev = r
	}

	// Type flips at the midpoint
	if BlendFormations(from, to, 0.49).Type != from.Type {
		t.Error("type flipped before midpoint")
	}
	if BlendFormations(from, to, 0.51).Type != to.Type {
		t.Error("type did not flip after midpoint")
	}
}

func TestFormationTargetGeometry(t *testing.T) {
	f := FormationState{
		Type: FormationCluster, Center: geom.Vec3{}, Radius: 10.0, Cohesion: 1.0,
	}
	pos := geom.Vec3{X: 5, Y: 3}
	target := FormationTarget(f, 0, pos)
	if target.Position != f.Center {
		t.Errorf("cluster target position = %+v, want center", target.Position)
	}
	if target.Velocity.Dot(f.Center.Sub(pos)) <= 0 {
		t.Error("cluster velocity does not point toward center")
	}

	f.Type = FormationRadial
	target = FormationTarget(f, 0, pos)
	if d := target.Position.Distance(f.Center); math.Abs(d-f.Radius) > 1e-6 {
		t.Errorf("radial target distance = %v, want radius %v", d, f.Radius)
	}

	f.Type = FormationOrbit
	target = FormationTarget(f, 0, pos)
	radial := pos.Sub(f.Center)
	radial.Y = 0
	if math.Abs(target.Velocity.Dot(radial)) > 1e-6 {
		t.Error("orbit velocity not tangential to the radial direction")
	}

	f.Type = FormationGrid
	target = FormationTarget(f, 0, geom.Vec3{X: 2.4, Y: 0.1, Z: -1.2})
	spacing := f.Radius / 4.0
	for _, v := range []float64{target.Position.X, target.Position.Y, target.Position.Z} {
		ratio := v / spacing
		if math.Abs(ratio-math.Round(ratio)) > 1e-6 {
			t.Errorf("grid coordinate %v not on lattice spacing %v", v, spacing)
		}
	}
}

func TestSectionFormationMappingFixed(t *testing.T) {
	want := map[Section]FormationType{
		SectionIntro:     FormationScatter,
		SectionVerse:     FormationFlow,
		SectionChorus:    FormationOrbit,
		SectionBridge:    FormationLayers,
		SectionBuild:     FormationSpiral,
		SectionDrop:      FormationRadial,
		SectionBreakdown: FormationCluster,
		SectionOutro:     FormationGrid,
	}
	for section, formation := range want {
		if got := FormationForSection(section); got != formation {
			t.Errorf("FormationForSection(%v) = %v, want %v", section, got, formation)
		}
	}
}

func TestSectionClassifierDwell(t *testing.T) {
	c := NewSectionClassifier()

	loud := audio.NeutralFrame()
	loud.SmoothOverall = 0.8
	loud.BeatIntensity = 0.9
	loud.RhythmConfidence = 0.8

	// One loud frame must not flip the section before the dwell expires
	c.Classify(loud, 0.016, 4.0)
	if c.Current() != SectionIntro {
		t.Errorf("section flipped immediately: %v", c.Current())
	}

	// Sustained loud input past the dwell window must leave intro
	for i := 0; i < 1000; i++ {
		c.Classify(loud, 0.016, 4.0)
	}
	if c.Current() == SectionIntro {
		t.Error("section still intro after 16s of loud input")
	}
}
