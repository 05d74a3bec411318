package personality

import (
	"math"
	"testing"
	"time"

	"github.com/soundweave/choreo/audio"
	"github.com/soundweave/choreo/ensemble"
)

func testRoles(n int) []ensemble.RoleAssignment {
	roles := make([]ensemble.RoleAssignment, n)
	for i := range roles {
		roles[i].Role = ensemble.Role(i % 3)
	}
	return roles
}

func TestAssignmentWeightsSumToOne(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	e.now = func() time.Time { return time.Unix(0, 0) }

	frame := audio.NeutralFrame()
	frame.SmoothOverall = 0.5
	e.Update(testRoles(50), frame)

	for i, a := range e.Assignments() {
		sum := a.PrimaryWeight
		if a.HasSecondary {
			sum += a.SecondaryWeight
		}
		if math.Abs(sum-1.0) > 1e-6 {
			t.Errorf("entity %d: weight sum = %v, want 1 +- 1e-6", i, sum)
		}
	}
}

func TestDwellSuppressesReassignment(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	clock := time.Unix(0, 0)
	e.now = func() time.Time { return clock }

	frame := audio.NeutralFrame()
	frame.SmoothOverall = 0.5
	roles := testRoles(20)
	e.Update(roles, frame)

	before := make([]Archetype, 20)
	for i, a := range e.Assignments() {
		before[i] = a.Primary
	}

	// Small energy shift inside the dwell window: no reassignment
	clock = clock.Add(time.Second)
	frame.SmoothOverall = 0.6
	e.Update(roles, frame)
	for i, a := range e.Assignments() {
		if a.Primary != before[i] {
			t.Fatalf("entity %d reassigned inside dwell window", i)
		}
	}
}

func TestEnergyDriftForcesReassignment(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.RandomWeight = 0.0 // deterministic scoring
	e := NewEngine(cfg)
	clock := time.Unix(0, 0)
	e.now = func() time.Time { return clock }

	quiet := audio.NeutralFrame()
	quiet.SmoothOverall = 0.05
	roles := testRoles(10)
	e.Update(roles, quiet)

	quietPrimaries := make([]Archetype, 10)
	for i, a := range e.Assignments() {
		quietPrimaries[i] = a.Primary
	}

	// A jump past the drift threshold reassigns even inside the dwell
	loud := audio.NeutralFrame()
	loud.SmoothOverall = 0.95
	clock = clock.Add(100 * time.Millisecond)
	e.Update(roles, loud)

	changed := false
	for i, a := range e.Assignments() {
		if a.Primary != quietPrimaries[i] {
			changed = true
		}
		if a.LastUpdate != clock {
			t.Errorf("entity %d not reassigned on energy drift", i)
		}
	}
	if !changed {
		t.Error("no primary changed after a 0.9 energy jump")
	}
}

func TestGlobalPullStaysBoundedInsideDwell(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.RandomWeight = 0.0
	e := NewEngine(cfg)
	clock := time.Unix(0, 0)
	e.now = func() time.Time { return clock }

	frame := audio.NeutralFrame()
	frame.SmoothOverall = 0.95
	roles := testRoles(10)
	e.Update(roles, frame)

	initial := make([]Traits, 10)
	for i, a := range e.Assignments() {
		initial[i] = a.Traits
	}

	// ~2.9s of frame updates, all inside the dwell window with a static
	// global and steady energy
	for i := 0; i < 180; i++ {
		clock = clock.Add(16 * time.Millisecond)
		e.Update(roles, frame)
	}

	global := ProfileFor(e.Global()).Traits
	for i, a := range e.Assignments() {
		if a.Traits != initial[i] {
			t.Errorf("entity %d traits drifted inside the dwell window", i)
		}
		if a.Primary != e.Global() && a.Traits == global {
			t.Errorf("entity %d collapsed onto the global trait vector", i)
		}
	}
}

func TestAssignmentsTruncateWithFewerRoles(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	e.now = func() time.Time { return time.Unix(0, 0) }

	frame := audio.NeutralFrame()
	frame.SmoothOverall = 0.5
	e.Update(testRoles(20), frame)
	if len(e.Assignments()) != 20 {
		t.Fatalf("len(assignments) = %d, want 20", len(e.Assignments()))
	}

	e.Update(testRoles(5), frame)
	if len(e.Assignments()) != 5 {
		t.Errorf("len(assignments) after shrink = %d, want 5", len(e.Assignments()))
	}
}

func TestSecondaryWeightAboveThreshold(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	e.now = func() time.Time { return time.Unix(0, 0) }

	frame := audio.NeutralFrame()
	frame.SmoothOverall = 0.5
	e.Update(testRoles(100), frame)

	for i, a := range e.Assignments() {
		if a.HasSecondary && a.SecondaryWeight > a.PrimaryWeight {
			t.Errorf("entity %d: secondary weight %v exceeds primary %v",
				i, a.SecondaryWeight, a.PrimaryWeight)
		}
		if !a.HasSecondary && a.PrimaryWeight != 1.0 {
			t.Errorf("entity %d: primary-only weight = %v, want 1.0", i, a.PrimaryWeight)
		}
	}
}

func TestSetGlobalTransitionEases(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	clock := time.Unix(0, 0)
	e.now = func() time.Time { return clock }

	e.SetGlobal(Aggressive)
	if e.Global() != Aggressive {
		t.Fatalf("Global() = %v, want aggressive", e.Global())
	}

	// Mid-transition the effective traits sit between the two archetypes
	clock = clock.Add(time.Second)
	mid := e.globalBlendTraits()
	from := ProfileFor(Flowing).Traits.Energy
	to := ProfileFor(Aggressive).Traits.Energy
	if mid.Energy <= math.Min(from, to) || mid.Energy >= math.Max(from, to) {
		t.Errorf("mid-transition energy = %v, want strictly between %v and %v", mid.Energy, from, to)
	}

	// Past the span the transition resolves to the target
	clock = clock.Add(5 * time.Second)
	end := e.globalBlendTraits()
	if end != ProfileFor(Aggressive).Traits {
		t.Error("traits did not settle on the target archetype after the transition span")
	}
}

func TestAutoAdaptHysteresis(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	e.now = func() time.Time { return time.Unix(0, 0) }

	// Flowing has energy 0.5; a matching frame must not switch
	frame := audio.NeutralFrame()
	frame.SmoothOverall = 0.55
	e.AutoAdapt(frame)
	if e.Global() != Flowing {
		t.Errorf("AutoAdapt switched on a %v mismatch, want no switch", 0.05)
	}

	// A large mismatch must switch to a high-energy archetype
	frame.SmoothOverall = 0.95
	e.AutoAdapt(frame)
	if got := ProfileFor(e.Global()).Traits.Energy; got < 0.8 {
		t.Errorf("AutoAdapt global energy = %v, want high-energy archetype", got)
	}
}
