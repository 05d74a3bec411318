package personality

import (
	"math"
	"math/rand"
	"time"

	"github.com/soundweave/choreo/audio"
	"github.com/soundweave/choreo/dsp"
	"github.com/soundweave/choreo/ensemble"
	"github.com/soundweave/choreo/logging"
)

// Assignment is the per-entity blended personality, stored densely by
// entity index
type Assignment struct {
	Primary         Archetype `json:"primary"`
	PrimaryWeight   float64   `json:"primary_weight"`
	HasSecondary    bool      `json:"has_secondary"`
	Secondary       Archetype `json:"secondary"`
	SecondaryWeight float64   `json:"secondary_weight"`

	Traits     Traits    `json:"traits"`
	LastUpdate time.Time `json:"last_update"`
	Stability  float64   `json:"stability"`

	// Archetype mix before the global pull, kept so the pull can be
	// recomputed against a moving global without compounding
	baseTraits Traits

	energyAtAssign float64
	assigned       bool
}

// EngineConfig tunes archetype scoring and global transitions
type EngineConfig struct {
	BaseWeight     float64 `json:"base_weight"`
	RoleInfluence  float64 `json:"role_influence"`
	AudioInfluence float64 `json:"audio_influence"`
	GlobalBonus    float64 `json:"global_bonus"`
	RandomWeight   float64 `json:"random_weight"`

	// Secondary archetype is kept only above this normalized weight
	SecondaryThreshold float64 `json:"secondary_threshold"`

	// Reassignment gates
	DwellTime            float64 `json:"dwell_time"`             // seconds
	EnergyDriftThreshold float64 `json:"energy_drift_threshold"` // 0-1

	// Pull of the global archetype on every blended vector
	GlobalInfluence float64 `json:"global_influence"`

	// Global archetype eased transition span, seconds
	GlobalTransitionDuration float64 `json:"global_transition_duration"`

	// Auto-adapt switches only past this energy mismatch
	AutoAdaptThreshold float64 `json:"auto_adapt_threshold"`

	Seed int64 `json:"seed"`
}

// DefaultEngineConfig returns the tuned defaults
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		BaseWeight:               0.1,
		RoleInfluence:            0.3,
		AudioInfluence:           0.3,
		GlobalBonus:              0.2,
		RandomWeight:             0.1,
		SecondaryThreshold:       0.2,
		DwellTime:                3.0,
		EnergyDriftThreshold:     0.5,
		GlobalInfluence:          0.4,
		GlobalTransitionDuration: 2.0,
		AutoAdaptThreshold:       0.3,
		Seed:                     1,
	}
}

// Engine assigns blended archetypes per entity and manages the slowly
// transitioning global archetype. Single-owner, frame-driven.
type Engine struct {
	config EngineConfig
	logger logging.Logger

	now func() time.Time
	rng *rand.Rand

	assignments []Assignment

	global          Archetype
	prevGlobal      Archetype
	transitionStart time.Time
	transitioning   bool

	// Macro-derived per-archetype weighting; 1.0 means neutral
	influence [NumArchetypes]float64
}

// NewEngine creates a personality engine with the given configuration
func NewEngine(config EngineConfig) *Engine {
	e := &Engine{
		config: config,
		logger: logging.GetGlobalLogger().WithFields(logging.Fields{"component": "personality"}),
		now:    time.Now,
		rng:    rand.New(rand.NewSource(config.Seed)),
		global: Flowing,
	}
	for i := range e.influence {
		e.influence[i] = 1.0
	}
	return e
}

// Assignments returns the dense per-entity records, reused across frames
func (e *Engine) Assignments() []Assignment {
	return e.assignments
}

// Global returns the current global archetype target
func (e *Engine) Global() Archetype {
	return e.global
}

// SetInfluence installs macro-derived per-archetype weights
func (e *Engine) SetInfluence(weights [NumArchetypes]float64) {
	for i, w := range weights {
		e.influence[i] = dsp.Clamp01(w)
	}
}

// SetGlobal starts an eased transition to a new global archetype
func (e *Engine) SetGlobal(a Archetype) {
	if a < 0 || a >= NumArchetypes || a == e.global {
		return
	}
	e.prevGlobal = e.global
	e.global = a
	e.transitionStart = e.now()
	e.transitioning = true
	e.logger.Info("global personality changed", logging.Fields{
		"from": e.prevGlobal.String(), "to": a.String(),
	})
}

// AutoAdapt recommends and applies a global archetype matching the
// current audio energy, switching only past the mismatch threshold to
// avoid oscillation
func (e *Engine) AutoAdapt(frame *audio.Frame) {
	current := ProfileFor(e.global)
	if math.Abs(current.Traits.Energy-frame.SmoothOverall) <= e.config.AutoAdaptThreshold {
		return
	}

	best := e.global
	bestDiff := math.Inf(1)
	for a := Calm; a < NumArchetypes; a++ {
		diff := math.Abs(ProfileFor(a).Traits.Energy - frame.SmoothOverall)
		if diff < bestDiff {
			bestDiff = diff
			best = a
		}
	}
	e.SetGlobal(best)
}

// globalBlendTraits returns the effective global trait vector, eased
// between the previous and current archetype during a transition
func (e *Engine) globalBlendTraits() Traits {
	target := ProfileFor(e.global).Traits
	if !e.transitioning {
		return target
	}
	t := e.now().Sub(e.transitionStart).Seconds() / e.config.GlobalTransitionDuration
	if t >= 1.0 {
		e.transitioning = false
		return target
	}
	return ProfileFor(e.prevGlobal).Traits.Blend(target, dsp.EaseInOutCubic(t))
}

// Update refreshes assignments for every entity whose reassignment gates
// have opened: either the dwell timer expired or the entity's energy
// match drifted past the threshold
func (e *Engine) Update(roles []ensemble.RoleAssignment, frame *audio.Frame) {
	n := len(roles)
	if n == 0 {
		return
	}
	if len(e.assignments) < n {
		e.assignments = append(e.assignments, make([]Assignment, n-len(e.assignments))...)
	} else if len(e.assignments) > n {
		e.assignments = e.assignments[:n]
	}

	nowTime := e.now()
	globalTraits := e.globalBlendTraits()

	for i := 0; i < n; i++ {
		a := &e.assignments[i]

		if a.assigned {
			dwellOpen := nowTime.Sub(a.LastUpdate).Seconds() >= e.config.DwellTime
			drift := math.Abs(frame.SmoothOverall-a.energyAtAssign) > e.config.EnergyDriftThreshold
			if !dwellOpen && !drift {
				// Recompute the bounded pull from the stored mix so a
				// moving global is tracked without compounding
				a.Traits = a.baseTraits.Blend(globalTraits, e.config.GlobalInfluence)
				continue
			}
		}

		e.assign(a, roles[i].Role, frame, globalTraits, nowTime)
	}
}

// assign scores all archetypes for one entity and installs the blended
// primary/secondary pair
func (e *Engine) assign(a *Assignment, role ensemble.Role, frame *audio.Frame, globalTraits Traits, nowTime time.Time) {
	var weights [NumArchetypes]float64
	total := 0.0

	for arch := Calm; arch < NumArchetypes; arch++ {
		p := ProfileFor(arch)
		w := e.config.BaseWeight +
			p.RoleAffinity[role]*e.config.RoleInfluence +
			(1.0-math.Abs(p.Traits.Energy-frame.SmoothOverall))*e.config.AudioInfluence +
			e.rng.Float64()*e.config.RandomWeight
		if arch == e.global {
			w += e.config.GlobalBonus
		}
		w *= e.influence[arch]
		weights[arch] = w
		total += w
	}
	if total < dsp.Epsilon {
		total = 1.0
	}

	primary, secondary := Calm, Calm
	first, second := -1.0, -1.0
	for arch := Calm; arch < NumArchetypes; arch++ {
		w := weights[arch] / total
		if w > first {
			second, secondary = first, primary
			first, primary = w, arch
		} else if w > second {
			second, secondary = w, arch
		}
	}

	a.Primary = primary
	a.HasSecondary = second > e.config.SecondaryThreshold

	if a.HasSecondary {
		a.Secondary = secondary
		// Present component weights renormalize to sum 1
		a.PrimaryWeight = first / (first + second)
		a.SecondaryWeight = second / (first + second)
		a.baseTraits = ProfileFor(primary).Traits.Blend(ProfileFor(secondary).Traits, a.SecondaryWeight)
	} else {
		a.PrimaryWeight = 1.0
		a.SecondaryWeight = 0.0
		a.baseTraits = ProfileFor(primary).Traits
	}

	// Pull the blended vector toward the global archetype
	a.Traits = a.baseTraits.Blend(globalTraits, e.config.GlobalInfluence)

	a.LastUpdate = nowTime
	a.energyAtAssign = frame.SmoothOverall
	a.Stability = dsp.Clamp01(1.0 - math.Abs(ProfileFor(primary).Traits.Energy-frame.SmoothOverall))
	a.assigned = true
}
