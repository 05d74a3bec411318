// Package macromod holds the 8 high-level control scalars and derives the
// influence weightings consumed by the gesture, personality, and ensemble
// layers.
package macromod

import (
	"fmt"
	"sort"

	"github.com/soundweave/choreo/dsp"
	"github.com/soundweave/choreo/ensemble"
	"github.com/soundweave/choreo/gesture"
	"github.com/soundweave/choreo/logging"
	"github.com/soundweave/choreo/personality"
)

// Macro enumerates the 8 smoothed control scalars
type Macro int

const (
	Intensity Macro = iota
	Chaos
	Smoothness
	Responsiveness
	Density
	Energy
	Coherence
	Complexity

	NumMacros = 8
)

func (m Macro) String() string {
	switch m {
	case Intensity:
		return "intensity"
	case Chaos:
		return "chaos"
	case Smoothness:
		return "smoothness"
	case Responsiveness:
		return "responsiveness"
	case Density:
		return "density"
	case Energy:
		return "energy"
	case Coherence:
		return "coherence"
	case Complexity:
		return "complexity"
	default:
		return "unknown"
	}
}

// MacroFromString resolves a serialized macro name
func MacroFromString(s string) (Macro, bool) {
	for m := Intensity; m < NumMacros; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return Intensity, false
}

// SystemConfig tunes macro smoothing
type SystemConfig struct {
	// Smoothing time constant toward targets, seconds
	Tau float64 `json:"tau"`

	// Starting value for every macro
	InitialValue float64 `json:"initial_value"`
}

// DefaultSystemConfig returns the tuned defaults
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		Tau:          0.35,
		InitialValue: 0.5,
	}
}

// presets are named target maps applied all at once, ordered
// intensity, chaos, smoothness, responsiveness, density, energy,
// coherence, complexity
var presets = map[string][NumMacros]float64{
	"ambient":   {0.3, 0.1, 0.9, 0.3, 0.4, 0.2, 0.8, 0.3},
	"club":      {0.9, 0.3, 0.3, 0.9, 0.8, 0.9, 0.6, 0.5},
	"chill":     {0.4, 0.2, 0.8, 0.4, 0.5, 0.35, 0.7, 0.4},
	"storm":     {0.95, 0.9, 0.15, 0.8, 0.7, 0.9, 0.2, 0.8},
	"minimal":   {0.3, 0.05, 0.6, 0.5, 0.2, 0.3, 0.9, 0.1},
	"cinematic": {0.7, 0.25, 0.7, 0.5, 0.6, 0.55, 0.7, 0.7},
}

// System owns the 8 value/target pairs. Single-owner, frame-driven.
type System struct {
	config SystemConfig
	logger logging.Logger

	values  [NumMacros]float64
	targets [NumMacros]float64
}

// NewSystem creates a macro system at the configured initial value
func NewSystem(config SystemConfig) *System {
	s := &System{
		config: config,
		logger: logging.GetGlobalLogger().WithFields(logging.Fields{"component": "macro"}),
	}
	initial := dsp.Clamp01(config.InitialValue)
	for m := range s.values {
		s.values[m] = initial
		s.targets[m] = initial
	}
	return s
}

// Set installs a new target for one macro, clamped to [0,1]
func (s *System) Set(m Macro, v float64) {
	if m < 0 || m >= NumMacros {
		return
	}
	s.targets[m] = dsp.Clamp01(v)
}

// Value returns the current smoothed value of one macro
func (s *System) Value(m Macro) float64 {
	if m < 0 || m >= NumMacros {
		return 0
	}
	return s.values[m]
}

// Target returns the current target of one macro
func (s *System) Target(m Macro) float64 {
	if m < 0 || m >= NumMacros {
		return 0
	}
	return s.targets[m]
}

// ApplyPreset installs all 8 targets from a named preset
func (s *System) ApplyPreset(name string) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown macro preset: %q", name)
	}
	for m := range s.targets {
		s.targets[m] = p[m]
	}
	s.logger.Info("macro preset applied", logging.Fields{"preset": name})
	return nil
}

// PresetNames returns the available preset names, sorted
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Update advances every value toward its target
func (s *System) Update(dt float64) {
	for m := range s.values {
		s.values[m] = dsp.SmoothToward(s.values[m], s.targets[m], dt, s.config.Tau)
	}
}

// State is the derived influence weighting, recomputed per frame
type State struct {
	// Per-gesture-type trigger weighting, 1.0 neutral
	GestureInfluence [gesture.NumTypes]float64

	// Per-archetype assignment weighting, 1.0 neutral
	ArchetypeWeights [personality.NumArchetypes]float64

	// Formations ordered by descending bias
	FormationBias []ensemble.FormationType

	// Target spatial spread, 0 tight to 1 dispersed
	SpatialSpread float64
}

// ComputeState derives the influence weighting from the current macro
// values. Pure, no side effects.
//
// Closed forms:
//
//	gesture:  swell   = intensity * smoothness
//	          attack  = intensity * responsiveness
//	          release = smoothness * (1 - chaos)
//	          sustain = coherence * (1 - chaos)
//	          accent  = responsiveness * energy
//	          breath  = (1 - energy) * smoothness
//	archetype: calm       = (1-energy) * smoothness * coherence
//	           energetic  = energy * responsiveness
//	           flowing    = smoothness * (1 - chaos)
//	           aggressive = energy * intensity * chaos
//	           dreamy     = (1 - responsiveness) * smoothness
//	           precise    = coherence * (1 - chaos)
//	           chaotic    = chaos * complexity
//	           graceful   = smoothness * coherence * (1 - intensity)
//	spread:   0.5*(1-coherence) + 0.3*chaos + 0.2*(1-density)
func (s *System) ComputeState() State {
	intensity := s.values[Intensity]
	chaos := s.values[Chaos]
	smoothness := s.values[Smoothness]
	responsiveness := s.values[Responsiveness]
	density := s.values[Density]
	energy := s.values[Energy]
	coherence := s.values[Coherence]
	complexity := s.values[Complexity]

	var st State

	st.GestureInfluence[gesture.Swell] = intensity * smoothness
	st.GestureInfluence[gesture.Attack] = intensity * responsiveness
	st.GestureInfluence[gesture.Release] = smoothness * (1 - chaos)
	st.GestureInfluence[gesture.Sustain] = coherence * (1 - chaos)
	st.GestureInfluence[gesture.Accent] = responsiveness * energy
	st.GestureInfluence[gesture.Breath] = (1 - energy) * smoothness

	st.ArchetypeWeights[personality.Calm] = (1 - energy) * smoothness * coherence
	st.ArchetypeWeights[personality.Energetic] = energy * responsiveness
	st.ArchetypeWeights[personality.Flowing] = smoothness * (1 - chaos)
	st.ArchetypeWeights[personality.Aggressive] = energy * intensity * chaos
	st.ArchetypeWeights[personality.Dreamy] = (1 - responsiveness) * smoothness
	st.ArchetypeWeights[personality.Precise] = coherence * (1 - chaos)
	st.ArchetypeWeights[personality.Chaotic] = chaos * complexity
	st.ArchetypeWeights[personality.Graceful] = smoothness * coherence * (1 - intensity)

	type scored struct {
		formation ensemble.FormationType
		score     float64
	}
	biases := []scored{
		{ensemble.FormationScatter, chaos},
		{ensemble.FormationCluster, coherence * (1 - energy)},
		{ensemble.FormationOrbit, coherence * energy},
		{ensemble.FormationFlow, smoothness},
		{ensemble.FormationLayers, complexity * coherence},
		{ensemble.FormationRadial, energy * intensity},
		{ensemble.FormationGrid, coherence * (1 - chaos)},
		{ensemble.FormationSpiral, complexity * smoothness},
	}
	sort.SliceStable(biases, func(i, j int) bool {
		return biases[i].score > biases[j].score
	})
	st.FormationBias = make([]ensemble.FormationType, len(biases))
	for i, b := range biases {
		st.FormationBias[i] = b.formation
	}

	st.SpatialSpread = dsp.Clamp01(0.5*(1-coherence) + 0.3*chaos + 0.2*(1-density))

	return st
}
