// Package personality blends static behavioral archetypes into per-entity
// trait vectors steered by role, audio energy, and a global archetype.
package personality

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/soundweave/choreo/dsp"
	"github.com/soundweave/choreo/ensemble"
)

// Archetype enumerates the 8 static personality profiles
type Archetype int

const (
	Calm Archetype = iota
	Energetic
	Flowing
	Aggressive
	Dreamy
	Precise
	Chaotic
	Graceful

	NumArchetypes = 8
)

func (a Archetype) String() string {
	switch a {
	case Calm:
		return "calm"
	case Energetic:
		return "energetic"
	case Flowing:
		return "flowing"
	case Aggressive:
		return "aggressive"
	case Dreamy:
		return "dreamy"
	case Precise:
		return "precise"
	case Chaotic:
		return "chaotic"
	case Graceful:
		return "graceful"
	default:
		return "unknown"
	}
}

// ArchetypeFromString resolves a serialized archetype name
func ArchetypeFromString(s string) (Archetype, bool) {
	for a := Calm; a < NumArchetypes; a++ {
		if a.String() == s {
			return a, true
		}
	}
	return Calm, false
}

// Traits is the full behavioral vector applied per entity. All values
// are 0-1 unless noted.
type Traits struct {
	Speed            float64 `json:"speed"`
	Smoothness       float64 `json:"smoothness"`
	Amplitude        float64 `json:"amplitude"`
	AudioSensitivity float64 `json:"audio_sensitivity"`

	BassResponse   float64 `json:"bass_response"`
	MidResponse    float64 `json:"mid_response"`
	TrebleResponse float64 `json:"treble_response"`
	BeatResponse   float64 `json:"beat_response"`

	Independence   float64 `json:"independence"`
	Predictability float64 `json:"predictability"`
	Energy         float64 `json:"energy"`
	Aggression     float64 `json:"aggression"`

	Brightness     float64 `json:"brightness"`
	Saturation     float64 `json:"saturation"`
	ScaleVariation float64 `json:"scale_variation"`

	ReactionSpeed     float64 `json:"reaction_speed"`
	Inertia           float64 `json:"inertia"`
	RhythmicAlignment float64 `json:"rhythmic_alignment"`
}

// Blend interpolates every trait from t toward o by w
func (t Traits) Blend(o Traits, w float64) Traits {
	w = dsp.Clamp01(w)
	return Traits{
		Speed:            dsp.Lerp(t.Speed, o.Speed, w),
		Smoothness:       dsp.Lerp(t.Smoothness, o.Smoothness, w),
		Amplitude:        dsp.Lerp(t.Amplitude, o.Amplitude, w),
		AudioSensitivity: dsp.Lerp(t.AudioSensitivity, o.AudioSensitivity, w),

		BassResponse:   dsp.Lerp(t.BassResponse, o.BassResponse, w),
		MidResponse:    dsp.Lerp(t.MidResponse, o.MidResponse, w),
		TrebleResponse: dsp.Lerp(t.TrebleResponse, o.TrebleResponse, w),
		BeatResponse:   dsp.Lerp(t.BeatResponse, o.BeatResponse, w),

		Independence:   dsp.Lerp(t.Independence, o.Independence, w),
		Predictability: dsp.Lerp(t.Predictability, o.Predictability, w),
		Energy:         dsp.Lerp(t.Energy, o.Energy, w),
		Aggression:     dsp.Lerp(t.Aggression, o.Aggression, w),

		Brightness:     dsp.Lerp(t.Brightness, o.Brightness, w),
		Saturation:     dsp.Lerp(t.Saturation, o.Saturation, w),
		ScaleVariation: dsp.Lerp(t.ScaleVariation, o.ScaleVariation, w),

		ReactionSpeed:     dsp.Lerp(t.ReactionSpeed, o.ReactionSpeed, w),
		Inertia:           dsp.Lerp(t.Inertia, o.Inertia, w),
		RhythmicAlignment: dsp.Lerp(t.RhythmicAlignment, o.RhythmicAlignment, w),
	}
}

// Profile is one immutable archetype definition
type Profile struct {
	Archetype Archetype
	Name      string
	Traits    Traits

	// Affinity per role, indexed by ensemble.Role
	RoleAffinity [3]float64

	// Preferred formations in descending order
	FormationPreference []ensemble.FormationType

	// Base color tint applied by the render side
	Tint colorful.Color
}

// profiles is the static archetype table, loaded once
var profiles = [NumArchetypes]Profile{
	Calm: {
		Archetype: Calm, Name: "calm",
		Traits: Traits{
			Speed: 0.2, Smoothness: 0.9, Amplitude: 0.3, AudioSensitivity: 0.4,
			BassResponse: 0.5, MidResponse: 0.5, TrebleResponse: 0.3, BeatResponse: 0.2,
			Independence: 0.3, Predictability: 0.9, Energy: 0.2, Aggression: 0.1,
			Brightness: 0.4, Saturation: 0.3, ScaleVariation: 0.2,
			ReactionSpeed: 0.2, Inertia: 0.8, RhythmicAlignment: 0.4,
		},
		RoleAffinity:        [3]float64{0.8, 0.5, 0.2}, // ambient, support, lead
		FormationPreference: []ensemble.FormationType{ensemble.FormationCluster, ensemble.FormationLayers, ensemble.FormationGrid},
		Tint:                colorful.Hsv(200, 0.3, 0.7),
	},
	Energetic: {
		Archetype: Energetic, Name: "energetic",
		Traits: Traits{
			Speed: 0.9, Smoothness: 0.3, Amplitude: 0.8, AudioSensitivity: 0.9,
			BassResponse: 0.8, MidResponse: 0.6, TrebleResponse: 0.7, BeatResponse: 0.9,
			Independence: 0.6, Predictability: 0.4, Energy: 0.9, Aggression: 0.5,
			Brightness: 0.9, Saturation: 0.8, ScaleVariation: 0.6,
			ReactionSpeed: 0.9, Inertia: 0.2, RhythmicAlignment: 0.8,
		},
		RoleAffinity:        [3]float64{0.3, 0.6, 0.9},
		FormationPreference: []ensemble.FormationType{ensemble.FormationRadial, ensemble.FormationOrbit, ensemble.FormationScatter},
		Tint:                colorful.Hsv(35, 0.9, 1.0),
	},
	Flowing: {
		Archetype: Flowing, Name: "flowing",
		Traits: Traits{
			Speed: 0.5, Smoothness: 0.95, Amplitude: 0.6, AudioSensitivity: 0.6,
			BassResponse: 0.4, MidResponse: 0.8, TrebleResponse: 0.4, BeatResponse: 0.3,
			Independence: 0.4, Predictability: 0.7, Energy: 0.5, Aggression: 0.1,
			Brightness: 0.6, Saturation: 0.5, ScaleVariation: 0.4,
			ReactionSpeed: 0.4, Inertia: 0.6, RhythmicAlignment: 0.5,
		},
		RoleAffinity:        [3]float64{0.6, 0.8, 0.5},
		FormationPreference: []ensemble.FormationType{ensemble.FormationFlow, ensemble.FormationSpiral, ensemble.FormationOrbit},
		Tint:                colorful.Hsv(170, 0.5, 0.8),
	},
	Aggressive: {
		Archetype: Aggressive, Name: "aggressive",
		Traits: Traits{
			Speed: 0.95, Smoothness: 0.1, Amplitude: 0.95, AudioSensitivity: 0.8,
			BassResponse: 0.95, MidResponse: 0.5, TrebleResponse: 0.6, BeatResponse: 0.95,
			Independence: 0.8, Predictability: 0.2, Energy: 0.95, Aggression: 0.95,
			Brightness: 0.8, Saturation: 0.95, ScaleVariation: 0.8,
			ReactionSpeed: 0.95, Inertia: 0.1, RhythmicAlignment: 0.7,
		},
		RoleAffinity:        [3]float64{0.2, 0.5, 0.95},
		FormationPreference: []ensemble.FormationType{ensemble.FormationRadial, ensemble.FormationScatter, ensemble.FormationFlow},
		Tint:                colorful.Hsv(0, 0.9, 0.95),
	},
	Dreamy: {
		Archetype: Dreamy, Name: "dreamy",
		Traits: Traits{
			Speed: 0.3, Smoothness: 0.85, Amplitude: 0.5, AudioSensitivity: 0.5,
			BassResponse: 0.3, MidResponse: 0.5, TrebleResponse: 0.8, BeatResponse: 0.2,
			Independence: 0.7, Predictability: 0.5, Energy: 0.3, Aggression: 0.05,
			Brightness: 0.7, Saturation: 0.4, ScaleVariation: 0.5,
			ReactionSpeed: 0.3, Inertia: 0.7, RhythmicAlignment: 0.2,
		},
		RoleAffinity:        [3]float64{0.9, 0.5, 0.3},
		FormationPreference: []ensemble.FormationType{ensemble.FormationSpiral, ensemble.FormationLayers, ensemble.FormationCluster},
		Tint:                colorful.Hsv(280, 0.4, 0.85),
	},
	Precise: {
		Archetype: Precise, Name: "precise",
		Traits: Traits{
			Speed: 0.6, Smoothness: 0.5, Amplitude: 0.4, AudioSensitivity: 0.7,
			BassResponse: 0.5, MidResponse: 0.7, TrebleResponse: 0.6, BeatResponse: 0.8,
			Independence: 0.2, Predictability: 0.95, Energy: 0.6, Aggression: 0.3,
			Brightness: 0.6, Saturation: 0.6, ScaleVariation: 0.1,
			ReactionSpeed: 0.8, Inertia: 0.4, RhythmicAlignment: 0.95,
		},
		RoleAffinity:        [3]float64{0.5, 0.9, 0.6},
		FormationPreference: []ensemble.FormationType{ensemble.FormationGrid, ensemble.FormationOrbit, ensemble.FormationLayers},
		Tint:                colorful.Hsv(120, 0.5, 0.8),
	},
	Chaotic: {
		Archetype: Chaotic, Name: "chaotic",
		Traits: Traits{
			Speed: 0.8, Smoothness: 0.15, Amplitude: 0.9, AudioSensitivity: 0.7,
			BassResponse: 0.6, MidResponse: 0.6, TrebleResponse: 0.6, BeatResponse: 0.5,
			Independence: 0.95, Predictability: 0.05, Energy: 0.8, Aggression: 0.6,
			Brightness: 0.7, Saturation: 0.7, ScaleVariation: 0.95,
			ReactionSpeed: 0.7, Inertia: 0.15, RhythmicAlignment: 0.1,
		},
		RoleAffinity:        [3]float64{0.6, 0.4, 0.5},
		FormationPreference: []ensemble.FormationType{ensemble.FormationScatter, ensemble.FormationRadial, ensemble.FormationSpiral},
		Tint:                colorful.Hsv(315, 0.8, 0.9),
	},
	Graceful: {
		Archetype: Graceful, Name: "graceful",
		Traits: Traits{
			Speed: 0.4, Smoothness: 0.9, Amplitude: 0.55, AudioSensitivity: 0.6,
			BassResponse: 0.3, MidResponse: 0.7, TrebleResponse: 0.6, BeatResponse: 0.5,
			Independence: 0.4, Predictability: 0.8, Energy: 0.4, Aggression: 0.1,
			Brightness: 0.65, Saturation: 0.5, ScaleVariation: 0.3,
			ReactionSpeed: 0.5, Inertia: 0.55, RhythmicAlignment: 0.7,
		},
		RoleAffinity:        [3]float64{0.5, 0.8, 0.7},
		FormationPreference: []ensemble.FormationType{ensemble.FormationOrbit, ensemble.FormationFlow, ensemble.FormationSpiral},
		Tint:                colorful.Hsv(45, 0.35, 0.9),
	},
}

// ProfileFor returns the static profile for an archetype
func ProfileFor(a Archetype) Profile {
	if a < 0 || a >= NumArchetypes {
		return profiles[Calm]
	}
	return profiles[a]
}
