package ensemble

import (
	"github.com/soundweave/choreo/audio"
	"github.com/soundweave/choreo/dsp"
)

// Section is the coarse musical structure class driving formation choice
type Section int

const (
	SectionIntro Section = iota
	SectionVerse
	SectionChorus
	SectionBridge
	SectionBuild
	SectionDrop
	SectionBreakdown
	SectionOutro
)

func (s Section) String() string {
	switch s {
	case SectionIntro:
		return "intro"
	case SectionVerse:
		return "verse"
	case SectionChorus:
		return "chorus"
	case SectionBridge:
		return "bridge"
	case SectionBuild:
		return "build"
	case SectionDrop:
		return "drop"
	case SectionBreakdown:
		return "breakdown"
	default:
		return "outro"
	}
}

// FormationForSection is the fixed section-to-formation mapping
func FormationForSection(s Section) FormationType {
	switch s {
	case SectionIntro:
		return FormationScatter
	case SectionVerse:
		return FormationFlow
	case SectionChorus:
		return FormationOrbit
	case SectionBridge:
		return FormationLayers
	case SectionBuild:
		return FormationSpiral
	case SectionDrop:
		return FormationRadial
	case SectionBreakdown:
		return FormationCluster
	default: // SectionOutro
		return FormationGrid
	}
}

// SectionClassifier tracks slow energy trends and maps them to a musical
// section with dwell-time hysteresis
type SectionClassifier struct {
	current     Section
	dwell       float64
	slowEnergy  float64
	elapsed     float64
	initialized bool
}

// NewSectionClassifier starts in the intro section
func NewSectionClassifier() SectionClassifier {
	return SectionClassifier{current: SectionIntro}
}

// Current returns the classifier's present section
func (c *SectionClassifier) Current() Section {
	return c.current
}

// Classify updates the slow trackers and returns the section, switching
// only after the candidate has been stable past the dwell window
func (c *SectionClassifier) Classify(frame *audio.Frame, dt, minDwell float64) Section {
	c.elapsed += dt
	c.dwell += dt

	// 3s time constant keeps the tracker on structural, not beat, scale
	c.slowEnergy = dsp.SmoothToward(c.slowEnergy, frame.SmoothOverall, dt, 3.0)
	if !c.initialized {
		c.slowEnergy = frame.SmoothOverall
		c.initialized = true
	}

	candidate := c.candidate(frame)
	if candidate != c.current && c.dwell >= minDwell {
		c.current = candidate
		c.dwell = 0.0
	}
	return c.current
}

func (c *SectionClassifier) candidate(frame *audio.Frame) Section {
	e := c.slowEnergy
	conf := frame.RhythmConfidence

	switch {
	case e < 0.1 && c.elapsed < 15.0:
		return SectionIntro
	case frame.TensionBuilding && frame.Tension > 0.65:
		return SectionBuild
	case e > 0.65 && frame.BeatIntensity > 0.7:
		return SectionDrop
	case e > 0.55 && conf > 0.55:
		return SectionChorus
	case e < 0.1:
		return SectionOutro
	case e < 0.25 && conf > 0.4:
		return SectionBreakdown
	case frame.HarmonicRatio > 0.55 && frame.SpectralFlux < 0.3:
		return SectionBridge
	default:
		return SectionVerse
	}
}
