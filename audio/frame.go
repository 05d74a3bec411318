package audio

import "time"

// ModulationBus carries the smoothed composite signals consumed by
// downstream force and visual systems. Every signal is in [0,1] and is
// independently smoothed toward a per-frame target.
type ModulationBus struct {
	Pulse       float64 `json:"pulse"`       // beat-locked impulse
	Flow        float64 `json:"flow"`        // sustained laminar movement
	Shimmer     float64 `json:"shimmer"`     // high-frequency sparkle
	Warp        float64 `json:"warp"`        // spatial distortion drive
	Density     float64 `json:"density"`     // perceived fullness
	Aura        float64 `json:"aura"`        // harmonic halo
	Containment float64 `json:"containment"` // inward binding
	Sway        float64 `json:"sway"`        // lateral drift
}

// Frame is an immutable per-analysis snapshot of every extracted audio
// feature. A fresh value is produced on each Analyze call.
type Frame struct {
	Timestamp time.Time `json:"timestamp"`

	// Raw band energies, 0-1
	Bass    float64 `json:"bass"`
	Mid     float64 `json:"mid"`
	Treble  float64 `json:"treble"`
	Overall float64 `json:"overall"`

	// Exponentially smoothed counterparts
	SmoothBass    float64 `json:"smooth_bass"`
	SmoothMid     float64 `json:"smooth_mid"`
	SmoothTreble  float64 `json:"smooth_treble"`
	SmoothOverall float64 `json:"smooth_overall"`

	// Beat state
	IsBeat        bool    `json:"is_beat"`
	BeatIntensity float64 `json:"beat_intensity"` // 1.0 on fire, linear decay
	TimeSinceBeat float64 `json:"time_since_beat"`
	NextBeatIn    float64 `json:"next_beat_in"` // predicted seconds to downbeat

	// Spectral peak
	PeakFrequency float64 `json:"peak_frequency"` // Hz
	PeakIntensity float64 `json:"peak_intensity"`

	// Tempo
	Tempo            float64 `json:"tempo"`       // BPM, clamped 40-200
	TempoPhase       float64 `json:"tempo_phase"` // 0-1, wraps each beat
	RhythmConfidence float64 `json:"rhythm_confidence"`

	// Spectral dynamics
	SpectralFlux float64 `json:"spectral_flux"`
	OnsetEnergy  float64 `json:"onset_energy"`

	// Harmonic content
	HarmonicRatio  float64 `json:"harmonic_ratio"`
	HarmonicEnergy float64 `json:"harmonic_energy"`

	// Stereo image
	StereoBalance float64 `json:"stereo_balance"` // -1 left .. 1 right
	StereoWidth   float64 `json:"stereo_width"`   // 0-1

	// Composite motion measures
	GrooveIndex  float64 `json:"groove_index"`
	Momentum     float64 `json:"momentum"`     // -1..1
	Acceleration float64 `json:"acceleration"` // -1..1

	// Structural build/release tracking
	Tension          float64 `json:"tension"` // 0-1
	TensionBuilding  bool    `json:"tension_building"`
	TensionReleasing bool    `json:"tension_releasing"`
	Anticipation     float64 `json:"anticipation"` // 0-1, rises before a beat

	Bus ModulationBus `json:"bus"`
}

// StereoSamples carries independent left/right time-domain buffers when the
// capture collaborator provides them
type StereoSamples struct {
	Left  []float64
	Right []float64
}

// NeutralFrame returns the zeroed frame used while no audio source is
// producing data. Tempo sits at the midpoint default so tempo-derived
// periods stay finite.
func NeutralFrame() *Frame {
	return &Frame{
		Tempo:      120.0,
		NextBeatIn: 0.5,
	}
}
