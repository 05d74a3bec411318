package audio

// Band frequency ranges in Hz
const (
	BassLowHz    = 20.0
	BassHighHz   = 250.0
	MidHighHz    = 4000.0
	TrebleHighHz = 20000.0
)

// AnalyzerConfig configures per-frame feature extraction
type AnalyzerConfig struct {
	SampleRate int `json:"sample_rate"`

	// Per-band input gain applied before clamping
	BassGain   float64 `json:"bass_gain"`
	MidGain    float64 `json:"mid_gain"`
	TrebleGain float64 `json:"treble_gain"`

	// Beat detection
	BeatWindow      int     `json:"beat_window"`       // rolling overall-energy window
	BeatThresholdK  float64 `json:"beat_threshold_k"`  // threshold = mean + k*stddev
	MinBeatInterval float64 `json:"min_beat_interval"` // seconds between beats
	BeatDecayTime   float64 `json:"beat_decay_time"`   // linear intensity decay span

	// Tempo tracking
	IntervalWindow   int     `json:"interval_window"`    // rolling inter-beat intervals
	MinValidInterval float64 `json:"min_valid_interval"` // seconds
	MaxValidInterval float64 `json:"max_valid_interval"` // seconds
	MinTempo         float64 `json:"min_tempo"`          // BPM clamp floor
	MaxTempo         float64 `json:"max_tempo"`          // BPM clamp ceiling
	StabilityBlend   float64 `json:"stability_blend"`    // per-update confidence blend

	// Smoothing time constants, seconds
	BandTau        float64 `json:"band_tau"`
	FluxTau        float64 `json:"flux_tau"`
	MomentumTau    float64 `json:"momentum_tau"`
	TensionFastTau float64 `json:"tension_fast_tau"`
	TensionSlowTau float64 `json:"tension_slow_tau"`
	BusTau         float64 `json:"bus_tau"` // global default for bus signals

	// Per-signal bus overrides; zero entries fall back to BusTau
	BusTauOverrides map[string]float64 `json:"bus_tau_overrides,omitempty"`

	// Harmonic analysis
	MaxHarmonics int `json:"max_harmonics"` // integer multiples of the peak bin

	// History ring capacity (loudness, flux, beat energy)
	HistoryCapacity int `json:"history_capacity"`
}

// DefaultAnalyzerConfig returns the tuned defaults
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		SampleRate:       44100,
		BassGain:         1.0,
		MidGain:          1.0,
		TrebleGain:       1.0,
		BeatWindow:       96,
		BeatThresholdK:   1.5,
		MinBeatInterval:  0.1,
		BeatDecayTime:    1.0,
		IntervalWindow:   32,
		MinValidInterval: 0.15,
		MaxValidInterval: 2.5,
		MinTempo:         40.0,
		MaxTempo:         200.0,
		StabilityBlend:   0.35,
		BandTau:          0.12,
		FluxTau:          0.15,
		MomentumTau:      0.3,
		TensionFastTau:   0.5,
		TensionSlowTau:   4.0,
		BusTau:           0.2,
		MaxHarmonics:     6,
		HistoryCapacity:  120,
	}
}
