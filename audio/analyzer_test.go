package audio

import (
	"math"
	"testing"
	"time"
)

// flatSpectrum returns a magnitude spectrum whose band averages all equal v
func flatSpectrum(v float64, bins int) []float64 {
	spectrum := make([]float64, bins)
	for i := range spectrum {
		spectrum[i] = v
	}
	return spectrum
}

// fakeClock steps a fixed interval per Analyze call
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestAnalyzer(step time.Duration) (*Analyzer, *fakeClock) {
	a := NewAnalyzer(DefaultAnalyzerConfig())
	clock := &fakeClock{t: time.Unix(0, 0), step: step}
	a.now = clock.now
	return a, clock
}

func TestAnalyzeEmptyInputYieldsNeutralFrame(t *testing.T) {
	a, _ := newTestAnalyzer(16 * time.Millisecond)

	frame := a.Analyze(nil, nil, nil)
	if frame.IsBeat {
		t.Error("neutral frame IsBeat = true, want false")
	}
	if frame.Overall != 0 {
		t.Errorf("neutral frame Overall = %v, want 0", frame.Overall)
	}
	if frame.Tempo != 120.0 {
		t.Errorf("neutral frame Tempo = %v, want 120", frame.Tempo)
	}
}

func TestBeatDetectionPeriodicSignal(t *testing.T) {
	// Spike 0.9 / baseline 0.1 at 0.5s period, 100ms frames: beats must
	// fire only on spike frames and tempo must converge to 120 BPM.
	a, _ := newTestAnalyzer(100 * time.Millisecond)

	var beatFrames []int
	var lastFrame *Frame
	for i := 0; i < 50; i++ {
		level := 0.1
		if i%5 == 0 {
			level = 0.9
		}
		lastFrame = a.Analyze(flatSpectrum(level, 512), nil, nil)
		if lastFrame.IsBeat {
			if i%5 != 0 {
				t.Errorf("beat fired on baseline frame %d", i)
			}
			beatFrames = append(beatFrames, i)
		}
	}

	if len(beatFrames) < 6 {
		t.Fatalf("detected %d beats, want at least 6", len(beatFrames))
	}
	for i := 1; i < len(beatFrames); i++ {
		if spacing := beatFrames[i] - beatFrames[i-1]; spacing < 1 {
			t.Errorf("beats %d and %d closer than min interval", beatFrames[i-1], beatFrames[i])
		}
	}

	if math.Abs(lastFrame.Tempo-120.0) > 120.0*0.05 {
		t.Errorf("Tempo = %v, want 120 +-5%%", lastFrame.Tempo)
	}
	if lastFrame.RhythmConfidence < 0.5 {
		t.Errorf("RhythmConfidence = %v, want > 0.5 for a metronomic signal", lastFrame.RhythmConfidence)
	}
}

func TestBeatIntensityDecaysBetweenBeats(t *testing.T) {
	a, _ := newTestAnalyzer(100 * time.Millisecond)

	var intensities []float64
	for i := 0; i < 10; i++ {
		level := 0.1
		if i == 4 {
			level = 0.9
		}
		frame := a.Analyze(flatSpectrum(level, 512), nil, nil)
		intensities = append(intensities, frame.BeatIntensity)
	}

	if intensities[4] != 1.0 {
		t.Fatalf("BeatIntensity on beat = %v, want 1.0", intensities[4])
	}
	for i := 5; i < 9; i++ {
		if intensities[i] >= intensities[i-1] {
			t.Errorf("BeatIntensity[%d] = %v, not decaying from %v", i, intensities[i], intensities[i-1])
		}
	}
}

func TestBandEnergiesClamped(t *testing.T) {
	a, _ := newTestAnalyzer(16 * time.Millisecond)

	frame := a.Analyze(flatSpectrum(5.0, 512), nil, nil)
	for name, v := range map[string]float64{
		"Bass": frame.Bass, "Mid": frame.Mid, "Treble": frame.Treble, "Overall": frame.Overall,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v, want within [0,1]", name, v)
		}
	}
}

func TestStereoWidthAndBalance(t *testing.T) {
	a, _ := newTestAnalyzer(16 * time.Millisecond)

	// Identical channels: fully correlated, centered
	n := 256
	left := make([]float64, n)
	right := make([]float64, n)
	for i := 0; i < n; i++ {
		left[i] = math.Sin(float64(i) * 0.3)
		right[i] = left[i]
	}
	frame := a.Analyze(flatSpectrum(0.3, 512), left, &StereoSamples{Left: left, Right: right})
	if frame.StereoWidth > 0.05 {
		t.Errorf("StereoWidth for identical channels = %v, want ~0", frame.StereoWidth)
	}
	if math.Abs(frame.StereoBalance) > 0.05 {
		t.Errorf("StereoBalance for identical channels = %v, want ~0", frame.StereoBalance)
	}

	// Right-heavy signal
	quiet := make([]float64, n)
	frame = a.Analyze(flatSpectrum(0.3, 512), right, &StereoSamples{Left: quiet, Right: right})
	if frame.StereoBalance < 0.5 {
		t.Errorf("StereoBalance for right-only signal = %v, want > 0.5", frame.StereoBalance)
	}
}

func TestHarmonicRatioFavorsHarmonicSpectrum(t *testing.T) {
	a, _ := newTestAnalyzer(16 * time.Millisecond)

	// Peak at bin 20 with energy at integer multiples
	harmonic := make([]float64, 512)
	for h := 1; h <= 5; h++ {
		harmonic[20*h] = 1.0 / float64(h)
	}
	hFrame := a.Analyze(harmonic, nil, nil)

	a.Reset()
	nFrame := a.Analyze(flatSpectrum(0.3, 512), nil, nil)

	if hFrame.HarmonicRatio <= nFrame.HarmonicRatio {
		t.Errorf("HarmonicRatio harmonic=%v flat=%v, want harmonic > flat",
			hFrame.HarmonicRatio, nFrame.HarmonicRatio)
	}
}

func TestHarmonicRatioExcludesFundamental(t *testing.T) {
	a, _ := newTestAnalyzer(16 * time.Millisecond)

	// A lone peak with silent multiples carries no harmonic energy
	lone := make([]float64, 512)
	lone[20] = 1.0
	frame := a.Analyze(lone, nil, nil)

	if frame.HarmonicRatio > 1e-9 {
		t.Errorf("HarmonicRatio for a lone fundamental = %v, want 0", frame.HarmonicRatio)
	}
}

func TestHistoriesBounded(t *testing.T) {
	cfg := DefaultAnalyzerConfig()
	cfg.HistoryCapacity = 16
	a := NewAnalyzer(cfg)
	clock := &fakeClock{t: time.Unix(0, 0), step: 16 * time.Millisecond}
	a.now = clock.now

	for i := 0; i < 40; i++ {
		a.Analyze(flatSpectrum(0.4, 512), nil, nil)
	}
	if got := len(a.LoudnessHistory()); got != 16 {
		t.Errorf("LoudnessHistory len = %d, want 16", got)
	}
	if got := len(a.FluxHistory()); got != 16 {
		t.Errorf("FluxHistory len = %d, want 16", got)
	}
}

func TestSetVolumeClamps(t *testing.T) {
	a, _ := newTestAnalyzer(16 * time.Millisecond)

	a.SetVolume(3.0)
	if a.volume != 1.0 {
		t.Errorf("volume after SetVolume(3.0) = %v, want 1.0", a.volume)
	}
	a.SetVolume(-1.0)
	if a.volume != 0.0 {
		t.Errorf("volume after SetVolume(-1.0) = %v, want 0.0", a.volume)
	}
}
