package audio

import (
	"math"
	"time"

	"github.com/soundweave/choreo/dsp"
	"github.com/soundweave/choreo/logging"
)

// Analyzer turns raw frequency/time-domain buffers into a Frame once per
// rendering frame. All state is owned by the single caller; no method is
// safe for concurrent use.
type Analyzer struct {
	config AnalyzerConfig
	logger logging.Logger

	now       func() time.Time
	lastCall  time.Time
	hasCalled bool

	volume float64

	// Smoothed band state
	smoothBass    float64
	smoothMid     float64
	smoothTreble  float64
	smoothOverall float64

	// Beat detection
	beatWindow   *dsp.RingBuffer
	lastBeatTime time.Time
	hasBeat      bool

	// Tempo tracking
	intervals        *dsp.RingBuffer
	tempo            float64
	rhythmConfidence float64

	// Spectral dynamics
	prevSpectrum []float64
	smoothFlux   float64
	prevOverall  float64
	smoothOnset  float64

	// Momentum/acceleration
	momentum          float64
	prevSmoothOverall float64

	// Structural tension
	tensionFast float64
	tensionSlow float64

	// Modulation bus state
	bus ModulationBus

	// History rings for display/analysis
	loudnessHistory   *dsp.RingBuffer
	fluxHistory       *dsp.RingBuffer
	beatEnergyHistory *dsp.RingBuffer
}

// NewAnalyzer creates an analyzer with the given configuration
func NewAnalyzer(config AnalyzerConfig) *Analyzer {
	return &Analyzer{
		config:            config,
		logger:            logging.GetGlobalLogger().WithFields(logging.Fields{"component": "audio"}),
		now:               time.Now,
		volume:            1.0,
		tempo:             120.0,
		beatWindow:        dsp.NewRingBuffer(config.BeatWindow),
		intervals:         dsp.NewRingBuffer(config.IntervalWindow),
		loudnessHistory:   dsp.NewRingBuffer(config.HistoryCapacity),
		fluxHistory:       dsp.NewRingBuffer(config.HistoryCapacity),
		beatEnergyHistory: dsp.NewRingBuffer(config.HistoryCapacity),
	}
}

// SetVolume scales band energies; out-of-range values clamp silently
func (a *Analyzer) SetVolume(v float64) {
	a.volume = dsp.Clamp01(v)
}

// Reset clears all rolling state, returning the analyzer to its initial
// condition. Called when the audio source changes.
func (a *Analyzer) Reset() {
	a.hasCalled = false
	a.hasBeat = false
	a.smoothBass, a.smoothMid, a.smoothTreble, a.smoothOverall = 0, 0, 0, 0
	a.beatWindow.Clear()
	a.intervals.Clear()
	a.tempo = 120.0
	a.rhythmConfidence = 0
	a.prevSpectrum = nil
	a.smoothFlux = 0
	a.prevOverall = 0
	a.smoothOnset = 0
	a.momentum = 0
	a.prevSmoothOverall = 0
	a.tensionFast = 0
	a.tensionSlow = 0
	a.bus = ModulationBus{}
	a.loudnessHistory.Clear()
	a.fluxHistory.Clear()
	a.beatEnergyHistory.Clear()
	a.logger.Debug("analyzer state reset")
}

// AnalyzeSamples extracts features from a time-domain buffer alone,
// deriving the magnitude spectrum internally
func (a *Analyzer) AnalyzeSamples(timeDomain []float64) *Frame {
	return a.Analyze(dsp.MagnitudeSpectrum(timeDomain), timeDomain, nil)
}

// Analyze consumes one frame of frequency magnitudes and time-domain
// samples and returns a fresh feature snapshot. A nil stereo argument
// yields centered balance and zero width. Empty input degrades to the
// neutral frame rather than erroring.
func (a *Analyzer) Analyze(frequencyMagnitudes, timeDomainSamples []float64, stereo *StereoSamples) *Frame {
	nowTime := a.now()
	dt := 1.0 / 60.0
	if a.hasCalled {
		dt = dsp.Clamp(nowTime.Sub(a.lastCall).Seconds(), 1e-4, 0.25)
	}
	a.lastCall = nowTime
	a.hasCalled = true

	if len(frequencyMagnitudes) == 0 {
		return NeutralFrame()
	}

	frame := &Frame{Timestamp: nowTime}

	a.analyzeBands(frame, frequencyMagnitudes, dt)
	a.analyzePeak(frame, frequencyMagnitudes)
	a.analyzeFlux(frame, frequencyMagnitudes, dt)
	a.analyzeBeat(frame, nowTime, dt)
	a.analyzeTempo(frame, nowTime)
	a.analyzeHarmonics(frame, frequencyMagnitudes)
	a.analyzeStereo(frame, stereo)
	a.analyzeDynamics(frame, dt)
	a.updateBus(frame, dt)

	a.loudnessHistory.Push(frame.Overall)
	a.fluxHistory.Push(frame.SpectralFlux)
	a.beatEnergyHistory.Push(frame.BeatIntensity)

	a.prevOverall = frame.Overall
	return frame
}

// analyzeBands averages magnitude bins over the fixed Hz ranges and
// applies per-band gain and the master volume
func (a *Analyzer) analyzeBands(frame *Frame, magnitude []float64, dt float64) {
	nyquist := float64(a.config.SampleRate) / 2.0
	binHz := nyquist / float64(len(magnitude))

	frame.Bass = dsp.Clamp01(a.bandAverage(magnitude, BassLowHz, BassHighHz, binHz) * a.config.BassGain * a.volume)
	frame.Mid = dsp.Clamp01(a.bandAverage(magnitude, BassHighHz, MidHighHz, binHz) * a.config.MidGain * a.volume)
	frame.Treble = dsp.Clamp01(a.bandAverage(magnitude, MidHighHz, TrebleHighHz, binHz) * a.config.TrebleGain * a.volume)
	frame.Overall = (frame.Bass + frame.Mid + frame.Treble) / 3.0

	a.smoothBass = dsp.SmoothToward(a.smoothBass, frame.Bass, dt, a.config.BandTau)
	a.smoothMid = dsp.SmoothToward(a.smoothMid, frame.Mid, dt, a.config.BandTau)
	a.smoothTreble = dsp.SmoothToward(a.smoothTreble, frame.Treble, dt, a.config.BandTau)
	a.smoothOverall = dsp.SmoothToward(a.smoothOverall, frame.Overall, dt, a.config.BandTau)

	frame.SmoothBass = a.smoothBass
	frame.SmoothMid = a.smoothMid
	frame.SmoothTreble = a.smoothTreble
	frame.SmoothOverall = a.smoothOverall
}

func (a *Analyzer) bandAverage(magnitude []float64, lowHz, highHz, binHz float64) float64 {
	lo := int(lowHz / binHz)
	hi := int(highHz / binHz)
	if hi >= len(magnitude) {
		hi = len(magnitude) - 1
	}
	if lo > hi {
		return 0.0
	}
	sum := 0.0
	for i := lo; i <= hi; i++ {
		sum += magnitude[i]
	}
	return sum / float64(hi-lo+1)
}

// analyzePeak locates the strongest bin
func (a *Analyzer) analyzePeak(frame *Frame, magnitude []float64) {
	nyquist := float64(a.config.SampleRate) / 2.0
	binHz := nyquist / float64(len(magnitude))

	peakIdx := 0
	peakVal := 0.0
	for i, m := range magnitude {
		if m > peakVal {
			peakVal = m
			peakIdx = i
		}
	}
	frame.PeakFrequency = float64(peakIdx) * binHz
	frame.PeakIntensity = dsp.Clamp01(peakVal)
}

// analyzeFlux computes the mean positive frame-to-frame delta of the
// normalized spectrum, smoothed
func (a *Analyzer) analyzeFlux(frame *Frame, magnitude []float64, dt float64) {
	normalized := dsp.NormalizeSpectrum(magnitude)

	flux := 0.0
	if a.prevSpectrum != nil {
		n := min(len(normalized), len(a.prevSpectrum))
		for i := 0; i < n; i++ {
			d := normalized[i] - a.prevSpectrum[i]
			if d > 0 {
				flux += d
			}
		}
		if n > 0 {
			flux /= float64(n)
		}
	}
	a.prevSpectrum = normalized

	a.smoothFlux = dsp.SmoothToward(a.smoothFlux, dsp.Clamp01(flux*8.0), dt, a.config.FluxTau)
	frame.SpectralFlux = a.smoothFlux

	// Onset energy: positive overall delta blended with flux
	posDelta := math.Max(0, frame.Overall-a.prevOverall)
	onset := dsp.Clamp01(0.6*posDelta*8.0 + 0.4*frame.SpectralFlux)
	a.smoothOnset = dsp.SmoothToward(a.smoothOnset, onset, dt, a.config.FluxTau)
	frame.OnsetEnergy = a.smoothOnset
}

// analyzeBeat fires when overall energy exceeds the adaptive threshold
// (window mean + k*stddev) and the minimum spacing has elapsed
func (a *Analyzer) analyzeBeat(frame *Frame, nowTime time.Time, dt float64) {
	a.beatWindow.Push(frame.Overall)

	window := a.beatWindow.Snapshot()
	threshold := dsp.Mean(window) + a.config.BeatThresholdK*dsp.StdDev(window)

	sinceBeat := math.Inf(1)
	if a.hasBeat {
		sinceBeat = nowTime.Sub(a.lastBeatTime).Seconds()
	}

	if frame.Overall > threshold && sinceBeat >= a.config.MinBeatInterval && a.beatWindow.Len() >= 4 {
		frame.IsBeat = true
		frame.BeatIntensity = 1.0
		frame.TimeSinceBeat = 0.0

		if a.hasBeat && sinceBeat >= a.config.MinValidInterval && sinceBeat <= a.config.MaxValidInterval {
			a.intervals.Push(sinceBeat)
		}
		a.lastBeatTime = nowTime
		a.hasBeat = true
		return
	}

	if a.hasBeat {
		frame.TimeSinceBeat = sinceBeat
		frame.BeatIntensity = dsp.Clamp01(1.0 - sinceBeat/a.config.BeatDecayTime)
	}
}

// analyzeTempo derives BPM from the rolling inter-beat interval window and
// rhythm confidence from its inverted coefficient of variation
func (a *Analyzer) analyzeTempo(frame *Frame, nowTime time.Time) {
	if a.intervals.Len() >= 2 {
		ivs := a.intervals.Snapshot()
		mean := dsp.Mean(ivs)
		if mean > dsp.Epsilon {
			a.tempo = dsp.Clamp(60.0/mean, a.config.MinTempo, a.config.MaxTempo)
		}

		stability := dsp.Clamp01(1.0 - dsp.CoefficientOfVariation(ivs))
		// Blend toward the new stability estimate instead of replacing it
		a.rhythmConfidence += (stability - a.rhythmConfidence) * a.config.StabilityBlend
	}

	frame.Tempo = a.tempo
	frame.RhythmConfidence = dsp.Clamp01(a.rhythmConfidence)

	beatPeriod := 60.0 / a.tempo
	if a.hasBeat {
		elapsed := nowTime.Sub(a.lastBeatTime).Seconds()
		frame.TempoPhase = math.Mod(elapsed/beatPeriod, 1.0)
	}
	frame.NextBeatIn = (1.0 - frame.TempoPhase) * beatPeriod

	// Anticipation rises through the last 40% of the beat cycle, scaled by
	// how much the rhythm can be trusted
	frame.Anticipation = dsp.Clamp01((frame.TempoPhase-0.6)/0.4) * frame.RhythmConfidence
}

// analyzeHarmonics samples magnitude near integer multiples of the peak
// bin and compares against total spectral energy
func (a *Analyzer) analyzeHarmonics(frame *Frame, magnitude []float64) {
	peakIdx := 0
	peakVal := 0.0
	total := 0.0
	for i, m := range magnitude {
		total += m
		if m > peakVal {
			peakVal = m
			peakIdx = i
		}
	}
	if peakIdx == 0 || total < dsp.Epsilon {
		return
	}

	harmonicSum := 0.0
	for h := 2; h <= a.config.MaxHarmonics; h++ {
		idx := peakIdx * h
		if idx >= len(magnitude) {
			break
		}
		// +-1 bin tolerance around the exact multiple
		best := magnitude[idx]
		if idx > 0 && magnitude[idx-1] > best {
			best = magnitude[idx-1]
		}
		if idx+1 < len(magnitude) && magnitude[idx+1] > best {
			best = magnitude[idx+1]
		}
		harmonicSum += best
	}

	// The fundamental itself stays out of the numerator; the ratio
	// measures energy at the 2x-6x multiples against the whole spectrum
	frame.HarmonicEnergy = dsp.Clamp01(harmonicSum)
	frame.HarmonicRatio = dsp.Clamp01(harmonicSum / (total + dsp.Epsilon))
}

// analyzeStereo derives balance from channel energy difference and width
// from inverted cross-correlation of the two time-domain buffers
func (a *Analyzer) analyzeStereo(frame *Frame, stereo *StereoSamples) {
	if stereo == nil || len(stereo.Left) == 0 || len(stereo.Right) == 0 {
		return
	}

	sumL, sumR := 0.0, 0.0
	for _, s := range stereo.Left {
		sumL += math.Abs(s)
	}
	for _, s := range stereo.Right {
		sumR += math.Abs(s)
	}
	frame.StereoBalance = dsp.Clamp((sumR-sumL)/(sumL+sumR+dsp.Epsilon), -1.0, 1.0)

	n := min(len(stereo.Left), len(stereo.Right))
	corr := dsp.Correlation(stereo.Left[:n], stereo.Right[:n])
	frame.StereoWidth = dsp.Clamp01(1.0 - math.Abs(corr))
}

// analyzeDynamics computes momentum, acceleration, groove, and the slow
// structural tension tracker that drives Swell/Release gestures
func (a *Analyzer) analyzeDynamics(frame *Frame, dt float64) {
	rawMomentum := dsp.Clamp((frame.SmoothOverall-a.prevSmoothOverall)/math.Max(dt, 1e-3)*2.0, -1.0, 1.0)
	a.prevSmoothOverall = frame.SmoothOverall
	prevMomentum := a.momentum
	a.momentum = dsp.SmoothToward(a.momentum, rawMomentum, dt, a.config.MomentumTau)
	frame.Momentum = a.momentum
	frame.Acceleration = dsp.Clamp((a.momentum-prevMomentum)/math.Max(dt, 1e-3), -1.0, 1.0)

	// Groove: rhythmic feel from confidence, beat drive, bass weight, flux
	frame.GrooveIndex = dsp.Clamp01(
		0.35*frame.RhythmConfidence +
			0.25*frame.BeatIntensity +
			0.20*frame.SmoothBass +
			0.20*frame.SpectralFlux)

	// Tension: divergence of a fast onset tracker above a slow one means a
	// build is underway; below it, a release
	a.tensionFast = dsp.SmoothToward(a.tensionFast, frame.OnsetEnergy, dt, a.config.TensionFastTau)
	a.tensionSlow = dsp.SmoothToward(a.tensionSlow, frame.OnsetEnergy, dt, a.config.TensionSlowTau)

	diff := a.tensionFast - a.tensionSlow
	frame.Tension = dsp.Clamp01(0.5 + diff*2.5)
	frame.TensionBuilding = diff > 0.05
	frame.TensionReleasing = diff < -0.05
}

// updateBus recomputes the eight modulation targets and smooths each
// toward its target with its configured time constant
func (a *Analyzer) updateBus(frame *Frame, dt float64) {
	// Per-signal target formulas:
	//   pulse       = 0.7*beatIntensity + 0.3*onset
	//   flow        = 0.5*smoothOverall + 0.5*(1-flux)
	//   shimmer     = 0.6*smoothTreble + 0.4*harmonicRatio
	//   warp        = 0.5*|momentum| + 0.5*flux
	//   density     = 0.5*smoothOverall + 0.5*smoothMid
	//   aura        = 0.5*harmonicRatio + 0.5*stereoWidth
	//   containment = 0.6*rhythmConfidence + 0.4*(1-flux)
	//   sway        = 0.5 + 0.5*stereoBalance*groove
	a.bus.Pulse = a.smoothBusSignal(a.bus.Pulse,
		dsp.Clamp01(0.7*frame.BeatIntensity+0.3*frame.OnsetEnergy), "pulse", dt)
	a.bus.Flow = a.smoothBusSignal(a.bus.Flow,
		dsp.Clamp01(0.5*frame.SmoothOverall+0.5*(1.0-frame.SpectralFlux)), "flow", dt)
	a.bus.Shimmer = a.smoothBusSignal(a.bus.Shimmer,
		dsp.Clamp01(0.6*frame.SmoothTreble+0.4*frame.HarmonicRatio), "shimmer", dt)
	a.bus.Warp = a.smoothBusSignal(a.bus.Warp,
		dsp.Clamp01(0.5*math.Abs(frame.Momentum)+0.5*frame.SpectralFlux), "warp", dt)
	a.bus.Density = a.smoothBusSignal(a.bus.Density,
		dsp.Clamp01(0.5*frame.SmoothOverall+0.5*frame.SmoothMid), "density", dt)
	a.bus.Aura = a.smoothBusSignal(a.bus.Aura,
		dsp.Clamp01(0.5*frame.HarmonicRatio+0.5*frame.StereoWidth), "aura", dt)
	a.bus.Containment = a.smoothBusSignal(a.bus.Containment,
		dsp.Clamp01(0.6*frame.RhythmConfidence+0.4*(1.0-frame.SpectralFlux)), "containment", dt)
	a.bus.Sway = a.smoothBusSignal(a.bus.Sway,
		dsp.Clamp01(0.5+0.5*frame.StereoBalance*frame.GrooveIndex), "sway", dt)

	frame.Bus = a.bus
}

func (a *Analyzer) smoothBusSignal(current, target float64, name string, dt float64) float64 {
	tau := a.config.BusTau
	if override, ok := a.config.BusTauOverrides[name]; ok && override > 0 {
		tau = override
	}
	return dsp.SmoothToward(current, target, dt, tau)
}

// LoudnessHistory returns the recent overall-energy history oldest-first
func (a *Analyzer) LoudnessHistory() []float64 {
	return a.loudnessHistory.Snapshot()
}

// FluxHistory returns the recent spectral-flux history oldest-first
func (a *Analyzer) FluxHistory() []float64 {
	return a.fluxHistory.Snapshot()
}

// BeatEnergyHistory returns the recent beat-intensity history oldest-first
func (a *Analyzer) BeatEnergyHistory() []float64 {
	return a.beatEnergyHistory.Snapshot()
}
