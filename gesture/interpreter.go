package gesture

import (
	"math"
	"sort"
	"time"

	"github.com/soundweave/choreo/audio"
	"github.com/soundweave/choreo/dsp"
)

// BlendMode describes how concurrent gesture outputs combine downstream
type BlendMode int

const (
	BlendReplace BlendMode = iota
	BlendAdditive
	BlendMultiplicative
)

func (m BlendMode) String() string {
	switch m {
	case BlendAdditive:
		return "additive"
	case BlendMultiplicative:
		return "multiplicative"
	default:
		return "replace"
	}
}

// Instance is a live, aging gesture spawned by the interpreter. It is
// removed once Phase reaches 1.
type Instance struct {
	Type      Type      `json:"type"`
	Params    Params    `json:"params"`
	StartTime time.Time `json:"start_time"`
	Duration  float64   `json:"duration"` // seconds, clamped [0.1, 4.0]
	Priority  float64   `json:"priority"` // 0-1
	Intensity float64   `json:"intensity"`
	Phase     float64   `json:"phase"`  // elapsed/duration
	Weight    float64   `json:"weight"` // recomputed every frame
}

// Result is the per-frame interpreter output consumed by the force
// evaluator
type Result struct {
	Primary   *Instance
	Secondary []*Instance
	Mode      BlendMode
}

// InterpreterConfig tunes instance lifecycle and blending
type InterpreterConfig struct {
	MaxActive   int     `json:"max_active"`   // live instance cap K
	MinSpacing  float64 `json:"min_spacing"`  // global retrigger floor, seconds
	FadePortion float64 `json:"fade_portion"` // fade-in/out fraction of duration
	MinDuration float64 `json:"min_duration"`
	MaxDuration float64 `json:"max_duration"`
}

// DefaultInterpreterConfig returns the tuned defaults
func DefaultInterpreterConfig() InterpreterConfig {
	return InterpreterConfig{
		MaxActive:   3,
		MinSpacing:  0.05,
		FadePortion: 0.1,
		MinDuration: 0.1,
		MaxDuration: 4.0,
	}
}

// triggerOrder is the fixed per-frame evaluation priority
var triggerOrder = [NumTypes]Type{Attack, Swell, Release, Accent, Sustain, Breath}

// Interpreter detects trigger conditions on the audio frame and manages
// the live instance set. Single-owner, frame-driven; not safe for
// concurrent use.
type Interpreter struct {
	config InterpreterConfig

	now       func() time.Time
	instances []*Instance

	lastTrigger  [NumTypes]time.Time
	hasTriggered [NumTypes]bool

	// Macro-derived per-type influence; 1.0 means neutral
	influence [NumTypes]float64
}

// NewInterpreter creates an interpreter with the given configuration
func NewInterpreter(config InterpreterConfig) *Interpreter {
	in := &Interpreter{
		config: config,
		now:    time.Now,
	}
	for i := range in.influence {
		in.influence[i] = 1.0
	}
	return in
}

// SetInfluence installs macro-derived per-type weights. Values clamp to
// [0,1]; a weight near zero suppresses that gesture type entirely.
func (in *Interpreter) SetInfluence(weights [NumTypes]float64) {
	for i, w := range weights {
		in.influence[i] = dsp.Clamp01(w)
	}
}

// Instances returns the current live set, highest weight first
func (in *Interpreter) Instances() []*Instance {
	return in.instances
}

// Update runs one frame: trigger detection in fixed priority order,
// instance aging, truncation to the top K, and weight renormalization.
func (in *Interpreter) Update(frame *audio.Frame) Result {
	nowTime := in.now()

	for _, t := range triggerOrder {
		if in.shouldTrigger(t, frame, nowTime) {
			in.spawn(t, in.paramsFromFrame(frame), in.intensityFor(t, frame), nowTime)
		}
	}

	in.age(nowTime)
	in.reweight()

	return in.result(frame)
}

// TriggerManual spawns a gesture directly, bypassing audio predicates but
// honoring the global retrigger floor. Used for user commands and
// sequence playback injection.
func (in *Interpreter) TriggerManual(t Type, params Params, intensity float64) bool {
	if t < 0 || t >= NumTypes {
		return false
	}
	nowTime := in.now()
	if in.hasTriggered[t] && nowTime.Sub(in.lastTrigger[t]).Seconds() < in.config.MinSpacing {
		return false
	}
	in.spawn(t, params, dsp.Clamp01(intensity), nowTime)
	return true
}

func (in *Interpreter) shouldTrigger(t Type, frame *audio.Frame, nowTime time.Time) bool {
	if in.influence[t] < 0.05 {
		return false
	}
	if in.hasTriggered[t] {
		elapsed := nowTime.Sub(in.lastTrigger[t]).Seconds()
		if elapsed < in.config.MinSpacing || elapsed < in.typeSpacing(t, frame) {
			return false
		}
	}

	switch t {
	case Attack:
		return frame.OnsetEnergy > 0.7 && frame.IsBeat
	case Swell:
		return frame.TensionBuilding && frame.Anticipation > 0.6 && !in.isActive(Swell)
	case Release:
		return frame.TensionReleasing && !in.isActive(Release)
	case Accent:
		return frame.NextBeatIn >= 0 && frame.NextBeatIn <= 0.2 &&
			frame.RhythmConfidence > 0.3 && !in.isActive(Accent)
	case Sustain:
		return frame.Overall > 0.5 && frame.SpectralFlux < 0.3 && !in.isActive(Sustain)
	case Breath:
		return frame.GrooveIndex > 0.6 && frame.RhythmConfidence > 0.7
	default:
		return false
	}
}

// typeSpacing returns per-type minimum spacing beyond the global floor.
// Breath is paced by a four-beat cycle at the current tempo.
func (in *Interpreter) typeSpacing(t Type, frame *audio.Frame) float64 {
	if t == Breath {
		tempo := math.Max(frame.Tempo, 1.0)
		return 4.0 * 60.0 / tempo
	}
	return in.config.MinSpacing
}

func (in *Interpreter) isActive(t Type) bool {
	for _, inst := range in.instances {
		if inst.Type == t {
			return true
		}
	}
	return false
}

func (in *Interpreter) intensityFor(t Type, frame *audio.Frame) float64 {
	switch t {
	case Attack:
		return dsp.Clamp01(frame.OnsetEnergy)
	case Swell:
		return dsp.Clamp01(frame.Tension)
	case Release:
		return dsp.Clamp01(1.0 - frame.Tension)
	case Accent:
		return dsp.Clamp01(0.5 + 0.5*frame.RhythmConfidence)
	case Sustain:
		return dsp.Clamp01(frame.SmoothOverall)
	case Breath:
		return dsp.Clamp01(frame.GrooveIndex)
	default:
		return 0.5
	}
}

func (in *Interpreter) paramsFromFrame(frame *audio.Frame) Params {
	p := DefaultParams()
	p.Tempo = frame.Tempo
	// Lean the epicenter toward the louder stereo side
	p.Epicenter.X = frame.StereoBalance * 0.5
	p.Radius = 1.0 + frame.SmoothOverall
	return p
}

func (in *Interpreter) spawn(t Type, params Params, intensity float64, nowTime time.Time) {
	def := DefinitionFor(t)

	duration := def.BaseDuration
	switch t {
	case Attack:
		duration *= 1.0 - 0.3*intensity // harder hits snap faster
	case Swell, Sustain:
		duration *= 1.0 + 0.5*intensity
	case Breath:
		tempo := math.Max(params.Tempo, 1.0)
		duration = 4.0 * 60.0 / tempo
	}
	duration = dsp.Clamp(duration, in.config.MinDuration, in.config.MaxDuration)

	priority := dsp.Clamp01((def.BasePriority + 0.1*intensity) * in.influence[t])

	in.instances = append(in.instances, &Instance{
		Type:      t,
		Params:    params,
		StartTime: nowTime,
		Duration:  duration,
		Priority:  priority,
		Intensity: intensity,
	})

	in.lastTrigger[t] = nowTime
	in.hasTriggered[t] = true
}

// age advances phases and drops completed instances
func (in *Interpreter) age(nowTime time.Time) {
	live := in.instances[:0]
	for _, inst := range in.instances {
		inst.Phase = nowTime.Sub(inst.StartTime).Seconds() / inst.Duration
		if inst.Phase < 1.0 {
			live = append(live, inst)
		}
	}
	in.instances = live
}

// reweight sorts by priority, truncates to the top K, and assigns blend
// weights: priority share times the fade envelope, renormalized to sum 1
func (in *Interpreter) reweight() {
	sort.SliceStable(in.instances, func(i, j int) bool {
		return in.instances[i].Priority > in.instances[j].Priority
	})
	if len(in.instances) > in.config.MaxActive {
		in.instances = in.instances[:in.config.MaxActive]
	}
	if len(in.instances) == 0 {
		return
	}

	totalPriority := 0.0
	for _, inst := range in.instances {
		totalPriority += inst.Priority
	}
	if totalPriority < dsp.Epsilon {
		totalPriority = float64(len(in.instances))
	}

	totalWeight := 0.0
	for _, inst := range in.instances {
		inst.Weight = (inst.Priority / totalPriority) * in.fadeEnvelope(inst.Phase)
		totalWeight += inst.Weight
	}

	if totalWeight < dsp.Epsilon {
		// Every instance is deep in a fade; fall back to equal shares so
		// weights still sum to 1
		for _, inst := range in.instances {
			inst.Weight = 1.0 / float64(len(in.instances))
		}
		return
	}
	for _, inst := range in.instances {
		inst.Weight /= totalWeight
	}
}

// fadeEnvelope is linear over the first and last FadePortion of phase
func (in *Interpreter) fadeEnvelope(phase float64) float64 {
	f := in.config.FadePortion
	if f <= 0 {
		return 1.0
	}
	if phase < f {
		return phase / f
	}
	if phase > 1.0-f {
		return (1.0 - phase) / f
	}
	return 1.0
}

func (in *Interpreter) result(frame *audio.Frame) Result {
	res := Result{Mode: blendModeFor(frame)}
	if len(in.instances) == 0 {
		return res
	}

	best := in.instances[0]
	for _, inst := range in.instances[1:] {
		if inst.Weight > best.Weight {
			best = inst
		}
	}
	res.Primary = best
	for _, inst := range in.instances {
		if inst != best {
			res.Secondary = append(res.Secondary, inst)
		}
	}
	return res
}

// blendModeFor derives the downstream combination mode from the frame:
// additive for loud busy passages, multiplicative for harmonic steady
// ones, replace otherwise
func blendModeFor(frame *audio.Frame) BlendMode {
	if frame.Overall > 0.6 && frame.SpectralFlux > 0.5 {
		return BlendAdditive
	}
	if frame.HarmonicRatio > 0.6 && frame.SpectralFlux < 0.3 {
		return BlendMultiplicative
	}
	return BlendReplace
}
