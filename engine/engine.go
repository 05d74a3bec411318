// Package engine owns all choreography components and drives them in a
// fixed per-frame order.
package engine

import (
	"context"
	"fmt"

	"github.com/soundweave/choreo/audio"
	"github.com/soundweave/choreo/ensemble"
	"github.com/soundweave/choreo/geom"
	"github.com/soundweave/choreo/gesture"
	"github.com/soundweave/choreo/logging"
	"github.com/soundweave/choreo/macromod"
	"github.com/soundweave/choreo/personality"
	"github.com/soundweave/choreo/sequence"
	"github.com/soundweave/choreo/spatial"
)

// Config aggregates every component configuration
type Config struct {
	Audio       audio.AnalyzerConfig      `json:"audio"`
	Gesture     gesture.InterpreterConfig `json:"gesture"`
	Ensemble    ensemble.Config           `json:"ensemble"`
	Personality personality.EngineConfig  `json:"personality"`
	Spatial     spatial.ComposerConfig    `json:"spatial"`
	Macro       macromod.SystemConfig     `json:"macro"`

	// Let the global archetype track audio energy automatically
	AutoAdaptPersonality bool `json:"auto_adapt_personality"`
}

// DefaultConfig returns the tuned defaults for every component
func DefaultConfig() Config {
	return Config{
		Audio:       audio.DefaultAnalyzerConfig(),
		Gesture:     gesture.DefaultInterpreterConfig(),
		Ensemble:    ensemble.DefaultConfig(),
		Personality: personality.DefaultEngineConfig(),
		Spatial:     spatial.DefaultComposerConfig(),
		Macro:       macromod.DefaultSystemConfig(),
	}
}

// Output is the aggregated per-frame result consumed by the force
// evaluator and the UI. Slices alias engine-owned storage and are valid
// until the next Update.
type Output struct {
	Frame     *audio.Frame
	Gestures  gesture.Result
	Formation ensemble.FormationState
	Section   ensemble.Section
	Roles     []ensemble.RoleAssignment
	Traits    []personality.Assignment
}

// Engine is the single-owner context for the whole subsystem. All
// mutation happens inside Update and the command methods, from one
// goroutine.
type Engine struct {
	config Config
	logger logging.Logger

	analyzer      *audio.Analyzer
	macros        *macromod.System
	interpreter   *gesture.Interpreter
	choreographer *ensemble.Choreographer
	personalities *personality.Engine
	composer      *spatial.Composer
	recorder      *sequence.Recorder
	player        *sequence.Player

	source       Source
	sourceCancel context.CancelFunc

	playbackQueue []sequence.Event

	lastFrame  *audio.Frame
	lastCamera geom.Pose
}

// New creates an engine with every component initialized
func New(config Config) *Engine {
	return &Engine{
		config:        config,
		logger:        logging.GetGlobalLogger().WithFields(logging.Fields{"component": "engine"}),
		analyzer:      audio.NewAnalyzer(config.Audio),
		macros:        macromod.NewSystem(config.Macro),
		interpreter:   gesture.NewInterpreter(config.Gesture),
		choreographer: ensemble.NewChoreographer(config.Ensemble),
		personalities: personality.NewEngine(config.Personality),
		composer:      spatial.NewComposer(config.Spatial),
		recorder:      sequence.NewRecorder(),
		player:        sequence.NewPlayer(),
		lastFrame:     audio.NeutralFrame(),
	}
}

// SetSource swaps the audio source, releasing the previous one. The
// other components keep running; frames stay neutral until the new
// source produces data.
func (e *Engine) SetSource(ctx context.Context, src Source) error {
	if e.source != nil {
		e.sourceCancel()
		if err := e.source.Stop(); err != nil {
			e.logger.Warn("stopping previous source", logging.Fields{"error": err.Error()})
		}
		e.source = nil
		e.sourceCancel = nil
		e.analyzer.Reset()
	}
	if src == nil {
		return nil
	}

	srcCtx, cancel := context.WithCancel(ctx)
	if err := src.Start(srcCtx); err != nil {
		cancel()
		return fmt.Errorf("starting audio source: %w", err)
	}
	e.source = src
	e.sourceCancel = cancel
	e.logger.Info("audio source attached")
	return nil
}

// Close releases the audio source
func (e *Engine) Close() error {
	return e.SetSource(context.Background(), nil)
}

// Update runs one frame in the fixed component order and returns the
// aggregated output
func (e *Engine) Update(positions, velocities []geom.Vec3, camera geom.Pose, dt float64) Output {
	frame := e.analyzeSource()
	e.lastFrame = frame
	e.lastCamera = camera

	// Playback injection happens before the components read their
	// influence weights for this frame
	e.playbackQueue = e.player.Update(dt, e.playbackQueue[:0])
	for _, ev := range e.playbackQueue {
		e.applyEvent(ev)
	}

	e.macros.Update(dt)
	state := e.macros.ComputeState()
	e.interpreter.SetInfluence(state.GestureInfluence)
	e.personalities.SetInfluence(state.ArchetypeWeights)

	gestures := e.interpreter.Update(frame)

	e.choreographer.UpdateRoles(positions, velocities, camera, frame)
	e.choreographer.Update(frame, dt)

	e.personalities.Update(e.choreographer.Assignments(), frame)
	if e.config.AutoAdaptPersonality {
		e.personalities.AutoAdapt(frame)
	}

	return Output{
		Frame:     frame,
		Gestures:  gestures,
		Formation: e.choreographer.Formation(),
		Section:   e.choreographer.Section(),
		Roles:     e.choreographer.Assignments(),
		Traits:    e.personalities.Assignments(),
	}
}

// analyzeSource polls the source for the latest buffers, falling back to
// the neutral frame while none are available
func (e *Engine) analyzeSource() *audio.Frame {
	if e.source == nil {
		return audio.NeutralFrame()
	}
	frequencies, samples, stereo, ok := e.source.Read()
	if !ok {
		return audio.NeutralFrame()
	}
	if len(frequencies) == 0 && len(samples) > 0 {
		return e.analyzer.AnalyzeSamples(samples)
	}
	return e.analyzer.Analyze(frequencies, samples, stereo)
}

// Modulation returns the spatial modulation for one entity against the
// camera and frame of the last Update
func (e *Engine) Modulation(idx int, pos geom.Vec3) spatial.Modulation {
	return e.composer.Modulation(idx, pos, e.choreographer.RoleOf(idx), e.lastCamera, e.lastFrame)
}

// InvalidateSpatial drops the spatial cache after wholesale entity
// position replacement
func (e *Engine) InvalidateSpatial() {
	e.composer.Invalidate()
}

// applyEvent injects one playback event directly into the target
// component, bypassing the command wrappers so it is not re-recorded
func (e *Engine) applyEvent(ev sequence.Event) {
	switch ev.Kind {
	case sequence.KindGesture:
		if t, ok := gesture.TypeFromString(ev.Gesture); ok {
			e.interpreter.TriggerManual(t, gesture.DefaultParams(), ev.Intensity)
		}
	case sequence.KindMacro:
		if m, ok := macromod.MacroFromString(ev.Macro); ok {
			e.macros.Set(m, ev.Value)
		}
	case sequence.KindPersonality:
		if a, ok := personality.ArchetypeFromString(ev.Archetype); ok {
			e.personalities.SetGlobal(a)
		}
	case sequence.KindFormation:
		if f, ok := ensemble.FormationTypeFromString(ev.Formation); ok {
			e.forceFormation(f)
		}
	}
}

func (e *Engine) forceFormation(f ensemble.FormationType) {
	target := e.choreographer.Formation()
	target.Type = f
	e.choreographer.TransitionTo(target)
}
