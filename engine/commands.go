package engine

import (
	"fmt"

	"github.com/soundweave/choreo/ensemble"
	"github.com/soundweave/choreo/gesture"
	"github.com/soundweave/choreo/logging"
	"github.com/soundweave/choreo/macromod"
	"github.com/soundweave/choreo/personality"
	"github.com/soundweave/choreo/sequence"
)

// SetMacro installs a macro target, clamped to [0,1], and records the
// change when a recording is active
func (e *Engine) SetMacro(m macromod.Macro, value float64) {
	e.macros.Set(m, value)
	e.recorder.RecordMacro(m, e.macros.Target(m))
}

// MacroValue returns the current smoothed value of one macro
func (e *Engine) MacroValue(m macromod.Macro) float64 {
	return e.macros.Value(m)
}

// ApplyPreset installs a named macro preset and records the resulting
// targets
func (e *Engine) ApplyPreset(name string) error {
	if err := e.macros.ApplyPreset(name); err != nil {
		return err
	}
	for m := macromod.Intensity; m < macromod.NumMacros; m++ {
		e.recorder.RecordMacro(m, e.macros.Target(m))
	}
	return nil
}

// TriggerGesture fires a gesture manually, honoring the interpreter's
// retrigger spacing
func (e *Engine) TriggerGesture(t gesture.Type, intensity float64) bool {
	if !e.interpreter.TriggerManual(t, gesture.DefaultParams(), intensity) {
		return false
	}
	e.recorder.RecordGesture(t, intensity)
	return true
}

// SetGlobalPersonality changes the global archetype with an eased
// transition
func (e *Engine) SetGlobalPersonality(a personality.Archetype) {
	e.personalities.SetGlobal(a)
	e.recorder.RecordPersonality(a)
}

// ForceFormation starts an explicit transition to a formation type
func (e *Engine) ForceFormation(f ensemble.FormationType) {
	e.forceFormation(f)
	e.recorder.RecordFormation(f)
}

// StartRecording begins capturing command events
func (e *Engine) StartRecording(name string) {
	e.recorder.Start(name)
}

// Recording reports whether a recording is active
func (e *Engine) Recording() bool {
	return e.recorder.Recording()
}

// StopRecording freezes the recording into a stored sequence and
// returns its id
func (e *Engine) StopRecording() (string, error) {
	seq, err := e.recorder.Stop()
	if err != nil {
		return "", err
	}
	e.player.Add(seq)
	return seq.ID, nil
}

// Play starts playback of a stored sequence
func (e *Engine) Play(id string, loop bool) error {
	return e.player.Play(id, loop)
}

// PausePlayback suspends playback at the exact current offset
func (e *Engine) PausePlayback() {
	e.player.Pause()
}

// ResumePlayback continues from the paused offset
func (e *Engine) ResumePlayback() {
	e.player.Resume()
}

// StopPlayback ends playback
func (e *Engine) StopPlayback() {
	e.player.Stop()
}

// SetPlaybackSpeed sets the playback rate multiplier
func (e *Engine) SetPlaybackSpeed(speed float64) {
	e.player.SetSpeed(speed)
}

// SequenceIDs returns the ids of all stored sequences
func (e *Engine) SequenceIDs() []string {
	return e.player.IDs()
}

// ExportSequence serializes a stored sequence
func (e *Engine) ExportSequence(id string) ([]byte, error) {
	seq, ok := e.player.Sequence(id)
	if !ok {
		return nil, fmt.Errorf("unknown sequence id: %q", id)
	}
	return sequence.Export(seq)
}

// ImportSequence parses, validates, and stores a serialized sequence,
// returning its id
func (e *Engine) ImportSequence(data []byte) (string, error) {
	seq, err := sequence.Import(data)
	if err != nil {
		return "", err
	}
	e.player.Add(seq)
	e.logger.Info("sequence imported", logging.Fields{
		"id": seq.ID, "events": len(seq.Events),
	})
	return seq.ID, nil
}
