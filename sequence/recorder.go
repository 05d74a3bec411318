package sequence

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/soundweave/choreo/ensemble"
	"github.com/soundweave/choreo/gesture"
	"github.com/soundweave/choreo/logging"
	"github.com/soundweave/choreo/macromod"
	"github.com/soundweave/choreo/personality"
)

// ErrNotRecording is returned by Stop when no recording is active
var ErrNotRecording = errors.New("no active recording")

// Recorder captures timestamped control events between Start and Stop.
// Single-owner, driven from the frame loop.
type Recorder struct {
	logger logging.Logger
	now    func() time.Time

	recording bool
	name      string
	start     time.Time
	events    []Event
}

// NewRecorder creates an idle recorder
func NewRecorder() *Recorder {
	return &Recorder{
		logger: logging.GetGlobalLogger().WithFields(logging.Fields{"component": "recorder"}),
		now:    time.Now,
	}
}

// Recording reports whether a recording is in progress
func (r *Recorder) Recording() bool {
	return r.recording
}

// Start begins a new recording, discarding any unstopped one
func (r *Recorder) Start(name string) {
	r.recording = true
	r.name = name
	r.start = r.now()
	r.events = r.events[:0]
	r.logger.Info("recording started", logging.Fields{"name": name})
}

// Stop freezes the captured events into an immutable sequence with a
// generated id
func (r *Recorder) Stop() (*Sequence, error) {
	if !r.recording {
		return nil, ErrNotRecording
	}
	r.recording = false

	events := make([]Event, len(r.events))
	copy(events, r.events)

	duration := r.now().Sub(r.start).Seconds()
	if n := len(events); n > 0 && events[n-1].At > duration {
		duration = events[n-1].At
	}

	seq := &Sequence{
		ID:        uuid.NewString(),
		Name:      r.name,
		Duration:  duration,
		CreatedAt: r.now(),
		Events:    events,
	}
	r.logger.Info("recording stopped", logging.Fields{
		"id": seq.ID, "events": len(events), "duration": duration,
	})
	return seq, nil
}

func (r *Recorder) append(e Event) {
	if !r.recording {
		return
	}
	e.At = r.now().Sub(r.start).Seconds()
	r.events = append(r.events, e)
}

// RecordGesture captures a gesture trigger
func (r *Recorder) RecordGesture(t gesture.Type, intensity float64) {
	r.append(Event{Kind: KindGesture, Gesture: t.String(), Intensity: intensity})
}

// RecordMacro captures a macro target change
func (r *Recorder) RecordMacro(m macromod.Macro, value float64) {
	r.append(Event{Kind: KindMacro, Macro: m.String(), Value: value})
}

// RecordPersonality captures a global archetype change
func (r *Recorder) RecordPersonality(a personality.Archetype) {
	r.append(Event{Kind: KindPersonality, Archetype: a.String()})
}

// RecordFormation captures a forced formation change
func (r *Recorder) RecordFormation(f ensemble.FormationType) {
	r.append(Event{Kind: KindFormation, Formation: f.String()})
}
