// Package sequence records and replays timestamped control events
// independent of the live engine state.
package sequence

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind enumerates the 4 recordable event types
type EventKind int

const (
	KindGesture EventKind = iota
	KindMacro
	KindPersonality
	KindFormation
)

func (k EventKind) String() string {
	switch k {
	case KindGesture:
		return "gesture"
	case KindMacro:
		return "macro"
	case KindPersonality:
		return "personality"
	case KindFormation:
		return "formation"
	default:
		return "unknown"
	}
}

// KindFromString resolves a serialized event kind
func KindFromString(s string) (EventKind, bool) {
	for k := KindGesture; k <= KindFormation; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return KindGesture, false
}

// MarshalJSON serializes the kind by name
func (k EventKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON parses the kind by name
func (k *EventKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	kind, ok := KindFromString(s)
	if !ok {
		return fmt.Errorf("unknown event kind: %q", s)
	}
	*k = kind
	return nil
}

// Event is one timestamped control change. The payload fields in use
// depend on Kind; unused fields stay at their zero value and are omitted
// from serialization.
type Event struct {
	Kind EventKind `json:"kind"`
	At   float64   `json:"at"` // seconds since sequence start

	Gesture   string  `json:"gesture,omitempty"`
	Intensity float64 `json:"intensity,omitempty"`

	Macro string  `json:"macro,omitempty"`
	Value float64 `json:"value,omitempty"`

	Archetype string `json:"archetype,omitempty"`
	Formation string `json:"formation,omitempty"`
}

// Sequence is an immutable recorded event list. Created by
// Recorder.Stop or Import, never mutated afterward.
type Sequence struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Duration  float64   `json:"duration"` // seconds
	CreatedAt time.Time `json:"created_at"`
	Events    []Event   `json:"events"`
}
