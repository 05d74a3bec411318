package sequence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CodecVersion is the serialized sequence format version
const CodecVersion = 1

type sequenceFile struct {
	Version   int              `json:"version"`
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Duration  float64          `json:"duration"`
	CreatedAt time.Time        `json:"created_at"`
	Events    *json.RawMessage `json:"events"`
}

// Export serializes a sequence into the versioned JSON form
func Export(seq *Sequence) ([]byte, error) {
	if seq == nil {
		return nil, fmt.Errorf("nil sequence")
	}
	raw, err := json.Marshal(seq.Events)
	if err != nil {
		return nil, fmt.Errorf("marshal events: %w", err)
	}
	msg := json.RawMessage(raw)
	return json.MarshalIndent(sequenceFile{
		Version:   CodecVersion,
		ID:        seq.ID,
		Name:      seq.Name,
		Duration:  seq.Duration,
		CreatedAt: seq.CreatedAt,
		Events:    &msg,
	}, "", "  ")
}

// Import parses and validates a serialized sequence. A missing id is
// replaced with a generated one; everything else must be present and
// well formed.
func Import(data []byte) (*Sequence, error) {
	var file sequenceFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sequence: %w", err)
	}
	if file.Version != CodecVersion {
		return nil, fmt.Errorf("unsupported sequence version: %d", file.Version)
	}
	if file.Events == nil {
		return nil, fmt.Errorf("sequence has no events field")
	}
	if file.Duration < 0 {
		return nil, fmt.Errorf("negative duration: %v", file.Duration)
	}

	var events []Event
	if err := json.Unmarshal(*file.Events, &events); err != nil {
		return nil, fmt.Errorf("parse events: %w", err)
	}

	prev := 0.0
	for i, e := range events {
		if e.At < 0 {
			return nil, fmt.Errorf("event %d: negative timestamp %v", i, e.At)
		}
		if e.At < prev {
			return nil, fmt.Errorf("event %d: timestamp %v before previous %v", i, e.At, prev)
		}
		prev = e.At
		if err := validatePayload(i, e); err != nil {
			return nil, err
		}
	}

	id := file.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &Sequence{
		ID:        id,
		Name:      file.Name,
		Duration:  file.Duration,
		CreatedAt: file.CreatedAt,
		Events:    events,
	}, nil
}

func validatePayload(i int, e Event) error {
	switch e.Kind {
	case KindGesture:
		if e.Gesture == "" {
			return fmt.Errorf("event %d: gesture event without gesture name", i)
		}
	case KindMacro:
		if e.Macro == "" {
			return fmt.Errorf("event %d: macro event without macro name", i)
		}
	case KindPersonality:
		if e.Archetype == "" {
			return fmt.Errorf("event %d: personality event without archetype", i)
		}
	case KindFormation:
		if e.Formation == "" {
			return fmt.Errorf("event %d: formation event without formation", i)
		}
	default:
		return fmt.Errorf("event %d: unknown kind %d", i, e.Kind)
	}
	return nil
}
