package sequence

import (
	"fmt"

	"github.com/soundweave/choreo/dsp"
	"github.com/soundweave/choreo/logging"
)

// Player replays stored sequences by id. Due events accumulate in an
// outbound queue that the caller drains once per frame; the player never
// calls back into other components.
type Player struct {
	logger logging.Logger

	sequences map[string]*Sequence

	current *Sequence
	playing bool
	paused  bool
	loop    bool
	speed   float64
	elapsed float64
	cursor  int
}

// NewPlayer creates a player with an empty library
func NewPlayer() *Player {
	return &Player{
		logger:    logging.GetGlobalLogger().WithFields(logging.Fields{"component": "player"}),
		sequences: make(map[string]*Sequence),
		speed:     1.0,
	}
}

// Add stores a sequence in the library, replacing any with the same id
func (p *Player) Add(seq *Sequence) {
	if seq == nil || seq.ID == "" {
		return
	}
	p.sequences[seq.ID] = seq
}

// Sequence returns a stored sequence by id
func (p *Player) Sequence(id string) (*Sequence, bool) {
	seq, ok := p.sequences[id]
	return seq, ok
}

// IDs returns the stored sequence ids
func (p *Player) IDs() []string {
	ids := make([]string, 0, len(p.sequences))
	for id := range p.sequences {
		ids = append(ids, id)
	}
	return ids
}

// Playing reports whether playback is active and not paused
func (p *Player) Playing() bool {
	return p.playing && !p.paused
}

// Elapsed returns the logical playback offset, seconds
func (p *Player) Elapsed() float64 {
	return p.elapsed
}

// Play resets the cursor and begins playback of a stored sequence
func (p *Player) Play(id string, loop bool) error {
	seq, ok := p.sequences[id]
	if !ok {
		return fmt.Errorf("unknown sequence id: %q", id)
	}
	p.current = seq
	p.playing = true
	p.paused = false
	p.loop = loop
	p.elapsed = 0
	p.cursor = 0
	p.logger.Info("playback started", logging.Fields{
		"id": id, "loop": loop, "events": len(seq.Events),
	})
	return nil
}

// Pause suspends playback, preserving the elapsed offset exactly
func (p *Player) Pause() {
	if p.playing {
		p.paused = true
	}
}

// Resume continues playback from the paused offset
func (p *Player) Resume() {
	if p.playing {
		p.paused = false
	}
}

// Stop ends playback
func (p *Player) Stop() {
	p.playing = false
	p.paused = false
	p.current = nil
	p.elapsed = 0
	p.cursor = 0
}

// SetSpeed sets the playback rate multiplier, clamped to [0.1, 4.0]
func (p *Player) SetSpeed(speed float64) {
	p.speed = dsp.Clamp(speed, 0.1, 4.0)
}

// Update advances logical time by dt*speed and appends every newly due
// event to out, returning the extended slice. On reaching the sequence
// duration it restarts (loop) or stops.
func (p *Player) Update(dt float64, out []Event) []Event {
	if !p.playing || p.paused || p.current == nil {
		return out
	}

	p.elapsed += dt * p.speed
	out = p.drain(out)

	if p.elapsed >= p.current.Duration {
		if p.loop {
			p.elapsed -= p.current.Duration
			if p.elapsed < 0 || p.current.Duration <= 0 {
				p.elapsed = 0
			}
			p.cursor = 0
			out = p.drain(out)
		} else {
			p.Stop()
		}
	}
	return out
}

// drain appends events due at the current offset, advancing the cursor
func (p *Player) drain(out []Event) []Event {
	for p.cursor < len(p.current.Events) && p.current.Events[p.cursor].At <= p.elapsed {
		out = append(out, p.current.Events[p.cursor])
		p.cursor++
	}
	return out
}
