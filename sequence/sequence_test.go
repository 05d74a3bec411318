package sequence

import (
	"testing"
	"time"

	"github.com/soundweave/choreo/ensemble"
	"github.com/soundweave/choreo/gesture"
	"github.com/soundweave/choreo/macromod"
	"github.com/soundweave/choreo/personality"
)

func recordFixture(t *testing.T) *Sequence {
	t.Helper()

	r := NewRecorder()
	clock := time.Unix(0, 0)
	r.now = func() time.Time { return clock }

	r.Start("fixture")
	r.RecordGesture(gesture.Attack, 0.8)
	clock = clock.Add(500 * time.Millisecond)
	r.RecordMacro(macromod.Energy, 0.9)
	clock = clock.Add(500 * time.Millisecond)
	r.RecordPersonality(personality.Aggressive)
	clock = clock.Add(time.Second)
	r.RecordFormation(ensemble.FormationRadial)
	clock = clock.Add(time.Second)

	seq, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	return seq
}

func TestRecorderTimestampsAndFreeze(t *testing.T) {
	seq := recordFixture(t)

	if seq.ID == "" {
		t.Error("sequence has no generated id")
	}
	if len(seq.Events) != 4 {
		t.Fatalf("len(events) = %d, want 4", len(seq.Events))
	}

	wantAt := []float64{0, 0.5, 1.0, 2.0}
	for i, e := range seq.Events {
		if e.At != wantAt[i] {
			t.Errorf("event %d at = %v, want %v", i, e.At, wantAt[i])
		}
	}
	if seq.Duration != 3.0 {
		t.Errorf("duration = %v, want 3.0", seq.Duration)
	}
	if seq.Events[0].Gesture != "attack" || seq.Events[0].Intensity != 0.8 {
		t.Errorf("gesture event payload = %+v", seq.Events[0])
	}
}

func TestStopWithoutStart(t *testing.T) {
	r := NewRecorder()
	if _, err := r.Stop(); err != ErrNotRecording {
		t.Errorf("Stop() error = %v, want ErrNotRecording", err)
	}
}

func TestExportImportRoundtrip(t *testing.T) {
	seq := recordFixture(t)

	data, err := Export(seq)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	back, err := Import(data)
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	if back.Name != seq.Name || back.Duration != seq.Duration {
		t.Errorf("metadata changed: %q/%v vs %q/%v", back.Name, back.Duration, seq.Name, seq.Duration)
	}
	if len(back.Events) != len(seq.Events) {
		t.Fatalf("len(events) = %d, want %d", len(back.Events), len(seq.Events))
	}
	for i := range seq.Events {
		if back.Events[i] != seq.Events[i] {
			t.Errorf("event %d differs: %+v vs %+v", i, back.Events[i], seq.Events[i])
		}
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"wrong version":    `{"version": 2, "id": "x", "events": []}`,
		"missing events":   `{"version": 1, "id": "x"}`,
		"non-array events": `{"version": 1, "id": "x", "events": {"kind": "macro"}}`,
		"unknown kind":     `{"version": 1, "id": "x", "events": [{"kind": "explode", "at": 0}]}`,
		"bare payload":     `{"version": 1, "id": "x", "events": [{"kind": "gesture", "at": 0}]}`,
		"negative time":    `{"version": 1, "id": "x", "events": [{"kind": "macro", "at": -1, "macro": "energy"}]}`,
		"unordered":        `{"version": 1, "id": "x", "duration": 2, "events": [{"kind": "macro", "at": 1, "macro": "energy", "value": 1}, {"kind": "macro", "at": 0.5, "macro": "chaos", "value": 1}]}`,
	}
	for name, data := range cases {
		if _, err := Import([]byte(data)); err == nil {
			t.Errorf("%s: Import accepted malformed input", name)
		}
	}
}

func TestPlayerDispatchOrderAndLoop(t *testing.T) {
	seq := recordFixture(t)
	p := NewPlayer()
	p.Add(seq)

	if err := p.Play(seq.ID, true); err != nil {
		t.Fatalf("Play() error: %v", err)
	}

	var out []Event
	// 0.6s: the t=0 and t=0.5 events are due
	out = p.Update(0.6, out)
	if len(out) != 2 || out[0].Kind != KindGesture || out[1].Kind != KindMacro {
		t.Fatalf("after 0.6s: %d events %+v, want gesture then macro", len(out), out)
	}

	// 2.5s more crosses t=1.0, t=2.0 and wraps (duration 3.0); the
	// looped pass re-delivers t=0 at offset 0.1
	out = p.Update(2.5, out[:0])
	if len(out) != 3 {
		t.Fatalf("after wrap: %d events, want 3", len(out))
	}
	if out[0].Kind != KindPersonality || out[1].Kind != KindFormation || out[2].Kind != KindGesture {
		t.Errorf("wrap order = %v %v %v", out[0].Kind, out[1].Kind, out[2].Kind)
	}
	if !p.Playing() {
		t.Error("looping player stopped")
	}
}

func TestPlayerStopsWithoutLoop(t *testing.T) {
	seq := recordFixture(t)
	p := NewPlayer()
	p.Add(seq)

	if err := p.Play(seq.ID, false); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	out := p.Update(10.0, nil)
	if len(out) != 4 {
		t.Errorf("drained %d events, want all 4", len(out))
	}
	if p.Playing() {
		t.Error("player still playing past the duration")
	}
}

func TestPauseResumePreservesOffset(t *testing.T) {
	seq := recordFixture(t)
	p := NewPlayer()
	p.Add(seq)

	if err := p.Play(seq.ID, false); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	p.Update(0.3, nil)
	p.Pause()

	// Paused updates advance nothing
	p.Update(5.0, nil)
	if got := p.Elapsed(); got != 0.3 {
		t.Errorf("paused elapsed = %v, want 0.3", got)
	}

	p.Resume()
	out := p.Update(0.3, nil)
	if got := p.Elapsed(); got != 0.6 {
		t.Errorf("resumed elapsed = %v, want 0.6", got)
	}
	// t=0.5 macro event becomes due only after resuming
	if len(out) != 1 || out[0].Kind != KindMacro {
		t.Errorf("post-resume events = %+v, want one macro event", out)
	}
}

func TestSetSpeedScalesTime(t *testing.T) {
	seq := recordFixture(t)
	p := NewPlayer()
	p.Add(seq)

	if err := p.Play(seq.ID, false); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	p.SetSpeed(2.0)
	out := p.Update(0.3, nil)
	if got := p.Elapsed(); got != 0.6 {
		t.Errorf("elapsed at 2x = %v, want 0.6", got)
	}
	if len(out) != 2 {
		t.Errorf("events at 2x after 0.3s = %d, want 2", len(out))
	}
}

func TestPlayUnknownID(t *testing.T) {
	p := NewPlayer()
	if err := p.Play("missing", false); err == nil {
		t.Error("Play(missing) did not error")
	}
}
