package dsp

import "testing"

func TestRingBufferSnapshotChronological(t *testing.T) {
	rb := NewRingBuffer(4)

	// Push capacity+1 values; the oldest must fall off
	for _, v := range []float64{1, 2, 3, 4, 5} {
		rb.Push(v)
	}

	snap := rb.Snapshot()
	want := []float64{2, 3, 4, 5}
	if len(snap) != len(want) {
		t.Fatalf("Snapshot() len = %d, want %d", len(snap), len(want))
	}
	for i, v := range want {
		if snap[i] != v {
			t.Errorf("Snapshot()[%d] = %v, want %v", i, snap[i], v)
		}
	}
}

func TestRingBufferPartialFill(t *testing.T) {
	rb := NewRingBuffer(8)
	rb.Push(1.5)
	rb.Push(2.5)

	if rb.Len() != 2 {
		t.Errorf("Len() = %d, want 2", rb.Len())
	}
	if rb.Cap() != 8 {
		t.Errorf("Cap() = %d, want 8", rb.Cap())
	}
	if rb.Last() != 2.5 {
		t.Errorf("Last() = %v, want 2.5", rb.Last())
	}

	snap := rb.Snapshot()
	if len(snap) != 2 || snap[0] != 1.5 || snap[1] != 2.5 {
		t.Errorf("Snapshot() = %v, want [1.5 2.5]", snap)
	}
}

func TestRingBufferClear(t *testing.T) {
	rb := NewRingBuffer(3)
	rb.Push(1)
	rb.Clear()

	if rb.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", rb.Len())
	}
	if rb.Last() != 0 {
		t.Errorf("Last() after Clear = %v, want 0", rb.Last())
	}
}

func TestSmoothTowardNoOvershoot(t *testing.T) {
	v := 0.0
	for i := 0; i < 1000; i++ {
		v = SmoothToward(v, 1.0, 0.016, 0.25)
		if v > 1.0 {
			t.Fatalf("SmoothToward overshot target: %v", v)
		}
	}
	if v < 0.99 {
		t.Errorf("SmoothToward after 16s = %v, want within 1%% of 1.0", v)
	}
}

func TestEaseInOutCubicEndpoints(t *testing.T) {
	if got := EaseInOutCubic(0); got != 0 {
		t.Errorf("EaseInOutCubic(0) = %v, want 0", got)
	}
	if got := EaseInOutCubic(1); got != 1 {
		t.Errorf("EaseInOutCubic(1) = %v, want 1", got)
	}
	if got := EaseInOutCubic(0.5); got < 0.49 || got > 0.51 {
		t.Errorf("EaseInOutCubic(0.5) = %v, want 0.5", got)
	}
}
