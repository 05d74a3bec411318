package dsp

// RingBuffer is a fixed-capacity ring of float64 samples for per-frame
// history tracking. Writes overwrite the oldest slot once full; Snapshot
// returns the stored values in chronological order.
type RingBuffer struct {
	buffer   []float64
	writePos int
	count    int
}

// NewRingBuffer creates a ring buffer holding up to capacity values.
// Capacity below 1 is treated as 1.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{
		buffer: make([]float64, capacity),
	}
}

// Push appends a value, overwriting the oldest entry when full
func (rb *RingBuffer) Push(v float64) {
	rb.buffer[rb.writePos] = v
	rb.writePos = (rb.writePos + 1) % len(rb.buffer)
	if rb.count < len(rb.buffer) {
		rb.count++
	}
}

// Len returns the number of stored values
func (rb *RingBuffer) Len() int {
	return rb.count
}

// Cap returns the buffer capacity
func (rb *RingBuffer) Cap() int {
	return len(rb.buffer)
}

// Last returns the most recently pushed value, or 0 when empty
func (rb *RingBuffer) Last() float64 {
	if rb.count == 0 {
		return 0.0
	}
	pos := (rb.writePos - 1 + len(rb.buffer)) % len(rb.buffer)
	return rb.buffer[pos]
}

// Snapshot copies the stored values oldest-first into a new slice
func (rb *RingBuffer) Snapshot() []float64 {
	out := make([]float64, rb.count)
	start := rb.writePos - rb.count
	if start < 0 {
		start += len(rb.buffer)
	}
	for i := 0; i < rb.count; i++ {
		out[i] = rb.buffer[(start+i)%len(rb.buffer)]
	}
	return out
}

// Clear empties the buffer
func (rb *RingBuffer) Clear() {
	rb.writePos = 0
	rb.count = 0
}
