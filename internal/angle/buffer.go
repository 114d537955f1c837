package angle

import "sync"

// Buffer is the shared staging area between the sampler goroutine and the
// publisher goroutine. It is the only point of contact between the two,
// so every operation holds the mutex.
//
// Overflow policy: when a push grows the buffer past its capacity the
// whole buffer is cleared, including the sample just pushed. The stream
// favors freshness over completeness — if the consumer has fallen this
// far behind, stale batches are worthless to the remote end.
type Buffer struct {
	mu       sync.Mutex
	samples  []Sample
	capacity int
}

// DefaultCapacity matches one third of a second of samples at the default
// 30 Hz acquisition rate.
const DefaultCapacity = 10

// NewBuffer creates a buffer that drops everything once occupancy exceeds
// capacity. A non-positive capacity falls back to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		samples:  make([]Sample, 0, capacity),
		capacity: capacity,
	}
}

// Push appends one calibrated sample. If the append pushes occupancy past
// the configured capacity the buffer is reset to empty.
func (b *Buffer) Push(s Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.samples = append(b.samples, s)
	if len(b.samples) > b.capacity {
		b.samples = b.samples[:0]
	}
}

// Len reports current occupancy.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// DrainIfReady atomically removes and returns the entire contents iff at
// least min samples are buffered. Otherwise it returns (nil, false) and
// leaves the buffer untouched. There is no partial drain.
func (b *Buffer) DrainIfReady(min int) ([]Sample, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.samples) < min {
		return nil, false
	}
	out := b.samples
	b.samples = make([]Sample, 0, b.capacity)
	return out, true
}
