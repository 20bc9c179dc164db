package serializer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is one published payload. Data holds exactly Length valid bytes
// and must be treated as read-only.
type Snapshot struct {
	Data      []byte
	Length    int
	Capacity  int
	Sequence  uint64
	Codec     string
	UpdatedAt time.Time
}

// Buffer holds the most recently published payload within a fixed capacity.
// Publishing swaps in a fresh copy so readers never observe a partial write
// and never need a lock.
type Buffer struct {
	capacity int
	codec    string

	mu      sync.Mutex // serializes publishers
	current atomic.Pointer[Snapshot]
}

// NewBuffer creates an empty buffer of the given capacity
func NewBuffer(capacity int, codec string) *Buffer {
	b := &Buffer{capacity: capacity, codec: codec}
	b.current.Store(&Snapshot{Data: []byte{}, Capacity: capacity, Codec: codec})
	return b
}

// Capacity returns the fixed capacity in bytes
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Publish replaces the snapshot with payload. A payload of capacity bytes or
// more is rejected, leaving the previous snapshot in place, and reported as
// overflowed.
func (b *Buffer) Publish(payload []byte) (overflowed bool) {
	if len(payload) >= b.capacity {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	prev := b.current.Load()
	data := make([]byte, len(payload))
	copy(data, payload)
	b.current.Store(&Snapshot{
		Data:      data,
		Length:    len(data),
		Capacity:  b.capacity,
		Sequence:  prev.Sequence + 1,
		Codec:     b.codec,
		UpdatedAt: time.Now(),
	})
	return false
}

// Snapshot returns the current snapshot
func (b *Buffer) Snapshot() Snapshot {
	return *b.current.Load()
}

// ReadInto copies the valid bytes of the current snapshot into dst and
// returns how many were copied. Bytes of dst past that count are left as
// they were.
func (b *Buffer) ReadInto(dst []byte) int {
	return copy(dst, b.current.Load().Data)
}
