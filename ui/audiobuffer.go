package ui

import (
	"io"
	"sync"
)

// bytesPerFrame is one interleaved stereo s16le frame.
const bytesPerFrame = 4

// AudioRingBuffer is a thread-safe byte ring implementing io.Reader, fed
// by the emulation goroutine and drained by oto. Read blocks while empty.
// Write never blocks: on overflow the oldest whole stereo frames are
// dropped so left and right never swap.
type AudioRingBuffer struct {
	mu   sync.Mutex
	cond *sync.Cond

	data   []byte
	head   int // next byte to read
	size   int // bytes stored
	closed bool

	dropped uint64 // bytes discarded on overflow
}

// NewAudioRingBuffer creates a ring holding up to capacity bytes, rounded
// down to whole stereo frames.
func NewAudioRingBuffer(capacity int) *AudioRingBuffer {
	capacity -= capacity % bytesPerFrame
	if capacity < bytesPerFrame {
		capacity = bytesPerFrame
	}
	rb := &AudioRingBuffer{data: make([]byte, capacity)}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// Write queues p. A partial trailing frame is discarded.
func (rb *AudioRingBuffer) Write(p []byte) {
	p = p[:len(p)-len(p)%bytesPerFrame]

	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.closed || len(p) == 0 {
		return
	}

	capacity := len(rb.data)
	if len(p) > capacity {
		rb.dropped += uint64(len(p) - capacity)
		p = p[len(p)-capacity:]
	}

	if over := rb.size + len(p) - capacity; over > 0 {
		rb.head = (rb.head + over) % capacity
		rb.size -= over
		rb.dropped += uint64(over)
	}

	tail := (rb.head + rb.size) % capacity
	n := copy(rb.data[tail:], p)
	copy(rb.data, p[n:])
	rb.size += len(p)

	rb.cond.Signal()
}

// Read implements io.Reader. It returns io.EOF once closed and drained.
func (rb *AudioRingBuffer) Read(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.size == 0 {
		if rb.closed {
			return 0, io.EOF
		}
		rb.cond.Wait()
	}

	n := len(p)
	if n > rb.size {
		n = rb.size
	}

	end := rb.head + n
	if end <= len(rb.data) {
		copy(p, rb.data[rb.head:end])
	} else {
		k := copy(p, rb.data[rb.head:])
		copy(p[k:n], rb.data[:n-k])
	}
	rb.head = (rb.head + n) % len(rb.data)
	rb.size -= n

	return n, nil
}

// Buffered returns the number of bytes waiting to be read.
func (rb *AudioRingBuffer) Buffered() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.size
}

// Dropped returns the total bytes discarded because the reader fell behind.
func (rb *AudioRingBuffer) Dropped() uint64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.dropped
}

// Clear discards everything queued.
func (rb *AudioRingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.head = 0
	rb.size = 0
}

// Close wakes any blocked reader. Reads drain what is left, then io.EOF.
func (rb *AudioRingBuffer) Close() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.closed = true
	rb.cond.Broadcast()
}
