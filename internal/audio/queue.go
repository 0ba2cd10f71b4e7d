package audio

import (
	"sync/atomic"
	"time"
)

// BlockQueue is the single-producer/single-consumer channel between the
// portaudio callback and the segmenter goroutine. The producer side never
// blocks: a full queue drops the block and bumps the drop counter.
type BlockQueue struct {
	ch      chan []float32
	dropped atomic.Uint64
}

// NewBlockQueue creates a queue holding at most capacity blocks.
func NewBlockQueue(capacity int) *BlockQueue {
	if capacity <= 0 {
		capacity = 64
	}
	return &BlockQueue{ch: make(chan []float32, capacity)}
}

// TryEnqueue offers a block without blocking. Returns false if the queue
// is full; the block is dropped in that case.
func (q *BlockQueue) TryEnqueue(block []float32) bool {
	select {
	case q.ch <- block:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Dequeue waits up to timeout for the next block. The second return is
// false if no block arrived in time.
func (q *BlockQueue) Dequeue(timeout time.Duration) ([]float32, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case block := <-q.ch:
		return block, true
	case <-timer.C:
		return nil, false
	}
}

// Drain discards all queued blocks and returns how many were discarded.
func (q *BlockQueue) Drain() int {
	n := 0
	for {
		select {
		case <-q.ch:
			n++
		default:
			return n
		}
	}
}

// Len returns the number of blocks currently queued.
func (q *BlockQueue) Len() int { return len(q.ch) }

// Dropped returns the total number of blocks dropped on overflow.
func (q *BlockQueue) Dropped() uint64 { return q.dropped.Load() }
