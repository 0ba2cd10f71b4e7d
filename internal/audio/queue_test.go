package audio

import (
	"testing"
	"time"
)

func TestBlockQueueFIFO(t *testing.T) {
	q := NewBlockQueue(4)

	first := []float32{1}
	second := []float32{2}
	if !q.TryEnqueue(first) || !q.TryEnqueue(second) {
		t.Fatal("enqueue failed on non-full queue")
	}

	got, ok := q.Dequeue(time.Second)
	if !ok || got[0] != 1 {
		t.Fatalf("expected first block, got %v (ok=%v)", got, ok)
	}
	got, ok = q.Dequeue(time.Second)
	if !ok || got[0] != 2 {
		t.Fatalf("expected second block, got %v (ok=%v)", got, ok)
	}
}

func TestBlockQueueDequeueTimeout(t *testing.T) {
	q := NewBlockQueue(4)

	start := time.Now()
	_, ok := q.Dequeue(20 * time.Millisecond)
	if ok {
		t.Fatal("expected timeout on empty queue")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("dequeue blocked far beyond timeout: %v", elapsed)
	}
}

func TestTryEnqueueNeverBlocksWhenFull(t *testing.T) {
	q := NewBlockQueue(2)
	q.TryEnqueue([]float32{1})
	q.TryEnqueue([]float32{2})

	start := time.Now()
	for i := 0; i < 100; i++ {
		if q.TryEnqueue([]float32{3}) {
			t.Fatal("enqueue succeeded on saturated queue")
		}
	}
	elapsed := time.Since(start)

	// 100 attempts against a full queue must be effectively instant.
	if elapsed > 100*time.Millisecond {
		t.Fatalf("enqueue on full queue took %v", elapsed)
	}
	if q.Dropped() != 100 {
		t.Fatalf("expected 100 dropped blocks, got %d", q.Dropped())
	}
}

func TestBlockQueueDrain(t *testing.T) {
	q := NewBlockQueue(8)
	for i := 0; i < 5; i++ {
		q.TryEnqueue([]float32{float32(i)})
	}

	if n := q.Drain(); n != 5 {
		t.Fatalf("expected 5 drained blocks, got %d", n)
	}
	if q.Len() != 0 {
		t.Fatalf("queue not empty after drain: %d", q.Len())
	}
	if n := q.Drain(); n != 0 {
		t.Fatalf("second drain should be empty, got %d", n)
	}
}
