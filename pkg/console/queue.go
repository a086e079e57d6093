package console

import "sync/atomic"

// DefaultQueueSize is the number of rendered lines buffered for display.
const DefaultQueueSize = 256

// Queue hands rendered lines from the bridge loop to a display goroutine.
// Push never blocks; lines that do not fit are counted and dropped.
type Queue struct {
	lines   chan string
	dropped atomic.Int64
}

// NewQueue creates a queue holding up to size lines.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{lines: make(chan string, size)}
}

// Push enqueues line, dropping it if the queue is full.
func (q *Queue) Push(line string) {
	select {
	case q.lines <- line:
	default:
		q.dropped.Add(1)
	}
}

// C returns the receive side of the queue.
func (q *Queue) C() <-chan string {
	return q.lines
}

// Dropped returns how many lines were discarded.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}
