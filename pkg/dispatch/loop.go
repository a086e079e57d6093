// Package dispatch moves work from arbitrary goroutines onto one consumer
// goroutine, in the order it was posted.
package dispatch

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"

	"github.com/entrhq/tabbridge/pkg/logging"
)

// ErrClosed is returned when work is posted to a loop that has been closed.
var ErrClosed = errors.New("dispatch loop closed")

// Loop runs posted functions one at a time on a single goroutine.
//
// The queue is unbounded so Post never blocks the caller, which is usually a
// transport callback goroutine that must not stall. Functions run in exactly
// the order they were posted; nothing is coalesced or reordered.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}

	closeOnce sync.Once
	logger    *logging.Logger
}

// LoopOption configures a Loop
type LoopOption func(*Loop)

// WithLogger sets the logger used to report recovered panics.
func WithLogger(l *logging.Logger) LoopOption {
	return func(lp *Loop) {
		lp.logger = l
	}
}

// NewLoop creates a loop and starts its consumer goroutine.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logging.Discard("dispatch")
	}

	go l.run()
	return l
}

// Post queues fn to run on the loop goroutine. It never blocks and returns
// false if the loop is closed, in which case fn is dropped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	// Non-blocking: one pending wake-up is enough for any number of items
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call runs fn on the loop goroutine and waits for it to return.
//
// Call must not be used from the loop goroutine itself (including from inside
// a posted function); it would wait on its own queue forever. If ctx ends
// first Call returns ctx.Err(), but fn still runs when its turn comes.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrClosed
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work, runs everything already queued, and waits for
// the consumer goroutine to exit. It is safe to call more than once but must
// not be called from the loop goroutine.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()

		select {
		case l.wake <- struct{}{}:
		default:
		}
	})
	<-l.done
}

// Done is closed once the consumer goroutine has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) run() {
	defer close(l.done)

	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		closed := l.closed
		l.mu.Unlock()

		for _, fn := range batch {
			l.invoke(fn)
		}

		if len(batch) > 0 {
			// More work may have arrived while the batch ran
			continue
		}
		if closed {
			return
		}
		<-l.wake
	}
}

// invoke runs fn, recovering a panic so one bad callback cannot stop the loop.
func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Errorf("recovered panic in dispatched function: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
}
