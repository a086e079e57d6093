package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualSchedulerFiresWhenDue(t *testing.T) {
	s := NewManualScheduler()

	var fired []string
	s.AfterFunc(time.Second, func() { fired = append(fired, "a") })
	s.AfterFunc(500*time.Millisecond, func() { fired = append(fired, "b") })

	assert.Equal(t, 0, s.Advance(400*time.Millisecond))
	assert.Empty(t, fired)

	assert.Equal(t, 1, s.Advance(100*time.Millisecond))
	assert.Equal(t, []string{"b"}, fired)

	assert.Equal(t, 1, s.Advance(time.Second))
	assert.Equal(t, []string{"b", "a"}, fired)
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, 1500*time.Millisecond, s.Now())
}

func TestManualSchedulerStop(t *testing.T) {
	s := NewManualScheduler()

	fired := false
	timer := s.AfterFunc(time.Second, func() { fired = true })
	assert.Equal(t, 1, s.Pending())

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	assert.Equal(t, 0, s.Pending())

	s.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestManualSchedulerChainsTimers(t *testing.T) {
	s := NewManualScheduler()

	count := 0
	var schedule func()
	schedule = func() {
		s.AfterFunc(time.Second, func() {
			count++
			if count < 5 {
				schedule()
			}
		})
	}
	schedule()

	// Timers scheduled while firing run if they fall inside the advance
	assert.Equal(t, 3, s.Advance(3*time.Second))
	assert.Equal(t, 3, count)

	s.Advance(10 * time.Second)
	assert.Equal(t, 5, count)
	assert.Equal(t, 0, s.Pending())
}

func TestManualSchedulerSameDeadlineRunsInScheduleOrder(t *testing.T) {
	s := NewManualScheduler()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		s.AfterFunc(time.Second, func() { order = append(order, i) })
	}
	s.Advance(time.Second)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestSystemScheduler(t *testing.T) {
	done := make(chan struct{})
	SystemScheduler{}.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	stopped := SystemScheduler{}.AfterFunc(time.Hour, func() {})
	assert.True(t, stopped.Stop())
}
