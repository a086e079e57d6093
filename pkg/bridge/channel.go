package bridge

import (
	"context"
	"time"

	"github.com/entrhq/tabbridge/pkg/types"
)

// ChannelPhase is the state of message channel establishment.
type ChannelPhase int

const (
	PhaseIdle       ChannelPhase = iota // PhaseIdle means no request is in progress.
	PhaseRequesting                     // PhaseRequesting means attempts are being made.
	PhaseAccepted                       // PhaseAccepted means the transport took a request; waiting for readiness.
	PhaseReady                          // PhaseReady means the channel is usable.
	PhaseExhausted                      // PhaseExhausted means the request was abandoned after the attempt cap.
)

func (p ChannelPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRequesting:
		return "requesting"
	case PhaseAccepted:
		return "accepted"
	case PhaseReady:
		return "ready"
	case PhaseExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// channelState is the retry state for one session. Loop-owned.
type channelState struct {
	phase    ChannelPhase
	origin   string // pending origin, cleared on acceptance, readiness or exhaustion
	attempts int

	// lastOrigin is the most recently requested origin; page messages are
	// attributed to it.
	lastOrigin string

	// generation changes on every new request or reset; a scheduled attempt
	// from an older generation does nothing.
	generation uint64
	// seq identifies the latest scheduled attempt so at most one is live.
	seq uint64
}

func (c *channelState) ready() {
	c.phase = PhaseReady
	c.origin = ""
}

// RequestChannel asks the overlay to establish a message channel with the
// page at origin. It returns false for an empty or invalid origin or when the
// transport has no session. Otherwise any earlier request is superseded and
// the first attempt is made before RequestChannel returns. Readiness is
// reported later as a MessageChannelReady event; if every attempt is
// rejected the Observer's OnChannelFailed is called.
func (s *Session) RequestChannel(ctx context.Context, origin string) bool {
	b := s.bridge

	normalized, err := NormalizeOrigin(origin)
	if err != nil {
		b.logger.Warnf("RequestChannel: %v", err)
		return false
	}
	if !b.transportHasSession() {
		b.logger.Warnf("RequestChannel: %v: no transport session", ErrTransportUnavailable)
		return false
	}

	if err := b.loop.Call(ctx, func() { s.beginChannelRequest(normalized) }); err != nil {
		b.logger.Errorf("RequestChannel: %v", err)
		return false
	}
	return true
}

// SendMessage posts payload to the page. It fails fast when the transport
// has no session or the channel is not ready; nothing is queued.
func (s *Session) SendMessage(ctx context.Context, payload string) bool {
	b := s.bridge
	if !b.transportHasSession() {
		b.logger.Warnf("SendMessage: %v: no transport session", ErrTransportUnavailable)
		return false
	}

	var ready bool
	if err := b.loop.Call(ctx, func() { ready = s.channelReady }); err != nil {
		b.logger.Errorf("SendMessage: %v", err)
		return false
	}
	if !ready {
		b.logger.Warnf("SendMessage: %v; request a channel and wait for readiness", ErrChannelNotReady)
		return false
	}

	result := b.transport.PostMessage(payload)
	if result != types.ResultSuccess {
		b.logger.Warnf("SendMessage: transport returned %s", result)
		return false
	}
	return true
}

// beginChannelRequest runs on the loop.
func (s *Session) beginChannelRequest(origin string) {
	c := &s.channel
	c.generation++
	c.attempts = 0
	c.origin = origin
	c.lastOrigin = origin
	c.phase = PhaseRequesting
	s.channelReady = false

	s.bridge.logger.Infof("requesting message channel for %s", origin)
	s.attempt(c.generation)
}

// attempt makes one channel request if generation is still current. It runs
// on the loop.
func (s *Session) attempt(generation uint64) {
	b := s.bridge
	c := &s.channel

	if generation != c.generation || c.phase != PhaseRequesting || s.channelReady {
		return
	}

	c.attempts++
	accepted := b.transportHasSession() && b.transport.RequestChannel(c.origin)
	if accepted {
		b.logger.Infof("channel request for %s accepted on attempt %d", c.origin, c.attempts)
		c.phase = PhaseAccepted
		c.origin = ""
		return
	}

	maxAttempts := b.cfg.MaxAttempts
	b.logger.Warnf("channel request rejected (attempt %d/%d), the session may not be ready yet", c.attempts, maxAttempts)

	if c.attempts < maxAttempts {
		s.scheduleAttempt(b.cfg.RetryDelay)
		return
	}

	origin := c.origin
	attempts := c.attempts
	c.phase = PhaseExhausted
	c.origin = ""
	b.logger.Errorf("%v: no channel for %s after %d attempts", ErrRetryExhausted, origin, attempts)
	b.observer.OnChannelFailed(origin, attempts)
}

// scheduleAttempt arranges one more attempt for the current request after
// delay, replacing any attempt already scheduled. It runs on the loop.
func (s *Session) scheduleAttempt(delay time.Duration) {
	b := s.bridge
	c := &s.channel

	c.seq++
	generation, seq := c.generation, c.seq
	b.logger.Debugf("next channel attempt in %s", delay)

	b.scheduler.AfterFunc(delay, func() {
		b.loop.Post(func() {
			if seq != c.seq {
				return
			}
			s.attempt(generation)
		})
	})
}

// resetChannel abandons any request in progress. It runs on the loop.
func (s *Session) resetChannel() {
	c := &s.channel
	c.generation++
	c.phase = PhaseIdle
	c.origin = ""
	c.attempts = 0
	s.channelReady = false
}
