package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/tabbridge/pkg/types"
)

func TestRequestChannelExhausts(t *testing.T) {
	h := newHarness(t)
	s := h.openSession()

	require.True(t, s.RequestChannel(context.Background(), "https://example.com"))
	assert.Equal(t, 1, h.transport.requestCount(), "first attempt is made before returning")

	for i := 2; i <= DefaultMaxAttempts; i++ {
		h.advance(time.Second)
		assert.Equal(t, i, h.transport.requestCount())
	}

	st := h.status(s)
	assert.Equal(t, PhaseExhausted, st.ChannelPhase)
	assert.Empty(t, st.PendingOrigin)
	assert.False(t, st.ChannelReady)
	assert.Equal(t, []string{"failed https://example.com 5"}, h.observer.all())

	// Nothing further is scheduled
	h.advance(10 * time.Second)
	assert.Equal(t, DefaultMaxAttempts, h.transport.requestCount())
	assert.Equal(t, 0, h.scheduler.Pending())
}

func TestRequestChannelRetryDelay(t *testing.T) {
	h := newHarness(t)
	s := h.openSession()

	require.True(t, s.RequestChannel(context.Background(), "https://example.com"))
	h.advance(999 * time.Millisecond)
	assert.Equal(t, 1, h.transport.requestCount())

	h.advance(time.Millisecond)
	assert.Equal(t, 2, h.transport.requestCount())
}

func TestRequestChannelReadyStopsRetries(t *testing.T) {
	h := newHarness(t)
	s := h.openSession()

	require.True(t, s.RequestChannel(context.Background(), "https://example.com"))
	h.advance(time.Second)
	h.advance(time.Second)
	require.Equal(t, 3, h.transport.requestCount())

	h.bridge.Deliver(types.NewEventEnvelope(types.EventMessageChannelReady, ""))
	h.flush()

	st := h.status(s)
	assert.True(t, st.ChannelReady)
	assert.Equal(t, PhaseReady, st.ChannelPhase)
	assert.Empty(t, st.PendingOrigin)

	h.advance(time.Second)
	h.advance(time.Second)
	h.advance(time.Second)
	assert.Equal(t, 3, h.transport.requestCount(), "readiness cancels scheduled retries")
	assert.NotContains(t, h.observer.all(), "failed https://example.com 5")
}

func TestRequestChannelAccepted(t *testing.T) {
	h := newHarness(t)
	h.transport.acceptAfter = 2
	s := h.openSession()

	require.True(t, s.RequestChannel(context.Background(), "https://example.com"))
	h.advance(time.Second)
	h.advance(time.Second)
	require.Equal(t, 3, h.transport.requestCount())

	st := h.status(s)
	assert.Equal(t, PhaseAccepted, st.ChannelPhase)
	assert.False(t, st.ChannelReady, "acceptance is not readiness")
	assert.Equal(t, 3, st.Attempts)

	h.advance(5 * time.Second)
	assert.Equal(t, 3, h.transport.requestCount())

	h.bridge.Deliver(types.NewEventEnvelope(types.EventMessageChannelReady, ""))
	h.flush()
	assert.True(t, s.ChannelReady())
}

func TestRequestChannelSupersedes(t *testing.T) {
	h := newHarness(t)
	s := h.openSession()

	require.True(t, s.RequestChannel(context.Background(), "https://a.example"))
	h.advance(time.Second)
	require.Equal(t, []string{"https://a.example", "https://a.example"}, h.transport.requested())

	// originA's next retry is scheduled at t=2s. Supersede at t=1.5s.
	h.advance(500 * time.Millisecond)
	require.True(t, s.RequestChannel(context.Background(), "https://b.example"))
	require.Equal(t, 2, h.scheduler.Pending(), "the stale timer is still pending")

	// Fires the stale originA timer; it must do nothing
	h.advance(500 * time.Millisecond)
	assert.Equal(t,
		[]string{"https://a.example", "https://a.example", "https://b.example"},
		h.transport.requested())

	// originB keeps its own schedule
	h.advance(500 * time.Millisecond)
	assert.Equal(t,
		[]string{"https://a.example", "https://a.example", "https://b.example", "https://b.example"},
		h.transport.requested())

	st := h.status(s)
	assert.Equal(t, "https://b.example", st.PendingOrigin)
	assert.Equal(t, 2, st.Attempts)
}

func TestRequestChannelSupersededExhaustionReportsNewOrigin(t *testing.T) {
	h := newHarness(t)
	s := h.openSession()

	require.True(t, s.RequestChannel(context.Background(), "https://a.example"))
	h.advance(time.Second)
	require.True(t, s.RequestChannel(context.Background(), "https://b.example"))

	for i := 0; i < DefaultMaxAttempts; i++ {
		h.advance(time.Second)
	}

	assert.Equal(t, []string{"failed https://b.example 5"}, h.observer.all())
}

func TestRequestChannelInvalidInput(t *testing.T) {
	h := newHarness(t)
	s := h.openSession()

	assert.False(t, s.RequestChannel(context.Background(), ""))
	assert.False(t, s.RequestChannel(context.Background(), "not an origin"))
	assert.Equal(t, 0, h.transport.requestCount())
	assert.Equal(t, PhaseIdle, h.status(s).ChannelPhase)
}

func TestRequestChannelNoTransportSession(t *testing.T) {
	h := newHarness(t)
	s := h.openSession()
	h.transport.mu.Lock()
	h.transport.hasSession = false
	h.transport.mu.Unlock()

	assert.False(t, s.RequestChannel(context.Background(), "https://example.com"))
	assert.Equal(t, 0, h.transport.requestCount())
}

func TestRequestChannelNormalizesOrigin(t *testing.T) {
	h := newHarness(t)
	s := h.openSession()

	require.True(t, s.RequestChannel(context.Background(), "HTTPS://Example.COM:443/path?q=1"))
	assert.Equal(t, []string{"https://example.com"}, h.transport.requested())
}

func TestNavigationFinishedTriggersExtraAttempt(t *testing.T) {
	h := newHarness(t)
	s := h.openSession()

	require.True(t, s.RequestChannel(context.Background(), "https://example.com"))
	require.Equal(t, 1, h.transport.requestCount())

	h.bridge.Deliver(types.NewNavigationEnvelope(types.CodeNavigationFinished, "https://example.com"))
	h.advance(500 * time.Millisecond)
	assert.Equal(t, 2, h.transport.requestCount(), "extra attempt 500ms after the page finished")

	// The regular retry scheduled at 1s was replaced, the chain continues from the extra attempt
	h.advance(500 * time.Millisecond)
	assert.Equal(t, 2, h.transport.requestCount())
	h.advance(500 * time.Millisecond)
	assert.Equal(t, 3, h.transport.requestCount())

	assert.Equal(t, 3, h.status(s).Attempts)
}

func TestNavigationFinishedIgnoredWhenIdle(t *testing.T) {
	h := newHarness(t)
	h.openSession()

	h.bridge.Deliver(types.NewNavigationEnvelope(types.CodeNavigationFinished, "https://example.com"))
	h.advance(time.Second)
	assert.Equal(t, 0, h.transport.requestCount())
	assert.Equal(t, 0, h.scheduler.Pending())
}

func TestSendMessage(t *testing.T) {
	h := newHarness(t)
	s := h.openSession()

	assert.False(t, s.SendMessage(context.Background(), "early"), "not ready yet")
	assert.Empty(t, h.transport.posted)

	require.True(t, s.RequestChannel(context.Background(), "https://example.com"))
	h.bridge.Deliver(types.NewEventEnvelope(types.EventMessageChannelReady, ""))
	h.flush()

	assert.True(t, s.SendMessage(context.Background(), "hello"))
	assert.Equal(t, []string{"hello"}, h.transport.posted)

	h.transport.mu.Lock()
	h.transport.postResult = types.ResultFailureMessagingError
	h.transport.mu.Unlock()
	assert.False(t, s.SendMessage(context.Background(), "again"))
}

func TestSendMessageWithoutTransportSession(t *testing.T) {
	h := newHarness(t)
	s := h.openSession()
	h.transport.mu.Lock()
	h.transport.hasSession = false
	h.transport.mu.Unlock()

	assert.False(t, s.SendMessage(context.Background(), "hello"))
}

func TestServiceDisconnectResetsChannel(t *testing.T) {
	h := newHarness(t)
	s := h.openSession()

	require.True(t, s.RequestChannel(context.Background(), "https://example.com"))
	h.bridge.Deliver(types.NewEventEnvelope(types.EventMessageChannelReady, ""))
	h.flush()
	require.True(t, s.ChannelReady())

	h.bridge.Deliver(types.NewServiceEnvelope(false))
	h.flush()

	st := h.status(s)
	assert.False(t, st.ChannelReady)
	assert.Equal(t, PhaseIdle, st.ChannelPhase)
	assert.False(t, s.SendMessage(context.Background(), "hello"))
}

func TestServiceDisconnectAbandonsRetries(t *testing.T) {
	h := newHarness(t)
	s := h.openSession()

	require.True(t, s.RequestChannel(context.Background(), "https://example.com"))
	h.bridge.Deliver(types.NewServiceEnvelope(false))
	h.advance(5 * time.Second)

	assert.Equal(t, 1, h.transport.requestCount())
	assert.Empty(t, h.observer.all())
	assert.Equal(t, PhaseIdle, h.status(s).ChannelPhase)
}

func TestServiceReconnectKeepsRequesting(t *testing.T) {
	h := newHarness(t)
	s := h.openSession()

	require.True(t, s.RequestChannel(context.Background(), "https://example.com"))
	h.bridge.Deliver(types.NewServiceEnvelope(true))
	h.advance(time.Second)

	assert.Equal(t, 2, h.transport.requestCount())
	assert.Equal(t, PhaseRequesting, h.status(s).ChannelPhase)
}

func TestCloseAbandonsRetries(t *testing.T) {
	h := newHarness(t)
	s := h.openSession()

	require.True(t, s.RequestChannel(context.Background(), "https://example.com"))
	s.Close(context.Background())
	h.advance(5 * time.Second)

	assert.Equal(t, 1, h.transport.requestCount())
	assert.Empty(t, h.observer.all())
}

func TestCustomRetrySettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 2
	cfg.RetryDelay = 200 * time.Millisecond

	h := newHarness(t, WithConfig(cfg))
	s := h.openSession()

	require.True(t, s.RequestChannel(context.Background(), "https://example.com"))
	h.advance(200 * time.Millisecond)

	assert.Equal(t, 2, h.transport.requestCount())
	assert.Equal(t, PhaseExhausted, h.status(s).ChannelPhase)
	assert.Equal(t, []string{"failed https://example.com 2"}, h.observer.all())
}

func TestChannelPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "requesting", PhaseRequesting.String())
	assert.Equal(t, "accepted", PhaseAccepted.String())
	assert.Equal(t, "ready", PhaseReady.String())
	assert.Equal(t, "exhausted", PhaseExhausted.String())
}
