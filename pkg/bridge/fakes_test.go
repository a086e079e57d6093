package bridge

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/entrhq/tabbridge/pkg/dispatch"
	"github.com/entrhq/tabbridge/pkg/types"
)

// fakeTransport is a scriptable Transport.
type fakeTransport struct {
	mu sync.Mutex

	available  bool
	hasSession bool
	openErr    error

	// acceptAfter is the number of channel requests rejected before one is
	// accepted; a negative value rejects every request.
	acceptAfter int
	postResult  types.ResultCode

	opened   []OpenRequest
	closed   int
	requests []string
	posted   []string
	sink     Sink
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{available: true, hasSession: true, acceptAfter: -1}
}

func (f *fakeTransport) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

func (f *fakeTransport) HasSession() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasSession
}

func (f *fakeTransport) Open(_ context.Context, req OpenRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = append(f.opened, req)
	return nil
}

func (f *fakeTransport) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeTransport) RequestChannel(origin string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, origin)
	return f.acceptAfter >= 0 && len(f.requests) > f.acceptAfter
}

func (f *fakeTransport) PostMessage(payload string) types.ResultCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, payload)
	return f.postResult
}

func (f *fakeTransport) SetSink(sink Sink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sink = sink
}

func (f *fakeTransport) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeTransport) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// fakeLauncher records launched URLs.
type fakeLauncher struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (l *fakeLauncher) Launch(_ context.Context, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.urls = append(l.urls, url)
	return nil
}

// recordingObserver records every callback as a formatted line.
type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (o *recordingObserver) add(format string, args ...interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, fmt.Sprintf(format, args...))
}

func (o *recordingObserver) OnNavigationEvent(kind, url string) {
	o.add("nav %s %s", kind, url)
}

func (o *recordingObserver) OnDeepLink(action, paramsJSON string) {
	o.add("deeplink %s %s", action, paramsJSON)
}

func (o *recordingObserver) OnPostMessage(message, origin string) {
	o.add("message %s %s", message, origin)
}

func (o *recordingObserver) OnChannelFailed(origin string, attempts int) {
	o.add("failed %s %d", origin, attempts)
}

func (o *recordingObserver) all() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.events...)
}

// harness wires a Bridge to fakes with a manual scheduler and a private registry.
type harness struct {
	t         *testing.T
	bridge    *Bridge
	transport *fakeTransport
	launcher  *fakeLauncher
	observer  *recordingObserver
	scheduler *dispatch.ManualScheduler
	registry  *Registry
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		t:         t,
		transport: newFakeTransport(),
		launcher:  &fakeLauncher{},
		observer:  &recordingObserver{},
		scheduler: dispatch.NewManualScheduler(),
		registry:  NewRegistry(),
	}

	all := append([]Option{
		WithLauncher(h.launcher),
		WithObserver(h.observer),
		WithScheduler(h.scheduler),
		WithRegistry(h.registry),
	}, opts...)

	b, err := New(h.transport, all...)
	require.NoError(t, err)
	b.Start()
	h.bridge = b

	t.Cleanup(func() {
		_ = b.Shutdown(context.Background())
	})
	return h
}

// flush waits for the loop to handle everything posted so far.
func (h *harness) flush() {
	h.t.Helper()
	require.NoError(h.t, h.bridge.Flush(context.Background()))
}

// advance moves the manual clock and waits for the attempts it posted.
// Attempts posted by a fired timer schedule their follow-up on the loop, so
// step by one retry delay at a time.
func (h *harness) advance(d time.Duration) {
	h.t.Helper()
	h.flush()
	h.scheduler.Advance(d)
	h.flush()
}

// openSession opens a session through the transport and makes it active.
func (h *harness) openSession() *Session {
	h.t.Helper()
	s := h.bridge.NewSession()
	require.True(h.t, s.Open(context.Background(), "https://example.com", ""))
	return s
}

func (h *harness) status(s *Session) Status {
	h.t.Helper()
	st, err := s.Status(context.Background())
	require.NoError(h.t, err)
	return st
}
