package bridge

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/entrhq/tabbridge/pkg/deeplink"
	"github.com/entrhq/tabbridge/pkg/dispatch"
	"github.com/entrhq/tabbridge/pkg/logging"
	"github.com/entrhq/tabbridge/pkg/types"
)

// Bridge routes transport events to the active Session and the host Observer.
type Bridge struct {
	cfg       Config
	transport Transport
	launcher  Launcher
	observer  Observer
	registry  *Registry
	scheduler dispatch.Scheduler
	allowlist *deeplink.Allowlist
	logger    *logging.Logger

	loop    *dispatch.Loop
	started atomic.Bool
	stopped atomic.Bool
}

// New creates a Bridge over transport. A nil transport is treated as
// permanently unavailable, so opening always uses the launcher.
func New(transport Transport, opts ...Option) (*Bridge, error) {
	b := &Bridge{
		cfg:       DefaultConfig(),
		transport: transport,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.cfg = b.cfg.withDefaults()
	if b.observer == nil {
		b.observer = NopObserver{}
	}
	if b.registry == nil {
		b.registry = DefaultRegistry
	}
	if b.scheduler == nil {
		b.scheduler = dispatch.SystemScheduler{}
	}
	if b.logger == nil {
		b.logger = logging.Discard("bridge")
	}
	b.logger.SetDebug(b.cfg.DebugLogging)

	allowlist, err := deeplink.NewAllowlist(b.cfg.AllowedActions, b.cfg.DeniedActions)
	if err != nil {
		return nil, fmt.Errorf("failed to build deep link allowlist: %w", err)
	}
	b.allowlist = allowlist

	b.loop = dispatch.NewLoop(dispatch.WithLogger(b.logger.With("loop")))
	return b, nil
}

// Config returns the bridge settings.
func (b *Bridge) Config() Config {
	return b.cfg
}

// Registry returns the registry sessions are made active in.
func (b *Bridge) Registry() *Registry {
	return b.registry
}

// Start attaches the bridge to its transport so events begin to flow.
// It is safe to call more than once.
func (b *Bridge) Start() {
	if b.stopped.Load() || !b.started.CompareAndSwap(false, true) {
		return
	}
	if b.transport != nil {
		b.transport.SetSink(b)
	}
	b.logger.Infof("bridge started (transport available=%t)", b.transportAvailable())
}

// Shutdown detaches from the transport, abandons any channel request, clears
// the registry and stops the loop after it drains. The transport itself is
// not closed; it belongs to the caller.
func (b *Bridge) Shutdown(ctx context.Context) error {
	if !b.stopped.CompareAndSwap(false, true) {
		return nil
	}
	if b.transport != nil {
		b.transport.SetSink(nil)
	}

	err := b.loop.Call(ctx, func() {
		if s, ok := b.activeSession(); ok {
			s.resetChannel()
		}
	})
	b.registry.Unregister()

	done := make(chan struct{})
	go func() {
		b.loop.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}

	b.logger.Infof("bridge stopped")
	return err
}

// Active returns the session events are currently routed to.
func (b *Bridge) Active() (*Session, bool) {
	return b.registry.Active()
}

// Deliver hands an event from the transport to the bridge. It may be called
// from any goroutine and never blocks; the event is handled on the loop in
// delivery order. Events delivered after Shutdown are dropped.
func (b *Bridge) Deliver(env types.Envelope) {
	if env.Version != types.EnvelopeVersion {
		b.logger.Warnf("dropping envelope with unsupported version %d (type=%s)", env.Version, env.Type)
		return
	}

	b.logger.Debugf("deliver: type=%s event=%s url=%s", env.Type, env.Event.Name(), env.Event.URL)

	if !b.loop.Post(func() { b.handle(env) }) {
		b.logger.Warnf("dropping %s envelope: bridge is shut down", env.Type)
	}
}

// HandleDeepLinkURI accepts a deep-link activation from the host, for example
// a URI the application was launched with. It returns false if the URI
// cannot be parsed; accepted URIs are handled on the loop like any other
// deep-link event.
func (b *Bridge) HandleDeepLinkURI(uri string) bool {
	if _, err := deeplink.Parse(uri); err != nil {
		b.logger.Warnf("HandleDeepLinkURI: %v", err)
		return false
	}
	b.Deliver(types.NewDeepLinkEnvelope(uri))
	return true
}

// Flush waits until every event delivered before the call has been handled.
func (b *Bridge) Flush(ctx context.Context) error {
	return b.loop.Call(ctx, func() {})
}

// handle runs on the loop.
func (b *Bridge) handle(env types.Envelope) {
	switch env.Type {
	case types.EnvelopeNavigation:
		b.handleNavigation(env.Event)
	case types.EnvelopeDeepLink:
		b.handleDeepLink(env.URL)
	case types.EnvelopePostMessage:
		b.handlePostMessage(env.Payload)
	case types.EnvelopeServiceConnected:
		b.handleService(true)
	case types.EnvelopeServiceDisconnected:
		b.handleService(false)
	default:
		b.logger.Warnf("ignoring envelope of unknown type %q", env.Type)
	}
}

func (b *Bridge) handleNavigation(ev types.NavigationEvent) {
	s, ok := b.activeSession()
	if !ok {
		b.logger.Warnf("no active session, dropping event %s (url=%s)", ev.Name(), ev.URL)
		return
	}

	s.applyEvent(ev)
	b.observer.OnNavigationEvent(ev.Name(), ev.URL)
}

func (b *Bridge) handleDeepLink(uri string) {
	req, err := deeplink.Parse(uri)
	if err != nil {
		b.logger.Warnf("dropping deep link: %v", err)
		return
	}

	if b.cfg.Scheme != "" && !strings.EqualFold(req.Scheme, b.cfg.Scheme) {
		b.logger.Warnf("dropping deep link with scheme %q (want %q)", req.Scheme, b.cfg.Scheme)
		return
	}
	if !b.allowlist.Allows(req.Action) {
		b.logger.Warnf("dropping deep link: action %q is not allowed", req.Action)
		return
	}

	s, ok := b.activeSession()
	if !ok {
		b.logger.Warnf("no active session, dropping deep link %q", req.Action)
		return
	}

	params := req.ParamsJSON()
	s.recordDeepLink(req.Action, params)
	b.logger.Infof("deep link: action=%s params=%s", req.Action, params)
	b.observer.OnDeepLink(req.Action, params)
}

func (b *Bridge) handlePostMessage(message string) {
	s, ok := b.activeSession()
	if !ok {
		b.logger.Warnf("no active session, dropping page message")
		return
	}

	// The platform does not say which origin sent the message; report the
	// last one a channel was requested for.
	origin := s.channel.lastOrigin
	b.logger.Debugf("page message from %s: %s", origin, message)
	b.observer.OnPostMessage(message, origin)
}

func (b *Bridge) handleService(connected bool) {
	b.logger.Infof("transport service connected=%t", connected)

	s, ok := b.activeSession()
	if !ok {
		return
	}

	s.channelReady = false
	if connected && s.channel.phase == PhaseRequesting {
		// Retries already scheduled keep going against the new service
		return
	}
	s.resetChannel()
}

// activeSession returns the registered session if it belongs to this bridge.
// Sessions of another bridge sharing the registry are not touched, since
// their state lives on that bridge's loop.
func (b *Bridge) activeSession() (*Session, bool) {
	s, ok := b.registry.Active()
	if !ok || s.bridge != b {
		return nil, false
	}
	return s, true
}

func (b *Bridge) transportAvailable() bool {
	return b.transport != nil && b.transport.Available()
}

func (b *Bridge) transportHasSession() bool {
	return b.transport != nil && b.transport.HasSession()
}
