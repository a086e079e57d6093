package bridge

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/entrhq/tabbridge/pkg/types"
)

// State is the tab lifecycle state of a Session.
type State int

const (
	StateClosed State = iota
	StateOpen
	// StateHidden means the tab is open but not visible. It counts as open.
	StateHidden
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// Session is one overlay browsing session.
//
// Apart from its identity, every field is owned by the bridge loop. The
// exported methods hop onto the loop to read or change them, so they are
// safe from any goroutine except the loop itself (Observer callbacks).
type Session struct {
	id     string
	bridge *Bridge

	userAgent    string
	customHeader string

	// Loop-owned state
	state              State
	currentURL         string
	toolbarColor       string
	channelReady       bool
	channel            channelState
	lastEvent          string
	lastDeepLinkAction string
	lastDeepLinkParams string

	released atomic.Bool
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithUserAgent sets the user agent passed to the page on open.
func WithUserAgent(ua string) SessionOption {
	return func(s *Session) {
		s.userAgent = ua
	}
}

// WithCustomHeader sets the custom header value passed to the page on open.
func WithCustomHeader(h string) SessionOption {
	return func(s *Session) {
		s.customHeader = h
	}
}

// NewSession creates a closed session. It becomes active when opened.
func (b *Bridge) NewSession(opts ...SessionOption) *Session {
	s := &Session{
		id:           uuid.New().String(),
		bridge:       b,
		userAgent:    b.cfg.UserAgent,
		customHeader: b.cfg.CustomHeader,
		toolbarColor: b.cfg.ToolbarColor,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session token.
func (s *Session) ID() string {
	return s.id
}

// Open shows url in the overlay with the given toolbar colour ("#RRGGBB" or
// "#AARRGGBB"; empty uses the configured default). When the overlay
// transport is unavailable the URL is handed to the launcher instead.
// Either way a successful open marks the session open and makes it active.
func (s *Session) Open(ctx context.Context, url, toolbarColor string) bool {
	b := s.bridge
	if url == "" {
		b.logger.Warnf("Open: %v: empty URL", ErrInvalidInput)
		return false
	}

	if toolbarColor == "" {
		toolbarColor = b.cfg.ToolbarColor
	}
	argb, ok := ParseColor(toolbarColor)
	if !ok {
		b.logger.Warnf("Open: invalid toolbar color %q, using default", toolbarColor)
	}

	target := DecorateURL(url, s.userAgent, s.customHeader)
	if target != url {
		b.logger.Debugf("Open: decorated URL %s", target)
	}

	if b.transportAvailable() {
		err := b.transport.Open(ctx, OpenRequest{
			URL:                target,
			ToolbarColor:       argb,
			ShowTitle:          b.cfg.ShowTitle,
			EnableURLBarHiding: b.cfg.EnableURLBarHiding,
		})
		if err != nil {
			b.logger.Errorf("Open: transport failed to open %s: %v", target, err)
			return false
		}
	} else {
		b.logger.Warnf("Open: %v, falling back to external browser", ErrTransportUnavailable)
		if b.launcher == nil {
			b.logger.Errorf("Open: no launcher configured")
			return false
		}
		if err := b.launcher.Launch(ctx, target); err != nil {
			b.logger.Errorf("Open: external launch failed: %v", err)
			return false
		}
	}

	err := b.loop.Call(ctx, func() {
		s.toolbarColor = toolbarColor
		s.markOpen(url)
		b.registry.Register(s)
	})
	if err != nil {
		b.logger.Errorf("Open: %v", err)
		return false
	}
	b.logger.Infof("Custom tab opened: %s", url)
	return true
}

// Close marks the session closed and removes it from the registry if it
// is active. The overlay tab is closed only for the active session; a
// superseded session no longer owns it.
func (s *Session) Close(ctx context.Context) {
	b := s.bridge

	var active bool
	if err := b.loop.Call(ctx, func() {
		cur, ok := b.registry.Active()
		active = ok && cur == s
	}); err != nil {
		b.logger.Errorf("Close: %v", err)
		return
	}

	if active && b.transportHasSession() {
		if err := b.transport.Close(ctx); err != nil {
			b.logger.Warnf("Close: transport close failed: %v", err)
		}
	}

	if err := b.loop.Call(ctx, s.markClosed); err != nil {
		b.logger.Errorf("Close: %v", err)
	}
}

// Release marks the session as discarded by its owner. A released session
// is never returned by the registry again.
func (s *Session) Release() {
	s.released.Store(true)
	s.bridge.registry.UnregisterIf(s)
}

// IsOpen reports whether the tab is open, including while hidden.
func (s *Session) IsOpen() bool {
	st, err := s.Status(context.Background())
	return err == nil && st.State != StateClosed
}

// ChannelReady reports whether the message channel is ready.
func (s *Session) ChannelReady() bool {
	st, err := s.Status(context.Background())
	return err == nil && st.ChannelReady
}

// CurrentURL returns the last URL the tab reported or was opened with.
func (s *Session) CurrentURL() string {
	st, _ := s.Status(context.Background())
	return st.URL
}

// Status is a point-in-time copy of a session's state.
type Status struct {
	ID                 string
	State              State
	URL                string
	ToolbarColor       string
	UserAgent          string
	CustomHeader       string
	ChannelReady       bool
	ChannelPhase       ChannelPhase
	PendingOrigin      string
	Attempts           int
	LastEvent          string
	LastDeepLinkAction string
	LastDeepLinkParams string
}

// Status returns a copy of the session state, read on the loop.
func (s *Session) Status(ctx context.Context) (Status, error) {
	var st Status
	err := s.bridge.loop.Call(ctx, func() {
		st = s.status()
	})
	return st, err
}

// status runs on the loop.
func (s *Session) status() Status {
	return Status{
		ID:                 s.id,
		State:              s.state,
		URL:                s.currentURL,
		ToolbarColor:       s.toolbarColor,
		UserAgent:          s.userAgent,
		CustomHeader:       s.customHeader,
		ChannelReady:       s.channelReady,
		ChannelPhase:       s.channel.phase,
		PendingOrigin:      s.channel.origin,
		Attempts:           s.channel.attempts,
		LastEvent:          s.lastEvent,
		LastDeepLinkAction: s.lastDeepLinkAction,
		LastDeepLinkParams: s.lastDeepLinkParams,
	}
}

// markOpen runs on the loop.
func (s *Session) markOpen(url string) {
	if s.state == StateClosed {
		s.state = StateOpen
	}
	if url != "" {
		s.currentURL = url
	}
}

// markClosed runs on the loop.
func (s *Session) markClosed() {
	s.state = StateClosed
	s.currentURL = ""
	s.resetChannel()
	s.channel.lastOrigin = ""
	s.bridge.registry.UnregisterIf(s)
}

// applyEvent updates lifecycle and channel state for a platform event.
// It runs on the loop.
func (s *Session) applyEvent(ev types.NavigationEvent) {
	b := s.bridge
	s.lastEvent = ev.Name()

	switch ev.Kind {
	case types.EventTabOpened, types.EventNavigationStarted:
		if s.state == StateClosed {
			s.state = StateOpen
			b.logger.Debugf("session %s opened by %s", s.id, ev.Name())
		}
	case types.EventTabClosed:
		s.markClosed()
		b.logger.Infof("Custom tab closed")
		return
	case types.EventTabHidden:
		// Hidden is still open; the user may come back to the tab
		if s.state == StateOpen {
			s.state = StateHidden
		}
	case types.EventTabShown:
		if s.state == StateHidden {
			s.state = StateOpen
		}
	case types.EventMessageChannelReady:
		s.channelReady = true
		s.channel.ready()
		b.logger.Infof("message channel ready")
	case types.EventNavigationFinished:
		if s.channel.phase == PhaseRequesting && !s.channelReady {
			b.logger.Debugf("navigation finished, retrying channel request for %s", s.channel.origin)
			s.scheduleAttempt(b.cfg.NavigationRetryDelay)
		}
	}

	if ev.URL != "" && s.state != StateClosed {
		s.currentURL = ev.URL
	}
}

// recordDeepLink runs on the loop.
func (s *Session) recordDeepLink(action, paramsJSON string) {
	s.lastDeepLinkAction = action
	s.lastDeepLinkParams = paramsJSON
}

// LastDeepLink returns the action and parameters of the last deep link
// routed to this session.
func (s *Session) LastDeepLink() (action, paramsJSON string) {
	st, _ := s.Status(context.Background())
	return st.LastDeepLinkAction, st.LastDeepLinkParams
}
