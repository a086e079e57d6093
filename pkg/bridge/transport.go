package bridge

import (
	"context"
	"errors"

	"github.com/entrhq/tabbridge/pkg/types"
)

var (
	// ErrInvalidInput is reported for empty URLs, origins and keys.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransportUnavailable is reported when no overlay service or session exists.
	ErrTransportUnavailable = errors.New("transport unavailable")

	// ErrChannelNotReady is reported when a message is sent before the channel is ready.
	ErrChannelNotReady = errors.New("message channel not ready")

	// ErrRetryExhausted is reported when channel establishment gives up.
	ErrRetryExhausted = errors.New("channel retry exhausted")
)

// Observer receives bridge notifications. All methods are called on the
// bridge's loop goroutine and must not block on Session or Bridge methods
// that wait for the loop.
type Observer interface {
	// OnNavigationEvent reports every navigation and lifecycle event, after
	// session state has been updated. kind is e.g. "TabHidden" or "Unknown(9)".
	OnNavigationEvent(kind, url string)

	// OnDeepLink reports an accepted deep link with its parameters as a
	// flat JSON object.
	OnDeepLink(action, paramsJSON string)

	// OnPostMessage reports a message sent by the page. origin is the most
	// recently requested channel origin, which is not necessarily the origin
	// that produced the message.
	OnPostMessage(message, origin string)

	// OnChannelFailed reports that channel establishment for origin was
	// abandoned after attempts tries.
	OnChannelFailed(origin string, attempts int)
}

// NopObserver implements Observer with no-ops. Embed it to implement only
// the callbacks you need.
type NopObserver struct{}

func (NopObserver) OnNavigationEvent(string, string) {}
func (NopObserver) OnDeepLink(string, string)        {}
func (NopObserver) OnPostMessage(string, string)     {}
func (NopObserver) OnChannelFailed(string, int)      {}

// OpenRequest describes how the overlay should present a page.
type OpenRequest struct {
	URL                string
	ToolbarColor       uint32 // ARGB
	ShowTitle          bool
	EnableURLBarHiding bool
}

// Sink receives events from a transport. Deliver may be called from any
// goroutine and must not block.
type Sink interface {
	Deliver(env types.Envelope)
}

// Transport is the overlay browser client.
//
// Available, HasSession and PostMessage may be called from any goroutine.
// RequestChannel is called on the bridge loop and should return quickly;
// its result means the request was accepted for an attempt, not that the
// channel is ready. Readiness is reported later as a MessageChannelReady
// event through the Sink.
type Transport interface {
	Available() bool
	HasSession() bool
	Open(ctx context.Context, req OpenRequest) error
	Close(ctx context.Context) error
	RequestChannel(origin string) bool
	PostMessage(payload string) types.ResultCode
	SetSink(sink Sink)
}

// Launcher opens a URL outside the overlay, typically in the system browser.
type Launcher interface {
	Launch(ctx context.Context, url string) error
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context, url string) error

// Launch implements Launcher.
func (f LauncherFunc) Launch(ctx context.Context, url string) error {
	return f(ctx, url)
}
