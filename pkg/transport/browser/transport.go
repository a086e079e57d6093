package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/tabbridge/pkg/bridge"
	"github.com/entrhq/tabbridge/pkg/types"
)

// ErrNotStarted is returned by Open before Start has succeeded.
var ErrNotStarted = errors.New("browser transport not started")

// Transport is a bridge.Transport backed by a Playwright Chromium window.
// It holds at most one page; opening again replaces it.
type Transport struct {
	opts options

	mu         sync.RWMutex
	playwright *playwright.Playwright
	browser    playwright.Browser
	context    playwright.BrowserContext
	page       playwright.Page
	connected  bool
	sink       bridge.Sink

	// origin the page's channel was opened for
	channelOrigin string
}

var _ bridge.Transport = (*Transport)(nil)

// NewTransport creates a transport. Call Start before use.
func NewTransport(opts ...Option) *Transport {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Transport{opts: o}
}

// Start runs the Playwright driver and launches Chromium.
func (t *Transport) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.playwright != nil {
		return nil
	}

	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if t.opts.install {
		if err := playwright.Install(runOpts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(t.opts.headless),
	})
	if err != nil {
		pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  t.opts.viewport.Width,
			Height: t.opts.viewport.Height,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return fmt.Errorf("failed to create context: %w", err)
	}

	browser.OnDisconnected(func(playwright.Browser) {
		t.mu.Lock()
		t.connected = false
		t.page = nil
		t.channelOrigin = ""
		t.mu.Unlock()
		t.opts.logger.Warnf("Browser disconnected")
		t.deliver(types.NewServiceEnvelope(false))
	})

	t.playwright = pw
	t.browser = browser
	t.context = bctx
	t.connected = true
	t.opts.logger.Infof("Chromium started (headless=%v)", t.opts.headless)

	go t.deliver(types.NewServiceEnvelope(true))
	return nil
}

// Shutdown closes the page and browser and stops the driver. Handles are
// taken under the lock and closed outside it, since Playwright runs the
// close and disconnect handlers before Close returns.
func (t *Transport) Shutdown() error {
	t.mu.Lock()
	page, bctx, browser, pw := t.page, t.context, t.browser, t.playwright
	t.page = nil
	t.context = nil
	t.browser = nil
	t.playwright = nil
	t.connected = false
	t.channelOrigin = ""
	t.mu.Unlock()

	if page != nil {
		_ = page.Close()
	}
	if bctx != nil {
		_ = bctx.Close()
	}
	if browser != nil {
		_ = browser.Close()
	}
	if pw != nil {
		if err := pw.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
	}
	return nil
}

// SetSink implements bridge.Transport.
func (t *Transport) SetSink(sink bridge.Sink) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink = sink
}

// Available reports whether Chromium is running.
func (t *Transport) Available() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.connected
}

// HasSession reports whether a page is open.
func (t *Transport) HasSession() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.page != nil
}

// Open opens req.URL in a new page, replacing any current page. It returns
// once the page is wired up; the navigation itself is reported through
// events.
func (t *Transport) Open(ctx context.Context, req bridge.OpenRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	if !t.connected || t.context == nil {
		t.mu.Unlock()
		return ErrNotStarted
	}
	bctx := t.context
	old := t.page
	t.page = nil
	t.channelOrigin = ""
	t.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	page, err := bctx.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(t.opts.timeout)

	if err := t.wire(page, req.ToolbarColor); err != nil {
		page.Close()
		return err
	}
	if !req.ShowTitle || !req.EnableURLBarHiding {
		t.opts.logger.Debugf("Title and URL bar settings have no effect in a desktop window")
	}

	t.mu.Lock()
	t.page = page
	t.mu.Unlock()

	go func() {
		if _, err := page.Goto(req.URL); err != nil {
			t.opts.logger.Warnf("Navigation to %s failed: %v", req.URL, err)
		}
	}()

	t.opts.logger.Infof("Opened page %s", req.URL)
	return nil
}

// Close closes the current page. The bridge already knows, so no
// TabClosed event is emitted for it.
func (t *Transport) Close(ctx context.Context) error {
	t.mu.Lock()
	page := t.page
	t.page = nil
	t.channelOrigin = ""
	t.mu.Unlock()

	if page == nil {
		return nil
	}
	if err := page.Close(); err != nil {
		return fmt.Errorf("failed to close page: %w", err)
	}
	return nil
}

// RequestChannel accepts the request when the page has committed a
// document from origin, then opens the page side of the channel in the
// background. Readiness arrives as a MessageChannelReady event.
func (t *Transport) RequestChannel(origin string) bool {
	t.mu.Lock()
	page := t.page
	if page == nil || !sameOrigin(page.URL(), origin) {
		t.mu.Unlock()
		return false
	}
	t.channelOrigin = origin
	t.mu.Unlock()

	go func() {
		if _, err := page.Evaluate(openChannelScript); err != nil {
			t.opts.logger.Warnf("Opening channel for %s failed: %v", origin, err)
		}
	}()
	return true
}

// PostMessage delivers payload to the page's tabbridge.onmessage handler
// and as a window message event.
func (t *Transport) PostMessage(payload string) types.ResultCode {
	t.mu.RLock()
	page := t.page
	origin := t.channelOrigin
	t.mu.RUnlock()

	if page == nil {
		return types.ResultFailureMessagingError
	}
	if origin == "" || !sameOrigin(page.URL(), origin) {
		return types.ResultFailureDisallowed
	}

	ok, err := page.Evaluate(deliverScript, payload)
	if err != nil {
		t.opts.logger.Warnf("PostMessage failed: %v", err)
		return types.ResultFailureRemoteError
	}
	if delivered, _ := ok.(bool); !delivered {
		return types.ResultFailureMessagingError
	}
	return types.ResultSuccess
}

// wire installs the page shim and subscribes to page events. Events from
// a page that has since been replaced are dropped.
func (t *Transport) wire(page playwright.Page, argb uint32) error {
	script, err := initScript(t.opts.scheme, argb)
	if err != nil {
		return err
	}

	bindings := map[string]playwright.BindingCallFunction{
		bindingVisibility: func(src *playwright.BindingSource, args ...interface{}) interface{} {
			state, _ := bindingArg(args)
			if kind, ok := visibilityKind(state); ok {
				t.emit(page, types.NewEventEnvelope(kind, ""))
			}
			return nil
		},
		bindingMessage: func(src *playwright.BindingSource, args ...interface{}) interface{} {
			if msg, ok := bindingArg(args); ok {
				t.emit(page, types.NewPostMessageEnvelope(msg))
			}
			return nil
		},
		bindingDeepLink: func(src *playwright.BindingSource, args ...interface{}) interface{} {
			if uri, ok := bindingArg(args); ok {
				t.emit(page, types.NewDeepLinkEnvelope(uri))
			}
			return nil
		},
		bindingChannelReady: func(src *playwright.BindingSource, args ...interface{}) interface{} {
			t.emit(page, types.NewEventEnvelope(types.EventMessageChannelReady, ""))
			return nil
		},
	}
	for name, fn := range bindings {
		if err := page.ExposeBinding(name, fn); err != nil {
			return fmt.Errorf("failed to expose %s: %w", name, err)
		}
	}
	if err := page.AddInitScript(playwright.Script{Content: &script}); err != nil {
		return fmt.Errorf("failed to add init script: %w", err)
	}

	page.OnRequest(func(req playwright.Request) {
		if isMainFrameNavigation(req) {
			t.emit(page, types.NewEventEnvelope(types.EventNavigationStarted, req.URL()))
		}
	})
	page.OnLoad(func(p playwright.Page) {
		t.emit(page, types.NewEventEnvelope(types.EventNavigationFinished, p.URL()))
	})
	page.OnRequestFailed(func(req playwright.Request) {
		if !isMainFrameNavigation(req) {
			return
		}
		failure := ""
		if err := req.Failure(); err != nil {
			failure = err.Error()
		}
		t.emit(page, types.NewEventEnvelope(failureKind(failure), req.URL()))
	})
	page.OnClose(func(playwright.Page) {
		t.mu.Lock()
		current := t.page == page
		if current {
			t.page = nil
			t.channelOrigin = ""
		}
		t.mu.Unlock()
		if current {
			t.deliver(types.NewEventEnvelope(types.EventTabClosed, ""))
		}
	})
	return nil
}

func isMainFrameNavigation(req playwright.Request) bool {
	if !req.IsNavigationRequest() {
		return false
	}
	frame := req.Frame()
	return frame != nil && frame.ParentFrame() == nil
}

// emit delivers env if page is still the current page.
func (t *Transport) emit(page playwright.Page, env types.Envelope) {
	t.mu.RLock()
	current := t.page == page
	t.mu.RUnlock()
	if current {
		t.deliver(env)
	}
}

func (t *Transport) deliver(env types.Envelope) {
	t.mu.RLock()
	sink := t.sink
	t.mu.RUnlock()
	if sink != nil {
		sink.Deliver(env)
	}
}
