package browser

import (
	"github.com/entrhq/tabbridge/pkg/bridge"
	"github.com/entrhq/tabbridge/pkg/logging"
)

// Default values for the browser window and page operations
const (
	DefaultTimeout        = 30000.0 // milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// Binding names exposed to pages
const (
	bindingVisibility   = "__tabbridgeVisibility"
	bindingMessage      = "__tabbridgeMessage"
	bindingDeepLink     = "__tabbridgeDeepLink"
	bindingChannelReady = "__tabbridgeChannelReady"
)

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

type options struct {
	headless bool
	install  bool
	viewport Viewport
	timeout  float64
	scheme   string
	logger   *logging.Logger
}

func defaultOptions() options {
	return options{
		headless: true,
		viewport: Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight},
		timeout:  DefaultTimeout,
		scheme:   bridge.DefaultScheme,
		logger:   logging.Discard("browser"),
	}
}

// Option configures a Transport
type Option func(*options)

// WithHeadless controls whether Chromium runs without a visible window.
func WithHeadless(headless bool) Option {
	return func(o *options) {
		o.headless = headless
	}
}

// WithInstall downloads the Playwright driver and browsers on Start.
func WithInstall(install bool) Option {
	return func(o *options) {
		o.install = install
	}
}

// WithViewport sets the page viewport.
func WithViewport(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.viewport = Viewport{Width: width, Height: height}
		}
	}
}

// WithTimeout sets the default page operation timeout in milliseconds.
func WithTimeout(ms float64) Option {
	return func(o *options) {
		if ms > 0 {
			o.timeout = ms
		}
	}
}

// WithScheme sets the deep-link scheme intercepted in pages.
func WithScheme(scheme string) Option {
	return func(o *options) {
		o.scheme = scheme
	}
}

// WithLogger sets the transport logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
