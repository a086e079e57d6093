package bridge

import (
	"time"

	"github.com/entrhq/tabbridge/pkg/dispatch"
	"github.com/entrhq/tabbridge/pkg/logging"
)

// Default settings
const (
	DefaultToolbarColorHex      = "#4285F4"
	DefaultMaxAttempts          = 5
	DefaultRetryDelay           = time.Second
	DefaultNavigationRetryDelay = 500 * time.Millisecond
	DefaultScheme               = "overlaybridge"
)

// Config holds the presentation and channel settings a Bridge applies to
// its sessions.
type Config struct {
	ToolbarColor       string
	ShowTitle          bool
	EnableURLBarHiding bool
	UserAgent          string
	CustomHeader       string
	DebugLogging       bool

	// MaxAttempts bounds channel requests per RequestChannel call.
	MaxAttempts int
	// RetryDelay is the fixed delay between rejected channel attempts.
	RetryDelay time.Duration
	// NavigationRetryDelay is the delay before the extra channel attempt
	// made when a page finishes loading while a request is still pending.
	NavigationRetryDelay time.Duration

	// Scheme is the deep-link URI scheme accepted. Empty accepts any scheme.
	Scheme         string
	AllowedActions []string
	DeniedActions  []string
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		ToolbarColor:         DefaultToolbarColorHex,
		ShowTitle:            true,
		EnableURLBarHiding:   true,
		DebugLogging:         true,
		MaxAttempts:          DefaultMaxAttempts,
		RetryDelay:           DefaultRetryDelay,
		NavigationRetryDelay: DefaultNavigationRetryDelay,
		Scheme:               DefaultScheme,
		AllowedActions:       []string{"*"},
	}
}

// withDefaults fills zero retry settings with defaults.
func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.NavigationRetryDelay <= 0 {
		c.NavigationRetryDelay = DefaultNavigationRetryDelay
	}
	if c.ToolbarColor == "" {
		c.ToolbarColor = DefaultToolbarColorHex
	}
	return c
}

// Option configures a Bridge
type Option func(*Bridge)

// WithConfig sets the bridge settings.
func WithConfig(cfg Config) Option {
	return func(b *Bridge) {
		b.cfg = cfg
	}
}

// WithObserver sets the observer that receives bridge notifications.
func WithObserver(o Observer) Option {
	return func(b *Bridge) {
		b.observer = o
	}
}

// WithLauncher sets the fallback used when the transport is unavailable.
func WithLauncher(l Launcher) Option {
	return func(b *Bridge) {
		b.launcher = l
	}
}

// WithRegistry sets the active-session registry. DefaultRegistry is used otherwise.
func WithRegistry(r *Registry) Option {
	return func(b *Bridge) {
		b.registry = r
	}
}

// WithScheduler sets the scheduler used for channel retries.
func WithScheduler(s dispatch.Scheduler) Option {
	return func(b *Bridge) {
		b.scheduler = s
	}
}

// WithLogger sets the bridge logger.
func WithLogger(l *logging.Logger) Option {
	return func(b *Bridge) {
		b.logger = l
	}
}
