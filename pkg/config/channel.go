package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/tabbridge/pkg/bridge"
)

const (
	// SectionIDChannel is the identifier for the message channel section
	SectionIDChannel = "channel"

	maxChannelAttempts = 50
	maxChannelDelay    = time.Minute
)

// ChannelSection controls the message channel retry loop.
type ChannelSection struct {
	MaxAttempts          int           `json:"max_attempts"`
	RetryDelay           time.Duration `json:"retry_delay"`
	NavigationRetryDelay time.Duration `json:"navigation_retry_delay"`
	mu                   sync.RWMutex
}

// NewChannelSection creates a channel section with default settings.
func NewChannelSection() *ChannelSection {
	return &ChannelSection{
		MaxAttempts:          bridge.DefaultMaxAttempts,
		RetryDelay:           bridge.DefaultRetryDelay,
		NavigationRetryDelay: bridge.DefaultNavigationRetryDelay,
	}
}

func (s *ChannelSection) ID() string    { return SectionIDChannel }
func (s *ChannelSection) Title() string { return "Message Channel" }

func (s *ChannelSection) Description() string {
	return "How many times a message channel is requested and how long to wait between attempts."
}

// Data returns the current configuration data.
func (s *ChannelSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"max_attempts":           s.MaxAttempts,
		"retry_delay":            s.RetryDelay.String(),
		"navigation_retry_delay": s.NavigationRetryDelay.String(),
	}
}

// SetData updates the configuration from the provided data.
func (s *ChannelSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "max_attempts":
			v, err := intValue(key, value)
			if err != nil {
				return err
			}
			s.MaxAttempts = v
		case "retry_delay":
			v, err := durationValue(key, value)
			if err != nil {
				return err
			}
			s.RetryDelay = v
		case "navigation_retry_delay":
			v, err := durationValue(key, value)
			if err != nil {
				return err
			}
			s.NavigationRetryDelay = v
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *ChannelSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.MaxAttempts < 1 || s.MaxAttempts > maxChannelAttempts {
		return fmt.Errorf("max_attempts must be between 1 and %d, got %d", maxChannelAttempts, s.MaxAttempts)
	}
	if s.RetryDelay <= 0 || s.RetryDelay > maxChannelDelay {
		return fmt.Errorf("retry_delay must be between 0 and %v, got %v", maxChannelDelay, s.RetryDelay)
	}
	if s.NavigationRetryDelay <= 0 || s.NavigationRetryDelay > maxChannelDelay {
		return fmt.Errorf("navigation_retry_delay must be between 0 and %v, got %v", maxChannelDelay, s.NavigationRetryDelay)
	}
	return nil
}

// Reset restores the defaults.
func (s *ChannelSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.MaxAttempts = bridge.DefaultMaxAttempts
	s.RetryDelay = bridge.DefaultRetryDelay
	s.NavigationRetryDelay = bridge.DefaultNavigationRetryDelay
}

// Apply copies the section onto cfg.
func (s *ChannelSection) Apply(cfg *bridge.Config) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg.MaxAttempts = s.MaxAttempts
	cfg.RetryDelay = s.RetryDelay
	cfg.NavigationRetryDelay = s.NavigationRetryDelay
}

// SetRetry sets the attempt cap and delay between attempts.
func (s *ChannelSection) SetRetry(maxAttempts int, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MaxAttempts = maxAttempts
	s.RetryDelay = delay
}
