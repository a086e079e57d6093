package config

import (
	"fmt"
	"sync"

	"github.com/entrhq/tabbridge/pkg/bridge"
)

// SectionIDTab is the identifier for the tab presentation section
const SectionIDTab = "tab"

// TabSection holds how overlay tabs are presented and decorated.
type TabSection struct {
	ToolbarColor       string `json:"toolbar_color"`
	ShowTitle          bool   `json:"show_title"`
	EnableURLBarHiding bool   `json:"enable_url_bar_hiding"`
	UserAgent          string `json:"user_agent"`
	CustomHeader       string `json:"custom_header"`
	DebugLogging       bool   `json:"debug_logging"`
	mu                 sync.RWMutex
}

// NewTabSection creates a tab section with default settings.
func NewTabSection() *TabSection {
	s := &TabSection{}
	s.Reset()
	return s
}

func (s *TabSection) ID() string    { return SectionIDTab }
func (s *TabSection) Title() string { return "Tab" }

func (s *TabSection) Description() string {
	return "Toolbar color, title and URL bar behavior, and the identification passed to overlay pages."
}

// Data returns the current configuration data.
func (s *TabSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"toolbar_color":         s.ToolbarColor,
		"show_title":            s.ShowTitle,
		"enable_url_bar_hiding": s.EnableURLBarHiding,
		"user_agent":            s.UserAgent,
		"custom_header":         s.CustomHeader,
		"debug_logging":         s.DebugLogging,
	}
}

// SetData updates the configuration from the provided data.
func (s *TabSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "toolbar_color":
			v, err := stringValue(key, value)
			if err != nil {
				return err
			}
			s.ToolbarColor = v
		case "show_title":
			v, err := boolValue(key, value)
			if err != nil {
				return err
			}
			s.ShowTitle = v
		case "enable_url_bar_hiding":
			v, err := boolValue(key, value)
			if err != nil {
				return err
			}
			s.EnableURLBarHiding = v
		case "user_agent":
			v, err := stringValue(key, value)
			if err != nil {
				return err
			}
			s.UserAgent = v
		case "custom_header":
			v, err := stringValue(key, value)
			if err != nil {
				return err
			}
			s.CustomHeader = v
		case "debug_logging":
			v, err := boolValue(key, value)
			if err != nil {
				return err
			}
			s.DebugLogging = v
		}
	}
	return nil
}

// Validate checks the toolbar color is a #RRGGBB or #AARRGGBB value.
func (s *TabSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ToolbarColor == "" {
		return nil
	}
	if _, ok := bridge.ParseColor(s.ToolbarColor); !ok {
		return fmt.Errorf("toolbar_color must be #RRGGBB or #AARRGGBB, got %q", s.ToolbarColor)
	}
	return nil
}

// Reset restores the defaults.
func (s *TabSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := bridge.DefaultConfig()
	s.ToolbarColor = d.ToolbarColor
	s.ShowTitle = d.ShowTitle
	s.EnableURLBarHiding = d.EnableURLBarHiding
	s.UserAgent = d.UserAgent
	s.CustomHeader = d.CustomHeader
	s.DebugLogging = d.DebugLogging
}

// Apply copies the section onto cfg.
func (s *TabSection) Apply(cfg *bridge.Config) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg.ToolbarColor = s.ToolbarColor
	cfg.ShowTitle = s.ShowTitle
	cfg.EnableURLBarHiding = s.EnableURLBarHiding
	cfg.UserAgent = s.UserAgent
	cfg.CustomHeader = s.CustomHeader
	cfg.DebugLogging = s.DebugLogging
}

// SetToolbarColor sets the default toolbar color.
func (s *TabSection) SetToolbarColor(hex string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ToolbarColor = hex
}

// SetUserAgent sets the user agent passed to overlay pages.
func (s *TabSection) SetUserAgent(ua string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UserAgent = ua
}
