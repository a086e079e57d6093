package config

import (
	"fmt"
	"sync"

	"github.com/entrhq/tabbridge/pkg/bridge"
	"github.com/entrhq/tabbridge/pkg/deeplink"
)

// SectionIDDeepLink is the identifier for the deep-link section
const SectionIDDeepLink = "deeplink"

// DeepLinkSection controls which deep links are forwarded to the host.
type DeepLinkSection struct {
	Scheme         string   `json:"scheme"`
	AllowedActions []string `json:"allowed_actions"`
	DeniedActions  []string `json:"denied_actions"`
	mu             sync.RWMutex
}

// NewDeepLinkSection creates a deep-link section with default settings.
func NewDeepLinkSection() *DeepLinkSection {
	s := &DeepLinkSection{}
	s.Reset()
	return s
}

func (s *DeepLinkSection) ID() string    { return SectionIDDeepLink }
func (s *DeepLinkSection) Title() string { return "Deep Links" }

func (s *DeepLinkSection) Description() string {
	return "The accepted URI scheme and glob patterns for actions that may reach the host."
}

// Data returns the current configuration data.
func (s *DeepLinkSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"scheme":          s.Scheme,
		"allowed_actions": append([]string{}, s.AllowedActions...),
		"denied_actions":  append([]string{}, s.DeniedActions...),
	}
}

// SetData updates the configuration from the provided data.
func (s *DeepLinkSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "scheme":
			v, err := stringValue(key, value)
			if err != nil {
				return err
			}
			s.Scheme = v
		case "allowed_actions":
			v, err := stringsValue(key, value)
			if err != nil {
				return err
			}
			s.AllowedActions = v
		case "denied_actions":
			v, err := stringsValue(key, value)
			if err != nil {
				return err
			}
			s.DeniedActions = v
		}
	}
	return nil
}

// Validate compiles the action patterns.
func (s *DeepLinkSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := deeplink.NewAllowlist(s.AllowedActions, s.DeniedActions); err != nil {
		return fmt.Errorf("invalid action pattern: %w", err)
	}
	return nil
}

// Reset restores the defaults.
func (s *DeepLinkSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := bridge.DefaultConfig()
	s.Scheme = d.Scheme
	s.AllowedActions = d.AllowedActions
	s.DeniedActions = nil
}

// Apply copies the section onto cfg.
func (s *DeepLinkSection) Apply(cfg *bridge.Config) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg.Scheme = s.Scheme
	cfg.AllowedActions = append([]string(nil), s.AllowedActions...)
	cfg.DeniedActions = append([]string(nil), s.DeniedActions...)
}

// AllowAction adds a pattern to the allowed actions.
func (s *DeepLinkSection) AllowAction(pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AllowedActions = append(s.AllowedActions, pattern)
}

// DenyAction adds a pattern to the denied actions.
func (s *DeepLinkSection) DenyAction(pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeniedActions = append(s.DeniedActions, pattern)
}
