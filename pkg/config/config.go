package config

import (
	"sync"

	"github.com/entrhq/tabbridge/pkg/bridge"
)

var (
	// globalManager is the process-wide settings manager
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize loads settings from configPath (DefaultPath when empty) and
// installs the global manager. Call it once at startup.
func Initialize(configPath string) error {
	manager, err := Open(configPath)
	if err != nil {
		return err
	}

	globalMu.Lock()
	globalManager = manager
	globalMu.Unlock()
	return nil
}

// Open builds a manager with the tab, channel and deep-link sections
// registered and loaded from configPath.
func Open(configPath string) (*Manager, error) {
	store, err := NewFileStore(configPath)
	if err != nil {
		return nil, err
	}

	manager := NewManager(store)
	for _, section := range []Section{
		NewTabSection(),
		NewChannelSection(),
		NewDeepLinkSection(),
	} {
		if err := manager.RegisterSection(section); err != nil {
			return nil, err
		}
	}

	if err := manager.LoadAll(); err != nil {
		return nil, err
	}
	return manager, nil
}

// Global returns the global manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}
	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

func globalSection[T Section](id string) T {
	var zero T
	if !IsInitialized() {
		return zero
	}
	section, ok := Global().GetSection(id)
	if !ok {
		return zero
	}
	typed, ok := section.(T)
	if !ok {
		return zero
	}
	return typed
}

// GetTab returns the tab section, or nil if config is not initialized.
func GetTab() *TabSection {
	return globalSection[*TabSection](SectionIDTab)
}

// GetChannel returns the channel section, or nil if config is not initialized.
func GetChannel() *ChannelSection {
	return globalSection[*ChannelSection](SectionIDChannel)
}

// GetDeepLink returns the deep-link section, or nil if config is not initialized.
func GetDeepLink() *DeepLinkSection {
	return globalSection[*DeepLinkSection](SectionIDDeepLink)
}

// BridgeConfig returns the bridge settings described by m. Sections that
// are not registered keep their defaults.
func BridgeConfig(m *Manager) bridge.Config {
	cfg := bridge.DefaultConfig()
	if m == nil {
		return cfg
	}
	if s, ok := m.GetSection(SectionIDTab); ok {
		if tab, ok := s.(*TabSection); ok {
			tab.Apply(&cfg)
		}
	}
	if s, ok := m.GetSection(SectionIDChannel); ok {
		if ch, ok := s.(*ChannelSection); ok {
			ch.Apply(&cfg)
		}
	}
	if s, ok := m.GetSection(SectionIDDeepLink); ok {
		if dl, ok := s.(*DeepLinkSection); ok {
			dl.Apply(&cfg)
		}
	}
	return cfg
}
