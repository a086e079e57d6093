package config

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/tabbridge/pkg/bridge"
)

func resetGlobal(t *testing.T) {
	t.Helper()
	globalMu.Lock()
	globalManager = nil
	globalMu.Unlock()
	t.Cleanup(func() {
		globalMu.Lock()
		globalManager = nil
		globalMu.Unlock()
	})
}

func TestInitialize(t *testing.T) {
	resetGlobal(t)

	assert.False(t, IsInitialized())
	assert.Nil(t, GetTab())
	assert.Panics(t, func() { Global() })

	require.NoError(t, Initialize(filepath.Join(t.TempDir(), "config.json")))
	assert.True(t, IsInitialized())

	var ids []string
	for _, s := range Global().GetSections() {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{SectionIDTab, SectionIDChannel, SectionIDDeepLink}, ids)

	assert.NotNil(t, GetTab())
	assert.NotNil(t, GetChannel())
	assert.NotNil(t, GetDeepLink())
}

func TestInitializePersistence(t *testing.T) {
	resetGlobal(t)
	path := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, Initialize(path))
	GetTab().SetUserAgent("Game/2.0")
	GetChannel().SetRetry(3, 250*time.Millisecond)
	GetDeepLink().DenyAction("admin.*")
	require.NoError(t, Global().SaveAll())

	resetGlobal(t)
	require.NoError(t, Initialize(path))

	cfg := BridgeConfig(Global())
	assert.Equal(t, "Game/2.0", cfg.UserAgent)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, []string{"admin.*"}, cfg.DeniedActions)
}

func TestOpenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabbridge.yaml")

	m, err := Open(path)
	require.NoError(t, err)
	sectionOrFail(t, m, SectionIDTab).(*TabSection).SetToolbarColor("#112233")
	require.NoError(t, m.SaveAll())

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "#112233", BridgeConfig(reopened).ToolbarColor)
}

func sectionOrFail(t *testing.T, m *Manager, id string) Section {
	t.Helper()
	s, ok := m.GetSection(id)
	require.True(t, ok, "section %s", id)
	return s
}

func TestBridgeConfigDefaults(t *testing.T) {
	assert.Equal(t, bridge.DefaultConfig(), BridgeConfig(nil))

	m, err := Open(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	cfg := BridgeConfig(m)
	want := bridge.DefaultConfig()
	assert.Equal(t, want.ToolbarColor, cfg.ToolbarColor)
	assert.Equal(t, want.MaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, want.Scheme, cfg.Scheme)
	assert.Equal(t, want.AllowedActions, cfg.AllowedActions)
	assert.Empty(t, cfg.DeniedActions)
}

func TestGlobalConfigThreadSafety(t *testing.T) {
	resetGlobal(t)
	require.NoError(t, Initialize(filepath.Join(t.TempDir(), "config.json")))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				GetTab()
				GetChannel()
				BridgeConfig(Global())
			}
		}()
	}
	wg.Wait()
}
