package browser

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/tabbridge/pkg/bridge"
	"github.com/entrhq/tabbridge/pkg/types"
)

func TestFailureKind(t *testing.T) {
	assert.Equal(t, types.EventNavigationAborted, failureKind("net::ERR_ABORTED"))
	assert.Equal(t, types.EventNavigationFailed, failureKind("net::ERR_NAME_NOT_RESOLVED"))
	assert.Equal(t, types.EventNavigationFailed, failureKind(""))
}

func TestVisibilityKind(t *testing.T) {
	kind, ok := visibilityKind("hidden")
	assert.True(t, ok)
	assert.Equal(t, types.EventTabHidden, kind)

	kind, ok = visibilityKind("visible")
	assert.True(t, ok)
	assert.Equal(t, types.EventTabShown, kind)

	_, ok = visibilityKind("prerender")
	assert.False(t, ok)
}

func TestSameOrigin(t *testing.T) {
	assert.True(t, sameOrigin("https://example.com/game?level=1", "https://example.com"))
	assert.True(t, sameOrigin("HTTPS://EXAMPLE.com:443/", "https://example.com"))
	assert.False(t, sameOrigin("https://example.com:8443/", "https://example.com"))
	assert.False(t, sameOrigin("about:blank", "https://example.com"))
}

func TestBindingArg(t *testing.T) {
	s, ok := bindingArg([]interface{}{"hello", 2})
	assert.True(t, ok)
	assert.Equal(t, "hello", s)

	_, ok = bindingArg(nil)
	assert.False(t, ok)

	_, ok = bindingArg([]interface{}{42})
	assert.False(t, ok)
}

func TestCSSColor(t *testing.T) {
	assert.Equal(t, "#4285F4", cssColor(bridge.DefaultToolbarColor))
	assert.Equal(t, "rgba(17, 34, 51, 0.502)", cssColor(0x80112233))
	assert.Empty(t, cssColor(0))
}

func TestInitScript(t *testing.T) {
	script, err := initScript("OverlayBridge", 0xFF112233)
	require.NoError(t, err)

	start := strings.Index(script, "const cfg = ") + len("const cfg = ")
	end := strings.Index(script[start:], ";\n")
	require.Positive(t, end)

	var cfg shimConfig
	require.NoError(t, json.Unmarshal([]byte(script[start:start+end]), &cfg))
	assert.Equal(t, "overlaybridge", cfg.Scheme)
	assert.Equal(t, "#112233", cfg.ThemeColor)
	assert.Equal(t, bindingMessage, cfg.Message)
	assert.Equal(t, bindingChannelReady, cfg.Ready)
}

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos string
		name string
	}{
		{goos: "darwin", name: "open"},
		{goos: "linux", name: "xdg-open"},
		{goos: "windows", name: "rundll32"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args, err := openCommand(tt.goos, "https://example.com")
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, "https://example.com", args[len(args)-1])
		})
	}

	_, _, err := openCommand("plan9", "https://example.com")
	assert.Error(t, err)
}

func TestLaunchUnsupportedOS(t *testing.T) {
	l := &SystemLauncher{goos: "plan9"}
	assert.Error(t, l.Launch(context.Background(), "https://example.com"))
}

type captureSink struct {
	envs []types.Envelope
}

func (c *captureSink) Deliver(env types.Envelope) {
	c.envs = append(c.envs, env)
}

func TestTransportBeforeStart(t *testing.T) {
	tr := NewTransport(WithHeadless(true), WithViewport(800, 600), WithTimeout(1000))
	sink := &captureSink{}
	tr.SetSink(sink)

	assert.False(t, tr.Available())
	assert.False(t, tr.HasSession())
	assert.False(t, tr.RequestChannel("https://example.com"))
	assert.Equal(t, types.ResultFailureMessagingError, tr.PostMessage("x"))
	assert.ErrorIs(t, tr.Open(context.Background(), bridge.OpenRequest{URL: "https://example.com"}), ErrNotStarted)
	assert.NoError(t, tr.Close(context.Background()))
	assert.NoError(t, tr.Shutdown())

	tr.deliver(types.NewServiceEnvelope(false))
	require.Len(t, sink.envs, 1)
	assert.Equal(t, types.EnvelopeServiceDisconnected, sink.envs[0].Type)
}

func TestOptions(t *testing.T) {
	tr := NewTransport(WithViewport(0, 10), WithTimeout(-1), WithScheme("mygame"), WithInstall(true), WithLogger(nil))
	assert.Equal(t, DefaultViewportWidth, tr.opts.viewport.Width)
	assert.Equal(t, DefaultTimeout, tr.opts.timeout)
	assert.Equal(t, "mygame", tr.opts.scheme)
	assert.True(t, tr.opts.install)
	assert.NotNil(t, tr.opts.logger)
}
