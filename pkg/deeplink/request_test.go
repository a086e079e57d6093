package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	req, err := Parse("overlaybridge://teleport?x=1&y=2&z=hello%20world")
	require.NoError(t, err)

	assert.Equal(t, "overlaybridge", req.Scheme)
	assert.Equal(t, "teleport", req.Action)
	assert.Equal(t, []Param{{"x", "1"}, {"y", "2"}, {"z", "hello world"}}, req.Params)
	assert.Equal(t, `{"x":"1","y":"2","z":"hello world"}`, req.ParamsJSON())

	v, ok := req.Get("z")
	assert.True(t, ok)
	assert.Equal(t, "hello world", v)

	_, ok = req.Get("missing")
	assert.False(t, ok)
}

func TestParseNoQuery(t *testing.T) {
	req, err := Parse("overlaybridge://close")
	require.NoError(t, err)
	assert.Equal(t, "close", req.Action)
	assert.Empty(t, req.Params)
	assert.Equal(t, "{}", req.ParamsJSON())
}

func TestParseNoHost(t *testing.T) {
	req, err := Parse("overlaybridge:jump?height=5")
	require.NoError(t, err)
	assert.Equal(t, "", req.Action)
	assert.Equal(t, `{"height":"5"}`, req.ParamsJSON())
}

func TestParseErrors(t *testing.T) {
	for _, uri := range []string{"", "   ", "no-scheme", "://bad"} {
		t.Run(uri, func(t *testing.T) {
			_, err := Parse(uri)
			assert.ErrorIs(t, err, ErrInvalidURI)
		})
	}
}

func TestGetLastValueWins(t *testing.T) {
	req, err := Parse("overlaybridge://message?text=a&text=b")
	require.NoError(t, err)
	v, ok := req.Get("text")
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}
