package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		hex    string
		want   uint32
		wantOK bool
	}{
		{hex: "#4285F4", want: 0xFF4285F4, wantOK: true},
		{hex: "#112233", want: 0xFF112233, wantOK: true},
		{hex: "#80112233", want: 0x80112233, wantOK: true},
		{hex: "#abcdef", want: 0xFFABCDEF, wantOK: true},
		{hex: "", want: DefaultToolbarColor},
		{hex: "112233", want: DefaultToolbarColor},
		{hex: "#12345", want: DefaultToolbarColor},
		{hex: "#GGGGGG", want: DefaultToolbarColor},
		{hex: "#+12345", want: DefaultToolbarColor},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got, ok := ParseColor(tt.hex)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecorateURL(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		ua     string
		header string
		want   string
	}{
		{name: "nothing set", url: "https://x/a?b=1", want: "https://x/a?b=1"},
		{name: "user agent only", url: "https://x", ua: "Game 1", want: "https://x?overlay_client=true&overlay_user_agent=Game+1"},
		{name: "header only", url: "https://x/p", header: "k=v", want: "https://x/p?overlay_client=true&overlay_custom_header=k%3Dv"},
		{name: "existing query kept first", url: "https://x/?z=9&a=1", ua: "u", want: "https://x/?z=9&a=1&overlay_client=true&overlay_user_agent=u"},
		{name: "fragment kept", url: "https://x/#top", ua: "u", want: "https://x/?overlay_client=true&overlay_user_agent=u#top"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecorateURL(tt.url, tt.ua, tt.header))
		})
	}
}
