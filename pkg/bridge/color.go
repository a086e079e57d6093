package bridge

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultToolbarColor is the ARGB toolbar colour used when none is given or
// the given one cannot be parsed.
const DefaultToolbarColor uint32 = 0xFF4285F4

// ParseColor parses "#RRGGBB" or "#AARRGGBB" into an ARGB value. Six-digit
// colours are fully opaque. On failure it returns DefaultToolbarColor and false.
func ParseColor(hex string) (uint32, bool) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		return DefaultToolbarColor, false
	}

	digits := hex[1:]
	if len(digits) != 6 && len(digits) != 8 {
		return DefaultToolbarColor, false
	}

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return DefaultToolbarColor, false
	}
	if len(digits) == 6 {
		v |= 0xFF000000
	}
	return uint32(v), true
}

// Query parameters appended to opened URLs so the page can tell it runs in
// the overlay and pick up values a browser tab cannot set as headers.
const (
	ParamClient       = "overlay_client"
	ParamUserAgent    = "overlay_user_agent"
	ParamCustomHeader = "overlay_custom_header"
)

// DecorateURL appends overlay query parameters to rawURL when a user agent
// or custom header is set. Existing parameters are kept in place. A URL that
// cannot be parsed is returned unchanged.
func DecorateURL(rawURL, userAgent, customHeader string) string {
	if userAgent == "" && customHeader == "" {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	extra := []string{ParamClient + "=true"}
	if userAgent != "" {
		extra = append(extra, ParamUserAgent+"="+url.QueryEscape(userAgent))
	}
	if customHeader != "" {
		extra = append(extra, ParamCustomHeader+"="+url.QueryEscape(customHeader))
	}

	if u.RawQuery != "" {
		extra = append([]string{u.RawQuery}, extra...)
	}
	u.RawQuery = strings.Join(extra, "&")
	return u.String()
}
