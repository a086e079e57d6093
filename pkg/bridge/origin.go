package bridge

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// NormalizeOrigin reduces origin to its scheme://host[:port] form. The scheme
// and host are lowercased, internationalized hostnames are converted to
// their ASCII form, and default ports are dropped. Any path, query or
// fragment is ignored, so a full page URL yields that page's origin.
func NormalizeOrigin(origin string) (string, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return "", fmt.Errorf("%w: empty origin", ErrInvalidInput)
	}

	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: origin %q needs a scheme and host", ErrInvalidInput, origin)
	}
	if u.User != nil {
		return "", fmt.Errorf("%w: origin %q must not contain credentials", ErrInvalidInput, origin)
	}

	scheme := strings.ToLower(u.Scheme)
	host := u.Hostname()
	port := u.Port()

	if ip := net.ParseIP(host); ip != nil {
		host = ip.String()
	} else {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return "", fmt.Errorf("%w: host %q: %v", ErrInvalidInput, host, err)
		}
		host = strings.ToLower(ascii)
	}

	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return "", fmt.Errorf("%w: port %q out of range", ErrInvalidInput, port)
		}
		if defaultPorts[scheme] == port {
			port = ""
		}
	}

	if port == "" {
		if strings.Contains(host, ":") {
			return scheme + "://[" + host + "]", nil
		}
		return scheme + "://" + host, nil
	}
	return scheme + "://" + net.JoinHostPort(host, port), nil
}
