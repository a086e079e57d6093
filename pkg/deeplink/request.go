package deeplink

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURI is returned when a deep-link URI cannot be parsed or has no scheme.
var ErrInvalidURI = errors.New("invalid deep link URI")

// Request is a parsed deep link: the URI host names the action and the query
// carries its parameters.
//
//	overlaybridge://teleport?x=1&y=2&z=3
//	// Action "teleport", Params [x=1 y=2 z=3]
type Request struct {
	Scheme string
	Action string
	Params []Param

	// RawQuery is the undecoded query the params were read from.
	RawQuery string
}

// Parse parses a deep-link URI. A URI without a host parses with an empty action.
func Parse(uri string) (Request, error) {
	if strings.TrimSpace(uri) == "" {
		return Request{}, fmt.Errorf("%w: empty", ErrInvalidURI)
	}

	u, err := url.Parse(uri)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	if u.Scheme == "" {
		return Request{}, fmt.Errorf("%w: missing scheme in %q", ErrInvalidURI, uri)
	}

	return Request{
		Scheme:   u.Scheme,
		Action:   u.Hostname(),
		Params:   SplitQuery(u.RawQuery),
		RawQuery: u.RawQuery,
	}, nil
}

// ParamsJSON returns the request parameters as a flat JSON object.
func (r Request) ParamsJSON() string {
	return EncodeParams(r.Params)
}

// Get returns the last value for key.
func (r Request) Get(key string) (string, bool) {
	for i := len(r.Params) - 1; i >= 0; i-- {
		if r.Params[i].Key == key {
			return r.Params[i].Value, true
		}
	}
	return "", false
}
