package deeplink

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Allowlist decides which deep-link actions are forwarded to the host.
// Actions are matched against glob patterns; denied patterns take precedence.
type Allowlist struct {
	allowed []glob.Glob
	denied  []glob.Glob
}

// NewAllowlist compiles the allowed and denied action patterns.
// With no allowed patterns every action not denied is allowed.
func NewAllowlist(allowed, denied []string) (*Allowlist, error) {
	al := &Allowlist{}

	for _, pattern := range allowed {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed action pattern '%s': %w", pattern, err)
		}
		al.allowed = append(al.allowed, g)
	}

	for _, pattern := range denied {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid denied action pattern '%s': %w", pattern, err)
		}
		al.denied = append(al.denied, g)
	}

	return al, nil
}

// Allows reports whether action may be forwarded. A nil Allowlist allows everything.
func (al *Allowlist) Allows(action string) bool {
	if al == nil {
		return true
	}

	for _, g := range al.denied {
		if g.Match(action) {
			return false
		}
	}

	if len(al.allowed) == 0 {
		return true
	}

	for _, g := range al.allowed {
		if g.Match(action) {
			return true
		}
	}
	return false
}
