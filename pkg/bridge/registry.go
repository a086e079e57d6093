package bridge

import (
	"sync"
	"weak"
)

// Registry tracks the single active Session that platform events are
// routed to. It holds a weak reference and never keeps a Session alive; a
// Session that has been released or collected is reported as absent.
//
// All methods are safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	ref   weak.Pointer[Session]
	token string
}

// DefaultRegistry is the process-wide registry used when a Bridge is not
// given one explicitly.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register makes s the active session, replacing any previous one.
// Registering nil is the same as Unregister.
func (r *Registry) Register(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s == nil {
		r.clear()
		return
	}
	r.ref = weak.Make(s)
	r.token = s.id
}

// Unregister clears the active session. It is idempotent.
func (r *Registry) Unregister() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clear()
}

// UnregisterIf clears the active session only if it is s, and reports
// whether it did.
func (r *Registry) UnregisterIf(s *Session) bool {
	if s == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token == "" || r.token != s.id {
		return false
	}
	r.clear()
	return true
}

// Active returns the active session, or false if none is registered or the
// registered session has been released or garbage collected.
func (r *Registry) Active() (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token == "" {
		return nil, false
	}

	s := r.ref.Value()
	if s == nil || s.id != r.token || s.released.Load() {
		r.clear()
		return nil, false
	}
	return s, true
}

// clear resets the registry. Caller holds mu.
func (r *Registry) clear() {
	r.ref = weak.Pointer[Session]{}
	r.token = ""
}
