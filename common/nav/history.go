package nav

import "sync"

// History is a back stack of visited routes. Going back only moves the
// cursor; it never reloads anything.
type History struct {
	mu      sync.Mutex
	entries []string
}

// NewHistory creates a history, optionally seeded with earlier routes
func NewHistory(initial ...string) *History {
	h := &History{}
	h.entries = append(h.entries, initial...)
	return h
}

// Push records a newly visited route. Re-pushing the current route is a no-op.
func (h *History) Push(route string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.entries); n > 0 && h.entries[n-1] == route {
		return
	}
	h.entries = append(h.entries, route)
}

// Current returns the route on top of the stack
func (h *History) Current() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return "", false
	}
	return h.entries[len(h.entries)-1], true
}

// CanGoBack reports whether there is a prior route
func (h *History) CanGoBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries) > 1
}

// Back pops the current route and returns the immediately prior one
func (h *History) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) < 2 {
		return "", false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}
