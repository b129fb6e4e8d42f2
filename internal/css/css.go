// Package css tracks the stylesheet links that modules contribute
// during bootstrap. In a browser this is the document head; here the
// LinkSet records the injected hrefs in order so the host can serve or
// report them.
package css

import "sync"

// Injector receives stylesheet hrefs during bootstrap. Injection must
// be idempotent.
type Injector interface {
	Inject(href string) error
}

// LinkSet is an ordered, idempotent Injector.
type LinkSet struct {
	mu    sync.Mutex
	seen  map[string]bool
	order []string
}

// NewLinkSet creates an empty LinkSet.
func NewLinkSet() *LinkSet {
	return &LinkSet{
		seen: make(map[string]bool),
	}
}

// Inject records the href once; repeated injections are no-ops.
func (l *LinkSet) Inject(href string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[href] {
		return nil
	}
	l.seen[href] = true
	l.order = append(l.order, href)
	return nil
}

// Links returns the injected hrefs in injection order.
func (l *LinkSet) Links() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}
