// Package history abstracts the browser history integration. The store
// talks to a History when an apply requests a URL update; outside a
// browser the in-memory implementation stands in for the session.
package history

import "sync"

// History is the store's view of the navigation stack. Push creates a
// new entry for the given fragment, Replace rewrites the current one,
// and Fragment reports the current entry.
type History interface {
	Push(fragment string)
	Replace(fragment string)
	Fragment() string
}

// Memory is a mutex-guarded in-memory History.
type Memory struct {
	mu      sync.Mutex
	entries []string
}

// NewMemory creates a Memory history. A non-empty initial fragment
// becomes the first entry.
func NewMemory(initial string) *Memory {
	m := &Memory{}
	if initial != "" {
		m.entries = append(m.entries, initial)
	}
	return m
}

// Push appends a new entry.
func (m *Memory) Push(fragment string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, fragment)
}

// Replace rewrites the current entry in place. On an empty stack it
// behaves like Push.
func (m *Memory) Replace(fragment string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		m.entries = append(m.entries, fragment)
		return
	}
	m.entries[len(m.entries)-1] = fragment
}

// Fragment returns the current entry, or "" when the stack is empty.
func (m *Memory) Fragment() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return ""
	}
	return m.entries[len(m.entries)-1]
}

// Entries returns a copy of the full stack, oldest first.
func (m *Memory) Entries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len reports the number of entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
