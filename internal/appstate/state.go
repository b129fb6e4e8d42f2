// Package appstate defines the shared application state type exchanged
// between the URL codec, the state store, and UI modules. Values are
// restricted to strings, numbers (float64), or nil; richer structures
// never enter the state map.
package appstate

import "sort"

// State is a flat mapping from parameter name to value. The keys `path`,
// `zoom`, `lat`, `lon`, and `map` are reserved: `map` is a serialization
// artifact and must never coexist with the discrete zoom/lat/lon keys
// inside a State held by the store.
type State map[string]any

// Clone returns a shallow copy of the state. Values are scalars, so a
// shallow copy is a full copy.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge copies every key from delta into s, overwriting on conflict.
// Keys absent from delta are left untouched: this is a patch, not a
// replace.
func (s State) Merge(delta State) {
	for k, v := range delta {
		s[k] = v
	}
}

// SortedKeys returns the state's keys in lexical order, for stable
// iteration and output.
func (s State) SortedKeys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
