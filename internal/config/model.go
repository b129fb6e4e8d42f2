package config

import "github.com/vk/mapboot/internal/appstate"

// Model is the unified representation of the bootstrap configuration.
// Exactly one of DefaultState and DefaultTemplate is normally set: a
// plain default state merges directly, a template reference is rendered
// with the URL state as context and the output is parsed as a fragment.
type Model struct {
	DefaultState    appstate.State
	DefaultTemplate string
	TemplateNames   []string
}

// HasDefaults reports whether the model carries any default state
// source at all.
func (m *Model) HasDefaults() bool {
	return m != nil && (len(m.DefaultState) > 0 || m.DefaultTemplate != "")
}
