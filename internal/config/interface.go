package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths (files or
	// directories), translates it into the format-agnostic model, and
	// returns a Renderer for the templates it found.
	Load(ctx context.Context, paths ...string) (*Model, Renderer, error)
}

// Renderer renders a named state template with a data context. The
// context values are the scalar state values (string, float64, nil).
// Rendering is synchronous; failures surface as the error return.
type Renderer interface {
	Render(ctx context.Context, templateID string, data map[string]any) (string, error)
}
