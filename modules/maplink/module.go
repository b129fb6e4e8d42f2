// Package maplink keeps a shareable permalink for the current
// application state. After every applied delta it re-stringifies the
// accumulated state into a fragment suitable for a share button.
package maplink

import (
	"context"
	"sync"

	"github.com/vk/mapboot/internal/appstate"
	"github.com/vk/mapboot/internal/ctxlog"
	"github.com/vk/mapboot/internal/module"
)

// Module implements module.Module for the permalink.
type Module struct {
	mu   sync.Mutex
	link string
}

// New creates the permalink module.
func New() *Module {
	return &Module{}
}

// ID implements module.Module.
func (m *Module) ID() string { return "maplink" }

// Requires implements module.Module. The permalink reflects the
// viewport, so the viewport must be wired first.
func (m *Module) Requires() []string { return []string{"mapview"} }

// CSSFiles implements module.Module.
func (m *Module) CSSFiles() []string { return []string{"css/maplink.css"} }

// Init subscribes to applied deltas and rebuilds the link from the full
// accumulated state each time.
func (m *Module) Init(ctx context.Context, host module.Host, b *module.Barrier) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Permalink module initializing.")

	st := host.Store()
	codec := host.Codec()
	st.OnApply(func(delta appstate.State) {
		link := codec.Stringify(st.Current())
		m.mu.Lock()
		m.link = link
		m.mu.Unlock()
	})
	return nil
}

// ShareLink returns the last computed permalink fragment.
func (m *Module) ShareLink() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.link
}
