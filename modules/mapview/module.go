// Package mapview tracks the map viewport (zoom, latitude, longitude).
// It follows applied state deltas and contributes the current position
// when the store collects a full snapshot.
package mapview

import (
	"context"
	"sync"

	"github.com/vk/mapboot/internal/appstate"
	"github.com/vk/mapboot/internal/ctxlog"
	"github.com/vk/mapboot/internal/module"
)

// Module implements module.Module for the viewport.
type Module struct {
	mu      sync.Mutex
	zoom    float64
	lat     float64
	lon     float64
	hasView bool
}

// New creates the viewport module.
func New() *Module {
	return &Module{}
}

// ID implements module.Module.
func (m *Module) ID() string { return "mapview" }

// Requires implements module.Module.
func (m *Module) Requires() []string { return nil }

// CSSFiles implements module.Module.
func (m *Module) CSSFiles() []string { return []string{"css/mapview.css"} }

// Init subscribes the viewport to the store: applied deltas move it,
// and collects report it.
func (m *Module) Init(ctx context.Context, host module.Host, b *module.Barrier) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Viewport module initializing.")

	st := host.Store()
	st.OnApply(m.onApply)
	st.OnCollect(m.onCollect)
	return nil
}

// Viewport returns the current position. ok is false before the first
// delta carrying coordinates arrives.
func (m *Module) Viewport() (zoom, lat, lon float64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zoom, m.lat, m.lon, m.hasView
}

func (m *Module) onApply(delta appstate.State) {
	zoom, zok := asNumber(delta["zoom"])
	lat, latok := asNumber(delta["lat"])
	lon, lonok := asNumber(delta["lon"])

	m.mu.Lock()
	defer m.mu.Unlock()
	if zok {
		m.zoom = zoom
	}
	if latok {
		m.lat = lat
	}
	if lonok {
		m.lon = lon
	}
	if zok || latok || lonok {
		m.hasView = true
	}
}

func (m *Module) onCollect(acc appstate.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasView {
		return
	}
	acc["zoom"] = m.zoom
	acc["lat"] = m.lat
	acc["lon"] = m.lon
}

func asNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	default:
		return 0, false
	}
}
