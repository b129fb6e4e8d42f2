// Package locale binds the `lang` state key to the language pack
// loader: the initial language loads during the startup barrier, and
// later lang deltas switch the pack.
package locale

import (
	"context"
	"log/slog"

	"github.com/vk/mapboot/internal/appstate"
	"github.com/vk/mapboot/internal/ctxlog"
	"github.com/vk/mapboot/internal/l10n"
	"github.com/vk/mapboot/internal/module"
)

// Module implements module.Module for localization.
type Module struct {
	loc l10n.Localizer
}

// New creates the locale module.
func New() *Module {
	return &Module{}
}

// ID implements module.Module.
func (m *Module) ID() string { return "locale" }

// Requires implements module.Module.
func (m *Module) Requires() []string { return nil }

// CSSFiles implements module.Module.
func (m *Module) CSSFiles() []string { return nil }

// Init queues the initial language load on the startup barrier and
// follows later lang changes.
func (m *Module) Init(ctx context.Context, host module.Host, b *module.Barrier) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Locale module initializing.")

	m.loc = host.Localizer()

	b.Go(func(ctx context.Context, initial appstate.State) error {
		lang, ok := initial["lang"].(string)
		if !ok || lang == "" {
			return nil
		}
		return m.loc.SetLanguage(ctx, lang)
	})

	host.Store().OnApply(func(delta appstate.State) {
		lang, ok := delta["lang"].(string)
		if !ok || lang == "" || lang == m.loc.Language() {
			return
		}
		if err := m.loc.SetLanguage(context.Background(), lang); err != nil {
			slog.Warn("Language switch failed.", "lang", lang, "error", err)
		}
	})
	return nil
}
