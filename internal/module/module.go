// Package module defines the contract between the bootstrap coordinator
// and UI modules, plus the explicit registry that replaces the old
// side-effect global registration: the host builds a Registry, adds its
// modules, and hands it to the coordinator.
package module

import (
	"context"

	"github.com/vk/mapboot/internal/fragment"
	"github.com/vk/mapboot/internal/history"
	"github.com/vk/mapboot/internal/l10n"
	"github.com/vk/mapboot/internal/store"
)

// Host exposes the application facilities a module may use. It is
// implemented by the app and passed to every Init call.
type Host interface {
	Store() *store.Store
	Codec() *fragment.Codec
	History() history.History
	Localizer() l10n.Localizer
}

// Module is a UI module consumed once by the bootstrap coordinator.
// Init runs after every module named in Requires has initialized; it
// may subscribe to the store and queue startup work on the barrier, but
// must not apply state — the coordinator performs the first apply after
// the barrier resolves.
type Module interface {
	ID() string
	Requires() []string
	CSSFiles() []string
	Init(ctx context.Context, host Host, b *Barrier) error
}
