package app

import (
	"context"
	"fmt"

	"github.com/vk/mapboot/internal/bootstrap"
	"github.com/vk/mapboot/internal/ctxlog"
	"github.com/vk/mapboot/internal/store"
)

// Run executes the application: bootstrap, the command-line fragment
// apply, and the state printout. With a listen port configured it then
// serves the inspection endpoint until the context is canceled.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer a.close()

	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()
	go a.store.Dispatch(dispatchCtx)

	coordinator := bootstrap.New(a.registry, a.store, a.codec, a.hist, a.links, a.model, a.renderer, a)
	initial, err := coordinator.Run(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	a.logger.Info("Application initialized.", "state_keys", initial.SortedKeys())

	if appConfig.ListenPort > 0 {
		return a.serveState(ctx, appConfig.ListenPort)
	}

	a.printState()
	a.logger.Debug("App.Run method finished.")
	return nil
}

// printState writes the accumulated state to the output writer, one
// sorted key per line.
func (a *App) printState() {
	current := a.store.Current()
	for _, k := range current.SortedKeys() {
		v := current[k]
		if v == nil {
			fmt.Fprintf(a.outW, "%s = (null)\n", k)
			continue
		}
		fmt.Fprintf(a.outW, "%s = %v\n", k, v)
	}
	fmt.Fprintf(a.outW, "fragment: %s\n", a.codec.Stringify(current))
}

// ApplyFragment applies a fragment string as a user navigation,
// pushing a new history entry.
func (a *App) ApplyFragment(link string) error {
	_, err := a.store.ApplyLink(link, store.ApplyOptions{Update: store.UpdatePush})
	return err
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("Module close failed.", "error", err)
		}
	}
}
