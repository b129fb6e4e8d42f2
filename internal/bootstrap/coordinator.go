// Package bootstrap orchestrates application startup: module
// initialization in dependency order, stylesheet injection, initial
// state resolution, and the first state apply. Every stage failure is
// terminal — a broken start is surfaced immediately, never degraded.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/vk/mapboot/internal/appstate"
	"github.com/vk/mapboot/internal/config"
	"github.com/vk/mapboot/internal/css"
	"github.com/vk/mapboot/internal/ctxlog"
	"github.com/vk/mapboot/internal/fragment"
	"github.com/vk/mapboot/internal/history"
	"github.com/vk/mapboot/internal/module"
	"github.com/vk/mapboot/internal/store"
)

// Phase tracks how far startup has progressed.
type Phase int

const (
	Registered Phase = iota
	ModulesInitializing
	CssInjected
	StateResolving
	Initialized
)

// String returns the phase name for logging.
func (p Phase) String() string {
	switch p {
	case Registered:
		return "Registered"
	case ModulesInitializing:
		return "ModulesInitializing"
	case CssInjected:
		return "CssInjected"
	case StateResolving:
		return "StateResolving"
	case Initialized:
		return "Initialized"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Coordinator runs the startup sequence once. All collaborators are
// injected at construction; nothing is registered through package
// globals.
type Coordinator struct {
	registry *module.Registry
	store    *store.Store
	codec    *fragment.Codec
	hist     history.History
	injector css.Injector
	model    *config.Model
	renderer config.Renderer
	host     module.Host

	phase Phase
}

// New creates a Coordinator. The model and renderer may be nil when no
// configuration was provided; startup then resolves the URL state only.
func New(reg *module.Registry, st *store.Store, codec *fragment.Codec, hist history.History, injector css.Injector, model *config.Model, renderer config.Renderer, host module.Host) *Coordinator {
	return &Coordinator{
		registry: reg,
		store:    st,
		codec:    codec,
		hist:     hist,
		injector: injector,
		model:    model,
		renderer: renderer,
		host:     host,
		phase:    Registered,
	}
}

// Phase returns the last phase startup reached.
func (c *Coordinator) Phase() Phase {
	return c.phase
}

// Run executes the startup sequence and returns the initial state it
// applied. Any stage failure aborts startup; the first apply never
// happens after an error.
func (c *Coordinator) Run(ctx context.Context) (appstate.State, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Bootstrap starting.", "modules", c.registry.Len())

	ordered, err := c.registry.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	c.phase = ModulesInitializing
	barrier := module.NewBarrier()
	for _, m := range ordered {
		logger.Debug("Initializing module.", "id", m.ID())
		if err := m.Init(ctx, c.host, barrier); err != nil {
			return nil, fmt.Errorf("module '%s' init failed: %w", m.ID(), err)
		}
	}
	logger.Debug("All modules initialized.", "count", len(ordered))

	// Stylesheets go in in registration order, not init order.
	c.phase = CssInjected
	for _, m := range c.registry.Modules() {
		for _, href := range m.CSSFiles() {
			if err := c.injector.Inject(href); err != nil {
				return nil, fmt.Errorf("module '%s' css '%s': %w", m.ID(), href, err)
			}
		}
	}

	c.phase = StateResolving
	initial, err := c.resolveInitialState(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("Initial state resolved.", "keys", initial.SortedKeys())

	if err := barrier.Wait(ctx, initial); err != nil {
		return nil, fmt.Errorf("startup barrier failed: %w", err)
	}
	logger.Debug("Startup barrier resolved.", "tasks", barrier.Len())

	c.store.Apply(initial, store.ApplyOptions{})
	c.phase = Initialized
	logger.Info("Bootstrap finished.", "phase", c.phase.String())
	return initial, nil
}

// resolveInitialState merges the URL-derived state over the configured
// defaults. A plain default state merges directly; a template reference
// is rendered with the URL state as context and the output parsed as a
// fragment. The URL state wins on key conflicts.
func (c *Coordinator) resolveInitialState(ctx context.Context) (appstate.State, error) {
	urlState, err := c.codec.Parse(c.hist.Fragment())
	if err != nil {
		return nil, fmt.Errorf("parse startup fragment: %w", err)
	}

	initial := appstate.State{}
	switch {
	case c.model == nil || !c.model.HasDefaults():
		// No defaults configured.
	case len(c.model.DefaultState) > 0:
		initial = c.model.DefaultState.Clone()
	default:
		rendered, err := c.renderer.Render(ctx, c.model.DefaultTemplate, urlState)
		if err != nil {
			return nil, fmt.Errorf("render default state: %w", err)
		}
		initial, err = c.codec.Parse(rendered)
		if err != nil {
			return nil, fmt.Errorf("parse rendered default state: %w", err)
		}
	}

	initial.Merge(urlState)
	return initial, nil
}
