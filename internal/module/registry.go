package module

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vk/mapboot/internal/ctxlog"
	"github.com/vk/mapboot/internal/dag"
)

// Registry holds the modules registered for one application instance,
// in registration order.
type Registry struct {
	order []Module
	byID  map[string]Module
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]Module),
	}
}

// Add registers a module. Registering the same id twice is a programmer
// error.
func (r *Registry) Add(m Module) {
	if _, exists := r.byID[m.ID()]; exists {
		panic(fmt.Sprintf("module with id '%s' already registered", m.ID()))
	}
	slog.Debug("Registering module.", "id", m.ID(), "requires", m.Requires())
	r.byID[m.ID()] = m
	r.order = append(r.order, m)
}

// Modules returns the registered modules in registration order.
func (r *Registry) Modules() []Module {
	out := make([]Module, len(r.order))
	copy(out, r.order)
	return out
}

// Len reports the number of registered modules.
func (r *Registry) Len() int {
	return len(r.order)
}

// Resolve returns the modules in initialization order: every module
// comes after all modules it requires, with registration order breaking
// ties. Unknown requirements and dependency cycles are errors.
func (r *Registry) Resolve(ctx context.Context) ([]Module, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolving module initialization order.", "count", len(r.order))

	graph := dag.New()
	for _, m := range r.order {
		graph.AddNode(m.ID())
	}
	for _, m := range r.order {
		for _, req := range m.Requires() {
			if _, ok := r.byID[req]; !ok {
				return nil, fmt.Errorf("module '%s' requires unknown module '%s'", m.ID(), req)
			}
			if err := graph.AddEdge(req, m.ID()); err != nil {
				return nil, fmt.Errorf("module '%s': %w", m.ID(), err)
			}
		}
	}

	order, err := graph.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("module dependency resolution failed: %w", err)
	}

	ordered := make([]Module, len(order))
	for i, id := range order {
		ordered[i] = r.byID[id]
	}
	logger.Debug("Module order resolved.", "order", order)
	return ordered, nil
}
