package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/mapboot/internal/ctxlog"
)

// Renderer evaluates named template expressions against a data context.
// It is the HCL implementation of config.Renderer.
type Renderer struct {
	templates map[string]hcl.Expression
}

// Render evaluates the template's content expression with the context
// entries exposed as HCL variables and returns the resulting string.
func (r *Renderer) Render(ctx context.Context, templateID string, data map[string]any) (string, error) {
	logger := ctxlog.FromContext(ctx)

	expr, ok := r.templates[templateID]
	if !ok {
		return "", fmt.Errorf("unknown template '%s'", templateID)
	}

	vars, err := stateVars(data)
	if err != nil {
		return "", fmt.Errorf("template '%s': %w", templateID, err)
	}

	val, diags := expr.Value(&hcl.EvalContext{Variables: vars})
	if diags.HasErrors() {
		return "", fmt.Errorf("render template '%s': %w", templateID, diags)
	}

	strVal, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("template '%s' did not produce a string: %w", templateID, err)
	}
	if strVal.IsNull() {
		return "", fmt.Errorf("template '%s' produced null", templateID)
	}

	logger.Debug("Template rendered.", "template", templateID)
	return strVal.AsString(), nil
}

// Templates returns the known template names.
func (r *Renderer) Templates() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}
