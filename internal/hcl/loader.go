package hcl

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/mapboot/internal/config"
	"github.com/vk/mapboot/internal/ctxlog"
	"github.com/vk/mapboot/internal/fsutil"
	"github.com/vk/mapboot/internal/schema"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under the given paths and translates the
// result into the format-agnostic model plus a Renderer for the
// template blocks it found.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Renderer, error) {
	logger := ctxlog.FromContext(ctx)

	var filePaths []string
	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, nil, fmt.Errorf("walk config path %s: %w", path, err)
		}
		filePaths = append(filePaths, found...)
	}
	logger.Debug("Found HCL configuration files.", "files", filePaths)

	model := &config.Model{}
	templates := make(map[string]hcl.Expression)
	parser := hclparse.NewParser()

	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("parse HCL file %s: %w", filePath, diags)
		}

		var cfg schema.Config
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &cfg); diags.HasErrors() {
			return nil, nil, fmt.Errorf("decode config in %s: %w", filePath, diags)
		}

		if cfg.Defaults != nil {
			if model.HasDefaults() {
				return nil, nil, fmt.Errorf("duplicate defaults block in %s", filePath)
			}
			if err := l.translateDefaults(cfg.Defaults, model); err != nil {
				return nil, nil, fmt.Errorf("in %s: %w", filePath, err)
			}
		}

		for _, tpl := range cfg.Templates {
			if _, exists := templates[tpl.Name]; exists {
				return nil, nil, fmt.Errorf("duplicate template '%s' in %s", tpl.Name, filePath)
			}
			templates[tpl.Name] = tpl.Content
		}
		logger.Debug("Loaded configuration file.", "file", filePath)
	}

	if model.DefaultTemplate != "" {
		if _, ok := templates[model.DefaultTemplate]; !ok {
			return nil, nil, fmt.Errorf("defaults references unknown template '%s'", model.DefaultTemplate)
		}
	}

	for name := range templates {
		model.TemplateNames = append(model.TemplateNames, name)
	}
	sort.Strings(model.TemplateNames)

	logger.Debug("Configuration translated into unified model.",
		"has_default_state", len(model.DefaultState) > 0,
		"default_template", model.DefaultTemplate,
		"templates", len(templates),
	)
	return model, &Renderer{templates: templates}, nil
}

// translateDefaults evaluates the defaults block into the model.
// Exactly one of the inline state and the template reference may be
// set; the inline state must evaluate without variables.
func (l *Loader) translateDefaults(d *schema.Defaults, model *config.Model) error {
	model.DefaultTemplate = d.Template

	if d.State == nil {
		if d.Template == "" {
			return fmt.Errorf("defaults block needs either 'state' or 'template'")
		}
		return nil
	}

	val, diags := d.State.Value(nil)
	if diags.HasErrors() {
		return fmt.Errorf("evaluate defaults state: %w", diags)
	}
	if val.IsNull() {
		return nil
	}
	if d.Template != "" {
		return fmt.Errorf("defaults block sets both 'state' and 'template'")
	}

	state, err := objectToState(val)
	if err != nil {
		return err
	}
	model.DefaultState = state
	return nil
}
