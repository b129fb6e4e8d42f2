// Package app wires the application together: codec, store, history,
// localization, module registry, and the bootstrap coordinator. It owns
// the logger and the process lifecycle.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/mapboot/internal/config"
	"github.com/vk/mapboot/internal/css"
	"github.com/vk/mapboot/internal/ctxlog"
	"github.com/vk/mapboot/internal/fragment"
	"github.com/vk/mapboot/internal/history"
	"github.com/vk/mapboot/internal/l10n"
	"github.com/vk/mapboot/internal/module"
	"github.com/vk/mapboot/internal/store"
)

// Config holds all the necessary configuration for an App instance.
type Config struct {
	Fragment   string
	ConfigPath string
	L10nPath   string
	SyncURL    string
	ListenPort int
	LogFormat  string
	LogLevel   string
}

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	codec    *fragment.Codec
	hist     *history.Memory
	store    *store.Store
	links    *css.LinkSet
	loc      l10n.Localizer
	registry *module.Registry
	model    *config.Model
	renderer config.Renderer
	closers  []io.Closer
}

// NewApp is the constructor for the main application. It returns a
// fully initialized App instance, including its own isolated logger,
// codec, store, and module registry. When no modules are given the
// core module set is registered.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...module.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	var (
		model    *config.Model
		renderer config.Renderer
	)
	if appConfig.ConfigPath != "" {
		var err error
		model, renderer, err = loader.Load(ctx, appConfig.ConfigPath)
		if err != nil {
			// A failure to load config is a fatal startup error.
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
		logger.Debug("Configuration loaded and translated into unified model.")
	}

	var loc l10n.Localizer
	if appConfig.L10nPath != "" {
		loc = l10n.NewPackLoader(appConfig.L10nPath)
	} else {
		loc = &l10n.Noop{}
	}

	codec := fragment.New()
	registerFormatters(codec)
	hist := history.NewMemory(appConfig.Fragment)

	a := &App{
		outW:     outW,
		logger:   logger,
		codec:    codec,
		hist:     hist,
		store:    store.New(codec, hist),
		links:    css.NewLinkSet(),
		loc:      loc,
		registry: module.NewRegistry(),
		model:    model,
		renderer: renderer,
	}

	if len(modules) == 0 {
		modules = coreModules(appConfig)
	}
	for _, m := range modules {
		a.registry.Add(m)
		if closer, ok := m.(io.Closer); ok {
			a.closers = append(a.closers, closer)
		}
	}
	logger.Debug("All modules registered.", "count", a.registry.Len())

	return a
}

// registerFormatters installs the per-key formatters the app ships
// with. Language codes are case-insensitive in the wild; normalize on
// the way in.
func registerFormatters(codec *fragment.Codec) {
	codec.RegisterFormatter("lang", fragment.Formatter{
		Parse: func(raw string) any { return strings.ToLower(raw) },
	})
}

// Store returns the application's state store. This is primarily for
// testing.
func (a *App) Store() *store.Store { return a.store }

// Codec returns the application's fragment codec.
func (a *App) Codec() *fragment.Codec { return a.codec }

// History returns the application's history.
func (a *App) History() history.History { return a.hist }

// Localizer returns the application's localizer.
func (a *App) Localizer() l10n.Localizer { return a.loc }

// Registry returns the application's module registry. This is
// primarily for testing.
func (a *App) Registry() *module.Registry { return a.registry }

// Links returns the injected stylesheet links.
func (a *App) Links() []string { return a.links.Links() }
