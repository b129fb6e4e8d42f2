package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/mapboot/internal/appstate"
	"github.com/vk/mapboot/internal/config"
	"github.com/vk/mapboot/internal/css"
	"github.com/vk/mapboot/internal/fragment"
	"github.com/vk/mapboot/internal/history"
	"github.com/vk/mapboot/internal/l10n"
	"github.com/vk/mapboot/internal/module"
	"github.com/vk/mapboot/internal/store"
)

// testHost wires the real store, codec and history for coordinator
// tests.
type testHost struct {
	store *store.Store
	codec *fragment.Codec
	hist  history.History
	loc   l10n.Localizer
}

func (h *testHost) Store() *store.Store        { return h.store }
func (h *testHost) Codec() *fragment.Codec     { return h.codec }
func (h *testHost) History() history.History   { return h.hist }
func (h *testHost) Localizer() l10n.Localizer  { return h.loc }

// testModule is a configurable module for startup tests.
type testModule struct {
	id       string
	requires []string
	css      []string
	initErr  error
	barrier  module.Task
	onInit   func()
}

func (m *testModule) ID() string         { return m.id }
func (m *testModule) Requires() []string { return m.requires }
func (m *testModule) CSSFiles() []string { return m.css }
func (m *testModule) Init(ctx context.Context, host module.Host, b *module.Barrier) error {
	if m.onInit != nil {
		m.onInit()
	}
	if m.barrier != nil {
		b.Go(m.barrier)
	}
	return m.initErr
}

// fixedRenderer returns a canned rendering.
type fixedRenderer struct {
	out string
	err error
}

func (r *fixedRenderer) Render(ctx context.Context, templateID string, data map[string]any) (string, error) {
	return r.out, r.err
}

type fixture struct {
	reg   *module.Registry
	st    *store.Store
	hist  *history.Memory
	links *css.LinkSet
}

func newFixture(fragmentStr string) *fixture {
	codec := fragment.New()
	hist := history.NewMemory(fragmentStr)
	return &fixture{
		reg:   module.NewRegistry(),
		st:    store.New(codec, hist),
		hist:  hist,
		links: css.NewLinkSet(),
	}
}

func (f *fixture) coordinator(model *config.Model, renderer config.Renderer) *Coordinator {
	codec := fragment.New()
	host := &testHost{store: f.st, codec: codec, hist: f.hist, loc: &l10n.Noop{}}
	return New(f.reg, f.st, codec, f.hist, f.links, model, renderer, host)
}

func TestRunInitOrderAndFirstApply(t *testing.T) {
	f := newFixture("lang=de")

	var order []string
	f.reg.Add(&testModule{id: "maplink", requires: []string{"mapview"}, onInit: func() { order = append(order, "maplink") }})
	f.reg.Add(&testModule{id: "mapview", onInit: func() { order = append(order, "mapview") }})

	c := f.coordinator(nil, nil)
	initial, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"mapview", "maplink"}, order)
	assert.Equal(t, appstate.State{"lang": "de"}, initial)
	assert.Equal(t, appstate.State{"lang": "de"}, f.st.Current())
	assert.Equal(t, Initialized, c.Phase())
}

func TestRunModuleInitFailureHaltsStartup(t *testing.T) {
	f := newFixture("lang=de")
	f.reg.Add(&testModule{id: "broken", initErr: errors.New("boom")})

	c := f.coordinator(nil, nil)
	_, err := c.Run(context.Background())
	require.ErrorContains(t, err, "module 'broken' init failed")

	assert.Empty(t, f.st.Current(), "first apply must not happen after an init failure")
	assert.Equal(t, ModulesInitializing, c.Phase())
}

func TestRunCssInjectionInRegistrationOrder(t *testing.T) {
	f := newFixture("")
	// maplink registered first but initialized second; css still goes in
	// registration order.
	f.reg.Add(&testModule{id: "maplink", requires: []string{"mapview"}, css: []string{"css/link.css"}})
	f.reg.Add(&testModule{id: "mapview", css: []string{"css/view.css", "css/view.css"}})

	c := f.coordinator(nil, nil)
	_, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"css/link.css", "css/view.css"}, f.links.Links())
}

func TestRunPlainDefaultsMergeUnderURLState(t *testing.T) {
	f := newFixture("lang=de&basemap=ortho")
	model := &config.Model{DefaultState: appstate.State{
		"lang":    "en",
		"basemap": "standard",
		"zoom":    7.0,
	}}

	c := f.coordinator(model, nil)
	initial, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, appstate.State{
		"lang":    "de",      // URL wins
		"basemap": "ortho",   // URL wins
		"zoom":    7.0,       // default survives
	}, initial)
}

func TestRunTemplateDefaults(t *testing.T) {
	f := newFixture("lang=de")
	model := &config.Model{DefaultTemplate: "startup"}
	renderer := &fixedRenderer{out: "map=7/47.600/13.300&lang=en"}

	c := f.coordinator(model, renderer)
	initial, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "de", initial["lang"], "URL state wins over rendered defaults")
	assert.Equal(t, 7.0, initial["zoom"])
	assert.Equal(t, 47.6, initial["lat"])
	assert.Equal(t, 13.3, initial["lon"])
	assert.NotContains(t, initial, "map")
}

func TestRunTemplateRenderFailureIsFatal(t *testing.T) {
	f := newFixture("")
	model := &config.Model{DefaultTemplate: "startup"}
	renderer := &fixedRenderer{err: errors.New("compile error")}

	c := f.coordinator(model, renderer)
	_, err := c.Run(context.Background())
	require.ErrorContains(t, err, "render default state")
	assert.Empty(t, f.st.Current())
}

func TestRunBarrierFailureHaltsFirstApply(t *testing.T) {
	f := newFixture("lang=de")
	f.reg.Add(&testModule{id: "locale", barrier: func(ctx context.Context, initial appstate.State) error {
		return errors.New("pack load failed")
	}})

	c := f.coordinator(nil, nil)
	_, err := c.Run(context.Background())
	require.ErrorContains(t, err, "startup barrier failed")
	assert.Empty(t, f.st.Current())
}

func TestRunBarrierReceivesResolvedState(t *testing.T) {
	f := newFixture("lang=de")
	model := &config.Model{DefaultState: appstate.State{"basemap": "standard"}}

	var got appstate.State
	f.reg.Add(&testModule{id: "locale", barrier: func(ctx context.Context, initial appstate.State) error {
		got = initial
		return nil
	}})

	c := f.coordinator(model, nil)
	_, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, appstate.State{"lang": "de", "basemap": "standard"}, got)
}

func TestRunStartupFragmentParseFailureIsFatal(t *testing.T) {
	f := newFixture("bad=%zz")
	c := f.coordinator(nil, nil)

	_, err := c.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateResolving, c.Phase())
}

func TestRunUnknownRequirementIsFatal(t *testing.T) {
	f := newFixture("")
	f.reg.Add(&testModule{id: "a", requires: []string{"ghost"}})

	c := f.coordinator(nil, nil)
	_, err := c.Run(context.Background())
	assert.ErrorContains(t, err, "unknown module")
}
