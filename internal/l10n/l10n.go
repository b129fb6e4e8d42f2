// Package l10n loads language packs for the UI. A pack is a flat JSON
// object mapping message keys to translated strings, stored as
// `<code>.json` in the pack directory.
package l10n

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Localizer is the contract the bootstrap and modules depend on:
// switching languages completes asynchronously from the caller's point
// of view, signalled by the error return.
type Localizer interface {
	SetLanguage(ctx context.Context, code string) error
	Language() string
	T(key string) string
}

// PackLoader is a Localizer backed by JSON catalogs on disk.
type PackLoader struct {
	dir string

	mu      sync.RWMutex
	lang    string
	catalog map[string]string
}

// NewPackLoader creates a loader reading catalogs from dir.
func NewPackLoader(dir string) *PackLoader {
	return &PackLoader{dir: dir}
}

// SetLanguage reads and installs the catalog for the given code. The
// previous catalog stays active when loading fails.
func (p *PackLoader) SetLanguage(ctx context.Context, code string) error {
	if code == "" {
		return fmt.Errorf("l10n: empty language code")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := os.ReadFile(filepath.Join(p.dir, code+".json"))
	if err != nil {
		return fmt.Errorf("l10n: load pack '%s': %w", code, err)
	}

	catalog := make(map[string]string)
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("l10n: parse pack '%s': %w", code, err)
	}

	p.mu.Lock()
	p.lang = code
	p.catalog = catalog
	p.mu.Unlock()
	return nil
}

// Language returns the active language code, or "" before the first
// successful SetLanguage.
func (p *PackLoader) Language() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lang
}

// T looks up a message key, falling back to the key itself.
func (p *PackLoader) T(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if msg, ok := p.catalog[key]; ok {
		return msg
	}
	return key
}

// Noop is a Localizer that accepts every language and translates
// nothing. It is used when no pack directory is configured.
type Noop struct {
	mu   sync.Mutex
	lang string
}

// SetLanguage records the code and succeeds.
func (n *Noop) SetLanguage(ctx context.Context, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lang = code
	return nil
}

// Language returns the last recorded code.
func (n *Noop) Language() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lang
}

// T returns the key unchanged.
func (n *Noop) T(key string) string { return key }
