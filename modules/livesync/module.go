// Package livesync publishes applied state deltas to a collaboration
// server over socket.io, so other sessions viewing the same map can
// follow along. The module is optional; the host only registers it when
// a sync URL is configured.
package livesync

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/mapboot/internal/appstate"
	"github.com/vk/mapboot/internal/ctxlog"
	"github.com/vk/mapboot/internal/module"
)

// Module implements module.Module for the live-sync publisher.
type Module struct {
	url       string
	namespace string
	clientID  string

	io          *socket.Socket
	isConnected atomic.Bool
	ready       chan struct{}
	connectErr  chan error
}

// New creates a live-sync module targeting the given socket.io URL and
// namespace. Every session gets a fresh client identity.
func New(serverURL, namespace string) *Module {
	return &Module{
		url:        serverURL,
		namespace:  namespace,
		clientID:   uuid.NewString(),
		ready:      make(chan struct{}),
		connectErr: make(chan error, 1),
	}
}

// ID implements module.Module.
func (m *Module) ID() string { return "livesync" }

// Requires implements module.Module.
func (m *Module) Requires() []string { return nil }

// CSSFiles implements module.Module.
func (m *Module) CSSFiles() []string { return nil }

// ClientID returns the session's sync identity.
func (m *Module) ClientID() string { return m.clientID }

// Init wires the socket client and subscribes to applied deltas. The
// connection itself is established during the startup barrier so that
// a failed handshake aborts startup.
func (m *Module) Init(ctx context.Context, host module.Host, b *module.Barrier) error {
	logger := ctxlog.FromContext(ctx).With("module", "livesync", "url", m.url, "namespace", m.namespace)
	logger.Debug("Live-sync module initializing.")

	parsedURL, err := url.Parse(m.url)
	if err != nil {
		return fmt.Errorf("livesync: parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	m.io = manager.Socket(m.namespace, opts)

	m.io.On(types.EventName("connect"), func(...any) {
		m.isConnected.Store(true)
		logger.Info("Live-sync connected.", "sid", m.io.Id(), "client", m.clientID)
		close(m.ready)
	})

	m.io.On(types.EventName("connect_error"), func(errs ...any) {
		if err, ok := errs[0].(error); ok {
			select {
			case m.connectErr <- err:
			default:
			}
		}
	})

	host.Store().OnApply(func(delta appstate.State) {
		if !m.isConnected.Load() {
			return
		}
		m.io.Emit("state", map[string]any{
			"client": m.clientID,
			"delta":  map[string]any(delta),
		})
	})

	b.Go(m.connect)
	return nil
}

// connect opens the socket and blocks until the handshake settles.
func (m *Module) connect(ctx context.Context, initial appstate.State) error {
	m.io.Connect()
	select {
	case <-m.ready:
		return nil
	case err := <-m.connectErr:
		return fmt.Errorf("livesync: connect: %w", err)
	case <-ctx.Done():
		return fmt.Errorf("livesync: connect: %w", ctx.Err())
	}
}

// Close disconnects the socket client.
func (m *Module) Close() error {
	if m.io != nil {
		m.io.Disconnect()
	}
	return nil
}
