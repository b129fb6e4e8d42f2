package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// healthHandler reports liveness.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// stateHandler exposes the store contents for inspection.
func (a *App) stateHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("State endpoint hit.", "remote_addr", r.RemoteAddr)

	current := a.store.Current()
	payload := map[string]any{
		"current":  map[string]any(current),
		"previous": map[string]any(a.store.Previous()),
		"fragment": a.codec.Stringify(current),
		"css":      a.links.Links(),
		"language": a.loc.Language(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("State encoding failed.", "error", err)
	}
}

// serveState runs the inspection HTTP server until the context is
// canceled.
func (a *App) serveState(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/state", a.stateHandler)

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("State inspection server starting.", "address", fmt.Sprintf("http://localhost%s/state", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("state server failed: %w", err)
	}
}
