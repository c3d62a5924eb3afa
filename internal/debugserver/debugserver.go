// Package debugserver is the optional HTTP introspection endpoint a
// long-running smash-compare/smash-prefetch/smash-gather invocation can
// expose via --debug-addr, grounded on the teacher's examples/basic/main.go
// (a minimal HTTP service exposing a JSON snapshot plus /metrics) and
// cmd/arena-cache-inspect/main.go (the matching polling CLI, reimplemented
// here as cmd/smash-inspect).
//
// © 2025 smash authors. MIT License.
package debugserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownGrace = 5 * time.Second

// SnapshotFunc produces the current engine-specific counters to report at
// GET /debug/smash/snapshot. Implementations should be cheap and
// non-blocking: it may be called frequently by a --watch poller.
type SnapshotFunc func() map[string]any

// Server is a small HTTP server exposing run diagnostics. It does not
// replace internal/telemetry's Prometheus sink — it serves the registry the
// caller already populated with one, plus a human/script-friendly JSON
// snapshot and the standard pprof handlers.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	snapshot   atomic.Value // SnapshotFunc
}

// New constructs a Server listening on addr. snapshot may be nil, in which
// case /debug/smash/snapshot reports an empty object until SetSnapshot is
// called. reg may be nil, in which case /metrics is omitted.
func New(addr string, snapshot SnapshotFunc, reg *prometheus.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if snapshot == nil {
		snapshot = func() map[string]any { return map[string]any{} }
	}

	s := &Server{logger: logger}
	s.snapshot.Store(snapshot)

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/smash/snapshot", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fn := s.snapshot.Load().(SnapshotFunc)
		_ = json.NewEncoder(w).Encode(fn())
	})
	if reg != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// SetSnapshot replaces the function served at /debug/smash/snapshot. Safe to
// call concurrently with an in-flight Serve, so a caller can wire it in once
// the state it reports (an index, an engine's counters) exists — which is
// typically after the server has already started listening.
func (s *Server) SetSnapshot(snapshot SnapshotFunc) {
	if snapshot == nil {
		snapshot = func() map[string]any { return map[string]any{} }
	}
	s.snapshot.Store(snapshot)
}

// Serve starts accepting connections and blocks until ctx is cancelled or a
// fatal listener error occurs. It never returns http.ErrServerClosed as an
// error.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("debug server listening", zap.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
