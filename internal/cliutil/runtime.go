// Package cliutil bundles the setup every smash-* command repeats: logger
// construction, optional Prometheus registry + debug server, and an
// optional on-disk sketch parse cache. Factoring it out keeps each command's
// main.go focused on its own argument surface, the way the teacher keeps
// pkg/config.go's defaulting/validation logic out of every call site.
//
// © 2025 smash authors. MIT License.
package cliutil

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dkoslicki/smash-alternate-implementations/internal/debugserver"
	"github.com/dkoslicki/smash-alternate-implementations/internal/telemetry"
	"github.com/dkoslicki/smash-alternate-implementations/pkg/sketchio"
)

// Runtime holds the ambient services a command needs for the duration of one
// run.
type Runtime struct {
	Logger  *zap.Logger
	Metrics telemetry.Sink
	Cache   *sketchio.Cache // nil when --cache-dir was not set

	registry *prometheus.Registry
	debug    *debugserver.Server
}

// Options configures Open.
type Options struct {
	Verbose   bool
	DebugAddr string // empty disables the debug server
	CacheDir  string // empty disables the parse cache
	Snapshot  debugserver.SnapshotFunc
}

// Open constructs a Runtime. Callers must defer Close().
func Open(opts Options) (*Runtime, error) {
	logger, err := telemetry.NewLogger(opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	rt := &Runtime{Logger: logger, Metrics: telemetry.NewNopSink()}

	if opts.DebugAddr != "" {
		rt.registry = prometheus.NewRegistry()
		rt.Metrics = telemetry.NewPromSink(rt.registry)
		rt.debug = debugserver.New(opts.DebugAddr, opts.Snapshot, rt.registry, logger)
	}

	if opts.CacheDir != "" {
		cache, err := sketchio.OpenCache(opts.CacheDir)
		if err != nil {
			return nil, err
		}
		rt.Cache = cache
	}

	return rt, nil
}

// ServeDebug starts the debug server in the background, if one was
// configured, and returns a function that stops it. Safe to call even when
// no debug server is configured (returns a no-op stop function).
func (rt *Runtime) ServeDebug(ctx context.Context) (stop func()) {
	if rt.debug == nil {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := rt.debug.Serve(ctx); err != nil {
			rt.Logger.Error("debug server exited", zap.Error(err))
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// SetSnapshot wires the debug server's snapshot source after the values it
// reports (an index, loaded sketches, an engine's counters) exist. A no-op
// when no debug server was configured.
func (rt *Runtime) SetSnapshot(snapshot debugserver.SnapshotFunc) {
	if rt.debug != nil {
		rt.debug.SetSnapshot(snapshot)
	}
}

// Close releases the cache and flushes the logger.
func (rt *Runtime) Close() {
	if rt.Cache != nil {
		_ = rt.Cache.Close()
	}
	_ = rt.Logger.Sync()
}

// Fatal logs err at Error level and exits the process with status 1,
// matching spec.md §7's "fatal errors on standard error with exit code 1",
// grounded on the teacher's cmd/arena-cache-inspect fatal() helper but routed
// through zap instead of fmt.Fprintln.
func Fatal(logger *zap.Logger, msg string, err error) {
	logger.Error(msg, zap.Error(err))
	_ = logger.Sync()
	exit(1)
}

// exit is a var so tests can stub it; left as os.Exit in production.
var exit = defaultExit
