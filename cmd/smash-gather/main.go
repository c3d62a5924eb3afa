// Command smash-gather runs the iterative greedy cover of one query sketch
// against a reference collection, per spec.md §6's "gather" CLI surface
// (same positional/flag surface as prefetch; selects the iterative greedy
// mode).
//
// © 2025 smash authors. MIT License.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/dkoslicki/smash-alternate-implementations/internal/cliutil"
	"github.com/dkoslicki/smash-alternate-implementations/pkg/gather"
	"github.com/dkoslicki/smash-alternate-implementations/pkg/hashindex"
	"github.com/dkoslicki/smash-alternate-implementations/pkg/sketchio"
)

type options struct {
	queryPath      string
	refFilelist    string
	outputFilename string

	threads       int
	thresholdBp   int
	numHashtables int

	debugAddr string
	cacheDir  string
	verbose   bool
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("smash-gather", flag.ContinueOnError)
	opts := &options{}

	cliutil.AddIntAlias(fs, &opts.threads, "t", "threads", 1, "worker thread count")
	cliutil.AddIntAlias(fs, &opts.thresholdBp, "b", "threshold-bp", 50, "residual overlap floor at which gather stops")
	cliutil.AddIntAlias(fs, &opts.numHashtables, "n", "num-hashtables", hashindex.DefaultShardCount, "number of index shards")
	fs.StringVar(&opts.debugAddr, "debug-addr", "", "optional host:port to serve /debug/smash/snapshot and /metrics on")
	fs.StringVar(&opts.cacheDir, "cache-dir", "", "optional directory for a Badger-backed sketch parse cache")
	fs.BoolVar(&opts.verbose, "verbose", false, "enable debug-level logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	pos := fs.Args()
	if len(pos) != 3 {
		fs.Usage()
		return nil, fmt.Errorf("expected 3 positional arguments (query_path ref_filelist output_filename), got %d", len(pos))
	}
	opts.queryPath, opts.refFilelist, opts.outputFilename = pos[0], pos[1], pos[2]
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rt, err := cliutil.Open(cliutil.Options{
		Verbose:   opts.verbose,
		DebugAddr: opts.debugAddr,
		CacheDir:  opts.cacheDir,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rt.Close()

	ctx := context.Background()
	stop := rt.ServeDebug(ctx)
	defer stop()

	if err := run(ctx, opts, rt); err != nil {
		cliutil.Fatal(rt.Logger, "smash-gather failed", err)
	}
}

func run(ctx context.Context, opts *options, rt *cliutil.Runtime) error {
	query := sketchio.ParseFile(opts.queryPath)
	if query.LoadErr != nil {
		return fmt.Errorf("load query sketch: %w", query.LoadErr)
	}

	refPaths, err := sketchio.ReadFilelist(opts.refFilelist)
	if err != nil {
		return err
	}

	loader := sketchio.NewLoader(opts.threads, rt.Cache, rt.Logger)
	refs, report := loader.Load(ctx, refPaths)
	rt.Metrics.AddSketchesLoaded(len(refs) - len(report.EmptyIDs))
	rt.Metrics.AddSketchesEmpty(len(report.EmptyIDs))
	rt.Logger.Info("reference sketches loaded", zap.Int("total", len(refs)), zap.Int("empty", len(report.EmptyIDs)))

	// Gather mutates the index by retiring hashes as references are
	// selected (spec.md §4.4), so index build must happen per run rather
	// than being shared across queries.
	idx, err := hashindex.New(opts.numHashtables)
	if err != nil {
		return err
	}
	builder := hashindex.NewBuilder(opts.threads, rt.Logger)
	if err := builder.Build(ctx, idx, refs); err != nil {
		return err
	}
	rt.Metrics.SetHashesIndexed(idx.Size())

	engine := gather.New(rt.Logger)
	results := engine.Run(query, refs, idx, opts.thresholdBp)
	for range results {
		rt.Metrics.IncGatherIteration()
	}
	rt.SetSnapshot(func() map[string]any {
		return map[string]any{
			"sketches_loaded":   len(refs) - len(report.EmptyIDs),
			"sketches_empty":    len(report.EmptyIDs),
			"hashes_indexed":    idx.Size(),
			"gather_iterations": len(results),
		}
	})

	out, err := os.Create(opts.outputFilename)
	if err != nil {
		return fmt.Errorf("create output file %s: %w", opts.outputFilename, err)
	}
	defer out.Close()
	if err := gather.WriteCSV(out, results); err != nil {
		return err
	}

	rt.Logger.Info("smash-gather complete", zap.Int("selected", len(results)), zap.String("output", opts.outputFilename))
	return nil
}
