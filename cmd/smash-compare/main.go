// Command smash-compare runs PairwiseEngine over a single filelist
// (all-vs-all), per spec.md §6's "compare" CLI surface.
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
	"github.com/dkoslicki/smash-alternate-implementations/pkg/hashindex"
	"github.com/dkoslicki/smash-alternate-implementations/pkg/pairwise"
	"github.com/dkoslicki/smash-alternate-implementations/pkg/sketchio"
)

type options struct {
	filelist       string
	workingDir     string
	outputFilename string

	containmentThreshold float64
	threads              int
	numHashtables        int
	numPasses            int

	debugAddr string
	cacheDir  string
	verbose   bool
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("smash-compare", flag.ContinueOnError)
	opts := &options{}

	cliutil.AddFloatAlias(fs, &opts.containmentThreshold, "c", "containment-threshold", 0.5, "minimum containment for a pair to be emitted")
	cliutil.AddIntAlias(fs, &opts.threads, "t", "threads", 1, "worker thread count")
	cliutil.AddIntAlias(fs, &opts.numHashtables, "n", "num-hashtables", hashindex.DefaultShardCount, "number of index shards")
	cliutil.AddIntAlias(fs, &opts.numPasses, "p", "num-passes", 1, "number of query tile passes")
	fs.StringVar(&opts.debugAddr, "debug-addr", "", "optional host:port to serve /debug/smash/snapshot and /metrics on")
	fs.StringVar(&opts.cacheDir, "cache-dir", "", "optional directory for a Badger-backed sketch parse cache")
	fs.BoolVar(&opts.verbose, "verbose", false, "enable debug-level logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	pos := fs.Args()
	if len(pos) != 3 {
		fs.Usage()
		return nil, fmt.Errorf("expected 3 positional arguments (filelist working_dir output_filename), got %d", len(pos))
	}
	opts.filelist, opts.workingDir, opts.outputFilename = pos[0], pos[1], pos[2]
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
		cliutil.Fatal(rt.Logger, "smash-compare failed", err)
	}
}

func run(ctx context.Context, opts *options, rt *cliutil.Runtime) error {
	paths, err := sketchio.ReadFilelist(opts.filelist)
	if err != nil {
		return err
	}

	loader := sketchio.NewLoader(opts.threads, rt.Cache, rt.Logger)
	sketches, report := loader.Load(ctx, paths)
	rt.Metrics.AddSketchesLoaded(len(sketches) - len(report.EmptyIDs))
	rt.Metrics.AddSketchesEmpty(len(report.EmptyIDs))
	rt.Logger.Info("sketches loaded", zap.Int("total", len(sketches)), zap.Int("empty", len(report.EmptyIDs)))

	idx, err := hashindex.New(opts.numHashtables)
	if err != nil {
		return err
	}
	builder := hashindex.NewBuilder(opts.threads, rt.Logger)
	if err := builder.Build(ctx, idx, sketches); err != nil {
		return err
	}
	rt.Metrics.SetHashesIndexed(idx.Size())

	engine := pairwise.New(opts.threads, opts.numPasses, opts.containmentThreshold, opts.workingDir, rt.Logger)
	rt.SetSnapshot(func() map[string]any {
		return map[string]any{
			"sketches_loaded":      len(sketches) - len(report.EmptyIDs),
			"sketches_empty":       len(report.EmptyIDs),
			"hashes_indexed":       idx.Size(),
			"pairwise_passes_done": engine.PassesCompleted(),
		}
	})

	if err := engine.Run(ctx, sketches, sketches, idx); err != nil {
		return err
	}
	rt.Metrics.AddPairwisePairsEmitted(engine.PairsEmitted())
	if err := engine.Concat(opts.outputFilename); err != nil {
		return err
	}

	rt.Logger.Info("smash-compare complete", zap.String("output", opts.outputFilename))
	return nil
}
