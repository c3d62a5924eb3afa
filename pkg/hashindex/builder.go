package hashindex

// builder.go implements IndexBuilder: partitions a sketch collection across
// worker threads and inserts each worker's shard of hashes into the Index.
// No inter-worker coordination is required beyond launch/join — correctness
// follows entirely from each shard's own lock (spec.md §4.2). Grounded on
// original_source/src/utils.cpp's compute_index_from_sketches /
// compute_index_from_sketches_one_chunk, restated as a structured worker
// pool per spec.md §9.
//
// © 2025 smash authors. MIT License.

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dkoslicki/smash-alternate-implementations/internal/chunk"
	"github.com/dkoslicki/smash-alternate-implementations/pkg/sketch"
)

// Builder populates an Index from a sketch vector using a fixed worker pool.
type Builder struct {
	Threads int
	Logger  *zap.Logger
}

// NewBuilder constructs a Builder with at least one worker.
func NewBuilder(threads int, logger *zap.Logger) *Builder {
	if threads < 1 {
		threads = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{Threads: threads, Logger: logger}
}

// Build partitions [0, len(sketches)) into contiguous chunks, one per
// worker, and has each worker call idx.Add(h, i) for every hash h in
// sketches[i]. The final index contents are a function of the input
// sketches only, never of thread scheduling (spec.md §5) — building the same
// sketches with Threads=1 or Threads=K yields identical (hash -> multiset of
// IDs) mappings.
func (b *Builder) Build(ctx context.Context, idx *Index, sketches []sketch.Sketch) error {
	n := len(sketches)
	ranges := chunk.Split(n, b.Threads)
	if len(ranges) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	lastWorker := len(ranges) - 1
	for wi, r := range ranges {
		wi, r := wi, r
		g.Go(func() error {
			reportProgress := wi == lastWorker
			for i := r.Start; i < r.End; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				for _, h := range sketches[i].Hashes {
					idx.Add(h, i)
				}

				if reportProgress && r.Len() > 0 && (i-r.Start)%4096 == 0 {
					b.Logger.Debug("index build progress",
						zap.Int("worker", wi),
						zap.Float64("percent", 100*float64(i-r.Start)/float64(r.Len())),
					)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	b.Logger.Info("index build complete",
		zap.Int("sketches", n),
		zap.Int("shards", idx.ShardCount()),
		zap.Int("keys", idx.Size()),
	)
	return nil
}
