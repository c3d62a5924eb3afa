// Package gather implements GatherEngine: the iterative greedy set-cover
// over a query's hashes against reference sketches (spec.md §4.4) — the
// hardest of the three engines, because it must keep the index's retired
// hashes and the residual-overlap counters consistent across every
// iteration.
//
// © 2025 smash authors. MIT License.
package gather

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dkoslicki/smash-alternate-implementations/pkg/hashindex"
	"github.com/dkoslicki/smash-alternate-implementations/pkg/sketch"
)

// Result is one selected reference: its residual overlap at the moment it
// was picked, its original (pre-gather) overlap, and the fraction of the
// original query it uniquely accounts for.
type Result struct {
	RefID            sketch.ID
	NumOverlap       int
	NumOverlapOrig   int
	Name             string
	MD5              string
	FracUniqueQuery  float64
}

// Engine runs the iterative greedy cover. It mutates the Index it is given:
// after Run returns, every hash retired during the run has been removed from
// idx. GatherEngine itself runs single-threaded (spec.md §5) — index build
// is the only parallel phase upstream of it.
type Engine struct {
	Logger *zap.Logger
}

// New constructs a gather Engine.
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Logger: logger}
}

// Run executes the greedy cover described in spec.md §4.4 against idx, which
// must already contain every hash of every sketch in refs (built by
// hashindex.Builder over the same reference collection the query is
// compared to). thresholdBp is T_bp: iteration stops once the best remaining
// reference's residual overlap drops below it.
func (e *Engine) Run(query sketch.Sketch, refs []sketch.Sketch, idx *hashindex.Index, thresholdBp int) []Result {
	queryInitialSize := query.Size()
	if queryInitialSize == 0 || len(refs) == 0 {
		return nil
	}

	residual := make([]int, len(refs))
	for _, h := range query.Hashes {
		for _, refID := range idx.Get(h) {
			residual[refID]++
		}
	}
	original := make([]int, len(refs))
	copy(original, residual)

	queryAlive := make(map[sketch.Hash]struct{}, len(query.Hashes))
	for _, h := range query.Hashes {
		queryAlive[h] = struct{}{}
	}

	var results []Result
	for {
		rStar, best := argmaxResidual(residual)
		if best <= 0 || best < thresholdBp {
			// A zero-overlap pick is never meaningful, regardless of
			// threshold: selecting it would neither retire any query hash
			// nor shrink queryAlive, looping forever for thresholdBp <= 0.
			break
		}

		results = append(results, Result{
			RefID:           rStar,
			NumOverlap:      residual[rStar],
			NumOverlapOrig:  original[rStar],
			Name:            refs[rStar].Name,
			MD5:             refs[rStar].MD5,
			FracUniqueQuery: float64(residual[rStar]) / float64(queryInitialSize),
		})

		for _, h := range refs[rStar].Hashes {
			removed := idx.RemoveAll(h)
			if _, alive := queryAlive[h]; !alive {
				continue
			}
			delete(queryAlive, h)
			for _, rid := range removed {
				residual[rid]--
				if residual[rid] < 0 {
					panic(fmt.Sprintf("gather: residual overlap underflow for ref %d after retiring hash %d", rid, h))
				}
			}
		}

		if len(queryAlive) == 0 {
			break
		}
	}

	e.Logger.Info("gather complete",
		zap.Int("query_size", queryInitialSize),
		zap.Int("selected", len(results)),
	)
	return results
}

// argmaxResidual returns the index of the maximum value in residual,
// breaking ties by the smallest index — spec.md §4.4/§9 pins this id-only
// tie-break for reproducibility over the historical (size, name, id)
// alternative.
func argmaxResidual(residual []int) (idx int, max int) {
	max = -1
	for i, v := range residual {
		if v > max {
			max = v
			idx = i
		}
	}
	return idx, max
}
