// Package prefetch implements PrefetchEngine: a single-pass ranking of
// reference sketches by raw hash overlap with one query sketch (spec.md
// §4.3).
//
// © 2025 smash authors. MIT License.
package prefetch

import (
	"sort"

	"go.uber.org/zap"

	"github.com/dkoslicki/smash-alternate-implementations/pkg/hashindex"
	"github.com/dkoslicki/smash-alternate-implementations/pkg/sketch"
)

// Row is one output record: a reference sketch whose intersection with the
// query met the threshold.
type Row struct {
	RefID                sketch.ID
	NumIntersections     int
	ContainmentQueryRef  float64
	ContainmentRefQuery  float64
	Jaccard              float64
}

// Engine ranks references by overlap with a query sketch.
type Engine struct {
	Logger *zap.Logger
}

// New constructs a prefetch Engine.
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Logger: logger}
}

// Run scans every hash in query, fans out through idx, and accumulates a
// per-reference overlap counter (spec.md §4.3 algorithm). Rows whose
// intersection count is below thresholdBp are dropped; the rest are sorted
// by NumIntersections descending, ties broken by RefID ascending — the
// tie-break spec.md §4.3/§9 pins for reproducibility over the historical
// (size, name, id) alternative. An empty query yields no rows.
func (e *Engine) Run(query sketch.Sketch, refs []sketch.Sketch, idx *hashindex.Index, thresholdBp int) []Row {
	counts := make([]int, len(refs))
	for _, h := range query.Hashes {
		for _, refID := range idx.Get(h) {
			counts[refID]++
		}
	}

	rows := make([]Row, 0, len(refs))
	qSize := query.Size()
	for refID, count := range counts {
		if qSize == 0 || count < thresholdBp {
			continue
		}
		refSize := refs[refID].Size()
		denom := qSize + refSize - count
		if denom <= 0 {
			continue
		}
		row := Row{
			RefID:            refID,
			NumIntersections: count,
			Jaccard:          float64(count) / float64(denom),
		}
		if qSize > 0 {
			row.ContainmentQueryRef = float64(count) / float64(qSize)
		}
		if refSize > 0 {
			row.ContainmentRefQuery = float64(count) / float64(refSize)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].NumIntersections != rows[j].NumIntersections {
			return rows[i].NumIntersections > rows[j].NumIntersections
		}
		return rows[i].RefID < rows[j].RefID
	})

	e.Logger.Info("prefetch complete",
		zap.Int("query_size", qSize),
		zap.Int("refs", len(refs)),
		zap.Int("emitted", len(rows)),
	)
	return rows
}
