package gather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoslicki/smash-alternate-implementations/pkg/hashindex"
	"github.com/dkoslicki/smash-alternate-implementations/pkg/sketch"
)

func buildS1Index() (*hashindex.Index, []sketch.Sketch) {
	refs := []sketch.Sketch{
		{Name: "A", Hashes: []sketch.Hash{1, 2, 3}},
		{Name: "B", Hashes: []sketch.Hash{2, 3, 4}},
		{Name: "C", Hashes: []sketch.Hash{5}},
	}
	idx := hashindex.NewDefault()
	for refID, s := range refs {
		for _, h := range s.Hashes {
			idx.Add(h, refID)
		}
	}
	return idx, refs
}

// TestRunMatchesS3 pins the worked example: query {1,2,3,4} against
// A={1,2,3}, B={2,3,4}, C={5} at T_bp=1 selects A (residual 3) then B
// (residual 1), stopping once the query's alive hashes are exhausted.
func TestRunMatchesS3(t *testing.T) {
	idx, refs := buildS1Index()
	query := sketch.Sketch{Hashes: []sketch.Hash{1, 2, 3, 4}}

	results := New(nil).Run(query, refs, idx, 1)

	require.Len(t, results, 2)

	assert.Equal(t, 0, results[0].RefID) // A
	assert.Equal(t, 3, results[0].NumOverlap)
	assert.Equal(t, 3, results[0].NumOverlapOrig)
	assert.InDelta(t, 0.75, results[0].FracUniqueQuery, 1e-9)

	assert.Equal(t, 1, results[1].RefID) // B
	assert.Equal(t, 1, results[1].NumOverlap)
	assert.Equal(t, 3, results[1].NumOverlapOrig)
	assert.InDelta(t, 0.25, results[1].FracUniqueQuery, 1e-9)

	// Every hash of both selected references has been retired from idx.
	for _, h := range []sketch.Hash{1, 2, 3, 4} {
		assert.False(t, idx.Contains(h), "hash %d should have been retired", h)
	}
	assert.True(t, idx.Contains(5), "C was never selected, its hash survives")
}

// TestRunMatchesS6 pins the disjoint-query termination example: a query with
// no hashes in common with any reference stops on the first iteration with
// no output.
func TestRunMatchesS6(t *testing.T) {
	idx, refs := buildS1Index()
	query := sketch.Sketch{Hashes: []sketch.Hash{100, 101}}

	results := New(nil).Run(query, refs, idx, 1)

	assert.Empty(t, results)
	// A disjoint query must never mutate the index.
	assert.Equal(t, 5, idx.Size())
}

func TestRunEmptyQueryOrNoRefsYieldsNil(t *testing.T) {
	idx, refs := buildS1Index()
	assert.Nil(t, New(nil).Run(sketch.Sketch{}, refs, idx, 1))

	idx2 := hashindex.NewDefault()
	assert.Nil(t, New(nil).Run(sketch.Sketch{Hashes: []sketch.Hash{1}}, nil, idx2, 1))
}

// TestRunTerminatesWhenNoRemainingReferenceOverlapsAtZeroThreshold guards
// against an unbounded loop when thresholdBp <= 0: a reference with zero
// overlap must never be selected, even though residual[rStar] >= 0 would
// never satisfy `best < thresholdBp` on its own.
func TestRunTerminatesWhenNoRemainingReferenceOverlapsAtZeroThreshold(t *testing.T) {
	refs := []sketch.Sketch{{Name: "R", Hashes: []sketch.Hash{100}}}
	idx := hashindex.NewDefault()
	idx.Add(100, 0)
	query := sketch.Sketch{Hashes: []sketch.Hash{1, 2}}

	results := New(nil).Run(query, refs, idx, 0)

	assert.Empty(t, results)
	assert.True(t, idx.Contains(100), "the untouched reference must not be retired")
}

func TestArgmaxResidualTieBreaksByLowestIndex(t *testing.T) {
	idx, best := argmaxResidual([]int{2, 5, 5, 1})
	assert.Equal(t, 1, idx)
	assert.Equal(t, 5, best)
}
