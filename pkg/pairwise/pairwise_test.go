package pairwise

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoslicki/smash-alternate-implementations/pkg/hashindex"
	"github.com/dkoslicki/smash-alternate-implementations/pkg/sketch"
)

type tileLine struct {
	i, j       int
	jaccard    float64
	cIJ, cJI   float64
}

func parseLines(t *testing.T, raw string) []tileLine {
	t.Helper()
	var lines []tileLine
	for _, ln := range strings.Split(strings.TrimSpace(raw), "\n") {
		if ln == "" {
			continue
		}
		fields := strings.Split(ln, ",")
		require.Len(t, fields, 9, "line: %q", ln)
		i, err := strconv.Atoi(fields[0])
		require.NoError(t, err)
		j, err := strconv.Atoi(fields[3])
		require.NoError(t, err)
		jaccard, err := strconv.ParseFloat(fields[6], 64)
		require.NoError(t, err)
		cIJ, err := strconv.ParseFloat(fields[7], 64)
		require.NoError(t, err)
		cJI, err := strconv.ParseFloat(fields[8], 64)
		require.NoError(t, err)
		lines = append(lines, tileLine{i: i, j: j, jaccard: jaccard, cIJ: cIJ, cJI: cJI})
	}
	return lines
}

func findLine(lines []tileLine, i, j int) (tileLine, bool) {
	for _, l := range lines {
		if l.i == i && l.j == j {
			return l, true
		}
	}
	return tileLine{}, false
}

// TestRunMatchesS4 pins the worked example: Q=R={A,B,C}, c_min=0.5, P=2, T=2.
// (A,B) and (B,A) are emitted at containment ~0.667; the diagonal is emitted
// at containment 1.0; (A,C) and (B,C) are skipped for zero overlap.
func TestRunMatchesS4(t *testing.T) {
	refs := []sketch.Sketch{
		{Name: "A", MD5: "ma", Hashes: []sketch.Hash{1, 2, 3}},
		{Name: "B", MD5: "mb", Hashes: []sketch.Hash{2, 3, 4}},
		{Name: "C", MD5: "mc", Hashes: []sketch.Hash{5}},
	}
	idx := hashindex.NewDefault()
	for refID, s := range refs {
		for _, h := range s.Hashes {
			idx.Add(h, refID)
		}
	}

	dir := t.TempDir()
	engine := New(2, 2, 0.5, dir, nil)
	require.NoError(t, engine.Run(context.Background(), refs, refs, idx))

	assert.Equal(t, 2, engine.PassesCompleted())
	assert.Equal(t, 5, engine.PairsEmitted()) // (A,A) (A,B) (B,A) (B,B) (C,C)

	outPath := dir + "/concat.txt"
	require.NoError(t, engine.Concat(outPath))
	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)

	lines := parseLines(t, string(raw))

	ab, ok := findLine(lines, 0, 1)
	require.True(t, ok, "expected (A,B) to be emitted")
	assert.InDelta(t, 2.0/3.0, ab.cIJ, 1e-9)

	ba, ok := findLine(lines, 1, 0)
	require.True(t, ok, "expected (B,A) to be emitted")
	assert.InDelta(t, 2.0/3.0, ba.cIJ, 1e-9)

	aa, ok := findLine(lines, 0, 0)
	require.True(t, ok)
	assert.InDelta(t, 1.0, aa.cIJ, 1e-9)
	assert.InDelta(t, 1.0, aa.jaccard, 1e-9)

	cc, ok := findLine(lines, 2, 2)
	require.True(t, ok)
	assert.InDelta(t, 1.0, cc.cIJ, 1e-9)

	_, ok = findLine(lines, 0, 2)
	assert.False(t, ok, "(A,C) has zero overlap and must be skipped")
	_, ok = findLine(lines, 1, 2)
	assert.False(t, ok, "(B,C) has zero overlap and must be skipped")
}

func TestNewRejectsInvalidPassesAtRunTime(t *testing.T) {
	engine := New(1, 1, 0, t.TempDir(), nil)
	engine.Passes = 0
	err := engine.Run(context.Background(), nil, nil, hashindex.NewDefault())
	assert.ErrorIs(t, err, ErrInvalidPasses)
}

func TestNewClampsThreadsAndPasses(t *testing.T) {
	e := New(0, 0, 0, "", nil)
	assert.Equal(t, 1, e.Threads)
	assert.Equal(t, 1, e.Passes)
}

func TestRunOnEmptyInputsIsNoop(t *testing.T) {
	engine := New(1, 1, 0, t.TempDir(), nil)
	assert.NoError(t, engine.Run(context.Background(), nil, nil, hashindex.NewDefault()))
	assert.NoError(t, engine.Run(context.Background(), []sketch.Sketch{{Hashes: []sketch.Hash{1}}}, nil, hashindex.NewDefault()))
	assert.Equal(t, 0, engine.PassesCompleted())
	assert.Equal(t, 0, engine.PairsEmitted())
}

func TestConcatSkipsMissingThreadFiles(t *testing.T) {
	dir := t.TempDir()
	engine := New(8, 1, 0.0, dir, nil) // more threads than rows: some threads write nothing
	refs := []sketch.Sketch{{Name: "solo", Hashes: []sketch.Hash{1}}}
	idx := hashindex.NewDefault()
	idx.Add(1, 0)
	require.NoError(t, engine.Run(context.Background(), refs, refs, idx))

	out := dir + "/out.txt"
	require.NoError(t, engine.Concat(out))
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "0,solo")
}
