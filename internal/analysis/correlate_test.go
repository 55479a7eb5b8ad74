package analysis

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{"": Pearson, "Pearson": Pearson, " spearman ": Spearman, "KENDALL": Kendall} {
		got, err := ParseMethod(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMethod("cosine")
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestCorrelatePerfectLinear(t *testing.T) {
	a := make([]float64, 10)
	b := make([]float64, 10)
	for i := range a {
		a[i] = float64(i + 1)
		b[i] = 2*a[i] + 1
	}
	ds := build(t, col("a", floats(a...)...), col("b", floats(b...)...))
	m, err := Correlate(context.Background(), ds, Classify(ds), Pearson)
	require.NoError(t, err)
	require.NotNil(t, m)
	r, ok := m.At("a", "b")
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-9)
	assert.Equal(t, 10, m.Pairs[0][1])
}

func TestCorrelateSymmetricWithUnitDiagonal(t *testing.T) {
	ds := sales(t)
	for _, method := range []Method{Pearson, Spearman, Kendall} {
		m, err := Correlate(context.Background(), ds, Classify(ds), method)
		require.NoError(t, err)
		require.Equal(t, []string{"revenue", "profit", "quantity"}, m.Columns)
		for i := range m.Columns {
			assert.Equal(t, 1.0, m.Values[i][i], "%s diagonal", method)
			for j := range m.Columns {
				assert.Equal(t, m.Values[i][j], m.Values[j][i])
				assert.LessOrEqual(t, math.Abs(m.Values[i][j]), 1.0)
			}
		}
	}
}

func TestCorrelateRankMethods(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	cube := make([]float64, len(x))
	rev := make([]float64, len(x))
	for i, v := range x {
		cube[i] = v * v * v
		rev[i] = -v
	}
	ds := build(t, col("x", floats(x...)...), col("cube", floats(cube...)...), col("rev", floats(rev...)...))
	cls := Classify(ds)

	sp, err := Correlate(context.Background(), ds, cls, Spearman)
	require.NoError(t, err)
	r, _ := sp.At("x", "cube")
	assert.InDelta(t, 1.0, r, 1e-12)

	pe, err := Correlate(context.Background(), ds, cls, Pearson)
	require.NoError(t, err)
	r, _ = pe.At("x", "cube")
	assert.Less(t, r, 1.0)

	kd, err := Correlate(context.Background(), ds, cls, Kendall)
	require.NoError(t, err)
	r, _ = kd.At("x", "rev")
	assert.InDelta(t, -1.0, r, 1e-12)
}

func TestKendallTauBWithTies(t *testing.T) {
	got := kendallTauB([]float64{1, 2, 2, 3}, []float64{1, 2, 3, 4})
	assert.InDelta(t, 0.9128709291752769, got, 1e-12)
}

func TestRanksAverageTies(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, ranks([]float64{10, 20, 20, 30}))
	assert.Equal(t, []float64{3, 1, 2}, ranks([]float64{9, 1, 5}))
}

func TestCorrelatePairwiseDeletion(t *testing.T) {
	a := []any{1.0, 2.0, 3.0, 4.0, 5.0, 6.0}
	b := []any{2.0, 1.0, 4.0, 3.0, 6.0, 5.0}
	full := build(t, col("a", a...), col("b", b...))
	withGaps := build(t, col("a", a...), col("b", b...), col("c", 1.0, nil, 3.0, nil, 2.0, 7.0))

	m1, err := Correlate(context.Background(), full, Classify(full), Pearson)
	require.NoError(t, err)
	m2, err := Correlate(context.Background(), withGaps, Classify(withGaps), Pearson)
	require.NoError(t, err)

	r1, _ := m1.At("a", "b")
	r2, _ := m2.At("a", "b")
	assert.Equal(t, r1, r2)
	assert.Equal(t, 6, m2.Pairs[0][1])
	assert.Equal(t, 4, m2.Pairs[0][2])
	assert.Equal(t, 4, m2.Pairs[2][2])
}

func TestCorrelateDegenerateCells(t *testing.T) {
	ds := build(t,
		col("x", 1, 2, 3, 4),
		col("flat", 5, 5, 5, 5),
		col("sparse", 1, nil, nil, nil),
	)
	m, err := Correlate(context.Background(), ds, Classify(ds), Pearson)
	require.NoError(t, err)
	r, _ := m.At("x", "flat")
	assert.True(t, math.IsNaN(r))
	r, _ = m.At("flat", "flat")
	assert.True(t, math.IsNaN(r))
	r, _ = m.At("x", "sparse")
	assert.True(t, math.IsNaN(r))
	r, _ = m.At("x", "x")
	assert.Equal(t, 1.0, r)

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"values":[[1,null,null],[null,null,null],[null,null,null]]`)
}

func TestCorrelateInsufficientColumns(t *testing.T) {
	ds := build(t, col("x", 1, 2, 3), col("y", "a", "b", "c"))
	m, err := Correlate(context.Background(), ds, Classify(ds), Pearson)
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = Correlate(context.Background(), ds, Classify(ds), Method("bogus"))
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestCorrelateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ds := sales(t)
	_, err := Correlate(ctx, ds, Classify(ds), Pearson)
	require.ErrorIs(t, err, context.Canceled)
}
