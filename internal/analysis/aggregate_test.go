package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingRatio(t *testing.T) {
	// 2/5, 1/5, 2/5, 0/5 missing
	ds := build(t,
		col("a", nil, nil, 1, 2, 3),
		col("b", 1, nil, 3, 4, 5),
		col("c", "x", nil, "y", nil, "z"),
		col("d", 1, 2, 3, 4, 5),
	)
	p := Aggregate(ds, Classify(ds), 3)
	assert.InDelta(t, 0.25, p.MissingRatio, 1e-12)
	assert.Equal(t, 5, p.RowCount)
	assert.Equal(t, 4, p.ColumnCount)
}

func TestAggregateTopN(t *testing.T) {
	ds := build(t,
		col("n1", 1, 2),
		col("label", "a", "b"),
		col("n2", 3, nil),
		col("n3", 5, 6),
		col("n4", 7, 8),
		col("n5", 9, 10),
	)
	p := Aggregate(ds, Classify(ds), 3)
	require.Len(t, p.Aggregates, 3)
	assert.Equal(t, "n1", p.Aggregates[0].Column)
	assert.Equal(t, "n2", p.Aggregates[1].Column)
	assert.Equal(t, "n3", p.Aggregates[2].Column)
	assert.Equal(t, 3.0, p.Aggregates[0].Sum)
	assert.Equal(t, 1.5, p.Aggregates[0].Mean)
	assert.Equal(t, 3.0, p.Aggregates[1].Sum)
	assert.Equal(t, 1, p.Aggregates[1].Count)

	p = Aggregate(ds, Classify(ds), 0)
	assert.Equal(t, DefaultTopN, p.TopN)
	assert.Len(t, p.Aggregates, 3)

	p = Aggregate(ds, Classify(ds), 10)
	assert.Len(t, p.Aggregates, 5)
}

func TestAggregateSingleNumericColumn(t *testing.T) {
	ds := build(t, col("x", 1, 2, 3), col("y", "a", "b", "c"))
	p := Aggregate(ds, Classify(ds), 3)
	require.Len(t, p.Aggregates, 1)
	assert.False(t, p.NoNumericColumns)
	assert.Equal(t, 6.0, p.Aggregates[0].Sum)
}

func TestAggregateNoNumericColumns(t *testing.T) {
	ds := build(t, col("y", "a", "b", "c"))
	p := Aggregate(ds, Classify(ds), 3)
	assert.True(t, p.NoNumericColumns)
	assert.NotNil(t, p.Aggregates)
	assert.Empty(t, p.Aggregates)
}

func TestColumnAggregateJSONNullMean(t *testing.T) {
	agg := ColumnAggregate{Column: "x", Mean: math.NaN()}
	b, err := json.Marshal(agg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"column":"x","sum":0,"mean":null,"count":0}`, string(b))
}

func TestColumnAggregateJSONOverflowingSum(t *testing.T) {
	ds := build(t, col("x", 1e308, 1e308))
	agg := Aggregate(ds, Classify(ds), 0)
	require.Len(t, agg.Aggregates, 1)
	assert.True(t, math.IsInf(agg.Aggregates[0].Sum, 1))
	b, err := json.Marshal(agg.Aggregates[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"column":"x","sum":null,"mean":null,"count":2}`, string(b))
}
