package analysis

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KaramelBytes/statloom/internal/dataset"
)

func TestAssembleFullProfile(t *testing.T) {
	ds := sales(t)
	opts := DefaultOptions()
	opts.Method = Spearman
	opts.Metrics = []MetricSpec{{Name: "Revenue", Column: "revenue", Aggregation: "sum"}}
	opts.Comparison = &ComparisonRequest{GroupColumn: "region", TargetColumn: "profit", GroupA: "north", GroupB: "south"}
	opts.Trend = &TrendRequest{X: "quantity", Y: "profit"}

	p, err := NewAssembler(nil, opts).Assemble(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, "test", p.Name)
	assert.Same(t, ds, p.Dataset)
	assert.Equal(t, []string{"revenue", "profit", "quantity"}, p.Classification.Numeric)
	assert.Len(t, p.Aggregates.Aggregates, 3)
	require.NotNil(t, p.Correlation)
	assert.Equal(t, Spearman, p.Correlation.Method)
	require.NotNil(t, p.Comparison)
	assert.Nil(t, p.ComparisonFailure)
	assert.True(t, p.Comparison.Significant)
	require.NotNil(t, p.Trend)
	assert.Equal(t, 8, p.Trend.N)
	assert.Empty(t, p.Notes)
	require.Len(t, p.Metrics, 1)
	assert.Equal(t, 645.0, p.Metrics[0].Value)
}

func TestAssembleRoundTripClassification(t *testing.T) {
	ds := sales(t)
	p, err := NewAssembler(nil, DefaultOptions()).Assemble(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, p.Classification, Classify(p.Dataset))
}

func TestAssembleRecordsComparisonFailure(t *testing.T) {
	ds := sales(t)
	opts := DefaultOptions()
	opts.Comparison = &ComparisonRequest{GroupColumn: "region", TargetColumn: "profit", GroupA: "north", GroupB: "west"}
	opts.Trend = &TrendRequest{X: "note", Y: "profit"}

	core, logs := observer.New(zap.WarnLevel)
	p, err := NewAssembler(zap.New(core), opts).Assemble(context.Background(), ds)
	require.NoError(t, err)
	assert.Nil(t, p.Comparison)
	require.NotNil(t, p.ComparisonFailure)
	assert.Equal(t, FailureUnknownLabel, p.ComparisonFailure.Kind)
	assert.Nil(t, p.Trend)
	require.Len(t, p.Notes, 2)
	assert.Contains(t, p.Notes[0], "Group comparison skipped")
	assert.Contains(t, p.Notes[1], "Trend fit skipped")
	assert.Equal(t, 1, logs.FilterMessage("comparison failed").Len())

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"comparison_failure":{"kind":"unknown_label"`)
	assert.NotContains(t, string(b), "Dataset")
}

func TestAssembleDegradedOutcomes(t *testing.T) {
	ds := build(t, col("city", "a", "b", "c"), col("n", 1, 2, 3))
	p, err := NewAssembler(nil, DefaultOptions()).Assemble(context.Background(), ds)
	require.NoError(t, err)
	assert.Nil(t, p.Correlation)
	assert.False(t, p.Aggregates.NoNumericColumns)
	assert.Equal(t, []string{"Fewer than two numeric columns; correlation matrix skipped."}, p.Notes)

	ds = build(t, col("city", "a", "b", "c"))
	p, err = NewAssembler(nil, DefaultOptions()).Assemble(context.Background(), ds)
	require.NoError(t, err)
	assert.True(t, p.Aggregates.NoNumericColumns)
	assert.Len(t, p.Notes, 2)
}

func TestAssembleErrors(t *testing.T) {
	a := NewAssembler(nil, DefaultOptions())
	_, err := a.Assemble(context.Background(), nil)
	require.ErrorIs(t, err, ErrEmptyDataset)

	empty, err := dataset.New("empty")
	require.NoError(t, err)
	_, err = a.Assemble(context.Background(), empty)
	require.ErrorIs(t, err, ErrEmptyDataset)

	noRows := build(t, col("x"))
	_, err = a.Assemble(context.Background(), noRows)
	require.ErrorIs(t, err, ErrEmptyDataset)

	_, err = NewAssembler(nil, Options{Method: "cosine"}).Assemble(context.Background(), sales(t))
	require.ErrorIs(t, err, ErrUnknownMethod)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Assemble(ctx, sales(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestAssembleConcurrentCallsShareDataset(t *testing.T) {
	ds := sales(t)
	a := NewAssembler(nil, Options{Method: Kendall, Concurrency: 2})
	var wg sync.WaitGroup
	results := make([]*Profile, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := a.Assemble(context.Background(), ds)
			if err == nil {
				results[i] = p
			}
		}()
	}
	wg.Wait()
	for _, p := range results {
		require.NotNil(t, p)
		assert.Equal(t, results[0].Correlation.Values, p.Correlation.Values)
	}
}
