package analysis

import (
	"encoding/json"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/statloom/internal/dataset"
)

// DefaultTopN is the number of numeric columns summarised when topN <= 0.
const DefaultTopN = 3

// ColumnAggregate is the sum and mean of one numeric column.
type ColumnAggregate struct {
	Column string
	Sum    float64
	// Mean is NaN when the column has no values.
	Mean  float64
	Count int
}

func (a ColumnAggregate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column string   `json:"column"`
		Sum    *float64 `json:"sum"`
		Mean   *float64 `json:"mean"`
		Count  int      `json:"count"`
	}{a.Column, nullable(a.Sum), nullable(a.Mean), a.Count})
}

// AggregateProfile holds dataset-level counts and the leading numeric sums.
type AggregateProfile struct {
	RowCount         int               `json:"row_count"`
	ColumnCount      int               `json:"column_count"`
	MissingRatio     float64           `json:"missing_ratio"`
	NoNumericColumns bool              `json:"no_numeric_columns"`
	TopN             int               `json:"top_n"`
	Aggregates       []ColumnAggregate `json:"aggregates"`
}

// Aggregate computes counts, the missing ratio and sum/mean for the first
// topN numeric columns.
func Aggregate(ds *dataset.Dataset, cls Classification, topN int) AggregateProfile {
	if topN <= 0 {
		topN = DefaultTopN
	}
	p := AggregateProfile{TopN: topN, Aggregates: []ColumnAggregate{}}
	if ds == nil {
		p.NoNumericColumns = len(cls.Numeric) == 0
		return p
	}
	p.RowCount = ds.NumRows()
	p.ColumnCount = ds.NumCols()
	p.MissingRatio = missingRatio(ds)

	if len(cls.Numeric) == 0 {
		p.NoNumericColumns = true
		return p
	}
	for _, name := range cls.Numeric {
		if len(p.Aggregates) == topN {
			break
		}
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		p.Aggregates = append(p.Aggregates, aggregateColumn(col))
	}
	return p
}

func missingRatio(ds *dataset.Dataset) float64 {
	rows, cols := ds.NumRows(), ds.NumCols()
	if rows == 0 || cols == 0 {
		return 0
	}
	total := 0.0
	for i := 0; i < cols; i++ {
		total += float64(ds.ColumnAt(i).MissingCount()) / float64(rows)
	}
	return total / float64(cols)
}

func aggregateColumn(col *dataset.Column) ColumnAggregate {
	vals := present(col)
	agg := ColumnAggregate{Column: col.Name(), Count: len(vals), Mean: math.NaN()}
	if len(vals) == 0 {
		return agg
	}
	// Both only fail on empty input.
	agg.Sum, _ = stats.Sum(vals)
	agg.Mean, _ = stats.Mean(vals)
	return agg
}

// present returns the non-missing numeric values of col.
func present(col *dataset.Column) []float64 {
	out := make([]float64, 0, col.Len()-col.MissingCount())
	for i := 0; i < col.Len(); i++ {
		if f, ok := col.At(i).Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

func nullable(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
