package analysis

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/statloom/internal/dataset"
)

// MetricSpec names a headline figure computed from one column.
type MetricSpec struct {
	Name        string  `json:"name"`
	Column      string  `json:"column"`
	Aggregation string  `json:"aggregation"` // sum|mean
	Scale       float64 `json:"scale,omitempty"`
	Unit        string  `json:"unit,omitempty"`
}

// MetricValue is a MetricSpec evaluated against a dataset.
type MetricValue struct {
	Name        string
	Column      string
	Aggregation string
	Scale       float64
	Unit        string
	Value       float64
	Available   bool
}

func (m MetricValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name        string   `json:"name"`
		Column      string   `json:"column"`
		Aggregation string   `json:"aggregation"`
		Scale       float64  `json:"scale"`
		Unit        string   `json:"unit,omitempty"`
		Value       *float64 `json:"value"`
		Available   bool     `json:"available"`
	}{m.Name, m.Column, m.Aggregation, m.Scale, m.Unit, nullable(m.Value), m.Available})
}

// ExtractMetrics evaluates each spec. Absent or non-numeric columns and
// unknown aggregations produce Available=false rather than an error.
func ExtractMetrics(ds *dataset.Dataset, cls Classification, specs []MetricSpec) []MetricValue {
	out := make([]MetricValue, 0, len(specs))
	for _, s := range specs {
		mv := MetricValue{
			Name:        s.Name,
			Column:      s.Column,
			Aggregation: strings.ToLower(strings.TrimSpace(s.Aggregation)),
			Scale:       s.Scale,
			Unit:        s.Unit,
			Value:       math.NaN(),
		}
		if mv.Name == "" {
			mv.Name = s.Column
		}
		if mv.Aggregation == "" {
			mv.Aggregation = "sum"
		}
		if mv.Scale == 0 {
			mv.Scale = 1
		}
		out = append(out, evalMetric(ds, cls, mv))
	}
	return out
}

func evalMetric(ds *dataset.Dataset, cls Classification, mv MetricValue) MetricValue {
	if ds == nil || !cls.IsNumeric(mv.Column) {
		return mv
	}
	col, ok := ds.Column(mv.Column)
	if !ok {
		return mv
	}
	vals := present(col)
	var (
		v   float64
		err error
	)
	switch mv.Aggregation {
	case "sum":
		if len(vals) == 0 {
			v = 0
		} else {
			v, err = stats.Sum(vals)
		}
	case "mean":
		v, err = stats.Mean(vals)
	default:
		return mv
	}
	if err != nil {
		return mv
	}
	mv.Value = v * mv.Scale
	mv.Available = true
	return mv
}
