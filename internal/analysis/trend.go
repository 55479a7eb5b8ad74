package analysis

import (
	"encoding/json"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/statloom/internal/dataset"
)

// TrendRequest names the two numeric columns of a least-squares fit.
type TrendRequest struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// TrendFit is y = Intercept + Slope*x over the complete rows.
type TrendFit struct {
	X         string
	Y         string
	N         int
	Slope     float64
	Intercept float64
	// RSquared is NaN when y is constant.
	RSquared float64
}

func (f *TrendFit) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		X         string   `json:"x"`
		Y         string   `json:"y"`
		N         int      `json:"n"`
		Slope     float64  `json:"slope"`
		Intercept float64  `json:"intercept"`
		RSquared  *float64 `json:"r_squared"`
	}{f.X, f.Y, f.N, f.Slope, f.Intercept, nullable(f.RSquared)})
}

// FitTrend fits an ordinary least-squares line of y on x.
func FitTrend(ds *dataset.Dataset, cls Classification, x, y string) (*TrendFit, error) {
	if ds == nil {
		return nil, ErrEmptyDataset
	}
	var cols [2][]float64
	for i, name := range []string{x, y} {
		c, ok := ds.Column(name)
		if !ok {
			return nil, &ComparisonError{Kind: FailureUnknownColumn, Column: name}
		}
		if !cls.IsNumeric(name) {
			return nil, &ComparisonError{Kind: FailureNotNumeric, Column: name}
		}
		cols[i] = c.Floats()
	}
	xs, ys := completePairs(cols[0], cols[1])
	if len(xs) < 2 {
		return nil, &ComparisonError{Kind: FailureInsufficientSampleSize, Size: len(xs)}
	}
	if constant(xs) {
		return nil, &ComparisonError{Kind: FailureDegenerateVariance, Column: x}
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return &TrendFit{
		X:         x,
		Y:         y,
		N:         len(xs),
		Slope:     beta,
		Intercept: alpha,
		RSquared:  stat.RSquared(xs, ys, nil, alpha, beta),
	}, nil
}
