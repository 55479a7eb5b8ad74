package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/statloom/internal/dataset"
)

// Method selects the correlation coefficient.
type Method string

const (
	Pearson  Method = "pearson"
	Spearman Method = "spearman"
	Kendall  Method = "kendall"
)

// ParseMethod accepts pearson, spearman or kendall in any case.
// An empty string means pearson.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Pearson, nil
	case Pearson, Spearman, Kendall:
		return m, nil
	default:
		return "", fmt.Errorf("%q: %w (want pearson, spearman or kendall)", s, ErrUnknownMethod)
	}
}

// CorrelationMatrix is a symmetric matrix over the numeric columns.
// Cells without enough data are NaN.
type CorrelationMatrix struct {
	Method  Method
	Columns []string
	Values  [][]float64
	// Pairs[i][j] is the number of complete rows behind Values[i][j].
	Pairs [][]int
}

// At returns the coefficient for two column names.
func (m *CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := indexOf(m.Columns, a), indexOf(m.Columns, b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return m.Values[i][j], true
}

func (m *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	vals := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		vals[i] = make([]*float64, len(row))
		for j, v := range row {
			vals[i][j] = nullable(v)
		}
	}
	return json.Marshal(struct {
		Method  Method       `json:"method"`
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
		Pairs   [][]int      `json:"pairs"`
	}{m.Method, m.Columns, vals, m.Pairs})
}

// Correlate computes pairwise correlations among the numeric columns using
// pairwise-complete rows. With fewer than two numeric columns it returns
// nil and no error.
func Correlate(ctx context.Context, ds *dataset.Dataset, cls Classification, method Method) (*CorrelationMatrix, error) {
	return correlate(ctx, ds, cls, method, 0)
}

func correlate(ctx context.Context, ds *dataset.Dataset, cls Classification, method Method, limit int) (*CorrelationMatrix, error) {
	method, err := ParseMethod(string(method))
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, nil
	}
	var (
		names []string
		cols  [][]float64
	)
	for _, name := range cls.Numeric {
		if c, ok := ds.Column(name); ok {
			names = append(names, name)
			cols = append(cols, c.Floats())
		}
	}
	k := len(names)
	if k < 2 {
		return nil, nil
	}

	m := &CorrelationMatrix{
		Method:  method,
		Columns: names,
		Values:  make([][]float64, k),
		Pairs:   make([][]int, k),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, k)
		m.Pairs[i] = make([]int, k)
	}

	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				xs, ys := completePairs(cols[i], cols[j])
				var r float64
				if i == j {
					r = selfCorrelation(xs)
				} else {
					r = coefficient(method, xs, ys)
				}
				m.Values[i][j], m.Values[j][i] = r, r
				m.Pairs[i][j], m.Pairs[j][i] = len(xs), len(xs)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

func completePairs(x, y []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

func coefficient(method Method, xs, ys []float64) float64 {
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return math.NaN()
	}
	var r float64
	switch method {
	case Spearman:
		r = stat.Correlation(ranks(xs), ranks(ys), nil)
	case Kendall:
		r = kendallTauB(xs, ys)
	default:
		r = stat.Correlation(xs, ys, nil)
	}
	if math.IsNaN(r) {
		return r
	}
	return math.Max(-1, math.Min(1, r))
}

func selfCorrelation(xs []float64) float64 {
	if len(xs) < 2 || constant(xs) {
		return math.NaN()
	}
	return 1
}

func constant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}

// ranks assigns 1-based ranks, giving tied values the mean of their ranks.
func ranks(v []float64) []float64 {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })
	out := make([]float64, len(v))
	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && v[idx[end]] == v[idx[start]] {
			end++
		}
		// positions start..end-1 hold ranks start+1..end
		avg := float64(start+1+end) / 2
		for p := start; p < end; p++ {
			out[idx[p]] = avg
		}
		start = end
	}
	return out
}

// kendallTauB is Kendall's tau-b, which corrects for ties in either variable.
func kendallTauB(xs, ys []float64) float64 {
	var concordant, discordant, tiesX, tiesY float64
	n := len(xs)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			dx := sign(xs[i] - xs[j])
			dy := sign(ys[i] - ys[j])
			switch {
			case dx == 0 && dy == 0:
			case dx == 0:
				tiesX++
			case dy == 0:
				tiesY++
			case dx == dy:
				concordant++
			default:
				discordant++
			}
		}
	}
	denom := math.Sqrt((concordant + discordant + tiesX) * (concordant + discordant + tiesY))
	if denom == 0 {
		return math.NaN()
	}
	return (concordant - discordant) / denom
}

func sign(f float64) int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}

func indexOf(list []string, s string) int {
	for i, x := range list {
		if x == s {
			return i
		}
	}
	return -1
}
