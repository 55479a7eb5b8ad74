package analysis

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/KaramelBytes/statloom/internal/dataset"
)

// DefaultAlpha is the significance level used when a request leaves Alpha unset.
const DefaultAlpha = 0.05

// ComparisonRequest selects two labels of a categorical column and a
// numeric target to compare between them.
type ComparisonRequest struct {
	GroupColumn  string  `json:"group_column"`
	TargetColumn string  `json:"target_column"`
	GroupA       string  `json:"group_a"`
	GroupB       string  `json:"group_b"`
	Alpha        float64 `json:"alpha,omitempty"`
}

// GroupSample summarises one side of a comparison.
type GroupSample struct {
	Label    string  `json:"label"`
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
}

// GroupComparison is the result of Welch's unequal-variance t-test.
type GroupComparison struct {
	GroupColumn      string
	TargetColumn     string
	GroupA           GroupSample
	GroupB           GroupSample
	MeanDifference   float64
	TStatistic       float64
	DegreesOfFreedom float64
	PValue           float64
	Alpha            float64
	Significant      bool
	// CohenD uses the pooled standard deviation; NaN when it is zero.
	CohenD  float64
	Summary string
}

func (c *GroupComparison) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		GroupColumn      string      `json:"group_column"`
		TargetColumn     string      `json:"target_column"`
		GroupA           GroupSample `json:"group_a"`
		GroupB           GroupSample `json:"group_b"`
		MeanDifference   float64     `json:"mean_difference"`
		TStatistic       float64     `json:"t_statistic"`
		DegreesOfFreedom float64     `json:"degrees_of_freedom"`
		PValue           float64     `json:"p_value"`
		Alpha            float64     `json:"alpha"`
		Significant      bool        `json:"significant"`
		CohenD           *float64    `json:"cohen_d"`
		Summary          string      `json:"summary"`
	}{
		c.GroupColumn, c.TargetColumn, c.GroupA, c.GroupB, c.MeanDifference,
		c.TStatistic, c.DegreesOfFreedom, c.PValue, c.Alpha, c.Significant,
		nullable(c.CohenD), c.Summary,
	})
}

// Labels returns the distinct non-missing labels of column in order of
// first appearance.
func Labels(ds *dataset.Dataset, column string) ([]string, error) {
	if ds == nil {
		return nil, ErrEmptyDataset
	}
	col, ok := ds.Column(column)
	if !ok {
		return nil, &ComparisonError{Kind: FailureUnknownColumn, Column: column}
	}
	return distinctLabels(col), nil
}

func distinctLabels(col *dataset.Column) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := 0; i < col.Len(); i++ {
		v := col.At(i)
		if v.IsMissing() {
			continue
		}
		s := v.String()
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Compare runs Welch's t-test of TargetColumn between rows labelled GroupA
// and GroupB in GroupColumn. Failures are *ComparisonError values.
func Compare(ds *dataset.Dataset, req ComparisonRequest) (*GroupComparison, error) {
	return CompareWith(ds, Classify(ds), req)
}

// CompareWith is Compare against a precomputed classification.
func CompareWith(ds *dataset.Dataset, cls Classification, req ComparisonRequest) (*GroupComparison, error) {
	if ds == nil {
		return nil, ErrEmptyDataset
	}
	groupCol, ok := ds.Column(req.GroupColumn)
	if !ok {
		return nil, &ComparisonError{Kind: FailureUnknownColumn, Column: req.GroupColumn}
	}
	targetCol, ok := ds.Column(req.TargetColumn)
	if !ok {
		return nil, &ComparisonError{Kind: FailureUnknownColumn, Column: req.TargetColumn}
	}
	if !cls.IsNumeric(req.TargetColumn) {
		return nil, &ComparisonError{Kind: FailureNotNumeric, Column: req.TargetColumn}
	}
	if !cls.IsCategorical(req.GroupColumn) {
		return nil, &ComparisonError{Kind: FailureNotCategorical, Column: req.GroupColumn}
	}

	labels := distinctLabels(groupCol)
	if len(labels) < 2 {
		return nil, &ComparisonError{Kind: FailureInsufficientGroups, Column: req.GroupColumn}
	}
	for _, l := range []string{req.GroupA, req.GroupB} {
		if !contains(labels, l) {
			return nil, &ComparisonError{Kind: FailureUnknownLabel, Column: req.GroupColumn, Label: l}
		}
	}

	a := sampleFor(groupCol, targetCol, req.GroupA)
	b := sampleFor(groupCol, targetCol, req.GroupB)
	for _, s := range []struct {
		label string
		vals  []float64
	}{{req.GroupA, a}, {req.GroupB, b}} {
		if len(s.vals) <= 1 {
			return nil, &ComparisonError{Kind: FailureInsufficientSampleSize, Column: req.GroupColumn, Label: s.label, Size: len(s.vals)}
		}
	}

	alpha := req.Alpha
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}
	res, err := welch(a, b)
	if err != nil {
		return nil, &ComparisonError{Kind: FailureDegenerateVariance, Column: req.TargetColumn}
	}
	res.GroupColumn = req.GroupColumn
	res.TargetColumn = req.TargetColumn
	res.GroupA.Label = req.GroupA
	res.GroupB.Label = req.GroupB
	res.Alpha = alpha
	res.Significant = res.PValue < alpha
	res.Summary = summarize(res)
	return res, nil
}

func sampleFor(groupCol, targetCol *dataset.Column, label string) []float64 {
	var out []float64
	for i := 0; i < groupCol.Len(); i++ {
		g := groupCol.At(i)
		if g.IsMissing() || g.String() != label {
			continue
		}
		if f, ok := targetCol.At(i).Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// welch computes the t statistic, Welch-Satterthwaite degrees of freedom
// and two-tailed p-value. Both samples need at least two values.
func welch(a, b []float64) (*GroupComparison, error) {
	n1, n2 := float64(len(a)), float64(len(b))
	m1, err := stats.Mean(a)
	if err != nil {
		return nil, err
	}
	m2, err := stats.Mean(b)
	if err != nil {
		return nil, err
	}
	v1, err := stats.SampleVariance(a)
	if err != nil {
		return nil, err
	}
	v2, err := stats.SampleVariance(b)
	if err != nil {
		return nil, err
	}
	if v1 == 0 && v2 == 0 {
		return nil, ErrDegenerateVariance
	}

	se1, se2 := v1/n1, v2/n2
	t := (m1 - m2) / math.Sqrt(se1+se2)
	df := (se1 + se2) * (se1 + se2) / (se1*se1/(n1-1) + se2*se2/(n2-1))
	p := 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(math.Abs(t))
	if p > 1 {
		p = 1
	}

	d := math.NaN()
	if pooled := math.Sqrt(((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2)); pooled > 0 {
		d = (m1 - m2) / pooled
	}
	return &GroupComparison{
		GroupA:           GroupSample{N: len(a), Mean: m1, Variance: v1},
		GroupB:           GroupSample{N: len(b), Mean: m2, Variance: v2},
		MeanDifference:   m1 - m2,
		TStatistic:       t,
		DegreesOfFreedom: df,
		PValue:           p,
		CohenD:           d,
	}, nil
}

func summarize(c *GroupComparison) string {
	verdict := fmt.Sprintf("statistically significant (p < %g)", c.Alpha)
	if !c.Significant {
		verdict = fmt.Sprintf("not statistically significant (p ≥ %g)", c.Alpha)
	}
	return fmt.Sprintf("On average, %s (%.2f) vs %s (%.2f), the difference is %s.",
		c.GroupA.Label, c.GroupA.Mean, c.GroupB.Label, c.GroupB.Mean, verdict)
}
