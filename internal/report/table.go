package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/KaramelBytes/statloom/internal/analysis"
)

// Tables writes the profile as aligned text tables.
func Tables(w io.Writer, p *analysis.Profile) {
	fmt.Fprintf(w, "%s: %d rows, %d columns, %.1f%% missing\n\n",
		p.Name, p.Aggregates.RowCount, p.Aggregates.ColumnCount, p.Aggregates.MissingRatio*100)

	if len(p.Aggregates.Aggregates) > 0 {
		t := tablewriter.NewWriter(w)
		t.SetHeader([]string{"Column", "Sum", "Mean", "N"})
		t.SetAlignment(tablewriter.ALIGN_RIGHT)
		for _, a := range p.Aggregates.Aggregates {
			t.Append([]string{a.Column, num(a.Sum), num(a.Mean), fmt.Sprint(a.Count)})
		}
		t.Render()
		fmt.Fprintln(w)
	}
	if len(p.Metrics) > 0 {
		t := tablewriter.NewWriter(w)
		t.SetHeader([]string{"Metric", "Value", "Column", "Aggregation"})
		for _, m := range p.Metrics {
			v := "n/a"
			if m.Available {
				v = num(m.Value) + m.Unit
			}
			t.Append([]string{m.Name, v, m.Column, m.Aggregation})
		}
		t.Render()
		fmt.Fprintln(w)
	}
	if p.Correlation != nil {
		CorrelationTable(w, p.Correlation)
		fmt.Fprintln(w)
	}
	if p.Comparison != nil {
		ComparisonTable(w, p.Comparison)
		fmt.Fprintln(w)
	}
	if p.Trend != nil {
		t := tablewriter.NewWriter(w)
		t.SetHeader([]string{"X", "Y", "Slope", "Intercept", "R²", "N"})
		tr := p.Trend
		t.Append([]string{tr.X, tr.Y, num(tr.Slope), num(tr.Intercept), num(tr.RSquared), fmt.Sprint(tr.N)})
		t.Render()
		fmt.Fprintln(w)
	}
	for _, n := range p.Notes {
		fmt.Fprintf(w, "⚠ %s\n", n)
	}
}

// CorrelationTable writes the full matrix.
func CorrelationTable(w io.Writer, m *analysis.CorrelationMatrix) {
	t := tablewriter.NewWriter(w)
	t.SetHeader(append([]string{string(m.Method)}, m.Columns...))
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i, name := range m.Columns {
		row := make([]string, 0, len(m.Columns)+1)
		row = append(row, name)
		for j := range m.Columns {
			row = append(row, fixed(m.Values[i][j], 3))
		}
		t.Append(row)
	}
	t.Render()
}

// ComparisonTable writes both groups and the test statistics.
func ComparisonTable(w io.Writer, c *analysis.GroupComparison) {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{c.GroupColumn, "N", "Mean " + c.TargetColumn, "Variance"})
	for _, g := range []analysis.GroupSample{c.GroupA, c.GroupB} {
		t.Append([]string{g.Label, fmt.Sprint(g.N), num(g.Mean), num(g.Variance)})
	}
	t.Render()
	fmt.Fprintf(w, "t=%s  df=%s  p=%s  d=%s\n%s\n",
		fixed(c.TStatistic, 4), fixed(c.DegreesOfFreedom, 2), fixed(c.PValue, 4), fixed(c.CohenD, 3), c.Summary)
}
