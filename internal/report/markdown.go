// Package report renders analysis profiles for people: Markdown, aligned
// terminal tables and indented JSON.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/statloom/internal/analysis"
	"github.com/KaramelBytes/statloom/internal/utils"
)

// Options controls report detail.
type Options struct {
	// SampleRows is the number of leading rows shown; 0 hides the section.
	SampleRows int
	// MaxPairs caps the ranked correlation pairs; 0 means 10.
	MaxPairs int
}

// DefaultOptions mirrors the CLI defaults.
func DefaultOptions() Options { return Options{SampleRows: 5, MaxPairs: 10} }

// JSON encodes the profile as indented JSON.
func JSON(p *analysis.Profile) ([]byte, error) { return utils.PrettyJSON(p) }

// Markdown renders a compact report suitable for standalone docs.
func Markdown(p *analysis.Profile, opt Options) string {
	var b strings.Builder
	writeSummary(&b, p)
	writeSchema(&b, p)
	writeAggregates(&b, p)
	writeMetrics(&b, p)
	if p.Correlation != nil {
		b.WriteString("\n")
		b.WriteString(CorrelationMarkdown(p.Correlation, opt.MaxPairs))
	}
	if p.Comparison != nil {
		b.WriteString("\n")
		b.WriteString(ComparisonMarkdown(p.Comparison))
	}
	if p.Trend != nil {
		t := p.Trend
		b.WriteString("\n[TREND]\n")
		b.WriteString(fmt.Sprintf("- %s = %s + %s × %s (n=%d, R²=%s)\n",
			t.Y, num(t.Intercept), num(t.Slope), t.X, t.N, num(t.RSquared)))
	}
	writeSamples(&b, p, opt.SampleRows)
	if len(p.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range p.Notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeSummary(b *strings.Builder, p *analysis.Profile) {
	a := p.Aggregates
	b.WriteString("[DATASET SUMMARY]\n")
	if p.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", p.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", a.RowCount))
	b.WriteString(fmt.Sprintf("Columns: %d (%d numeric, %d categorical)\n",
		a.ColumnCount, len(p.Classification.Numeric), len(p.Classification.Categorical)))
	b.WriteString(fmt.Sprintf("Missing: %.1f%%\n", a.MissingRatio*100))
}

func writeSchema(b *strings.Builder, p *analysis.Profile) {
	ds := p.Dataset
	if ds == nil {
		return
	}
	b.WriteString("\n[SCHEMA]\n")
	for i := 0; i < ds.NumCols(); i++ {
		c := ds.ColumnAt(i)
		kind := "excluded"
		switch {
		case p.Classification.IsNumeric(c.Name()):
			kind = "numeric"
		case p.Classification.IsCategorical(c.Name()):
			kind = "categorical"
		}
		missPct := 0.0
		if c.Len() > 0 {
			missPct = float64(c.MissingCount()) * 100 / float64(c.Len())
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)\n",
			safeName(c.Name()), kind, c.Len()-c.MissingCount(), missPct))
	}
}

func writeAggregates(b *strings.Builder, p *analysis.Profile) {
	if len(p.Aggregates.Aggregates) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("\n[AGGREGATES] (first %d numeric)\n", p.Aggregates.TopN))
	for _, a := range p.Aggregates.Aggregates {
		b.WriteString(fmt.Sprintf("- %s: sum %s, mean %s (n=%d)\n", safeName(a.Column), num(a.Sum), num(a.Mean), a.Count))
	}
}

func writeMetrics(b *strings.Builder, p *analysis.Profile) {
	if len(p.Metrics) == 0 {
		return
	}
	b.WriteString("\n[METRICS]\n")
	for _, m := range p.Metrics {
		if !m.Available {
			b.WriteString(fmt.Sprintf("- %s: n/a\n", m.Name))
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: %s%s (%s of %s)\n", m.Name, num(m.Value), m.Unit, m.Aggregation, m.Column))
	}
}

// CorrelationMarkdown lists the strongest pairs by |r|.
func CorrelationMarkdown(m *analysis.CorrelationMatrix, maxPairs int) string {
	if maxPairs <= 0 {
		maxPairs = 10
	}
	type pr struct {
		A, B string
		R    float64
		N    int
	}
	var pairs []pr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, pr{A: m.Columns[i], B: m.Columns[j], R: m.Values[i][j], N: m.Pairs[i][j]})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		// NaN sorts last
		if math.IsNaN(ai) || math.IsNaN(aj) {
			return !math.IsNaN(ai) && math.IsNaN(aj)
		}
		return ai > aj
	})
	if len(pairs) > maxPairs {
		pairs = pairs[:maxPairs]
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[CORRELATIONS] (%s)\n", m.Method))
	for _, p := range pairs {
		b.WriteString(fmt.Sprintf("- %s ~ %s: r=%s (n=%d)\n", p.A, p.B, fixed(p.R, 3), p.N))
	}
	return b.String()
}

// ComparisonMarkdown renders a Welch test result and its interpretation.
func ComparisonMarkdown(c *analysis.GroupComparison) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[GROUP COMPARISON] %s by %s\n", c.TargetColumn, c.GroupColumn))
	for _, g := range []analysis.GroupSample{c.GroupA, c.GroupB} {
		b.WriteString(fmt.Sprintf("- %s: n=%d, mean %s, variance %s\n", g.Label, g.N, num(g.Mean), num(g.Variance)))
	}
	b.WriteString(fmt.Sprintf("- t-statistic: %s\n", fixed(c.TStatistic, 4)))
	b.WriteString(fmt.Sprintf("- Degrees of freedom (Welch): %s\n", fixed(c.DegreesOfFreedom, 2)))
	b.WriteString(fmt.Sprintf("- p-value: %s\n", fixed(c.PValue, 4)))
	b.WriteString(fmt.Sprintf("- Cohen's d: %s\n", fixed(c.CohenD, 3)))
	b.WriteString(c.Summary)
	b.WriteString("\n")
	return b.String()
}

func writeSamples(b *strings.Builder, p *analysis.Profile, n int) {
	if p.Dataset == nil || n <= 0 {
		return
	}
	rows := p.Dataset.Head(n)
	if len(rows) == 0 {
		return
	}
	cols := p.Dataset.ColumnNames()
	b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
	b.WriteString("| ")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(safeName(c)))
	}
	b.WriteString(" |\n| ")
	for i := range cols {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i, val := range row {
			if i > 0 {
				b.WriteString(" | ")
			}
			val = truncate(val, 80)
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
}

// truncate shortens s to at most n runes, ending in "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// num formats with 4 significant digits; NaN prints as n/a.
func num(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", f)
}

func fixed(f float64, prec int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", prec, f)
}
