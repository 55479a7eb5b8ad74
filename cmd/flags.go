package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/statloom/internal/analysis"
	cfgpkg "github.com/KaramelBytes/statloom/internal/config"
	"github.com/KaramelBytes/statloom/internal/dataset"
)

// loadFlags are the file-reading flags shared by every command that takes a dataset.
type loadFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	autoLocale bool
	maxRows    int
	sheetName  string
	sheetIndex int
}

func (l *loadFlags) register(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&l.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (default: by extension)")
	f.StringVar(&l.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	f.StringVar(&l.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	f.BoolVar(&l.autoLocale, "auto-locale", false, "guess decimal/thousands separators per value and accept trailing %")
	f.IntVar(&l.maxRows, "max-rows", 0, "maximum rows to read (0 = config value, unlimited by default)")
	f.StringVar(&l.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	f.IntVar(&l.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (l *loadFlags) options(g *cfgpkg.Global) (dataset.LoadOptions, error) {
	opt := dataset.LoadOptions{
		MaxRows:    g.MaxRows,
		SheetName:  l.sheetName,
		SheetIndex: l.sheetIndex,
	}
	opt.AutoLocale = g.AutoLocale || l.autoLocale
	if l.maxRows > 0 {
		opt.MaxRows = l.maxRows
	}
	switch l.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", l.delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(l.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", l.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(l.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", l.thousands)
	}
	return opt, nil
}

func (l *loadFlags) load(path string, g *cfgpkg.Global) (*dataset.Dataset, error) {
	opt, err := l.options(g)
	if err != nil {
		return nil, err
	}
	return dataset.Load(path, opt)
}

// compareFlags select the two groups for a Welch test.
type compareFlags struct {
	groupBy string
	target  string
	groupA  string
	groupB  string
	alpha   float64
}

func (cf *compareFlags) register(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&cf.groupBy, "group-by", "", "categorical column holding the group labels")
	f.StringVar(&cf.target, "target", "", "numeric column to compare")
	f.StringVar(&cf.groupA, "group-a", "", "first group label")
	f.StringVar(&cf.groupB, "group-b", "", "second group label")
	f.Float64Var(&cf.alpha, "alpha", 0, "significance level (0 = config value)")
}

// request returns nil when no comparison flag is set.
func (cf *compareFlags) request(g *cfgpkg.Global) (*analysis.ComparisonRequest, error) {
	set := 0
	for _, v := range []string{cf.groupBy, cf.target, cf.groupA, cf.groupB} {
		if v != "" {
			set++
		}
	}
	switch set {
	case 0:
		return nil, nil
	case 4:
	default:
		return nil, fmt.Errorf("--group-by, --target, --group-a and --group-b must be given together")
	}
	alpha := g.Alpha
	if cf.alpha != 0 {
		if cf.alpha < 0 || cf.alpha >= 1 {
			return nil, fmt.Errorf("invalid --alpha: %v (must be between 0 and 1)", cf.alpha)
		}
		alpha = cf.alpha
	}
	return &analysis.ComparisonRequest{
		GroupColumn:  cf.groupBy,
		TargetColumn: cf.target,
		GroupA:       cf.groupA,
		GroupB:       cf.groupB,
		Alpha:        alpha,
	}, nil
}

// analysisOptions maps configuration onto engine options.
func analysisOptions(g *cfgpkg.Global) (analysis.Options, error) {
	opts := analysis.DefaultOptions()
	m, err := analysis.ParseMethod(g.CorrelationMethod)
	if err != nil {
		return opts, err
	}
	opts.Method = m
	if g.TopN > 0 {
		opts.TopN = g.TopN
	}
	opts.Classify.MaxCodeCardinality = g.MaxCodeCardinality
	opts.Metrics = metricSpecs(g.Metrics)
	return opts, nil
}

func metricSpecs(ms []cfgpkg.Metric) []analysis.MetricSpec {
	if len(ms) == 0 {
		return nil
	}
	out := make([]analysis.MetricSpec, 0, len(ms))
	for _, m := range ms {
		out = append(out, analysis.MetricSpec{
			Name:        m.Name,
			Column:      m.Column,
			Aggregation: m.Aggregation,
			Scale:       m.Scale,
			Unit:        m.Unit,
		})
	}
	return out
}
