package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/statloom/internal/analysis"
	"github.com/KaramelBytes/statloom/internal/report"
	"github.com/KaramelBytes/statloom/internal/utils"
)

var (
	prLoad       loadFlags
	prCompare    compareFlags
	prMethod     string
	prTopN       int
	prTrendX     string
	prTrendY     string
	prFormat     string
	prOutputPath string
	prSampleRows int
	prMaxPairs   int
	prCodeCard   int
	prNoDates    bool
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Profile a CSV/TSV/XLSX file: schema, aggregates, correlations, comparisons",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		g := settings()

		opts, err := analysisOptions(g)
		if err != nil {
			return err
		}
		if prMethod != "" {
			if opts.Method, err = analysis.ParseMethod(prMethod); err != nil {
				return err
			}
		}
		if prTopN > 0 {
			opts.TopN = prTopN
		}
		if cmd.Flags().Changed("max-code-cardinality") {
			opts.Classify.MaxCodeCardinality = prCodeCard
		}
		opts.Classify.ExcludeDatetime = prNoDates
		if opts.Comparison, err = prCompare.request(g); err != nil {
			return err
		}
		switch {
		case prTrendX != "" && prTrendY != "":
			opts.Trend = &analysis.TrendRequest{X: prTrendX, Y: prTrendY}
		case prTrendX != "" || prTrendY != "":
			return fmt.Errorf("--trend-x and --trend-y must be given together")
		}

		ds, err := prLoad.load(path, g)
		if err != nil {
			return err
		}
		p, err := analysis.NewAssembler(logger, opts).Assemble(cmd.Context(), ds)
		if err != nil {
			return err
		}

		ropt := report.DefaultOptions()
		ropt.SampleRows = g.SampleRows
		if cmd.Flags().Changed("sample-rows") {
			ropt.SampleRows = prSampleRows
		}
		if prMaxPairs > 0 {
			ropt.MaxPairs = prMaxPairs
		}
		out, err := render(p, prFormat, ropt)
		if err != nil {
			return err
		}
		return emit(cmd, out, prOutputPath, "profile")
	},
}

// render formats p as markdown, json or table.
func render(p *analysis.Profile, format string, ropt report.Options) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "markdown", "md":
		return []byte(report.Markdown(p, ropt)), nil
	case "json":
		return report.JSON(p)
	case "table":
		var buf bytes.Buffer
		report.Tables(&buf, p)
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported --format: %s (use markdown, json or table)", format)
	}
}

// emit writes out to path when set, otherwise to the command's stdout.
func emit(cmd *cobra.Command, out []byte, path, what string) error {
	if path != "" {
		if err := utils.SafeWriteFile(path, out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s to %s\n", what, path)
		return nil
	}
	w := cmd.OutOrStdout()
	if _, err := w.Write(out); err != nil {
		return err
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		fmt.Fprintln(w)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(profileCmd)
	prLoad.register(profileCmd)
	prCompare.register(profileCmd)
	f := profileCmd.Flags()
	f.StringVar(&prMethod, "method", "", "correlation method: pearson|spearman|kendall (default from config)")
	f.IntVar(&prTopN, "top-n", 0, "number of numeric columns to aggregate (default from config)")
	f.StringVar(&prTrendX, "trend-x", "", "numeric column used as the trend predictor")
	f.StringVar(&prTrendY, "trend-y", "", "numeric column used as the trend response")
	f.StringVar(&prFormat, "format", "markdown", "output format: markdown|json|table")
	f.StringVarP(&prOutputPath, "output", "o", "", "optional path to write the report")
	f.IntVar(&prSampleRows, "sample-rows", 5, "number of sample rows to include (0 hides them)")
	f.IntVar(&prMaxPairs, "max-pairs", 10, "number of ranked correlation pairs to list")
	f.IntVar(&prCodeCard, "max-code-cardinality", 0, "treat integer columns with at most this many distinct values as categorical")
	f.BoolVar(&prNoDates, "exclude-datetime", false, "leave date columns out of both categorical and numeric sets")
}
