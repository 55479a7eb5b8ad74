package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/statloom/internal/analysis"
	"github.com/KaramelBytes/statloom/internal/report"
	"github.com/KaramelBytes/statloom/internal/utils"
)

var (
	corLoad       loadFlags
	corMethod     string
	corFormat     string
	corOutputPath string
	corMaxPairs   int
)

var correlateCmd = &cobra.Command{
	Use:   "correlate <file>",
	Short: "Print the pairwise correlation matrix of the numeric columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := settings()
		method := g.CorrelationMethod
		if corMethod != "" {
			method = corMethod
		}
		m, err := analysis.ParseMethod(method)
		if err != nil {
			return err
		}
		ds, err := corLoad.load(args[0], g)
		if err != nil {
			return err
		}
		cls := analysis.ClassifyWith(ds, analysis.ClassifyOptions{MaxCodeCardinality: g.MaxCodeCardinality})
		mat, err := analysis.Correlate(cmd.Context(), ds, cls, m)
		if err != nil {
			return err
		}
		if mat == nil {
			return fmt.Errorf("%s: %w", ds.Name(), analysis.ErrInsufficientNumericColumns)
		}

		var out []byte
		switch corFormat {
		case "", "table":
			var buf bytes.Buffer
			report.CorrelationTable(&buf, mat)
			out = buf.Bytes()
		case "markdown", "md":
			out = []byte(report.CorrelationMarkdown(mat, corMaxPairs))
		case "json":
			if out, err = utils.PrettyJSON(mat); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported --format: %s (use table, markdown or json)", corFormat)
		}
		return emit(cmd, out, corOutputPath, "correlation matrix")
	},
}

func init() {
	rootCmd.AddCommand(correlateCmd)
	corLoad.register(correlateCmd)
	f := correlateCmd.Flags()
	f.StringVar(&corMethod, "method", "", "pearson|spearman|kendall (default from config)")
	f.StringVar(&corFormat, "format", "table", "output format: table|markdown|json")
	f.StringVarP(&corOutputPath, "output", "o", "", "optional path to write the matrix")
	f.IntVar(&corMaxPairs, "max-pairs", 10, "markdown: number of ranked pairs to list")
}
