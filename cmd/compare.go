package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/statloom/internal/analysis"
	"github.com/KaramelBytes/statloom/internal/report"
	"github.com/KaramelBytes/statloom/internal/utils"
)

var (
	cmpLoad       loadFlags
	cmpFlags      compareFlags
	cmpFormat     string
	cmpOutputPath string
	cmpCodeCard   int
)

var compareCmd = &cobra.Command{
	Use:   "compare <file>",
	Short: "Run a Welch t-test of one numeric column between two groups",
	Example: `  statloom compare sales.csv --group-by Region --target Profit --group-a North --group-b South
  statloom compare survey.xlsx --sheet-name Responses --group-by Arm --target Score --group-a A --group-b B --alpha 0.01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := settings()
		req, err := cmpFlags.request(g)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("--group-by, --target, --group-a and --group-b are required")
		}
		ds, err := cmpLoad.load(args[0], g)
		if err != nil {
			return err
		}
		copt := analysis.ClassifyOptions{MaxCodeCardinality: g.MaxCodeCardinality}
		if cmd.Flags().Changed("max-code-cardinality") {
			copt.MaxCodeCardinality = cmpCodeCard
		}
		res, err := analysis.CompareWith(ds, analysis.ClassifyWith(ds, copt), *req)
		if err != nil {
			logger.Debug("comparison failed", zap.String("dataset", ds.Name()), zap.Error(err))
			return err
		}

		var out []byte
		switch cmpFormat {
		case "", "markdown", "md":
			out = []byte(report.ComparisonMarkdown(res))
		case "json":
			if out, err = utils.PrettyJSON(res); err != nil {
				return err
			}
		case "table":
			var buf bytes.Buffer
			report.ComparisonTable(&buf, res)
			out = buf.Bytes()
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown, json or table)", cmpFormat)
		}
		return emit(cmd, out, cmpOutputPath, "comparison")
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	cmpLoad.register(compareCmd)
	cmpFlags.register(compareCmd)
	f := compareCmd.Flags()
	f.StringVar(&cmpFormat, "format", "markdown", "output format: markdown|json|table")
	f.StringVarP(&cmpOutputPath, "output", "o", "", "optional path to write the result")
	f.IntVar(&cmpCodeCard, "max-code-cardinality", 0, "treat integer columns with at most this many distinct values as categorical")
}
