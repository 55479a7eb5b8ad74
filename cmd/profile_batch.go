package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/statloom/internal/analysis"
	"github.com/KaramelBytes/statloom/internal/report"
	"github.com/KaramelBytes/statloom/internal/utils"
)

var (
	pbLoad       loadFlags
	pbMethod     string
	pbFormat     string
	pbOutDir     string
	pbSampleRows int
	pbJobs       int
	pbQuiet      bool
)

var profileBatchCmd = &cobra.Command{
	Use:   "profile-batch <files...>",
	Short: "Profile multiple CSV/TSV/XLSX files, writing one report per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if pbQuiet && pbOutDir == "" {
			return fmt.Errorf("--quiet requires --out-dir (reports would be discarded)")
		}
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		g := settings()
		opts, err := analysisOptions(g)
		if err != nil {
			return err
		}
		if pbMethod != "" {
			if opts.Method, err = analysis.ParseMethod(pbMethod); err != nil {
				return err
			}
		}
		ropt := report.DefaultOptions()
		ropt.SampleRows = g.SampleRows
		if cmd.Flags().Changed("sample-rows") {
			ropt.SampleRows = pbSampleRows
		}
		ext := ".md"
		switch strings.ToLower(pbFormat) {
		case "", "markdown", "md":
		case "json":
			ext = ".json"
		case "table":
			ext = ".txt"
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown, json or table)", pbFormat)
		}
		targets := outputPaths(files, pbOutDir, ext)

		asm := analysis.NewAssembler(logger, opts)
		out := cmd.OutOrStdout()
		var mu sync.Mutex
		done := 0
		eg, ctx := errgroup.WithContext(cmd.Context())
		if pbJobs > 0 {
			eg.SetLimit(pbJobs)
		}
		for i, path := range files {
			eg.Go(func() error {
				ds, err := pbLoad.load(path, g)
				if err != nil {
					return err
				}
				p, err := asm.Assemble(ctx, ds)
				if err != nil {
					return fmt.Errorf("%s: %w", filepath.Base(path), err)
				}
				body, err := render(p, pbFormat, ropt)
				if err != nil {
					return err
				}
				if pbOutDir != "" {
					if err := utils.SafeWriteFile(targets[i], body); err != nil {
						return fmt.Errorf("write output: %w", err)
					}
				}
				mu.Lock()
				defer mu.Unlock()
				done++
				switch {
				case pbOutDir == "" && !pbQuiet:
					fmt.Fprintf(out, "[%d/%d] %s\n%s\n", done, len(files), filepath.Base(path), body)
				case !pbQuiet:
					fmt.Fprintf(out, "[%d/%d] ✓ %s -> %s\n", done, len(files), filepath.Base(path), targets[i])
				}
				logger.Debug("profiled", zap.String("file", path), zap.Int("rows", ds.NumRows()))
				return nil
			})
		}
		return eg.Wait()
	},
}

// expandInputs resolves globs, keeps literal paths that exist, and dedupes.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// outputPaths maps each input to <dir>/<base>.profile<ext>, suffixing
// __2, __3 ... when basenames collide or a file already exists.
func outputPaths(files []string, dir, ext string) []string {
	out := make([]string, len(files))
	if dir == "" {
		return out
	}
	taken := map[string]struct{}{}
	for i, f := range files {
		base := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		cand := filepath.Join(dir, base+".profile"+ext)
		for idx := 2; ; idx++ {
			_, dup := taken[cand]
			_, statErr := os.Stat(cand)
			if !dup && statErr != nil {
				break
			}
			cand = filepath.Join(dir, fmt.Sprintf("%s__%d.profile%s", base, idx, ext))
		}
		taken[cand] = struct{}{}
		out[i] = cand
	}
	return out
}

func init() {
	rootCmd.AddCommand(profileBatchCmd)
	pbLoad.register(profileBatchCmd)
	f := profileBatchCmd.Flags()
	f.StringVar(&pbMethod, "method", "", "correlation method: pearson|spearman|kendall (default from config)")
	f.StringVar(&pbFormat, "format", "markdown", "output format: markdown|json|table")
	f.StringVar(&pbOutDir, "out-dir", "", "directory for per-file reports (default: print to stdout)")
	f.IntVar(&pbSampleRows, "sample-rows", 5, "number of sample rows per report (0 hides them)")
	f.IntVar(&pbJobs, "jobs", 4, "files profiled concurrently (0 = unlimited)")
	f.BoolVar(&pbQuiet, "quiet", false, "suppress progress and non-essential output")
}
