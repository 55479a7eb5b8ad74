package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/statloom/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Statloom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "correlation_method: %s\n", c.CorrelationMethod)
		fmt.Fprintf(w, "top_n: %d\n", c.TopN)
		fmt.Fprintf(w, "alpha: %g\n", c.Alpha)
		fmt.Fprintf(w, "max_code_cardinality: %d\n", c.MaxCodeCardinality)
		fmt.Fprintf(w, "max_rows: %d\n", c.MaxRows)
		fmt.Fprintf(w, "sample_rows: %d\n", c.SampleRows)
		fmt.Fprintf(w, "auto_locale: %t\n", c.AutoLocale)
		fmt.Fprintf(w, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(w, "server_addr: %s\n", c.ServerAddr)
		fmt.Fprintf(w, "request_timeout_sec: %d\n", c.RequestTimeoutSec)
		fmt.Fprintf(w, "max_upload_mb: %d\n", c.MaxUploadMB)
		if len(c.Metrics) > 0 {
			fmt.Fprintln(w, "metrics:")
			for _, m := range c.Metrics {
				agg := m.Aggregation
				if agg == "" {
					agg = "sum"
				}
				fmt.Fprintf(w, "  - %s: %s(%s)", m.Name, agg, m.Column)
				if m.Scale != 0 && m.Scale != 1 {
					fmt.Fprintf(w, " x%g", m.Scale)
				}
				if m.Unit != "" {
					fmt.Fprintf(w, " [%s]", m.Unit)
				}
				fmt.Fprintln(w)
			}
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := c.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
