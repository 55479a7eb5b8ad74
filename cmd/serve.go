package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/statloom/internal/dataset"
	"github.com/KaramelBytes/statloom/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve profiles over HTTP (POST /api/profile)",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := settings()
		opts, err := analysisOptions(g)
		if err != nil {
			return err
		}
		addr := g.ServerAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		s := server.New(server.Config{
			Addr:           addr,
			RequestTimeout: time.Duration(g.RequestTimeoutSec) * time.Second,
			MaxUploadBytes: int64(g.MaxUploadMB) << 20,
			Alpha:          g.Alpha,
			Analysis:       opts,
			Load: dataset.LoadOptions{
				MaxRows:      g.MaxRows,
				NumberFormat: dataset.NumberFormat{AutoLocale: g.AutoLocale},
			},
		}, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Listening on %s\n", addr)
		return s.ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}
