package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hevytools/notion-sync/internal/capture"
)

func newCaptureCmd(app *app) *cobra.Command {
	var address string
	var dir string

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Run a webhook capture server that records requests to disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if address == "" {
				address = app.cfg.Capture.Address
			}
			if dir == "" {
				dir = app.cfg.Capture.Dir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := capture.NewServer(dir, app.logger)
			return capture.Serve(ctx, capture.NewHTTPServer(address, server), app.logger)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Bind address (default: capture.address from config)")
	cmd.Flags().StringVar(&dir, "dir", "", "Capture output directory (default: capture.dir from config)")

	return cmd
}
