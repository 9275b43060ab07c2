package cmd

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hevytools/notion-sync/internal/relay"
)

func newServeCmd(app *app) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the always-on webhook relay server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, app, address)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Bind address (default: serve.address from config)")

	return cmd
}

func runServe(cmd *cobra.Command, app *app, address string) error {
	if err := app.cfg.ValidateServe(); err != nil {
		return err
	}
	if address == "" {
		address = app.cfg.Serve.Address
	}

	// The start date is optional for serve: /sync falls back to it when the
	// request body carries no "since".
	var since time.Time
	if app.cfg.Sync.StartDate != "" {
		parsed, err := app.cfg.Sync.Since()
		if err != nil {
			return err
		}
		since = parsed
	}

	handler := relay.NewHandler(
		app.newDispatcher(),
		app.newPipeline(),
		app.cfg.Webhook.AuthToken,
		since,
		app.logger,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return relay.Serve(ctx, relay.NewServer(address, handler), app.logger)
}
