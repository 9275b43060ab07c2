package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hevytools/notion-sync/internal/adapters/config"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and scaffold the hns configuration",
	}

	cmd.AddCommand(newConfigInitCmd(app), newConfigShowCmd(app))

	return cmd
}

func newConfigInitCmd(app *app) *cobra.Command {
	var path string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config.toml scaffold with the current effective values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				userConfigDir, err := os.UserConfigDir()
				if err != nil {
					return fmt.Errorf("resolve config directory: %w", err)
				}
				path = config.DefaultPath(userConfigDir)
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}

			encoded, err := config.EncodeTOML(app.cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := os.WriteFile(path, encoded, 0o600); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Target file (default: the user config directory)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.cfg
			if cfg.Hevy.APIKey != "" {
				cfg.Hevy.APIKey = "<redacted>"
			}
			if cfg.Webhook.AuthToken != "" {
				cfg.Webhook.AuthToken = "<redacted>"
			}

			encoded, err := config.EncodeTOML(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), string(encoded))
			return err
		},
	}
}
