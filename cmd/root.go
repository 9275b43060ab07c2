package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hns",
		Short:         "hns: sync Hevy workouts to a Notion webhook",
		Long:          "hns (Hevy Notion Sync) backfills completed Hevy workouts to a downstream webhook receiver, relays live webhook events, and captures unknown webhook traffic for inspection.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newSyncCmd(app),
		newServeCmd(app),
		newCaptureCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
