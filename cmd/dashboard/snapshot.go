package main

import (
	"github.com/spf13/cobra"
	"github.com/xela07ax/cybermarket-dashboard/internal/dashboard"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Run one fetch cycle and print the dashboard snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, rdb, err := openStore(ctx)
		if err != nil {
			return err
		}
		if rdb != nil {
			defer rdb.Close()
		}

		// Один цикл без поллинга
		agg := dashboard.New(newClient(), store, dashboard.Config{
			PollInterval:   cfg.Dashboard.PollInterval,
			RequestTimeout: cfg.Dashboard.RequestTimeout,
			DevMode:        true,
			IdentityKey:    cfg.Identity.Key,
		}, logger)
		agg.Start(ctx)
		snap := agg.Snapshot()
		agg.Stop()

		return printJSON(cmd.OutOrStdout(), snap)
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}
