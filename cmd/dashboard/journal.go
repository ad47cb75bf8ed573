package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/xela07ax/cybermarket-dashboard/internal/repository/postgres"
)

var journalWindow time.Duration

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Summarize the fetch-cycle journal stored in PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.URL == "" {
			return errors.New("database.url is not configured")
		}

		repo, err := postgres.NewJournalRepo(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer repo.Close()

		s, err := repo.Summary(cmd.Context(), journalWindow)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), s)
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.Flags().DurationVarP(&journalWindow, "window", "w", time.Hour, "Summary window")
}
