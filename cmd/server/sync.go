package main

import (
	"fmt"
	"time"

	"github.com/habitlog/internal/metrics"
	"github.com/habitlog/internal/service"
	"github.com/spf13/cobra"
)

var syncDate string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync automatic habits for one day and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date := time.Now()
		if syncDate != "" {
			parsed, err := service.ParseDate(syncDate)
			if err != nil {
				return err
			}
			date = parsed
		}

		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}

		log, err := a.api.DailyLogs().SyncAutomatic(cmd.Context(), date)
		metrics.RecordSyncRun("cli", err == nil)
		if err != nil {
			return fmt.Errorf("sync %s: %w", service.FormatDate(date), err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries\n", service.FormatDate(log.Date), len(log.Entries))
		for _, entry := range log.SortedEntries() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-22s %10g  (%s)\n", entry.HabitID, entry.Value, entry.Source)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncDate, "date", "", "date to sync (YYYY-MM-DD, default: today)")
}
