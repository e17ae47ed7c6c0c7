package main

import (
	"fmt"
	"os"

	"github.com/jonathan/timeclock/internal/punchhistory"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Fetch a month of punch history",
	Long:  "Logs into the time clock, fetches the punch history page for a month (current month by default) and prints the extracted summary and punches.",
	RunE:  runHistory,
}

var (
	historyYear     int
	historyMonth    int
	historyFormat   string
	historyDumpHTML string
)

func init() {
	historyCmd.Flags().IntVar(&historyYear, "year", 0, "Year to fetch (default: current year)")
	historyCmd.Flags().IntVar(&historyMonth, "month", 0, "Month to fetch, 1-12 (default: current month)")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", formatTable, "Output format: json or table")
	historyCmd.Flags().StringVar(&historyDumpHTML, "dump-html", "", "Write the raw history page to this file")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadSettings(ctx, cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)

	client, err := openSession(ctx, cfg, log)
	if err != nil {
		return err
	}

	page, err := client.FetchPunchHistoryPage(ctx, historyYear, historyMonth)
	if page != nil && historyDumpHTML != "" {
		if werr := os.WriteFile(historyDumpHTML, []byte(page.HTML), 0644); werr != nil {
			return fmt.Errorf("failed to write %s: %w", historyDumpHTML, werr)
		}
		log.Info().Str("path", historyDumpHTML).Msg("history page saved")
	}
	if err != nil {
		return fetchError("punch history", err)
	}

	summary, err := punchhistory.Extract(page.HTML)
	if err != nil {
		return fmt.Errorf("failed to extract punch history: %w", err)
	}

	return writeSummary(cmd.OutOrStdout(), summary, historyFormat)
}
