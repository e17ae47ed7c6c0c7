package main

import (
	"fmt"
	"time"

	"github.com/jonathan/timeclock/internal/db"
	"github.com/jonathan/timeclock/internal/observability"
	"github.com/jonathan/timeclock/internal/punchhistory"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Store a range of months in PostgreSQL",
	Long:  "Fetches punch history for every month in a range, one month at a time over a single session, and stores each month as a snapshot. Unchanged pages are not stored twice.",
	RunE:  runSync,
}

var (
	syncFrom string
	syncTo   string
)

func init() {
	syncCmd.Flags().StringVar(&syncFrom, "from", "", "First month, YYYY-MM (required)")
	syncCmd.Flags().StringVar(&syncTo, "to", "", "Last month, YYYY-MM (default: current month)")

	if err := syncCmd.MarkFlagRequired("from"); err != nil {
		panic(fmt.Sprintf("failed to mark from flag as required: %v", err))
	}

	rootCmd.AddCommand(syncCmd)
}

// yearMonth is a calendar month.
type yearMonth struct {
	Year  int
	Month time.Month
}

func (ym yearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

func parseYearMonth(s string) (yearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return yearMonth{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return yearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// monthRange lists the months from first to last inclusive.
func monthRange(first, last yearMonth) ([]yearMonth, error) {
	start := time.Date(first.Year, first.Month, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(last.Year, last.Month, 1, 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return nil, fmt.Errorf("range end %s is before start %s", last, first)
	}

	var months []yearMonth
	for t := start; !t.After(end); t = t.AddDate(0, 1, 0) {
		months = append(months, yearMonth{Year: t.Year(), Month: t.Month()})
	}
	return months, nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	first, err := parseYearMonth(syncFrom)
	if err != nil {
		return err
	}
	now := time.Now()
	last := yearMonth{Year: now.Year(), Month: now.Month()}
	if syncTo != "" {
		if last, err = parseYearMonth(syncTo); err != nil {
			return err
		}
	}
	months, err := monthRange(first, last)
	if err != nil {
		return err
	}

	cfg, err := loadSettings(ctx, cmd)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or database_url config is required")
	}
	log := newLogger(cmd, cfg)

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}

	client, err := openSession(ctx, cfg, log)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	for _, ym := range months {
		page, err := client.FetchPunchHistoryPage(ctx, ym.Year, int(ym.Month))
		if err != nil {
			return fetchError(ym.String(), err)
		}
		summary, err := punchhistory.Extract(page.HTML)
		if err != nil {
			return fmt.Errorf("failed to extract %s: %w", ym, err)
		}
		if summary.Period() != ym.String() {
			log.Warn().Str("requested", ym.String()).Str("served", summary.Period()).Msg("server returned a different month")
		}

		snapshot, err := database.SavePunchHistory(ctx, cfg.Email, summary, page.HTML)
		if err != nil {
			return err
		}
		log.Debug().Str("period", ym.String()).Bool("unchanged", snapshot.Unchanged).Msg("month stored")
		printer.PrintSyncedMonth(summary, snapshot.ID.String())
	}

	return nil
}
