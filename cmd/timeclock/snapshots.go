package main

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/timeclock/internal/db"
	"github.com/spf13/cobra"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List stored punch history snapshots",
	RunE:  runSnapshots,
}

var snapshotsLimit int

func init() {
	snapshotsCmd.Flags().IntVar(&snapshotsLimit, "limit", 24, "Maximum snapshots to list")
	rootCmd.AddCommand(snapshotsCmd)
}

func runSnapshots(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadSettings(ctx, cmd)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or database_url config is required")
	}
	if cfg.Email == "" {
		return fmt.Errorf("account required: set --email or TIMECLOCK_EMAIL")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	snapshots, err := database.ListSnapshots(ctx, cfg.Email, snapshotsLimit)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshots: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
