package main

import (
	"fmt"
	"os"

	"github.com/jonathan/timeclock/internal/punchhistory"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Extract punch history from a saved page",
	Long:  "Runs the punch history extraction on an HTML file saved earlier (for example with history --dump-html), without contacting the time clock.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

var parseFormat string

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", formatJSON, "Output format: json or table")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer func() { _ = f.Close() }()

	doc, err := punchhistory.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}
	summary, err := doc.Summary()
	if err != nil {
		return fmt.Errorf("failed to extract punch history from %s: %w", args[0], err)
	}

	return writeSummary(cmd.OutOrStdout(), summary, parseFormat)
}
