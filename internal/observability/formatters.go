// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jonathan/timeclock/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
)

// Printer handles formatted output for the table format and verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if runes := []rune(line); len(runes) > boxWidth-4 {
			line = string(runes[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintPunchHistory outputs the month summary box followed by the punch table.
func (p *Printer) PrintPunchHistory(summary *types.PunchHistorySummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Period:       %s\n", summary.Period()))
	sb.WriteString(fmt.Sprintf("Time worked:  %s\n", summary.TimeWorked))
	sb.WriteString(fmt.Sprintf("Work days:    %d\n", summary.WorkDays))
	sb.WriteString(fmt.Sprintf("Punches:      %d", len(summary.Entries)))

	p.printBox("PUNCH HISTORY", sb.String())
	p.PrintEntries(summary.Entries)
}

// PrintEntries outputs punch entries as an aligned table.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintEntries(entries []types.PunchEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.out, "No punches recorded.")
		return
	}

	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(types.Columns(), "\t"))
	for _, e := range entries {
		fmt.Fprintln(tw, strings.Join(e.Values(), "\t"))
	}
	tw.Flush()
}

// PrintSyncedMonth outputs a one-line report for a stored month.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSyncedMonth(summary *types.PunchHistorySummary, snapshotID string) {
	if summary == nil {
		return
	}
	fmt.Fprintf(p.out, "%s  %-12s  %2d days  %3d punches  %s\n",
		summary.Period(), summary.TimeWorked, summary.WorkDays, len(summary.Entries), snapshotID)
}
