// Package punchhistory extracts a month of punch history from the time clock's
// server-rendered punch history page.
package punchhistory

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/timeclock/internal/types"
)

// Selectors for the parts of the page that carry semantic markup.
const (
	YearInputSelector  = "input[name=year]"
	MonthInputSelector = "input[name=month]"
	TableSelector      = ".punch_history"
)

var (
	yearPattern     = regexp.MustCompile(`^\d{4}$`)
	monthPattern    = regexp.MustCompile(`^\d{1,2}$`)
	workDaysPattern = regexp.MustCompile(`^\d+$`)
)

// Document is a parsed punch history page.
type Document struct {
	raw   string
	doc   *goquery.Document
	texts []string
}

// Parse reads a punch history page and builds its document tree.
func Parse(r io.Reader) (*Document, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Message: "failed to read body", Cause: err}
	}
	return ParseString(string(body))
}

// ParseString builds the document tree for an HTML string. A blank body is
// rejected rather than treated as an empty page.
func ParseString(body string) (*Document, error) {
	if strings.TrimSpace(body) == "" {
		return nil, &ParseError{Message: "empty body"}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, &ParseError{Message: "failed to parse HTML", Cause: err}
	}
	return &Document{raw: body, doc: doc}, nil
}

// HTML returns the body the document was parsed from.
func (d *Document) HTML() string {
	return d.raw
}

func (d *Document) inputValue(selector string) (string, error) {
	input := d.doc.Find(selector).First()
	if input.Length() == 0 {
		return "", &StructureError{Selector: selector, Message: "input not present"}
	}
	value, ok := input.Attr("value")
	if !ok {
		return "", &StructureError{Selector: selector, Message: "input has no value attribute"}
	}
	return strings.TrimSpace(value), nil
}

// Year returns the year echoed back in the page's year input.
func (d *Document) Year() (int, error) {
	value, err := d.inputValue(YearInputSelector)
	if err != nil {
		return 0, err
	}
	if !yearPattern.MatchString(value) {
		return 0, &ValidationError{Field: "year", Value: value, Message: "expected four digits"}
	}
	year, _ := strconv.Atoi(value)
	return year, nil
}

// Month returns the month echoed back in the page's month input, zero-padded
// to two digits.
func (d *Document) Month() (string, error) {
	value, err := d.inputValue(MonthInputSelector)
	if err != nil {
		return "", err
	}
	if !monthPattern.MatchString(value) {
		return "", &ValidationError{Field: "month", Value: value, Message: "expected a month number"}
	}
	month, _ := strconv.Atoi(value)
	if month < 1 || month > 12 {
		return "", &ValidationError{Field: "month", Value: value, Message: "month must be between 1 and 12"}
	}
	return fmt.Sprintf("%02d", month), nil
}

// TimeWorked returns the month's total worked time as rendered ("Nd Nh Nm").
func (d *Document) TimeWorked() (string, error) {
	value, err := d.summaryText(timeWorkedLabel, timeWorkedTextIndex)
	if err != nil {
		return "", err
	}
	if !types.IsWorkedDuration(value) {
		return "", &ValidationError{Field: "time worked", Value: value, Message: `expected "Nd Nh Nm"`}
	}
	return value, nil
}

// WorkDays returns the number of work days in the month, excluding holidays.
func (d *Document) WorkDays() (int, error) {
	value, err := d.summaryText(workDaysLabel, workDaysTextIndex)
	if err != nil {
		return 0, err
	}
	if !workDaysPattern.MatchString(value) {
		return 0, &ValidationError{Field: "work days", Value: value, Message: "expected a whole number"}
	}
	days, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ValidationError{Field: "work days", Value: value, Message: err.Error()}
	}
	return days, nil
}

// Entries returns the punch history table rows in document order. A present
// but empty table yields an empty, non-nil slice.
func (d *Document) Entries() ([]types.PunchEntry, error) {
	table := d.doc.Find(TableSelector).First()
	if table.Length() == 0 {
		return nil, &StructureError{Selector: TableSelector, Message: "punch history table not present"}
	}

	columns := types.Columns()
	entries := make([]types.PunchEntry, 0)
	var rowErr error

	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if isHeaderRow(row) {
			return true
		}
		cells := row.ChildrenFiltered("td, th")
		if cells.Length() < len(columns) {
			rowErr = &StructureError{
				Selector: fmt.Sprintf("%s tr:nth(%d)", TableSelector, i),
				Message:  fmt.Sprintf("row has %d cells, want %d", cells.Length(), len(columns)),
			}
			return false
		}
		entries = append(entries, types.PunchEntry{
			PunchIn:    cellText(cells, 0),
			PunchOut:   cellText(cells, 1),
			TimeLogged: cellText(cells, 2),
			Client:     cellText(cells, 3),
		})
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return entries, nil
}

// Summary extracts every field of the page. Any missing or malformed field
// fails the whole extraction.
func (d *Document) Summary() (*types.PunchHistorySummary, error) {
	year, err := d.Year()
	if err != nil {
		return nil, err
	}
	month, err := d.Month()
	if err != nil {
		return nil, err
	}
	timeWorked, err := d.TimeWorked()
	if err != nil {
		return nil, err
	}
	workDays, err := d.WorkDays()
	if err != nil {
		return nil, err
	}
	entries, err := d.Entries()
	if err != nil {
		return nil, err
	}

	return &types.PunchHistorySummary{
		Year:       year,
		Month:      month,
		TimeWorked: timeWorked,
		WorkDays:   workDays,
		Entries:    entries,
	}, nil
}

// Extract parses body and returns its summary.
func Extract(body string) (*types.PunchHistorySummary, error) {
	doc, err := ParseString(body)
	if err != nil {
		return nil, err
	}
	return doc.Summary()
}

func cellText(cells *goquery.Selection, idx int) string {
	return strings.TrimSpace(cells.Eq(idx).Text())
}

// isHeaderRow reports whether row is the table's column header. The site
// renders the header inside the same table as the data, so the row is
// identified by its markup or its labels rather than by position.
func isHeaderRow(row *goquery.Selection) bool {
	if row.ParentsFiltered("thead").Length() > 0 {
		return true
	}
	if row.ChildrenFiltered("td").Length() == 0 && row.ChildrenFiltered("th").Length() > 0 {
		return true
	}

	cells := row.ChildrenFiltered("td, th")
	columns := types.Columns()
	if cells.Length() != len(columns) {
		return false
	}
	for i, label := range columns {
		if !strings.EqualFold(cellText(cells, i), label) {
			return false
		}
	}
	return true
}
