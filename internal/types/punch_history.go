//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Column labels of the punch history table, in column order.
const (
	ColumnPunchIn    = "Punch In"
	ColumnPunchOut   = "Punch Out"
	ColumnTimeLogged = "Time Logged"
	ColumnClient     = "Client"
)

// Columns returns the punch history column labels in table order.
func Columns() []string {
	return []string{ColumnPunchIn, ColumnPunchOut, ColumnTimeLogged, ColumnClient}
}

// PunchEntry is one row of the punch history table. Values are the trimmed
// cell text exactly as rendered by the site.
type PunchEntry struct {
	PunchIn    string `json:"punch_in"`
	PunchOut   string `json:"punch_out"`
	TimeLogged string `json:"time_logged"`
	Client     string `json:"client"`
}

// Values returns the entry fields in column order.
func (e PunchEntry) Values() []string {
	return []string{e.PunchIn, e.PunchOut, e.TimeLogged, e.Client}
}

// PunchHistorySummary is a month of punch history as echoed by the server.
type PunchHistorySummary struct {
	Year       int          `json:"year" validate:"min=1000,max=9999"`
	Month      string       `json:"month" validate:"len=2,numeric"`
	TimeWorked string       `json:"time_worked" validate:"required"`
	WorkDays   int          `json:"work_days" validate:"min=0"`
	Entries    []PunchEntry `json:"entries"`
}

// Validate validates the PunchHistorySummary using the validator.
func (s *PunchHistorySummary) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return err
	}
	m, _ := strconv.Atoi(s.Month)
	if m < 1 || m > 12 {
		return fmt.Errorf("month %q out of range 01-12", s.Month)
	}
	return nil
}

// Period returns the summary month formatted as YYYY-MM.
func (s *PunchHistorySummary) Period() string {
	return fmt.Sprintf("%04d-%s", s.Year, s.Month)
}

var durationPattern = regexp.MustCompile(`^(\d+)d\s+(\d+)h\s+(\d+)m$`)

// ParseWorkedDuration converts the site's "Nd Nh Nm" rendering into a
// time.Duration. A day counts as 24 hours.
func ParseWorkedDuration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("duration %q does not match \"Nd Nh Nm\"", s)
	}
	var parts [3]int
	for i, raw := range m[1:] {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("duration %q: %w", s, err)
		}
		parts[i] = n
	}
	return time.Duration(parts[0])*24*time.Hour +
		time.Duration(parts[1])*time.Hour +
		time.Duration(parts[2])*time.Minute, nil
}

// IsWorkedDuration reports whether s has the "Nd Nh Nm" shape.
func IsWorkedDuration(s string) bool {
	return durationPattern.MatchString(s)
}

// TimeWorkedDuration converts TimeWorked into a time.Duration.
func (s *PunchHistorySummary) TimeWorkedDuration() (time.Duration, error) {
	return ParseWorkedDuration(s.TimeWorked)
}
