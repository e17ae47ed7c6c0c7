package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYearMonth(t *testing.T) {
	ym, err := parseYearMonth("2015-03")
	require.NoError(t, err)
	assert.Equal(t, yearMonth{Year: 2015, Month: time.March}, ym)
	assert.Equal(t, "2015-03", ym.String())

	_, err = parseYearMonth("2015-13")
	assert.Error(t, err)
	_, err = parseYearMonth("March 2015")
	assert.Error(t, err)
}

func TestMonthRange(t *testing.T) {
	months, err := monthRange(yearMonth{2014, time.November}, yearMonth{2015, time.February})
	require.NoError(t, err)

	var got []string
	for _, m := range months {
		got = append(got, m.String())
	}
	assert.Equal(t, []string{"2014-11", "2014-12", "2015-01", "2015-02"}, got)
}

func TestMonthRange_SingleMonth(t *testing.T) {
	months, err := monthRange(yearMonth{2015, time.March}, yearMonth{2015, time.March})
	require.NoError(t, err)
	assert.Len(t, months, 1)
}

func TestMonthRange_Reversed(t *testing.T) {
	_, err := monthRange(yearMonth{2015, time.March}, yearMonth{2015, time.January})
	assert.Error(t, err)
}

func TestSync_RequiresDatabase(t *testing.T) {
	isolateEnv(t)

	_, err := executeCommand(t, "sync", "--from", "2015-01", "--to", "2015-02")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestSync_RequiresFrom(t *testing.T) {
	isolateEnv(t)

	_, err := executeCommand(t, "sync")
	assert.Error(t, err)
}
