package timecalc_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/enats/internal/timecalc"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekOfMonth(t *testing.T) {
	tests := []struct {
		name   string
		anchor time.Time
		probe  time.Time
		want   int
		wantOK bool
	}{
		// April 2025 starts on a Tuesday.
		{"apr first", date(2025, 4, 1), date(2025, 4, 1), 1, true},
		{"apr first sunday", date(2025, 4, 1), date(2025, 4, 6), 1, true},
		{"apr first monday", date(2025, 4, 1), date(2025, 4, 7), 2, true},
		{"apr last", date(2025, 4, 1), date(2025, 4, 28), 5, true},
		{"apr 30", date(2025, 4, 1), date(2025, 4, 30), 5, true},
		{"before month", date(2025, 4, 1), date(2025, 3, 31), 0, false},
		{"after month", date(2025, 4, 1), date(2025, 5, 1), 0, false},
		{"other year", date(2025, 4, 1), date(2024, 4, 7), 0, false},
		// January 2024 starts on a Monday: the 1st does not open a second week.
		{"jan 1", date(2024, 1, 1), date(2024, 1, 1), 1, true},
		{"jan 7", date(2024, 1, 1), date(2024, 1, 7), 1, true},
		{"jan 8", date(2024, 1, 1), date(2024, 1, 8), 2, true},
		{"jan 29", date(2024, 1, 1), date(2024, 1, 29), 5, true},
		{"feb 5", date(2024, 2, 1), date(2024, 2, 5), 2, true},
		{"feb 29", date(2024, 2, 1), date(2024, 2, 29), 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := timecalc.NewCalendar(tt.anchor).WeekOfMonth(tt.probe)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeekOfDay(t *testing.T) {
	cal := timecalc.NewCalendar(date(2025, 4, 1))
	w, ok := cal.WeekOfDay(7)
	assert.True(t, ok)
	assert.Equal(t, 2, w)

	_, ok = cal.WeekOfDay(31)
	assert.False(t, ok)
	_, ok = cal.WeekOfDay(0)
	assert.False(t, ok)
}

func TestParseYearMonth(t *testing.T) {
	got, err := timecalc.ParseYearMonth("202504")
	require.NoError(t, err)
	assert.Equal(t, date(2025, 4, 1), got)

	for _, bad := range []string{"", "2025", "2025-04", "202513", "20250", "abcd04", "202500"} {
		_, err := timecalc.ParseYearMonth(bad)
		assert.Error(t, err, "ParseYearMonth(%q)", bad)
	}
}

func TestLastDay(t *testing.T) {
	tests := []struct {
		month string
		want  int
	}{
		{"202401", 31},
		{"202402", 29},
		{"202302", 28},
		{"202504", 30},
	}
	for _, tt := range tests {
		first, err := timecalc.ParseYearMonth(tt.month)
		require.NoError(t, err)
		assert.Equal(t, tt.want, timecalc.NewCalendar(first).LastDay(), tt.month)
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "0"},
		{0.5, "0.5"},
		{8, "8"},
		{1.25, "1.25"},
		{1.255, "1.26"},
		{0.1 + 0.2, "0.3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, timecalc.FormatHours(tt.hours), "FormatHours(%v)", tt.hours)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$30.00", timecalc.FormatMoney("$", 30))
	assert.Equal(t, "$1234.50", timecalc.FormatMoney("$", 1234.5))
	assert.Equal(t, "€0.00", timecalc.FormatMoney("€", 0))
	assert.Equal(t, "$60/hr", timecalc.FormatRate("$", 60))
	assert.Equal(t, "$62.5/hr", timecalc.FormatRate("$", 62.5))
}

func TestLabels(t *testing.T) {
	m := date(2025, 4, 1)
	assert.Equal(t, "April 2025", timecalc.MonthLabel(m))
	assert.Equal(t, "2025-04", timecalc.FileMonth(m))
	assert.Equal(t, "202504", timecalc.YearMonth(m))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:30", timecalc.FormatClock(9*time.Hour+30*time.Minute))
	assert.Equal(t, "11:00", timecalc.FormatClock(11*time.Hour-time.Second))
}
