package timecalc

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Calendar numbers the weeks of one month. Week 1 runs from the 1st through
// the first Sunday; every following Monday starts a new week.
type Calendar struct {
	year  int
	month time.Month
}

// NewCalendar returns the calendar for the month containing anchor.
func NewCalendar(anchor time.Time) Calendar {
	return Calendar{year: anchor.Year(), month: anchor.Month()}
}

// First returns the 1st of the calendar's month at 00:00 UTC.
func (c Calendar) First() time.Time {
	return time.Date(c.year, c.month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns the number of days in the calendar's month.
func (c Calendar) LastDay() int {
	return c.First().AddDate(0, 1, -1).Day()
}

// Contains reports whether day is a valid day of the month.
func (c Calendar) Contains(day int) bool {
	return day >= 1 && day <= c.LastDay()
}

// Date returns the date of the given day of the month.
func (c Calendar) Date(day int) time.Time {
	return time.Date(c.year, c.month, day, 0, 0, 0, 0, time.UTC)
}

// WeekOfMonth returns the Monday-aligned week number of t. The second result
// is false when t is not inside the calendar's month.
func (c Calendar) WeekOfMonth(t time.Time) (int, bool) {
	if t.Year() != c.year || t.Month() != c.month {
		return 0, false
	}
	week := 1
	for d := 2; d <= t.Day(); d++ {
		if c.Date(d).Weekday() == time.Monday {
			week++
		}
	}
	return week, true
}

// WeekOfDay is WeekOfMonth for a day number of the calendar's month.
func (c Calendar) WeekOfDay(day int) (int, bool) {
	if !c.Contains(day) {
		return 0, false
	}
	return c.WeekOfMonth(c.Date(day))
}

// ParseYearMonth parses "yyyyMM" into the 1st of that month, UTC.
func ParseYearMonth(s string) (time.Time, error) {
	if len(s) != 6 {
		return time.Time{}, fmt.Errorf("month %q must be in the form yyyyMM", s)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("month %q: invalid year: %w", s, err)
	}
	month, err := strconv.Atoi(s[4:])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month %q: invalid month", s)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// YearMonth formats t as "yyyyMM".
func YearMonth(t time.Time) string {
	return t.Format("200601")
}

// MonthLabel returns a label like "April 2025".
func MonthLabel(t time.Time) string {
	return t.Format("January 2006")
}

// FileMonth returns a label like "2025-04", used in output file names.
func FileMonth(t time.Time) string {
	return t.Format("2006-01")
}

// FormatHours renders hours with at most two decimals and no trailing zeros,
// e.g. 0.5 -> "0.5", 8 -> "8", 1.255 -> "1.26".
func FormatHours(h float64) string {
	return decimal.NewFromFloat(h).Round(2).String()
}

// FormatMoney renders an amount with exactly two decimals prefixed by symbol,
// e.g. 30 -> "$30.00".
func FormatMoney(symbol string, amount float64) string {
	return symbol + decimal.NewFromFloat(amount).StringFixed(2)
}

// FormatRate renders an hourly rate like "$60/hr".
func FormatRate(symbol string, rate float64) string {
	return symbol + decimal.NewFromFloat(rate).Round(2).String() + "/hr"
}

// FormatClock renders a time-of-day as HH:MM.
func FormatClock(d time.Duration) string {
	secs := int64(d.Round(time.Minute) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/3600, (secs%3600)/60)
}
