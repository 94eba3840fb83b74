package cell

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Grid is a worksheet read into memory: rows of string cells, 0-based.
// Rows may be ragged; a missing trailing cell reads as "".
type Grid [][]string

// At returns the cell at (row, col), or "" when it is out of range.
func (g Grid) At(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	return At(g[row], col)
}

// At returns row[col], or "" when col is out of range.
func At(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// RowBlank reports whether every cell of row is blank.
func RowBlank(row []string) bool {
	for _, c := range row {
		if !IsBlank(c) {
			return false
		}
	}
	return true
}

// Unquote strips every double quote from s.
func Unquote(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}

// failure formats the per-field message. The trailing space is deliberate:
// messages for one row are concatenated without separators.
func failure(name, kind, raw string) string {
	return fmt.Sprintf("%s is not a %s: %s. ", name, kind, raw)
}

// ParseInt parses an integer cell. Spreadsheets hand back whole numbers as
// "7" or "7.0"; both are accepted.
func ParseInt(name, raw string) (int, string) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n, ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return int(f), ""
	}
	return 0, failure(name, "number", raw)
}

// ParseFloat parses a decimal cell using invariant formatting ("." separator).
func ParseFloat(name, raw string) (float64, string) {
	s := strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, failure(name, "number", raw)
	}
	return f, ""
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"3:04:05PM",
	"3:04PM",
}

// ParseTime parses a time-of-day cell. Two encodings are accepted: the
// spreadsheet fraction-of-a-day numeral (0.5 is noon) and a clock or full
// timestamp string, of which only the clock part is kept.
func ParseTime(name, raw string) (time.Duration, string) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, failure(name, "time", raw)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, failure(name, "time", raw)
		}
		// A serial >= 1 carries a date; the fraction is the clock time.
		_, frac := math.Modf(f)
		secs := math.Round(frac * 24 * 3600)
		return time.Duration(secs) * time.Second, ""
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return clockOf(t), ""
		}
	}
	return ParseXlTime(name, raw)
}

var timestampLayouts = []string{
	time.UnixDate, // "Sun Dec 31 09:30:00 EST 1899"
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
}

// ParseXlTime extracts the clock time from a full timestamp string.
func ParseXlTime(name, raw string) (time.Duration, string) {
	s := strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return clockOf(t), ""
		}
	}
	// Unknown zone abbreviations defeat time.Parse; fall back to the
	// positional form "Sun Dec 31 09:30:00 XYZ 1899".
	if parts := strings.Fields(s); len(parts) == 6 {
		if t, err := time.Parse("15:04:05", parts[3]); err == nil {
			return clockOf(t), ""
		}
	}
	return 0, failure(name, "time", raw)
}

func clockOf(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}
