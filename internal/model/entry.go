package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/enats/internal/cell"
	"github.com/Tiliavir/enats/internal/timecalc"
)

// TimeEntry is one row of the ENA timesheet.
type TimeEntry struct {
	// LineID is the 0-based source row. It never changes.
	LineID int
	// EntryID is the display position assigned by sorting.
	EntryID     int
	ProjectID   string
	Activity    string
	Day         *int
	Start       *time.Duration
	End         *time.Duration
	Hours       *float64
	Charge      *float64
	Description string
	// Error holds the space-joined problem messages, including any text
	// carried over from a previous run.
	Error string
	// Failures counts the problems found in this run. Carried error text
	// does not count.
	Failures int

	cal timecalc.Calendar
}

// NewTimeEntry returns an empty entry for row lineID of the month cal.
func NewTimeEntry(lineID int, cal timecalc.Calendar) *TimeEntry {
	return &TimeEntry{LineID: lineID, EntryID: lineID, cal: cal}
}

// Calendar returns the month the entry belongs to.
func (e *TimeEntry) Calendar() timecalc.Calendar {
	return e.cal
}

// ProjectActivity is the canonical "project#activity" matching key.
func (e *TimeEntry) ProjectActivity() string {
	return JoinKey(e.ProjectID, e.Activity)
}

// SortKey orders entries by day, then project. The day is zero-padded so
// the comparison can be done on strings.
func (e *TimeEntry) SortKey() string {
	day := 0
	if e.Day != nil {
		day = *e.Day
	}
	return fmt.Sprintf("%05d%s", day, e.ProjectID)
}

// Week returns the Monday-aligned week of the entry's day. The second result
// is false when the day is unknown or outside the month.
func (e *TimeEntry) Week() (int, bool) {
	if e.Day == nil {
		return 0, false
	}
	return e.cal.WeekOfDay(*e.Day)
}

// Date returns the calendar date of the entry, if its day is known.
func (e *TimeEntry) Date() (time.Time, bool) {
	if e.Day == nil || !e.cal.Contains(*e.Day) {
		return time.Time{}, false
	}
	return e.cal.Date(*e.Day), true
}

// Valid reports whether this run found no problems with the entry.
func (e *TimeEntry) Valid() bool {
	return e.Failures == 0
}

// AddError records a problem. A message already present in Error (for
// example carried from a previous run) is not repeated.
func (e *TimeEntry) AddError(msg string) {
	e.Failures++
	if strings.Contains(e.Error, msg) {
		return
	}
	e.Error += msg
}

// SetKey replaces project and activity from a "project#activity" key.
func (e *TimeEntry) SetKey(key string) error {
	p, a, ok := SplitKey(key)
	if !ok {
		return fmt.Errorf("key %q is not in the form 'ProjectID#Activity'", key)
	}
	e.ProjectID, e.Activity = p, a
	return nil
}

// HoursOrZero returns Hours, or 0 when it was not parsed.
func (e *TimeEntry) HoursOrZero() float64 {
	if e.Hours == nil {
		return 0
	}
	return *e.Hours
}

// ChargeOrZero returns Charge, or 0 when it was not computed.
func (e *TimeEntry) ChargeOrZero() float64 {
	if e.Charge == nil {
		return 0
	}
	return *e.Charge
}

// JoinKey builds a "project#activity" key; quotes are dropped from both parts.
func JoinKey(project, activity string) string {
	return cell.Unquote(project) + "#" + cell.Unquote(activity)
}

// SplitKey splits a "project#activity" cell. It fails unless there is
// exactly one '#'. The parts are kept as written, so stray spaces make the
// key unknown to the template.
func SplitKey(key string) (string, string, bool) {
	parts := strings.Split(key, "#")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ProjectEntry is the hour total of one project#activity key.
type ProjectEntry struct {
	ProjectID string  `json:"project_id"`
	Activity  string  `json:"activity"`
	Hours     float64 `json:"hours"`
	// Total marks the trailing "Total hours:" row.
	Total bool `json:"total,omitempty"`
}

// Key returns the project#activity key of the row.
func (p ProjectEntry) Key() string {
	return JoinKey(p.ProjectID, p.Activity)
}

// Annotation is error text destined for one row of a sheet.
type Annotation struct {
	Row  int
	Text string
}
