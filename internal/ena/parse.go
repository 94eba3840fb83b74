// Package ena turns ENA timesheet rows into time entries and aggregates
// them into the weekly, monthly and per-project views of an invoice.
package ena

import (
	"fmt"
	"strings"

	"github.com/Tiliavir/enats/internal/cell"
	"github.com/Tiliavir/enats/internal/model"
	"github.com/Tiliavir/enats/internal/timecalc"
)

// Column positions of a timesheet row.
const (
	ColKey = iota
	ColDay
	ColStart
	ColEnd
	ColHours
	ColDescription
	ColError
)

// DefaultHourlyRate is the billing rate used when none is configured.
const DefaultHourlyRate = 60.0

// Parser builds time entries for one month.
type Parser struct {
	Calendar   timecalc.Calendar
	HourlyRate float64
	// ErrorColumn holds error text carried over from a previous run.
	ErrorColumn int
}

// NewParser returns a parser with the default rate and error column.
func NewParser(cal timecalc.Calendar) Parser {
	return Parser{Calendar: cal, HourlyRate: DefaultHourlyRate, ErrorColumn: ColError}
}

// Parse builds an entry for every non-blank row after the header row.
func (p Parser) Parse(grid cell.Grid) []*model.TimeEntry {
	var entries []*model.TimeEntry
	for i := 1; i < len(grid); i++ {
		if cell.RowBlank(grid[i]) {
			continue
		}
		entries = append(entries, p.NewEntry(i, grid[i]))
	}
	return entries
}

// NewEntry parses one row. Every column is attempted; failures are recorded
// on the entry and never stop the parse.
func (p Parser) NewEntry(lineID int, row []string) *model.TimeEntry {
	e := model.NewTimeEntry(lineID, p.Calendar)
	if carried := strings.TrimSpace(cell.At(row, p.ErrorColumn)); carried != "" {
		e.Error = carried + " "
	}

	key := cell.At(row, ColKey)
	if project, activity, ok := model.SplitKey(key); ok {
		e.ProjectID, e.Activity = project, activity
	} else {
		e.AddError(fmt.Sprintf("ProjectActivity must be in the form 'ProjectID#Activity', but was '%s'. ", key))
	}

	rawDay := cell.At(row, ColDay)
	if day, msg := cell.ParseInt("Day", rawDay); msg != "" {
		e.AddError(msg)
	} else if !p.Calendar.Contains(day) {
		e.AddError(fmt.Sprintf("Day is not a day of month: %s. ", rawDay))
	} else {
		e.Day = &day
	}

	if start, msg := cell.ParseTime("Start", cell.At(row, ColStart)); msg != "" {
		e.AddError(msg)
	} else {
		e.Start = &start
	}
	if end, msg := cell.ParseTime("End", cell.At(row, ColEnd)); msg != "" {
		e.AddError(msg)
	} else {
		e.End = &end
	}

	if hours, msg := cell.ParseFloat("Hours", cell.At(row, ColHours)); msg != "" {
		e.AddError(msg)
	} else {
		e.Hours = &hours
		charge := hours * p.HourlyRate
		e.Charge = &charge
	}

	e.Description = strings.TrimSpace(cell.At(row, ColDescription))
	if e.Description == "" {
		e.AddError("Description must be non-empty. ")
	}
	return e
}
