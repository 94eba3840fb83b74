// Package invoice renders the monthly ENA invoice as a standalone HTML page.
package invoice

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/Tiliavir/enats/internal/ena"
	"github.com/Tiliavir/enats/internal/model"
	"github.com/Tiliavir/enats/internal/timecalc"
)

//go:embed invoice.html.tmpl
var pageSource string

var page = template.Must(template.New("invoice").Parse(pageSource))

// Row classes used by the stylesheet.
const (
	ClassWeekTotal  = "week-total"
	ClassMonthTotal = "month-total"
	ClassBlank      = "blank"
)

const dateLayout = "01/02/06"

// Invoice is the view model of the page.
type Invoice struct {
	Month       string
	Date        string
	Rate        string
	TotalHours  string
	TotalCharge string
	Rows        []Row
	Projects    []ProjectRow
}

// Row is one line of the entries table, already formatted.
type Row struct {
	Class       string
	Date        string
	Project     string
	Activity    string
	Description string
	Hours       string
	Rate        string
	Charge      string
}

// ProjectRow is one line of the per-project table.
type ProjectRow struct {
	Project  string
	Activity string
	Hours    string
}

// Builder formats rows for a given rate and currency.
type Builder struct {
	HourlyRate float64
	Symbol     string
	// Now stamps the invoice date; time.Now when nil.
	Now func() time.Time
}

// FileName returns the invoice file name for a month, e.g.
// "ENA Invoice 2025-04.html".
func FileName(month time.Time) string {
	return fmt.Sprintf("ENA Invoice %s.html", timecalc.FileMonth(month))
}

// Build assembles the invoice of month from the rendered entry rows and the
// project totals.
func (b Builder) Build(month time.Time, rows []model.RenderRow, projects []model.ProjectEntry) Invoice {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	inv := Invoice{
		Month: timecalc.MonthLabel(month),
		Date:  now().Format("January 2, 2006"),
		Rate:  timecalc.FormatRate(b.Symbol, b.HourlyRate),
	}
	for _, r := range rows {
		inv.Rows = append(inv.Rows, b.row(r))
		if r.Kind == model.RowWeekTotal && r.Label == ena.MonthTotalLabel {
			inv.TotalHours = timecalc.FormatHours(r.Hours)
			inv.TotalCharge = timecalc.FormatMoney(b.Symbol, r.Charge)
		}
	}
	for _, p := range projects {
		inv.Projects = append(inv.Projects, ProjectRow{
			Project:  p.ProjectID,
			Activity: p.Activity,
			Hours:    timecalc.FormatHours(p.Hours),
		})
	}
	return inv
}

func (b Builder) row(r model.RenderRow) Row {
	switch r.Kind {
	case model.RowBlank:
		return Row{Class: ClassBlank}
	case model.RowWeekTotal:
		class := ClassWeekTotal
		if r.Label == ena.MonthTotalLabel {
			class = ClassMonthTotal
		}
		return Row{
			Class:       class,
			Date:        r.Label,
			Description: r.Description,
			Hours:       timecalc.FormatHours(r.Hours),
			Charge:      timecalc.FormatMoney(b.Symbol, r.Charge),
		}
	}
	e := r.Entry
	out := Row{
		Project:     e.ProjectID,
		Activity:    e.Activity,
		Description: e.Description,
		Hours:       timecalc.FormatHours(r.Hours),
		Rate:        timecalc.FormatRate(b.Symbol, b.HourlyRate),
		Charge:      timecalc.FormatMoney(b.Symbol, r.Charge),
	}
	if d, ok := e.Date(); ok {
		out.Date = d.Format(dateLayout)
	}
	return out
}

// Render writes the invoice page to w.
func Render(w io.Writer, inv Invoice) error {
	if err := page.Execute(w, inv); err != nil {
		return fmt.Errorf("rendering invoice: %w", err)
	}
	return nil
}
