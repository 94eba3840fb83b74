package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/enats/internal/model"
	"github.com/Tiliavir/enats/internal/reconcile"
	"github.com/Tiliavir/enats/internal/timecalc"
)

// Entries renders the entries-with-totals view. Total rows are bold and
// spacer rows stay empty.
func Entries(rows []model.RenderRow, symbol string) string {
	headers := []string{"Date", "Project", "Activity", "Start", "End", "Hours", "Charge", "Description"}
	var out [][]string
	for _, r := range rows {
		switch r.Kind {
		case model.RowBlank:
			out = append(out, nil)
		case model.RowWeekTotal:
			out = append(out, []string{
				styleBold.Render(strings.TrimSpace(r.Label)), "", "", "", "",
				styleBold.Render(timecalc.FormatHours(r.Hours)),
				styleBold.Render(timecalc.FormatMoney(symbol, r.Charge)),
				styleDim.Render(r.Description),
			})
		default:
			out = append(out, entryCells(r, symbol))
		}
	}
	return RenderTable(headers, out)
}

func entryCells(r model.RenderRow, symbol string) []string {
	e := r.Entry
	date := ""
	if d, ok := e.Date(); ok {
		date = d.Format("Mon 01/02")
	}
	return []string{
		date,
		e.ProjectID,
		e.Activity,
		clockCell(e.Start),
		clockCell(e.End),
		timecalc.FormatHours(r.Hours),
		timecalc.FormatMoney(symbol, r.Charge),
		e.Description,
	}
}

func clockCell(d *time.Duration) string {
	if d == nil {
		return ""
	}
	return timecalc.FormatClock(*d)
}

// Projects renders hours per project#activity with the total row in bold.
func Projects(projects []model.ProjectEntry) string {
	headers := []string{"Project", "Activity", "Hours"}
	out := make([][]string, 0, len(projects))
	for _, p := range projects {
		if p.Total {
			out = append(out, []string{
				styleBold.Render(p.ProjectID), "", styleBold.Render(timecalc.FormatHours(p.Hours)),
			})
			continue
		}
		out = append(out, []string{p.ProjectID, p.Activity, timecalc.FormatHours(p.Hours)})
	}
	return RenderTable(headers, out)
}

// Problems renders one line per timesheet row that failed validation. Rows
// are shown 1-based as in a spreadsheet.
func Problems(problems []reconcile.Problem) string {
	if len(problems) == 0 {
		return styleGreen.Render("All entries are valid.") + "\n"
	}
	headers := []string{"Row", "Key", "Suggestion", "Problem"}
	out := make([][]string, 0, len(problems))
	for _, p := range problems {
		out = append(out, []string{
			fmt.Sprint(p.Row + 1),
			styleRed.Render(p.Key),
			p.Suggestion,
			p.Message,
		})
	}
	return RenderTable(headers, out)
}

// Suggestions renders an invalid key -> suggested key map sorted by key.
func Suggestions(fixes map[string]string) string {
	keys := make([]string, 0, len(fixes))
	for k := range fixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, []string{k, "→", fixes[k]})
	}
	return RenderTable([]string{"Invalid", "", "Suggested"}, out)
}

// Summary is the one-line outcome of a run.
func Summary(month string, hours, charge float64, symbol string) string {
	return fmt.Sprintf("%s  %s hours  %s",
		styleHeader.Render(month),
		styleBold.Render(timecalc.FormatHours(hours)),
		styleBold.Render(timecalc.FormatMoney(symbol, charge)))
}
