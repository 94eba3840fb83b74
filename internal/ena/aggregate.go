package ena

import (
	"sort"
	"strings"

	"github.com/Tiliavir/enats/internal/model"
)

// Labels of the synthesized total rows.
const (
	WeekTotalLabel        = "Total hours: "
	WeekTotalDescription  = "Total for week:"
	MonthTotalLabel       = "Monthly hours:"
	MonthTotalDescription = "Total consulting fees for month:"
	ProjectTotalLabel     = "Total hours:"
)

// SortAndReindex stable-sorts entries by SortKey and numbers them 0, 1, 2...
// in that order.
func SortAndReindex(entries []*model.TimeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SortKey() < entries[j].SortKey()
	})
	for i, e := range entries {
		e.EntryID = i
	}
}

type weekSummary struct {
	hours  float64
	charge float64
	maxID  int
}

// weekOf groups entries without a usable day under week 0.
func weekOf(e *model.TimeEntry) int {
	w, ok := e.Week()
	if !ok {
		return 0
	}
	return w
}

// WeeklyTotals synthesizes, for each week in ascending order, a total row and
// two spacer rows placed right after the week's last entry, then a month
// total and a spacer after the last entry overall. Entries must have been
// reindexed. An empty month still gets its zero month total.
func WeeklyTotals(entries []*model.TimeEntry) []model.RenderRow {
	byWeek := map[int]*weekSummary{}
	for _, e := range entries {
		w := weekOf(e)
		s, ok := byWeek[w]
		if !ok {
			s = &weekSummary{maxID: e.EntryID}
			byWeek[w] = s
		}
		s.hours += e.HoursOrZero()
		s.charge += e.ChargeOrZero()
		if e.EntryID > s.maxID {
			s.maxID = e.EntryID
		}
	}

	weeks := make([]int, 0, len(byWeek))
	for w := range byWeek {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	var rows []model.RenderRow
	var monthHours, monthCharge float64
	monthMax := 0
	if len(entries) > 0 {
		monthMax = entries[0].EntryID
	}
	for _, w := range weeks {
		s := byWeek[w]
		rows = append(rows,
			model.RenderRow{
				Kind:        model.RowWeekTotal,
				Order:       model.Order{Pos: s.maxID, Sub: 1},
				Label:       WeekTotalLabel,
				Description: WeekTotalDescription,
				Week:        w,
				Hours:       s.hours,
				Charge:      s.charge,
			},
			model.RenderRow{Kind: model.RowBlank, Order: model.Order{Pos: s.maxID, Sub: 2}, Week: w},
			model.RenderRow{Kind: model.RowBlank, Order: model.Order{Pos: s.maxID, Sub: 3}, Week: w},
		)
		monthHours += s.hours
		monthCharge += s.charge
		if s.maxID > monthMax {
			monthMax = s.maxID
		}
	}
	rows = append(rows,
		model.RenderRow{
			Kind:        model.RowWeekTotal,
			Order:       model.Order{Pos: monthMax, Sub: 4},
			Label:       MonthTotalLabel,
			Description: MonthTotalDescription,
			Hours:       monthHours,
			Charge:      monthCharge,
		},
		model.RenderRow{Kind: model.RowBlank, Order: model.Order{Pos: monthMax, Sub: 5}},
	)
	return rows
}

// EntriesWithTotals merges the entries with their weekly totals in display
// order.
func EntriesWithTotals(entries []*model.TimeEntry) []model.RenderRow {
	rows := make([]model.RenderRow, 0, len(entries)+8)
	for _, e := range entries {
		rows = append(rows, model.EntryRow(e))
	}
	rows = append(rows, WeeklyTotals(entries)...)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Order.Less(rows[j].Order)
	})
	return rows
}

// ProjectEntries sums hours per project#activity key, ordered by key, and
// appends a "Total hours:" row.
func ProjectEntries(entries []*model.TimeEntry) []model.ProjectEntry {
	byKey := map[string]*model.ProjectEntry{}
	var total float64
	for _, e := range entries {
		key := e.ProjectActivity()
		p, ok := byKey[key]
		if !ok {
			p = &model.ProjectEntry{ProjectID: e.ProjectID, Activity: e.Activity}
			byKey[key] = p
		}
		p.Hours += e.HoursOrZero()
		total += e.HoursOrZero()
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]model.ProjectEntry, 0, len(keys)+1)
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return append(out, model.ProjectEntry{ProjectID: ProjectTotalLabel, Hours: total, Total: true})
}

// TotalHours sums the hours of all entries.
func TotalHours(entries []*model.TimeEntry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.HoursOrZero()
	}
	return sum
}

// TotalCharge sums the charges of all entries.
func TotalCharge(entries []*model.TimeEntry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.ChargeOrZero()
	}
	return sum
}

// HoursByKeyByDay sums hours per project#activity key and day. Entries
// without a day are skipped.
func HoursByKeyByDay(entries []*model.TimeEntry) map[string]map[int]float64 {
	out := map[string]map[int]float64{}
	for _, e := range entries {
		if e.Day == nil {
			continue
		}
		key := e.ProjectActivity()
		days, ok := out[key]
		if !ok {
			days = map[int]float64{}
			out[key] = days
		}
		days[*e.Day] += e.HoursOrZero()
	}
	return out
}

// Annotations returns the error cell content of every entry, keyed by source
// row. Valid entries get empty text so stale messages are cleared.
func Annotations(entries []*model.TimeEntry) []model.Annotation {
	out := make([]model.Annotation, 0, len(entries))
	for _, e := range entries {
		text := ""
		if !e.Valid() {
			text = strings.TrimSpace(e.Error)
		}
		out = append(out, model.Annotation{Row: e.LineID, Text: text})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Row < out[j].Row })
	return out
}

// Invalid returns the entries with problems found in this run.
func Invalid(entries []*model.TimeEntry) []*model.TimeEntry {
	var out []*model.TimeEntry
	for _, e := range entries {
		if !e.Valid() {
			out = append(out, e)
		}
	}
	return out
}

// ReplaceKeys rewrites the key of every entry whose key is in fixes and
// returns the rewritten entries in source order.
func ReplaceKeys(entries []*model.TimeEntry, fixes map[string]string) []*model.TimeEntry {
	var changed []*model.TimeEntry
	for _, e := range entries {
		to, ok := fixes[e.ProjectActivity()]
		if !ok {
			continue
		}
		if err := e.SetKey(to); err != nil {
			continue
		}
		changed = append(changed, e)
	}
	sort.SliceStable(changed, func(i, j int) bool { return changed[i].LineID < changed[j].LineID })
	return changed
}
