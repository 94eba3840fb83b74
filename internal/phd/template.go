// Package phd reads the PHD allocation template: one row per client task,
// one column per day of the month, rows grouped by client in blank-line
// separated blocks and closed by a SUM row.
package phd

import (
	"sort"
	"strings"

	"github.com/Tiliavir/enats/internal/cell"
	"github.com/Tiliavir/enats/internal/model"
	"github.com/Tiliavir/enats/internal/timecalc"
)

// Fixed cells of the template layout.
const (
	ColClient      = 0
	ColTask        = 1
	SumSentinel    = "SUM"
	TotalsSentinel = "TOTALS"
	HeaderTask     = "TASK"

	// DefaultDayColOffset puts day 1 in column C.
	DefaultDayColOffset = 1
)

// Options controls template parsing.
type Options struct {
	// DayColOffset is the 0-based column of day 0; day d is in column
	// DayColOffset+d.
	DayColOffset int
	Duplicates   DuplicatePolicy
}

// DefaultOptions returns the standard layout with soft duplicate handling.
func DefaultOptions() Options {
	return Options{DayColOffset: DefaultDayColOffset, Duplicates: DuplicateSoft}
}

// Template is a parsed PHD template for one month.
type Template struct {
	Calendar   timecalc.Calendar
	Options    Options
	Entries    []*model.TemplateEntry
	Duplicates []Duplicate
}

// Parse reads rows up to the SUM row, back-fills clients and checks for
// duplicate client-task pairs. Effort cells are read for every row but the
// header.
func Parse(grid cell.Grid, cal timecalc.Calendar, opts Options) (*Template, error) {
	t := &Template{Calendar: cal, Options: opts}
	for r, row := range grid {
		client := cell.At(row, ColClient)
		if strings.TrimSpace(client) == SumSentinel {
			break
		}
		e := model.NewTemplateEntry(r, client, cell.At(row, ColTask))
		if r > 0 {
			e.SetEffort(t.readEffort(row))
		}
		t.Entries = append(t.Entries, e)
	}

	var err error
	if t.Entries, err = SetProjectCodes(t.Entries); err != nil {
		return nil, err
	}
	if t.Duplicates, err = CheckDuplicateClientTask(t.Entries, opts.Duplicates); err != nil {
		return nil, err
	}
	return t, nil
}

// readEffort collects the non-zero numeric day cells of row. Text and
// formula leftovers that do not parse are ignored.
func (t *Template) readEffort(row []string) map[int]float64 {
	effort := map[int]float64{}
	for d := 1; d <= t.Calendar.LastDay(); d++ {
		raw := cell.At(row, t.DayColumn(d))
		if cell.IsBlank(raw) {
			continue
		}
		if v, msg := cell.ParseFloat("Effort", raw); msg == "" && v != 0 {
			effort[d] = v
		}
	}
	return effort
}

// DayColumn returns the 0-based grid column of day d.
func (t *Template) DayColumn(d int) int {
	return t.Options.DayColOffset + d
}

// ClientTasks returns the client#task keys in template order, without the
// header and blank rows.
func (t *Template) ClientTasks() []string {
	var out []string
	for _, e := range t.Entries {
		if e.Task == HeaderTask || e.IsBlank() {
			continue
		}
		out = append(out, e.ClientHashTask())
	}
	return out
}

// ClientTaskSet returns ClientTasks as a set.
func (t *Template) ClientTaskSet() map[string]struct{} {
	set := map[string]struct{}{}
	for _, k := range t.ClientTasks() {
		set[k] = struct{}{}
	}
	return set
}

// Dropdowns renders ClientTasks one per line.
func (t *Template) Dropdowns() []byte {
	var b strings.Builder
	for _, k := range t.ClientTasks() {
		b.WriteString(k)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// TotalHours sums the effort of every row.
func (t *Template) TotalHours() float64 {
	var sum float64
	for _, e := range t.Entries {
		sum += e.TotalHours()
	}
	return sum
}

// CellWrite is one effort cell to set or clear, in 0-based grid coordinates.
type CellWrite struct {
	Row   int
	Col   int
	Value float64
	Clear bool
}

// EffortCells lists the cell writes that materialize the effort maps: every
// day of the month is cleared and then set from the map. The header row is
// never cleared.
func (t *Template) EffortCells() []CellWrite {
	var out []CellWrite
	last := t.Calendar.LastDay()
	for _, e := range t.Entries {
		if e.RowNum > 0 {
			for d := 1; d <= last; d++ {
				if _, ok := e.Effort[d]; !ok {
					out = append(out, CellWrite{Row: e.RowNum, Col: t.DayColumn(d), Clear: true})
				}
			}
		}
		for _, d := range e.Days() {
			out = append(out, CellWrite{Row: e.RowNum, Col: t.DayColumn(d), Value: e.Effort[d]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// Anchors locates the cells holding the sheet's own totals.
type Anchors struct {
	// TotalsCol is the column whose header (row 0) is TOTALS.
	TotalsCol int
	// SumRow is the row whose first cell is SUM. The month total is on the
	// row below.
	SumRow int
}

// FindAnchors locates TOTALS in row 0 and SUM in column 0.
func FindAnchors(grid cell.Grid) (Anchors, error) {
	a := Anchors{TotalsCol: -1, SumRow: -1}
	if len(grid) > 0 {
		for c, v := range grid[0] {
			if strings.TrimSpace(v) == TotalsSentinel {
				a.TotalsCol = c
				break
			}
		}
	}
	if a.TotalsCol < 0 {
		return a, &StructuralError{Msg: "TOTALS column not found"}
	}
	for r := range grid {
		if strings.TrimSpace(grid.At(r, ColClient)) == SumSentinel {
			a.SumRow = r
			break
		}
	}
	if a.SumRow < 0 {
		return a, &StructuralError{Msg: "SUM row not found"}
	}
	return a, nil
}
