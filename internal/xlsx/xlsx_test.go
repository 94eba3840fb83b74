package xlsx_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/enats/internal/cell"
	"github.com/Tiliavir/enats/internal/model"
	"github.com/Tiliavir/enats/internal/phd"
	"github.com/Tiliavir/enats/internal/reconcile"
	"github.com/Tiliavir/enats/internal/timecalc"
	"github.com/Tiliavir/enats/internal/xlsx"
)

var april = timecalc.NewCalendar(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

const totalsCol = 32

func row(client, task string, effort map[int]float64) []string {
	r := make([]string, totalsCol+1)
	r[0], r[1] = client, task
	for d, h := range effort {
		r[phd.DefaultDayColOffset+d] = fmt.Sprint(h)
	}
	return r
}

// template builds an April template whose SUM row and the row below hold
// the given totals. Entries occupy spreadsheet rows 2 to 8.
func template(sum, month string) cell.Grid {
	header := row("CLIENT", "TASK", nil)
	for d := 1; d <= 30; d++ {
		header[phd.DefaultDayColOffset+d] = fmt.Sprint(d)
	}
	header[totalsCol] = "TOTALS"
	sumRow := row("SUM", "", nil)
	sumRow[totalsCol] = sum
	monthRow := row("", "", nil)
	monthRow[totalsCol] = month
	return cell.Grid{
		header,
		row("2305", "Pricing", map[int]float64{1: 2}),
		row("", "Planning", map[int]float64{2: 1.5}),
		row("", "", nil),
		row("1100", "Review", nil),
		row("", "", nil),
		row("", "", nil),
		row("", "", nil),
		sumRow,
		monthRow,
	}
}

func open(t *testing.T, grid cell.Grid) *xlsx.Workbook {
	t.Helper()
	w, err := xlsx.FromGrid(grid)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestGridReadsRawValues(t *testing.T) {
	w := open(t, cell.Grid{
		{"ProjectActivity", "Day", "Start"},
		{"2305#Pricing", "7", "0.375"},
	})
	grid, err := w.Grid()
	require.NoError(t, err)
	assert.Equal(t, "2305#Pricing", grid.At(1, 0))
	assert.Equal(t, "7", grid.At(1, 1))
	assert.Equal(t, "0.375", grid.At(1, 2))
}

func TestApplyEffortAndCheckFormulaTotals(t *testing.T) {
	w := open(t, template("=SUM(C2:AF8)", "=SUM(C2:AF8)"))
	grid, err := w.Grid()
	require.NoError(t, err)

	tmpl, err := phd.Parse(grid, april, phd.DefaultOptions())
	require.NoError(t, err)
	tmpl.Entries[1].SetEffort(map[int]float64{3: 4})
	require.NoError(t, w.ApplyEffort(tmpl.EffortCells()))

	// Row 2 lost day 1 and gained day 3; row 3 keeps its 1.5.
	v, err := w.Value(1, phd.DefaultDayColOffset+1)
	require.NoError(t, err)
	assert.Empty(t, v)
	v, err = w.Value(1, phd.DefaultDayColOffset+3)
	require.NoError(t, err)
	assert.Equal(t, "4", v)

	assert.NoError(t, w.CheckOverallHours(5.5))

	err = w.CheckOverallHours(6)
	var mismatch *reconcile.MismatchError
	require.True(t, errors.As(err, &mismatch), "got %v", err)
	assert.Equal(t, "SUM", mismatch.Where)
	assert.Equal(t, 6.0, mismatch.TimesheetHours)
	assert.Equal(t, 5.5, mismatch.TemplateHours)
}

func TestCheckOverallHoursLiteralTotals(t *testing.T) {
	tests := []struct {
		name      string
		sum       string
		month     string
		total     float64
		where     string
		wantError bool
	}{
		{name: "both agree", sum: "3.5", month: "3.5", total: 3.5},
		{name: "sum row differs", sum: "3", month: "3.5", total: 3.5, where: "SUM", wantError: true},
		{name: "month row differs", sum: "3.5", month: "2", total: 3.5, where: "SUM+1", wantError: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := open(t, template(tt.sum, tt.month))
			err := w.CheckOverallHours(tt.total)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			var mismatch *reconcile.MismatchError
			require.True(t, errors.As(err, &mismatch), "got %v", err)
			assert.Equal(t, tt.where, mismatch.Where)
		})
	}
}

func TestCheckOverallHoursStructural(t *testing.T) {
	tests := []struct {
		name string
		grid cell.Grid
	}{
		{name: "empty SUM cell", grid: template("", "3.5")},
		{name: "no SUM row", grid: template("3.5", "3.5")[:8]},
		{name: "text total", grid: template("n/a", "3.5")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := open(t, tt.grid)
			err := w.CheckOverallHours(3.5)
			var structural *phd.StructuralError
			assert.True(t, errors.As(err, &structural), "got %v", err)
		})
	}
}

func TestAnnotate(t *testing.T) {
	w := open(t, cell.Grid{
		{"ProjectActivity", "Day", "Start", "End", "Hours", "Description", "Error"},
		{"bad", "1", "", "", "1", "x"},
		{"2305#Pricing", "1", "", "", "1", "x", "old message"},
		{"2305#Pricing", "2", "", "", "1", "y"},
	})
	require.NoError(t, w.Annotate(6, []model.Annotation{
		{Row: 1, Text: "Invalid project#activity."},
		{Row: 2, Text: ""},
		{Row: 3, Text: ""},
	}))

	grid, err := w.Grid()
	require.NoError(t, err)
	assert.Equal(t, "Invalid project#activity.", grid.At(1, 6))
	assert.Empty(t, grid.At(2, 6))
	assert.Empty(t, grid.At(3, 6))
}

func TestSaveAndOpen(t *testing.T) {
	w := open(t, template("3.5", "3.5"))
	require.NoError(t, w.SetText(1, 1, "Pricing (dup)"))

	path := filepath.Join(t.TempDir(), "out", "PHD ENA Timesheet 2025-04.xlsx")
	require.NoError(t, w.Save(path))

	again, err := xlsx.Open(path)
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, w.Sheet(), again.Sheet())

	grid, err := again.Grid()
	require.NoError(t, err)
	assert.Equal(t, "Pricing (dup)", grid.At(1, 1))
	assert.Equal(t, "TOTALS", grid.At(0, totalsCol))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := xlsx.Open(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
