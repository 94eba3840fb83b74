package reconcile_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/enats/internal/cell"
	"github.com/Tiliavir/enats/internal/ena"
	"github.com/Tiliavir/enats/internal/match"
	"github.com/Tiliavir/enats/internal/model"
	"github.com/Tiliavir/enats/internal/reconcile"
	"github.com/Tiliavir/enats/internal/timecalc"
)

var april = timecalc.NewCalendar(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

func timesheet(rows ...[]string) []*model.TimeEntry {
	grid := cell.Grid{{"Project#Activity", "Day", "Start", "End", "Hours", "Description"}}
	grid = append(grid, rows...)
	entries := ena.NewParser(april).Parse(grid)
	ena.SortAndReindex(entries)
	return entries
}

func tsRow(key string, day int, hours float64) []string {
	return []string{key, fmt.Sprint(day), "0.375", "0.5", fmt.Sprint(hours), "work"}
}

func set(keys ...string) map[string]struct{} {
	s := map[string]struct{}{}
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func templateRows() []*model.TemplateEntry {
	header := model.NewTemplateEntry(0, "CLIENT", "TASK")
	pricing := model.NewTemplateEntry(1, "2305", "Pricing")
	pricing.SetEffort(map[int]float64{1: 8, 2: 8})
	audit := model.NewTemplateEntry(2, "1100", "Audit")
	return []*model.TemplateEntry{header, pricing, audit}
}

func TestUpdateMergesAndReplacesEffort(t *testing.T) {
	rows := templateRows()
	entries := timesheet(
		tsRow("2305#Pricing", 7, 0.5),
		tsRow("2305#Pricing", 7, 1),
		tsRow("1100#Audit", 8, 2),
	)
	res, err := reconcile.Reconciler{}.Update(rows, entries, set("2305#Pricing", "1100#Audit"))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Problems)
	assert.InDelta(t, 3.5, res.TimesheetHours, 1e-9)
	assert.InDelta(t, 3.5, res.TemplateHours, 1e-9)

	assert.Equal(t, map[int]float64{7: 1.5}, rows[1].Effort, "stale days 1 and 2 are gone")
	assert.Equal(t, map[int]float64{8: 2}, rows[2].Effort)
	assert.Empty(t, rows[0].Effort)
}

func TestUpdateInvalidKeySuggestsAndDoesNotMerge(t *testing.T) {
	rows := templateRows()
	entries := timesheet(tsRow("9999#Unknown", 3, 1), tsRow("2305#Pricing", 4, 1))
	res, err := reconcile.Reconciler{}.Update(rows, entries, set("2305#Pricing"))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Problems, 1)

	p := res.Problems[0]
	assert.Equal(t, "9999#Unknown", p.Key)
	assert.Equal(t, "2305#Pricing", p.Suggestion)
	assert.Equal(t, 1, p.Row)
	assert.Contains(t, entries[0].Error, "Did you mean '2305#Pricing'")
	assert.True(t, entries[1].Valid())

	assert.Equal(t, map[int]float64{1: 8, 2: 8}, rows[1].Effort, "no merge on invalid input")
}

func TestUpdateChecksEveryEntry(t *testing.T) {
	entries := timesheet(tsRow("a#b", 1, 1), tsRow("c#d", 2, 1), tsRow("2305#Pricing", 3, 1))
	res, err := reconcile.Reconciler{}.Update(templateRows(), entries, set("2305#Pricing"))
	require.NoError(t, err)
	assert.Len(t, res.Problems, 2)
}

func TestUpdateReportsFieldErrors(t *testing.T) {
	entries := timesheet([]string{"2305#Pricing", "x", "0.375", "0.5", "1", "work"})
	res, err := reconcile.Reconciler{}.Update(templateRows(), entries, set("2305#Pricing"))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Problems, 1)
	assert.Equal(t, "Day is not a number: x.", res.Problems[0].Message)
	assert.Empty(t, res.Problems[0].Suggestion)
}

func TestUpdateTotalsMismatch(t *testing.T) {
	// 1100#Audit is allowed but missing from the template rows, so its
	// half hour never lands: 10 against 9.5.
	rows := templateRows()[:2]
	entries := timesheet(tsRow("2305#Pricing", 7, 9.5), tsRow("1100#Audit", 8, 0.5))
	res, err := reconcile.Reconciler{}.Update(rows, entries, set("2305#Pricing", "1100#Audit"))

	var mm *reconcile.MismatchError
	require.True(t, errors.As(err, &mm))
	assert.False(t, res.Valid)
	assert.InDelta(t, 10.0, mm.TimesheetHours, 1e-9)
	assert.InDelta(t, 9.5, mm.TemplateHours, 1e-9)
	assert.Equal(t, "Total hours mismatch: ENA=10 PHD=9.5", mm.Error())
}

func TestUpdateTotalsMismatchFromUntouchedRows(t *testing.T) {
	rows := templateRows()
	rows[2].SetEffort(map[int]float64{3: 4})
	entries := timesheet(tsRow("2305#Pricing", 7, 1))
	_, err := reconcile.Reconciler{}.Update(rows, entries, set("2305#Pricing", "1100#Audit"))

	var mm *reconcile.MismatchError
	require.True(t, errors.As(err, &mm))
	assert.InDelta(t, 5.0, mm.TemplateHours, 1e-9)
}

func TestUpdateToleratesFloatNoise(t *testing.T) {
	var rows [][]string
	for d := 1; d <= 10; d++ {
		rows = append(rows, tsRow("2305#Pricing", d, 0.1))
	}
	rows = append(rows, tsRow("1100#Audit", 1, 0.2))
	entries := timesheet(rows...)
	res, err := reconcile.Reconciler{}.Update(templateRows(), entries, set("2305#Pricing", "1100#Audit"))
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateHonoursFloor(t *testing.T) {
	entries := timesheet(tsRow("zzzz#qqqq", 1, 1))
	r := reconcile.Reconciler{Matcher: match.Matcher{Floor: 0.95}}
	problems := r.Validate(entries, set("2305#Pricing"))
	require.Len(t, problems, 1)
	assert.Empty(t, problems[0].Suggestion)
	assert.Contains(t, entries[0].Error, "No similar client#task found")
}

func TestEqualHours(t *testing.T) {
	assert.True(t, reconcile.EqualHours(0.1+0.2, 0.3))
	assert.True(t, reconcile.EqualHours(10, 10))
	assert.False(t, reconcile.EqualHours(10, 9.5))
	assert.False(t, reconcile.EqualHours(1, 1.00001))
}

func TestMismatchErrorWhere(t *testing.T) {
	err := &reconcile.MismatchError{TimesheetHours: 3.5, TemplateHours: 3, Where: "SUM+1"}
	assert.Equal(t, "Total hours mismatch: Model=3.5 != SUM+1=3", err.Error())
}

func TestSuggestions(t *testing.T) {
	got := reconcile.Suggestions([]reconcile.Problem{
		{Key: "a", Suggestion: "A"},
		{Key: "a", Suggestion: "A"},
		{Key: "b"},
		{Key: "c", Suggestion: "C"},
	})
	assert.Equal(t, map[string]string{"a": "A", "c": "C"}, got)
}
