// Package reconcile merges normalized timesheet entries into the template's
// day effort and checks that both sides agree on the total before anything
// is written.
package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Tiliavir/enats/internal/ena"
	"github.com/Tiliavir/enats/internal/match"
	"github.com/Tiliavir/enats/internal/model"
)

// totalsPrecision is the number of decimals compared by EqualHours.
const totalsPrecision = 6

// MismatchError reports two totals that should agree but do not.
type MismatchError struct {
	TimesheetHours float64
	TemplateHours  float64
	// Where names the sheet cell the template total was read from; empty
	// when both totals come from the models.
	Where string
}

func (e *MismatchError) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("Total hours mismatch: ENA=%s PHD=%s", formatTotal(e.TimesheetHours), formatTotal(e.TemplateHours))
	}
	return fmt.Sprintf("Total hours mismatch: Model=%s != %s=%s", formatTotal(e.TimesheetHours), e.Where, formatTotal(e.TemplateHours))
}

func formatTotal(h float64) string {
	return decimal.NewFromFloat(h).String()
}

// EqualHours compares two hour totals to six decimals, which absorbs float
// summation noise but nothing a person could have typed.
func EqualHours(a, b float64) bool {
	da := decimal.NewFromFloat(a).Round(totalsPrecision)
	db := decimal.NewFromFloat(b).Round(totalsPrecision)
	return da.Equal(db)
}

// Problem is one timesheet row that cannot be reconciled.
type Problem struct {
	// Row is the 0-based source row of the entry.
	Row int
	Key string
	// Suggestion is the closest valid key for an unknown key, if any.
	Suggestion string
	Message    string
}

// Result is the outcome of Update.
type Result struct {
	Valid    bool
	Problems []Problem
	// TimesheetHours and TemplateHours are set once the merge ran.
	TimesheetHours float64
	TemplateHours  float64
}

// Reconciler validates and merges one timesheet into one template.
type Reconciler struct {
	Matcher match.Matcher
}

// InvalidKeyMessage is appended to an entry whose key is not in the template.
func InvalidKeyMessage(suggestion string) string {
	if suggestion == "" {
		return "Invalid project#activity. No similar client#task found. "
	}
	return fmt.Sprintf("Invalid project#activity. Did you mean '%s'? ", suggestion)
}

// Validate checks every entry's key against valid and records a suggestion
// on each entry whose key is unknown. Entries that already failed to parse
// are reported too. All entries are checked.
func (r Reconciler) Validate(entries []*model.TimeEntry, valid map[string]struct{}) []Problem {
	candidates := make([]string, 0, len(valid))
	for k := range valid {
		candidates = append(candidates, k)
	}
	sort.Strings(candidates)

	var problems []Problem
	for _, e := range entries {
		fieldErrors := !e.Valid()
		key := e.ProjectActivity()
		if _, ok := valid[key]; !ok {
			suggestion, _ := r.Matcher.Suggest(key, candidates)
			e.AddError(InvalidKeyMessage(suggestion))
			problems = append(problems, Problem{
				Row:        e.LineID,
				Key:        key,
				Suggestion: suggestion,
				Message:    strings.TrimSpace(e.Error),
			})
			continue
		}
		if fieldErrors {
			problems = append(problems, Problem{Row: e.LineID, Key: key, Message: strings.TrimSpace(e.Error)})
		}
	}
	return problems
}

// Update validates entries, then replaces the effort of every template row
// whose key occurs in the timesheet, then compares the totals. When any
// entry is invalid nothing is merged and Result.Valid is false. A totals
// disagreement is returned as *MismatchError.
func (r Reconciler) Update(rows []*model.TemplateEntry, entries []*model.TimeEntry, valid map[string]struct{}) (Result, error) {
	res := Result{Problems: r.Validate(entries, valid)}
	if len(res.Problems) > 0 {
		return res, nil
	}

	byKey := ena.HoursByKeyByDay(entries)
	for _, row := range rows {
		days, ok := byKey[row.ClientHashTask()]
		if !ok {
			continue
		}
		effort := make(map[int]float64, len(days))
		for d, h := range days {
			effort[d] = h
		}
		row.SetEffort(effort)
	}

	res.TimesheetHours = ena.TotalHours(entries)
	for _, row := range rows {
		res.TemplateHours += row.TotalHours()
	}
	if !EqualHours(res.TimesheetHours, res.TemplateHours) {
		return res, &MismatchError{TimesheetHours: res.TimesheetHours, TemplateHours: res.TemplateHours}
	}
	res.Valid = true
	return res, nil
}

// Suggestions maps each distinct invalid key to its suggestion.
func Suggestions(problems []Problem) map[string]string {
	out := map[string]string{}
	for _, p := range problems {
		if p.Suggestion == "" {
			continue
		}
		if _, ok := out[p.Key]; !ok {
			out[p.Key] = p.Suggestion
		}
	}
	return out
}
