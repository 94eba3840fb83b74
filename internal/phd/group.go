package phd

import (
	"fmt"

	"github.com/Tiliavir/enats/internal/model"
)

// DuplicatePolicy decides what happens to a repeated client-task pair.
type DuplicatePolicy string

const (
	// DuplicateSoft appends " (dup)" to the task of the repeated row, which
	// keeps effort from ever being booked against it.
	DuplicateSoft DuplicatePolicy = "soft"
	// DuplicateStrict rejects the template.
	DuplicateStrict DuplicatePolicy = "strict"
)

// ParseDuplicatePolicy parses a policy name; "" means soft.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", DuplicateSoft:
		return DuplicateSoft, nil
	case DuplicateStrict:
		return DuplicateStrict, nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q (want soft or strict)", s)
}

// Duplicate is a repeated client-task pair.
type Duplicate struct {
	// Row is the 1-based sheet row of the repeat.
	Row  int
	Pair string
}

// groupState is carried through the backward scan.
type groupState struct {
	code  string
	start int
	end   int
}

func newGroupState() groupState {
	return groupState{start: -1, end: -1}
}

// stamp assigns code as client of entries [from, to].
type stamp struct {
	code     string
	from, to int
}

// SetProjectCodes back-fills the client of every row of a blank-line
// delimited block with the block's bottom-most client cell. Trailing blank rows are trimmed and
// the trimmed slice is returned. The header row 0 is never stamped.
func SetProjectCodes(entries []*model.TemplateEntry) ([]*model.TemplateEntry, error) {
	n := len(entries)
	for n > 0 && entries[n-1].IsBlank() {
		n--
	}
	entries = entries[:n]

	stamps, err := projectStamps(entries)
	if err != nil {
		return entries, err
	}
	for _, s := range stamps {
		for i := s.from; i <= s.to; i++ {
			entries[i].Client = s.code
		}
	}
	return entries, nil
}

// projectStamps folds over the rows from last to first and collects the
// groups to stamp.
func projectStamps(entries []*model.TemplateEntry) ([]stamp, error) {
	var stamps []stamp
	st := newGroupState()
	flush := func(start int) {
		if st.code == "" || start < 0 || st.end < 0 {
			return
		}
		stamps = append(stamps, stamp{code: st.code, from: start, to: st.end})
	}

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		switch rt := e.RowType(); rt {
		case model.RowBlankSeparator:
			flush(i + 1)
			st = newGroupState()
		case model.RowContinuation:
			if st.end < 0 {
				st.end = i
			}
		case model.RowGroupStart:
			if st.code == "" {
				st.code = e.Client
			}
			if st.end < 0 {
				st.end = i
			}
		default:
			return nil, structuralf(i+1, "Unexpected entry type at row %d: %s of type %s", i+1, e.ClientCommaTask(), rt)
		}
		if i == 0 {
			// Row 0 is the header; the topmost group starts below it.
			flush(1)
		}
	}
	return stamps, nil
}

// CheckDuplicateClientTask finds repeated client-task pairs in row order.
// Pairs that render to five characters or less (blank rows) are ignored.
func CheckDuplicateClientTask(entries []*model.TemplateEntry, policy DuplicatePolicy) ([]Duplicate, error) {
	var dups []Duplicate
	seen := map[string]bool{}
	for _, e := range entries {
		pair := e.ClientCommaTask()
		if seen[pair] {
			d := Duplicate{Row: e.RowNum + 1, Pair: pair}
			if policy == DuplicateStrict {
				return dups, structuralf(d.Row, "Duplicate client-task in row %d: '%s'", d.Row, pair)
			}
			e.Task += " (dup)"
			dups = append(dups, d)
		}
		if len(pair) > 5 {
			seen[pair] = true
		}
	}
	return dups, nil
}
