package model

// RowKind tags a RenderRow.
type RowKind int

const (
	RowEntry RowKind = iota
	RowWeekTotal
	RowBlank
)

func (k RowKind) String() string {
	switch k {
	case RowEntry:
		return "entry"
	case RowWeekTotal:
		return "total"
	case RowBlank:
		return "blank"
	}
	return "unknown"
}

// Order places a row in the rendered table. Real entries sit at (EntryID, 0);
// synthesized rows sit after their anchor entry with Sub 1..5.
type Order struct {
	Pos int
	Sub int
}

// Less reports whether o sorts before p.
func (o Order) Less(p Order) bool {
	if o.Pos != p.Pos {
		return o.Pos < p.Pos
	}
	return o.Sub < p.Sub
}

// ID returns the order as a single fractional number, e.g. (4, 1) -> 4.1.
func (o Order) ID() float64 {
	return float64(o.Pos) + float64(o.Sub)/10
}

// RenderRow is one line of the entries table: a real entry, a week or month
// total, or a blank spacer.
type RenderRow struct {
	Kind  RowKind
	Order Order
	// Entry is set for RowEntry only.
	Entry *TimeEntry
	// Label goes into the date column of a total row.
	Label string
	// Description goes into the description column of a total row.
	Description string
	// Week is the week a total belongs to; 0 for the month total.
	Week   int
	Hours  float64
	Charge float64
}

// EntryRow wraps a real entry.
func EntryRow(e *TimeEntry) RenderRow {
	return RenderRow{
		Kind:   RowEntry,
		Order:  Order{Pos: e.EntryID},
		Entry:  e,
		Hours:  e.HoursOrZero(),
		Charge: e.ChargeOrZero(),
	}
}
