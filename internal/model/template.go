package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Tiliavir/enats/internal/cell"
)

// RowType classifies a template row by which of client and task are filled.
type RowType string

const (
	RowBlankSeparator RowType = "null_null"
	RowContinuation   RowType = "null_Task"
	RowGroupStart     RowType = "Client_Task"
	RowClientOnly     RowType = "Client_null"
)

// TemplateEntry is one row of the PHD template.
type TemplateEntry struct {
	// RowNum is the 0-based source row; row 0 is the header.
	RowNum int
	Client string
	Task   string
	// Effort maps day of month to hours. Absent days are 0.
	Effort map[int]float64
}

// NewTemplateEntry returns an entry with an empty effort map.
func NewTemplateEntry(rowNum int, client, task string) *TemplateEntry {
	return &TemplateEntry{RowNum: rowNum, Client: client, Task: task, Effort: map[int]float64{}}
}

// IsBlank reports whether both client and task are blank.
func (t *TemplateEntry) IsBlank() bool {
	return cell.IsBlank(t.Client) && cell.IsBlank(t.Task)
}

// RowType returns the row classification used for grouping.
func (t *TemplateEntry) RowType() RowType {
	cl, tk := "Client", "Task"
	if cell.IsBlank(t.Client) {
		cl = "null"
	}
	if cell.IsBlank(t.Task) {
		tk = "null"
	}
	return RowType(cl + "_" + tk)
}

// ClientHashTask is the "client#task" matching key.
func (t *TemplateEntry) ClientHashTask() string {
	return JoinKey(t.Client, t.Task)
}

// ClientCommaTask renders the pair as a CSV line, with quotes and commas
// removed from each part.
func (t *TemplateEntry) ClientCommaTask() string {
	return fmt.Sprintf("%q,%q", csvClean(t.Client), csvClean(t.Task))
}

func csvClean(s string) string {
	return strings.ReplaceAll(cell.Unquote(s), ",", "")
}

// SetEffort replaces the effort map.
func (t *TemplateEntry) SetEffort(effort map[int]float64) {
	if effort == nil {
		effort = map[int]float64{}
	}
	t.Effort = effort
}

// Days returns the days with effort in ascending order.
func (t *TemplateEntry) Days() []int {
	days := make([]int, 0, len(t.Effort))
	for d := range t.Effort {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// TotalHours sums the effort map in day order.
func (t *TemplateEntry) TotalHours() float64 {
	var sum float64
	for _, d := range t.Days() {
		sum += t.Effort[d]
	}
	return sum
}
