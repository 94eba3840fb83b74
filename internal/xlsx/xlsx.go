// Package xlsx reads and writes the first worksheet of a workbook as a grid
// of strings, and applies the cell edits produced by reconciliation.
package xlsx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/enats/internal/cell"
	"github.com/Tiliavir/enats/internal/model"
	"github.com/Tiliavir/enats/internal/phd"
	"github.com/Tiliavir/enats/internal/reconcile"
	"github.com/Tiliavir/enats/internal/storage"
)

// Workbook is an open workbook; all operations target its first sheet.
type Workbook struct {
	f     *excelize.File
	sheet string
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	return wrap(f)
}

// FromGrid builds a new single-sheet workbook holding grid. Cells that parse
// as numbers are stored as numbers; cells starting with "=" become formulas.
func FromGrid(grid cell.Grid) (*Workbook, error) {
	f := excelize.NewFile()
	w, err := wrap(f)
	if err != nil {
		return nil, err
	}
	for r, row := range grid {
		for c, v := range row {
			if v == "" {
				continue
			}
			if strings.HasPrefix(v, "=") {
				name, err := cellName(r, c)
				if err == nil {
					err = f.SetCellFormula(w.sheet, name, strings.TrimPrefix(v, "="))
				}
				if err != nil {
					_ = f.Close()
					return nil, err
				}
				continue
			}
			var val any = v
			if n, msg := cell.ParseFloat("", v); msg == "" {
				val = n
			}
			if err := w.set(r, c, val); err != nil {
				_ = f.Close()
				return nil, err
			}
		}
	}
	return w, nil
}

func wrap(f *excelize.File) (*Workbook, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, errors.New("workbook has no sheets")
	}
	return &Workbook{f: f, sheet: sheets[0]}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Sheet returns the name of the sheet being worked on.
func (w *Workbook) Sheet() string {
	return w.sheet
}

func cellName(row, col int) (string, error) {
	return excelize.CoordinatesToCellName(col+1, row+1)
}

func (w *Workbook) set(row, col int, v any) error {
	name, err := cellName(row, col)
	if err != nil {
		return err
	}
	if err := w.f.SetCellValue(w.sheet, name, v); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Grid returns the sheet as raw cell values: numbers are not formatted, so
// time cells arrive as fractions of a day.
func (w *Workbook) Grid() (cell.Grid, error) {
	rows, err := w.f.GetRows(w.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", w.sheet, err)
	}
	return cell.Grid(rows), nil
}

// Value returns the raw value of one cell.
func (w *Workbook) Value(row, col int) (string, error) {
	name, err := cellName(row, col)
	if err != nil {
		return "", err
	}
	return w.f.GetCellValue(w.sheet, name, excelize.Options{RawCellValue: true})
}

// ApplyEffort performs the effort cell writes of a reconciled template.
func (w *Workbook) ApplyEffort(writes []phd.CellWrite) error {
	for _, cw := range writes {
		var v any = cw.Value
		if cw.Clear {
			v = nil
		}
		if err := w.set(cw.Row, cw.Col, v); err != nil {
			return err
		}
	}
	return nil
}

// CheckOverallHours recalculates the template's own totals, in the TOTALS
// column at the SUM row and the row below it, and compares both with total.
// Templates whose formulas skip columns are caught here.
func (w *Workbook) CheckOverallHours(total float64) error {
	grid, err := w.Grid()
	if err != nil {
		return err
	}
	a, err := phd.FindAnchors(grid)
	if err != nil {
		return err
	}
	for i, where := range []string{"SUM", "SUM+1"} {
		row := a.SumRow + i
		name, err := cellName(row, a.TotalsCol)
		if err != nil {
			return err
		}
		raw, err := w.f.CalcCellValue(w.sheet, name, excelize.Options{RawCellValue: true})
		if err != nil {
			return &phd.StructuralError{Row: row + 1, Msg: fmt.Sprintf("%s cell %s cannot be calculated: %v", where, name, err)}
		}
		if cell.IsBlank(raw) {
			return &phd.StructuralError{Row: row + 1, Msg: fmt.Sprintf("%s cell not found at %s", where, name)}
		}
		sheetTotal, msg := cell.ParseFloat(where, raw)
		if msg != "" {
			return &phd.StructuralError{Row: row + 1, Msg: msg}
		}
		if !reconcile.EqualHours(total, sheetTotal) {
			return &reconcile.MismatchError{TimesheetHours: total, TemplateHours: sheetTotal, Where: where}
		}
	}
	return nil
}

// Annotate writes each annotation into column col of its row. Empty text
// clears a cell that holds a stale message.
func (w *Workbook) Annotate(col int, notes []model.Annotation) error {
	for _, n := range notes {
		if n.Text == "" {
			old, err := w.Value(n.Row, col)
			if err != nil {
				return err
			}
			if old == "" {
				continue
			}
			if err := w.set(n.Row, col, nil); err != nil {
				return err
			}
			continue
		}
		if err := w.set(n.Row, col, n.Text); err != nil {
			return err
		}
	}
	return nil
}

// SetText writes a string into one cell.
func (w *Workbook) SetText(row, col int, text string) error {
	return w.set(row, col, text)
}

// Bytes serializes the workbook.
func (w *Workbook) Bytes() ([]byte, error) {
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the workbook to path atomically.
func (w *Workbook) Save(path string) error {
	data, err := w.Bytes()
	if err != nil {
		return err
	}
	return storage.WriteFileAtomic(path, data, 0o644)
}
