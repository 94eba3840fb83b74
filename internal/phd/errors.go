package phd

import "fmt"

// StructuralError reports a template whose shape cannot be processed.
type StructuralError struct {
	// Row is the 1-based sheet row, or 0 when the problem has no single row.
	Row int
	Msg string
}

func (e *StructuralError) Error() string {
	return e.Msg
}

func structuralf(row int, format string, args ...any) *StructuralError {
	return &StructuralError{Row: row, Msg: fmt.Sprintf(format, args...)}
}
