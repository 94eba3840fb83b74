package processor

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/enats/internal/timecalc"
)

// DropdownsFileName is the file listing the template's client#task keys.
const DropdownsFileName = "ena_dropdown.txt"

// TemplateFileName returns the name of the filled template for month, e.g.
// "PHD ENA Timesheet 2025-04.xlsx".
func TemplateFileName(month time.Time) string {
	return fmt.Sprintf("PHD ENA Timesheet %s.xlsx", timecalc.FileMonth(month))
}

// AddRevision numbers a file name: "x.xlsx" becomes "x-rev1.xlsx" and
// "x-rev1.xlsx" becomes "x-rev2.xlsx".
func AddRevision(name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if i := strings.LastIndex(stem, "-rev"); i >= 0 {
		if n, err := strconv.Atoi(stem[i+len("-rev"):]); err == nil && n > 0 {
			return fmt.Sprintf("%s-rev%d%s", stem[:i], n+1, ext)
		}
	}
	return stem + "-rev1" + ext
}
