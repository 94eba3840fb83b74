package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/enats/internal/model"
	"github.com/Tiliavir/enats/internal/storage"
	"github.com/Tiliavir/enats/internal/timecalc"
)

var (
	exportMonth  string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a processed month's ledger to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportMonth, "month", "", "Month as YYYYMM (default: previous month)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
}

func runExport(cmd *cobra.Command, args []string) error {
	month, err := resolveMonth(exportMonth, timeNow())
	if err != nil {
		return err
	}
	ledger, err := storage.LoadLedger(cfg.Storage.BaseDir, month)
	if err != nil {
		return classify(err)
	}

	out := cmd.OutOrStdout()
	switch exportFormat {
	case "json":
		data, err := json.MarshalIndent(ledger, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "md":
		printMarkdown(out, ledger)
	case "csv":
		printCSV(out, ledger.Entries)
	default:
		return fmt.Errorf("unknown format %q (want csv, json or md)", exportFormat)
	}
	return nil
}

func printCSV(w io.Writer, entries []model.LedgerEntry) {
	fmt.Fprintln(w, "date,week,project,activity,start,end,hours,charge,description")
	for _, e := range entries {
		fmt.Fprintf(w, "%s,%d,%s,%s,%s,%s,%s,%s,%s\n",
			csvEscape(e.Date),
			e.Week,
			csvEscape(e.ProjectID),
			csvEscape(e.Activity),
			csvEscape(e.Start),
			csvEscape(e.End),
			timecalc.FormatHours(e.Hours),
			timecalc.FormatMoney("", e.Charge),
			csvEscape(e.Description),
		)
	}
}

func printMarkdown(w io.Writer, l model.Ledger) {
	fmt.Fprintf(w, "# ENA %s\n\n", l.Month)
	fmt.Fprintln(w, "| Date | Project | Activity | Hours | Charge | Description |")
	fmt.Fprintln(w, "|---|---|---|---:|---:|---|")
	for _, e := range l.Entries {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s |\n",
			e.Date, mdEscape(e.ProjectID), mdEscape(e.Activity),
			timecalc.FormatHours(e.Hours), timecalc.FormatMoney("", e.Charge), mdEscape(e.Description))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Project | Activity | Hours |")
	fmt.Fprintln(w, "|---|---|---:|")
	for _, p := range l.Projects {
		fmt.Fprintf(w, "| %s | %s | %s |\n", mdEscape(p.ProjectID), mdEscape(p.Activity), timecalc.FormatHours(p.Hours))
	}
	fmt.Fprintf(w, "\nTotal: %s hours, %s\n", timecalc.FormatHours(l.TotalHours), timecalc.FormatMoney("", l.TotalCharge))
}

// mdEscape keeps a value inside its table cell.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
