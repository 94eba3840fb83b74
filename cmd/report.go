package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/enats/internal/ena"
	"github.com/Tiliavir/enats/internal/report"
	"github.com/Tiliavir/enats/internal/timecalc"
)

var (
	reportFlags    runFlags
	reportProjects bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the timesheet with weekly and monthly totals",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportFlags.register(reportCmd, false, true)
	reportCmd.Flags().BoolVar(&reportProjects, "projects", false, "Show hours per project#activity instead")
}

func runReport(cmd *cobra.Command, args []string) error {
	in, err := reportFlags.input()
	if err != nil {
		return err
	}
	entries, err := newProcessor().Timesheet(cmd.Context(), in)
	if err != nil {
		return classify(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Summary(timecalc.MonthLabel(in.Month), ena.TotalHours(entries), ena.TotalCharge(entries), cfg.Billing.CurrencySymbol))
	fmt.Fprintln(out)
	if reportProjects {
		fmt.Fprint(out, report.Projects(ena.ProjectEntries(entries)))
	} else {
		fmt.Fprint(out, report.Entries(ena.EntriesWithTotals(entries), cfg.Billing.CurrencySymbol))
	}
	if invalid := ena.Invalid(entries); len(invalid) > 0 {
		fmt.Fprintf(out, "\n%d entries have errors; run validate for details.\n", len(invalid))
	}
	return nil
}
