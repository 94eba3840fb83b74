package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/enats/internal/report"
	"github.com/Tiliavir/enats/internal/timecalc"
)

var processFlags runFlags

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Fill the template from the timesheet and render the invoice",
	Long: `process validates the timesheet, replaces the day effort of every
template row the timesheet mentions, checks that the timesheet and the
template agree on the month's total and then writes the filled template,
the HTML invoice and the dropdowns file to the output directory. The month
is recorded in the ledger for export, list and status.`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

func init() {
	processFlags.register(processCmd, true, true)
	processCmd.Flags().BoolVar(&processFlags.dryRun, "dry-run", false, "Reconcile and check totals without writing files")
}

func runProcess(cmd *cobra.Command, args []string) error {
	in, err := processFlags.input()
	if err != nil {
		return err
	}
	outcome, err := newProcessor().Process(cmd.Context(), in)
	if err != nil {
		return classify(err)
	}

	out := cmd.OutOrStdout()
	if !outcome.Result.Valid {
		fmt.Fprint(out, report.Problems(outcome.Result.Problems))
		fmt.Fprintln(out, outcome.Describe())
		return errInvalidEntries
	}
	for _, d := range outcome.Duplicates {
		fmt.Fprintf(out, "Warning: duplicate client-task in template row %d: %s\n", d.Row, d.Pair)
	}
	fmt.Fprintln(out, report.Summary(timecalc.MonthLabel(in.Month), outcome.TotalHours, outcome.TotalCharge, cfg.Billing.CurrencySymbol))
	fmt.Fprintln(out, outcome.Describe())
	return nil
}
