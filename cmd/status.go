package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/enats/internal/storage"
	"github.com/Tiliavir/enats/internal/timecalc"
)

var statusMonth string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last run of a month",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusMonth, "month", "", "Month as YYYYMM (default: previous month)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	month, err := resolveMonth(statusMonth, timeNow())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	ledger, err := storage.LoadLedger(cfg.Storage.BaseDir, month)
	if errors.Is(err, storage.ErrNoLedger) {
		fmt.Fprintf(out, "%s has not been processed.\n", timecalc.MonthLabel(month))
		months, err := storage.Months(cfg.Storage.BaseDir)
		if err != nil {
			return classify(err)
		}
		if len(months) > 0 {
			fmt.Fprintln(out, "Processed months:")
			for _, m := range months {
				fmt.Fprintf(out, "  %s\n", timecalc.YearMonth(m))
			}
		}
		return nil
	}
	if err != nil {
		return classify(err)
	}

	fmt.Fprintf(out, "%s\n", timecalc.MonthLabel(month))
	fmt.Fprintf(out, "  Run:       %s\n", ledger.RunID)
	fmt.Fprintf(out, "  Processed: %s\n", ledger.ProcessedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "  Entries:   %d\n", len(ledger.Entries))
	fmt.Fprintf(out, "  Hours:     %s\n", timecalc.FormatHours(ledger.TotalHours))
	fmt.Fprintf(out, "  Charge:    %s\n", timecalc.FormatMoney(cfg.Billing.CurrencySymbol, ledger.TotalCharge))
	fmt.Fprintf(out, "  Template:  %s\n", ledger.Output)
	fmt.Fprintf(out, "  Invoice:   %s\n", ledger.Invoice)
	return nil
}
