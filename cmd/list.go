package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/enats/internal/model"
	"github.com/Tiliavir/enats/internal/storage"
	"github.com/Tiliavir/enats/internal/timecalc"
)

var (
	listMonth string
	listWeek  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the entries of a processed month",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listMonth, "month", "", "Month as YYYYMM (default: previous month)")
	listCmd.Flags().IntVar(&listWeek, "week", 0, "Only show this week of the month (1-6)")
}

func runList(cmd *cobra.Command, args []string) error {
	month, err := resolveMonth(listMonth, timeNow())
	if err != nil {
		return err
	}
	ledger, err := storage.LoadLedger(cfg.Storage.BaseDir, month)
	if err != nil {
		return classify(err)
	}

	entries := ledger.Entries
	if listWeek > 0 {
		entries = filterWeek(entries, listWeek)
	}
	printList(cmd.OutOrStdout(), entries)
	return nil
}

func filterWeek(entries []model.LedgerEntry, week int) []model.LedgerEntry {
	var out []model.LedgerEntry
	for _, e := range entries {
		if e.Week == week {
			out = append(out, e)
		}
	}
	return out
}

// printList groups entries by date and prints them.
func printList(w io.Writer, entries []model.LedgerEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	var currentDay string
	for _, e := range entries {
		day := e.Date
		if day == "" {
			day = "(no date)"
		}
		if day != currentDay {
			fmt.Fprintln(w, day)
			currentDay = day
		}
		fmt.Fprintf(w, "%s–%s  %s  %s (%sh)  %s\n",
			e.Start, e.End, e.ProjectID, e.Activity, timecalc.FormatHours(e.Hours), e.Description)
	}
}
