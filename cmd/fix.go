package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/enats/internal/report"
)

var fixFlags runFlags

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Replace invalid timesheet keys with their suggestions",
	Long: `fix rewrites every project#activity that is not in the template with
the closest template key, clears the error cell of the rewritten rows and
saves the result as the next revision of the timesheet (name-rev1.xlsx,
name-rev2.xlsx, ...) in the output directory. Review the suggestions before
processing the revision.`,
	Args: cobra.NoArgs,
	RunE: runFix,
}

func init() {
	fixFlags.register(fixCmd, true, true)
	fixCmd.Flags().BoolVar(&fixFlags.dryRun, "dry-run", false, "Show the replacements without writing the revision")
}

func runFix(cmd *cobra.Command, args []string) error {
	in, err := fixFlags.input()
	if err != nil {
		return err
	}
	res, err := newProcessor().Fix(cmd.Context(), in)
	if err != nil {
		return classify(err)
	}

	out := cmd.OutOrStdout()
	if len(res.Fixes) == 0 {
		fmt.Fprintln(out, "No keys to replace.")
	} else {
		fmt.Fprint(out, report.Suggestions(res.Fixes))
		fmt.Fprintf(out, "%d rows rewritten.\n", len(res.Rows))
	}
	if res.Output != "" {
		fmt.Fprintf(out, "Revised timesheet: %s\n", res.Output)
	}
	if len(res.Remaining) > 0 {
		fmt.Fprintln(out, "\nStill to correct by hand:")
		fmt.Fprint(out, report.Problems(res.Remaining))
		return errInvalidEntries
	}
	return nil
}
