package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/enats/internal/report"
)

var validateFlags runFlags

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every timesheet key against the template",
	Long: `validate checks each project#activity of the timesheet against the
client#task rows of the template and suggests the closest valid key for every
unknown one. When problems are found, a copy of the timesheet with the error
text in its error column is written to the output directory.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateFlags.register(validateCmd, true, true)
	validateCmd.Flags().BoolVar(&validateFlags.dryRun, "dry-run", false, "Do not write the annotated timesheet")
}

func runValidate(cmd *cobra.Command, args []string) error {
	in, err := validateFlags.input()
	if err != nil {
		return err
	}
	v, err := newProcessor().Validate(cmd.Context(), in)
	if err != nil {
		return classify(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, report.Problems(v.Problems))
	if len(v.Problems) == 0 {
		return nil
	}
	if len(v.Suggestions) > 0 {
		fmt.Fprintln(out)
		fmt.Fprint(out, report.Suggestions(v.Suggestions))
	}
	if v.Annotated != "" {
		fmt.Fprintf(out, "\nAnnotated timesheet: %s\n", v.Annotated)
	}
	return errInvalidEntries
}
