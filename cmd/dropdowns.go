package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	dropdownsFlags  runFlags
	dropdownsStdout bool
)

var dropdownsCmd = &cobra.Command{
	Use:   "dropdowns",
	Short: "List the template's client#task keys for the timesheet dropdown",
	Args:  cobra.NoArgs,
	RunE:  runDropdowns,
}

func init() {
	dropdownsFlags.register(dropdownsCmd, true, false)
	dropdownsCmd.Flags().BoolVar(&dropdownsStdout, "stdout", false, "Print the keys instead of writing ena_dropdown.txt")
}

func runDropdowns(cmd *cobra.Command, args []string) error {
	in, err := dropdownsFlags.input()
	if err != nil {
		return err
	}
	in.DryRun = dropdownsStdout
	keys, path, err := newProcessor().Dropdowns(cmd.Context(), in)
	if err != nil {
		return classify(err)
	}

	out := cmd.OutOrStdout()
	if dropdownsStdout {
		for _, k := range keys {
			fmt.Fprintln(out, k)
		}
		return nil
	}
	fmt.Fprintf(out, "%d keys written to %s\n", len(keys), path)
	return nil
}
