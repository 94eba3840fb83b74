package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/enats/internal/config"
	"github.com/Tiliavir/enats/internal/logging"
	"github.com/Tiliavir/enats/internal/phd"
	"github.com/Tiliavir/enats/internal/processor"
	"github.com/Tiliavir/enats/internal/reconcile"
	"github.com/Tiliavir/enats/internal/timecalc"
)

var (
	cfgFile string
	verbose bool

	cfg    config.Config
	logger = zap.NewNop()

	timeNow = time.Now
)

// errInvalidEntries ends a run whose timesheet has rows to correct.
var errInvalidEntries = errors.New("timesheet has invalid entries")

var rootCmd = &cobra.Command{
	Use:   "enats",
	Short: "enats – reconcile ENA timesheets with the PHD template",
	Long: `enats reads a month of ENA timesheet entries, checks every
project#activity against the PHD template, writes the day effort into the
template and renders the month's invoice.
Settings live in ~/.enats/config.yaml; processed months are kept as JSON
ledgers in ~/.enats/ledger/.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.enats/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(dropdownsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		c.Logger.Level = "debug"
	}
	l, err := logging.New(c.Logger)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	return nil
}

// ioError marks a failure to read or write files.
type ioError struct{ err error }

func (e *ioError) Error() string { return e.err.Error() }
func (e *ioError) Unwrap() error { return e.err }

// classify keeps template, totals and timesheet problems as they are and
// treats everything else as an I/O failure.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var structural *phd.StructuralError
	var mismatch *reconcile.MismatchError
	switch {
	case errors.As(err, &structural), errors.As(err, &mismatch),
		errors.Is(err, errInvalidEntries), errors.Is(err, context.Canceled):
		return err
	}
	return &ioError{err: err}
}

// exitCode is 2 for I/O and storage failures and 1 for everything else.
func exitCode(err error) int {
	var ioe *ioError
	if errors.As(err, &ioe) {
		return 2
	}
	return 1
}

// resolveMonth parses a yyyyMM flag; empty means the month before now,
// which is the one normally being invoiced.
func resolveMonth(s string, now time.Time) (time.Time, error) {
	if s == "" {
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first.AddDate(0, -1, 0), nil
	}
	return timecalc.ParseYearMonth(s)
}

// runFlags are the file flags shared by the commands that read workbooks.
type runFlags struct {
	month     string
	template  string
	timesheet string
	dryRun    bool
}

func (f *runFlags) register(cmd *cobra.Command, template, timesheet bool) {
	cmd.Flags().StringVar(&f.month, "month", "", "Month as YYYYMM (default: previous month)")
	if template {
		cmd.Flags().StringVar(&f.template, "template", "", "PHD template workbook")
		_ = cmd.MarkFlagRequired("template")
	}
	if timesheet {
		cmd.Flags().StringVar(&f.timesheet, "timesheet", "", "ENA timesheet workbook")
		_ = cmd.MarkFlagRequired("timesheet")
	}
}

func (f *runFlags) input() (processor.Input, error) {
	month, err := resolveMonth(f.month, timeNow())
	if err != nil {
		return processor.Input{}, err
	}
	return processor.Input{
		Month:     month,
		Template:  f.template,
		Timesheet: f.timesheet,
		DryRun:    f.dryRun,
	}, nil
}

func newProcessor() *processor.Processor {
	return processor.New(cfg, logger)
}
