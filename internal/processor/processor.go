// Package processor runs one month's timesheet against one template: it
// loads both workbooks, reconciles them and writes the filled template, the
// invoice, the dropdowns file and the month's ledger.
package processor

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Tiliavir/enats/internal/config"
	"github.com/Tiliavir/enats/internal/ena"
	"github.com/Tiliavir/enats/internal/invoice"
	"github.com/Tiliavir/enats/internal/match"
	"github.com/Tiliavir/enats/internal/model"
	"github.com/Tiliavir/enats/internal/phd"
	"github.com/Tiliavir/enats/internal/reconcile"
	"github.com/Tiliavir/enats/internal/storage"
	"github.com/Tiliavir/enats/internal/timecalc"
	"github.com/Tiliavir/enats/internal/xlsx"
)

// Input names the files of one run.
type Input struct {
	Month     time.Time
	Timesheet string
	Template  string
	// DryRun computes everything but writes no file.
	DryRun bool
}

// Processor runs the pipeline with one configuration.
type Processor struct {
	cfg   config.Config
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// Option customizes a Processor.
type Option func(*Processor)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// New returns a processor. A nil logger discards output.
func New(cfg config.Config, log *zap.Logger, opts ...Option) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Processor{cfg: cfg, log: log, now: time.Now, newID: uuid.NewString}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Processor) runLogger(in Input) (string, *zap.Logger) {
	id := p.newID()
	return id, p.log.With(
		zap.String("run_id", id),
		zap.String("month", timecalc.YearMonth(in.Month)),
	)
}

func (p *Processor) reconciler() reconcile.Reconciler {
	return reconcile.Reconciler{Matcher: match.Matcher{Floor: p.cfg.Match.SuggestionFloor}}
}

func (p *Processor) outputPath(name string) string {
	return filepath.Join(p.cfg.Output.Dir, name)
}

// timesheet opens the timesheet workbook and parses its entries, sorted and
// reindexed. The caller closes the workbook.
func (p *Processor) timesheet(in Input, log *zap.Logger) (*xlsx.Workbook, []*model.TimeEntry, error) {
	book, err := xlsx.Open(in.Timesheet)
	if err != nil {
		return nil, nil, err
	}
	grid, err := book.Grid()
	if err != nil {
		_ = book.Close()
		return nil, nil, err
	}
	parser := ena.Parser{
		Calendar:    timecalc.NewCalendar(in.Month),
		HourlyRate:  p.cfg.Billing.HourlyRate,
		ErrorColumn: p.cfg.Timesheet.ErrorColumn,
	}
	entries := parser.Parse(grid)
	ena.SortAndReindex(entries)
	log.Debug("timesheet parsed",
		zap.String("path", in.Timesheet),
		zap.String("sheet", book.Sheet()),
		zap.Int("rows", len(grid)),
		zap.Int("entries", len(entries)),
		zap.Int("with_errors", len(ena.Invalid(entries))))
	return book, entries, nil
}

// template opens the template workbook and parses it. The caller closes the
// workbook.
func (p *Processor) template(in Input, log *zap.Logger) (*xlsx.Workbook, *phd.Template, error) {
	book, err := xlsx.Open(in.Template)
	if err != nil {
		return nil, nil, err
	}
	grid, err := book.Grid()
	if err != nil {
		_ = book.Close()
		return nil, nil, err
	}
	policy, err := phd.ParseDuplicatePolicy(p.cfg.Template.DuplicatePolicy)
	if err != nil {
		_ = book.Close()
		return nil, nil, err
	}
	tmpl, err := phd.Parse(grid, timecalc.NewCalendar(in.Month), phd.Options{
		DayColOffset: p.cfg.Template.DayColOffset,
		Duplicates:   policy,
	})
	if err != nil {
		_ = book.Close()
		return nil, nil, err
	}
	for _, d := range tmpl.Duplicates {
		log.Warn("duplicate client-task in template", zap.Int("row", d.Row), zap.String("pair", d.Pair))
	}
	log.Debug("template parsed",
		zap.String("path", in.Template),
		zap.String("sheet", book.Sheet()),
		zap.Int("rows", len(tmpl.Entries)),
		zap.Int("client_tasks", len(tmpl.ClientTasks())))
	return book, tmpl, nil
}

// Timesheet parses the timesheet alone, for reports.
func (p *Processor) Timesheet(ctx context.Context, in Input) ([]*model.TimeEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, log := p.runLogger(in)
	book, entries, err := p.timesheet(in, log)
	if err != nil {
		return nil, err
	}
	_ = book.Close()
	return entries, nil
}

// Validation is the outcome of Validate.
type Validation struct {
	RunID    string
	Entries  []*model.TimeEntry
	Problems []reconcile.Problem
	// Suggestions maps each invalid key to its closest template key.
	Suggestions map[string]string
	// Annotated is the path of the timesheet copy with error text, when one
	// was written.
	Annotated string
}

// Validate checks every timesheet key against the template. When problems
// are found the timesheet is saved, annotated, as a new revision in the
// output directory.
func (p *Processor) Validate(ctx context.Context, in Input) (*Validation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, log := p.runLogger(in)
	log.Info("validating timesheet")

	tbook, tmpl, err := p.template(in, log)
	if err != nil {
		return nil, err
	}
	defer tbook.Close()
	sbook, entries, err := p.timesheet(in, log)
	if err != nil {
		return nil, err
	}
	defer sbook.Close()

	v := &Validation{RunID: id, Entries: entries}
	v.Problems = p.reconciler().Validate(entries, tmpl.ClientTaskSet())
	v.Suggestions = reconcile.Suggestions(v.Problems)
	logProblems(log, v.Problems)

	if len(v.Problems) > 0 && !in.DryRun {
		if v.Annotated, err = p.annotate(sbook, in, entries, log); err != nil {
			return v, err
		}
	}
	log.Info("validation finished", zap.Int("problems", len(v.Problems)))
	return v, nil
}

func logProblems(log *zap.Logger, problems []reconcile.Problem) {
	for _, pr := range problems {
		log.Warn("invalid timesheet entry",
			zap.Int("row", pr.Row+1),
			zap.String("key", pr.Key),
			zap.String("suggestion", pr.Suggestion),
			zap.String("error", pr.Message))
	}
}

// annotate writes each entry's error text into the timesheet and saves it
// as the next revision in the output directory.
func (p *Processor) annotate(book *xlsx.Workbook, in Input, entries []*model.TimeEntry, log *zap.Logger) (string, error) {
	if err := book.Annotate(p.cfg.Timesheet.ErrorColumn, ena.Annotations(entries)); err != nil {
		return "", err
	}
	path := p.outputPath(AddRevision(filepath.Base(in.Timesheet)))
	if err := book.Save(path); err != nil {
		return "", err
	}
	log.Info("annotated timesheet written", zap.String("path", path))
	return path, nil
}

// Outcome is the result of Process.
type Outcome struct {
	RunID       string
	Result      reconcile.Result
	Rows        []model.RenderRow
	Projects    []model.ProjectEntry
	TotalHours  float64
	TotalCharge float64
	Duplicates  []phd.Duplicate

	// Paths of the files written; empty on a dry run or when the step did
	// not run.
	TemplateOut  string
	InvoiceOut   string
	DropdownsOut string
	LedgerOut    string
	Annotated    string
}

// Process reconciles the timesheet into the template. Invalid entries stop
// the run before the template is touched: the annotated timesheet is saved
// and Outcome.Result.Valid is false. A totals disagreement is returned as
// *reconcile.MismatchError and a malformed template as *phd.StructuralError.
func (p *Processor) Process(ctx context.Context, in Input) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, log := p.runLogger(in)
	log.Info("processing timesheet", zap.String("timesheet", in.Timesheet), zap.String("template", in.Template), zap.Bool("dry_run", in.DryRun))

	tbook, tmpl, err := p.template(in, log)
	if err != nil {
		return nil, err
	}
	defer tbook.Close()
	sbook, entries, err := p.timesheet(in, log)
	if err != nil {
		return nil, err
	}
	defer sbook.Close()

	out := &Outcome{RunID: id, Duplicates: tmpl.Duplicates}

	// The dropdowns only depend on the template, so they are written even
	// when the timesheet turns out to be invalid.
	if !in.DryRun {
		if out.DropdownsOut, err = p.writeDropdowns(tmpl, log); err != nil {
			return out, err
		}
	}

	res, err := p.reconciler().Update(tmpl.Entries, entries, tmpl.ClientTaskSet())
	out.Result = res
	if err != nil {
		log.Error("reconciliation failed", zap.Error(err))
		return out, err
	}
	if !res.Valid {
		logProblems(log, res.Problems)
		if !in.DryRun {
			if out.Annotated, err = p.annotate(sbook, in, entries, log); err != nil {
				return out, err
			}
		}
		log.Warn("timesheet has invalid entries, template not written", zap.Int("problems", len(res.Problems)))
		return out, nil
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	if err := tbook.ApplyEffort(tmpl.EffortCells()); err != nil {
		return out, err
	}
	if p.cfg.Template.CheckSheetTotals {
		if err := tbook.CheckOverallHours(res.TimesheetHours); err != nil {
			log.Error("template totals check failed", zap.Error(err))
			return out, err
		}
	}

	out.Rows = ena.EntriesWithTotals(entries)
	out.Projects = ena.ProjectEntries(entries)
	out.TotalHours = ena.TotalHours(entries)
	out.TotalCharge = ena.TotalCharge(entries)

	builder := invoice.Builder{HourlyRate: p.cfg.Billing.HourlyRate, Symbol: p.cfg.Billing.CurrencySymbol, Now: p.now}
	var page bytes.Buffer
	if err := invoice.Render(&page, builder.Build(in.Month, out.Rows, out.Projects)); err != nil {
		return out, err
	}

	if in.DryRun {
		log.Info("dry run finished", zap.Float64("hours", out.TotalHours))
		return out, nil
	}

	out.TemplateOut = p.outputPath(TemplateFileName(in.Month))
	if err := tbook.Save(out.TemplateOut); err != nil {
		return out, err
	}
	log.Info("template written", zap.String("path", out.TemplateOut))

	out.InvoiceOut = p.outputPath(invoice.FileName(in.Month))
	if err := storage.WriteFileAtomic(out.InvoiceOut, page.Bytes(), 0o644); err != nil {
		return out, err
	}
	log.Info("invoice written", zap.String("path", out.InvoiceOut))

	ledger := p.ledger(id, in, entries, out)
	if out.LedgerOut, err = storage.SaveLedger(p.cfg.Storage.BaseDir, in.Month, ledger); err != nil {
		return out, err
	}
	log.Info("processing finished",
		zap.String("ledger", out.LedgerOut),
		zap.Float64("hours", out.TotalHours),
		zap.Float64("charge", out.TotalCharge))
	return out, nil
}

func (p *Processor) writeDropdowns(tmpl *phd.Template, log *zap.Logger) (string, error) {
	path := p.outputPath(DropdownsFileName)
	if err := storage.WriteFileAtomic(path, tmpl.Dropdowns(), 0o644); err != nil {
		return "", err
	}
	log.Info("dropdowns written", zap.String("path", path), zap.Int("keys", len(tmpl.ClientTasks())))
	return path, nil
}

// ledger converts a successful run into its stored form.
func (p *Processor) ledger(id string, in Input, entries []*model.TimeEntry, out *Outcome) model.Ledger {
	l := model.Ledger{
		Month:       timecalc.FileMonth(in.Month),
		RunID:       id,
		ProcessedAt: p.now().UTC(),
		Timesheet:   in.Timesheet,
		Template:    in.Template,
		Output:      out.TemplateOut,
		Invoice:     out.InvoiceOut,
		HourlyRate:  p.cfg.Billing.HourlyRate,
		TotalHours:  out.TotalHours,
		TotalCharge: out.TotalCharge,
		Projects:    out.Projects,
	}
	for _, e := range entries {
		le := model.LedgerEntry{
			LineID:      e.LineID,
			EntryID:     e.EntryID,
			ProjectID:   e.ProjectID,
			Activity:    e.Activity,
			Hours:       e.HoursOrZero(),
			Charge:      e.ChargeOrZero(),
			Description: e.Description,
		}
		if d, ok := e.Date(); ok {
			le.Date = d.Format("2006-01-02")
		}
		if w, ok := e.Week(); ok {
			le.Week = w
		}
		if e.Start != nil {
			le.Start = timecalc.FormatClock(*e.Start)
		}
		if e.End != nil {
			le.End = timecalc.FormatClock(*e.End)
		}
		l.Entries = append(l.Entries, le)
	}
	return l
}

// FixResult is the outcome of Fix.
type FixResult struct {
	RunID string
	// Fixes maps each rewritten key to its replacement.
	Fixes map[string]string
	// Rows are the 0-based timesheet rows whose key was rewritten.
	Rows []int
	// Remaining are the problems left after the rewrite.
	Remaining []reconcile.Problem
	// Output is the revised timesheet, when one was written.
	Output string
}

// Fix replaces every invalid key that has a suggestion with that suggestion,
// clears the error cell of the rewritten rows and saves the timesheet as the
// next revision in the output directory.
func (p *Processor) Fix(ctx context.Context, in Input) (*FixResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, log := p.runLogger(in)
	log.Info("fixing timesheet keys")

	tbook, tmpl, err := p.template(in, log)
	if err != nil {
		return nil, err
	}
	_ = tbook.Close()
	sbook, entries, err := p.timesheet(in, log)
	if err != nil {
		return nil, err
	}
	defer sbook.Close()

	valid := tmpl.ClientTaskSet()
	rec := p.reconciler()
	res := &FixResult{RunID: id}
	res.Fixes = reconcile.Suggestions(rec.Validate(entries, valid))

	var cleared []model.Annotation
	for _, e := range ena.ReplaceKeys(entries, res.Fixes) {
		if err := sbook.SetText(e.LineID, ena.ColKey, e.ProjectActivity()); err != nil {
			return res, err
		}
		cleared = append(cleared, model.Annotation{Row: e.LineID})
		res.Rows = append(res.Rows, e.LineID)
		log.Info("key rewritten", zap.Int("row", e.LineID+1), zap.String("key", e.ProjectActivity()))
	}
	if err := sbook.Annotate(p.cfg.Timesheet.ErrorColumn, cleared); err != nil {
		return res, err
	}

	// Re-read the edited sheet so what remains is judged from scratch.
	grid, err := sbook.Grid()
	if err != nil {
		return res, err
	}
	parser := ena.Parser{
		Calendar:    timecalc.NewCalendar(in.Month),
		HourlyRate:  p.cfg.Billing.HourlyRate,
		ErrorColumn: p.cfg.Timesheet.ErrorColumn,
	}
	res.Remaining = rec.Validate(parser.Parse(grid), valid)
	logProblems(log, res.Remaining)

	if len(res.Rows) > 0 && !in.DryRun {
		res.Output = p.outputPath(AddRevision(filepath.Base(in.Timesheet)))
		if err := sbook.Save(res.Output); err != nil {
			return res, err
		}
		log.Info("revised timesheet written", zap.String("path", res.Output))
	}
	log.Info("fix finished", zap.Int("rewritten", len(res.Rows)), zap.Int("remaining", len(res.Remaining)))
	return res, nil
}

// Dropdowns returns the template's client#task keys and, unless DryRun,
// writes them to the dropdowns file.
func (p *Processor) Dropdowns(ctx context.Context, in Input) ([]string, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	_, log := p.runLogger(in)
	book, tmpl, err := p.template(in, log)
	if err != nil {
		return nil, "", err
	}
	_ = book.Close()

	keys := tmpl.ClientTasks()
	if in.DryRun {
		return keys, "", nil
	}
	path, err := p.writeDropdowns(tmpl, log)
	if err != nil {
		return keys, "", err
	}
	return keys, path, nil
}

// Describe summarizes an outcome for humans.
func (o *Outcome) Describe() string {
	var b strings.Builder
	if !o.Result.Valid {
		fmt.Fprintf(&b, "%d invalid entries", len(o.Result.Problems))
		if o.Annotated != "" {
			fmt.Fprintf(&b, "; see error annotations in %s", o.Annotated)
		}
		return b.String()
	}
	fmt.Fprintf(&b, "%s hours reconciled", timecalc.FormatHours(o.TotalHours))
	for _, p := range []string{o.TemplateOut, o.InvoiceOut, o.DropdownsOut} {
		if p != "" {
			fmt.Fprintf(&b, "\n  wrote %s", p)
		}
	}
	return b.String()
}
