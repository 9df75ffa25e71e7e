// Package app drives the ledger from user commands: it parses input, runs
// the services and prints the rendered pages.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"virtum/internal/core"
	"virtum/internal/export"
	"virtum/internal/ledger"
	"virtum/internal/log"
	"virtum/internal/services"
	"virtum/internal/storage"
	"virtum/internal/ui"
)

// legacyImporter is implemented by stores that can read the old database
// layout.
type legacyImporter interface {
	ImportLegacy(ctx context.Context, path string) (storage.ImportResult, error)
}

type App struct {
	store      ledger.Store
	applicator *services.RecurringApplicator
	closures   *services.ClosureManager
	expenses   *services.ExpenseService

	out    io.Writer
	now    func() time.Time
	logger *log.Logger
}

type Option func(*App)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithOutput sets where pages are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

func New(store ledger.Store, logger *log.Logger, opts ...Option) *App {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	applicator := services.NewRecurringApplicator(store)
	a := &App{
		store:      store,
		applicator: applicator,
		closures:   services.NewClosureManager(store, applicator),
		expenses:   services.NewExpenseService(store, applicator),
		out:        os.Stdout,
		now:        time.Now,
		logger:     logger.WithComponent(log.ComponentApp),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// loggerFor returns the logger the caller attached to ctx, tagged with the
// app component, or the logger given to New.
func (a *App) loggerFor(ctx context.Context) *log.Logger {
	return log.FromContext(ctx, a.logger).WithComponent(log.ComponentApp)
}

// refresh runs before every page: recurring charges are applied first so
// the page never shows a month without its fixed charges. A failed
// application is logged and the page still renders.
func (a *App) refresh(ctx context.Context) *ui.Renderer {
	if _, err := a.applicator.Apply(ctx, a.now()); err != nil {
		a.loggerFor(ctx).WarnContext(ctx, "Recurring charges not fully applied",
			log.NewFields().WithOperation(log.OpApply).WithError(err).ToSlice()...)
	}
	return a.renderer(ctx)
}

// renderer builds a renderer for the stored theme.
func (a *App) renderer(ctx context.Context) *ui.Renderer {
	theme, err := a.store.GetTheme(ctx)
	if err != nil {
		a.loggerFor(ctx).WarnContext(ctx, "Failed to read theme, using default", log.FieldError, err)
		theme = core.DefaultTheme
	}
	return ui.NewRenderer(theme)
}

func (a *App) print(s string) {
	_, _ = io.WriteString(a.out, s)
}

// Dashboard prints the current month overview.
func (a *App) Dashboard(ctx context.Context) error {
	r := a.refresh(ctx)
	now := a.now()
	month := core.MonthOf(now)

	expenses, err := a.store.ListExpenses(ctx, month)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	spent, err := a.store.SumExpensesForMonth(ctx, month)
	if err != nil {
		return fmt.Errorf("sum expenses: %w", err)
	}
	salary, err := a.store.GetSalary(ctx)
	if err != nil {
		return fmt.Errorf("get salary: %w", err)
	}
	recent, err := a.store.ListClosures(ctx, ledger.NewestFirst, ui.DashboardClosures)
	if err != nil {
		return fmt.Errorf("list closures: %w", err)
	}

	a.print(r.Dashboard(ui.DashboardView{
		Today:    now,
		Spent:    spent,
		Salary:   salary,
		Expenses: expenses,
		Recent:   recent,
	}))
	return nil
}

func (a *App) History(ctx context.Context) error {
	r := a.refresh(ctx)
	closures, err := a.store.ListClosures(ctx, ledger.NewestFirst, 0)
	if err != nil {
		return fmt.Errorf("list closures: %w", err)
	}
	a.print(r.History(closures))
	return nil
}

func (a *App) Graph(ctx context.Context) error {
	r := a.refresh(ctx)
	closures, err := a.store.ListClosures(ctx, ledger.OldestFirst, 0)
	if err != nil {
		return fmt.Errorf("list closures: %w", err)
	}
	a.print(r.Graph(closures))
	return nil
}

// Closures prints the running figures of the current month and the latest
// closures.
func (a *App) Closures(ctx context.Context) error {
	r := a.refresh(ctx)
	month := core.MonthOf(a.now())
	spent, err := a.store.SumExpensesForMonth(ctx, month)
	if err != nil {
		return fmt.Errorf("sum expenses: %w", err)
	}
	salary, err := a.store.GetSalary(ctx)
	if err != nil {
		return fmt.Errorf("get salary: %w", err)
	}
	closures, err := a.store.ListClosures(ctx, ledger.NewestFirst, ui.ClosuresPageLimit)
	if err != nil {
		return fmt.Errorf("list closures: %w", err)
	}
	a.print(r.Closures(month, spent, salary, closures))
	return nil
}

// CloseMonth shows the closure for the current month and, when confirmed,
// saves it.
func (a *App) CloseMonth(ctx context.Context, confirm bool) error {
	r := a.refresh(ctx)
	if !confirm {
		c, err := a.closures.Preview(ctx, a.now())
		if err != nil {
			return err
		}
		a.print(r.ClosePreview(c))
		return nil
	}
	c, err := a.closures.CloseMonth(ctx, a.now())
	if err != nil {
		return err
	}
	a.print(r.Success(fmt.Sprintf("Fechamento de %s salvo com sucesso.", c.Month)))
	return nil
}

// Reopen deletes the closure for month so it can be closed again.
func (a *App) Reopen(ctx context.Context, month string) error {
	r := a.refresh(ctx)
	if err := a.closures.RemoveClosure(ctx, month); err != nil {
		return err
	}
	a.print(r.Success(fmt.Sprintf("Fechamento de %s removido.", month)))
	return nil
}

// Apply runs the recurring charge applicator once and reports what it did.
func (a *App) Apply(ctx context.Context) error {
	res, err := a.applicator.Apply(ctx, a.now())
	r := a.renderer(ctx)
	if err != nil {
		return err
	}
	a.print(r.Success(fmt.Sprintf("Fixos lançados em %s: %d de %d ativos.", res.Month, res.Applied, res.Checked)))
	return nil
}

// Export writes the workbook to path. The month is checked before anything
// is written, and the workbook goes to a temporary file in the same
// directory that only replaces path once it is complete.
func (a *App) Export(ctx context.Context, path, month string) error {
	if month != "" {
		m, err := core.ParseMonth(month)
		if err != nil {
			return err
		}
		month = m
	}
	r := a.refresh(ctx)

	tmp, err := os.CreateTemp(filepath.Dir(path), ".virtum-export-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("create temporary file: %w", err)
	}
	sum, err := export.Write(ctx, a.store, tmp, month)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		a.loggerFor(ctx).ErrorContext(ctx, "Export failed",
			log.NewFields().WithOperation(log.OpExport).WithError(err).ToSlice()...)
		return err
	}
	a.print(r.Success(fmt.Sprintf("Exportados %d gastos e %d fechamentos para %s.", sum.Expenses, sum.Closures, path)))
	return nil
}

// ImportLegacy copies an old-layout database into the current store.
func (a *App) ImportLegacy(ctx context.Context, path string) error {
	importer, ok := a.store.(legacyImporter)
	if !ok {
		return userError(msgImportUnsupported, nil)
	}
	res, err := importer.ImportLegacy(ctx, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return userError("Arquivo não encontrado: "+path, err)
		}
		return err
	}
	a.loggerFor(ctx).InfoContext(ctx, "Legacy database imported",
		log.FieldOperation, log.OpImport,
		log.FieldPath, path,
		"expenses", res.Expenses,
		"charges", res.RecurringCharges,
		"closures", res.Closures)

	r := a.refresh(ctx)
	a.print(r.Success(fmt.Sprintf("Importados %d gastos, %d fixos, %d marcações e %d fechamentos.",
		res.Expenses, res.RecurringCharges, res.Marks, res.Closures)))
	if res.SkippedMarks > 0 {
		a.print(r.Error(fmt.Sprintf("%d marcações ignoradas por apontarem para fixos inexistentes.", res.SkippedMarks)))
	}
	return nil
}
