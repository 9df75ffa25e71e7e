package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"virtum/internal/core"
	"virtum/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// A single connection serializes writers; the ledger has one user.
	db.SetMaxOpenConns(1)

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	// The row may have been deleted by hand since the migration seeded it.
	if err := repo.queries.EnsureConfigRow(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure config row: %w", err)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// inTx runs fn in a transaction, rolling back when fn fails.
func (r *SQLiteRepository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func notFoundIfNone(affected int64, what string, key any) error {
	if affected == 0 {
		return fmt.Errorf("%s %v: %w", what, key, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) toExpense(ctx context.Context, e Expense) core.Expense {
	d, err := core.ParseISODate(e.Date)
	if err != nil {
		slog.WarnContext(ctx, "Expense with malformed date", "id", e.ID, "date", e.Date)
	}
	return core.Expense{
		ID:          e.ID,
		Category:    e.Category,
		Amount:      core.Money{Cents: coerceCents(ctx, "expenses.amount_cents", e.AmountCents)},
		Description: e.Description,
		Date:        d,
	}
}

func (r *SQLiteRepository) toRecurringCharge(ctx context.Context, c RecurringCharge) core.RecurringCharge {
	return core.RecurringCharge{
		ID:          c.ID,
		Category:    c.Category,
		Amount:      core.Money{Cents: coerceCents(ctx, "recurring_charges.amount_cents", c.AmountCents)},
		Description: c.Description,
		Active:      coerceBool(ctx, "recurring_charges.active", c.Active),
	}
}

func (r *SQLiteRepository) toClosure(ctx context.Context, c Closure) core.Closure {
	return core.Closure{
		Month:   c.Month,
		Total:   core.Money{Cents: coerceCents(ctx, "closures.total_cents", c.TotalCents)},
		Balance: core.Money{Cents: coerceCents(ctx, "closures.balance_cents", c.BalanceCents)},
	}
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, monthPrefix string) ([]core.Expense, error) {
	rows, err := r.queries.ListExpensesByMonth(ctx, monthPrefix)
	if err != nil {
		return nil, fmt.Errorf("list expenses for %s: %w", monthPrefix, err)
	}
	out := make([]core.Expense, len(rows))
	for i, e := range rows {
		out[i] = r.toExpense(ctx, e)
	}
	return out, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	e, err := r.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return r.toExpense(ctx, e), nil
}

func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	id, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		Category:    e.Category,
		AmountCents: e.Amount.Cents,
		Description: e.Description,
		Date:        e.Date.ISO(),
	})
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"category", e.Category,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.ISO())

	return id, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	n, err := r.queries.UpdateExpense(ctx, UpdateExpenseParams{
		ID:          e.ID,
		Category:    e.Category,
		AmountCents: e.Amount.Cents,
		Description: e.Description,
		Date:        e.Date.ISO(),
	})
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	return notFoundIfNone(n, "expense", e.ID)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return notFoundIfNone(n, "expense", id)
}

func (r *SQLiteRepository) SumExpensesForMonth(ctx context.Context, monthPrefix string) (core.Money, error) {
	total, err := r.queries.SumExpensesByMonth(ctx, monthPrefix)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses for %s: %w", monthPrefix, err)
	}
	return core.Money{Cents: coerceCents(ctx, "sum(expenses.amount_cents)", total)}, nil
}

func (r *SQLiteRepository) ListRecurringCharges(ctx context.Context) ([]core.RecurringCharge, error) {
	rows, err := r.queries.ListRecurringCharges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring charges: %w", err)
	}
	out := make([]core.RecurringCharge, len(rows))
	for i, c := range rows {
		out[i] = r.toRecurringCharge(ctx, c)
	}
	return out, nil
}

func (r *SQLiteRepository) ListActiveRecurringCharges(ctx context.Context) ([]core.RecurringCharge, error) {
	rows, err := r.queries.ListActiveRecurringCharges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active recurring charges: %w", err)
	}
	out := make([]core.RecurringCharge, len(rows))
	for i, c := range rows {
		out[i] = r.toRecurringCharge(ctx, c)
	}
	return out, nil
}

func (r *SQLiteRepository) GetRecurringCharge(ctx context.Context, id int64) (core.RecurringCharge, error) {
	c, err := r.queries.GetRecurringCharge(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringCharge{}, fmt.Errorf("recurring charge %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.RecurringCharge{}, fmt.Errorf("get recurring charge %d: %w", id, err)
	}
	return r.toRecurringCharge(ctx, c), nil
}

func (r *SQLiteRepository) InsertRecurringCharge(ctx context.Context, c core.RecurringCharge) (int64, error) {
	id, err := r.queries.CreateRecurringCharge(ctx, CreateRecurringChargeParams{
		Category:    c.Category,
		AmountCents: c.Amount.Cents,
		Description: c.Description,
		Active:      c.Active,
	})
	if err != nil {
		return 0, fmt.Errorf("create recurring charge: %w", err)
	}
	slog.InfoContext(ctx, "Recurring charge saved", "id", id, "amount_cents", c.Amount.Cents)
	return id, nil
}

func (r *SQLiteRepository) SetRecurringChargeActive(ctx context.Context, id int64, active bool) error {
	n, err := r.queries.SetRecurringChargeActive(ctx, id, active)
	if err != nil {
		return fmt.Errorf("set recurring charge %d active: %w", id, err)
	}
	return notFoundIfNone(n, "recurring charge", id)
}

// DeleteRecurringCharge leaves the charge's application marks and the
// expenses already materialized from it in place.
func (r *SQLiteRepository) DeleteRecurringCharge(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteRecurringCharge(ctx, id)
	if err != nil {
		return fmt.Errorf("delete recurring charge %d: %w", id, err)
	}
	return notFoundIfNone(n, "recurring charge", id)
}

func (r *SQLiteRepository) HasRecurringApplicationMark(ctx context.Context, month string, chargeID int64) (bool, error) {
	ok, err := r.queries.HasRecurringApplication(ctx, month, chargeID)
	if err != nil {
		return false, fmt.Errorf("check application of charge %d in %s: %w", chargeID, month, err)
	}
	return ok, nil
}

func (r *SQLiteRepository) AddRecurringApplicationMark(ctx context.Context, month string, chargeID int64) error {
	if err := r.queries.AddRecurringApplication(ctx, month, chargeID); err != nil {
		return fmt.Errorf("mark charge %d applied in %s: %w", chargeID, month, err)
	}
	return nil
}

func (r *SQLiteRepository) MaterializeRecurringCharge(ctx context.Context, month string, c core.RecurringCharge, on core.Date) (int64, bool, error) {
	var (
		id      int64
		applied bool
	)
	err := r.inTx(ctx, func(q *Queries) error {
		exists, err := q.HasRecurringApplication(ctx, month, c.ID)
		if err != nil {
			return fmt.Errorf("check application of charge %d in %s: %w", c.ID, month, err)
		}
		if exists {
			return nil
		}
		id, err = q.CreateExpense(ctx, CreateExpenseParams{
			Category:    c.Category,
			AmountCents: c.Amount.Cents,
			Description: c.Description,
			Date:        on.ISO(),
		})
		if err != nil {
			return fmt.Errorf("materialize charge %d: %w", c.ID, err)
		}
		if err := q.AddRecurringApplication(ctx, month, c.ID); err != nil {
			return fmt.Errorf("mark charge %d applied in %s: %w", c.ID, month, err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return id, applied, nil
}

// UpsertClosure prefers the native upsert and falls back to replacing the
// row inside a transaction when the engine rejects it.
func (r *SQLiteRepository) UpsertClosure(ctx context.Context, c core.Closure) error {
	params := UpsertClosureParams{
		Month:        c.Month,
		TotalCents:   c.Total.Cents,
		BalanceCents: c.Balance.Cents,
	}
	err := r.queries.UpsertClosure(ctx, params)
	if err == nil {
		return nil
	}

	slog.WarnContext(ctx, "Native upsert failed, replacing closure row",
		"month", c.Month,
		"error", err)

	return r.inTx(ctx, func(q *Queries) error {
		if _, err := q.DeleteClosure(ctx, c.Month); err != nil {
			return fmt.Errorf("replace closure %s: %w", c.Month, err)
		}
		if err := q.InsertClosure(ctx, params); err != nil {
			return fmt.Errorf("replace closure %s: %w", c.Month, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteClosure(ctx context.Context, month string) error {
	n, err := r.queries.DeleteClosure(ctx, month)
	if err != nil {
		return fmt.Errorf("delete closure %s: %w", month, err)
	}
	return notFoundIfNone(n, "closure", month)
}

func (r *SQLiteRepository) ListClosures(ctx context.Context, order ledger.ClosureOrder, limit int) ([]core.Closure, error) {
	n := int64(limit)
	if limit <= 0 {
		n = -1
	}
	rows, err := r.queries.ListClosures(ctx, order == ledger.OldestFirst, n)
	if err != nil {
		return nil, fmt.Errorf("list closures: %w", err)
	}
	out := make([]core.Closure, len(rows))
	for i, c := range rows {
		out[i] = r.toClosure(ctx, c)
	}
	return out, nil
}

func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.Settings, error) {
	cfg, err := r.queries.GetConfig(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Settings{ThemeKey: core.DefaultTheme}, nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get config: %w", err)
	}
	theme := cfg.ThemeKey
	if theme == "" {
		theme = core.DefaultTheme
	}
	return core.Settings{
		Salary:           core.Money{Cents: coerceCents(ctx, "config.salary_cents", cfg.SalaryCents)},
		LastAppliedMonth: cfg.LastAppliedMonth,
		ThemeKey:         theme,
	}, nil
}

func (r *SQLiteRepository) GetSalary(ctx context.Context) (core.Money, error) {
	s, err := r.GetSettings(ctx)
	if err != nil {
		return core.Money{}, err
	}
	return s.Salary, nil
}

func (r *SQLiteRepository) SetSalary(ctx context.Context, salary core.Money) error {
	if err := r.queries.SetSalary(ctx, salary.Cents); err != nil {
		return fmt.Errorf("set salary: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTheme(ctx context.Context) (string, error) {
	s, err := r.GetSettings(ctx)
	if err != nil {
		return "", err
	}
	return s.ThemeKey, nil
}

func (r *SQLiteRepository) SetTheme(ctx context.Context, key string) error {
	if err := r.queries.SetTheme(ctx, key); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetLastAppliedMonth(ctx context.Context, month string) error {
	if err := r.queries.SetLastAppliedMonth(ctx, month); err != nil {
		return fmt.Errorf("set last applied month: %w", err)
	}
	return nil
}
