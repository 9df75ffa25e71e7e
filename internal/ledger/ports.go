package ledger

import (
	"context"

	"virtum/internal/core"
)

// ClosureOrder selects the month ordering of ListClosures.
type ClosureOrder int

const (
	NewestFirst ClosureOrder = iota
	OldestFirst
)

// Ports implemented by the storage adapters.
type (
	ExpenseStore interface {
		// ListExpenses returns the expenses whose date starts with monthPrefix,
		// most recent date first, ties broken by most recently inserted.
		ListExpenses(ctx context.Context, monthPrefix string) ([]core.Expense, error)
		GetExpense(ctx context.Context, id int64) (core.Expense, error)
		InsertExpense(ctx context.Context, e core.Expense) (int64, error)
		UpdateExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id int64) error
		// SumExpensesForMonth returns zero when nothing matches.
		SumExpensesForMonth(ctx context.Context, monthPrefix string) (core.Money, error)
	}

	RecurringStore interface {
		// ListRecurringCharges returns every charge, newest first.
		ListRecurringCharges(ctx context.Context) ([]core.RecurringCharge, error)
		// ListActiveRecurringCharges returns the active charges, oldest first.
		ListActiveRecurringCharges(ctx context.Context) ([]core.RecurringCharge, error)
		GetRecurringCharge(ctx context.Context, id int64) (core.RecurringCharge, error)
		InsertRecurringCharge(ctx context.Context, c core.RecurringCharge) (int64, error)
		SetRecurringChargeActive(ctx context.Context, id int64, active bool) error
		DeleteRecurringCharge(ctx context.Context, id int64) error

		HasRecurringApplicationMark(ctx context.Context, month string, chargeID int64) (bool, error)
		// AddRecurringApplicationMark is a no-op when the mark exists.
		AddRecurringApplicationMark(ctx context.Context, month string, chargeID int64) error
		// MaterializeRecurringCharge inserts the charge as an expense dated on
		// and marks it applied for month, atomically. applied is false when
		// the mark already existed and nothing was written.
		MaterializeRecurringCharge(ctx context.Context, month string, c core.RecurringCharge, on core.Date) (expenseID int64, applied bool, err error)
	}

	ClosureStore interface {
		// UpsertClosure inserts or overwrites the closure for c.Month.
		UpsertClosure(ctx context.Context, c core.Closure) error
		DeleteClosure(ctx context.Context, month string) error
		// ListClosures returns at most limit closures; limit <= 0 means all.
		ListClosures(ctx context.Context, order ClosureOrder, limit int) ([]core.Closure, error)
	}

	SettingsStore interface {
		GetSettings(ctx context.Context) (core.Settings, error)
		GetSalary(ctx context.Context) (core.Money, error)
		SetSalary(ctx context.Context, salary core.Money) error
		GetTheme(ctx context.Context) (string, error)
		SetTheme(ctx context.Context, key string) error
		SetLastAppliedMonth(ctx context.Context, month string) error
	}

	// Store is the full ledger.
	Store interface {
		ExpenseStore
		RecurringStore
		ClosureStore
		SettingsStore
		Close() error
	}
)
