package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"virtum/internal/core"
	"virtum/internal/ledger"
)

// ClosureStore is what the closure manager needs from the ledger.
type ClosureStore interface {
	ledger.ClosureStore
	SumExpensesForMonth(ctx context.Context, monthPrefix string) (core.Money, error)
	GetSalary(ctx context.Context) (core.Money, error)
}

// ClosureManager snapshots a month's spend and balance on request. It never
// runs on its own.
type ClosureManager struct {
	store      ClosureStore
	applicator *RecurringApplicator
}

func NewClosureManager(store ClosureStore, applicator *RecurringApplicator) *ClosureManager {
	return &ClosureManager{store: store, applicator: applicator}
}

// Preview applies the month's recurring charges and returns the closure
// CloseMonth would write, without writing it.
func (m *ClosureManager) Preview(ctx context.Context, now time.Time) (core.Closure, error) {
	if m.applicator != nil {
		if _, err := m.applicator.Apply(ctx, now); err != nil {
			return core.Closure{}, err
		}
	}

	month := core.MonthOf(now)
	total, err := m.store.SumExpensesForMonth(ctx, month)
	if err != nil {
		return core.Closure{}, fmt.Errorf("sum expenses for %s: %w", month, err)
	}
	salary, err := m.store.GetSalary(ctx)
	if err != nil {
		return core.Closure{}, fmt.Errorf("get salary: %w", err)
	}
	return core.NewClosure(month, salary, total), nil
}

// CloseMonth records the closure for the month containing now. Closing a
// month again overwrites the earlier snapshot.
func (m *ClosureManager) CloseMonth(ctx context.Context, now time.Time) (core.Closure, error) {
	c, err := m.Preview(ctx, now)
	if err != nil {
		return core.Closure{}, err
	}
	if err := m.store.UpsertClosure(ctx, c); err != nil {
		return core.Closure{}, fmt.Errorf("save closure %s: %w", c.Month, err)
	}

	slog.InfoContext(ctx, "Month closed",
		"month", c.Month,
		"total_cents", c.Total.Cents,
		"balance_cents", c.Balance.Cents)

	return c, nil
}

// RemoveClosure deletes the closure for month. Expenses are untouched.
func (m *ClosureManager) RemoveClosure(ctx context.Context, month string) error {
	month, err := core.ParseMonth(month)
	if err != nil {
		return err
	}
	if err := m.store.DeleteClosure(ctx, month); err != nil {
		return fmt.Errorf("remove closure: %w", err)
	}
	slog.InfoContext(ctx, "Closure removed", "month", month)
	return nil
}
