package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"virtum/internal/core"
	"virtum/internal/ledger"
)

// ApplicatorStore is what the applicator needs from the ledger.
type ApplicatorStore interface {
	ledger.RecurringStore
	SetLastAppliedMonth(ctx context.Context, month string) error
}

// ApplyResult reports one applicator run.
type ApplyResult struct {
	Month   string
	Checked int
	Applied int
}

// RecurringApplicator materializes every active recurring charge into an
// expense once per calendar month.
type RecurringApplicator struct {
	store ApplicatorStore
}

func NewRecurringApplicator(store ApplicatorStore) *RecurringApplicator {
	return &RecurringApplicator{store: store}
}

// Apply is safe to call any number of times. The per-month application mark
// is the only gate: the last applied month is recorded for display and never
// consulted, so a charge created mid-month is picked up by the next call.
//
// A charge that fails is logged and skipped; the remaining charges are still
// applied and the failures are returned joined.
func (a *RecurringApplicator) Apply(ctx context.Context, now time.Time) (ApplyResult, error) {
	if a.store == nil {
		return ApplyResult{}, fmt.Errorf("applicator not properly initialized")
	}

	month := core.MonthOf(now)
	firstDay := core.FirstOfMonth(now)
	res := ApplyResult{Month: month}

	charges, err := a.store.ListActiveRecurringCharges(ctx)
	if err != nil {
		return res, fmt.Errorf("list recurring charges: %w", err)
	}

	var errs []error
	for _, c := range charges {
		res.Checked++

		marked, err := a.store.HasRecurringApplicationMark(ctx, month, c.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to check application mark",
				"charge_id", c.ID,
				"month", month,
				"error", err)
			errs = append(errs, err)
			continue
		}
		if marked {
			continue
		}

		expenseID, applied, err := a.store.MaterializeRecurringCharge(ctx, month, c, firstDay)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to apply recurring charge",
				"charge_id", c.ID,
				"description", c.Description,
				"error", err)
			errs = append(errs, err)
			continue
		}
		if !applied {
			continue
		}

		res.Applied++
		slog.InfoContext(ctx, "Applied recurring charge",
			"charge_id", c.ID,
			"expense_id", expenseID,
			"amount_cents", c.Amount.Cents,
			"month", month)
	}

	if err := a.store.SetLastAppliedMonth(ctx, month); err != nil {
		slog.WarnContext(ctx, "Failed to record last applied month",
			"month", month,
			"error", err)
		errs = append(errs, err)
	}

	slog.DebugContext(ctx, "Recurring charge application complete",
		"month", month,
		"applied", res.Applied,
		"checked", res.Checked)

	if len(errs) > 0 {
		return res, fmt.Errorf("apply recurring charges for %s: %w", month, errors.Join(errs...))
	}
	return res, nil
}
