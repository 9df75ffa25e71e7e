package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"virtum/internal/core"
	"virtum/internal/ledger"
)

// ExpenseService validates expenses and recurring charges before they reach
// the ledger.
type ExpenseService struct {
	storage    ledger.Store
	applicator *RecurringApplicator
}

func NewExpenseService(storage ledger.Store, applicator *RecurringApplicator) *ExpenseService {
	return &ExpenseService{
		storage:    storage,
		applicator: applicator,
	}
}

// Get returns the expense with the given id.
func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	return s.storage.GetExpense(ctx, id)
}

// Create validates and saves a new expense.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	id, err := s.storage.InsertExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}
	return id, nil
}

// Update validates and overwrites an existing expense.
func (s *ExpenseService) Update(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.storage.UpdateExpense(ctx, e); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense updated", "id", e.ID, "amount_cents", e.Amount.Cents)
	return nil
}

// Delete removes an expense permanently.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := s.storage.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

// AddRecurringCharge saves an active charge and applies it right away, so it
// shows up in the current month without waiting for the next refresh.
func (s *ExpenseService) AddRecurringCharge(ctx context.Context, c core.RecurringCharge, now time.Time) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	c.Active = true
	id, err := s.storage.InsertRecurringCharge(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("save recurring charge: %w", err)
	}
	if s.applicator != nil {
		if _, err := s.applicator.Apply(ctx, now); err != nil {
			return id, err
		}
	}
	return id, nil
}

// ToggleRecurringCharge flips the charge's active flag and returns the new
// value. Expenses already applied this month stay.
func (s *ExpenseService) ToggleRecurringCharge(ctx context.Context, id int64) (bool, error) {
	c, err := s.storage.GetRecurringCharge(ctx, id)
	if err != nil {
		return false, err
	}
	if err := s.storage.SetRecurringChargeActive(ctx, id, !c.Active); err != nil {
		return false, fmt.Errorf("toggle recurring charge: %w", err)
	}
	slog.InfoContext(ctx, "Recurring charge toggled", "charge_id", id, "active", !c.Active)
	return !c.Active, nil
}

// DeleteRecurringCharge removes the charge. Its past expenses stay.
func (s *ExpenseService) DeleteRecurringCharge(ctx context.Context, id int64) error {
	if err := s.storage.DeleteRecurringCharge(ctx, id); err != nil {
		return fmt.Errorf("delete recurring charge: %w", err)
	}
	slog.InfoContext(ctx, "Recurring charge deleted", "charge_id", id)
	return nil
}
