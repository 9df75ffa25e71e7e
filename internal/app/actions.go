package app

import (
	"context"
	"errors"
	"fmt"

	"virtum/internal/core"
	"virtum/internal/log"
	"virtum/internal/ui"
)

// AddExpense records a new expense and returns its id.
func (a *App) AddExpense(ctx context.Context, in ExpenseInput) (int64, error) {
	r := a.refresh(ctx)
	e, err := in.newExpense(a.now())
	if err != nil {
		return 0, err
	}
	id, err := a.expenses.Create(ctx, e)
	if err != nil {
		return 0, err
	}
	a.loggerFor(ctx).InfoContext(ctx, "Expense created",
		log.NewFields().WithOperation(log.OpCreate).WithExpense(id, e.Category, e.Amount.Cents).ToSlice()...)
	a.print(r.Success(fmt.Sprintf("Gasto #%d salvo: %s em %s.", id, ui.FormatMoney(e.Amount), e.Date.BR())))
	return id, nil
}

func (a *App) ShowExpense(ctx context.Context, id int64) error {
	r := a.refresh(ctx)
	e, err := a.expenses.Get(ctx, id)
	if err != nil {
		return err
	}
	a.print(r.Expense(e))
	return nil
}

// EditExpense overwrites the fields set in in and keeps the others.
func (a *App) EditExpense(ctx context.Context, id int64, in ExpenseInput) error {
	r := a.refresh(ctx)
	base, err := a.expenses.Get(ctx, id)
	if err != nil {
		return err
	}
	e, err := in.apply(base)
	if err != nil {
		return err
	}
	e.ID = id
	if err := a.expenses.Update(ctx, e); err != nil {
		return err
	}
	a.print(r.Success(fmt.Sprintf("Gasto #%d atualizado.", id)))
	return nil
}

func (a *App) DeleteExpense(ctx context.Context, id int64) error {
	r := a.refresh(ctx)
	if err := a.expenses.Delete(ctx, id); err != nil {
		return err
	}
	a.print(r.Success(fmt.Sprintf("Gasto #%d excluído.", id)))
	return nil
}

// RecurringCharges lists the fixed charges.
func (a *App) RecurringCharges(ctx context.Context) error {
	r := a.refresh(ctx)
	charges, err := a.store.ListRecurringCharges(ctx)
	if err != nil {
		return fmt.Errorf("list recurring charges: %w", err)
	}
	a.print(r.RecurringCharges(charges))
	return nil
}

// AddRecurringCharge saves an active fixed charge. It is launched into the
// current month right away.
func (a *App) AddRecurringCharge(ctx context.Context, in ChargeInput) (int64, error) {
	r := a.refresh(ctx)
	c, err := in.charge()
	if err != nil {
		return 0, err
	}
	id, err := a.expenses.AddRecurringCharge(ctx, c, a.now())
	if err != nil {
		return id, err
	}
	a.print(r.Success(fmt.Sprintf("Fixo #%d salvo e lançado em %s.", id, core.MonthOf(a.now()))))
	return id, nil
}

func (a *App) ToggleRecurringCharge(ctx context.Context, id int64) error {
	r := a.refresh(ctx)
	active, err := a.expenses.ToggleRecurringCharge(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return userError(msgSelectCharge, err)
		}
		return err
	}
	state := "desativado"
	if active {
		state = "ativado"
	}
	a.print(r.Success(fmt.Sprintf("Fixo #%d %s.", id, state)))
	return nil
}

func (a *App) DeleteRecurringCharge(ctx context.Context, id int64) error {
	r := a.refresh(ctx)
	if err := a.expenses.DeleteRecurringCharge(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return userError(msgSelectCharge, err)
		}
		return err
	}
	a.print(r.Success(fmt.Sprintf("Fixo #%d excluído. Os gastos já lançados continuam.", id)))
	return nil
}

// Salary prints the salary, or sets it when value is not nil.
func (a *App) Salary(ctx context.Context, value *string) error {
	r := a.refresh(ctx)
	if value == nil {
		salary, err := a.store.GetSalary(ctx)
		if err != nil {
			return fmt.Errorf("get salary: %w", err)
		}
		a.print(r.Salary(salary))
		return nil
	}

	salary, err := core.ParseAmount(*value)
	if err != nil {
		return userError(msgInvalidSalary, err)
	}
	if err := a.store.SetSalary(ctx, salary); err != nil {
		return fmt.Errorf("set salary: %w", err)
	}
	a.loggerFor(ctx).InfoContext(ctx, "Salary updated", log.FieldAmountCents, salary.Cents)
	a.print(r.Success("Salário atualizado: " + ui.FormatMoney(salary)))
	return nil
}

// Theme prints the current theme, or switches to key when it is not nil.
func (a *App) Theme(ctx context.Context, key *string) error {
	r := a.refresh(ctx)
	if key == nil {
		p := r.Palette()
		a.print(fmt.Sprintf("%s (%s)\n", p.Label, p.Key))
		return nil
	}

	p, ok := ui.LookupPalette(*key)
	if !ok {
		return userError(msgUnknownTheme, nil)
	}
	if err := a.store.SetTheme(ctx, p.Key); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	a.loggerFor(ctx).InfoContext(ctx, "Theme changed", log.FieldTheme, p.Key)
	a.print(ui.NewRenderer(p.Key).Success("Tema aplicado: " + p.Label))
	return nil
}

func (a *App) Themes(ctx context.Context) error {
	theme, err := a.store.GetTheme(ctx)
	if err != nil {
		return fmt.Errorf("get theme: %w", err)
	}
	a.print(ui.NewRenderer(theme).Themes(theme))
	return nil
}
