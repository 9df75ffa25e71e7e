package app

import (
	"strings"
	"time"

	"virtum/internal/core"
)

// ExpenseInput is an expense as typed on the command line. Nil fields are
// left unchanged on edit; on create only Date may be nil and then defaults
// to today.
type ExpenseInput struct {
	Category    *string
	Amount      *string
	Description *string
	Date        *string // DD/MM/YYYY
}

// ChargeInput is a recurring charge as typed on the command line.
type ChargeInput struct {
	Category    string
	Amount      string
	Description string
}

// sanitizeInput trims s and drops control characters other than tab and
// line breaks.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// apply overlays in onto base. Amount and date problems are reported as one
// message since they are the fields users get wrong.
func (in ExpenseInput) apply(base core.Expense) (core.Expense, error) {
	e := base
	if in.Category != nil {
		c, err := core.ResolveCategory(*in.Category)
		if err != nil {
			return core.Expense{}, err
		}
		e.Category = c
	}
	if in.Amount != nil {
		m, err := core.ParseAmount(*in.Amount)
		if err != nil {
			return core.Expense{}, userError(msgInvalidExpense, err)
		}
		e.Amount = m
	}
	if in.Description != nil {
		e.Description = sanitizeInput(*in.Description)
	}
	if in.Date != nil {
		d, err := core.ParseBRDate(*in.Date)
		if err != nil {
			return core.Expense{}, userError(msgInvalidExpense, err)
		}
		e.Date = d
	}
	return e, nil
}

func (in ExpenseInput) newExpense(now time.Time) (core.Expense, error) {
	if in.Category == nil || in.Amount == nil {
		return core.Expense{}, userError(msgMissingExpenseFields, nil)
	}
	return in.apply(core.Expense{Date: core.DateOf(now)})
}

func (in ChargeInput) charge() (core.RecurringCharge, error) {
	c, err := core.ResolveCategory(in.Category)
	if err != nil {
		return core.RecurringCharge{}, err
	}
	m, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.RecurringCharge{}, userError(msgInvalidAmount, err)
	}
	return core.RecurringCharge{
		Category:    c,
		Amount:      m,
		Description: sanitizeInput(in.Description),
		Active:      true,
	}, nil
}
