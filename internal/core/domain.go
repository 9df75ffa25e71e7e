package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultTheme is the palette key used when none has been chosen.
const DefaultTheme = "original"

// Categories is the fixed set offered when recording expenses and
// recurring charges. The store does not enforce it.
var Categories = []string{"Alimentação", "Transporte", "Contas", "Lazer", "Saúde", "Outros"}

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID          int64
		Category    string
		Amount      Money
		Description string
		Date        Date
	}

	// RecurringCharge is a fixed monthly charge. Active only gates future
	// applications; instances already materialized stay in the ledger.
	RecurringCharge struct {
		ID          int64
		Category    string
		Amount      Money
		Description string
		Active      bool
	}

	// Closure is the snapshot taken when a month is closed.
	Closure struct {
		Month   string // YYYY-MM
		Total   Money
		Balance Money
	}

	// Settings is the singleton configuration row.
	Settings struct {
		Salary           Money
		LastAppliedMonth string
		ThemeKey         string
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNegativeAmount     = errors.New("amount must not be negative")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrNotFound           = errors.New("not found")
)

const maxDescriptionLen = 200

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ISO returns the persisted YYYY-MM-DD form.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(isoLayout)
}

// MonthKey returns the YYYY-MM key the date belongs to.
func (d Date) MonthKey() string {
	return MonthOf(d.Time)
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if utf8.RuneCountInString(strings.TrimSpace(e.Description)) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

func (c RecurringCharge) Validate() error {
	if c.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if utf8.RuneCountInString(strings.TrimSpace(c.Description)) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

// Expense materializes the charge as an expense dated on.
func (c RecurringCharge) Expense(on Date) Expense {
	return Expense{
		Category:    c.Category,
		Amount:      c.Amount,
		Description: c.Description,
		Date:        on,
	}
}

// NewClosure computes the closure for month from the month's total spend
// and the configured salary.
func NewClosure(month string, salary, total Money) Closure {
	return Closure{
		Month:   month,
		Total:   total,
		Balance: salary.Sub(total),
	}
}

// ResolveCategory matches name against Categories ignoring case and
// surrounding spaces, returning the canonical spelling.
func ResolveCategory(name string) (string, error) {
	name = strings.TrimSpace(name)
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}
