package storage

import "database/sql"

// Numeric columns are scanned as text: SQLite does not enforce column types,
// so a hand-edited or legacy row may hold REAL or TEXT where an integer is
// expected. The repository coerces them.

type Expense struct {
	ID          int64
	Category    string
	AmountCents sql.NullString
	Description string
	Date        string
}

type RecurringCharge struct {
	ID          int64
	Category    string
	AmountCents sql.NullString
	Description string
	Active      sql.NullString
}

type Closure struct {
	Month        string
	TotalCents   sql.NullString
	BalanceCents sql.NullString
}

type Config struct {
	SalaryCents      sql.NullString
	LastAppliedMonth string
	ThemeKey         string
}

type CreateExpenseParams struct {
	Category    string
	AmountCents int64
	Description string
	Date        string
}

type UpdateExpenseParams struct {
	ID          int64
	Category    string
	AmountCents int64
	Description string
	Date        string
}

type CreateRecurringChargeParams struct {
	Category    string
	AmountCents int64
	Description string
	Active      bool
}

type UpsertClosureParams struct {
	Month        string
	TotalCents   int64
	BalanceCents int64
}
