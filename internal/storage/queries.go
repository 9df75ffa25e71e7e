package storage

import (
	"context"
	"database/sql"
)

const listExpensesByMonth = `
SELECT id, category, amount_cents, description, date
FROM expenses
WHERE substr(date, 1, length(?1)) = ?1
ORDER BY date DESC, id DESC
`

func (q *Queries) ListExpensesByMonth(ctx context.Context, monthPrefix string) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpensesByMonth, monthPrefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(&i.ID, &i.Category, &i.AmountCents, &i.Description, &i.Date); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getExpense = `
SELECT id, category, amount_cents, description, date
FROM expenses
WHERE id = ?
`

func (q *Queries) GetExpense(ctx context.Context, id int64) (Expense, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var i Expense
	err := row.Scan(&i.ID, &i.Category, &i.AmountCents, &i.Description, &i.Date)
	return i, err
}

const createExpense = `
INSERT INTO expenses (category, amount_cents, description, date)
VALUES (?, ?, ?, ?)
`

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createExpense, arg.Category, arg.AmountCents, arg.Description, arg.Date)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const updateExpense = `
UPDATE expenses
SET category = ?, amount_cents = ?, description = ?, date = ?
WHERE id = ?
`

func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateExpense, arg.Category, arg.AmountCents, arg.Description, arg.Date, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const sumExpensesByMonth = `
SELECT COALESCE(SUM(amount_cents), 0)
FROM expenses
WHERE substr(date, 1, length(?1)) = ?1
`

func (q *Queries) SumExpensesByMonth(ctx context.Context, monthPrefix string) (sql.NullString, error) {
	row := q.db.QueryRowContext(ctx, sumExpensesByMonth, monthPrefix)
	var total sql.NullString
	err := row.Scan(&total)
	return total, err
}

const listRecurringCharges = `
SELECT id, category, amount_cents, description, active
FROM recurring_charges
ORDER BY id DESC
`

func (q *Queries) ListRecurringCharges(ctx context.Context) ([]RecurringCharge, error) {
	return q.queryRecurringCharges(ctx, listRecurringCharges)
}

const listActiveRecurringCharges = `
SELECT id, category, amount_cents, description, active
FROM recurring_charges
WHERE active = 1
ORDER BY id
`

func (q *Queries) ListActiveRecurringCharges(ctx context.Context) ([]RecurringCharge, error) {
	return q.queryRecurringCharges(ctx, listActiveRecurringCharges)
}

func (q *Queries) queryRecurringCharges(ctx context.Context, query string) ([]RecurringCharge, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecurringCharge
	for rows.Next() {
		var i RecurringCharge
		if err := rows.Scan(&i.ID, &i.Category, &i.AmountCents, &i.Description, &i.Active); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getRecurringCharge = `
SELECT id, category, amount_cents, description, active
FROM recurring_charges
WHERE id = ?
`

func (q *Queries) GetRecurringCharge(ctx context.Context, id int64) (RecurringCharge, error) {
	row := q.db.QueryRowContext(ctx, getRecurringCharge, id)
	var i RecurringCharge
	err := row.Scan(&i.ID, &i.Category, &i.AmountCents, &i.Description, &i.Active)
	return i, err
}

const createRecurringCharge = `
INSERT INTO recurring_charges (category, amount_cents, description, active)
VALUES (?, ?, ?, ?)
`

func (q *Queries) CreateRecurringCharge(ctx context.Context, arg CreateRecurringChargeParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createRecurringCharge, arg.Category, arg.AmountCents, arg.Description, boolToInt(arg.Active))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const setRecurringChargeActive = `UPDATE recurring_charges SET active = ? WHERE id = ?`

func (q *Queries) SetRecurringChargeActive(ctx context.Context, id int64, active bool) (int64, error) {
	res, err := q.db.ExecContext(ctx, setRecurringChargeActive, boolToInt(active), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteRecurringCharge = `DELETE FROM recurring_charges WHERE id = ?`

func (q *Queries) DeleteRecurringCharge(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteRecurringCharge, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const hasRecurringApplication = `
SELECT EXISTS (
    SELECT 1 FROM recurring_applications
    WHERE month = ? AND recurring_charge_id = ?
)
`

func (q *Queries) HasRecurringApplication(ctx context.Context, month string, chargeID int64) (bool, error) {
	row := q.db.QueryRowContext(ctx, hasRecurringApplication, month, chargeID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const addRecurringApplication = `
INSERT OR IGNORE INTO recurring_applications (month, recurring_charge_id)
VALUES (?, ?)
`

func (q *Queries) AddRecurringApplication(ctx context.Context, month string, chargeID int64) error {
	_, err := q.db.ExecContext(ctx, addRecurringApplication, month, chargeID)
	return err
}

const upsertClosure = `
INSERT INTO closures (month, total_cents, balance_cents)
VALUES (?, ?, ?)
ON CONFLICT(month) DO UPDATE SET
    total_cents = excluded.total_cents,
    balance_cents = excluded.balance_cents
`

func (q *Queries) UpsertClosure(ctx context.Context, arg UpsertClosureParams) error {
	_, err := q.db.ExecContext(ctx, upsertClosure, arg.Month, arg.TotalCents, arg.BalanceCents)
	return err
}

const insertClosure = `
INSERT INTO closures (month, total_cents, balance_cents)
VALUES (?, ?, ?)
`

func (q *Queries) InsertClosure(ctx context.Context, arg UpsertClosureParams) error {
	_, err := q.db.ExecContext(ctx, insertClosure, arg.Month, arg.TotalCents, arg.BalanceCents)
	return err
}

const deleteClosure = `DELETE FROM closures WHERE month = ?`

func (q *Queries) DeleteClosure(ctx context.Context, month string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteClosure, month)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listClosuresDesc = `
SELECT month, total_cents, balance_cents
FROM closures
ORDER BY month DESC
LIMIT ?
`

const listClosuresAsc = `
SELECT month, total_cents, balance_cents
FROM closures
ORDER BY month ASC
LIMIT ?
`

// ListClosures takes a negative limit to return every row.
func (q *Queries) ListClosures(ctx context.Context, ascending bool, limit int64) ([]Closure, error) {
	query := listClosuresDesc
	if ascending {
		query = listClosuresAsc
	}
	rows, err := q.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Closure
	for rows.Next() {
		var i Closure
		if err := rows.Scan(&i.Month, &i.TotalCents, &i.BalanceCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const ensureConfigRow = `INSERT OR IGNORE INTO config (id) VALUES (1)`

func (q *Queries) EnsureConfigRow(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, ensureConfigRow)
	return err
}

const getConfig = `
SELECT salary_cents, last_applied_month, theme_key
FROM config
WHERE id = 1
`

func (q *Queries) GetConfig(ctx context.Context) (Config, error) {
	row := q.db.QueryRowContext(ctx, getConfig)
	var i Config
	err := row.Scan(&i.SalaryCents, &i.LastAppliedMonth, &i.ThemeKey)
	return i, err
}

const setSalary = `UPDATE config SET salary_cents = ? WHERE id = 1`

func (q *Queries) SetSalary(ctx context.Context, cents int64) error {
	_, err := q.db.ExecContext(ctx, setSalary, cents)
	return err
}

const setTheme = `UPDATE config SET theme_key = ? WHERE id = 1`

func (q *Queries) SetTheme(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, setTheme, key)
	return err
}

const setLastAppliedMonth = `UPDATE config SET last_applied_month = ? WHERE id = 1`

func (q *Queries) SetLastAppliedMonth(ctx context.Context, month string) error {
	_, err := q.db.ExecContext(ctx, setLastAppliedMonth, month)
	return err
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
