package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ImportResult counts the rows copied by ImportLegacy.
type ImportResult struct {
	Expenses         int
	RecurringCharges int
	Marks            int
	Closures         int
	SkippedMarks     int
}

type legacyCharge struct {
	id          int64
	category    sql.NullString
	amount      sql.NullString
	description sql.NullString
	active      sql.NullString
}

type legacyMark struct {
	month    string
	chargeID int64
}

type legacyData struct {
	// Expense.AmountCents holds the raw legacy REAL value in reais.
	expenses []Expense
	charges  []legacyCharge
	marks    []legacyMark
	closures []Closure
	config   *legacyConfig
}

type legacyConfig struct {
	salary    sql.NullString
	lastMonth sql.NullString
	theme     sql.NullString
}

// ImportLegacy copies a database written by the earlier single-file version
// of the program (Portuguese table names, amounts stored as REAL reais) into
// this ledger. Everything is written in one transaction. Closures for months
// already closed here are overwritten.
func (r *SQLiteRepository) ImportLegacy(ctx context.Context, legacyPath string) (ImportResult, error) {
	if _, err := os.Stat(legacyPath); err != nil {
		return ImportResult{}, fmt.Errorf("open legacy database: %w", err)
	}
	src, err := sql.Open("sqlite", legacyPath)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open legacy database: %w", err)
	}
	defer src.Close()

	data, err := readLegacy(ctx, src)
	if err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	err = r.inTx(ctx, func(q *Queries) error {
		for _, e := range data.expenses {
			_, err := q.CreateExpense(ctx, CreateExpenseParams{
				Category:    e.Category,
				AmountCents: coerceReais(ctx, "gastos.valor", e.AmountCents),
				Description: e.Description,
				Date:        e.Date,
			})
			if err != nil {
				return fmt.Errorf("import expense %d: %w", e.ID, err)
			}
			res.Expenses++
		}

		ids := make(map[int64]int64, len(data.charges))
		for _, c := range data.charges {
			active := true
			if c.active.Valid {
				active = coerceBool(ctx, "fixos.ativo", c.active)
			}
			id, err := q.CreateRecurringCharge(ctx, CreateRecurringChargeParams{
				Category:    c.category.String,
				AmountCents: coerceReais(ctx, "fixos.valor", c.amount),
				Description: c.description.String,
				Active:      active,
			})
			if err != nil {
				return fmt.Errorf("import recurring charge %d: %w", c.id, err)
			}
			ids[c.id] = id
			res.RecurringCharges++
		}

		for _, m := range data.marks {
			newID, ok := ids[m.chargeID]
			if !ok {
				res.SkippedMarks++
				continue
			}
			if err := q.AddRecurringApplication(ctx, m.month, newID); err != nil {
				return fmt.Errorf("import application mark %s/%d: %w", m.month, m.chargeID, err)
			}
			res.Marks++
		}

		for _, c := range data.closures {
			params := UpsertClosureParams{
				Month:        c.Month,
				TotalCents:   coerceReais(ctx, "resumo.total", c.TotalCents),
				BalanceCents: coerceReais(ctx, "resumo.saldo", c.BalanceCents),
			}
			if err := q.UpsertClosure(ctx, params); err != nil {
				return fmt.Errorf("import closure %s: %w", c.Month, err)
			}
			res.Closures++
		}

		if cfg := data.config; cfg != nil {
			if err := q.SetSalary(ctx, coerceReais(ctx, "config.salario", cfg.salary)); err != nil {
				return fmt.Errorf("import salary: %w", err)
			}
			if err := q.SetLastAppliedMonth(ctx, cfg.lastMonth.String); err != nil {
				return fmt.Errorf("import last applied month: %w", err)
			}
			if theme := strings.TrimSpace(cfg.theme.String); theme != "" {
				if err := q.SetTheme(ctx, theme); err != nil {
					return fmt.Errorf("import theme: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	slog.InfoContext(ctx, "Legacy database imported",
		"path", legacyPath,
		"expenses", res.Expenses,
		"recurring_charges", res.RecurringCharges,
		"marks", res.Marks,
		"closures", res.Closures,
		"skipped_marks", res.SkippedMarks)

	return res, nil
}

func readLegacy(ctx context.Context, src *sql.DB) (*legacyData, error) {
	tables, err := legacyTables(ctx, src)
	if err != nil {
		return nil, err
	}
	if !tables["gastos"] {
		return nil, fmt.Errorf("legacy database: table gastos not found")
	}

	data := &legacyData{}

	rows, err := src.QueryContext(ctx, `SELECT id, categoria, valor, descricao, data FROM gastos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read gastos: %w", err)
	}
	for rows.Next() {
		var (
			e                    Expense
			category, desc, date sql.NullString
		)
		if err := rows.Scan(&e.ID, &category, &e.AmountCents, &desc, &date); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan gastos: %w", err)
		}
		e.Category, e.Description, e.Date = category.String, desc.String, date.String
		data.expenses = append(data.expenses, e)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("read gastos: %w", err)
	}

	if tables["fixos"] {
		rows, err := src.QueryContext(ctx, `SELECT id, categoria, valor, descricao, ativo FROM fixos ORDER BY id`)
		if err != nil {
			return nil, fmt.Errorf("read fixos: %w", err)
		}
		for rows.Next() {
			var c legacyCharge
			if err := rows.Scan(&c.id, &c.category, &c.amount, &c.description, &c.active); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan fixos: %w", err)
			}
			data.charges = append(data.charges, c)
		}
		if err := closeRows(rows); err != nil {
			return nil, fmt.Errorf("read fixos: %w", err)
		}
	}

	if tables["fixos_aplicados"] {
		rows, err := src.QueryContext(ctx, `SELECT mes, fixo_id FROM fixos_aplicados ORDER BY mes, fixo_id`)
		if err != nil {
			return nil, fmt.Errorf("read fixos_aplicados: %w", err)
		}
		for rows.Next() {
			var m legacyMark
			if err := rows.Scan(&m.month, &m.chargeID); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan fixos_aplicados: %w", err)
			}
			data.marks = append(data.marks, m)
		}
		if err := closeRows(rows); err != nil {
			return nil, fmt.Errorf("read fixos_aplicados: %w", err)
		}
	}

	if tables["resumo"] {
		rows, err := src.QueryContext(ctx, `SELECT mes, total, saldo FROM resumo WHERE mes IS NOT NULL ORDER BY mes`)
		if err != nil {
			return nil, fmt.Errorf("read resumo: %w", err)
		}
		for rows.Next() {
			var c Closure
			if err := rows.Scan(&c.Month, &c.TotalCents, &c.BalanceCents); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan resumo: %w", err)
			}
			data.closures = append(data.closures, c)
		}
		if err := closeRows(rows); err != nil {
			return nil, fmt.Errorf("read resumo: %w", err)
		}
	}

	if tables["config"] {
		cfg, err := readLegacyConfig(ctx, src)
		if err != nil {
			return nil, err
		}
		data.config = cfg
	}

	return data, nil
}

func readLegacyConfig(ctx context.Context, src *sql.DB) (*legacyConfig, error) {
	// tema was added to config by a later version of the program.
	var hasTheme bool
	err := src.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pragma_table_info('config') WHERE name = 'tema')`).Scan(&hasTheme)
	if err != nil {
		return nil, fmt.Errorf("inspect legacy config: %w", err)
	}

	query := `SELECT salario, ultimo_mes, NULL FROM config WHERE id = 1`
	if hasTheme {
		query = `SELECT salario, ultimo_mes, tema FROM config WHERE id = 1`
	}
	var cfg legacyConfig
	err = src.QueryRowContext(ctx, query).Scan(&cfg.salary, &cfg.lastMonth, &cfg.theme)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read legacy config: %w", err)
	}
	return &cfg, nil
}

func legacyTables(ctx context.Context, src *sql.DB) (map[string]bool, error) {
	rows, err := src.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, fmt.Errorf("list legacy tables: %w", err)
	}
	tables := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("list legacy tables: %w", err)
		}
		tables[name] = true
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("list legacy tables: %w", err)
	}
	return tables, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Close(); err != nil {
		return err
	}
	return rows.Err()
}
