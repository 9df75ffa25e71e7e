// Package export writes the ledger to an .xlsx workbook.
package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"virtum/internal/core"
	"virtum/internal/ledger"
)

const (
	ExpensesSheet = "Gastos"
	ClosuresSheet = "Fechamentos"

	// numFmtThousands is the built-in "#,##0.00" format.
	numFmtThousands = 4
)

// Source is what the exporter reads from the ledger.
type Source interface {
	ListExpenses(ctx context.Context, monthPrefix string) ([]core.Expense, error)
	ListClosures(ctx context.Context, order ledger.ClosureOrder, limit int) ([]core.Closure, error)
}

// Summary reports what a workbook holds.
type Summary struct {
	Expenses int
	Closures int
}

// Write exports the expenses of month, or every expense when month is empty,
// and all closures oldest first.
func Write(ctx context.Context, src Source, w io.Writer, month string) (Summary, error) {
	if month != "" {
		m, err := core.ParseMonth(month)
		if err != nil {
			return Summary{}, err
		}
		month = m
	}

	expenses, err := src.ListExpenses(ctx, month)
	if err != nil {
		return Summary{}, fmt.Errorf("list expenses: %w", err)
	}
	closures, err := src.ListClosures(ctx, ledger.OldestFirst, 0)
	if err != nil {
		return Summary{}, fmt.Errorf("list closures: %w", err)
	}

	f, err := Workbook(expenses, closures)
	if err != nil {
		return Summary{}, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.WarnContext(ctx, "Failed to close workbook", "error", err)
		}
	}()

	if err := f.Write(w); err != nil {
		return Summary{}, fmt.Errorf("write workbook: %w", err)
	}

	slog.InfoContext(ctx, "Workbook exported",
		"month", month,
		"expenses", len(expenses),
		"closures", len(closures))

	return Summary{Expenses: len(expenses), Closures: len(closures)}, nil
}

// Workbook builds the two-sheet workbook in memory.
func Workbook(expenses []core.Expense, closures []core.Closure) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ExpensesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ClosuresSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtThousands})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	expenseRows := make([][]any, len(expenses))
	for i, e := range expenses {
		expenseRows[i] = []any{e.ID, e.Category, e.Amount.Float(), e.Description, e.Date.BR()}
	}
	if err := writeSheet(f, ExpensesSheet, []string{"ID", "Categoria", "Valor", "Descrição", "Data"}, expenseRows); err != nil {
		return nil, err
	}

	closureRows := make([][]any, len(closures))
	for i, c := range closures {
		closureRows[i] = []any{c.Month, c.Total.Float(), c.Balance.Float()}
	}
	if err := writeSheet(f, ClosuresSheet, []string{"Mês", "Total", "Saldo"}, closureRows); err != nil {
		return nil, err
	}

	ranges := []struct {
		sheet, from, to string
		top, bottom     int
		style           int
	}{
		{ExpensesSheet, "A", "E", 1, 1, header},
		{ClosuresSheet, "A", "C", 1, 1, header},
		{ExpensesSheet, "C", "C", 2, len(expenses) + 1, money},
		{ClosuresSheet, "B", "C", 2, len(closures) + 1, money},
	}
	for _, r := range ranges {
		if r.bottom < r.top {
			continue
		}
		if err := f.SetCellStyle(r.sheet, fmt.Sprintf("%s%d", r.from, r.top), fmt.Sprintf("%s%d", r.to, r.bottom), r.style); err != nil {
			return nil, fmt.Errorf("style %s: %w", r.sheet, err)
		}
	}

	widths := []struct {
		sheet, col string
		width      float64
	}{
		{ExpensesSheet, "A", 8},
		{ExpensesSheet, "B", 15},
		{ExpensesSheet, "C", 12},
		{ExpensesSheet, "D", 30},
		{ExpensesSheet, "E", 12},
		{ClosuresSheet, "A", 10},
		{ClosuresSheet, "B", 14},
		{ClosuresSheet, "C", 14},
	}
	for _, w := range widths {
		if err := f.SetColWidth(w.sheet, w.col, w.col, w.width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write %s header: %w", sheet, err)
		}
	}
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, r+2, err)
		}
	}
	return nil
}
