package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"virtum/internal/core"
	"virtum/internal/ledger"
	"virtum/internal/ledger/memory"
	"virtum/internal/log"
)

var may15 = time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*App, *memory.Store, *bytes.Buffer) {
	t.Helper()
	store := memory.New()
	var out bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelError, Output: io.Discard})
	a := New(store, logger, WithClock(func() time.Time { return may15 }), WithOutput(&out))
	return a, store, &out
}

func ptr(s string) *string { return &s }

func TestDashboardAppliesRecurringCharges(t *testing.T) {
	ctx := context.Background()
	a, store, out := newTestApp(t)

	if _, err := store.InsertRecurringCharge(ctx, core.RecurringCharge{
		Category: "Contas", Amount: core.Money{Cents: 12000}, Description: "internet", Active: true,
	}); err != nil {
		t.Fatalf("InsertRecurringCharge: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := a.Dashboard(ctx); err != nil {
			t.Fatalf("Dashboard: %v", err)
		}
	}

	expenses, err := store.ListExpenses(ctx, "2024-05")
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expected the charge applied once, got %d expenses", len(expenses))
	}
	if expenses[0].Date.ISO() != "2024-05-01" {
		t.Errorf("applied expense should be dated on the first, got %s", expenses[0].Date.ISO())
	}
	if !strings.Contains(out.String(), "R$ 120,00") {
		t.Errorf("dashboard should show the applied charge:\n%s", out.String())
	}
}

func TestAddExpense(t *testing.T) {
	tests := []struct {
		name    string
		in      ExpenseInput
		wantMsg string
		want    core.Expense
	}{
		{
			name: "comma decimal and default date",
			in:   ExpenseInput{Category: ptr("alimentação"), Amount: ptr("19,90"), Description: ptr("  padaria\x07 ")},
			want: core.Expense{Category: "Alimentação", Amount: core.Money{Cents: 1990}, Description: "padaria", Date: core.NewDate(2024, 5, 15)},
		},
		{
			name: "explicit date",
			in:   ExpenseInput{Category: ptr("Lazer"), Amount: ptr("50"), Date: ptr("3/5/2024")},
			want: core.Expense{Category: "Lazer", Amount: core.Money{Cents: 5000}, Date: core.NewDate(2024, 5, 3)},
		},
		{
			name:    "bad amount",
			in:      ExpenseInput{Category: ptr("Lazer"), Amount: ptr("abc")},
			wantMsg: msgInvalidExpense,
		},
		{
			name:    "bad date",
			in:      ExpenseInput{Category: ptr("Lazer"), Amount: ptr("10"), Date: ptr("2024-05-03")},
			wantMsg: msgInvalidExpense,
		},
		{
			name:    "unknown category",
			in:      ExpenseInput{Category: ptr("Viagem"), Amount: ptr("10")},
			wantMsg: "Categoria inválida",
		},
		{
			name:    "missing amount",
			in:      ExpenseInput{Category: ptr("Lazer")},
			wantMsg: msgMissingExpenseFields,
		},
		{
			name:    "negative amount",
			in:      ExpenseInput{Category: ptr("Lazer"), Amount: ptr("-5")},
			wantMsg: "negativo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			a, store, _ := newTestApp(t)

			id, err := a.AddExpense(ctx, tt.in)
			if tt.wantMsg != "" {
				if err == nil {
					t.Fatal("expected error")
				}
				if msg := UserMessage(err); !strings.Contains(msg, tt.wantMsg) {
					t.Errorf("UserMessage = %q, want it to contain %q", msg, tt.wantMsg)
				}
				if all, _ := store.ListExpenses(ctx, ""); len(all) != 0 {
					t.Errorf("nothing should be written on invalid input, got %d expenses", len(all))
				}
				return
			}
			if err != nil {
				t.Fatalf("AddExpense: %v", err)
			}
			got, err := store.GetExpense(ctx, id)
			if err != nil {
				t.Fatalf("GetExpense: %v", err)
			}
			tt.want.ID = id
			if got != tt.want {
				t.Errorf("stored %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEditExpenseKeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	a, store, _ := newTestApp(t)

	id, err := a.AddExpense(ctx, ExpenseInput{Category: ptr("Saúde"), Amount: ptr("80"), Description: ptr("farmácia"), Date: ptr("02/05/2024")})
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if err := a.EditExpense(ctx, id, ExpenseInput{Amount: ptr("85.5")}); err != nil {
		t.Fatalf("EditExpense: %v", err)
	}

	got, _ := store.GetExpense(ctx, id)
	if got.Amount.Cents != 8550 || got.Category != "Saúde" || got.Description != "farmácia" || got.Date.ISO() != "2024-05-02" {
		t.Errorf("unexpected expense after edit: %+v", got)
	}

	if err := a.EditExpense(ctx, 999, ExpenseInput{Amount: ptr("1")}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("editing a missing expense should be not found, got %v", err)
	}
}

func TestCloseMonthFlow(t *testing.T) {
	ctx := context.Background()
	a, store, out := newTestApp(t)

	if err := a.Salary(ctx, ptr("3000,00")); err != nil {
		t.Fatalf("Salary: %v", err)
	}
	if _, err := a.AddExpense(ctx, ExpenseInput{Category: ptr("Contas"), Amount: ptr("275,40")}); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	out.Reset()
	if err := a.CloseMonth(ctx, false); err != nil {
		t.Fatalf("CloseMonth preview: %v", err)
	}
	if !strings.Contains(out.String(), "Saldo: R$ 2.724,60") {
		t.Errorf("preview should show the balance:\n%s", out.String())
	}
	if closures, _ := store.ListClosures(ctx, ledger.NewestFirst, 0); len(closures) != 0 {
		t.Fatal("preview must not save a closure")
	}

	out.Reset()
	if err := a.CloseMonth(ctx, true); err != nil {
		t.Fatalf("CloseMonth: %v", err)
	}
	if !strings.Contains(out.String(), "Fechamento de 2024-05 salvo com sucesso.") {
		t.Errorf("unexpected output: %s", out.String())
	}
	closures, _ := store.ListClosures(ctx, ledger.NewestFirst, 0)
	if len(closures) != 1 || closures[0].Balance.Cents != 272460 || closures[0].Total.Cents != 27540 {
		t.Errorf("unexpected closures: %+v", closures)
	}

	if err := a.Reopen(ctx, "2024-05"); err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	if closures, _ := store.ListClosures(ctx, ledger.NewestFirst, 0); len(closures) != 0 {
		t.Error("reopen should delete the closure")
	}
	if all, _ := store.ListExpenses(ctx, "2024-05"); len(all) != 1 {
		t.Error("reopen must keep expenses")
	}
}

func TestRecurringChargeCommands(t *testing.T) {
	ctx := context.Background()
	a, store, _ := newTestApp(t)

	id, err := a.AddRecurringCharge(ctx, ChargeInput{Category: "contas", Amount: "99,90", Description: "luz"})
	if err != nil {
		t.Fatalf("AddRecurringCharge: %v", err)
	}
	if all, _ := store.ListExpenses(ctx, "2024-05"); len(all) != 1 {
		t.Fatalf("a new charge is applied to the current month right away, got %d expenses", len(all))
	}

	if err := a.ToggleRecurringCharge(ctx, id); err != nil {
		t.Fatalf("ToggleRecurringCharge: %v", err)
	}
	c, _ := store.GetRecurringCharge(ctx, id)
	if c.Active {
		t.Error("charge should be inactive after toggle")
	}

	if err := a.ToggleRecurringCharge(ctx, 12345); UserMessage(err) != msgSelectCharge {
		t.Errorf("toggling a missing charge: %q", UserMessage(err))
	}
	if _, err := a.AddRecurringCharge(ctx, ChargeInput{Category: "Contas", Amount: "x"}); UserMessage(err) != msgInvalidAmount {
		t.Errorf("bad amount: %q", UserMessage(err))
	}

	if err := a.DeleteRecurringCharge(ctx, id); err != nil {
		t.Fatalf("DeleteRecurringCharge: %v", err)
	}
	if all, _ := store.ListExpenses(ctx, "2024-05"); len(all) != 1 {
		t.Error("deleting a charge keeps its expenses")
	}
}

func TestSalaryAndTheme(t *testing.T) {
	ctx := context.Background()
	a, store, out := newTestApp(t)

	if err := a.Salary(ctx, ptr("dois mil")); UserMessage(err) != msgInvalidSalary {
		t.Errorf("invalid salary: %q", UserMessage(err))
	}
	if err := a.Theme(ctx, ptr("neon")); UserMessage(err) != msgUnknownTheme {
		t.Errorf("unknown theme: %q", UserMessage(err))
	}
	if err := a.Theme(ctx, ptr("azul_noite")); err != nil {
		t.Fatalf("Theme: %v", err)
	}
	if key, _ := store.GetTheme(ctx); key != "azul_noite" {
		t.Errorf("theme = %s", key)
	}

	out.Reset()
	if err := a.Theme(ctx, nil); err != nil {
		t.Fatalf("Theme: %v", err)
	}
	if !strings.Contains(out.String(), "Azul Noite") {
		t.Errorf("current theme output: %s", out.String())
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)
	if _, err := a.AddExpense(ctx, ExpenseInput{Category: ptr("Lazer"), Amount: ptr("10")}); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "virtum.xlsx")
	if err := os.WriteFile(path, []byte("old workbook"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := a.Export(ctx, path, "2024-05"); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 || string(data) == "old workbook" {
		t.Fatal("export should replace the existing file with the workbook")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}

	bad := filepath.Join(dir, "bad.xlsx")
	if err := a.Export(ctx, bad, "maio"); err == nil {
		t.Fatal("expected error for invalid month")
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Error("failed export should not leave a file behind")
	}
}

func TestExportBadMonthKeepsExistingFile(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)

	path := filepath.Join(t.TempDir(), "keep.xlsx")
	if err := os.WriteFile(path, []byte("precious"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	err := a.Export(ctx, path, "2024-13")
	if !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected invalid month, got %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("existing file should survive a rejected export: %v", err)
	}
	if string(data) != "precious" {
		t.Errorf("existing file was modified: %q", data)
	}
}

func TestApplyReportsOnePass(t *testing.T) {
	ctx := context.Background()
	a, store, out := newTestApp(t)
	if _, err := store.InsertRecurringCharge(ctx, core.RecurringCharge{
		Category: "Contas", Amount: core.Money{Cents: 5000}, Active: true,
	}); err != nil {
		t.Fatalf("InsertRecurringCharge: %v", err)
	}

	if err := a.Apply(ctx); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !strings.Contains(out.String(), "Fixos lançados em 2024-05: 1 de 1 ativos.") {
		t.Errorf("unexpected output: %s", out.String())
	}
	if all, _ := store.ListExpenses(ctx, "2024-05"); len(all) != 1 {
		t.Errorf("expected one applied expense, got %d", len(all))
	}
}

func TestLogsThroughContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctxLogger := log.New(log.Config{Level: slog.LevelInfo, Output: &buf}).With(log.FieldCommand, "salary")
	ctx := log.NewContext(context.Background(), ctxLogger)

	a, _, _ := newTestApp(t)
	if err := a.Salary(ctx, ptr("1000")); err != nil {
		t.Fatalf("Salary: %v", err)
	}
	logs := buf.String()
	if !strings.Contains(logs, "Salary updated") || !strings.Contains(logs, "command=salary") || !strings.Contains(logs, "component=app") {
		t.Errorf("expected the app to log through the context logger, got %q", logs)
	}
}

func TestImportLegacyNeedsSQLite(t *testing.T) {
	a, _, _ := newTestApp(t)
	err := a.ImportLegacy(context.Background(), "/does/not/matter.db")
	if UserMessage(err) != msgImportUnsupported {
		t.Errorf("UserMessage = %q", UserMessage(err))
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{core.ErrNotFound, "Registro não encontrado."},
		{core.ErrInvalidMonth, "Mês inválido. Use AAAA-MM."},
		{core.ErrInvalidDate, "Data inválida. Use DD/MM/AAAA."},
		{userError(msgInvalidSalary, core.ErrInvalidAmount), msgInvalidSalary},
		{errors.New("disk full"), "Erro: disk full"},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
