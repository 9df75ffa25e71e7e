package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"

	"virtum/internal/core"
	"virtum/internal/ledger"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "virtum.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, path := newTestRepo(t)

	if _, err := repo.InsertExpense(ctx, core.Expense{
		Category: "Lazer", Amount: core.Money{Cents: 1500}, Date: core.NewDate(2024, 5, 3),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	repo.Close()

	again, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()

	got, err := again.ListExpenses(ctx, "2024-05")
	if err != nil || len(got) != 1 || got[0].Amount.Cents != 1500 {
		t.Fatalf("data lost across reopen: %+v err=%v", got, err)
	}

	v, ok, err := SchemaVersion(path)
	if err != nil || !ok || v != 2 {
		t.Fatalf("unexpected schema version %d ok=%v err=%v", v, ok, err)
	}
}

func TestThemeColumnAddedToVersionOneDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "old.db")

	err := withMigrator(path, func(m *migrate.Migrate) error { return m.Migrate(1) })
	if err != nil {
		t.Fatalf("migrate to v1: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec(`UPDATE config SET salary_cents = 300000 WHERE id = 1`); err != nil {
		t.Fatalf("seed salary: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('config') WHERE name = 'theme_key'`).Scan(&n); err != nil || n != 0 {
		t.Fatalf("theme_key should not exist at v1: n=%d err=%v", n, err)
	}
	db.Close()

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	defer repo.Close()

	s, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if s.ThemeKey != core.DefaultTheme || s.Salary.Cents != 300000 {
		t.Fatalf("unexpected settings after upgrade: %+v", s)
	}
}

func TestMalformedAmountsReadAsZero(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	stmts := []string{
		`INSERT INTO expenses (category, amount_cents, description, date) VALUES ('Outros', 'abc', 'bad', '2024-05-10')`,
		`INSERT INTO expenses (category, amount_cents, description, date) VALUES ('Outros', 1234.6, 'real', '2024-05-11')`,
		`INSERT INTO expenses (category, amount_cents, description, date) VALUES ('Outros', 500, 'ok', '2024-05-12')`,
	}
	for _, s := range stmts {
		if _, err := repo.db.Exec(s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := repo.ListExpenses(ctx, "2024-05")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := map[string]int64{"bad": 0, "real": 1235, "ok": 500}
	for _, e := range got {
		if e.Amount.Cents != want[e.Description] {
			t.Errorf("%s: got %d cents, want %d", e.Description, e.Amount.Cents, want[e.Description])
		}
	}
}

func TestListExpensesOrderAndMonthFilter(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	seed := []core.Expense{
		{Description: "a", Date: core.NewDate(2024, 5, 1)},
		{Description: "b", Date: core.NewDate(2024, 5, 20)},
		{Description: "c", Date: core.NewDate(2024, 5, 20)},
		{Description: "other", Date: core.NewDate(2024, 6, 1)},
	}
	for _, e := range seed {
		if _, err := repo.InsertExpense(ctx, e); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := repo.ListExpenses(ctx, "2024-05")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var order []string
	for _, e := range got {
		order = append(order, e.Description)
	}
	if len(order) != 3 || order[0] != "c" || order[1] != "b" || order[2] != "a" {
		t.Fatalf("unexpected order: %v", order)
	}

	empty, err := repo.SumExpensesForMonth(ctx, "2023-01")
	if err != nil || empty.Cents != 0 {
		t.Fatalf("empty month sum: %v err=%v", empty, err)
	}
}

func TestUpdateAndDeleteMissingRows(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if err := repo.UpdateExpense(ctx, core.Expense{ID: 99, Date: core.NewDate(2024, 1, 1)}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("update missing: got %v", err)
	}
	if err := repo.DeleteExpense(ctx, 99); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delete missing: got %v", err)
	}
	if _, err := repo.GetExpense(ctx, 99); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get missing: got %v", err)
	}
	if err := repo.SetRecurringChargeActive(ctx, 99, false); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("toggle missing: got %v", err)
	}
	if err := repo.DeleteClosure(ctx, "2024-01"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delete missing closure: got %v", err)
	}
}

func TestUpsertClosureOverwrites(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	first := core.NewClosure("2024-05", core.Money{Cents: 300000}, core.Money{Cents: 10000})
	second := core.NewClosure("2024-05", core.Money{Cents: 300000}, core.Money{Cents: 27540})
	for _, c := range []core.Closure{first, second} {
		if err := repo.UpsertClosure(ctx, c); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if err := repo.UpsertClosure(ctx, core.NewClosure("2024-04", core.Money{}, core.Money{Cents: 1})); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.ListClosures(ctx, ledger.NewestFirst, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Month != "2024-05" || got[0].Total.Cents != 27540 || got[0].Balance.Cents != 272460 {
		t.Fatalf("unexpected closures: %+v", got)
	}

	asc, err := repo.ListClosures(ctx, ledger.OldestFirst, 1)
	if err != nil || len(asc) != 1 || asc[0].Month != "2024-04" {
		t.Fatalf("unexpected ascending closures: %+v err=%v", asc, err)
	}
}

func TestUpsertClosureReplacesRowWithoutUniqueIndex(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	// Without the unique index ON CONFLICT has no target and fails, which
	// forces the delete and insert path.
	if _, err := repo.db.ExecContext(ctx, `DROP INDEX idx_closures_month`); err != nil {
		t.Fatalf("drop index: %v", err)
	}

	first := core.NewClosure("2024-03", core.Money{Cents: 0}, core.Money{Cents: 100})
	second := core.NewClosure("2024-03", core.Money{Cents: 0}, core.Money{Cents: 200})
	for _, c := range []core.Closure{first, second} {
		if err := repo.UpsertClosure(ctx, c); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	got, err := repo.ListClosures(ctx, ledger.NewestFirst, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Total.Cents != 200 || got[0].Balance.Cents != -200 {
		t.Fatalf("expected one row with the second values, got %+v", got)
	}
}

func TestAddRecurringApplicationMarkTwice(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	for i := 0; i < 2; i++ {
		if err := repo.AddRecurringApplicationMark(ctx, "2024-05", 7); err != nil {
			t.Fatalf("mark %d: %v", i, err)
		}
	}
	ok, err := repo.HasRecurringApplicationMark(ctx, "2024-05", 7)
	if err != nil || !ok {
		t.Fatalf("mark missing: ok=%v err=%v", ok, err)
	}
	if ok, _ := repo.HasRecurringApplicationMark(ctx, "2024-06", 7); ok {
		t.Error("mark should be scoped to its month")
	}

	var n int
	if err := repo.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recurring_applications WHERE month = ? AND recurring_charge_id = ?`, "2024-05", 7).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected one mark row, got %d", n)
	}
}

func TestListExpensesPrefixIsLiteral(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if _, err := repo.InsertExpense(ctx, core.Expense{
		Category: "Lazer", Amount: core.Money{Cents: 100}, Date: core.NewDate(2024, 3, 5),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	tests := []struct {
		prefix string
		want   int
	}{
		{"2024-03", 1},
		{"2024_03", 0},
		{"2024%", 0},
		{"", 1},
	}
	for _, tt := range tests {
		got, err := repo.ListExpenses(ctx, tt.prefix)
		if err != nil {
			t.Fatalf("ListExpenses(%q): %v", tt.prefix, err)
		}
		if len(got) != tt.want {
			t.Errorf("ListExpenses(%q) returned %d rows, want %d", tt.prefix, len(got), tt.want)
		}
		sum, err := repo.SumExpensesForMonth(ctx, tt.prefix)
		if err != nil {
			t.Fatalf("SumExpensesForMonth(%q): %v", tt.prefix, err)
		}
		if want := int64(tt.want * 100); sum.Cents != want {
			t.Errorf("SumExpensesForMonth(%q) = %d, want %d", tt.prefix, sum.Cents, want)
		}
	}
}

func TestMaterializeRecurringChargeOncePerMonth(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	c := core.RecurringCharge{Category: "Contas", Amount: core.Money{Cents: 19990}, Description: "Aluguel", Active: true}
	id, err := repo.InsertRecurringCharge(ctx, c)
	if err != nil {
		t.Fatalf("insert charge: %v", err)
	}
	c.ID = id

	on := core.NewDate(2024, 5, 1)
	if _, applied, err := repo.MaterializeRecurringCharge(ctx, "2024-05", c, on); err != nil || !applied {
		t.Fatalf("first materialize: applied=%v err=%v", applied, err)
	}
	if _, applied, err := repo.MaterializeRecurringCharge(ctx, "2024-05", c, on); err != nil || applied {
		t.Fatalf("second materialize: applied=%v err=%v", applied, err)
	}

	marked, err := repo.HasRecurringApplicationMark(ctx, "2024-05", id)
	if err != nil || !marked {
		t.Fatalf("mark missing: %v err=%v", marked, err)
	}
	sum, _ := repo.SumExpensesForMonth(ctx, "2024-05")
	if sum.Cents != 19990 {
		t.Fatalf("expected a single instance, sum=%d", sum.Cents)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if err := repo.SetSalary(ctx, core.Money{Cents: 300000}); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetTheme(ctx, "azul_noite"); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetLastAppliedMonth(ctx, "2024-05"); err != nil {
		t.Fatal(err)
	}
	s, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := core.Settings{Salary: core.Money{Cents: 300000}, LastAppliedMonth: "2024-05", ThemeKey: "azul_noite"}
	if s != want {
		t.Fatalf("got %+v, want %+v", s, want)
	}
}
