// Package memory is a process-local ledger.Store. Nothing survives Close.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"virtum/internal/core"
	"virtum/internal/ledger"
)

type markKey struct {
	month    string
	chargeID int64
}

type Store struct {
	mu       sync.Mutex
	nextID   int64
	expenses []core.Expense
	charges  []core.RecurringCharge
	marks    map[markKey]struct{}
	closures map[string]core.Closure
	settings core.Settings
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		marks:    map[markKey]struct{}{},
		closures: map[string]core.Closure{},
		settings: core.Settings{ThemeKey: core.DefaultTheme},
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) ListExpenses(_ context.Context, monthPrefix string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if strings.HasPrefix(e.Date.ISO(), monthPrefix) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if di, dj := out[i].Date.ISO(), out[j].Date.ISO(); di != dj {
			return di > dj
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.expenseIndex(id); i >= 0 {
		return s.expenses[i], nil
	}
	return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
}

func (s *Store) InsertExpense(_ context.Context, e core.Expense) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertExpense(e), nil
}

func (s *Store) insertExpense(e core.Expense) int64 {
	e.ID = s.id()
	s.expenses = append(s.expenses, e)
	return e.ID
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.expenseIndex(e.ID)
	if i < 0 {
		return fmt.Errorf("expense %d: %w", e.ID, core.ErrNotFound)
	}
	s.expenses[i] = e
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.expenseIndex(id)
	if i < 0 {
		return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
	return nil
}

func (s *Store) SumExpensesForMonth(_ context.Context, monthPrefix string) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total core.Money
	for _, e := range s.expenses {
		if strings.HasPrefix(e.Date.ISO(), monthPrefix) {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (s *Store) expenseIndex(id int64) int {
	for i, e := range s.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) ListRecurringCharges(_ context.Context) ([]core.RecurringCharge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RecurringCharge, 0, len(s.charges))
	for i := len(s.charges) - 1; i >= 0; i-- {
		out = append(out, s.charges[i])
	}
	return out, nil
}

func (s *Store) ListActiveRecurringCharges(_ context.Context) ([]core.RecurringCharge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.RecurringCharge
	for _, c := range s.charges {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) GetRecurringCharge(_ context.Context, id int64) (core.RecurringCharge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.chargeIndex(id); i >= 0 {
		return s.charges[i], nil
	}
	return core.RecurringCharge{}, fmt.Errorf("recurring charge %d: %w", id, core.ErrNotFound)
}

func (s *Store) InsertRecurringCharge(_ context.Context, c core.RecurringCharge) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	s.charges = append(s.charges, c)
	return c.ID, nil
}

func (s *Store) SetRecurringChargeActive(_ context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.chargeIndex(id)
	if i < 0 {
		return fmt.Errorf("recurring charge %d: %w", id, core.ErrNotFound)
	}
	s.charges[i].Active = active
	return nil
}

func (s *Store) DeleteRecurringCharge(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.chargeIndex(id)
	if i < 0 {
		return fmt.Errorf("recurring charge %d: %w", id, core.ErrNotFound)
	}
	s.charges = append(s.charges[:i], s.charges[i+1:]...)
	return nil
}

func (s *Store) chargeIndex(id int64) int {
	for i, c := range s.charges {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) HasRecurringApplicationMark(_ context.Context, month string, chargeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.marks[markKey{month, chargeID}]
	return ok, nil
}

func (s *Store) AddRecurringApplicationMark(_ context.Context, month string, chargeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks[markKey{month, chargeID}] = struct{}{}
	return nil
}

func (s *Store) MaterializeRecurringCharge(_ context.Context, month string, c core.RecurringCharge, on core.Date) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := markKey{month, c.ID}
	if _, ok := s.marks[key]; ok {
		return 0, false, nil
	}
	id := s.insertExpense(c.Expense(on))
	s.marks[key] = struct{}{}
	return id, true, nil
}

func (s *Store) UpsertClosure(_ context.Context, c core.Closure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closures[c.Month] = c
	return nil
}

func (s *Store) DeleteClosure(_ context.Context, month string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.closures[month]; !ok {
		return fmt.Errorf("closure %s: %w", month, core.ErrNotFound)
	}
	delete(s.closures, month)
	return nil
}

func (s *Store) ListClosures(_ context.Context, order ledger.ClosureOrder, limit int) ([]core.Closure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Closure, 0, len(s.closures))
	for _, c := range s.closures {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if order == ledger.OldestFirst {
			return out[i].Month < out[j].Month
		}
		return out[i].Month > out[j].Month
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) GetSettings(_ context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.settings
	if out.ThemeKey == "" {
		out.ThemeKey = core.DefaultTheme
	}
	return out, nil
}

func (s *Store) GetSalary(_ context.Context) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Salary, nil
}

func (s *Store) SetSalary(_ context.Context, salary core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Salary = salary
	return nil
}

func (s *Store) GetTheme(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings.ThemeKey == "" {
		return core.DefaultTheme, nil
	}
	return s.settings.ThemeKey, nil
}

func (s *Store) SetTheme(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.ThemeKey = key
	return nil
}

func (s *Store) SetLastAppliedMonth(_ context.Context, month string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.LastAppliedMonth = month
	return nil
}
