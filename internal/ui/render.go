// Package ui renders the ledger pages for the terminal.
package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"virtum/internal/core"
)

const (
	// DashboardClosures is how many recent closures the dashboard lists.
	DashboardClosures = 8
	// ClosuresPageLimit is how many closures the closures page lists.
	ClosuresPageLimit = 24
)

// Renderer draws pages with one palette.
type Renderer struct {
	p Palette
}

// NewRenderer returns a renderer for the theme stored under themeKey.
func NewRenderer(themeKey string) *Renderer {
	return &Renderer{p: PaletteFor(themeKey)}
}

func (r *Renderer) Palette() Palette { return r.p }

func (r *Renderer) title(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(r.p.Accent).Render(s)
}

func (r *Renderer) subtle(s string) string {
	return lipgloss.NewStyle().Foreground(r.p.Sub).Render(s)
}

func (r *Renderer) amountColor(m core.Money) lipgloss.Color {
	if m.IsNegative() {
		return r.p.Red
	}
	return r.p.Green
}

func (r *Renderer) card(label, value string, valueColor lipgloss.Color) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		r.subtle(label),
		lipgloss.NewStyle().Bold(true).Foreground(valueColor).Render(value),
	)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(r.p.Border).
		Padding(0, 2).
		MarginRight(1).
		Render(body)
}

// table renders rows with a header. colored, when set, picks a foreground for
// individual cells.
func (r *Renderer) table(headers []string, rows [][]string, colored func(row, col int) (lipgloss.Color, bool)) string {
	base := lipgloss.NewStyle().Padding(0, 1).Foreground(r.p.Text)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(r.p.Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return base.Bold(true).Foreground(r.p.Accent)
			}
			s := base
			if row%2 == 1 {
				s = s.Background(r.p.AltRow)
			}
			if colored != nil {
				if c, ok := colored(row, col); ok {
					s = s.Foreground(c)
				}
			}
			return s
		})
	return t.Render()
}

func (r *Renderer) closureTable(closures []core.Closure) string {
	rows := make([][]string, len(closures))
	for i, c := range closures {
		rows[i] = []string{c.Month, FormatMoney(c.Total), FormatMoney(c.Balance)}
	}
	return r.table([]string{"Mês", "Total", "Saldo"}, rows, func(row, col int) (lipgloss.Color, bool) {
		if col != 2 || row < 0 || row >= len(closures) {
			return "", false
		}
		return r.amountColor(closures[row].Balance), true
	})
}

// DashboardView is the data shown on the dashboard.
type DashboardView struct {
	Today    time.Time
	Spent    core.Money
	Salary   core.Money
	Expenses []core.Expense
	Recent   []core.Closure
}

func (r *Renderer) Dashboard(v DashboardView) string {
	balance := v.Salary.Sub(v.Spent)
	today := core.DateOf(v.Today)

	header := r.subtle(fmt.Sprintf("Hoje: %s • %s", today.BR(), today.MonthKey()))
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		r.card("Gastos do mês", FormatMoney(v.Spent), r.p.Text),
		r.card("Salário", FormatMoney(v.Salary), r.p.Text),
		r.card("Saldo", FormatMoney(balance), r.amountColor(balance)),
	)

	var b strings.Builder
	b.WriteString(r.title("Virtum Finance") + "  " + header + "\n\n")
	b.WriteString(cards + "\n\n")

	b.WriteString(r.title("Gastos do mês") + "\n")
	if len(v.Expenses) == 0 {
		b.WriteString(r.subtle("Nenhum gasto neste mês.") + "\n")
	} else {
		b.WriteString(r.expenseTable(v.Expenses) + "\n")
	}

	b.WriteString("\n" + r.title("Fechamentos recentes") + "\n")
	recent := v.Recent
	if len(recent) > DashboardClosures {
		recent = recent[:DashboardClosures]
	}
	if len(recent) == 0 {
		b.WriteString(r.subtle("Nenhum fechamento ainda.") + "\n")
	} else {
		b.WriteString(r.closureTable(recent) + "\n")
	}
	return b.String()
}

func (r *Renderer) expenseTable(expenses []core.Expense) string {
	rows := make([][]string, len(expenses))
	for i, e := range expenses {
		rows[i] = []string{strconv.FormatInt(e.ID, 10), e.Category, FormatMoney(e.Amount), e.Date.BR()}
	}
	return r.table([]string{"ID", "Categoria", "Valor", "Data"}, rows, nil)
}

// Expense renders a single expense.
func (r *Renderer) Expense(e core.Expense) string {
	desc := e.Description
	if desc == "" {
		desc = "—"
	}
	rows := [][]string{
		{"ID", strconv.FormatInt(e.ID, 10)},
		{"Categoria", e.Category},
		{"Valor", FormatMoney(e.Amount)},
		{"Data", e.Date.BR()},
		{"Descrição", desc},
	}
	return r.title(fmt.Sprintf("Gasto #%d", e.ID)) + "\n" + r.table([]string{"Campo", "Valor"}, rows, nil) + "\n"
}

// History lists every closure, newest first, with the sum of their totals.
func (r *Renderer) History(closures []core.Closure) string {
	var sum core.Money
	for _, c := range closures {
		sum = sum.Add(c.Total)
	}

	var b strings.Builder
	b.WriteString(r.title("Histórico de fechamentos") + "  " + r.subtle("Somatório: "+FormatMoney(sum)) + "\n")
	if len(closures) == 0 {
		b.WriteString(r.subtle("Nenhum fechamento ainda.") + "\n")
		return b.String()
	}
	b.WriteString(r.closureTable(closures) + "\n")
	b.WriteString(r.subtle("Use \"virtum reopen AAAA-MM\" para apagar um fechamento e corrigir.") + "\n")
	return b.String()
}

// Closures shows the current month's running figures and the latest
// closures.
func (r *Renderer) Closures(month string, spent, salary core.Money, closures []core.Closure) string {
	balance := salary.Sub(spent)

	var b strings.Builder
	b.WriteString(r.title("Fechamentos") + "\n")
	b.WriteString(fmt.Sprintf("Mês atual: %s  •  Gastos: %s  •  Saldo: %s\n\n",
		month,
		FormatMoney(spent),
		lipgloss.NewStyle().Foreground(r.amountColor(balance)).Render(FormatMoney(balance))))
	if len(closures) > ClosuresPageLimit {
		closures = closures[:ClosuresPageLimit]
	}
	if len(closures) == 0 {
		b.WriteString(r.subtle("Nenhum fechamento ainda.") + "\n")
		return b.String()
	}
	b.WriteString(r.closureTable(closures) + "\n")
	return b.String()
}

// ClosePreview is the confirmation shown before a month is closed.
func (r *Renderer) ClosePreview(c core.Closure) string {
	return fmt.Sprintf("%s\nMês: %s\n\nGastos: %s\nSaldo: %s\n\n%s\n",
		r.title("Fechar mês"),
		c.Month,
		FormatMoney(c.Total),
		lipgloss.NewStyle().Foreground(r.amountColor(c.Balance)).Render(FormatMoney(c.Balance)),
		r.subtle("Deseja fechar o mês? Repita com -yes para confirmar."))
}

// RecurringCharges lists the fixed charges.
func (r *Renderer) RecurringCharges(charges []core.RecurringCharge) string {
	var b strings.Builder
	b.WriteString(r.title("Fixos (recorrentes)") + "\n")
	b.WriteString(r.subtle("Eles são lançados automaticamente no início de cada mês.") + "\n")
	if len(charges) == 0 {
		b.WriteString(r.subtle("Nenhum fixo cadastrado.") + "\n")
		return b.String()
	}
	rows := make([][]string, len(charges))
	for i, c := range charges {
		active := "Não"
		if c.Active {
			active = "Sim"
		}
		rows[i] = []string{strconv.FormatInt(c.ID, 10), c.Category, FormatMoney(c.Amount), active}
	}
	b.WriteString(r.table([]string{"ID", "Categoria", "Valor", "Ativo"}, rows, func(row, col int) (lipgloss.Color, bool) {
		if col != 3 || row < 0 || row >= len(charges) {
			return "", false
		}
		if charges[row].Active {
			return r.p.Green, true
		}
		return r.p.Sub, true
	}) + "\n")
	return b.String()
}

// Themes lists the palettes, marking current.
func (r *Renderer) Themes(current string) string {
	var b strings.Builder
	b.WriteString(r.title("Escolha uma paleta") + "\n")
	b.WriteString(r.subtle("Você pode trocar quando quiser. O tema fica salvo.") + "\n\n")
	active := PaletteFor(current).Key
	for _, p := range Palettes {
		marker := "  "
		if p.Key == active {
			marker = "> "
		}
		swatch := lipgloss.NewStyle().Background(p.Accent).Render("  ") +
			lipgloss.NewStyle().Background(p.BG).Render("  ")
		b.WriteString(fmt.Sprintf("%s%s %-14s %s\n", marker, swatch, p.Key, p.Label))
	}
	return b.String()
}

// Salary renders the configured salary.
func (r *Renderer) Salary(m core.Money) string {
	return r.title("Salário mensal") + "  " + FormatMoney(m) + "\n"
}

func (r *Renderer) Success(msg string) string {
	return lipgloss.NewStyle().Foreground(r.p.Green).Render(msg) + "\n"
}

func (r *Renderer) Error(msg string) string {
	return lipgloss.NewStyle().Foreground(r.p.Red).Render(msg) + "\n"
}
