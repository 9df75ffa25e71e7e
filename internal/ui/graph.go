package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"virtum/internal/core"
)

const graphWidth = 40

// GraphAxisMax is the top of the value axis: the largest closure total, at
// least 1 real, plus 20% headroom.
func GraphAxisMax(closures []core.Closure) float64 {
	top := 1.0
	for _, c := range closures {
		if v := c.Total.Float(); v > top {
			top = v
		}
	}
	return top * 1.2
}

// BarLength scales total against axisMax into at most width cells.
func BarLength(total, axisMax float64, width int) int {
	if axisMax <= 0 || total <= 0 {
		return 0
	}
	n := int(math.Round(total / axisMax * float64(width)))
	if n > width {
		return width
	}
	return n
}

// Graph draws one horizontal bar per closure. closures must be ordered
// oldest first.
func (r *Renderer) Graph(closures []core.Closure) string {
	var b strings.Builder
	b.WriteString(r.title("Gráfico mensal") + "\n")
	b.WriteString(r.subtle("Baseado nos fechamentos (Fechar mês).") + "\n\n")
	if len(closures) == 0 {
		b.WriteString(r.subtle("Nenhum fechamento ainda.") + "\n")
		return b.String()
	}

	axisMax := GraphAxisMax(closures)
	bar := lipgloss.NewStyle().Foreground(r.p.Accent)
	track := lipgloss.NewStyle().Foreground(r.p.Border)
	for _, c := range closures {
		n := BarLength(c.Total.Float(), axisMax, graphWidth)
		fmt.Fprintf(&b, "%s │%s%s %s\n",
			c.Month,
			bar.Render(strings.Repeat("█", n)),
			track.Render(strings.Repeat("·", graphWidth-n)),
			FormatMoney(c.Total))
	}
	b.WriteString(r.subtle(fmt.Sprintf("        eixo: 0 a %s", "R$ "+brPrinter.Sprintf("%.2f", axisMax))) + "\n")
	return b.String()
}
