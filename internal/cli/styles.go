package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	PrimaryColor = lipgloss.Color("#6366F1")
	IncomeColor  = lipgloss.Color("#22C55E")
	ExpenseColor = lipgloss.Color("#EF4444")
	WarningColor = lipgloss.Color("#F59E0B")
	SubtleColor  = lipgloss.Color("#6B7280")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)
	IncomeStyle  = lipgloss.NewStyle().Foreground(IncomeColor)
	ExpenseStyle = lipgloss.NewStyle().Foreground(ExpenseColor)
	SuccessStyle = lipgloss.NewStyle().Foreground(IncomeColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(0, 2)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(SubtleColor)

	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)
)

// AmountStyle colours a signed amount.
func AmountStyle(amount float64) lipgloss.Style {
	if amount < 0 {
		return ExpenseStyle
	}
	return IncomeStyle
}

// Table lays out rows in padded columns under a ruled header. Widths are
// measured with lipgloss so styled cells stay aligned.
func Table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = TableCellStyle.Width(widths[i] + 2).Render(cell)
		}
		return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	}

	var b strings.Builder
	b.WriteString(line(header, TableHeaderStyle))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(line(row, lipgloss.NewStyle()))
		b.WriteString("\n")
	}
	return b.String()
}
