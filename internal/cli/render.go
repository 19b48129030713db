package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"carteira/internal/core"
	"carteira/internal/export"
	"carteira/internal/summary"
)

var (
	colorBorder = lipgloss.Color("#575653")
	colorText   = lipgloss.Color("#FFFCF0")
	colorAccent = lipgloss.Color("#3AA99F")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	valueStyle = lipgloss.NewStyle().Foreground(colorText)
	dimStyle   = lipgloss.NewStyle().Foreground(colorBorder)
)

// Table is a bordered text table. A row holding the single cell "---" is
// drawn as a separator.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title in a rounded box.
func RenderTitle(title string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)
	return box.Render(titleStyle.Render(title))
}

// RenderTable draws t with the first column left aligned and the rest right
// aligned. Widths are measured in terminal cells.
func RenderTable(t Table) string {
	cols := len(t.Headers)
	if cols == 0 && len(t.Rows) > 0 {
		cols = len(t.Rows[0])
	}
	if cols == 0 {
		return ""
	}

	widths := make([]int, cols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < cols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right) + "\n")
	}
	line := func(cells []string, style lipgloss.Style) {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if i == 0 {
				cell = cell + pad
			} else {
				cell = pad + cell
			}
			b.WriteString(style.Render(" " + cell + " "))
			if i < cols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│") + "\n")
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		line(t.Headers, headerStyle)
		rule("├", "┼", "┤")
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}
		line(row, valueStyle)
	}
	rule("╰", "┴", "╯")
	return b.String()
}

// AnnualTable lays out the month-by-month year summary.
func AnnualTable(a summary.Annual, currency string) Table {
	format := func(m summary.MonthSummary) []string {
		return []string{
			export.MonthName(m.Month),
			core.FormatCurrencyCode(m.Income, currency),
			core.FormatCurrencyCode(m.DebitExpense, currency),
			core.FormatCurrencyCode(m.CreditExpense, currency),
			core.FormatCurrencyCode(m.Balance, currency),
		}
	}

	t := Table{
		Title:   fmt.Sprintf("Resumo %d", a.Year),
		Headers: []string{"Mês", "Receitas", "Débito", "Crédito", "Saldo"},
	}
	for _, m := range a.Months {
		t.Rows = append(t.Rows, format(m))
	}
	t.Rows = append(t.Rows, []string{"---"}, []string{
		"Total",
		core.FormatCurrencyCode(a.Income, currency),
		core.FormatCurrencyCode(a.DebitExpense, currency),
		core.FormatCurrencyCode(a.CreditExpense, currency),
		core.FormatCurrencyCode(a.Balance, currency),
	})
	return t
}

// InvoiceTable lists the displayed items of inv. The total always covers
// every item, filtered or not.
func InvoiceTable(inv summary.Invoice, currency string) Table {
	t := Table{
		Title:   fmt.Sprintf("%s  %s %d", inv.Card.Name, export.MonthName(inv.Period.Month), inv.Period.Year),
		Headers: []string{"Data", "Descrição", "Categoria", "Parcela", "Valor"},
	}
	for _, e := range inv.Displayed {
		part := ""
		if e.InstallmentIndex != nil && e.InstallmentCount != nil {
			part = fmt.Sprintf("%d/%d", *e.InstallmentIndex, *e.InstallmentCount)
		}
		t.Rows = append(t.Rows, []string{
			e.Date.String(),
			e.Description,
			e.Category,
			part,
			core.FormatCurrencyCode(e.Amount, currency),
		})
	}
	t.Rows = append(t.Rows,
		[]string{"---"},
		[]string{"Total", "", "", "", core.FormatCurrencyCode(inv.Total, currency)},
		[]string{"Vencimento", "", "", "", inv.DueDate.String()},
		[]string{"Disponível", "", "", "", core.FormatCurrencyCode(inv.PostInvoiceAvailable, currency)},
	)
	return t
}

// OverviewTable is the one-month dashboard: totals, credit and goals.
func OverviewTable(o summary.Overview, currency string) Table {
	money := func(d decimal.Decimal) string { return core.FormatCurrencyCode(d, currency) }

	t := Table{
		Title:   fmt.Sprintf("%s %d", export.MonthName(o.Month), o.Year),
		Headers: []string{"", "Valor"},
		Rows: [][]string{
			{"Receitas", money(o.Totals.TotalIncome)},
			{"Débito", money(o.Totals.DebitExpense)},
			{"Crédito", money(o.Totals.CreditExpense)},
			{"Saldo (" + string(o.BalanceLevel) + ")", money(o.Totals.Balance)},
			{"---"},
			{"Limite total", money(o.Credit.TotalLimit)},
			{"Disponível (" + string(o.CreditLevel) + ")", money(o.Credit.TotalAvailable)},
			{"Contas do mês", money(o.Bills.Total)},
		},
	}
	if len(o.Goals) > 0 {
		t.Rows = append(t.Rows, []string{"---"})
		for _, g := range o.Goals {
			t.Rows = append(t.Rows, []string{g.Goal.Title, fmt.Sprintf("%d%%", g.Progress)})
		}
	}
	return t
}
