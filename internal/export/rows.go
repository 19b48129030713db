// Package export renders the annual summary and card invoices as
// spreadsheet rows, written to XLSX files or a Google Sheets spreadsheet.
package export

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"carteira/internal/summary"
)

var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthName is the Portuguese name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// AnnualSheetName is the sheet title used for a year.
func AnnualSheetName(year int) string {
	return fmt.Sprintf("Resumo %d", year)
}

// InvoiceSheetName is the sheet title used for an invoice. Sheet names are
// capped at 31 characters by spreadsheet applications.
func InvoiceSheetName(inv summary.Invoice) string {
	name := fmt.Sprintf("%s %02d-%d", inv.Card.Name, int(inv.Period.Month), inv.Period.Year)
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}

// AnnualRows is a header, one row per month and a totals row. Amounts are
// float64 so spreadsheets treat them as numbers.
func AnnualRows(a summary.Annual) [][]any {
	rows := make([][]any, 0, 14)
	rows = append(rows, []any{"Mês", "Receitas", "Débito", "Crédito", "Saldo"})
	for _, m := range a.Months {
		rows = append(rows, []any{
			MonthName(m.Month), number(m.Income), number(m.DebitExpense), number(m.CreditExpense), number(m.Balance),
		})
	}
	rows = append(rows, []any{
		"Total", number(a.Income), number(a.DebitExpense), number(a.CreditExpense), number(a.Balance),
	})
	return rows
}

// InvoiceRows lists every item of the invoice (the query filter is not
// applied) followed by the total.
func InvoiceRows(inv summary.Invoice) [][]any {
	rows := make([][]any, 0, len(inv.Items)+3)
	rows = append(rows, []any{"Data", "Descrição", "Categoria", "Parcela", "Valor"})
	for _, e := range inv.Items {
		installment := ""
		if e.InstallmentIndex != nil && e.InstallmentCount != nil {
			installment = fmt.Sprintf("%d/%d", *e.InstallmentIndex, *e.InstallmentCount)
		}
		rows = append(rows, []any{e.Date.String(), e.Description, e.Category, installment, number(e.Amount)})
	}
	rows = append(rows,
		[]any{"", "Total", "", "", number(inv.Total)},
		[]any{"", "Vencimento", "", "", inv.DueDate.String()},
	)
	return rows
}

func number(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
