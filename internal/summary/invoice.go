package summary

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"carteira/internal/billing"
	"carteira/internal/classify"
	"carteira/internal/core"
)

// Invoice is the per-card statement of one month.
type Invoice struct {
	Card                 core.Card       `json:"card"`
	Period               billing.Period  `json:"period"`
	DueDate              core.Date       `json:"due_date"`
	Items                []core.Expense  `json:"items"`
	Displayed            []core.Expense  `json:"displayed"`
	Query                string          `json:"query,omitempty"`
	Total                decimal.Decimal `json:"total"`
	PostInvoiceAvailable decimal.Decimal `json:"post_invoice_available"`
}

// BuildInvoice resolves the card's billing period for month/year and sums the
// matching credit expenses. query narrows Displayed by description, ignoring
// case and accents; it never changes Total.
func BuildInvoice(card core.Card, expenses []core.Expense, year int, month time.Month, query string) Invoice {
	period := billing.Resolve(card.ClosingDay, year, month)
	items := billing.InvoiceItems(card, expenses, period)

	total := decimal.Zero
	for _, e := range items {
		total = total.Add(e.Amount)
	}

	return Invoice{
		Card:                 card,
		Period:               period,
		DueDate:              billing.DueDate(card.ClosingDay, card.DueDay, period.Year, period.Month),
		Items:                items,
		Displayed:            FilterByDescription(items, query),
		Query:                query,
		Total:                total,
		PostInvoiceAvailable: card.CreditLimit.Sub(total),
	}
}

// FilterByDescription keeps expenses whose description contains query.
// An empty query keeps everything.
func FilterByDescription(expenses []core.Expense, query string) []core.Expense {
	q := classify.Normalize(query)
	if q == "" {
		return expenses
	}
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if strings.Contains(classify.Normalize(e.Description), q) {
			out = append(out, e)
		}
	}
	return out
}
