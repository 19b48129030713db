package summary

import (
	"time"

	"github.com/shopspring/decimal"

	"carteira/internal/core"
)

type MonthSummary struct {
	Month         time.Month      `json:"month"`
	Income        decimal.Decimal `json:"income"`
	DebitExpense  decimal.Decimal `json:"debit_expense"`
	CreditExpense decimal.Decimal `json:"credit_expense"`
	Balance       decimal.Decimal `json:"balance"`
}

// Annual is the month by month view of one year.
type Annual struct {
	Year          int              `json:"year"`
	Months        [12]MonthSummary `json:"months"`
	Income        decimal.Decimal  `json:"income"`
	DebitExpense  decimal.Decimal  `json:"debit_expense"`
	CreditExpense decimal.Decimal  `json:"credit_expense"`
	Balance       decimal.Decimal  `json:"balance"`
}

// BuildAnnual buckets records by their own month. Records dated in another
// year, or with no usable date, contribute nothing.
func BuildAnnual(year int, incomes []core.Income, expenses []core.Expense) Annual {
	a := Annual{Year: year}
	for i := range a.Months {
		a.Months[i].Month = time.Month(i + 1)
	}

	for _, in := range incomes {
		if in.Date.IsZero() || in.Date.Year() != year {
			continue
		}
		m := &a.Months[in.Date.Month()-1]
		m.Income = m.Income.Add(in.Amount)
	}
	for _, e := range expenses {
		if e.Date.IsZero() || e.Date.Year() != year {
			continue
		}
		m := &a.Months[e.Date.Month()-1]
		switch e.PaymentMethod {
		case core.Debit:
			m.DebitExpense = m.DebitExpense.Add(e.Amount)
		case core.Credit:
			m.CreditExpense = m.CreditExpense.Add(e.Amount)
		}
	}

	for i := range a.Months {
		m := &a.Months[i]
		m.Balance = m.Income.Sub(m.DebitExpense)
		a.Income = a.Income.Add(m.Income)
		a.DebitExpense = a.DebitExpense.Add(m.DebitExpense)
		a.CreditExpense = a.CreditExpense.Add(m.CreditExpense)
		a.Balance = a.Balance.Add(m.Balance)
	}
	return a
}
