// Package summary folds already-loaded collections into dashboard figures.
//
// Every function here is pure: inputs are never modified, nothing performs
// I/O and ratios over a zero denominator yield zero.
package summary

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"carteira/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Totals are the headline figures. Balance only counts debit spending;
// credit spending is reflected in available credit instead.
type Totals struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpense  decimal.Decimal `json:"total_expense"`
	DebitExpense  decimal.Decimal `json:"debit_expense"`
	CreditExpense decimal.Decimal `json:"credit_expense"`
	Balance       decimal.Decimal `json:"balance"`
}

func ComputeTotals(incomes []core.Income, expenses []core.Expense) Totals {
	var t Totals
	for _, i := range incomes {
		t.TotalIncome = t.TotalIncome.Add(i.Amount)
	}
	for _, e := range expenses {
		t.TotalExpense = t.TotalExpense.Add(e.Amount)
		switch e.PaymentMethod {
		case core.Debit:
			t.DebitExpense = t.DebitExpense.Add(e.Amount)
		case core.Credit:
			t.CreditExpense = t.CreditExpense.Add(e.Amount)
		}
	}
	t.Balance = t.TotalIncome.Sub(t.DebitExpense)
	return t
}

// CardUsage is the lifetime credit usage of one card.
type CardUsage struct {
	Card             core.Card       `json:"card"`
	Used             decimal.Decimal `json:"used"`
	Available        decimal.Decimal `json:"available"`
	AvailablePercent decimal.Decimal `json:"available_percent"`
}

type Credit struct {
	Cards            []CardUsage     `json:"cards"`
	TotalLimit       decimal.Decimal `json:"total_limit"`
	TotalUsed        decimal.Decimal `json:"total_used"`
	TotalAvailable   decimal.Decimal `json:"total_available"`
	AvailablePercent decimal.Decimal `json:"available_percent"`
}

// ComputeCredit sums every credit expense per card regardless of invoice.
// TotalUsed includes credit expenses whose card is not in cards.
func ComputeCredit(cards []core.Card, expenses []core.Expense) Credit {
	used := make(map[int64]decimal.Decimal, len(cards))
	var c Credit
	for _, e := range expenses {
		if e.PaymentMethod != core.Credit || e.CardID == nil {
			continue
		}
		used[*e.CardID] = used[*e.CardID].Add(e.Amount)
		c.TotalUsed = c.TotalUsed.Add(e.Amount)
	}

	c.Cards = make([]CardUsage, 0, len(cards))
	for _, card := range cards {
		u := used[card.ID]
		available := card.CreditLimit.Sub(u)
		c.Cards = append(c.Cards, CardUsage{
			Card:             card,
			Used:             u,
			Available:        available,
			AvailablePercent: Percent(available, card.CreditLimit),
		})
		c.TotalLimit = c.TotalLimit.Add(card.CreditLimit)
	}
	c.TotalAvailable = c.TotalLimit.Sub(c.TotalUsed)
	c.AvailablePercent = Percent(c.TotalAvailable, c.TotalLimit)
	return c
}

// Percent returns part/whole*100 rounded to two places and clamped to [0, 100].
// A non-positive whole yields zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	p := part.Div(whole).Mul(hundred).Round(2)
	return clamp(p, decimal.Zero, hundred)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

// CategoryTotal is one bucket of the category breakdown.
type CategoryTotal struct {
	Category core.Category   `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// CategoryBreakdown buckets expenses by exact category name. Only expense
// categories get a bucket; expenses with an unknown category are dropped.
// Buckets are sorted by total descending, ties keep category order.
func CategoryBreakdown(expenses []core.Expense, categories []core.Category) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(categories))
	index := make(map[string]int, len(categories))
	for _, c := range categories {
		if c.Type != core.ExpenseCategory {
			continue
		}
		if _, dup := index[c.Name]; dup {
			continue
		}
		index[c.Name] = len(out)
		out = append(out, CategoryTotal{Category: c, Total: decimal.Zero})
	}

	for _, e := range expenses {
		if i, ok := index[e.Category]; ok {
			out[i].Total = out[i].Total.Add(e.Amount)
		}
	}

	slices.SortStableFunc(out, func(a, b CategoryTotal) int {
		return b.Total.Cmp(a.Total)
	})
	return out
}

// InMonth reports whether d falls in month/year. The zero Date never does.
func InMonth(d core.Date, year int, month time.Month) bool {
	return !d.IsZero() && d.Year() == year && d.Time.Month() == month
}

// ExpensesIn keeps the expenses dated in month/year.
func ExpensesIn(expenses []core.Expense, year int, month time.Month) []core.Expense {
	var out []core.Expense
	for _, e := range expenses {
		if InMonth(e.Date, year, month) {
			out = append(out, e)
		}
	}
	return out
}

// IncomesIn keeps the incomes dated in month/year.
func IncomesIn(incomes []core.Income, year int, month time.Month) []core.Income {
	var out []core.Income
	for _, i := range incomes {
		if InMonth(i.Date, year, month) {
			out = append(out, i)
		}
	}
	return out
}
