package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// DaysIn returns the number of days of the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampedDate builds a date, pulling day back to the last day of the month
// when the month is shorter (31 in April becomes 30, 30 in February becomes 28/29).
// Month overflow and underflow roll the year.
func ClampedDate(year int, month time.Month, day int) Date {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return NewDate(first.Year(), int(first.Month()), day)
}

// AddMonths moves the date n months keeping the day, clamped to month end.
func (d Date) AddMonths(n int) Date {
	if d.IsZero() {
		return d
	}
	return ClampedDate(d.Year(), d.Time.Month()+time.Month(n), d.Day())
}

// SplitInstallments turns a purchase paid in count installments into one
// expense per month. Every installment gets the amount divided down to the
// cent; the first one absorbs the rounding remainder.
func SplitInstallments(e Expense, count int) []Expense {
	if count <= 1 {
		return []Expense{e}
	}

	n := decimal.NewFromInt(int64(count))
	share := e.Amount.DivRound(n, 2)
	if share.Mul(n).GreaterThan(e.Amount) {
		share = share.Sub(decimal.New(1, -2))
	}
	remainder := e.Amount.Sub(share.Mul(n))

	out := make([]Expense, 0, count)
	for i := 0; i < count; i++ {
		item := e
		item.Record = Record{}
		item.Amount = share
		if i == 0 {
			item.Amount = share.Add(remainder)
		}
		item.Date = e.Date.AddMonths(i)
		index, total := i+1, count
		item.InstallmentIndex = &index
		item.InstallmentCount = &total
		out = append(out, item)
	}
	return out
}
