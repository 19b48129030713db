// Package billing resolves credit card billing cycles.
//
// An invoice is identified by the month it closes in. Its period is the
// half-open range (Start, End]: End is the closing day of that month at
// 23:59:59 and Start is the day after the previous month's closing day at
// midnight. Membership is checked on calendar days with a strict lower bound,
// so a purchase made on Start itself belongs to neither invoice.
//
// Closing and due days beyond the month length are clamped to the last day
// of the month (31 in April resolves to April 30).
package billing

import (
	"fmt"
	"time"

	"carteira/internal/core"
)

const endOfDay = 23*time.Hour + 59*time.Minute + 59*time.Second

// Period is the billing window of one invoice.
type Period struct {
	Year  int
	Month time.Month
	Start time.Time
	End   time.Time
}

// Resolve computes the period of the invoice that closes in month/year.
func Resolve(closingDay, year int, month time.Month) Period {
	closing := core.ClampedDate(year, month, closingDay)
	previous := core.ClampedDate(year, month-1, closingDay)

	return Period{
		Year:  closing.Year(),
		Month: closing.Time.Month(),
		Start: previous.Time.AddDate(0, 0, 1),
		End:   closing.Time.Add(endOfDay),
	}
}

// Contains reports whether a calendar date falls inside the period.
// The zero Date never does, and neither does Start: the day after a closing
// day belongs to no invoice (see OpenInvoiceMonth).
func (p Period) Contains(d core.Date) bool {
	if d.IsZero() {
		return false
	}
	day := core.DateOf(d.Time).Time
	return day.After(p.Start) && !day.After(p.End)
}

// ClosingDate is the calendar day the invoice closes.
func (p Period) ClosingDate() core.Date {
	return core.DateOf(p.End)
}

func (p Period) String() string {
	return fmt.Sprintf("(%s, %s]", p.Start.Format("2006-01-02T15:04"), p.End.Format("2006-01-02T15:04:05"))
}

// InvoiceItems keeps the credit expenses charged to card inside p.
// Debit expenses are never part of an invoice. Input order is preserved.
func InvoiceItems(card core.Card, expenses []core.Expense, p Period) []core.Expense {
	var out []core.Expense
	for _, e := range expenses {
		if !e.IsCreditOn(card.ID) {
			continue
		}
		if p.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// DueDate is the payment date of the invoice closing in month/year.
// A due day after the closing day falls in the same month, otherwise in the next.
func DueDate(closingDay, dueDay, year int, month time.Month) core.Date {
	if dueDay > closingDay {
		return core.ClampedDate(year, month, dueDay)
	}
	return core.ClampedDate(year, month+1, dueDay)
}

// OpenInvoiceMonth returns the invoice to show as open on today: this
// month's invoice until its closing day, next month's after. On the day right
// after the closing day the returned invoice is already the next one, but
// its period starts strictly after today, so a purchase made that day is in
// no invoice (Contains reports false).
func OpenInvoiceMonth(closingDay int, today core.Date) (int, time.Month) {
	closing := core.ClampedDate(today.Year(), today.Time.Month(), closingDay)
	if today.Day() <= closing.Day() {
		return closing.Year(), closing.Time.Month()
	}
	next := core.ClampedDate(today.Year(), today.Time.Month()+1, 1)
	return next.Year(), next.Time.Month()
}
