// This file implements the Strategy Pattern for recurring bill dueness.
// Each billing period has its own checker deciding whether a bill is due in
// a given month; agreements additionally stop once their installments run out.

package summary

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"carteira/internal/core"
)

// DuenessChecker is the strategy interface for checking if a bill is due in a month.
type DuenessChecker interface {
	IsDue(bill core.RecurringBill, year int, month time.Month) bool
}

// MonthlyChecker implements DuenessChecker for monthly bills.
type MonthlyChecker struct{}

// IsDue returns true for every month from the join year on.
func (MonthlyChecker) IsDue(bill core.RecurringBill, year int, _ time.Month) bool {
	return joined(bill, year)
}

// AnnualChecker implements DuenessChecker for annual bills.
type AnnualChecker struct{}

// IsDue returns true only in the bill's billing month.
func (AnnualChecker) IsDue(bill core.RecurringBill, year int, month time.Month) bool {
	if bill.BillingMonth == nil || !joined(bill, year) {
		return false
	}
	return time.Month(*bill.BillingMonth) == month
}

func joined(bill core.RecurringBill, year int) bool {
	return bill.JoinYear == nil || year >= *bill.JoinYear
}

// duenessStrategies maps billing periods to their checkers.
var duenessStrategies = map[core.BillingPeriod]DuenessChecker{
	core.Monthly: MonthlyChecker{},
	core.Annual:  AnnualChecker{},
}

// GetDuenessChecker returns the checker for a billing period.
func GetDuenessChecker(period core.BillingPeriod) (DuenessChecker, error) {
	checker, ok := duenessStrategies[period]
	if !ok {
		return nil, fmt.Errorf("unknown billing period: %s", period)
	}
	return checker, nil
}

// DueBill is one bill falling due in the selected month.
type DueBill struct {
	Bill        core.RecurringBill `json:"bill"`
	DueDate     core.Date          `json:"due_date"`
	Installment int                `json:"installment,omitempty"`
}

type BillSchedule struct {
	Bills []DueBill       `json:"bills"`
	Total decimal.Decimal `json:"total"`
	Debit decimal.Decimal `json:"debit"`
}

// BillsForMonth lists the bills due in month/year with their clamped due
// dates, in input order. Bills with an unknown period are skipped.
func BillsForMonth(bills []core.RecurringBill, year int, month time.Month) BillSchedule {
	var s BillSchedule
	for _, b := range bills {
		checker, err := GetDuenessChecker(b.Period)
		if err != nil || !checker.IsDue(b, year, month) {
			continue
		}

		due := DueBill{Bill: b, DueDate: core.ClampedDate(year, month, b.BillingDay)}
		if b.Kind == core.Agreement {
			n, ok := AgreementInstallment(b, year, month)
			if !ok {
				continue
			}
			due.Installment = n
		}

		s.Bills = append(s.Bills, due)
		s.Total = s.Total.Add(b.Amount)
		if b.PaymentMethod == core.Debit {
			s.Debit = s.Debit.Add(b.Amount)
		}
	}
	return s
}

// AgreementInstallment returns which installment of an agreement falls in
// month/year. The stored index is the installment due in the month the bill
// was registered; later months count up from it. ok is false once every
// installment is paid or before the agreement started.
func AgreementInstallment(b core.RecurringBill, year int, month time.Month) (int, bool) {
	if b.InstallmentIndex == nil || b.InstallmentCount == nil {
		return 0, false
	}
	n := *b.InstallmentIndex
	if !b.CreatedAt.IsZero() {
		n += (year-b.CreatedAt.Year())*12 + int(month-b.CreatedAt.Month())
	}
	if n < 1 || n > *b.InstallmentCount {
		return 0, false
	}
	return n, true
}
