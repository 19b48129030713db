package summary

import (
	"time"

	"carteira/internal/core"
)

// Snapshot is everything loaded for one owner.
type Snapshot struct {
	Expenses   []core.Expense       `json:"expenses"`
	Incomes    []core.Income        `json:"incomes"`
	Bills      []core.RecurringBill `json:"bills"`
	Cards      []core.Card          `json:"cards"`
	Categories []core.Category      `json:"categories"`
	Goals      []core.Goal          `json:"goals"`
	Settings   core.Settings        `json:"settings"`
}

// Overview is the dashboard for one month.
type Overview struct {
	Year         int             `json:"year"`
	Month        time.Month      `json:"month"`
	Totals       Totals          `json:"totals"`
	Credit       Credit          `json:"credit"`
	Categories   []CategoryTotal `json:"categories"`
	Bills        BillSchedule    `json:"bills"`
	Goals        []GoalView      `json:"goals"`
	PrimaryGoal  *GoalView       `json:"primary_goal,omitempty"`
	PrimaryCard  *CardUsage      `json:"primary_card,omitempty"`
	BalanceLevel Level           `json:"balance_level"`
	CreditLevel  Level           `json:"credit_level"`
}

// BuildOverview computes the dashboard. Totals and categories cover the
// selected month; credit usage is the lifetime view.
func BuildOverview(s Snapshot, year int, month time.Month) Overview {
	expenses := ExpensesIn(s.Expenses, year, month)

	o := Overview{
		Year:       year,
		Month:      month,
		Totals:     ComputeTotals(IncomesIn(s.Incomes, year, month), expenses),
		Credit:     ComputeCredit(s.Cards, s.Expenses),
		Categories: CategoryBreakdown(expenses, s.Categories),
		Bills:      BillsForMonth(s.Bills, year, month),
		Goals:      GoalViews(s.Goals),
	}

	for i := range o.Goals {
		if o.Goals[i].Goal.IsPrimary {
			o.PrimaryGoal = &o.Goals[i]
			break
		}
	}
	for i := range o.Credit.Cards {
		if o.Credit.Cards[i].Card.IsPrimary {
			o.PrimaryCard = &o.Credit.Cards[i]
			break
		}
	}

	o.BalanceLevel = ClassifyBalance(o.Totals.Balance, s.Settings.BalanceThresholds)
	o.CreditLevel = LevelNeutral
	if o.Credit.TotalLimit.IsPositive() {
		o.CreditLevel = ClassifyCredit(o.Credit.AvailablePercent, s.Settings.CreditThresholds)
	}
	return o
}
