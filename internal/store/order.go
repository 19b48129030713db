package store

import (
	"cmp"
	"strings"

	"carteira/internal/core"
)

// Ordering of List results. The SQLite queries mirror these.

// CompareExpenses sorts by date descending, then id descending.
func CompareExpenses(a, b core.Expense) int {
	return byDateDesc(a.Date, b.Date, a.ID, b.ID)
}

// CompareIncomes sorts by date descending, then id descending.
func CompareIncomes(a, b core.Income) int {
	return byDateDesc(a.Date, b.Date, a.ID, b.ID)
}

func byDateDesc(a, b core.Date, aID, bID int64) int {
	if c := b.Compare(a.Time); c != 0 {
		return c
	}
	return cmp.Compare(bID, aID)
}

// CompareBills sorts by billing day, then id.
func CompareBills(a, b core.RecurringBill) int {
	if c := cmp.Compare(a.BillingDay, b.BillingDay); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// CompareCategories sorts by name, case-insensitively, then id.
func CompareCategories(a, b core.Category) int {
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// CompareCards puts the primary card first, then sorts by name.
func CompareCards(a, b core.Card) int {
	return primaryFirst(a.IsPrimary, b.IsPrimary, a.Name, b.Name, a.ID, b.ID)
}

// CompareGoals puts the primary goal first, then sorts by title.
func CompareGoals(a, b core.Goal) int {
	return primaryFirst(a.IsPrimary, b.IsPrimary, a.Title, b.Title, a.ID, b.ID)
}

func primaryFirst(aPrimary, bPrimary bool, aName, bName string, aID, bID int64) int {
	if aPrimary != bPrimary {
		if aPrimary {
			return -1
		}
		return 1
	}
	if c := strings.Compare(strings.ToLower(aName), strings.ToLower(bName)); c != 0 {
		return c
	}
	return cmp.Compare(aID, bID)
}
