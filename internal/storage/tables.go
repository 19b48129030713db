package storage

import (
	"carteira/internal/core"
	"carteira/internal/store"
)

var expenseMapping = mapping[core.Expense]{
	table:   "expenses",
	entity:  store.EntityExpense,
	columns: []string{"description", "amount", "category", "date", "payment_method", "card_id", "installment_index", "installment_count"},
	orderBy: "date DESC, id DESC",
	fields: func(e *core.Expense) []any {
		return []any{&e.Description, &e.Amount, &e.Category, dateColumn{&e.Date}, &e.PaymentMethod,
			nullColumn[int64]{&e.CardID}, nullColumn[int]{&e.InstallmentIndex}, nullColumn[int]{&e.InstallmentCount}}
	},
	values: func(e *core.Expense) []any {
		return []any{e.Description, e.Amount.String(), e.Category, dateValue(e.Date), string(e.PaymentMethod),
			nullValue(e.CardID), nullValue(e.InstallmentIndex), nullValue(e.InstallmentCount)}
	},
}

var incomeMapping = mapping[core.Income]{
	table:   "incomes",
	entity:  store.EntityIncome,
	columns: []string{"description", "amount", "date"},
	orderBy: "date DESC, id DESC",
	fields: func(i *core.Income) []any {
		return []any{&i.Description, &i.Amount, dateColumn{&i.Date}}
	},
	values: func(i *core.Income) []any {
		return []any{i.Description, i.Amount.String(), dateValue(i.Date)}
	},
}

var billMapping = mapping[core.RecurringBill]{
	table:  "recurring_bills",
	entity: store.EntityBill,
	columns: []string{"name", "amount", "billing_day", "billing_month", "join_year", "kind", "custom_category",
		"payment_method", "card_id", "period", "installment_index", "installment_count"},
	orderBy: "billing_day ASC, id ASC",
	fields: func(b *core.RecurringBill) []any {
		return []any{&b.Name, &b.Amount, &b.BillingDay, nullColumn[int]{&b.BillingMonth}, nullColumn[int]{&b.JoinYear},
			&b.Kind, &b.CustomCategory, &b.PaymentMethod, nullColumn[int64]{&b.CardID}, &b.Period,
			nullColumn[int]{&b.InstallmentIndex}, nullColumn[int]{&b.InstallmentCount}}
	},
	values: func(b *core.RecurringBill) []any {
		return []any{b.Name, b.Amount.String(), b.BillingDay, nullValue(b.BillingMonth), nullValue(b.JoinYear),
			string(b.Kind), b.CustomCategory, string(b.PaymentMethod), nullValue(b.CardID), string(b.Period),
			nullValue(b.InstallmentIndex), nullValue(b.InstallmentCount)}
	},
}

var cardMapping = mapping[core.Card]{
	table:   "cards",
	entity:  store.EntityCard,
	columns: []string{"name", "credit_limit", "due_day", "closing_day", "is_primary"},
	orderBy: "is_primary DESC, name COLLATE NOCASE ASC, id ASC",
	fields: func(c *core.Card) []any {
		return []any{&c.Name, &c.CreditLimit, &c.DueDay, &c.ClosingDay, &c.IsPrimary}
	},
	values: func(c *core.Card) []any {
		return []any{c.Name, c.CreditLimit.String(), c.DueDay, c.ClosingDay, c.IsPrimary}
	},
}

var categoryMapping = mapping[core.Category]{
	table:   "categories",
	entity:  store.EntityCategory,
	columns: []string{"name", "type", "icon"},
	orderBy: "name COLLATE NOCASE ASC, id ASC",
	fields: func(c *core.Category) []any {
		return []any{&c.Name, &c.Type, &c.Icon}
	},
	values: func(c *core.Category) []any {
		return []any{c.Name, string(c.Type), c.Icon}
	},
}

var goalMapping = mapping[core.Goal]{
	table:   "goals",
	entity:  store.EntityGoal,
	columns: []string{"title", "target_amount", "current_amount", "status", "is_primary"},
	orderBy: "is_primary DESC, title COLLATE NOCASE ASC, id ASC",
	fields: func(g *core.Goal) []any {
		return []any{&g.Title, &g.TargetAmount, &g.CurrentAmount, &g.Status, &g.IsPrimary}
	},
	values: func(g *core.Goal) []any {
		return []any{g.Title, g.TargetAmount.String(), g.CurrentAmount.String(), string(g.Status), g.IsPrimary}
	},
}
