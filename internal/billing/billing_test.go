package billing

import (
	"testing"
	"time"

	"carteira/internal/core"
)

func idPtr(v int64) *int64 { return &v }

func TestResolveMarch2024(t *testing.T) {
	p := Resolve(10, 2024, time.March)

	wantStart := time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)
	if !p.Start.Equal(wantStart) || !p.End.Equal(wantEnd) {
		t.Fatalf("Resolve() = %s, want (%s, %s]", p, wantStart, wantEnd)
	}
	if got := p.String(); got != "(2024-02-11T00:00, 2024-03-10T23:59:59]" {
		t.Errorf("String() = %q", got)
	}

	tests := []struct {
		date core.Date
		want bool
	}{
		{core.NewDate(2024, 3, 10), true},
		{core.NewDate(2024, 2, 11), false},
		{core.NewDate(2024, 2, 12), true},
		{core.NewDate(2024, 2, 10), false},
		{core.NewDate(2024, 3, 11), false},
		{core.Date{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.date.String(), func(t *testing.T) {
			if got := p.Contains(tt.date); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestResolveRollover(t *testing.T) {
	tests := []struct {
		name       string
		closingDay int
		year       int
		month      time.Month
		wantStart  string
		wantEnd    string
	}{
		{"january rolls to december", 10, 2024, time.January, "2023-12-11", "2024-01-10"},
		{"leap february", 30, 2024, time.February, "2024-01-31", "2024-02-29"},
		{"non-leap february", 30, 2023, time.February, "2023-01-31", "2023-02-28"},
		{"march after leap february", 30, 2024, time.March, "2024-03-01", "2024-03-30"},
		{"day 31 in april", 31, 2024, time.April, "2024-04-01", "2024-04-30"},
		{"day 31 in may", 31, 2024, time.May, "2024-05-01", "2024-05-31"},
		{"day 31 in january", 31, 2025, time.January, "2025-01-01", "2025-01-31"},
		{"december", 5, 2024, time.December, "2024-11-06", "2024-12-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Resolve(tt.closingDay, tt.year, tt.month)
			if got := p.Start.Format("2006-01-02"); got != tt.wantStart {
				t.Errorf("Start = %s, want %s", got, tt.wantStart)
			}
			if got := p.End.Format("2006-01-02"); got != tt.wantEnd {
				t.Errorf("End = %s, want %s", got, tt.wantEnd)
			}
			if p.End.Hour() != 23 || p.End.Minute() != 59 || p.End.Second() != 59 {
				t.Errorf("End should be end of day, got %s", p.End)
			}
			if p.Month != tt.month || p.Year != tt.year {
				t.Errorf("period labelled %d/%d, want %d/%d", p.Month, p.Year, tt.month, tt.year)
			}
		})
	}
}

func TestContainsClosingDayOfClampedMonth(t *testing.T) {
	p := Resolve(31, 2023, time.February)
	if !p.Contains(core.NewDate(2023, 2, 28)) {
		t.Error("last day of february should close the clamped invoice")
	}
	if p.Contains(core.NewDate(2023, 3, 1)) {
		t.Error("march 1st belongs to the next cycle")
	}
}

func TestInvoiceItems(t *testing.T) {
	card := core.Card{Record: core.Record{ID: 1}, Name: "Nubank", ClosingDay: 10}
	expenses := []core.Expense{
		{Record: core.Record{ID: 1}, Description: "in", Date: core.NewDate(2024, 3, 1), PaymentMethod: core.Credit, CardID: idPtr(1)},
		{Record: core.Record{ID: 2}, Description: "debit", Date: core.NewDate(2024, 3, 1), PaymentMethod: core.Debit},
		{Record: core.Record{ID: 3}, Description: "other card", Date: core.NewDate(2024, 3, 1), PaymentMethod: core.Credit, CardID: idPtr(2)},
		{Record: core.Record{ID: 4}, Description: "too early", Date: core.NewDate(2024, 2, 11), PaymentMethod: core.Credit, CardID: idPtr(1)},
		{Record: core.Record{ID: 5}, Description: "closing day", Date: core.NewDate(2024, 3, 10), PaymentMethod: core.Credit, CardID: idPtr(1)},
		{Record: core.Record{ID: 6}, Description: "no date", PaymentMethod: core.Credit, CardID: idPtr(1)},
	}

	got := InvoiceItems(card, expenses, Resolve(card.ClosingDay, 2024, time.March))
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(got), got)
	}
	if got[0].ID != 1 || got[1].ID != 5 {
		t.Errorf("unexpected items %d, %d", got[0].ID, got[1].ID)
	}
}

func TestDueDate(t *testing.T) {
	tests := []struct {
		name       string
		closingDay int
		dueDay     int
		month      time.Month
		want       string
	}{
		{"due after closing", 3, 10, time.March, "2024-03-10"},
		{"due before closing", 25, 5, time.March, "2024-04-05"},
		{"due next year", 25, 5, time.December, "2025-01-05"},
		{"due equal to closing", 10, 10, time.March, "2024-04-10"},
		{"clamped due day", 20, 31, time.April, "2024-04-30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueDate(tt.closingDay, tt.dueDay, 2024, tt.month)
			if got.String() != tt.want {
				t.Errorf("DueDate() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOpenInvoiceMonth(t *testing.T) {
	tests := []struct {
		name      string
		closing   int
		today     core.Date
		wantYear  int
		wantMonth time.Month
	}{
		{"before closing", 10, core.NewDate(2024, 3, 5), 2024, time.March},
		{"on closing", 10, core.NewDate(2024, 3, 10), 2024, time.March},
		{"after closing", 10, core.NewDate(2024, 3, 11), 2024, time.April},
		{"after december closing", 10, core.NewDate(2024, 12, 20), 2025, time.January},
		{"clamped closing", 31, core.NewDate(2024, 4, 30), 2024, time.April},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, m := OpenInvoiceMonth(tt.closing, tt.today)
			if y != tt.wantYear || m != tt.wantMonth {
				t.Errorf("OpenInvoiceMonth() = %d/%d, want %d/%d", m, y, tt.wantMonth, tt.wantYear)
			}
		})
	}
}

func TestOpenInvoiceMonthGapDay(t *testing.T) {
	gap := core.NewDate(2024, 3, 11)
	y, m := OpenInvoiceMonth(10, gap)
	if y != 2024 || m != time.April {
		t.Fatalf("OpenInvoiceMonth() = %d/%d, want 4/2024", m, y)
	}
	if Resolve(10, y, m).Contains(gap) {
		t.Error("day after closing must not be in the open invoice")
	}
	if Resolve(10, 2024, time.March).Contains(gap) {
		t.Error("day after closing must not be in the closed invoice")
	}
	if !Resolve(10, y, m).Contains(core.NewDate(2024, 3, 12)) {
		t.Error("two days after closing belongs to the open invoice")
	}
}
