package summary

import (
	"testing"
	"time"

	"carteira/internal/core"
)

func TestMonthlyChecker_IsDue(t *testing.T) {
	checker := MonthlyChecker{}
	tests := []struct {
		name     string
		joinYear *int
		year     int
		want     bool
	}{
		{"no join year", nil, 2024, true},
		{"joined earlier", intPtr(2020), 2024, true},
		{"joined this year", intPtr(2024), 2024, true},
		{"before join year", intPtr(2025), 2024, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bill := core.RecurringBill{Period: core.Monthly, JoinYear: tt.joinYear}
			if got := checker.IsDue(bill, tt.year, time.June); got != tt.want {
				t.Errorf("MonthlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnnualChecker_IsDue(t *testing.T) {
	checker := AnnualChecker{}
	bill := core.RecurringBill{Period: core.Annual, BillingMonth: intPtr(3)}

	if !checker.IsDue(bill, 2024, time.March) {
		t.Error("expected annual bill due in its billing month")
	}
	if checker.IsDue(bill, 2024, time.April) {
		t.Error("annual bill must not be due outside its billing month")
	}
	if checker.IsDue(core.RecurringBill{Period: core.Annual}, 2024, time.March) {
		t.Error("annual bill without billing month is never due")
	}
}

func TestGetDuenessChecker(t *testing.T) {
	if _, err := GetDuenessChecker(core.Monthly); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := GetDuenessChecker(core.Annual); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := GetDuenessChecker("WEEKLY"); err == nil {
		t.Error("expected error for unknown period")
	}
}

func TestAgreementInstallment(t *testing.T) {
	bill := core.RecurringBill{
		Record:           core.Record{CreatedAt: time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)},
		Kind:             core.Agreement,
		InstallmentIndex: intPtr(2),
		InstallmentCount: intPtr(3),
	}
	tests := []struct {
		year   int
		month  time.Month
		want   int
		wantOK bool
	}{
		{2023, time.November, 0, false},
		{2023, time.December, 1, true},
		{2024, time.January, 2, true},
		{2024, time.February, 3, true},
		{2024, time.March, 0, false},
	}
	for _, tt := range tests {
		got, ok := AgreementInstallment(bill, tt.year, tt.month)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("AgreementInstallment(%d/%d) = %d, %v; want %d, %v", tt.month, tt.year, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBillsForMonth(t *testing.T) {
	bills := []core.RecurringBill{
		{Name: "Netflix", Amount: dec("55.90"), BillingDay: 31, Kind: core.Subscription, Period: core.Monthly, PaymentMethod: core.Credit, CardID: idPtr(1)},
		{Name: "Aluguel", Amount: dec("1500"), BillingDay: 5, Kind: core.RentContract, Period: core.Monthly, PaymentMethod: core.Debit},
		{Name: "IPVA", Amount: dec("900"), BillingDay: 15, BillingMonth: intPtr(3), Kind: core.CustomContract, Period: core.Annual, PaymentMethod: core.Debit},
		{Name: "Acordo", Amount: dec("200"), BillingDay: 10, Kind: core.Agreement, Period: core.Monthly, PaymentMethod: core.Debit,
			InstallmentIndex: intPtr(3), InstallmentCount: intPtr(3),
			Record: core.Record{CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}},
		{Name: "Futuro", Amount: dec("10"), BillingDay: 1, Kind: core.Subscription, Period: core.Monthly, PaymentMethod: core.Debit, JoinYear: intPtr(2030)},
		{Name: "Inválido", Amount: dec("10"), BillingDay: 1, Kind: core.Subscription, Period: "WEEKLY", PaymentMethod: core.Debit},
	}

	april := BillsForMonth(bills, 2024, time.April)
	if len(april.Bills) != 2 {
		t.Fatalf("expected 2 bills in april, got %d: %+v", len(april.Bills), april.Bills)
	}
	if april.Bills[0].DueDate.String() != "2024-04-30" {
		t.Errorf("day 31 should clamp to april 30, got %s", april.Bills[0].DueDate)
	}
	assertDecimal(t, "april Total", april.Total, "1555.90")
	assertDecimal(t, "april Debit", april.Debit, "1500")

	march := BillsForMonth(bills, 2024, time.March)
	if len(march.Bills) != 4 {
		t.Fatalf("expected 4 bills in march, got %d", len(march.Bills))
	}
	if march.Bills[3].Installment != 3 {
		t.Errorf("expected last agreement installment, got %d", march.Bills[3].Installment)
	}
	assertDecimal(t, "march Total", march.Total, "2655.90")
}
