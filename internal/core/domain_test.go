package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func intPtr(v int) *int            { return &v }
func idPtr(v int64) *int64         { return &v }
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-03-10", NewDate(2024, 3, 10), true},
		{" 10/03/2024 ", NewDate(2024, 3, 10), true},
		{"2024-03-10T15:04:05Z", NewDate(2024, 3, 10), true},
		{"2024-02-30", Date{}, false},
		{"ontem", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.want.Time) {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
		if !ParseDateLenient(tc.in).IsEmpty() {
			t.Fatalf("%q lenient parse should give the zero date", tc.in)
		}
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 2, 29))
	if err != nil || string(b) != `"2024-02-29"` {
		t.Fatalf("marshal: %s %v", b, err)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"29/02/2024"`), &d); err != nil || d.Day() != 29 {
		t.Fatalf("unmarshal: %v %v", d, err)
	}
	if err := json.Unmarshal([]byte(`"not a date"`), &d); err == nil {
		t.Fatalf("expected error for bad date")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Description:   "Mercado",
		Amount:        dec("10.50"),
		Date:          NewDate(2025, 1, 1),
		PaymentMethod: Debit,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	credit := good
	credit.PaymentMethod = Credit
	credit.CardID = idPtr(3)
	credit.InstallmentIndex, credit.InstallmentCount = intPtr(2), intPtr(3)
	if err := credit.Validate(); err != nil {
		t.Fatalf("expected ok credit, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Expense)
		want   error
	}{
		{"empty description", func(e *Expense) { e.Description = " " }, ErrEmptyDescription},
		{"negative amount", func(e *Expense) { e.Amount = dec("-1") }, ErrInvalidAmount},
		{"zero date", func(e *Expense) { e.Date = Date{} }, ErrZeroDate},
		{"credit without card", func(e *Expense) { e.PaymentMethod = Credit }, ErrCardRequired},
		{"debit with card", func(e *Expense) { e.CardID = idPtr(1) }, ErrCardNotAllowed},
		{"unknown method", func(e *Expense) { e.PaymentMethod = "PIX" }, ErrInvalidMethod},
		{"index above count", func(e *Expense) { e.InstallmentIndex, e.InstallmentCount = intPtr(4), intPtr(3) }, ErrInvalidInstallment},
		{"index without count", func(e *Expense) { e.InstallmentIndex = intPtr(1) }, ErrInvalidInstallment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := good
			tt.mutate(&e)
			if err := e.Validate(); err != tt.want {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRecurringBillValidate(t *testing.T) {
	base := RecurringBill{
		Name:          "Aluguel",
		Amount:        dec("1500"),
		BillingDay:    5,
		Kind:          RentContract,
		PaymentMethod: Debit,
		Period:        Monthly,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*RecurringBill)
		want   error
	}{
		{"annual without month", func(b *RecurringBill) { b.Period = Annual }, ErrBillingMonthMissing},
		{"month out of range", func(b *RecurringBill) { b.Period, b.BillingMonth = Annual, intPtr(13) }, ErrInvalidMonth},
		{"day out of range", func(b *RecurringBill) { b.BillingDay = 32 }, ErrInvalidDay},
		{"agreement without installments", func(b *RecurringBill) { b.Kind = Agreement }, ErrInvalidInstallment},
		{"installments on subscription", func(b *RecurringBill) { b.Kind, b.InstallmentIndex, b.InstallmentCount = Subscription, intPtr(1), intPtr(2) }, ErrInvalidInstallment},
		{"unknown kind", func(b *RecurringBill) { b.Kind = "LOAN" }, ErrInvalidKind},
		{"unknown period", func(b *RecurringBill) { b.Period = "WEEKLY" }, ErrInvalidPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := base
			tt.mutate(&b)
			if err := b.Validate(); err != tt.want {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}

	agreement := base
	agreement.Kind = Agreement
	agreement.InstallmentIndex, agreement.InstallmentCount = intPtr(3), intPtr(12)
	if err := agreement.Validate(); err != nil {
		t.Fatalf("agreement should be valid: %v", err)
	}
}

func TestGoalValidate(t *testing.T) {
	g := Goal{Title: "Reserva", TargetAmount: dec("1000"), CurrentAmount: dec("200"), Status: GoalInProgress}
	if err := g.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	g.CurrentAmount = dec("1000.01")
	if err := g.Validate(); err != ErrGoalOverTarget {
		t.Fatalf("expected over target, got %v", err)
	}
	g.CurrentAmount = dec("0")
	g.Status = "DONE"
	if err := g.Validate(); err != ErrInvalidStatus {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestGoalStatusIsSettled(t *testing.T) {
	for status, want := range map[GoalStatus]bool{
		GoalSettledDone:       true,
		GoalSettledInProgress: true,
		GoalInProgress:        false,
		GoalImmediate:         false,
		GoalDistant:           false,
	} {
		if got := status.IsSettled(); got != want {
			t.Errorf("%s.IsSettled() = %v, want %v", status, got, want)
		}
	}
}

func TestDefaultSettingsValid(t *testing.T) {
	s := DefaultSettings("u1")
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
	if !s.FirstAccess || s.OwnerID != "u1" {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}
