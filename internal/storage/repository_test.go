package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"carteira/internal/core"
	"carteira/internal/store"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "carteira.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func intPtr(v int) *int            { return &v }
func idPtr(v int64) *int64         { return &v }
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestExpenseRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	in := core.Expense{
		Description:      "Notebook",
		Amount:           dec("1234.56"),
		Category:         "COMPRAS",
		Date:             core.NewDate(2024, 3, 5),
		PaymentMethod:    core.Credit,
		CardID:           idPtr(3),
		InstallmentIndex: intPtr(1),
		InstallmentCount: intPtr(10),
	}
	created, err := repo.Expenses().Create(ctx, "u1", in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == 0 || created.OwnerID != "u1" || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected meta: %+v", created.Record)
	}

	got, err := repo.Expenses().Get(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Amount.Equal(in.Amount) || !got.Date.Equal(in.Date.Time) || got.Description != in.Description {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.CardID == nil || *got.CardID != 3 || got.InstallmentCount == nil || *got.InstallmentCount != 10 {
		t.Errorf("optional fields lost: %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created.CreatedAt)
	}

	debit, err := repo.Expenses().Create(ctx, "u1", core.Expense{Description: "Pão", Amount: dec("7"), Date: core.NewDate(2024, 3, 6), PaymentMethod: core.Debit})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if debit.CardID != nil {
		t.Errorf("debit expense should have no card")
	}
}

func TestListOrderAndOwnership(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, c := range []struct {
		owner core.OwnerID
		desc  string
		date  core.Date
	}{
		{"u1", "old", core.NewDate(2023, 12, 31)},
		{"u1", "new", core.NewDate(2024, 1, 2)},
		{"u2", "foreign", core.NewDate(2024, 1, 1)},
		{"u1", "newest id", core.NewDate(2024, 1, 2)},
	} {
		if _, err := repo.Incomes().Create(ctx, c.owner, core.Income{Description: c.desc, Amount: dec("1"), Date: c.date}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.Incomes().List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"newest id", "new", "old"}
	if len(got) != len(want) {
		t.Fatalf("expected %d incomes, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Description != w {
			t.Errorf("position %d = %q, want %q", i, got[i].Description, w)
		}
	}

	foreign, _ := repo.Incomes().List(ctx, "u2")
	if len(foreign) != 1 {
		t.Fatalf("expected 1 foreign income, got %d", len(foreign))
	}
	if _, err := repo.Incomes().Get(ctx, "u1", foreign[0].ID); !store.IsUnauthorized(err) {
		t.Errorf("Get() foreign = %v, want UNAUTHORIZED", err)
	}
	if err := repo.Incomes().Remove(ctx, "u1", foreign[0].ID); !store.IsUnauthorized(err) {
		t.Errorf("Remove() foreign = %v, want UNAUTHORIZED", err)
	}
	if err := repo.Incomes().Remove(ctx, "u1", 9999); !store.IsNotFound(err) {
		t.Errorf("Remove() missing = %v, want NOT_FOUND", err)
	}
	if _, err := repo.Incomes().List(ctx, ""); !store.IsUnauthorized(err) {
		t.Errorf("List() without owner = %v, want UNAUTHORIZED", err)
	}
}

func TestUpdate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	card, err := repo.Cards().Create(ctx, "u1", core.Card{Name: "Nubank", CreditLimit: dec("1000"), DueDay: 17, ClosingDay: 10})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := repo.Cards().Update(ctx, "u1", card.ID, func(c *core.Card) error {
		c.IsPrimary = true
		c.CreditLimit = dec("2500.50")
		c.OwnerID = "u2"
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.IsPrimary || updated.OwnerID != "u1" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	stored, _ := repo.Cards().Get(ctx, "u1", card.ID)
	if !stored.IsPrimary || !stored.CreditLimit.Equal(dec("2500.50")) {
		t.Errorf("update not persisted: %+v", stored)
	}

	_, err = repo.Cards().Update(ctx, "u1", card.ID, func(c *core.Card) error {
		c.ClosingDay = 0
		return nil
	})
	if !store.IsValidation(err) {
		t.Errorf("invalid update = %v, want VALIDATION", err)
	}
	if _, err := repo.Cards().Update(ctx, "u2", card.ID, func(*core.Card) error { return nil }); !store.IsUnauthorized(err) {
		t.Errorf("foreign update = %v, want UNAUTHORIZED", err)
	}
	if _, err := repo.Cards().Update(ctx, "u1", 4242, func(*core.Card) error { return nil }); !store.IsNotFound(err) {
		t.Errorf("missing update = %v, want NOT_FOUND", err)
	}
}

func TestCardsPrimaryFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	for _, c := range []core.Card{
		{Name: "b", DueDay: 1, ClosingDay: 1},
		{Name: "C", DueDay: 1, ClosingDay: 1, IsPrimary: true},
		{Name: "A", DueDay: 1, ClosingDay: 1},
	} {
		if _, err := repo.Cards().Create(ctx, "u1", c); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := repo.Cards().List(ctx, "u1")
	if got[0].Name != "C" || got[1].Name != "A" || got[2].Name != "b" {
		t.Errorf("unexpected order: %s %s %s", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestBillNullableColumns(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	bill := core.RecurringBill{
		Name: "Acordo", Amount: dec("200"), BillingDay: 10, Kind: core.Agreement, Period: core.Monthly,
		PaymentMethod: core.Debit, InstallmentIndex: intPtr(2), InstallmentCount: intPtr(12),
	}
	created, err := repo.Bills().Create(ctx, "u1", bill)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err := repo.Bills().Get(ctx, "u1", created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.BillingMonth != nil || got.JoinYear != nil || got.CardID != nil {
		t.Errorf("expected nil optionals, got %+v", got)
	}
	if got.InstallmentIndex == nil || *got.InstallmentIndex != 2 {
		t.Errorf("installment index lost: %+v", got)
	}
}

func TestCategoryUniqueness(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	cat := core.Category{Name: "PETS", Type: core.ExpenseCategory, Icon: "paw"}
	if _, err := repo.Categories().Create(ctx, "u1", cat); err != nil {
		t.Fatal(err)
	}
	_, err := repo.Categories().Create(ctx, "u1", cat)
	if !store.IsValidation(err) || !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected duplicate validation error, got %v", err)
	}
	if _, err := repo.Categories().Create(ctx, "u2", cat); err != nil {
		t.Errorf("another owner may reuse the name: %v", err)
	}
}

func TestUnparseableDateReadsAsZero(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO expenses (owner_id, created_at, description, amount, date, payment_method) VALUES (?, ?, ?, ?, ?, ?)`,
		"u1", timeValue(time.Now()), "legado", "10", "31/13/2024", "DEBIT")
	if err != nil {
		t.Fatal(err)
	}

	got, err := repo.Expenses().List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || !got[0].Date.IsZero() {
		t.Fatalf("expected one expense with zero date, got %+v", got)
	}
}

func TestSettings(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	st, err := repo.Settings().Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	def := core.DefaultSettings("u1")
	if st.Theme != def.Theme || st.Currency != def.Currency || !st.FirstAccess ||
		!st.CreditThresholds.Alert.Equal(def.CreditThresholds.Alert) {
		t.Fatalf("unexpected defaults: %+v", st)
	}

	updated, err := repo.Settings().Update(ctx, "u1", func(s *core.Settings) error {
		s.Theme = core.ThemeDark
		s.FirstAccess = false
		s.BalanceThresholds.Positive = dec("3000.75")
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	again, _ := repo.Settings().Get(ctx, "u1")
	if again.Theme != core.ThemeDark || again.FirstAccess || !again.BalanceThresholds.Positive.Equal(dec("3000.75")) {
		t.Errorf("settings not persisted: %+v", again)
	}
	if updated.OwnerID != "u1" {
		t.Errorf("OwnerID = %q", updated.OwnerID)
	}

	if _, err := repo.Settings().Update(ctx, "u1", func(s *core.Settings) error { s.Currency = ""; return nil }); !store.IsValidation(err) {
		t.Errorf("invalid settings = %v, want VALIDATION", err)
	}
}

func TestClosedRepositoryIsNetworkError(t *testing.T) {
	repo := newTestRepository(t)
	repo.Close()

	_, err := repo.Goals().List(context.Background(), "u1")
	if store.KindOf(err) != store.KindNetwork {
		t.Fatalf("expected NETWORK, got %v", err)
	}
}

func TestCancelledContextIsNetworkError(t *testing.T) {
	repo := newTestRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Goals().List(ctx, "u1")
	if store.KindOf(err) != store.KindNetwork {
		t.Fatalf("expected NETWORK, got %v", err)
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	v1, err := RunMigrations(DSN(path))
	if err != nil {
		t.Fatalf("first RunMigrations() error = %v", err)
	}
	v2, err := RunMigrations(DSN(path))
	if err != nil {
		t.Fatalf("second RunMigrations() error = %v", err)
	}
	if v1 != 1 || v2 != 1 {
		t.Errorf("versions = %d, %d, want 1", v1, v2)
	}
}
