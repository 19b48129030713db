package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"carteira/internal/core"
	"carteira/internal/store"
)

const alice core.OwnerID = "alice"

func seedCards(t *testing.T, s *failingStore, cards ...core.Card) []core.Card {
	t.Helper()
	out := make([]core.Card, 0, len(cards))
	for _, c := range cards {
		c.CreditLimit = decimal.NewFromInt(1000)
		c.DueDay, c.ClosingDay = 20, 10
		created, err := s.Store.Cards().Create(context.Background(), alice, c)
		if err != nil {
			t.Fatalf("seed card: %v", err)
		}
		out = append(out, created)
	}
	return out
}

func primaries(t *testing.T, s *failingStore) map[string]bool {
	t.Helper()
	cards, err := s.Store.Cards().List(context.Background(), alice)
	if err != nil {
		t.Fatal(err)
	}
	out := map[string]bool{}
	for _, c := range cards {
		out[c.Name] = c.IsPrimary
	}
	return out
}

func TestSetPrimaryCard(t *testing.T) {
	tests := []struct {
		name        string
		seed        []core.Card
		target      string
		failUpdate  func(ids map[string]int64) func(id int64, call int) bool
		wantErr     bool
		consistency bool
		want        map[string]bool
	}{
		{
			name:   "switches primary",
			seed:   []core.Card{{Name: "Alpha", IsPrimary: true}, {Name: "Bravo"}},
			target: "Bravo",
			want:   map[string]bool{"Alpha": false, "Bravo": true},
		},
		{
			name:   "repairs two primaries",
			seed:   []core.Card{{Name: "Alpha", IsPrimary: true}, {Name: "Bravo"}, {Name: "Charlie", IsPrimary: true}},
			target: "Bravo",
			want:   map[string]bool{"Alpha": false, "Bravo": true, "Charlie": false},
		},
		{
			name:   "target already primary",
			seed:   []core.Card{{Name: "Alpha", IsPrimary: true}, {Name: "Bravo"}},
			target: "Alpha",
			want:   map[string]bool{"Alpha": true, "Bravo": false},
		},
		{
			name:   "unset failure restores earlier unsets",
			seed:   []core.Card{{Name: "Alpha", IsPrimary: true}, {Name: "Bravo"}, {Name: "Charlie", IsPrimary: true}},
			target: "Bravo",
			failUpdate: func(ids map[string]int64) func(int64, int) bool {
				return func(id int64, call int) bool { return id == ids["Charlie"] }
			},
			wantErr: true,
			want:    map[string]bool{"Alpha": true, "Bravo": false, "Charlie": true},
		},
		{
			name:   "set failure restores previous primary",
			seed:   []core.Card{{Name: "Alpha", IsPrimary: true}, {Name: "Bravo"}},
			target: "Bravo",
			failUpdate: func(ids map[string]int64) func(int64, int) bool {
				return func(id int64, call int) bool { return id == ids["Bravo"] }
			},
			wantErr: true,
			want:    map[string]bool{"Alpha": true, "Bravo": false},
		},
		{
			name:   "failed restore is a consistency error",
			seed:   []core.Card{{Name: "Alpha", IsPrimary: true}, {Name: "Bravo"}},
			target: "Bravo",
			failUpdate: func(ids map[string]int64) func(int64, int) bool {
				return func(id int64, call int) bool {
					return id == ids["Bravo"] || (id == ids["Alpha"] && call == 2)
				}
			},
			wantErr:     true,
			consistency: true,
			want:        map[string]bool{"Alpha": false, "Bravo": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFailingStore()
			ids := map[string]int64{}
			for _, c := range seedCards(t, s, tt.seed...) {
				ids[c.Name] = c.ID
			}
			if tt.failUpdate != nil {
				s.cards.failUpdate = tt.failUpdate(ids)
			}

			err := NewPrimaryService(s, quietLogger()).SetPrimaryCard(context.Background(), alice, ids[tt.target])
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if IsConsistencyError(err) != tt.consistency {
				t.Fatalf("consistency error = %v, want %v (%v)", IsConsistencyError(err), tt.consistency, err)
			}
			if tt.wantErr && !tt.consistency && store.KindOf(err) != store.KindNetwork {
				t.Fatalf("expected the store error to surface, got %v", err)
			}

			got := primaries(t, s)
			for name, want := range tt.want {
				if got[name] != want {
					t.Errorf("%s primary = %v, want %v", name, got[name], want)
				}
			}
		})
	}
}

func TestConsistencyErrorDetails(t *testing.T) {
	s := newFailingStore()
	cards := seedCards(t, s, core.Card{Name: "Alpha", IsPrimary: true}, core.Card{Name: "Bravo"})
	alpha, bravo := cards[0].ID, cards[1].ID
	s.cards.failUpdate = func(id int64, call int) bool {
		return id == bravo || (id == alpha && call == 2)
	}

	err := NewPrimaryService(s, quietLogger()).SetPrimaryCard(context.Background(), alice, bravo)
	var ce *ConsistencyError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConsistencyError, got %T %v", err, err)
	}
	if ce.Entity != store.EntityCard || ce.TargetID != bravo {
		t.Errorf("unexpected error fields: %+v", ce)
	}
	if len(ce.Unrestored) != 1 || ce.Unrestored[0] != alpha {
		t.Errorf("Unrestored = %v, want [%d]", ce.Unrestored, alpha)
	}
	if !errors.Is(err, errInjected) {
		t.Error("cause should stay reachable")
	}
}

func TestSetPrimaryMissingOrForeign(t *testing.T) {
	s := newFailingStore()
	ps := NewPrimaryService(s, quietLogger())
	ctx := context.Background()

	if err := ps.SetPrimaryCard(ctx, alice, 404); store.KindOf(err) != store.KindNotFound {
		t.Fatalf("missing card: %v", err)
	}

	bobs, err := s.Store.Goals().Create(ctx, "bob", core.Goal{
		Title: "Viagem", TargetAmount: decimal.NewFromInt(100), Status: core.GoalInProgress,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := ps.SetPrimaryGoal(ctx, alice, bobs.ID); store.KindOf(err) != store.KindUnauthorized {
		t.Fatalf("foreign goal: %v", err)
	}
}

func TestSetPrimaryGoal(t *testing.T) {
	s := newFailingStore()
	ctx := context.Background()
	var ids []int64
	for _, g := range []core.Goal{
		{Title: "Reserva", TargetAmount: decimal.NewFromInt(100), Status: core.GoalInProgress, IsPrimary: true},
		{Title: "Carro", TargetAmount: decimal.NewFromInt(100), Status: core.GoalDistant},
	} {
		created, err := s.Store.Goals().Create(ctx, alice, g)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, created.ID)
	}

	if err := NewPrimaryService(s, quietLogger()).SetPrimaryGoal(ctx, alice, ids[1]); err != nil {
		t.Fatalf("SetPrimaryGoal: %v", err)
	}
	goals, _ := s.Store.Goals().List(ctx, alice)
	if !goals[0].IsPrimary || goals[0].ID != ids[1] || goals[1].IsPrimary {
		t.Fatalf("unexpected goals after switch: %+v", goals)
	}
}
