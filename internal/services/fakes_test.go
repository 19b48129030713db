package services

import (
	"context"
	"errors"
	"io"
	"sync"

	"carteira/internal/core"
	applog "carteira/internal/log"
	"carteira/internal/store"
	"carteira/internal/store/memory"
)

var errInjected = errors.New("injected failure")

// failingCollection wraps a real collection and fails selected calls.
type failingCollection[T any] struct {
	store.Collection[T]
	entity string

	mu          sync.Mutex
	updateCalls map[int64]int
	// failUpdate decides per record id and per-id call number (from 1).
	failUpdate  func(id int64, call int) bool
	createLimit int
	creates     int
	failList    bool
}

func newFailing[T any](inner store.Collection[T], entity string) *failingCollection[T] {
	return &failingCollection[T]{Collection: inner, entity: entity, updateCalls: map[int64]int{}, createLimit: -1}
}

func (c *failingCollection[T]) List(ctx context.Context, owner core.OwnerID) ([]T, error) {
	c.mu.Lock()
	fail := c.failList
	c.mu.Unlock()
	if fail {
		return nil, store.NewError(store.KindNetwork, store.OpList, c.entity, 0, errInjected)
	}
	return c.Collection.List(ctx, owner)
}

func (c *failingCollection[T]) Create(ctx context.Context, owner core.OwnerID, item T) (T, error) {
	c.mu.Lock()
	fail := c.createLimit >= 0 && c.creates >= c.createLimit
	c.creates++
	c.mu.Unlock()
	if fail {
		var zero T
		return zero, store.NewError(store.KindNetwork, store.OpCreate, c.entity, 0, errInjected)
	}
	return c.Collection.Create(ctx, owner, item)
}

func (c *failingCollection[T]) Update(ctx context.Context, owner core.OwnerID, id int64, apply func(*T) error) (T, error) {
	c.mu.Lock()
	c.updateCalls[id]++
	call := c.updateCalls[id]
	fail := c.failUpdate != nil && c.failUpdate(id, call)
	c.mu.Unlock()
	if fail {
		var zero T
		return zero, store.NewError(store.KindNetwork, store.OpUpdate, c.entity, id, errInjected)
	}
	return c.Collection.Update(ctx, owner, id, apply)
}

// failingStore is a memory store whose collections can be told to fail.
type failingStore struct {
	*memory.Store
	expenses *failingCollection[core.Expense]
	incomes  *failingCollection[core.Income]
	cards    *failingCollection[core.Card]
	goals    *failingCollection[core.Goal]
}

func newFailingStore() *failingStore {
	m := memory.New()
	return &failingStore{
		Store:    m,
		expenses: newFailing(m.Expenses(), store.EntityExpense),
		incomes:  newFailing(m.Incomes(), store.EntityIncome),
		cards:    newFailing(m.Cards(), store.EntityCard),
		goals:    newFailing(m.Goals(), store.EntityGoal),
	}
}

func (s *failingStore) Expenses() store.Collection[core.Expense] { return s.expenses }
func (s *failingStore) Incomes() store.Collection[core.Income]   { return s.incomes }
func (s *failingStore) Cards() store.Collection[core.Card]       { return s.cards }
func (s *failingStore) Goals() store.Collection[core.Goal]       { return s.goals }

func quietLogger() *applog.Logger {
	return applog.New(applog.NewTextConfig(io.Discard, applog.ParseLevel("error"), applog.ComponentApp))
}
