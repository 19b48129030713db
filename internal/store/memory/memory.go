// Package memory is a mutex-guarded in-process implementation of the
// record store, used by tests and the memory backend.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"carteira/internal/core"
	"carteira/internal/store"
)

// entity is the constraint every stored type satisfies through its pointer.
type entity[T any] interface {
	*T
	Meta() *core.Record
	Validate() error
}

type Store struct {
	mu     sync.RWMutex
	closed bool
	now    func() time.Time

	expenses   *collection[core.Expense, *core.Expense]
	incomes    *collection[core.Income, *core.Income]
	bills      *collection[core.RecurringBill, *core.RecurringBill]
	cards      *collection[core.Card, *core.Card]
	categories *collection[core.Category, *core.Category]
	goals      *collection[core.Goal, *core.Goal]
	settings   *settingsStore
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	s := &Store{now: time.Now}
	s.expenses = newCollection[core.Expense](s, store.EntityExpense, store.CompareExpenses, nil)
	s.incomes = newCollection[core.Income](s, store.EntityIncome, store.CompareIncomes, nil)
	s.bills = newCollection[core.RecurringBill](s, store.EntityBill, store.CompareBills, nil)
	s.cards = newCollection[core.Card](s, store.EntityCard, store.CompareCards, nil)
	s.categories = newCollection[core.Category](s, store.EntityCategory, store.CompareCategories, sameCategory)
	s.goals = newCollection[core.Goal](s, store.EntityGoal, store.CompareGoals, nil)
	s.settings = &settingsStore{parent: s, items: map[core.OwnerID]core.Settings{}}
	return s
}

// WithClock replaces the CreatedAt source. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Expenses() store.Collection[core.Expense]    { return s.expenses }
func (s *Store) Incomes() store.Collection[core.Income]      { return s.incomes }
func (s *Store) Bills() store.Collection[core.RecurringBill] { return s.bills }
func (s *Store) Cards() store.Collection[core.Card]          { return s.cards }
func (s *Store) Categories() store.Collection[core.Category] { return s.categories }
func (s *Store) Goals() store.Collection[core.Goal]          { return s.goals }
func (s *Store) Settings() store.SettingsStore               { return s.settings }

// Close makes every later call fail with a NETWORK error.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// guard checks the preconditions shared by every call.
func (s *Store) guard(ctx context.Context, op, entity string, owner core.OwnerID) error {
	if err := store.CheckOwner(op, entity, owner); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return store.Wrap(op, entity, 0, err)
	}
	if s.closed {
		return store.NewError(store.KindNetwork, op, entity, 0, store.ErrClosed)
	}
	return nil
}

func sameCategory(a, b core.Category) bool {
	return a.Type == b.Type && a.Name == b.Name
}

type collection[T any, PT entity[T]] struct {
	parent    *Store
	entity    string
	compare   func(a, b T) int
	conflicts func(a, b T) bool
	nextID    int64
	items     map[int64]T
}

func newCollection[T any, PT entity[T]](parent *Store, name string, compare func(a, b T) int, conflicts func(a, b T) bool) *collection[T, PT] {
	return &collection[T, PT]{
		parent:    parent,
		entity:    name,
		compare:   compare,
		conflicts: conflicts,
		items:     make(map[int64]T),
	}
}

func (c *collection[T, PT]) List(ctx context.Context, owner core.OwnerID) ([]T, error) {
	c.parent.mu.RLock()
	defer c.parent.mu.RUnlock()
	if err := c.parent.guard(ctx, store.OpList, c.entity, owner); err != nil {
		return nil, err
	}

	out := make([]T, 0)
	for _, item := range c.items {
		if PT(&item).Meta().OwnerID == owner {
			out = append(out, item)
		}
	}
	slices.SortFunc(out, c.compare)
	return out, nil
}

func (c *collection[T, PT]) Get(ctx context.Context, owner core.OwnerID, id int64) (T, error) {
	c.parent.mu.RLock()
	defer c.parent.mu.RUnlock()
	var zero T
	if err := c.parent.guard(ctx, store.OpGet, c.entity, owner); err != nil {
		return zero, err
	}
	return c.owned(store.OpGet, owner, id)
}

func (c *collection[T, PT]) Create(ctx context.Context, owner core.OwnerID, item T) (T, error) {
	c.parent.mu.Lock()
	defer c.parent.mu.Unlock()
	var zero T
	if err := c.parent.guard(ctx, store.OpCreate, c.entity, owner); err != nil {
		return zero, err
	}
	if err := PT(&item).Validate(); err != nil {
		return zero, store.NewError(store.KindValidation, store.OpCreate, c.entity, 0, err)
	}
	if err := c.unique(owner, 0, item, store.OpCreate); err != nil {
		return zero, err
	}

	c.nextID++
	*PT(&item).Meta() = core.Record{ID: c.nextID, OwnerID: owner, CreatedAt: c.parent.now().UTC()}
	c.items[c.nextID] = item
	return item, nil
}

func (c *collection[T, PT]) Update(ctx context.Context, owner core.OwnerID, id int64, apply func(*T) error) (T, error) {
	c.parent.mu.Lock()
	defer c.parent.mu.Unlock()
	var zero T
	if err := c.parent.guard(ctx, store.OpUpdate, c.entity, owner); err != nil {
		return zero, err
	}
	current, err := c.owned(store.OpUpdate, owner, id)
	if err != nil {
		return zero, err
	}

	meta := *PT(&current).Meta()
	next := current
	if err := apply(&next); err != nil {
		return zero, store.Rejected(store.OpUpdate, c.entity, id, err)
	}
	*PT(&next).Meta() = meta
	if err := PT(&next).Validate(); err != nil {
		return zero, store.NewError(store.KindValidation, store.OpUpdate, c.entity, id, err)
	}
	if err := c.unique(owner, id, next, store.OpUpdate); err != nil {
		return zero, err
	}

	c.items[id] = next
	return next, nil
}

func (c *collection[T, PT]) Remove(ctx context.Context, owner core.OwnerID, id int64) error {
	c.parent.mu.Lock()
	defer c.parent.mu.Unlock()
	if err := c.parent.guard(ctx, store.OpRemove, c.entity, owner); err != nil {
		return err
	}
	if _, err := c.owned(store.OpRemove, owner, id); err != nil {
		return err
	}
	delete(c.items, id)
	return nil
}

// owned loads a record, telling missing records apart from foreign ones.
// Callers hold the lock.
func (c *collection[T, PT]) owned(op string, owner core.OwnerID, id int64) (T, error) {
	var zero T
	item, ok := c.items[id]
	if !ok {
		return zero, store.NewError(store.KindNotFound, op, c.entity, id, store.ErrNotFound)
	}
	if PT(&item).Meta().OwnerID != owner {
		return zero, store.NewError(store.KindUnauthorized, op, c.entity, id, store.ErrNotOwner)
	}
	return item, nil
}

func (c *collection[T, PT]) unique(owner core.OwnerID, id int64, candidate T, op string) error {
	if c.conflicts == nil {
		return nil
	}
	for existingID, item := range c.items {
		if existingID == id || PT(&item).Meta().OwnerID != owner {
			continue
		}
		if c.conflicts(item, candidate) {
			return store.NewError(store.KindValidation, op, c.entity, id, store.ErrDuplicate)
		}
	}
	return nil
}

type settingsStore struct {
	parent *Store
	items  map[core.OwnerID]core.Settings
}

func (s *settingsStore) Get(ctx context.Context, owner core.OwnerID) (core.Settings, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	if err := s.parent.guard(ctx, store.OpGet, store.EntitySettings, owner); err != nil {
		return core.Settings{}, err
	}
	return s.load(owner), nil
}

func (s *settingsStore) Update(ctx context.Context, owner core.OwnerID, apply func(*core.Settings) error) (core.Settings, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	if err := s.parent.guard(ctx, store.OpUpdate, store.EntitySettings, owner); err != nil {
		return core.Settings{}, err
	}

	next := s.load(owner)
	if err := apply(&next); err != nil {
		return core.Settings{}, store.Rejected(store.OpUpdate, store.EntitySettings, 0, err)
	}
	next.OwnerID = owner
	if err := next.Validate(); err != nil {
		return core.Settings{}, store.NewError(store.KindValidation, store.OpUpdate, store.EntitySettings, 0, err)
	}
	s.items[owner] = next
	return next, nil
}

// load returns the owner's settings, storing defaults on first access.
func (s *settingsStore) load(owner core.OwnerID) core.Settings {
	if cur, ok := s.items[owner]; ok {
		return cur
	}
	def := core.DefaultSettings(owner)
	s.items[owner] = def
	return def
}
