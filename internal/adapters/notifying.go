// Package adapters decorates record stores with side effects that follow a
// successful mutation.
package adapters

import (
	"context"
	"slices"

	"carteira/internal/amqp"
	"carteira/internal/core"
	applog "carteira/internal/log"
	"carteira/internal/store"
)

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error
}

// Invalidator is satisfied by *cache.SnapshotCache.
type Invalidator interface {
	Invalidate(owner core.OwnerID)
}

type identified[T any] interface {
	*T
	Meta() *core.Record
}

// NotifyingStore wraps a store. After every successful mutation it drops
// the owner's cached snapshot and publishes a change event. Publish
// failures are logged and never fail the mutation. Publisher and cache are
// both optional.
type NotifyingStore struct {
	inner    store.Store
	notifier *notifier

	expenses   *notifyingCollection[core.Expense, *core.Expense]
	incomes    *notifyingCollection[core.Income, *core.Income]
	bills      *notifyingCollection[core.RecurringBill, *core.RecurringBill]
	cards      *notifyingCollection[core.Card, *core.Card]
	categories *notifyingCollection[core.Category, *core.Category]
	goals      *notifyingCollection[core.Goal, *core.Goal]
	settings   *notifyingSettings
}

var _ store.Store = (*NotifyingStore)(nil)

func NewNotifyingStore(inner store.Store, publisher EventPublisher, cache Invalidator, logger *applog.Logger) *NotifyingStore {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	n := &notifier{
		publisher: publisher,
		cache:     cache,
		logger:    applog.NewStructuredLogger(logger.WithComponent(applog.ComponentStore)),
	}
	return &NotifyingStore{
		inner:      inner,
		notifier:   n,
		expenses:   wrap[core.Expense](inner.Expenses(), store.EntityExpense, n),
		incomes:    wrap[core.Income](inner.Incomes(), store.EntityIncome, n),
		bills:      wrap[core.RecurringBill](inner.Bills(), store.EntityBill, n),
		cards:      wrap[core.Card](inner.Cards(), store.EntityCard, n),
		categories: wrap[core.Category](inner.Categories(), store.EntityCategory, n),
		goals:      wrap[core.Goal](inner.Goals(), store.EntityGoal, n),
		settings:   &notifyingSettings{inner: inner.Settings(), n: n},
	}
}

func (s *NotifyingStore) Expenses() store.Collection[core.Expense]    { return s.expenses }
func (s *NotifyingStore) Incomes() store.Collection[core.Income]      { return s.incomes }
func (s *NotifyingStore) Bills() store.Collection[core.RecurringBill] { return s.bills }
func (s *NotifyingStore) Cards() store.Collection[core.Card]          { return s.cards }
func (s *NotifyingStore) Categories() store.Collection[core.Category] { return s.categories }
func (s *NotifyingStore) Goals() store.Collection[core.Goal]          { return s.goals }
func (s *NotifyingStore) Settings() store.SettingsStore               { return s.settings }
func (s *NotifyingStore) Close() error                                { return s.inner.Close() }

type notifier struct {
	publisher EventPublisher
	cache     Invalidator
	logger    *applog.StructuredLogger
}

func (n *notifier) changed(ctx context.Context, op, entity string, owner core.OwnerID, id int64, years []int) {
	if n.cache != nil {
		n.cache.Invalidate(owner)
	}
	n.logger.LogRecordChanged(ctx, op, string(owner), entity, id)

	if n.publisher == nil {
		return
	}
	msg := amqp.NewRecordChangedMessage(op, entity, owner, id)
	msg.Years = years
	if err := n.publisher.PublishRecordChanged(ctx, msg); err != nil {
		fields := applog.NewFields().WithRecord(string(owner), entity, id)
		fields[applog.FieldEventID] = msg.EventID.String()
		n.logger.LogError(ctx, "Failed to publish record change", err, applog.ComponentAMQP, applog.OpPublish, fields)
	}
}

// yearsOf adds the year of item's date to years, once. Only expenses and
// incomes are dated; a zero date adds nothing.
func yearsOf(item any, years ...int) []int {
	var d core.Date
	switch v := item.(type) {
	case core.Expense:
		d = v.Date
	case core.Income:
		d = v.Date
	}
	if d.IsZero() || slices.Contains(years, d.Year()) {
		return years
	}
	return append(years, d.Year())
}

type notifyingCollection[T any, PT identified[T]] struct {
	inner  store.Collection[T]
	entity string
	n      *notifier
}

func wrap[T any, PT identified[T]](inner store.Collection[T], entity string, n *notifier) *notifyingCollection[T, PT] {
	return &notifyingCollection[T, PT]{inner: inner, entity: entity, n: n}
}

func (c *notifyingCollection[T, PT]) List(ctx context.Context, owner core.OwnerID) ([]T, error) {
	return c.inner.List(ctx, owner)
}

func (c *notifyingCollection[T, PT]) Get(ctx context.Context, owner core.OwnerID, id int64) (T, error) {
	return c.inner.Get(ctx, owner, id)
}

func (c *notifyingCollection[T, PT]) Create(ctx context.Context, owner core.OwnerID, item T) (T, error) {
	created, err := c.inner.Create(ctx, owner, item)
	if err != nil {
		return created, err
	}
	c.n.changed(ctx, store.OpCreate, c.entity, owner, PT(&created).Meta().ID, yearsOf(created))
	return created, nil
}

func (c *notifyingCollection[T, PT]) Update(ctx context.Context, owner core.OwnerID, id int64, apply func(*T) error) (T, error) {
	var before []int
	updated, err := c.inner.Update(ctx, owner, id, func(cur *T) error {
		before = yearsOf(*cur)
		return apply(cur)
	})
	if err != nil {
		return updated, err
	}
	c.n.changed(ctx, store.OpUpdate, c.entity, owner, id, yearsOf(updated, before...))
	return updated, nil
}

func (c *notifyingCollection[T, PT]) Remove(ctx context.Context, owner core.OwnerID, id int64) error {
	var years []int
	if prev, err := c.inner.Get(ctx, owner, id); err == nil {
		years = yearsOf(prev)
	}
	if err := c.inner.Remove(ctx, owner, id); err != nil {
		return err
	}
	c.n.changed(ctx, store.OpRemove, c.entity, owner, id, years)
	return nil
}

type notifyingSettings struct {
	inner store.SettingsStore
	n     *notifier
}

func (s *notifyingSettings) Get(ctx context.Context, owner core.OwnerID) (core.Settings, error) {
	return s.inner.Get(ctx, owner)
}

func (s *notifyingSettings) Update(ctx context.Context, owner core.OwnerID, apply func(*core.Settings) error) (core.Settings, error) {
	updated, err := s.inner.Update(ctx, owner, apply)
	if err != nil {
		return updated, err
	}
	s.n.changed(ctx, store.OpUpdate, store.EntitySettings, owner, 0, nil)
	return updated, nil
}
