// Package store defines the owner-scoped record store contract shared by
// the in-memory and SQLite implementations.
package store

import (
	"context"

	"carteira/internal/core"
)

// Ports for outbound adapters.
type (
	// Collection is the CRUD contract of one entity type. Every call is
	// scoped to owner; an empty owner is rejected as UNAUTHORIZED.
	Collection[T any] interface {
		// List returns the owner's records in the collection's documented order.
		List(ctx context.Context, owner core.OwnerID) ([]T, error)
		Get(ctx context.Context, owner core.OwnerID, id int64) (T, error)
		// Create assigns ID, OwnerID and CreatedAt and returns the stored record.
		Create(ctx context.Context, owner core.OwnerID, item T) (T, error)
		// Update applies a read-modify-write to the owner's record. Identity
		// fields are restored after apply; the result is validated.
		Update(ctx context.Context, owner core.OwnerID, id int64, apply func(*T) error) (T, error)
		Remove(ctx context.Context, owner core.OwnerID, id int64) error
	}

	SettingsStore interface {
		// Get returns the owner's settings, creating the defaults on first read.
		Get(ctx context.Context, owner core.OwnerID) (core.Settings, error)
		Update(ctx context.Context, owner core.OwnerID, apply func(*core.Settings) error) (core.Settings, error)
	}

	Store interface {
		Expenses() Collection[core.Expense]
		Incomes() Collection[core.Income]
		Bills() Collection[core.RecurringBill]
		Cards() Collection[core.Card]
		Categories() Collection[core.Category]
		Goals() Collection[core.Goal]
		Settings() SettingsStore
		Close() error
	}
)

// Entity names used in errors and change events.
const (
	EntityExpense  = "expense"
	EntityIncome   = "income"
	EntityBill     = "recurring_bill"
	EntityCard     = "card"
	EntityCategory = "category"
	EntityGoal     = "goal"
	EntitySettings = "settings"
)

// Operation names used in errors and change events.
const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpRemove = "remove"
)
