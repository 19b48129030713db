// Package storage is the SQLite implementation of the record store.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"carteira/internal/core"
	"carteira/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB

	expenses   *table[core.Expense, *core.Expense]
	incomes    *table[core.Income, *core.Income]
	bills      *table[core.RecurringBill, *core.RecurringBill]
	cards      *table[core.Card, *core.Card]
	categories *table[core.Category, *core.Category]
	goals      *table[core.Goal, *core.Goal]
	settings   *settingsTable
}

var _ store.Store = (*SQLiteRepository)(nil)

// DSN appends the connection pragmas the repository relies on.
func DSN(dbPath string) string {
	return dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("SQLite repository ready", "path", dbPath)
	return newRepository(db, time.Now), nil
}

func newRepository(db *sql.DB, now func() time.Time) *SQLiteRepository {
	return &SQLiteRepository{
		db:         db,
		expenses:   newTable[core.Expense](db, now, expenseMapping),
		incomes:    newTable[core.Income](db, now, incomeMapping),
		bills:      newTable[core.RecurringBill](db, now, billMapping),
		cards:      newTable[core.Card](db, now, cardMapping),
		categories: newTable[core.Category](db, now, categoryMapping),
		goals:      newTable[core.Goal](db, now, goalMapping),
		settings:   &settingsTable{db: db},
	}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return store.Wrap("ping", "database", 0, translate(err))
	}
	return nil
}

func (r *SQLiteRepository) Expenses() store.Collection[core.Expense]    { return r.expenses }
func (r *SQLiteRepository) Incomes() store.Collection[core.Income]      { return r.incomes }
func (r *SQLiteRepository) Bills() store.Collection[core.RecurringBill] { return r.bills }
func (r *SQLiteRepository) Cards() store.Collection[core.Card]          { return r.cards }
func (r *SQLiteRepository) Categories() store.Collection[core.Category] { return r.categories }
func (r *SQLiteRepository) Goals() store.Collection[core.Goal]          { return r.goals }
func (r *SQLiteRepository) Settings() store.SettingsStore               { return r.settings }
