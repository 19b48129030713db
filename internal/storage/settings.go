package storage

import (
	"context"
	"database/sql"
	"errors"

	"carteira/internal/core"
	"carteira/internal/store"
)

const (
	selectSettingsSQL = `SELECT owner_id, theme, currency, first_access,
	credit_alert, credit_critical, credit_positive,
	balance_alert, balance_critical, balance_positive
FROM settings WHERE owner_id = ?`

	upsertSettingsSQL = `INSERT INTO settings (owner_id, theme, currency, first_access,
	credit_alert, credit_critical, credit_positive,
	balance_alert, balance_critical, balance_positive)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(owner_id) DO UPDATE SET
	theme = excluded.theme,
	currency = excluded.currency,
	first_access = excluded.first_access,
	credit_alert = excluded.credit_alert,
	credit_critical = excluded.credit_critical,
	credit_positive = excluded.credit_positive,
	balance_alert = excluded.balance_alert,
	balance_critical = excluded.balance_critical,
	balance_positive = excluded.balance_positive`
)

type settingsTable struct {
	db *sql.DB
}

type execQuerier interface {
	querier
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *settingsTable) Get(ctx context.Context, owner core.OwnerID) (core.Settings, error) {
	if err := store.CheckOwner(store.OpGet, store.EntitySettings, owner); err != nil {
		return core.Settings{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Settings{}, store.Wrap(store.OpGet, store.EntitySettings, 0, translate(err))
	}
	defer tx.Rollback()

	st, err := loadSettings(ctx, tx, owner)
	if err != nil {
		return core.Settings{}, store.Wrap(store.OpGet, store.EntitySettings, 0, translate(err))
	}
	if err := tx.Commit(); err != nil {
		return core.Settings{}, store.Wrap(store.OpGet, store.EntitySettings, 0, translate(err))
	}
	return st, nil
}

func (s *settingsTable) Update(ctx context.Context, owner core.OwnerID, apply func(*core.Settings) error) (core.Settings, error) {
	if err := store.CheckOwner(store.OpUpdate, store.EntitySettings, owner); err != nil {
		return core.Settings{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Settings{}, store.Wrap(store.OpUpdate, store.EntitySettings, 0, translate(err))
	}
	defer tx.Rollback()

	st, err := loadSettings(ctx, tx, owner)
	if err != nil {
		return core.Settings{}, store.Wrap(store.OpUpdate, store.EntitySettings, 0, translate(err))
	}
	if err := apply(&st); err != nil {
		return core.Settings{}, store.Rejected(store.OpUpdate, store.EntitySettings, 0, err)
	}
	st.OwnerID = owner
	if err := st.Validate(); err != nil {
		return core.Settings{}, store.NewError(store.KindValidation, store.OpUpdate, store.EntitySettings, 0, err)
	}
	if err := saveSettings(ctx, tx, st); err != nil {
		return core.Settings{}, store.Wrap(store.OpUpdate, store.EntitySettings, 0, translate(err))
	}
	if err := tx.Commit(); err != nil {
		return core.Settings{}, store.Wrap(store.OpUpdate, store.EntitySettings, 0, translate(err))
	}
	return st, nil
}

// loadSettings reads the owner's row, inserting the defaults when missing.
func loadSettings(ctx context.Context, q execQuerier, owner core.OwnerID) (core.Settings, error) {
	var st core.Settings
	err := q.QueryRowContext(ctx, selectSettingsSQL, owner).Scan(
		&st.OwnerID, &st.Theme, &st.Currency, &st.FirstAccess,
		&st.CreditThresholds.Alert, &st.CreditThresholds.Critical, &st.CreditThresholds.Positive,
		&st.BalanceThresholds.Alert, &st.BalanceThresholds.Critical, &st.BalanceThresholds.Positive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		st = core.DefaultSettings(owner)
		return st, saveSettings(ctx, q, st)
	}
	return st, err
}

func saveSettings(ctx context.Context, q execQuerier, st core.Settings) error {
	_, err := q.ExecContext(ctx, upsertSettingsSQL,
		string(st.OwnerID), string(st.Theme), st.Currency, st.FirstAccess,
		st.CreditThresholds.Alert.String(), st.CreditThresholds.Critical.String(), st.CreditThresholds.Positive.String(),
		st.BalanceThresholds.Alert.String(), st.BalanceThresholds.Critical.String(), st.BalanceThresholds.Positive.String(),
	)
	return err
}
