package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"carteira/internal/core"
	"carteira/internal/store"
)

type entity[T any] interface {
	*T
	Meta() *core.Record
	Validate() error
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// mapping describes how one entity type maps onto its table. fields returns
// the scan destinations and values the stored arguments, both in column order.
type mapping[T any] struct {
	table   string
	entity  string
	columns []string
	orderBy string
	fields  func(*T) []any
	values  func(*T) []any
}

// table implements store.Collection on top of one SQLite table.
type table[T any, PT entity[T]] struct {
	db  *sql.DB
	now func() time.Time
	m   mapping[T]

	selectSQL string
	insertSQL string
	updateSQL string
	deleteSQL string
}

func newTable[T any, PT entity[T]](db *sql.DB, now func() time.Time, m mapping[T]) *table[T, PT] {
	cols := strings.Join(m.columns, ", ")
	sets := make([]string, len(m.columns))
	for i, c := range m.columns {
		sets[i] = c + " = ?"
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(m.columns)+2), ", ")

	return &table[T, PT]{
		db:        db,
		now:       now,
		m:         m,
		selectSQL: fmt.Sprintf("SELECT id, owner_id, created_at, %s FROM %s", cols, m.table),
		insertSQL: fmt.Sprintf("INSERT INTO %s (owner_id, created_at, %s) VALUES (%s)", m.table, cols, placeholders),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND owner_id = ?", m.table, strings.Join(sets, ", ")),
		deleteSQL: fmt.Sprintf("DELETE FROM %s WHERE id = ? AND owner_id = ?", m.table),
	}
}

func (t *table[T, PT]) scan(row scanner) (T, error) {
	var item T
	meta := PT(&item).Meta()
	dest := append([]any{&meta.ID, &meta.OwnerID, timeColumn{&meta.CreatedAt}}, t.m.fields(&item)...)
	if err := row.Scan(dest...); err != nil {
		return item, err
	}
	return item, nil
}

func (t *table[T, PT]) fail(op string, id int64, err error) error {
	return store.Wrap(op, t.m.entity, id, translate(err))
}

func (t *table[T, PT]) List(ctx context.Context, owner core.OwnerID) ([]T, error) {
	if err := store.CheckOwner(store.OpList, t.m.entity, owner); err != nil {
		return nil, err
	}

	rows, err := t.db.QueryContext(ctx, t.selectSQL+" WHERE owner_id = ? ORDER BY "+t.m.orderBy, owner)
	if err != nil {
		return nil, t.fail(store.OpList, 0, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := t.scan(rows)
		if err != nil {
			return nil, t.fail(store.OpList, 0, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, t.fail(store.OpList, 0, err)
	}
	return out, nil
}

func (t *table[T, PT]) Get(ctx context.Context, owner core.OwnerID, id int64) (T, error) {
	var zero T
	if err := store.CheckOwner(store.OpGet, t.m.entity, owner); err != nil {
		return zero, err
	}
	item, err := t.owned(ctx, t.db, store.OpGet, owner, id)
	if err != nil {
		return zero, err
	}
	return item, nil
}

// owned loads a record by id, telling missing records apart from foreign ones.
func (t *table[T, PT]) owned(ctx context.Context, q querier, op string, owner core.OwnerID, id int64) (T, error) {
	item, err := t.scan(q.QueryRowContext(ctx, t.selectSQL+" WHERE id = ?", id))
	if err != nil {
		return item, t.fail(op, id, err)
	}
	if PT(&item).Meta().OwnerID != owner {
		var zero T
		return zero, store.NewError(store.KindUnauthorized, op, t.m.entity, id, store.ErrNotOwner)
	}
	return item, nil
}

func (t *table[T, PT]) Create(ctx context.Context, owner core.OwnerID, item T) (T, error) {
	var zero T
	if err := store.CheckOwner(store.OpCreate, t.m.entity, owner); err != nil {
		return zero, err
	}
	if err := PT(&item).Validate(); err != nil {
		return zero, store.NewError(store.KindValidation, store.OpCreate, t.m.entity, 0, err)
	}

	createdAt := t.now().UTC()
	args := append([]any{owner, timeValue(createdAt)}, t.m.values(&item)...)
	res, err := t.db.ExecContext(ctx, t.insertSQL, args...)
	if err != nil {
		return zero, t.fail(store.OpCreate, 0, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return zero, t.fail(store.OpCreate, 0, err)
	}

	*PT(&item).Meta() = core.Record{ID: id, OwnerID: owner, CreatedAt: createdAt}
	slog.DebugContext(ctx, "Record saved to SQLite", "entity", t.m.entity, "id", id)
	return item, nil
}

func (t *table[T, PT]) Update(ctx context.Context, owner core.OwnerID, id int64, apply func(*T) error) (T, error) {
	var zero T
	if err := store.CheckOwner(store.OpUpdate, t.m.entity, owner); err != nil {
		return zero, err
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, t.fail(store.OpUpdate, id, err)
	}
	defer tx.Rollback()

	item, err := t.owned(ctx, tx, store.OpUpdate, owner, id)
	if err != nil {
		return zero, err
	}
	meta := *PT(&item).Meta()
	if err := apply(&item); err != nil {
		return zero, store.Rejected(store.OpUpdate, t.m.entity, id, err)
	}
	*PT(&item).Meta() = meta
	if err := PT(&item).Validate(); err != nil {
		return zero, store.NewError(store.KindValidation, store.OpUpdate, t.m.entity, id, err)
	}

	args := append(t.m.values(&item), id, owner)
	if _, err := tx.ExecContext(ctx, t.updateSQL, args...); err != nil {
		return zero, t.fail(store.OpUpdate, id, err)
	}
	if err := tx.Commit(); err != nil {
		return zero, t.fail(store.OpUpdate, id, err)
	}
	return item, nil
}

func (t *table[T, PT]) Remove(ctx context.Context, owner core.OwnerID, id int64) error {
	if err := store.CheckOwner(store.OpRemove, t.m.entity, owner); err != nil {
		return err
	}

	res, err := t.db.ExecContext(ctx, t.deleteSQL, id, owner)
	if err != nil {
		return t.fail(store.OpRemove, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return t.fail(store.OpRemove, id, err)
	}
	if n == 0 {
		// Nothing deleted: either missing or owned by someone else.
		_, err := t.owned(ctx, t.db, store.OpRemove, owner, id)
		if err == nil {
			err = store.NewError(store.KindUnknown, store.OpRemove, t.m.entity, id, fmt.Errorf("no rows deleted"))
		}
		return err
	}
	return nil
}
