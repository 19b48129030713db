package storage

import (
	"database/sql"
	"fmt"
	"time"

	"carteira/internal/core"
)

const timeLayout = time.RFC3339Nano

// dateColumn scans a YYYY-MM-DD text column. Unparseable values become the
// zero Date so aggregations skip the record instead of failing the read.
type dateColumn struct{ dst *core.Date }

func (c dateColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c.dst = core.Date{}
	case string:
		*c.dst = core.ParseDateLenient(v)
	case []byte:
		*c.dst = core.ParseDateLenient(string(v))
	case time.Time:
		*c.dst = core.DateOf(v)
	default:
		return fmt.Errorf("unsupported date column type %T", src)
	}
	return nil
}

type timeColumn struct{ dst *time.Time }

func (c timeColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c.dst = time.Time{}
		return nil
	case time.Time:
		*c.dst = v.UTC()
		return nil
	case []byte:
		src = string(v)
	}
	s, ok := src.(string)
	if !ok {
		return fmt.Errorf("unsupported time column type %T", src)
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return fmt.Errorf("parse time column: %w", err)
	}
	*c.dst = t.UTC()
	return nil
}

// nullColumn scans a nullable integer into an optional field.
type nullColumn[N int | int64] struct{ dst **N }

func (c nullColumn[N]) Scan(src any) error {
	var v sql.Null[N]
	if err := v.Scan(src); err != nil {
		return err
	}
	if !v.Valid {
		*c.dst = nil
		return nil
	}
	n := v.V
	*c.dst = &n
	return nil
}

func nullValue[N int | int64](p *N) any {
	if p == nil {
		return nil
	}
	return *p
}

func dateValue(d core.Date) string {
	return d.String()
}

func timeValue(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
