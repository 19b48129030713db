package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"carteira/internal/store"
)

// translate maps driver failures onto the store sentinels so store.Wrap can
// pick the right kind.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return store.ErrNotFound
	case errors.Is(err, sql.ErrConnDone), errors.Is(err, sql.ErrTxDone):
		return fmt.Errorf("%w: %w", store.ErrClosed, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
	case strings.Contains(msg, "CHECK constraint failed"), strings.Contains(msg, "NOT NULL constraint failed"):
		return fmt.Errorf("%w: %w", store.ErrInvalid, err)
	case strings.Contains(msg, "database is closed"), strings.Contains(msg, "database is locked"):
		return fmt.Errorf("%w: %w", store.ErrClosed, err)
	}
	return err
}
