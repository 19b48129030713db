package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"carteira/internal/core"
)

// Kind labels a store failure for callers.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindNetwork      Kind = "NETWORK"
	KindValidation   Kind = "VALIDATION"
	KindUnknown      Kind = "UNKNOWN"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrNotOwner  = errors.New("record belongs to another owner")
	ErrNoOwner   = errors.New("no authenticated owner")
	ErrClosed    = errors.New("store is closed")
	ErrDuplicate = errors.New("duplicate record")
	ErrInvalid   = errors.New("invalid record")
)

// Error is the only error type a store returns.
type Error struct {
	Kind   Kind
	Op     string
	Entity string
	ID     int64
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteByte(' ')
	b.WriteString(e.Entity)
	if e.ID != 0 {
		fmt.Fprintf(&b, " %d", e.ID)
	}
	fmt.Fprintf(&b, ": %s", e.Kind)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a store error of the given kind.
func NewError(kind Kind, op, entity string, id int64, err error) *Error {
	return &Error{Kind: kind, Op: op, Entity: entity, ID: id, Err: err}
}

// Wrap converts any error into a store error. Existing store errors pass
// through; context and connection failures become NETWORK, domain
// validation failures VALIDATION, everything else UNKNOWN.
func Wrap(op, entity string, id int64, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return NewError(classify(err), op, entity, id, err)
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrNoOwner):
		return KindUnauthorized
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, ErrClosed), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
		return KindNetwork
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrInvalid), isValidation(err):
		return KindValidation
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	return KindUnknown
}

var validationErrors = []error{
	core.ErrInvalidDay, core.ErrInvalidMonth, core.ErrInvalidAmount, core.ErrEmptyDescription,
	core.ErrDescriptionTooLong, core.ErrEmptyName, core.ErrInvalidMethod, core.ErrCardRequired,
	core.ErrCardNotAllowed, core.ErrInvalidInstallment, core.ErrInvalidKind, core.ErrInvalidPeriod,
	core.ErrBillingMonthMissing, core.ErrInvalidCategoryType, core.ErrInvalidStatus,
	core.ErrGoalOverTarget, core.ErrInvalidTheme, core.ErrEmptyCurrency, core.ErrZeroDate,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// CheckOwner rejects calls without an authenticated owner.
func CheckOwner(op, entity string, owner core.OwnerID) error {
	if strings.TrimSpace(string(owner)) == "" {
		return NewError(KindUnauthorized, op, entity, 0, ErrNoOwner)
	}
	return nil
}

// KindOf returns the kind of a store error, UNKNOWN for foreign errors and
// the empty kind for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }
func IsValidation(err error) bool   { return KindOf(err) == KindValidation }

// UserMessage translates a store failure into a message fit for the user.
func UserMessage(err error) string {
	switch KindOf(err) {
	case "":
		return ""
	case KindNotFound:
		return "Registro não encontrado."
	case KindUnauthorized:
		return "Você não tem permissão para acessar este registro. Entre novamente."
	case KindNetwork:
		return "Falha de conexão. Verifique sua internet e tente novamente."
	case KindValidation:
		return "Dados inválidos. Revise os campos e tente novamente."
	default:
		return "Ocorreu um erro inesperado. Tente novamente."
	}
}

// Rejected wraps an error returned by an update callback. Errors that do
// not map to a more specific kind count as VALIDATION.
func Rejected(op, entity string, id int64, err error) error {
	if kind := classify(err); kind != KindUnknown {
		return Wrap(op, entity, id, err)
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return NewError(KindValidation, op, entity, id, err)
}
