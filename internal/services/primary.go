package services

import (
	"context"
	"errors"
	"fmt"

	"carteira/internal/core"
	applog "carteira/internal/log"
	"carteira/internal/store"
)

// ConsistencyError reports a primary switch that failed half way and could
// not be rolled back. The store may now hold zero or two primaries.
type ConsistencyError struct {
	Entity   string
	TargetID int64
	// Cause is the failure that triggered the rollback.
	Cause error
	// Unrestored lists records whose flag could not be put back.
	Unrestored []int64
	Restore    error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("set primary %s %d: %v; rollback failed for %v: %v",
		e.Entity, e.TargetID, e.Cause, e.Unrestored, e.Restore)
}

func (e *ConsistencyError) Unwrap() []error {
	return []error{e.Cause, e.Restore}
}

// IsConsistencyError reports whether err is or wraps a *ConsistencyError.
func IsConsistencyError(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}

type primaryEntity[T any] interface {
	*T
	Meta() *core.Record
	Primary() bool
	SetPrimary(bool)
}

// PrimaryService keeps at most one primary card and one primary goal per
// owner. Nothing is updated optimistically; callers re-read afterwards.
type PrimaryService struct {
	store  store.Store
	logger *applog.Logger
}

func NewPrimaryService(st store.Store, logger *applog.Logger) *PrimaryService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &PrimaryService{store: st, logger: logger.WithComponent(applog.ComponentRecords)}
}

func (s *PrimaryService) SetPrimaryCard(ctx context.Context, owner core.OwnerID, id int64) error {
	return setPrimary[core.Card](ctx, s.logger, s.store.Cards(), store.EntityCard, owner, id)
}

func (s *PrimaryService) SetPrimaryGoal(ctx context.Context, owner core.OwnerID, id int64) error {
	return setPrimary[core.Goal](ctx, s.logger, s.store.Goals(), store.EntityGoal, owner, id)
}

// setPrimary unsets every other primary, then sets the target. A failed
// unset rolls back the unsets already done and returns the store error. A
// failed set rolls back every unset. A failed rollback is a
// *ConsistencyError.
func setPrimary[T any, PT primaryEntity[T]](ctx context.Context, logger *applog.Logger, c store.Collection[T], entity string, owner core.OwnerID, id int64) error {
	target, err := c.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	items, err := c.List(ctx, owner)
	if err != nil {
		return err
	}

	var unset []int64
	for i := range items {
		meta := PT(&items[i]).Meta()
		if meta.ID == id || !PT(&items[i]).Primary() {
			continue
		}
		if _, err := c.Update(ctx, owner, meta.ID, flag[T, PT](false)); err != nil {
			return rollback[T, PT](ctx, logger, c, entity, owner, id, unset, err)
		}
		unset = append(unset, meta.ID)
	}

	if PT(&target).Primary() {
		return nil
	}
	if _, err := c.Update(ctx, owner, id, flag[T, PT](true)); err != nil {
		return rollback[T, PT](ctx, logger, c, entity, owner, id, unset, err)
	}

	logger.InfoContext(ctx, "Primary changed",
		applog.FieldOwner, string(owner),
		applog.FieldEntity, entity,
		applog.FieldRecordID, id,
		applog.FieldOperation, applog.OpSetPrimary,
	)
	return nil
}

func flag[T any, PT primaryEntity[T]](v bool) func(*T) error {
	return func(item *T) error {
		PT(item).SetPrimary(v)
		return nil
	}
}

// rollback restores the primary flag on ids and returns cause, or a
// *ConsistencyError when some restore fails.
func rollback[T any, PT primaryEntity[T]](ctx context.Context, logger *applog.Logger, c store.Collection[T], entity string, owner core.OwnerID, target int64, ids []int64, cause error) error {
	// restore even when the caller's context is gone
	restoreCtx := context.WithoutCancel(ctx)

	var failed []int64
	var restoreErrs []error
	for _, rid := range ids {
		if _, err := c.Update(restoreCtx, owner, rid, flag[T, PT](true)); err != nil {
			failed = append(failed, rid)
			restoreErrs = append(restoreErrs, err)
		}
	}
	if len(failed) == 0 {
		return cause
	}

	ce := &ConsistencyError{
		Entity:     entity,
		TargetID:   target,
		Cause:      cause,
		Unrestored: failed,
		Restore:    errors.Join(restoreErrs...),
	}
	logger.ErrorContext(ctx, "Primary rollback failed",
		applog.FieldOwner, string(owner),
		applog.FieldEntity, entity,
		applog.FieldRecordID, target,
		applog.FieldError, ce.Error(),
	)
	return ce
}
