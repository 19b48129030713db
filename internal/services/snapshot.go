// Package services orchestrates the store and the aggregation engine:
// collection loading, dashboard queries, primary-flag exclusivity, goal
// adjustment and record creation rules.
package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"carteira/internal/core"
	"carteira/internal/store"
	"carteira/internal/summary"
)

// LoadSnapshot lists every collection of owner concurrently. The result is
// all or nothing: the first failure cancels the remaining calls and is
// returned.
func LoadSnapshot(ctx context.Context, st store.Store, owner core.OwnerID) (summary.Snapshot, error) {
	var snap summary.Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { snap.Expenses, err = st.Expenses().List(ctx, owner); return })
	g.Go(func() (err error) { snap.Incomes, err = st.Incomes().List(ctx, owner); return })
	g.Go(func() (err error) { snap.Bills, err = st.Bills().List(ctx, owner); return })
	g.Go(func() (err error) { snap.Cards, err = st.Cards().List(ctx, owner); return })
	g.Go(func() (err error) { snap.Categories, err = st.Categories().List(ctx, owner); return })
	g.Go(func() (err error) { snap.Goals, err = st.Goals().List(ctx, owner); return })
	g.Go(func() (err error) { snap.Settings, err = st.Settings().Get(ctx, owner); return })

	if err := g.Wait(); err != nil {
		return summary.Snapshot{}, fmt.Errorf("load collections: %w", err)
	}
	return snap, nil
}
