package services

import (
	"context"
	"time"

	"carteira/internal/cache"
	"carteira/internal/core"
	applog "carteira/internal/log"
	"carteira/internal/store"
	"carteira/internal/summary"
)

// Dashboard answers the read-side queries. Snapshots are read through the
// cache when one is configured.
type Dashboard struct {
	store  store.Store
	cache  *cache.SnapshotCache
	logger *applog.Logger
}

func NewDashboard(st store.Store, snapshots *cache.SnapshotCache, logger *applog.Logger) *Dashboard {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Dashboard{
		store:  st,
		cache:  snapshots,
		logger: logger.WithComponent(applog.ComponentDashboard),
	}
}

// Snapshot returns all collections of owner.
func (d *Dashboard) Snapshot(ctx context.Context, owner core.OwnerID) (summary.Snapshot, error) {
	if err := store.CheckOwner(store.OpList, store.EntitySettings, owner); err != nil {
		return summary.Snapshot{}, err
	}
	load := func(ctx context.Context) (summary.Snapshot, error) {
		return LoadSnapshot(ctx, d.store, owner)
	}
	if d.cache == nil {
		return load(ctx)
	}
	return d.cache.GetOrLoad(ctx, owner, load)
}

func (d *Dashboard) Overview(ctx context.Context, owner core.OwnerID, year int, month time.Month) (summary.Overview, error) {
	snap, err := d.Snapshot(ctx, owner)
	if err != nil {
		d.logFailure(ctx, "overview", owner, err)
		return summary.Overview{}, err
	}
	return summary.BuildOverview(snap, year, month), nil
}

// Invoice builds the invoice of one card. An unknown card is NOT_FOUND.
func (d *Dashboard) Invoice(ctx context.Context, owner core.OwnerID, cardID int64, year int, month time.Month, query string) (summary.Invoice, error) {
	snap, err := d.Snapshot(ctx, owner)
	if err != nil {
		d.logFailure(ctx, "invoice", owner, err)
		return summary.Invoice{}, err
	}
	for _, c := range snap.Cards {
		if c.ID == cardID {
			return summary.BuildInvoice(c, snap.Expenses, year, month, query), nil
		}
	}
	return summary.Invoice{}, store.NewError(store.KindNotFound, store.OpGet, store.EntityCard, cardID, store.ErrNotFound)
}

func (d *Dashboard) Annual(ctx context.Context, owner core.OwnerID, year int) (summary.Annual, error) {
	snap, err := d.Snapshot(ctx, owner)
	if err != nil {
		d.logFailure(ctx, "annual", owner, err)
		return summary.Annual{}, err
	}
	return summary.BuildAnnual(year, snap.Incomes, snap.Expenses), nil
}

// Report is the annual summary plus every non-empty invoice of the year,
// ordered by card then month. Exports are built from it.
func (d *Dashboard) Report(ctx context.Context, owner core.OwnerID, year int) (summary.Annual, []summary.Invoice, error) {
	snap, err := d.Snapshot(ctx, owner)
	if err != nil {
		d.logFailure(ctx, "report", owner, err)
		return summary.Annual{}, nil, err
	}

	var invoices []summary.Invoice
	for _, c := range snap.Cards {
		for m := time.January; m <= time.December; m++ {
			inv := summary.BuildInvoice(c, snap.Expenses, year, m, "")
			if len(inv.Items) > 0 {
				invoices = append(invoices, inv)
			}
		}
	}
	return summary.BuildAnnual(year, snap.Incomes, snap.Expenses), invoices, nil
}

func (d *Dashboard) logFailure(ctx context.Context, query string, owner core.OwnerID, err error) {
	d.logger.WarnContext(ctx, "Dashboard query failed",
		"query", query,
		applog.FieldOwner, string(owner),
		applog.FieldError, err.Error(),
		applog.FieldErrorKind, string(store.KindOf(err)),
	)
}
