// Package worker keeps an external copy of the annual report in step with
// the record store by reacting to change events.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"carteira/internal/amqp"
	"carteira/internal/core"
	applog "carteira/internal/log"
	"carteira/internal/store"
	"carteira/internal/summary"
)

// Reporter builds the annual report of one owner.
type Reporter interface {
	Report(ctx context.Context, owner core.OwnerID, year int) (summary.Annual, []summary.Invoice, error)
}

// ReportWriter publishes a report, e.g. to Google Sheets.
type ReportWriter interface {
	ExportAnnual(ctx context.Context, a summary.Annual, invoices []summary.Invoice) error
}

type pendingKey struct {
	owner core.OwnerID
	year  int
}

// SyncWorker batches change events and rewrites the affected reports on
// each flush, so a burst of edits costs one export.
type SyncWorker struct {
	reports  Reporter
	writer   ReportWriter
	owner    core.OwnerID
	interval time.Duration
	logger   *applog.Logger

	mu      sync.Mutex
	pending map[pendingKey]struct{}
}

// NewSyncWorker syncs the reports of owner. Events of other owners are
// acknowledged and ignored since the destination holds a single report.
func NewSyncWorker(reports Reporter, writer ReportWriter, owner core.OwnerID, interval time.Duration, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SyncWorker{
		reports:  reports,
		writer:   writer,
		owner:    owner,
		interval: interval,
		logger:   logger.WithComponent(applog.ComponentExport),
		pending:  make(map[pendingKey]struct{}),
	}
}

// HandleRecordChanged marks the reports of the years the change touched as
// stale. Undated records (cards, bills) fall back to the event's year.
func (w *SyncWorker) HandleRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	if msg.OwnerID != w.owner {
		return nil
	}
	switch msg.Entity {
	case store.EntitySettings, store.EntityCategory, store.EntityGoal:
		return nil
	}

	years := msg.Years
	if len(years) == 0 {
		years = []int{msg.Timestamp.Year()}
	}
	w.mu.Lock()
	for _, y := range years {
		w.pending[pendingKey{owner: msg.OwnerID, year: y}] = struct{}{}
	}
	w.mu.Unlock()

	w.logger.DebugContext(ctx, "Report marked stale",
		applog.FieldEventID, msg.EventID.String(),
		applog.FieldEntity, msg.Entity,
		"years", years,
	)
	return nil
}

// MarkStale queues a sync of year regardless of events, e.g. at startup.
func (w *SyncWorker) MarkStale(year int) {
	w.mu.Lock()
	w.pending[pendingKey{owner: w.owner, year: year}] = struct{}{}
	w.mu.Unlock()
}

// Pending reports how many reports wait for the next flush.
func (w *SyncWorker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Flush exports every stale report. Failed reports stay queued for the
// next flush. Returns how many were written.
func (w *SyncWorker) Flush(ctx context.Context) (int, error) {
	w.mu.Lock()
	keys := make([]pendingKey, 0, len(w.pending))
	for k := range w.pending {
		keys = append(keys, k)
	}
	clear(w.pending)
	w.mu.Unlock()

	var (
		written int
		errs    []error
	)
	for _, k := range keys {
		if err := w.sync(ctx, k); err != nil {
			errs = append(errs, err)
			w.mu.Lock()
			w.pending[k] = struct{}{}
			w.mu.Unlock()
			continue
		}
		written++
	}
	return written, errors.Join(errs...)
}

func (w *SyncWorker) sync(ctx context.Context, k pendingKey) error {
	annual, invoices, err := w.reports.Report(ctx, k.owner, k.year)
	if err != nil {
		return fmt.Errorf("build report %d: %w", k.year, err)
	}
	if err := w.writer.ExportAnnual(ctx, annual, invoices); err != nil {
		w.logger.ErrorContext(ctx, "Failed to sync report",
			applog.FieldOwner, string(k.owner),
			applog.FieldYear, k.year,
			applog.FieldError, err,
		)
		return fmt.Errorf("export report %d: %w", k.year, err)
	}

	w.logger.InfoContext(ctx, "Report synced",
		applog.FieldOwner, string(k.owner),
		applog.FieldYear, k.year,
		"invoices", len(invoices),
	)
	return nil
}

// Run flushes on every tick until ctx ends.
func (w *SyncWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.Pending() == 0 {
				continue
			}
			if _, err := w.Flush(ctx); err != nil && ctx.Err() == nil {
				w.logger.WarnContext(ctx, "Periodic sync incomplete", applog.FieldError, err)
			}
		}
	}
}
