package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"carteira/internal/amqp"
	"carteira/internal/core"
	applog "carteira/internal/log"
	"carteira/internal/store"
	"carteira/internal/summary"
)

type fakeReporter struct {
	err error
}

func (f fakeReporter) Report(_ context.Context, _ core.OwnerID, year int) (summary.Annual, []summary.Invoice, error) {
	if f.err != nil {
		return summary.Annual{}, nil, f.err
	}
	return summary.Annual{Year: year}, nil, nil
}

type fakeWriter struct {
	mu    sync.Mutex
	years []int
	fail  bool
}

func (f *fakeWriter) ExportAnnual(_ context.Context, a summary.Annual, _ []summary.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("sheets unavailable")
	}
	f.years = append(f.years, a.Year)
	return nil
}

func quietLogger() *applog.Logger {
	return applog.New(applog.NewTextConfig(io.Discard, slog.LevelError, "test"))
}

func event(owner core.OwnerID, entity string, at time.Time) *amqp.RecordChangedMessage {
	msg := amqp.NewRecordChangedMessage(store.OpCreate, entity, owner, 1)
	msg.Timestamp = at
	return msg
}

func withYears(msg *amqp.RecordChangedMessage, years ...int) *amqp.RecordChangedMessage {
	msg.Years = years
	return msg
}

func TestHandleRecordChanged(t *testing.T) {
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		msgs        []*amqp.RecordChangedMessage
		wantPending int
	}{
		{
			name:        "expense marks year",
			msgs:        []*amqp.RecordChangedMessage{event("u1", store.EntityExpense, at)},
			wantPending: 1,
		},
		{
			name: "burst collapses",
			msgs: []*amqp.RecordChangedMessage{
				event("u1", store.EntityExpense, at),
				event("u1", store.EntityIncome, at),
				event("u1", store.EntityCard, at),
			},
			wantPending: 1,
		},
		{
			name: "years kept apart",
			msgs: []*amqp.RecordChangedMessage{
				event("u1", store.EntityExpense, at),
				event("u1", store.EntityExpense, at.AddDate(1, 0, 0)),
			},
			wantPending: 2,
		},
		{
			name: "record years override event time",
			msgs: []*amqp.RecordChangedMessage{
				withYears(event("u1", store.EntityExpense, at), 2024, 2025),
				withYears(event("u1", store.EntityIncome, at), 2024),
			},
			wantPending: 2,
		},
		{
			name:        "other owner ignored",
			msgs:        []*amqp.RecordChangedMessage{event("u2", store.EntityExpense, at)},
			wantPending: 0,
		},
		{
			name:        "settings ignored",
			msgs:        []*amqp.RecordChangedMessage{event("u1", store.EntitySettings, at)},
			wantPending: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewSyncWorker(fakeReporter{}, &fakeWriter{}, "u1", time.Minute, quietLogger())
			for _, m := range tt.msgs {
				if err := w.HandleRecordChanged(context.Background(), m); err != nil {
					t.Fatalf("HandleRecordChanged: %v", err)
				}
			}
			if got := w.Pending(); got != tt.wantPending {
				t.Errorf("Pending() = %d, want %d", got, tt.wantPending)
			}
		})
	}
}

func TestFlush(t *testing.T) {
	ctx := context.Background()

	t.Run("writes and clears", func(t *testing.T) {
		writer := &fakeWriter{}
		w := NewSyncWorker(fakeReporter{}, writer, "u1", time.Minute, quietLogger())
		w.MarkStale(2025)
		w.MarkStale(2025)

		n, err := w.Flush(ctx)
		if err != nil || n != 1 {
			t.Fatalf("Flush() = %d, %v; want 1, nil", n, err)
		}
		if len(writer.years) != 1 || writer.years[0] != 2025 {
			t.Errorf("exported years = %v", writer.years)
		}
		if w.Pending() != 0 {
			t.Errorf("Pending() = %d after flush", w.Pending())
		}
	})

	t.Run("export failure stays queued", func(t *testing.T) {
		writer := &fakeWriter{fail: true}
		w := NewSyncWorker(fakeReporter{}, writer, "u1", time.Minute, quietLogger())
		w.MarkStale(2025)

		if _, err := w.Flush(ctx); err == nil {
			t.Fatal("expected error")
		}
		if w.Pending() != 1 {
			t.Fatalf("Pending() = %d, want 1", w.Pending())
		}

		writer.fail = false
		if n, err := w.Flush(ctx); err != nil || n != 1 {
			t.Errorf("retry Flush() = %d, %v", n, err)
		}
	})

	t.Run("report failure stays queued", func(t *testing.T) {
		w := NewSyncWorker(fakeReporter{err: errors.New("store down")}, &fakeWriter{}, "u1", time.Minute, quietLogger())
		w.MarkStale(2024)
		if _, err := w.Flush(ctx); err == nil {
			t.Fatal("expected error")
		}
		if w.Pending() != 1 {
			t.Errorf("Pending() = %d, want 1", w.Pending())
		}
	})
}

func TestRunFlushesOnTick(t *testing.T) {
	writer := &fakeWriter{}
	w := NewSyncWorker(fakeReporter{}, writer, "u1", 10*time.Millisecond, quietLogger())
	w.MarkStale(2025)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go w.Run(ctx)

	for w.Pending() != 0 {
		if ctx.Err() != nil {
			t.Fatal("report was never flushed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
}

func TestEditBackdatedRecordSyncsItsYear(t *testing.T) {
	writer := &fakeWriter{}
	w := NewSyncWorker(fakeReporter{}, writer, "u1", time.Minute, quietLogger())

	msg := withYears(event("u1", store.EntityExpense, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)), 2023)
	if err := w.HandleRecordChanged(context.Background(), msg); err != nil {
		t.Fatalf("HandleRecordChanged: %v", err)
	}
	if _, err := w.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(writer.years) != 1 || writer.years[0] != 2023 {
		t.Errorf("exported years = %v, want [2023]", writer.years)
	}
}
