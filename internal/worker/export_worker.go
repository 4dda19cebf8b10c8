// Package worker rebuilds ledger snapshots from the database and pushes them
// to the configured snapshot writer.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"rastreador/internal/amqp"
	"rastreador/internal/ledger"
	"rastreador/internal/sheets"
)

// exportTimeout bounds a debounced export running outside any message
// handler's context.
const exportTimeout = 30 * time.Second

// ExportWorker reloads the full ledger on a change message and exports a
// snapshot. Change messages carry no payload, so messages arriving within
// the debounce window collapse into one export of the latest state. With a
// zero debounce every message exports immediately.
type ExportWorker struct {
	store    ledger.Store
	writer   sheets.SnapshotWriter
	debounce time.Duration
	now      func() time.Time

	mu    sync.Mutex
	dirty bool
	timer *time.Timer
}

func NewExportWorker(store ledger.Store, writer sheets.SnapshotWriter, debounce time.Duration) *ExportWorker {
	return &ExportWorker{
		store:    store,
		writer:   writer,
		debounce: debounce,
		now:      time.Now,
	}
}

// HandleChange processes a single ledger change message. With a debounce
// window configured it only marks the ledger dirty and schedules an export,
// so the message is acknowledged before the snapshot is written.
func (w *ExportWorker) HandleChange(ctx context.Context, msg *amqp.LedgerChangeMessage) error {
	slog.InfoContext(ctx, "Processing ledger change",
		"entity", msg.Entity,
		"id", msg.ID,
		"op", msg.Op)

	if w.debounce <= 0 {
		return w.export(ctx)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirty = true
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.exportPending)
	} else {
		w.timer.Reset(w.debounce)
	}
	return nil
}

// Flush exports immediately when a debounced change is pending. Called on
// shutdown so a dirty ledger is not left unexported.
func (w *ExportWorker) Flush(ctx context.Context) error {
	w.mu.Lock()
	if !w.dirty {
		w.mu.Unlock()
		return nil
	}
	w.dirty = false
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	return w.export(ctx)
}

func (w *ExportWorker) exportPending() {
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()
	if err := w.Flush(ctx); err != nil {
		slog.Error("Debounced export failed", "error", err)
	}
}

func (w *ExportWorker) export(ctx context.Context) error {
	book, err := ledger.Load(ctx, w.store)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	snap := book.Snapshot(w.now())
	if err := w.writer.WriteSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Ledger snapshot exported",
		"expenses", len(snap.Expenses),
		"cards", len(snap.Cards))
	return nil
}
