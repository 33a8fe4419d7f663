package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"foodwaste/internal/amqp"
	"foodwaste/internal/sheets"
	"foodwaste/internal/storage"

	"golang.org/x/sync/errgroup"
)

// EventSource delivers entry events until its context ends.
type EventSource interface {
	Consume(ctx context.Context, handler func(context.Context, *amqp.EntryEvent) error) error
}

// MirrorWorker keeps a sheets.EntryMirror in step with the waste log, from
// events as they arrive and from periodic reconciliation against the store.
type MirrorWorker struct {
	store     storage.EntryStore
	mirror    sheets.EntryMirror
	batchSize int
}

func NewMirrorWorker(store storage.EntryStore, mirror sheets.EntryMirror, batchSize int) *MirrorWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &MirrorWorker{store: store, mirror: mirror, batchSize: batchSize}
}

// HandleEvent applies a single entry event to the mirror.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.EntryEvent) error {
	slog.InfoContext(ctx, "Processing entry event", "type", ev.Type, "id", ev.ID)

	switch ev.Type {
	case amqp.EventEntryCreated:
		if ev.Entry == nil {
			return fmt.Errorf("created event %s without entry", ev.ID)
		}
		if err := w.mirror.AppendEntry(ctx, *ev.Entry); err != nil {
			return fmt.Errorf("mirror entry %s: %w", ev.ID, err)
		}
	case amqp.EventEntryDeleted:
		if err := w.mirror.RemoveEntry(ctx, ev.ID); err != nil {
			return fmt.Errorf("remove mirrored entry %s: %w", ev.ID, err)
		}
	default:
		slog.WarnContext(ctx, "Ignoring unknown event type", "type", ev.Type, "id", ev.ID)
	}
	return nil
}

// Reconcile appends every stored entry to the mirror in batches. Appends are
// idempotent so already mirrored entries are skipped by the mirror.
func (w *MirrorWorker) Reconcile(ctx context.Context) error {
	if w.store == nil {
		return nil
	}
	entries, err := w.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}

	var errs []error
	mirrored := 0
	for start := 0; start < len(entries); start += w.batchSize {
		end := min(start+w.batchSize, len(entries))
		for _, e := range entries[start:end] {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := w.mirror.AppendEntry(ctx, e); err != nil {
				slog.ErrorContext(ctx, "Failed to mirror entry", "id", e.ID, "error", err)
				errs = append(errs, fmt.Errorf("entry %s: %w", e.ID, err))
				continue
			}
			mirrored++
		}
		slog.DebugContext(ctx, "Reconciled batch", "from", start, "to", end)
	}

	slog.InfoContext(ctx, "Mirror reconciliation finished", "entries", len(entries), "mirrored", mirrored, "failed", len(errs))
	return errors.Join(errs...)
}

// Run consumes events from src and reconciles every interval until ctx ends.
// A zero interval disables periodic reconciliation.
func (w *MirrorWorker) Run(ctx context.Context, src EventSource, interval time.Duration) error {
	if err := w.Reconcile(ctx); err != nil {
		slog.WarnContext(ctx, "Startup reconciliation incomplete", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	if src != nil {
		g.Go(func() error {
			return src.Consume(ctx, w.HandleEvent)
		})
	}
	if interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					if err := w.Reconcile(ctx); err != nil {
						slog.WarnContext(ctx, "Periodic reconciliation incomplete", "error", err)
					}
				}
			}
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
