package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodwaste/internal/amqp"
	"foodwaste/internal/core"
	sheetsmem "foodwaste/internal/sheets/memory"
	storemem "foodwaste/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, item string) core.WasteEntry {
	return core.WasteEntry{
		ID:         id,
		FoodItem:   item,
		Category:   core.CategoryVegetables,
		Quantity:   300,
		Unit:       "g",
		QuantityKg: 0.3,
		Date:       core.NewDate(2024, 9, 1),
		Reason:     core.ReasonExpired,
	}
}

type failingMirror struct{ calls int }

func (f *failingMirror) AppendEntry(context.Context, core.WasteEntry) error {
	f.calls++
	return errors.New("quota exceeded")
}

func (f *failingMirror) RemoveEntry(context.Context, string) error { return nil }

type fakeSource struct {
	events []*amqp.EntryEvent
	errs   []error
}

func (s *fakeSource) Consume(ctx context.Context, handler func(context.Context, *amqp.EntryEvent) error) error {
	for _, ev := range s.events {
		s.errs = append(s.errs, handler(ctx, ev))
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestHandleEvent(t *testing.T) {
	ctx := context.Background()
	mirror := sheetsmem.New()
	w := NewMirrorWorker(nil, mirror, 5)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewEntryCreatedEvent(entry("a", "carrot"))))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewEntryCreatedEvent(entry("b", "leek"))))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewEntryDeletedEvent("a")))

	rows := mirror.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].ID)

	err := w.HandleEvent(ctx, &amqp.EntryEvent{Type: amqp.EventEntryCreated, ID: "c"})
	assert.Error(t, err)
	assert.NoError(t, w.HandleEvent(ctx, &amqp.EntryEvent{Type: "entry.other", ID: "d"}))
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	store := storemem.New(entry("1", "kale"), entry("2", "spinach"), entry("3", "chard"))
	mirror := sheetsmem.New()
	require.NoError(t, mirror.AppendEntry(ctx, entry("2", "spinach")))

	w := NewMirrorWorker(store, mirror, 2)
	require.NoError(t, w.Reconcile(ctx))

	rows := mirror.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "2", rows[0].ID)
}

func TestReconcileCollectsErrors(t *testing.T) {
	store := storemem.New(entry("1", "kale"), entry("2", "spinach"))
	m := &failingMirror{}
	err := NewMirrorWorker(store, m, 1).Reconcile(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 2, m.calls)
}

func TestRun(t *testing.T) {
	store := storemem.New(entry("1", "kale"))
	mirror := sheetsmem.New()
	src := &fakeSource{events: []*amqp.EntryEvent{
		amqp.NewEntryCreatedEvent(entry("2", "beet")),
		amqp.NewEntryDeletedEvent("1"),
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := NewMirrorWorker(store, mirror, 10).Run(ctx, src, time.Hour)
	assert.True(t, err == nil || errors.Is(err, context.DeadlineExceeded))

	rows := mirror.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "2", rows[0].ID)
	assert.Equal(t, []error{nil, nil}, src.errs)
}
