package storage

import (
	"context"

	"foodwaste/internal/core"
)

// EntryStore persists waste entries. Implementations assign an id on Insert
// when the entry carries none, and report unknown ids with core.ErrNotFound.
type EntryStore interface {
	Insert(ctx context.Context, e core.WasteEntry) (id string, err error)
	// List returns every stored entry in insertion order.
	List(ctx context.Context) ([]core.WasteEntry, error)
	Get(ctx context.Context, id string) (core.WasteEntry, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Pinger is implemented by stores backed by a remote or file database.
type Pinger interface {
	Ping(ctx context.Context) error
}
