package backend

import (
	"errors"
	"fmt"

	"foodwaste/internal/cache"
	"foodwaste/internal/services"
	"foodwaste/internal/storage"
)

// BackendType names the store holding waste entries.
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

// Backend is a fully wired waste service plus the resources it owns.
type Backend struct {
	Service *services.WasteService
	Store   storage.EntryStore
	Type    BackendType

	// ChatErr is the chat configuration problem, if any, reported on every
	// chat request.
	ChatErr error

	caches *cache.Manager
}

// Close stops cache cleanup and closes the store and publisher.
func (b *Backend) Close() error {
	if b == nil {
		return nil
	}
	if b.caches != nil {
		b.caches.Stop()
	}
	if b.Service == nil {
		return nil
	}
	if err := b.Service.Close(); err != nil {
		return fmt.Errorf("close %s backend: %w", b.Type, err)
	}
	return nil
}

var errUnknownBackend = errors.New("unknown data backend")
