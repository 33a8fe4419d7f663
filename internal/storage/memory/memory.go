package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"foodwaste/internal/core"

	"github.com/google/uuid"
)

// Store keeps entries in process memory. It is lost on restart.
type Store struct {
	mu    sync.RWMutex
	items []core.WasteEntry
}

func New(entries ...core.WasteEntry) *Store {
	s := &Store{}
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		s.items = append(s.items, e)
	}
	return s
}

// NewFromFile seeds the store from a JSON array of entries. Entries without a
// stored weight get one from conv; invalid entries are skipped and logged.
func NewFromFile(path string, conv *core.UnitConverter) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed []core.WasteEntry
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	valid := make([]core.WasteEntry, 0, len(seed))
	for i, e := range seed {
		if err := e.Validate(); err != nil {
			slog.Warn("Skipping invalid seed entry", "index", i, "error", err)
			continue
		}
		if e.QuantityKg == 0 && conv != nil {
			e.QuantityKg = conv.ToKg(e.Quantity, e.Unit)
		}
		valid = append(valid, e)
	}
	slog.Info("Memory store seeded", "path", path, "entries", len(valid), "skipped", len(seed)-len(valid))
	return New(valid...), nil
}

func (s *Store) Insert(ctx context.Context, e core.WasteEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(e.ID) >= 0 {
		return "", fmt.Errorf("entry %s already exists", e.ID)
	}
	s.items = append(s.items, e)
	return e.ID, nil
}

func (s *Store) List(_ context.Context) ([]core.WasteEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items), nil
}

func (s *Store) Get(_ context.Context, id string) (core.WasteEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.WasteEntry{}, fmt.Errorf("get entry %s: %w", id, core.ErrNotFound)
	}
	return s.items[i], nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete entry %s: %w", id, core.ErrNotFound)
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func (s *Store) Close() error { return nil }

// Len reports the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(e core.WasteEntry) bool { return e.ID == id })
}
