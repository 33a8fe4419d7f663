package memory

import (
	"context"
	"slices"
	"sync"

	"foodwaste/internal/core"
	ports "foodwaste/internal/sheets"
)

// Mirror is an in-process EntryMirror used when no spreadsheet is configured.
type Mirror struct {
	mu   sync.Mutex
	rows []core.WasteEntry
}

var _ ports.EntryMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

func (m *Mirror) AppendEntry(_ context.Context, e core.WasteEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(e.ID) >= 0 {
		return nil
	}
	m.rows = append(m.rows, e)
	return nil
}

func (m *Mirror) RemoveEntry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(id); i >= 0 {
		m.rows = slices.Delete(m.rows, i, i+1)
	}
	return nil
}

// Rows returns the mirrored entries in append order.
func (m *Mirror) Rows() []core.WasteEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.rows)
}

func (m *Mirror) indexOf(id string) int {
	return slices.IndexFunc(m.rows, func(e core.WasteEntry) bool { return e.ID == id })
}
