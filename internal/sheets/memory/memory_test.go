package memory

import (
	"context"
	"testing"

	"foodwaste/internal/core"
)

func entry(id string) core.WasteEntry {
	return core.WasteEntry{
		ID:       id,
		FoodItem: "bread",
		Category: core.CategoryGrains,
		Quantity: 1,
		Unit:     "items",
		Date:     core.NewDate(2024, 1, 1),
		Reason:   core.ReasonLeftover,
	}
}

func TestMirrorAppendIsIdempotent(t *testing.T) {
	m := New()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := m.AppendEntry(ctx, entry("a")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := m.AppendEntry(ctx, entry("b")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if rows := m.Rows(); len(rows) != 2 || rows[0].ID != "a" || rows[1].ID != "b" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestMirrorRemove(t *testing.T) {
	m := New()
	ctx := context.Background()
	_ = m.AppendEntry(ctx, entry("a"))

	if err := m.RemoveEntry(ctx, "missing"); err != nil {
		t.Fatalf("removing unknown id should be a no-op: %v", err)
	}
	if err := m.RemoveEntry(ctx, "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(m.Rows()) != 0 {
		t.Fatal("row not removed")
	}
}

func TestMirrorRejectsInvalid(t *testing.T) {
	if err := New().AppendEntry(context.Background(), core.WasteEntry{ID: "x"}); err == nil {
		t.Fatal("expected validation error")
	}
}
