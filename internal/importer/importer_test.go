package importer

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"foodwaste/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type recordingAdder struct {
	conv  *core.UnitConverter
	added []core.WasteEntry
}

func (a *recordingAdder) AddEntry(_ context.Context, in core.EntryInput) (string, error) {
	e, err := in.Build(a.conv, time.Now())
	if err != nil {
		return "", err
	}
	a.added = append(a.added, e)
	return e.FoodItem, nil
}

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportXLSX_WithHeader(t *testing.T) {
	buf := workbook(t,
		[]any{"FOOD_ITEM", "category", "quantity", "unit", "date", "reason", "notes"},
		[]any{"apple", "Fruits", 2, "items", "2024-03-14", "Spoiled", "bruised"},
		[]any{},
		[]any{"milk", "dairy", "500", "ml", "2024-03-15", "expired", ""},
		[]any{"bread", "Bakery", "1", "kg", "2024-03-15", "Leftover", ""},
	)
	adder := &recordingAdder{conv: core.NewUnitConverter()}

	res, err := ImportXLSX(context.Background(), buf, adder)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, []string{"apple", "milk"}, res.IDs)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 5, res.Failed[0].Row)
	assert.Contains(t, res.Failed[0].Error, "category")

	require.Len(t, adder.added, 2)
	assert.InDelta(t, 0.3, adder.added[0].QuantityKg, 1e-9)
	assert.Equal(t, "bruised", adder.added[0].Notes)
	assert.Equal(t, core.CategoryDairy, adder.added[1].Category)
}

func TestImportXLSX_ReorderedHeader(t *testing.T) {
	buf := workbook(t,
		[]any{"food_item", "date", "quantity", "unit", "category", "reason"},
		[]any{"rice", "2024-01-02", 1.5, "kg", "Grains", "Overcooked"},
	)
	adder := &recordingAdder{conv: core.NewUnitConverter()}

	res, err := ImportXLSX(context.Background(), buf, adder)
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	assert.Equal(t, "2024-01-02", adder.added[0].Date.String())
	assert.Equal(t, core.ReasonOvercooked, adder.added[0].Reason)
}

func TestImportXLSX_NoHeaderAndDateCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	row := []any{"carrot", "Vegetables", 3, "lbs", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), "Spoiled"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &row))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	adder := &recordingAdder{conv: core.NewUnitConverter()}
	res, err := ImportXLSX(context.Background(), buf, adder)
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported, "failed: %+v", res.Failed)
	assert.Equal(t, "2024-02-29", adder.added[0].Date.String())
	assert.InDelta(t, 3*core.KgPerPound, adder.added[0].QuantityKg, 1e-9)
}

func TestImportXLSX_Errors(t *testing.T) {
	_, err := ImportXLSX(context.Background(), strings.NewReader("not a workbook"), &recordingAdder{})
	assert.Error(t, err)

	_, err = ImportXLSX(context.Background(), workbook(t), &recordingAdder{})
	assert.ErrorIs(t, err, ErrEmptyWorkbook)
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	entries := []core.WasteEntry{
		{FoodItem: "apple", Category: core.CategoryFruits, Quantity: 2, Unit: "items", QuantityKg: 0.3,
			Date: core.NewDate(2024, 3, 14), Reason: core.ReasonSpoiled},
		{FoodItem: "cheese", Category: core.CategoryDairy, Quantity: 200, Unit: "g", QuantityKg: 0.2,
			Date: core.NewDate(2024, 3, 15), Reason: core.ReasonExpired, Notes: "moldy"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, entries))

	adder := &recordingAdder{conv: core.NewUnitConverter()}
	res, err := ImportXLSX(context.Background(), &buf, adder)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, "moldy", adder.added[1].Notes)
	assert.Equal(t, core.NewDate(2024, 3, 14), adder.added[0].Date)
}
