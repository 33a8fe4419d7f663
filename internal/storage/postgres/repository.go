package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"foodwaste/internal/core"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// entryModel is the gorm row for a waste entry. Seq keeps insertion order.
type entryModel struct {
	Seq            uint      `gorm:"primaryKey"`
	ID             string    `gorm:"column:id;size:36;uniqueIndex;not null"`
	FoodItem       string    `gorm:"size:200;not null"`
	Category       string    `gorm:"size:32;index;not null"`
	Quantity       float64   `gorm:"not null"`
	Unit           string    `gorm:"size:32;not null"`
	QuantityKg     float64   `gorm:"not null"`
	Date           time.Time `gorm:"type:date;index;not null"`
	Reason         string    `gorm:"size:32;not null"`
	Notes          string    `gorm:"size:1000;not null;default:''"`
	EntryTimestamp time.Time `gorm:"not null"`
}

func (entryModel) TableName() string { return "waste_entries" }

func toModel(e core.WasteEntry) entryModel {
	return entryModel{
		ID:             e.ID,
		FoodItem:       e.FoodItem,
		Category:       string(e.Category),
		Quantity:       e.Quantity,
		Unit:           e.Unit,
		QuantityKg:     e.QuantityKg,
		Date:           e.Date.Time,
		Reason:         string(e.Reason),
		Notes:          e.Notes,
		EntryTimestamp: e.EntryTimestamp.UTC(),
	}
}

func (m entryModel) toEntry() core.WasteEntry {
	return core.WasteEntry{
		ID:             m.ID,
		FoodItem:       m.FoodItem,
		Category:       core.Category(m.Category),
		Quantity:       m.Quantity,
		Unit:           m.Unit,
		QuantityKg:     m.QuantityKg,
		Date:           core.DateOf(m.Date),
		Reason:         core.Reason(m.Reason),
		Notes:          m.Notes,
		EntryTimestamp: m.EntryTimestamp.UTC(),
	}
}

type Repository struct {
	db *gorm.DB
}

// Open connects to dsn and migrates the waste_entries table.
func Open(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewRepository(db)
}

// NewRepository wraps an existing gorm handle.
func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&entryModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate waste_entries: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Insert(ctx context.Context, e core.WasteEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	m := toModel(e)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return "", fmt.Errorf("insert waste entry: %w", err)
	}

	slog.InfoContext(ctx, "Waste entry saved to Postgres",
		"id", m.ID,
		"seq", m.Seq,
		"food_item", m.FoodItem,
		"quantity_kg", m.QuantityKg)
	return m.ID, nil
}

func (r *Repository) List(ctx context.Context) ([]core.WasteEntry, error) {
	var rows []entryModel
	if err := r.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list waste entries: %w", err)
	}
	entries := make([]core.WasteEntry, len(rows))
	for i, m := range rows {
		entries[i] = m.toEntry()
	}
	return entries, nil
}

func (r *Repository) Get(ctx context.Context, id string) (core.WasteEntry, error) {
	var m entryModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.WasteEntry{}, fmt.Errorf("get entry %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.WasteEntry{}, fmt.Errorf("get waste entry: %w", err)
	}
	return m.toEntry(), nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entryModel{})
	if res.Error != nil {
		return fmt.Errorf("delete waste entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete entry %s: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Waste entry deleted from Postgres", "id", id)
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
