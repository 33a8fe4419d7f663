package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"foodwaste/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const entryColumns = `id, food_item, category, quantity, unit, quantity_kg, date, reason, notes, entry_timestamp`

type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the database file, enables WAL
// and applies the embedded migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Insert(ctx context.Context, e core.WasteEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO waste_entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.FoodItem, string(e.Category), e.Quantity, e.Unit, e.QuantityKg,
		e.Date.String(), string(e.Reason), e.Notes, e.EntryTimestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("insert waste entry: %w", err)
	}

	slog.InfoContext(ctx, "Waste entry saved to SQLite",
		"id", e.ID,
		"food_item", e.FoodItem,
		"quantity_kg", e.QuantityKg,
		"date", e.Date.String())

	return e.ID, nil
}

func (r *Repository) List(ctx context.Context) ([]core.WasteEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM waste_entries ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list waste entries: %w", err)
	}
	defer rows.Close()

	var entries []core.WasteEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate waste entries: %w", err)
	}
	return entries, nil
}

func (r *Repository) Get(ctx context.Context, id string) (core.WasteEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM waste_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.WasteEntry{}, fmt.Errorf("get entry %s: %w", id, core.ErrNotFound)
	}
	return e, err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM waste_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete waste entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete waste entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete entry %s: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Waste entry deleted from SQLite", "id", id)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (core.WasteEntry, error) {
	var (
		e                core.WasteEntry
		category, reason string
		date, stamp      string
	)
	if err := s.Scan(&e.ID, &e.FoodItem, &category, &e.Quantity, &e.Unit, &e.QuantityKg,
		&date, &reason, &e.Notes, &stamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan waste entry: %w", err)
	}

	d, err := core.ParseDate(date)
	if err != nil {
		return e, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return e, fmt.Errorf("parse stored timestamp %q: %w", stamp, err)
	}
	e.Category = core.Category(category)
	e.Reason = core.Reason(reason)
	e.Date = d
	e.EntryTimestamp = ts
	return e, nil
}
