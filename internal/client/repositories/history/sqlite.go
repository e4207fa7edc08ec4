package history

import (
	"context"
	"fmt"

	"github.com/pricescout/pricescout/internal/client/models"
	"github.com/pricescout/pricescout/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product, timestamp, results_count
		FROM history ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Product, &e.Timestamp, &e.ResultsCount); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}

	return entries, nil
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, entries []models.HistoryEntry) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to reset history cache: %w", err)
	}
	for i, e := range entries {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO history (id, product, timestamp, results_count, position)
			VALUES (?, ?, ?, ?, ?)
		`, e.ID, e.Product, e.Timestamp, e.ResultsCount, i)
		if err != nil {
			return fmt.Errorf("failed to cache history entry %s: %w", e.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return fmt.Errorf("failed to clear history cache: %w", err)
	}
	return nil
}
