package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/atoyeh09/LinkBazar/internal/models"
)

// SnapshotRepository stores the latest scraped state of each product URL.
type SnapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// UpsertWithTx writes a record's snapshot within a transaction.
func (r *SnapshotRepository) UpsertWithTx(ctx context.Context, tx pgx.Tx, record *models.ProductRecord) error {
	query := `
		INSERT INTO scraped_product (
			url, title, price, currency, description, images, scraped_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			description = EXCLUDED.description,
			images = EXCLUDED.images,
			updated_at = NOW()
	`

	_, err := tx.Exec(ctx, query,
		record.URL, record.Title, record.Price, record.Currency,
		record.Description, record.Images)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}

// Get returns the stored snapshot for a URL, or nil when none exists.
func (r *SnapshotRepository) Get(ctx context.Context, url string) (*models.ProductRecord, error) {
	query := `
		SELECT url, title, price, currency, description, images
		FROM scraped_product
		WHERE url = $1`

	record := &models.ProductRecord{Success: true}
	err := r.db.pool.QueryRow(ctx, query, url).Scan(
		&record.URL, &record.Title, &record.Price, &record.Currency,
		&record.Description, &record.Images,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return record, nil
}

// ListRecent returns the most recently updated snapshots.
func (r *SnapshotRepository) ListRecent(ctx context.Context, limit int) ([]*models.ProductRecord, error) {
	query := `
		SELECT url, title, price, currency, description, images
		FROM scraped_product
		ORDER BY updated_at DESC
		LIMIT $1`

	rows, err := r.db.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var records []*models.ProductRecord
	for rows.Next() {
		record := &models.ProductRecord{Success: true}
		if err := rows.Scan(
			&record.URL, &record.Title, &record.Price, &record.Currency,
			&record.Description, &record.Images,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// PurgeOlderThan removes snapshots not refreshed since the cutoff.
func (r *SnapshotRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.pool.Exec(ctx,
		"DELETE FROM scraped_product WHERE updated_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge snapshots: %w", err)
	}
	return result.RowsAffected(), nil
}
