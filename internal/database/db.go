package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	pool *pgxpool.Pool
}

type Config struct {
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	MaxConns    int32
	MinConns    int32
	MaxConnLife time.Duration
	MaxConnIdle time.Duration
}

func New(ctx context.Context, cfg Config) (*DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLife
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdle

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

// EnsureSchema creates the tables this service writes to if they do not
// exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS scraped_product (
			url          TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			price        DOUBLE PRECISION,
			currency     TEXT,
			description  TEXT,
			images       TEXT[],
			scraped_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS scrape_outbox (
			id             UUID PRIMARY KEY,
			aggregate_type TEXT NOT NULL,
			aggregate_id   TEXT NOT NULL,
			event_type     TEXT NOT NULL,
			payload        JSONB NOT NULL,
			target_stream  TEXT NOT NULL,
			status         TEXT NOT NULL,
			retry_count    INT NOT NULL DEFAULT 0,
			error_message  TEXT,
			created_at     TIMESTAMPTZ NOT NULL,
			processed_at   TIMESTAMPTZ,
			next_retry_at  TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scrape_outbox_pending
			ON scrape_outbox (next_retry_at) WHERE status IN ('pending', 'failed')`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Transaction executes a function within a database transaction.
func (db *DB) Transaction(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				err = fmt.Errorf("tx rollback failed: %v (original error: %w)", rbErr, err)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Exec executes a query without returning any rows.
func (db *DB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return db.pool.Exec(ctx, sql, args...)
}

// QueryRow executes a query that returns at most one row.
func (db *DB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return db.pool.QueryRow(ctx, sql, args...)
}

// Query executes a query that returns rows.
func (db *DB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return db.pool.Query(ctx, sql, args...)
}
