package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gstbill/gstbill/internal/platform/db"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS gstbill_dataset (
	id         SMALLINT PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	selectDatasetSQL = `SELECT body FROM gstbill_dataset WHERE id = 1`
	lockDatasetSQL   = selectDatasetSQL + ` FOR UPDATE`
	seedDatasetSQL   = `INSERT INTO gstbill_dataset (id, body) VALUES (1, $1) ON CONFLICT (id) DO NOTHING`
	upsertDatasetSQL = `INSERT INTO gstbill_dataset (id, body, updated_at) VALUES (1, $1, now())
ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`
)

// PostgresGateway stores the dataset as a single JSONB row.
type PostgresGateway struct {
	pool *pgxpool.Pool
}

// NewPostgresGateway wraps an existing pool.
func NewPostgresGateway(pool *pgxpool.Pool) *PostgresGateway {
	return &PostgresGateway{pool: pool}
}

// EnsureSchema creates the backing table when absent.
func (g *PostgresGateway) EnsureSchema(ctx context.Context) error {
	if _, err := g.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("dataset: create table: %w", err)
	}
	return nil
}

// rowQuerier is satisfied by both the pool and a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Load reads the row; no row yields Default().
func (g *PostgresGateway) Load(ctx context.Context) (*Dataset, error) {
	return loadRow(ctx, g.pool, selectDatasetSQL)
}

// Save upserts the row inside a transaction.
func (g *PostgresGateway) Save(ctx context.Context, ds *Dataset) error {
	return db.WithTx(ctx, g.pool, func(tx pgx.Tx) error {
		return saveRow(ctx, tx, ds)
	})
}

// Update locks the row, applies fn and writes the result back in one transaction, so
// concurrent writers from the server and worker queue on the row lock instead of
// overwriting each other. A missing row is seeded first so there is always one to lock.
func (g *PostgresGateway) Update(ctx context.Context, fn func(*Dataset) error) error {
	seed, err := Encode(Default())
	if err != nil {
		return err
	}
	return db.WithTxOptions(ctx, g.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, seedDatasetSQL, seed); err != nil {
			return fmt.Errorf("dataset: seed row: %w", err)
		}
		ds, err := loadRow(ctx, tx, lockDatasetSQL)
		if err != nil {
			return err
		}
		if err := fn(ds); err != nil {
			return err
		}
		return saveRow(ctx, tx, ds.Normalize())
	})
}

func loadRow(ctx context.Context, q rowQuerier, query string) (*Dataset, error) {
	var raw []byte
	err := q.QueryRow(ctx, query).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: select: %w", err)
	}
	return Decode(raw)
}

func saveRow(ctx context.Context, tx pgx.Tx, ds *Dataset) error {
	raw, err := Encode(ds)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, upsertDatasetSQL, raw); err != nil {
		return fmt.Errorf("dataset: upsert: %w", err)
	}
	return nil
}
