package dataset

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/gstbill/gstbill/internal/platform/db"
)

func newPostgresGateway(t *testing.T) (*PostgresGateway, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv("GSTBILL_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("GSTBILL_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	pool, err := db.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	gw := NewPostgresGateway(pool)
	require.NoError(t, gw.EnsureSchema(ctx))
	_, err = pool.Exec(ctx, `DELETE FROM gstbill_dataset`)
	require.NoError(t, err)
	return gw, pool
}

func TestPostgresGatewayRoundTrip(t *testing.T) {
	gw, pool := newPostgresGateway(t)
	ctx := context.Background()

	empty, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultStartNumber, empty.Counter.LastInvoiceNumber)
	assert.Empty(t, empty.Invoices)

	require.NoError(t, gw.Save(ctx, sampleDataset()))
	require.NoError(t, gw.Save(ctx, sampleDataset()), "second save updates the same row")

	got, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sharma Traders", got.Business.Name)
	require.Len(t, got.Invoices, 1)
	assert.Equal(t, 101, got.Invoices[0].InvoiceNumber)

	var rows int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM gstbill_dataset`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestPostgresGatewayConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	gw, _ := newPostgresGateway(t)
	ctx := context.Background()
	require.NoError(t, gw.Save(ctx, Default()))

	const writers, rounds = 4, 5
	var g errgroup.Group
	for w := 0; w < writers; w++ {
		g.Go(func() error {
			for r := 0; r < rounds; r++ {
				err := gw.Update(ctx, func(ds *Dataset) error {
					ds.Counter.LastInvoiceNumber++
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	got, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultStartNumber+writers*rounds, got.Counter.LastInvoiceNumber)
}
