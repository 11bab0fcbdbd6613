package pg_test

import (
	"context"
	"testing"
	"time"

	"github.com/katchitechstudio/nouvs-backend/internal/domain"
	"github.com/katchitechstudio/nouvs-backend/internal/infrastructure/pg"

	"github.com/stretchr/testify/require"
)

// A statement error aborts a Postgres transaction; only a savepoint rollback
// brings it back. This exercises the nested Do path against a real server: the
// failing upsert is confined to its savepoint and the rest of the batch still
// commits.
func TestUnitOfWork_NestedRollbackKeepsTransactionAlive(t *testing.T) {
	t.Parallel()
	db := openFromEnv(t)
	ctx := context.Background()

	repo := pg.NewQuoteRepo(db)
	uow := &pg.UnitOfWork{Pool: db.Pool}
	now := time.Now().UTC()

	upsert := func(ctx context.Context, key string, rate float64) error {
		return repo.Upsert(ctx, domain.AssetQuote{
			Class: domain.ClassCurrency, Key: key, DisplayName: key,
			Rate: rate, UpdatedAt: now,
		})
	}

	err := uow.Do(ctx, func(ctx context.Context) error {
		require.NoError(t, uow.Do(ctx, func(ctx context.Context) error {
			return upsert(ctx, "NOK", 3.2)
		}))
		// Overflows the NUMERIC(18,6) rate column.
		bad := uow.Do(ctx, func(ctx context.Context) error {
			return upsert(ctx, "BAD", 1e15)
		})
		require.Error(t, bad)
		// The outer transaction must still accept statements.
		return uow.Do(ctx, func(ctx context.Context) error {
			return upsert(ctx, "SEK", 3.1)
		})
	})
	require.NoError(t, err)

	got, err := repo.GetCurrent(ctx, domain.ClassCurrency, "NOK")
	require.NoError(t, err)
	require.InDelta(t, 3.2, got.Rate, 1e-6)

	got, err = repo.GetCurrent(ctx, domain.ClassCurrency, "SEK")
	require.NoError(t, err)
	require.InDelta(t, 3.1, got.Rate, 1e-6)

	_, err = repo.GetCurrent(ctx, domain.ClassCurrency, "BAD")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
