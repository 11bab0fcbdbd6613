package pg_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/katchitechstudio/nouvs-backend/internal/domain"
	"github.com/katchitechstudio/nouvs-backend/internal/infrastructure/pg"

	"github.com/stretchr/testify/require"
)

func openFromEnv(t *testing.T) *pg.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping PG test")
	}
	ctx := context.Background()
	db, err := pg.Connect(ctx, dsn)
	if err != nil {
		t.Skip("pg not available: ", err)
	}
	t.Cleanup(db.Close)
	if err := db.Ping(ctx); err != nil {
		t.Skip("pg not reachable: ", err)
	}
	require.NoError(t, pg.RunMigrations(ctx, db))
	return db
}

func TestUpsertIsIdempotentPerKey(t *testing.T) {
	t.Parallel()
	db := openFromEnv(t)
	ctx := context.Background()
	repo := pg.NewQuoteRepo(db)

	q := domain.AssetQuote{
		Class:       domain.ClassCurrency,
		Key:         "USD",
		DisplayName: "US Dollar",
		Rate:        34.48,
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(ctx, q))

	q.Rate = 34.91
	q.ChangePercent = 1.25
	require.NoError(t, repo.Upsert(ctx, q))

	got, err := repo.GetCurrent(ctx, domain.ClassCurrency, "USD")
	require.NoError(t, err)
	require.InDelta(t, 34.91, got.Rate, 1e-6)
	require.InDelta(t, 1.25, got.ChangePercent, 1e-6)
}

func TestAppendHistory(t *testing.T) {
	t.Parallel()
	db := openFromEnv(t)
	ctx := context.Background()
	repo := pg.NewQuoteRepo(db)

	p := domain.HistoryPoint{
		Class:      domain.ClassGold,
		Key:        "Gram Altın",
		Rate:       2450.50,
		RecordedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.AppendHistory(ctx, p))

	points, err := repo.HistorySince(ctx, domain.ClassGold, "Gram Altın",
		time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, points)
}

func TestGetCurrentMissing(t *testing.T) {
	t.Parallel()
	db := openFromEnv(t)

	_, err := pg.NewQuoteRepo(db).GetCurrent(context.Background(), domain.ClassSilver, "no-such-key")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContainerizedRoundTrip(t *testing.T) {
	db, teardown := withPostgres(t)
	defer teardown()
	ctx := context.Background()

	quotes := pg.NewQuoteRepo(db)
	news := pg.NewNewsRepo(db)

	require.NoError(t, quotes.Upsert(ctx, domain.AssetQuote{
		Class: domain.ClassCurrency, Key: "EUR", DisplayName: "Euro",
		Rate: 37.25, UpdatedAt: time.Now().UTC(),
	}))
	all, err := quotes.ListCurrent(ctx, domain.ClassCurrency)
	require.NoError(t, err)
	require.Len(t, all, 1)

	inserted, err := news.Insert(ctx, domain.NewsItem{
		Title: "Merkez Bankası faiz kararını açıkladı", Source: "ntv",
		Category: "economy", PublishedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.True(t, inserted)

	again, err := news.Insert(ctx, domain.NewsItem{
		Title: "Merkez Bankası faiz kararını açıkladı", Source: "cnn-turk",
		Category: "economy", PublishedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.False(t, again)
}
