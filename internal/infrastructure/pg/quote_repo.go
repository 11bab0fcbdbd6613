package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/katchitechstudio/nouvs-backend/internal/domain"
)

type QuoteRepo struct{ db *DB }

func NewQuoteRepo(db *DB) *QuoteRepo { return &QuoteRepo{db: db} }

func (r *QuoteRepo) GetCurrent(ctx context.Context, class domain.AssetClass, key string) (domain.AssetQuote, error) {
	const q = `
        SELECT class, key, display_name,
               COALESCE(buying, 0)::float8, COALESCE(selling, 0)::float8,
               rate::float8, change_percent::float8, updated_at
        FROM asset_quotes WHERE class=$1 AND key=$2`
	var out domain.AssetQuote
	err := r.db.q(ctx).QueryRow(ctx, q, class, key).Scan(
		&out.Class, &out.Key, &out.DisplayName,
		&out.Buying, &out.Selling, &out.Rate, &out.ChangePercent, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AssetQuote{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.AssetQuote{}, err
	}
	return out, nil
}

func (r *QuoteRepo) ListCurrent(ctx context.Context, class domain.AssetClass) ([]domain.AssetQuote, error) {
	const q = `
        SELECT class, key, display_name,
               COALESCE(buying, 0)::float8, COALESCE(selling, 0)::float8,
               rate::float8, change_percent::float8, updated_at
        FROM asset_quotes WHERE class=$1 ORDER BY key`
	rows, err := r.db.q(ctx).Query(ctx, q, class)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.AssetQuote
	for rows.Next() {
		var a domain.AssetQuote
		if err := rows.Scan(&a.Class, &a.Key, &a.DisplayName,
			&a.Buying, &a.Selling, &a.Rate, &a.ChangePercent, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *QuoteRepo) Upsert(ctx context.Context, q domain.AssetQuote) error {
	const up = `
        INSERT INTO asset_quotes(class, key, display_name, buying, selling, rate, change_percent, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (class, key) DO UPDATE
          SET display_name=EXCLUDED.display_name,
              buying=EXCLUDED.buying,
              selling=EXCLUDED.selling,
              rate=EXCLUDED.rate,
              change_percent=EXCLUDED.change_percent,
              updated_at=EXCLUDED.updated_at`
	_, err := r.db.q(ctx).Exec(ctx, up,
		q.Class, q.Key, q.DisplayName, q.Buying, q.Selling, q.Rate, q.ChangePercent, q.UpdatedAt)
	return err
}

func (r *QuoteRepo) AppendHistory(ctx context.Context, p domain.HistoryPoint) error {
	_, err := r.db.q(ctx).Exec(ctx, `
        INSERT INTO asset_quote_history(class, key, rate, recorded_at)
        VALUES ($1, $2, $3, $4)
    `, p.Class, p.Key, p.Rate, p.RecordedAt)
	return err
}

func (r *QuoteRepo) HistorySince(ctx context.Context, class domain.AssetClass, key string, since time.Time) ([]domain.HistoryPoint, error) {
	const q = `
        SELECT id, class, key, rate::float8, recorded_at
        FROM asset_quote_history
        WHERE class=$1 AND key=$2 AND recorded_at >= $3
        ORDER BY recorded_at DESC`
	rows, err := r.db.q(ctx).Query(ctx, q, class, key, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.HistoryPoint
	for rows.Next() {
		var p domain.HistoryPoint
		if err := rows.Scan(&p.ID, &p.Class, &p.Key, &p.Rate, &p.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *QuoteRepo) DeleteHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.q(ctx).Exec(ctx,
		`DELETE FROM asset_quote_history WHERE recorded_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
