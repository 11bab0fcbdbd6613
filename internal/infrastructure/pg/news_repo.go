package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/katchitechstudio/nouvs-backend/internal/application"
	"github.com/katchitechstudio/nouvs-backend/internal/domain"
)

type NewsRepo struct{ db *DB }

func NewNewsRepo(db *DB) *NewsRepo { return &NewsRepo{db: db} }

func (r *NewsRepo) Insert(ctx context.Context, item domain.NewsItem) (bool, error) {
	const ins = `
        INSERT INTO news(title, description, image, source, url, category, published_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (title) DO NOTHING`
	tag, err := r.db.q(ctx).Exec(ctx, ins,
		item.Title, item.Description, item.Image, item.Source, item.URL, item.Category, item.PublishedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NewsRepo) List(ctx context.Context, f application.NewsFilter) ([]domain.NewsItem, error) {
	var (
		conds []string
		args  []any
	)
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category=$%d", len(args)))
	}
	if f.Source != "" {
		args = append(args, f.Source)
		conds = append(conds, fmt.Sprintf("source=$%d", len(args)))
	}
	q := `SELECT id, title, description, image, source, url, category, published_at FROM news`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit)
	q += fmt.Sprintf(" ORDER BY published_at DESC LIMIT $%d", len(args))

	rows, err := r.db.q(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.NewsItem
	for rows.Next() {
		var n domain.NewsItem
		if err := rows.Scan(&n.ID, &n.Title, &n.Description, &n.Image,
			&n.Source, &n.URL, &n.Category, &n.PublishedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NewsRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.q(ctx).Exec(ctx,
		`DELETE FROM news WHERE published_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
