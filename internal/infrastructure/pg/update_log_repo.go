package pg

import (
	"context"

	"go.uber.org/zap"

	"github.com/katchitechstudio/nouvs-backend/internal/domain"
	"github.com/katchitechstudio/nouvs-backend/internal/infrastructure/logx"
)

type UpdateLogRepo struct{ db *DB }

func NewUpdateLogRepo(db *DB) *UpdateLogRepo { return &UpdateLogRepo{db: db} }

func (r *UpdateLogRepo) Append(ctx context.Context, l domain.UpdateLog) error {
	const ins = `
        INSERT INTO update_logs(class, status, message, created_at)
        VALUES ($1, $2, $3, $4)`
	log := logx.L().With(
		zap.String("repo", "update_log"),
		zap.String("operation", "Append"),
		zap.String("class", string(l.Class)),
		zap.String("status", string(l.Status)),
	)
	log.Info("sql.exec_start")
	tag, err := r.db.q(ctx).Exec(ctx, ins, l.Class, l.Status, l.Message, l.CreatedAt)
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return err
	}
	log.Info("sql.exec_success", zap.Int64("rows_affected", tag.RowsAffected()))
	return nil
}

func (r *UpdateLogRepo) Recent(ctx context.Context, limit int) ([]domain.UpdateLog, error) {
	const q = `
        SELECT id, class, status, message, created_at
        FROM update_logs ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := r.db.q(ctx).Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.UpdateLog
	for rows.Next() {
		var l domain.UpdateLog
		if err := rows.Scan(&l.ID, &l.Class, &l.Status, &l.Message, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
