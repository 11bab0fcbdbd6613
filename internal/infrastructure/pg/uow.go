package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txKey struct{}

func txFromCtx(ctx context.Context) pgx.Tx {
	if v := ctx.Value(txKey{}); v != nil {
		if tx, ok := v.(pgx.Tx); ok {
			return tx
		}
	}
	return nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so repositories
// transparently join the transaction placed in ctx by UnitOfWork.Do.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (d *DB) q(ctx context.Context) querier {
	if tx := txFromCtx(ctx); tx != nil {
		return tx
	}
	return d.Pool
}

type UnitOfWork struct {
	Pool *pgxpool.Pool
}

// Do runs fn inside a transaction. When ctx already carries a transaction, a
// nested scope is opened instead: pgx maps Begin on a live tx to a SAVEPOINT,
// so a failing fn rolls back only its own statements and the outer transaction
// stays usable.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if outer := txFromCtx(ctx); outer != nil {
		nested, err := outer.Begin(ctx)
		if err != nil {
			return err
		}
		nestedCtx := context.WithValue(ctx, txKey{}, nested)
		if err := fn(nestedCtx); err != nil {
			_ = nested.Rollback(ctx)
			return err
		}
		return nested.Commit(ctx)
	}
	tx, err := u.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
