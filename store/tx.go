package store

import (
	"context"
	"fmt"
)

// WithTx runs fn inside a transaction. The transaction commits when fn returns nil
// and rolls back when fn returns an error or panics.
func WithTx(ctx context.Context, db DB, fn func(q Querier) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit tx: %w", cerr)
		}
	}()
	return fn(tx)
}

// Statement is anything that renders to SQL plus bind arguments.
type Statement interface {
	Build() (string, []any, error)
}

// Select runs stmt and scans every row into a T.
func Select[T any](ctx context.Context, q Querier, stmt Statement) ([]T, error) {
	query, args, err := stmt.Build()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	if err := q.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Exec runs stmt and returns the number of affected rows.
func Exec(ctx context.Context, q Querier, stmt Statement) (int64, error) {
	query, args, err := stmt.Build()
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
