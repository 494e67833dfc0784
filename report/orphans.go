package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kcmvp/txreport/schema"
	"github.com/kcmvp/txreport/store"
)

// TypeID is a TransactionTypeID as SQLite stored it. The column has NUM
// affinity, so integers, reals and non-numeric text can all turn up.
type TypeID struct {
	Value any
}

// Scan implements sql.Scanner.
func (t *TypeID) Scan(src any) error {
	if b, ok := src.([]byte); ok {
		src = string(b)
	}
	t.Value = src
	return nil
}

// Int returns the id when it is an integer.
func (t TypeID) Int() (int64, bool) {
	v, ok := t.Value.(int64)
	return v, ok
}

func (t TypeID) String() string {
	switch v := t.Value.(type) {
	case nil:
		return "NULL"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// OrphanTransactionTypes returns the distinct TransactionTypeID values used by
// Transactions that have no row in DimTransactionType, in SQLite order: numbers
// ascending, then text.
func (r *Runner) OrphanTransactionTypes(ctx context.Context) ([]TypeID, error) {
	start := time.Now()
	tx, types := schema.Transactions, schema.TransactionTypes
	stmt := store.From[schema.Transaction](store.Col(tx.TransactionTypeID)).
		Distinct().
		Join(store.LeftJoin(tx.TransactionTypeID, types.TransactionTypeID)).
		Where(store.IsNull(types.TransactionTypeID)).
		OrderBy(tx.TransactionTypeID.Name())

	var ids []TypeID
	err := store.WithTx(ctx, r.db, func(q store.Querier) error {
		var err error
		ids, err = store.Select[TypeID](ctx, q, stmt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("orphan transaction types: %w", err)
	}
	r.done("orphans", start, len(ids))
	return ids, nil
}
