package report

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/kcmvp/txreport/schema"
	"github.com/kcmvp/txreport/store"
	"github.com/samber/lo"
)

// DefaultWindow is the number of months in an activity window.
const DefaultWindow = 18

// CustomerActivity is the transaction count of one customer in one month.
type CustomerActivity struct {
	State        string `db:"State"`
	CustomerID   int64  `db:"CustomerID"`
	Transactions int64  `db:"Transactions"`
}

// StateActivity rolls CustomerActivity rows up to the state.
type StateActivity struct {
	State        string
	Customers    int
	Transactions int64
}

// MonthActivity is the result set of one month.
type MonthActivity struct {
	Month     Month
	Customers []CustomerActivity
	States    []StateActivity
}

// ActivityWindow runs CustomerActivity over the n months ending with ref's month.
func (r *Runner) ActivityWindow(ctx context.Context, ref time.Time, n int) ([]MonthActivity, error) {
	if n <= 0 {
		return nil, fmt.Errorf("activity window: month count must be positive, got %d", n)
	}
	return r.CustomerActivity(ctx, Window(ref, n))
}

// CustomerActivity returns one result set per month, in the order given. Rows are
// unique per (State, CustomerID) and ordered by State then CustomerID. All months
// are read in a single transaction.
func (r *Runner) CustomerActivity(ctx context.Context, months []Month) ([]MonthActivity, error) {
	start := time.Now()
	tx, cust := schema.Transactions, schema.Customers
	state := store.Coalesce(cust.State, "''")
	out := make([]MonthActivity, 0, len(months))
	err := store.WithTx(ctx, r.db, func(q store.Querier) error {
		for _, m := range months {
			stmt := store.From[schema.Customer](
				store.As(state, "State"),
				store.Col(cust.CustomerID),
				store.As(fmt.Sprintf("COUNT(%s)", tx.TransactionID.QualifiedName()), "Transactions"),
			).
				Join(store.Join(cust.CustomerID, tx.CustomerID)).
				Where(r.inMonth(m)).
				GroupBy(state, cust.CustomerID.QualifiedName()).
				OrderBy("State", cust.CustomerID.Name())
			rows, err := store.Select[CustomerActivity](ctx, q, stmt)
			if err != nil {
				return fmt.Errorf("month %s: %w", m, err)
			}
			out = append(out, MonthActivity{Month: m, Customers: rows, States: rollUp(rows)})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("customer activity: %w", err)
	}
	r.done("activity", start, len(out))
	return out, nil
}

func rollUp(rows []CustomerActivity) []StateActivity {
	byState := lo.GroupBy(rows, func(a CustomerActivity) string { return a.State })
	states := lo.Keys(byState)
	slices.Sort(states)
	return lo.Map(states, func(state string, _ int) StateActivity {
		group := byState[state]
		return StateActivity{
			State:        state,
			Customers:    len(lo.UniqBy(group, func(a CustomerActivity) int64 { return a.CustomerID })),
			Transactions: lo.SumBy(group, func(a CustomerActivity) int64 { return a.Transactions }),
		}
	})
}
