package report

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kcmvp/txreport/schema"
	"github.com/kcmvp/txreport/store"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// StateAmount is one row of the amount-by-state report. Customers without a
// State are reported under "".
type StateAmount struct {
	State  string          `db:"State"`
	Amount decimal.Decimal `db:"Amount"`
}

type amountRow struct {
	State  string              `db:"State"`
	Amount decimal.NullDecimal `db:"Amount"`
}

// AmountByState sums Transactions.Amount per Customer.State for month m,
// materializes the result into the reporting table (replacing any previous run)
// and returns it ordered by State.
//
// Amounts are added as decimals, so 0.1 + 0.2 is 0.3. The reporting table keeps
// them as decimal text for the same reason.
func (r *Runner) AmountByState(ctx context.Context, m Month) ([]StateAmount, error) {
	start := time.Now()
	tx, cust := schema.Transactions, schema.Customers
	sel := store.From[schema.Transaction](
		store.As(store.Coalesce(cust.State, "''"), "State"),
		store.Col(tx.Amount),
	).
		Join(store.Join(tx.CustomerID, cust.CustomerID)).
		Where(r.inMonth(m))

	var out []StateAmount
	err := store.WithTx(ctx, r.db, func(q store.Querier) error {
		rows, err := store.Select[amountRow](ctx, q, sel)
		if err != nil {
			return err
		}
		out = sumByState(rows)
		if _, err := q.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", r.table)); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (State TEXT, Amount TEXT)", r.table)); err != nil {
			return err
		}
		if len(out) == 0 {
			return nil
		}
		ins := store.Insert(r.table, "State", "Amount")
		for _, a := range out {
			ins.Values(a.State, a.Amount.String())
		}
		_, err = store.Exec(ctx, q, ins)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("amount by state %s: %w", m, err)
	}
	r.done("amount", start, len(out))
	return out, nil
}

// sumByState adds up the non-NULL amounts per state. A state whose amounts are
// all NULL still gets a zero row.
func sumByState(rows []amountRow) []StateAmount {
	out := lo.MapToSlice(lo.GroupBy(rows, func(a amountRow) string { return a.State }),
		func(state string, rs []amountRow) StateAmount {
			sum := lo.Reduce(rs, func(acc decimal.Decimal, a amountRow, _ int) decimal.Decimal {
				return lo.Ternary(a.Amount.Valid, acc.Add(a.Amount.Decimal), acc)
			}, decimal.Zero)
			return StateAmount{State: state, Amount: sum}
		})
	slices.SortFunc(out, func(a, b StateAmount) int { return strings.Compare(a.State, b.State) })
	return out
}
