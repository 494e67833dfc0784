package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kcmvp/txreport/schema"
	"github.com/kcmvp/txreport/store"
	"github.com/samber/lo"
)

// MaxZip is the largest valid 5-digit ZIP code.
const MaxZip = 99999

const zipBatch = 500

// ValidZip reports whether s is a ZIP code: after trimming blanks, only ASCII
// digits whose value is at most 99999. Leading zeros are significant and kept,
// so "00501" is valid. Signs, decimals and letters are not.
func ValidZip(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	for _, c := range t {
		if c < '0' || c > '9' {
			return false
		}
	}
	v, err := strconv.ParseUint(t, 10, 64)
	if err != nil {
		return false
	}
	return v <= MaxZip
}

type zipRow struct {
	CustomerID int64  `db:"CustomerID"`
	Zip        string `db:"Zip"`
}

// NormalizeZipCodes sets Customer.Zip to NULL wherever it is not a valid ZIP code
// and returns the number of rows changed. Valid values are left untouched.
func (r *Runner) NormalizeZipCodes(ctx context.Context) (int64, error) {
	start := time.Now()
	cust := schema.Customers
	var changed int64
	err := store.WithTx(ctx, r.db, func(q store.Querier) error {
		rows, err := store.Select[zipRow](ctx, q,
			store.From[schema.Customer](store.Col(cust.CustomerID), store.Col(cust.Zip)).Where(store.NotNull(cust.Zip)))
		if err != nil {
			return err
		}
		invalid := lo.FilterMap(rows, func(z zipRow, _ int) (any, bool) {
			return z.CustomerID, !ValidZip(z.Zip)
		})
		for _, ids := range lo.Chunk(invalid, zipBatch) {
			n, err := store.Exec(ctx, q, store.Update[schema.Customer](store.Set(cust.Zip, nil)).Where(store.In(cust.CustomerID, ids...)))
			if err != nil {
				return err
			}
			changed += n
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("normalize zip codes: %w", err)
	}
	r.done("zip", start, int(changed))
	return changed, nil
}
