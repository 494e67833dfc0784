package schema

import (
	"context"
	"fmt"
	"time"

	"github.com/kcmvp/txreport/entity"
	"github.com/kcmvp/txreport/store"
	"github.com/samber/lo"
)

// dimDateBatch keeps each INSERT well under sqlite's bind variable limit.
const dimDateBatch = 250

// SeedDimDate inserts one DimDate row per calendar day in [from, to], both inclusive.
// Hour, Minute and Second take their column defaults.
func SeedDimDate(ctx context.Context, db store.DB, from, to time.Time) (int, error) {
	from = truncateDay(from)
	to = truncateDay(to)
	if to.Before(from) {
		return 0, fmt.Errorf("seed DimDate: %s is before %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	err := store.WithTx(ctx, db, func(q store.Querier) error {
		for _, chunk := range lo.Chunk(days, dimDateBatch) {
			stmt := store.Insert(entity.Table[DimDate](), entity.Names(Dates.Year, Dates.Month, Dates.Day)...)
			for _, d := range chunk {
				stmt.Values(d.Year(), int(d.Month()), d.Day())
			}
			if _, err := store.Exec(ctx, q, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed DimDate: %w", err)
	}
	return len(days), nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
