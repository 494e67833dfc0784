package internal

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/kcmvp/txreport/app"
	"github.com/kcmvp/txreport/report"
	"github.com/kcmvp/txreport/schema"
	"github.com/kcmvp/txreport/store"
	"github.com/samber/lo"
)

// DataSource is the datasource name every command works against.
var DataSource = store.DefaultDSName

// Setup attaches a run-scoped logger to ctx and enables SQL logging when configured.
func Setup(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	settings := app.Log()
	logger := app.NewLogger(settings.Level).With().
		Str("run", uuid.NewString()).
		Str("datasource", DataSource).
		Logger()
	if settings.SQL {
		sqlLogger := logger.With().Str("component", "sql").Logger()
		store.SetSQLLogger(&sqlLogger)
	}
	return app.WithLogger(ctx, logger)
}

// Bootstrap deletes and recreates the store, creating the tables matching pattern.
func Bootstrap(ctx context.Context, pattern string) error {
	_, err := schema.NewInitializer(DataSource, schema.WithLogger(app.LoggerFrom(ctx)), schema.Only(pattern)).Bootstrap(ctx)
	return err
}

// Runner opens the datasource and builds a report runner from the `report` settings.
func Runner(ctx context.Context) (*report.Runner, error) {
	db, err := store.GetDS(DataSource)
	if err != nil {
		return nil, err
	}
	s := app.Report()
	return report.NewRunner(db,
		report.WithDateColumn(s.DateColumn),
		report.WithTable(s.Table),
		report.WithLogger(app.LoggerFrom(ctx)),
	)
}

// Reference resolves the activity reference date: flag, then config, then today.
func Reference(flag string) (time.Time, error) {
	if flag != "" {
		t, err := time.Parse(time.DateOnly, flag)
		if err != nil {
			return time.Time{}, fmt.Errorf("reference %q: want YYYY-MM-DD: %w", flag, err)
		}
		return t, nil
	}
	ref, err := app.Report().ReferenceDate()
	if err != nil {
		return time.Time{}, err
	}
	return ref.OrElse(time.Now().UTC()), nil
}

var header = color.New(color.FgCyan, color.Bold)

// Table writes rows as aligned columns under a highlighted header.
func Table(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := header.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, r := range rows {
		cells := lo.Map(r, func(c string, _ int) string { return lo.Ternary(c == "", "-", c) })
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Done prints a success line.
func Done(w io.Writer, format string, args ...any) {
	_, _ = color.New(color.FgGreen).Fprintf(w, format+"\n", args...)
}
