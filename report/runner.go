package report

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/kcmvp/txreport/entity"
	"github.com/kcmvp/txreport/schema"
	"github.com/kcmvp/txreport/store"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidDateColumn = errors.New("invalid date column")
	ErrInvalidTable      = errors.New("invalid reporting table")
)

// DefaultTable receives the amount-by-state result.
const DefaultTable = "ReportingTable"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Runner executes the reports against an initialized store. Each report runs in
// its own transaction.
type Runner struct {
	db      store.DB
	logger  zerolog.Logger
	dateCol entity.Column[schema.Transaction]
	table   string
}

type Option func(*Runner) error

// WithDateColumn selects the Transactions column used for month bucketing:
// "CreateDate" (default) or "TransactionDate".
func WithDateColumn(name string) Option {
	return func(r *Runner) error {
		switch name {
		case schema.Transactions.CreateDate.Name(), "":
			r.dateCol = schema.Transactions.CreateDate
		case schema.Transactions.TransactionDate.Name():
			r.dateCol = schema.Transactions.TransactionDate
		default:
			return fmt.Errorf("%w: %q", ErrInvalidDateColumn, name)
		}
		return nil
	}
}

// WithTable names the table the amount-by-state report is materialized into.
func WithTable(name string) Option {
	return func(r *Runner) error {
		if name == "" {
			name = DefaultTable
		}
		if !identifier.MatchString(name) {
			return fmt.Errorf("%w: %q", ErrInvalidTable, name)
		}
		if _, ok := schema.Lookup(name); ok {
			return fmt.Errorf("%w: %q is a catalogue table", ErrInvalidTable, name)
		}
		r.table = name
		return nil
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) error {
		r.logger = l
		return nil
	}
}

func NewRunner(db store.DB, opts ...Option) (*Runner, error) {
	r := &Runner{
		db:      db,
		logger:  zerolog.Nop(),
		dateCol: schema.Transactions.CreateDate,
		table:   DefaultTable,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// inMonth filters Transactions on the configured date column.
func (r *Runner) inMonth(m Month) store.Where {
	return store.Range(r.dateCol, m.Lower(), m.Upper())
}

func (r *Runner) done(op string, start time.Time, rows int) {
	r.logger.Info().Str("report", op).Int("rows", rows).Dur("dur", time.Since(start)).Msg("report finished")
}
