package schema

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kcmvp/txreport/store"
	"github.com/rs/zerolog"
)

// Initializer rebuilds a registered datasource: it deletes the backing file,
// creates the catalogue tables and runs the datasource scripts.
type Initializer struct {
	name    string
	logger  zerolog.Logger
	pattern string
}

type Option func(*Initializer)

func WithLogger(l zerolog.Logger) Option {
	return func(i *Initializer) { i.logger = l }
}

// Only restricts Create to tables matching a glob pattern, e.g. "Dim*".
func Only(pattern string) Option {
	return func(i *Initializer) { i.pattern = pattern }
}

// NewInitializer targets the datasource registered under name ("" is the default).
func NewInitializer(name string, opts ...Option) *Initializer {
	i := &Initializer{name: name, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Bootstrap resets the datasource and returns the registry's open handle.
// Any DDL or script error is returned as-is and the half-built store is closed.
func (i *Initializer) Bootstrap(ctx context.Context) (store.DB, error) {
	ds, err := store.Lookup(i.name)
	if err != nil {
		return nil, err
	}
	db, err := store.Reset(i.name)
	if err != nil {
		return nil, err
	}
	i.logger.Info().Str("file", ds.File()).Msg("store recreated")
	if err := i.Create(ctx, db); err != nil {
		_ = store.CloseDataSource(i.name)
		return nil, err
	}
	if err := i.RunScripts(ctx, db, ds.Scripts...); err != nil {
		_ = store.CloseDataSource(i.name)
		return nil, err
	}
	return db, nil
}

// Create issues one CREATE TABLE per catalogue table, each in its own transaction.
func (i *Initializer) Create(ctx context.Context, db store.DB) error {
	tables := Match(i.pattern)
	if len(tables) == 0 {
		return fmt.Errorf("%w: no table matches %q", ErrUnknownTable, i.pattern)
	}
	for _, t := range tables {
		start := time.Now()
		err := store.WithTx(ctx, db, func(q store.Querier) error {
			_, err := q.ExecContext(ctx, t.DDL)
			return err
		})
		if err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
		i.logger.Info().Str("table", t.Name).Dur("dur", time.Since(start)).Msg("table created")
	}
	return nil
}

// RunScripts executes SQL script files in order, one transaction each.
func (i *Initializer) RunScripts(ctx context.Context, db store.DB, paths ...string) error {
	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read script %s: %w", path, err)
		}
		err = store.WithTx(ctx, db, func(q store.Querier) error {
			_, err := q.ExecContext(ctx, string(b))
			return err
		})
		if err != nil {
			return fmt.Errorf("run script %s: %w", path, err)
		}
		i.logger.Info().Str("script", path).Msg("script applied")
	}
	return nil
}
