package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kcmvp/txreport/app"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/viper"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNoDataSource is returned when a datasource name is neither configured nor registered.
var ErrNoDataSource = errors.New("datasource not configured")

// Querier is the statement surface shared by DB and Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

// Tx is a transaction started by DB.BeginTx.
type Tx interface {
	Querier
	Commit() error
	Rollback() error
}

// DB is the database contract used by this module. It can be backed by *sqlx.DB
// or by a wrapper adding cross-cutting behaviour such as SQL logging.
type DB interface {
	Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
	PingContext(ctx context.Context) error
	Close() error
}

// stdDB adapts *sqlx.DB to the DB interface.
type stdDB struct{ *sqlx.DB }

func (d stdDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	tx, err := d.DB.BeginTxx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// sqlLog records one statement.
type sqlLog struct{ logger *zerolog.Logger }

func (l sqlLog) record(op string, start time.Time, err error, query string, args []any) {
	ev := l.logger.Debug()
	if err != nil {
		ev = l.logger.Warn().Err(err)
	}
	ev.Str("op", op).Dur("dur", time.Since(start)).Str("sql", query).Interface("args", args).Msg("sql")
}

// loggingDB is a thin wrapper around DB that logs SQL statements.
type loggingDB struct {
	sqlLog
	inner DB
}

func (d loggingDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := d.inner.ExecContext(ctx, query, args...)
	d.record("exec", start, err, query, args)
	return res, err
}

func (d loggingDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	start := time.Now()
	err := d.inner.SelectContext(ctx, dest, query, args...)
	d.record("select", start, err, query, args)
	return err
}

func (d loggingDB) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	start := time.Now()
	err := d.inner.GetContext(ctx, dest, query, args...)
	d.record("get", start, err, query, args)
	return err
}

func (d loggingDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	start := time.Now()
	tx, err := d.inner.BeginTx(ctx, opts)
	d.record("begin", start, err, "", nil)
	if err != nil {
		return nil, err
	}
	return loggingTx{sqlLog: d.sqlLog, inner: tx}, nil
}

func (d loggingDB) PingContext(ctx context.Context) error {
	start := time.Now()
	err := d.inner.PingContext(ctx)
	d.record("ping", start, err, "", nil)
	return err
}

func (d loggingDB) Close() error {
	start := time.Now()
	err := d.inner.Close()
	d.record("close", start, err, "", nil)
	return err
}

type loggingTx struct {
	sqlLog
	inner Tx
}

func (t loggingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := t.inner.ExecContext(ctx, query, args...)
	t.record("tx.exec", start, err, query, args)
	return res, err
}

func (t loggingTx) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	start := time.Now()
	err := t.inner.SelectContext(ctx, dest, query, args...)
	t.record("tx.select", start, err, query, args)
	return err
}

func (t loggingTx) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	start := time.Now()
	err := t.inner.GetContext(ctx, dest, query, args...)
	t.record("tx.get", start, err, query, args)
	return err
}

func (t loggingTx) Commit() error {
	start := time.Now()
	err := t.inner.Commit()
	t.record("commit", start, err, "", nil)
	return err
}

func (t loggingTx) Rollback() error {
	start := time.Now()
	err := t.inner.Rollback()
	if !errors.Is(err, sql.ErrTxDone) {
		t.record("rollback", start, err, "", nil)
	}
	return err
}

// WithSQLLogger wraps db with a SQL logger if logger is not nil.
func WithSQLLogger(db DB, logger *zerolog.Logger) DB {
	if logger == nil {
		return db
	}
	return loggingDB{sqlLog: sqlLog{logger: logger}, inner: db}
}

const (
	UserKey     = "${user}"
	PasswordKey = "${password}"
	HostKey     = "${host}"
	DBKey       = "${db}"

	// DefaultDSName is the datasource used when no name is given.
	DefaultDSName = "default"
)

// DataSource is one entry of the `datasource` section in application.yml.
type DataSource struct {
	DB       string   `mapstructure:"db" yaml:"db"`
	Driver   string   `mapstructure:"driver" yaml:"driver"`
	User     string   `mapstructure:"user" yaml:"user"`
	Password string   `mapstructure:"password" yaml:"password"`
	Host     string   `mapstructure:"host" yaml:"host"`
	URL      string   `mapstructure:"url" yaml:"url"`
	Scripts  []string `mapstructure:"scripts" yaml:"scripts"`
}

// DSNChecked returns the final connection string for sql.Open and validates placeholder usage.
// When URL is blank the DB path is used as-is, which is what sqlite3 expects.
func (ds DataSource) DSNChecked() (string, error) {
	if strings.TrimSpace(ds.URL) == "" {
		if strings.TrimSpace(ds.DB) == "" {
			return "", fmt.Errorf("dsn requires url or db")
		}
		return ds.DB, nil
	}
	if strings.Contains(ds.URL, UserKey) && ds.User == "" {
		return "", fmt.Errorf("dsn requires user")
	}
	if strings.Contains(ds.URL, PasswordKey) && ds.Password == "" {
		return "", fmt.Errorf("dsn requires password")
	}
	if strings.Contains(ds.URL, HostKey) && ds.Host == "" {
		return "", fmt.Errorf("dsn requires host")
	}
	if strings.Contains(ds.URL, DBKey) && ds.DB == "" {
		return "", fmt.Errorf("dsn requires db")
	}
	return ds.DSN(), nil
}

// DSN performs placeholder substitution on URL.
func (ds DataSource) DSN() string {
	return strings.NewReplacer(
		UserKey, ds.User,
		PasswordKey, ds.Password,
		HostKey, ds.Host,
		DBKey, ds.DB,
	).Replace(ds.URL)
}

// File returns the backing file of a sqlite datasource, or "" for in-memory stores.
func (ds DataSource) File() string {
	f := strings.TrimPrefix(ds.DB, "file:")
	if f == "" || strings.HasPrefix(f, ":memory:") || strings.Contains(ds.DB, "mode=memory") {
		return ""
	}
	if i := strings.IndexByte(f, '?'); i >= 0 {
		f = f[:i]
	}
	return f
}

// relativeTo anchors a relative store file and relative script paths at dir,
// the directory of the config file that declared them.
func (ds DataSource) relativeTo(dir string) DataSource {
	if dir == "" {
		return ds
	}
	if f := ds.File(); f != "" && !filepath.IsAbs(f) {
		ds.DB = strings.Replace(ds.DB, f, filepath.Join(dir, f), 1)
	}
	ds.Scripts = lo.Map(ds.Scripts, func(p string, _ int) string {
		return lo.Ternary(filepath.IsAbs(p), p, filepath.Join(dir, p))
	})
	return ds
}

// Open opens and pings a datasource. The pool is capped at one connection:
// every statement in this module runs on a single sqlite connection.
func Open(ds DataSource) (DB, error) {
	if ds.Driver == "" {
		return nil, fmt.Errorf("driver is required")
	}
	dsn, err := ds.DSNChecked()
	if err != nil {
		return nil, fmt.Errorf("invalid dsn: %w", err)
	}
	raw, err := sqlx.Open(ds.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", ds.Driver, err)
	}
	raw.SetMaxOpenConns(1)
	if err := raw.PingContext(context.Background()); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping %s: %w", ds.Driver, err)
	}
	return WithSQLLogger(stdDB{DB: raw}, sqlLogger), nil
}

// Recreate deletes the backing file of ds, if any, and opens an empty store.
func Recreate(ds DataSource) (DB, error) {
	if f := ds.File(); f != "" {
		for _, p := range []string{f, f + "-journal", f + "-wal", f + "-shm"} {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("remove %s: %w", p, err)
			}
		}
	}
	return Open(ds)
}

var (
	// dsConfigs holds datasource definitions read from config.
	dsConfigs = map[string]DataSource{}
	// dsRegistry holds opened datasources.
	dsRegistry = map[string]DB{}
	dsMu       sync.RWMutex

	initOnce sync.Once
	initErr  error

	// sqlLogger, when set, enables SQL logging for all datasources opened after this call.
	sqlLogger *zerolog.Logger
)

// SetSQLLogger enables SQL logging for datasources opened after this call.
func SetSQLLogger(l *zerolog.Logger) {
	sqlLogger = l
}

func initDataSources() error {
	initOnce.Do(func() {
		res := app.Config()
		if res.IsError() {
			initErr = res.Error()
			return
		}
		cfg := res.MustGet()
		dir := ""
		if used := cfg.ConfigFileUsed(); used != "" {
			dir = filepath.Dir(used)
		}
		for name, val := range cfg.GetStringMap("datasource") {
			m, ok := val.(map[string]any)
			if !ok {
				initErr = fmt.Errorf("datasource %s: expected a map", name)
				return
			}
			child := viper.New()
			if err := child.MergeConfigMap(m); err != nil {
				initErr = fmt.Errorf("merge datasource %s: %w", name, err)
				return
			}
			var ds DataSource
			if err := child.Unmarshal(&ds); err != nil {
				initErr = fmt.Errorf("unmarshal datasource %s: %w", name, err)
				return
			}
			dsMu.Lock()
			if _, exists := dsConfigs[name]; !exists {
				dsConfigs[name] = ds.relativeTo(dir)
			}
			dsMu.Unlock()
		}
	})
	return initErr
}

// Configure registers a datasource definition under name without opening it.
func Configure(name string, ds DataSource) {
	if name == "" {
		name = DefaultDSName
	}
	dsMu.Lock()
	defer dsMu.Unlock()
	dsConfigs[name] = ds
}

// Lookup returns the datasource definition registered under name.
func Lookup(name string) (DataSource, error) {
	if err := initDataSources(); err != nil {
		return DataSource{}, err
	}
	if name == "" {
		name = DefaultDSName
	}
	dsMu.RLock()
	defer dsMu.RUnlock()
	ds, ok := dsConfigs[name]
	if !ok {
		return DataSource{}, fmt.Errorf("%w: %q", ErrNoDataSource, name)
	}
	return ds, nil
}

// GetDS returns the named datasource, opening it on first use.
func GetDS(name string) (DB, error) {
	if name == "" {
		name = DefaultDSName
	}
	dsMu.RLock()
	db, ok := dsRegistry[name]
	dsMu.RUnlock()
	if ok {
		return db, nil
	}
	ds, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	db, err = Open(ds)
	if err != nil {
		return nil, fmt.Errorf("datasource %q: %w", name, err)
	}
	dsMu.Lock()
	defer dsMu.Unlock()
	if existing, ok := dsRegistry[name]; ok {
		_ = db.Close()
		return existing, nil
	}
	dsRegistry[name] = db
	return db, nil
}

// Reset closes the named datasource, deletes its backing file and reopens it empty.
func Reset(name string) (DB, error) {
	if name == "" {
		name = DefaultDSName
	}
	ds, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if err := CloseDataSource(name); err != nil {
		return nil, fmt.Errorf("close datasource %q: %w", name, err)
	}
	db, err := Recreate(ds)
	if err != nil {
		return nil, fmt.Errorf("recreate datasource %q: %w", name, err)
	}
	dsMu.Lock()
	defer dsMu.Unlock()
	dsRegistry[name] = db
	return db, nil
}

// CloseDataSource closes and removes the named datasource from the registry.
// Its definition stays configured.
func CloseDataSource(name string) error {
	if name == "" {
		name = DefaultDSName
	}
	dsMu.Lock()
	defer dsMu.Unlock()
	if db, ok := dsRegistry[name]; ok {
		delete(dsRegistry, name)
		return db.Close()
	}
	return nil
}

// CloseAllDataSources closes every opened datasource and returns the first error.
func CloseAllDataSources() error {
	dsMu.Lock()
	defer dsMu.Unlock()
	var firstErr error
	for name, db := range dsRegistry {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(dsRegistry, name)
	}
	return firstErr
}
