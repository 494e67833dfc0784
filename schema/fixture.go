package schema

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kcmvp/txreport/app"
	"github.com/kcmvp/txreport/store"
	"github.com/tidwall/gjson"
)

const auditTimeLayout = "2006-01-02 15:04:05"

// Fixture loads JSON documents of the form {"Customer": [{...}], "Transactions": [...]}
// into the catalogue tables. Missing CreateUser/CreateDate audit fields are filled in.
type Fixture struct {
	user string
	now  func() time.Time
}

type FixtureOption func(*Fixture)

// WithAuditUser sets the CreateUser written when a row has none.
func WithAuditUser(user string) FixtureOption {
	return func(f *Fixture) { f.user = user }
}

// WithClock sets the source of CreateDate for rows that have none.
func WithClock(now func() time.Time) FixtureOption {
	return func(f *Fixture) { f.now = now }
}

func NewFixture(opts ...FixtureOption) *Fixture {
	f := &Fixture{user: app.DefaultAuditUser, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Load inserts every row of data in one transaction and returns the row count per table.
// Tables are loaded in catalogue order; unknown tables or columns abort the load.
func (f *Fixture) Load(ctx context.Context, db store.DB, data []byte) (map[string]int, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("fixture is not valid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("fixture must be a JSON object keyed by table")
	}
	var unknown error
	doc.ForEach(func(key, _ gjson.Result) bool {
		if _, ok := Lookup(key.String()); !ok {
			unknown = fmt.Errorf("%w: %s", ErrUnknownTable, key.String())
			return false
		}
		return true
	})
	if unknown != nil {
		return nil, unknown
	}

	counts := map[string]int{}
	err := store.WithTx(ctx, db, func(q store.Querier) error {
		for _, t := range Tables {
			rows := doc.Get(t.Name)
			if !rows.Exists() {
				continue
			}
			if !rows.IsArray() {
				return fmt.Errorf("%s: expected an array of rows", t.Name)
			}
			for i, row := range rows.Array() {
				stmt, err := f.insert(t, row)
				if err != nil {
					return fmt.Errorf("%s[%d]: %w", t.Name, i, err)
				}
				if _, err := store.Exec(ctx, q, stmt); err != nil {
					return fmt.Errorf("%s[%d]: %w", t.Name, i, err)
				}
				counts[t.Name]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load fixture: %w", err)
	}
	return counts, nil
}

func (f *Fixture) insert(t Table, row gjson.Result) (*store.InsertStmt, error) {
	if !row.IsObject() {
		return nil, fmt.Errorf("expected an object")
	}
	var (
		cols []string
		vals []any
		err  error
	)
	row.ForEach(func(key, value gjson.Result) bool {
		col := key.String()
		if !t.Has(col) {
			err = fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.Name, col)
			return false
		}
		cols = append(cols, col)
		vals = append(vals, nativeValue(value))
		return true
	})
	if err != nil {
		return nil, err
	}
	if t.Has("CreateUser") && !row.Get("CreateUser").Exists() {
		cols = append(cols, "CreateUser")
		vals = append(vals, f.user)
	}
	if t.Has("CreateDate") && !row.Get("CreateDate").Exists() {
		cols = append(cols, "CreateDate")
		vals = append(vals, f.now().UTC().Format(auditTimeLayout))
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("empty row")
	}
	return store.Insert(t.Name, cols...).Values(vals...), nil
}

// nativeValue converts a gjson value to a driver value. Integral numbers become
// int64 so NUM columns store integers.
func nativeValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.Number:
		if math.Mod(v.Num, 1.0) == 0 && math.Abs(v.Num) < 1<<53 {
			return v.Int()
		}
		return v.Num
	case gjson.String:
		return v.Str
	case gjson.True, gjson.False:
		return v.Bool()
	default:
		return v.Raw
	}
}
