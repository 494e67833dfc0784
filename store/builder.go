package store

import (
	"fmt"
	"strings"

	"github.com/kcmvp/txreport/entity"
)

// -----------------------------
// WHERE
// -----------------------------

// Where is a query condition. Build returns the SQL clause and its arguments.
type Where interface {
	Build() (string, []any)
}

type whereFunc func() (string, []any)

func (f whereFunc) Build() (string, []any) { return f() }

// And combines conditions with AND, skipping nil and empty ones.
func And(wheres ...Where) Where {
	return combine(" AND ", wheres)
}

func combine(sep string, wheres []Where) Where {
	return whereFunc(func() (string, []any) {
		clauses := make([]string, 0, len(wheres))
		var allArgs []any
		for _, w := range wheres {
			if w == nil {
				continue
			}
			clause, args := w.Build()
			if clause == "" {
				continue
			}
			clauses = append(clauses, clause)
			allArgs = append(allArgs, args...)
		}
		if len(clauses) == 0 {
			return "", nil
		}
		return fmt.Sprintf("(%s)", strings.Join(clauses, sep)), allArgs
	})
}

func Gte(field entity.JoinFieldProvider, value any) Where { return op(field, ">=", value) }
func Lt(field entity.JoinFieldProvider, value any) Where  { return op(field, "<", value) }

// IsNull matches rows where field is NULL.
func IsNull(field entity.JoinFieldProvider) Where {
	return whereFunc(func() (string, []any) {
		return field.QualifiedName() + " IS NULL", nil
	})
}

// NotNull matches rows where field is not NULL.
func NotNull(field entity.JoinFieldProvider) Where {
	return whereFunc(func() (string, []any) {
		return field.QualifiedName() + " IS NOT NULL", nil
	})
}

// In creates an "IN (...)" condition. No values yields an always-false condition.
func In(field entity.JoinFieldProvider, values ...any) Where {
	if len(values) == 0 {
		return whereFunc(func() (string, []any) { return "1=0", nil })
	}
	clause := fmt.Sprintf("%s IN (%s)", field.QualifiedName(), placeholders(len(values)))
	return whereFunc(func() (string, []any) { return clause, values })
}

// Range matches from <= field < to.
func Range(field entity.JoinFieldProvider, from, to any) Where {
	return And(Gte(field, from), Lt(field, to))
}

func op(field entity.JoinFieldProvider, operator string, value any) Where {
	return whereFunc(func() (string, []any) {
		return fmt.Sprintf("%s %s ?", field.QualifiedName(), operator), []any{value}
	})
}

// placeholders returns a comma-separated list of n '?' placeholders.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// -----------------------------
// JOIN
// -----------------------------

// JoinClause is the non-generic form consumed by the SELECT builder.
type JoinClause interface {
	Clause() string
}

// Joint is a join between exactly two tables. E1 is the driving table, E2 the joined one.
type Joint[E1 entity.Entity, E2 entity.Entity] interface {
	JoinClause
	// And adds further column-pair predicates to the ON condition.
	And(joints ...Joint[E1, E2]) Joint[E1, E2]
}

type join[E1 entity.Entity, E2 entity.Entity] struct {
	keyword string
	table2  string
	onParts []string
}

func (j join[E1, E2]) Clause() string {
	return fmt.Sprintf("%s %s ON (%s)", j.keyword, j.table2, strings.Join(j.onParts, " AND "))
}

func (j join[E1, E2]) And(joints ...Joint[E1, E2]) Joint[E1, E2] {
	onParts := append([]string{}, j.onParts...)
	for _, jt := range joints {
		other, ok := jt.(join[E1, E2])
		if !ok {
			continue
		}
		onParts = append(onParts, other.onParts...)
	}
	return join[E1, E2]{keyword: j.keyword, table2: j.table2, onParts: onParts}
}

// Join creates an INNER JOIN on l = r.
func Join[E1 entity.Entity, E2 entity.Entity](l entity.Column[E1], r entity.Column[E2]) Joint[E1, E2] {
	return newJoin[E1, E2]("INNER JOIN", l, r)
}

// LeftJoin creates a LEFT JOIN on l = r.
func LeftJoin[E1 entity.Entity, E2 entity.Entity](l entity.Column[E1], r entity.Column[E2]) Joint[E1, E2] {
	return newJoin[E1, E2]("LEFT JOIN", l, r)
}

func newJoin[E1 entity.Entity, E2 entity.Entity](keyword string, l entity.Column[E1], r entity.Column[E2]) Joint[E1, E2] {
	pred := fmt.Sprintf("%s = %s", l.QualifiedName(), r.QualifiedName())
	return join[E1, E2]{keyword: keyword, table2: entity.Table[E2](), onParts: []string{pred}}
}

// -----------------------------
// SELECT
// -----------------------------

// SelectStmt is a single-table SELECT with optional joins, filter, grouping and ordering.
type SelectStmt struct {
	distinct bool
	cols     []string
	from     string
	joins    []JoinClause
	where    Where
	groupBy  []string
	orderBy  []string
}

// From starts a SELECT of cols from T's table. Columns are SQL expressions, see Col and As.
func From[T entity.Entity](cols ...string) *SelectStmt {
	return &SelectStmt{cols: cols, from: entity.Table[T]()}
}

// Col renders a column as its qualified name aliased to its bare name, which is
// what sqlx needs to map it onto a `db` tag.
func Col(c entity.JoinFieldProvider) string {
	return As(c.QualifiedName(), c.Name())
}

// As renders "expr AS alias".
func As(expr, alias string) string {
	return fmt.Sprintf("%s AS %s", expr, alias)
}

func (s *SelectStmt) Distinct() *SelectStmt {
	s.distinct = true
	return s
}

func (s *SelectStmt) Join(joins ...JoinClause) *SelectStmt {
	s.joins = append(s.joins, joins...)
	return s
}

func (s *SelectStmt) Where(w Where) *SelectStmt {
	s.where = w
	return s
}

// GroupBy appends GROUP BY expressions verbatim. Group on the same expression
// the projection renders, or coalesced values split into separate groups.
func (s *SelectStmt) GroupBy(exprs ...string) *SelectStmt {
	s.groupBy = append(s.groupBy, exprs...)
	return s
}

// Coalesce renders "COALESCE(col, fallback)" with fallback as a SQL literal.
func Coalesce(c entity.JoinFieldProvider, fallback string) string {
	return fmt.Sprintf("COALESCE(%s, %s)", c.QualifiedName(), fallback)
}

// OrderBy appends ORDER BY terms verbatim, e.g. "State" or "Amount DESC".
func (s *SelectStmt) OrderBy(terms ...string) *SelectStmt {
	s.orderBy = append(s.orderBy, terms...)
	return s
}

func (s *SelectStmt) Build() (string, []any, error) {
	if s.from == "" {
		return "", nil, fmt.Errorf("table is required")
	}
	if len(s.cols) == 0 {
		return "", nil, fmt.Errorf("select has no columns")
	}
	var b strings.Builder
	b.WriteString("SELECT ")
	if s.distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(strings.Join(s.cols, ", "))
	b.WriteString(" FROM ")
	b.WriteString(s.from)
	for _, j := range s.joins {
		b.WriteString(" ")
		b.WriteString(j.Clause())
	}
	var args []any
	if s.where != nil {
		clause, wargs := s.where.Build()
		if clause != "" {
			b.WriteString(" WHERE ")
			b.WriteString(clause)
			args = wargs
		}
	}
	if len(s.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(s.groupBy, ", "))
	}
	if len(s.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(s.orderBy, ", "))
	}
	return b.String(), args, nil
}

// -----------------------------
// INSERT / UPDATE
// -----------------------------

// InsertStmt is a multi-row INSERT into a single table.
type InsertStmt struct {
	table string
	cols  []string
	rows  [][]any
}

// Insert starts an INSERT into table with the given column list.
func Insert(table string, cols ...string) *InsertStmt {
	return &InsertStmt{table: table, cols: cols}
}

// Values appends one row. Its length must match the column list.
func (s *InsertStmt) Values(vals ...any) *InsertStmt {
	s.rows = append(s.rows, vals)
	return s
}

func (s *InsertStmt) Build() (string, []any, error) {
	if s.table == "" {
		return "", nil, fmt.Errorf("table is required")
	}
	if len(s.cols) == 0 {
		return "", nil, fmt.Errorf("no fields to insert")
	}
	if len(s.rows) == 0 {
		return "", nil, fmt.Errorf("no rows to insert")
	}
	row := "(" + placeholders(len(s.cols)) + ")"
	groups := make([]string, 0, len(s.rows))
	args := make([]any, 0, len(s.rows)*len(s.cols))
	for i, r := range s.rows {
		if len(r) != len(s.cols) {
			return "", nil, fmt.Errorf("row %d has %d values, want %d", i, len(r), len(s.cols))
		}
		groups = append(groups, row)
		args = append(args, r...)
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		s.table, strings.Join(s.cols, ", "), strings.Join(groups, ", "))
	return sql, args, nil
}

// Assignment is one "column = value" pair of an UPDATE.
type Assignment struct {
	Column entity.JoinFieldProvider
	Value  any
}

// Set pairs a column with its new value. A nil value writes NULL.
func Set(c entity.JoinFieldProvider, v any) Assignment {
	return Assignment{Column: c, Value: v}
}

// UpdateStmt is an UPDATE of T's table.
type UpdateStmt struct {
	table string
	sets  []Assignment
	where Where
}

// Update starts an UPDATE of T's table.
func Update[T entity.Entity](sets ...Assignment) *UpdateStmt {
	return &UpdateStmt{table: entity.Table[T](), sets: sets}
}

func (s *UpdateStmt) Where(w Where) *UpdateStmt {
	s.where = w
	return s
}

// Build renders the UPDATE. SET targets are unqualified; sqlite rejects "table.col" there.
// A WHERE clause is mandatory.
func (s *UpdateStmt) Build() (string, []any, error) {
	if len(s.sets) == 0 {
		return "", nil, fmt.Errorf("no fields to update")
	}
	if s.where == nil {
		return "", nil, fmt.Errorf("where is required")
	}
	clause, wargs := s.where.Build()
	if clause == "" {
		return "", nil, fmt.Errorf("where is required")
	}
	sets := make([]string, 0, len(s.sets))
	args := make([]any, 0, len(s.sets)+len(wargs))
	for _, a := range s.sets {
		sets = append(sets, a.Column.Name()+" = ?")
		args = append(args, a.Value)
	}
	args = append(args, wargs...)
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s", s.table, strings.Join(sets, ", "), clause), args, nil
}
