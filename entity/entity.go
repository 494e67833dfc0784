package entity

import "fmt"

// Entity defines the contract for database-aware models.
type Entity interface {
	Table() string
}

// JoinFieldProvider is the non-generic view of a column. Columns from different
// entities can be mixed through it in joins and group-by lists.
// The unexported method ensures that only this package can implement it.
type JoinFieldProvider interface {
	// Name is the bare column name.
	Name() string
	// QualifiedName is "table.column".
	QualifiedName() string
	seal()
}

// Column is a column bound to entity E. Two columns of different entities are
// distinct types even when their names match.
type Column[E Entity] interface {
	JoinFieldProvider
	owner() E
}

type column[E Entity] struct {
	name  string
	table string
}

func (c column[E]) seal() {}

func (c column[E]) owner() E {
	var e E
	return e
}

func (c column[E]) Name() string { return c.name }

func (c column[E]) QualifiedName() string {
	return fmt.Sprintf("%s.%s", c.table, c.name)
}

// Field returns a Column of entity E. The table name is taken from E's zero value.
func Field[E Entity](name string) Column[E] {
	var e E
	return column[E]{name: name, table: e.Table()}
}

// Table returns the table name of entity E.
func Table[E Entity]() string {
	var e E
	return e.Table()
}

// Names returns the bare names of cols in order.
func Names(cols ...JoinFieldProvider) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name()
	}
	return out
}
