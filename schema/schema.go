// Package schema holds table and column metadata for registered row types.
//
// A row type is registered once (see Register) and yields a *Table whose
// columns appear in struct declaration order. Tables are immutable after
// registration; everything downstream (expressions, statement drafts, the
// compiler) only reads from them.
package schema

import (
	"fmt"
	"strings"
)

// Type is the declared SQL value type of a column.
type Type int

const (
	TypeText Type = iota
	TypeInteger
	TypeReal
	TypeBoolean
	TypeBlob
	TypeTimestamp
)

// String returns the SQL spelling of the type.
func (t Type) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeReal:
		return "REAL"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeBlob:
		return "BLOB"
	case TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// ForeignKey describes a reference from one column to a column of another
// registered table.
type ForeignKey struct {
	Table    string
	Column   string
	OnDelete string
	OnUpdate string
}

// Column is the metadata for a single column of a registered table.
type Column struct {
	Name          string
	GoField       string
	Type          Type
	PrimaryKey    bool
	AutoIncrement bool
	Unique        bool
	NotNull       bool
	HasDefault    bool
	Default       any
	Check         string
	ForeignKey    *ForeignKey
}

// Table is an ordered collection of column definitions for one table.
// A Table may carry an alias (see Alias), in which case it shares its
// columns with the table it aliases.
type Table struct {
	Name    string
	Alias   string
	Columns []*Column

	byName map[string]*Column
}

// NewTable builds a table from explicit column definitions. Used by the
// DSL front end and by tests; Register is the usual entry point.
func NewTable(name string, cols []*Column) (*Table, error) {
	t := &Table{Name: name, Columns: cols, byName: make(map[string]*Column, len(cols))}
	autoPK := 0
	for _, c := range cols {
		if _, dup := t.byName[c.Name]; dup {
			return nil, &Error{Table: name, Msg: fmt.Sprintf("duplicate column %q", c.Name)}
		}
		t.byName[c.Name] = c
		if c.AutoIncrement {
			if !c.PrimaryKey {
				return nil, &Error{Table: name, Msg: fmt.Sprintf("column %q: AUTOINCREMENT requires PRIMARY KEY", c.Name)}
			}
			if c.Type != TypeInteger {
				return nil, &Error{Table: name, Msg: fmt.Sprintf("column %q: AUTOINCREMENT requires an INTEGER column", c.Name)}
			}
			autoPK++
		}
	}
	if autoPK > 1 {
		return nil, &Error{Table: name, Msg: "more than one AUTOINCREMENT primary key"}
	}
	return t, nil
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// PrimaryKey returns the primary-key columns in declaration order.
func (t *Table) PrimaryKey() []*Column {
	var pk []*Column
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c)
		}
	}
	return pk
}

// DisplayName is the name the table is referenced by in rendered SQL:
// its alias when aliased, its table name otherwise.
func (t *Table) DisplayName() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// Aliased reports whether the table handle carries an alias.
func (t *Table) Aliased() bool { return t.Alias != "" }

// Alias returns a handle to the same table under the given alias. The
// returned table shares column metadata with t.
func Alias(t *Table, alias string) *Table {
	return &Table{Name: t.Name, Alias: alias, Columns: t.Columns, byName: t.byName}
}

// Excluded returns the "excluded" pseudo-table used on the right-hand
// side of upsert assignments (INSERT ... ON CONFLICT DO UPDATE).
func Excluded(t *Table) *Table {
	return Alias(t, "excluded")
}

// Ref builds an unregistered table handle for a name that only exists
// inside a statement, such as a CTE. Columns are declared by name only;
// their types are unknown to the compiler, which is fine because CTE
// columns are never bound as parameters.
func Ref(name string, cols ...string) *Table {
	t := &Table{Name: name, byName: make(map[string]*Column, len(cols))}
	for _, c := range cols {
		if _, ok := t.byName[c]; ok {
			continue
		}
		col := &Column{Name: c, Type: TypeText}
		t.Columns = append(t.Columns, col)
		t.byName[c] = col
	}
	return t
}

// Error is returned for invalid declarations at registration time.
type Error struct {
	Table string
	Msg   string
}

func (e *Error) Error() string {
	if e.Table == "" {
		return "schema: " + e.Msg
	}
	return fmt.Sprintf("schema %s: %s", e.Table, e.Msg)
}

func columnNames(cols []*Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func joinNames(cols []*Column) string {
	return strings.Join(columnNames(cols), ", ")
}
