package stmt

import (
	"reflect"

	"github.com/sqlzgo/sqlz/expr"
	"github.com/sqlzgo/sqlz/schema"
)

// Conflict is an ON CONFLICT clause of an insert.
type Conflict struct {
	Targets   []*schema.Column
	DoNothing bool
	Updates   []Assignment
}

// InsertStmt is an INSERT draft.
type InsertStmt struct {
	table    *schema.Table
	policy   string // "", "OR REPLACE", "OR IGNORE"
	columns  []*schema.Column
	rows     [][]expr.Expr
	conflict *Conflict
	err      error
}

// InsertInto starts an INSERT draft. The column list defaults to the
// table's columns in declaration order, minus auto-increment columns;
// Columns overrides it.
func InsertInto(t *schema.Table) *InsertStmt {
	i := &InsertStmt{table: t}
	for _, c := range t.Columns {
		if !c.AutoIncrement {
			i.columns = append(i.columns, c)
		}
	}
	return i
}

func (i *InsertStmt) clone() *InsertStmt {
	c := *i
	c.columns = append([]*schema.Column(nil), i.columns...)
	c.rows = append([][]expr.Expr(nil), i.rows...)
	return &c
}

// OrReplace sets the INSERT OR REPLACE conflict policy.
func (i *InsertStmt) OrReplace() *InsertStmt {
	c := i.clone()
	c.policy = "OR REPLACE"
	return c
}

// OrIgnore sets the INSERT OR IGNORE conflict policy.
func (i *InsertStmt) OrIgnore() *InsertStmt {
	c := i.clone()
	c.policy = "OR IGNORE"
	return c
}

// Columns overrides the inserted column list.
func (i *InsertStmt) Columns(names ...string) *InsertStmt {
	c := i.clone()
	cols := make([]*schema.Column, 0, len(names))
	for _, n := range names {
		col, ok := i.table.Column(n)
		if !ok {
			c.err = keepErr(c.err, Errf("Columns", "table %s has no column %q", i.table.Name, n))
			return c
		}
		cols = append(cols, col)
	}
	for _, row := range c.rows {
		if len(row) != len(cols) {
			c.err = keepErr(c.err, Errf("Columns", "row of %d values does not fit %d columns", len(row), len(cols)))
			return c
		}
	}
	c.columns = cols
	return c
}

// Values appends one row of values, one per inserted column.
func (i *InsertStmt) Values(vals ...any) *InsertStmt {
	c := i.clone()
	if len(vals) != len(c.columns) {
		c.err = keepErr(c.err, Errf("Values", "got %d values for %d columns", len(vals), len(c.columns)))
		return c
	}
	row := make([]expr.Expr, len(vals))
	for idx, v := range vals {
		w := expr.Wrap(v)
		c.err = keepErr(c.err, wrapOp("Values", w.Err()))
		row[idx] = w
	}
	c.rows = append(c.rows, row)
	return c
}

// Records appends one row per struct value, pulling fields through the
// same mapping Register used. Values must be of the registered row
// type (or pointers to it).
func (i *InsertStmt) Records(vs ...any) *InsertStmt {
	c := i.clone()
	for _, v := range vs {
		rv := reflect.ValueOf(v)
		for rv.Kind() == reflect.Pointer {
			rv = rv.Elem()
		}
		if !rv.IsValid() || rv.Kind() != reflect.Struct || rv.Type().Name() != i.table.Name {
			c.err = keepErr(c.err, Errf("Records", "value %T is not a %s row", v, i.table.Name))
			return c
		}
		row := make([]expr.Expr, len(c.columns))
		for idx, col := range c.columns {
			fv := rv.FieldByName(col.GoField)
			if !fv.IsValid() {
				c.err = keepErr(c.err, Errf("Records", "%s has no field %s", i.table.Name, col.GoField))
				return c
			}
			w := expr.Wrap(fv.Interface())
			c.err = keepErr(c.err, wrapOp("Records", w.Err()))
			row[idx] = w
		}
		c.rows = append(c.rows, row)
	}
	return c
}

// OnConflict sets the conflict target columns; follow with DoNothing or
// DoUpdate. With no columns the clause renders a bare ON CONFLICT.
func (i *InsertStmt) OnConflict(cols ...expr.Expr) *InsertStmt {
	c := i.clone()
	conflict := &Conflict{}
	for _, e := range cols {
		ref, err := columnOf(e)
		if err != nil {
			c.err = keepErr(c.err, wrapOp("OnConflict", err))
			return c
		}
		conflict.Targets = append(conflict.Targets, ref.Col)
	}
	c.conflict = conflict
	return c
}

// DoNothing completes an ON CONFLICT clause with DO NOTHING.
func (i *InsertStmt) DoNothing() *InsertStmt {
	c := i.clone()
	if c.conflict == nil {
		c.err = keepErr(c.err, Errf("DoNothing", "DoNothing without OnConflict"))
		return c
	}
	cc := *c.conflict
	cc.DoNothing = true
	c.conflict = &cc
	return c
}

// DoUpdate completes an ON CONFLICT clause with DO UPDATE SET. Use
// schema.Excluded to reference the conflicting row's values.
func (i *InsertStmt) DoUpdate(assigns ...Assignment) *InsertStmt {
	c := i.clone()
	if c.conflict == nil {
		c.err = keepErr(c.err, Errf("DoUpdate", "DoUpdate without OnConflict"))
		return c
	}
	for _, a := range assigns {
		c.err = keepErr(c.err, wrapOp("DoUpdate", a.err()))
	}
	cc := *c.conflict
	cc.Updates = append(append([]Assignment(nil), cc.Updates...), assigns...)
	c.conflict = &cc
	return c
}

// Err returns the first builder error recorded on the draft.
func (i *InsertStmt) Err() error { return i.err }

// Table returns the target table.
func (i *InsertStmt) Table() *schema.Table { return i.table }

// Policy returns the OR REPLACE / OR IGNORE policy, empty by default.
func (i *InsertStmt) Policy() string { return i.policy }

// InsertColumns returns the effective column list.
func (i *InsertStmt) InsertColumns() []*schema.Column { return i.columns }

// Rows returns the accumulated value rows.
func (i *InsertStmt) Rows() [][]expr.Expr { return i.rows }

// ConflictClause returns the upsert clause, nil when absent.
func (i *InsertStmt) ConflictClause() *Conflict { return i.conflict }
