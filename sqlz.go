// Package sqlz builds SQL statements from typed expressions over
// registered row schemas.
//
// Register a row type once, then compose statements from column
// expressions; nothing touches a database until the compiled SQL and
// parameters are handed to an execution layer:
//
//	type Person struct {
//		Name  string `sqlz:"primary"`
//		Age   int64
//		Email string
//	}
//
//	person := sqlz.MustRegister(Person{})
//	q := sqlz.Select(person).Where(sqlz.C(person, "age").Gt(25))
//	compiled, err := sqlz.Compile(q)
//	// compiled.SQL:  SELECT name, age, email FROM Person WHERE (age > ?)
//	// compiled.Args: [25]
//
// The subpackages carry the machinery: schema holds table metadata,
// expr the expression trees, stmt the statement drafts, sqlgen the
// compiler and db the execution layer. This package re-exports the
// entry points so everyday use needs a single import.
package sqlz

import (
	"github.com/sqlzgo/sqlz/expr"
	"github.com/sqlzgo/sqlz/schema"
	"github.com/sqlzgo/sqlz/sqlgen"
	"github.com/sqlzgo/sqlz/stmt"
)

// Register registers a row struct and returns its table.
func Register(v any) (*schema.Table, error) { return schema.Register(v) }

// MustRegister is Register that panics on a declaration error.
func MustRegister(v any) *schema.Table { return schema.MustRegister(v) }

// Lookup finds a registered table by name.
func Lookup(name string) (*schema.Table, bool) { return schema.Lookup(name) }

// Alias returns a handle to the same table under an alias, for
// self-joins.
func Alias(t *schema.Table, alias string) *schema.Table { return schema.Alias(t, alias) }

// Excluded is the conflict pseudo-table for upsert assignments.
func Excluded(t *schema.Table) *schema.Table { return schema.Excluded(t) }

// CreateTable renders the CREATE TABLE statement for a table.
func CreateTable(t *schema.Table) string { return schema.CreateTable(t) }

// C references a column of a table.
func C(t *schema.Table, name string) expr.Expr { return expr.C(t, name) }

// V binds a Go value as a literal parameter.
func V(v any) expr.Expr { return expr.Value(v) }

// Raw inlines a SQL fragment verbatim.
func Raw(sql string) expr.Expr { return expr.RawSQL(sql) }

// And combines predicates with AND.
func And(preds ...expr.Expr) expr.Expr { return expr.And(preds...) }

// Or combines predicates with OR.
func Or(preds ...expr.Expr) expr.Expr { return expr.Or(preds...) }

// Not negates a predicate.
func Not(p expr.Expr) expr.Expr { return expr.Not(p) }

// Exists builds an EXISTS subquery predicate.
func Exists(sub *stmt.SelectStmt) expr.Expr { return expr.Exists(sub) }

// NotExists builds a NOT EXISTS subquery predicate.
func NotExists(sub *stmt.SelectStmt) expr.Expr { return expr.NotExists(sub) }

// Count builds COUNT(*) or COUNT(arg).
func Count(args ...any) expr.Expr { return expr.Count(args...) }

// Sum builds SUM(v).
func Sum(v any) expr.Expr { return expr.Sum(v) }

// Avg builds AVG(v).
func Avg(v any) expr.Expr { return expr.Avg(v) }

// Min builds MIN(v).
func Min(v any) expr.Expr { return expr.Min(v) }

// Max builds MAX(v).
func Max(v any) expr.Expr { return expr.Max(v) }

// Select starts a SELECT draft; table arguments project all their
// columns.
func Select(items ...any) *stmt.SelectStmt { return stmt.Select(items...) }

// InsertInto starts an INSERT draft for a table.
func InsertInto(t *schema.Table) *stmt.InsertStmt { return stmt.InsertInto(t) }

// Update starts an UPDATE draft with the given assignments.
func Update(t *schema.Table, assigns ...stmt.Assignment) *stmt.UpdateStmt {
	return stmt.Update(t, assigns...)
}

// DeleteFrom starts a DELETE draft for a table.
func DeleteFrom(t *schema.Table) *stmt.DeleteStmt { return stmt.DeleteFrom(t) }

// Assign pairs a column with its new value for UPDATE and upsert SET
// lists.
func Assign(col expr.Expr, v any) stmt.Assignment { return stmt.Assign(col, v) }

// With names a select as a common table expression.
func With(name string, sel *stmt.SelectStmt) *stmt.CTE { return stmt.NewCTE(name, sel) }

// Compile renders a draft into SQL text and ordered parameters.
func Compile(d stmt.Draft) (*sqlgen.Statement, error) { return sqlgen.Compile(d) }

// MustCompile is Compile that panics on error.
func MustCompile(d stmt.Draft) *sqlgen.Statement { return sqlgen.MustCompile(d) }
