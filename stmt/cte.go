package stmt

import (
	"github.com/sqlzgo/sqlz/expr"
	"github.com/sqlzgo/sqlz/schema"
)

// CTE is a named sub-select, attached to an outer statement with
// SelectStmt.With and referenceable through the table handle returned
// by Table.
type CTE struct {
	name      string
	sel       *SelectStmt
	cols      []string
	recursive bool
}

// NewCTE names a select draft as a common table expression.
func NewCTE(name string, sel *SelectStmt) *CTE {
	return &CTE{name: name, sel: sel}
}

// Columns sets explicit column names for the CTE, overriding the names
// inferred from the sub-select's projection.
func (c *CTE) Columns(names ...string) *CTE {
	out := *c
	out.cols = append([]string(nil), names...)
	return &out
}

// Recursive marks the CTE recursive, allowing it to reference itself.
// The compiler rejects self-reference on non-recursive CTEs.
func (c *CTE) Recursive() *CTE {
	out := *c
	out.recursive = true
	return &out
}

// Name returns the CTE's name.
func (c *CTE) Name() string { return c.name }

// Select returns the underlying sub-select.
func (c *CTE) Select() *SelectStmt { return c.sel }

// ColumnNames returns the explicit column list, empty when inferred.
func (c *CTE) ColumnNames() []string { return c.cols }

// IsRecursive reports whether the CTE was marked recursive.
func (c *CTE) IsRecursive() bool { return c.recursive }

// Table returns a handle the outer statement can select from and
// reference columns through, as if the CTE were a registered table.
// Column names come from the explicit column list when given, otherwise
// from the sub-select's projection.
func (c *CTE) Table() *schema.Table {
	names := c.cols
	if len(names) == 0 && c.sel != nil {
		names = projectionNames(c.sel)
	}
	return schema.Ref(c.name, names...)
}

// C returns a column handle into the CTE's result set, shorthand for
// expr.C(c.Table(), name).
func (c *CTE) C(name string) expr.Expr {
	return expr.C(c.Table(), name)
}

// projectionNames derives output column names from a projection list:
// alias names where present, bare column names otherwise. Unnameable
// items (bare literals, function calls without aliases) are skipped.
func projectionNames(s *SelectStmt) []string {
	var names []string
	for _, item := range s.items {
		switch n := item.Node().(type) {
		case *expr.Alias:
			names = append(names, n.Name)
		case *expr.ColumnRef:
			names = append(names, n.Col.Name)
		}
	}
	return names
}
