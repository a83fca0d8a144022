package stmt

import (
	"github.com/sqlzgo/sqlz/expr"
	"github.com/sqlzgo/sqlz/schema"
)

// DeleteStmt is a DELETE draft.
type DeleteStmt struct {
	table *schema.Table
	where []expr.Expr
	err   error
}

// DeleteFrom starts a DELETE draft.
func DeleteFrom(t *schema.Table) *DeleteStmt {
	return &DeleteStmt{table: t}
}

func (d *DeleteStmt) clone() *DeleteStmt {
	c := *d
	c.where = append([]expr.Expr(nil), d.where...)
	return &c
}

// Where adds predicates, AND-combined across calls. A DELETE without
// WHERE compiles but carries a warning.
func (d *DeleteStmt) Where(preds ...expr.Expr) *DeleteStmt {
	c := d.clone()
	for _, p := range preds {
		c.err = keepErr(c.err, wrapOp("Where", p.Err()))
		c.where = append(c.where, p)
	}
	return c
}

// Err returns the first builder error recorded on the draft.
func (d *DeleteStmt) Err() error { return d.err }

// Table returns the target table.
func (d *DeleteStmt) Table() *schema.Table { return d.table }

// WherePreds returns the accumulated WHERE predicates.
func (d *DeleteStmt) WherePreds() []expr.Expr { return d.where }
