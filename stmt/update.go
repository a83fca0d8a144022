package stmt

import (
	"github.com/sqlzgo/sqlz/expr"
	"github.com/sqlzgo/sqlz/schema"
)

// UpdateStmt is an UPDATE draft.
type UpdateStmt struct {
	table   *schema.Table
	assigns []Assignment
	where   []expr.Expr
	err     error
}

// Update starts an UPDATE draft with initial SET assignments.
func Update(t *schema.Table, assigns ...Assignment) *UpdateStmt {
	u := &UpdateStmt{table: t}
	return u.Set(assigns...)
}

func (u *UpdateStmt) clone() *UpdateStmt {
	c := *u
	c.assigns = append([]Assignment(nil), u.assigns...)
	c.where = append([]expr.Expr(nil), u.where...)
	return &c
}

// Set appends SET assignments.
func (u *UpdateStmt) Set(assigns ...Assignment) *UpdateStmt {
	c := u.clone()
	for _, a := range assigns {
		c.err = keepErr(c.err, wrapOp("Set", a.err()))
		c.assigns = append(c.assigns, a)
	}
	return c
}

// Where adds predicates, AND-combined across calls. An UPDATE without
// WHERE compiles but carries a warning.
func (u *UpdateStmt) Where(preds ...expr.Expr) *UpdateStmt {
	c := u.clone()
	for _, p := range preds {
		c.err = keepErr(c.err, wrapOp("Where", p.Err()))
		c.where = append(c.where, p)
	}
	return c
}

// Err returns the first builder error recorded on the draft.
func (u *UpdateStmt) Err() error { return u.err }

// Table returns the target table.
func (u *UpdateStmt) Table() *schema.Table { return u.table }

// Assignments returns the SET list.
func (u *UpdateStmt) Assignments() []Assignment { return u.assigns }

// WherePreds returns the accumulated WHERE predicates.
func (u *UpdateStmt) WherePreds() []expr.Expr { return u.where }
