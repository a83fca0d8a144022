package sqlgen

import (
	"github.com/sqlzgo/sqlz/expr"
	"github.com/sqlzgo/sqlz/stmt"
)

func (c *compiler) insertStmt(i *stmt.InsertStmt) error {
	t := i.Table()
	cols := i.InsertColumns()
	rows := i.Rows()
	if len(cols) == 0 {
		return &stmt.BuildError{Op: "Compile", Msg: "INSERT has no columns"}
	}
	if len(rows) == 0 {
		return &stmt.BuildError{Op: "Compile", Msg: "INSERT has no rows"}
	}
	for _, row := range rows {
		if len(row) != len(cols) {
			return &stmt.BuildError{Op: "Compile", Msg: "INSERT row width does not match its column list"}
		}
	}

	// The inserted table and the conflict pseudo-table are the only
	// names value expressions may reference.
	sc := newScope(nil)
	sc.add(t.DisplayName())
	sc.add("excluded")

	c.write("INSERT ")
	if p := i.Policy(); p != "" {
		c.write(p, " ")
	}
	c.write("INTO ", t.Name, " (")
	for n, col := range cols {
		if n > 0 {
			c.write(", ")
		}
		c.write(col.Name)
	}
	c.write(") VALUES ")
	for r, row := range rows {
		if r > 0 {
			c.write(", ")
		}
		c.write("(")
		for n, v := range row {
			if n > 0 {
				c.write(", ")
			}
			if err := c.expr(v.Node(), sc); err != nil {
				return err
			}
		}
		c.write(")")
	}
	return c.conflictClause(i.ConflictClause(), sc)
}

func (c *compiler) conflictClause(cc *stmt.Conflict, sc *scope) error {
	if cc == nil {
		return nil
	}
	if !cc.DoNothing && len(cc.Updates) == 0 {
		return &stmt.BuildError{Op: "Compile", Msg: "ON CONFLICT without DoNothing or DoUpdate"}
	}
	c.write(" ON CONFLICT")
	if len(cc.Targets) > 0 {
		c.write(" (")
		for n, col := range cc.Targets {
			if n > 0 {
				c.write(", ")
			}
			c.write(col.Name)
		}
		c.write(")")
	}
	if cc.DoNothing {
		c.write(" DO NOTHING")
		return nil
	}
	c.write(" DO UPDATE SET ")
	return c.assignments(cc.Updates, sc)
}

// assignments renders `col = expr` pairs. Target columns render bare;
// only the right-hand side goes through the expression renderer.
func (c *compiler) assignments(assigns []stmt.Assignment, sc *scope) error {
	for n, a := range assigns {
		if n > 0 {
			c.write(", ")
		}
		ref, ok := a.Col.Node().(*expr.ColumnRef)
		if !ok {
			return &stmt.BuildError{Op: "Compile", Msg: "assignment target is not a column"}
		}
		c.write(ref.Col.Name, " = ")
		if err := c.expr(a.Val.Node(), sc); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) updateStmt(u *stmt.UpdateStmt) error {
	t := u.Table()
	assigns := u.Assignments()
	if len(assigns) == 0 {
		return &stmt.BuildError{Op: "Compile", Msg: "UPDATE has no assignments"}
	}
	sc := newScope(nil)
	sc.add(t.DisplayName())

	c.write("UPDATE ", t.Name, " SET ")
	if err := c.assignments(assigns, sc); err != nil {
		return err
	}
	if err := c.wherePreds(u.WherePreds(), sc); err != nil {
		return err
	}
	if len(u.WherePreds()) == 0 {
		c.warnings = append(c.warnings, "UPDATE "+t.Name+" has no WHERE clause and touches every row")
	}
	return nil
}

func (c *compiler) deleteStmt(d *stmt.DeleteStmt) error {
	t := d.Table()
	sc := newScope(nil)
	sc.add(t.DisplayName())

	c.write("DELETE FROM ", t.Name)
	if err := c.wherePreds(d.WherePreds(), sc); err != nil {
		return err
	}
	if len(d.WherePreds()) == 0 {
		c.warnings = append(c.warnings, "DELETE FROM "+t.Name+" has no WHERE clause and touches every row")
	}
	return nil
}

func (c *compiler) wherePreds(preds []expr.Expr, sc *scope) error {
	if len(preds) == 0 {
		return nil
	}
	c.write(" WHERE ")
	sc.inWhere = true
	defer func() { sc.inWhere = false }()
	for n, p := range preds {
		if n > 0 {
			c.write(" AND ")
		}
		if err := c.expr(p.Node(), sc); err != nil {
			return err
		}
	}
	return nil
}
