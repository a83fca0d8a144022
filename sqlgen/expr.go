package sqlgen

import (
	"strconv"

	"github.com/sqlzgo/sqlz/expr"
	"github.com/sqlzgo/sqlz/stmt"
)

// comparisons are the operators that must not chain: the operand of a
// comparison cannot itself be a comparison.
var comparisons = map[string]bool{
	"=": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

func (c *compiler) expr(n expr.Node, sc *scope) error {
	switch x := n.(type) {
	case nil:
		return &stmt.BuildError{Op: "Compile", Msg: "empty expression"}
	case *expr.Literal:
		c.sb.WriteByte('?')
		c.args = append(c.args, x.Value)
		return nil
	case *expr.ColumnRef:
		return c.column(x, sc)
	case *expr.Binary:
		return c.binary(x, sc)
	case *expr.Unary:
		return c.unary(x, sc)
	case *expr.Between:
		c.sb.WriteByte('(')
		if err := c.expr(x.Subject, sc); err != nil {
			return err
		}
		if x.Not {
			c.write(" NOT BETWEEN ")
		} else {
			c.write(" BETWEEN ")
		}
		if err := c.expr(x.Low, sc); err != nil {
			return err
		}
		c.write(" AND ")
		if err := c.expr(x.High, sc); err != nil {
			return err
		}
		c.sb.WriteByte(')')
		return nil
	case *expr.Tuple:
		if len(x.Items) == 0 {
			return &stmt.BuildError{Op: "Compile", Msg: "empty value list"}
		}
		c.sb.WriteByte('(')
		for i, item := range x.Items {
			if i > 0 {
				c.write(", ")
			}
			if err := c.expr(item, sc); err != nil {
				return err
			}
		}
		c.sb.WriteByte(')')
		return nil
	case *expr.Func:
		if expr.RequiresWindow(x.Name) {
			return &stmt.BuildError{Op: "Compile", Msg: x.Name + " requires an OVER clause"}
		}
		return c.call(x.Name, x.Args, sc)
	case *expr.Aggregate:
		return c.aggregate(x, sc)
	case *expr.WindowFunc:
		return c.window(x, sc)
	case *expr.Raw:
		c.write(x.SQL)
		return nil
	case *expr.Alias:
		// Outside a projection an alias stands for its name alone.
		c.write(x.Name)
		return nil
	case *expr.Ordering:
		if err := c.expr(x.E, sc); err != nil {
			return err
		}
		if x.Desc {
			c.write(" DESC")
		} else {
			c.write(" ASC")
		}
		return nil
	case *stmt.SelectStmt:
		c.sb.WriteByte('(')
		if err := c.selectStmt(x, sc); err != nil {
			return err
		}
		c.sb.WriteByte(')')
		return nil
	default:
		return &stmt.BuildError{Op: "Compile", Msg: "unsupported expression node"}
	}
}

func (c *compiler) column(ref *expr.ColumnRef, sc *scope) error {
	name := ref.Table.DisplayName()
	if !sc.resolves(name) {
		return &stmt.BuildError{
			Op:  "Compile",
			Msg: "column " + name + "." + ref.Col.Name + " references a table that is not part of the statement",
		}
	}
	// Qualify in multi-table statements, for aliased tables, and for
	// correlated references into an enclosing statement.
	if sc.qualify || ref.Table.Aliased() || !sc.tables[name] {
		c.write(name, ".", ref.Col.Name)
	} else {
		c.write(ref.Col.Name)
	}
	return nil
}

func (c *compiler) binary(b *expr.Binary, sc *scope) error {
	if comparisons[b.Op] {
		if l, ok := b.Left.(*expr.Binary); ok && comparisons[l.Op] {
			return chainedComparisonErr()
		}
		if r, ok := b.Right.(*expr.Binary); ok && comparisons[r.Op] {
			return chainedComparisonErr()
		}
	}
	c.sb.WriteByte('(')
	if err := c.expr(b.Left, sc); err != nil {
		return err
	}
	c.write(" ", b.Op, " ")
	if err := c.expr(b.Right, sc); err != nil {
		return err
	}
	c.sb.WriteByte(')')
	return nil
}

func chainedComparisonErr() error {
	return &stmt.BuildError{
		Op:  "Compile",
		Msg: "chained comparison; combine explicit comparisons with And",
	}
}

func (c *compiler) unary(u *expr.Unary, sc *scope) error {
	switch u.Op {
	case "IS NULL", "IS NOT NULL":
		c.sb.WriteByte('(')
		if err := c.expr(u.Operand, sc); err != nil {
			return err
		}
		c.write(" ", u.Op, ")")
	case "EXISTS", "NOT EXISTS":
		c.write(u.Op, " ")
		if err := c.expr(u.Operand, sc); err != nil {
			return err
		}
	default: // NOT, unary minus
		c.sb.WriteByte('(')
		c.write(u.Op)
		if u.Op != "-" {
			c.sb.WriteByte(' ')
		}
		if err := c.expr(u.Operand, sc); err != nil {
			return err
		}
		c.sb.WriteByte(')')
	}
	return nil
}

func (c *compiler) call(name string, args []expr.Node, sc *scope) error {
	c.write(name, "(")
	for i, a := range args {
		if i > 0 {
			c.write(", ")
		}
		if err := c.expr(a, sc); err != nil {
			return err
		}
	}
	c.sb.WriteByte(')')
	return nil
}

func (c *compiler) aggregate(a *expr.Aggregate, sc *scope) error {
	if sc.whereContext() {
		return &stmt.BuildError{Op: "Compile", Msg: a.Name + " is not allowed in WHERE; use HAVING"}
	}
	c.write(a.Name, "(")
	if a.Arg == nil {
		c.sb.WriteByte('*')
	} else {
		if a.Distinct {
			c.write("DISTINCT ")
		}
		if err := c.expr(a.Arg, sc); err != nil {
			return err
		}
	}
	c.sb.WriteByte(')')
	return nil
}

func (c *compiler) window(w *expr.WindowFunc, sc *scope) error {
	if sc.whereContext() {
		return &stmt.BuildError{Op: "Compile", Msg: "window function is not allowed in WHERE"}
	}
	switch fn := w.Fn.(type) {
	case *expr.Func:
		if err := c.call(fn.Name, fn.Args, sc); err != nil {
			return err
		}
	case *expr.Aggregate:
		if err := c.aggregate(fn, sc); err != nil {
			return err
		}
	default:
		return &stmt.BuildError{Op: "Compile", Msg: "OVER applies to function and aggregate calls only"}
	}
	c.write(" OVER (")
	if err := c.windowSpec(w.Spec, sc); err != nil {
		return err
	}
	c.sb.WriteByte(')')
	return nil
}

func (c *compiler) windowSpec(w *expr.Window, sc *scope) error {
	if w == nil {
		return nil
	}
	wrote := false
	if len(w.Partitions) > 0 {
		c.write("PARTITION BY ")
		for i, p := range w.Partitions {
			if i > 0 {
				c.write(", ")
			}
			if err := c.expr(p, sc); err != nil {
				return err
			}
		}
		wrote = true
	}
	if len(w.Orderings) > 0 {
		if wrote {
			c.sb.WriteByte(' ')
		}
		c.write("ORDER BY ")
		for i, o := range w.Orderings {
			if i > 0 {
				c.write(", ")
			}
			if err := c.orderTerm(o, sc); err != nil {
				return err
			}
		}
		wrote = true
	}
	if f := w.FrameSpec; f != nil {
		if wrote {
			c.sb.WriteByte(' ')
		}
		c.write(f.Unit, " BETWEEN ", boundSQL(f.Start), " AND ", boundSQL(f.End))
	}
	return nil
}

func boundSQL(b expr.Bound) string {
	switch b.Kind {
	case "PRECEDING", "FOLLOWING":
		return strconv.Itoa(b.Offset) + " " + b.Kind
	default:
		return b.Kind
	}
}

// orderTerm renders an ORDER BY entry: plain expressions order
// ascending with no direction keyword.
func (c *compiler) orderTerm(n expr.Node, sc *scope) error {
	if ord, ok := n.(*expr.Ordering); ok {
		if err := c.expr(ord.E, sc); err != nil {
			return err
		}
		if ord.Desc {
			c.write(" DESC")
		} else {
			c.write(" ASC")
		}
		return nil
	}
	return c.expr(n, sc)
}

// projItem renders a projection entry; only here does an alias expand
// to `expr AS name`.
func (c *compiler) projItem(n expr.Node, sc *scope) error {
	if a, ok := n.(*expr.Alias); ok {
		if err := c.expr(a.E, sc); err != nil {
			return err
		}
		c.write(" AS ", a.Name)
		return nil
	}
	return c.expr(n, sc)
}

// walk visits every node of an expression tree in depth-first order.
// The visitor returns false to stop descending below a node. Select
// drafts are visited but never entered; callers that need to cross the
// subquery boundary recurse themselves.
func walk(n expr.Node, visit func(expr.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	switch x := n.(type) {
	case *expr.Binary:
		walk(x.Left, visit)
		walk(x.Right, visit)
	case *expr.Unary:
		walk(x.Operand, visit)
	case *expr.Between:
		walk(x.Subject, visit)
		walk(x.Low, visit)
		walk(x.High, visit)
	case *expr.Tuple:
		for _, it := range x.Items {
			walk(it, visit)
		}
	case *expr.Func:
		for _, a := range x.Args {
			walk(a, visit)
		}
	case *expr.Aggregate:
		walk(x.Arg, visit)
	case *expr.WindowFunc:
		walk(x.Fn, visit)
		if x.Spec != nil {
			for _, p := range x.Spec.Partitions {
				walk(p, visit)
			}
			for _, o := range x.Spec.Orderings {
				walk(o, visit)
			}
		}
	case *expr.Alias:
		walk(x.E, visit)
	case *expr.Ordering:
		walk(x.E, visit)
	}
}
