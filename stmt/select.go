package stmt

import (
	"github.com/sqlzgo/sqlz/expr"
	"github.com/sqlzgo/sqlz/schema"
)

// JoinKind selects the join operator.
type JoinKind string

const (
	Inner JoinKind = "INNER"
	Left  JoinKind = "LEFT"
	Right JoinKind = "RIGHT"
	Full  JoinKind = "FULL"
	Cross JoinKind = "CROSS"
)

// Join is one entry of a select's ordered join list.
type Join struct {
	Kind  JoinKind
	Table *schema.Table
	On    expr.Expr
}

// Compound is a set operation chained after the base select.
type Compound struct {
	Op  string // UNION, UNION ALL, EXCEPT, INTERSECT
	Sel *SelectStmt
}

// SelectStmt is a SELECT draft. The zero value is not useful; build one
// with Select.
type SelectStmt struct {
	items     []expr.Expr
	from      *schema.Table
	distinct  bool
	joins     []Join
	where     []expr.Expr
	groupBy   []expr.Expr
	having    []expr.Expr
	orderBy   []expr.Expr
	limit     *int
	offset    *int
	ctes      []*CTE
	compounds []Compound
	err       error
}

// ExprNode lets a select draft stand as a subquery operand inside
// expressions.
func (s *SelectStmt) ExprNode() {}

// Select starts a SELECT draft. A *schema.Table argument projects all
// of the table's columns in declaration order; expression arguments are
// projected in argument order; any other value is bound as a literal.
// The first table encountered becomes the FROM table unless From is
// called.
func Select(items ...any) *SelectStmt {
	s := &SelectStmt{}
	for _, item := range items {
		switch x := item.(type) {
		case *schema.Table:
			s.items = append(s.items, expr.Cols(x)...)
			if s.from == nil {
				s.from = x
			}
		case expr.Expr:
			s.err = keepErr(s.err, wrapOp("Select", x.Err()))
			s.items = append(s.items, x)
		default:
			w := expr.Wrap(item)
			s.err = keepErr(s.err, wrapOp("Select", w.Err()))
			s.items = append(s.items, w)
		}
	}
	if s.from == nil {
		for _, it := range s.items {
			if t := firstTableOf(it.Node()); t != nil {
				s.from = t
				break
			}
		}
	}
	return s
}

func (s *SelectStmt) clone() *SelectStmt {
	c := *s
	c.items = append([]expr.Expr(nil), s.items...)
	c.joins = append([]Join(nil), s.joins...)
	c.where = append([]expr.Expr(nil), s.where...)
	c.groupBy = append([]expr.Expr(nil), s.groupBy...)
	c.having = append([]expr.Expr(nil), s.having...)
	c.orderBy = append([]expr.Expr(nil), s.orderBy...)
	c.ctes = append([]*CTE(nil), s.ctes...)
	c.compounds = append([]Compound(nil), s.compounds...)
	return &c
}

// From overrides the inferred FROM table.
func (s *SelectStmt) From(t *schema.Table) *SelectStmt {
	c := s.clone()
	c.from = t
	return c
}

// Distinct marks the projection DISTINCT.
func (s *SelectStmt) Distinct() *SelectStmt {
	c := s.clone()
	c.distinct = true
	return c
}

// Where adds predicates; all predicates, across repeated calls, are
// AND-combined.
func (s *SelectStmt) Where(preds ...expr.Expr) *SelectStmt {
	c := s.clone()
	for _, p := range preds {
		c.err = keepErr(c.err, wrapOp("Where", p.Err()))
		c.where = append(c.where, p)
	}
	return c
}

// Join appends to the ordered join list. The ON predicate must tie the
// joined table to a table already in the statement; the compiler
// rejects the draft otherwise. Cross joins take a nil ON predicate.
func (s *SelectStmt) Join(t *schema.Table, on expr.Expr, kind JoinKind) *SelectStmt {
	c := s.clone()
	c.err = keepErr(c.err, wrapOp("Join", on.Err()))
	if kind == "" {
		kind = Inner
	}
	if kind == Cross && on.Valid() {
		c.err = keepErr(c.err, Errf("Join", "cross join takes no ON predicate"))
	}
	if kind != Cross && !on.Valid() {
		c.err = keepErr(c.err, Errf("Join", "%s join requires an ON predicate", kind))
	}
	c.joins = append(c.joins, Join{Kind: kind, Table: t, On: on})
	return c
}

// GroupBy sets grouping terms; repeated calls accumulate.
func (s *SelectStmt) GroupBy(cols ...expr.Expr) *SelectStmt {
	c := s.clone()
	for _, g := range cols {
		c.err = keepErr(c.err, wrapOp("GroupBy", g.Err()))
		c.groupBy = append(c.groupBy, g)
	}
	return c
}

// Having adds HAVING predicates, AND-combined like Where.
func (s *SelectStmt) Having(preds ...expr.Expr) *SelectStmt {
	c := s.clone()
	for _, p := range preds {
		c.err = keepErr(c.err, wrapOp("Having", p.Err()))
		c.having = append(c.having, p)
	}
	return c
}

// OrderBy appends ordering terms. Plain expressions order ascending;
// wrap with Desc for descending.
func (s *SelectStmt) OrderBy(terms ...expr.Expr) *SelectStmt {
	c := s.clone()
	for _, t := range terms {
		c.err = keepErr(c.err, wrapOp("OrderBy", t.Err()))
		c.orderBy = append(c.orderBy, t)
	}
	return c
}

// Limit sets the row limit. The last call wins; any offset set with
// Offset is kept.
func (s *SelectStmt) Limit(n int) *SelectStmt {
	c := s.clone()
	if n < 0 {
		c.err = keepErr(c.err, Errf("Limit", "negative limit %d", n))
		return c
	}
	c.limit = &n
	return c
}

// Offset sets the row offset; requires a limit to be rendered.
func (s *SelectStmt) Offset(n int) *SelectStmt {
	c := s.clone()
	if n < 0 {
		c.err = keepErr(c.err, Errf("Offset", "negative offset %d", n))
		return c
	}
	c.offset = &n
	return c
}

// With attaches common table expressions, in declaration order.
func (s *SelectStmt) With(ctes ...*CTE) *SelectStmt {
	c := s.clone()
	c.ctes = append(c.ctes, ctes...)
	return c
}

// Union chains `UNION other`.
func (s *SelectStmt) Union(other *SelectStmt) *SelectStmt { return s.compound("UNION", other) }

// UnionAll chains `UNION ALL other`.
func (s *SelectStmt) UnionAll(other *SelectStmt) *SelectStmt { return s.compound("UNION ALL", other) }

// Except chains `EXCEPT other`.
func (s *SelectStmt) Except(other *SelectStmt) *SelectStmt { return s.compound("EXCEPT", other) }

// Intersect chains `INTERSECT other`.
func (s *SelectStmt) Intersect(other *SelectStmt) *SelectStmt { return s.compound("INTERSECT", other) }

func (s *SelectStmt) compound(op string, other *SelectStmt) *SelectStmt {
	c := s.clone()
	if other == nil {
		c.err = keepErr(c.err, Errf(op, "nil operand"))
		return c
	}
	c.err = keepErr(c.err, other.err)
	c.compounds = append(c.compounds, Compound{Op: op, Sel: other})
	return c
}

// Err returns the first builder error recorded on the draft.
func (s *SelectStmt) Err() error { return s.err }

// Accessors used by the compiler.

// Items returns the projection list.
func (s *SelectStmt) Items() []expr.Expr { return s.items }

// FromTable returns the FROM table, nil when none could be inferred.
func (s *SelectStmt) FromTable() *schema.Table { return s.from }

// IsDistinct reports whether the projection is DISTINCT.
func (s *SelectStmt) IsDistinct() bool { return s.distinct }

// Joins returns the ordered join list.
func (s *SelectStmt) Joins() []Join { return s.joins }

// WherePreds returns the accumulated WHERE predicates.
func (s *SelectStmt) WherePreds() []expr.Expr { return s.where }

// Groupings returns the GROUP BY terms.
func (s *SelectStmt) Groupings() []expr.Expr { return s.groupBy }

// HavingPreds returns the accumulated HAVING predicates.
func (s *SelectStmt) HavingPreds() []expr.Expr { return s.having }

// Orderings returns the ORDER BY terms.
func (s *SelectStmt) Orderings() []expr.Expr { return s.orderBy }

// LimitValue returns the limit, nil when unset.
func (s *SelectStmt) LimitValue() *int { return s.limit }

// OffsetValue returns the offset, nil when unset.
func (s *SelectStmt) OffsetValue() *int { return s.offset }

// CTEs returns the attached common table expressions.
func (s *SelectStmt) CTEs() []*CTE { return s.ctes }

// Compounds returns the chained set operations.
func (s *SelectStmt) Compounds() []Compound { return s.compounds }

// firstTableOf finds the first column reference in an expression tree
// and returns its table.
func firstTableOf(n expr.Node) *schema.Table {
	switch x := n.(type) {
	case *expr.ColumnRef:
		return x.Table
	case *expr.Alias:
		return firstTableOf(x.E)
	case *expr.Ordering:
		return firstTableOf(x.E)
	case *expr.Binary:
		if t := firstTableOf(x.Left); t != nil {
			return t
		}
		return firstTableOf(x.Right)
	case *expr.Unary:
		return firstTableOf(x.Operand)
	case *expr.Between:
		if t := firstTableOf(x.Subject); t != nil {
			return t
		}
		return nil
	case *expr.Func:
		for _, a := range x.Args {
			if t := firstTableOf(a); t != nil {
				return t
			}
		}
		return nil
	case *expr.Aggregate:
		if x.Arg != nil {
			return firstTableOf(x.Arg)
		}
		return nil
	case *expr.WindowFunc:
		return firstTableOf(x.Fn)
	default:
		return nil
	}
}
