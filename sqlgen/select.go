package sqlgen

import (
	"strconv"

	"github.com/sqlzgo/sqlz/expr"
	"github.com/sqlzgo/sqlz/schema"
	"github.com/sqlzgo/sqlz/stmt"
)

func (c *compiler) selectStmt(s *stmt.SelectStmt, outer *scope) error {
	if err := s.Err(); err != nil {
		return err
	}
	if len(s.Items()) == 0 {
		return &stmt.BuildError{Op: "Compile", Msg: "empty projection"}
	}

	sc := newScope(outer)
	for _, cte := range s.CTEs() {
		sc.add(cte.Name())
	}
	if err := c.withClause(s.CTEs(), sc); err != nil {
		return err
	}

	// Introduce every source before rendering anything: projection
	// items may reference tables joined further down the chain.
	from := s.FromTable()
	if from == nil && len(s.Joins()) > 0 {
		return &stmt.BuildError{Op: "Compile", Msg: "join without a FROM table"}
	}
	if from != nil {
		sc.add(from.DisplayName())
	}
	for _, j := range s.Joins() {
		if err := validateJoin(j, sc); err != nil {
			return err
		}
		sc.add(j.Table.DisplayName())
	}
	sourceCount := len(s.Joins())
	if from != nil {
		sourceCount++
	}
	sc.qualify = sourceCount > 1

	c.write("SELECT ")
	if s.IsDistinct() {
		c.write("DISTINCT ")
	}
	for i, item := range s.Items() {
		if i > 0 {
			c.write(", ")
		}
		if err := c.projItem(item.Node(), sc); err != nil {
			return err
		}
	}

	if from != nil {
		c.write(" FROM ", tableRef(from))
	}

	for _, j := range s.Joins() {
		if j.Kind == stmt.Cross {
			c.write(" CROSS JOIN ", tableRef(j.Table))
			continue
		}
		c.write(" ", string(j.Kind), " JOIN ", tableRef(j.Table), " ON ")
		if err := c.expr(j.On.Node(), sc); err != nil {
			return err
		}
	}

	if preds := s.WherePreds(); len(preds) > 0 {
		c.write(" WHERE ")
		sc.inWhere = true
		for i, p := range preds {
			if i > 0 {
				c.write(" AND ")
			}
			if err := c.expr(p.Node(), sc); err != nil {
				return err
			}
		}
		sc.inWhere = false
	}

	if groups := s.Groupings(); len(groups) > 0 {
		c.write(" GROUP BY ")
		for i, g := range groups {
			if i > 0 {
				c.write(", ")
			}
			if err := c.expr(g.Node(), sc); err != nil {
				return err
			}
		}
	}

	if preds := s.HavingPreds(); len(preds) > 0 {
		c.write(" HAVING ")
		for i, p := range preds {
			if i > 0 {
				c.write(" AND ")
			}
			if err := c.expr(p.Node(), sc); err != nil {
				return err
			}
		}
	}

	for _, comp := range s.Compounds() {
		c.write(" ", comp.Op, " ")
		if err := c.selectStmt(comp.Sel, nil); err != nil {
			return err
		}
	}

	if terms := s.Orderings(); len(terms) > 0 {
		c.write(" ORDER BY ")
		for i, t := range terms {
			if i > 0 {
				c.write(", ")
			}
			if err := c.orderTerm(t.Node(), sc); err != nil {
				return err
			}
		}
	}

	limit, offset := s.LimitValue(), s.OffsetValue()
	if offset != nil && limit == nil {
		return &stmt.BuildError{Op: "Compile", Msg: "Offset without Limit"}
	}
	if limit != nil {
		c.write(" LIMIT ", strconv.Itoa(*limit))
		if offset != nil {
			c.write(" OFFSET ", strconv.Itoa(*offset))
		}
	}
	return nil
}

func tableRef(t *schema.Table) string {
	if t.Aliased() {
		return t.Name + " " + t.Alias
	}
	return t.Name
}

// validateJoin checks that a join's ON predicate ties the joined table
// to a table the statement introduced before it.
func validateJoin(j stmt.Join, sc *scope) error {
	joined := j.Table.DisplayName()
	if j.Kind == stmt.Cross {
		return nil
	}

	var refs []string
	seen := map[string]bool{}
	walk(j.On.Node(), func(n expr.Node) bool {
		if ref, ok := n.(*expr.ColumnRef); ok {
			name := ref.Table.DisplayName()
			if !seen[name] {
				seen[name] = true
				refs = append(refs, name)
			}
		}
		return true
	})

	if !seen[joined] {
		return &stmt.BuildError{Op: "Compile", Msg: "join ON does not reference " + joined}
	}
	tied := false
	for _, name := range refs {
		if name == joined {
			continue
		}
		if !sc.resolves(name) {
			return &stmt.BuildError{Op: "Compile", Msg: "unresolvable join: " + name + " is not part of the statement"}
		}
		tied = true
	}
	if !tied {
		return &stmt.BuildError{Op: "Compile", Msg: "join ON does not tie " + joined + " to the statement"}
	}
	return nil
}

// withClause renders the WITH prefix. CTE bodies may reference sibling
// CTEs; each CTE is emitted after the ones it references, declaration
// order breaking ties, since a non-recursive WITH element may only
// reference elements before it. Reference cycles are rejected unless
// the cycle is a recursive CTE referring to itself.
func (c *compiler) withClause(ctes []*stmt.CTE, sc *scope) error {
	if len(ctes) == 0 {
		return nil
	}
	ctes, err := orderCTEs(ctes)
	if err != nil {
		return err
	}

	recursive := false
	for _, cte := range ctes {
		if cte.IsRecursive() {
			recursive = true
		}
	}
	c.write("WITH ")
	if recursive {
		c.write("RECURSIVE ")
	}
	for i, cte := range ctes {
		if i > 0 {
			c.write(", ")
		}
		c.write(cte.Name())
		if cols := cte.ColumnNames(); len(cols) > 0 {
			c.write(" (")
			for j, col := range cols {
				if j > 0 {
					c.write(", ")
				}
				c.write(col)
			}
			c.write(")")
		}
		c.write(" AS (")
		if err := c.selectStmt(cte.Select(), sc); err != nil {
			return err
		}
		c.write(")")
	}
	c.write(" ")
	return nil
}

// orderCTEs sorts CTEs so every CTE follows the siblings it references.
func orderCTEs(ctes []*stmt.CTE) ([]*stmt.CTE, error) {
	byName := map[string]*stmt.CTE{}
	for _, cte := range ctes {
		byName[cte.Name()] = cte
	}
	deps := map[string][]string{}
	for _, cte := range ctes {
		used := map[string]bool{}
		collectTables(cte.Select(), used)
		for _, other := range ctes {
			if !used[other.Name()] {
				continue
			}
			if other.Name() == cte.Name() {
				if !cte.IsRecursive() {
					return nil, &stmt.BuildError{Op: "Compile", Msg: "CTE " + cte.Name() + " references itself; mark it Recursive"}
				}
				continue
			}
			deps[cte.Name()] = append(deps[cte.Name()], other.Name())
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	ordered := make([]*stmt.CTE, 0, len(ctes))
	state := map[string]int{}
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return &stmt.BuildError{Op: "Compile", Msg: "CTE reference cycle through " + name}
		case done:
			return nil
		}
		state[name] = visiting
		for _, dep := range deps[name] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = done
		ordered = append(ordered, byName[name])
		return nil
	}
	for _, cte := range ctes {
		if err := visit(cte.Name()); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// collectTables records the display name of every table a select draft
// touches, descending into subqueries and compound arms.
func collectTables(s *stmt.SelectStmt, into map[string]bool) {
	if s == nil {
		return
	}
	if t := s.FromTable(); t != nil {
		into[t.DisplayName()] = true
	}
	for _, j := range s.Joins() {
		into[j.Table.DisplayName()] = true
		collectExprTables(j.On.Node(), into)
	}
	var groups [][]expr.Expr
	groups = append(groups, s.Items(), s.WherePreds(), s.Groupings(), s.HavingPreds(), s.Orderings())
	for _, g := range groups {
		for _, e := range g {
			collectExprTables(e.Node(), into)
		}
	}
	for _, cte := range s.CTEs() {
		collectTables(cte.Select(), into)
	}
	for _, comp := range s.Compounds() {
		collectTables(comp.Sel, into)
	}
}

func collectExprTables(n expr.Node, into map[string]bool) {
	walk(n, func(child expr.Node) bool {
		switch x := child.(type) {
		case *expr.ColumnRef:
			into[x.Table.DisplayName()] = true
		case *stmt.SelectStmt:
			collectTables(x, into)
		}
		return true
	})
}
