// Package sqlgen compiles statement drafts into SQL text and an
// ordered parameter list.
//
// Compilation is deterministic and pure: the same draft always yields
// the same SQL and the same parameter order, clauses render in fixed
// SQL order regardless of the order builder methods were called, and
// the compiler keeps no state between calls, so it is safe to use from
// any number of goroutines.
package sqlgen

import (
	"strings"

	"github.com/sqlzgo/sqlz/stmt"
)

// Statement is a compiled statement: SQL text with `?` placeholders and
// the parameter values in placeholder order. Warnings carry non-fatal
// findings (an UPDATE or DELETE without a WHERE clause); the execution
// layer decides whether to surface them.
type Statement struct {
	SQL      string
	Args     []any
	Warnings []string
}

// Compile renders a draft. All validation that needs the whole
// statement happens here: unresolved column references, empty
// projections, aggregates in WHERE, unresolvable joins, CTE cycles.
func Compile(d stmt.Draft) (*Statement, error) {
	if d == nil {
		return nil, &stmt.BuildError{Op: "Compile", Msg: "nil draft"}
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	c := &compiler{}
	var err error
	switch x := d.(type) {
	case *stmt.SelectStmt:
		err = c.selectStmt(x, nil)
	case *stmt.InsertStmt:
		err = c.insertStmt(x)
	case *stmt.UpdateStmt:
		err = c.updateStmt(x)
	case *stmt.DeleteStmt:
		err = c.deleteStmt(x)
	default:
		err = &stmt.BuildError{Op: "Compile", Msg: "unsupported draft type"}
	}
	if err != nil {
		return nil, err
	}
	return &Statement{SQL: c.sb.String(), Args: c.args, Warnings: c.warnings}, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(d stmt.Draft) *Statement {
	s, err := Compile(d)
	if err != nil {
		panic(err)
	}
	return s
}

type compiler struct {
	sb       strings.Builder
	args     []any
	warnings []string
}

func (c *compiler) write(parts ...string) {
	for _, p := range parts {
		c.sb.WriteString(p)
	}
}

// scope tracks which table names a select statement may reference.
// Subqueries chain to their enclosing scope, so correlated references
// resolve against the outer statement.
type scope struct {
	tables  map[string]bool
	qualify bool
	inWhere bool
	outer   *scope
}

func newScope(outer *scope) *scope {
	return &scope{tables: map[string]bool{}, outer: outer}
}

func (s *scope) add(name string) { s.tables[name] = true }

func (s *scope) resolves(name string) bool {
	for sc := s; sc != nil; sc = sc.outer {
		if sc.tables[name] {
			return true
		}
	}
	return false
}

func (s *scope) whereContext() bool {
	return s != nil && s.inWhere
}
