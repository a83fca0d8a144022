// Package expr builds the expression trees that statement drafts are
// made of: column references, literals, comparisons, boolean
// combinators, arithmetic, function calls, aggregates and window
// applications.
//
// Expressions are plain values. Every builder method returns a new
// Expr; nothing is shared mutably, so expressions can be reused across
// statements and goroutines freely. Comparisons return expressions,
// never booleans: `expr.C(person, "age").Gt(25)` is a tree node that
// compiles to `(age > ?)`, not something an if statement can test.
package expr

import (
	"fmt"
	"time"

	"github.com/sqlzgo/sqlz/schema"
)

// Node is one node of an expression tree. It is implemented by the
// exported node structs in this package and by select statement drafts,
// which double as subquery operands.
type Node interface {
	ExprNode()
}

// Literal is a bound parameter value. Literals are always rendered as
// placeholders; their values travel in the parameter list.
type Literal struct{ Value any }

// ColumnRef identifies a column of a (possibly aliased) table.
type ColumnRef struct {
	Table *schema.Table
	Col   *schema.Column
}

// Binary is a two-operand operator application: comparisons, boolean
// combinators, arithmetic, LIKE, IN.
type Binary struct {
	Op          string
	Left, Right Node
}

// Unary is a single-operand operator. Prefix ops (NOT, -, EXISTS) and
// postfix ops (IS NULL, IS NOT NULL) share this node; the compiler
// knows which is which from the operator.
type Unary struct {
	Op      string
	Operand Node
}

// Between is `subject BETWEEN low AND high`.
type Between struct {
	Subject, Low, High Node
	Not                bool
}

// Tuple is a parenthesized value list, the right-hand side of IN.
type Tuple struct{ Items []Node }

// Func is a scalar function call.
type Func struct {
	Name string
	Args []Node
}

// Aggregate is an aggregate function application. A nil Arg renders as
// `*` (COUNT(*) only).
type Aggregate struct {
	Name     string
	Arg      Node
	Distinct bool
}

// WindowFunc is a function or aggregate applied over a window.
type WindowFunc struct {
	Fn   Node // *Func or *Aggregate
	Spec *Window
}

// Raw is an opaque SQL fragment, inlined verbatim with no parameters.
type Raw struct{ SQL string }

// Alias names an expression. In a projection it renders `expr AS name`;
// everywhere else it renders just the name.
type Alias struct {
	E    Node
	Name string
}

// Ordering is a direction-tagged ordering term.
type Ordering struct {
	E    Node
	Desc bool
}

func (*Literal) ExprNode()    {}
func (*ColumnRef) ExprNode()  {}
func (*Binary) ExprNode()     {}
func (*Unary) ExprNode()      {}
func (*Between) ExprNode()    {}
func (*Tuple) ExprNode()      {}
func (*Func) ExprNode()       {}
func (*Aggregate) ExprNode()  {}
func (*WindowFunc) ExprNode() {}
func (*Raw) ExprNode()        {}
func (*Alias) ExprNode()      {}
func (*Ordering) ExprNode()   {}

// Expr is the value handed around by statement builders: a node plus
// any construction error, carried until compile time so fluent chains
// stay fluent.
type Expr struct {
	node Node
	err  error
}

// Node returns the underlying tree node.
func (e Expr) Node() Node { return e.node }

// Err returns the first construction error recorded on this expression.
func (e Expr) Err() error { return e.err }

// Valid reports whether the expression carries a node at all.
func (e Expr) Valid() bool { return e.node != nil }

// C references a column of a registered (or aliased) table. An unknown
// column name is recorded as an error and surfaces at compile time.
func C(t *schema.Table, name string) Expr {
	col, ok := t.Column(name)
	if !ok {
		return Expr{err: fmt.Errorf("table %s has no column %q", t.Name, name)}
	}
	return Expr{node: &ColumnRef{Table: t, Col: col}}
}

// Cols references every column of a table, in declaration order.
func Cols(t *schema.Table) []Expr {
	out := make([]Expr, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = Expr{node: &ColumnRef{Table: t, Col: c}}
	}
	return out
}

// RawSQL wraps an opaque dialect fragment. Escape hatch only: the text
// is inlined without binding.
func RawSQL(sql string) Expr {
	return Expr{node: &Raw{SQL: sql}}
}

// Value wraps a Go value as a bound literal.
func Value(v any) Expr { return Wrap(v) }

// Wrap coerces an operand into an expression: expressions pass through,
// anything else becomes a typed literal. The literal union is closed;
// an unsupported Go type is recorded as an error, not interpolated.
func Wrap(v any) Expr {
	switch x := v.(type) {
	case Expr:
		return x
	case Node:
		return Expr{node: x}
	case nil:
		return Expr{node: &Literal{Value: nil}}
	case int:
		return Expr{node: &Literal{Value: int64(x)}}
	case int8:
		return Expr{node: &Literal{Value: int64(x)}}
	case int16:
		return Expr{node: &Literal{Value: int64(x)}}
	case int32:
		return Expr{node: &Literal{Value: int64(x)}}
	case int64:
		return Expr{node: &Literal{Value: x}}
	case uint:
		return Expr{node: &Literal{Value: int64(x)}}
	case uint8:
		return Expr{node: &Literal{Value: int64(x)}}
	case uint16:
		return Expr{node: &Literal{Value: int64(x)}}
	case uint32:
		return Expr{node: &Literal{Value: int64(x)}}
	case uint64:
		return Expr{node: &Literal{Value: int64(x)}}
	case float32:
		return Expr{node: &Literal{Value: float64(x)}}
	case float64:
		return Expr{node: &Literal{Value: x}}
	case string:
		return Expr{node: &Literal{Value: x}}
	case bool:
		return Expr{node: &Literal{Value: x}}
	case []byte:
		return Expr{node: &Literal{Value: x}}
	case time.Time:
		return Expr{node: &Literal{Value: x}}
	default:
		return Expr{err: fmt.Errorf("cannot use %T as a SQL literal", v)}
	}
}

func (e Expr) binary(op string, v any) Expr {
	r := Wrap(v)
	if err := firstErr(e.err, r.err); err != nil {
		return Expr{err: err}
	}
	return Expr{node: &Binary{Op: op, Left: e.node, Right: r.node}}
}

// Eq builds `(e = v)`.
func (e Expr) Eq(v any) Expr { return e.binary("=", v) }

// Ne builds `(e != v)`.
func (e Expr) Ne(v any) Expr { return e.binary("!=", v) }

// Lt builds `(e < v)`.
func (e Expr) Lt(v any) Expr { return e.binary("<", v) }

// Le builds `(e <= v)`.
func (e Expr) Le(v any) Expr { return e.binary("<=", v) }

// Gt builds `(e > v)`.
func (e Expr) Gt(v any) Expr { return e.binary(">", v) }

// Ge builds `(e >= v)`.
func (e Expr) Ge(v any) Expr { return e.binary(">=", v) }

// Add builds `(e + v)`.
func (e Expr) Add(v any) Expr { return e.binary("+", v) }

// Sub builds `(e - v)`.
func (e Expr) Sub(v any) Expr { return e.binary("-", v) }

// Mul builds `(e * v)`.
func (e Expr) Mul(v any) Expr { return e.binary("*", v) }

// Div builds `(e / v)`.
func (e Expr) Div(v any) Expr { return e.binary("/", v) }

// Concat builds `(e || v)`.
func (e Expr) Concat(v any) Expr { return e.binary("||", v) }

// Like builds `(e LIKE pattern)`.
func (e Expr) Like(pattern string) Expr { return e.binary("LIKE", pattern) }

// NotLike builds `(e NOT LIKE pattern)`.
func (e Expr) NotLike(pattern string) Expr { return e.binary("NOT LIKE", pattern) }

// In builds `(e IN (...))`. A single select draft operand becomes a
// subquery membership test; anything else is bound as a value list.
func (e Expr) In(vals ...any) Expr {
	if e.err != nil {
		return e
	}
	if len(vals) == 1 {
		if sub, ok := vals[0].(Node); ok {
			return Expr{node: &Binary{Op: "IN", Left: e.node, Right: sub}}
		}
	}
	items := make([]Node, len(vals))
	for i, v := range vals {
		w := Wrap(v)
		if w.err != nil {
			return Expr{err: w.err}
		}
		items[i] = w.node
	}
	return Expr{node: &Binary{Op: "IN", Left: e.node, Right: &Tuple{Items: items}}}
}

// NotIn builds `(e NOT IN (...))`.
func (e Expr) NotIn(vals ...any) Expr {
	in := e.In(vals...)
	if in.err != nil {
		return in
	}
	b := in.node.(*Binary)
	return Expr{node: &Binary{Op: "NOT IN", Left: b.Left, Right: b.Right}}
}

// Between builds `(e BETWEEN low AND high)`.
func (e Expr) Between(low, high any) Expr {
	l, h := Wrap(low), Wrap(high)
	if err := firstErr(e.err, l.err, h.err); err != nil {
		return Expr{err: err}
	}
	return Expr{node: &Between{Subject: e.node, Low: l.node, High: h.node}}
}

// NotBetween builds `(e NOT BETWEEN low AND high)`.
func (e Expr) NotBetween(low, high any) Expr {
	b := e.Between(low, high)
	if b.err != nil {
		return b
	}
	n := b.node.(*Between)
	n.Not = true
	return Expr{node: n}
}

// IsNull builds `(e IS NULL)`.
func (e Expr) IsNull() Expr {
	if e.err != nil {
		return e
	}
	return Expr{node: &Unary{Op: "IS NULL", Operand: e.node}}
}

// NotNull builds `(e IS NOT NULL)`.
func (e Expr) NotNull() Expr {
	if e.err != nil {
		return e
	}
	return Expr{node: &Unary{Op: "IS NOT NULL", Operand: e.node}}
}

// And combines e with v: `(e AND v)`.
func (e Expr) And(v any) Expr { return e.binary("AND", v) }

// Or combines e with v: `(e OR v)`.
func (e Expr) Or(v any) Expr { return e.binary("OR", v) }

// Neg builds `(-e)`.
func (e Expr) Neg() Expr {
	if e.err != nil {
		return e
	}
	return Expr{node: &Unary{Op: "-", Operand: e.node}}
}

// As names the expression for the projection list.
func (e Expr) As(name string) Expr {
	if e.err != nil {
		return e
	}
	return Expr{node: &Alias{E: e.node, Name: name}}
}

// Asc tags the expression as an ascending ordering term. Plain
// expressions in ORDER BY default to ascending; Asc exists for
// symmetry with Desc.
func (e Expr) Asc() Expr {
	if e.err != nil {
		return e
	}
	return Expr{node: &Ordering{E: e.node, Desc: false}}
}

// Desc tags the expression as a descending ordering term.
func (e Expr) Desc() Expr {
	if e.err != nil {
		return e
	}
	return Expr{node: &Ordering{E: e.node, Desc: true}}
}

// Distinct marks an aggregate argument distinct: COUNT(DISTINCT c).
// Calling it on anything but an aggregate records an error.
func (e Expr) Distinct() Expr {
	if e.err != nil {
		return e
	}
	agg, ok := e.node.(*Aggregate)
	if !ok {
		return Expr{err: fmt.Errorf("DISTINCT applies to aggregate calls only")}
	}
	return Expr{node: &Aggregate{Name: agg.Name, Arg: agg.Arg, Distinct: true}}
}

// Over applies the function or aggregate over a window.
func (e Expr) Over(w *Window) Expr {
	if e.err != nil {
		return e
	}
	switch e.node.(type) {
	case *Func, *Aggregate:
		return Expr{node: &WindowFunc{Fn: e.node, Spec: w}}
	default:
		return Expr{err: fmt.Errorf("OVER applies to function and aggregate calls only")}
	}
}

// And combines predicates with AND, left-to-right.
func And(preds ...Expr) Expr { return combine("AND", preds) }

// Or combines predicates with OR, left-to-right.
func Or(preds ...Expr) Expr { return combine("OR", preds) }

// Not negates a predicate: `(NOT p)`.
func Not(p Expr) Expr {
	if p.err != nil {
		return p
	}
	return Expr{node: &Unary{Op: "NOT", Operand: p.node}}
}

// Exists builds `EXISTS (subquery)`.
func Exists(sub any) Expr {
	w := Wrap(sub)
	if w.err != nil {
		return w
	}
	return Expr{node: &Unary{Op: "EXISTS", Operand: w.node}}
}

// NotExists builds `NOT EXISTS (subquery)`.
func NotExists(sub any) Expr {
	w := Wrap(sub)
	if w.err != nil {
		return w
	}
	return Expr{node: &Unary{Op: "NOT EXISTS", Operand: w.node}}
}

func combine(op string, preds []Expr) Expr {
	if len(preds) == 0 {
		return Expr{err: fmt.Errorf("%s of zero predicates", op)}
	}
	acc := preds[0]
	for _, p := range preds[1:] {
		acc = acc.binary(op, p)
	}
	return acc
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
