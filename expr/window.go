package expr

import "fmt"

// Window is an OVER clause specification: partitioning, ordering and an
// optional frame. Build one with NewWindow and attach it with
// Expr.Over; ranking functions below require it.
type Window struct {
	Partitions []Node
	Orderings  []Node
	FrameSpec  *Frame
}

// NewWindow creates an empty window specification.
func NewWindow() *Window { return &Window{} }

// PartitionBy sets the PARTITION BY list.
func (w *Window) PartitionBy(cols ...Expr) *Window {
	for _, c := range cols {
		if c.node != nil {
			w.Partitions = append(w.Partitions, c.node)
		}
	}
	return w
}

// OrderBy appends ordering terms for the window.
func (w *Window) OrderBy(terms ...Expr) *Window {
	for _, t := range terms {
		if t.node != nil {
			w.Orderings = append(w.Orderings, t.node)
		}
	}
	return w
}

// Rows sets a ROWS BETWEEN frame.
func (w *Window) Rows(start, end Bound) *Window {
	w.FrameSpec = &Frame{Unit: "ROWS", Start: start, End: end}
	return w
}

// Range sets a RANGE BETWEEN frame.
func (w *Window) Range(start, end Bound) *Window {
	w.FrameSpec = &Frame{Unit: "RANGE", Start: start, End: end}
	return w
}

// Frame is a window frame clause.
type Frame struct {
	Unit       string // ROWS or RANGE
	Start, End Bound
}

// Bound is one frame boundary.
type Bound struct {
	Kind   string
	Offset int
}

// UnboundedPreceding is the UNBOUNDED PRECEDING bound.
func UnboundedPreceding() Bound { return Bound{Kind: "UNBOUNDED PRECEDING"} }

// Preceding is the `n PRECEDING` bound.
func Preceding(n int) Bound { return Bound{Kind: "PRECEDING", Offset: n} }

// CurrentRow is the CURRENT ROW bound.
func CurrentRow() Bound { return Bound{Kind: "CURRENT ROW"} }

// Following is the `n FOLLOWING` bound.
func Following(n int) Bound { return Bound{Kind: "FOLLOWING", Offset: n} }

// UnboundedFollowing is the UNBOUNDED FOLLOWING bound.
func UnboundedFollowing() Bound { return Bound{Kind: "UNBOUNDED FOLLOWING"} }

// RowNumber builds ROW_NUMBER(); attach a window with Over.
func RowNumber() Expr { return Expr{node: &Func{Name: "ROW_NUMBER"}} }

// Rank builds RANK().
func Rank() Expr { return Expr{node: &Func{Name: "RANK"}} }

// DenseRank builds DENSE_RANK().
func DenseRank() Expr { return Expr{node: &Func{Name: "DENSE_RANK"}} }

// Lag builds LAG(v), LAG(v, offset) or LAG(v, offset, default).
func Lag(v any, rest ...any) Expr { return rankCall("LAG", v, rest) }

// Lead builds LEAD(v), LEAD(v, offset) or LEAD(v, offset, default).
func Lead(v any, rest ...any) Expr { return rankCall("LEAD", v, rest) }

// FirstValue builds FIRST_VALUE(v).
func FirstValue(v any) Expr { return Call("FIRST_VALUE", v) }

// LastValue builds LAST_VALUE(v).
func LastValue(v any) Expr { return Call("LAST_VALUE", v) }

func rankCall(name string, v any, rest []any) Expr {
	if len(rest) > 2 {
		return Expr{err: fmt.Errorf("%s takes at most three arguments", name)}
	}
	return Call(name, append([]any{v}, rest...)...)
}

// windowOnly names the functions that are meaningless without an OVER
// clause; the compiler rejects them when bare.
var windowOnly = map[string]bool{
	"ROW_NUMBER":  true,
	"RANK":        true,
	"DENSE_RANK":  true,
	"LAG":         true,
	"LEAD":        true,
	"FIRST_VALUE": true,
	"LAST_VALUE":  true,
}

// RequiresWindow reports whether a bare function call of this name must
// carry an OVER clause.
func RequiresWindow(name string) bool { return windowOnly[name] }
