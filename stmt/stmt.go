// Package stmt builds statement drafts: immutable, incrementally
// composed representations of SELECT, INSERT, UPDATE and DELETE
// statements, compiled to SQL by package sqlgen.
//
// Every builder method returns a new draft and leaves its receiver
// untouched, so a base draft can be extended concurrently from several
// goroutines without synchronization. Invalid builder calls are
// recorded on the draft and returned by Compile, with the offending
// call named in the error.
package stmt

import (
	"fmt"

	"github.com/sqlzgo/sqlz/expr"
)

// Draft is any compilable statement draft.
type Draft interface {
	// Err returns the first builder error recorded on the draft.
	Err() error
}

// BuildError is returned for invalid drafts at builder or compile
// time: unresolved columns, empty projections, aggregate misuse,
// invalid limits, unresolvable joins, CTE cycles.
type BuildError struct {
	Op  string
	Msg string
}

func (e *BuildError) Error() string {
	if e.Op == "" {
		return "sqlz: " + e.Msg
	}
	return fmt.Sprintf("sqlz: %s: %s", e.Op, e.Msg)
}

// Errf builds a BuildError for the named builder call.
func Errf(op, format string, args ...any) *BuildError {
	return &BuildError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Assignment is one `column = value` pair in UPDATE SET or upsert
// DO UPDATE clauses.
type Assignment struct {
	Col expr.Expr
	Val expr.Expr
}

// Assign pairs a column with a value expression.
func Assign(col expr.Expr, v any) Assignment {
	return Assignment{Col: col, Val: expr.Wrap(v)}
}

func (a Assignment) err() error {
	if a.Col.Err() != nil {
		return a.Col.Err()
	}
	if a.Val.Err() != nil {
		return a.Val.Err()
	}
	if _, ok := a.Col.Node().(*expr.ColumnRef); a.Col.Node() != nil && !ok {
		return fmt.Errorf("assignment target must be a column reference")
	}
	return nil
}

func columnOf(e expr.Expr) (*expr.ColumnRef, error) {
	if e.Err() != nil {
		return nil, e.Err()
	}
	ref, ok := e.Node().(*expr.ColumnRef)
	if !ok {
		return nil, fmt.Errorf("expected a column reference")
	}
	return ref, nil
}

func keepErr(existing, candidate error) error {
	if existing != nil {
		return existing
	}
	return candidate
}

func wrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*BuildError); ok {
		return err
	}
	return &BuildError{Op: op, Msg: err.Error()}
}
