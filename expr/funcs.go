package expr

import "fmt"

// Count builds COUNT(*) with no argument, COUNT(arg) with one.
func Count(arg ...any) Expr {
	switch len(arg) {
	case 0:
		return Expr{node: &Aggregate{Name: "COUNT"}}
	case 1:
		return aggregate("COUNT", arg[0])
	default:
		return Expr{err: fmt.Errorf("COUNT takes at most one argument")}
	}
}

// Sum builds SUM(v).
func Sum(v any) Expr { return aggregate("SUM", v) }

// Avg builds AVG(v).
func Avg(v any) Expr { return aggregate("AVG", v) }

// Min builds MIN(v).
func Min(v any) Expr { return aggregate("MIN", v) }

// Max builds MAX(v).
func Max(v any) Expr { return aggregate("MAX", v) }

func aggregate(name string, v any) Expr {
	w := Wrap(v)
	if w.err != nil {
		return w
	}
	return Expr{node: &Aggregate{Name: name, Arg: w.node}}
}

// Round builds ROUND(v) or ROUND(v, digits).
func Round(v any, digits ...int) Expr {
	args := []any{v}
	for _, d := range digits {
		args = append(args, d)
	}
	return Call("ROUND", args...)
}

// Lower builds LOWER(v).
func Lower(v any) Expr { return Call("LOWER", v) }

// Upper builds UPPER(v).
func Upper(v any) Expr { return Call("UPPER", v) }

// Length builds LENGTH(v).
func Length(v any) Expr { return Call("LENGTH", v) }

// Coalesce builds COALESCE(v1, v2, ...).
func Coalesce(vals ...any) Expr { return Call("COALESCE", vals...) }

// Concat chains operands with the || operator.
func Concat(parts ...any) Expr {
	if len(parts) == 0 {
		return Expr{err: fmt.Errorf("CONCAT of zero operands")}
	}
	acc := Wrap(parts[0])
	for _, p := range parts[1:] {
		acc = acc.Concat(p)
	}
	return acc
}

// Call builds an arbitrary scalar function call.
func Call(name string, args ...any) Expr {
	nodes := make([]Node, len(args))
	for i, a := range args {
		w := Wrap(a)
		if w.err != nil {
			return w
		}
		nodes[i] = w.node
	}
	return Expr{node: &Func{Name: name, Args: nodes}}
}
