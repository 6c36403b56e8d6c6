package rules

import (
	"github.com/sqltype/sqltype/pkg/ast"
	"github.com/sqltype/sqltype/pkg/problem"
	"github.com/sqltype/sqltype/pkg/types"
)

// Fallback is the continuation type of an operator of category c that failed to type check.
func Fallback(c ast.Category) types.StaticType {
	switch c {
	case ast.CategoryArithmetic:
		return types.Numeric
	case ast.CategoryConcat:
		return types.String
	}
	return types.Bool
}

// Accepts reports whether a concrete type is a valid operand of category c on its own,
// regardless of the other operand.
func Accepts(c ast.Category, t types.StaticType) bool {
	switch c {
	case ast.CategoryArithmetic:
		return types.IsNumeric(t)
	case ast.CategoryConcat:
		return types.IsText(t)
	case ast.CategoryLogical:
		return types.IsBool(t)
	}
	return isKnown(t)
}

func isKnown(t types.StaticType) bool {
	return !types.IsNullKind(t) && !types.IsMissingKind(t)
}

// Binary types `lhs op rhs`. loc is the location of the operator.
func Binary(op ast.Operator, lhs, rhs types.StaticType, loc ast.Location) (types.StaticType, []problem.Problem) {
	c := op.Category()
	args := []types.StaticType{lhs, rhs}
	accepts := func(_ int, t types.StaticType) bool { return Accepts(c, t) }
	if t, ps, done := unknownOperands(args, accepts, Fallback(c), op.String(), loc); done {
		return t, ps
	}

	var out []types.StaticType
	compatible := false
	for _, l := range types.Alternatives(lhs) {
		for _, r := range types.Alternatives(rhs) {
			switch {
			case types.IsMissingKind(l) || types.IsMissingKind(r):
				out = append(out, types.Missing)
			case types.IsNullKind(l) || types.IsNullKind(r):
				out = append(out, types.Null)
			default:
				if t, ok := promote(c, l, r); ok {
					compatible = true
					out = append(out, t)
				} else if c == ast.CategoryEquality {
					out = append(out, types.Bool)
				} else {
					out = append(out, types.Missing)
				}
			}
		}
	}

	if !compatible {
		return Fallback(c), []problem.Problem{incompatible(args, op.String(), loc)}
	}
	return types.UnionOf(out...), nil
}

// Unary types NOT, unary minus and unary plus.
func Unary(op ast.Operator, operand types.StaticType, loc ast.Location) (types.StaticType, []problem.Problem) {
	c := op.Category()
	args := []types.StaticType{operand}
	accepts := func(_ int, t types.StaticType) bool { return Accepts(c, t) }
	if t, ps, done := unknownOperands(args, accepts, Fallback(c), op.String(), loc); done {
		return t, ps
	}

	var out []types.StaticType
	compatible := false
	for _, a := range types.Alternatives(operand) {
		switch {
		case types.IsMissingKind(a):
			out = append(out, types.Missing)
		case types.IsNullKind(a):
			out = append(out, types.Null)
		case Accepts(c, a):
			compatible = true
			out = append(out, a)
		default:
			out = append(out, types.Missing)
		}
	}

	if !compatible {
		return Fallback(c), []problem.Problem{incompatible(args, op.String(), loc)}
	}
	return types.UnionOf(out...), nil
}

// unknownOperands handles operand lists where some operand can only be NULL or MISSING.
// done is false when every operand has a known alternative.
func unknownOperands(args []types.StaticType, accepts func(int, types.StaticType) bool, fallback types.StaticType, op string, loc ast.Location) (t types.StaticType, ps []problem.Problem, done bool) {
	anyUnknown, allUnknown, anyMissing, anyNullOrMissing := false, true, false, false
	for _, a := range args {
		if !types.IsUnknown(a) {
			allUnknown = false
			continue
		}
		anyUnknown = true
		if types.IsMissing(a) {
			anyMissing = true
		}
		if types.IsNullOrMissing(a) {
			anyNullOrMissing = true
		}
	}
	if !anyUnknown {
		return nil, nil, false
	}

	if anyMissing {
		t = fallback
		if allUnknown {
			t = types.NullOrMissing
		}
		return t, []problem.Problem{problem.Error(loc, problem.ExpressionAlwaysReturnsMissing{})}, true
	}

	for i, a := range args {
		if types.IsUnknown(a) {
			continue
		}
		if !types.AnyAlternative(a, func(alt types.StaticType) bool { return accepts(i, alt) }) {
			return fallback, []problem.Problem{incompatible(args, op, loc)}, true
		}
	}

	t = types.Null
	if anyNullOrMissing {
		t = types.NullOrMissing
	}
	return t, []problem.Problem{problem.Warning(loc, problem.ExpressionAlwaysReturnsMissingOrNull{})}, true
}

func incompatible(args []types.StaticType, op string, loc ast.Location) problem.Problem {
	return problem.Error(loc, problem.IncompatibleDatatypesForOp{
		ArgTypes: append([]types.StaticType(nil), args...),
		Op:       op,
	})
}

// promote returns the result of applying an operator of category c to two concrete, known
// operand types, or false when they are incompatible.
func promote(c ast.Category, l, r types.StaticType) (types.StaticType, bool) {
	switch c {
	case ast.CategoryArithmetic:
		if !types.IsNumeric(l) || !types.IsNumeric(r) {
			return nil, false
		}
		return widest(l.(types.Scalar), r.(types.Scalar)), true
	case ast.CategoryConcat:
		if !types.IsText(l) || !types.IsText(r) {
			return nil, false
		}
		return concatText(l.(types.Scalar), r.(types.Scalar)), true
	case ast.CategoryLogical:
		if !types.IsBool(l) || !types.IsBool(r) {
			return nil, false
		}
		return types.Bool, true
	case ast.CategoryComparison, ast.CategoryEquality:
		if !Comparable(l, r) {
			return nil, false
		}
		return types.Bool, true
	}
	return nil, false
}

// widest orders the numeric kinds INT2 < INT4 < INT8 < INT < FLOAT < DECIMAL.
func widest(l, r types.Scalar) types.StaticType {
	if r.Kind > l.Kind {
		return types.Scalar{Kind: r.Kind}
	}
	return types.Scalar{Kind: l.Kind}
}

func concatText(l, r types.Scalar) types.StaticType {
	if l.Kind != types.KindString || r.Kind != types.KindString {
		return types.String
	}
	lc, rc := l.Length, r.Length
	if lc.Kind == types.Unconstrained || rc.Kind == types.Unconstrained {
		return types.String
	}
	if lc.Kind == types.LengthEquals && rc.Kind == types.LengthEquals {
		return types.StringOf(types.Equals(lc.N + rc.N))
	}
	return types.StringOf(types.UpTo(lc.N + rc.N))
}

// Comparable reports whether two concrete types can be compared with each other: numbers
// with numbers, text with text, lobs with lobs, and BOOL, TIMESTAMP, collections of one
// shape and structs with their own kind. Collection elements and struct fields are not
// inspected.
func Comparable(l, r types.StaticType) bool {
	switch {
	case types.IsNumeric(l) && types.IsNumeric(r),
		types.IsText(l) && types.IsText(r),
		types.IsLob(l) && types.IsLob(r):
		return true
	}

	switch l := l.(type) {
	case types.Scalar:
		rs, ok := r.(types.Scalar)
		return ok && l.Kind == rs.Kind && (l.Kind == types.KindBool || l.Kind == types.KindTimestamp)
	case types.Collection:
		rc, ok := r.(types.Collection)
		return ok && l.Shape == rc.Shape
	case types.Struct:
		_, ok := r.(types.Struct)
		return ok
	}
	return false
}

// mayCompare reports whether some known alternative of a is comparable to some known
// alternative of b.
func mayCompare(a, b types.StaticType) bool {
	for _, l := range types.Alternatives(a) {
		if !isKnown(l) {
			continue
		}
		for _, r := range types.Alternatives(b) {
			if isKnown(r) && Comparable(l, r) {
				return true
			}
		}
	}
	return false
}

// alwaysCompare reports whether every pair of known alternatives of a and b is comparable.
func alwaysCompare(a, b types.StaticType) bool {
	for _, l := range types.Alternatives(a) {
		if !isKnown(l) {
			continue
		}
		for _, r := range types.Alternatives(b) {
			if isKnown(r) && !Comparable(l, r) {
				return false
			}
		}
	}
	return true
}
