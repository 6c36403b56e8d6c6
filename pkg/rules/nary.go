package rules

import (
	"github.com/sqltype/sqltype/pkg/ast"
	"github.com/sqltype/sqltype/pkg/problem"
	"github.com/sqltype/sqltype/pkg/types"
)

// acceptKnown accepts any operand alternative that is not NULL or MISSING.
func acceptKnown(_ int, t types.StaticType) bool {
	return isKnown(t)
}

// boolResult is BOOL widened with NULL and MISSING when some operand may be one of them.
func boolResult(missing bool, args ...types.StaticType) types.StaticType {
	out := []types.StaticType{types.Bool}
	for _, a := range args {
		if types.MayBeNull(a) {
			out = append(out, types.Null)
		}
	}
	for _, a := range args {
		if types.MayBeMissing(a) {
			missing = true
		}
	}
	if missing {
		out = append(out, types.Missing)
	}
	return types.UnionOf(out...)
}

// Like types `value LIKE pattern [ESCAPE escape]`. escape is nil without ESCAPE.
func Like(value, pattern, escape types.StaticType, loc ast.Location) (types.StaticType, []problem.Problem) {
	args := []types.StaticType{value, pattern}
	if escape != nil {
		args = append(args, escape)
	}
	isText := func(_ int, t types.StaticType) bool { return types.IsText(t) }
	if t, ps, done := unknownOperands(args, isText, types.Bool, "LIKE", loc); done {
		return t, ps
	}

	missing := false
	for _, a := range args {
		if !types.AnyAlternative(a, types.IsText) {
			return types.Bool, []problem.Problem{incompatible(args, "LIKE", loc)}
		}
		if types.AnyAlternative(a, func(t types.StaticType) bool { return isKnown(t) && !types.IsText(t) }) {
			missing = true
		}
	}
	return boolResult(missing, args...), nil
}

// Between types `value BETWEEN from AND to`. All three operands must be comparable with each
// other, not only with value.
func Between(value, from, to types.StaticType, loc ast.Location) (types.StaticType, []problem.Problem) {
	args := []types.StaticType{value, from, to}
	if t, ps, done := unknownOperands(args, acceptKnown, types.Bool, "BETWEEN", loc); done {
		return t, ps
	}

	pairs := [][2]types.StaticType{{value, from}, {value, to}, {from, to}}
	missing := false
	for _, p := range pairs {
		if !mayCompare(p[0], p[1]) {
			return types.Bool, []problem.Problem{incompatible(args, "BETWEEN", loc)}
		}
		if !alwaysCompare(p[0], p[1]) {
			missing = true
		}
	}
	return boolResult(missing, args...), nil
}

func isCollection(t types.StaticType) bool {
	_, ok := t.(types.Collection)
	return ok
}

// elementType is the union of the element types of the collection alternatives of t.
func elementType(t types.StaticType) types.StaticType {
	var elems []types.StaticType
	for _, a := range types.Alternatives(t) {
		if c, ok := a.(types.Collection); ok {
			elems = append(elems, c.Element)
		}
	}
	return types.UnionOf(elems...)
}

// In types `value IN collection`.
func In(value, collection types.StaticType, loc ast.Location) (types.StaticType, []problem.Problem) {
	args := []types.StaticType{value, collection}
	accepts := func(i int, t types.StaticType) bool {
		if i == 1 {
			return isCollection(t)
		}
		return isKnown(t)
	}
	if t, ps, done := unknownOperands(args, accepts, types.Bool, "IN", loc); done {
		return t, ps
	}

	if !types.AnyAlternative(collection, isCollection) {
		return types.Bool, []problem.Problem{problem.Error(loc, problem.IncompatibleDataTypeForExpr{
			Expected: types.AnyCollection,
			Actual:   collection,
		})}
	}

	missing := types.AnyAlternative(collection, func(t types.StaticType) bool { return isKnown(t) && !isCollection(t) })
	elem := elementType(collection)
	if !types.IsUnknown(elem) {
		if !mayCompare(value, elem) {
			return types.Bool, []problem.Problem{incompatible(args, "IN", loc)}
		}
		if !alwaysCompare(value, elem) {
			missing = true
		}
	}
	return boolResult(missing, value, collection), nil
}

// InRows types `value IN (row, ...)`. A single problem lists every operand when some row is
// not comparable to value.
func InRows(value types.StaticType, rows []types.StaticType, loc ast.Location) (types.StaticType, []problem.Problem) {
	args := append([]types.StaticType{value}, rows...)
	if t, ps, done := unknownOperands(args[:1], acceptKnown, types.Bool, "IN", loc); done {
		return t, ps
	}

	missing := false
	for _, r := range rows {
		if types.IsUnknown(r) {
			continue
		}
		if !mayCompare(value, r) {
			return types.Bool, []problem.Problem{incompatible(args, "IN", loc)}
		}
		if !alwaysCompare(value, r) {
			missing = true
		}
	}

	out := []types.StaticType{types.Bool}
	for _, a := range args {
		if types.MayBeNull(a) {
			out = append(out, types.Null)
			break
		}
	}
	if missing || types.MayBeMissing(value) {
		out = append(out, types.Missing)
	}
	return types.UnionOf(out...), nil
}

// NullIf types NULLIF(a, b). The result is always a nullable a. Unlike =, operands that can
// only be NULL or MISSING are not diagnosed.
func NullIf(a, b types.StaticType, loc ast.Location) (types.StaticType, []problem.Problem) {
	result := types.AsNullable(a)
	if types.IsUnknown(a) || types.IsUnknown(b) || mayCompare(a, b) {
		return result, nil
	}
	return result, []problem.Problem{incompatible([]types.StaticType{a, b}, "NULLIF", loc)}
}

// Coalesce types COALESCE(args...). MISSING is dropped unless every argument is MISSING,
// NULL is dropped when some argument may be known.
func Coalesce(args []types.StaticType) types.StaticType {
	allMissing, anyKnown := true, false
	for _, a := range args {
		if !types.AllAlternatives(a, types.IsMissingKind) {
			allMissing = false
		}
		if types.AnyAlternative(a, isKnown) {
			anyKnown = true
		}
	}
	if allMissing {
		return types.Missing
	}

	var out []types.StaticType
	for _, a := range args {
		if _, ok := a.(types.AnyType); ok {
			out = append(out, a)
			continue
		}
		for _, alt := range types.Alternatives(a) {
			switch {
			case types.IsMissingKind(alt):
			case types.IsNullKind(alt) && anyKnown:
			default:
				out = append(out, alt)
			}
		}
	}
	return types.UnionOf(out...)
}

// Condition checks a searched CASE guard or a WHERE, ON or HAVING clause. Guards that can
// only be NULL or MISSING are not reported.
func Condition(t types.StaticType, loc ast.Location) []problem.Problem {
	if types.IsUnknown(t) || types.AnyAlternative(t, types.IsBool) {
		return nil
	}
	return []problem.Problem{problem.Error(loc, problem.IncompatibleDataTypeForExpr{Expected: types.Bool, Actual: t})}
}

// SimpleWhen checks that a simple CASE arm value is comparable to the case value.
func SimpleWhen(caseValue, whenValue types.StaticType, loc ast.Location) []problem.Problem {
	if types.IsUnknown(caseValue) || types.IsUnknown(whenValue) || mayCompare(caseValue, whenValue) {
		return nil
	}
	return []problem.Problem{incompatible([]types.StaticType{caseValue, whenValue}, "CASE", loc)}
}

// CaseResult is the union of every THEN type and the ELSE type, or NULL when els is nil.
// Arms whose guard is known to fail still contribute.
func CaseResult(thens []types.StaticType, els types.StaticType) types.StaticType {
	if els == nil {
		els = types.Null
	}
	return types.UnionOf(append(append([]types.StaticType(nil), thens...), els)...)
}

// IntegerOperand checks a LIMIT or OFFSET operand.
func IntegerOperand(t types.StaticType, loc ast.Location) []problem.Problem {
	if types.IsUnknown(t) || types.AnyAlternative(t, types.IsInteger) {
		return nil
	}
	return []problem.Problem{problem.Error(loc, problem.IncompatibleDataTypeForExpr{Expected: types.Int, Actual: t})}
}
