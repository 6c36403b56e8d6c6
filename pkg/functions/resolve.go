package functions

import (
	"github.com/sqltype/sqltype/pkg/ast"
	"github.com/sqltype/sqltype/pkg/problem"
	"github.com/sqltype/sqltype/pkg/types"
)

// Arg is a typed call argument and the location diagnostics about it are reported at.
type Arg struct {
	Type types.StaticType
	Loc  ast.Location
}

// Resolve checks a call of name against the catalog. The result is the declared return type
// even when arguments are rejected, and ANY for an unknown function. Functions propagate
// NULL and MISSING, so unknown arguments do not widen the result.
func Resolve(c *Catalog, name string, args []Arg, loc ast.Location) (types.StaticType, []problem.Problem) {
	sig, ok := c.Lookup(name)
	if !ok {
		return types.Any, []problem.Problem{problem.Error(loc, problem.NoSuchFunction{Function: name})}
	}

	if arity := sig.Arity(); !arity.Accepts(len(args)) {
		return sig.Returns, []problem.Problem{problem.Error(loc, problem.IncorrectNumberOfArgumentsToFunctionCall{
			Function: sig.Name,
			Expected: arity,
			Actual:   len(args),
		})}
	}

	var ps []problem.Problem
	for i, a := range args {
		if p, ok := checkArg(sig, sig.Param(i), a); !ok {
			ps = append(ps, p)
		}
	}
	return sig.Returns, ps
}

func checkArg(sig Signature, param types.StaticType, a Arg) (problem.Problem, bool) {
	if types.IsUnknown(a.Type) {
		return problem.Error(a.Loc, problem.NullOrMissingFunctionArgument{Function: sig.Name}), false
	}
	if _, ok := a.Type.(types.AnyType); ok {
		return problem.Problem{}, true
	}
	if types.AnyAlternative(a.Type, func(t types.StaticType) bool { return types.IsAssignable(t, param) }) {
		return problem.Problem{}, true
	}
	return problem.Error(a.Loc, problem.InvalidArgumentTypeForFunction{
		Function: sig.Name,
		Expected: param,
		Actual:   a.Type,
	}), false
}
