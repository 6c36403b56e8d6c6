package problem

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sqltype/sqltype/pkg/ast"
	"github.com/sqltype/sqltype/pkg/types"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Problem is a single located diagnostic.
type Problem struct {
	Location ast.Location
	Severity Severity
	Detail   Detail
}

func Error(loc ast.Location, d Detail) Problem {
	return Problem{Location: loc, Severity: SeverityError, Detail: d}
}

func Warning(loc ast.Location, d Detail) Problem {
	return Problem{Location: loc, Severity: SeverityWarning, Detail: d}
}

func (p Problem) String() string {
	return p.Location.String() + " " + p.Severity.String() + " " + p.Detail.Code() + ": " + p.Detail.Message()
}

// Equal reports full structural equality. Types inside details compare with types.Equal.
func Equal(a, b Problem) bool {
	return a.Location == b.Location && a.Severity == b.Severity && key(a.Detail) == key(b.Detail)
}

// Unbounded is the Max of a variadic Arity.
const Unbounded = -1

// Arity is an inclusive range of accepted argument counts.
type Arity struct {
	Min int
	Max int
}

func (a Arity) Accepts(n int) bool {
	return n >= a.Min && (a.Max == Unbounded || n <= a.Max)
}

func (a Arity) String() string {
	if a.Max == Unbounded {
		return strconv.Itoa(a.Min) + "..*"
	}
	return strconv.Itoa(a.Min) + ".." + strconv.Itoa(a.Max)
}

// Detail is the closed set of problem kinds.
type Detail interface {
	// Code is a stable identifier of the kind.
	Code() string
	Message() string
	isDetail()
}

type IncompatibleDatatypesForOp struct {
	ArgTypes []types.StaticType
	Op       string
}

type ExpressionAlwaysReturnsMissing struct{}

type ExpressionAlwaysReturnsMissingOrNull struct{}

type IncompatibleDataTypeForExpr struct {
	Expected types.StaticType
	Actual   types.StaticType
}

type InvalidArgumentTypeForFunction struct {
	Function string
	Expected types.StaticType
	Actual   types.StaticType
}

type NullOrMissingFunctionArgument struct {
	Function string
}

type IncorrectNumberOfArgumentsToFunctionCall struct {
	Function string
	Expected Arity
	Actual   int
}

type NoSuchFunction struct {
	Function string
}

type DuplicateAliasesInSelectListItem struct{}

// UndefinedVariable is a variable reference with no binding in any scope.
type UndefinedVariable struct {
	Name string
}

func (IncompatibleDatatypesForOp) isDetail()               {}
func (ExpressionAlwaysReturnsMissing) isDetail()           {}
func (ExpressionAlwaysReturnsMissingOrNull) isDetail()     {}
func (IncompatibleDataTypeForExpr) isDetail()              {}
func (InvalidArgumentTypeForFunction) isDetail()           {}
func (NullOrMissingFunctionArgument) isDetail()            {}
func (IncorrectNumberOfArgumentsToFunctionCall) isDetail() {}
func (NoSuchFunction) isDetail()                           {}
func (DuplicateAliasesInSelectListItem) isDetail()         {}
func (UndefinedVariable) isDetail()                        {}

func (IncompatibleDatatypesForOp) Code() string               { return "INCOMPATIBLE_DATATYPES_FOR_OP" }
func (ExpressionAlwaysReturnsMissing) Code() string           { return "EXPRESSION_ALWAYS_RETURNS_MISSING" }
func (ExpressionAlwaysReturnsMissingOrNull) Code() string     { return "EXPRESSION_ALWAYS_RETURNS_MISSING_OR_NULL" }
func (IncompatibleDataTypeForExpr) Code() string              { return "INCOMPATIBLE_DATA_TYPE_FOR_EXPR" }
func (InvalidArgumentTypeForFunction) Code() string           { return "INVALID_ARGUMENT_TYPE_FOR_FUNCTION" }
func (NullOrMissingFunctionArgument) Code() string            { return "NULL_OR_MISSING_FUNCTION_ARGUMENT" }
func (IncorrectNumberOfArgumentsToFunctionCall) Code() string { return "INCORRECT_NUMBER_OF_ARGUMENTS_TO_FUNCTION_CALL" }
func (NoSuchFunction) Code() string                           { return "NO_SUCH_FUNCTION" }
func (DuplicateAliasesInSelectListItem) Code() string         { return "DUPLICATE_ALIASES_IN_SELECT_LIST_ITEM" }
func (UndefinedVariable) Code() string                        { return "UNDEFINED_VARIABLE" }

func (d IncompatibleDatatypesForOp) Message() string {
	return "data type mismatch for operator " + d.Op + ": " + typeList(d.ArgTypes, types.StaticType.String)
}

func (ExpressionAlwaysReturnsMissing) Message() string {
	return "expression always returns MISSING"
}

func (ExpressionAlwaysReturnsMissingOrNull) Message() string {
	return "expression always returns NULL or MISSING"
}

func (d IncompatibleDataTypeForExpr) Message() string {
	return "expected " + d.Expected.String() + " but got " + d.Actual.String()
}

func (d InvalidArgumentTypeForFunction) Message() string {
	return "invalid argument to " + d.Function + ": expected " + d.Expected.String() + " but got " + d.Actual.String()
}

func (d NullOrMissingFunctionArgument) Message() string {
	return "argument to " + d.Function + " is always NULL or MISSING"
}

func (d IncorrectNumberOfArgumentsToFunctionCall) Message() string {
	return fmt.Sprintf("%s takes %s arguments, got %d", d.Function, d.Expected, d.Actual)
}

func (d NoSuchFunction) Message() string {
	return "no such function: " + d.Function
}

func (DuplicateAliasesInSelectListItem) Message() string {
	return "duplicate aliases in select list"
}

func (d UndefinedVariable) Message() string {
	return "undefined variable " + d.Name
}

// key renders d with every type in canonical form.
func key(d Detail) string {
	var args []string
	switch d := d.(type) {
	case IncompatibleDatatypesForOp:
		args = []string{d.Op, typeList(d.ArgTypes, types.Key)}
	case IncompatibleDataTypeForExpr:
		args = []string{types.Key(d.Expected), types.Key(d.Actual)}
	case InvalidArgumentTypeForFunction:
		args = []string{d.Function, types.Key(d.Expected), types.Key(d.Actual)}
	case NullOrMissingFunctionArgument:
		args = []string{d.Function}
	case IncorrectNumberOfArgumentsToFunctionCall:
		args = []string{d.Function, d.Expected.String(), strconv.Itoa(d.Actual)}
	case NoSuchFunction:
		args = []string{d.Function}
	case UndefinedVariable:
		args = []string{d.Name}
	case nil:
		return ""
	}
	return d.Code() + "(" + strings.Join(args, "; ") + ")"
}

func typeList(ts []types.StaticType, render func(types.StaticType) string) string {
	s := make([]string, 0, len(ts))
	for _, t := range ts {
		s = append(s, render(t))
	}
	return "[" + strings.Join(s, ", ") + "]"
}
