package ast

import "fmt"

type Operator int

const (
	OpNone Operator = iota
	OpAdd
	OpSub
	OpMult
	OpDiv
	OpMod
	OpConcat
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAnd
	OpOr
	OpNot
	OpNeg
	OpPos
)

// Category groups the operators that share operand validation and fallback types.
type Category int

const (
	CategoryNone Category = iota
	CategoryArithmetic
	CategoryComparison
	CategoryEquality
	CategoryConcat
	CategoryLogical
)

func (op Operator) Category() Category {
	switch op {
	case OpAdd, OpSub, OpMult, OpDiv, OpMod, OpNeg, OpPos:
		return CategoryArithmetic
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return CategoryComparison
	case OpEqual, OpNotEqual:
		return CategoryEquality
	case OpConcat:
		return CategoryConcat
	case OpAnd, OpOr, OpNot:
		return CategoryLogical
	}
	return CategoryNone
}

func (op Operator) String() string {
	switch op {
	case OpAdd, OpPos:
		return "+"
	case OpSub, OpNeg:
		return "-"
	case OpMult:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpConcat:
		return "||"
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEqual:
		return ">="
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpNot:
		return "NOT"
	}

	return fmt.Sprintf("operator(%d)", int(op))
}

// ParseOperator maps the textual form of a binary operator, or of a unary one when unary
// is set, to its Operator.
func ParseOperator(s string, unary bool) (Operator, bool) {
	if unary {
		switch s {
		case "NOT", "not":
			return OpNot, true
		case "-":
			return OpNeg, true
		case "+":
			return OpPos, true
		}
		return OpNone, false
	}

	switch s {
	case "+":
		return OpAdd, true
	case "-":
		return OpSub, true
	case "*":
		return OpMult, true
	case "/":
		return OpDiv, true
	case "%":
		return OpMod, true
	case "||":
		return OpConcat, true
	case "=":
		return OpEqual, true
	case "!=", "<>":
		return OpNotEqual, true
	case "<":
		return OpLess, true
	case "<=":
		return OpLessEqual, true
	case ">":
		return OpGreater, true
	case ">=":
		return OpGreaterEqual, true
	case "AND", "and":
		return OpAnd, true
	case "OR", "or":
		return OpOr, true
	}
	return OpNone, false
}
