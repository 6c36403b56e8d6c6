package ast

import (
	"fmt"
	"strconv"

	"github.com/sqltype/sqltype/pkg/types"
)

// NodeID identifies a node within one tree. IDs are assigned by a Builder and are unique per
// Builder.
type NodeID int

// Location is the source span of a node: 1-based line and column plus the span length.
type Location struct {
	Line   int
	Column int
	Length int
}

func (l Location) String() string {
	return strconv.Itoa(l.Line) + ":" + strconv.Itoa(l.Column) + ":" + strconv.Itoa(l.Length)
}

type Node interface {
	fmt.Stringer
	ID() NodeID
	Loc() Location
}

// Expr is an expression node. Trees are immutable once built.
type Expr interface {
	Node
	__expression()
}

type node struct {
	id  NodeID
	loc Location
}

func (n node) ID() NodeID    { return n.id }
func (n node) Loc() Location { return n.loc }
func (node) __expression()   {}

// **********************
// Values
// **********************

// Literal is a folded constant. Type is always a scalar type.
type Literal struct {
	node
	Type  types.StaticType
	Value any
}

// Text returns the literal as a field name when the literal is STRING or SYMBOL.
func (l *Literal) Text() (string, bool) {
	if !types.IsText(l.Type) {
		return "", false
	}
	if s, ok := l.Value.(string); ok {
		return s, true
	}
	return fmt.Sprint(l.Value), true
}

type VarScope int

const (
	// ScopeUnqualified looks in the local scopes first and falls back to the globals.
	ScopeUnqualified VarScope = iota
	ScopeLocal
	ScopeGlobal
)

type VarRef struct {
	node
	Name  string
	Scope VarScope
}

// Parameter is a positional `?` placeholder.
type Parameter struct {
	node
	Index int
}

// **********************
// Operators
// **********************

type Unary struct {
	node
	Op      Operator
	Operand Expr
}

type Binary struct {
	node
	Op  Operator
	LHS Expr
	RHS Expr
}

type Like struct {
	node
	Value   Expr
	Pattern Expr
	Escape  Expr // nil without ESCAPE
	Not     bool
}

type Between struct {
	node
	Value Expr
	From  Expr
	To    Expr
	Not   bool
}

// In tests membership either in a collection valued expression or, when Rows is not nil, in
// an explicit row value list.
type In struct {
	node
	Value      Expr
	Collection Expr
	Rows       []Expr
	Not        bool
}

// TypeRef names a target type of IS or CAST: a builtin type expression or a custom type
// registered with the inferencer.
type TypeRef struct {
	Name string
}

type IsType struct {
	node
	Value Expr
	Type  TypeRef
	Not   bool
}

type Cast struct {
	node
	Value Expr
	Type  TypeRef
}

type NullIf struct {
	node
	LHS Expr
	RHS Expr
}

type Coalesce struct {
	node
	Args []Expr
}

type When struct {
	Cond Expr
	Then Expr
}

// SimpleCase is CASE value WHEN v THEN r ... END.
type SimpleCase struct {
	node
	Value Expr
	Whens []When
	Else  Expr // nil without ELSE
}

// SearchedCase is CASE WHEN cond THEN r ... END.
type SearchedCase struct {
	node
	Whens []When
	Else  Expr
}

// **********************
// Paths, calls, constructors
// **********************

// FieldAccess is `root.name`.
type FieldAccess struct {
	node
	Root Expr
	Name string
}

// IndexAccess is `root[index]`.
type IndexAccess struct {
	node
	Root  Expr
	Index Expr
}

type Call struct {
	node
	Name string
	Args []Expr
}

// CallAgg is an aggregate call. Arg is nil for COUNT(*).
type CallAgg struct {
	node
	Name     string
	Distinct bool
	Arg      Expr
}

type Collection struct {
	node
	Shape types.Shape
	Elems []Expr
}

type StructField struct {
	Key   Expr
	Value Expr
}

type StructCons struct {
	node
	Fields []StructField
}

// **********************
// Queries
// **********************

type Select struct {
	node
	Project Projection
	From    FromSource
	Where   Expr
	GroupBy *GroupBy
	Having  Expr
	OrderBy []OrderItem
	Limit   Expr
	Offset  Expr
}

type Projection interface {
	fmt.Stringer
	__projection()
}

type ProjectStar struct{}

type ProjectItem struct {
	Expr  Expr
	Alias string
	// All projects every field of Expr, as in `x.*`.
	All bool
}

type ProjectList struct {
	Items []ProjectItem
}

type ProjectValue struct {
	Expr Expr
}

func (ProjectStar) __projection()  {}
func (ProjectList) __projection()  {}
func (ProjectValue) __projection() {}

type FromSource interface {
	fmt.Stringer
	__fromSource()
}

// FromScan ranges over the value of Expr. As binds each element, At its position and By its
// identity.
type FromScan struct {
	Expr Expr
	As   string
	At   string
	By   string
}

type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinRight
	JoinFull
	JoinCross
)

func (k JoinKind) String() string {
	switch k {
	case JoinInner:
		return "INNER"
	case JoinLeft:
		return "LEFT"
	case JoinRight:
		return "RIGHT"
	case JoinFull:
		return "FULL"
	case JoinCross:
		return "CROSS"
	}
	return fmt.Sprintf("join(%d)", int(k))
}

type FromJoin struct {
	Kind  JoinKind
	Left  FromSource
	Right FromSource
	On    Expr // nil for CROSS joins and comma joins
}

func (FromScan) __fromSource() {}
func (FromJoin) __fromSource() {}

type GroupKey struct {
	Expr  Expr
	Alias string
}

type GroupBy struct {
	Keys    []GroupKey
	GroupAs string
}

type OrderItem struct {
	Expr Expr
	Desc bool
}
