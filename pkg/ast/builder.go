package ast

import "github.com/sqltype/sqltype/pkg/types"

// Builder creates nodes with unique ids. Parsers and normalizers sitting in front of the
// inferencer use one Builder per tree.
type Builder struct {
	next NodeID
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) node(loc Location) node {
	b.next++
	return node{id: b.next, loc: loc}
}

func (b *Builder) Lit(loc Location, t types.StaticType, v any) *Literal {
	return &Literal{node: b.node(loc), Type: t, Value: v}
}

func (b *Builder) Var(loc Location, name string, scope VarScope) *VarRef {
	return &VarRef{node: b.node(loc), Name: name, Scope: scope}
}

func (b *Builder) Param(loc Location, index int) *Parameter {
	return &Parameter{node: b.node(loc), Index: index}
}

func (b *Builder) Unary(loc Location, op Operator, operand Expr) *Unary {
	return &Unary{node: b.node(loc), Op: op, Operand: operand}
}

// Binary creates an operator node. loc is the location of the operator itself.
func (b *Builder) Binary(loc Location, op Operator, lhs, rhs Expr) *Binary {
	return &Binary{node: b.node(loc), Op: op, LHS: lhs, RHS: rhs}
}

func (b *Builder) Like(loc Location, value, pattern, escape Expr, not bool) *Like {
	return &Like{node: b.node(loc), Value: value, Pattern: pattern, Escape: escape, Not: not}
}

func (b *Builder) Between(loc Location, value, from, to Expr, not bool) *Between {
	return &Between{node: b.node(loc), Value: value, From: from, To: to, Not: not}
}

func (b *Builder) InCollection(loc Location, value, collection Expr, not bool) *In {
	return &In{node: b.node(loc), Value: value, Collection: collection, Not: not}
}

func (b *Builder) InRows(loc Location, value Expr, rows []Expr, not bool) *In {
	if rows == nil {
		rows = []Expr{}
	}
	return &In{node: b.node(loc), Value: value, Rows: rows, Not: not}
}

func (b *Builder) Is(loc Location, value Expr, t TypeRef, not bool) *IsType {
	return &IsType{node: b.node(loc), Value: value, Type: t, Not: not}
}

func (b *Builder) Cast(loc Location, value Expr, t TypeRef) *Cast {
	return &Cast{node: b.node(loc), Value: value, Type: t}
}

func (b *Builder) NullIf(loc Location, lhs, rhs Expr) *NullIf {
	return &NullIf{node: b.node(loc), LHS: lhs, RHS: rhs}
}

func (b *Builder) Coalesce(loc Location, args ...Expr) *Coalesce {
	return &Coalesce{node: b.node(loc), Args: args}
}

func (b *Builder) SimpleCase(loc Location, value Expr, whens []When, els Expr) *SimpleCase {
	return &SimpleCase{node: b.node(loc), Value: value, Whens: whens, Else: els}
}

func (b *Builder) SearchedCase(loc Location, whens []When, els Expr) *SearchedCase {
	return &SearchedCase{node: b.node(loc), Whens: whens, Else: els}
}

func (b *Builder) Field(loc Location, root Expr, name string) *FieldAccess {
	return &FieldAccess{node: b.node(loc), Root: root, Name: name}
}

func (b *Builder) Index(loc Location, root, index Expr) *IndexAccess {
	return &IndexAccess{node: b.node(loc), Root: root, Index: index}
}

func (b *Builder) Call(loc Location, name string, args ...Expr) *Call {
	return &Call{node: b.node(loc), Name: name, Args: args}
}

func (b *Builder) CallAgg(loc Location, name string, distinct bool, arg Expr) *CallAgg {
	return &CallAgg{node: b.node(loc), Name: name, Distinct: distinct, Arg: arg}
}

func (b *Builder) Collection(loc Location, shape types.Shape, elems ...Expr) *Collection {
	return &Collection{node: b.node(loc), Shape: shape, Elems: elems}
}

func (b *Builder) Struct(loc Location, fields ...StructField) *StructCons {
	return &StructCons{node: b.node(loc), Fields: fields}
}

// Select creates a query node. The clauses are filled in by the caller before the tree is
// handed out.
func (b *Builder) Select(loc Location, project Projection, from FromSource) *Select {
	return &Select{node: b.node(loc), Project: project, From: from}
}
