package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind enumerates the scalar kinds.
type Kind int

const (
	KindInt2 Kind = iota
	KindInt4
	KindInt8
	KindInt
	KindFloat
	KindDecimal
	KindString
	KindSymbol
	KindBool
	KindTimestamp
	KindBlob
	KindClob
	KindNull
	KindMissing
)

func (k Kind) String() string {
	switch k {
	case KindInt2:
		return "INT2"
	case KindInt4:
		return "INT4"
	case KindInt8:
		return "INT8"
	case KindInt:
		return "INT"
	case KindFloat:
		return "FLOAT"
	case KindDecimal:
		return "DECIMAL"
	case KindString:
		return "STRING"
	case KindSymbol:
		return "SYMBOL"
	case KindBool:
		return "BOOL"
	case KindTimestamp:
		return "TIMESTAMP"
	case KindBlob:
		return "BLOB"
	case KindClob:
		return "CLOB"
	case KindNull:
		return "NULL"
	case KindMissing:
		return "MISSING"
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// StaticType is the closed set of types: Scalar, Collection, Struct, Union and AnyType.
type StaticType interface {
	fmt.Stringer
	isStaticType()
}

// ConstraintKind describes how a STRING length is bounded.
type ConstraintKind int

const (
	Unconstrained ConstraintKind = iota
	LengthEquals
	LengthUpTo
)

// StringConstraint bounds the length of a STRING. The zero value is unconstrained.
type StringConstraint struct {
	Kind ConstraintKind
	N    int
}

func Equals(n int) StringConstraint { return StringConstraint{Kind: LengthEquals, N: n} }
func UpTo(n int) StringConstraint   { return StringConstraint{Kind: LengthUpTo, N: n} }

// Scalar is a type of a single kind. Length only applies to KindString.
type Scalar struct {
	Kind   Kind
	Length StringConstraint
}

func (Scalar) isStaticType() {}

func (s Scalar) String() string {
	if s.Kind != KindString {
		return s.Kind.String()
	}
	switch s.Length.Kind {
	case LengthEquals:
		return "STRING(=" + strconv.Itoa(s.Length.N) + ")"
	case LengthUpTo:
		return "STRING(<=" + strconv.Itoa(s.Length.N) + ")"
	}
	return "STRING"
}

// Shape is the ordering discipline of a collection.
type Shape int

const (
	ShapeList Shape = iota
	ShapeBag
	ShapeSexp
)

func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "LIST"
	case ShapeBag:
		return "BAG"
	case ShapeSexp:
		return "SEXP"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

type Collection struct {
	Shape   Shape
	Element StaticType
}

func (Collection) isStaticType() {}

func (c Collection) String() string {
	return c.Shape.String() + "(" + c.Element.String() + ")"
}

type Field struct {
	Name string
	Type StaticType
}

// Struct lists its fields in declaration order. A closed struct has no fields other than the
// listed ones, an open struct may carry more fields of unknown type.
type Struct struct {
	Fields        []Field
	ContentClosed bool
}

func (Struct) isStaticType() {}

// Field returns the type of the first field called name.
func (s Struct) Field(name string) (StaticType, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

func (s Struct) String() string {
	return renderStruct(s.Fields, s.ContentClosed, func(t StaticType) string { return t.String() })
}

// Union holds normalized alternatives: no nested unions, no duplicates, no AnyType and
// never a single member. Build it with UnionOf.
type Union struct {
	members []StaticType
}

func (Union) isStaticType() {}

// Members returns the alternatives in the order they were first seen.
func (u Union) Members() []StaticType {
	return append([]StaticType(nil), u.members...)
}

func (u Union) String() string {
	s := make([]string, 0, len(u.members))
	for _, m := range u.members {
		s = append(s, m.String())
	}
	return "UNION(" + strings.Join(s, ", ") + ")"
}

// AnyType is the top type.
type AnyType struct{}

func (AnyType) isStaticType()  {}
func (AnyType) String() string { return "ANY" }

var (
	Int2      StaticType = Scalar{Kind: KindInt2}
	Int4      StaticType = Scalar{Kind: KindInt4}
	Int8      StaticType = Scalar{Kind: KindInt8}
	Int       StaticType = Scalar{Kind: KindInt}
	Float     StaticType = Scalar{Kind: KindFloat}
	Decimal   StaticType = Scalar{Kind: KindDecimal}
	String    StaticType = Scalar{Kind: KindString}
	Symbol    StaticType = Scalar{Kind: KindSymbol}
	Bool      StaticType = Scalar{Kind: KindBool}
	Timestamp StaticType = Scalar{Kind: KindTimestamp}
	Blob      StaticType = Scalar{Kind: KindBlob}
	Clob      StaticType = Scalar{Kind: KindClob}
	Null      StaticType = Scalar{Kind: KindNull}
	Missing   StaticType = Scalar{Kind: KindMissing}
	Any       StaticType = AnyType{}

	NullOrMissing = UnionOf(Null, Missing)
	Numeric       = UnionOf(Int2, Int4, Int8, Int, Float, Decimal)
	Text          = UnionOf(String, Symbol)
	AnyCollection = UnionOf(ListOf(Any), BagOf(Any), SexpOf(Any))

	// AllTypes is every concrete kind. Collections and structs appear once with unknown content.
	AllTypes = []StaticType{
		Int2, Int4, Int8, Int, Float, Decimal,
		String, Symbol, Bool, Timestamp, Blob, Clob,
		Null, Missing,
		ListOf(Any), BagOf(Any), SexpOf(Any), OpenStruct(),
	}
)

func StringOf(c StringConstraint) StaticType { return Scalar{Kind: KindString, Length: c} }

func ListOf(t StaticType) StaticType { return Collection{Shape: ShapeList, Element: t} }
func BagOf(t StaticType) StaticType  { return Collection{Shape: ShapeBag, Element: t} }
func SexpOf(t StaticType) StaticType { return Collection{Shape: ShapeSexp, Element: t} }

func ClosedStruct(fields ...Field) StaticType { return Struct{Fields: fields, ContentClosed: true} }
func OpenStruct(fields ...Field) StaticType   { return Struct{Fields: fields} }

// UnionOf flattens nested unions and drops structurally equal duplicates, keeping first-seen
// order. AnyType absorbs every other member and a single remaining member is returned as is.
func UnionOf(ts ...StaticType) StaticType {
	var members []StaticType
	seen := map[string]struct{}{}

	var add func(t StaticType) bool
	add = func(t StaticType) bool {
		switch t := t.(type) {
		case nil:
			return true
		case AnyType:
			return false
		case Union:
			for _, m := range t.members {
				if !add(m) {
					return false
				}
			}
			return true
		}
		k := Key(t)
		if _, ok := seen[k]; ok {
			return true
		}
		seen[k] = struct{}{}
		members = append(members, t)
		return true
	}

	for _, t := range ts {
		if !add(t) {
			return Any
		}
	}

	if len(members) == 1 {
		return members[0]
	}
	return Union{members: members}
}

func AsNullable(t StaticType) StaticType { return UnionOf(t, Null) }
func AsOptional(t StaticType) StaticType { return UnionOf(t, Missing) }

// Equal reports structural equality. Union member order and struct field order are ignored.
func Equal(a, b StaticType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Key(a) == Key(b)
}

// Key is the canonical rendering of t: like String but with union members and struct
// fields sorted.
func Key(t StaticType) string {
	switch t := t.(type) {
	case Union:
		keys := make([]string, 0, len(t.members))
		for _, m := range t.members {
			keys = append(keys, Key(m))
		}
		sort.Strings(keys)
		return "UNION(" + strings.Join(keys, ", ") + ")"
	case Collection:
		return t.Shape.String() + "(" + Key(t.Element) + ")"
	case Struct:
		fields := append([]Field(nil), t.Fields...)
		sort.SliceStable(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
		return renderStruct(fields, t.ContentClosed, Key)
	case nil:
		return "<nil>"
	}
	return t.String()
}

func renderStruct(fields []Field, closed bool, render func(StaticType) string) string {
	s := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		s = append(s, fieldName(f.Name)+": "+render(f.Type))
	}
	if !closed {
		s = append(s, "...")
	}
	return "STRUCT{" + strings.Join(s, ", ") + "}"
}

func fieldName(n string) string {
	if n == "" {
		return strconv.Quote(n)
	}
	for i, r := range n {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return strconv.Quote(n)
	}
	return n
}
