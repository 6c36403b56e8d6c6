package types

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// typeExpr is the grammar of the compact type syntax rendered by StaticType.String:
//
//	INT, STRING(=4), STRING(<=10), LIST(INT), STRUCT{a: INT, ...}, UNION(INT, NULL),
//	NULLABLE(INT), OPTIONAL(INT), ANY
type typeExpr struct {
	Name   string      `parser:"@Ident"`
	Params *paramsExpr `parser:"( '(' @@ ')'"`
	Braced bool        `parser:"| @'{'"`
	Body   *bodyExpr   `parser:"  @@? '}' )?"`
}

type paramsExpr struct {
	Length *lengthExpr `parser:"  @@"`
	Args   []*typeExpr `parser:"| @@ ( ',' @@ )*"`
}

type lengthExpr struct {
	Op string `parser:"@( '=' | '<=' )"`
	N  int    `parser:"@Int"`
}

type bodyExpr struct {
	Fields []*fieldExpr `parser:"@@ ( ',' @@ )*"`
}

type fieldExpr struct {
	Ellipsis bool      `parser:"  @'...'"`
	Name     string    `parser:"| @( Ident | Quoted ) ':'"`
	Type     *typeExpr `parser:"  @@"`
}

var typeParser = participle.MustBuild[typeExpr](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Quoted", Pattern: `"(\\.|[^"\\])*"`},
		{Name: "Int", Pattern: `[0-9]+`},
		{Name: "Punct", Pattern: `\.\.\.|<=|[(){},:=]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})),
	participle.Unquote("Quoted"),
	participle.Elide("Whitespace"),
)

var scalarNames = map[string]StaticType{
	"int2":      Int2,
	"smallint":  Int2,
	"int4":      Int4,
	"int8":      Int8,
	"bigint":    Int8,
	"int":       Int,
	"integer":   Int,
	"float":     Float,
	"decimal":   Decimal,
	"string":    String,
	"symbol":    Symbol,
	"bool":      Bool,
	"boolean":   Bool,
	"timestamp": Timestamp,
	"blob":      Blob,
	"clob":      Clob,
	"null":      Null,
	"missing":   Missing,
	"any":       Any,
}

// Parse reads a type expression. Keywords are case-insensitive.
func Parse(s string) (StaticType, error) {
	expr, err := typeParser.ParseString("", s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid type expression %q", s)
	}
	t, err := expr.build()
	if err != nil {
		return nil, errors.Wrapf(err, "invalid type expression %q", s)
	}
	return t, nil
}

func (e *typeExpr) args() []*typeExpr {
	if e.Params == nil {
		return nil
	}
	return e.Params.Args
}

func (e *typeExpr) build() (StaticType, error) {
	name := strings.ToLower(e.Name)

	if e.Braced && name != "struct" {
		return nil, errors.Errorf("%s does not take fields", e.Name)
	}
	if e.Params != nil && e.Params.Length != nil && name != "string" {
		return nil, errors.Errorf("%s does not take a length", e.Name)
	}

	switch name {
	case "string":
		if e.Params == nil {
			return String, nil
		}
		if e.Params.Length == nil {
			return nil, errors.New("string takes a length constraint, e.g. string(<=10)")
		}
		if e.Params.Length.Op == "=" {
			return StringOf(Equals(e.Params.Length.N)), nil
		}
		return StringOf(UpTo(e.Params.Length.N)), nil
	case "list", "bag", "sexp":
		elem := Any
		switch args := e.args(); len(args) {
		case 0:
		case 1:
			t, err := args[0].build()
			if err != nil {
				return nil, err
			}
			elem = t
		default:
			return nil, errors.Errorf("%s takes one element type, got %d", e.Name, len(args))
		}
		switch name {
		case "list":
			return ListOf(elem), nil
		case "bag":
			return BagOf(elem), nil
		}
		return SexpOf(elem), nil
	case "struct":
		if e.Params != nil {
			return nil, errors.New("struct fields are written in braces")
		}
		if !e.Braced {
			return OpenStruct(), nil
		}
		s := Struct{ContentClosed: true}
		var fields []*fieldExpr
		if e.Body != nil {
			fields = e.Body.Fields
		}
		for _, f := range fields {
			if f.Ellipsis {
				s.ContentClosed = false
				continue
			}
			t, err := f.Type.build()
			if err != nil {
				return nil, err
			}
			s.Fields = append(s.Fields, Field{Name: f.Name, Type: t})
		}
		return s, nil
	case "union", "nullable", "optional":
		args := e.args()
		if len(args) == 0 {
			return nil, errors.Errorf("%s needs at least one type", e.Name)
		}
		members := make([]StaticType, 0, len(args))
		for _, a := range args {
			t, err := a.build()
			if err != nil {
				return nil, err
			}
			members = append(members, t)
		}
		switch name {
		case "nullable":
			members = append(members, Null)
		case "optional":
			members = append(members, Missing)
		}
		return UnionOf(members...), nil
	}

	t, ok := scalarNames[name]
	if !ok {
		return nil, errors.Errorf("unknown type %s", e.Name)
	}
	if e.Params != nil {
		return nil, errors.Errorf("%s takes no parameters", e.Name)
	}
	return t, nil
}
