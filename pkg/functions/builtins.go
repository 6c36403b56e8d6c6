package functions

import "github.com/sqltype/sqltype/pkg/types"

var sizeable = types.UnionOf(types.AnyCollection, types.OpenStruct())

func builtinSignatures() []Signature {
	text := types.Text
	return []Signature{
		{Name: "upper", Required: []types.StaticType{text}, Returns: types.String},
		{Name: "lower", Required: []types.StaticType{text}, Returns: types.String},
		{Name: "trim", Required: []types.StaticType{text}, Returns: types.String},
		{Name: "char_length", Required: []types.StaticType{text}, Returns: types.Int},
		{Name: "character_length", Required: []types.StaticType{text}, Returns: types.Int},
		{Name: "octet_length", Required: []types.StaticType{text}, Returns: types.Int},
		{Name: "substring", Required: []types.StaticType{text, types.Int}, Optional: []types.StaticType{types.Int}, Returns: types.String},
		{Name: "size", Required: []types.StaticType{sizeable}, Returns: types.Int},
		{Name: "exists", Required: []types.StaticType{types.AnyCollection}, Returns: types.Bool},
		{Name: "utcnow", Returns: types.Timestamp},
		{Name: "to_string", Required: []types.StaticType{types.Timestamp, text}, Returns: types.String},
		{Name: "to_timestamp", Required: []types.StaticType{text}, Optional: []types.StaticType{text}, Returns: types.Timestamp},
		{Name: "abs", Required: []types.StaticType{types.Numeric}, Returns: types.Numeric},
		{Name: "concat_ws", Required: []types.StaticType{text, text}, Variadic: text, Returns: types.String},
	}
}

// Builtins is the catalog of built-in scalar functions.
func Builtins() *Catalog {
	return NewCatalog(builtinSignatures()...)
}
