package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tt := []struct {
		in       string
		expected StaticType
	}{
		{"INT", Int},
		{"int4", Int4},
		{"bigint", Int8},
		{"any", Any},
		{"STRING", String},
		{"string(=4)", StringOf(Equals(4))},
		{"STRING(<=10)", StringOf(UpTo(10))},
		{"list", ListOf(Any)},
		{"LIST(INT)", ListOf(Int)},
		{"bag(list(string))", BagOf(ListOf(String))},
		{"sexp(any)", SexpOf(Any)},
		{"struct", OpenStruct()},
		{"STRUCT{}", ClosedStruct()},
		{"STRUCT{...}", OpenStruct()},
		{"struct{a: INT, b: STRING}", ClosedStruct(Field{"a", Int}, Field{"b", String})},
		{`struct{"first name": STRING, ...}`, OpenStruct(Field{"first name", String})},
		{"union(INT, STRING)", UnionOf(Int, String)},
		{"union(INT)", Int},
		{"nullable(INT)", UnionOf(Int, Null)},
		{"optional(nullable(BOOL))", UnionOf(Bool, Null, Missing)},
		{"UNION(NULL, MISSING)", NullOrMissing},
	}

	for _, tc := range tt {
		t.Run(tc.in, func(t *testing.T) {
			actual, err := Parse(tc.in)
			require.NoError(t, err)
			assert.True(t, Equal(tc.expected, actual), "expected %s, got %s", tc.expected, actual)
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, st := range append(AllTypes,
		Numeric,
		AnyCollection,
		StringOf(UpTo(7)),
		AsNullable(ClosedStruct(Field{"a b", ListOf(Int)}, Field{"c", OpenStruct(Field{"d", Bool})})),
	) {
		t.Run(st.String(), func(t *testing.T) {
			parsed, err := Parse(st.String())
			require.NoError(t, err)
			assert.True(t, Equal(st, parsed), "round trip of %s gave %s", st, parsed)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"nope",
		"INT(3)",
		"list(INT, STRING)",
		"struct(INT)",
		"INT{a: INT}",
		"union(",
		"string(INT)",
		"nullable",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
		})
	}
}
