package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var typeComparer = cmp.Comparer(Equal)

func TestUnionOf(t *testing.T) {
	tt := []struct {
		name     string
		in       []StaticType
		expected StaticType
	}{
		{"singleton collapses", []StaticType{Int}, Int},
		{"duplicates collapse", []StaticType{Int, Int}, Int},
		{"nested unions flatten", []StaticType{UnionOf(Int, String), UnionOf(String, Bool)}, UnionOf(Int, String, Bool)},
		{"any absorbs", []StaticType{Int, Any, String}, Any},
		{"structural dedupe", []StaticType{ListOf(Int), ListOf(Int), ListOf(String)}, UnionOf(ListOf(Int), ListOf(String))},
		{"nil members are ignored", []StaticType{nil, Bool}, Bool},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			actual := UnionOf(tc.in...)
			if diff := cmp.Diff(tc.expected, actual, typeComparer); diff != "" {
				t.Errorf("unexpected union (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnionKeepsFirstSeenOrder(t *testing.T) {
	u, ok := UnionOf(String, Int, String, Null).(Union)
	require.True(t, ok)
	assert.Equal(t, []StaticType{String, Int, Null}, u.Members())
	assert.Equal(t, "UNION(STRING, INT, NULL)", u.String())
}

func TestEqualIgnoresOrder(t *testing.T) {
	assert.True(t, Equal(UnionOf(Int, String), UnionOf(String, Int)))
	assert.True(t, Equal(
		ClosedStruct(Field{"a", Int}, Field{"b", String}),
		ClosedStruct(Field{"b", String}, Field{"a", Int}),
	))
	assert.False(t, Equal(ClosedStruct(Field{"a", Int}), OpenStruct(Field{"a", Int})))
	assert.False(t, Equal(StringOf(Equals(4)), String))
	assert.False(t, Equal(ListOf(Int), BagOf(Int)))
}

func TestNullableOptionalIdempotent(t *testing.T) {
	n := AsNullable(Int)
	assert.True(t, Equal(n, AsNullable(n)))
	assert.True(t, Equal(n, UnionOf(Int, Null)))

	o := AsOptional(Int)
	assert.True(t, Equal(o, AsOptional(o)))
	assert.True(t, Equal(AsOptional(n), UnionOf(Int, Null, Missing)))
	assert.True(t, IsNullOrMissing(AsNullable(Missing)))
}

func TestClassification(t *testing.T) {
	tt := []struct {
		t                               StaticType
		numeric, text, lob, unknown     bool
		mayBeNull, mayBeMissing, exists bool
	}{
		{t: Int2, numeric: true},
		{t: Decimal, numeric: true},
		{t: Symbol, text: true},
		{t: StringOf(UpTo(3)), text: true},
		{t: Clob, lob: true},
		{t: Null, unknown: true, mayBeNull: true},
		{t: Missing, unknown: true, mayBeMissing: true},
		{t: NullOrMissing, unknown: true, mayBeNull: true, mayBeMissing: true},
		{t: AsNullable(Int), mayBeNull: true},
		{t: Any, mayBeNull: true, mayBeMissing: true},
	}

	for _, tc := range tt {
		t.Run(tc.t.String(), func(t *testing.T) {
			assert.Equal(t, tc.numeric, IsNumeric(tc.t))
			assert.Equal(t, tc.text, IsText(tc.t))
			assert.Equal(t, tc.lob, IsLob(tc.t))
			assert.Equal(t, tc.unknown, IsUnknown(tc.t))
			assert.Equal(t, tc.mayBeNull, MayBeNull(tc.t))
			assert.Equal(t, tc.mayBeMissing, MayBeMissing(tc.t))
		})
	}
}

func TestAlternatives(t *testing.T) {
	assert.Len(t, Alternatives(Any), len(AllTypes))
	assert.Equal(t, []StaticType{Int}, Alternatives(Int))
	assert.Len(t, Alternatives(Numeric), 6)
	assert.True(t, AnyAlternative(UnionOf(Int, String), IsText))
	assert.False(t, AllAlternatives(UnionOf(Int, String), IsText))
}

func TestAllTypesAreConcrete(t *testing.T) {
	seen := map[string]bool{}
	for _, at := range AllTypes {
		_, isUnion := at.(Union)
		_, isAny := at.(AnyType)
		assert.False(t, isUnion || isAny, at.String())
		assert.False(t, seen[Key(at)], "duplicate %s", at)
		seen[Key(at)] = true
	}
}

func TestWithoutUnknowns(t *testing.T) {
	assert.Nil(t, WithoutUnknowns(NullOrMissing))
	assert.True(t, Equal(Int, WithoutUnknowns(UnionOf(Int, Null, Missing))))
	assert.True(t, Equal(Any, WithoutUnknowns(Any)))
}

func TestIsAssignable(t *testing.T) {
	tt := []struct {
		from, to StaticType
		expected bool
	}{
		{Int4, Int, true},
		{Int, Int4, false},
		{Float, Int, false},
		{String, Text, true},
		{StringOf(Equals(3)), String, true},
		{Int, Text, false},
		{ListOf(Int), ListOf(Any), true},
		{ListOf(Int), BagOf(Any), false},
		{ListOf(Int2), ListOf(Int), true},
		{ClosedStruct(Field{"a", Int}), OpenStruct(), true},
		{Bool, Any, true},
	}

	for _, tc := range tt {
		t.Run(tc.from.String()+" to "+tc.to.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, IsAssignable(tc.from, tc.to))
		})
	}
}
