package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, in string) Expr {
	t.Helper()
	e, err := UnmarshalExpr([]byte(in), NewBuilder())
	require.NoError(t, err)
	return e
}

func TestStringer(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{in: `{binary: "+", lhs: {var: x}, rhs: 1}`, expected: "x + 1"},
		{in: `{binary: AND, lhs: {binary: "<", lhs: {var: a}, rhs: 2}, rhs: {unary: NOT, operand: {var: b, scope: local}}}`, expected: "(a < 2) AND (NOT @b)"},
		{in: `{like: {var: s}, pattern: "a%", not: true}`, expected: "s NOT LIKE 'a%'"},
		{in: `{between: {var: n}, from: 1, to: 10}`, expected: "n BETWEEN 1 AND 10"},
		{in: `{in: {var: n}, rows: [1, 2]}`, expected: "n IN (1, 2)"},
		{in: `{in: {var: n}, collection: {list: [1]}}`, expected: "n IN [1]"},
		{in: `{is: {var: n}, type: MISSING, not: true}`, expected: "n IS NOT MISSING"},
		{in: `{cast: {var: n}, as: STRING}`, expected: "CAST(n AS STRING)"},
		{in: `{nullif: [{var: a}, 0]}`, expected: "NULLIF(a, 0)"},
		{in: `{coalesce: [{var: a}, null]}`, expected: "COALESCE(a, NULL)"},
		{in: `{case: {whens: [{when: {var: c}, then: x}], else: null}}`, expected: "CASE WHEN c THEN 'x' ELSE NULL END"},
		{in: `{case: {value: {var: v}, whens: [{when: 1, then: 2}]}}`, expected: "CASE v WHEN 1 THEN 2 END"},
		{in: `{field: b, of: {index: 0, of: {var: a}}}`, expected: "a[0].b"},
		{in: `{call: upper, args: ["it's"]}`, expected: "upper('it''s')"},
		{in: `{bag: [1, {struct: [{key: k, value: true}]}]}`, expected: "<<1, {'k': TRUE}>>"},
		{in: `{sexp: []}`, expected: "SEXP()"},
		{in: `{agg: count}`, expected: "count(*)"},
		{in: `{agg: sum, arg: {var: x}, distinct: true}`, expected: "sum(DISTINCT x)"},
		{in: `{lit: SYMBOL, value: abc}`, expected: "`abc`"},
		{in: `{lit: MISSING}`, expected: "MISSING"},
		{in: `{lit: DECIMAL}`, expected: "<DECIMAL>"},
		{in: `1.5`, expected: "1.5"},
		{in: `{param: 1}`, expected: "?"},
		{
			in: `
select:
  project: {items: [{expr: {field: a, of: {var: t}}, as: x}, {all: {var: u}}]}
  from: [{scan: {var: tbl}, as: t, at: i}, {scan: {var: other}, as: u}]
  where: {binary: ">", lhs: {field: a, of: {var: t}}, rhs: 1}
  order_by: [{expr: {var: x}, desc: true}]
  limit: 10
`,
			expected: "SELECT t.a AS x, u.* FROM tbl AS t AT i CROSS JOIN other AS u WHERE t.a > 1 ORDER BY x DESC LIMIT 10",
		},
		{
			in: `
select:
  project: {value: {var: k}}
  from: {join: left, left: {scan: {var: a}, as: x}, right: {scan: {var: b}, as: y}, on: true}
  group_by: {keys: [{expr: {field: k, of: {var: x}}, as: k}], group_as: g}
  having: {binary: ">", lhs: {agg: count}, rhs: 1}
`,
			expected: "SELECT VALUE k FROM a AS x LEFT JOIN b AS y ON TRUE GROUP BY x.k AS k GROUP AS g HAVING count(*) > 1",
		},
		{in: `{select: {project: "*", from: {scan: {var: t}}, offset: 2}}`, expected: "SELECT * FROM t OFFSET 2"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			e := mustDecode(t, tc.in)
			assert.Equal(t, tc.expected, e.String())
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []string{
		`{unary: "*", operand: 1}`,
		`{binary: "+", lhs: 1}`,
		`{bogus: 1}`,
		`[1, 2]`,
		`{var: x, scope: outer}`,
		`{var: x, loc: "a:b"}`,
		`{nullif: [1]}`,
		`{lit: NOPE}`,
		`{select: {from: {scan: {var: t}}}}`,
		`{select: {project: "*", from: {join: sideways, left: {scan: 1}, right: {scan: 2}}}}`,
		``,
	}

	for _, tc := range tests {
		t.Run(tc, func(t *testing.T) {
			_, err := UnmarshalExpr([]byte(tc), NewBuilder())
			require.Error(t, err)
		})
	}
}

func TestDecodeLocations(t *testing.T) {
	e := mustDecode(t, "binary: '+'\nlhs: {var: x, loc: \"3:7:1\"}\nrhs: 10\n")

	bin, ok := e.(*Binary)
	require.True(t, ok)
	assert.Equal(t, Location{Line: 1, Column: 1}, bin.Loc())
	assert.Equal(t, Location{Line: 3, Column: 7, Length: 1}, bin.LHS.Loc())
	assert.Equal(t, Location{Line: 3, Column: 6, Length: 2}, bin.RHS.Loc())
	assert.Equal(t, "3:7:1", bin.LHS.Loc().String())
}

func TestChildren(t *testing.T) {
	e := mustDecode(t, `
select:
  project: {items: [{expr: {var: p}}]}
  from: {join: inner, left: {scan: {var: a}}, right: {scan: {var: b}}, on: {var: on}}
  where: {var: w}
  group_by: {keys: [{expr: {var: k}}]}
  having: {var: h}
  order_by: [{expr: {var: o}}]
  limit: {var: l}
  offset: {var: off}
`)

	var names []string
	for _, c := range Children(e) {
		names = append(names, c.String())
	}
	assert.Equal(t, []string{"a", "b", "on", "w", "k", "h", "p", "o", "l", "off"}, names)

	assert.Empty(t, Children(mustDecode(t, `{var: x}`)))
	assert.Len(t, Children(mustDecode(t, `{like: {var: s}, pattern: "a", escape: "!"}`)), 3)
	assert.Len(t, Children(mustDecode(t, `{case: {value: 1, whens: [{when: 2, then: 3}], else: 4}}`)), 4)
}

func TestInspect(t *testing.T) {
	e := mustDecode(t, `{binary: "+", lhs: {call: abs, args: [{var: x}]}, rhs: 1}`)

	ids := map[NodeID]struct{}{}
	Inspect(e, func(n Expr) bool {
		ids[n.ID()] = struct{}{}
		return true
	})
	assert.Len(t, ids, 4)

	var visited []string
	Inspect(e, func(n Expr) bool {
		visited = append(visited, n.String())
		_, isCall := n.(*Call)
		return !isCall
	})
	assert.Equal(t, []string{"abs(x) + 1", "abs(x)", "1"}, visited)
}

func TestOperators(t *testing.T) {
	tests := []struct {
		in       string
		unary    bool
		op       Operator
		category Category
	}{
		{in: "+", op: OpAdd, category: CategoryArithmetic},
		{in: "-", unary: true, op: OpNeg, category: CategoryArithmetic},
		{in: "||", op: OpConcat, category: CategoryConcat},
		{in: "<>", op: OpNotEqual, category: CategoryEquality},
		{in: ">=", op: OpGreaterEqual, category: CategoryComparison},
		{in: "and", op: OpAnd, category: CategoryLogical},
		{in: "NOT", unary: true, op: OpNot, category: CategoryLogical},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			op, ok := ParseOperator(tc.in, tc.unary)
			require.True(t, ok)
			assert.Equal(t, tc.op, op)
			assert.Equal(t, tc.category, op.Category())
		})
	}

	_, ok := ParseOperator("NOT", false)
	assert.False(t, ok)
	assert.Equal(t, "operator(99)", Operator(99).String())
}
