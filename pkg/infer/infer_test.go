package infer

import (
	"bytes"
	"sync"
	"testing"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sqltype/sqltype/pkg/ast"
	"github.com/sqltype/sqltype/pkg/functions"
	"github.com/sqltype/sqltype/pkg/problem"
	"github.com/sqltype/sqltype/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func mustDecode(t *testing.T, in string) ast.Expr {
	t.Helper()
	e, err := ast.UnmarshalExpr([]byte(in), ast.NewBuilder())
	require.NoError(t, err)
	return e
}

func assertType(t *testing.T, expected, actual types.StaticType) {
	t.Helper()
	assert.Truef(t, types.Equal(expected, actual), "expected %s, got %s", expected, actual)
}

func TestChainedOperatorReportsFirstMismatch(t *testing.T) {
	// 1 + 'a' + 2 + 3
	root := mustDecode(t, `
binary: "+"
loc: "1:13:1"
lhs:
  binary: "+"
  loc: "1:9:1"
  lhs:
    binary: "+"
    loc: "1:3:1"
    lhs: 1
    rhs: a
  rhs: 2
rhs: 3
`)

	res := New(Options{}).Infer(root, nil)
	require.IsType(t, &Failure{}, res)
	assert.Equal(t, root, res.(*Failure).Root)

	assert.Equal(t, []problem.Problem{
		problem.Error(ast.Location{Line: 1, Column: 3, Length: 1}, problem.IncompatibleDatatypesForOp{
			ArgTypes: []types.StaticType{types.Int, types.String},
			Op:       "+",
		}),
	}, res.Problems())
	assertType(t, types.UnionOf(types.Int, types.Float, types.Decimal), res.Type())
}

func TestEveryNodeAnnotated(t *testing.T) {
	root := mustDecode(t, `
select:
  project:
    items:
      - {expr: {field: a, of: {var: t}}, as: x}
      - {expr: {call: upper, args: [{field: b, of: {var: t}}]}}
      - {all: {var: u}}
  from: {join: left, left: {scan: {var: tbl}, as: t, at: i}, right: {scan: {var: other}, as: u}, on: {binary: "=", lhs: {var: i}, rhs: 1}}
  where: {case: {whens: [{when: {binary: ">", lhs: {field: a, of: {var: t}}, rhs: 1}, then: true}], else: {lit: MISSING}}}
  order_by: [{expr: {var: x}}]
  limit: {coalesce: [null, 10]}
`)
	globals := Bindings{
		"tbl":   types.ListOf(types.ClosedStruct(types.Field{Name: "a", Type: types.Int}, types.Field{Name: "b", Type: types.String})),
		"other": types.BagOf(types.ClosedStruct(types.Field{Name: "c", Type: types.Bool})),
	}

	res := New(Options{}).Infer(root, globals)

	visited := 0
	ast.Inspect(root, func(e ast.Expr) bool {
		visited++
		typ, ok := res.Annotations().TypeOf(e)
		assert.Truef(t, ok, "%s at %s is not annotated", e, e.Loc())
		assert.NotNil(t, typ)
		return true
	})
	assert.Equal(t, visited, len(res.Annotations()))

	orderBy := root.(*ast.Select).OrderBy[0].Expr
	typ, _ := res.Annotations().TypeOf(orderBy)
	assertType(t, types.Int, typ)

	assertType(t, types.ListOf(types.ClosedStruct(
		types.Field{Name: "x", Type: types.Int},
		types.Field{Name: "_2", Type: types.String},
		types.Field{Name: "c", Type: types.AsNullable(types.Bool)},
	)), res.Type())
}

func TestSuccessWithWarnings(t *testing.T) {
	root := mustDecode(t, `{binary: "+", lhs: {var: x}, rhs: null}`)
	res := New(Options{}).Infer(root, Bindings{"x": types.Int})

	require.IsType(t, &Success{}, res)
	require.Len(t, res.Problems(), 1)
	assert.Equal(t, problem.SeverityWarning, res.Problems()[0].Severity)
	assertType(t, types.Null, res.Type())
}

func TestScopes(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected types.StaticType
	}{
		{
			name:     "local shadows global",
			query:    `{select: {project: {value: {var: t}}, from: {scan: {var: tbl}, as: t}}}`,
			expected: types.BagOf(types.Int),
		},
		{
			name:     "global reference skips locals",
			query:    `{select: {project: {value: {var: t, scope: global}}, from: {scan: {var: tbl}, as: t}}}`,
			expected: types.BagOf(types.String),
		},
		{
			name:     "nested query sees outer variables",
			query:    `{select: {project: {value: {select: {project: {value: {var: t}}, from: {scan: {var: tbl}, as: u}}}}, from: {scan: {var: tbl}, as: t}}}`,
			expected: types.BagOf(types.BagOf(types.Int)),
		},
		{
			name:     "derived scan alias",
			query:    `{select: {project: {value: {var: tbl}}, from: {scan: {var: tbl}}}}`,
			expected: types.BagOf(types.Int),
		},
	}

	inf := New(Options{})
	globals := Bindings{"tbl": types.BagOf(types.Int), "t": types.String}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := inf.Infer(mustDecode(t, tc.query), globals)
			require.IsType(t, &Success{}, res, "%v", res.Problems())
			assertType(t, tc.expected, res.Type())
		})
	}
}

func TestVariablesDoNotLeakOutOfQueries(t *testing.T) {
	root := mustDecode(t, `
list:
  - {select: {project: {value: {var: t}}, from: {scan: {var: tbl}, as: t}}}
  - {var: t}
`)
	res := New(Options{}).Infer(root, Bindings{"tbl": types.BagOf(types.Int)})

	require.IsType(t, &Failure{}, res)
	require.Len(t, res.Problems(), 1)
	assert.Equal(t, problem.UndefinedVariable{Name: "t"}, res.Problems()[0].Detail)
}

func TestCaseArmDiagnostics(t *testing.T) {
	root := mustDecode(t, `
case:
  whens:
    - when: 1
      then: {binary: "+", lhs: 1, rhs: true}
    - when: x
      then: 2
`)
	res := New(Options{}).Infer(root, nil)

	whens := root.(*ast.SearchedCase).Whens
	ps := res.Problems()
	require.Len(t, ps, 3)

	assert.Equal(t, "INCOMPATIBLE_DATATYPES_FOR_OP", ps[0].Detail.Code())
	assert.Equal(t, whens[0].Then.Loc(), ps[0].Location)

	for i, p := range ps[1:] {
		assert.Equal(t, problem.Error(whens[i].Cond.Loc(), problem.IncompatibleDataTypeForExpr{
			Expected: types.Bool,
			Actual:   res.Annotations()[whens[i].Cond.ID()],
		}), p)
	}
	assertType(t, types.UnionOf(types.Numeric, types.Int, types.Null), res.Type())
}

func TestSameProblemAtDistinctLocations(t *testing.T) {
	root := mustDecode(t, `
list:
  - {call: upper, args: [1], loc: "1:1:5"}
  - {call: upper, args: [1], loc: "2:1:5"}
`)
	res := New(Options{}).Infer(root, nil)
	assert.Len(t, res.Problems(), 2)
}

func TestCustomTypes(t *testing.T) {
	inf := New(Options{CustomTypes: map[string]types.StaticType{"Money": types.Decimal}})

	res := inf.Infer(mustDecode(t, `{cast: 1, as: money}`), nil)
	assertType(t, types.Decimal, res.Type())

	res = inf.Infer(mustDecode(t, `{cast: 1, as: unknown_type}`), nil)
	assertType(t, types.Any, res.Type())
}

func TestCustomCatalog(t *testing.T) {
	catalog := functions.NewCatalog(functions.Signature{
		Name:     "distance",
		Required: []types.StaticType{types.Float, types.Float},
		Returns:  types.Decimal,
	})
	inf := New(Options{Catalog: catalog})

	res := inf.Infer(mustDecode(t, `{call: DISTANCE, args: [1.5, 2.5]}`), nil)
	require.IsType(t, &Success{}, res)
	assertType(t, types.Decimal, res.Type())

	res = inf.Infer(mustDecode(t, `{call: upper, args: [a]}`), nil)
	require.IsType(t, &Failure{}, res)
	assert.Equal(t, problem.NoSuchFunction{Function: "upper"}, res.Problems()[0].Detail)
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := level.NewFilter(kitlog.NewLogfmtLogger(&buf), level.AllowDebug())

	New(Options{Logger: logger}).Infer(mustDecode(t, `{binary: "+", lhs: 1, rhs: 2}`), nil)

	out := buf.String()
	assert.Contains(t, out, `msg="typed node"`)
	assert.Contains(t, out, `msg="inferred query type"`)
	assert.Contains(t, out, "type=INT")
}

func TestConcurrentInfer(t *testing.T) {
	inf := New(Options{})
	root := mustDecode(t, `{select: {project: {value: {binary: "+", lhs: {var: t}, rhs: 1.5}}, from: {scan: {var: tbl}, as: t}}}`)
	globals := Bindings{"tbl": types.BagOf(types.Int)}

	var wg sync.WaitGroup
	results := make([]Result, 8)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = inf.Infer(root, globals)
		}()
	}
	wg.Wait()

	for _, res := range results {
		assertType(t, types.BagOf(types.Float), res.Type())
		assert.Equal(t, results[0].Annotations(), res.Annotations())
	}
}
