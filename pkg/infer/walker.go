package infer

import (
	"strconv"
	"strings"

	"github.com/go-kit/log/level"

	"github.com/sqltype/sqltype/pkg/ast"
	"github.com/sqltype/sqltype/pkg/functions"
	"github.com/sqltype/sqltype/pkg/problem"
	"github.com/sqltype/sqltype/pkg/rules"
	"github.com/sqltype/sqltype/pkg/types"
)

// walker holds the state of a single Infer call.
type walker struct {
	inf         *Inferencer
	globals     Bindings
	scope       *scope
	problems    *problem.Collector
	annotations Annotations
}

type binding struct {
	name string
	typ  types.StaticType
}

// scope is one level of local variables. The latest binding of a name shadows earlier ones.
type scope struct {
	parent   *scope
	bindings []binding
}

func (s *scope) lookup(name string) (types.StaticType, bool) {
	for ; s != nil; s = s.parent {
		for i := len(s.bindings) - 1; i >= 0; i-- {
			if s.bindings[i].name == name {
				return s.bindings[i].typ, true
			}
		}
	}
	return nil, false
}

func (w *walker) push() {
	w.scope = &scope{parent: w.scope}
}

func (w *walker) pop() {
	w.scope = w.scope.parent
}

func (w *walker) bind(name string, t types.StaticType) {
	w.scope.bindings = append(w.scope.bindings, binding{name: name, typ: t})
}

func (w *walker) add(ps ...problem.Problem) {
	w.problems.Add(ps...)
}

// expr types e after its children and records the result.
func (w *walker) expr(e ast.Expr) types.StaticType {
	t := w.eval(e)
	if t == nil {
		t = types.Any
	}
	w.annotations[e.ID()] = t
	level.Debug(w.inf.logger).Log("msg", "typed node", "node", e.ID(), "loc", e.Loc(), "type", t)
	return t
}

func (w *walker) exprs(es []ast.Expr) []types.StaticType {
	out := make([]types.StaticType, 0, len(es))
	for _, e := range es {
		out = append(out, w.expr(e))
	}
	return out
}

func (w *walker) eval(e ast.Expr) types.StaticType {
	switch e := e.(type) {
	case *ast.Literal:
		return e.Type
	case *ast.VarRef:
		return w.variable(e)
	case *ast.Parameter:
		return types.Any
	case *ast.Unary:
		t, ps := rules.Unary(e.Op, w.expr(e.Operand), e.Loc())
		w.add(ps...)
		return t
	case *ast.Binary:
		l := w.expr(e.LHS)
		r := w.expr(e.RHS)
		t, ps := rules.Binary(e.Op, l, r, e.Loc())
		w.add(ps...)
		return t
	case *ast.Like:
		v := w.expr(e.Value)
		p := w.expr(e.Pattern)
		var esc types.StaticType
		if e.Escape != nil {
			esc = w.expr(e.Escape)
		}
		t, ps := rules.Like(v, p, esc, e.Loc())
		w.add(ps...)
		return t
	case *ast.Between:
		v := w.expr(e.Value)
		from := w.expr(e.From)
		to := w.expr(e.To)
		t, ps := rules.Between(v, from, to, e.Loc())
		w.add(ps...)
		return t
	case *ast.In:
		v := w.expr(e.Value)
		var (
			t  types.StaticType
			ps []problem.Problem
		)
		if e.Rows != nil {
			t, ps = rules.InRows(v, w.exprs(e.Rows), e.Loc())
		} else {
			t, ps = rules.In(v, w.expr(e.Collection), e.Loc())
		}
		w.add(ps...)
		return t
	case *ast.IsType:
		w.expr(e.Value)
		return types.Bool
	case *ast.Cast:
		return w.cast(e)
	case *ast.NullIf:
		l := w.expr(e.LHS)
		r := w.expr(e.RHS)
		t, ps := rules.NullIf(l, r, e.Loc())
		w.add(ps...)
		return t
	case *ast.Coalesce:
		return rules.Coalesce(w.exprs(e.Args))
	case *ast.SimpleCase:
		return w.simpleCase(e)
	case *ast.SearchedCase:
		return w.searchedCase(e)
	case *ast.FieldAccess:
		return fieldOf(w.expr(e.Root), e.Name)
	case *ast.IndexAccess:
		root := w.expr(e.Root)
		idx := w.expr(e.Index)
		if lit, ok := e.Index.(*ast.Literal); ok {
			if name, ok := lit.Text(); ok {
				return fieldOf(root, name)
			}
		}
		return indexOf(root, idx)
	case *ast.Call:
		args := make([]functions.Arg, 0, len(e.Args))
		for _, a := range e.Args {
			args = append(args, functions.Arg{Type: w.expr(a), Loc: a.Loc()})
		}
		t, ps := functions.Resolve(w.inf.catalog, e.Name, args, e.Loc())
		w.add(ps...)
		return t
	case *ast.CallAgg:
		return w.aggregate(e)
	case *ast.Collection:
		elems := w.exprs(e.Elems)
		if len(elems) == 0 {
			return types.Collection{Shape: e.Shape, Element: types.Any}
		}
		return types.Collection{Shape: e.Shape, Element: types.UnionOf(elems...)}
	case *ast.StructCons:
		return w.structCons(e)
	case *ast.Select:
		return w.selectExpr(e)
	}

	level.Warn(w.inf.logger).Log("msg", "unsupported node", "node", e.ID(), "loc", e.Loc())
	return types.Any
}

// variable resolves local scopes before globals unless the reference is explicitly global.
func (w *walker) variable(v *ast.VarRef) types.StaticType {
	if v.Scope != ast.ScopeGlobal {
		if t, ok := w.scope.lookup(v.Name); ok {
			return t
		}
	}
	if t, ok := w.globals[v.Name]; ok && t != nil {
		return t
	}
	w.add(problem.Error(v.Loc(), problem.UndefinedVariable{Name: v.Name}))
	return types.Any
}

// resolveType looks up custom types before the builtin type syntax. Unknown names are ANY.
func (w *walker) resolveType(ref ast.TypeRef) types.StaticType {
	if t, ok := w.inf.customTypes[strings.ToLower(ref.Name)]; ok {
		return t
	}
	t, err := types.Parse(ref.Name)
	if err != nil {
		level.Debug(w.inf.logger).Log("msg", "unknown cast target", "type", ref.Name, "err", err)
		return types.Any
	}
	return t
}

func (w *walker) cast(c *ast.Cast) types.StaticType {
	v := w.expr(c.Value)
	if types.IsUnknown(v) {
		return v
	}
	out := []types.StaticType{w.resolveType(c.Type)}
	if types.MayBeNull(v) {
		out = append(out, types.Null)
	}
	if types.MayBeMissing(v) {
		out = append(out, types.Missing)
	}
	return types.UnionOf(out...)
}

// searchedCase types every arm before checking the guards, so guard problems follow the
// problems of the arms themselves.
func (w *walker) searchedCase(c *ast.SearchedCase) types.StaticType {
	guards := make([]types.StaticType, 0, len(c.Whens))
	thens := make([]types.StaticType, 0, len(c.Whens))
	for _, wh := range c.Whens {
		guards = append(guards, w.expr(wh.Cond))
		thens = append(thens, w.expr(wh.Then))
	}
	var els types.StaticType
	if c.Else != nil {
		els = w.expr(c.Else)
	}

	for i, wh := range c.Whens {
		w.add(rules.Condition(guards[i], wh.Cond.Loc())...)
	}
	return rules.CaseResult(thens, els)
}

func (w *walker) simpleCase(c *ast.SimpleCase) types.StaticType {
	v := w.expr(c.Value)
	values := make([]types.StaticType, 0, len(c.Whens))
	thens := make([]types.StaticType, 0, len(c.Whens))
	for _, wh := range c.Whens {
		values = append(values, w.expr(wh.Cond))
		thens = append(thens, w.expr(wh.Then))
	}
	var els types.StaticType
	if c.Else != nil {
		els = w.expr(c.Else)
	}

	for i, wh := range c.Whens {
		w.add(rules.SimpleWhen(v, values[i], wh.Cond.Loc())...)
	}
	return rules.CaseResult(thens, els)
}

// structCons keeps text literal keys as fields and drops other literal keys. A computed key
// that may be anything but text makes the struct open.
func (w *walker) structCons(s *ast.StructCons) types.StaticType {
	out := types.Struct{ContentClosed: true}
	for _, f := range s.Fields {
		k := w.expr(f.Key)
		v := w.expr(f.Value)
		if lit, ok := f.Key.(*ast.Literal); ok {
			if name, ok := lit.Text(); ok {
				out.Fields = append(out.Fields, types.Field{Name: name, Type: v})
			}
			continue
		}
		if !types.AllAlternatives(k, types.IsText) {
			out.ContentClosed = false
		}
	}
	return out
}

func (w *walker) aggregate(a *ast.CallAgg) types.StaticType {
	arg := types.Any
	if a.Arg != nil {
		arg = w.expr(a.Arg)
	}

	name := strings.ToLower(a.Name)
	switch name {
	case "count":
		return types.Int
	case "sum", "avg":
		if !types.IsUnknown(arg) && !types.AnyAlternative(arg, types.IsNumeric) {
			w.add(problem.Error(argLoc(a), problem.InvalidArgumentTypeForFunction{
				Function: name,
				Expected: types.Numeric,
				Actual:   arg,
			}))
		}
		if name == "avg" {
			return types.AsNullable(types.Decimal)
		}
		var numeric []types.StaticType
		for _, alt := range types.Alternatives(arg) {
			if types.IsNumeric(alt) {
				numeric = append(numeric, alt)
			}
		}
		if len(numeric) == 0 {
			return types.AsNullable(types.Numeric)
		}
		return types.AsNullable(types.UnionOf(numeric...))
	case "min", "max":
		if _, ok := arg.(types.AnyType); ok {
			return types.Any
		}
		known := types.WithoutUnknowns(arg)
		if known == nil {
			return types.Null
		}
		return types.AsNullable(known)
	}

	w.add(problem.Error(a.Loc(), problem.NoSuchFunction{Function: a.Name}))
	return types.Any
}

func argLoc(a *ast.CallAgg) ast.Location {
	if a.Arg != nil {
		return a.Arg.Loc()
	}
	return a.Loc()
}

// derivedName is the implicit alias of e: the variable or field name it ends in, or the
// positional name _n.
func derivedName(e ast.Expr, n int) string {
	switch e := e.(type) {
	case *ast.VarRef:
		return e.Name
	case *ast.FieldAccess:
		return e.Name
	case *ast.IndexAccess:
		if lit, ok := e.Index.(*ast.Literal); ok {
			if name, ok := lit.Text(); ok {
				return name
			}
		}
	}
	return "_" + strconv.Itoa(n)
}
