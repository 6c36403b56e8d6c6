package infer

import (
	"github.com/sqltype/sqltype/pkg/ast"
	"github.com/sqltype/sqltype/pkg/problem"
	"github.com/sqltype/sqltype/pkg/rules"
	"github.com/sqltype/sqltype/pkg/types"
)

// selectExpr types the clauses of a query in evaluation order: FROM, WHERE, GROUP BY, HAVING,
// the projection, ORDER BY, LIMIT and OFFSET.
func (w *walker) selectExpr(s *ast.Select) types.StaticType {
	w.push()
	defer w.pop()

	if s.From != nil {
		w.from(s.From)
	}
	if s.Where != nil {
		w.add(rules.Condition(w.expr(s.Where), s.Where.Loc())...)
	}

	star := append([]binding(nil), w.scope.bindings...)
	if s.GroupBy != nil {
		star = w.groupBy(s.GroupBy)
		defer w.pop()
	}
	if s.Having != nil {
		w.add(rules.Condition(w.expr(s.Having), s.Having.Loc())...)
	}

	elem := w.projection(s, star)

	// ORDER BY may refer to projection aliases.
	w.push()
	defer w.pop()
	if list, ok := s.Project.(ast.ProjectList); ok {
		if st, ok := elem.(types.Struct); ok {
			for _, item := range list.Items {
				if item.Alias == "" {
					continue
				}
				if t, ok := st.Field(item.Alias); ok {
					w.bind(item.Alias, t)
				}
			}
		}
	}
	for _, o := range s.OrderBy {
		w.expr(o.Expr)
	}

	if s.Limit != nil {
		w.add(rules.IntegerOperand(w.expr(s.Limit), s.Limit.Loc())...)
	}
	if s.Offset != nil {
		w.add(rules.IntegerOperand(w.expr(s.Offset), s.Offset.Loc())...)
	}

	if len(s.OrderBy) > 0 {
		return types.ListOf(elem)
	}
	return types.BagOf(elem)
}

// from binds the variables of a FROM source in the current scope.
func (w *walker) from(f ast.FromSource) {
	switch f := f.(type) {
	case ast.FromScan:
		src := w.expr(f.Expr)
		name := f.As
		if name == "" {
			name = derivedName(f.Expr, len(w.scope.bindings)+1)
		}
		w.bind(name, scanElement(src))
		if f.At != "" {
			w.bind(f.At, scanPosition(src))
		}
		if f.By != "" {
			w.bind(f.By, types.Any)
		}
	case ast.FromJoin:
		start := len(w.scope.bindings)
		w.from(f.Left)
		mid := len(w.scope.bindings)
		w.from(f.Right)
		end := len(w.scope.bindings)

		if f.On != nil {
			w.add(rules.Condition(w.expr(f.On), f.On.Loc())...)
		}

		switch f.Kind {
		case ast.JoinLeft:
			w.nullable(mid, end)
		case ast.JoinRight:
			w.nullable(start, mid)
		case ast.JoinFull:
			w.nullable(start, end)
		}
	}
}

// nullable widens the bindings [from, to) of the current scope with NULL, for the
// outer side of a join.
func (w *walker) nullable(from, to int) {
	for i := from; i < to; i++ {
		w.scope.bindings[i].typ = types.AsNullable(w.scope.bindings[i].typ)
	}
}

// scanElement is the type a FROM variable takes over src. Collections bind their elements,
// anything else binds itself.
func scanElement(src types.StaticType) types.StaticType {
	if _, ok := src.(types.AnyType); ok {
		return types.Any
	}
	var out []types.StaticType
	for _, alt := range types.Alternatives(src) {
		if c, ok := alt.(types.Collection); ok {
			out = append(out, c.Element)
			continue
		}
		out = append(out, alt)
	}
	return types.UnionOf(out...)
}

// scanPosition is the type of an AT variable: the ordinal in ordered collections, MISSING
// otherwise.
func scanPosition(src types.StaticType) types.StaticType {
	if _, ok := src.(types.AnyType); ok {
		return types.Any
	}
	var out []types.StaticType
	for _, alt := range types.Alternatives(src) {
		if c, ok := alt.(types.Collection); ok && c.Shape != types.ShapeBag {
			out = append(out, types.Int)
			continue
		}
		out = append(out, types.Missing)
	}
	return types.UnionOf(out...)
}

// groupBy binds the grouping keys and the group variable in a new scope, and returns the
// bindings a SELECT * sees afterwards.
func (w *walker) groupBy(g *ast.GroupBy) []binding {
	from := append([]binding(nil), w.scope.bindings...)

	var star []binding
	for i, k := range g.Keys {
		t := w.expr(k.Expr)
		name := k.Alias
		if name == "" {
			name = derivedName(k.Expr, i+1)
		}
		star = append(star, binding{name: name, typ: t})
	}

	if g.GroupAs != "" {
		fields := make([]types.Field, 0, len(from))
		for _, b := range from {
			fields = append(fields, types.Field{Name: b.name, Type: b.typ})
		}
		star = append(star, binding{name: g.GroupAs, typ: types.BagOf(types.ClosedStruct(fields...))})
	}

	w.push()
	for _, b := range star {
		w.bind(b.name, b.typ)
	}
	return star
}

func (w *walker) projection(s *ast.Select, star []binding) types.StaticType {
	switch p := s.Project.(type) {
	case ast.ProjectValue:
		return w.expr(p.Expr)
	case ast.ProjectStar:
		out := types.Struct{ContentClosed: true}
		for _, b := range star {
			fields, closed := structFields(b.typ)
			out.Fields = append(out.Fields, fields...)
			out.ContentClosed = out.ContentClosed && closed
		}
		return out
	case ast.ProjectList:
		out := types.Struct{ContentClosed: true}
		aliases := map[string]struct{}{}
		duplicate := false
		for i, item := range p.Items {
			t := w.expr(item.Expr)
			if item.All {
				fields, closed := structFields(t)
				out.Fields = append(out.Fields, fields...)
				out.ContentClosed = out.ContentClosed && closed
				continue
			}

			name := item.Alias
			if name == "" {
				name = derivedName(item.Expr, i+1)
			} else {
				if _, ok := aliases[name]; ok {
					duplicate = true
				}
				aliases[name] = struct{}{}
			}
			out.Fields = append(out.Fields, types.Field{Name: name, Type: t})
		}
		if duplicate {
			w.add(problem.Error(s.Loc(), problem.DuplicateAliasesInSelectListItem{}))
		}
		return out
	}
	return types.Any
}

// structFields returns the fields t contributes to a merged struct and whether t is closed.
// A struct that may be NULL or MISSING contributes fields that may be so too. Anything that
// is not a struct contributes no fields and opens the result.
func structFields(t types.StaticType) ([]types.Field, bool) {
	known := types.WithoutUnknowns(t)
	st, ok := known.(types.Struct)
	if !ok {
		return nil, false
	}

	fields := make([]types.Field, 0, len(st.Fields))
	for _, f := range st.Fields {
		ft := f.Type
		if types.MayBeNull(t) {
			ft = types.AsNullable(ft)
		}
		if types.MayBeMissing(t) {
			ft = types.AsOptional(ft)
		}
		fields = append(fields, types.Field{Name: f.Name, Type: ft})
	}
	return fields, st.ContentClosed
}
