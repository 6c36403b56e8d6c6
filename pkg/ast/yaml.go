package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sqltype/sqltype/pkg/types"
)

// exprKinds are the keys that select the kind of a YAML expression mapping, in lookup order.
var exprKinds = []string{
	"lit", "var", "param", "unary", "binary", "like", "between", "in", "is", "cast",
	"nullif", "coalesce", "case", "field", "index", "call", "agg", "list", "bag", "sexp",
	"struct", "select",
}

// DecodeYAML builds a tree from its YAML document form. Plain scalars are literals; every
// other expression is a mapping keyed by its kind, for example
//
//	binary: "+"
//	lhs: {var: x}
//	rhs: 1
//	loc: "1:3:1"
//
// Nodes without a loc take the line and column of their YAML node.
func DecodeYAML(n *yaml.Node, b *Builder) (Expr, error) {
	d := &decoder{b: b}
	return d.expr(n)
}

// UnmarshalExpr is DecodeYAML over raw bytes.
func UnmarshalExpr(in []byte, b *Builder) (Expr, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(in, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse expression document")
	}
	return DecodeYAML(&doc, b)
}

type decoder struct {
	b *Builder
}

type mapping map[string]*yaml.Node

func nodeErrorf(n *yaml.Node, format string, args ...any) error {
	return errors.Errorf("line %d column %d: %s", n.Line, n.Column, fmt.Sprintf(format, args...))
}

func (d *decoder) expr(n *yaml.Node) (Expr, error) {
	if n == nil {
		return nil, errors.New("missing expression")
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, errors.New("empty document")
		}
		return d.expr(n.Content[0])
	case yaml.AliasNode:
		return d.expr(n.Alias)
	case yaml.ScalarNode:
		return d.scalar(n)
	case yaml.MappingNode:
	default:
		return nil, nodeErrorf(n, "expected an expression")
	}

	m, err := toMapping(n)
	if err != nil {
		return nil, err
	}
	loc, err := location(n, m["loc"])
	if err != nil {
		return nil, err
	}

	for _, kind := range exprKinds {
		if v, ok := m[kind]; ok {
			return d.kind(kind, v, m, loc)
		}
	}
	return nil, nodeErrorf(n, "unknown expression, expected one of %s", strings.Join(exprKinds, ", "))
}

func (d *decoder) scalar(n *yaml.Node) (Expr, error) {
	loc := Location{Line: n.Line, Column: n.Column, Length: len(n.Value)}
	switch n.ShortTag() {
	case "!!null":
		return d.b.Lit(loc, types.Null, nil), nil
	case "!!bool":
		var v bool
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return d.b.Lit(loc, types.Bool, v), nil
	case "!!int":
		var v int64
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return d.b.Lit(loc, types.Int, v), nil
	case "!!float":
		var v float64
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return d.b.Lit(loc, types.Float, v), nil
	case "!!str":
		return d.b.Lit(loc, types.String, n.Value), nil
	}
	return nil, nodeErrorf(n, "unsupported literal tag %s", n.ShortTag())
}

func (d *decoder) kind(kind string, v *yaml.Node, m mapping, loc Location) (Expr, error) {
	switch kind {
	case "lit":
		name, err := str(v)
		if err != nil {
			return nil, err
		}
		t, err := types.Parse(name)
		if err != nil {
			return nil, nodeErrorf(v, "%v", err)
		}
		var value any
		if raw, ok := m["value"]; ok {
			if err := raw.Decode(&value); err != nil {
				return nil, err
			}
		}
		return d.b.Lit(loc, t, value), nil
	case "var":
		name, err := str(v)
		if err != nil {
			return nil, err
		}
		scope := ScopeUnqualified
		if s, ok := m["scope"]; ok {
			switch s.Value {
			case "local":
				scope = ScopeLocal
			case "global":
				scope = ScopeGlobal
			case "", "unqualified":
			default:
				return nil, nodeErrorf(s, "unknown variable scope %q", s.Value)
			}
		}
		return d.b.Var(loc, name, scope), nil
	case "param":
		var idx int
		if err := v.Decode(&idx); err != nil {
			return nil, err
		}
		return d.b.Param(loc, idx), nil
	case "unary":
		op, ok := ParseOperator(v.Value, true)
		if !ok {
			return nil, nodeErrorf(v, "unknown unary operator %q", v.Value)
		}
		operand, err := d.expr(m["operand"])
		if err != nil {
			return nil, err
		}
		return d.b.Unary(loc, op, operand), nil
	case "binary":
		op, ok := ParseOperator(v.Value, false)
		if !ok {
			return nil, nodeErrorf(v, "unknown binary operator %q", v.Value)
		}
		lhs, err := d.expr(m["lhs"])
		if err != nil {
			return nil, err
		}
		rhs, err := d.expr(m["rhs"])
		if err != nil {
			return nil, err
		}
		return d.b.Binary(loc, op, lhs, rhs), nil
	case "like":
		value, err := d.expr(v)
		if err != nil {
			return nil, err
		}
		pattern, err := d.expr(m["pattern"])
		if err != nil {
			return nil, err
		}
		escape, err := d.optExpr(m, "escape")
		if err != nil {
			return nil, err
		}
		not, err := flag(m, "not")
		if err != nil {
			return nil, err
		}
		return d.b.Like(loc, value, pattern, escape, not), nil
	case "between":
		es, err := d.exprsOf(v, m, "from", "to")
		if err != nil {
			return nil, err
		}
		not, err := flag(m, "not")
		if err != nil {
			return nil, err
		}
		return d.b.Between(loc, es[0], es[1], es[2], not), nil
	case "in":
		value, err := d.expr(v)
		if err != nil {
			return nil, err
		}
		not, err := flag(m, "not")
		if err != nil {
			return nil, err
		}
		if rows, ok := m["rows"]; ok {
			es, err := d.exprs(rows)
			if err != nil {
				return nil, err
			}
			return d.b.InRows(loc, value, es, not), nil
		}
		collection, err := d.expr(m["collection"])
		if err != nil {
			return nil, err
		}
		return d.b.InCollection(loc, value, collection, not), nil
	case "is", "cast":
		value, err := d.expr(v)
		if err != nil {
			return nil, err
		}
		key := "type"
		if kind == "cast" {
			key = "as"
		}
		target, ok := m[key]
		if !ok {
			return nil, errors.Errorf("%s at %s needs %s", kind, loc, key)
		}
		name, err := str(target)
		if err != nil {
			return nil, err
		}
		if kind == "cast" {
			return d.b.Cast(loc, value, TypeRef{Name: name}), nil
		}
		not, err := flag(m, "not")
		if err != nil {
			return nil, err
		}
		return d.b.Is(loc, value, TypeRef{Name: name}, not), nil
	case "nullif":
		es, err := d.exprs(v)
		if err != nil {
			return nil, err
		}
		if len(es) != 2 {
			return nil, nodeErrorf(v, "nullif takes two arguments, got %d", len(es))
		}
		return d.b.NullIf(loc, es[0], es[1]), nil
	case "coalesce":
		es, err := d.exprs(v)
		if err != nil {
			return nil, err
		}
		return d.b.Coalesce(loc, es...), nil
	case "case":
		return d.caseExpr(v, loc)
	case "field":
		name, err := str(v)
		if err != nil {
			return nil, err
		}
		root, err := d.expr(m["of"])
		if err != nil {
			return nil, err
		}
		return d.b.Field(loc, root, name), nil
	case "index":
		es, err := d.exprsOf(v, m, "of")
		if err != nil {
			return nil, err
		}
		return d.b.Index(loc, es[1], es[0]), nil
	case "call":
		name, err := str(v)
		if err != nil {
			return nil, err
		}
		var args []Expr
		if a, ok := m["args"]; ok {
			if args, err = d.exprs(a); err != nil {
				return nil, err
			}
		}
		return d.b.Call(loc, name, args...), nil
	case "agg":
		name, err := str(v)
		if err != nil {
			return nil, err
		}
		arg, err := d.optExpr(m, "arg")
		if err != nil {
			return nil, err
		}
		distinct, err := flag(m, "distinct")
		if err != nil {
			return nil, err
		}
		return d.b.CallAgg(loc, name, distinct, arg), nil
	case "list", "bag", "sexp":
		es, err := d.exprs(v)
		if err != nil {
			return nil, err
		}
		shape := types.ShapeList
		switch kind {
		case "bag":
			shape = types.ShapeBag
		case "sexp":
			shape = types.ShapeSexp
		}
		return d.b.Collection(loc, shape, es...), nil
	case "struct":
		return d.structExpr(v, loc)
	case "select":
		return d.selectExpr(v, loc)
	}
	return nil, nodeErrorf(v, "unknown expression kind %s", kind)
}

func (d *decoder) caseExpr(n *yaml.Node, loc Location) (Expr, error) {
	m, err := toMapping(n)
	if err != nil {
		return nil, err
	}
	value, err := d.optExpr(m, "value")
	if err != nil {
		return nil, err
	}
	whensNode, ok := m["whens"]
	if !ok || whensNode.Kind != yaml.SequenceNode {
		return nil, nodeErrorf(n, "case needs a whens sequence")
	}
	whens := make([]When, 0, len(whensNode.Content))
	for _, wn := range whensNode.Content {
		wm, err := toMapping(wn)
		if err != nil {
			return nil, err
		}
		cond, err := d.expr(wm["when"])
		if err != nil {
			return nil, err
		}
		then, err := d.expr(wm["then"])
		if err != nil {
			return nil, err
		}
		whens = append(whens, When{Cond: cond, Then: then})
	}
	els, err := d.optExpr(m, "else")
	if err != nil {
		return nil, err
	}
	if value != nil {
		return d.b.SimpleCase(loc, value, whens, els), nil
	}
	return d.b.SearchedCase(loc, whens, els), nil
}

func (d *decoder) structExpr(n *yaml.Node, loc Location) (Expr, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, nodeErrorf(n, "struct needs a sequence of key/value pairs")
	}
	fields := make([]StructField, 0, len(n.Content))
	for _, fn := range n.Content {
		fm, err := toMapping(fn)
		if err != nil {
			return nil, err
		}
		key, err := d.expr(fm["key"])
		if err != nil {
			return nil, err
		}
		value, err := d.expr(fm["value"])
		if err != nil {
			return nil, err
		}
		fields = append(fields, StructField{Key: key, Value: value})
	}
	return d.b.Struct(loc, fields...), nil
}

func (d *decoder) selectExpr(n *yaml.Node, loc Location) (Expr, error) {
	m, err := toMapping(n)
	if err != nil {
		return nil, err
	}

	var from FromSource
	if f, ok := m["from"]; ok {
		if from, err = d.fromSource(f); err != nil {
			return nil, err
		}
	}
	where, err := d.optExpr(m, "where")
	if err != nil {
		return nil, err
	}

	var groupBy *GroupBy
	if g, ok := m["group_by"]; ok {
		if groupBy, err = d.groupBy(g); err != nil {
			return nil, err
		}
	}
	having, err := d.optExpr(m, "having")
	if err != nil {
		return nil, err
	}

	p, ok := m["project"]
	if !ok {
		return nil, nodeErrorf(n, "select needs a project clause")
	}
	project, err := d.projection(p)
	if err != nil {
		return nil, err
	}

	var orderBy []OrderItem
	if o, ok := m["order_by"]; ok {
		if o.Kind != yaml.SequenceNode {
			return nil, nodeErrorf(o, "order_by needs a sequence")
		}
		for _, on := range o.Content {
			om, err := toMapping(on)
			if err != nil {
				return nil, err
			}
			e, err := d.expr(om["expr"])
			if err != nil {
				return nil, err
			}
			desc, err := flag(om, "desc")
			if err != nil {
				return nil, err
			}
			orderBy = append(orderBy, OrderItem{Expr: e, Desc: desc})
		}
	}

	limit, err := d.optExpr(m, "limit")
	if err != nil {
		return nil, err
	}
	offset, err := d.optExpr(m, "offset")
	if err != nil {
		return nil, err
	}

	s := d.b.Select(loc, project, from)
	s.Where = where
	s.GroupBy = groupBy
	s.Having = having
	s.OrderBy = orderBy
	s.Limit = limit
	s.Offset = offset
	return s, nil
}

func (d *decoder) projection(n *yaml.Node) (Projection, error) {
	if n.Kind == yaml.ScalarNode {
		if n.Value == "*" || n.Value == "star" {
			return ProjectStar{}, nil
		}
		return nil, nodeErrorf(n, "unknown projection %q", n.Value)
	}
	m, err := toMapping(n)
	if err != nil {
		return nil, err
	}
	if v, ok := m["value"]; ok {
		e, err := d.expr(v)
		if err != nil {
			return nil, err
		}
		return ProjectValue{Expr: e}, nil
	}
	itemsNode, ok := m["items"]
	if !ok || itemsNode.Kind != yaml.SequenceNode {
		return nil, nodeErrorf(n, "projection needs value or an items sequence")
	}
	items := make([]ProjectItem, 0, len(itemsNode.Content))
	for _, in := range itemsNode.Content {
		im, err := toMapping(in)
		if err != nil {
			return nil, err
		}
		if all, ok := im["all"]; ok {
			e, err := d.expr(all)
			if err != nil {
				return nil, err
			}
			items = append(items, ProjectItem{Expr: e, All: true})
			continue
		}
		e, err := d.expr(im["expr"])
		if err != nil {
			return nil, err
		}
		alias := ""
		if a, ok := im["as"]; ok {
			if alias, err = str(a); err != nil {
				return nil, err
			}
		}
		items = append(items, ProjectItem{Expr: e, Alias: alias})
	}
	return ProjectList{Items: items}, nil
}

func (d *decoder) fromSource(n *yaml.Node) (FromSource, error) {
	if n.Kind == yaml.SequenceNode {
		var from FromSource
		for _, sn := range n.Content {
			src, err := d.fromSource(sn)
			if err != nil {
				return nil, err
			}
			if from == nil {
				from = src
				continue
			}
			from = FromJoin{Kind: JoinCross, Left: from, Right: src}
		}
		if from == nil {
			return nil, nodeErrorf(n, "empty from clause")
		}
		return from, nil
	}

	m, err := toMapping(n)
	if err != nil {
		return nil, err
	}
	if scan, ok := m["scan"]; ok {
		e, err := d.expr(scan)
		if err != nil {
			return nil, err
		}
		f := FromScan{Expr: e}
		for key, dst := range map[string]*string{"as": &f.As, "at": &f.At, "by": &f.By} {
			if v, ok := m[key]; ok {
				if *dst, err = str(v); err != nil {
					return nil, err
				}
			}
		}
		return f, nil
	}
	kindNode, ok := m["join"]
	if !ok {
		return nil, nodeErrorf(n, "from source needs scan or join")
	}
	var kind JoinKind
	switch strings.ToLower(kindNode.Value) {
	case "inner", "":
		kind = JoinInner
	case "left":
		kind = JoinLeft
	case "right":
		kind = JoinRight
	case "full":
		kind = JoinFull
	case "cross":
		kind = JoinCross
	default:
		return nil, nodeErrorf(kindNode, "unknown join kind %q", kindNode.Value)
	}
	left, err := d.fromSource(m["left"])
	if err != nil {
		return nil, err
	}
	right, err := d.fromSource(m["right"])
	if err != nil {
		return nil, err
	}
	on, err := d.optExpr(m, "on")
	if err != nil {
		return nil, err
	}
	return FromJoin{Kind: kind, Left: left, Right: right, On: on}, nil
}

func (d *decoder) groupBy(n *yaml.Node) (*GroupBy, error) {
	m, err := toMapping(n)
	if err != nil {
		return nil, err
	}
	g := &GroupBy{}
	if keys, ok := m["keys"]; ok {
		if keys.Kind != yaml.SequenceNode {
			return nil, nodeErrorf(keys, "group_by keys need a sequence")
		}
		for _, kn := range keys.Content {
			km, err := toMapping(kn)
			if err != nil {
				return nil, err
			}
			e, err := d.expr(km["expr"])
			if err != nil {
				return nil, err
			}
			key := GroupKey{Expr: e}
			if a, ok := km["as"]; ok {
				if key.Alias, err = str(a); err != nil {
					return nil, err
				}
			}
			g.Keys = append(g.Keys, key)
		}
	}
	if ga, ok := m["group_as"]; ok {
		if g.GroupAs, err = str(ga); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (d *decoder) optExpr(m mapping, key string) (Expr, error) {
	n, ok := m[key]
	if !ok {
		return nil, nil
	}
	return d.expr(n)
}

// exprsOf decodes first followed by the expressions stored under keys.
func (d *decoder) exprsOf(first *yaml.Node, m mapping, keys ...string) ([]Expr, error) {
	e, err := d.expr(first)
	if err != nil {
		return nil, err
	}
	out := []Expr{e}
	for _, k := range keys {
		n, ok := m[k]
		if !ok {
			return nil, nodeErrorf(first, "missing %s", k)
		}
		e, err := d.expr(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *decoder) exprs(n *yaml.Node) ([]Expr, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, nodeErrorf(n, "expected a sequence of expressions")
	}
	out := make([]Expr, 0, len(n.Content))
	for _, c := range n.Content {
		e, err := d.expr(c)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func toMapping(n *yaml.Node) (mapping, error) {
	if n == nil {
		return nil, errors.New("missing mapping")
	}
	if n.Kind != yaml.MappingNode {
		return nil, nodeErrorf(n, "expected a mapping")
	}
	m := make(mapping, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		m[n.Content[i].Value] = n.Content[i+1]
	}
	return m, nil
}

func str(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", nodeErrorf(n, "expected a scalar")
	}
	return n.Value, nil
}

func flag(m mapping, key string) (bool, error) {
	n, ok := m[key]
	if !ok {
		return false, nil
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		return false, errors.Wrapf(err, "%s", key)
	}
	return b, nil
}

// location reads "line:column[:length]". Without one the YAML position is used.
func location(n, loc *yaml.Node) (Location, error) {
	if loc == nil {
		return Location{Line: n.Line, Column: n.Column}, nil
	}
	parts := strings.Split(loc.Value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Location{}, nodeErrorf(loc, "invalid location %q, expected line:column[:length]", loc.Value)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return Location{}, nodeErrorf(loc, "invalid location %q", loc.Value)
		}
		nums[i] = v
	}
	return Location{Line: nums[0], Column: nums[1], Length: nums[2]}, nil
}
