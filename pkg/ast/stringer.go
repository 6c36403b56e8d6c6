package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sqltype/sqltype/pkg/types"
)

func (l *Literal) String() string {
	switch {
	case types.IsNullKind(l.Type):
		return "NULL"
	case types.IsMissingKind(l.Type):
		return "MISSING"
	}

	switch v := l.Value.(type) {
	case string:
		if types.Equal(l.Type, types.Symbol) {
			return "`" + v + "`"
		}
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		return strings.ToUpper(strconv.FormatBool(v))
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case nil:
		return "<" + l.Type.String() + ">"
	}
	return fmt.Sprint(l.Value)
}

func (v *VarRef) String() string {
	if v.Scope == ScopeLocal {
		return "@" + v.Name
	}
	return v.Name
}

func (p *Parameter) String() string {
	return "?"
}

func (u *Unary) String() string {
	if u.Op == OpNot {
		return "NOT " + wrapExpr(u.Operand)
	}
	return u.Op.String() + wrapExpr(u.Operand)
}

func (o *Binary) String() string {
	return binaryOp(o.Op.String(), o.LHS, o.RHS)
}

func (l *Like) String() string {
	s := binaryOp(not(l.Not)+"LIKE", l.Value, l.Pattern)
	if l.Escape != nil {
		s += " ESCAPE " + wrapExpr(l.Escape)
	}
	return s
}

func (b *Between) String() string {
	return wrapExpr(b.Value) + " " + not(b.Not) + "BETWEEN " + wrapExpr(b.From) + " AND " + wrapExpr(b.To)
}

func (i *In) String() string {
	if i.Rows != nil {
		return wrapExpr(i.Value) + " " + not(i.Not) + "IN (" + joinExprs(i.Rows) + ")"
	}
	return binaryOp(not(i.Not)+"IN", i.Value, i.Collection)
}

func (i *IsType) String() string {
	return wrapExpr(i.Value) + " IS " + not(i.Not) + i.Type.Name
}

func (c *Cast) String() string {
	return "CAST(" + c.Value.String() + " AS " + c.Type.Name + ")"
}

func (n *NullIf) String() string {
	return "NULLIF(" + n.LHS.String() + ", " + n.RHS.String() + ")"
}

func (c *Coalesce) String() string {
	return "COALESCE(" + joinExprs(c.Args) + ")"
}

func (c *SimpleCase) String() string {
	return "CASE " + c.Value.String() + caseArms(c.Whens, c.Else)
}

func (c *SearchedCase) String() string {
	return "CASE" + caseArms(c.Whens, c.Else)
}

func (f *FieldAccess) String() string {
	return wrapPathRoot(f.Root) + "." + f.Name
}

func (i *IndexAccess) String() string {
	return wrapPathRoot(i.Root) + "[" + i.Index.String() + "]"
}

func (c *Call) String() string {
	return c.Name + "(" + joinExprs(c.Args) + ")"
}

func (c *CallAgg) String() string {
	arg := "*"
	if c.Arg != nil {
		arg = c.Arg.String()
	}
	if c.Distinct {
		arg = "DISTINCT " + arg
	}
	return c.Name + "(" + arg + ")"
}

func (c *Collection) String() string {
	switch c.Shape {
	case types.ShapeBag:
		return "<<" + joinExprs(c.Elems) + ">>"
	case types.ShapeSexp:
		return "SEXP(" + joinExprs(c.Elems) + ")"
	}
	return "[" + joinExprs(c.Elems) + "]"
}

func (s *StructCons) String() string {
	fields := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		fields = append(fields, f.Key.String()+": "+f.Value.String())
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

func (s *Select) String() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(s.Project.String())
	if s.From != nil {
		sb.WriteString(" FROM ")
		sb.WriteString(s.From.String())
	}
	if s.Where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(s.Where.String())
	}
	if s.GroupBy != nil {
		keys := make([]string, 0, len(s.GroupBy.Keys))
		for _, k := range s.GroupBy.Keys {
			keys = append(keys, aliased(k.Expr.String(), k.Alias))
		}
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(keys, ", "))
		if s.GroupBy.GroupAs != "" {
			sb.WriteString(" GROUP AS ")
			sb.WriteString(s.GroupBy.GroupAs)
		}
	}
	if s.Having != nil {
		sb.WriteString(" HAVING ")
		sb.WriteString(s.Having.String())
	}
	if len(s.OrderBy) > 0 {
		items := make([]string, 0, len(s.OrderBy))
		for _, o := range s.OrderBy {
			item := o.Expr.String()
			if o.Desc {
				item += " DESC"
			}
			items = append(items, item)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(items, ", "))
	}
	if s.Limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(s.Limit.String())
	}
	if s.Offset != nil {
		sb.WriteString(" OFFSET ")
		sb.WriteString(s.Offset.String())
	}
	return sb.String()
}

func (ProjectStar) String() string {
	return "*"
}

func (p ProjectList) String() string {
	items := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		if item.All {
			items = append(items, wrapPathRoot(item.Expr)+".*")
			continue
		}
		items = append(items, aliased(item.Expr.String(), item.Alias))
	}
	return strings.Join(items, ", ")
}

func (p ProjectValue) String() string {
	return "VALUE " + p.Expr.String()
}

func (f FromScan) String() string {
	s := aliased(f.Expr.String(), f.As)
	if f.At != "" {
		s += " AT " + f.At
	}
	if f.By != "" {
		s += " BY " + f.By
	}
	return s
}

func (f FromJoin) String() string {
	s := f.Left.String() + " " + f.Kind.String() + " JOIN " + f.Right.String()
	if f.On != nil {
		s += " ON " + f.On.String()
	}
	return s
}

func binaryOp(op string, lhs Expr, rhs Expr) string {
	return wrapExpr(lhs) + " " + op + " " + wrapExpr(rhs)
}

func wrapExpr(e Expr) string {
	switch e.(type) {
	case *Literal, *VarRef, *Parameter, *FieldAccess, *IndexAccess, *Call, *CallAgg, *Collection, *StructCons:
		return e.String()
	}
	return "(" + e.String() + ")"
}

func wrapPathRoot(e Expr) string {
	switch e.(type) {
	case *VarRef, *FieldAccess, *IndexAccess, *Call:
		return e.String()
	}
	return "(" + e.String() + ")"
}

func joinExprs(es []Expr) string {
	s := make([]string, 0, len(es))
	for _, e := range es {
		s = append(s, e.String())
	}
	return strings.Join(s, ", ")
}

func caseArms(whens []When, els Expr) string {
	var sb strings.Builder
	for _, w := range whens {
		sb.WriteString(" WHEN ")
		sb.WriteString(w.Cond.String())
		sb.WriteString(" THEN ")
		sb.WriteString(w.Then.String())
	}
	if els != nil {
		sb.WriteString(" ELSE ")
		sb.WriteString(els.String())
	}
	sb.WriteString(" END")
	return sb.String()
}

func aliased(s, alias string) string {
	if alias == "" {
		return s
	}
	return s + " AS " + alias
}

func not(b bool) string {
	if b {
		return "NOT "
	}
	return ""
}
