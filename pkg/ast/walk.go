package ast

// Children returns the direct sub-expressions of e in evaluation order.
func Children(e Expr) []Expr {
	var out []Expr
	add := func(es ...Expr) {
		for _, c := range es {
			if c != nil {
				out = append(out, c)
			}
		}
	}

	switch e := e.(type) {
	case *Unary:
		add(e.Operand)
	case *Binary:
		add(e.LHS, e.RHS)
	case *Like:
		add(e.Value, e.Pattern, e.Escape)
	case *Between:
		add(e.Value, e.From, e.To)
	case *In:
		add(e.Value, e.Collection)
		add(e.Rows...)
	case *IsType:
		add(e.Value)
	case *Cast:
		add(e.Value)
	case *NullIf:
		add(e.LHS, e.RHS)
	case *Coalesce:
		add(e.Args...)
	case *SimpleCase:
		add(e.Value)
		for _, w := range e.Whens {
			add(w.Cond, w.Then)
		}
		add(e.Else)
	case *SearchedCase:
		for _, w := range e.Whens {
			add(w.Cond, w.Then)
		}
		add(e.Else)
	case *FieldAccess:
		add(e.Root)
	case *IndexAccess:
		add(e.Root, e.Index)
	case *Call:
		add(e.Args...)
	case *CallAgg:
		add(e.Arg)
	case *Collection:
		add(e.Elems...)
	case *StructCons:
		for _, f := range e.Fields {
			add(f.Key, f.Value)
		}
	case *Select:
		add(fromExprs(e.From)...)
		add(e.Where)
		if e.GroupBy != nil {
			for _, k := range e.GroupBy.Keys {
				add(k.Expr)
			}
		}
		add(e.Having)
		switch p := e.Project.(type) {
		case ProjectList:
			for _, item := range p.Items {
				add(item.Expr)
			}
		case ProjectValue:
			add(p.Expr)
		}
		for _, o := range e.OrderBy {
			add(o.Expr)
		}
		add(e.Limit, e.Offset)
	}
	return out
}

func fromExprs(f FromSource) []Expr {
	switch f := f.(type) {
	case FromScan:
		return []Expr{f.Expr}
	case FromJoin:
		out := append(fromExprs(f.Left), fromExprs(f.Right)...)
		if f.On != nil {
			out = append(out, f.On)
		}
		return out
	}
	return nil
}

// Inspect traverses the tree rooted at e in depth-first order. fn is called for a node before
// its children; returning false skips the children.
func Inspect(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Inspect(c, fn)
	}
}
