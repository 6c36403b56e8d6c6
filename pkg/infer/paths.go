package infer

import "github.com/sqltype/sqltype/pkg/types"

// fieldOf types root.name over every alternative of root. Alternatives without the field
// contribute MISSING, or ANY when they are open structs.
func fieldOf(root types.StaticType, name string) types.StaticType {
	if _, ok := root.(types.AnyType); ok {
		return types.Any
	}

	var out []types.StaticType
	for _, alt := range types.Alternatives(root) {
		switch a := alt.(type) {
		case types.Struct:
			if ft, ok := a.Field(name); ok {
				out = append(out, ft)
			} else if a.ContentClosed {
				out = append(out, types.Missing)
			} else {
				out = append(out, types.Any)
			}
		default:
			if types.IsNullKind(a) {
				out = append(out, types.Null)
			} else {
				out = append(out, types.Missing)
			}
		}
	}
	return types.UnionOf(out...)
}

// indexOf types root[index] for an index that is not a text literal.
func indexOf(root, index types.StaticType) types.StaticType {
	if _, ok := root.(types.AnyType); ok {
		return types.Any
	}

	maybeInt := types.AnyAlternative(index, types.IsInteger)
	maybeText := types.AnyAlternative(index, types.IsText)
	maybeOther := types.AnyAlternative(index, func(t types.StaticType) bool {
		return !types.IsInteger(t) && !types.IsNullKind(t) && !types.IsMissingKind(t)
	})
	var out []types.StaticType
	for _, alt := range types.Alternatives(root) {
		switch a := alt.(type) {
		case types.Collection:
			if a.Shape == types.ShapeBag || !maybeInt {
				out = append(out, types.Missing)
				continue
			}
			out = append(out, a.Element)
			if maybeOther {
				out = append(out, types.Missing)
			}
		case types.Struct:
			if !maybeText {
				out = append(out, types.Missing)
				continue
			}
			if !a.ContentClosed {
				out = append(out, types.Any)
				continue
			}
			for _, f := range a.Fields {
				out = append(out, f.Type)
			}
			out = append(out, types.Missing)
		default:
			if types.IsNullKind(a) {
				out = append(out, types.Null)
			} else {
				out = append(out, types.Missing)
			}
		}
	}

	if types.MayBeNull(index) {
		out = append(out, types.Null)
	}
	if types.MayBeMissing(index) {
		out = append(out, types.Missing)
	}
	return types.UnionOf(out...)
}
