package types

// Alternatives returns the concrete types t may be at runtime. AnyType expands to AllTypes.
func Alternatives(t StaticType) []StaticType {
	switch t := t.(type) {
	case Union:
		return t.Members()
	case AnyType:
		return append([]StaticType(nil), AllTypes...)
	}
	return []StaticType{t}
}

// AnyAlternative reports whether pred holds for at least one alternative of t.
func AnyAlternative(t StaticType, pred func(StaticType) bool) bool {
	for _, a := range Alternatives(t) {
		if pred(a) {
			return true
		}
	}
	return false
}

// AllAlternatives reports whether pred holds for every alternative of t.
func AllAlternatives(t StaticType, pred func(StaticType) bool) bool {
	alts := Alternatives(t)
	if len(alts) == 0 {
		return false
	}
	for _, a := range alts {
		if !pred(a) {
			return false
		}
	}
	return true
}

func kindOf(t StaticType) (Kind, bool) {
	s, ok := t.(Scalar)
	if !ok {
		return 0, false
	}
	return s.Kind, true
}

func isKind(t StaticType, kinds ...Kind) bool {
	k, ok := kindOf(t)
	if !ok {
		return false
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// IsNumeric, IsText, IsLob, IsInteger and IsBool classify concrete types.
func IsNumeric(t StaticType) bool {
	return isKind(t, KindInt2, KindInt4, KindInt8, KindInt, KindFloat, KindDecimal)
}

func IsInteger(t StaticType) bool { return isKind(t, KindInt2, KindInt4, KindInt8, KindInt) }
func IsText(t StaticType) bool    { return isKind(t, KindString, KindSymbol) }
func IsLob(t StaticType) bool     { return isKind(t, KindBlob, KindClob) }
func IsBool(t StaticType) bool    { return isKind(t, KindBool) }

// IsNullKind and IsMissingKind match the concrete NULL and MISSING types.
func IsNullKind(t StaticType) bool    { return isKind(t, KindNull) }
func IsMissingKind(t StaticType) bool { return isKind(t, KindMissing) }

func isUnknownKind(t StaticType) bool { return isKind(t, KindNull, KindMissing) }

// IsUnknown reports whether every alternative of t is NULL or MISSING.
func IsUnknown(t StaticType) bool {
	if _, ok := t.(AnyType); ok {
		return false
	}
	return AllAlternatives(t, isUnknownKind)
}

// IsMissing and IsNullOrMissing test for the exact distinguished values.
func IsMissing(t StaticType) bool       { return Equal(t, Missing) }
func IsNull(t StaticType) bool          { return Equal(t, Null) }
func IsNullOrMissing(t StaticType) bool { return Equal(t, NullOrMissing) }

func MayBeNull(t StaticType) bool    { return AnyAlternative(t, IsNullKind) }
func MayBeMissing(t StaticType) bool { return AnyAlternative(t, IsMissingKind) }

// WithoutUnknowns drops the NULL and MISSING alternatives of t. It returns nil when nothing
// is left.
func WithoutUnknowns(t StaticType) StaticType {
	if _, ok := t.(AnyType); ok {
		return t
	}
	var kept []StaticType
	for _, a := range Alternatives(t) {
		if !isUnknownKind(a) {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return UnionOf(kept...)
}

// IsAssignable reports whether a value of concrete type from may be bound to a parameter
// declared as to.
func IsAssignable(from, to StaticType) bool {
	switch to := to.(type) {
	case AnyType:
		return true
	case Union:
		for _, m := range to.members {
			if IsAssignable(from, m) {
				return true
			}
		}
		return false
	case Scalar:
		f, ok := from.(Scalar)
		if !ok {
			return false
		}
		if f.Kind == to.Kind {
			return true
		}
		return to.Kind == KindInt && IsInteger(f)
	case Collection:
		f, ok := from.(Collection)
		if !ok || f.Shape != to.Shape {
			return false
		}
		if _, ok := to.Element.(AnyType); ok {
			return true
		}
		return AllAlternatives(f.Element, func(e StaticType) bool { return IsAssignable(e, to.Element) })
	case Struct:
		f, ok := from.(Struct)
		if !ok {
			return false
		}
		if !to.ContentClosed && len(to.Fields) == 0 {
			return true
		}
		return Equal(f, to)
	}
	return false
}
