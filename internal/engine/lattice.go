package engine

import "fmt"

// ErrIncompatible is returned by Join (and surfaces as a log entry,
// never a hard error, from the Merger) when two types have no upper
// bound in the lattice.
type ErrIncompatible struct {
	A, B Type
}

func (e ErrIncompatible) Error() string {
	return fmt.Sprintf("incompatible types: %s and %s", e.A, e.B)
}

var stringLike = map[Kind]bool{
	KindString:    true,
	KindDate:      true,
	KindTime:      true,
	KindTimestamp: true,
	KindQBoolean:  true,
	KindQInteger:  true,
	KindQFloat:    true,
}

// Join computes a ⊔ b under the type lattice (spec.md §4.1). It is
// commutative and associative; log receives a diagnostic (but never an
// error) when the result collapses to Ignore via the caller.
func Join(a, b Type, path string, log *Log) (Type, error) {
	if a.Kind == b.Kind && a.Kind != KindRecord && !a.Kind.isQuoted() {
		return a, nil
	}

	// Placeholders yield unconditionally.
	if a.Kind == KindNull {
		return b, nil
	}
	if b.Kind == KindNull {
		return a, nil
	}
	if a.Kind == KindEmptyArray || b.Kind == KindEmptyArray {
		// EmptyArray only ever appears as a field's element type via
		// the caller (an EmptyArray field, not an array of arrays);
		// joining it with anything yields the other side untouched.
		if a.Kind == KindEmptyArray && b.Kind == KindEmptyArray {
			return a, nil
		}
		if a.Kind == KindEmptyArray {
			return b, nil
		}
		return a, nil
	}
	if a.Kind == KindEmptyRecord && b.Kind == KindRecord {
		return b, nil
	}
	if b.Kind == KindEmptyRecord && a.Kind == KindRecord {
		return a, nil
	}
	if a.Kind == KindEmptyRecord && b.Kind == KindEmptyRecord {
		return a, nil
	}

	// Records recurse through the Merger.
	if a.Kind == KindRecord && b.Kind == KindRecord {
		merged := Merge(a.Fields, b.Fields, path, log)
		return recordType(merged), nil
	}

	// Numeric lifting.
	if a.Kind == KindInteger && b.Kind == KindFloat {
		return Type{Kind: KindFloat}, nil
	}
	if a.Kind == KindFloat && b.Kind == KindInteger {
		return Type{Kind: KindFloat}, nil
	}
	if a.Kind == KindQInteger && b.Kind == KindQInteger {
		return Type{Kind: KindInteger}, nil
	}
	if a.Kind == KindQFloat && b.Kind == KindQFloat {
		return Type{Kind: KindFloat}, nil
	}
	if (a.Kind == KindQInteger && b.Kind == KindQFloat) || (a.Kind == KindQFloat && b.Kind == KindQInteger) {
		return Type{Kind: KindFloat}, nil
	}
	if (a.Kind == KindInteger && b.Kind == KindQFloat) || (a.Kind == KindQFloat && b.Kind == KindInteger) {
		return Type{Kind: KindFloat}, nil
	}
	if (a.Kind == KindInteger && b.Kind == KindQInteger) || (a.Kind == KindQInteger && b.Kind == KindInteger) {
		return Type{Kind: KindInteger}, nil
	}
	if (a.Kind == KindFloat && b.Kind == KindQInteger) || (a.Kind == KindQInteger && b.Kind == KindFloat) {
		return Type{Kind: KindFloat}, nil
	}
	if (a.Kind == KindFloat && b.Kind == KindQFloat) || (a.Kind == KindQFloat && b.Kind == KindFloat) {
		return Type{Kind: KindFloat}, nil
	}

	// Booleans.
	if a.Kind == KindQBoolean && b.Kind == KindQBoolean {
		return Type{Kind: KindBoolean}, nil
	}
	if (a.Kind == KindBoolean && b.Kind == KindQBoolean) || (a.Kind == KindQBoolean && b.Kind == KindBoolean) {
		return Type{Kind: KindBoolean}, nil
	}

	// String absorption.
	if a.Kind == KindString && stringLike[b.Kind] {
		return Type{Kind: KindString}, nil
	}
	if b.Kind == KindString && stringLike[a.Kind] {
		return Type{Kind: KindString}, nil
	}
	if a.Kind.isTemporal() && b.Kind.isTemporal() && a.Kind != b.Kind {
		return Type{Kind: KindString}, nil
	}
	if a.Kind.isTemporal() && b.Kind.isQuoted() {
		return Type{Kind: KindString}, nil
	}
	if b.Kind.isTemporal() && a.Kind.isQuoted() {
		return Type{Kind: KindString}, nil
	}

	return Type{}, ErrIncompatible{A: a, B: b}
}
