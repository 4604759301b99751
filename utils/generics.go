package utils

import "cmp"

// AsPtr returns a pointer to a copy of v.
func AsPtr[V any](v V) *V {
	return &v
}

// AsValue dereferences v, returning the zero value of V if v is nil.
func AsValue[V any](v *V) V {
	var zero V
	if v == nil {
		return zero
	}
	return *v
}

// AsValueOrDefault dereferences v, returning def if v is nil.
func AsValueOrDefault[V any](v *V, def V) V {
	if v == nil {
		return def
	}
	return *v
}

// Equals compares two pointers by the values they point to, treating two
// nil pointers as equal and a nil/non-nil pair as unequal.
func Equals[T comparable](a, b *T) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return *a == *b
	}
}

// ContainsKey reports whether key is present in m.
func ContainsKey[T comparable, V any](m map[T]V, key T) bool {
	_, ok := m[key]
	return ok
}

// Max returns the largest of args, or the zero value of T if args is empty.
// Any NaN argument (for floating-point T) short-circuits the comparison and
// is returned immediately, matching IEEE 754 propagation.
func Max[T cmp.Ordered](args ...T) T {
	if len(args) == 0 {
		var zero T
		return zero
	}

	best := args[0]
	for _, arg := range args {
		if isNaN(arg) {
			return arg
		}
		if arg > best {
			best = arg
		}
	}
	return best
}

func isNaN[T cmp.Ordered](v T) bool {
	return v != v
}
