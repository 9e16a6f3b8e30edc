package fiber

import "reflect"

// Same reports whether a and b are the same value by identity. Comparable
// values use ==. Maps compare by address, and
// slices by address and length, so a freshly built slice with equal contents
// is a different value. Funcs are never the same unless both are nil; wrap
// handlers in a *Listener to give them an identity. Same never panics.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return safeEqual(a, b)
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Func:
		// Closures have no usable identity; only two nil funcs are the same.
		return va.IsNil() && vb.IsNil()
	case reflect.Map:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	default:
		return false
	}
}

// safeEqual guards against comparable static types holding incomparable
// dynamic values, such as a struct with an interface field containing a map.
func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

func sameDeps(prev, next []any) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range next {
		if !Same(prev[i], next[i]) {
			return false
		}
	}
	return true
}
