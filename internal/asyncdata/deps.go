package asyncdata

import "reflect"

// sameDeps reports whether two dependency lists are element-wise identical.
// Pointers, maps, slices, channels and funcs compare by address; everything
// else compares with ==.
func sameDeps(prev, next []any) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if !sameDep(prev[i], next[i]) {
			return false
		}
	}
	return true
}

func sameDep(a, b any) (same bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}

	if !va.Type().Comparable() {
		return false
	}
	// structs holding uncomparable interface values panic on ==
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
