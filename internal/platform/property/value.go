package property

import "reflect"

// IsAbsent reports whether v carries no value: an untyped nil, or a nil
// pointer, map, slice, interface, channel or func.
func IsAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// Equal compares two attribute values by value. Comparable dynamic types use
// ==; anything else falls back to reflect.DeepEqual. Values of different
// dynamic types are never equal.
func Equal(a, b any) (equal bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		// A comparable struct may still hold a non-comparable value in an
		// interface field, which makes == panic.
		defer func() {
			if recover() != nil {
				equal = reflect.DeepEqual(a, b)
			}
		}()
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
