package ndb

import (
	"math"
	"unicode"
	"unicode/utf8"
)

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// normKey brings primary key values to a canonical representation so that
// the same id arriving as int, int64 or a whole float64 (e.g. decoded from
// JSON) lands on the same map key.
func normKey(v any) any {
	switch v := v.(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float32:
		return normKey(float64(v))
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
		return v
	default:
		return v
	}
}

func shallowEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
