package modelcache

import (
	"fmt"
	"strconv"
	"strings"
)

// cacheKey is the typed composite key partitioning all engine state by owner.
// Stores speak strings, so storeKey renders it with a length prefix on the
// owner part; no owner/name pair can collide with another by formatting
// alone.
type cacheKey struct {
	owner string
	name  string
}

func (k cacheKey) storeKey() string {
	return "l:" + strconv.Itoa(len(k.owner)) + ":" + k.owner + ":" + k.name
}

// NormalizeKey maps a column lookup key to its table representation:
// surrounding whitespace is dropped, everything else is kept verbatim.
func NormalizeKey(key string) string {
	return strings.TrimSpace(key)
}

// Key renders an arbitrary lookup key value as its table string. Strings are
// used as-is (normalized); integers, floats and bools get their canonical
// strconv form so 42 and "42" address the same entry.
func Key(v any) string {
	switch value := v.(type) {
	case string:
		return NormalizeKey(value)
	case []byte:
		return NormalizeKey(string(value))
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case int32:
		return strconv.FormatInt(int64(value), 10)
	case uint64:
		return strconv.FormatUint(value, 10)
	case uint:
		return strconv.FormatUint(uint64(value), 10)
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'g', -1, 32)
	case bool:
		return strconv.FormatBool(value)
	case fmt.Stringer:
		return NormalizeKey(value.String())
	default:
		return NormalizeKey(fmt.Sprintf("%v", v))
	}
}
