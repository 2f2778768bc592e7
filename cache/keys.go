package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator delimits the segments of a cache key.
const KeySeparator = "::"

// maxKeyLen bounds generated keys. Search queries and criteria structs can
// serialize arbitrarily long; oversized keys are collapsed to the leading
// segment plus an xxhash digest of the full key, so the prefix stays usable
// for pattern invalidation.
const maxKeyLen = 256

// KeySerializer builds a stable cache key from a namespace plus arbitrary
// args. Implementations must produce identical keys for identical inputs
// across calls within one process.
type KeySerializer interface {
	SerializeKey(namespace string, args ...any) string
}

// defaultKeySerializer serializes args reflectively: basic types print
// directly, composites serialize recursively with sorted map keys for
// determinism, and anything else falls back to JSON.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer returns the serializer used across the webshop
// stores.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey joins the namespace and serialized args with KeySeparator,
// digesting the result when it exceeds maxKeyLen.
func (s *defaultKeySerializer) SerializeKey(namespace string, args ...any) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, namespace)
	for _, arg := range args {
		parts = append(parts, s.serialize(arg))
	}

	key := strings.Join(parts, KeySeparator)
	if len(key) <= maxKeyLen {
		return key
	}
	return namespace + KeySeparator + strconv.FormatUint(xxhash.Sum64String(key), 16)
}

func (s *defaultKeySerializer) serialize(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return fmt.Sprintf("%v", v)

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serialize(rv.Elem().Interface())

	case reflect.Slice:
		if rv.IsNil() {
			return "nil"
		}
		fallthrough
	case reflect.Array:
		elems := make([]string, rv.Len())
		for i := range elems {
			elems[i] = s.serialize(rv.Index(i).Interface())
		}
		return "[" + strings.Join(elems, ",") + "]"

	case reflect.Map:
		if rv.IsNil() {
			return "nil"
		}
		pairs := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			pairs = append(pairs, s.serialize(iter.Key().Interface())+"="+s.serialize(iter.Value().Interface()))
		}
		// Map iteration order is random; sort for stable keys.
		sort.Strings(pairs)
		return "{" + strings.Join(pairs, ",") + "}"

	case reflect.Struct:
		rt := rv.Type()
		fields := make([]string, 0, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			fields = append(fields, f.Name+":"+s.serialize(rv.Field(i).Interface()))
		}
		return "{" + strings.Join(fields, ",") + "}"

	case reflect.Func, reflect.Chan:
		// Pointer identity is the only stable handle for these; it holds
		// within a single process lifetime, which is all an in-memory
		// cache needs.
		return fmt.Sprintf("%s:%p", rv.Kind(), v)

	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "opaque:" + reflect.TypeOf(v).String()
		}
		return string(data)
	}
}
