package builder

import (
	"encoding/json"
	"math/big"
	"reflect"
	"sort"

	typeschema "github.com/reoring/typeschema"
)

// enum describes an enumeration by its wire form: integer values when every
// member value is an integer, member names otherwise.
func (b *Builder) enum(e *typeschema.Enum) map[string]any {
	ints := true
	for _, m := range e.Members {
		if _, ok := asInt(m.Value); !ok {
			ints = false
			break
		}
	}
	var values []any
	if ints {
		values = make([]any, len(e.Members))
		for i, m := range e.Members {
			values[i] = m.Value
		}
		sortInts(values)
	} else {
		names := make([]string, len(e.Members))
		for i, m := range e.Members {
			names[i] = m.Name
		}
		sort.Strings(names)
		values = make([]any, len(names))
		for i, n := range names {
			values[i] = n
		}
	}
	out := map[string]any{"title": e.Name, "enum": values}
	if e.Doc != "" {
		out["description"] = e.Doc
	}
	return out
}

// sortLiterals orders integers ascending, then strings ascending, then any
// other values in declared order.
func sortLiterals(values []any) []any {
	var ints, strs, rest []any
	for _, v := range values {
		if _, ok := asInt(v); ok {
			ints = append(ints, v)
			continue
		}
		if _, ok := v.(string); ok {
			strs = append(strs, v)
			continue
		}
		rest = append(rest, v)
	}
	sortInts(ints)
	sort.SliceStable(strs, func(i, j int) bool { return strs[i].(string) < strs[j].(string) })
	out := make([]any, 0, len(values))
	out = append(out, ints...)
	out = append(out, strs...)
	return append(out, rest...)
}

func sortInts(vs []any) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, _ := asInt(vs[i])
		b, _ := asInt(vs[j])
		return a.Cmp(b) < 0
	})
}

// asInt reports whether v is an integer value and returns it as a big.Int.
// Booleans are not integers.
func asInt(v any) (*big.Int, bool) {
	switch t := v.(type) {
	case nil, bool:
		return nil, false
	case *big.Int:
		return t, t != nil
	case json.Number:
		n, ok := new(big.Int).SetString(string(t), 10)
		return n, ok
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return new(big.Int).SetUint64(rv.Uint()), true
	}
	return nil, false
}
