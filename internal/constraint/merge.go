package constraint

// Merge deep-merges b over a and returns the result.
//
// When both are objects, keys of b are folded into a copy of a: nested objects
// merge recursively, arrays concatenate (a first), anything else is replaced
// by b's value. When either side is not an object, b replaces a. Neither input
// is mutated and the result shares no containers with them.
func Merge(a, b any) any {
	am, aok := a.(map[string]any)
	bm, bok := b.(map[string]any)
	if !aok || !bok {
		return Clone(b)
	}
	return MergeMaps(am, bm)
}

// MergeMaps is Merge specialised to objects.
func MergeMaps(a, b map[string]any) map[string]any {
	out := CloneMap(a)
	if out == nil {
		out = make(map[string]any, len(b))
	}
	for k, bv := range b {
		av, exists := out[k]
		if !exists {
			out[k] = Clone(bv)
			continue
		}
		if am, ok := av.(map[string]any); ok {
			if bm, ok := bv.(map[string]any); ok {
				out[k] = MergeMaps(am, bm)
				continue
			}
		}
		if as, ok := asList(av); ok {
			if bs, ok := asList(bv); ok {
				joined := make([]any, 0, len(as)+len(bs))
				for _, v := range as {
					joined = append(joined, Clone(v))
				}
				for _, v := range bs {
					joined = append(joined, Clone(v))
				}
				out[k] = joined
				continue
			}
		}
		out[k] = Clone(bv)
	}
	return out
}

// Clone returns a deep copy of JSON-like values (objects and arrays); other
// values are returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = Clone(t[i])
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// CloneMap deep-copies an object. A nil map stays nil.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}
