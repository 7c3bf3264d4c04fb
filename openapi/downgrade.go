package openapi

import "github.com/reoring/typeschema/internal/constraint"

// downgrade rewrites a generated fragment into the OpenAPI 3.0 schema dialect.
// Only keys that hold subschemas are descended into; default, enum and
// example values are data and stay untouched. The input is not modified.
func downgrade(frag map[string]any) map[string]any {
	out := make(map[string]any, len(frag)+1)
	for k, v := range frag {
		switch k {
		case "properties":
			if props, ok := v.(map[string]any); ok {
				dp := make(map[string]any, len(props))
				for name, p := range props {
					dp[name] = downgradeAny(p)
				}
				out[k] = dp
				continue
			}
		case "items", "additionalProperties":
			out[k] = downgradeAny(v)
			continue
		case "anyOf", "prefixItems":
			if list, ok := v.([]any); ok {
				dl := make([]any, len(list))
				for i, s := range list {
					dl[i] = downgradeAny(s)
				}
				out[k] = dl
				continue
			}
		}
		out[k] = constraint.Clone(v)
	}

	for _, bound := range [...][2]string{{"exclusiveMinimum", "minimum"}, {"exclusiveMaximum", "maximum"}} {
		if n, ok := out[bound[0]]; ok {
			if _, isBool := n.(bool); !isBool {
				out[bound[1]] = n
				out[bound[0]] = true
			}
		}
	}
	if prefix, ok := out["prefixItems"]; ok {
		delete(out, "prefixItems")
		out["x-prefixItems"] = prefix
	}
	if items, ok := out["items"].(bool); ok && !items {
		delete(out, "items")
	}
	if out["type"] == "array" {
		if _, ok := out["items"]; !ok {
			out["items"] = map[string]any{}
		}
	}
	if out["contentEncoding"] == "base64" {
		delete(out, "contentEncoding")
		out["format"] = "byte"
	}
	if ex, ok := out["examples"].([]any); ok {
		delete(out, "examples")
		if len(ex) > 0 {
			out["example"] = ex[0]
		}
	}
	if members, ok := out["anyOf"].([]any); ok {
		kept := members[:0:0]
		nullable := false
		for _, m := range members {
			if mm, ok := m.(map[string]any); ok && len(mm) == 1 && mm["type"] == "null" {
				nullable = true
				continue
			}
			kept = append(kept, m)
		}
		if nullable {
			out["nullable"] = true
			if len(kept) == 0 {
				delete(out, "anyOf")
			} else {
				out["anyOf"] = kept
			}
		}
	}
	if out["type"] == "null" {
		delete(out, "type")
		out["nullable"] = true
	}
	// $ref siblings are ignored in 3.0; keep them by moving the ref into allOf.
	if ref, ok := out["$ref"]; ok && len(out) > 1 {
		delete(out, "$ref")
		out["allOf"] = []any{map[string]any{"$ref": ref}}
	}
	return out
}

func downgradeAny(v any) any {
	if m, ok := v.(map[string]any); ok {
		return downgrade(m)
	}
	return constraint.Clone(v)
}
