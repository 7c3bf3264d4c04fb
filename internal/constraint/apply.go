// Package constraint maps value constraints and generic metadata onto schema
// fragments and implements the deep-merge used for schema overrides.
package constraint

import (
	"fmt"

	typeschema "github.com/reoring/typeschema"
)

// Target is the value family a fragment describes. It decides which keywords
// length bounds map to.
type Target int

const (
	TargetOther Target = iota
	TargetString
	TargetBinary
	TargetArray
	TargetObject
)

func (t Target) String() string {
	switch t {
	case TargetString:
		return "string"
	case TargetBinary:
		return "binary"
	case TargetArray:
		return "array"
	case TargetObject:
		return "object"
	}
	return "other"
}

// EncodedLength is the base64 character count for n raw bytes.
func EncodedLength(n int) int { return 4 * ((n + 2) / 3) }

// Apply returns frag with c and m applied in order: scalar constraints, then
// title/description/examples, then ExtraSchema deep-merged on top. frag itself
// is left untouched.
func Apply(frag map[string]any, target Target, c typeschema.Constraints, m typeschema.Meta) (map[string]any, error) {
	out := CloneMap(frag)
	if out == nil {
		out = map[string]any{}
	}

	setIf := func(key string, v any) {
		if v != nil {
			out[key] = v
		}
	}
	setIf("minimum", c.GE)
	setIf("exclusiveMinimum", c.GT)
	setIf("maximum", c.LE)
	setIf("exclusiveMaximum", c.LT)
	setIf("multipleOf", c.MultipleOf)
	if c.Pattern != "" {
		out["pattern"] = c.Pattern
	}
	if c.MinLength != nil || c.MaxLength != nil {
		minKey, maxKey, err := lengthKeys(target)
		if err != nil {
			return nil, err
		}
		if c.MinLength != nil {
			out[minKey] = lengthValue(target, *c.MinLength)
		}
		if c.MaxLength != nil {
			out[maxKey] = lengthValue(target, *c.MaxLength)
		}
	}

	if m.Title != "" {
		out["title"] = m.Title
	}
	if m.Description != "" {
		out["description"] = m.Description
	}
	if m.Examples != nil {
		out["examples"] = Clone(m.Examples)
	}
	if m.ExtraSchema != nil {
		out = MergeMaps(out, m.ExtraSchema)
	}
	return out, nil
}

func lengthKeys(t Target) (string, string, error) {
	switch t {
	case TargetString, TargetBinary:
		return "minLength", "maxLength", nil
	case TargetArray:
		return "minItems", "maxItems", nil
	case TargetObject:
		return "minProperties", "maxProperties", nil
	}
	return "", "", fmt.Errorf("length bounds are not applicable to %s values", t)
}

func lengthValue(t Target, n int) int {
	if t == TargetBinary {
		return EncodedLength(n)
	}
	return n
}
