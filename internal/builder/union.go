package builder

import (
	"fmt"
	"strconv"

	typeschema "github.com/reoring/typeschema"
)

// union builds anyOf fragments and synthesizes discriminator metadata for
// tagged record members.
//
//   - all members tagged with one tag field: anyOf of refs plus discriminator
//   - some tagged: untagged members in order, then one nested discriminated group
//   - none tagged, or tag fields/values conflict: flat anyOf in declared order
func (b *Builder) union(u *typeschema.Union, path string) (map[string]any, error) {
	if len(u.Members) == 0 {
		return nil, typeschema.Errorf(typeschema.CodeInvalidConfig, path, "union has no members")
	}
	frags := make([]map[string]any, len(u.Members))
	recs := make([]*typeschema.Record, len(u.Members))
	var tagged []int
	for i, m := range u.Members {
		f, err := b.build(m, path+"/anyOf/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		frags[i] = f
		if r, ok := taggedRecord(m); ok {
			if _, isRef := f["$ref"].(string); isRef {
				recs[i] = r
				tagged = append(tagged, i)
			}
		}
	}
	if len(tagged) == 0 || !b.discriminable(recs, tagged, path) {
		return map[string]any{"anyOf": toAny(frags)}, nil
	}

	first := recs[tagged[0]]
	mapping := make(map[string]any, len(tagged))
	refs := make([]any, 0, len(tagged))
	for _, i := range tagged {
		mapping[tagKey(recs[i].TagValue())] = frags[i]["$ref"]
		refs = append(refs, frags[i])
	}
	group := map[string]any{
		"anyOf": refs,
		"discriminator": map[string]any{
			"propertyName": first.TagField(),
			"mapping":      mapping,
		},
	}
	if len(tagged) == len(frags) {
		return group, nil
	}

	isTagged := make(map[int]bool, len(tagged))
	for _, i := range tagged {
		isTagged[i] = true
	}
	others := make([]any, 0, len(frags)-len(tagged)+1)
	for i, f := range frags {
		if !isTagged[i] {
			others = append(others, f)
		}
	}
	return map[string]any{"anyOf": append(others, group)}, nil
}

// discriminable checks that tagged members agree on the tag field and carry
// distinct tag values. Conflicts are reported as diagnostics.
func (b *Builder) discriminable(recs []*typeschema.Record, tagged []int, path string) bool {
	field := recs[tagged[0]].TagField()
	owner := map[string]string{}
	for _, i := range tagged {
		r := recs[i]
		if f := r.TagField(); f != field {
			b.diag.Warnf(typeschema.CodeAmbiguousTag, path,
				"tag field %q of %s differs from %q; emitting plain anyOf", f, r.Name, field)
			return false
		}
		key := tagKey(r.TagValue())
		if prev, dup := owner[key]; dup {
			b.diag.Warnf(typeschema.CodeDuplicateTag, path,
				"tag value %q is shared by %s and %s; emitting plain anyOf", key, prev, r.Name)
			return false
		}
		owner[key] = r.Name
	}
	return true
}

// taggedRecord reports the tagged record behind a union member, looking
// through annotation layers. Records still carrying a Base are flattened.
func taggedRecord(t typeschema.Type) (*typeschema.Record, bool) {
	for {
		a, ok := t.(*typeschema.Annotated)
		if !ok {
			break
		}
		t = a.Inner
	}
	r, ok := t.(*typeschema.Record)
	if !ok {
		return nil, false
	}
	r = family(r)
	return r, r.Tag != nil
}

func tagKey(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func toAny(frags []map[string]any) []any {
	out := make([]any, len(frags))
	for i, f := range frags {
		out[i] = f
	}
	return out
}
