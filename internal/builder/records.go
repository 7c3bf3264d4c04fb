package builder

import (
	typeschema "github.com/reoring/typeschema"
	"github.com/reoring/typeschema/internal/constraint"
)

// shape is the common view of Record and NamedFields used for layout.
type shape struct {
	name     string
	doc      string
	fields   []typeschema.Field
	layout   typeschema.Layout
	tagField string
	tagValue any
	closed   bool // object: additionalProperties false; array: emit maxItems
}

// family returns the flattened view of a record that still carries a Base.
func family(r *typeschema.Record) *typeschema.Record {
	if r.Base == nil {
		return r
	}
	return r.Flatten()
}

func (b *Builder) record(r *typeschema.Record) (map[string]any, error) {
	return b.layout(shape{
		name:     r.Name,
		doc:      r.Doc,
		fields:   r.Fields,
		layout:   r.Layout,
		tagField: r.TagField(),
		tagValue: r.TagValue(),
		closed:   r.ForbidUnknown,
	})
}

// namedFields builds tuple-like (array, always bounded) and dict-like (object)
// field groups.
func (b *Builder) namedFields(n *typeschema.NamedFields) (map[string]any, error) {
	return b.layout(shape{
		name:   n.Name,
		doc:    n.Doc,
		fields: n.Fields,
		layout: n.Layout,
		closed: n.Layout == typeschema.LayoutArray,
	})
}

func (b *Builder) layout(s shape) (map[string]any, error) {
	if s.layout == typeschema.LayoutArray {
		return b.arrayLayout(s)
	}
	return b.objectLayout(s)
}

func (b *Builder) field(f typeschema.Field, path string) (map[string]any, error) {
	frag, err := b.build(f.Type, path)
	if err != nil {
		return nil, err
	}
	if f.HasDefault {
		frag["default"] = constraint.Clone(f.Default)
	}
	return frag, nil
}

func (b *Builder) objectLayout(s shape) (map[string]any, error) {
	path := "/" + s.name
	props := make(map[string]any, len(s.fields)+1)
	required := make([]any, 0, len(s.fields)+1)
	if s.tagField != "" {
		props[s.tagField] = map[string]any{"enum": []any{s.tagValue}}
		required = append(required, s.tagField)
	}
	for _, f := range s.fields {
		frag, err := b.field(f, path+"/"+f.Name)
		if err != nil {
			return nil, err
		}
		props[f.Name] = frag
		if f.Required() {
			required = append(required, f.Name)
		}
	}
	out := map[string]any{
		"title":      s.name,
		"type":       "object",
		"properties": props,
		"required":   required,
	}
	if s.doc != "" {
		out["description"] = s.doc
	}
	if s.closed {
		out["additionalProperties"] = false
	}
	return out, nil
}

// arrayLayout emits positional slots. minItems counts the leading run of
// required slots only; once a slot may be omitted every later slot may be too.
func (b *Builder) arrayLayout(s shape) (map[string]any, error) {
	path := "/" + s.name
	prefix := make([]any, 0, len(s.fields)+1)
	minItems := 0
	leading := true
	if s.tagField != "" {
		prefix = append(prefix, map[string]any{"enum": []any{s.tagValue}})
		minItems++
	}
	for _, f := range s.fields {
		frag, err := b.field(f, path+"/"+f.Name)
		if err != nil {
			return nil, err
		}
		prefix = append(prefix, frag)
		if leading && f.Required() {
			minItems++
		} else {
			leading = false
		}
	}
	out := map[string]any{
		"title":       s.name,
		"type":        "array",
		"prefixItems": prefix,
		"minItems":    minItems,
	}
	if s.doc != "" {
		out["description"] = s.doc
	}
	if s.closed {
		out["maxItems"] = len(prefix)
	}
	return out, nil
}
