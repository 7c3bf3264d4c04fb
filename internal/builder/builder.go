// Package builder turns descriptor trees into JSON Schema fragments.
//
// A Builder is created per generation call. Named descriptors (records, field
// groups, enums) are declared up front through Declare so that component
// names are final before the first reference is emitted; Root then builds one
// root at a time against the shared registry.
package builder

import (
	"strconv"

	typeschema "github.com/reoring/typeschema"
	"github.com/reoring/typeschema/internal/constraint"
	"github.com/reoring/typeschema/internal/registry"
)

// Builder carries the per-call state: the component registry, collected
// diagnostics and the visiting set of the root being built.
type Builder struct {
	reg      *registry.Registry
	diag     *typeschema.Diagnostics
	visiting map[string]bool
}

// New returns a Builder writing components to reg. diag may be nil.
func New(reg *registry.Registry, diag *typeschema.Diagnostics) *Builder {
	return &Builder{reg: reg, diag: diag}
}

// Root builds the fragment of one root descriptor. The visiting set is reset
// for every root.
func (b *Builder) Root(t typeschema.Type) (map[string]any, error) {
	b.visiting = map[string]bool{}
	return b.build(t, "")
}

func (b *Builder) build(t typeschema.Type, path string) (map[string]any, error) {
	switch x := t.(type) {
	case nil:
		return nil, typeschema.Errorf(typeschema.CodeInvalidConfig, path, "missing type")
	case typeschema.Any, typeschema.Raw:
		return map[string]any{}, nil
	case typeschema.None:
		return map[string]any{"type": "null"}, nil
	case typeschema.Bool:
		return map[string]any{"type": "boolean"}, nil
	case typeschema.Int:
		return map[string]any{"type": "integer"}, nil
	case typeschema.Float:
		return map[string]any{"type": "number"}, nil
	case typeschema.Str:
		return map[string]any{"type": "string"}, nil
	case typeschema.Binary:
		return map[string]any{"type": "string", "contentEncoding": "base64"}, nil
	case typeschema.Temporal:
		format := x.Format
		if format == "" {
			format = typeschema.TemporalDateTime
		}
		return map[string]any{"type": "string", "format": string(format)}, nil
	case *typeschema.Literal:
		return map[string]any{"enum": sortLiterals(x.Values)}, nil
	case *typeschema.Enum:
		return b.named(x.ID(), x.Name, x.Scope, func() (map[string]any, error) { return b.enum(x), nil })
	case *typeschema.Sequence:
		return b.sequence(x, path)
	case *typeschema.Mapping:
		if x.Value == nil {
			return map[string]any{"type": "object"}, nil
		}
		v, err := b.build(x.Value, path+"/additionalProperties")
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "object", "additionalProperties": v}, nil
	case *typeschema.Record:
		r := family(x)
		return b.named(r.ID(), r.Name, r.Scope, func() (map[string]any, error) { return b.record(r) })
	case *typeschema.NamedFields:
		return b.named(x.ID(), x.Name, x.Scope, func() (map[string]any, error) { return b.namedFields(x) })
	case *typeschema.Union:
		return b.union(x, path)
	case *typeschema.Custom:
		return nil, unsupported(x, path)
	case *typeschema.Annotated:
		return b.annotated(x, path)
	default:
		return nil, typeschema.Errorf(typeschema.CodeUnsupportedType, path, "unknown descriptor %T", t)
	}
}

// named resolves a named descriptor to a reference, building its component on
// first visit. A descriptor reached again while it is still being built
// resolves to its reference without recursing.
func (b *Builder) named(id, short, scope string, build func() (map[string]any, error)) (map[string]any, error) {
	if !b.reg.Declared(id) {
		b.reg.Declare(id, short, scope)
	}
	if b.visiting[id] {
		return b.reg.Ref(id), nil
	}
	b.visiting[id] = true
	defer delete(b.visiting, id)
	return b.reg.Register(id, build)
}

func (b *Builder) sequence(s *typeschema.Sequence, path string) (map[string]any, error) {
	if s.Fixed {
		n := len(s.Items)
		if n == 0 {
			return map[string]any{"type": "array", "minItems": 0, "maxItems": 0}, nil
		}
		prefix := make([]any, n)
		for i, it := range s.Items {
			f, err := b.build(it, path+"/prefixItems/"+strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			prefix[i] = f
		}
		return map[string]any{"type": "array", "minItems": n, "maxItems": n, "items": false, "prefixItems": prefix}, nil
	}
	if s.Elem == nil {
		return map[string]any{"type": "array"}, nil
	}
	items, err := b.build(s.Elem, path+"/items")
	if err != nil {
		return nil, err
	}
	return map[string]any{"type": "array", "items": items}, nil
}

// annotated applies an Annotated chain innermost first. A Custom base is only
// accepted when some layer of the chain supplies ExtraSchema: the innermost
// such override is taken verbatim and only the layers wrapped around it are
// applied on top.
func (b *Builder) annotated(a *typeschema.Annotated, path string) (map[string]any, error) {
	var layers []*typeschema.Annotated
	var inner typeschema.Type = a
	for {
		x, ok := inner.(*typeschema.Annotated)
		if !ok {
			break
		}
		layers = append(layers, x)
		inner = x.Inner
	}

	var frag map[string]any
	start := len(layers) - 1
	if c, ok := inner.(*typeschema.Custom); ok {
		k := innermostExtraSchema(layers)
		if k < 0 {
			return nil, unsupported(c, path)
		}
		frag = constraint.CloneMap(layers[k].Meta.ExtraSchema)
		start = k - 1
	} else {
		var err error
		if frag, err = b.build(inner, path); err != nil {
			return nil, err
		}
	}

	target := targetOf(inner)
	for i := start; i >= 0; i-- {
		var err error
		frag, err = constraint.Apply(frag, target, layers[i].Constraints, layers[i].Meta)
		if err != nil {
			return nil, &typeschema.Error{Code: typeschema.CodeInvalidConfig, Path: path, Message: err.Error()}
		}
	}
	return frag, nil
}

// innermostExtraSchema returns the index of the innermost layer carrying
// ExtraSchema, or -1. layers is ordered outermost first.
func innermostExtraSchema(layers []*typeschema.Annotated) int {
	for i := len(layers) - 1; i >= 0; i-- {
		if layers[i].Meta.ExtraSchema != nil {
			return i
		}
	}
	return -1
}

func targetOf(t typeschema.Type) constraint.Target {
	switch x := t.(type) {
	case typeschema.Str, typeschema.Temporal:
		return constraint.TargetString
	case typeschema.Binary:
		return constraint.TargetBinary
	case *typeschema.Sequence:
		return constraint.TargetArray
	case *typeschema.Mapping:
		return constraint.TargetObject
	case *typeschema.Record:
		if family(x).Layout == typeschema.LayoutArray {
			return constraint.TargetArray
		}
		return constraint.TargetObject
	case *typeschema.NamedFields:
		if x.Layout == typeschema.LayoutArray {
			return constraint.TargetArray
		}
		return constraint.TargetObject
	}
	return constraint.TargetOther
}

func unsupported(c *typeschema.Custom, path string) error {
	name := c.Identity
	if c.Scope != "" {
		name = c.Scope + "." + name
	}
	return typeschema.Errorf(typeschema.CodeUnsupportedType, path,
		"custom type %s has no native schema; supply one through Meta.ExtraSchema", name)
}
